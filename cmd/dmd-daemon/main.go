/*
DESCRIPTION
  dmd-daemon opens a controller handle and serves sequence-orchestrator
  operations over a local unix socket, newline-delimited JSON in, one
  JSON response line out. It signals readiness and liveness to systemd
  via sd_notify so it can run as a managed service. The control socket
  is the only local collaborator; any cloud-facing client is an explicit
  out-of-scope collaborator, not code this daemon contains.
*/

// Command dmd-daemon runs a long-lived DLPC900 controller process with a
// local control socket and systemd readiness/watchdog notifications.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/tidlp/dmd/driver"
	"github.com/tidlp/dmd/protocol/dlpc900"
	"github.com/tidlp/dmd/sequence"
)

// request is one control-socket command. Op selects which sequence
// operation to run; the remaining fields are interpreted per op. For
// "on_the_fly", Patterns holds one byte array per pattern,
// each Model.Height*Model.Width bytes of {0,1} (JSON encodes []byte as
// base64 automatically, so callers pass a base64 string per pattern).
type request struct {
	Op                string   `json:"op"`
	Indices           []int    `json:"indices,omitempty"`
	Patterns          [][]byte `json:"patterns,omitempty"`
	ExposureUS        []int    `json:"exposure_us,omitempty"`
	DarkUS            []int    `json:"dark_us,omitempty"`
	Triggered         bool     `json:"triggered,omitempty"`
	ClearAfterTrigger bool     `json:"clear_after_trigger,omitempty"`
	RepeatCount       uint32   `json:"repeat_count,omitempty"`
}

type response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func main() {
	var (
		socketPath  string
		hidPath     string
		width       int
		height      int
		dual        bool
		logPath     string
		watchdogSec int
	)

	root := &cobra.Command{
		Use:   "dmd-daemon",
		Short: "Serve DLPC900 sequence operations over a local control socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			fileLog := &lumberjack.Logger{Filename: logPath, MaxSize: 50, MaxBackups: 5, MaxAge: 28}
			logger := logging.New(logging.Info, fileLog, true)

			h, err := driver.Open(driver.OpenOptions{
				Path: hidPath,
				Model: sequence.DmdModel{
					Width:          width,
					Height:         height,
					DualController: dual,
				},
				Logger: logger,
			})
			if err != nil {
				return fmt.Errorf("opening controller: %w", err)
			}
			defer h.Close()

			ln, err := net.Listen("unix", socketPath)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", socketPath, err)
			}
			defer ln.Close()
			defer os.Remove(socketPath)

			var mu sync.Mutex
			go acceptLoop(ln, h.Sequence, &mu, logger)

			if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
				logger.Warning("sd_notify ready failed", "error", err)
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			if watchdogSec > 0 {
				ticker := time.NewTicker(time.Duration(watchdogSec) * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						daemon.SdNotify(false, daemon.SdNotifyWatchdog)
					case <-stop:
						return nil
					}
				}
			}
			<-stop
			return nil
		},
	}

	root.Flags().StringVar(&socketPath, "socket", "/run/dmd-daemon.sock", "unix socket path to serve on")
	root.Flags().StringVar(&hidPath, "hid-path", "", "OS-specific HID device path; empty enumerates by VID/PID")
	root.Flags().IntVar(&width, "width", 1920, "DMD width in micromirrors")
	root.Flags().IntVar(&height, "height", 1080, "DMD height in micromirrors")
	root.Flags().BoolVar(&dual, "dual-controller", false, "true for a dual-controller model (DLP9000)")
	root.Flags().StringVar(&logPath, "log", "/var/log/dmd-daemon/dmd-daemon.log", "log file path")
	root.Flags().IntVar(&watchdogSec, "watchdog-interval", 0, "seconds between sd_notify watchdog pings; 0 disables")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// acceptLoop serves each connection on its own goroutine; all hardware
// calls are serialized through mu, matching the orchestrator handle's
// single-threaded-per-controller contract.
func acceptLoop(ln net.Listener, h *sequence.Handle, mu *sync.Mutex, logger logging.Logger) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.Error("accept failed", "error", err)
			return
		}
		go handleConn(conn, h, mu, logger)
	}
}

func handleConn(conn net.Conn, h *sequence.Handle, mu *sync.Mutex, logger logging.Logger) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			enc.Encode(response{Error: fmt.Sprintf("decoding request: %v", err)})
			continue
		}

		mu.Lock()
		err := dispatch(h, req)
		mu.Unlock()

		if err != nil {
			enc.Encode(response{Error: err.Error()})
			continue
		}
		enc.Encode(response{OK: true})
	}
}

func dispatch(h *sequence.Handle, req request) error {
	switch req.Op {
	case "pre_stored":
		return h.UploadPreStored(sequence.PreStoredRequest{
			Indices:           req.Indices,
			ExposureUS:        req.ExposureUS,
			DarkUS:            req.DarkUS,
			Triggered:         req.Triggered,
			ClearAfterTrigger: req.ClearAfterTrigger,
			RepeatCount:       req.RepeatCount,
		})
	case "on_the_fly":
		return h.UploadOnTheFly(sequence.OnTheFlyRequest{
			Patterns:          req.Patterns,
			ExposureUS:        req.ExposureUS,
			DarkUS:            req.DarkUS,
			Triggered:         req.Triggered,
			ClearAfterTrigger: req.ClearAfterTrigger,
			RepeatCount:       req.RepeatCount,
			Compression:       dlpc900.CompressionERLE,
		})
	case "start":
		return dlpc900.StartStopSequence(h.Framer, dlpc900.SeqStart)
	case "stop":
		return dlpc900.StartStopSequence(h.Framer, dlpc900.SeqStop)
	case "pause":
		return dlpc900.StartStopSequence(h.Framer, dlpc900.SeqPause)
	default:
		return fmt.Errorf("unknown op %q", req.Op)
	}
}

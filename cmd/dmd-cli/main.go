/*
DESCRIPTION
  dmd-cli is an interactive-free command-line tool for the common
  driver operations an operator runs by hand: querying firmware/status,
  starting or stopping the running sequence, and uploading a pre-stored
  sequence resolved from a config archive and preset. It has no
  on-the-fly upload command.
*/

// Command dmd-cli exposes common DLPC900 controller operations as cobra
// subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidlp/dmd/config"
	"github.com/tidlp/dmd/driver"
	"github.com/tidlp/dmd/preset"
	"github.com/tidlp/dmd/protocol/dlpc900"
	"github.com/tidlp/dmd/sequence"
)

var (
	hidPath string
	width   int
	height  int
	dual    bool
)

func openHandle() (*driver.ControllerHandle, error) {
	return driver.Open(driver.OpenOptions{
		Path:  hidPath,
		Model: sequence.DmdModel{Width: width, Height: height, DualController: dual},
	})
}

func main() {
	root := &cobra.Command{Use: "dmd-cli", Short: "Common DLPC900 controller operations"}
	root.PersistentFlags().StringVar(&hidPath, "hid-path", "", "OS-specific HID device path; empty enumerates by VID/PID")
	root.PersistentFlags().IntVar(&width, "width", 1920, "DMD width in micromirrors")
	root.PersistentFlags().IntVar(&height, "height", 1080, "DMD height in micromirrors")
	root.PersistentFlags().BoolVar(&dual, "dual-controller", false, "true for a dual-controller model (DLP9000)")

	root.AddCommand(statusCmd(), startStopCmd(), preStoredCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print firmware app version and hardware status",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHandle()
			if err != nil {
				return err
			}
			defer h.Close()

			version, err := dlpc900.ReadFirmwareVersion(h.Framer, 1)
			if err != nil {
				return fmt.Errorf("reading firmware version: %w", err)
			}
			fmt.Printf("app version: %s\n", version.App.String())

			hw, err := dlpc900.HardwareStatus(h.Framer, 2)
			if err != nil {
				return fmt.Errorf("reading hardware status: %w", err)
			}
			for name, set := range hw {
				fmt.Printf("hardware: %-40s %v\n", name, set)
			}
			return nil
		},
	}
}

func startStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence [start|stop|pause]",
		Short: "Start, stop, or pause the running pattern sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sc dlpc900.SeqCmd
			switch args[0] {
			case "start":
				sc = dlpc900.SeqStart
			case "stop":
				sc = dlpc900.SeqStop
			case "pause":
				sc = dlpc900.SeqPause
			default:
				return fmt.Errorf("unknown sequence command %q", args[0])
			}

			h, err := openHandle()
			if err != nil {
				return err
			}
			defer h.Close()
			return dlpc900.StartStopSequence(h.Framer, sc)
		},
	}
	return cmd
}

func preStoredCmd() *cobra.Command {
	var (
		archivePath string
		channel     string
		mode        string
		exposureUS  int
		darkUS      int
		triggered   bool
		repeat      uint32
	)

	cmd := &cobra.Command{
		Use:   "upload-pre-stored",
		Short: "Resolve a channel/mode preset and upload it as a pre-stored sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := config.Load(archivePath)
			if err != nil {
				return fmt.Errorf("loading archive: %w", err)
			}
			indices, err := preset.Resolve(archive.ChannelMap, []preset.Entry{{Channel: channel, Mode: mode}})
			if err != nil {
				return fmt.Errorf("resolving preset: %w", err)
			}

			h, err := openHandle()
			if err != nil {
				return err
			}
			defer h.Close()

			return h.Sequence.UploadPreStored(sequence.PreStoredRequest{
				Indices:     indices,
				ExposureUS:  []int{exposureUS},
				DarkUS:      []int{darkUS},
				Triggered:   triggered,
				RepeatCount: repeat,
			})
		},
	}

	cmd.Flags().StringVar(&archivePath, "archive", "", "path to a config archive (required)")
	cmd.Flags().StringVar(&channel, "channel", "", "channel name to resolve (required)")
	cmd.Flags().StringVar(&mode, "mode", "default", "mode within the channel to resolve")
	cmd.Flags().IntVar(&exposureUS, "exposure-us", 105, "exposure time applied to every entry")
	cmd.Flags().IntVar(&darkUS, "dark-us", 0, "dark time applied to every entry")
	cmd.Flags().BoolVar(&triggered, "triggered", false, "wait for external trigger on every entry")
	cmd.Flags().Uint32Var(&repeat, "repeat", 0, "sequence repeat count, 0 for infinite")
	cmd.MarkFlagRequired("archive")
	cmd.MarkFlagRequired("channel")

	return cmd
}

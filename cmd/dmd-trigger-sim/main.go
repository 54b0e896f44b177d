/*
DESCRIPTION
  dmd-trigger-sim drives a GPIO output pin with a repeating pulse,
  standing in for external trigger hardware so TRIG_IN1/TRIG_IN2 wiring
  can be exercised on a bench without a function generator. It never
  touches the HID path.
*/

// Command dmd-trigger-sim pulses a GPIO pin to simulate an external
// hardware trigger.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/rpi"
	"github.com/spf13/cobra"
)

func main() {
	var (
		pinName  string
		pulseUS  int
		periodUS int
	)

	root := &cobra.Command{
		Use:   "dmd-trigger-sim",
		Short: "Pulse a GPIO pin to simulate an external DMD trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pulseUS <= 0 || periodUS <= 0 || pulseUS >= periodUS {
				return fmt.Errorf("pulse-us must be > 0 and less than period-us")
			}

			if err := embd.InitGPIO(); err != nil {
				return fmt.Errorf("init gpio: %w", err)
			}
			defer embd.CloseGPIO()

			pin, err := embd.NewDigitalPin(pinName)
			if err != nil {
				return fmt.Errorf("open pin %q: %w", pinName, err)
			}
			defer pin.Close()

			if err := pin.SetDirection(embd.Out); err != nil {
				return fmt.Errorf("set direction: %w", err)
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			pulse := time.Duration(pulseUS) * time.Microsecond
			period := time.Duration(periodUS) * time.Microsecond
			ticker := time.NewTicker(period)
			defer ticker.Stop()

			fmt.Printf("pulsing %s: %dus high every %dus (ctrl-c to stop)\n", pinName, pulseUS, periodUS)
			for {
				select {
				case <-ticker.C:
					if err := pin.Write(embd.High); err != nil {
						return fmt.Errorf("pin high: %w", err)
					}
					time.Sleep(pulse)
					if err := pin.Write(embd.Low); err != nil {
						return fmt.Errorf("pin low: %w", err)
					}
				case <-stop:
					return pin.Write(embd.Low)
				}
			}
		},
	}

	root.Flags().StringVar(&pinName, "pin", "GPIO17", "GPIO pin name or number to drive")
	root.Flags().IntVar(&pulseUS, "pulse-us", 100, "pulse width in microseconds")
	root.Flags().IntVar(&periodUS, "period-us", 10000, "pulse period in microseconds")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

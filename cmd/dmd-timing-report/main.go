/*
DESCRIPTION
  dmd-timing-report summarizes the playback timing of a configured
  pattern sequence, reporting exposure/dark statistics and optionally
  rendering an SVG bar chart of per-entry exposure times. It is
  read-only: it never opens a device.
*/

// Command dmd-timing-report reports playback timing for a pattern
// sequence loaded from a config archive.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidlp/dmd/config"
	"github.com/tidlp/dmd/diagnostics"
	"github.com/tidlp/dmd/preset"
	"github.com/tidlp/dmd/protocol/dlpc900"
)

func main() {
	var (
		archivePath string
		channel     string
		mode        string
		exposureUS  int
		darkUS      int
		svgPath     string
	)

	root := &cobra.Command{
		Use:   "dmd-timing-report",
		Short: "Report exposure/dark timing for a resolved pattern sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := config.Load(archivePath)
			if err != nil {
				return fmt.Errorf("loading archive: %w", err)
			}

			indices, err := preset.Resolve(archive.ChannelMap, []preset.Entry{{Channel: channel, Mode: mode}})
			if err != nil {
				return fmt.Errorf("resolving preset: %w", err)
			}

			entries := make([]dlpc900.LutEntry, len(indices))
			for i, idx := range indices {
				picIndex, bitIndex := dlpc900.PicBitIndex(idx)
				entries[i] = dlpc900.LutEntry{
					SequencePosition: i,
					ExposureUS:       exposureUS,
					DarkUS:           darkUS,
					StoredImageIndex: picIndex,
					StoredBitIndex:   bitIndex,
				}
			}

			report, err := diagnostics.Summarize(entries)
			if err != nil {
				return fmt.Errorf("summarizing: %w", err)
			}

			fmt.Printf("entries:           %d\n", report.NumEntries)
			fmt.Printf("total duration:    %.0fus\n", report.TotalDurationUS)
			fmt.Printf("exposure mean/std: %.1f / %.1fus\n", report.ExposureMeanUS, report.ExposureStdDevUS)
			fmt.Printf("dark mean/std:     %.1f / %.1fus\n", report.DarkMeanUS, report.DarkStdDevUS)

			if svgPath != "" {
				if err := diagnostics.RenderGantt(entries, svgPath); err != nil {
					return fmt.Errorf("rendering timeline: %w", err)
				}
				fmt.Printf("timeline written to %s\n", svgPath)
			}
			return nil
		},
	}

	root.Flags().StringVar(&archivePath, "archive", "", "path to a config archive (required)")
	root.Flags().StringVar(&channel, "channel", "", "channel name to resolve (required)")
	root.Flags().StringVar(&mode, "mode", "default", "mode within the channel to resolve")
	root.Flags().IntVar(&exposureUS, "exposure-us", 105, "exposure time applied to every entry")
	root.Flags().IntVar(&darkUS, "dark-us", 0, "dark time applied to every entry")
	root.Flags().StringVar(&svgPath, "svg", "", "optional path to write an SVG bar chart of per-entry exposure times")
	root.MarkFlagRequired("archive")
	root.MarkFlagRequired("channel")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

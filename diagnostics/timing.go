/*
DESCRIPTION
  timing.go computes playback-duration statistics over a LUT sequence and
  renders an SVG horizontal bar chart of each entry's exposure time.
  Read-only: this package never talks to hardware.
*/

// Package diagnostics reports on a pattern sequence's timing budget
// without touching a device.
package diagnostics

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tidlp/dmd/protocol/dlpc900"
)

// TimingReport summarizes a LUT sequence's playback timing.
type TimingReport struct {
	NumEntries       int
	TotalDurationUS  float64
	ExposureMeanUS   float64
	ExposureStdDevUS float64
	DarkMeanUS       float64
	DarkStdDevUS     float64
}

// Summarize computes a TimingReport over entries. An empty sequence is a
// validation error: there is nothing to report on.
func Summarize(entries []dlpc900.LutEntry) (*TimingReport, error) {
	if len(entries) == 0 {
		return nil, errors.New("diagnostics: cannot summarize an empty LUT sequence")
	}

	exposures := make([]float64, len(entries))
	darks := make([]float64, len(entries))
	var total float64
	for i, e := range entries {
		exposures[i] = float64(e.ExposureUS)
		darks[i] = float64(e.DarkUS)
		total += exposures[i] + darks[i]
	}

	expMean, expStd := stat.MeanStdDev(exposures, nil)
	darkMean, darkStd := stat.MeanStdDev(darks, nil)

	return &TimingReport{
		NumEntries:       len(entries),
		TotalDurationUS:  total,
		ExposureMeanUS:   expMean,
		ExposureStdDevUS: expStd,
		DarkMeanUS:       darkMean,
		DarkStdDevUS:     darkStd,
	}, nil
}

// RenderGantt draws one horizontal bar per entry, entry i at position i
// on the vertical axis, with the bar's length equal to the entry's
// exposure time, and saves it as an SVG at path. Every bar starts at
// zero rather than at the entry's start time in the sequence, and dark
// times are not drawn.
func RenderGantt(entries []dlpc900.LutEntry, path string) error {
	if len(entries) == 0 {
		return errors.New("diagnostics: cannot render an empty LUT sequence")
	}

	p := plot.New()
	p.Title.Text = "DLPC900 pattern sequence timing"
	p.X.Label.Text = "time (us)"
	p.Y.Label.Text = "sequence position"

	bars := make(plotter.Values, len(entries))
	for i, e := range entries {
		bars[i] = float64(e.ExposureUS)
	}

	chart, err := plotter.NewBarChart(bars, vg.Points(12))
	if err != nil {
		return errors.Wrap(err, "diagnostics: building bar chart")
	}
	chart.Horizontal = true
	p.Add(chart)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "diagnostics: saving timeline to %q", path)
	}
	return nil
}

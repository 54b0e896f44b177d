/*
DESCRIPTION
  sequence.go implements the on-the-fly and pre-stored pattern-sequence
  orchestrators: the fixed command order that takes a user-level sequence
  request from validated input through mode transitions, LUT population,
  (for on-the-fly) reverse-order BMP upload, and start.
*/

// Package sequence implements the DLPC900 pattern-sequence orchestrator:
// the on-the-fly and pre-stored upload flows built on the controller
// façade in protocol/dlpc900.
package sequence

import (
	"github.com/ausocean/utils/logging"

	"github.com/tidlp/dmd/dmderr"
	"github.com/tidlp/dmd/protocol/dlpc900"
)

// DmdModel describes the DMD geometry a Handle drives, replacing the
// source driver's per-model subclass with a single value passed at open
// time: the model is known up front and never changes for the life of a
// handle.
type DmdModel struct {
	Width, Height  int
	DualController bool
}

// Handle orchestrates sequence uploads against one DLPC900 controller.
// It owns the framer's sequence-byte counter; all calls must be
// serialized by the caller, per the framer's own concurrency contract.
type Handle struct {
	Framer *dlpc900.Framer
	Model  DmdModel
	Logger logging.Logger

	seq byte
}

// NewHandle wraps an open framer for sequence orchestration.
func NewHandle(f *dlpc900.Framer, model DmdModel, logger logging.Logger) *Handle {
	return &Handle{Framer: f, Model: model, Logger: logger}
}

func (h *Handle) nextSeq() byte {
	h.seq++
	return h.seq
}

func (h *Handle) logf(level int8, format string, args ...interface{}) {
	if h.Logger == nil {
		return
	}
	h.Logger.Log(level, format, args...)
}

// resetToMode issues the stop -> set_mode -> stop sequence the device
// state machine requires on every mode change.
func (h *Handle) resetToMode(mode dlpc900.DisplayMode) error {
	if err := dlpc900.StartStopSequence(h.Framer, dlpc900.SeqStop); err != nil {
		return dmderr.Wrap(dmderr.TransportIO, err, "initial stop before mode change")
	}
	if err := dlpc900.SetDisplayMode(h.Framer, h.nextSeq(), mode); err != nil {
		return dmderr.Wrap(dmderr.TransportIO, err, "setting display mode %d", mode)
	}
	if err := dlpc900.StartStopSequence(h.Framer, dlpc900.SeqStop); err != nil {
		return dmderr.Wrap(dmderr.TransportIO, err, "second stop required after mode change")
	}
	return nil
}

// finish issues start and, if the sequence waits on an external trigger,
// an immediate follow-up stop so the device holds until the hardware
// advance arrives.
func (h *Handle) finish(triggered bool) error {
	if err := dlpc900.StartStopSequence(h.Framer, dlpc900.SeqStart); err != nil {
		return dmderr.Wrap(dmderr.TransportIO, err, "starting sequence")
	}
	if triggered {
		if err := dlpc900.StartStopSequence(h.Framer, dlpc900.SeqStop); err != nil {
			return dmderr.Wrap(dmderr.TransportIO, err, "stopping triggered sequence to await advance")
		}
	}
	return nil
}

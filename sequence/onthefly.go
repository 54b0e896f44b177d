/*
DESCRIPTION
  onthefly.go implements the on-the-fly upload flow (§4.8): patterns are
  combined 24-at-a-time into RGB frames, compressed, and uploaded to
  device pattern memory in reverse frame order, which is mandatory for
  correct playback ordering.
*/

package sequence

import (
	"github.com/ausocean/utils/logging"

	"github.com/tidlp/dmd/codec"
	"github.com/tidlp/dmd/dmderr"
	"github.com/tidlp/dmd/preset"
	"github.com/tidlp/dmd/protocol/dlpc900"
)

// OnTheFlyRequest is a user-level on-the-fly sequence request. ExposureUS
// and DarkUS may each be a single scalar (broadcast to len(Patterns)) or
// a per-pattern vector.
type OnTheFlyRequest struct {
	Patterns          [][]byte // N patterns, each Model.Height*Model.Width bytes of {0,1}
	ExposureUS        []int
	DarkUS            []int
	Triggered         bool
	ClearAfterTrigger bool
	RepeatCount       uint32
	Compression       dlpc900.CompressionTag
}

// UploadOnTheFly runs the full on-the-fly flow: validate, reset to
// on-the-fly mode, define the LUT, compress and upload pattern memory in
// reverse frame order, re-send the LUT configuration, then start.
func (h *Handle) UploadOnTheFly(req OnTheFlyRequest) error {
	n := len(req.Patterns)
	if n == 0 {
		return dmderr.New(dmderr.Validation, "on-the-fly upload requires at least one pattern")
	}
	if req.Compression != dlpc900.CompressionERLE {
		return dmderr.New(dmderr.Validation, "compression mode %d not implemented, only ERLE is supported", req.Compression)
	}

	exposure, err := preset.Expand(req.ExposureUS, n)
	if err != nil {
		return dmderr.Wrap(dmderr.Validation, err, "expanding exposure times")
	}
	dark, err := preset.Expand(req.DarkUS, n)
	if err != nil {
		return dmderr.Wrap(dmderr.Validation, err, "expanding dark times")
	}

	if err := h.resetToMode(dlpc900.ModeOnTheFly); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		picIndex, bitIndex := dlpc900.PicBitIndex(i)
		entry := dlpc900.LutEntry{
			SequencePosition:  i,
			ExposureUS:        exposure[i],
			DarkUS:            dark[i],
			WaitForTrigger:    req.Triggered,
			ClearAfterTrigger: req.ClearAfterTrigger,
			StoredImageIndex:  picIndex,
			StoredBitIndex:    bitIndex,
		}
		if err := dlpc900.SetLUTEntry(h.Framer, h.nextSeq(), entry); err != nil {
			return dmderr.Wrap(dmderr.TransportIO, err, "defining LUT entry %d", i)
		}
	}

	if err := dlpc900.SetLUTConfig(h.Framer, h.nextSeq(), n, req.RepeatCount); err != nil {
		return dmderr.Wrap(dmderr.TransportIO, err, "configuring LUT for %d patterns", n)
	}

	frames, err := codec.Combine(req.Patterns, h.Model.Height, h.Model.Width)
	if err != nil {
		return dmderr.Wrap(dmderr.Validation, err, "combining patterns into frames")
	}

	h.logf(logging.Debug, "uploading %d combined frames in reverse order", len(frames))
	for fi := len(frames) - 1; fi >= 0; fi-- {
		if err := h.uploadFrame(fi, frames[fi], req.Compression); err != nil {
			return dmderr.Wrap(dmderr.TransportIO, err, "uploading combined frame %d", fi)
		}
	}

	// BMP load clobbers the LUT the device holds internally; re-send it.
	if err := dlpc900.SetLUTConfig(h.Framer, h.nextSeq(), n, req.RepeatCount); err != nil {
		return dmderr.Wrap(dmderr.TransportIO, err, "re-configuring LUT after BMP load")
	}

	return h.finish(req.Triggered)
}

// uploadFrame compresses and uploads one combined frame, splitting it
// across both controllers for a dual-controller model.
func (h *Handle) uploadFrame(index int, frame *codec.CombinedFrame, tag dlpc900.CompressionTag) error {
	if !h.Model.DualController {
		return h.uploadHalf(index, dlpc900.Primary, frame, tag)
	}

	left, right, err := frame.SplitColumns()
	if err != nil {
		return dmderr.Wrap(dmderr.Validation, err, "splitting dual-controller frame %d", index)
	}
	if err := h.uploadHalf(index, dlpc900.Primary, left, tag); err != nil {
		return err
	}
	return h.uploadHalf(index, dlpc900.Secondary, right, tag)
}

func (h *Handle) uploadHalf(index int, controller dlpc900.Controller, frame *codec.CombinedFrame, tag dlpc900.CompressionTag) error {
	compressed, err := compress(frame, tag)
	if err != nil {
		return err
	}

	if err := dlpc900.InitBMPLoad(h.Framer, h.nextSeq(), controller, index, len(compressed)+48); err != nil {
		return dmderr.Wrap(dmderr.TransportIO, err, "init bmp load for frame %d", index)
	}
	if err := dlpc900.LoadBMPData(h.Framer, h.nextSeq(), controller, frame.Width, frame.Height, tag, compressed); err != nil {
		return dmderr.Wrap(dmderr.TransportIO, err, "bmp data load for frame %d", index)
	}
	return nil
}

func compress(frame *codec.CombinedFrame, tag dlpc900.CompressionTag) ([]byte, error) {
	planes := frame.Planes[:]
	switch tag {
	case dlpc900.CompressionERLE:
		return codec.EncodeERLE(planes, frame.Height, frame.Width)
	case dlpc900.CompressionRLE:
		return codec.EncodeRLE(planes, frame.Height, frame.Width)
	default:
		return nil, dmderr.New(dmderr.Validation, "compression tag %d not implemented", tag)
	}
}

/*
DESCRIPTION
  prestored.go implements the pre-stored upload flow (§4.9): identical to
  the on-the-fly flow's mode reset and LUT population, but the LUT's
  picture/bit indices reference patterns already resident in firmware
  flash instead of freshly uploaded BMP data, so no BMP load step runs.
*/

package sequence

import (
	"github.com/ausocean/utils/logging"

	"github.com/tidlp/dmd/dmderr"
	"github.com/tidlp/dmd/preset"
	"github.com/tidlp/dmd/protocol/dlpc900"
)

// PreStoredRequest is a user-level pre-stored sequence request. Indices
// name patterns already loaded into the device's on-board flash; each is
// split into a picture/bit pair with the same divmod(index, 24) rule the
// on-the-fly flow uses for upload position.
type PreStoredRequest struct {
	Indices           []int
	ExposureUS        []int
	DarkUS            []int
	Triggered         bool
	ClearAfterTrigger bool
	RepeatCount       uint32
}

// UploadPreStored runs the pre-stored flow: validate, reset to
// pre-stored mode, define the LUT against the given firmware indices,
// configure the LUT, then start. Unlike on-the-fly, no pattern data is
// transferred; the device already holds it in flash.
func (h *Handle) UploadPreStored(req PreStoredRequest) error {
	n := len(req.Indices)
	if n == 0 {
		return dmderr.New(dmderr.Validation, "pre-stored upload requires at least one pattern index")
	}

	exposure, err := preset.Expand(req.ExposureUS, n)
	if err != nil {
		return dmderr.Wrap(dmderr.Validation, err, "expanding exposure times")
	}
	dark, err := preset.Expand(req.DarkUS, n)
	if err != nil {
		return dmderr.Wrap(dmderr.Validation, err, "expanding dark times")
	}

	warnIfBitIndexZeroMissing(h, req.Indices)

	if err := h.resetToMode(dlpc900.ModePreStored); err != nil {
		return err
	}

	for i, index := range req.Indices {
		picIndex, bitIndex := dlpc900.PicBitIndex(index)
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

	return h.finish(req.Triggered)
}

// warnIfBitIndexZeroMissing logs a warning when the requested indices
// include a nonzero bit index within some picture without bit index 0
// also present: the device plays back the lowest bit index found in a
// picture first regardless of the caller's intended sequence order, so
// callers relying on index order within a picture will see a different
// first frame than they expect.
func warnIfBitIndexZeroMissing(h *Handle, indices []int) {
	seenBits := map[int]map[int]bool{}
	for _, idx := range indices {
		pic, bit := dlpc900.PicBitIndex(idx)
		if seenBits[pic] == nil {
			seenBits[pic] = map[int]bool{}
		}
		seenBits[pic][bit] = true
	}
	for pic, bits := range seenBits {
		if bits[0] {
			continue
		}
		h.logf(logging.Warning,
			"pre-stored picture %d has no bit index 0 among requested indices; "+
				"device plays back its lowest present bit index first, which may not match the requested order", pic)
	}
}

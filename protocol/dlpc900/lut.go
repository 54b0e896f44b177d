/*
DESCRIPTION
  lut.go wraps the LUT configuration and per-entry LUT definition
  (MBOX_DATA) commands that drive the DLPC900's pattern sequencer.
*/

package dlpc900

import (
	"encoding/binary"

	"github.com/tidlp/dmd/dmderr"
)

// MaxLUTIndex is the largest LUT index the DLPC900 accepts (exclusive
// upper bound on num_patterns and on any sequence-position index).
const MaxLUTIndex = 512

// SetLUTConfig configures how many LUT entries play and how many times
// the sequence repeats (0 means infinite).
func SetLUTConfig(f *Framer, seq byte, numPatterns int, numRepeats uint32) error {
	if numPatterns >= MaxLUTIndex {
		return dmderr.New(dmderr.Validation, "num_patterns must be < %d, got %d", MaxLUTIndex, numPatterns)
	}
	payload := make([]byte, 6)
	binary.LittleEndian.PutUint16(payload[0:2], uint16(numPatterns))
	binary.LittleEndian.PutUint32(payload[2:6], numRepeats)
	_, err := f.Send(Write, true, seq, OpPatConfig, payload)
	return err
}

// LutEntry is one pattern-sequence slot, serialized into the 12-byte
// MBOX_DATA payload.
type LutEntry struct {
	SequencePosition  int
	ExposureUS        int
	DarkUS            int
	WaitForTrigger    bool
	ClearAfterTrigger bool
	EnableTrigger2    bool
	StoredImageIndex  int
	StoredBitIndex    int
}

// minExposureUS is the minimum pattern exposure time the device accepts.
const minExposureUS = 105

// Validate checks the entry against the device's accepted ranges.
func (e LutEntry) Validate() error {
	if e.ExposureUS < minExposureUS {
		return dmderr.New(dmderr.Validation, "exposure %dus below minimum %dus", e.ExposureUS, minExposureUS)
	}
	if e.SequencePosition >= MaxLUTIndex {
		return dmderr.New(dmderr.Validation, "sequence position %d >= max LUT index %d", e.SequencePosition, MaxLUTIndex)
	}
	return nil
}

// Serialize packs the entry into its 12-byte MBOX_DATA payload. The misc
// byte's bit layout is: bit0 wait-for-trigger, bits1-3 a constant 0b100
// (bit depth 1), bits4-6 reserved, bit7 clear-after-trigger.
func (e LutEntry) Serialize() []byte {
	payload := make([]byte, 12)
	binary.LittleEndian.PutUint16(payload[0:2], uint16(e.SequencePosition))

	var exposure [4]byte
	binary.LittleEndian.PutUint32(exposure[:], uint32(e.ExposureUS))
	copy(payload[2:5], exposure[:3])

	var misc byte
	if e.WaitForTrigger {
		misc |= 1 << 0
	}
	misc |= 0b100 << 1
	if e.ClearAfterTrigger {
		misc |= 1 << 7
	}
	payload[5] = misc

	var dark [2]byte
	binary.LittleEndian.PutUint16(dark[:], uint16(e.DarkUS))
	payload[6] = dark[0]
	payload[7] = dark[1]
	payload[8] = 0

	if e.EnableTrigger2 {
		payload[9] = 0x01
	}
	payload[10] = byte(e.StoredImageIndex)
	payload[11] = byte(e.StoredBitIndex * 8)

	return payload
}

// SetLUTEntry validates and sends one LUT definition command.
func SetLUTEntry(f *Framer, seq byte, e LutEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := f.Send(Write, true, seq, OpLUTDefinition, e.Serialize())
	return err
}

// PicBitIndex splits a combined-frame pattern index i into its picture
// index and bit index within that picture, per divmod(i, 24).
func PicBitIndex(i int) (picIndex, bitIndex int) {
	return i / 24, i % 24
}

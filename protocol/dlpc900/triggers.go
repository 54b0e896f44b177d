/*
DESCRIPTION
  triggers.go wraps the DLPC900's trigger input/output configuration
  opcodes. Trigger in 1 advances the pattern sequence; trigger in 2
  enables/disables it; trigger out 1/2 are the device's own pulses
  signalling pattern advance.
*/

package dlpc900

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/tidlp/dmd/dmderr"
)

// Edge selects a trigger polarity.
type Edge byte

const (
	RisingEdge  Edge = 0x00
	FallingEdge Edge = 0x01
)

// minTriggerDelayUS is the minimum allowed TrigIn1 delay, matching the
// minimum pattern exposure time.
const minTriggerDelayUS = 105

// SetTrigIn1 configures the "advance frame" input trigger.
func SetTrigIn1(f *Framer, seq byte, delayUS int, edge Edge) error {
	if delayUS < minTriggerDelayUS {
		return dmderr.New(dmderr.Validation, "trigger in 1 delay must be >= %dus, got %d", minTriggerDelayUS, delayUS)
	}
	payload := make([]byte, 3)
	binary.LittleEndian.PutUint16(payload[0:2], uint16(delayUS))
	payload[2] = byte(edge)
	_, err := f.Send(Write, true, seq, OpTrigIn1Ctl, payload)
	return err
}

// TrigIn1Status is the current configuration of trigger input 1.
type TrigIn1Status struct {
	DelayUS int
	Edge    Edge
}

// GetTrigIn1 reads back the current trigger input 1 configuration.
func GetTrigIn1(f *Framer, seq byte) (*TrigIn1Status, error) {
	buf, err := f.Send(Read, true, seq, OpTrigIn1Ctl, nil)
	if err != nil {
		return nil, err
	}
	resp, err := DecodeResponse(buf)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) < 3 {
		return nil, errors.New("dlpc900: trig in 1 reply too short")
	}
	return &TrigIn1Status{
		DelayUS: int(binary.LittleEndian.Uint16(resp.Data[0:2])),
		Edge:    Edge(resp.Data[2]),
	}, nil
}

// SetTrigIn2 configures the polarity of trigger input 2, which
// starts/stops the sequence rather than advancing it frame by frame.
func SetTrigIn2(f *Framer, seq byte, edge Edge) error {
	_, err := f.Send(Write, false, seq, OpTrigIn2Ctl, []byte{byte(edge)})
	return err
}

// GetTrigIn2 reads back the polarity of trigger input 2.
func GetTrigIn2(f *Framer, seq byte) (Edge, error) {
	buf, err := f.Send(Read, true, seq, OpTrigIn2Ctl, nil)
	if err != nil {
		return 0, err
	}
	resp, err := DecodeResponse(buf)
	if err != nil {
		return 0, err
	}
	if len(resp.Data) == 0 {
		return 0, errors.New("dlpc900: trig in 2 reply empty")
	}
	return Edge(resp.Data[0]), nil
}

// minTriggerOutDelayUS and maxTriggerOutDelayUS bound a trigger output
// edge delay in either direction.
const (
	minTriggerOutDelayUS = -20
	maxTriggerOutDelayUS = 20000
)

// setTrigOut configures one output trigger's polarity and edge delays.
// If invert is set, the rising delay must not be less than the falling
// delay — the device rejects an inverted pulse shorter than its own
// trailing edge.
func setTrigOut(f *Framer, seq byte, op Opcode, invert bool, risingDelayUS, fallingDelayUS int) error {
	if risingDelayUS < minTriggerOutDelayUS || risingDelayUS > maxTriggerOutDelayUS {
		return dmderr.New(dmderr.Validation, "trigger out rising edge delay %d out of range [%d,%d]", risingDelayUS, minTriggerOutDelayUS, maxTriggerOutDelayUS)
	}
	if fallingDelayUS < minTriggerOutDelayUS || fallingDelayUS > maxTriggerOutDelayUS {
		return dmderr.New(dmderr.Validation, "trigger out falling edge delay %d out of range [%d,%d]", fallingDelayUS, minTriggerOutDelayUS, maxTriggerOutDelayUS)
	}
	if invert && risingDelayUS < fallingDelayUS {
		return dmderr.New(dmderr.Validation, "inverted trigger out requires rising delay (%d) >= falling delay (%d)", risingDelayUS, fallingDelayUS)
	}

	payload := make([]byte, 5)
	if invert {
		payload[0] = 1
	}
	binary.LittleEndian.PutUint16(payload[1:3], uint16(int16(risingDelayUS)))
	binary.LittleEndian.PutUint16(payload[3:5], uint16(int16(fallingDelayUS)))

	_, err := f.Send(Write, true, seq, op, payload)
	return err
}

// SetTrigOut1 configures output trigger 1.
func SetTrigOut1(f *Framer, seq byte, invert bool, risingDelayUS, fallingDelayUS int) error {
	return setTrigOut(f, seq, OpTrigOut1Ctl, invert, risingDelayUS, fallingDelayUS)
}

// SetTrigOut2 configures output trigger 2.
func SetTrigOut2(f *Framer, seq byte, invert bool, risingDelayUS, fallingDelayUS int) error {
	return setTrigOut(f, seq, OpTrigOut2Ctl, invert, risingDelayUS, fallingDelayUS)
}

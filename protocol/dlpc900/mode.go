/*
DESCRIPTION
  mode.go wraps the display-mode select and start/stop/pause sequence
  control commands.
*/

package dlpc900

import "github.com/tidlp/dmd/dmderr"

// DisplayMode selects how the DLPC900 sources its displayed image.
type DisplayMode byte

const (
	ModeVideo        DisplayMode = 0x00
	ModePreStored    DisplayMode = 0x01
	ModeVideoPattern DisplayMode = 0x02
	ModeOnTheFly     DisplayMode = 0x03
)

// SetDisplayMode switches the DLPC900's display mode.
func SetDisplayMode(f *Framer, seq byte, mode DisplayMode) error {
	_, err := f.Send(Write, true, seq, OpDisplayMode, []byte{byte(mode)})
	return err
}

// SeqCmd identifies a pattern sequence control command. Each has its own
// distinguished sequence byte and data byte, per the device protocol.
type SeqCmd int

const (
	SeqStart SeqCmd = iota
	SeqStop
	SeqPause
)

func (c SeqCmd) frame() (seqByte, dataByte byte, err error) {
	switch c {
	case SeqStart:
		return 0x08, 0x02, nil
	case SeqStop:
		return 0x05, 0x00, nil
	case SeqPause:
		return 0x00, 0x01, nil
	default:
		return 0, 0, dmderr.New(dmderr.Validation, "unknown sequence command %d", int(c))
	}
}

// StartStopSequence issues a start, stop, or pause to the running pattern
// sequence. No reply is requested, matching the device protocol for this
// command.
func StartStopSequence(f *Framer, cmd SeqCmd) error {
	seqByte, dataByte, err := cmd.frame()
	if err != nil {
		return err
	}
	_, err = f.Send(Write, false, seqByte, OpPatternStartStop, []byte{dataByte})
	return err
}

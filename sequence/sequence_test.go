/*
DESCRIPTION
  sequence_test.go exercises the on-the-fly and pre-stored orchestrators
  against a fake packet transport, checking the fixed command order each
  flow must issue and the LUT picture/bit indices it derives.
*/

package sequence

import (
	"testing"
	"time"

	"github.com/tidlp/dmd/protocol/dlpc900"
)

// fakeTransport records every packet written and plays back canned
// 64-byte replies, defaulting to an all-zero reply when none are queued.
type fakeTransport struct {
	written [][]byte
	replies [][]byte
}

func (f *fakeTransport) WritePacket(p []byte) error {
	cp := append([]byte(nil), p...)
	f.written = append(f.written, cp)
	return nil
}

func (f *fakeTransport) ReadPacket(time.Duration) ([]byte, error) {
	if len(f.replies) == 0 {
		return make([]byte, 64), nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func newTestHandle(dual bool) (*Handle, *fakeTransport) {
	tr := &fakeTransport{}
	f := dlpc900.NewFramerForTesting(tr, 0)
	h := NewHandle(f, DmdModel{Width: 4, Height: 1, DualController: dual}, nil)
	return h, tr
}

// opcodeOf extracts the little-endian opcode from a raw first packet.
func opcodeOf(pkt []byte) dlpc900.Opcode {
	return dlpc900.Opcode(uint16(pkt[4]) | uint16(pkt[5])<<8)
}

func TestUploadOnTheFlySingleController(t *testing.T) {
	h, tr := newTestHandle(false)

	req := OnTheFlyRequest{
		Patterns:    [][]byte{{1, 0, 1, 0}, {0, 1, 0, 1}},
		ExposureUS:  []int{105},
		DarkUS:      []int{0},
		Compression: dlpc900.CompressionERLE,
	}
	if err := h.UploadOnTheFly(req); err != nil {
		t.Fatalf("UploadOnTheFly: %v", err)
	}
	if len(tr.written) == 0 {
		t.Fatal("expected commands to be written")
	}

	// First three commands are stop, set_mode, stop.
	if opcodeOf(tr.written[0]) != dlpc900.OpPatternStartStop {
		t.Errorf("packet 0 opcode = 0x%04X, want start/stop", opcodeOf(tr.written[0]))
	}
	if opcodeOf(tr.written[1]) != dlpc900.OpDisplayMode {
		t.Errorf("packet 1 opcode = 0x%04X, want display mode", opcodeOf(tr.written[1]))
	}
	if tr.written[1][6] != byte(dlpc900.ModeOnTheFly) {
		t.Errorf("mode byte = %d, want %d", tr.written[1][6], dlpc900.ModeOnTheFly)
	}

	// At least one BMP data load must be issued, and start must appear
	// exactly once (issued by finish after the uploads and LUT resend).
	var sawStart, sawBMPData int
	for _, pkt := range tr.written {
		switch opcodeOf(pkt) {
		case dlpc900.OpBMPLoadDataPrimary:
			sawBMPData++
		case dlpc900.OpPatternStartStop:
			if pkt[1] == 0x08 {
				sawStart++
			}
		}
	}
	if sawBMPData == 0 {
		t.Error("expected at least one BMP data load command")
	}
	if sawStart != 1 {
		t.Errorf("expected exactly one start command, saw %d", sawStart)
	}
}

func TestUploadOnTheFlyRejectsUnsupportedCompression(t *testing.T) {
	h, _ := newTestHandle(false)
	req := OnTheFlyRequest{
		Patterns:    [][]byte{{1}},
		ExposureUS:  []int{105},
		DarkUS:      []int{0},
		Compression: dlpc900.CompressionRLE,
	}
	if err := h.UploadOnTheFly(req); err == nil {
		t.Fatal("expected error for non-ERLE compression")
	}
}

func TestUploadOnTheFlyRejectsEmptyPatterns(t *testing.T) {
	h, _ := newTestHandle(false)
	if err := h.UploadOnTheFly(OnTheFlyRequest{Compression: dlpc900.CompressionERLE}); err == nil {
		t.Fatal("expected error for empty pattern list")
	}
}

func TestUploadOnTheFlyDualControllerSplitsFrame(t *testing.T) {
	h, tr := newTestHandle(true)
	req := OnTheFlyRequest{
		Patterns:    [][]byte{{1, 0, 1, 0}},
		ExposureUS:  []int{105},
		DarkUS:      []int{0},
		Compression: dlpc900.CompressionERLE,
	}
	if err := h.UploadOnTheFly(req); err != nil {
		t.Fatalf("UploadOnTheFly: %v", err)
	}

	var initPrimary, initSecondary int
	for _, pkt := range tr.written {
		switch opcodeOf(pkt) {
		case dlpc900.OpBMPLoadInitPrimary:
			initPrimary++
		case dlpc900.OpBMPLoadInitSecondary:
			initSecondary++
		}
	}
	if initPrimary == 0 || initSecondary == 0 {
		t.Errorf("expected both controllers loaded, got primary=%d secondary=%d", initPrimary, initSecondary)
	}
}

func TestUploadPreStoredFraming(t *testing.T) {
	h, tr := newTestHandle(false)
	req := PreStoredRequest{
		Indices:    []int{0, 1, 2},
		ExposureUS: []int{105},
		DarkUS:     []int{0},
	}
	if err := h.UploadPreStored(req); err != nil {
		t.Fatalf("UploadPreStored: %v", err)
	}

	if opcodeOf(tr.written[1]) != dlpc900.OpDisplayMode || tr.written[1][6] != byte(dlpc900.ModePreStored) {
		t.Errorf("expected second command to set pre-stored mode, got opcode 0x%04X byte %d",
			opcodeOf(tr.written[1]), tr.written[1][6])
	}

	for _, pkt := range tr.written {
		if opcodeOf(pkt) == dlpc900.OpBMPLoadDataPrimary {
			t.Error("pre-stored upload must not issue any BMP data load")
		}
	}
}

func TestUploadPreStoredRejectsEmptyIndices(t *testing.T) {
	h, _ := newTestHandle(false)
	if err := h.UploadPreStored(PreStoredRequest{}); err == nil {
		t.Fatal("expected error for empty index list")
	}
}

func TestWarnIfBitIndexZeroMissing(t *testing.T) {
	var logged []string
	h, _ := newTestHandle(false)
	h.Logger = &captureLogger{out: &logged}

	// Picture 0 has bit indices 1 and 2 but never 0.
	warnIfBitIndexZeroMissing(h, []int{1, 2})
	if len(logged) != 1 {
		t.Fatalf("expected one warning, got %d: %v", len(logged), logged)
	}
}

func TestWarnIfBitIndexZeroMissingSilentWhenPresent(t *testing.T) {
	var logged []string
	h, _ := newTestHandle(false)
	h.Logger = &captureLogger{out: &logged}

	warnIfBitIndexZeroMissing(h, []int{0, 1, 2})
	if len(logged) != 0 {
		t.Fatalf("expected no warnings, got %v", logged)
	}
}

// captureLogger implements logging.Logger, recording formatted messages.
type captureLogger struct {
	out *[]string
}

func (c *captureLogger) SetLevel(int8) {}
func (c *captureLogger) Log(level int8, msg string, args ...interface{}) {
	*c.out = append(*c.out, msg)
}
func (c *captureLogger) Debug(msg string, args ...interface{})   {}
func (c *captureLogger) Info(msg string, args ...interface{})    {}
func (c *captureLogger) Warning(msg string, args ...interface{}) { *c.out = append(*c.out, msg) }
func (c *captureLogger) Error(msg string, args ...interface{})   {}
func (c *captureLogger) Fatal(msg string, args ...interface{})   {}

package dlpc900

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeTransport is a deterministic stand-in for *hid.Device: it records
// every packet written and plays back a queued sequence of reply packets.
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

func replyPacket(dataLen int, data []byte) []byte {
	buf := make([]byte, 64)
	buf[2] = byte(dataLen)
	buf[3] = byte(dataLen >> 8)
	copy(buf[4:], data)
	return buf
}

func TestReadErrorCode(t *testing.T) {
	tr := &fakeTransport{replies: [][]byte{replyPacket(1, []byte{3})}}
	f := newFramer(tr, 0)

	desc, code, err := ReadErrorCode(f, 1)
	if err != nil {
		t.Fatalf("ReadErrorCode: %v", err)
	}
	if code != 3 || desc != "invalid command number" {
		t.Errorf("got (%q, %d), want (%q, 3)", desc, code, "invalid command number")
	}
}

func TestReadErrorCodeUnknown(t *testing.T) {
	tr := &fakeTransport{replies: [][]byte{replyPacket(1, []byte{200})}}
	f := newFramer(tr, 0)
	desc, _, err := ReadErrorCode(f, 1)
	if err != nil {
		t.Fatalf("ReadErrorCode: %v", err)
	}
	if desc != "not defined" {
		t.Errorf("got %q, want %q", desc, "not defined")
	}
}

func TestHardwareStatus(t *testing.T) {
	tr := &fakeTransport{replies: [][]byte{replyPacket(1, []byte{0b00000101})}}
	f := newFramer(tr, 0)
	status, err := HardwareStatus(f, 1)
	if err != nil {
		t.Fatalf("HardwareStatus: %v", err)
	}
	if !status["internal initialization success"] || !status["dmd reset controller error"] {
		t.Errorf("expected bits 0 and 2 set, got %+v", status)
	}
	if status["forced swap error"] {
		t.Errorf("bit 3 should be unset, got %+v", status)
	}
}

func TestReadFirmwareVersion(t *testing.T) {
	// patch=0x0102 (lo=0x02,hi=0x01), minor=5, major=2, repeated x4.
	triple := []byte{0x02, 0x01, 5, 2}
	var data []byte
	for i := 0; i < 4; i++ {
		data = append(data, triple...)
	}
	tr := &fakeTransport{replies: [][]byte{replyPacket(16, data)}}
	f := newFramer(tr, 0)

	v, err := ReadFirmwareVersion(f, 1)
	if err != nil {
		t.Fatalf("ReadFirmwareVersion: %v", err)
	}
	want := VersionTriple{Major: 2, Minor: 5, Patch: 0x0102}
	if v.App != want {
		t.Errorf("App = %+v, want %+v", v.App, want)
	}
	if v.App.String() != "2.5.258" {
		t.Errorf("String() = %q, want %q", v.App.String(), "2.5.258")
	}
}

func TestSetTrigOutValidation(t *testing.T) {
	tr := &fakeTransport{}
	f := newFramer(tr, 0)

	if err := SetTrigOut1(f, 1, false, 30000, 0); err == nil {
		t.Error("expected error for out-of-range rising delay")
	}
	if err := SetTrigOut1(f, 1, true, 0, 100); err == nil {
		t.Error("expected error: inverted trigger requires rising >= falling")
	}
	if err := SetTrigOut1(f, 1, false, 100, 50); err != nil {
		t.Errorf("unexpected error for valid params: %v", err)
	}
}

func TestSetTrigIn1Validation(t *testing.T) {
	tr := &fakeTransport{}
	f := newFramer(tr, 0)
	if err := SetTrigIn1(f, 1, 50, RisingEdge); err == nil {
		t.Error("expected error for delay below minimum")
	}
	if err := SetTrigIn1(f, 1, 105, RisingEdge); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestLutEntrySerializeE6 is scenario E6 from the spec.
func TestLutEntrySerializeE6(t *testing.T) {
	e := LutEntry{
		SequencePosition: 0,
		ExposureUS:       105,
		DarkUS:           0,
		WaitForTrigger:   true,
		ClearAfterTrigger: false,
		StoredImageIndex: 0,
		StoredBitIndex:   0,
	}
	got := e.Serialize()
	want := []byte{0x00, 0x00, 0x69, 0x00, 0x00, 0b0000_1001, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !cmp.Equal(got, want) {
		t.Errorf("Serialize() = %v, want %v", got, want)
	}
}

func TestLutEntryValidate(t *testing.T) {
	e := LutEntry{ExposureUS: 50}
	if err := e.Validate(); err == nil {
		t.Error("expected validation error for exposure below minimum")
	}
	e2 := LutEntry{ExposureUS: 105, SequencePosition: 512}
	if err := e2.Validate(); err == nil {
		t.Error("expected validation error for sequence position out of range")
	}
}

func TestPicBitIndex(t *testing.T) {
	cases := []struct {
		i, pic, bit int
	}{
		{0, 0, 0},
		{23, 0, 23},
		{24, 1, 0},
		{29, 1, 5},
	}
	for _, c := range cases {
		pic, bit := PicBitIndex(c.i)
		if pic != c.pic || bit != c.bit {
			t.Errorf("PicBitIndex(%d) = (%d,%d), want (%d,%d)", c.i, pic, bit, c.pic, c.bit)
		}
	}
}

func TestStartStopSequenceFraming(t *testing.T) {
	tr := &fakeTransport{}
	f := newFramer(tr, 0)
	if err := StartStopSequence(f, SeqStart); err != nil {
		t.Fatalf("StartStopSequence: %v", err)
	}
	if len(tr.written) != 1 {
		t.Fatalf("got %d packets written, want 1", len(tr.written))
	}
	pkt := tr.written[0]
	if pkt[1] != 0x08 {
		t.Errorf("sequence byte = 0x%02X, want 0x08", pkt[1])
	}
	if pkt[6] != 0x02 {
		t.Errorf("data byte = 0x%02X, want 0x02", pkt[6])
	}
}

func TestLoadBMPDataChunking(t *testing.T) {
	tr := &fakeTransport{}
	f := newFramer(tr, 0)
	compressed := make([]byte, 1000)
	for i := range compressed {
		compressed[i] = byte(i)
	}
	if err := LoadBMPData(f, 1, Primary, 960, 540, CompressionERLE, compressed); err != nil {
		t.Fatalf("LoadBMPData: %v", err)
	}
	stream := bmpHeader(960, 540, len(compressed), CompressionERLE)
	stream = append(stream, compressed...)
	wantChunks := (len(stream) + maxCmdPayload - 1) / maxCmdPayload
	if len(tr.written) < wantChunks {
		t.Errorf("expected at least %d commands issued for %d chunks, wrote %d packets", wantChunks, wantChunks, len(tr.written))
	}
}

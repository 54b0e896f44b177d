package dlpc900

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tidlp/dmd/protocol/hid"
)

func TestSplitPacketsSinglePacket(t *testing.T) {
	stream := make([]byte, headerSize+10)
	packets := splitPackets(stream)
	if len(packets) != 1 {
		t.Fatalf("got %d packets, want 1", len(packets))
	}
	if len(packets[0]) != hid.PacketSize {
		t.Errorf("packet length = %d, want %d", len(packets[0]), hid.PacketSize)
	}
}

func TestSplitPacketsContinuation(t *testing.T) {
	payload := make([]byte, 200)
	for i := range payload {
		payload[i] = byte(i)
	}
	stream := make([]byte, headerSize+len(payload))
	copy(stream[headerSize:], payload)

	packets := splitPackets(stream)
	want := PacketCount(len(payload))
	if len(packets) != want {
		t.Fatalf("got %d packets, want %d", len(packets), want)
	}
	for i, p := range packets {
		if len(p) != hid.PacketSize {
			t.Errorf("packet %d length = %d, want %d", i, len(p), hid.PacketSize)
		}
	}
	for i := 1; i < len(packets); i++ {
		if packets[i][0] != byte(i) {
			t.Errorf("packet %d marker = %d, want %d", i, packets[i][0], i)
		}
	}

	// Reassemble the logical stream from the packets and confirm it
	// matches the original header+payload, modulo trailing zero padding.
	var flat []byte
	flat = append(flat, packets[0]...)
	for _, p := range packets[1:] {
		flat = append(flat, p[1:]...)
	}
	if !cmp.Equal(flat[:len(stream)], stream) {
		t.Errorf("reassembled stream does not match original")
	}
}

func TestPacketCount(t *testing.T) {
	cases := []struct {
		payloadLen int
		want       int
	}{
		{0, 1},
		{58, 1},
		{59, 2},
		{121, 2},
		{122, 3},
	}
	for _, c := range cases {
		got := PacketCount(c.payloadLen)
		if got != c.want {
			t.Errorf("PacketCount(%d) = %d, want %d", c.payloadLen, got, c.want)
		}
	}
}

func TestDecodeResponse(t *testing.T) {
	buf := make([]byte, hid.PacketSize)
	buf[0] = flagReadTransaction
	buf[1] = 7
	buf[2] = 3
	buf[3] = 0
	buf[4] = 0xAA
	buf[5] = 0xBB
	buf[6] = 0xCC

	resp, err := DecodeResponse(buf)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if resp.Sequence != 7 || resp.ReadBit != true || resp.Error != false {
		t.Errorf("unexpected header fields: %+v", resp)
	}
	want := []byte{0xAA, 0xBB, 0xCC}
	if !cmp.Equal(resp.Data, want) {
		t.Errorf("Data = %v, want %v", resp.Data, want)
	}
}

func TestDecodeResponseMultiPacket(t *testing.T) {
	first := make([]byte, hid.PacketSize)
	first[2] = 70 // length = 60 (rest of first packet) + 10 (second packet)
	second := make([]byte, hid.PacketSize)
	for i := range second {
		second[i] = byte(i)
	}
	buf := append(append([]byte{}, first...), second...)

	resp, err := DecodeResponse(buf)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if len(resp.Data) != 70 {
		t.Fatalf("got %d data bytes, want 70", len(resp.Data))
	}
	if !cmp.Equal(resp.Data[60:], second[:10]) {
		t.Errorf("continuation payload mismatch: %v", resp.Data[60:])
	}
}

func TestDecodeResponseTruncated(t *testing.T) {
	buf := []byte{0, 0, 5, 0, 1}
	if _, err := DecodeResponse(buf); err == nil {
		t.Fatal("expected error for declared length exceeding buffer")
	}
}

/*
DESCRIPTION
  codec_test.go exercises the length codec, 24-plane combine/split, and the
  ERLE/RLE encode+decode round trip against the end-to-end scenarios and
  invariants of the pattern codec.
*/

package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLenToBytes(t *testing.T) {
	cases := []struct {
		n    int
		want []byte
	}{
		{5, []byte{5}},
		{200, []byte{0xC8, 0x01}},
		{32767, []byte{0xFF, 0xFF}},
		{127, []byte{127}},
		{128, []byte{0x80, 0x01}},
		{0, []byte{0}},
	}
	for _, c := range cases {
		got, err := lenToBytes(c.n)
		if err != nil {
			t.Fatalf("lenToBytes(%d): unexpected error: %v", c.n, err)
		}
		if !cmp.Equal(got, c.want) {
			t.Errorf("lenToBytes(%d) = %v, want %v", c.n, got, c.want)
		}
	}
}

func TestLenToBytesOutOfRange(t *testing.T) {
	for _, n := range []int{-1, 32768} {
		if _, err := lenToBytes(n); err == nil {
			t.Errorf("lenToBytes(%d): expected error, got nil", n)
		}
	}
}

func TestLenRoundTrip(t *testing.T) {
	for n := 0; n <= MaxRunLength; n += 37 {
		b, err := lenToBytes(n)
		if err != nil {
			t.Fatalf("lenToBytes(%d): %v", n, err)
		}
		if (n < 128) != (len(b) == 1) {
			t.Errorf("lenToBytes(%d): one-byte form should hold iff n < 128", n)
		}
		got, err := bytesToLen(b)
		if err != nil {
			t.Fatalf("bytesToLen(%v): %v", b, err)
		}
		if got != n {
			t.Errorf("bytesToLen(lenToBytes(%d)) = %d", n, got)
		}
	}
}

func onesPattern(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = 1
	}
	return p
}

func TestCombineSplitRoundTrip(t *testing.T) {
	const h, w = 3, 2
	var patterns [][]byte
	for i := 0; i < 30; i++ {
		p := make([]byte, h*w)
		for j := range p {
			if (i+j)%2 == 0 {
				p[j] = 1
			}
		}
		patterns = append(patterns, p)
	}

	frames, err := Combine(patterns, h, w)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("Combine produced %d frames, want 2", len(frames))
	}

	var recovered [][]byte
	for _, f := range frames {
		split := Split(f)
		recovered = append(recovered, split[:]...)
	}

	for i, want := range patterns {
		if !cmp.Equal(recovered[i], want) {
			t.Errorf("pattern %d: got %v, want %v", i, recovered[i], want)
		}
	}
	for i := len(patterns); i < len(recovered); i++ {
		for _, v := range recovered[i] {
			if v != 0 {
				t.Errorf("padding pattern %d should be all zero, got %v", i, recovered[i])
			}
		}
	}
}

// TestCombine25Ones is scenario E4: 25 all-ones 1x1 patterns combine into
// two frames; the first has all 24 bits set in every plane and the second
// has only bit 0 of the B plane set (the 25th pattern).
func TestCombine25Ones(t *testing.T) {
	patterns := make([][]byte, 25)
	for i := range patterns {
		patterns[i] = []byte{1}
	}
	frames, err := Combine(patterns, 1, 1)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	f0, f1 := frames[0], frames[1]
	for p := 0; p < 3; p++ {
		if f0.Planes[p][0] != 0xFF {
			t.Errorf("frame 0 plane %d = 0x%02X, want 0xFF", p, f0.Planes[p][0])
		}
	}
	if f1.Planes[PlaneB][0] != 0x01 || f1.Planes[PlaneG][0] != 0 || f1.Planes[PlaneR][0] != 0 {
		t.Errorf("frame 1 planes = R:%02X G:%02X B:%02X, want R:00 G:00 B:01",
			f1.Planes[PlaneR][0], f1.Planes[PlaneG][0], f1.Planes[PlaneB][0])
	}
}

func TestCombinedFrameSplitColumns(t *testing.T) {
	patterns := [][]byte{{1, 0, 1, 0}} // 1x4
	frames, err := Combine(patterns, 1, 4)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	left, right, err := frames[0].SplitColumns()
	if err != nil {
		t.Fatalf("SplitColumns: %v", err)
	}
	if left.Width != 2 || right.Width != 2 {
		t.Fatalf("left/right width = %d/%d, want 2/2", left.Width, right.Width)
	}
	wantLeftB := byte(1)<<0 | byte(0)<<1
	wantRightB := byte(1)<<0 | byte(0)<<1
	if left.Planes[PlaneB][0] != wantLeftB {
		t.Errorf("left B plane = %08b, want %08b", left.Planes[PlaneB][0], wantLeftB)
	}
	if right.Planes[PlaneB][0] != wantRightB {
		t.Errorf("right B plane = %08b, want %08b", right.Planes[PlaneB][0], wantRightB)
	}
}

func TestCombineRejectsNonBinary(t *testing.T) {
	_, err := Combine([][]byte{{0, 2, 1}}, 1, 3)
	if err == nil {
		t.Fatal("expected error for non-binary pattern value")
	}
}

// TestEncodeERLEScenario1 is scenario E1 from the spec.
func TestEncodeERLEScenario1(t *testing.T) {
	row := []byte{0, 0, 0, 0, 1, 1}
	got, err := EncodeERLE([][]byte{row}, 1, 6)
	if err != nil {
		t.Fatalf("EncodeERLE: %v", err)
	}
	want := []byte{4, 0, 0, 0, 2, 0, 0, 1, 0x00, 0x01, 0x00}
	if !cmp.Equal(got, want) {
		t.Errorf("EncodeERLE(E1) = %v, want %v", got, want)
	}
}

// TestEncodeERLEScenario2 is scenario E2: two identical rows, W=200.
func TestEncodeERLEScenario2(t *testing.T) {
	pattern := make([]byte, 2*200)
	got, err := EncodeERLE([][]byte{pattern}, 2, 200)
	if err != nil {
		t.Fatalf("EncodeERLE: %v", err)
	}
	// First row: one run of 200 zero pixels. Second row: row-copy.
	wantSecondRow := []byte{0x00, 0x01, 0xC8, 0x01}
	if len(got) < len(wantSecondRow) {
		t.Fatalf("encoded pattern too short: %v", got)
	}
	tail := got[len(got)-len(wantSecondRow)-len(erleImageEnd):][:len(wantSecondRow)]
	if !cmp.Equal(tail, wantSecondRow) {
		t.Errorf("second row encoding = %v, want %v", tail, wantSecondRow)
	}
}

func TestEncodeDecodeERLERoundTrip(t *testing.T) {
	const h, w = 8, 37
	rgb := randomRGB(h, w, 1)
	encoded, err := EncodeERLE([][]byte{rgb[0], rgb[1], rgb[2]}, h, w)
	if err != nil {
		t.Fatalf("EncodeERLE: %v", err)
	}
	decoded, err := Decode(encoded, h, w)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for p := 0; p < 3; p++ {
		if !cmp.Equal(decoded[p], rgb[p]) {
			t.Errorf("plane %d mismatch after round trip", p)
		}
	}
}

func TestEncodeDecodeRLERoundTrip(t *testing.T) {
	const h, w = 6, 19
	rgb := randomRGB(h, w, 7)
	encoded, err := EncodeRLE([][]byte{rgb[0], rgb[1], rgb[2]}, h, w)
	if err != nil {
		t.Fatalf("EncodeRLE: %v", err)
	}
	decoded, err := Decode(encoded, h, w)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for p := 0; p < 3; p++ {
		if !cmp.Equal(decoded[p], rgb[p]) {
			t.Errorf("plane %d mismatch after round trip", p)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode([]byte{5, 1, 2, 3}, 2, 10)
	if err == nil {
		t.Fatal("expected Truncated error for incomplete stream")
	}
}

// randomRGB builds a deterministic, non-random (despite the name) 3-plane
// image with repeated runs and row copies so encode/decode exercise every
// control path.
func randomRGB(h, w int, seed byte) [3][]byte {
	var rgb [3][]byte
	for p := 0; p < 3; p++ {
		plane := make([]byte, h*w)
		for row := 0; row < h; row++ {
			if row%3 == 1 {
				copy(plane[row*w:(row+1)*w], plane[(row-1)*w:row*w])
				continue
			}
			for col := 0; col < w; col++ {
				v := byte((int(seed) + row*3 + col/4) % 5)
				plane[row*w+col] = v
			}
		}
		rgb[p] = plane
	}
	return rgb
}

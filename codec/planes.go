/*
DESCRIPTION
  planes.go implements the 24-plane combine/split used to fold up to 24
  binary DMD patterns into a single 3 x H x W RGB image (and back).
*/

package codec

import "github.com/pkg/errors"

// patternsPerFrame is the number of binary patterns that fit in one
// combined RGB frame, eight per color plane.
const patternsPerFrame = 24

// CombinedFrame is a 3 x H x W byte image: plane 0 is R, plane 1 is G,
// plane 2 is B, matching the DLPC900's BMP pattern memory layout.
type CombinedFrame struct {
	Height, Width int
	// Planes holds exactly 3 row-major H*W byte slices, indexed
	// PlaneR, PlaneG, PlaneB.
	Planes [3][]byte
}

// Plane indices into CombinedFrame.Planes.
const (
	PlaneR = 0
	PlaneG = 1
	PlaneB = 2
)

func newCombinedFrame(h, w int) *CombinedFrame {
	f := &CombinedFrame{Height: h, Width: w}
	for i := range f.Planes {
		f.Planes[i] = make([]byte, h*w)
	}
	return f
}

// at returns pixel (row, col) of plane p.
func (f *CombinedFrame) at(p, row, col int) byte { return f.Planes[p][row*f.Width+col] }

func (f *CombinedFrame) set(p, row, col int, v byte) { f.Planes[p][row*f.Width+col] = v }

// Combine folds H x W binary patterns (each byte 0 or 1), 24 per frame,
// into ceil(len(patterns)/24) CombinedFrame images. Pattern i within a frame
// contributes bit (i mod 8) of plane B for i in [0,8), G for [8,16), R
// for [16,24); missing patterns at the tail contribute zero bits.
func Combine(patterns [][]byte, h, w int) ([]*CombinedFrame, error) {
	for i, p := range patterns {
		if len(p) != h*w {
			return nil, errors.Errorf("codec: pattern %d has %d bytes, want %d", i, len(p), h*w)
		}
		for _, v := range p {
			if v != 0 && v != 1 {
				return nil, errors.Errorf("codec: pattern %d has non-binary value %d", i, v)
			}
		}
	}

	n := len(patterns)
	nFrames := (n + patternsPerFrame - 1) / patternsPerFrame
	frames := make([]*CombinedFrame, nFrames)
	for fi := range frames {
		frame := newCombinedFrame(h, w)
		base := fi * patternsPerFrame
		count := patternsPerFrame
		if base+count > n {
			count = n - base
		}
		for i := 0; i < count; i++ {
			pat := patterns[base+i]
			plane, bit := planeAndBit(i)
			for idx, v := range pat {
				if v == 1 {
					frame.Planes[plane][idx] |= 1 << uint(bit)
				}
			}
		}
		frames[fi] = frame
	}
	return frames, nil
}

// planeAndBit maps a pattern offset within a combined frame (0..23) to
// its (plane, bit) position: B holds 0..7, G holds 8..15, R holds 16..23.
func planeAndBit(i int) (plane, bit int) {
	switch {
	case i < 8:
		return PlaneB, i
	case i < 16:
		return PlaneG, i - 8
	default:
		return PlaneR, i - 16
	}
}

// SplitColumns divides a combined frame into left and right halves along
// the column axis, for dual-controller DMDs where each IC owns half the
// columns. Width must be even.
func (f *CombinedFrame) SplitColumns() (left, right *CombinedFrame, err error) {
	if f.Width%2 != 0 {
		return nil, nil, errors.Errorf("codec: cannot split odd width %d into columns", f.Width)
	}
	half := f.Width / 2
	left = newCombinedFrame(f.Height, half)
	right = newCombinedFrame(f.Height, half)
	for p := 0; p < 3; p++ {
		for row := 0; row < f.Height; row++ {
			src := f.Planes[p][row*f.Width : (row+1)*f.Width]
			copy(left.Planes[p][row*half:(row+1)*half], src[:half])
			copy(right.Planes[p][row*half:(row+1)*half], src[half:])
		}
	}
	return left, right, nil
}

// Split is the exact inverse of Combine: it recovers up to 24 binary
// patterns from one combined frame. The caller truncates the result to
// the number of patterns it actually packed; entries beyond that are
// all-zero padding.
func Split(f *CombinedFrame) [24][]byte {
	var out [24][]byte
	for i := 0; i < patternsPerFrame; i++ {
		plane, bit := planeAndBit(i)
		pat := make([]byte, f.Height*f.Width)
		mask := byte(1) << uint(bit)
		src := f.Planes[plane]
		for idx, v := range src {
			pat[idx] = (v & mask) >> uint(bit)
		}
		out[i] = pat
	}
	return out
}

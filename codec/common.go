/*
DESCRIPTION
  common.go holds pixel-row helpers shared by the ERLE and RLE encoders.
*/

package codec

import "github.com/pkg/errors"

// rgbPixel is one (r,g,b) triple.
type rgbPixel [3]byte

// normalizeRGB accepts either a 3-plane RGB image or a single-plane binary
// pattern (promoted to (0,0,pattern)) and returns the three H*W planes in
// R,G,B order.
func normalizeRGB(image [][]byte, h, w int) ([3][]byte, error) {
	var rgb [3][]byte
	switch len(image) {
	case 3:
		for i, p := range image {
			if len(p) != h*w {
				return rgb, errors.Errorf("codec: plane %d has %d bytes, want %d", i, len(p), h*w)
			}
			rgb[i] = p
		}
	case 1:
		if len(image[0]) != h*w {
			return rgb, errors.Errorf("codec: pattern has %d bytes, want %d", len(image[0]), h*w)
		}
		rgb[0] = make([]byte, h*w)
		rgb[1] = make([]byte, h*w)
		rgb[2] = image[0]
	default:
		return rgb, errors.Errorf("codec: image must have 1 or 3 planes, got %d", len(image))
	}
	return rgb, nil
}

// pixel returns the (r,g,b) triple at (row, col) in a w-wide image.
func pixel(rgb [3][]byte, row, col, w int) rgbPixel {
	idx := row*w + col
	return rgbPixel{rgb[0][idx], rgb[1][idx], rgb[2][idx]}
}

// rowEqual reports whether rows a and b of rgb (w wide) are byte-identical.
func rowEqual(rgb [3][]byte, a, b, w int) bool {
	for col := 0; col < w; col++ {
		if pixel(rgb, a, col, w) != pixel(rgb, b, col, w) {
			return false
		}
	}
	return true
}

// run describes one constant-color run within a row.
type run struct {
	length  int
	r, g, b byte
}

// rowRuns identifies change points along row of rgb (w wide) and returns
// the runs of constant (r,g,b) triples that make it up.
func rowRuns(rgb [3][]byte, row, w int) []run {
	var runs []run
	start := 0
	cur := pixel(rgb, row, 0, w)
	for col := 1; col < w; col++ {
		p := pixel(rgb, row, col, w)
		if p != cur {
			runs = append(runs, run{length: col - start, r: cur[0], g: cur[1], b: cur[2]})
			start = col
			cur = p
		}
	}
	runs = append(runs, run{length: w - start, r: cur[0], g: cur[1], b: cur[2]})
	return runs
}

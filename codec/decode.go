/*
DESCRIPTION
  decode.go implements the shared ERLE/RLE decoder. Both encodings share
  the same control-byte grammar except for their terminators and the
  1-byte-only run lengths of plain RLE; Decode handles both.
*/

package codec

import "github.com/pkg/errors"

// ErrTruncated is returned when a pattern stream ends before producing
// the target number of rows, or without a valid terminator.
var ErrTruncated = errors.New("codec: truncated pattern stream")

// Decode reconstructs a 3 x H x W RGB image from an ERLE- or RLE-encoded
// byte stream. It accepts either encoding since the control-byte grammar
// is a superset covering both.
func Decode(data []byte, h, w int) ([3][]byte, error) {
	var out [3][]byte
	for i := range out {
		out[i] = make([]byte, 0, h*w)
	}

	line := newLineBuf(w)
	linesDone := 0
	i := 0

	flush := func() {
		for p := 0; p < 3; p++ {
			out[p] = append(out[p], line.planes[p]...)
		}
		linesDone++
		line = newLineBuf(w)
	}

	for i < len(data) {
		if line.pos == w {
			flush()
		} else if line.pos > w {
			return out, errors.Errorf("codec: line %d overflowed width %d", linesDone, w)
		}

		if i == len(data)-1 {
			if data[i] == 0 {
				i++
				break
			}
			return out, errors.Wrapf(ErrTruncated, "stream ends mid-control at byte %d", i)
		}

		if data[i] == 0 {
			switch {
			case data[i+1] == 0:
				// End-of-line marker (RLE) or tolerated no-op (ERLE).
				i += 2
			case data[i+1] == 1:
				n, consumed, err := readLen(data, i+2)
				if err != nil {
					return out, err
				}
				if n > 0 {
					if linesDone == 0 {
						return out, errors.New("codec: row-copy references nonexistent previous row")
					}
					prevPlanes := rowWindow(out, linesDone-1, w)
					for p := 0; p < 3; p++ {
						copy(line.planes[p][line.pos:line.pos+n], prevPlanes[p][line.pos:line.pos+n])
					}
				}
				line.pos += n
				i = i + 2 + consumed
			default:
				n, consumed, err := readLenAt(data, i+1)
				if err != nil {
					return out, err
				}
				base := i + 1 + consumed
				need := base + 3*n
				if need > len(data) {
					return out, errors.Wrap(ErrTruncated, "codec: uncompressed run overruns stream")
				}
				for j := 0; j < n; j++ {
					r, g, b := data[base+3*j], data[base+3*j+1], data[base+3*j+2]
					line.planes[0][line.pos+j] = r
					line.planes[1][line.pos+j] = g
					line.planes[2][line.pos+j] = b
				}
				line.pos += n
				i = need
			}
			continue
		}

		n, consumed, err := readLenAt(data, i)
		if err != nil {
			return out, err
		}
		base := i + consumed
		if base+3 > len(data) {
			return out, errors.Wrap(ErrTruncated, "codec: repeat run missing RGB value")
		}
		r, g, b := data[base], data[base+1], data[base+2]
		for j := 0; j < n; j++ {
			line.planes[0][line.pos+j] = r
			line.planes[1][line.pos+j] = g
			line.planes[2][line.pos+j] = b
		}
		line.pos += n
		i = base + 3
	}

	if line.pos == w {
		flush()
	}

	if linesDone != h {
		return out, errors.Wrapf(ErrTruncated, "produced %d of %d rows", linesDone, h)
	}
	return out, nil
}

// lineBuf accumulates one row (3 x W) as it is decoded.
type lineBuf struct {
	planes [3][]byte
	pos    int
}

func newLineBuf(w int) *lineBuf {
	return &lineBuf{planes: [3][]byte{make([]byte, w), make([]byte, w), make([]byte, w)}}
}

// rowWindow returns the three planes' row `row` as W-length slices.
func rowWindow(out [3][]byte, row, w int) [3][]byte {
	var r [3][]byte
	for p := 0; p < 3; p++ {
		r[p] = out[p][row*w : row*w+w]
	}
	return r
}

// readLen reads a length at offset off using the high-bit discriminator,
// returning the value and the number of bytes consumed starting at off.
// It is identical to readLenAt; kept as a distinct name at call sites
// that read a row-copy length, for readability.
func readLen(data []byte, off int) (n, consumed int, err error) {
	return readLenAt(data, off)
}

func readLenAt(data []byte, off int) (n, consumed int, err error) {
	if off >= len(data) {
		return 0, 0, errors.Wrap(ErrTruncated, "codec: length byte missing")
	}
	if !isTwoByteLen(data[off]) {
		return int(data[off]), 1, nil
	}
	if off+1 >= len(data) {
		return 0, 0, errors.Wrap(ErrTruncated, "codec: two-byte length missing msb")
	}
	v, err := bytesToLen(data[off : off+2])
	if err != nil {
		return 0, 0, err
	}
	return v, 2, nil
}

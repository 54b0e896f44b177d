/*
DESCRIPTION
  erle.go implements the DLPC900 enhanced run-length encoder.

  Control-byte grammar (see decode.go for the matching decoder):

    byte1  byte2      byte3+        meaning
    0      0          --            no-op (skipped by Decode)
    0      1          n (1/2 byte)  copy n pixels from previous row, same column
    0      n>1        n RGB triples n uncompressed pixels
    n>1    --         r,g,b         repeat (r,g,b) n times

  The image ends with 0,1,0 (a zero-length row-copy), see erleImageEnd.
*/

package codec

import "github.com/pkg/errors"

// erleImageEnd terminates every ERLE-encoded image.
var erleImageEnd = []byte{0x00, 0x01, 0x00}

// EncodeERLE compresses a 3 x H x W byte image using enhanced run-length
// encoding. A 1 x H x W image is treated as (0, 0, pattern), promoting a
// single-plane binary pattern to RGB with R=G=0.
func EncodeERLE(image [][]byte, h, w int) ([]byte, error) {
	rgb, err := normalizeRGB(image, h, w)
	if err != nil {
		return nil, errors.Wrap(err, "codec: EncodeERLE")
	}

	var out []byte
	for row := 0; row < h; row++ {
		if row > 0 && rowEqual(rgb, row, row-1, w) {
			lb, err := lenToBytes(w)
			if err != nil {
				return nil, err
			}
			out = append(out, 0x00, 0x01)
			out = append(out, lb...)
			continue
		}

		for _, r := range rowRuns(rgb, row, w) {
			lb, err := lenToBytes(r.length)
			if err != nil {
				return nil, err
			}
			out = append(out, lb...)
			out = append(out, r.r, r.g, r.b)
		}
	}
	out = append(out, erleImageEnd...)
	return out, nil
}

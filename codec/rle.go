/*
DESCRIPTION
  rle.go implements the DLPC900 plain run-length encoder.

  Control-byte grammar:

    byte1  byte2  byte3+        meaning
    0      0      --            end of line
    0      1      n (1/2 byte)  copy n pixels from previous row (row-copy)
    0      n>=2   --            n uncompressed RGB pixels follow
    n>0    --     r,g,b         repeat following RGB pixel n times

  EncodeRLE emits only row-copy and repeat groups, and ends the image
  with a single 0x00 byte.

  Run lengths are capped at one byte (255); longer runs are chopped into
  255-pixel chunks, each its own [L, r, g, b] control group.
*/

package codec

import "github.com/pkg/errors"

const maxRLERun = 255

// EncodeRLE compresses a 3 x H x W byte image using plain run-length
// encoding. A 1 x H x W image is promoted to RGB with R=G=0, as in
// EncodeERLE.
func EncodeRLE(image [][]byte, h, w int) ([]byte, error) {
	rgb, err := normalizeRGB(image, h, w)
	if err != nil {
		return nil, errors.Wrap(err, "codec: EncodeRLE")
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
			rem := r.length
			for rem > 0 {
				chunk := rem
				if chunk > maxRLERun {
					chunk = maxRLERun
				}
				out = append(out, byte(chunk), r.r, r.g, r.b)
				rem -= chunk
			}
		}
	}
	out = append(out, 0x00)
	return out, nil
}

/*
DESCRIPTION
  length.go implements the 1/2-byte length encoding shared by the ERLE and
  RLE pattern streams.
*/

// Package codec implements the DLPC900 pattern codec: the ERLE/RLE
// run-length compressor and its inverse, and the 24-plane bit packing
// used to fold up to 24 binary patterns into one RGB image.
package codec

import "github.com/pkg/errors"

// MaxRunLength is the largest length encodable by lenToBytes/bytesToLen.
const MaxRunLength = 1<<15 - 1

// ErrOutOfRange is returned when a length falls outside [0, MaxRunLength].
var ErrOutOfRange = errors.New("codec: length out of range")

// lenToBytes encodes n as a one-byte form (n < 128) or a two-byte form
// (lsb, msb) with the high bit of lsb set to mark the two-byte case.
func lenToBytes(n int) ([]byte, error) {
	if n < 0 || n > MaxRunLength {
		return nil, errors.Wrapf(ErrOutOfRange, "length %d", n)
	}
	if n < 128 {
		return []byte{byte(n)}, nil
	}
	lsb := byte(n&0x7F) | 0x80
	msb := byte(n >> 7)
	return []byte{lsb, msb}, nil
}

// bytesToLen is the inverse of lenToBytes. b must be one or two bytes; the
// high bit of b[0] selects the two-byte form.
func bytesToLen(b []byte) (int, error) {
	switch len(b) {
	case 1:
		if b[0]&0x80 != 0 {
			return 0, errors.New("codec: single-byte length has high bit set")
		}
		return int(b[0]), nil
	case 2:
		lsb, msb := b[0], b[1]
		if lsb&0x80 == 0 {
			return 0, errors.New("codec: two-byte length missing high-bit discriminator")
		}
		return int(msb)<<7 + int(lsb&0x7F), nil
	default:
		return 0, errors.Errorf("codec: length bytes must be 1 or 2, got %d", len(b))
	}
}

// isTwoByteLen reports whether the high bit of b is set, the discriminator
// that marks a length as spanning two bytes in the ERLE/RLE grammar.
func isTwoByteLen(b byte) bool { return b&0x80 != 0 }

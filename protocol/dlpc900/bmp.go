/*
DESCRIPTION
  bmp.go wraps the two-step BMP pattern load: init declares the pattern
  index and byte length, data streams a 48-byte header plus the
  compressed payload in chunks no larger than maxCmdPayload bytes, each
  prefixed with its own 2-byte length field.
*/

package dlpc900

import (
	"encoding/binary"

	"github.com/tidlp/dmd/dmderr"
)

// maxCmdPayload is the largest payload the driver packs into a single
// BMP load data command; the compressed pattern is split into chunks of
// at most this many bytes, each issued as its own command.
const maxCmdPayload = 504

// bmpSignature is the 4-byte magic at the start of every BMP load header.
var bmpSignature = [4]byte{0x53, 0x70, 0x6C, 0x64}

// Controller selects which DMD controller a BMP load targets. Dual-DMD
// models (DLP9000) split a combined frame into a primary and secondary
// half, each loaded independently.
type Controller int

const (
	Primary Controller = iota
	Secondary
)

func bmpOpcodes(c Controller) (initOp, dataOp Opcode) {
	if c == Secondary {
		return OpBMPLoadInitSecondary, OpBMPLoadDataSecondary
	}
	return OpBMPLoadInitPrimary, OpBMPLoadDataPrimary
}

// InitBMPLoad announces an upcoming BMP load of patternByteLength bytes
// at patternIndex.
func InitBMPLoad(f *Framer, seq byte, c Controller, patternIndex, patternByteLength int) error {
	initOp, _ := bmpOpcodes(c)
	payload := make([]byte, 6)
	binary.LittleEndian.PutUint16(payload[0:2], uint16(patternIndex))
	binary.LittleEndian.PutUint32(payload[2:6], uint32(patternByteLength))
	_, err := f.Send(Write, true, seq, initOp, payload)
	return err
}

// CompressionTag is the BMP header's compression-mode byte.
type CompressionTag byte

const (
	CompressionNone CompressionTag = 0x00
	CompressionRLE  CompressionTag = 0x01
	CompressionERLE CompressionTag = 0x02
)

// bmpHeader builds the 48-byte header preceding a compressed pattern's
// data, per the DLPC900 BMP load format: signature, width, height,
// encoded byte count, 8 reserved 0xFF bytes, a 4-byte black background
// color, a bit-depth byte, the compression tag, and trailing reserved
// bytes.
func bmpHeader(width, height, encodedLen int, tag CompressionTag) []byte {
	h := make([]byte, 48)
	copy(h[0:4], bmpSignature[:])
	binary.LittleEndian.PutUint16(h[4:6], uint16(width))
	binary.LittleEndian.PutUint16(h[6:8], uint16(height))
	binary.LittleEndian.PutUint32(h[8:12], uint32(encodedLen))
	for i := 12; i < 20; i++ {
		h[i] = 0xFF
	}
	h[24] = 0x01
	h[25] = byte(tag)
	h[26] = 0x01
	h[29] = 0x01
	return h
}

// LoadBMPData streams a compressed pattern's 48-byte header followed by
// its payload, split into command chunks of at most maxCmdPayload bytes,
// each prefixed with its own 2-byte chunk-length field.
func LoadBMPData(f *Framer, seq byte, c Controller, width, height int, tag CompressionTag, compressed []byte) error {
	_, dataOp := bmpOpcodes(c)
	stream := append(bmpHeader(width, height, len(compressed), tag), compressed...)

	for off := 0; off < len(stream); off += maxCmdPayload {
		end := off + maxCmdPayload
		if end > len(stream) {
			end = len(stream)
		}
		chunk := stream[off:end]
		payload := make([]byte, 2+len(chunk))
		binary.LittleEndian.PutUint16(payload[0:2], uint16(len(chunk)))
		copy(payload[2:], chunk)

		if _, err := f.Send(Write, true, seq, dataOp, payload); err != nil {
			return dmderr.Wrap(dmderr.TransportIO, err, "bmp load data chunk at offset %d", off)
		}
	}
	return nil
}

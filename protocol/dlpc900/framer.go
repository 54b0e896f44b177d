/*
DESCRIPTION
  framer.go assembles DLPC900 commands into 64-byte HID packets and
  reassembles replies. A command is a flag byte, a caller-assigned
  sequence byte (echoed back by the device), a little-endian payload
  length (including the two opcode bytes), the little-endian opcode, and
  the payload itself.

  Payloads that don't fit in the 58 bytes left in the first packet spill
  into continuation packets: each continuation packet's first byte is a
  monotonically increasing continuation marker, its remaining 63 bytes
  are raw payload continuation. The host zero-pads the final packet.

  Replies reassemble the mirror way: the framer reads back one packet
  per packet it sent, and concatenates them verbatim. The first reply
  packet carries the flag byte, echoed sequence byte, and a length
  field in its first four bytes, with payload following at offset 4;
  every subsequent packet contributes 64 more raw payload bytes.
*/

package dlpc900

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"

	"github.com/tidlp/dmd/protocol/hid"
)

// Flag byte bits, MSB to LSB: bit7 = read transaction, bit6 = reply
// requested, bit5 = device-flagged error. Bits 4..0 are reserved zero.
const (
	flagReadTransaction = 1 << 7
	flagReplyRequested  = 1 << 6
	flagError           = 1 << 5
)

// headerSize is the number of header bytes (flag, sequence, length lo/hi,
// opcode lo/hi) preceding the payload of an outgoing command.
const headerSize = 6

// replyHeaderSize is the number of header bytes (flag, sequence, length
// lo/hi) preceding the payload of a reply.
const replyHeaderSize = 4

// firstPacketPayload is how many payload bytes fit in the first packet
// alongside the 6-byte command header.
const firstPacketPayload = hid.PacketSize - headerSize

// contPacketPayload is how many payload bytes fit in a continuation
// packet alongside its 1-byte marker.
const contPacketPayload = hid.PacketSize - 1

// RWMode selects the read/write bit of the flag byte.
type RWMode bool

const (
	Write RWMode = false
	Read  RWMode = true
)

// packetTransport is the fixed-size packet I/O a Framer needs; *hid.Device
// satisfies it. Framing against this interface rather than the concrete
// type lets tests exercise the framer without a real HID endpoint.
type packetTransport interface {
	WritePacket(packet []byte) error
	ReadPacket(timeout time.Duration) ([]byte, error)
}

// Framer packetizes DLPC900 commands over a packetTransport and
// reassembles replies. It is not safe for concurrent use: the device's
// sequence byte provides request/reply matching, not multiplexing, so
// all calls on one Framer must be serialized by the caller.
type Framer struct {
	dev     packetTransport
	timeout time.Duration
}

// DefaultTimeout is the default reply wait per §5 of the specification.
const DefaultTimeout = 5 * time.Second

// NewFramer wraps an open hid.Device. timeout of 0 selects DefaultTimeout.
func NewFramer(dev *hid.Device, timeout time.Duration) *Framer {
	return newFramer(dev, timeout)
}

func newFramer(dev packetTransport, timeout time.Duration) *Framer {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Framer{dev: dev, timeout: timeout}
}

// PacketTransport is the fixed-size packet I/O a Framer needs, exported
// so callers outside this package can construct a Framer over a fake
// transport in tests. *hid.Device satisfies it.
type PacketTransport interface {
	WritePacket(packet []byte) error
	ReadPacket(timeout time.Duration) ([]byte, error)
}

// NewFramerForTesting builds a Framer over an arbitrary PacketTransport,
// for use by other packages' tests that need to drive sequence
// orchestration without a real HID endpoint.
func NewFramerForTesting(dev PacketTransport, timeout time.Duration) *Framer {
	return newFramer(dev, timeout)
}

// Send assembles and transmits one command, optionally awaiting and
// reassembling its reply. payload excludes the opcode; the two opcode
// bytes are prepended to the length field automatically, matching the
// DLPC900's convention that the length covers opcode+payload.
func (f *Framer) Send(rw RWMode, replyRequested bool, seq byte, op Opcode, payload []byte) ([]byte, error) {
	stream := make([]byte, headerSize+len(payload))

	var flag byte
	if rw == Read {
		flag |= flagReadTransaction
	}
	if replyRequested {
		flag |= flagReplyRequested
	}
	stream[0] = flag
	stream[1] = seq
	binary.LittleEndian.PutUint16(stream[2:4], uint16(len(payload)+2))
	binary.LittleEndian.PutUint16(stream[4:6], uint16(op))
	copy(stream[6:], payload)

	packets := splitPackets(stream)

	var reply []byte
	for _, pkt := range packets {
		if err := f.dev.WritePacket(pkt); err != nil {
			return nil, errors.Wrap(err, "dlpc900: write")
		}
		if replyRequested {
			r, err := f.dev.ReadPacket(f.timeout)
			if err != nil {
				return nil, err
			}
			reply = append(reply, r...)
		}
	}
	return reply, nil
}

// splitPackets lays stream out across hid.PacketSize-byte packets per
// the framing rules documented above, zero-padding the final packet.
func splitPackets(stream []byte) [][]byte {
	first := make([]byte, hid.PacketSize)
	n := copy(first, stream)
	packets := [][]byte{first}

	rest := stream[n:]
	marker := byte(1)
	for len(rest) > 0 {
		pkt := make([]byte, hid.PacketSize)
		pkt[0] = marker
		m := copy(pkt[1:], rest)
		packets = append(packets, pkt)
		rest = rest[m:]
		marker++
	}
	return packets
}

// PacketCount returns how many HID packets a command with the given
// payload length requires, matching splitPackets.
func PacketCount(payloadLen int) int {
	total := headerSize + payloadLen
	if total <= hid.PacketSize {
		return 1
	}
	remaining := total - hid.PacketSize
	return 1 + (remaining+contPacketPayload-1)/contPacketPayload
}

// Response is a parsed reply.
type Response struct {
	Error    bool
	ReadBit  bool
	Sequence byte
	Data     []byte
}

// DecodeResponse parses a reassembled reply buffer: flag byte, sequence
// byte, a little-endian length, and that many payload bytes starting at
// offset 4 (payload may span the buffer past the first packet's bytes,
// since continuation reply packets contribute nothing but raw payload).
func DecodeResponse(buf []byte) (*Response, error) {
	if len(buf) == 0 {
		return nil, errors.New("dlpc900: empty reply buffer")
	}
	if len(buf) < replyHeaderSize {
		return nil, errors.Errorf("dlpc900: reply too short: %d bytes", len(buf))
	}

	flag := buf[0]
	seq := buf[1]
	length := binary.LittleEndian.Uint16(buf[2:4])

	end := replyHeaderSize + int(length)
	if end > len(buf) {
		return nil, errors.Errorf("dlpc900: reply length %d exceeds buffer of %d bytes", length, len(buf)-replyHeaderSize)
	}

	return &Response{
		Error:    flag&flagError != 0,
		ReadBit:  flag&flagReadTransaction != 0,
		Sequence: seq,
		Data:     buf[replyHeaderSize:end],
	}, nil
}

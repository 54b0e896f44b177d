/*
DESCRIPTION
  status.go wraps the read-only DLPC900 status and version queries:
  error code/description, hardware/system/main status bits, firmware
  version, and firmware type.
*/

package dlpc900

import (
	"encoding/binary"
	"strconv"

	"github.com/pkg/errors"
)

// HardwareStatusBits names each bit of the hardware status byte, LSB first.
var HardwareStatusBits = [8]string{
	"internal initialization success",
	"incompatible controller or dmd",
	"dmd reset controller error",
	"forced swap error",
	"slave controller present",
	"reserved",
	"sequence abort status error",
	"sequencer error",
}

// MainStatusBits names each bit of the main status byte, LSB first.
var MainStatusBits = [8]string{
	"dmd micromirrors are parked",
	"sequencer is running normally",
	"video is frozen",
	"external video source is locked",
	"port 1 syncs valid",
	"port 2 syncs valid",
	"reserved",
	"reserved",
}

// DMDTypeNames maps the firmware-type byte to a model name.
var DMDTypeNames = map[byte]string{
	0: "unknown",
	1: "DLP6500",
	2: "DLP9000",
	3: "DLP670S",
	4: "DLP500YX",
	5: "DLP5500",
}

// ReadErrorCode returns the device's last error code and its description,
// or ("not defined", code) if the code is unrecognized.
func ReadErrorCode(f *Framer, seq byte) (string, byte, error) {
	buf, err := f.Send(Write, true, seq, OpReadErrorCode, nil)
	if err != nil {
		return "", 0, err
	}
	resp, err := DecodeResponse(buf)
	if err != nil {
		return "", 0, err
	}
	if len(resp.Data) == 0 {
		return "", 0, errors.New("dlpc900: empty error code reply")
	}
	code := resp.Data[0]
	if s, ok := ErrorStrings[code]; ok {
		return s, code, nil
	}
	return "not defined", code, nil
}

// ReadErrorDescription returns the device's free-text description of its
// last error, a null-terminated ASCII string on the wire.
func ReadErrorDescription(f *Framer, seq byte) (string, error) {
	buf, err := f.Send(Read, true, seq, OpReadErrorDescription, nil)
	if err != nil {
		return "", err
	}
	resp, err := DecodeResponse(buf)
	if err != nil {
		return "", err
	}
	return nullTerminatedASCII(resp.Data), nil
}

// BitStatus reports which named status bits are set, LSB first.
type BitStatus map[string]bool

func decodeBits(b byte, names [8]string) BitStatus {
	s := make(BitStatus, 8)
	for i, name := range names {
		s[name] = b&(1<<uint(i)) != 0
	}
	return s
}

// HardwareStatus queries the DLPC900's hardware status byte.
func HardwareStatus(f *Framer, seq byte) (BitStatus, error) {
	resp, err := queryStatus(f, seq, OpHardwareStatus)
	if err != nil {
		return nil, err
	}
	return decodeBits(resp.Data[0], HardwareStatusBits), nil
}

// SystemStatus queries the DLPC900's internal-memory self-test result.
func SystemStatus(f *Framer, seq byte) (bool, error) {
	resp, err := queryStatus(f, seq, OpSystemStatus)
	if err != nil {
		return false, err
	}
	return resp.Data[0] != 0, nil
}

// MainStatus queries the DLPC900's main status byte.
func MainStatus(f *Framer, seq byte) (BitStatus, error) {
	resp, err := queryStatus(f, seq, OpMainStatus)
	if err != nil {
		return nil, err
	}
	return decodeBits(resp.Data[0], MainStatusBits), nil
}

func queryStatus(f *Framer, seq byte, op Opcode) (*Response, error) {
	buf, err := f.Send(Read, true, seq, op, nil)
	if err != nil {
		return nil, err
	}
	resp, err := DecodeResponse(buf)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.Errorf("dlpc900: empty status reply for opcode 0x%04X", op)
	}
	return resp, nil
}

// VersionTriple is a major.minor.patch version with the DLPC900's
// peculiar wire byte order: the patch field arrives as two little-endian
// bytes ahead of the single-byte minor and major fields.
type VersionTriple struct {
	Major, Minor, Patch int
}

func (v VersionTriple) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
}

func parseVersionTriple(b []byte) VersionTriple {
	patch := binary.LittleEndian.Uint16(b[0:2])
	return VersionTriple{Major: int(b[3]), Minor: int(b[2]), Patch: int(patch)}
}

// FirmwareVersion holds the four version triples the DLPC900 reports.
type FirmwareVersion struct {
	App, API, SoftwareConfig, SequencerConfig VersionTriple
}

// ReadFirmwareVersion queries all four firmware version triples.
func ReadFirmwareVersion(f *Framer, seq byte) (*FirmwareVersion, error) {
	resp, err := queryStatus(f, seq, OpFirmwareVersion)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) < 16 {
		return nil, errors.Errorf("dlpc900: firmware version reply too short: %d bytes", len(resp.Data))
	}
	return &FirmwareVersion{
		App:             parseVersionTriple(resp.Data[0:4]),
		API:             parseVersionTriple(resp.Data[4:8]),
		SoftwareConfig:  parseVersionTriple(resp.Data[8:12]),
		SequencerConfig: parseVersionTriple(resp.Data[12:16]),
	}, nil
}

// FirmwareType is the DMD model and its free-text firmware tag.
type FirmwareType struct {
	DMDType string
	Tag     string
}

// ReadFirmwareType queries the DMD model and firmware tag.
func ReadFirmwareType(f *Framer, seq byte) (*FirmwareType, error) {
	resp, err := queryStatus(f, seq, OpFirmwareType)
	if err != nil {
		return nil, err
	}
	name, ok := DMDTypeNames[resp.Data[0]]
	if !ok {
		return nil, errors.Errorf("dlpc900: unknown dmd type code %d", resp.Data[0])
	}
	return &FirmwareType{
		DMDType: name,
		Tag:     nullTerminatedASCII(resp.Data[1:]),
	}, nil
}

// nullTerminatedASCII converts bytes up to (excluding) the first zero byte
// into a string.
func nullTerminatedASCII(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

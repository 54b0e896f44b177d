/*
DESCRIPTION
  opcodes.go lists every DLPC900 USB command opcode this driver uses.
*/

// Package dlpc900 implements the DLPC900 command protocol: packetization,
// flag-byte semantics, and typed wrappers for every opcode the driver
// uses (status, firmware query, triggers, pattern mode, LUT setup, BMP
// load, start/stop).
package dlpc900

// Opcode identifies a DLPC900 USB command, little-endian on the wire.
type Opcode uint16

// Command opcodes, per the DLPC900 programmer's guide.
const (
	OpReadErrorCode        Opcode = 0x0100
	OpReadErrorDescription Opcode = 0x0101
	OpFirmwareVersion      Opcode = 0x0205
	OpFirmwareType         Opcode = 0x0206
	OpHardwareStatus       Opcode = 0x1A0A
	OpSystemStatus         Opcode = 0x1A0B
	OpMainStatus           Opcode = 0x1A0C
	OpBatchFileName        Opcode = 0x1A14
	OpExecuteBatchFile     Opcode = 0x1A15
	OpBatchCommandDelay    Opcode = 0x1A16
	OpDisplayMode          Opcode = 0x1A1B
	OpTrigOut1Ctl          Opcode = 0x1A1D
	OpTrigOut2Ctl          Opcode = 0x1A1E
	OpPatternStartStop     Opcode = 0x1A24
	OpPatConfig            Opcode = 0x1A31
	OpLUTDefinition        Opcode = 0x1A34
	OpTrigIn1Ctl           Opcode = 0x1A35
	OpTrigIn2Ctl           Opcode = 0x1A36
	OpBMPLoadInitPrimary   Opcode = 0x1A2A
	OpBMPLoadDataPrimary   Opcode = 0x1A2B
	OpBMPLoadInitSecondary Opcode = 0x1A2C
	OpBMPLoadDataSecondary Opcode = 0x1A2D
)

// ErrorStrings maps a device error code to its description.
var ErrorStrings = map[byte]string{
	0:   "no error",
	1:   "batch file checksum error",
	2:   "device failure",
	3:   "invalid command number",
	4:   "incompatible controller/dmd",
	5:   "command not allowed in current mode",
	6:   "invalid command parameter",
	7:   "item referred by the parameter is not present",
	8:   "out of resource (RAM/flash)",
	9:   "invalid BMP compression type",
	10:  "pattern bit number out of range",
	11:  "pattern BMP not present in flash",
	12:  "pattern dark time is out of range",
	13:  "signal delay parameter is out of range",
	14:  "pattern exposure time is out of range",
	15:  "pattern number is out of range",
	16:  "invalid pattern definition",
	17:  "pattern image memory address is out of range",
	255: "internal error",
}

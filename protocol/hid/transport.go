/*
DESCRIPTION
  transport.go implements fixed-length USB-HID packet I/O for the DLPC900,
  wrapping github.com/sstallion/go-hid (a cgo binding to hidapi). This is
  the cross-platform HID layer the command framer sits on top of.
*/

// Package hid provides blocking, fixed-length USB-HID packet transport
// for a DLPC900-class controller.
package hid

import (
	"time"

	"github.com/pkg/errors"
	gohid "github.com/sstallion/go-hid"
)

// PacketSize is the fixed HID report size, in both directions, for the
// DLPC900 protocol.
const PacketSize = 64

// DefaultVendorID and DefaultProductID identify a DLPC900 controller.
const (
	DefaultVendorID  = 0x0451
	DefaultProductID = 0xC900
)

// productString is matched against each candidate device's product
// string during enumeration, since several TI parts share the VID/PID.
const productString = "DLPC900"

// ErrTimeout is returned when a read does not complete within its
// deadline.
var ErrTimeout = errors.New("hid: read timed out")

// Device is an open USB-HID connection to one DLPC900 controller.
type Device struct {
	dev  *gohid.Device
	path string
}

// Open finds and opens a DLPC900 device. If path is non-empty it is
// opened directly (an OS-specific device path saved from a prior
// enumeration); otherwise the vendor/product ID pair is enumerated and
// the index'th device whose product string is "DLPC900" is opened.
func Open(vendorID, productID uint16, index int, path string) (*Device, error) {
	if path != "" {
		d, err := gohid.OpenPath(path)
		if err != nil {
			return nil, errors.Wrapf(err, "hid: open path %q", path)
		}
		return &Device{dev: d, path: path}, nil
	}

	var candidates []*gohid.DeviceInfo
	err := gohid.Enumerate(vendorID, productID, func(info *gohid.DeviceInfo) error {
		if info.ProductStr == productString {
			candidates = append(candidates, info)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "hid: enumerate")
	}
	if len(candidates) == 0 {
		return nil, errors.Errorf("hid: no %s devices found (vid=0x%04X pid=0x%04X)", productString, vendorID, productID)
	}
	if index >= len(candidates) {
		return nil, errors.Errorf("hid: device index %d requested, only %d found", index, len(candidates))
	}

	found := candidates[index]
	d, err := gohid.OpenPath(found.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "hid: open path %q", found.Path)
	}
	return &Device{dev: d, path: found.Path}, nil
}

// Path returns the OS-specific path this device was opened with, for
// persisting in a config archive.
func (d *Device) Path() string { return d.path }

// Close releases the HID endpoint. Callers should wait ~300ms before
// re-opening the same device: the OS needs a settling delay to fully
// release it.
func (d *Device) Close() error {
	if d.dev == nil {
		return nil
	}
	err := d.dev.Close()
	d.dev = nil
	return err
}

// SettleDelay is the recommended pause after Close before re-opening the
// same physical device.
const SettleDelay = 300 * time.Millisecond

// WritePacket sends exactly one PacketSize-byte packet, prefixed
// internally with the report-id byte hidapi's write() expects.
func (d *Device) WritePacket(packet []byte) error {
	if len(packet) != PacketSize {
		return errors.Errorf("hid: packet must be %d bytes, got %d", PacketSize, len(packet))
	}
	report := make([]byte, PacketSize+1)
	copy(report[1:], packet)
	n, err := d.dev.Write(report)
	if err != nil {
		return errors.Wrap(err, "hid: write")
	}
	if n != len(report) {
		return errors.Errorf("hid: short write: wrote %d of %d bytes", n, len(report))
	}
	return nil
}

// ReadPacket blocks for up to timeout for one PacketSize-byte reply
// packet (report id already stripped by hidapi). ErrTimeout is returned
// if no packet arrives in time; the handle remains usable.
func (d *Device) ReadPacket(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, PacketSize)
	n, err := d.dev.ReadWithTimeout(buf, int(timeout/time.Millisecond))
	if err != nil {
		return nil, errors.Wrap(err, "hid: read")
	}
	if n == 0 {
		return nil, ErrTimeout
	}
	return buf[:n], nil
}

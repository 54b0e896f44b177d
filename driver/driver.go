/*
DESCRIPTION
  driver.go ties the HID transport, command framer, and sequence
  orchestrator into one handle: the thing a long-running process opens
  once and drives for its lifetime.
*/

// Package driver opens and owns a DLPC900 controller connection end to
// end, from the USB-HID endpoint through to the sequence orchestrator.
package driver

import (
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/tidlp/dmd/dmderr"
	"github.com/tidlp/dmd/protocol/dlpc900"
	"github.com/tidlp/dmd/protocol/hid"
	"github.com/tidlp/dmd/sequence"
)

// ControllerHandle owns one open DLPC900 connection: the HID device, its
// command framer, and a sequence orchestrator bound to a DMD model.
type ControllerHandle struct {
	Dev      *hid.Device
	Framer   *dlpc900.Framer
	Sequence *sequence.Handle
}

// OpenOptions configures Open.
type OpenOptions struct {
	// Path is an OS-specific HID device path saved from a prior
	// enumeration. If empty, VendorID/ProductID/Index select the device.
	Path      string
	VendorID  uint16
	ProductID uint16
	Index     int

	Model   sequence.DmdModel
	Logger  logging.Logger
	Timeout int // reply timeout in milliseconds; 0 selects dlpc900.DefaultTimeout
}

// Open connects to a DLPC900 controller and wires up a sequence handle
// ready for orchestration calls.
func Open(opts OpenOptions) (*ControllerHandle, error) {
	vendorID, productID := opts.VendorID, opts.ProductID
	if vendorID == 0 {
		vendorID = hid.DefaultVendorID
	}
	if productID == 0 {
		productID = hid.DefaultProductID
	}

	dev, err := hid.Open(vendorID, productID, opts.Index, opts.Path)
	if err != nil {
		return nil, dmderr.Wrap(dmderr.TransportIO, err, "opening DLPC900 device")
	}

	var timeout time.Duration
	if opts.Timeout > 0 {
		timeout = time.Duration(opts.Timeout) * time.Millisecond
	}

	framer := dlpc900.NewFramer(dev, timeout)
	seqHandle := sequence.NewHandle(framer, opts.Model, opts.Logger)

	return &ControllerHandle{Dev: dev, Framer: framer, Sequence: seqHandle}, nil
}

// Close releases the underlying HID device.
func (h *ControllerHandle) Close() error {
	return h.Dev.Close()
}

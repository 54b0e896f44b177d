/*
DESCRIPTION
  error.go defines the driver's typed error kinds so callers can dispatch
  on failure class with errors.As instead of parsing message strings.
*/

// Package dmderr defines the error kinds shared across the DLPC900 driver:
// transport failures, malformed replies, input validation, and invalid
// on-disk configuration.
package dmderr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a driver error.
type Kind int

const (
	// TransportTimeout means an HID read exceeded its deadline. Not
	// fatal; the caller may retry.
	TransportTimeout Kind = iota
	// TransportIO means an OS-level HID error occurred. The handle is
	// no longer usable and must be re-opened.
	TransportIO
	// BadPayload means a reply was empty, truncated, or had its
	// device-error flag set.
	BadPayload
	// Validation means caller-supplied input was out of range or
	// otherwise invalid.
	Validation
	// ConfigInvalid means an on-disk configuration archive failed
	// validation at load time.
	ConfigInvalid
)

func (k Kind) String() string {
	switch k {
	case TransportTimeout:
		return "transport timeout"
	case TransportIO:
		return "transport io"
	case BadPayload:
		return "bad payload"
	case Validation:
		return "validation"
	case ConfigInvalid:
		return "config invalid"
	default:
		return "unknown"
	}
}

// Error is the driver's typed error, wrapping an underlying cause with a
// Kind a caller can switch on.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind, wrapping cause with a stack
// trace via pkg/errors so the original site is still visible once logged.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: errors.WithStack(cause)}
}

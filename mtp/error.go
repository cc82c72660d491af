package mtp

/*
#include <libmtp.h>
*/
import "C"

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure this package can surface. Each
// native status code maps to exactly one kind; codes this package does
// not recognize map to NativeError, carrying the raw code for
// diagnostics.
type ErrorKind int

const (
	// DeviceAccessError: transport-level enumeration or USB I/O failed.
	DeviceAccessError ErrorKind = iota + 1
	// ConnectionError: opening a device failed, the handle is closed,
	// or the native layer reported the connection as lost.
	ConnectionError
	// QueryError: the device did not answer a listing or metadata
	// request, or the session is invalid.
	QueryError
	// PropertyTypeMismatch: a typed property accessor was used with a
	// type that does not match the property's declared type.
	PropertyTypeMismatch
	// UnsupportedProperty: the device reports the property as
	// unavailable for the object's filetype, or refuses to set it.
	UnsupportedProperty
	// TransferError: a send/receive was interrupted, cancelled, or the
	// destination storage is full. The partially written object, if
	// any, remains on the device for the caller to delete or retry.
	TransferError
	// NotFoundError: the object identifier is stale.
	NotFoundError
	// InvalidTargetError: the destination parent or storage of a
	// mutation is inconsistent with the open session.
	InvalidTargetError
	// FormatError: formatting failed, or was attempted without
	// explicit confirmation.
	FormatError
	// NativeError: an unrecognized native status; Code holds the raw
	// value.
	NativeError
)

var kindNames = map[ErrorKind]string{
	DeviceAccessError:    "device access error",
	ConnectionError:      "connection error",
	QueryError:           "query error",
	PropertyTypeMismatch: "property type mismatch",
	UnsupportedProperty:  "unsupported property",
	TransferError:        "transfer error",
	NotFoundError:        "not found",
	InvalidTargetError:   "invalid target",
	FormatError:          "format error",
	NativeError:          "native error",
}

func (k ErrorKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the structured error type for all native failures. Text is
// the message drained from the device's native error stack when one
// was available.
type Error struct {
	Kind ErrorKind
	Code int
	Text string
}

func (e *Error) Error() string {
	if e.Kind == NativeError {
		return fmt.Sprintf("mtp: native error 0x%x: %s", e.Code, e.Text)
	}
	return fmt.Sprintf("mtp: %s: %s", e.Kind, e.Text)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// kindFromNumber maps a native error number to an error kind. The
// second result is false for LIBMTP_ERROR_NONE. GENERAL has no kind of
// its own; the surrounding operation supplies one.
func kindFromNumber(n C.LIBMTP_error_number_t) (ErrorKind, bool) {
	switch n {
	case C.LIBMTP_ERROR_NONE:
		return 0, false
	case C.LIBMTP_ERROR_PTP_LAYER:
		return QueryError, true
	case C.LIBMTP_ERROR_USB_LAYER:
		return DeviceAccessError, true
	case C.LIBMTP_ERROR_NO_DEVICE_ATTACHED:
		return DeviceAccessError, true
	case C.LIBMTP_ERROR_STORAGE_FULL:
		return TransferError, true
	case C.LIBMTP_ERROR_CONNECTING:
		return ConnectionError, true
	case C.LIBMTP_ERROR_CANCELLED:
		return TransferError, true
	case C.LIBMTP_ERROR_MEMORY_ALLOCATION:
		return NativeError, true
	case C.LIBMTP_ERROR_GENERAL:
		return 0, true
	}
	return NativeError, true
}

// lastError drains and clears the device's native error stack, maps
// the most recent entry, and returns a structured error. kind is the
// fallback used when the stack is empty or holds only a GENERAL
// error. Callers must hold d.mu.
func (d *Device) lastError(kind ErrorKind, op string) error {
	text := op + " failed"
	code := int(C.LIBMTP_ERROR_GENERAL)

	list := C.LIBMTP_Get_Errorstack(d.me)
	if list != nil {
		for list.next != nil {
			list = list.next
		}
		code = int(list.errornumber)
		if list.error_text != nil {
			text = C.GoString(list.error_text)
		}
		if k, ok := kindFromNumber(list.errornumber); ok && k != 0 {
			kind = k
		}
		C.LIBMTP_Clear_Errorstack(d.me)
	}

	if kind == ConnectionError {
		// Subsequent operations fail until the handle is reopened.
		d.lost = true
	}
	return &Error{Kind: kind, Code: code, Text: text}
}

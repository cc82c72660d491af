// Package mtp is a memory-safe Go binding for libmtp, the native MTP
// (Media Transfer Protocol) device-access library.  The package wraps
// the raw C API behind typed operations: device enumeration, storage
// and object listing, file transfer with progress reporting, and
// object/device property access.  All protocol and USB transport logic
// stays inside libmtp; this package only marshals data across the FFI
// boundary and guarantees that every native handle is released exactly
// once.
package mtp

/*
#cgo pkg-config: libmtp
#include <stdlib.h>
#include <libmtp.h>
*/
import "C"

import (
	"sync"
	"unsafe"
)

var initOnce sync.Once

// Init initializes the native library. It is safe to call multiple
// times; every entry point of this package calls it implicitly.
func Init() {
	initOnce.Do(func() {
		C.LIBMTP_Init()
	})
}

// DebugFlags is the bitmask controlling libmtp's internal debug
// output. Combine flags with bitwise or.
type DebugFlags int

const (
	DebugNone DebugFlags = C.LIBMTP_DEBUG_NONE
	DebugPTP  DebugFlags = C.LIBMTP_DEBUG_PTP
	DebugPLST DebugFlags = C.LIBMTP_DEBUG_PLST
	DebugUSB  DebugFlags = C.LIBMTP_DEBUG_USB
	DebugData DebugFlags = C.LIBMTP_DEBUG_DATA
	DebugAll  DebugFlags = C.LIBMTP_DEBUG_ALL
)

// SetDebug sets the native debug level.
func SetDebug(mask DebugFlags) {
	Init()
	C.LIBMTP_Set_Debug(C.int(mask))
}

// DeviceEntry describes one entry of the device table libmtp ships
// (music-players.h): a vendor/product pair with quirk flags.
type DeviceEntry struct {
	Vendor    string
	VendorID  uint16
	Product   string
	ProductID uint16
	Flags     uint32
}

// SupportedDevices returns the devices libmtp claims to support. The
// returned table is a snapshot of static library data.
func SupportedDevices() ([]DeviceEntry, error) {
	Init()

	var list *C.LIBMTP_device_entry_t
	var n C.int
	if C.LIBMTP_Get_Supported_Devices_List(&list, &n) != 0 {
		return nil, &Error{Kind: DeviceAccessError, Text: "cannot read supported device table"}
	}

	entries := make([]DeviceEntry, 0, int(n))
	sz := unsafe.Sizeof(*list)
	for i := 0; i < int(n); i++ {
		e := (*C.LIBMTP_device_entry_t)(unsafe.Pointer(uintptr(unsafe.Pointer(list)) + uintptr(i)*sz))
		entries = append(entries, deviceEntry(e))
	}
	return entries, nil
}

func deviceEntry(e *C.LIBMTP_device_entry_t) DeviceEntry {
	// vendor/product point into static library data; never freed.
	vendor, product := "unknown", "unknown"
	if e.vendor != nil {
		vendor = C.GoString(e.vendor)
	}
	if e.product != nil {
		product = C.GoString(e.product)
	}
	return DeviceEntry{
		Vendor:    vendor,
		VendorID:  uint16(e.vendor_id),
		Product:   product,
		ProductID: uint16(e.product_id),
		Flags:     uint32(e.device_flags),
	}
}

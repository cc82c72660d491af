package mtp

/*
#include <stdlib.h>
#include <libmtp.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// RawDevice is a detected but unopened device descriptor. It is a
// plain value: copying it is cheap and carries no native resources.
type RawDevice struct {
	BusLocation uint32
	DevNum      uint8
	Entry       DeviceEntry

	raw C.LIBMTP_raw_device_t
}

func (r RawDevice) String() string {
	return fmt.Sprintf("%s: %s (%04x:%04x) @ bus %d, dev %d",
		r.Entry.Vendor, r.Entry.Product,
		r.Entry.VendorID, r.Entry.ProductID,
		r.BusLocation, r.DevNum)
}

// Detect scans the transport layer for attached MTP devices. A system
// with no devices yields an empty slice, not an error.
func Detect() ([]RawDevice, error) {
	Init()

	var list *C.LIBMTP_raw_device_t
	var n C.int
	num := C.LIBMTP_Detect_Raw_Devices(&list, &n)
	switch num {
	case C.LIBMTP_ERROR_NONE:
	case C.LIBMTP_ERROR_NO_DEVICE_ATTACHED:
		return nil, nil
	default:
		kind, _ := kindFromNumber(num)
		if kind == 0 {
			kind = DeviceAccessError
		}
		return nil, &Error{Kind: kind, Code: int(num), Text: "detect raw devices failed"}
	}
	defer C.free(unsafe.Pointer(list))

	devs := make([]RawDevice, 0, int(n))
	sz := unsafe.Sizeof(*list)
	for i := 0; i < int(n); i++ {
		e := (*C.LIBMTP_raw_device_t)(unsafe.Pointer(uintptr(unsafe.Pointer(list)) + uintptr(i)*sz))
		devs = append(devs, RawDevice{
			BusLocation: uint32(e.bus_location),
			DevNum:      uint8(e.devnum),
			Entry:       deviceEntry(&e.device_entry),
			raw:         *e,
		})
	}
	return devs, nil
}

// CheckSpecificDevice reports whether the device at the given bus and
// device number carries an MTP device descriptor.
func CheckSpecificDevice(busNumber, devNumber int) bool {
	Init()
	return C.LIBMTP_Check_Specific_Device(C.int(busNumber), C.int(devNumber)) == 1
}

// Open opens the raw device and transfers ownership of the resulting
// native handle into the returned Device. This variant lets libmtp
// cache object metadata on open, which can be slow on large devices.
func (r *RawDevice) Open() (*Device, error) {
	Init()
	me := C.LIBMTP_Open_Raw_Device(&r.raw)
	if me == nil {
		return nil, &Error{Kind: ConnectionError, Text: "open " + r.String()}
	}
	return &Device{me: me}, nil
}

// OpenUncached opens the raw device without metadata caching.
func (r *RawDevice) OpenUncached() (*Device, error) {
	Init()
	me := C.LIBMTP_Open_Raw_Device_Uncached(&r.raw)
	if me == nil {
		return nil, &Error{Kind: ConnectionError, Text: "open " + r.String()}
	}
	return &Device{me: me}, nil
}

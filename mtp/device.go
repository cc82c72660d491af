package mtp

/*
#include <stdlib.h>
#include <libmtp.h>
*/
import "C"

import (
	"sync"
	"unsafe"
)

// Device is an open MTP device handle. It exclusively owns the
// underlying native handle; Close releases it exactly once, and every
// operation after Close fails with a ConnectionError.
//
// All calls on one Device are serialized by an internal mutex, since
// the native library gives no guarantee for concurrent use of a single
// handle.
type Device struct {
	mu   sync.Mutex
	me   *C.LIBMTP_mtpdevice_t
	lost bool

	// Snapshot of the device's storages, refreshed by UpdateStorage.
	storages []Storage
}

// Close closes the session and releases the native handle. Calling it
// again is a no-op: ownership of the handle transfers out of the
// wrapper on the first call.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.me == nil {
		return nil
	}
	C.LIBMTP_Release_Device(d.me)
	d.me = nil
	d.storages = nil
	return nil
}

// usable must be called with d.mu held, before any native call.
func (d *Device) usable() error {
	if d.me == nil {
		return &Error{Kind: ConnectionError, Text: "device handle is closed"}
	}
	if d.lost {
		return &Error{Kind: ConnectionError, Text: "connection to device lost; reopen the device"}
	}
	return nil
}

// getString wraps the LIBMTP_Get_* family returning a malloc'd char*.
func (d *Device) getString(op string, get func(*C.LIBMTP_mtpdevice_t) *C.char) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return "", err
	}
	s := get(d.me)
	if s == nil {
		return "", d.lastError(QueryError, op)
	}
	defer C.free(unsafe.Pointer(s))
	return C.GoString(s), nil
}

// FriendlyName returns the device's friendly name, e.g. "Ana's phone".
func (d *Device) FriendlyName() (string, error) {
	return d.getString("get friendly name", func(me *C.LIBMTP_mtpdevice_t) *C.char {
		return C.LIBMTP_Get_Friendlyname(me)
	})
}

// SetFriendlyName sets the device's friendly name.
func (d *Device) SetFriendlyName(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	if C.LIBMTP_Set_Friendlyname(d.me, cname) != 0 {
		return d.lastError(UnsupportedProperty, "set friendly name")
	}
	return nil
}

// SyncPartner returns the synchronization partner of the device.
func (d *Device) SyncPartner() (string, error) {
	return d.getString("get sync partner", func(me *C.LIBMTP_mtpdevice_t) *C.char {
		return C.LIBMTP_Get_Syncpartner(me)
	})
}

// SetSyncPartner sets the synchronization partner of the device.
func (d *Device) SetSyncPartner(partner string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}
	cpartner := C.CString(partner)
	defer C.free(unsafe.Pointer(cpartner))
	if C.LIBMTP_Set_Syncpartner(d.me, cpartner) != 0 {
		return d.lastError(UnsupportedProperty, "set sync partner")
	}
	return nil
}

// ManufacturerName returns the manufacturer name of the device.
func (d *Device) ManufacturerName() (string, error) {
	return d.getString("get manufacturer name", func(me *C.LIBMTP_mtpdevice_t) *C.char {
		return C.LIBMTP_Get_Manufacturername(me)
	})
}

// ModelName returns the model name of the device.
func (d *Device) ModelName() (string, error) {
	return d.getString("get model name", func(me *C.LIBMTP_mtpdevice_t) *C.char {
		return C.LIBMTP_Get_Modelname(me)
	})
}

// SerialNumber returns the serial number of the device.
func (d *Device) SerialNumber() (string, error) {
	return d.getString("get serial number", func(me *C.LIBMTP_mtpdevice_t) *C.char {
		return C.LIBMTP_Get_Serialnumber(me)
	})
}

// DeviceCertificate returns the device public key certificate as an
// XML document.
func (d *Device) DeviceCertificate() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return "", err
	}
	var cert *C.char
	if C.LIBMTP_Get_Device_Certificate(d.me, &cert) != 0 || cert == nil {
		return "", d.lastError(QueryError, "get device certificate")
	}
	defer C.free(unsafe.Pointer(cert))
	return C.GoString(cert), nil
}

// SecureTime returns the device's secure time as an XML document.
func (d *Device) SecureTime() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return "", err
	}
	var st *C.char
	if C.LIBMTP_Get_Secure_Time(d.me, &st) != 0 || st == nil {
		return "", d.lastError(QueryError, "get secure time")
	}
	defer C.free(unsafe.Pointer(st))
	return C.GoString(st), nil
}

// BatteryLevel is the result of a battery query. Current is zero and
// OnExternalPower true when the device runs on AC.
type BatteryLevel struct {
	Current         uint8
	Maximum         uint8
	OnExternalPower bool
}

// BatteryLevel retrieves the current and maximum battery level.
func (d *Device) BatteryLevel() (BatteryLevel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return BatteryLevel{}, err
	}
	var max, cur C.uint8_t
	if C.LIBMTP_Get_Batterylevel(d.me, &max, &cur) != 0 {
		return BatteryLevel{}, d.lastError(QueryError, "get battery level")
	}
	return BatteryLevel{
		Current:         uint8(cur),
		Maximum:         uint8(max),
		OnExternalPower: cur == 0,
	}, nil
}

// Reset resets the device, if it supports the ResetDevice operation.
func (d *Device) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}
	if C.LIBMTP_Reset_Device(d.me) != 0 {
		return d.lastError(QueryError, "reset device")
	}
	return nil
}

// Capability is a device capability that can be probed with Check.
type Capability int

const (
	CapGetPartialObject  Capability = C.LIBMTP_DEVICECAP_GetPartialObject
	CapSendPartialObject Capability = C.LIBMTP_DEVICECAP_SendPartialObject
	CapEditObjects       Capability = C.LIBMTP_DEVICECAP_EditObjects
	CapMoveObject        Capability = C.LIBMTP_DEVICECAP_MoveObject
	CapCopyObject        Capability = C.LIBMTP_DEVICECAP_CopyObject
)

// Check reports whether the device claims the given capability.
func (d *Device) Check(cap Capability) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.usable() != nil {
		return false
	}
	return C.LIBMTP_Check_Capability(d.me, C.LIBMTP_devicecap_t(cap)) != 0
}

// SupportedFiletypes returns the filetypes the device claims to
// support, limited to those libmtp itself can handle.
func (d *Device) SupportedFiletypes() ([]Filetype, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return nil, err
	}
	var list *C.uint16_t
	var n C.uint16_t
	if C.LIBMTP_Get_Supported_Filetypes(d.me, &list, &n) != 0 || list == nil {
		return nil, d.lastError(QueryError, "get supported filetypes")
	}
	defer C.free(unsafe.Pointer(list))

	types := make([]Filetype, 0, int(n))
	sz := unsafe.Sizeof(*list)
	for i := 0; i < int(n); i++ {
		v := *(*C.uint16_t)(unsafe.Pointer(uintptr(unsafe.Pointer(list)) + uintptr(i)*sz))
		types = append(types, Filetype(v))
	}
	return types, nil
}

// DefaultFolders holds the well-known folder ids the device reports.
// An id may be garbage if the device has no such folder.
type DefaultFolders struct {
	Music     uint32
	Playlist  uint32
	Picture   uint32
	Video     uint32
	Organizer uint32
	Zencast   uint32
	Album     uint32
	Text      uint32
}

// DefaultFolders returns the device's default folder ids.
func (d *Device) DefaultFolders() (DefaultFolders, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return DefaultFolders{}, err
	}
	return DefaultFolders{
		Music:     uint32(d.me.default_music_folder),
		Playlist:  uint32(d.me.default_playlist_folder),
		Picture:   uint32(d.me.default_picture_folder),
		Video:     uint32(d.me.default_video_folder),
		Organizer: uint32(d.me.default_organizer_folder),
		Zencast:   uint32(d.me.default_zencast_folder),
		Album:     uint32(d.me.default_album_folder),
		Text:      uint32(d.me.default_text_folder),
	}, nil
}

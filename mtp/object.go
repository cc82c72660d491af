package mtp

/*
#include <stdlib.h>
#include <libmtp.h>
*/
import "C"

import "unsafe"

// DeleteObject deletes a single object (file, folder, track, ...) by
// id. Deleting a folder does not delete its contents; delete them
// first. A stale id fails with NotFoundError and leaves the object
// graph unchanged.
func (d *Device) DeleteObject(id uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}
	if _, err := d.fileMetadata(id); err != nil {
		return err
	}
	if C.LIBMTP_Delete_Object(d.me, C.uint32_t(id)) != 0 {
		return d.lastError(QueryError, "delete object")
	}
	return nil
}

// MoveObject moves an object to the given storage and parent folder
// (0 for the storage root). Targets are validated against the current
// session: an unknown storage fails with InvalidTargetError, a stale
// object id with NotFoundError, and in both cases the object graph is
// untouched. Storage validation uses the snapshot taken by
// UpdateStorage; run it at least once before moving. Moving between
// storages can take long; MTP offers no progress for it.
func (d *Device) MoveObject(id, storageID, parentID uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}
	if err := d.checkTarget(id, storageID, parentID); err != nil {
		return err
	}
	if parentID == ParentRoot {
		parentID = 0
	}
	if C.LIBMTP_Move_Object(d.me, C.uint32_t(id), C.uint32_t(storageID), C.uint32_t(parentID)) != 0 {
		return d.lastError(InvalidTargetError, "move object")
	}
	return nil
}

// CopyObject copies an object to the given storage and parent folder.
// Target validation matches MoveObject, including the UpdateStorage
// prerequisite.
func (d *Device) CopyObject(id, storageID, parentID uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}
	if err := d.checkTarget(id, storageID, parentID); err != nil {
		return err
	}
	if parentID == ParentRoot {
		parentID = 0
	}
	if C.LIBMTP_Copy_Object(d.me, C.uint32_t(id), C.uint32_t(storageID), C.uint32_t(parentID)) != 0 {
		return d.lastError(InvalidTargetError, "copy object")
	}
	return nil
}

// checkTarget validates a mutation's source id and destination against
// the session. Callers hold d.mu.
func (d *Device) checkTarget(id, storageID, parentID uint32) error {
	if _, err := d.fileMetadata(id); err != nil {
		return err
	}
	if !d.hasStorage(storageID) {
		return &Error{Kind: InvalidTargetError, Text: "destination storage is not part of this session"}
	}
	if parentID != 0 && parentID != ParentRoot {
		parent, err := d.fileMetadata(parentID)
		if err != nil {
			return &Error{Kind: InvalidTargetError, Text: "destination parent does not exist"}
		}
		if !parent.IsFolder() {
			return &Error{Kind: InvalidTargetError, Text: "destination parent is not a folder"}
		}
		if parent.StorageID != storageID {
			return &Error{Kind: InvalidTargetError, Text: "destination parent is on a different storage"}
		}
	}
	return nil
}

// RenameObject renames an object in place. A stale id fails with
// NotFoundError; the object graph is unchanged on failure.
func (d *Device) RenameObject(id uint32, newName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}
	if _, err := d.fileMetadata(id); err != nil {
		return err
	}

	cname := C.CString(newName)
	defer C.free(unsafe.Pointer(cname))
	if C.LIBMTP_Set_Object_Filename(d.me, C.uint32_t(id), cname) != 0 {
		return d.lastError(QueryError, "rename object")
	}
	return nil
}

// IsPropertySupported reports whether the device supports the property
// for objects of the given filetype.
func (d *Device) IsPropertySupported(prop Property, ft Filetype) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return false, err
	}
	res := C.LIBMTP_Is_Property_Supported(d.me, C.LIBMTP_property_t(prop), C.LIBMTP_filetype_t(ft))
	if res < 0 {
		return false, d.lastError(QueryError, "check property support")
	}
	return res > 0, nil
}

// propSupported checks support for a property against an object's own
// filetype. Callers hold d.mu.
func (d *Device) propSupported(id uint32, prop Property) error {
	info, err := d.fileMetadata(id)
	if err != nil {
		return err
	}
	res := C.LIBMTP_Is_Property_Supported(d.me, C.LIBMTP_property_t(prop), C.LIBMTP_filetype_t(info.Filetype))
	if res < 0 {
		return d.lastError(QueryError, "check property support")
	}
	if res == 0 {
		return &Error{Kind: UnsupportedProperty, Text: prop.String() + " is not supported for " + info.Filetype.String()}
	}
	return nil
}

// propTypeMatches checks the requested width against the property's
// declared data type, when the device exposes one. Callers hold d.mu.
func (d *Device) propTypeMatches(id uint32, prop Property, want DataType) error {
	info, err := d.fileMetadata(id)
	if err != nil {
		return err
	}
	av, err := d.allowedValues(prop, info.Filetype)
	if err != nil || av == nil {
		// No declared type to check against.
		return nil
	}
	if av.Datatype != want {
		return &Error{
			Kind: PropertyTypeMismatch,
			Text: prop.String() + " is declared " + av.Datatype.String() + ", not " + want.String(),
		}
	}
	return nil
}

// GetObjectString reads a string property of an object.
func (d *Device) GetObjectString(id uint32, prop Property) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return "", err
	}
	if err := d.propSupported(id, prop); err != nil {
		return "", err
	}
	s := C.LIBMTP_Get_String_From_Object(d.me, C.uint32_t(id), C.LIBMTP_property_t(prop))
	if s == nil {
		return "", d.lastError(QueryError, "get "+prop.String())
	}
	defer C.free(unsafe.Pointer(s))
	return C.GoString(s), nil
}

// SetObjectString writes a string property of an object. A device that
// reports the property unavailable or read-only fails with
// UnsupportedProperty.
func (d *Device) SetObjectString(id uint32, prop Property, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}
	if err := d.propSupported(id, prop); err != nil {
		return err
	}
	cvalue := C.CString(value)
	defer C.free(unsafe.Pointer(cvalue))
	if C.LIBMTP_Set_Object_String(d.me, C.uint32_t(id), C.LIBMTP_property_t(prop), cvalue) != 0 {
		return d.lastError(UnsupportedProperty, "set "+prop.String())
	}
	return nil
}

// GetObjectUint64 reads a 64-bit unsigned property of an object.
func (d *Device) GetObjectUint64(id uint32, prop Property) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return 0, err
	}
	if err := d.propSupported(id, prop); err != nil {
		return 0, err
	}
	v := C.LIBMTP_Get_u64_From_Object(d.me, C.uint32_t(id), C.LIBMTP_property_t(prop), 0)
	if C.LIBMTP_Get_Errorstack(d.me) != nil {
		return 0, d.lastError(QueryError, "get "+prop.String())
	}
	return uint64(v), nil
}

// GetObjectUint32 reads a 32-bit unsigned property of an object.
func (d *Device) GetObjectUint32(id uint32, prop Property) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return 0, err
	}
	if err := d.propSupported(id, prop); err != nil {
		return 0, err
	}
	v := C.LIBMTP_Get_u32_From_Object(d.me, C.uint32_t(id), C.LIBMTP_property_t(prop), 0)
	if C.LIBMTP_Get_Errorstack(d.me) != nil {
		return 0, d.lastError(QueryError, "get "+prop.String())
	}
	return uint32(v), nil
}

// SetObjectUint32 writes a 32-bit unsigned property of an object,
// after checking it against the property's declared type.
func (d *Device) SetObjectUint32(id uint32, prop Property, value uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}
	if err := d.propSupported(id, prop); err != nil {
		return err
	}
	if err := d.propTypeMatches(id, prop, DataTypeUint32); err != nil {
		return err
	}
	if C.LIBMTP_Set_Object_u32(d.me, C.uint32_t(id), C.LIBMTP_property_t(prop), C.uint32_t(value)) != 0 {
		return d.lastError(UnsupportedProperty, "set "+prop.String())
	}
	return nil
}

// GetObjectUint16 reads a 16-bit unsigned property of an object.
func (d *Device) GetObjectUint16(id uint32, prop Property) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return 0, err
	}
	if err := d.propSupported(id, prop); err != nil {
		return 0, err
	}
	v := C.LIBMTP_Get_u16_From_Object(d.me, C.uint32_t(id), C.LIBMTP_property_t(prop), 0)
	if C.LIBMTP_Get_Errorstack(d.me) != nil {
		return 0, d.lastError(QueryError, "get "+prop.String())
	}
	return uint16(v), nil
}

// SetObjectUint16 writes a 16-bit unsigned property of an object.
func (d *Device) SetObjectUint16(id uint32, prop Property, value uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}
	if err := d.propSupported(id, prop); err != nil {
		return err
	}
	if err := d.propTypeMatches(id, prop, DataTypeUint16); err != nil {
		return err
	}
	if C.LIBMTP_Set_Object_u16(d.me, C.uint32_t(id), C.LIBMTP_property_t(prop), C.uint16_t(value)) != 0 {
		return d.lastError(UnsupportedProperty, "set "+prop.String())
	}
	return nil
}

// GetObjectUint8 reads an 8-bit unsigned property of an object.
func (d *Device) GetObjectUint8(id uint32, prop Property) (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return 0, err
	}
	if err := d.propSupported(id, prop); err != nil {
		return 0, err
	}
	v := C.LIBMTP_Get_u8_From_Object(d.me, C.uint32_t(id), C.LIBMTP_property_t(prop), 0)
	if C.LIBMTP_Get_Errorstack(d.me) != nil {
		return 0, d.lastError(QueryError, "get "+prop.String())
	}
	return uint8(v), nil
}

// SetObjectUint8 writes an 8-bit unsigned property of an object.
func (d *Device) SetObjectUint8(id uint32, prop Property, value uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}
	if err := d.propSupported(id, prop); err != nil {
		return err
	}
	if err := d.propTypeMatches(id, prop, DataTypeUint8); err != nil {
		return err
	}
	if C.LIBMTP_Set_Object_u8(d.me, C.uint32_t(id), C.LIBMTP_property_t(prop), C.uint8_t(value)) != 0 {
		return d.lastError(UnsupportedProperty, "set "+prop.String())
	}
	return nil
}

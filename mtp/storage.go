package mtp

/*
#include <libmtp.h>
*/
import "C"

// StorageSort selects the ordering applied when refreshing storages.
type StorageSort int

const (
	NotSorted StorageSort = iota
	SortByFreeSpace
	SortByMaxSpace
)

// UpdateResult reports the outcome of an UpdateStorage call.
type UpdateResult int

const (
	// StorageSuccess: ids and properties were retrieved.
	StorageSuccess UpdateResult = iota
	// StorageOnlyIDs: partial success; the device yielded storage ids
	// but no properties.
	StorageOnlyIDs
)

// StorageType is the physical kind of a storage area.
type StorageType uint16

const (
	StorageUndefined StorageType = iota
	StorageFixedROM
	StorageRemovableROM
	StorageFixedRAM
	StorageRemovableRAM
)

// FilesystemType is the logical layout of a storage area.
type FilesystemType uint16

const (
	FilesystemUndefined FilesystemType = iota
	FilesystemGenericFlat
	FilesystemGenericHierarchical
	FilesystemDCF
)

// AccessCapability describes the level of access a storage allows.
type AccessCapability uint16

const (
	AccessReadWrite AccessCapability = iota
	AccessReadOnly
	AccessReadOnlyWithDeletion
)

// Storage is an immutable snapshot of one storage area, taken by
// UpdateStorage. Mutating the device does not update snapshots that
// were returned earlier; refresh with UpdateStorage instead.
type Storage struct {
	ID               uint32
	Type             StorageType
	Filesystem       FilesystemType
	Access           AccessCapability
	MaxCapacity      uint64
	FreeSpaceBytes   uint64
	FreeSpaceObjects uint64
	Description      string
	VolumeID         string
}

// IsHierarchical reports whether the storage supports folders.
func (s *Storage) IsHierarchical() bool {
	return s.Filesystem == FilesystemGenericHierarchical
}

// IsRemovable reports whether the storage is removable media.
func (s *Storage) IsRemovable() bool {
	return s.Type == StorageRemovableROM || s.Type == StorageRemovableRAM
}

// UpdateStorage refreshes the device's storage list and the wrapper's
// snapshot of it, optionally sorted. A device may answer with ids only;
// the result distinguishes that partial success from a full one.
func (d *Device) UpdateStorage(sort StorageSort) (UpdateResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return 0, err
	}

	res := C.LIBMTP_Get_Storage(d.me, C.int(sort))
	switch res {
	case 0:
		d.storages = d.readStorages()
		return StorageSuccess, nil
	case 1:
		d.storages = d.readStorages()
		return StorageOnlyIDs, nil
	}
	return 0, d.lastError(QueryError, "update storage")
}

// readStorages walks the native storage list. Callers hold d.mu.
func (d *Device) readStorages() []Storage {
	var out []Storage
	for p := d.me.storage; p != nil; p = p.next {
		s := Storage{
			ID:               uint32(p.id),
			Type:             StorageType(p.StorageType),
			Filesystem:       FilesystemType(p.FilesystemType),
			Access:           AccessCapability(p.AccessCapability),
			MaxCapacity:      uint64(p.MaxCapacity),
			FreeSpaceBytes:   uint64(p.FreeSpaceInBytes),
			FreeSpaceObjects: uint64(p.FreeSpaceInObjects),
		}
		if p.StorageDescription != nil {
			s.Description = C.GoString(p.StorageDescription)
		}
		if p.VolumeIdentifier != nil {
			s.VolumeID = C.GoString(p.VolumeIdentifier)
		}
		out = append(out, s)
	}
	return out
}

// Storages returns the snapshot taken by the last UpdateStorage call.
func (d *Device) Storages() ([]Storage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return nil, err
	}
	out := make([]Storage, len(d.storages))
	copy(out, d.storages)
	return out, nil
}

// hasStorage reports whether id is part of the current snapshot.
// Callers hold d.mu.
func (d *Device) hasStorage(id uint32) bool {
	for i := range d.storages {
		if d.storages[i].ID == id {
			return true
		}
	}
	return false
}

// FormatStorage formats the given storage, deleting all data on it.
// The confirm flag must be true; without it the call is rejected
// before any native operation runs.
func (d *Device) FormatStorage(id uint32, confirm bool) error {
	if !confirm {
		return &Error{Kind: FormatError, Text: "refusing to format storage: not confirmed"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}

	for p := d.me.storage; p != nil; p = p.next {
		if uint32(p.id) == id {
			if C.LIBMTP_Format_Storage(d.me, p) != 0 {
				return d.lastError(FormatError, "format storage")
			}
			d.storages = d.readStorages()
			return nil
		}
	}
	return &Error{Kind: NotFoundError, Text: "no such storage; run UpdateStorage first"}
}

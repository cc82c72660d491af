package mtp

/*
#include <stdlib.h>
#include <libmtp.h>
*/
import "C"

import "unsafe"

// Folder is one node of a storage's folder tree, flattened into parent
// references. Like all query results it is a snapshot.
type Folder struct {
	ID        uint32
	ParentID  uint32
	StorageID uint32
	Name      string
}

// Folders returns the folder tree of one storage (or of all storages
// for storageID 0), flattened depth-first. Devices without folder
// listing support yield an empty slice.
func (d *Device) Folders(storageID uint32) ([]Folder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return nil, err
	}

	var root *C.LIBMTP_folder_t
	if storageID == 0 {
		root = C.LIBMTP_Get_Folder_List(d.me)
	} else {
		root = C.LIBMTP_Get_Folder_List_For_Storage(d.me, C.uint32_t(storageID))
	}
	if root == nil {
		if C.LIBMTP_Get_Errorstack(d.me) != nil {
			return nil, d.lastError(QueryError, "list folders")
		}
		return nil, nil
	}
	// destroy_folder_t releases the whole tree under root.
	defer C.LIBMTP_destroy_folder_t(root)

	var out []Folder
	var walk func(f *C.LIBMTP_folder_t)
	walk = func(f *C.LIBMTP_folder_t) {
		for ; f != nil; f = f.sibling {
			node := Folder{
				ID:        uint32(f.folder_id),
				ParentID:  uint32(f.parent_id),
				StorageID: uint32(f.storage_id),
			}
			if f.name != nil {
				node.Name = C.GoString(f.name)
			}
			out = append(out, node)
			walk(f.child)
		}
	}
	walk(root)
	return out, nil
}

// CreateFolder creates a folder under parentID (ParentRoot or 0 for
// the top level) on the given storage. A non-zero storageID is
// validated against the snapshot taken by UpdateStorage. It returns
// the new folder's id and its actual name, which the device may have
// adjusted to fit its filesystem conventions.
func (d *Device) CreateFolder(name string, parentID, storageID uint32) (uint32, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return 0, "", err
	}
	if storageID != 0 && !d.hasStorage(storageID) {
		return 0, "", &Error{Kind: InvalidTargetError, Text: "destination storage is not part of this session"}
	}

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	if parentID == ParentRoot {
		parentID = 0
	}
	id := C.LIBMTP_Create_Folder(d.me, cname, C.uint32_t(parentID), C.uint32_t(storageID))
	if id == 0 {
		return 0, "", d.lastError(InvalidTargetError, "create folder "+name)
	}
	return uint32(id), C.GoString(cname), nil
}

// RenameFolder renames a folder through the typed folder call. An id
// that is not a known folder fails with NotFoundError.
func (d *Device) RenameFolder(id uint32, newName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}

	root := C.LIBMTP_Get_Folder_List(d.me)
	if root == nil {
		C.LIBMTP_Clear_Errorstack(d.me)
		return &Error{Kind: NotFoundError, Text: "no folder with that id"}
	}
	defer C.LIBMTP_destroy_folder_t(root)

	f := C.LIBMTP_Find_Folder(root, C.uint32_t(id))
	if f == nil {
		return &Error{Kind: NotFoundError, Text: "no folder with that id"}
	}

	cname := C.CString(newName)
	defer C.free(unsafe.Pointer(cname))
	if C.LIBMTP_Set_Folder_Name(d.me, f, cname) != 0 {
		return d.lastError(QueryError, "rename folder")
	}
	return nil
}

package mtp

/*
#include <stdint.h>
#include <stdlib.h>
#include <libmtp.h>

extern int goProgress(uint64_t sent, uint64_t total, void *data);
extern uint16_t goDataPut(void *params, void *priv, uint32_t sendlen, unsigned char *data, uint32_t *putlen);
extern uint16_t goDataGet(void *params, void *priv, uint32_t wantlen, unsigned char *data, uint32_t *gotlen);

static int go_get_file_to_handler(LIBMTP_mtpdevice_t *dev, uint32_t id, uintptr_t token, int withProgress) {
	return LIBMTP_Get_File_To_Handler(dev, id, (MTPDataPutFunc) goDataPut, (void *) token,
		withProgress ? (LIBMTP_progressfunc_t) goProgress : NULL, (void *) token);
}

static int go_send_file_from_handler(LIBMTP_mtpdevice_t *dev, uintptr_t token, LIBMTP_file_t *meta, int withProgress) {
	return LIBMTP_Send_File_From_Handler(dev, (MTPDataGetFunc) goDataGet, (void *) token, meta,
		withProgress ? (LIBMTP_progressfunc_t) goProgress : NULL, (void *) token);
}

static int go_get_file_to_file(LIBMTP_mtpdevice_t *dev, uint32_t id, const char *path, uintptr_t token, int withProgress) {
	return LIBMTP_Get_File_To_File(dev, id, path,
		withProgress ? (LIBMTP_progressfunc_t) goProgress : NULL, (void *) token);
}

static int go_send_file_from_file(LIBMTP_mtpdevice_t *dev, const char *path, LIBMTP_file_t *meta, uintptr_t token, int withProgress) {
	return LIBMTP_Send_File_From_File(dev, path, meta,
		withProgress ? (LIBMTP_progressfunc_t) goProgress : NULL, (void *) token);
}

static int go_get_file_to_fd(LIBMTP_mtpdevice_t *dev, uint32_t id, int fd, uintptr_t token, int withProgress) {
	return LIBMTP_Get_File_To_File_Descriptor(dev, id, fd,
		withProgress ? (LIBMTP_progressfunc_t) goProgress : NULL, (void *) token);
}

static int go_send_file_from_fd(LIBMTP_mtpdevice_t *dev, int fd, LIBMTP_file_t *meta, uintptr_t token, int withProgress) {
	return LIBMTP_Send_File_From_File_Descriptor(dev, fd, meta,
		withProgress ? (LIBMTP_progressfunc_t) goProgress : NULL, (void *) token);
}
*/
import "C"

import (
	"io"
	"time"
	"unsafe"
)

// ParentRoot addresses the top of an object hierarchy in listing and
// send operations.
const ParentRoot uint32 = C.LIBMTP_FILES_AND_FOLDERS_ROOT

// FileInfo is an immutable snapshot of one object (file or folder) in
// the device's object hierarchy. ParentID and StorageID always refer
// to entities of the session the snapshot was taken from.
type FileInfo struct {
	ID        uint32
	ParentID  uint32
	StorageID uint32
	Name      string
	Size      uint64
	Filetype  Filetype
	Modified  time.Time
}

// IsFolder reports whether the object is a folder association.
func (f *FileInfo) IsFolder() bool {
	return f.Filetype == FiletypeFolder
}

func fileInfo(f *C.LIBMTP_file_t) FileInfo {
	info := FileInfo{
		ID:        uint32(f.item_id),
		ParentID:  uint32(f.parent_id),
		StorageID: uint32(f.storage_id),
		Size:      uint64(f.filesize),
		Filetype:  Filetype(f.filetype),
		Modified:  time.Unix(int64(f.modificationdate), 0),
	}
	if f.filename != nil {
		info.Name = C.GoString(f.filename)
	}
	return info
}

// newFileT builds a native file struct from info. The result must be
// released with LIBMTP_destroy_file_t, which also frees the name.
func newFileT(info FileInfo) *C.LIBMTP_file_t {
	f := C.LIBMTP_new_file_t()
	f.item_id = 0
	f.parent_id = C.uint32_t(info.ParentID)
	f.storage_id = C.uint32_t(info.StorageID)
	f.filename = C.CString(info.Name)
	f.filesize = C.uint64_t(info.Size)
	mtime := info.Modified
	if mtime.IsZero() {
		mtime = time.Now()
	}
	f.modificationdate = C.time_t(mtime.Unix())
	f.filetype = C.LIBMTP_filetype_t(info.Filetype)
	return f
}

// FilesAndFolders lists the direct contents of a folder. storageID 0
// spans all storages; parentID ParentRoot lists the top level. An
// empty folder yields an empty slice.
func (d *Device) FilesAndFolders(storageID, parentID uint32) ([]FileInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return nil, err
	}

	l := C.LIBMTP_Get_Files_And_Folders(d.me, C.uint32_t(storageID), C.uint32_t(parentID))
	if l == nil {
		// nil is both "empty folder" and "failure"; the error stack
		// tells them apart.
		if C.LIBMTP_Get_Errorstack(d.me) != nil {
			return nil, d.lastError(QueryError, "list files and folders")
		}
		return nil, nil
	}

	var out []FileInfo
	for f := l; f != nil; {
		next := f.next
		out = append(out, fileInfo(f))
		C.LIBMTP_destroy_file_t(f)
		f = next
	}
	return out, nil
}

// FileMetadata looks up one object by id. A stale id fails with
// NotFoundError.
func (d *Device) FileMetadata(id uint32) (FileInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return FileInfo{}, err
	}
	return d.fileMetadata(id)
}

// fileMetadata is FileMetadata without locking. Callers hold d.mu.
func (d *Device) fileMetadata(id uint32) (FileInfo, error) {
	f := C.LIBMTP_Get_Filemetadata(d.me, C.uint32_t(id))
	if f == nil {
		C.LIBMTP_Clear_Errorstack(d.me)
		return FileInfo{}, &Error{Kind: NotFoundError, Text: "no object with that id"}
	}
	info := fileInfo(f)
	C.LIBMTP_destroy_file_t(f)
	return info, nil
}

// transferResult translates the outcome of a native transfer call.
// Callers hold d.mu.
func (d *Device) transferResult(res C.int, t *transfer, op string) error {
	if t.cancelled {
		C.LIBMTP_Clear_Errorstack(d.me)
		return &Error{Kind: TransferError, Code: int(C.LIBMTP_ERROR_CANCELLED), Text: op + " cancelled by caller"}
	}
	if t.ioErr != nil {
		C.LIBMTP_Clear_Errorstack(d.me)
		return &Error{Kind: TransferError, Text: op + ": " + t.ioErr.Error()}
	}
	if res != 0 {
		return d.lastError(TransferError, op)
	}
	return nil
}

func withProgress(p ProgressFunc) C.int {
	if p != nil {
		return 1
	}
	return 0
}

// GetFile streams the object's bytes into w. progress may be nil.
func (d *Device) GetFile(id uint32, w io.Writer, progress ProgressFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}

	t := &transfer{w: w, progress: progress}
	tok := registerTransfer(t)
	defer releaseTransfer(tok)

	res := C.go_get_file_to_handler(d.me, C.uint32_t(id), C.uintptr_t(tok), withProgress(progress))
	return d.transferResult(res, t, "get file")
}

// GetFileToFile retrieves the object into a local file at path.
func (d *Device) GetFileToFile(id uint32, path string, progress ProgressFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	t := &transfer{progress: progress}
	tok := registerTransfer(t)
	defer releaseTransfer(tok)

	res := C.go_get_file_to_file(d.me, C.uint32_t(id), cpath, C.uintptr_t(tok), withProgress(progress))
	return d.transferResult(res, t, "get file to "+path)
}

// GetFileToDescriptor retrieves the object into an open file
// descriptor.
func (d *Device) GetFileToDescriptor(id uint32, fd uintptr, progress ProgressFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}

	t := &transfer{progress: progress}
	tok := registerTransfer(t)
	defer releaseTransfer(tok)

	res := C.go_get_file_to_fd(d.me, C.uint32_t(id), C.int(fd), C.uintptr_t(tok), withProgress(progress))
	return d.transferResult(res, t, "get file to descriptor")
}

// SendFile streams info.Size bytes from r to the device, creating a
// new object described by info (Name, Size, Filetype, and the target
// StorageID/ParentID; zero values of the latter two let the device
// choose). A non-zero StorageID is validated against the snapshot
// taken by UpdateStorage, so run it at least once before targeting a
// storage explicitly. On success the returned FileInfo carries the id
// the device assigned.
//
// On failure the destination may hold a partial object; it is
// discoverable through FilesAndFolders and deletable by the caller.
// The wrapper never rolls it back.
func (d *Device) SendFile(r io.Reader, info FileInfo, progress ProgressFunc) (FileInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return FileInfo{}, err
	}
	if info.StorageID != 0 && !d.hasStorage(info.StorageID) {
		return FileInfo{}, &Error{Kind: InvalidTargetError, Text: "destination storage is not part of this session"}
	}

	meta := newFileT(info)
	defer C.LIBMTP_destroy_file_t(meta)

	t := &transfer{r: r, progress: progress}
	tok := registerTransfer(t)
	defer releaseTransfer(tok)

	res := C.go_send_file_from_handler(d.me, C.uintptr_t(tok), meta, withProgress(progress))
	if err := d.transferResult(res, t, "send file"); err != nil {
		return FileInfo{}, err
	}
	return fileInfo(meta), nil
}

// SendFileFromFile sends the local file at path to the device.
func (d *Device) SendFileFromFile(path string, info FileInfo, progress ProgressFunc) (FileInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return FileInfo{}, err
	}
	if info.StorageID != 0 && !d.hasStorage(info.StorageID) {
		return FileInfo{}, &Error{Kind: InvalidTargetError, Text: "destination storage is not part of this session"}
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	meta := newFileT(info)
	defer C.LIBMTP_destroy_file_t(meta)

	t := &transfer{progress: progress}
	tok := registerTransfer(t)
	defer releaseTransfer(tok)

	res := C.go_send_file_from_file(d.me, cpath, meta, C.uintptr_t(tok), withProgress(progress))
	if err := d.transferResult(res, t, "send file from "+path); err != nil {
		return FileInfo{}, err
	}
	return fileInfo(meta), nil
}

// SendFileFromDescriptor sends from an open file descriptor.
func (d *Device) SendFileFromDescriptor(fd uintptr, info FileInfo, progress ProgressFunc) (FileInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return FileInfo{}, err
	}
	if info.StorageID != 0 && !d.hasStorage(info.StorageID) {
		return FileInfo{}, &Error{Kind: InvalidTargetError, Text: "destination storage is not part of this session"}
	}

	meta := newFileT(info)
	defer C.LIBMTP_destroy_file_t(meta)

	t := &transfer{progress: progress}
	tok := registerTransfer(t)
	defer releaseTransfer(tok)

	res := C.go_send_file_from_fd(d.me, C.int(fd), meta, C.uintptr_t(tok), withProgress(progress))
	if err := d.transferResult(res, t, "send file from descriptor"); err != nil {
		return FileInfo{}, err
	}
	return fileInfo(meta), nil
}

// ReadPartial reads up to maxBytes of the object starting at offset.
// The device must support partial reads (CapGetPartialObject).
func (d *Device) ReadPartial(id uint32, offset uint64, maxBytes uint32) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return nil, err
	}

	var data *C.uchar
	var size C.uint
	if C.LIBMTP_GetPartialObject(d.me, C.uint32_t(id), C.uint64_t(offset), C.uint32_t(maxBytes), &data, &size) != 0 {
		return nil, d.lastError(TransferError, "read partial object")
	}
	defer C.free(unsafe.Pointer(data))
	return C.GoBytes(unsafe.Pointer(data), C.int(size)), nil
}

// RenameFile renames a file through the typed file call. Most devices
// treat it the same as RenameObject; it exists for firmwares that
// special-case files. A stale id fails with NotFoundError.
func (d *Device) RenameFile(id uint32, newName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}

	f := C.LIBMTP_Get_Filemetadata(d.me, C.uint32_t(id))
	if f == nil {
		C.LIBMTP_Clear_Errorstack(d.me)
		return &Error{Kind: NotFoundError, Text: "no object with that id"}
	}
	defer C.LIBMTP_destroy_file_t(f)

	cname := C.CString(newName)
	defer C.free(unsafe.Pointer(cname))
	if C.LIBMTP_Set_File_Name(d.me, f, cname) != 0 {
		return d.lastError(QueryError, "rename file")
	}
	return nil
}

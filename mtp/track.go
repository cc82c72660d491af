package mtp

/*
#include <stdint.h>
#include <stdlib.h>
#include <libmtp.h>

extern int goProgress(uint64_t sent, uint64_t total, void *data);
extern uint16_t goDataGet(void *params, void *priv, uint32_t wantlen, unsigned char *data, uint32_t *gotlen);

static int go_send_track_from_handler(LIBMTP_mtpdevice_t *dev, uintptr_t token, LIBMTP_track_t *meta, int withProgress) {
	return LIBMTP_Send_Track_From_Handler(dev, (MTPDataGetFunc) goDataGet, (void *) token, meta,
		withProgress ? (LIBMTP_progressfunc_t) goProgress : NULL, (void *) token);
}
*/
import "C"

import (
	"io"
	"time"
	"unsafe"
)

// TrackInfo is a snapshot of one audio track object, carrying the
// audio tags on top of the plain file attributes.
type TrackInfo struct {
	ID        uint32
	ParentID  uint32
	StorageID uint32
	Name      string
	Size      uint64
	Filetype  Filetype
	Modified  time.Time

	Title       string
	Artist      string
	Composer    string
	Genre       string
	Album       string
	Date        string
	TrackNumber uint16
	Duration    uint32
	SampleRate  uint32
	Channels    uint16
	Bitrate     uint32
	Rating      uint16
	UseCount    uint32
}

func trackInfo(t *C.LIBMTP_track_t) TrackInfo {
	info := TrackInfo{
		ID:          uint32(t.item_id),
		ParentID:    uint32(t.parent_id),
		StorageID:   uint32(t.storage_id),
		Size:        uint64(t.filesize),
		Filetype:    Filetype(t.filetype),
		Modified:    time.Unix(int64(t.modificationdate), 0),
		TrackNumber: uint16(t.tracknumber),
		Duration:    uint32(t.duration),
		SampleRate:  uint32(t.samplerate),
		Channels:    uint16(t.nochannels),
		Bitrate:     uint32(t.bitrate),
		Rating:      uint16(t.rating),
		UseCount:    uint32(t.usecount),
	}
	if t.filename != nil {
		info.Name = C.GoString(t.filename)
	}
	if t.title != nil {
		info.Title = C.GoString(t.title)
	}
	if t.artist != nil {
		info.Artist = C.GoString(t.artist)
	}
	if t.composer != nil {
		info.Composer = C.GoString(t.composer)
	}
	if t.genre != nil {
		info.Genre = C.GoString(t.genre)
	}
	if t.album != nil {
		info.Album = C.GoString(t.album)
	}
	if t.date != nil {
		info.Date = C.GoString(t.date)
	}
	return info
}

// newTrackT builds a native track struct from info. The result must be
// released with LIBMTP_destroy_track_t, which also frees the strings.
func newTrackT(info TrackInfo) *C.LIBMTP_track_t {
	t := C.LIBMTP_new_track_t()
	t.item_id = C.uint32_t(info.ID)
	t.parent_id = C.uint32_t(info.ParentID)
	t.storage_id = C.uint32_t(info.StorageID)
	t.filename = C.CString(info.Name)
	t.title = C.CString(info.Title)
	t.artist = C.CString(info.Artist)
	t.composer = C.CString(info.Composer)
	t.genre = C.CString(info.Genre)
	t.album = C.CString(info.Album)
	t.date = C.CString(info.Date)
	t.tracknumber = C.uint16_t(info.TrackNumber)
	t.duration = C.uint32_t(info.Duration)
	t.samplerate = C.uint32_t(info.SampleRate)
	t.nochannels = C.uint16_t(info.Channels)
	t.bitrate = C.uint32_t(info.Bitrate)
	t.rating = C.uint16_t(info.Rating)
	t.usecount = C.uint32_t(info.UseCount)
	t.filesize = C.uint64_t(info.Size)
	mtime := info.Modified
	if mtime.IsZero() {
		mtime = time.Now()
	}
	t.modificationdate = C.time_t(mtime.Unix())
	t.filetype = C.LIBMTP_filetype_t(info.Filetype)
	return t
}

// Tracks lists the audio tracks on one storage, or on every storage
// when storageID is 0. Slow on large collections; the whole listing is
// fetched in one native call.
func (d *Device) Tracks(storageID uint32) ([]TrackInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return nil, err
	}

	l := C.LIBMTP_Get_Tracklisting_With_Callback_For_Storage(d.me, C.uint32_t(storageID), nil, nil)
	if l == nil {
		if C.LIBMTP_Get_Errorstack(d.me) != nil {
			return nil, d.lastError(QueryError, "list tracks")
		}
		return nil, nil
	}

	var out []TrackInfo
	for t := l; t != nil; {
		next := t.next
		out = append(out, trackInfo(t))
		C.LIBMTP_destroy_track_t(t)
		t = next
	}
	return out, nil
}

// TrackMetadata looks up one track by id. A stale or non-track id
// fails with NotFoundError.
func (d *Device) TrackMetadata(id uint32) (TrackInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return TrackInfo{}, err
	}

	t := C.LIBMTP_Get_Trackmetadata(d.me, C.uint32_t(id))
	if t == nil {
		C.LIBMTP_Clear_Errorstack(d.me)
		return TrackInfo{}, &Error{Kind: NotFoundError, Text: "no track with that id"}
	}
	info := trackInfo(t)
	C.LIBMTP_destroy_track_t(t)
	return info, nil
}

// SendTrack streams info.Size bytes from r to the device as a tagged
// audio track. Semantics match SendFile; the extra tags are applied
// during the same transfer.
func (d *Device) SendTrack(r io.Reader, info TrackInfo, progress ProgressFunc) (TrackInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return TrackInfo{}, err
	}
	if info.StorageID != 0 && !d.hasStorage(info.StorageID) {
		return TrackInfo{}, &Error{Kind: InvalidTargetError, Text: "destination storage is not part of this session"}
	}

	meta := newTrackT(info)
	meta.item_id = 0
	defer C.LIBMTP_destroy_track_t(meta)

	t := &transfer{r: r, progress: progress}
	tok := registerTransfer(t)
	defer releaseTransfer(tok)

	res := C.go_send_track_from_handler(d.me, C.uintptr_t(tok), meta, withProgress(progress))
	if err := d.transferResult(res, t, "send track"); err != nil {
		return TrackInfo{}, err
	}
	return trackInfo(meta), nil
}

// UpdateTrackMetadata rewrites the audio tags of an existing track.
// info.ID selects the track; a stale id fails with NotFoundError.
func (d *Device) UpdateTrackMetadata(info TrackInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}
	if _, err := d.fileMetadata(info.ID); err != nil {
		return err
	}

	meta := newTrackT(info)
	defer C.LIBMTP_destroy_track_t(meta)

	if C.LIBMTP_Update_Track_Metadata(d.me, meta) != 0 {
		return d.lastError(QueryError, "update track metadata")
	}
	return nil
}

// RenameTrack renames a track through the typed track call. A stale or
// non-track id fails with NotFoundError.
func (d *Device) RenameTrack(id uint32, newName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return err
	}

	tr := C.LIBMTP_Get_Trackmetadata(d.me, C.uint32_t(id))
	if tr == nil {
		C.LIBMTP_Clear_Errorstack(d.me)
		return &Error{Kind: NotFoundError, Text: "no track with that id"}
	}
	defer C.LIBMTP_destroy_track_t(tr)

	cname := C.CString(newName)
	defer C.free(unsafe.Pointer(cname))
	if C.LIBMTP_Set_Track_Name(d.me, tr, cname) != 0 {
		return d.lastError(QueryError, "rename track")
	}
	return nil
}

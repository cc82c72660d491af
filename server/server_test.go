package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtpkit/go-libmtp/log"
	"github.com/mtpkit/go-libmtp/mtp"
)

// fakeDevice serves a tiny in-memory object tree.
type fakeDevice struct {
	storages []mtp.Storage
	objects  map[uint32]mtp.FileInfo
	content  map[uint32][]byte
	nextID   uint32
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		storages: []mtp.Storage{{ID: 0x10001, Description: "Internal storage", MaxCapacity: 1 << 30, FreeSpaceBytes: 1 << 29}},
		objects: map[uint32]mtp.FileInfo{
			1: {ID: 1, ParentID: mtp.ParentRoot, StorageID: 0x10001, Name: "Music", Filetype: mtp.FiletypeFolder},
			2: {ID: 2, ParentID: 1, StorageID: 0x10001, Name: "song.mp3", Size: 3, Filetype: mtp.FiletypeMp3},
		},
		content: map[uint32][]byte{2: []byte("abc")},
		nextID:  100,
	}
}

func (f *fakeDevice) Storages() ([]mtp.Storage, error) { return f.storages, nil }

func (f *fakeDevice) UpdateStorage(mtp.StorageSort) (mtp.UpdateResult, error) {
	return mtp.StorageSuccess, nil
}

func (f *fakeDevice) FilesAndFolders(storageID, parentID uint32) ([]mtp.FileInfo, error) {
	var out []mtp.FileInfo
	for _, o := range f.objects {
		if o.ParentID == parentID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeDevice) FileMetadata(id uint32) (mtp.FileInfo, error) {
	o, ok := f.objects[id]
	if !ok {
		return mtp.FileInfo{}, &mtp.Error{Kind: mtp.NotFoundError, Text: "no object with that id"}
	}
	return o, nil
}

func (f *fakeDevice) GetFile(id uint32, w io.Writer, progress mtp.ProgressFunc) error {
	data, ok := f.content[id]
	if !ok {
		return &mtp.Error{Kind: mtp.NotFoundError, Text: "no object with that id"}
	}
	_, err := w.Write(data)
	return err
}

func (f *fakeDevice) SendFile(r io.Reader, info mtp.FileInfo, progress mtp.ProgressFunc) (mtp.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return mtp.FileInfo{}, &mtp.Error{Kind: mtp.TransferError, Text: err.Error()}
	}
	f.nextID++
	info.ID = f.nextID
	f.objects[info.ID] = info
	f.content[info.ID] = data
	return info, nil
}

func (f *fakeDevice) CreateFolder(name string, parentID, storageID uint32) (uint32, string, error) {
	f.nextID++
	f.objects[f.nextID] = mtp.FileInfo{ID: f.nextID, ParentID: parentID, StorageID: storageID, Name: name, Filetype: mtp.FiletypeFolder}
	return f.nextID, name, nil
}

func (f *fakeDevice) DeleteObject(id uint32) error {
	if _, ok := f.objects[id]; !ok {
		return &mtp.Error{Kind: mtp.NotFoundError, Text: "no object with that id"}
	}
	delete(f.objects, id)
	delete(f.content, id)
	return nil
}

func (f *fakeDevice) MoveObject(id, storageID, parentID uint32) error {
	o, ok := f.objects[id]
	if !ok {
		return &mtp.Error{Kind: mtp.NotFoundError, Text: "no object with that id"}
	}
	o.StorageID = storageID
	o.ParentID = parentID
	f.objects[id] = o
	return nil
}

func (f *fakeDevice) RenameObject(id uint32, newName string) error {
	o, ok := f.objects[id]
	if !ok {
		return &mtp.Error{Kind: mtp.NotFoundError, Text: "no object with that id"}
	}
	o.Name = newName
	f.objects[id] = o
	return nil
}

func startServer(t *testing.T, readOnly bool) (*fakeDevice, *httptest.Server) {
	t.Helper()
	dev := newFakeDevice()
	s := New(dev, readOnly, log.Root, context.Background())
	ts := httptest.NewServer(s.Mux())
	t.Cleanup(ts.Close)
	return dev, ts
}

func dialControl(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/control"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func roundtrip(t *testing.T, ws *websocket.Conn, req *RequestPayload) *ResponsePayload {
	t.Helper()
	require.NoError(t, ws.WriteJSON(req))
	var resp ResponsePayload
	require.NoError(t, ws.ReadJSON(&resp))
	assert.Equal(t, req.Seq, resp.Seq)
	return &resp
}

func TestControlBrowse(t *testing.T) {
	_, ts := startServer(t, false)
	ws := dialControl(t, ts)

	resp := roundtrip(t, ws, &RequestPayload{Seq: 1, Op: "storages"})
	require.Empty(t, resp.Error)
	require.Len(t, resp.Storages, 1)
	assert.Equal(t, "Internal storage", resp.Storages[0].Description)

	resp = roundtrip(t, ws, &RequestPayload{Seq: 2, Op: "list", StorageID: 0x10001})
	require.Empty(t, resp.Error)
	require.Len(t, resp.Objects, 1)
	assert.Equal(t, "Music", resp.Objects[0].Name)
	assert.True(t, resp.Objects[0].Folder)

	resp = roundtrip(t, ws, &RequestPayload{Seq: 3, Op: "stat", ObjectID: 2})
	require.Empty(t, resp.Error)
	require.NotNil(t, resp.Object)
	assert.Equal(t, "song.mp3", resp.Object.Name)
	assert.EqualValues(t, 3, resp.Object.Size)

	resp = roundtrip(t, ws, &RequestPayload{Seq: 4, Op: "stat", ObjectID: 999})
	assert.Contains(t, resp.Error, "not found")
}

func TestControlMutations(t *testing.T) {
	dev, ts := startServer(t, false)
	ws := dialControl(t, ts)

	resp := roundtrip(t, ws, &RequestPayload{Seq: 1, Op: "mkdir", Name: "Pictures", StorageID: 0x10001, ParentID: mtp.ParentRoot})
	require.Empty(t, resp.Error)
	require.NotNil(t, resp.Object)
	dirID := resp.Object.ID

	resp = roundtrip(t, ws, &RequestPayload{Seq: 2, Op: "move", ObjectID: 2, StorageID: 0x10001, ParentID: dirID})
	require.Empty(t, resp.Error)
	assert.Equal(t, dirID, dev.objects[2].ParentID)

	resp = roundtrip(t, ws, &RequestPayload{Seq: 3, Op: "rename", ObjectID: 2, Name: "tune.mp3"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "tune.mp3", dev.objects[2].Name)

	resp = roundtrip(t, ws, &RequestPayload{Seq: 4, Op: "delete", ObjectID: 2})
	require.Empty(t, resp.Error)
	_, ok := dev.objects[2]
	assert.False(t, ok)

	resp = roundtrip(t, ws, &RequestPayload{Seq: 5, Op: "bogus"})
	assert.Contains(t, resp.Error, "unknown op")
}

func TestControlReadOnly(t *testing.T) {
	dev, ts := startServer(t, true)
	ws := dialControl(t, ts)

	resp := roundtrip(t, ws, &RequestPayload{Seq: 1, Op: "delete", ObjectID: 2})
	assert.Contains(t, resp.Error, "read-only")
	_, ok := dev.objects[2]
	assert.True(t, ok, "read-only server must not mutate")

	// Browsing stays available.
	resp = roundtrip(t, ws, &RequestPayload{Seq: 2, Op: "storages"})
	assert.Empty(t, resp.Error)
}

func TestControlWritesWithStatusBroadcast(t *testing.T) {
	// Control responses and status broadcasts go to the same
	// connection; the connection tolerates only one writer at a time,
	// so both paths must serialize on controlLock.
	s := New(newFakeDevice(), false, log.Root, context.Background())
	ts := httptest.NewServer(s.Mux())
	t.Cleanup(ts.Close)
	ws := dialControl(t, ts)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s.broadcastStatus()
		}
	}()

	for seq := 1; seq <= 20; seq++ {
		require.NoError(t, ws.WriteJSON(&RequestPayload{Seq: seq, Op: "stat", ObjectID: 2}))
		for {
			_, msg, err := ws.ReadMessage()
			require.NoError(t, err)
			var resp ResponsePayload
			require.NoError(t, json.Unmarshal(msg, &resp))
			if resp.Op == "" {
				// Status frame, keep reading.
				continue
			}
			assert.Equal(t, seq, resp.Seq)
			break
		}
	}
	<-done
}

func TestDownload(t *testing.T) {
	_, ts := startServer(t, false)

	resp, err := http.Get(ts.URL + "/download?id=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "song.mp3")

	resp, err = http.Get(ts.URL + "/download?id=999")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A folder has no byte stream.
	resp, err = http.Get(ts.URL + "/download?id=1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpload(t *testing.T) {
	dev, ts := startServer(t, false)

	payload := strings.NewReader("new file bytes")
	resp, err := http.Post(ts.URL+"/upload?name=note.txt&storage_id=65537&parent_id=1", "application/octet-stream", payload)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var o ObjectPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&o))
	assert.Equal(t, "note.txt", o.Name)
	assert.Equal(t, []byte("new file bytes"), dev.content[o.ID])

	resp, err = http.Post(ts.URL+"/upload", "application/octet-stream", bytes.NewReader(nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadReadOnly(t *testing.T) {
	_, ts := startServer(t, true)

	resp, err := http.Post(ts.URL+"/upload?name=x", "application/octet-stream", strings.NewReader("x"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

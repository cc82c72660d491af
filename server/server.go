// Package server exposes an attached MTP device over HTTP: a
// WebSocket control channel for browsing and mutating the object
// tree, plain HTTP endpoints for up- and downloads, and a status
// broadcast with live transfer rates.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/paulbellamy/ratecounter"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/mtpkit/go-libmtp/mtp"
)

// Device is the slice of the mtp.Device surface the server drives.
type Device interface {
	Storages() ([]mtp.Storage, error)
	UpdateStorage(sort mtp.StorageSort) (mtp.UpdateResult, error)
	FilesAndFolders(storageID, parentID uint32) ([]mtp.FileInfo, error)
	FileMetadata(id uint32) (mtp.FileInfo, error)
	GetFile(id uint32, w io.Writer, progress mtp.ProgressFunc) error
	SendFile(r io.Reader, info mtp.FileInfo, progress mtp.ProgressFunc) (mtp.FileInfo, error)
	CreateFolder(name string, parentID, storageID uint32) (uint32, string, error)
	DeleteObject(id uint32) error
	MoveObject(id, storageID, parentID uint32) error
	RenameObject(id uint32, newName string) error
}

type Server struct {
	dev      Device
	readOnly bool

	xferRate  *ratecounter.RateCounter
	xferBytes *atomic.Int64
	xferBusy  *atomic.Bool

	upgrader       websocket.Upgrader
	controlClients map[*websocket.Conn]bool
	controlLock    sync.Mutex

	eg  *errgroup.Group
	ctx context.Context
	log *logrus.Logger
}

func New(dev Device, readOnly bool, log *logrus.Logger, ctx context.Context) *Server {
	eg, egCtx := errgroup.WithContext(ctx)

	return &Server{
		dev:      dev,
		readOnly: readOnly,

		xferRate:  ratecounter.NewRateCounter(time.Second),
		xferBytes: atomic.NewInt64(0),
		xferBusy:  atomic.NewBool(false),

		controlClients: map[*websocket.Conn]bool{},

		eg:  eg,
		ctx: egCtx,
		log: log,
	}
}

// Mux returns the handler tree. The caller owns the http.Server.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/control", s.HandleControl)
	mux.HandleFunc("/download", s.HandleDownload)
	mux.HandleFunc("/upload", s.HandleUpload)
	return mux
}

// Run drives the periodic status broadcast until the context is
// cancelled.
func (s *Server) Run() error {
	s.eg.Go(s.workerBroadcastStatus)
	return s.eg.Wait()
}

// WebSocket control channel

// RequestPayload is one control message. Op selects the operation;
// the remaining fields are read as each operation needs them.
type RequestPayload struct {
	Seq       int    `json:"seq"`
	Op        string `json:"op"`
	StorageID uint32 `json:"storage_id,omitempty"`
	ParentID  uint32 `json:"parent_id,omitempty"`
	ObjectID  uint32 `json:"object_id,omitempty"`
	Name      string `json:"name,omitempty"`
}

type ResponsePayload struct {
	Seq      int              `json:"seq"`
	Op       string           `json:"op"`
	Error    string           `json:"error,omitempty"`
	Storages []StoragePayload `json:"storages,omitempty"`
	Objects  []ObjectPayload  `json:"objects,omitempty"`
	Object   *ObjectPayload   `json:"object,omitempty"`
}

type StoragePayload struct {
	ID          uint32 `json:"id"`
	Description string `json:"description"`
	MaxCapacity uint64 `json:"max_capacity"`
	FreeSpace   uint64 `json:"free_space"`
}

type ObjectPayload struct {
	ID        uint32 `json:"id"`
	ParentID  uint32 `json:"parent_id"`
	StorageID uint32 `json:"storage_id"`
	Name      string `json:"name"`
	Size      uint64 `json:"size"`
	Folder    bool   `json:"folder"`
	Modified  int64  `json:"modified"`
}

type StatusPayload struct {
	TransferRate  int64 `json:"transfer_rate"`
	TransferBytes int64 `json:"transfer_bytes"`
	TransferBusy  bool  `json:"transfer_busy"`
}

func objectPayload(f mtp.FileInfo) ObjectPayload {
	return ObjectPayload{
		ID:        f.ID,
		ParentID:  f.ParentID,
		StorageID: f.StorageID,
		Name:      f.Name,
		Size:      f.Size,
		Folder:    f.IsFolder(),
		Modified:  f.Modified.Unix(),
	}
}

func (s *Server) HandleControl(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithField("prefix", "www.HandleControl").Errorf("failed to upgrade: %s", err)
		return
	}
	defer ws.Close()

	s.registerControlClient(ws)
	for {
		var p RequestPayload
		err := ws.ReadJSON(&p)
		if err != nil {
			s.log.WithField("prefix", "www.HandleControl").Errorf("failed to read a message: %s", err)
			s.unregisterControlClient(ws)
			return
		}

		resp := s.dispatch(&p)
		if err := s.writeControl(ws, resp); err != nil {
			s.log.WithField("prefix", "www.HandleControl").Errorf("failed to send a response: %s", err)
			s.unregisterControlClient(ws)
			return
		}
	}
}

func (s *Server) dispatch(p *RequestPayload) *ResponsePayload {
	resp := &ResponsePayload{Seq: p.Seq, Op: p.Op}

	fail := func(err error) *ResponsePayload {
		resp.Error = err.Error()
		return resp
	}

	switch p.Op {
	case "storages":
		if _, err := s.dev.UpdateStorage(mtp.NotSorted); err != nil {
			return fail(err)
		}
		storages, err := s.dev.Storages()
		if err != nil {
			return fail(err)
		}
		for _, st := range storages {
			resp.Storages = append(resp.Storages, StoragePayload{
				ID:          st.ID,
				Description: st.Description,
				MaxCapacity: st.MaxCapacity,
				FreeSpace:   st.FreeSpaceBytes,
			})
		}

	case "list":
		parent := p.ParentID
		if parent == 0 {
			parent = mtp.ParentRoot
		}
		objs, err := s.dev.FilesAndFolders(p.StorageID, parent)
		if err != nil {
			return fail(err)
		}
		for _, o := range objs {
			resp.Objects = append(resp.Objects, objectPayload(o))
		}

	case "stat":
		info, err := s.dev.FileMetadata(p.ObjectID)
		if err != nil {
			return fail(err)
		}
		o := objectPayload(info)
		resp.Object = &o

	case "mkdir":
		if err := s.mutable(); err != nil {
			return fail(err)
		}
		id, name, err := s.dev.CreateFolder(p.Name, p.ParentID, p.StorageID)
		if err != nil {
			return fail(err)
		}
		resp.Object = &ObjectPayload{ID: id, ParentID: p.ParentID, StorageID: p.StorageID, Name: name, Folder: true}

	case "delete":
		if err := s.mutable(); err != nil {
			return fail(err)
		}
		if err := s.dev.DeleteObject(p.ObjectID); err != nil {
			return fail(err)
		}

	case "move":
		if err := s.mutable(); err != nil {
			return fail(err)
		}
		if err := s.dev.MoveObject(p.ObjectID, p.StorageID, p.ParentID); err != nil {
			return fail(err)
		}

	case "rename":
		if err := s.mutable(); err != nil {
			return fail(err)
		}
		if err := s.dev.RenameObject(p.ObjectID, p.Name); err != nil {
			return fail(err)
		}

	default:
		resp.Error = fmt.Sprintf("unknown op %q", p.Op)
	}
	return resp
}

func (s *Server) mutable() error {
	if s.readOnly {
		return fmt.Errorf("server is read-only")
	}
	return nil
}

func (s *Server) registerControlClient(c *websocket.Conn) {
	s.controlLock.Lock()
	defer s.controlLock.Unlock()
	s.controlClients[c] = true
}

func (s *Server) unregisterControlClient(c *websocket.Conn) {
	s.controlLock.Lock()
	defer s.controlLock.Unlock()
	delete(s.controlClients, c)
}

// writeControl sends one message to a control client. The connection
// supports only a single concurrent writer, and the status broadcaster
// writes to the same registered connections, so every write takes
// controlLock.
func (s *Server) writeControl(c *websocket.Conn, v interface{}) error {
	s.controlLock.Lock()
	defer s.controlLock.Unlock()
	return c.WriteJSON(v)
}

// Transfers

// countingWriter feeds the transfer counters as bytes pass through.
type countingWriter struct {
	w io.Writer
	s *Server
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.s.xferRate.Incr(int64(n))
	cw.s.xferBytes.Add(int64(n))
	return n, err
}

type countingReader struct {
	r io.Reader
	s *Server
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.s.xferRate.Incr(int64(n))
	cr.s.xferBytes.Add(int64(n))
	return n, err
}

func (s *Server) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 32)
	if err != nil {
		http.Error(w, "bad or missing id", http.StatusBadRequest)
		return
	}

	info, err := s.dev.FileMetadata(uint32(id))
	if err != nil {
		httpError(w, err)
		return
	}
	if info.IsFolder() {
		http.Error(w, "object is a folder", http.StatusBadRequest)
		return
	}

	s.xferBusy.Store(true)
	defer s.xferBusy.Store(false)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatUint(info.Size, 10))
	w.Header().Set("Content-Disposition", "attachment; filename=\""+info.Name+"\"")

	err = s.dev.GetFile(info.ID, &countingWriter{w: w, s: s}, nil)
	if err != nil {
		// Headers are gone; all we can do is log and cut the stream.
		s.log.WithField("prefix", "www.HandleDownload").Errorf("download of %d failed: %s", info.ID, err)
	}
}

func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	if err := s.mutable(); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	storageID, _ := strconv.ParseUint(q.Get("storage_id"), 10, 32)
	parentID, _ := strconv.ParseUint(q.Get("parent_id"), 10, 32)
	if r.ContentLength < 0 {
		http.Error(w, "Content-Length required", http.StatusBadRequest)
		return
	}

	s.xferBusy.Store(true)
	defer s.xferBusy.Store(false)

	sent, err := s.dev.SendFile(&countingReader{r: r.Body, s: s}, mtp.FileInfo{
		Name:      name,
		Size:      uint64(r.ContentLength),
		Filetype:  mtp.FiletypeUnknown,
		StorageID: uint32(storageID),
		ParentID:  uint32(parentID),
	}, nil)
	if err != nil {
		httpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	o := objectPayload(sent)
	_ = json.NewEncoder(w).Encode(&o)
}

func httpError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case mtp.IsKind(err, mtp.NotFoundError):
		code = http.StatusNotFound
	case mtp.IsKind(err, mtp.InvalidTargetError):
		code = http.StatusBadRequest
	case mtp.IsKind(err, mtp.ConnectionError):
		code = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), code)
}

// Workers

func (s *Server) workerBroadcastStatus() error {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return nil
		case <-tick.C:
		}
		s.broadcastStatus()
	}
}

func (s *Server) broadcastStatus() {
	s.controlLock.Lock()
	defer s.controlLock.Unlock()

	status := StatusPayload{
		TransferRate:  s.xferRate.Rate(),
		TransferBytes: s.xferBytes.Load(),
		TransferBusy:  s.xferBusy.Load(),
	}
	j, err := json.Marshal(&status)
	if err != nil {
		s.log.WithField("prefix", "www.workerBroadcastStatus").Errorf("failed to marshal payload: %s", err)
		return
	}
	for c := range s.controlClients {
		if err := c.WriteMessage(websocket.TextMessage, j); err != nil {
			s.log.WithField("prefix", "www.workerBroadcastStatus").Errorf("failed to send status: %s", err)
		}
	}
}

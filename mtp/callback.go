package mtp

/*
#include <libmtp.h>
*/
import "C"

import (
	"io"
	"sync"
	"unsafe"
)

// CallbackReturn is the verdict a ProgressFunc gives after each
// progress report.
type CallbackReturn int

const (
	// Continue lets the transfer proceed.
	Continue CallbackReturn = iota
	// Cancel aborts the transfer; the operation fails with a
	// TransferError and any partial destination object stays on the
	// device for the caller to delete.
	Cancel
)

// ProgressFunc reports transfer progress. It is invoked synchronously
// on the goroutine that started the transfer, so it must not call back
// into the same Device.
type ProgressFunc func(sent, total uint64) CallbackReturn

// Verdicts the data handlers give back to the native layer.
const (
	handlerOK     = C.LIBMTP_HANDLER_RETURN_OK
	handlerError  = C.LIBMTP_HANDLER_RETURN_ERROR
	handlerCancel = C.LIBMTP_HANDLER_RETURN_CANCEL
)

// transfer is the Go-side state of one native transfer call. C code
// cannot hold Go pointers, so the state is parked in a registry and
// addressed by an integer token for the duration of the call.
type transfer struct {
	w         io.Writer
	r         io.Reader
	progress  ProgressFunc
	ioErr     error
	cancelled bool
}

var transfers = struct {
	sync.Mutex
	m    map[uintptr]*transfer
	next uintptr
}{m: map[uintptr]*transfer{}}

func registerTransfer(t *transfer) uintptr {
	transfers.Lock()
	defer transfers.Unlock()
	transfers.next++
	tok := transfers.next
	transfers.m[tok] = t
	return tok
}

func lookupTransfer(tok uintptr) *transfer {
	transfers.Lock()
	defer transfers.Unlock()
	return transfers.m[tok]
}

func releaseTransfer(tok uintptr) {
	transfers.Lock()
	defer transfers.Unlock()
	delete(transfers.m, tok)
}

//export goProgress
func goProgress(sent, total C.uint64_t, data unsafe.Pointer) C.int {
	t := lookupTransfer(uintptr(data))
	if t == nil || t.progress == nil {
		return 0
	}
	if t.progress(uint64(sent), uint64(total)) == Cancel {
		t.cancelled = true
		return 1
	}
	return 0
}

//export goDataPut
func goDataPut(params, priv unsafe.Pointer, sendlen C.uint32_t, data *C.uchar, putlen *C.uint32_t) C.uint16_t {
	t := lookupTransfer(uintptr(priv))
	if t == nil || t.w == nil {
		return handlerError
	}
	if t.cancelled {
		return handlerCancel
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(data)), int(sendlen))
	n, err := t.w.Write(buf)
	*putlen = C.uint32_t(n)
	if err != nil {
		t.ioErr = err
		return handlerError
	}
	return handlerOK
}

//export goDataGet
func goDataGet(params, priv unsafe.Pointer, wantlen C.uint32_t, data *C.uchar, gotlen *C.uint32_t) C.uint16_t {
	t := lookupTransfer(uintptr(priv))
	if t == nil || t.r == nil {
		return handlerError
	}
	if t.cancelled {
		return handlerCancel
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(data)), int(wantlen))
	n, err := io.ReadFull(t.r, buf)
	*gotlen = C.uint32_t(n)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		t.ioErr = err
		return handlerError
	}
	return handlerOK
}

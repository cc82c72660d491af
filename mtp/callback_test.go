package mtp

import (
	"bytes"
	"strings"
	"testing"
	"unsafe"
)

func TestTransferRegistry(t *testing.T) {
	a := &transfer{}
	b := &transfer{}

	ta := registerTransfer(a)
	tb := registerTransfer(b)
	if ta == tb {
		t.Fatal("tokens must be distinct")
	}
	if lookupTransfer(ta) != a || lookupTransfer(tb) != b {
		t.Fatal("lookup returned the wrong transfer")
	}

	releaseTransfer(ta)
	if lookupTransfer(ta) != nil {
		t.Error("released token still resolves")
	}
	if lookupTransfer(tb) != b {
		t.Error("release of one token must not disturb another")
	}
	releaseTransfer(tb)

	if lookupTransfer(0) != nil {
		t.Error("token 0 must never resolve")
	}
}

func TestTransferRegistryReuse(t *testing.T) {
	// Tokens are never reused within a process lifetime; a late native
	// callback with a stale token must find nothing.
	tr := &transfer{}
	tok := registerTransfer(tr)
	releaseTransfer(tok)

	tok2 := registerTransfer(&transfer{})
	defer releaseTransfer(tok2)
	if tok2 == tok {
		t.Error("token reused after release")
	}
}

func TestProgressContinue(t *testing.T) {
	tr := &transfer{
		progress: func(sent, total uint64) CallbackReturn { return Continue },
	}
	tok := registerTransfer(tr)
	defer releaseTransfer(tok)

	if goProgress(1, 2, unsafe.Pointer(tok)) != 0 {
		t.Error("Continue verdict must let the transfer proceed")
	}
	if tr.cancelled {
		t.Error("Continue must not mark the transfer cancelled")
	}
}

func TestProgressCancel(t *testing.T) {
	var calls int
	tr := &transfer{
		w: &bytes.Buffer{},
		r: strings.NewReader("abc"),
		progress: func(sent, total uint64) CallbackReturn {
			calls++
			return Cancel
		},
	}
	tok := registerTransfer(tr)
	defer releaseTransfer(tok)

	if goProgress(1, 2, unsafe.Pointer(tok)) == 0 {
		t.Fatal("Cancel verdict must be passed to the native layer")
	}
	if calls != 1 {
		t.Fatalf("progress called %d times, want 1", calls)
	}
	if !tr.cancelled {
		t.Fatal("Cancel verdict not recorded on the transfer")
	}

	// Once cancelled, the data handlers stop moving bytes and answer
	// with the cancel verdict instead.
	if got := goDataPut(nil, unsafe.Pointer(tok), 0, nil, nil); got != handlerCancel {
		t.Errorf("goDataPut after cancel = %d, want %d", got, handlerCancel)
	}
	if got := goDataGet(nil, unsafe.Pointer(tok), 0, nil, nil); got != handlerCancel {
		t.Errorf("goDataGet after cancel = %d, want %d", got, handlerCancel)
	}
}

package mtp

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := &Error{Kind: TransferError, Text: "send file cancelled by caller"}
	got := e.Error()
	if !strings.Contains(got, "transfer error") || !strings.Contains(got, "cancelled") {
		t.Errorf("Error() = %q", got)
	}

	e = &Error{Kind: NativeError, Code: 2, Text: "boom"}
	got = e.Error()
	if !strings.Contains(got, "2") {
		t.Errorf("NativeError should mention the code, got %q", got)
	}
}

func TestIsKind(t *testing.T) {
	e := &Error{Kind: NotFoundError, Text: "no object with that id"}
	if !IsKind(e, NotFoundError) {
		t.Error("IsKind should match the error's own kind")
	}
	if IsKind(e, TransferError) {
		t.Error("IsKind must not match a different kind")
	}

	wrapped := fmt.Errorf("deleting: %w", e)
	if !IsKind(wrapped, NotFoundError) {
		t.Error("IsKind should see through wrapping")
	}

	if IsKind(errors.New("plain"), NotFoundError) {
		t.Error("IsKind must reject non-Error errors")
	}
	if IsKind(nil, NotFoundError) {
		t.Error("IsKind(nil) must be false")
	}
}

func TestErrorKindStrings(t *testing.T) {
	kinds := []ErrorKind{
		DeviceAccessError, ConnectionError, QueryError,
		PropertyTypeMismatch, UnsupportedProperty, TransferError,
		NotFoundError, InvalidTargetError, FormatError, NativeError,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		s := k.String()
		if s == "" || strings.HasPrefix(s, "ErrorKind(") {
			t.Errorf("kind %d has no name", int(k))
		}
		if seen[s] {
			t.Errorf("duplicate kind name %q", s)
		}
		seen[s] = true
	}
}

func TestEnumStrings(t *testing.T) {
	if DataTypeUint32.String() != "uint32" {
		t.Errorf("DataTypeUint32 = %q", DataTypeUint32.String())
	}
	if PropertyObjectFileName.String() != "ObjectFileName" {
		t.Errorf("PropertyObjectFileName = %q", PropertyObjectFileName.String())
	}
	if s := Property(-42).String(); !strings.Contains(s, "-42") {
		t.Errorf("unknown property should fall back to the number, got %q", s)
	}
}

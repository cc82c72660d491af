package mtp

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestClosedDevice(t *testing.T) {
	var d Device

	if err := d.Close(); err != nil {
		t.Fatalf("Close on a never-opened device: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close must be a no-op: %v", err)
	}

	if _, err := d.FileMetadata(42); !IsKind(err, ConnectionError) {
		t.Errorf("FileMetadata on closed device = %v, want ConnectionError", err)
	}
	if err := d.DeleteObject(42); !IsKind(err, ConnectionError) {
		t.Errorf("DeleteObject on closed device = %v, want ConnectionError", err)
	}
	if _, err := d.Storages(); !IsKind(err, ConnectionError) {
		t.Errorf("Storages on closed device = %v, want ConnectionError", err)
	}
	if _, err := d.Tracks(0); !IsKind(err, ConnectionError) {
		t.Errorf("Tracks on closed device = %v, want ConnectionError", err)
	}
	if err := d.RenameFile(42, "x"); !IsKind(err, ConnectionError) {
		t.Errorf("RenameFile on closed device = %v, want ConnectionError", err)
	}
	if err := d.RenameFolder(42, "x"); !IsKind(err, ConnectionError) {
		t.Errorf("RenameFolder on closed device = %v, want ConnectionError", err)
	}
	if err := d.RenameTrack(42, "x"); !IsKind(err, ConnectionError) {
		t.Errorf("RenameTrack on closed device = %v, want ConnectionError", err)
	}
}

func TestFormatStorageNeedsConfirmation(t *testing.T) {
	// The confirmation gate must fire before anything touches the
	// device, so even a closed handle reports FormatError here.
	var d Device
	err := d.FormatStorage(1, false)
	if !IsKind(err, FormatError) {
		t.Fatalf("unconfirmed format = %v, want FormatError", err)
	}
	if !strings.Contains(err.Error(), "confirm") {
		t.Errorf("error should say confirmation is missing: %v", err)
	}
}

func TestFileInfoIsFolder(t *testing.T) {
	f := FileInfo{Filetype: FiletypeFolder}
	if !f.IsFolder() {
		t.Error("folder filetype not recognized")
	}
	f.Filetype = FiletypeMp3
	if f.IsFolder() {
		t.Error("mp3 is not a folder")
	}
}

// The remaining tests exercise a real device and are skipped unless
// MTP_DEVICE_TESTS is set. Run them with exactly one unmounted MTP
// device attached.

func openTestDevice(t *testing.T) *Device {
	if os.Getenv("MTP_DEVICE_TESTS") == "" {
		t.Skip("set MTP_DEVICE_TESTS=1 to run device tests")
	}
	Init()
	raw, err := Detect()
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("no MTP device attached")
	}
	dev, err := raw[0].Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return dev
}

func TestDeviceSmoke(t *testing.T) {
	dev := openTestDevice(t)
	defer dev.Close()

	name, err := dev.FriendlyName()
	if err != nil {
		t.Logf("FriendlyName failed: %v", err)
	} else {
		t.Logf("friendly name: %q", name)
	}

	if _, err := dev.UpdateStorage(NotSorted); err != nil {
		t.Fatalf("UpdateStorage: %v", err)
	}
	storages, err := dev.Storages()
	if err != nil {
		t.Fatalf("Storages: %v", err)
	}
	for _, s := range storages {
		t.Logf("storage %#x: %q, %d/%d bytes free", s.ID, s.Description, s.FreeSpaceBytes, s.MaxCapacity)
	}

	files, err := dev.FilesAndFolders(0, ParentRoot)
	if err != nil {
		t.Fatalf("FilesAndFolders: %v", err)
	}
	for _, f := range files {
		t.Logf("object %d: %q (%s)", f.ID, f.Name, f.Filetype)
	}
}

func TestDeviceRoundtrip(t *testing.T) {
	dev := openTestDevice(t)
	defer dev.Close()

	if _, err := dev.UpdateStorage(NotSorted); err != nil {
		t.Fatalf("UpdateStorage: %v", err)
	}
	storages, err := dev.Storages()
	if err != nil || len(storages) == 0 {
		t.Fatalf("no storage to test against: %v", err)
	}

	payload := []byte("mtp roundtrip payload")
	var calls int
	sent, err := dev.SendFile(bytes.NewReader(payload), FileInfo{
		Name:      "mtp-roundtrip-test.txt",
		Size:      uint64(len(payload)),
		Filetype:  FiletypeText,
		StorageID: storages[0].ID,
		ParentID:  ParentRoot,
	}, func(done, total uint64) CallbackReturn {
		calls++
		return Continue
	})
	if err != nil {
		t.Fatalf("SendFile: %v", err)
	}
	defer dev.DeleteObject(sent.ID)
	if sent.ID == 0 {
		t.Fatal("device did not assign an object id")
	}
	t.Logf("sent object %d, %d progress calls", sent.ID, calls)

	var back bytes.Buffer
	if err := dev.GetFile(sent.ID, &back, nil); err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if !bytes.Equal(back.Bytes(), payload) {
		t.Errorf("roundtrip mismatch: %q", back.Bytes())
	}

	if err := dev.DeleteObject(sent.ID); err != nil {
		t.Errorf("DeleteObject: %v", err)
	}
	if _, err := dev.FileMetadata(sent.ID); !IsKind(err, NotFoundError) {
		t.Errorf("metadata after delete = %v, want NotFoundError", err)
	}
	if err := dev.DeleteObject(sent.ID); !IsKind(err, NotFoundError) {
		t.Errorf("second delete = %v, want NotFoundError", err)
	}
}

// mtptool is a command line client for MTP devices: detect, browse,
// transfer and manage objects and their properties.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/paulbellamy/ratecounter"

	"github.com/mtpkit/go-libmtp/log"
	"github.com/mtpkit/go-libmtp/mtp"
	"github.com/mtpkit/go-libmtp/probe"
)

var (
	pattern  = flag.String("dev", "", "substring selecting the device when several are attached")
	uncached = flag.Bool("uncached", false, "open the device without the metadata cache")
	debug    = flag.Bool("debug", false, "enable native MTP debug output")
	quiet    = flag.Bool("q", false, "suppress progress output")
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: mtptool [flags] <command> [args]

commands:
  probe                         list MTP-looking USB devices without opening them
  detect                        list attached MTP devices
  info                          print device identity and capabilities
  storages                      list storages
  ls [storage-id [parent-id]]   list a folder (default: all storages, root)
  tree [storage-id]             print the folder tree
  get <object-id> [path]        download an object
  send <path> <storage-id> [parent-id]   upload a local file
  mkdir <name> <storage-id> [parent-id]  create a folder
  rm <object-id>                delete an object
  mv <object-id> <storage-id> <parent-id>   move an object
  cp <object-id> <storage-id> <parent-id>   copy an object
  rename <object-id> <name>     rename an object
  format <storage-id> -yes      erase a storage (requires -yes)
  getprop <object-id> <property>         read an object property
  setprop <object-id> <property> <value> write a string object property
  tracks [storage]              list audio tracks with tags

flags:
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]

	if cmd == "probe" {
		cmdProbe()
		return
	}

	mtp.Init()
	if *debug {
		mtp.SetDebug(mtp.DebugPTP | mtp.DebugUSB)
	}

	if cmd == "detect" {
		cmdDetect()
		return
	}

	dev := openDevice()
	defer dev.Close()

	switch cmd {
	case "info":
		cmdInfo(dev)
	case "storages":
		cmdStorages(dev)
	case "ls":
		cmdLs(dev, args)
	case "tree":
		cmdTree(dev, args)
	case "get":
		cmdGet(dev, args)
	case "send":
		cmdSend(dev, args)
	case "mkdir":
		cmdMkdir(dev, args)
	case "rm":
		cmdRm(dev, args)
	case "mv":
		cmdMv(dev, args)
	case "cp":
		cmdCp(dev, args)
	case "rename":
		cmdRename(dev, args)
	case "format":
		cmdFormat(dev, args)
	case "getprop":
		cmdGetProp(dev, args)
	case "setprop":
		cmdSetProp(dev, args)
	case "tracks":
		cmdTracks(dev, args)
	default:
		usage()
	}
}

func fatalf(format string, args ...interface{}) {
	log.Root.Fatalf(format, args...)
}

func openDevice() *mtp.Device {
	raw, err := mtp.Detect()
	if err != nil {
		fatalf("detect: %s", err)
	}

	var cands []mtp.RawDevice
	for _, r := range raw {
		if *pattern == "" || strings.Contains(r.String(), *pattern) {
			cands = append(cands, r)
		}
	}
	if len(cands) == 0 {
		fatalf("no MTP device matched; is one attached and unlocked?")
	}
	if len(cands) > 1 {
		for _, r := range cands {
			fmt.Fprintln(os.Stderr, "  ", r)
		}
		fatalf("ambiguous devices; narrow with -dev")
	}

	var dev *mtp.Device
	if *uncached {
		dev, err = cands[0].OpenUncached()
	} else {
		dev, err = cands[0].Open()
	}
	if err != nil {
		fatalf("open %s: %s", cands[0], err)
	}
	return dev
}

func cmdProbe() {
	cands, err := probe.List()
	if err != nil {
		fatalf("probe: %s", err)
	}
	for _, c := range cands {
		fmt.Println(&c)
	}
}

func cmdDetect() {
	raw, err := mtp.Detect()
	if err != nil {
		fatalf("detect: %s", err)
	}
	if len(raw) == 0 {
		fmt.Println("no MTP devices attached")
		return
	}
	for _, r := range raw {
		fmt.Println(r)
	}
}

func cmdInfo(dev *mtp.Device) {
	print := func(label string, get func() (string, error)) {
		if v, err := get(); err == nil && v != "" {
			fmt.Printf("%-14s %s\n", label+":", v)
		}
	}
	print("friendly name", dev.FriendlyName)
	print("manufacturer", dev.ManufacturerName)
	print("model", dev.ModelName)
	print("serial", dev.SerialNumber)

	if batt, err := dev.BatteryLevel(); err == nil && batt.Maximum > 0 {
		fmt.Printf("%-14s %d/%d\n", "battery:", batt.Current, batt.Maximum)
	}

	caps := []struct {
		name string
		cap  mtp.Capability
	}{
		{"get partial object", mtp.CapGetPartialObject},
		{"send partial object", mtp.CapSendPartialObject},
		{"edit objects", mtp.CapEditObjects},
		{"move objects", mtp.CapMoveObject},
		{"copy objects", mtp.CapCopyObject},
	}
	for _, c := range caps {
		if dev.Check(c.cap) {
			fmt.Printf("%-14s %s\n", "capability:", c.name)
		}
	}
}

func updateStorages(dev *mtp.Device) []mtp.Storage {
	if _, err := dev.UpdateStorage(mtp.NotSorted); err != nil {
		fatalf("reading storages: %s", err)
	}
	storages, err := dev.Storages()
	if err != nil {
		fatalf("storages: %s", err)
	}
	return storages
}

func cmdStorages(dev *mtp.Device) {
	for _, st := range updateStorages(dev) {
		fmt.Printf("%#x  %-24q free %s of %s\n",
			st.ID, st.Description,
			humanBytes(st.FreeSpaceBytes), humanBytes(st.MaxCapacity))
	}
}

func parseID(s string) uint32 {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		fatalf("bad id %q: %s", s, err)
	}
	return uint32(id)
}

func cmdLs(dev *mtp.Device, args []string) {
	updateStorages(dev)
	var storageID uint32
	parentID := mtp.ParentRoot
	if len(args) > 0 {
		storageID = parseID(args[0])
	}
	if len(args) > 1 {
		parentID = parseID(args[1])
	}

	files, err := dev.FilesAndFolders(storageID, parentID)
	if err != nil {
		fatalf("ls: %s", err)
	}
	for _, f := range files {
		kind := "-"
		if f.IsFolder() {
			kind = "d"
		}
		fmt.Printf("%s %10d  %-10d %s\n", kind, f.ID, f.Size, f.Name)
	}
}

func cmdTree(dev *mtp.Device, args []string) {
	storages := updateStorages(dev)
	if len(args) > 0 {
		id := parseID(args[0])
		storages = nil
		for _, st := range updateStorages(dev) {
			if st.ID == id {
				storages = []mtp.Storage{st}
			}
		}
		if storages == nil {
			fatalf("no storage %#x", id)
		}
	}

	var walk func(storageID, parentID uint32, indent string)
	walk = func(storageID, parentID uint32, indent string) {
		files, err := dev.FilesAndFolders(storageID, parentID)
		if err != nil {
			fatalf("tree: %s", err)
		}
		for _, f := range files {
			fmt.Printf("%s%s (%d)\n", indent, f.Name, f.ID)
			if f.IsFolder() {
				walk(storageID, f.ID, indent+"  ")
			}
		}
	}

	for _, st := range storages {
		fmt.Printf("%#x %q\n", st.ID, st.Description)
		walk(st.ID, mtp.ParentRoot, "  ")
	}
}

// progressPrinter writes a single updating line with percentage and
// rate.
func progressPrinter(op string) mtp.ProgressFunc {
	if *quiet {
		return nil
	}
	rate := ratecounter.NewRateCounter(time.Second)
	var last uint64
	return func(done, total uint64) mtp.CallbackReturn {
		rate.Incr(int64(done - last))
		last = done
		pct := 0.0
		if total > 0 {
			pct = float64(done) / float64(total) * 100
		}
		fmt.Fprintf(os.Stderr, "\r%s %3.0f%% (%s/s)   ", op, pct, humanBytes(uint64(rate.Rate())))
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
		return mtp.Continue
	}
}

func cmdGet(dev *mtp.Device, args []string) {
	if len(args) < 1 {
		usage()
	}
	id := parseID(args[0])

	info, err := dev.FileMetadata(id)
	if err != nil {
		fatalf("stat %d: %s", id, err)
	}
	path := info.Name
	if len(args) > 1 {
		path = args[1]
	}

	if err := dev.GetFileToFile(id, path, progressPrinter("get")); err != nil {
		fatalf("get %d: %s", id, err)
	}
	fmt.Printf("%s: %s\n", path, humanBytes(info.Size))
}

func cmdSend(dev *mtp.Device, args []string) {
	if len(args) < 2 {
		usage()
	}
	path := args[0]
	storageID := parseID(args[1])
	parentID := mtp.ParentRoot
	if len(args) > 2 {
		parentID = parseID(args[2])
	}
	updateStorages(dev)

	fi, err := os.Stat(path)
	if err != nil {
		fatalf("stat %s: %s", path, err)
	}

	sent, err := dev.SendFileFromFile(path, mtp.FileInfo{
		Name:      filepath.Base(path),
		Size:      uint64(fi.Size()),
		Filetype:  filetypeFromName(path),
		StorageID: storageID,
		ParentID:  parentID,
	}, progressPrinter("send"))
	if err != nil {
		fatalf("send %s: %s", path, err)
	}
	fmt.Printf("sent as object %d\n", sent.ID)
}

// filetypeFromName guesses the MTP filetype from the file extension.
func filetypeFromName(path string) mtp.Filetype {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mtp.FiletypeMp3
	case ".wav":
		return mtp.FiletypeWav
	case ".ogg":
		return mtp.FiletypeOgg
	case ".flac":
		return mtp.FiletypeFlac
	case ".aac":
		return mtp.FiletypeAac
	case ".m4a":
		return mtp.FiletypeM4a
	case ".wma":
		return mtp.FiletypeWma
	case ".mp4":
		return mtp.FiletypeMp4
	case ".avi":
		return mtp.FiletypeAvi
	case ".wmv":
		return mtp.FiletypeWmv
	case ".mpg", ".mpeg":
		return mtp.FiletypeMpeg
	case ".jpg", ".jpeg":
		return mtp.FiletypeJpeg
	case ".png":
		return mtp.FiletypePng
	case ".gif":
		return mtp.FiletypeGif
	case ".bmp":
		return mtp.FiletypeBmp
	case ".tif", ".tiff":
		return mtp.FiletypeTiff
	case ".txt":
		return mtp.FiletypeText
	case ".html", ".htm":
		return mtp.FiletypeHTML
	case ".xml":
		return mtp.FiletypeXML
	case ".doc":
		return mtp.FiletypeDoc
	case ".xls":
		return mtp.FiletypeXls
	case ".ppt":
		return mtp.FiletypePpt
	default:
		return mtp.FiletypeUnknown
	}
}

func cmdMkdir(dev *mtp.Device, args []string) {
	if len(args) < 2 {
		usage()
	}
	name := args[0]
	storageID := parseID(args[1])
	parentID := mtp.ParentRoot
	if len(args) > 2 {
		parentID = parseID(args[2])
	}
	updateStorages(dev)

	id, actual, err := dev.CreateFolder(name, parentID, storageID)
	if err != nil {
		fatalf("mkdir %s: %s", name, err)
	}
	fmt.Printf("created folder %q as object %d\n", actual, id)
}

func cmdRm(dev *mtp.Device, args []string) {
	if len(args) != 1 {
		usage()
	}
	if err := dev.DeleteObject(parseID(args[0])); err != nil {
		fatalf("rm: %s", err)
	}
}

func cmdMv(dev *mtp.Device, args []string) {
	if len(args) != 3 {
		usage()
	}
	updateStorages(dev)
	if err := dev.MoveObject(parseID(args[0]), parseID(args[1]), parseID(args[2])); err != nil {
		fatalf("mv: %s", err)
	}
}

func cmdCp(dev *mtp.Device, args []string) {
	if len(args) != 3 {
		usage()
	}
	updateStorages(dev)
	if err := dev.CopyObject(parseID(args[0]), parseID(args[1]), parseID(args[2])); err != nil {
		fatalf("cp: %s", err)
	}
}

func cmdRename(dev *mtp.Device, args []string) {
	if len(args) != 2 {
		usage()
	}
	if err := dev.RenameObject(parseID(args[0]), args[1]); err != nil {
		fatalf("rename: %s", err)
	}
}

func cmdFormat(dev *mtp.Device, args []string) {
	var yes bool
	var rest []string
	for _, a := range args {
		if a == "-yes" || a == "--yes" {
			yes = true
		} else {
			rest = append(rest, a)
		}
	}
	if len(rest) != 1 {
		usage()
	}
	updateStorages(dev)

	id := parseID(rest[0])
	if err := dev.FormatStorage(id, yes); err != nil {
		fatalf("format %#x: %s", id, err)
	}
	fmt.Printf("formatted storage %#x\n", id)
}

func propByName(name string) mtp.Property {
	for p, n := range propertyTable() {
		if strings.EqualFold(n, name) {
			return p
		}
	}
	fatalf("unknown property %q", name)
	return 0
}

func propertyTable() map[mtp.Property]string {
	out := map[mtp.Property]string{}
	for _, p := range []mtp.Property{
		mtp.PropertyObjectFileName, mtp.PropertyName, mtp.PropertyArtist,
		mtp.PropertyAlbumName, mtp.PropertyGenre, mtp.PropertyComposer,
		mtp.PropertyDuration, mtp.PropertyTrack, mtp.PropertyRating,
		mtp.PropertyUseCount, mtp.PropertyObjectSize, mtp.PropertyWidth,
		mtp.PropertyHeight, mtp.PropertySampleRate, mtp.PropertyAudioBitRate,
	} {
		out[p] = p.String()
	}
	return out
}

func cmdGetProp(dev *mtp.Device, args []string) {
	if len(args) != 2 {
		usage()
	}
	id := parseID(args[0])
	prop := propByName(args[1])

	if s, err := dev.GetObjectString(id, prop); err == nil {
		fmt.Println(s)
		return
	}
	v, err := dev.GetObjectUint32(id, prop)
	if err != nil {
		fatalf("getprop: %s", err)
	}
	fmt.Println(v)
}

func cmdSetProp(dev *mtp.Device, args []string) {
	if len(args) != 3 {
		usage()
	}
	id := parseID(args[0])
	prop := propByName(args[1])
	if err := dev.SetObjectString(id, prop, args[2]); err != nil {
		fatalf("setprop: %s", err)
	}
}

func cmdTracks(dev *mtp.Device, args []string) {
	var storageID uint32
	if len(args) > 0 {
		storageID = parseID(args[0])
	}
	tracks, err := dev.Tracks(storageID)
	if err != nil {
		fatalf("tracks: %s", err)
	}
	for _, tr := range tracks {
		fmt.Printf("%6d  %-30q %-20s %-20s %s\n",
			tr.ID, tr.Title, tr.Artist, tr.Album, formatDuration(tr.Duration))
	}
}

func formatDuration(ms uint32) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func humanBytes(n uint64) string {
	switch {
	case n > 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n > 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n > 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

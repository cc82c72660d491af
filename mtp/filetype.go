package mtp

/*
#include <libmtp.h>
*/
import "C"

import "fmt"

// Filetype classifies an object's content as libmtp understands it.
type Filetype int

const (
	FiletypeFolder     Filetype = C.LIBMTP_FILETYPE_FOLDER
	FiletypeWav        Filetype = C.LIBMTP_FILETYPE_WAV
	FiletypeMp3        Filetype = C.LIBMTP_FILETYPE_MP3
	FiletypeWma        Filetype = C.LIBMTP_FILETYPE_WMA
	FiletypeOgg        Filetype = C.LIBMTP_FILETYPE_OGG
	FiletypeAudible    Filetype = C.LIBMTP_FILETYPE_AUDIBLE
	FiletypeMp4        Filetype = C.LIBMTP_FILETYPE_MP4
	FiletypeUndefAudio Filetype = C.LIBMTP_FILETYPE_UNDEF_AUDIO
	FiletypeWmv        Filetype = C.LIBMTP_FILETYPE_WMV
	FiletypeAvi        Filetype = C.LIBMTP_FILETYPE_AVI
	FiletypeMpeg       Filetype = C.LIBMTP_FILETYPE_MPEG
	FiletypeAsf        Filetype = C.LIBMTP_FILETYPE_ASF
	FiletypeQt         Filetype = C.LIBMTP_FILETYPE_QT
	FiletypeUndefVideo Filetype = C.LIBMTP_FILETYPE_UNDEF_VIDEO
	FiletypeJpeg       Filetype = C.LIBMTP_FILETYPE_JPEG
	FiletypeJfif       Filetype = C.LIBMTP_FILETYPE_JFIF
	FiletypeTiff       Filetype = C.LIBMTP_FILETYPE_TIFF
	FiletypeBmp        Filetype = C.LIBMTP_FILETYPE_BMP
	FiletypeGif        Filetype = C.LIBMTP_FILETYPE_GIF
	FiletypePict       Filetype = C.LIBMTP_FILETYPE_PICT
	FiletypePng        Filetype = C.LIBMTP_FILETYPE_PNG
	FiletypeVCalendar1 Filetype = C.LIBMTP_FILETYPE_VCALENDAR1
	FiletypeVCalendar2 Filetype = C.LIBMTP_FILETYPE_VCALENDAR2
	FiletypeVCard2     Filetype = C.LIBMTP_FILETYPE_VCARD2
	FiletypeVCard3     Filetype = C.LIBMTP_FILETYPE_VCARD3
	FiletypeWindowsImg Filetype = C.LIBMTP_FILETYPE_WINDOWSIMAGEFORMAT
	FiletypeWinExec    Filetype = C.LIBMTP_FILETYPE_WINEXEC
	FiletypeText       Filetype = C.LIBMTP_FILETYPE_TEXT
	FiletypeHTML       Filetype = C.LIBMTP_FILETYPE_HTML
	FiletypeFirmware   Filetype = C.LIBMTP_FILETYPE_FIRMWARE
	FiletypeAac        Filetype = C.LIBMTP_FILETYPE_AAC
	FiletypeMediaCard  Filetype = C.LIBMTP_FILETYPE_MEDIACARD
	FiletypeFlac       Filetype = C.LIBMTP_FILETYPE_FLAC
	FiletypeMp2        Filetype = C.LIBMTP_FILETYPE_MP2
	FiletypeM4a        Filetype = C.LIBMTP_FILETYPE_M4A
	FiletypeDoc        Filetype = C.LIBMTP_FILETYPE_DOC
	FiletypeXML        Filetype = C.LIBMTP_FILETYPE_XML
	FiletypeXls        Filetype = C.LIBMTP_FILETYPE_XLS
	FiletypePpt        Filetype = C.LIBMTP_FILETYPE_PPT
	FiletypeMht        Filetype = C.LIBMTP_FILETYPE_MHT
	FiletypeJp2        Filetype = C.LIBMTP_FILETYPE_JP2
	FiletypeJpx        Filetype = C.LIBMTP_FILETYPE_JPX
	FiletypeAlbum      Filetype = C.LIBMTP_FILETYPE_ALBUM
	FiletypePlaylist   Filetype = C.LIBMTP_FILETYPE_PLAYLIST
	FiletypeUnknown    Filetype = C.LIBMTP_FILETYPE_UNKNOWN
)

// String returns libmtp's human readable description of the filetype.
func (t Filetype) String() string {
	desc := C.LIBMTP_Get_Filetype_Description(C.LIBMTP_filetype_t(t))
	if desc == nil {
		return fmt.Sprintf("Filetype(%d)", int(t))
	}
	return C.GoString(desc)
}

// IsAudio reports whether the filetype carries audio content.
func (t Filetype) IsAudio() bool {
	switch t {
	case FiletypeWav, FiletypeMp3, FiletypeMp2, FiletypeWma, FiletypeOgg,
		FiletypeFlac, FiletypeAac, FiletypeM4a, FiletypeAudible,
		FiletypeUndefAudio:
		return true
	}
	return false
}

package mtp

/*
#include <libmtp.h>
*/
import "C"

import "fmt"

// Property identifies an MTP object property.
type Property int

const (
	PropertyStorageID        Property = C.LIBMTP_PROPERTY_StorageID
	PropertyObjectFormat     Property = C.LIBMTP_PROPERTY_ObjectFormat
	PropertyProtectionStatus Property = C.LIBMTP_PROPERTY_ProtectionStatus
	PropertyObjectSize       Property = C.LIBMTP_PROPERTY_ObjectSize
	PropertyAssociationType  Property = C.LIBMTP_PROPERTY_AssociationType
	PropertyAssociationDesc  Property = C.LIBMTP_PROPERTY_AssociationDesc
	PropertyObjectFileName   Property = C.LIBMTP_PROPERTY_ObjectFileName
	PropertyDateCreated      Property = C.LIBMTP_PROPERTY_DateCreated
	PropertyDateModified     Property = C.LIBMTP_PROPERTY_DateModified
	PropertyKeywords         Property = C.LIBMTP_PROPERTY_Keywords
	PropertyParentObject     Property = C.LIBMTP_PROPERTY_ParentObject
	PropertyHidden           Property = C.LIBMTP_PROPERTY_Hidden
	PropertySystemObject     Property = C.LIBMTP_PROPERTY_SystemObject

	PropertyPersistantUniqueObjectIdentifier Property = C.LIBMTP_PROPERTY_PersistantUniqueObjectIdentifier

	PropertySyncID              Property = C.LIBMTP_PROPERTY_SyncID
	PropertyName                Property = C.LIBMTP_PROPERTY_Name
	PropertyArtist              Property = C.LIBMTP_PROPERTY_Artist
	PropertyDescription         Property = C.LIBMTP_PROPERTY_Description
	PropertyDateAdded           Property = C.LIBMTP_PROPERTY_DateAdded
	PropertyDuration            Property = C.LIBMTP_PROPERTY_Duration
	PropertyTrack               Property = C.LIBMTP_PROPERTY_Track
	PropertyGenre               Property = C.LIBMTP_PROPERTY_Genre
	PropertyUseCount            Property = C.LIBMTP_PROPERTY_UseCount
	PropertySkipCount           Property = C.LIBMTP_PROPERTY_SkipCount
	PropertyComposer            Property = C.LIBMTP_PROPERTY_Composer
	PropertyAlbumName           Property = C.LIBMTP_PROPERTY_AlbumName
	PropertyAlbumArtist         Property = C.LIBMTP_PROPERTY_AlbumArtist
	PropertyRating              Property = C.LIBMTP_PROPERTY_Rating
	PropertySubtitle            Property = C.LIBMTP_PROPERTY_Subtitle
	PropertyOriginalReleaseDate Property = C.LIBMTP_PROPERTY_OriginalReleaseDate
	PropertySampleRate          Property = C.LIBMTP_PROPERTY_SampleRate
	PropertyNumberOfChannels    Property = C.LIBMTP_PROPERTY_NumberOfChannels
	PropertyAudioBitDepth       Property = C.LIBMTP_PROPERTY_AudioBitDepth
	PropertyAudioWAVECodec      Property = C.LIBMTP_PROPERTY_AudioWAVECodec
	PropertyAudioBitRate        Property = C.LIBMTP_PROPERTY_AudioBitRate
	PropertyVideoFourCCCodec    Property = C.LIBMTP_PROPERTY_VideoFourCCCodec
	PropertyVideoBitRate        Property = C.LIBMTP_PROPERTY_VideoBitRate
	PropertyTotalBitRate        Property = C.LIBMTP_PROPERTY_TotalBitRate
	PropertyBitRateType         Property = C.LIBMTP_PROPERTY_BitRateType
	PropertyWidth               Property = C.LIBMTP_PROPERTY_Width
	PropertyHeight              Property = C.LIBMTP_PROPERTY_Height
	PropertyBuyFlag             Property = C.LIBMTP_PROPERTY_BuyFlag
	PropertyUnknown             Property = C.LIBMTP_PROPERTY_UNKNOWN
)

var propertyNames = map[Property]string{
	PropertyStorageID:        "StorageID",
	PropertyObjectFormat:     "ObjectFormat",
	PropertyProtectionStatus: "ProtectionStatus",
	PropertyObjectSize:       "ObjectSize",
	PropertyAssociationType:  "AssociationType",
	PropertyAssociationDesc:  "AssociationDesc",
	PropertyObjectFileName:   "ObjectFileName",
	PropertyDateCreated:      "DateCreated",
	PropertyDateModified:     "DateModified",
	PropertyKeywords:         "Keywords",
	PropertyParentObject:     "ParentObject",
	PropertyHidden:           "Hidden",
	PropertySystemObject:     "SystemObject",
	PropertyPersistantUniqueObjectIdentifier: "PersistantUniqueObjectIdentifier",
	PropertySyncID:              "SyncID",
	PropertyName:                "Name",
	PropertyArtist:              "Artist",
	PropertyDescription:         "Description",
	PropertyDateAdded:           "DateAdded",
	PropertyDuration:            "Duration",
	PropertyTrack:               "Track",
	PropertyGenre:               "Genre",
	PropertyUseCount:            "UseCount",
	PropertySkipCount:           "SkipCount",
	PropertyComposer:            "Composer",
	PropertyAlbumName:           "AlbumName",
	PropertyAlbumArtist:         "AlbumArtist",
	PropertyRating:              "Rating",
	PropertySubtitle:            "Subtitle",
	PropertyOriginalReleaseDate: "OriginalReleaseDate",
	PropertySampleRate:          "SampleRate",
	PropertyNumberOfChannels:    "NumberOfChannels",
	PropertyAudioBitDepth:       "AudioBitDepth",
	PropertyAudioWAVECodec:      "AudioWAVECodec",
	PropertyAudioBitRate:        "AudioBitRate",
	PropertyVideoFourCCCodec:    "VideoFourCCCodec",
	PropertyVideoBitRate:        "VideoBitRate",
	PropertyTotalBitRate:        "TotalBitRate",
	PropertyBitRateType:         "BitRateType",
	PropertyWidth:               "Width",
	PropertyHeight:              "Height",
	PropertyBuyFlag:             "BuyFlag",
	PropertyUnknown:             "Unknown",
}

func (p Property) String() string {
	if n, ok := propertyNames[p]; ok {
		return n
	}
	return fmt.Sprintf("Property(%d)", int(p))
}

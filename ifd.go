// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

import (
	"fmt"
	"maps"
	"slices"
)

// UnknownPrefix is used as prefix for unknown tags.
const UnknownPrefix = "UnknownTag_"

// Type is the element type of a directory entry.
type Type uint16

// TIFF data types.
const (
	TypeByte      Type = 1
	TypeASCII     Type = 2
	TypeShort     Type = 3
	TypeLong      Type = 4
	TypeRational  Type = 5
	TypeSByte     Type = 6
	TypeUndefined Type = 7
	TypeSShort    Type = 8
	TypeSLong     Type = 9
	TypeSRational Type = 10
	TypeFloat     Type = 11
	TypeDouble    Type = 12
	TypeIFD       Type = 13
)

// Size in bytes of each type.
var typeSizes = map[Type]uint32{
	TypeByte:      1,
	TypeASCII:     1,
	TypeShort:     2,
	TypeLong:      4,
	TypeRational:  8,
	TypeSByte:     1,
	TypeUndefined: 1,
	TypeSShort:    2,
	TypeSLong:     4,
	TypeSRational: 8,
	TypeFloat:     4,
	TypeDouble:    8,
	TypeIFD:       4,
}

var typeNames = map[Type]string{
	TypeByte:      "Byte",
	TypeASCII:     "ASCII",
	TypeShort:     "Short",
	TypeLong:      "Long",
	TypeRational:  "Rational",
	TypeSByte:     "SByte",
	TypeUndefined: "Undefined",
	TypeSShort:    "SShort",
	TypeSLong:     "SLong",
	TypeSRational: "SRational",
	TypeFloat:     "Float",
	TypeDouble:    "Double",
	TypeIFD:       "IFD",
}

// Size returns the size in bytes of a single element, or 0 for an unknown type.
func (t Type) Size() uint32 {
	return typeSizes[t]
}

// Known reports whether t is one of the TIFF types.
func (t Type) Known() bool {
	_, found := typeSizes[t]
	return found
}

func (t Type) String() string {
	if s, found := typeNames[t]; found {
		return s
	}
	return fmt.Sprintf("Type(%d)", uint16(t))
}

func (t Type) isUnsignedInteger() bool {
	return t == TypeByte || t == TypeShort || t == TypeLong || t == TypeIFD
}

func (t Type) isSignedInteger() bool {
	return t == TypeSByte || t == TypeSShort || t == TypeSLong
}

// Tag identifies a directory entry.
// Tags not listed below are kept as their numeric value.
type Tag uint16

// Tags from TIFF 6.0 that the decoder knows by name.
const (
	TagNewSubfileType            Tag = 0x00FE
	TagSubfileType               Tag = 0x00FF
	TagImageWidth                Tag = 0x0100
	TagImageLength               Tag = 0x0101
	TagBitsPerSample             Tag = 0x0102
	TagCompression               Tag = 0x0103
	TagPhotometricInterpretation Tag = 0x0106
	TagThreshholding             Tag = 0x0107
	TagCellWidth                 Tag = 0x0108
	TagCellLength                Tag = 0x0109
	TagFillOrder                 Tag = 0x010A
	TagDocumentName              Tag = 0x010D
	TagImageDescription          Tag = 0x010E
	TagMake                      Tag = 0x010F
	TagModel                     Tag = 0x0110
	TagStripOffsets              Tag = 0x0111
	TagOrientation               Tag = 0x0112
	TagSamplesPerPixel           Tag = 0x0115
	TagRowsPerStrip              Tag = 0x0116
	TagStripByteCounts           Tag = 0x0117
	TagMinSampleValue            Tag = 0x0118
	TagMaxSampleValue            Tag = 0x0119
	TagXResolution               Tag = 0x011A
	TagYResolution               Tag = 0x011B
	TagPlanarConfiguration       Tag = 0x011C
	TagPageName                  Tag = 0x011D
	TagXPosition                 Tag = 0x011E
	TagYPosition                 Tag = 0x011F
	TagFreeOffsets               Tag = 0x0120
	TagFreeByteCounts            Tag = 0x0121
	TagGrayResponseUnit          Tag = 0x0122
	TagGrayResponseCurve         Tag = 0x0123
	TagT4Options                 Tag = 0x0124
	TagT6Options                 Tag = 0x0125
	TagResolutionUnit            Tag = 0x0128
	TagPageNumber                Tag = 0x0129
	TagTransferFunction          Tag = 0x012D
	TagSoftware                  Tag = 0x0131
	TagDateTime                  Tag = 0x0132
	TagArtist                    Tag = 0x013B
	TagHostComputer              Tag = 0x013C
	TagPredictor                 Tag = 0x013D
	TagWhitePoint                Tag = 0x013E
	TagPrimaryChromaticities     Tag = 0x013F
	TagColorMap                  Tag = 0x0140
	TagHalftoneHints             Tag = 0x0141
	TagTileWidth                 Tag = 0x0142
	TagTileLength                Tag = 0x0143
	TagTileOffsets               Tag = 0x0144
	TagTileByteCounts            Tag = 0x0145
	TagInkSet                    Tag = 0x014C
	TagInkNames                  Tag = 0x014D
	TagNumberOfInks              Tag = 0x014E
	TagDotRange                  Tag = 0x0150
	TagTargetPrinter             Tag = 0x0151
	TagExtraSamples              Tag = 0x0152
	TagSampleFormat              Tag = 0x0153
	TagSMinSampleValue           Tag = 0x0154
	TagSMaxSampleValue           Tag = 0x0155
	TagTransferRange             Tag = 0x0156
	TagJPEGProc                  Tag = 0x0200
	TagJPEGInterchangeFormat     Tag = 0x0201
	TagJPEGInterchangeFormatLen  Tag = 0x0202
	TagYCbCrCoefficients         Tag = 0x0211
	TagYCbCrSubSampling          Tag = 0x0212
	TagYCbCrPositioning          Tag = 0x0213
	TagReferenceBlackWhite       Tag = 0x0214
	TagXMP                       Tag = 0x02BC
	TagCopyright                 Tag = 0x8298
	TagIPTC                      Tag = 0x83BB
	TagExifIFD                   Tag = 0x8769
	TagICCProfile                Tag = 0x8773
	TagGPSIFD                    Tag = 0x8825
)

var tagNames = map[Tag]string{
	TagNewSubfileType:            "NewSubfileType",
	TagSubfileType:               "SubfileType",
	TagImageWidth:                "ImageWidth",
	TagImageLength:               "ImageLength",
	TagBitsPerSample:             "BitsPerSample",
	TagCompression:               "Compression",
	TagPhotometricInterpretation: "PhotometricInterpretation",
	TagThreshholding:             "Threshholding",
	TagCellWidth:                 "CellWidth",
	TagCellLength:                "CellLength",
	TagFillOrder:                 "FillOrder",
	TagDocumentName:              "DocumentName",
	TagImageDescription:          "ImageDescription",
	TagMake:                      "Make",
	TagModel:                     "Model",
	TagStripOffsets:              "StripOffsets",
	TagOrientation:               "Orientation",
	TagSamplesPerPixel:           "SamplesPerPixel",
	TagRowsPerStrip:              "RowsPerStrip",
	TagStripByteCounts:           "StripByteCounts",
	TagMinSampleValue:            "MinSampleValue",
	TagMaxSampleValue:            "MaxSampleValue",
	TagXResolution:               "XResolution",
	TagYResolution:               "YResolution",
	TagPlanarConfiguration:       "PlanarConfiguration",
	TagPageName:                  "PageName",
	TagXPosition:                 "XPosition",
	TagYPosition:                 "YPosition",
	TagFreeOffsets:               "FreeOffsets",
	TagFreeByteCounts:            "FreeByteCounts",
	TagGrayResponseUnit:          "GrayResponseUnit",
	TagGrayResponseCurve:         "GrayResponseCurve",
	TagT4Options:                 "T4Options",
	TagT6Options:                 "T6Options",
	TagResolutionUnit:            "ResolutionUnit",
	TagPageNumber:                "PageNumber",
	TagTransferFunction:          "TransferFunction",
	TagSoftware:                  "Software",
	TagDateTime:                  "DateTime",
	TagArtist:                    "Artist",
	TagHostComputer:              "HostComputer",
	TagPredictor:                 "Predictor",
	TagWhitePoint:                "WhitePoint",
	TagPrimaryChromaticities:     "PrimaryChromaticities",
	TagColorMap:                  "ColorMap",
	TagHalftoneHints:             "HalftoneHints",
	TagTileWidth:                 "TileWidth",
	TagTileLength:                "TileLength",
	TagTileOffsets:               "TileOffsets",
	TagTileByteCounts:            "TileByteCounts",
	TagInkSet:                    "InkSet",
	TagInkNames:                  "InkNames",
	TagNumberOfInks:              "NumberOfInks",
	TagDotRange:                  "DotRange",
	TagTargetPrinter:             "TargetPrinter",
	TagExtraSamples:              "ExtraSamples",
	TagSampleFormat:              "SampleFormat",
	TagSMinSampleValue:           "SMinSampleValue",
	TagSMaxSampleValue:           "SMaxSampleValue",
	TagTransferRange:             "TransferRange",
	TagJPEGProc:                  "JPEGProc",
	TagJPEGInterchangeFormat:     "JPEGInterchangeFormat",
	TagJPEGInterchangeFormatLen:  "JPEGInterchangeFormatLength",
	TagYCbCrCoefficients:         "YCbCrCoefficients",
	TagYCbCrSubSampling:          "YCbCrSubSampling",
	TagYCbCrPositioning:          "YCbCrPositioning",
	TagReferenceBlackWhite:       "ReferenceBlackWhite",
	TagXMP:                       "XMP",
	TagCopyright:                 "Copyright",
	TagIPTC:                      "IPTC",
	TagExifIFD:                   "ExifIFD",
	TagICCProfile:                "ICCProfile",
	TagGPSIFD:                    "GPSIFD",
}

// Known reports whether t is one of the named tags.
func (t Tag) Known() bool {
	_, found := tagNames[t]
	return found
}

func (t Tag) String() string {
	if s, found := tagNames[t]; found {
		return s
	}
	return fmt.Sprintf("%s0x%x", UnknownPrefix, uint16(t))
}

// Entry is a single directory entry before its value is resolved.
type Entry struct {
	Type  Type
	Count uint32

	// The value itself if it fits in 4 bytes, else the offset of the value.
	// Stored as it appears in the stream.
	raw [4]byte
}

// size returns the total value size in bytes.
// It cannot overflow: the count is 32 bits and the largest element 8 bytes.
func (e Entry) size() uint64 {
	return uint64(e.Type.Size()) * uint64(e.Count)
}

// Inline reports whether the value is stored in the entry itself.
func (e Entry) Inline() bool {
	return e.size() <= 4
}

// resolve reads the entry's value, seeking r if the value is stored out of line.
// The position of r is left wherever the read ended.
func (e Entry) resolve(r *streamReader, limitTagSize uint32) (Value, error) {
	v := Value{Type: e.Type, Count: e.Count, order: r.byteOrder}
	size := e.size()
	if size <= 4 {
		v.data = append([]byte(nil), e.raw[:size]...)
		return v, nil
	}
	if size > uint64(limitTagSize) {
		return v, newFormatErrorf("tag value of %d bytes exceeds limit of %d", size, limitTagSize)
	}
	offset := r.byteOrder.Uint32(e.raw[:])
	b, err := r.readBytesAt(offset, uint32(size))
	if err != nil {
		return v, err
	}
	v.data = b
	return v, nil
}

// Directory maps tags to entries for one image (page).
type Directory map[Tag]Entry

// Tags returns the tags in ascending order.
func (d Directory) Tags() []Tag {
	return slices.Sorted(maps.Keys(d))
}

// readDirectory reads the directory at offset and the offset of the next one (0 if none).
//
// A directory entry is represented in 12 bytes:
//   - 2 bytes for the tag ID
//   - 2 bytes for the data type
//   - 4 bytes for the number of data values of the specified type
//   - 4 bytes for the value itself, if it fits, otherwise for a pointer to another location where the data may be found.
func readDirectory(r *streamReader, offset uint32, opts Options) (Directory, uint32, error) {
	if err := r.seek(int64(offset)); err != nil {
		return nil, 0, err
	}
	numTags, err := r.read2()
	if err != nil {
		return nil, 0, err
	}
	if uint32(numTags) > opts.LimitNumTags {
		return nil, 0, newFormatErrorf("directory at %d has %d entries, limit is %d", offset, numTags, opts.LimitNumTags)
	}

	dir := make(Directory, numTags)
	for range int(numTags) {
		tagID, err := r.read2()
		if err != nil {
			return nil, 0, err
		}
		dataType, err := r.read2()
		if err != nil {
			return nil, 0, err
		}
		count, err := r.read4()
		if err != nil {
			return nil, 0, err
		}
		var e Entry
		if err := r.readBytes(e.raw[:]); err != nil {
			return nil, 0, err
		}

		tag, typ := Tag(tagID), Type(dataType)
		if !typ.Known() {
			// Unknown type. Skip this entry according to the TIFF spec.
			opts.Warnf("skipping %s with unknown type %d", tag, dataType)
			continue
		}
		if _, found := dir[tag]; found {
			opts.Warnf("duplicate %s in directory at %d, using the last one", tag, offset)
		}
		e.Type, e.Count = typ, count
		dir[tag] = e
	}

	next, err := r.read4()
	if err != nil {
		return nil, 0, err
	}

	return dir, next, nil
}

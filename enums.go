// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

import "fmt"

// Photometric is the PhotometricInterpretation of an image.
type Photometric uint16

const (
	PhotometricWhiteIsZero Photometric = 0
	PhotometricBlackIsZero Photometric = 1
	PhotometricRGB         Photometric = 2
	PhotometricPalette     Photometric = 3
	PhotometricMask        Photometric = 4
	PhotometricCMYK        Photometric = 5
	PhotometricYCbCr       Photometric = 6
	PhotometricCIELab      Photometric = 8
)

var photometricNames = map[Photometric]string{
	PhotometricWhiteIsZero: "WhiteIsZero",
	PhotometricBlackIsZero: "BlackIsZero",
	PhotometricRGB:         "RGB",
	PhotometricPalette:     "Palette",
	PhotometricMask:        "TransparencyMask",
	PhotometricCMYK:        "CMYK",
	PhotometricYCbCr:       "YCbCr",
	PhotometricCIELab:      "CIELab",
}

func (p Photometric) String() string {
	return enumString(photometricNames, p)
}

func parsePhotometric(v uint32) (Photometric, error) {
	return parseEnum(photometricNames, v, "photometric interpretation")
}

// Compression is the compression method used for the strips of an image.
type Compression uint16

const (
	CompressionNone       Compression = 1
	CompressionHuffman    Compression = 2
	CompressionFax3       Compression = 3
	CompressionFax4       Compression = 4
	CompressionLZW        Compression = 5
	CompressionJPEGOld    Compression = 6
	CompressionJPEG       Compression = 7
	CompressionDeflate    Compression = 8
	CompressionPackBits   Compression = 32773
	CompressionDeflateOld Compression = 32946
)

var compressionNames = map[Compression]string{
	CompressionNone:       "None",
	CompressionHuffman:    "Huffman",
	CompressionFax3:       "Fax3",
	CompressionFax4:       "Fax4",
	CompressionLZW:        "LZW",
	CompressionJPEGOld:    "JPEGOld",
	CompressionJPEG:       "JPEG",
	CompressionDeflate:    "Deflate",
	CompressionPackBits:   "PackBits",
	CompressionDeflateOld: "DeflateOld",
}

func (c Compression) String() string {
	return enumString(compressionNames, c)
}

func parseCompression(v uint32) (Compression, error) {
	return parseEnum(compressionNames, v, "compression method")
}

// Predictor is the differencing applied to the image data before compression.
type Predictor uint16

const (
	PredictorNone       Predictor = 1
	PredictorHorizontal Predictor = 2
)

var predictorNames = map[Predictor]string{
	PredictorNone:       "None",
	PredictorHorizontal: "Horizontal",
}

func (p Predictor) String() string {
	return enumString(predictorNames, p)
}

func parsePredictor(v uint32) (Predictor, error) {
	return parseEnum(predictorNames, v, "predictor")
}

// PlanarConfiguration describes how the samples of a pixel are stored.
type PlanarConfiguration uint16

const (
	PlanarChunky PlanarConfiguration = 1
	PlanarPlanar PlanarConfiguration = 2
)

var planarNames = map[PlanarConfiguration]string{
	PlanarChunky: "Chunky",
	PlanarPlanar: "Planar",
}

func (p PlanarConfiguration) String() string {
	return enumString(planarNames, p)
}

func parsePlanarConfiguration(v uint32) (PlanarConfiguration, error) {
	return parseEnum(planarNames, v, "planar configuration")
}

func enumString[T ~uint16](names map[T]string, v T) string {
	if s, found := names[v]; found {
		return s
	}
	return fmt.Sprintf("%d", uint16(v))
}

// parseEnum maps a raw tag value to a known kind.
// Unknown values are an unsupported error, never a default.
func parseEnum[T ~uint16](names map[T]string, v uint32, what string) (T, error) {
	if v <= 0xFFFF {
		if _, found := names[T(v)]; found {
			return T(v), nil
		}
	}
	return 0, newUnsupportedErrorf("unknown %s %d", what, v)
}

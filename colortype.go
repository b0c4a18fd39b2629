// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

import (
	"fmt"
	"slices"
)

// ColorModel is the color model of a ColorType.
type ColorModel uint8

const (
	ColorModelGray ColorModel = iota + 1
	ColorModelRGB
	ColorModelPalette
	ColorModelGrayA
	ColorModelRGBA
)

var colorModelNames = map[ColorModel]string{
	ColorModelGray:    "Gray",
	ColorModelRGB:     "RGB",
	ColorModelPalette: "Palette",
	ColorModelGrayA:   "GrayA",
	ColorModelRGBA:    "RGBA",
}

func (m ColorModel) String() string {
	if s, found := colorModelNames[m]; found {
		return s
	}
	return fmt.Sprintf("ColorModel(%d)", uint8(m))
}

// Samples returns the number of samples per pixel for m.
func (m ColorModel) Samples() int {
	switch m {
	case ColorModelGray, ColorModelPalette:
		return 1
	case ColorModelGrayA:
		return 2
	case ColorModelRGB:
		return 3
	case ColorModelRGBA:
		return 4
	}
	return 0
}

// ColorType is a color model with the bit depth of each sample.
type ColorType struct {
	Model    ColorModel
	BitDepth uint8
}

func Gray(bitDepth uint8) ColorType    { return ColorType{ColorModelGray, bitDepth} }
func RGB(bitDepth uint8) ColorType     { return ColorType{ColorModelRGB, bitDepth} }
func Palette(bitDepth uint8) ColorType { return ColorType{ColorModelPalette, bitDepth} }
func GrayA(bitDepth uint8) ColorType   { return ColorType{ColorModelGrayA, bitDepth} }
func RGBA(bitDepth uint8) ColorType    { return ColorType{ColorModelRGBA, bitDepth} }

// Samples returns the number of samples per pixel.
func (c ColorType) Samples() int {
	return c.Model.Samples()
}

// IsZero reports whether c is the zero value.
func (c ColorType) IsZero() bool {
	return c == ColorType{}
}

func (c ColorType) String() string {
	return fmt.Sprintf("%s(%d)", c.Model, c.BitDepth)
}

// resolveColorType maps the photometric interpretation and bits per sample of a page
// to its color type. This is a small, closed table; everything else is unsupported.
func resolveColorType(p Photometric, bitsPerSample []uint32) (ColorType, error) {
	switch p {
	case PhotometricRGB:
		switch {
		case slices.Equal(bitsPerSample, []uint32{8, 8, 8, 8}):
			return RGBA(8), nil
		case slices.Equal(bitsPerSample, []uint32{8, 8, 8}):
			return RGB(8), nil
		case slices.Equal(bitsPerSample, []uint32{16, 16, 16, 16}):
			return RGBA(16), nil
		case slices.Equal(bitsPerSample, []uint32{16, 16, 16}):
			return RGB(16), nil
		}
	case PhotometricBlackIsZero, PhotometricWhiteIsZero:
		if len(bitsPerSample) == 1 {
			n := bitsPerSample[0]
			if n > 0 && n <= 0xFF {
				return Gray(uint8(n)), nil
			}
		}
	}
	return ColorType{}, newUnsupportedErrorf("color type for %s with bits per sample %v", p, bitsPerSample)
}

// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package imagetiff decodes baseline TIFF images.
//
// It reads the tag directories of a TIFF stream page by page and expands
// uncompressed, LZW, PackBits and Deflate strips of gray and RGB(A) images
// into caller supplied buffers. It does not write TIFF.
package imagetiff

import (
	"fmt"
	"image"
	"io"
)

// ErrStopWalking is a sentinel error to signal that the walk should stop.
var ErrStopWalking = fmt.Errorf("stop walking")

// HandleTagFunc is the function that is called for each tag.
type HandleTagFunc func(info TagInfo) error

// TagInfo contains information about a tag.
type TagInfo struct {
	// The tag.
	Tag Tag
	// The directory the tag was read from, e.g. "IFD0" for the first page.
	Namespace string
	// The resolved tag value.
	Value Value
}

// ImageConfig contains basic image configuration.
type ImageConfig struct {
	Width     int
	Height    int
	ColorType ColorType
}

// Options contains the options for the Decoder.
type Options struct {
	// Warnf will be called for each warning.
	Warnf func(string, ...any)

	// LimitNumTags is the maximum number of entries in a directory.
	// Default value is 5000.
	LimitNumTags uint32

	// LimitTagSize is the maximum size in bytes of a tag value stored outside its entry.
	// Larger values are a format error.
	// Default value is 1 MiB.
	LimitTagSize uint32

	// LimitImageBytes is the maximum size in bytes of a page decoded with ReadImage.
	// Default value is 512 MiB.
	LimitImageBytes uint64
}

func (opts Options) withDefaults() Options {
	const (
		defaultLimitNumTags    = 5000
		defaultLimitTagSize    = 1 << 20
		defaultLimitImageBytes = 512 << 20
	)

	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}
	if opts.LimitNumTags == 0 {
		opts.LimitNumTags = defaultLimitNumTags
	}
	if opts.LimitTagSize == 0 {
		opts.LimitTagSize = defaultLimitTagSize
	}
	if opts.LimitImageBytes == 0 {
		opts.LimitImageBytes = defaultLimitImageBytes
	}
	return opts
}

// Decode decodes the first page in r.
func Decode(r io.ReadSeeker, opts Options) (image.Image, error) {
	d, err := NewDecoder(r, opts)
	if err != nil {
		return nil, err
	}
	return d.Image()
}

// DecodeConfig returns the dimensions and color type of the first page in r
// without decoding its pixels.
func DecodeConfig(r io.ReadSeeker, opts Options) (ImageConfig, error) {
	d, err := NewDecoder(r, opts)
	if err != nil {
		return ImageConfig{}, err
	}
	ct, err := d.ColorType()
	if err != nil {
		return ImageConfig{}, err
	}
	w, h := d.Dimensions()
	return ImageConfig{Width: int(w), Height: int(h), ColorType: ct}, nil
}

// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

import (
	"errors"
	"fmt"
	"io"
)

// ErrorKind classifies an ImageError.
type ErrorKind int

const (
	// KindFormat means the stream is structurally malformed.
	KindFormat ErrorKind = iota + 1
	// KindDimension means the image dimensions are too small or too large.
	KindDimension
	// KindUnsupported means a recognized but unimplemented feature.
	KindUnsupported
	// KindUnsupportedColor means the resolved color type cannot be decoded.
	KindUnsupportedColor
	// KindNotEnoughData means the stream did not contain enough data.
	KindNotEnoughData
	// KindIO means the underlying stream failed, including short reads.
	KindIO
	// KindImageEnd means there are no further pages.
	KindImageEnd
)

var kindNames = map[ErrorKind]string{
	KindFormat:           "format error",
	KindDimension:        "dimension error",
	KindUnsupported:      "unsupported",
	KindUnsupportedColor: "unsupported color",
	KindNotEnoughData:    "not enough data",
	KindIO:               "I/O error",
	KindImageEnd:         "image end",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels to be used with errors.Is.
var (
	ErrFormat           = &ImageError{Kind: KindFormat}
	ErrDimension        = &ImageError{Kind: KindDimension}
	ErrUnsupported      = &ImageError{Kind: KindUnsupported}
	ErrUnsupportedColor = &ImageError{Kind: KindUnsupportedColor}
	ErrNotEnoughData    = &ImageError{Kind: KindNotEnoughData}
	ErrIO               = &ImageError{Kind: KindIO}
	ErrImageEnd         = &ImageError{Kind: KindImageEnd}
)

// ImageError is the error type returned by the decoder.
type ImageError struct {
	Kind ErrorKind

	// Msg holds additional details, if any.
	Msg string

	// Color is set for KindUnsupportedColor.
	Color ColorType

	// Err is the underlying cause, if any.
	Err error
}

func (e *ImageError) Error() string {
	var s string
	switch e.Kind {
	case KindUnsupportedColor:
		s = fmt.Sprintf("imagetiff: the decoder does not support the color type %s", e.Color)
	case KindIO:
		if e.Err != nil {
			return "imagetiff: " + e.Err.Error()
		}
		s = "imagetiff: " + e.Kind.String()
	default:
		s = "imagetiff: " + e.Kind.String()
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *ImageError of the same kind.
// An unsupported color error also matches ErrUnsupported.
func (e *ImageError) Is(target error) bool {
	t, ok := target.(*ImageError)
	if !ok {
		return false
	}
	if t.Kind == KindUnsupported && e.Kind == KindUnsupportedColor {
		return true
	}
	return e.Kind == t.Kind
}

// IsFormatError reports whether err is a format error.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsUnsupported reports whether err signals an unsupported feature or color type.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

func newFormatErrorf(format string, args ...any) error {
	return &ImageError{Kind: KindFormat, Msg: fmt.Sprintf(format, args...)}
}

func newUnsupportedErrorf(format string, args ...any) error {
	return &ImageError{Kind: KindUnsupported, Msg: fmt.Sprintf(format, args...)}
}

func newUnsupportedColorError(c ColorType) error {
	return &ImageError{Kind: KindUnsupportedColor, Color: c}
}

func newDimensionErrorf(format string, args ...any) error {
	return &ImageError{Kind: KindDimension, Msg: fmt.Sprintf(format, args...)}
}

// newImageEndError is a format error that also matches ErrImageEnd.
func newImageEndError() error {
	return &ImageError{Kind: KindFormat, Msg: "image file directory not found", Err: ErrImageEnd}
}

// newIOError wraps err, turning a premature io.EOF into io.ErrUnexpectedEOF.
func newIOError(err error) error {
	if err == nil {
		return nil
	}
	var ie *ImageError
	if errors.As(err, &ie) {
		return err
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return &ImageError{Kind: KindIO, Err: err}
}

// tagError prefixes the message of err with the tag it was resolved from.
func tagError(tag Tag, err error) error {
	var ie *ImageError
	if !errors.As(err, &ie) {
		return err
	}
	c := *ie
	c.Msg = tag.String() + ": " + c.Msg
	return &c
}

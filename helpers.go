// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Rat is a rational number as stored in a RATIONAL or SRATIONAL value,
// reduced to lowest terms with a positive denominator.
type Rat[T int32 | uint32] interface {
	Num() T
	Den() T
	Float64() float64

	// String returns "num/den", or only the numerator if the denominator is 1.
	String() string
}

var errZeroDenominator = errors.New("denominator must be non-zero")

type rational[T int32 | uint32] [2]T

func (r rational[T]) Num() T { return r[0] }
func (r rational[T]) Den() T { return r[1] }

func (r rational[T]) Float64() float64 {
	return float64(r[0]) / float64(r[1])
}

func (r rational[T]) String() string {
	if r[1] == 1 {
		return fmt.Sprint(r[0])
	}
	return fmt.Sprintf("%d/%d", r[0], r[1])
}

// NewRat returns num/den in lowest terms.
func NewRat[T int32 | uint32](num, den T) (Rat[T], error) {
	if den == 0 {
		return nil, errZeroDenominator
	}
	a, b := num, den
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		a = -a
	}
	if a > 1 {
		num, den = num/a, den/a
	}
	if den < 0 {
		num, den = -num, -den
	}
	return rational[T]{num, den}, nil
}

// decodeASCII turns the raw bytes of an ASCII value into a string.
// Trailing NULs are dropped. TIFF writers in the wild store Latin-1
// in ASCII fields, so bytes that are not valid UTF-8 are decoded as ISO 8859-1.
func decodeASCII(b []byte) (string, bool) {
	b = bytes.TrimRight(b, "\x00")
	if utf8.Valid(b) {
		return string(b), false
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b), false
	}
	return string(s), true
}

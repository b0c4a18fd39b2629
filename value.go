// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Value is a resolved directory entry value.
// The raw bytes are kept in stream byte order and converted on access.
type Value struct {
	Type  Type
	Count uint32

	data  []byte
	order binary.ByteOrder
}

// Uint32 returns the single unsigned integer held by v.
// It fails if v is not an unsigned integer or does not hold exactly one element.
func (v Value) Uint32() (uint32, error) {
	if v.Count != 1 {
		return 0, newFormatErrorf("expected a single value, got %d", v.Count)
	}
	vals, err := v.Uint32s()
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

// Uint32s returns all elements of v widened to uint32.
func (v Value) Uint32s() ([]uint32, error) {
	if !v.Type.isUnsignedInteger() {
		return nil, newFormatErrorf("expected an unsigned integer, got %s", v.Type)
	}
	size := int(v.Type.Size())
	vals := make([]uint32, v.Count)
	for i := range vals {
		b := v.data[i*size:]
		switch size {
		case 1:
			vals[i] = uint32(b[0])
		case 2:
			vals[i] = uint32(v.order.Uint16(b))
		case 4:
			vals[i] = v.order.Uint32(b)
		}
	}
	return vals, nil
}

// Int64s returns all elements of an integer value, signed or unsigned, as int64.
func (v Value) Int64s() ([]int64, error) {
	if v.Type.isUnsignedInteger() {
		u, err := v.Uint32s()
		if err != nil {
			return nil, err
		}
		vals := make([]int64, len(u))
		for i, n := range u {
			vals[i] = int64(n)
		}
		return vals, nil
	}
	if !v.Type.isSignedInteger() {
		return nil, newFormatErrorf("expected an integer, got %s", v.Type)
	}
	size := int(v.Type.Size())
	vals := make([]int64, v.Count)
	for i := range vals {
		b := v.data[i*size:]
		switch size {
		case 1:
			vals[i] = int64(int8(b[0]))
		case 2:
			vals[i] = int64(int16(v.order.Uint16(b)))
		case 4:
			vals[i] = int64(int32(v.order.Uint32(b)))
		}
	}
	return vals, nil
}

// Rationals returns the elements of a Rational value.
func (v Value) Rationals() ([]Rat[uint32], error) {
	if v.Type != TypeRational {
		return nil, newFormatErrorf("expected %s, got %s", TypeRational, v.Type)
	}
	return readRats[uint32](v, func(u uint32) uint32 { return u })
}

// SRationals returns the elements of an SRational value.
func (v Value) SRationals() ([]Rat[int32], error) {
	if v.Type != TypeSRational {
		return nil, newFormatErrorf("expected %s, got %s", TypeSRational, v.Type)
	}
	return readRats[int32](v, func(u uint32) int32 { return int32(u) })
}

func readRats[T int32 | uint32](v Value, conv func(uint32) T) ([]Rat[T], error) {
	vals := make([]Rat[T], v.Count)
	for i := range vals {
		b := v.data[i*8:]
		r, err := NewRat(conv(v.order.Uint32(b)), conv(v.order.Uint32(b[4:])))
		if err != nil {
			return nil, newFormatErrorf("element %d: %v", i, err)
		}
		vals[i] = r
	}
	return vals, nil
}

// Float64s returns all numeric elements of v as float64.
func (v Value) Float64s() ([]float64, error) {
	switch v.Type {
	case TypeFloat:
		vals := make([]float64, v.Count)
		for i := range vals {
			vals[i] = float64(math.Float32frombits(v.order.Uint32(v.data[i*4:])))
		}
		return vals, nil
	case TypeDouble:
		vals := make([]float64, v.Count)
		for i := range vals {
			vals[i] = math.Float64frombits(v.order.Uint64(v.data[i*8:]))
		}
		return vals, nil
	case TypeRational:
		rats, err := v.Rationals()
		if err != nil {
			return nil, err
		}
		return ratsToFloats(rats), nil
	case TypeSRational:
		rats, err := v.SRationals()
		if err != nil {
			return nil, err
		}
		return ratsToFloats(rats), nil
	}

	ints, err := v.Int64s()
	if err != nil {
		return nil, newFormatErrorf("expected a number, got %s", v.Type)
	}
	vals := make([]float64, len(ints))
	for i, n := range ints {
		vals[i] = float64(n)
	}
	return vals, nil
}

func ratsToFloats[T int32 | uint32](rats []Rat[T]) []float64 {
	vals := make([]float64, len(rats))
	for i, r := range rats {
		vals[i] = r.Float64()
	}
	return vals
}

// ASCII returns the string held by an ASCII value with trailing NULs removed.
func (v Value) ASCII() (string, error) {
	if v.Type != TypeASCII {
		return "", newFormatErrorf("expected %s, got %s", TypeASCII, v.Type)
	}
	s, _ := decodeASCII(v.data)
	return s, nil
}

// Bytes returns a copy of the raw value bytes in stream byte order.
func (v Value) Bytes() []byte {
	return append([]byte(nil), v.data...)
}

// Any returns the value in its most natural Go form:
// string for ASCII, []byte for Undefined, and a scalar when Count is 1.
func (v Value) Any() (any, error) {
	var (
		vals any
		n    int
		err  error
	)
	switch {
	case v.Type == TypeASCII:
		return v.ASCII()
	case v.Type == TypeUndefined:
		return v.Bytes(), nil
	case v.Type.isUnsignedInteger():
		var u []uint32
		u, err = v.Uint32s()
		vals, n = u, len(u)
		if n == 1 {
			return u[0], err
		}
	case v.Type.isSignedInteger():
		var s []int64
		s, err = v.Int64s()
		vals, n = s, len(s)
		if n == 1 {
			return s[0], err
		}
	case v.Type == TypeRational:
		var r []Rat[uint32]
		r, err = v.Rationals()
		vals, n = r, len(r)
		if n == 1 {
			return r[0], err
		}
	case v.Type == TypeSRational:
		var r []Rat[int32]
		r, err = v.SRationals()
		vals, n = r, len(r)
		if n == 1 {
			return r[0], err
		}
	default:
		var f []float64
		f, err = v.Float64s()
		vals, n = f, len(f)
		if n == 1 {
			return f[0], err
		}
	}
	if err != nil {
		return nil, err
	}
	return vals, nil
}

func (v Value) String() string {
	a, err := v.Any()
	if err != nil {
		return fmt.Sprintf("%s(invalid)", v.Type)
	}
	return fmt.Sprintf("%v", a)
}

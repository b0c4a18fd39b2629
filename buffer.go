// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

// DecodingBuffer is a caller supplied pixel buffer.
// It is either U8Buffer or U16Buffer, and its element width must match
// the bit depth of the page being decoded.
type DecodingBuffer interface {
	// Len returns the number of elements in the buffer.
	Len() int

	// BitsPerElement returns 8 or 16.
	BitsPerElement() int

	isDecodingBuffer()
}

// DecodingResult holds the samples of a decoded page.
// It has the same variants as DecodingBuffer.
type DecodingResult = DecodingBuffer

// U8Buffer holds 8-bit samples, or packed rows of sub-byte gray samples.
type U8Buffer []uint8

// U16Buffer holds 16-bit samples in native order.
type U16Buffer []uint16

func (b U8Buffer) Len() int            { return len(b) }
func (b U8Buffer) BitsPerElement() int { return 8 }
func (U8Buffer) isDecodingBuffer()     {}

func (b U16Buffer) Len() int            { return len(b) }
func (b U16Buffer) BitsPerElement() int { return 16 }
func (U16Buffer) isDecodingBuffer()     {}

var (
	_ DecodingBuffer = U8Buffer(nil)
	_ DecodingBuffer = U16Buffer(nil)
)

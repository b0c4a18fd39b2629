// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff_test

import (
	"encoding/binary"
	"slices"

	"github.com/bep/imagetiff"
)

// Helpers to build synthetic TIFF streams.

type testByteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

type testEntry struct {
	tag   imagetiff.Tag
	typ   imagetiff.Type
	count uint32
	vals  []uint32 // Used for Byte, Short and Long when raw is nil.
	raw   []byte
}

func shortEntry(tag imagetiff.Tag, vals ...uint32) testEntry {
	return testEntry{tag: tag, typ: imagetiff.TypeShort, vals: vals}
}

func longEntry(tag imagetiff.Tag, vals ...uint32) testEntry {
	return testEntry{tag: tag, typ: imagetiff.TypeLong, vals: vals}
}

func asciiEntry(tag imagetiff.Tag, s string) testEntry {
	return testEntry{tag: tag, typ: imagetiff.TypeASCII, raw: []byte(s + "\x00")}
}

func rawEntry(tag imagetiff.Tag, typ imagetiff.Type, count uint32, raw []byte) testEntry {
	return testEntry{tag: tag, typ: typ, count: count, raw: raw}
}

func (e testEntry) encode(order testByteOrder) (count uint32, data []byte) {
	if e.raw != nil {
		count = e.count
		if count == 0 {
			count = uint32(len(e.raw))
		}
		return count, e.raw
	}
	for _, v := range e.vals {
		switch e.typ {
		case imagetiff.TypeByte:
			data = append(data, byte(v))
		case imagetiff.TypeShort:
			data = order.AppendUint16(data, uint16(v))
		default:
			data = order.AppendUint32(data, v)
		}
	}
	return uint32(len(e.vals)), data
}

type testPage struct {
	entries []testEntry
	// If set, StripOffsets and StripByteCounts entries are added for these.
	strips [][]byte
}

func grayPage(width, height uint32, photometric imagetiff.Photometric, strip []byte, extra ...testEntry) testPage {
	return testPage{
		entries: append([]testEntry{
			shortEntry(imagetiff.TagImageWidth, width),
			shortEntry(imagetiff.TagImageLength, height),
			shortEntry(imagetiff.TagBitsPerSample, 8),
			shortEntry(imagetiff.TagPhotometricInterpretation, uint32(photometric)),
		}, extra...),
		strips: [][]byte{strip},
	}
}

type testFile struct {
	b []byte
	// Offset of each directory.
	ifdOffsets []uint32
	// Position of the next directory field of each directory.
	nextFields []int
	order      testByteOrder
}

// setNext points the next directory field of page i at offset.
func (f testFile) setNext(i int, offset uint32) {
	f.order.PutUint32(f.b[f.nextFields[i]:], offset)
}

// buildTIFF lays out each page as its strips, its directory and then
// the values that do not fit in their entries.
func buildTIFF(order testByteOrder, pages ...testPage) testFile {
	f := testFile{order: order}
	if order == testByteOrder(binary.LittleEndian) {
		f.b = append(f.b, 'I', 'I')
	} else {
		f.b = append(f.b, 'M', 'M')
	}
	f.b = order.AppendUint16(f.b, 42)
	f.b = order.AppendUint32(f.b, 0)
	prevNext := 4

	for _, p := range pages {
		entries := slices.Clone(p.entries)
		if p.strips != nil {
			var offsets, counts []uint32
			for _, s := range p.strips {
				offsets = append(offsets, uint32(len(f.b)))
				counts = append(counts, uint32(len(s)))
				f.b = append(f.b, s...)
			}
			entries = append(entries, longEntry(imagetiff.TagStripOffsets, offsets...), longEntry(imagetiff.TagStripByteCounts, counts...))
		}
		if len(f.b)%2 != 0 {
			f.b = append(f.b, 0)
		}

		ifdOffset := uint32(len(f.b))
		order.PutUint32(f.b[prevNext:], ifdOffset)
		f.ifdOffsets = append(f.ifdOffsets, ifdOffset)

		dataOffset := ifdOffset + 2 + uint32(len(entries))*12 + 4
		var extra []byte
		f.b = order.AppendUint16(f.b, uint16(len(entries)))
		for _, e := range entries {
			count, data := e.encode(order)
			f.b = order.AppendUint16(f.b, uint16(e.tag))
			f.b = order.AppendUint16(f.b, uint16(e.typ))
			f.b = order.AppendUint32(f.b, count)
			if len(data) <= 4 {
				var field [4]byte
				copy(field[:], data)
				f.b = append(f.b, field[:]...)
				continue
			}
			f.b = order.AppendUint32(f.b, dataOffset+uint32(len(extra)))
			extra = append(extra, data...)
			if len(extra)%2 != 0 {
				extra = append(extra, 0)
			}
		}
		prevNext = len(f.b)
		f.nextFields = append(f.nextFields, prevNext)
		f.b = order.AppendUint32(f.b, 0)
		f.b = append(f.b, extra...)
	}

	return f
}

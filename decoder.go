// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

import (
	"encoding/binary"
	"fmt"
	"io"
	"maps"
)

const meaningOfLife = 42

// Decoder decodes the pages of a TIFF stream one at a time.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	stream *streamReader
	opts   Options

	// Offset of the next directory, 0 if there are no more pages.
	nextIFD uint32
	visited map[uint32]bool

	// The current page.
	index int
	ifd   Directory
	page  page
}

// page holds the tags of the current directory needed to decode its pixels.
type page struct {
	width         uint32
	height        uint32
	bitsPerSample []uint32
	samples       uint32
	photometric   Photometric
	compression   Compression
}

// NewDecoder reads the TIFF header from r and loads the first directory.
func NewDecoder(r io.ReadSeeker, opts Options) (*Decoder, error) {
	if r == nil {
		return nil, newIOError(errNoReader)
	}
	d := &Decoder{
		stream:  newStreamReader(r, binary.BigEndian),
		opts:    opts.withDefaults(),
		visited: make(map[uint32]bool),
		index:   -1,
	}
	if err := d.readHeader(); err != nil {
		return nil, err
	}
	if err := d.NextImage(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Decoder) readHeader() error {
	if err := d.stream.seek(0); err != nil {
		return err
	}
	byteOrderTag, err := d.stream.read2()
	if err != nil {
		return err
	}
	switch byteOrderTag {
	case byteOrderBigEndian:
		d.stream.byteOrder = binary.BigEndian
	case byteOrderLittleEndian:
		d.stream.byteOrder = binary.LittleEndian
	default:
		return newFormatErrorf("invalid byte order marker 0x%x", byteOrderTag)
	}

	id, err := d.stream.read2()
	if err != nil {
		return err
	}
	if id != meaningOfLife {
		return newFormatErrorf("invalid version %d", id)
	}

	ifdOffset, err := d.stream.read4()
	if err != nil {
		return err
	}
	if ifdOffset == 0 {
		return newImageEndError()
	}
	d.nextIFD = ifdOffset
	return nil
}

// MoreImages reports whether there is another page to load with NextImage.
func (d *Decoder) MoreImages() bool {
	return d.nextIFD != 0
}

// NextImage loads the next directory and makes it the current page.
// On error the decoder is left on the page it was on.
func (d *Decoder) NextImage() error {
	offset := d.nextIFD
	if offset == 0 {
		return newImageEndError()
	}
	if d.visited[offset] {
		return newFormatErrorf("directory cycle detected at offset %d", offset)
	}

	dir, next, err := readDirectory(d.stream, offset, d.opts)
	if err != nil {
		return err
	}
	p, err := d.loadPage(dir)
	if err != nil {
		return err
	}

	d.visited[offset] = true
	d.nextIFD = next
	d.index++
	d.ifd = dir
	d.page = p
	return nil
}

func (d *Decoder) loadPage(dir Directory) (page, error) {
	var (
		p   page
		err error
	)
	tr := tagResolver{dir: dir, r: d.stream, limit: d.opts.LimitTagSize}

	if p.width, err = tr.getUint32(TagImageWidth); err != nil {
		return p, err
	}
	if p.height, err = tr.getUint32(TagImageLength); err != nil {
		return p, err
	}

	v, err := tr.getUint32(TagPhotometricInterpretation)
	if err != nil {
		return p, err
	}
	if p.photometric, err = parsePhotometric(v); err != nil {
		return p, err
	}

	v, found, err := tr.findUint32(TagCompression)
	if err != nil {
		return p, err
	}
	p.compression = CompressionNone
	if found {
		if p.compression, err = parseCompression(v); err != nil {
			return p, err
		}
	}

	v, found, err = tr.findUint32(TagSamplesPerPixel)
	if err != nil {
		return p, err
	}
	p.samples = 1
	if found {
		p.samples = v
	}

	switch p.samples {
	case 1:
		v, found, err := tr.findUint32(TagBitsPerSample)
		if err != nil {
			return p, err
		}
		if !found {
			v = 1
		}
		p.bitsPerSample = []uint32{v}
	case 3, 4:
		bps, found, err := tr.findUint32s(TagBitsPerSample)
		if err != nil {
			return p, err
		}
		if !found {
			bps = make([]uint32, p.samples)
			for i := range bps {
				bps[i] = 1
			}
		}
		if len(bps) != int(p.samples) {
			return p, newFormatErrorf("got %d bits per sample values for %d samples per pixel", len(bps), p.samples)
		}
		p.bitsPerSample = bps
	default:
		return p, newUnsupportedErrorf("%d samples per pixel", p.samples)
	}

	return p, nil
}

// ByteOrder returns the byte order of the stream.
func (d *Decoder) ByteOrder() binary.ByteOrder {
	return d.stream.byteOrder
}

// Dimensions returns the width and height of the current page.
func (d *Decoder) Dimensions() (width, height uint32) {
	return d.page.width, d.page.height
}

// Photometric returns the photometric interpretation of the current page.
func (d *Decoder) Photometric() Photometric {
	return d.page.photometric
}

// Compression returns the compression method of the current page.
func (d *Decoder) Compression() Compression {
	return d.page.compression
}

// ColorType returns the color type of the current page.
func (d *Decoder) ColorType() (ColorType, error) {
	return resolveColorType(d.page.photometric, d.page.bitsPerSample)
}

// Directory returns a copy of the directory of the current page.
func (d *Decoder) Directory() Directory {
	return maps.Clone(d.ifd)
}

// TagValue resolves the value of tag in the current page.
// The bool is false if the tag is not present.
func (d *Decoder) TagValue(tag Tag) (Value, bool, error) {
	tr := tagResolver{dir: d.ifd, r: d.stream, limit: d.opts.LimitTagSize}
	return tr.find(tag)
}

// WalkTags calls fn for each tag in the current page in ascending tag order.
// Return ErrStopWalking from fn to stop without error.
func (d *Decoder) WalkTags(fn HandleTagFunc) error {
	tr := tagResolver{dir: d.ifd, r: d.stream, limit: d.opts.LimitTagSize}
	namespace := fmt.Sprintf("IFD%d", d.index)
	for _, tag := range d.ifd.Tags() {
		v, _, err := tr.find(tag)
		if err != nil {
			return err
		}
		if !tag.Known() {
			d.opts.Warnf("unknown tag 0x%x in %s", uint16(tag), namespace)
		}
		if err := fn(TagInfo{Tag: tag, Namespace: namespace, Value: v}); err != nil {
			if err == ErrStopWalking {
				return nil
			}
			return err
		}
	}
	return nil
}

// ReadShort reads a 16-bit value at the current position in the stream's byte order.
func (d *Decoder) ReadShort() (uint16, error) {
	return d.stream.read2()
}

// ReadLong reads a 32-bit value at the current position in the stream's byte order.
func (d *Decoder) ReadLong() (uint32, error) {
	return d.stream.read4()
}

// ReadOffset reads a 32-bit offset at the current position.
func (d *Decoder) ReadOffset() (uint32, error) {
	return d.stream.read4()
}

// GotoOffset moves the stream to the absolute offset.
func (d *Decoder) GotoOffset(offset uint32) error {
	return d.stream.seek(int64(offset))
}

// ExpandStrip decodes the strip stored at offset with the given compressed length into buf
// and returns the number of elements written.
// maxUncompressed is the upper bound in bytes of the decompressed strip.
// WhiteIsZero samples are inverted so that 0 is black.
func (d *Decoder) ExpandStrip(buf DecodingBuffer, offset, length uint32, maxUncompressed int) (int, error) {
	return d.expandStrip(buf, offset, length, maxUncompressed, stripOptions{invert: d.page.photometric == PhotometricWhiteIsZero})
}

type stripOptions struct {
	// Invert gray samples.
	invert bool
	// Drop decoded bytes that do not fit in the buffer instead of failing.
	truncate bool
}

func (d *Decoder) expandStrip(buf DecodingBuffer, offset, length uint32, maxUncompressed int, so stripOptions) (int, error) {
	ct, err := d.ColorType()
	if err != nil {
		return 0, err
	}
	if maxUncompressed < 0 {
		return 0, newFormatErrorf("negative output limit %d", maxUncompressed)
	}

	var write func(data []byte) (int, error)

	switch b := buf.(type) {
	case U8Buffer:
		switch {
		case (ct.Model == ColorModelRGB || ct.Model == ColorModelRGBA) && ct.BitDepth == 8:
			write = func(data []byte) (int, error) {
				return copyBytes(b, data, false)
			}
		case ct.Model == ColorModelGray && ct.BitDepth <= 8:
			write = func(data []byte) (int, error) {
				return copyBytes(b, data, so.invert)
			}
		}
	case U16Buffer:
		switch {
		case (ct.Model == ColorModelRGB || ct.Model == ColorModelRGBA) && ct.BitDepth == 16:
			write = func(data []byte) (int, error) {
				return copyWords(b, data, d.stream.byteOrder, false)
			}
		case ct.Model == ColorModelGray && ct.BitDepth == 16:
			write = func(data []byte) (int, error) {
				return copyWords(b, data, d.stream.byteOrder, so.invert)
			}
		}
	}
	if write == nil {
		return 0, newUnsupportedColorError(ct)
	}

	data, err := d.readStrip(offset, length, maxUncompressed)
	if err != nil {
		return 0, err
	}
	if so.truncate {
		data = data[:min(len(data), buf.Len()*buf.BitsPerElement()/8)]
	}
	return write(data)
}

// readStrip reads and decompresses one strip.
func (d *Decoder) readStrip(offset, length uint32, maxUncompressed int) ([]byte, error) {
	method := d.page.compression
	switch method {
	case CompressionNone, CompressionLZW, CompressionPackBits, CompressionDeflate, CompressionDeflateOld:
	default:
		return nil, newUnsupportedErrorf("compression method %s", method)
	}

	if err := d.stream.seek(int64(offset)); err != nil {
		return nil, err
	}
	r := d.stream.r
	n := int(length)

	switch method {
	case CompressionLZW:
		return decompressLZW(r, n, maxUncompressed)
	case CompressionPackBits:
		return unpackBits(r, n, maxUncompressed)
	case CompressionDeflate, CompressionDeflateOld:
		return decompressDeflate(r, n, maxUncompressed)
	default:
		data := make([]byte, min(n, maxUncompressed))
		if err := d.stream.readBytes(data); err != nil {
			return nil, err
		}
		return data, nil
	}
}

func copyBytes(dst U8Buffer, data []byte, invert bool) (int, error) {
	if len(data) > len(dst) {
		return 0, newFormatErrorf("strip of %d bytes does not fit in buffer of %d", len(data), len(dst))
	}
	n := copy(dst, data)
	if invert {
		for i := range n {
			dst[i] = 0xFF - dst[i]
		}
	}
	return n, nil
}

func copyWords(dst U16Buffer, data []byte, order binary.ByteOrder, invert bool) (int, error) {
	n := len(data) / 2
	if n > len(dst) {
		return 0, newFormatErrorf("strip of %d samples does not fit in buffer of %d", n, len(dst))
	}
	for i := range n {
		v := order.Uint16(data[i*2:])
		if invert {
			v = 0xFFFF - v
		}
		dst[i] = v
	}
	return n, nil
}

// tagResolver resolves tag values of a directory through a stream.
// The directory is never modified; only the stream position moves.
type tagResolver struct {
	dir   Directory
	r     *streamReader
	limit uint32
}

func (t tagResolver) find(tag Tag) (Value, bool, error) {
	e, found := t.dir[tag]
	if !found {
		return Value{}, false, nil
	}
	v, err := e.resolve(t.r, t.limit)
	if err != nil {
		return Value{}, true, err
	}
	return v, true, nil
}

func (t tagResolver) findUint32(tag Tag) (uint32, bool, error) {
	v, found, err := t.find(tag)
	if !found || err != nil {
		return 0, found, err
	}
	n, err := v.Uint32()
	if err != nil {
		return 0, true, tagError(tag, err)
	}
	return n, true, nil
}

func (t tagResolver) findUint32s(tag Tag) ([]uint32, bool, error) {
	v, found, err := t.find(tag)
	if !found || err != nil {
		return nil, found, err
	}
	n, err := v.Uint32s()
	if err != nil {
		return nil, true, tagError(tag, err)
	}
	return n, true, nil
}

func (t tagResolver) getUint32(tag Tag) (uint32, error) {
	v, found, err := t.findUint32(tag)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, newFormatErrorf("required tag %s not found", tag)
	}
	return v, nil
}

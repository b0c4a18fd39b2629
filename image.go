// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

import (
	"image"
	"math/bits"
)

const extraSamplesAssociatedAlpha = 1

// ReadImage decodes all strips of the current page into a new buffer.
// 16-bit pages are returned as U16Buffer, all others as U8Buffer with rows of
// sub-byte gray samples packed and padded to whole bytes.
func (d *Decoder) ReadImage() (DecodingResult, error) {
	ct, err := d.ColorType()
	if err != nil {
		return nil, err
	}
	if ct.BitDepth > 8 && ct.BitDepth != 16 {
		return nil, newUnsupportedColorError(ct)
	}

	tr := tagResolver{dir: d.ifd, r: d.stream, limit: d.opts.LimitTagSize}

	if _, found := d.ifd[TagTileWidth]; found {
		return nil, newUnsupportedErrorf("tiled images")
	}
	v, found, err := tr.findUint32(TagPlanarConfiguration)
	if err != nil {
		return nil, err
	}
	if found {
		planar, err := parsePlanarConfiguration(v)
		if err != nil {
			return nil, err
		}
		if planar == PlanarPlanar && ct.Samples() > 1 {
			return nil, newUnsupportedErrorf("planar configuration %s", planar)
		}
	}
	predictor := PredictorNone
	v, found, err = tr.findUint32(TagPredictor)
	if err != nil {
		return nil, err
	}
	if found {
		if predictor, err = parsePredictor(v); err != nil {
			return nil, err
		}
	}

	width, height := uint64(d.page.width), uint64(d.page.height)
	if width == 0 || height == 0 {
		return nil, newDimensionErrorf("%dx%d", width, height)
	}
	var rowElems, rowBytes uint64
	switch ct.BitDepth {
	case 16:
		rowElems = width * uint64(ct.Samples())
		rowBytes = rowElems * 2
	case 8:
		rowElems = width * uint64(ct.Samples())
		rowBytes = rowElems
	default:
		rowElems = (width*uint64(ct.BitDepth) + 7) / 8
		rowBytes = rowElems
	}
	hi, total := bits.Mul64(rowBytes, height)
	if hi != 0 || total > d.opts.LimitImageBytes {
		return nil, newDimensionErrorf("%dx%d %s image exceeds the limit of %d bytes", width, height, ct, d.opts.LimitImageBytes)
	}

	offsets, found, err := tr.findUint32s(TagStripOffsets)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newFormatErrorf("required tag %s not found", TagStripOffsets)
	}
	counts, found, err := tr.findUint32s(TagStripByteCounts)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newFormatErrorf("required tag %s not found", TagStripByteCounts)
	}
	if len(offsets) != len(counts) {
		return nil, newFormatErrorf("%d strip offsets but %d strip byte counts", len(offsets), len(counts))
	}

	rowsPerStrip := height
	v, found, err = tr.findUint32(TagRowsPerStrip)
	if err != nil {
		return nil, err
	}
	if found {
		if v == 0 {
			return nil, newFormatErrorf("%s is 0", TagRowsPerStrip)
		}
		rowsPerStrip = min(uint64(v), height)
	}
	numStrips := (height + rowsPerStrip - 1) / rowsPerStrip
	if uint64(len(offsets)) < numStrips {
		return nil, newFormatErrorf("%d strips needed, %d found", numStrips, len(offsets))
	}

	var buf DecodingBuffer
	if ct.BitDepth == 16 {
		buf = make(U16Buffer, rowElems*height)
	} else {
		buf = make(U8Buffer, rowElems*height)
	}

	for i := range numStrips {
		y := i * rowsPerStrip
		rows := min(rowsPerStrip, height-y)
		sub := subBuffer(buf, int(y*rowElems), int((y+rows)*rowElems))
		// The last strip may hold a full RowsPerStrip rows.
		n, err := d.expandStrip(sub, offsets[i], counts[i], int(rowsPerStrip*rowBytes), stripOptions{truncate: true})
		if err != nil {
			return nil, err
		}
		if n < sub.Len() {
			d.opts.Warnf("strip %d is short, got %d of %d samples", i, n, sub.Len())
		}
	}

	if predictor == PredictorHorizontal {
		if err := ReverseHorizontalPredictor(buf, d.page.width, d.page.height, ct); err != nil {
			return nil, err
		}
	}
	if d.page.photometric == PhotometricWhiteIsZero {
		invert(buf)
	}

	return buf, nil
}

// invert maps WhiteIsZero samples to BlackIsZero.
// Sub-byte samples are inverted with their padding bits, which are never read.
func invert(buf DecodingBuffer) {
	switch b := buf.(type) {
	case U8Buffer:
		for i, v := range b {
			b[i] = 0xFF - v
		}
	case U16Buffer:
		for i, v := range b {
			b[i] = 0xFFFF - v
		}
	}
}

func subBuffer(buf DecodingBuffer, start, end int) DecodingBuffer {
	switch b := buf.(type) {
	case U8Buffer:
		return b[start:end]
	case U16Buffer:
		return b[start:end]
	}
	panic("unreachable")
}

// Image decodes the current page into an image.Image.
// 8-bit RGB(A) decodes to *image.RGBA or *image.NRGBA depending on ExtraSamples,
// 16-bit to *image.RGBA64 or *image.NRGBA64, and gray to *image.Gray or *image.Gray16.
func (d *Decoder) Image() (image.Image, error) {
	ct, err := d.ColorType()
	if err != nil {
		return nil, err
	}
	if ct.Model == ColorModelGray && ct.BitDepth < 8 && 8%ct.BitDepth != 0 {
		return nil, newUnsupportedColorError(ct)
	}
	res, err := d.ReadImage()
	if err != nil {
		return nil, err
	}

	premultiplied, err := d.associatedAlpha()
	if err != nil {
		return nil, err
	}

	w, h := int(d.page.width), int(d.page.height)
	rect := image.Rect(0, 0, w, h)

	switch ct {
	case Gray(8):
		img := image.NewGray(rect)
		copy(img.Pix, res.(U8Buffer))
		return img, nil
	case Gray(16):
		img := image.NewGray16(rect)
		putWords(img.Pix, res.(U16Buffer), 1, false)
		return img, nil
	case RGB(8):
		img := image.NewRGBA(rect)
		buf := res.(U8Buffer)
		for i, j := 0, 0; i < len(img.Pix); i, j = i+4, j+3 {
			copy(img.Pix[i:i+3], buf[j:j+3])
			img.Pix[i+3] = 0xFF
		}
		return img, nil
	case RGBA(8):
		if premultiplied {
			img := image.NewRGBA(rect)
			copy(img.Pix, res.(U8Buffer))
			return img, nil
		}
		img := image.NewNRGBA(rect)
		copy(img.Pix, res.(U8Buffer))
		return img, nil
	case RGB(16):
		img := image.NewRGBA64(rect)
		putWords(img.Pix, res.(U16Buffer), 3, true)
		return img, nil
	case RGBA(16):
		if premultiplied {
			img := image.NewRGBA64(rect)
			putWords(img.Pix, res.(U16Buffer), 4, false)
			return img, nil
		}
		img := image.NewNRGBA64(rect)
		putWords(img.Pix, res.(U16Buffer), 4, false)
		return img, nil
	}

	// Gray with less than 8 bits per sample, scaled to 8 bits.
	img := image.NewGray(rect)
	buf := res.(U8Buffer)
	depth := int(ct.BitDepth)
	mask := 1<<depth - 1
	rowBytes := (w*depth + 7) / 8
	for y := range h {
		row := buf[y*rowBytes : (y+1)*rowBytes]
		for x := range w {
			bit := x * depth
			v := int(row[bit/8]>>(8-depth-bit%8)) & mask
			img.Pix[y*img.Stride+x] = uint8(v * 0xFF / mask)
		}
	}
	return img, nil
}

// putWords writes big endian samples into pix, which has 2 bytes per sample.
// If opaque, an opaque alpha sample is appended after each group of samples.
func putWords(pix []uint8, buf U16Buffer, samples int, opaque bool) {
	j := 0
	for i := 0; i < len(buf); i += samples {
		for _, v := range buf[i : i+samples] {
			pix[j], pix[j+1] = uint8(v>>8), uint8(v)
			j += 2
		}
		if opaque {
			pix[j], pix[j+1] = 0xFF, 0xFF
			j += 2
		}
	}
}

// associatedAlpha reports whether the first extra sample is premultiplied alpha.
func (d *Decoder) associatedAlpha() (bool, error) {
	tr := tagResolver{dir: d.ifd, r: d.stream, limit: d.opts.LimitTagSize}
	vals, found, err := tr.findUint32s(TagExtraSamples)
	if err != nil || !found || len(vals) == 0 {
		return false, err
	}
	return vals[0] == extraSamplesAssociatedAlpha, nil
}

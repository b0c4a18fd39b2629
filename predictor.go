// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

// ReverseHorizontalPredictor undoes horizontal differencing in buf, which must hold
// width*height pixels of color type ct, row by row.
// Only Gray, RGB and RGBA with 8 or 16 bits per sample are supported, and the
// element width of buf must match the bit depth.
func ReverseHorizontalPredictor(buf DecodingBuffer, width, height uint32, ct ColorType) error {
	switch ct.Model {
	case ColorModelGray, ColorModelRGB, ColorModelRGBA:
	default:
		return newUnsupportedErrorf("horizontal predictor for color type %s", ct)
	}
	if int(ct.BitDepth) != buf.BitsPerElement() {
		return newUnsupportedErrorf("horizontal predictor for color type %s with %d-bit buffer", ct, buf.BitsPerElement())
	}

	samples := ct.Samples()
	rowLen := uint64(width) * uint64(samples)
	if need := rowLen * uint64(height); uint64(buf.Len()) < need {
		return newFormatErrorf("predictor: buffer holds %d samples, need %d", buf.Len(), need)
	}

	switch b := buf.(type) {
	case U8Buffer:
		reverseHorizontal(b, int(rowLen), int(height), samples)
	case U16Buffer:
		reverseHorizontal(b, int(rowLen), int(height), samples)
	}
	return nil
}

// reverseHorizontal accumulates each sample onto the same sample of the previous pixel.
// Overflow wraps.
func reverseHorizontal[T uint8 | uint16](buf []T, rowLen, height, samples int) {
	for y := range height {
		row := buf[y*rowLen : (y+1)*rowLen]
		for i := samples; i < len(row); i++ {
			row[i] += row[i-samples]
		}
	}
}

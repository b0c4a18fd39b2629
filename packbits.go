// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

import (
	"bufio"
	"io"
)

// unpackBits decodes compressedLen bytes of PackBits data from r.
// Decoding fails if the output would grow past maxUncompressed
// or the input ends inside a record.
//
// The PackBits compression format is described in section 9 (p. 42)
// of the TIFF spec.
func unpackBits(r io.Reader, compressedLen, maxUncompressed int) ([]byte, error) {
	br := bufio.NewReader(io.LimitReader(r, int64(compressedLen)))
	buf := make([]byte, 128)
	dst := make([]byte, 0, max(0, min(maxUncompressed, compressedLen*2)))

	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return dst, nil
			}
			return nil, newIOError(err)
		}
		code := int(int8(b))
		var n int
		switch {
		case code >= 0:
			n = code + 1
			if len(dst)+n > maxUncompressed {
				return nil, newFormatErrorf("packbits: output exceeds %d bytes", maxUncompressed)
			}
			if _, err := io.ReadFull(br, buf[:n]); err != nil {
				return nil, newIOError(err)
			}
		case code == -128:
			// No-op.
			continue
		default:
			n = 1 - code
			if len(dst)+n > maxUncompressed {
				return nil, newFormatErrorf("packbits: output exceeds %d bytes", maxUncompressed)
			}
			if b, err = br.ReadByte(); err != nil {
				return nil, newIOError(err)
			}
			for j := range n {
				buf[j] = b
			}
		}
		dst = append(dst, buf[:n]...)
	}
}

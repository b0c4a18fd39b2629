// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

import (
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/image/tiff/lzw"
)

// readBounded reads r to the end, failing if it produces more than max bytes.
// At most max+1 bytes are ever buffered.
func readBounded(r io.Reader, max int, method Compression) ([]byte, error) {
	if max < 0 {
		return nil, newFormatErrorf("negative output limit %d", max)
	}
	b, err := io.ReadAll(io.LimitReader(r, int64(max)+1))
	if err != nil {
		return nil, err
	}
	if len(b) > max {
		return nil, newFormatErrorf("%s: output exceeds %d bytes", method, max)
	}
	return b, nil
}

// decompressLZW decodes compressedLen bytes of TIFF LZW data from r.
// The codes start at 9 bits and grow up to 12 bits, with 256 as the clear code
// and 257 as the end of information.
func decompressLZW(r io.Reader, compressedLen, maxUncompressed int) ([]byte, error) {
	lr := lzw.NewReader(io.LimitReader(r, int64(compressedLen)), lzw.MSB, 8)
	defer lr.Close()

	b, err := readBounded(lr, maxUncompressed, CompressionLZW)
	if err != nil {
		return nil, classifyDecompressError(CompressionLZW, err)
	}
	return b, nil
}

// decompressDeflate decodes compressedLen bytes of zlib wrapped Deflate data from r.
func decompressDeflate(r io.Reader, compressedLen, maxUncompressed int) ([]byte, error) {
	zr, err := zlib.NewReader(io.LimitReader(r, int64(compressedLen)))
	if err != nil {
		return nil, classifyDecompressError(CompressionDeflate, err)
	}
	defer zr.Close()

	b, err := readBounded(zr, maxUncompressed, CompressionDeflate)
	if err != nil {
		return nil, classifyDecompressError(CompressionDeflate, err)
	}
	return b, nil
}

// classifyDecompressError maps errors from a decompressor to the decoder's error kinds.
// Running out of input is an I/O error, anything else the decompressor
// complains about is malformed data.
func classifyDecompressError(method Compression, err error) error {
	var ie *ImageError
	if errors.As(err, &ie) {
		return err
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return newIOError(io.ErrUnexpectedEOF)
	}
	return &ImageError{Kind: KindFormat, Msg: method.String(), Err: err}
}

// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package imagetiff

import (
	"encoding/binary"
	"io"
)

const (
	byteOrderBigEndian    = 0x4d4d
	byteOrderLittleEndian = 0x4949
)

func newStreamReader(r io.Reader, byteOrder binary.ByteOrder) *streamReader {
	return &streamReader{
		r:         r,
		byteOrder: byteOrder,
	}
}

// streamReader is a wrapper around a Reader that provides methods to read binary data
// in the configured byte order.
// Seeking is only available if r implements io.Seeker.
// Note that this is not thread safe.
type streamReader struct {
	r         io.Reader
	byteOrder binary.ByteOrder

	buf [4]byte
}

func (e *streamReader) readNIntoBuf(n int) error {
	if _, err := io.ReadFull(e.r, e.buf[:n]); err != nil {
		return newIOError(err)
	}
	return nil
}

func (e *streamReader) read2() (uint16, error) {
	const n = 2
	if err := e.readNIntoBuf(n); err != nil {
		return 0, err
	}
	return e.byteOrder.Uint16(e.buf[:n]), nil
}

func (e *streamReader) read4() (uint32, error) {
	const n = 4
	if err := e.readNIntoBuf(n); err != nil {
		return 0, err
	}
	return e.byteOrder.Uint32(e.buf[:n]), nil
}

// readBytes fills b completely; a short read is an error.
func (e *streamReader) readBytes(b []byte) error {
	if _, err := io.ReadFull(e.r, b); err != nil {
		return newIOError(err)
	}
	return nil
}

// readBytesAt reads length bytes starting at the absolute offset.
// length must already be checked against any configured limit.
func (e *streamReader) readBytesAt(offset uint32, length uint32) ([]byte, error) {
	if err := e.seek(int64(offset)); err != nil {
		return nil, err
	}
	b := make([]byte, length)
	if err := e.readBytes(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (e *streamReader) seek(pos int64) error {
	s, ok := e.r.(io.Seeker)
	if !ok {
		return newIOError(errNotSeekable)
	}
	if _, err := s.Seek(pos, io.SeekStart); err != nil {
		return newIOError(err)
	}
	return nil
}

type ioError string

func (e ioError) Error() string { return string(e) }

const (
	errNotSeekable = ioError("reader does not support seeking")
	errNoReader    = ioError("no reader provided")
)

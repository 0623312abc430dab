// Package buffer provides an in-memory image that can be written at
// arbitrary offsets and read back as an io.ReaderAt.
package buffer

import (
	"io"

	"github.com/pkg/errors"
)

// ReadWriteBuffer implements io.WriterAt and io.ReaderAt on an in-memory buffer.
// The zero value is an empty, unbounded buffer ready to use.
type ReadWriteBuffer struct {
	d []byte
	m int
}

// NewReadWriteBuffer creates a ReadWriteBuffer with the given initial size and
// maximum. If maximum is <= 0 it is unlimited.
func NewReadWriteBuffer(size, max int) *ReadWriteBuffer {
	if max < size && max > 0 {
		max = size
	}
	return &ReadWriteBuffer{d: make([]byte, size), m: max}
}

// Size is the number of bytes available for reading via ReadAt.
func (rw *ReadWriteBuffer) Size() int64 { return int64(len(rw.d)) }

// Bytes returns the underlying data. It is valid until the next write.
func (rw *ReadWriteBuffer) Bytes() []byte { return rw.d }

// Write appends dat to the end of the buffer.
func (rw *ReadWriteBuffer) Write(dat []byte) (int, error) {
	return rw.WriteAt(dat, int64(len(rw.d)))
}

// WriteAt implements io.WriterAt, growing the buffer as needed.
func (rw *ReadWriteBuffer) WriteAt(dat []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("buffer.ReadWriteBuffer.WriteAt: negative offset")
	}
	end := int(off) + len(dat)
	if rw.m > 0 && end > rw.m {
		return 0, errors.Errorf("buffer.ReadWriteBuffer.WriteAt: %d bytes at %#x exceeds maximum %#x", len(dat), off, rw.m)
	}
	if end > len(rw.d) {
		if end <= cap(rw.d) {
			rw.d = rw.d[:end]
		} else {
			nd := make([]byte, end, end*2)
			copy(nd, rw.d)
			rw.d = nd
		}
	}
	copy(rw.d[off:], dat)
	return len(dat), nil
}

// ReadAt implements io.ReaderAt.
func (rw *ReadWriteBuffer) ReadAt(b []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, errors.New("buffer.ReadWriteBuffer.ReadAt: negative offset")
	}
	if off >= int64(len(rw.d)) {
		return 0, io.EOF
	}
	n = copy(b, rw.d[off:])
	if n < len(b) {
		err = io.EOF
	}
	return
}

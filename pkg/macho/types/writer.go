package types

import (
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Writer encodes fixed width fields to a byte stream in the byte order
// given per call.
type Writer struct {
	w   io.Writer
	off int64
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int64 { return w.off }

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.off += int64(n)
	if err != nil {
		return n, errors.Wrapf(err, "failed to write %d bytes at offset %#x", len(p), w.off-int64(n))
	}
	return n, nil
}

func (w *Writer) PutUint16(e Endian, v uint16) error {
	var b [2]byte
	e.ByteOrder().PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func (w *Writer) PutUint32(e Endian, v uint32) error {
	var b [4]byte
	e.ByteOrder().PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func (w *Writer) PutUint64(e Endian, v uint64) error {
	var b [8]byte
	e.ByteOrder().PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func (w *Writer) PutInt32(e Endian, v int32) error {
	return w.PutUint32(e, uint32(v))
}

// Struct writes the exported fields of v in declaration order.
func (w *Writer) Struct(e Endian, v any) error {
	return errors.Wrap(struc.PackWithOrder(w, v, e.ByteOrder()), "struc.Pack() failed")
}

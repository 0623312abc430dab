package types

import (
	"bytes"
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Reader decodes fixed width fields from a byte stream, one field at a
// time, in the byte order given per call. It never seeks.
type Reader struct {
	r   io.Reader
	off int64
}

// NewReader returns a Reader positioned at the start of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.off }

// maxPrealloc bounds the buffer allocated up front for a declared length.
// Longer reads grow as data actually arrives.
const maxPrealloc = 64 << 10

// ReadBytes consumes exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrTruncatedInput, "negative length %d at offset %#x", n, r.off)
	}
	if n > maxPrealloc {
		return r.readLarge(n)
	}
	buf := make([]byte, n)
	got, err := io.ReadFull(r.r, buf)
	r.off += int64(got)
	if err != nil {
		return nil, r.readErr(err, n, got)
	}
	return buf, nil
}

func (r *Reader) readLarge(n int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(maxPrealloc)
	got, err := io.CopyN(&buf, r.r, int64(n))
	r.off += got
	if err != nil {
		return nil, r.readErr(err, n, int(got))
	}
	return buf.Bytes(), nil
}

func (r *Reader) readErr(err error, n, got int) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(ErrTruncatedInput, "need %d bytes at offset %#x, have %d", n, r.off-int64(got), got)
	}
	return errors.Wrapf(err, "failed to read %d bytes at offset %#x", n, r.off-int64(got))
}

func (r *Reader) Uint16(e Endian) (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return e.ByteOrder().Uint16(b), nil
}

func (r *Reader) Uint32(e Endian) (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return e.ByteOrder().Uint32(b), nil
}

func (r *Reader) Uint64(e Endian) (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return e.ByteOrder().Uint64(b), nil
}

func (r *Reader) Int32(e Endian) (int32, error) {
	v, err := r.Uint32(e)
	return int32(v), err
}

// Struct fills the exported fields of the struct pointed to by v, in
// declaration order, consuming exactly its packed size.
func (r *Reader) Struct(e Endian, v any) error {
	size, err := struc.Sizeof(v)
	if err != nil {
		return errors.Wrap(err, "struc.Sizeof() failed")
	}
	b, err := r.ReadBytes(size)
	if err != nil {
		return err
	}
	return errors.Wrap(struc.UnpackWithOrder(bytes.NewReader(b), v, e.ByteOrder()), "struc.Unpack() failed")
}

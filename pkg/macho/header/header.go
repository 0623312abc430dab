package header

import (
	"fmt"

	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/pkg/errors"
)

const (
	FileHeaderSize32 = 7 * 4
	FileHeaderSize64 = 8 * 4
)

// Header is either a single architecture mach header or a fat header.
type Header interface {
	IsFat() bool
	// Encode writes the header; host is the byte order the magic was read in.
	Encode(w *types.Writer, host types.Endian) error
	String() string
}

// Read decodes the magic and the header it introduces.
func Read(r *types.Reader, host types.Endian, opts types.Options) (Header, error) {
	magic, err := ReadMagic(r, host)
	if err != nil {
		return nil, err
	}
	if magic.IsFat() {
		fh, err := readFatBody(r)
		if err != nil {
			return nil, err
		}
		return fh, nil
	}
	h, err := readMachBody(r, magic, host, opts)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// A FileHeader represents a Mach-O file header.
type FileHeader struct {
	Magic    Magic
	CPU      CPUIdentity
	Type     Type
	Ncmd     uint32
	Cmdsz    uint32
	Flags    Flags
	Reserved uint32 // 64-bit headers only
}

// ReadFileHeader decodes a single architecture mach header and fails on a fat magic.
func ReadFileHeader(r *types.Reader, host types.Endian, opts types.Options) (*FileHeader, error) {
	magic, err := ReadMagic(r, host)
	if err != nil {
		return nil, err
	}
	if magic.IsFat() {
		return nil, errors.Wrap(types.ErrUnknownMagic, "expected a single architecture mach header, got a fat header")
	}
	return readMachBody(r, magic, host, opts)
}

func readMachBody(r *types.Reader, magic Magic, host types.Endian, opts types.Options) (*FileHeader, error) {
	e := magic.ByteOrder(host)
	h := &FileHeader{Magic: magic}

	cpu, err := r.Uint32(e)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cpu type")
	}
	sub, err := r.Uint32(e)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cpu subtype")
	}
	if h.CPU, err = DecodeCPU(cpu, sub); err != nil {
		return nil, err
	}

	typ, err := r.Uint32(e)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file type")
	}
	h.Type = Type(typ)
	if !h.Type.Valid() {
		return nil, errors.Wrapf(types.ErrUnsupportedFileKind, "%#x", typ)
	}

	if h.Ncmd, err = r.Uint32(e); err != nil {
		return nil, errors.Wrap(err, "failed to read number of load commands")
	}
	if h.Cmdsz, err = r.Uint32(e); err != nil {
		return nil, errors.Wrap(err, "failed to read size of load commands")
	}

	flags, err := r.Uint32(e)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read flags")
	}
	if h.Flags, err = DecodeFlags(flags, opts); err != nil {
		return nil, err
	}

	if magic.Is64() {
		if h.Reserved, err = r.Uint32(e); err != nil {
			return nil, errors.Wrap(err, "failed to read reserved")
		}
	}

	return h, nil
}

func (h *FileHeader) IsFat() bool { return false }

// Is64 reports whether the header uses the 64-bit layout.
func (h *FileHeader) Is64() bool { return h.Magic.Is64() }

// Size returns the encoded size of the header.
func (h *FileHeader) Size() int {
	if h.Is64() {
		return FileHeaderSize64
	}
	return FileHeaderSize32
}

// ByteOrder returns the order of every field after the magic.
func (h *FileHeader) ByteOrder(host types.Endian) types.Endian {
	return h.Magic.ByteOrder(host)
}

// Encode writes the magic in host order and the remaining fields in the
// order the magic implies, so swapped files round-trip byte for byte.
func (h *FileHeader) Encode(w *types.Writer, host types.Endian) error {
	if h.Magic.IsFat() || !h.Magic.Valid() {
		return errors.Wrapf(types.ErrUnknownMagic, "cannot encode mach header with magic %#08x", uint32(h.Magic))
	}
	e := h.ByteOrder(host)
	cpu, sub := h.CPU.Encode()

	if err := w.PutUint32(host, uint32(h.Magic)); err != nil {
		return err
	}
	for _, v := range []uint32{cpu, sub, uint32(h.Type), h.Ncmd, h.Cmdsz, h.Flags.Mask()} {
		if err := w.PutUint32(e, v); err != nil {
			return err
		}
	}
	if h.Is64() {
		return w.PutUint32(e, h.Reserved)
	}
	return nil
}

func (h *FileHeader) String() string {
	return fmt.Sprintf(
		"Magic         = %s\n"+
			"Type          = %s\n"+
			"CPU           = %s\n"+
			"Commands      = %d (Size: %d)\n"+
			"Flags         = %s\n",
		h.Magic,
		h.Type,
		h.CPU,
		h.Ncmd,
		h.Cmdsz,
		h.Flags,
	)
}

// Package macho reads and writes the header and load commands of Mach-O
// files, including slices of fat (universal) files.
package macho

import (
	"bytes"
	"io"
	"math"
	"os"

	"github.com/blacktop/readmacho/pkg/macho/commands"
	"github.com/blacktop/readmacho/pkg/macho/header"
	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/pkg/errors"
)

// ErrArchNotFound is returned when a fat file has no slice for the requested cpu.
var ErrArchNotFound = errors.New("architecture not found in fat file")

type config struct {
	host types.Endian
	arch header.CPU
	opts types.Options
}

// An Option configures NewFile and Open.
type Option func(*config)

// WithArch selects the slice of a fat file. Without it the first slice is used.
func WithArch(cpu header.CPU) Option {
	return func(c *config) { c.arch = cpu }
}

// WithLenient keeps unknown flag and section attribute bits instead of failing.
func WithLenient() Option {
	return func(c *config) { c.opts.Lenient = true }
}

// WithHost overrides the host byte order the magic is read in.
func WithHost(e types.Endian) Option {
	return func(c *config) { c.host = e }
}

// FileTOC is the decoded header and load commands of a single architecture.
type FileTOC struct {
	header.FileHeader
	ByteOrder types.Endian
	Loads     []commands.LoadCommand
}

// A File is an open Mach-O file (or one slice of a fat file).
type File struct {
	FileTOC

	Fat  *header.FatHeader // nil unless the file is fat
	Arch *header.FatArch   // the selected slice of Fat

	host   types.Endian
	sr     *io.SectionReader
	size   int64 // readable bytes in sr, -1 if unknown
	closer io.Closer
}

// Open opens the named file and decodes its header and load commands.
func Open(name string, options ...Option) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", name)
	}
	ff, err := NewFile(f, options...)
	if err != nil {
		f.Close()
		return nil, err
	}
	ff.closer = f
	return ff, nil
}

// Close closes the File if it was created with Open.
func (f *File) Close() error {
	var err error
	if f.closer != nil {
		err = f.closer.Close()
		f.closer = nil
	}
	return err
}

// NewFile decodes the Mach-O file in r.
func NewFile(r io.ReaderAt, options ...Option) (*File, error) {
	conf := config{host: types.HostEndian()}
	for _, o := range options {
		o(&conf)
	}

	f := &File{host: conf.host, size: sizeOf(r)}
	sr := io.NewSectionReader(r, 0, 1<<63-1)

	h, err := header.Read(types.NewReader(sr), conf.host, conf.opts)
	if err != nil {
		return nil, err
	}
	if fh, ok := h.(*header.FatHeader); ok {
		f.Fat = fh
		arch, err := selectArch(fh, conf.arch)
		if err != nil {
			return nil, err
		}
		f.Arch = &arch
		sr = io.NewSectionReader(r, int64(arch.Offset), int64(arch.Size))
		f.size = sliceSize(f.size, arch)
		tr := types.NewReader(sr)
		mh, err := header.ReadFileHeader(tr, conf.host, conf.opts)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s slice", arch.CPU.Arch())
		}
		if err := f.readLoads(tr, mh, conf.opts); err != nil {
			return nil, err
		}
		f.sr = sr
		return f, nil
	}

	mh := h.(*header.FileHeader)
	if conf.arch != 0 && mh.CPU.CPU != conf.arch {
		return nil, errors.Wrapf(ErrArchNotFound, "file is %s, not %s", mh.CPU.CPU, conf.arch)
	}
	tr := types.NewReader(io.NewSectionReader(r, int64(mh.Size()), 1<<63-1))
	if err := f.readLoads(tr, mh, conf.opts); err != nil {
		return nil, err
	}
	f.sr = sr
	return f, nil
}

// sizeOf returns the length of r when r can report it, or -1.
func sizeOf(r io.ReaderAt) int64 {
	switch v := r.(type) {
	case interface{ Size() int64 }:
		return v.Size()
	case interface{ Stat() (os.FileInfo, error) }:
		if fi, err := v.Stat(); err == nil && fi.Mode().IsRegular() {
			return fi.Size()
		}
	case io.Seeker:
		cur, err := v.Seek(0, io.SeekCurrent)
		if err != nil {
			return -1
		}
		end, err := v.Seek(0, io.SeekEnd)
		if _, serr := v.Seek(cur, io.SeekStart); err != nil || serr != nil {
			return -1
		}
		return end
	}
	return -1
}

// sliceSize clamps a fat slice to the bytes the file actually holds.
func sliceSize(total int64, arch header.FatArch) int64 {
	size := int64(arch.Size)
	if total < 0 {
		return size
	}
	if left := total - int64(arch.Offset); left < size {
		size = max(left, 0)
	}
	return size
}

func selectArch(fh *header.FatHeader, cpu header.CPU) (header.FatArch, error) {
	if len(fh.Arches) == 0 {
		return header.FatArch{}, errors.Wrap(ErrArchNotFound, "fat file has no slices")
	}
	if cpu == 0 {
		return fh.Arches[0], nil
	}
	arch, ok := fh.Arch(cpu)
	if !ok {
		return header.FatArch{}, errors.Wrapf(ErrArchNotFound, "%s", cpu)
	}
	return arch, nil
}

func (f *File) readLoads(r *types.Reader, mh *header.FileHeader, opts types.Options) error {
	f.FileHeader = *mh
	f.ByteOrder = mh.ByteOrder(f.host)
	loads, err := commands.ReadAll(r, f.ByteOrder, mh.Ncmd, opts)
	if err != nil {
		return err
	}
	f.Loads = loads
	return nil
}

// Encode writes the mach header followed by every load command. It fails
// if any command was decoded as *commands.Unknown.
func (f *File) Encode(w io.Writer) error {
	tw := types.NewWriter(w)
	if err := f.FileHeader.Encode(tw, f.host); err != nil {
		return errors.Wrap(err, "failed to encode mach header")
	}
	return commands.WriteAll(tw, f.ByteOrder, f.Loads)
}

// Bytes returns the encoded header and load commands.
func (f *File) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadAt reads from the selected slice.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.sr.ReadAt(p, off)
}

// readAt reads size bytes at off, failing before allocating anything when the
// range runs past the end of the slice.
func (f *File) readAt(size uint64, off int64) ([]byte, error) {
	if off < 0 || (f.size >= 0 && (off > f.size || size > uint64(f.size-off))) {
		return nil, errors.Wrapf(types.ErrTruncatedInput, "need %d bytes at offset %#x, have %d", size, off, max(f.size-off, 0))
	}
	if size > math.MaxInt {
		return nil, errors.Wrapf(types.ErrTruncatedInput, "%d bytes at offset %#x exceeds the readable range", size, off)
	}
	dat, err := types.NewReader(io.NewSectionReader(f.sr, off, int64(size))).ReadBytes(int(size))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %d bytes at offset %#x", size, off)
	}
	return dat, nil
}

// Segments returns the LC_SEGMENT_64 commands in load order.
func (f *File) Segments() []*commands.Segment64 {
	var segs []*commands.Segment64
	for _, l := range f.Loads {
		if s, ok := l.(*commands.Segment64); ok {
			segs = append(segs, s)
		}
	}
	return segs
}

// Segment returns the named segment, or nil.
func (f *File) Segment(name string) *commands.Segment64 {
	for _, s := range f.Segments() {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Section returns the named section of the named segment, or nil.
func (f *File) Section(segment, section string) *commands.Section64 {
	if s := f.Segment(segment); s != nil {
		return s.Section(section)
	}
	return nil
}

// Sections returns every section of every segment in load order.
func (f *File) Sections() []*commands.Section64 {
	var sects []*commands.Section64
	for _, s := range f.Segments() {
		sects = append(sects, s.Sections...)
	}
	return sects
}

// FindSectionForVMAddr returns the section containing vmAddr, or nil.
func (f *File) FindSectionForVMAddr(vmAddr uint64) *commands.Section64 {
	for _, sec := range f.Sections() {
		if sec.Addr <= vmAddr && vmAddr-sec.Addr < sec.Size {
			return sec
		}
	}
	return nil
}

func findLoad[T commands.LoadCommand](loads []commands.LoadCommand) T {
	var zero T
	for _, l := range loads {
		if t, ok := l.(T); ok {
			return t
		}
	}
	return zero
}

// Symtab returns the LC_SYMTAB command, or nil.
func (f *File) Symtab() *commands.Symtab { return findLoad[*commands.Symtab](f.Loads) }

// Dysymtab returns the LC_DYSYMTAB command, or nil.
func (f *File) Dysymtab() *commands.Dysymtab { return findLoad[*commands.Dysymtab](f.Loads) }

// UUID returns the LC_UUID command, or nil.
func (f *File) UUID() *commands.UUID { return findLoad[*commands.UUID](f.Loads) }

// BuildVersion returns the LC_BUILD_VERSION command, or nil.
func (f *File) BuildVersion() *commands.BuildVersion {
	return findLoad[*commands.BuildVersion](f.Loads)
}

// SourceVersion returns the LC_SOURCE_VERSION command, or nil.
func (f *File) SourceVersion() *commands.SourceVersion {
	return findLoad[*commands.SourceVersion](f.Loads)
}

// UnixThread returns the LC_UNIXTHREAD command, or nil.
func (f *File) UnixThread() *commands.Thread {
	for _, l := range f.Loads {
		if t, ok := l.(*commands.Thread); ok && t.Cmd == commands.LoadCmdUnixThread {
			return t
		}
	}
	return nil
}

// EntryPoint returns the initial rip of an x86_64 LC_UNIXTHREAD.
func (f *File) EntryPoint() (uint64, bool) {
	if t := f.UnixThread(); t != nil {
		return t.EntryPoint()
	}
	return 0, false
}

// SectionData returns the contents of s. Zero fill sections have no file data.
func (f *File) SectionData(s *commands.Section64) ([]byte, error) {
	if s.Type.IsZerofill() {
		return nil, nil
	}
	dat, err := f.readAt(s.Size, int64(s.Offset))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read section %s.%s", s.Segment(), s.Name())
	}
	return dat, nil
}

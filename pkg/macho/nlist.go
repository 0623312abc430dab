package macho

import (
	"bytes"
	"fmt"

	"github.com/blacktop/readmacho/pkg/macho/commands"
	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/pkg/errors"
)

const nlist64Size = 16

// An Nlist64 is a Mach-O 64-bit symbol table entry.
type Nlist64 struct {
	Name  uint32
	Type  uint8
	Sect  uint8
	Desc  uint16
	Value uint64
}

// NType is the n_type field of a symbol table entry.
type NType uint8

const (
	N_STAB NType = 0xe0 /* if any of these bits set, a symbolic debugging entry */
	N_PEXT NType = 0x10 /* private external symbol bit */
	N_TYPE NType = 0x0e /* mask for the type bits */
	N_EXT  NType = 0x01 /* external symbol bit, set for external symbols */
)

/*
 * Values for N_TYPE bits of the n_type field.
 */
const (
	N_UNDF NType = 0x0 /* undefined, n_sect == NO_SECT */
	N_ABS  NType = 0x2 /* absolute, n_sect == NO_SECT */
	N_SECT NType = 0xe /* defined in section number n_sect */
	N_PBUD NType = 0xc /* prebound undefined (defined in a dylib) */
	N_INDR NType = 0xa /* indirect */
)

func (t NType) IsDebugSym() bool        { return t&N_STAB != 0 }
func (t NType) IsPrivateExternal() bool { return t&N_PEXT != 0 }
func (t NType) IsExternal() bool        { return t&N_EXT != 0 }
func (t NType) IsUndefined() bool       { return t&N_TYPE == N_UNDF }
func (t NType) IsAbsolute() bool        { return t&N_TYPE == N_ABS }
func (t NType) IsDefinedInSection() bool {
	return t&N_TYPE == N_SECT
}

func (t NType) String() string {
	if t.IsDebugSym() {
		return fmt.Sprintf("stab(%#02x)", uint8(t))
	}
	var s string
	switch t & N_TYPE {
	case N_UNDF:
		s = "undefined"
	case N_ABS:
		s = "absolute"
	case N_SECT:
		s = "section"
	case N_PBUD:
		s = "prebound"
	case N_INDR:
		s = "indirect"
	default:
		s = fmt.Sprintf("%#x", uint8(t&N_TYPE))
	}
	if t.IsPrivateExternal() {
		s += "|private_ext"
	}
	if t.IsExternal() {
		s += "|ext"
	}
	return s
}

// A Symbol is a symbol table entry with its name resolved.
type Symbol struct {
	Name  string
	Type  NType
	Sect  uint8
	Desc  uint16
	Value uint64
}

func (s Symbol) String() string {
	return fmt.Sprintf("%#016x  %-22s sect=%-3d %s", s.Value, s.Type, s.Sect, s.Name)
}

// StringTable returns the raw string table named by LC_SYMTAB.
func (f *File) StringTable() ([]byte, error) {
	st := f.Symtab()
	if st == nil {
		return nil, errors.New("no LC_SYMTAB load command")
	}
	return f.readAt(uint64(st.Strsize), int64(st.Stroff))
}

// Symbols reads the nlist_64 entries named by LC_SYMTAB and resolves
// their names in the string table.
func (f *File) Symbols() ([]Symbol, error) {
	st := f.Symtab()
	if st == nil {
		return nil, errors.New("no LC_SYMTAB load command")
	}
	strtab, err := f.StringTable()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read string table")
	}
	dat, err := f.readAt(uint64(st.Nsyms)*nlist64Size, int64(st.Symoff))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read symbol table")
	}
	return parseSymtab(dat, strtab, st, f.ByteOrder)
}

func parseSymtab(symdat, strtab []byte, st *commands.Symtab, e types.Endian) ([]Symbol, error) {
	r := types.NewReader(bytes.NewReader(symdat))
	syms := make([]Symbol, 0, st.Nsyms)
	for i := uint32(0); i < st.Nsyms; i++ {
		var n Nlist64
		if err := r.Struct(e, &n); err != nil {
			return nil, errors.Wrapf(err, "symbol %d", i)
		}
		if n.Name >= uint32(len(strtab)) && n.Name != 0 {
			return nil, errors.Wrapf(types.ErrTruncatedInput, "symbol %d name offset %#x outside string table", i, n.Name)
		}
		syms = append(syms, Symbol{
			Name:  cstring(strtab, n.Name),
			Type:  NType(n.Type),
			Sect:  n.Sect,
			Desc:  n.Desc,
			Value: n.Value,
		})
	}
	return syms, nil
}

func cstring(strtab []byte, off uint32) string {
	if off >= uint32(len(strtab)) {
		return ""
	}
	b := strtab[off:]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

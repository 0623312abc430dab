package macho

import (
	"bytes"
	"fmt"

	"github.com/blacktop/readmacho/pkg/macho/commands"
	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/pkg/errors"
)

const relocationInfoSize = 8

// A Reloc is a relocation_info entry. The packed word is kept as read;
// the accessors decode its bit fields for the file's byte order.
type Reloc struct {
	Addr   uint32
	Packed uint32
	bo     types.Endian
}

// RelocType is the machine specific r_type of a relocation.
type RelocType uint8

// Scattered reports whether the entry is a scattered_relocation_info.
func (r Reloc) Scattered() bool { return r.Addr&0x80000000 != 0 }

func (r Reloc) SymbolNum() uint32 {
	if r.bo == types.BigEndian {
		return r.Packed >> 8
	}
	return r.Packed & 0x00ffffff
}

func (r Reloc) PCRel() bool {
	if r.bo == types.BigEndian {
		return r.Packed&(1<<7) != 0
	}
	return r.Packed&(1<<24) != 0
}

// Len returns log2 of the relocated field's size.
func (r Reloc) Len() uint8 {
	if r.bo == types.BigEndian {
		return uint8((r.Packed >> 5) & 3)
	}
	return uint8((r.Packed >> 25) & 3)
}

func (r Reloc) Extern() bool {
	if r.bo == types.BigEndian {
		return r.Packed&(1<<4) != 0
	}
	return r.Packed&(1<<27) != 0
}

func (r Reloc) Type() RelocType {
	if r.bo == types.BigEndian {
		return RelocType(r.Packed & 0xf)
	}
	return RelocType(r.Packed >> 28)
}

func (r Reloc) String() string {
	target := "section"
	if r.Extern() {
		target = "symbol"
	}
	return fmt.Sprintf("addr=%#08x type=%d len=%d pcrel=%t %s=%d", r.Addr, r.Type(), 1<<r.Len(), r.PCRel(), target, r.SymbolNum())
}

// Relocations reads the Nreloc relocation entries of s.
func (f *File) Relocations(s *commands.Section64) ([]Reloc, error) {
	if s.Nreloc == 0 {
		return nil, nil
	}
	dat, err := f.readAt(uint64(s.Nreloc)*relocationInfoSize, int64(s.Reloff))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read relocations of %s.%s", s.Segment(), s.Name())
	}
	r := types.NewReader(bytes.NewReader(dat))
	relocs := make([]Reloc, 0, s.Nreloc)
	for i := uint32(0); i < s.Nreloc; i++ {
		addr, err := r.Uint32(f.ByteOrder)
		if err != nil {
			return nil, err
		}
		packed, err := r.Uint32(f.ByteOrder)
		if err != nil {
			return nil, err
		}
		relocs = append(relocs, Reloc{Addr: addr, Packed: packed, bo: f.ByteOrder})
	}
	return relocs, nil
}

package header

import (
	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/blacktop/readmacho/pkg/macho/utils"
	"github.com/pkg/errors"
)

// Magic is the leading 4 byte value of a Mach-O or fat file, as read in the
// host's byte order.
type Magic uint32

const (
	Magic32  Magic = 0xfeedface
	Magic64  Magic = 0xfeedfacf
	Cigam32  Magic = 0xcefaedfe
	Cigam64  Magic = 0xcffaedfe
	MagicFat Magic = 0xcafebabe
	CigamFat Magic = 0xbebafeca
)

var magicStrings = []utils.IntName{
	{uint32(Magic32), "32-bit MachO"},
	{uint32(Magic64), "64-bit MachO"},
	{uint32(Cigam32), "32-bit MachO (swapped)"},
	{uint32(Cigam64), "64-bit MachO (swapped)"},
	{uint32(MagicFat), "Fat MachO"},
	{uint32(CigamFat), "Fat MachO (swapped)"},
}

func (i Magic) Int() uint32      { return uint32(i) }
func (i Magic) String() string   { return utils.StringName(uint32(i), magicStrings, false) }
func (i Magic) GoString() string { return utils.StringName(uint32(i), magicStrings, true) }

// Valid reports whether i is one of the six recognized magics.
func (i Magic) Valid() bool { return utils.Known(uint32(i), magicStrings) }

// IsFat reports whether a multi-architecture header follows the magic.
func (i Magic) IsFat() bool { return i == MagicFat || i == CigamFat }

// Is64 reports whether the magic introduces a 64-bit mach header.
func (i Magic) Is64() bool { return i == Magic64 || i == Cigam64 }

// Swapped reports whether the file's byte order is the reverse of the host's.
func (i Magic) Swapped() bool { return i == Cigam32 || i == Cigam64 || i == CigamFat }

// ByteOrder returns the byte order used by every field after the magic
// in a single architecture header.
func (i Magic) ByteOrder(host types.Endian) types.Endian {
	if i.Swapped() {
		return host.Swapped()
	}
	return host
}

// ReadMagic consumes the 4 byte magic in host byte order.
func ReadMagic(r *types.Reader, host types.Endian) (Magic, error) {
	v, err := r.Uint32(host)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read magic")
	}
	m := Magic(v)
	if !m.Valid() {
		return 0, errors.Wrapf(types.ErrUnknownMagic, "%#08x", v)
	}
	return m, nil
}

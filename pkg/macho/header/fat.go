package header

import (
	"fmt"
	"strings"

	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/pkg/errors"
)

const fatArchSize = 5 * 4

// A FatArch is one architecture slice of a fat file.
type FatArch struct {
	CPU    CPUIdentity
	Offset uint32
	Size   uint32
	Align  uint32 // power of two
}

// A FatHeader describes the slices of a multi-architecture file. It is
// always stored big-endian.
type FatHeader struct {
	Magic  Magic
	Arches []FatArch
}

func readFatBody(r *types.Reader) (*FatHeader, error) {
	n, err := r.Uint32(types.BigEndian)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read fat arch count")
	}
	fh := &FatHeader{Magic: MagicFat}
	for i := uint32(0); i < n; i++ {
		var raw [5]uint32
		for j := range raw {
			if raw[j], err = r.Uint32(types.BigEndian); err != nil {
				return nil, errors.Wrapf(err, "failed to read fat arch %d", i)
			}
		}
		cpu, err := DecodeCPU(raw[0], raw[1])
		if err != nil {
			return nil, errors.Wrapf(err, "fat arch %d", i)
		}
		fh.Arches = append(fh.Arches, FatArch{
			CPU:    cpu,
			Offset: raw[2],
			Size:   raw[3],
			Align:  raw[4],
		})
	}
	return fh, nil
}

func (fh *FatHeader) IsFat() bool { return true }

// Size returns the encoded size of the fat header and its arch table.
func (fh *FatHeader) Size() int { return 8 + len(fh.Arches)*fatArchSize }

// Encode writes the canonical big-endian form. host is ignored: the
// output is the same on every machine.
func (fh *FatHeader) Encode(w *types.Writer, host types.Endian) error {
	if err := w.PutUint32(types.BigEndian, uint32(MagicFat)); err != nil {
		return err
	}
	if err := w.PutUint32(types.BigEndian, uint32(len(fh.Arches))); err != nil {
		return err
	}
	for _, arch := range fh.Arches {
		cpu, sub := arch.CPU.Encode()
		for _, v := range []uint32{cpu, sub, arch.Offset, arch.Size, arch.Align} {
			if err := w.PutUint32(types.BigEndian, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Arch returns the first slice matching cpu.
func (fh *FatHeader) Arch(cpu CPU) (FatArch, bool) {
	for _, a := range fh.Arches {
		if a.CPU.CPU == cpu {
			return a, true
		}
	}
	return FatArch{}, false
}

func (fh *FatHeader) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Magic         = %s\n", fh.Magic)
	fmt.Fprintf(&sb, "Arches        = %d\n", len(fh.Arches))
	for i, a := range fh.Arches {
		fmt.Fprintf(&sb, "  %d) %-8s offset=%#x size=%#x align=2^%d (%d)\n", i, a.CPU.Arch(), a.Offset, a.Size, a.Align, uint64(1)<<a.Align)
	}
	return sb.String()
}

package commands

import (
	"fmt"

	"github.com/blacktop/readmacho/pkg/macho/types"
)

const dysymtabSize = PrefixSize + 72

// A Dysymtab is a Mach-O dynamic symbol table command.
type Dysymtab struct {
	Prefix
	DysymtabTable
}

// DysymtabTable partitions the symbol table and locates the dynamic
// link-edit tables.
type DysymtabTable struct {
	Ilocalsym      uint32
	Nlocalsym      uint32
	Iextdefsym     uint32
	Nextdefsym     uint32
	Iundefsym      uint32
	Nundefsym      uint32
	Tocoffset      uint32
	Ntoc           uint32
	Modtaboff      uint32
	Nmodtab        uint32
	Extrefsymoff   uint32
	Nextrefsyms    uint32
	Indirectsymoff uint32
	Nindirectsyms  uint32
	Extreloff      uint32
	Nextrel        uint32
	Locreloff      uint32
	Nlocrel        uint32
}

func readDysymtab(r *types.Reader, e types.Endian, cmd LoadCmd, size uint32, _ types.Options) (LoadCommand, error) {
	d := &Dysymtab{Prefix: Prefix{Cmd: cmd, Len: size}}
	if err := r.Struct(e, &d.DysymtabTable); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dysymtab) Encode(w *types.Writer, e types.Endian) error {
	if err := d.checkFixed(dysymtabSize); err != nil {
		return err
	}
	if err := d.put(w, e); err != nil {
		return err
	}
	return w.Struct(e, &d.DysymtabTable)
}

func (d *Dysymtab) String() string {
	return fmt.Sprintf("%d local, %d external, %d undefined, %d indirect, %d extrel, %d locrel",
		d.Nlocalsym, d.Nextdefsym, d.Nundefsym, d.Nindirectsyms, d.Nextrel, d.Nlocrel)
}

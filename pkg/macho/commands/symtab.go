package commands

import (
	"fmt"

	"github.com/blacktop/readmacho/pkg/macho/types"
)

const symtabSize = PrefixSize + 16

// A Symtab is a Mach-O symbol table command. The symbols and strings
// themselves live at Symoff and Stroff in the file.
type Symtab struct {
	Prefix
	Symoff  uint32
	Nsyms   uint32
	Stroff  uint32
	Strsize uint32
}

type symtab struct {
	Symoff  uint32
	Nsyms   uint32
	Stroff  uint32
	Strsize uint32
}

func readSymtab(r *types.Reader, e types.Endian, cmd LoadCmd, size uint32, _ types.Options) (LoadCommand, error) {
	var raw symtab
	if err := r.Struct(e, &raw); err != nil {
		return nil, err
	}
	return &Symtab{
		Prefix:  Prefix{Cmd: cmd, Len: size},
		Symoff:  raw.Symoff,
		Nsyms:   raw.Nsyms,
		Stroff:  raw.Stroff,
		Strsize: raw.Strsize,
	}, nil
}

func (s *Symtab) Encode(w *types.Writer, e types.Endian) error {
	if err := s.checkFixed(symtabSize); err != nil {
		return err
	}
	if err := s.put(w, e); err != nil {
		return err
	}
	return w.Struct(e, &symtab{s.Symoff, s.Nsyms, s.Stroff, s.Strsize})
}

func (s *Symtab) String() string {
	return fmt.Sprintf("Symbol offset=%#08x, Num Syms: %d, String offset=%#08x-%#08x",
		s.Symoff, s.Nsyms, s.Stroff, s.Stroff+s.Strsize)
}

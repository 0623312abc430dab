package commands

import "github.com/blacktop/readmacho/pkg/macho/types"

const sourceVersionSize = PrefixSize + 8

// A SourceVersion is a Mach-O source version command.
type SourceVersion struct {
	Prefix
	Version types.SrcVersion // A.B.C.D.E packed as a24.b10.c10.d10.e10
}

// NewSourceVersion returns an LC_SOURCE_VERSION command.
func NewSourceVersion(v types.SrcVersion) *SourceVersion {
	return &SourceVersion{Prefix: Prefix{Cmd: LoadCmdSourceVersion, Len: sourceVersionSize}, Version: v}
}

func readSourceVersion(r *types.Reader, e types.Endian, cmd LoadCmd, size uint32, _ types.Options) (LoadCommand, error) {
	v, err := r.Uint64(e)
	if err != nil {
		return nil, err
	}
	return &SourceVersion{Prefix: Prefix{Cmd: cmd, Len: size}, Version: types.SrcVersion(v)}, nil
}

func (s *SourceVersion) Encode(w *types.Writer, e types.Endian) error {
	if err := s.checkFixed(sourceVersionSize); err != nil {
		return err
	}
	if err := s.put(w, e); err != nil {
		return err
	}
	return w.PutUint64(e, uint64(s.Version))
}

func (s *SourceVersion) String() string {
	return s.Version.String()
}

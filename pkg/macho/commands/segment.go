package commands

import (
	"encoding/json"
	"fmt"

	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/blacktop/readmacho/pkg/macho/utils"
	"github.com/pkg/errors"
)

const segment64Size = PrefixSize + 64

type segment64 struct {
	Name    [16]byte
	Addr    uint64
	Memsz   uint64
	Offset  uint64
	Filesz  uint64
	Maxprot int32
	Prot    int32
	Nsect   uint32
	Flag    uint32
}

// A Segment64 is a 64-bit Mach-O segment load command and the sections it owns.
type Segment64 struct {
	Prefix
	SegName  [16]byte           /* segment name */
	Addr     uint64             /* memory address of this segment */
	Memsz    uint64             /* memory size of this segment */
	Offset   uint64             /* file offset of this segment */
	Filesz   uint64             /* amount to map from the file */
	Maxprot  types.VmProtection /* maximum VM protection */
	Prot     types.VmProtection /* initial VM protection */
	Flag     SegFlag            /* flags */
	Sections []*Section64
}

// NewSegment64 returns a segment with its declared size computed from sections.
func NewSegment64(name string, sections ...*Section64) *Segment64 {
	return &Segment64{
		Prefix:   Prefix{Cmd: LoadCmdSegment64, Len: segment64Size + uint32(len(sections))*section64Size},
		SegName:  utils.Name16(name),
		Sections: sections,
	}
}

func readSegment64(r *types.Reader, e types.Endian, cmd LoadCmd, size uint32, opts types.Options) (LoadCommand, error) {
	var raw segment64
	if err := r.Struct(e, &raw); err != nil {
		return nil, err
	}
	seg := &Segment64{
		Prefix:  Prefix{Cmd: cmd, Len: size},
		SegName: raw.Name,
		Addr:    raw.Addr,
		Memsz:   raw.Memsz,
		Offset:  raw.Offset,
		Filesz:  raw.Filesz,
		Maxprot: types.VmProtection(raw.Maxprot),
		Prot:    types.VmProtection(raw.Prot),
		Flag:    SegFlag(raw.Flag),
	}
	for i := uint32(0); i < raw.Nsect; i++ {
		sect, err := readSection64(r, e, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "segment %s section %d", seg.Name(), i)
		}
		seg.Sections = append(seg.Sections, sect)
	}
	return seg, nil
}

func (s *Segment64) Encode(w *types.Writer, e types.Endian) error {
	if err := s.put(w, e); err != nil {
		return err
	}
	if err := w.Struct(e, &segment64{
		Name:    s.SegName,
		Addr:    s.Addr,
		Memsz:   s.Memsz,
		Offset:  s.Offset,
		Filesz:  s.Filesz,
		Maxprot: int32(s.Maxprot),
		Prot:    int32(s.Prot),
		Nsect:   uint32(len(s.Sections)),
		Flag:    uint32(s.Flag),
	}); err != nil {
		return err
	}
	for _, sect := range s.Sections {
		if err := sect.put(w, e); err != nil {
			return errors.Wrapf(err, "failed to write section %s.%s", sect.Segment(), sect.Name())
		}
	}
	return nil
}

// Name returns the segment name.
func (s *Segment64) Name() string { return utils.CString(s.SegName[:]) }

// Section returns the named section, or nil.
func (s *Segment64) Section(name string) *Section64 {
	for _, sect := range s.Sections {
		if sect.Name() == name {
			return sect
		}
	}
	return nil
}

// MarshalJSON emits SegName as a string rather than a byte array.
func (s *Segment64) MarshalJSON() ([]byte, error) {
	type segment Segment64
	return json.Marshal(&struct {
		SegName string
		*segment
	}{
		SegName: s.Name(),
		segment: (*segment)(s),
	})
}

func (s *Segment64) String() string {
	return fmt.Sprintf("sz=%#08x off=%#08x-%#08x addr=%#09x-%#09x %s/%s   %-18s%s",
		s.Filesz, s.Offset, s.Offset+s.Filesz, s.Addr, s.Addr+s.Memsz,
		s.Prot, s.Maxprot, s.Name(), s.Flag)
}

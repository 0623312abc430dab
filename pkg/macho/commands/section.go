package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/blacktop/readmacho/pkg/macho/utils"
	"github.com/pkg/errors"
)

const (
	section64Size = 80

	sectionTypeMask       = 0x000000ff /* 256 section types */
	sectionAttributesMask = 0xffffff00 /*  24 section attributes */
)

// A SectionType is the low byte of a section's flags. A section has
// exactly one type.
type SectionType uint32

const (
	Regular         SectionType = 0x0 /* regular section */
	Zerofill        SectionType = 0x1 /* zero fill on demand section */
	CstringLiterals SectionType = 0x2 /* section with only literal C strings*/
	ByteLiterals4   SectionType = 0x3 /* section with only 4 byte literals */
	ByteLiterals8   SectionType = 0x4 /* section with only 8 byte literals */
	LiteralPointers SectionType = 0x5 /* section with only pointers to literals */
	/*
	 * For the two types of symbol pointers sections and the symbol stubs section
	 * they have indirect symbol table entries, starting at the index stored in
	 * the reserved1 field of the section structure.
	 */
	NonLazySymbolPointers   SectionType = 0x6  /* section with only non-lazy symbol pointers */
	LazySymbolPointers      SectionType = 0x7  /* section with only lazy symbol pointers */
	SymbolStubs             SectionType = 0x8  /* section with only symbol stubs, byte size of stub in the reserved2 field */
	ModInitFuncPointers     SectionType = 0x9  /* section with only function pointers for initialization*/
	ModTermFuncPointers     SectionType = 0xa  /* section with only function pointers for termination */
	Coalesced               SectionType = 0xb  /* section contains symbols that are to be coalesced */
	GbZerofill              SectionType = 0xc  /* zero fill on demand section (that can be larger than 4 gigabytes) */
	Interposing             SectionType = 0xd  /* section with only pairs of function pointers for interposing */
	ByteLiterals16          SectionType = 0xe  /* section with only 16 byte literals */
	DtraceDof               SectionType = 0xf  /* section contains DTrace Object Format */
	LazyDylibSymbolPointers SectionType = 0x10 /* section with only lazy symbol pointers to lazy loaded dylibs */
	/*
	 * Section types to support thread local variables
	 */
	ThreadLocalRegular              SectionType = 0x11 /* template of initial values for TLVs */
	ThreadLocalZerofill             SectionType = 0x12 /* template of initial values for TLVs */
	ThreadLocalVariables            SectionType = 0x13 /* TLV descriptors */
	ThreadLocalVariablePointers     SectionType = 0x14 /* pointers to TLV descriptors */
	ThreadLocalInitFunctionPointers SectionType = 0x15 /* functions to call to initialize TLV values */
	InitFuncOffsets                 SectionType = 0x16 /* 32-bit offsets to initializers */
)

var sectionTypeStrings = []utils.IntName{
	{uint32(Regular), "Regular"},
	{uint32(Zerofill), "Zerofill"},
	{uint32(CstringLiterals), "CstringLiterals"},
	{uint32(ByteLiterals4), "4ByteLiterals"},
	{uint32(ByteLiterals8), "8ByteLiterals"},
	{uint32(LiteralPointers), "LiteralPointers"},
	{uint32(NonLazySymbolPointers), "NonLazySymbolPointers"},
	{uint32(LazySymbolPointers), "LazySymbolPointers"},
	{uint32(SymbolStubs), "SymbolStubs"},
	{uint32(ModInitFuncPointers), "ModInitFuncPointers"},
	{uint32(ModTermFuncPointers), "ModTermFuncPointers"},
	{uint32(Coalesced), "Coalesced"},
	{uint32(GbZerofill), "GbZerofill"},
	{uint32(Interposing), "Interposing"},
	{uint32(ByteLiterals16), "16ByteLiterals"},
	{uint32(DtraceDof), "DtraceDof"},
	{uint32(LazyDylibSymbolPointers), "LazyDylibSymbolPointers"},
	{uint32(ThreadLocalRegular), "ThreadLocalRegular"},
	{uint32(ThreadLocalZerofill), "ThreadLocalZerofill"},
	{uint32(ThreadLocalVariables), "ThreadLocalVariables"},
	{uint32(ThreadLocalVariablePointers), "ThreadLocalVariablePointers"},
	{uint32(ThreadLocalInitFunctionPointers), "ThreadLocalInitFunctionPointers"},
	{uint32(InitFuncOffsets), "InitFuncOffsets"},
}

func (t SectionType) String() string   { return utils.StringName(uint32(t), sectionTypeStrings, false) }
func (t SectionType) GoString() string { return utils.StringName(uint32(t), sectionTypeStrings, true) }

// IsZerofill reports whether the section occupies no file space.
func (t SectionType) IsZerofill() bool {
	return t == Zerofill || t == GbZerofill || t == ThreadLocalZerofill
}

// A SectionAttr is one bit of the attribute part of a section's flags.
type SectionAttr uint32

const (
	AttrPureInstructions  SectionAttr = 0x80000000 /* section contains only true machine instructions */
	AttrNoToc             SectionAttr = 0x40000000 /* section contains coalesced symbols that are not to be in a ranlib table of contents */
	AttrStripStaticSyms   SectionAttr = 0x20000000 /* ok to strip static symbols in this section in files with the MH_DYLDLINK flag */
	AttrNoDeadStrip       SectionAttr = 0x10000000 /* no dead stripping */
	AttrLiveSupport       SectionAttr = 0x08000000 /* blocks are live if they reference live blocks */
	AttrSelfModifyingCode SectionAttr = 0x04000000 /* Used with i386 code stubs written on by dyld */
	AttrDebug             SectionAttr = 0x02000000 /* a debug section */
	AttrSomeInstructions  SectionAttr = 0x00000400 /* section contains some machine instructions */
	AttrExtReloc          SectionAttr = 0x00000200 /* section has external relocation entries */
	AttrLocReloc          SectionAttr = 0x00000100 /* section has local relocation entries */
)

var sectionAttrStrings = []utils.IntName{
	{uint32(AttrLocReloc), "LocReloc"},
	{uint32(AttrExtReloc), "ExtReloc"},
	{uint32(AttrSomeInstructions), "SomeInstructions"},
	{uint32(AttrDebug), "Debug"},
	{uint32(AttrSelfModifyingCode), "SelfModifyingCode"},
	{uint32(AttrLiveSupport), "LiveSupport"},
	{uint32(AttrNoDeadStrip), "NoDeadStrip"},
	{uint32(AttrStripStaticSyms), "StripStaticSyms"},
	{uint32(AttrNoToc), "NoToc"},
	{uint32(AttrPureInstructions), "PureInstructions"},
}

func (a SectionAttr) String() string { return utils.StringName(uint32(a), sectionAttrStrings, false) }

// SectionAttrs is the decoded attribute part of a section's flags.
type SectionAttrs struct {
	Set      []SectionAttr
	Residual uint32
}

// NewSectionAttrs builds an attribute set from named attributes.
func NewSectionAttrs(attrs ...SectionAttr) SectionAttrs {
	var mask uint32
	for _, a := range attrs {
		mask |= uint32(a)
	}
	sa, _ := decodeSectionAttrs(mask, types.Options{Lenient: true})
	return sa
}

func decodeSectionAttrs(mask uint32, opts types.Options) (SectionAttrs, error) {
	bits, residual := types.ScanBits(mask&sectionAttributesMask, func(bit uint32) bool {
		return utils.Known(bit, sectionAttrStrings)
	})
	if residual != 0 && !opts.Lenient {
		return SectionAttrs{}, errors.Wrapf(types.ErrUnknownFlagBit, "section attributes %#x", residual)
	}
	sa := SectionAttrs{Residual: residual}
	for _, b := range bits {
		sa.Set = append(sa.Set, SectionAttr(b))
	}
	return sa, nil
}

func (sa SectionAttrs) Mask() uint32 {
	mask := sa.Residual
	for _, a := range sa.Set {
		mask |= uint32(a)
	}
	return mask
}

func (sa SectionAttrs) Has(attr SectionAttr) bool {
	return sa.Mask()&uint32(attr) != 0
}

func (sa SectionAttrs) List() []string {
	var attrs []string
	for _, a := range sa.Set {
		attrs = append(attrs, a.String())
	}
	if sa.Residual != 0 {
		attrs = append(attrs, fmt.Sprintf("%#x", sa.Residual))
	}
	return attrs
}

func (sa SectionAttrs) String() string {
	return strings.Join(sa.List(), "|")
}

type section64 struct {
	Name      [16]byte
	Seg       [16]byte
	Addr      uint64
	Size      uint64
	Offset    uint32
	Align     uint32
	Reloff    uint32
	Nreloc    uint32
	Flags     uint32
	Reserved1 uint32
	Reserved2 uint32
	Reserved3 uint32
}

// A Section64 is a 64-bit Mach-O section header.
type Section64 struct {
	SectName  [16]byte
	SegName   [16]byte
	Addr      uint64
	Size      uint64
	Offset    uint32
	Align     uint32 // power of two
	Reloff    uint32
	Nreloc    uint32
	Type      SectionType
	Attrs     SectionAttrs
	Reserved1 uint32
	Reserved2 uint32
	Reserved3 uint32
}

func readSection64(r *types.Reader, e types.Endian, opts types.Options) (*Section64, error) {
	var raw section64
	if err := r.Struct(e, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to read section_64")
	}
	typ := SectionType(raw.Flags & sectionTypeMask)
	if !utils.Known(uint32(typ), sectionTypeStrings) {
		return nil, errors.Wrapf(types.ErrUnsupportedSectionType, "%s.%s type %#x",
			utils.CString(raw.Seg[:]), utils.CString(raw.Name[:]), uint32(typ))
	}
	attrs, err := decodeSectionAttrs(raw.Flags, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "section %s.%s", utils.CString(raw.Seg[:]), utils.CString(raw.Name[:]))
	}
	return &Section64{
		SectName:  raw.Name,
		SegName:   raw.Seg,
		Addr:      raw.Addr,
		Size:      raw.Size,
		Offset:    raw.Offset,
		Align:     raw.Align,
		Reloff:    raw.Reloff,
		Nreloc:    raw.Nreloc,
		Type:      typ,
		Attrs:     attrs,
		Reserved1: raw.Reserved1,
		Reserved2: raw.Reserved2,
		Reserved3: raw.Reserved3,
	}, nil
}

func (s *Section64) put(w *types.Writer, e types.Endian) error {
	return w.Struct(e, &section64{
		Name:      s.SectName,
		Seg:       s.SegName,
		Addr:      s.Addr,
		Size:      s.Size,
		Offset:    s.Offset,
		Align:     s.Align,
		Reloff:    s.Reloff,
		Nreloc:    s.Nreloc,
		Flags:     s.Flags(),
		Reserved1: s.Reserved1,
		Reserved2: s.Reserved2,
		Reserved3: s.Reserved3,
	})
}

// Name returns the section name.
func (s *Section64) Name() string { return utils.CString(s.SectName[:]) }

// Segment returns the name of the segment the section belongs to.
func (s *Section64) Segment() string { return utils.CString(s.SegName[:]) }

// Flags returns the raw flags word.
func (s *Section64) Flags() uint32 { return uint32(s.Type) | s.Attrs.Mask() }

func (s *Section64) MarshalJSON() ([]byte, error) {
	type section Section64
	return json.Marshal(&struct {
		SectName string
		SegName  string
		*section
	}{
		SectName: s.Name(),
		SegName:  s.Segment(),
		section:  (*section)(s),
	})
}

func (s *Section64) String() string {
	attrs := s.Attrs.String()
	if attrs != "" {
		attrs = " (" + attrs + ")"
	}
	return fmt.Sprintf("sz=%#08x off=%#08x-%#08x addr=%#09x-%#09x\t\t%s.%s\t%s%s",
		s.Size, s.Offset, uint64(s.Offset)+s.Size, s.Addr, s.Addr+s.Size,
		s.Segment(), s.Name(), s.Type, attrs)
}

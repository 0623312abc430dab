package header

import "github.com/blacktop/readmacho/pkg/macho/utils"

// A Type is the Mach-O file type, e.g. an object file, executable, or dynamic library.
type Type uint32

const (
	Obj        Type = 1
	Exec       Type = 2
	FVMLib     Type = 3
	Core       Type = 4
	Preload    Type = 5 /* preloaded executable file */
	Dylib      Type = 6 /* dynamically bound shared library */
	Dylinker   Type = 7 /* dynamic link editor */
	Bundle     Type = 8
	DylibStub  Type = 0x9 /* shared library stub for static */
	Dsym       Type = 0xa /* companion file with only debug */
	KextBundle Type = 0xb /* x86_64 kexts */
	Fileset    Type = 0xc /* set of mach-o's */
)

var typeStrings = []utils.IntName{
	{uint32(Obj), "Obj"},
	{uint32(Exec), "Exec"},
	{uint32(FVMLib), "FVMLib"},
	{uint32(Core), "Core"},
	{uint32(Preload), "Preload"},
	{uint32(Dylib), "Dylib"},
	{uint32(Dylinker), "Dylinker"},
	{uint32(Bundle), "Bundle"},
	{uint32(DylibStub), "DylibStub"},
	{uint32(Dsym), "Dsym"},
	{uint32(KextBundle), "KextBundle"},
	{uint32(Fileset), "Fileset"},
}

func (t Type) String() string   { return utils.StringName(uint32(t), typeStrings, false) }
func (t Type) GoString() string { return utils.StringName(uint32(t), typeStrings, true) }

// Valid reports whether t is a known file type.
func (t Type) Valid() bool { return utils.Known(uint32(t), typeStrings) }

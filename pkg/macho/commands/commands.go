package commands

import (
	"fmt"

	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/blacktop/readmacho/pkg/macho/utils"
)

// A LoadCmd is a Mach-O load command.
type LoadCmd uint32

const (
	LoadCmdReqDyld       LoadCmd = 0x80000000
	LoadCmdSegment       LoadCmd = 0x1  // segment of this file to be mapped
	LoadCmdSymtab        LoadCmd = 0x2  // link-edit stab symbol table info
	LoadCmdSymseg        LoadCmd = 0x3  // link-edit gdb symbol table info (obsolete)
	LoadCmdThread        LoadCmd = 0x4  // thread
	LoadCmdUnixThread    LoadCmd = 0x5  // thread+stack
	LoadCmdLoadfvmlib    LoadCmd = 0x6  // load a specified fixed VM shared library
	LoadCmdIdfvmlib      LoadCmd = 0x7  // fixed VM shared library identification
	LoadCmdIdent         LoadCmd = 0x8  // object identification info (obsolete)
	LoadCmdFvmfile       LoadCmd = 0x9  // fixed VM file inclusion (internal use)
	LoadCmdPrepage       LoadCmd = 0xa  // prepage command (internal use)
	LoadCmdDysymtab      LoadCmd = 0xb  // dynamic link-edit symbol table info
	LoadCmdDylib         LoadCmd = 0xc  // load dylib command
	LoadCmdDylibID       LoadCmd = 0xd  // id dylib command
	LoadCmdDylinker      LoadCmd = 0xe  // load a dynamic linker
	LoadCmdDylinkerID    LoadCmd = 0xf  // id dylinker command (not load dylinker command)
	LoadCmdPreboundDylib LoadCmd = 0x10 // modules prebound for a dynamically linked shared library
	LoadCmdRoutines      LoadCmd = 0x11 // image routines
	LoadCmdSubFramework  LoadCmd = 0x12 // sub framework
	LoadCmdSubUmbrella   LoadCmd = 0x13 // sub umbrella
	LoadCmdSubClient     LoadCmd = 0x14 // sub client
	LoadCmdSubLibrary    LoadCmd = 0x15 // sub library
	LoadCmdTwolevelHints LoadCmd = 0x16 // two-level namespace lookup hints
	LoadCmdPrebindCksum  LoadCmd = 0x17 // prebind checksum
	/*
	 * load a dynamically linked shared library that is allowed to be missing
	 * (all symbols are weak imported).
	 */
	LoadCmdLoadWeakDylib          LoadCmd = (0x18 | LoadCmdReqDyld)
	LoadCmdSegment64              LoadCmd = 0x19                    // 64-bit segment of this file to be mapped
	LoadCmdRoutines64             LoadCmd = 0x1a                    // 64-bit image routines
	LoadCmdUUID                   LoadCmd = 0x1b                    // the uuid
	LoadCmdRpath                  LoadCmd = (0x1c | LoadCmdReqDyld) // runpath additions
	LoadCmdCodeSignature          LoadCmd = 0x1d                    // local of code signature
	LoadCmdSegmentSplitInfo       LoadCmd = 0x1e                    // local of info to split segments
	LoadCmdReexportDylib          LoadCmd = (0x1f | LoadCmdReqDyld) // load and re-export dylib
	LoadCmdLazyLoadDylib          LoadCmd = 0x20                    // delay load of dylib until first use
	LoadCmdEncryptionInfo         LoadCmd = 0x21                    // encrypted segment information
	LoadCmdDyldInfo               LoadCmd = 0x22                    // compressed dyld information
	LoadCmdDyldInfoOnly           LoadCmd = (0x22 | LoadCmdReqDyld) // compressed dyld information only
	LoadCmdLoadUpwardDylib        LoadCmd = (0x23 | LoadCmdReqDyld) // load upward dylib
	LoadCmdVersionMinMacosx       LoadCmd = 0x24                    // build for MacOSX min OS version
	LoadCmdVersionMinIphoneos     LoadCmd = 0x25                    // build for iPhoneOS min OS version
	LoadCmdFunctionStarts         LoadCmd = 0x26                    // compressed table of function start addresses
	LoadCmdDyldEnvironment        LoadCmd = 0x27                    // string for dyld to treat like environment variable
	LoadCmdMain                   LoadCmd = (0x28 | LoadCmdReqDyld) // replacement for LC_UNIXTHREAD
	LoadCmdDataInCode             LoadCmd = 0x29                    // table of non-instructions in __text
	LoadCmdSourceVersion          LoadCmd = 0x2A                    // source version used to build binary
	LoadCmdDylibCodeSignDrs       LoadCmd = 0x2B                    // Code signing DRs copied from linked dylibs
	LoadCmdEncryptionInfo64       LoadCmd = 0x2C                    // 64-bit encrypted segment information
	LoadCmdLinkerOption           LoadCmd = 0x2D                    // linker options in MH_OBJECT files
	LoadCmdLinkerOptimizationHint LoadCmd = 0x2E                    // optimization hints in MH_OBJECT files
	LoadCmdVersionMinTvos         LoadCmd = 0x2F                    // build for AppleTV min OS version
	LoadCmdVersionMinWatchos      LoadCmd = 0x30                    // build for Watch min OS version
	LoadCmdNote                   LoadCmd = 0x31                    // arbitrary data included within a Mach-O file
	LoadCmdBuildVersion           LoadCmd = 0x32                    // build for platform min OS version
	LoadCmdDyldExportsTrie        LoadCmd = (0x33 | LoadCmdReqDyld) // used with linkedit_data_command, payload is trie
	LoadCmdDyldChainedFixups      LoadCmd = (0x34 | LoadCmdReqDyld) // used with linkedit_data_command
)

var cmdStrings = []utils.IntName{
	{uint32(LoadCmdSegment), "LC_SEGMENT"},
	{uint32(LoadCmdSymtab), "LC_SYMTAB"},
	{uint32(LoadCmdSymseg), "LC_SYMSEG"},
	{uint32(LoadCmdThread), "LC_THREAD"},
	{uint32(LoadCmdUnixThread), "LC_UNIXTHREAD"},
	{uint32(LoadCmdLoadfvmlib), "LC_LOADFVMLIB"},
	{uint32(LoadCmdIdfvmlib), "LC_IDFVMLIB"},
	{uint32(LoadCmdIdent), "LC_IDENT"},
	{uint32(LoadCmdFvmfile), "LC_FVMFILE"},
	{uint32(LoadCmdPrepage), "LC_PREPAGE"},
	{uint32(LoadCmdDysymtab), "LC_DYSYMTAB"},
	{uint32(LoadCmdDylib), "LC_LOAD_DYLIB"},
	{uint32(LoadCmdDylibID), "LC_ID_DYLIB"},
	{uint32(LoadCmdDylinker), "LC_LOAD_DYLINKER"},
	{uint32(LoadCmdDylinkerID), "LC_ID_DYLINKER"},
	{uint32(LoadCmdPreboundDylib), "LC_PREBOUND_DYLIB"},
	{uint32(LoadCmdRoutines), "LC_ROUTINES"},
	{uint32(LoadCmdSubFramework), "LC_SUB_FRAMEWORK"},
	{uint32(LoadCmdSubUmbrella), "LC_SUB_UMBRELLA"},
	{uint32(LoadCmdSubClient), "LC_SUB_CLIENT"},
	{uint32(LoadCmdSubLibrary), "LC_SUB_LIBRARY"},
	{uint32(LoadCmdTwolevelHints), "LC_TWOLEVEL_HINTS"},
	{uint32(LoadCmdPrebindCksum), "LC_PREBIND_CKSUM"},
	{uint32(LoadCmdLoadWeakDylib), "LC_LOAD_WEAK_DYLIB"},
	{uint32(LoadCmdSegment64), "LC_SEGMENT_64"},
	{uint32(LoadCmdRoutines64), "LC_ROUTINES_64"},
	{uint32(LoadCmdUUID), "LC_UUID"},
	{uint32(LoadCmdRpath), "LC_RPATH"},
	{uint32(LoadCmdCodeSignature), "LC_CODE_SIGNATURE"},
	{uint32(LoadCmdSegmentSplitInfo), "LC_SEGMENT_SPLIT_INFO"},
	{uint32(LoadCmdReexportDylib), "LC_REEXPORT_DYLIB"},
	{uint32(LoadCmdLazyLoadDylib), "LC_LAZY_LOAD_DYLIB"},
	{uint32(LoadCmdEncryptionInfo), "LC_ENCRYPTION_INFO"},
	{uint32(LoadCmdDyldInfo), "LC_DYLD_INFO"},
	{uint32(LoadCmdDyldInfoOnly), "LC_DYLD_INFO_ONLY"},
	{uint32(LoadCmdLoadUpwardDylib), "LC_LOAD_UPWARD_DYLIB"},
	{uint32(LoadCmdVersionMinMacosx), "LC_VERSION_MIN_MACOSX"},
	{uint32(LoadCmdVersionMinIphoneos), "LC_VERSION_MIN_IPHONEOS"},
	{uint32(LoadCmdFunctionStarts), "LC_FUNCTION_STARTS"},
	{uint32(LoadCmdDyldEnvironment), "LC_DYLD_ENVIRONMENT"},
	{uint32(LoadCmdMain), "LC_MAIN"},
	{uint32(LoadCmdDataInCode), "LC_DATA_IN_CODE"},
	{uint32(LoadCmdSourceVersion), "LC_SOURCE_VERSION"},
	{uint32(LoadCmdDylibCodeSignDrs), "LC_DYLIB_CODE_SIGN_DRS"},
	{uint32(LoadCmdEncryptionInfo64), "LC_ENCRYPTION_INFO_64"},
	{uint32(LoadCmdLinkerOption), "LC_LINKER_OPTION"},
	{uint32(LoadCmdLinkerOptimizationHint), "LC_LINKER_OPTIMIZATION_HINT"},
	{uint32(LoadCmdVersionMinTvos), "LC_VERSION_MIN_TVOS"},
	{uint32(LoadCmdVersionMinWatchos), "LC_VERSION_MIN_WATCHOS"},
	{uint32(LoadCmdNote), "LC_NOTE"},
	{uint32(LoadCmdBuildVersion), "LC_BUILD_VERSION"},
	{uint32(LoadCmdDyldExportsTrie), "LC_DYLD_EXPORTS_TRIE"},
	{uint32(LoadCmdDyldChainedFixups), "LC_DYLD_CHAINED_FIXUPS"},
}

func (i LoadCmd) String() string   { return utils.StringName(uint32(i), cmdStrings, false) }
func (i LoadCmd) GoString() string { return utils.StringName(uint32(i), cmdStrings, true) }

// PrefixSize is the size of the tag and declared size that start every load command.
const PrefixSize = 8

// A LoadCommand is a decoded Mach-O load command.
type LoadCommand interface {
	Command() LoadCmd
	LoadSize() uint32
	// Encode writes the whole command, prefix included, in byte order e.
	Encode(w *types.Writer, e types.Endian) error
	String() string
}

// Prefix is the tag and declared size shared by every load command.
type Prefix struct {
	Cmd LoadCmd
	Len uint32
}

func (p Prefix) Command() LoadCmd { return p.Cmd }
func (p Prefix) LoadSize() uint32 { return p.Len }

func (p Prefix) put(w *types.Writer, e types.Endian) error {
	if err := w.PutUint32(e, uint32(p.Cmd)); err != nil {
		return err
	}
	return w.PutUint32(e, p.Len)
}

// checkFixed fails when a fixed shape command is about to be written with
// a declared size other than its layout size.
func (p Prefix) checkFixed(size uint32) error {
	if p.Len != size {
		return &types.SizeMismatchError{Record: p.Cmd.String(), Expected: size, Actual: p.Len}
	}
	return nil
}

type SegFlag uint32

/* Constants for the flags field of the segment_command */
const (
	HighVM            SegFlag = 0x1  /* the file contents for this segment is for the high part of the VM space */
	FvmLib            SegFlag = 0x2  /* this segment is the VM that is allocated by a fixed VM library */
	NoReLoc           SegFlag = 0x4  /* this segment has nothing that was relocated in it and nothing relocated to it */
	ProtectedVersion1 SegFlag = 0x8  /* This segment is protected. */
	ReadOnly          SegFlag = 0x10 /* This segment is made read-only after fixups */
)

var segFlagStrings = []utils.IntName{
	{uint32(HighVM), "HighVM"},
	{uint32(FvmLib), "FvmLib"},
	{uint32(NoReLoc), "NoReLoc"},
	{uint32(ProtectedVersion1), "ProtectedVersion1"},
	{uint32(ReadOnly), "ReadOnly"},
}

func (f SegFlag) String() string {
	if f == 0 {
		return ""
	}
	var s string
	bits, residual := types.ScanBits(uint32(f), func(bit uint32) bool { return utils.Known(bit, segFlagStrings) })
	for _, b := range bits {
		s += utils.StringName(b, segFlagStrings, false) + "|"
	}
	if residual != 0 {
		s += fmt.Sprintf("%#x|", residual)
	}
	return s[:len(s)-1]
}

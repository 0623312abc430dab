package header

import (
	"fmt"
	"strings"

	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/blacktop/readmacho/pkg/macho/utils"
	"github.com/pkg/errors"
)

type Flag uint32

const (
	NoUndefs                   Flag = 0x1
	IncrLink                   Flag = 0x2
	DyldLink                   Flag = 0x4
	BindAtLoad                 Flag = 0x8
	Prebound                   Flag = 0x10
	SplitSegs                  Flag = 0x20
	LazyInit                   Flag = 0x40
	TwoLevel                   Flag = 0x80
	ForceFlat                  Flag = 0x100
	NoMultiDefs                Flag = 0x200
	NoFixPrebinding            Flag = 0x400
	Prebindable                Flag = 0x800
	AllModsBound               Flag = 0x1000
	SubsectionsViaSymbols      Flag = 0x2000
	Canonical                  Flag = 0x4000
	WeakDefines                Flag = 0x8000
	BindsToWeak                Flag = 0x10000
	AllowStackExecution        Flag = 0x20000
	RootSafe                   Flag = 0x40000
	SetuidSafe                 Flag = 0x80000
	NoReexportedDylibs         Flag = 0x100000
	PIE                        Flag = 0x200000
	DeadStrippableDylib        Flag = 0x400000
	HasTLVDescriptors          Flag = 0x800000
	NoHeapExecution            Flag = 0x1000000
	AppExtensionSafe           Flag = 0x2000000
	NlistOutofsyncWithDyldinfo Flag = 0x4000000
	SimSupport                 Flag = 0x8000000
	DylibInCache               Flag = 0x80000000
)

var flagStrings = []utils.IntName{
	{uint32(NoUndefs), "NoUndefs"},
	{uint32(IncrLink), "IncrLink"},
	{uint32(DyldLink), "DyldLink"},
	{uint32(BindAtLoad), "BindAtLoad"},
	{uint32(Prebound), "Prebound"},
	{uint32(SplitSegs), "SplitSegs"},
	{uint32(LazyInit), "LazyInit"},
	{uint32(TwoLevel), "TwoLevel"},
	{uint32(ForceFlat), "ForceFlat"},
	{uint32(NoMultiDefs), "NoMultiDefs"},
	{uint32(NoFixPrebinding), "NoFixPrebinding"},
	{uint32(Prebindable), "Prebindable"},
	{uint32(AllModsBound), "AllModsBound"},
	{uint32(SubsectionsViaSymbols), "SubsectionsViaSymbols"},
	{uint32(Canonical), "Canonical"},
	{uint32(WeakDefines), "WeakDefines"},
	{uint32(BindsToWeak), "BindsToWeak"},
	{uint32(AllowStackExecution), "AllowStackExecution"},
	{uint32(RootSafe), "RootSafe"},
	{uint32(SetuidSafe), "SetuidSafe"},
	{uint32(NoReexportedDylibs), "NoReexportedDylibs"},
	{uint32(PIE), "PIE"},
	{uint32(DeadStrippableDylib), "DeadStrippableDylib"},
	{uint32(HasTLVDescriptors), "HasTLVDescriptors"},
	{uint32(NoHeapExecution), "NoHeapExecution"},
	{uint32(AppExtensionSafe), "AppExtensionSafe"},
	{uint32(NlistOutofsyncWithDyldinfo), "NlistOutofsyncWithDyldinfo"},
	{uint32(SimSupport), "SimSupport"},
	{uint32(DylibInCache), "DylibInCache"},
}

func (f Flag) String() string   { return utils.StringName(uint32(f), flagStrings, false) }
func (f Flag) GoString() string { return utils.StringName(uint32(f), flagStrings, true) }

// Flags is the decoded mach header flags word: the named flags in
// ascending bit order, plus any bits without a name.
type Flags struct {
	Set      []Flag
	Residual uint32
}

// NewFlags builds a flag set from named flags.
func NewFlags(flags ...Flag) Flags {
	var mask uint32
	for _, f := range flags {
		mask |= uint32(f)
	}
	fs, _ := DecodeFlags(mask, types.Options{Lenient: true})
	return fs
}

// DecodeFlags splits mask into named flags. Unless opts.Lenient is set a
// bit without a name fails with types.ErrUnknownFlagBit.
func DecodeFlags(mask uint32, opts types.Options) (Flags, error) {
	bits, residual := types.ScanBits(mask, func(bit uint32) bool {
		return utils.Known(bit, flagStrings)
	})
	if residual != 0 && !opts.Lenient {
		return Flags{}, errors.Wrapf(types.ErrUnknownFlagBit, "header flags %#x", residual)
	}
	fs := Flags{Residual: residual}
	for _, b := range bits {
		fs.Set = append(fs.Set, Flag(b))
	}
	return fs, nil
}

// Mask returns the raw flags word.
func (fs Flags) Mask() uint32 {
	mask := fs.Residual
	for _, f := range fs.Set {
		mask |= uint32(f)
	}
	return mask
}

// Has reports whether flag is set.
func (fs Flags) Has(flag Flag) bool {
	return fs.Mask()&uint32(flag) == uint32(flag)
}

// List returns a string array of flag names
func (fs Flags) List() []string {
	var flags []string
	for _, f := range fs.Set {
		flags = append(flags, f.String())
	}
	if fs.Residual != 0 {
		flags = append(flags, fmt.Sprintf("%#x", fs.Residual))
	}
	return flags
}

func (fs Flags) String() string {
	return strings.Join(fs.List(), ", ")
}

package header

import (
	"fmt"
	"strings"

	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/blacktop/readmacho/pkg/macho/utils"
	"github.com/pkg/errors"
)

// A CPU is a Mach-O cpu type.
type CPU uint32

const (
	cpuArch64 = 0x01000000 // 64 bit ABI
)

const (
	CPUX86   CPU = 7
	CPUAmd64 CPU = CPUX86 | cpuArch64
	CPUArm   CPU = 12
	CPUArm64 CPU = CPUArm | cpuArch64
)

var cpuStrings = []utils.IntName{
	{uint32(CPUX86), "x86"},
	{uint32(CPUAmd64), "x86_64"},
	{uint32(CPUArm), "arm"},
	{uint32(CPUArm64), "arm64"},
}

func (c CPU) String() string   { return utils.StringName(uint32(c), cpuStrings, false) }
func (c CPU) GoString() string { return utils.StringName(uint32(c), cpuStrings, true) }

// A CPUSubtype is a Mach-O cpu subtype with the capability byte removed.
type CPUSubtype uint32

const (
	CPUSubtypeMask     = 0x00ffffff
	CPUSubtypeFeatures = 0xff000000 // capability bits
	CPUSubtypeLib64    = 0x80000000 // 64 bit libraries
)

// X86 subtypes
const (
	CPUSubtypeX86All    CPUSubtype = 3
	CPUSubtypeX86_64All CPUSubtype = 3
	CPUSubtypeX86Arch1  CPUSubtype = 4
	CPUSubtypeX86_64H   CPUSubtype = 8
)

// ARM subtypes
const (
	CPUSubtypeArmAll    CPUSubtype = 0
	CPUSubtypeArmV4T    CPUSubtype = 5
	CPUSubtypeArmV6     CPUSubtype = 6
	CPUSubtypeArmV5Tej  CPUSubtype = 7
	CPUSubtypeArmXscale CPUSubtype = 8
	CPUSubtypeArmV7     CPUSubtype = 9
	CPUSubtypeArmV7F    CPUSubtype = 10
	CPUSubtypeArmV7S    CPUSubtype = 11
	CPUSubtypeArmV7K    CPUSubtype = 12
	CPUSubtypeArmV8     CPUSubtype = 13
	CPUSubtypeArmV6M    CPUSubtype = 14
	CPUSubtypeArmV7M    CPUSubtype = 15
	CPUSubtypeArmV7Em   CPUSubtype = 16
	CPUSubtypeArmV8M    CPUSubtype = 17
)

// ARM64 subtypes
const (
	CPUSubtypeArm64All CPUSubtype = 0
	CPUSubtypeArm64V8  CPUSubtype = 1
	CPUSubtypeArm64E   CPUSubtype = 2
)

var subtypeStrings = map[CPU][]utils.IntName{
	CPUX86: {
		{uint32(CPUSubtypeX86All), "All"},
		{uint32(CPUSubtypeX86Arch1), "Arch1"},
	},
	CPUAmd64: {
		{uint32(CPUSubtypeX86_64All), "All"},
		{uint32(CPUSubtypeX86_64H), "Haswell"},
	},
	CPUArm: {
		{uint32(CPUSubtypeArmAll), "All"},
		{uint32(CPUSubtypeArmV4T), "v4t"},
		{uint32(CPUSubtypeArmV6), "v6"},
		{uint32(CPUSubtypeArmV5Tej), "v5tej"},
		{uint32(CPUSubtypeArmXscale), "XScale"},
		{uint32(CPUSubtypeArmV7), "v7"},
		{uint32(CPUSubtypeArmV7F), "v7f"},
		{uint32(CPUSubtypeArmV7S), "v7s"},
		{uint32(CPUSubtypeArmV7K), "v7k"},
		{uint32(CPUSubtypeArmV8), "v8"},
		{uint32(CPUSubtypeArmV6M), "v6m"},
		{uint32(CPUSubtypeArmV7M), "v7m"},
		{uint32(CPUSubtypeArmV7Em), "v7em"},
		{uint32(CPUSubtypeArmV8M), "v8m"},
	},
	CPUArm64: {
		{uint32(CPUSubtypeArm64All), "All"},
		{uint32(CPUSubtypeArm64V8), "v8"},
		{uint32(CPUSubtypeArm64E), "arm64e"},
	},
}

func (st CPUSubtype) String(cpu CPU) string {
	return utils.StringName(uint32(st), subtypeStrings[cpu], false)
}

// CPUIdentity is a validated cpu type and subtype pair.
type CPUIdentity struct {
	CPU    CPU
	SubCPU CPUSubtype
	Caps   uint32 // high byte of the raw subtype
}

// DecodeCPU validates the raw cpu type and subtype fields.
func DecodeCPU(cpu, subtype uint32) (CPUIdentity, error) {
	c := CPU(cpu)
	names, ok := subtypeStrings[c]
	if !ok {
		return CPUIdentity{}, errors.Wrapf(types.ErrUnsupportedCPU, "cpu %#x", cpu)
	}
	st := CPUSubtype(subtype & CPUSubtypeMask)
	if !utils.Known(uint32(st), names) {
		return CPUIdentity{}, errors.Wrapf(types.ErrUnsupportedCPU, "%s subtype %#x", c, subtype)
	}
	return CPUIdentity{CPU: c, SubCPU: st, Caps: subtype & CPUSubtypeFeatures}, nil
}

// Encode returns the raw cpu type and subtype fields.
func (id CPUIdentity) Encode() (uint32, uint32) {
	return uint32(id.CPU), uint32(id.SubCPU) | id.Caps
}

func (id CPUIdentity) String() string {
	s := fmt.Sprintf("%s, %s", id.CPU, id.SubCPU.String(id.CPU))
	if id.Caps&CPUSubtypeLib64 != 0 {
		s += " (LIB64)"
	} else if id.Caps != 0 {
		s += fmt.Sprintf(" (caps: %#x)", id.Caps>>24)
	}
	return s
}

// Arch returns a short architecture name such as x86_64 or arm64e.
func (id CPUIdentity) Arch() string {
	switch {
	case id.CPU == CPUAmd64 && id.SubCPU == CPUSubtypeX86_64H:
		return "x86_64h"
	case id.CPU == CPUArm64 && id.SubCPU == CPUSubtypeArm64E:
		return "arm64e"
	case id.CPU == CPUArm && id.SubCPU != CPUSubtypeArmAll:
		return "arm" + id.SubCPU.String(id.CPU)
	}
	return id.CPU.String()
}

// ParseCPU returns the cpu type named by an architecture such as x86_64,
// arm64 or arm64e.
func ParseCPU(arch string) (CPU, error) {
	switch arch {
	case "i386", "x86":
		return CPUX86, nil
	case "x86_64", "x86_64h", "amd64":
		return CPUAmd64, nil
	case "arm64", "arm64e", "aarch64":
		return CPUArm64, nil
	}
	if strings.HasPrefix(arch, "arm") {
		return CPUArm, nil
	}
	return 0, errors.Wrapf(types.ErrUnsupportedCPU, "unknown architecture %q", arch)
}

// Valid reports whether c is a supported cpu type.
func (c CPU) Valid() bool { return utils.Known(uint32(c), cpuStrings) }

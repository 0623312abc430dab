package types

import (
	"fmt"
	"strings"

	"github.com/blacktop/readmacho/pkg/macho/utils"
	"github.com/google/uuid"
)

type VmProtection int32

func (v VmProtection) Read() bool {
	return (v & 0x01) != 0
}

func (v VmProtection) Write() bool {
	return (v & 0x02) != 0
}

func (v VmProtection) Execute() bool {
	return (v & 0x04) != 0
}

func (v VmProtection) String() string {
	var protStr string
	if v.Read() {
		protStr += "r"
	} else {
		protStr += "-"
	}
	if v.Write() {
		protStr += "w"
	} else {
		protStr += "-"
	}
	if v.Execute() {
		protStr += "x"
	} else {
		protStr += "-"
	}
	return protStr
}

// UUID is a macho uuid object
type UUID [16]byte

func (u UUID) String() string {
	return strings.ToUpper(uuid.UUID(u).String())
}

// ParseUUID parses the canonical textual form of a UUID.
func ParseUUID(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, err
	}
	return UUID(id), nil
}

// Platform is a macho platform object
type Platform uint32

const (
	Unknown          Platform = 0
	MacOS            Platform = 1  // PLATFORM_MACOS
	IOS              Platform = 2  // PLATFORM_IOS
	TvOS             Platform = 3  // PLATFORM_TVOS
	WatchOS          Platform = 4  // PLATFORM_WATCHOS
	BridgeOS         Platform = 5  // PLATFORM_BRIDGEOS
	MacCatalyst      Platform = 6  // PLATFORM_MACCATALYST
	IOSSimulator     Platform = 7  // PLATFORM_IOSSIMULATOR
	TvOSSimulator    Platform = 8  // PLATFORM_TVOSSIMULATOR
	WatchOSSimulator Platform = 9  // PLATFORM_WATCHOSSIMULATOR
	DriverKit        Platform = 10 // PLATFORM_DRIVERKIT
)

var platformStrings = []utils.IntName{
	{uint32(Unknown), "unknown"},
	{uint32(MacOS), "macOS"},
	{uint32(IOS), "iOS"},
	{uint32(TvOS), "tvOS"},
	{uint32(WatchOS), "watchOS"},
	{uint32(BridgeOS), "bridgeOS"},
	{uint32(MacCatalyst), "macCatalyst"},
	{uint32(IOSSimulator), "iOSSimulator"},
	{uint32(TvOSSimulator), "tvOSSimulator"},
	{uint32(WatchOSSimulator), "watchOSSimulator"},
	{uint32(DriverKit), "driverKit"},
}

func (p Platform) String() string   { return utils.StringName(uint32(p), platformStrings, false) }
func (p Platform) GoString() string { return utils.StringName(uint32(p), platformStrings, true) }

// Version is X.Y.Z encoded in nibbles xxxx.yy.zz
type Version uint32

// NewVersion packs x.y.z.
func NewVersion(x uint16, y, z uint8) Version {
	return Version(uint32(x)<<16 | uint32(y)<<8 | uint32(z))
}

func (v Version) Major() uint16 { return uint16(v >> 16) }
func (v Version) Minor() uint8  { return uint8(v >> 8) }
func (v Version) Patch() uint8  { return uint8(v) }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// SrcVersion is A.B.C.D.E packed as a24.b10.c10.d10.e10
type SrcVersion uint64

const (
	srcVersionMaskA SrcVersion = 0xFFFFFF0000000000
	srcVersionMaskB SrcVersion = 0x000000FFC0000000
	srcVersionMaskC SrcVersion = 0x000000003FF00000
	srcVersionMaskD SrcVersion = 0x00000000000FFC00
	srcVersionMaskE SrcVersion = 0x00000000000003FF
)

// NewSrcVersion packs the five components, truncating each to its field width.
func NewSrcVersion(a uint32, b, c, d, e uint16) SrcVersion {
	return SrcVersion(uint64(a)&0xffffff)<<40 |
		SrcVersion(uint64(b)&0x3ff)<<30 |
		SrcVersion(uint64(c)&0x3ff)<<20 |
		SrcVersion(uint64(d)&0x3ff)<<10 |
		SrcVersion(uint64(e)&0x3ff)
}

// A returns the A field masked in place (not shifted down).
func (sv SrcVersion) A() uint64 { return uint64(sv & srcVersionMaskA) }

// B returns the B field masked in place (not shifted down).
func (sv SrcVersion) B() uint64 { return uint64(sv & srcVersionMaskB) }

// C returns the C field masked in place (not shifted down).
func (sv SrcVersion) C() uint64 { return uint64(sv & srcVersionMaskC) }

// D returns the D field masked in place (not shifted down).
func (sv SrcVersion) D() uint64 { return uint64(sv & srcVersionMaskD) }

// E returns the E field.
func (sv SrcVersion) E() uint64 { return uint64(sv & srcVersionMaskE) }

// Components returns the five fields shifted down to their numeric values.
func (sv SrcVersion) Components() [5]uint64 {
	return [5]uint64{sv.A() >> 40, sv.B() >> 30, sv.C() >> 20, sv.D() >> 10, sv.E()}
}

func (sv SrcVersion) String() string {
	c := sv.Components()
	return fmt.Sprintf("%d.%d.%d.%d.%d", c[0], c[1], c[2], c[3], c[4])
}

type Tool uint32

const (
	Clang Tool = 1 // TOOL_CLANG
	Swift Tool = 2 // TOOL_SWIFT
	Ld    Tool = 3 // TOOL_LD
)

var toolStrings = []utils.IntName{
	{uint32(Clang), "clang"},
	{uint32(Swift), "swift"},
	{uint32(Ld), "ld"},
}

func (t Tool) String() string   { return utils.StringName(uint32(t), toolStrings, false) }
func (t Tool) GoString() string { return utils.StringName(uint32(t), toolStrings, true) }

type BuildToolVersion struct {
	Tool    Tool    /* enum for the tool */
	Version Version /* version number of the tool */
}

func (b BuildToolVersion) String() string {
	return fmt.Sprintf("%s (%s)", b.Tool, b.Version)
}

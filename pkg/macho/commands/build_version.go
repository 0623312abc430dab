package commands

import (
	"fmt"
	"strings"

	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/pkg/errors"
)

const (
	buildVersionSize     = PrefixSize + 16
	buildToolVersionSize = 8
)

type buildVersion struct {
	Platform uint32
	Minos    uint32
	Sdk      uint32
	NumTools uint32
}

// A BuildVersion is the build_version_command: the min OS version on which
// this binary was built to run for its platform, and the tools that built it.
type BuildVersion struct {
	Prefix
	Platform types.Platform /* platform */
	Minos    types.Version  /* X.Y.Z is encoded in nibbles xxxx.yy.zz */
	Sdk      types.Version  /* X.Y.Z is encoded in nibbles xxxx.yy.zz */
	Tools    []types.BuildToolVersion
}

// NewBuildVersion returns an LC_BUILD_VERSION command with its declared size computed from tools.
func NewBuildVersion(platform types.Platform, minos, sdk types.Version, tools ...types.BuildToolVersion) *BuildVersion {
	return &BuildVersion{
		Prefix:   Prefix{Cmd: LoadCmdBuildVersion, Len: buildVersionSize + uint32(len(tools))*buildToolVersionSize},
		Platform: platform,
		Minos:    minos,
		Sdk:      sdk,
		Tools:    tools,
	}
}

func readBuildVersion(r *types.Reader, e types.Endian, cmd LoadCmd, size uint32, _ types.Options) (LoadCommand, error) {
	var raw buildVersion
	if err := r.Struct(e, &raw); err != nil {
		return nil, err
	}
	b := &BuildVersion{
		Prefix:   Prefix{Cmd: cmd, Len: size},
		Platform: types.Platform(raw.Platform),
		Minos:    types.Version(raw.Minos),
		Sdk:      types.Version(raw.Sdk),
	}
	for i := uint32(0); i < raw.NumTools; i++ {
		tool, err := r.Uint32(e)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read build tool %d", i)
		}
		version, err := r.Uint32(e)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read build tool %d version", i)
		}
		b.Tools = append(b.Tools, types.BuildToolVersion{Tool: types.Tool(tool), Version: types.Version(version)})
	}
	return b, nil
}

func (b *BuildVersion) Encode(w *types.Writer, e types.Endian) error {
	if err := b.put(w, e); err != nil {
		return err
	}
	if err := w.Struct(e, &buildVersion{
		Platform: uint32(b.Platform),
		Minos:    uint32(b.Minos),
		Sdk:      uint32(b.Sdk),
		NumTools: uint32(len(b.Tools)),
	}); err != nil {
		return err
	}
	for _, t := range b.Tools {
		if err := w.PutUint32(e, uint32(t.Tool)); err != nil {
			return err
		}
		if err := w.PutUint32(e, uint32(t.Version)); err != nil {
			return err
		}
	}
	return nil
}

func (b *BuildVersion) String() string {
	var tools []string
	for _, t := range b.Tools {
		tools = append(tools, t.String())
	}
	s := fmt.Sprintf("Platform: %s, MinOS: %s, SDK: %s", b.Platform, b.Minos, b.Sdk)
	if len(tools) > 0 {
		s += ", Tools: " + strings.Join(tools, ", ")
	}
	return s
}

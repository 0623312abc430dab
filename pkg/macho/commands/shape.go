package commands

import "github.com/blacktop/readmacho/pkg/macho/types"

// decodeFunc decodes the body of a command after its prefix. size is the
// declared size, already checked against the command's shape.
type decodeFunc func(r *types.Reader, e types.Endian, cmd LoadCmd, size uint32, opts types.Options) (LoadCommand, error)

// A shape is either a fixed record size or, for commands with trailing
// sub-records, the size of the fixed part.
type shape struct {
	size     uint32
	variable bool
	decode   decodeFunc
}

// shapes is the set of load commands with a modeled layout. Every other
// tag decodes as *Unknown.
var shapes = map[LoadCmd]shape{
	LoadCmdSegment64:     {segment64Size, true, readSegment64},
	LoadCmdSymtab:        {symtabSize, false, readSymtab},
	LoadCmdDysymtab:      {dysymtabSize, false, readDysymtab},
	LoadCmdThread:        {threadHeaderSize, true, readThread},
	LoadCmdUnixThread:    {threadHeaderSize, true, readThread},
	LoadCmdUUID:          {uuidSize, false, readUUID},
	LoadCmdBuildVersion:  {buildVersionSize, true, readBuildVersion},
	LoadCmdSourceVersion: {sourceVersionSize, false, readSourceVersion},
}

// Known reports whether cmd has a modeled layout.
func Known(cmd LoadCmd) bool {
	_, ok := shapes[cmd]
	return ok
}

// check validates a declared size against the shape.
func (s shape) check(cmd LoadCmd, size uint32) error {
	if size == s.size || (s.variable && size > s.size) {
		return nil
	}
	return &types.SizeMismatchError{Record: cmd.String(), Expected: s.size, Actual: size}
}

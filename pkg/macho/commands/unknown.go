package commands

import (
	"fmt"

	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/pkg/errors"
)

// Unknown is a load command without a modeled layout. Its payload is kept
// as raw bytes; it cannot be encoded.
type Unknown struct {
	Prefix
	Data []byte // declared size minus the prefix
}

func readUnknown(r *types.Reader, cmd LoadCmd, size uint32) (*Unknown, error) {
	if size < PrefixSize {
		return nil, &types.SizeMismatchError{Record: cmd.String(), Expected: PrefixSize, Actual: size}
	}
	data, err := r.ReadBytes(int(size - PrefixSize))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s payload", cmd)
	}
	return &Unknown{Prefix: Prefix{Cmd: cmd, Len: size}, Data: data}, nil
}

func (u *Unknown) Encode(w *types.Writer, e types.Endian) error {
	return errors.Wrapf(types.ErrUnwritableUnknownCommand, "%s", u.Cmd)
}

func (u *Unknown) String() string {
	return fmt.Sprintf("%s (%#x bytes)", u.Cmd, len(u.Data))
}

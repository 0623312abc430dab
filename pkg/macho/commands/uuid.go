package commands

import "github.com/blacktop/readmacho/pkg/macho/types"

const uuidSize = PrefixSize + 16

// A UUID is a Mach-O uuid load command contains a single
// 128-bit unique random number that identifies an object produced
// by the static link editor.
type UUID struct {
	Prefix
	UUID types.UUID
}

// NewUUID returns an LC_UUID command.
func NewUUID(id types.UUID) *UUID {
	return &UUID{Prefix: Prefix{Cmd: LoadCmdUUID, Len: uuidSize}, UUID: id}
}

func readUUID(r *types.Reader, e types.Endian, cmd LoadCmd, size uint32, _ types.Options) (LoadCommand, error) {
	b, err := r.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	u := &UUID{Prefix: Prefix{Cmd: cmd, Len: size}}
	copy(u.UUID[:], b)
	return u, nil
}

func (u *UUID) Encode(w *types.Writer, e types.Endian) error {
	if err := u.checkFixed(uuidSize); err != nil {
		return err
	}
	if err := u.put(w, e); err != nil {
		return err
	}
	_, err := w.Write(u.UUID[:])
	return err
}

func (u *UUID) String() string {
	return u.UUID.String()
}

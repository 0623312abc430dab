package commands

import (
	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/pkg/errors"
)

// Read decodes the load command at the current position. The tag is read
// once and handed to the decoder for that kind; tags without a modeled
// layout are captured as *Unknown.
func Read(r *types.Reader, e types.Endian, opts types.Options) (LoadCommand, error) {
	off := r.Offset()
	tag, err := r.Uint32(e)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read load command tag")
	}
	cmd := LoadCmd(tag)
	size, err := r.Uint32(e)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s size", cmd)
	}

	s, ok := shapes[cmd]
	if !ok {
		l, err := readUnknown(r, cmd, size)
		if err != nil {
			return nil, errors.Wrapf(err, "load command at offset %#x", off)
		}
		return l, nil
	}
	if err := s.check(cmd, size); err != nil {
		return nil, errors.Wrapf(err, "load command at offset %#x", off)
	}
	l, err := s.decode(r, e, cmd, size, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s at offset %#x", cmd, off)
	}
	return l, nil
}

// ReadAll decodes n consecutive load commands.
func ReadAll(r *types.Reader, e types.Endian, n uint32, opts types.Options) ([]LoadCommand, error) {
	var loads []LoadCommand
	for i := uint32(0); i < n; i++ {
		l, err := Read(r, e, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "load command %d", i)
		}
		loads = append(loads, l)
	}
	return loads, nil
}

// WriteAll encodes loads in order. It fails on the first *Unknown.
func WriteAll(w *types.Writer, e types.Endian, loads []LoadCommand) error {
	for i, l := range loads {
		if err := l.Encode(w, e); err != nil {
			return errors.Wrapf(err, "load command %d (%s)", i, l.Command())
		}
	}
	return nil
}

// Package magic sniffs Mach-O magic numbers without decoding the header.
package magic

import (
	"io"
	"os"

	"github.com/blacktop/readmacho/pkg/macho/header"
	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/pkg/errors"
)

// ErrNotMachO is returned for files that do not start with a Mach-O or fat magic.
var ErrNotMachO = errors.New("not a macho file")

// Sniff reads the first four bytes of r and returns the magic they hold.
func Sniff(r io.Reader) (header.Magic, error) {
	m, err := header.ReadMagic(types.NewReader(r), types.HostEndian())
	if err != nil {
		if errors.Is(err, types.ErrUnknownMagic) {
			return 0, errors.Wrap(ErrNotMachO, err.Error())
		}
		return 0, errors.Wrap(err, "failed to read magic")
	}
	return m, nil
}

// IsMachO reports whether the file at filePath is a thin or fat Mach-O.
func IsMachO(filePath string) (bool, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return false, errors.Wrapf(err, "failed to open file %s", filePath)
	}
	defer f.Close()

	if _, err := Sniff(f); err != nil {
		return false, err
	}
	return true, nil
}

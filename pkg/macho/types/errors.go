package types

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrTruncatedInput is returned when the input ends before a field is complete.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrUnknownMagic is returned for a leading magic that is not a Mach-O or fat magic.
	ErrUnknownMagic = errors.New("unknown magic")
	// ErrUnsupportedCPU is returned for a cpu type/subtype pair outside the supported table.
	ErrUnsupportedCPU = errors.New("unsupported cpu type")
	// ErrUnsupportedFileKind is returned for an unknown mach header file type.
	ErrUnsupportedFileKind = errors.New("unsupported file type")
	// ErrUnknownFlagBit is returned when a flag word has a bit set that has no meaning.
	ErrUnknownFlagBit = errors.New("unknown flag bit")
	// ErrUnsupportedSectionType is returned for a section type outside the known range.
	ErrUnsupportedSectionType = errors.New("unsupported section type")
	// ErrSizeMismatch matches every *SizeMismatchError with errors.Is.
	ErrSizeMismatch = errors.New("size mismatch")
	// ErrUnwritableUnknownCommand is returned when encoding a load command that was only captured as bytes.
	ErrUnwritableUnknownCommand = errors.New("cannot encode unknown load command")
)

// SizeMismatchError reports a record whose declared size differs from its fixed layout.
type SizeMismatchError struct {
	Record   string
	Expected uint32
	Actual   uint32
}

func (e *SizeMismatchError) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("%s: expected %d, got %d", ErrSizeMismatch, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s for %s: expected %d, got %d", ErrSizeMismatch, e.Record, e.Expected, e.Actual)
}

func (e *SizeMismatchError) Is(target error) bool {
	return target == ErrSizeMismatch
}

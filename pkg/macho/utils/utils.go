package utils

import (
	"bytes"
	"strconv"
)

type IntName struct {
	I uint32
	S string
}

func StringName(i uint32, names []IntName, goSyntax bool) string {
	for _, n := range names {
		if n.I == i {
			if goSyntax {
				return "macho." + n.S
			}
			return n.S
		}
	}
	return strconv.FormatUint(uint64(i), 10)
}

// Known reports whether i has an entry in names.
func Known(i uint32, names []IntName) bool {
	for _, n := range names {
		if n.I == i {
			return true
		}
	}
	return false
}

// CString returns the NUL terminated prefix of a fixed width name field.
func CString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// Name16 packs s into a NUL padded 16 byte name field, truncating if needed.
func Name16(s string) (n [16]byte) {
	copy(n[:], s)
	return
}

// Package utils holds small helpers shared by the readmacho commands.
package utils

import (
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/pkg/errors"
)

var normalPadding = cli.Default.Padding

// Indent indents apex log line to supplied level
func Indent(f func(s string), level int) func(string) {
	return func(s string) {
		cli.Default.Padding = normalPadding * level
		f(s)
		cli.Default.Padding = normalPadding
	}
}

// Pad creates left padding for printf members
func Pad(length int) string {
	if length > 0 {
		return strings.Repeat(" ", length)
	}
	return " "
}

// ConvertStrToInt converts a decimal or 0x prefixed hex string to uint64
func ConvertStrToInt(intStr string) (uint64, error) {
	intStr = strings.ToLower(strings.TrimSpace(intStr))
	if strings.HasPrefix(intStr, "0x") {
		return strconv.ParseUint(intStr[2:], 16, 64)
	}
	if strings.ContainsAny(intStr, "abcdef") {
		if out, err := strconv.ParseUint(intStr, 16, 64); err == nil {
			return out, nil
		}
		log.Warn("assuming given integer is in decimal")
	}
	return strconv.ParseUint(intStr, 10, 64)
}

// ParseIndexes converts decimal command line arguments into load command
// indexes, rejecting any that are not below max. Leading zeros are decimal
// padding, so "010" is 10.
func ParseIndexes(args []string, max int) ([]int, error) {
	idxs := make([]int, 0, len(args))
	for _, arg := range args {
		u, err := strconv.ParseUint(arg, 10, 31)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid load command index %q", arg)
		}
		i := int(u)
		if i >= max {
			return nil, &IndexError{Index: i, Max: max}
		}
		idxs = append(idxs, i)
	}
	return idxs, nil
}

// IndexError reports a load command index outside the file's load commands.
type IndexError struct {
	Index int
	Max   int
}

func (e *IndexError) Error() string {
	return "load command index " + strconv.Itoa(e.Index) + " out of range [0, " + strconv.Itoa(e.Max) + ")"
}

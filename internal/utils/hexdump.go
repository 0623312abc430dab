package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blacktop/readmacho/internal/colors"
)

var zerosRE = regexp.MustCompile(`\s(00\s)+|\.`)

func colorZeros(dump string) string {
	if !colors.Enabled() {
		return dump
	}
	faint := colors.FaintHiBlue().SprintFunc()
	return zerosRE.ReplaceAllStringFunc(dump, func(s string) string { return faint(s) })
}

func toChar(b byte) byte {
	if b < 32 || b > 126 {
		return '.'
	}
	return b
}

// HexDump returns a `hexdump -C` style dump of data with each row
// addressed from vaddr.
func HexDump(data []byte, vaddr uint64) string {
	if len(data) == 0 {
		return ""
	}
	addr := colors.ItalicFaint().SprintFunc()

	var sb strings.Builder
	sb.Grow((1 + (len(data)-1)/16) * 80)
	for off := 0; off < len(data); off += 16 {
		row := data[off:min(off+16, len(data))]
		sb.WriteString(addr(fmt.Sprintf("%016x:", vaddr+uint64(off))))
		sb.WriteString("  ")
		var ascii [16]byte
		for i := 0; i < 16; i++ {
			if i < len(row) {
				fmt.Fprintf(&sb, "%02x ", row[i])
				ascii[i] = toChar(row[i])
			} else {
				sb.WriteString("   ")
			}
			if i == 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(" |")
		sb.Write(ascii[:len(row)])
		sb.WriteString("|\n")
	}
	return colorZeros(sb.String())
}

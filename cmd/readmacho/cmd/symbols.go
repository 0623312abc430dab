/*
Copyright © 2018-2023 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"github.com/blacktop/readmacho/internal/colors"
	"github.com/spf13/cobra"
)

var symAddrColor = colors.Faint().SprintfFunc()
var symTypeColor = colors.HiCyan().SprintfFunc()
var symNameColor = colors.Bold().SprintFunc()
var symUndefColor = colors.Red().SprintFunc()

type symbolJSON struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Sect  uint8  `json:"sect"`
	Desc  uint16 `json:"desc"`
	Value uint64 `json:"value"`
}

var symbolsCmd = &cobra.Command{
	Use:           "symbols <MACHO>",
	Aliases:       []string{"syms"},
	Short:         "Print the LC_SYMTAB symbols",
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openMachO(args[0])
		if err != nil {
			return err
		}
		defer m.Close()

		syms, err := m.Symbols()
		if err != nil {
			return err
		}

		if conf.JSON {
			out := make([]symbolJSON, 0, len(syms))
			for _, s := range syms {
				out = append(out, symbolJSON{Name: s.Name, Type: s.Type.String(), Sect: s.Sect, Desc: s.Desc, Value: s.Value})
			}
			return printJSON(out)
		}

		for _, s := range syms {
			name := symNameColor(s.Name)
			if s.Type.IsUndefined() {
				name = symUndefColor(s.Name)
			}
			fmt.Printf("%s  %s  %s\n", symAddrColor("%#016x", s.Value), symTypeColor("%-22s", s.Type), name)
		}
		return nil
	},
}

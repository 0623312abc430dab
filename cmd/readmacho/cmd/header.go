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
	"github.com/blacktop/readmacho/pkg/macho/header"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type fatArchJSON struct {
	Arch   string `json:"arch"`
	CPU    string `json:"cpu"`
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
	Align  uint32 `json:"align"`
}

type headerJSON struct {
	Fat      []fatArchJSON `json:"fat,omitempty"`
	Magic    string        `json:"magic"`
	Type     string        `json:"type"`
	CPU      string        `json:"cpu"`
	Arch     string        `json:"arch"`
	Endian   string        `json:"endian"`
	NCmds    uint32        `json:"ncmds"`
	SizeCmds uint32        `json:"sizeofcmds"`
	Flags    []string      `json:"flags"`
}

var headerCmd = &cobra.Command{
	Use:           "header <MACHO>",
	Short:         "Print the mach header",
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openMachO(args[0])
		if err != nil {
			return err
		}
		defer m.Close()

		if conf.JSON {
			hj := headerJSON{
				Magic:    m.Magic.String(),
				Type:     m.Type.String(),
				CPU:      m.CPU.String(),
				Arch:     m.CPU.Arch(),
				Endian:   m.ByteOrder.String(),
				NCmds:    m.Ncmd,
				SizeCmds: m.Cmdsz,
				Flags:    m.Flags.List(),
			}
			if m.Fat != nil {
				for _, a := range m.Fat.Arches {
					hj.Fat = append(hj.Fat, fatArchJSON{
						Arch:   a.CPU.Arch(),
						CPU:    a.CPU.String(),
						Offset: a.Offset,
						Size:   a.Size,
						Align:  a.Align,
					})
				}
			}
			return printJSON(hj)
		}

		if m.Fat != nil {
			fmt.Println(colors.BoldHiCyan().Sprint("Fat Header"))
			for i, a := range m.Fat.Arches {
				selected := ""
				if m.Arch != nil && a.Offset == m.Arch.Offset {
					selected = colors.Green().Sprint(" *")
				}
				fmt.Printf("  %d) %-8s %-24s offset=%#x size=%s align=2^%d%s\n",
					i, a.CPU.Arch(), a.CPU, a.Offset, humanize.Bytes(uint64(a.Size)), a.Align, selected)
			}
			fmt.Println()
		}
		fmt.Println(colors.BoldHiCyan().Sprint(headerTitle(&m.FileHeader)))
		fmt.Print(m.FileHeader.String())
		fmt.Printf("Byte Order    = %s\n", m.ByteOrder)
		fmt.Printf("Load Commands = %s\n", humanize.Bytes(uint64(m.Cmdsz)))
		return nil
	},
}

func headerTitle(h *header.FileHeader) string {
	if h.Is64() {
		return "Mach Header 64"
	}
	return "Mach Header"
}

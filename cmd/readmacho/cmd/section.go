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
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/readmacho/internal/colors"
	"github.com/blacktop/readmacho/internal/utils"
	"github.com/blacktop/readmacho/pkg/macho"
	"github.com/blacktop/readmacho/pkg/macho/commands"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	sectionCmd.Flags().BoolP("relocs", "r", false, "Print the section's relocations")
	viper.BindPFlag("section.relocs", sectionCmd.Flags().Lookup("relocs"))
}

var relocAddrColor = colors.HiBlue().SprintfFunc()

// lookupSection resolves either <SEGMENT>.<SECTION> or a virtual address
// inside a section. It returns the section and the address to dump from.
func lookupSection(m *macho.File, arg string) (*commands.Section64, uint64, error) {
	if seg, sect, ok := strings.Cut(arg, "."); ok {
		if seg == "" || sect == "" {
			return nil, 0, errors.Errorf("invalid section name %q (expected <SEGMENT>.<SECTION>)", arg)
		}
		s := m.Section(seg, sect)
		if s == nil {
			return nil, 0, errors.Errorf("section %s not found", arg)
		}
		return s, s.Addr, nil
	}
	addr, err := utils.ConvertStrToInt(arg)
	if err != nil {
		return nil, 0, errors.Errorf("invalid section %q (expected <SEGMENT>.<SECTION> or an address)", arg)
	}
	s := m.FindSectionForVMAddr(addr)
	if s == nil {
		return nil, 0, errors.Errorf("no section contains address %#x", addr)
	}
	return s, addr, nil
}

var sectionCmd = &cobra.Command{
	Use:   "section <MACHO> <SEGMENT>.<SECTION>|<ADDR>",
	Short: "Hexdump a section",
	Example: heredoc.Doc(`
		❯ readmacho section ./hello __TEXT.__text
		❯ readmacho section ./hello 0x100003f40
		❯ readmacho section --relocs ./hello.o __TEXT.__text`),
	Args:          cobra.ExactArgs(2),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openMachO(args[0])
		if err != nil {
			return err
		}
		defer m.Close()

		s, addr, err := lookupSection(m, args[1])
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"addr": fmt.Sprintf("%#x", s.Addr),
			"size": humanize.Bytes(s.Size),
			"type": s.Type,
		}).Info(s.Segment() + "." + s.Name())

		if viper.GetBool("section.relocs") {
			relocs, err := m.Relocations(s)
			if err != nil {
				return err
			}
			for i, r := range relocs {
				utils.Indent(log.Info, 2)(fmt.Sprintf("%3d) %s %s", i, relocAddrColor("%#x", s.Addr+uint64(r.Addr)), r))
			}
			return nil
		}

		dat, err := m.SectionData(s)
		if err != nil {
			return err
		}
		if dat == nil {
			fmt.Println(colors.Faint().Sprint("zero fill section has no file data"))
			return nil
		}
		fmt.Print(utils.HexDump(dat[addr-s.Addr:], addr))
		return nil
	},
}

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

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/blacktop/readmacho/internal/colors"
	"github.com/blacktop/readmacho/internal/utils"
	"github.com/blacktop/readmacho/pkg/macho/commands"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <MACHO> <INDEX>...",
	Short: "Print load commands in detail",
	Example: heredoc.Doc(`
		# Show the first segment and the symtab of a binary
		❯ readmacho load ./hello 1 4`),
	Args:          cobra.MinimumNArgs(2),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openMachO(args[0])
		if err != nil {
			return err
		}
		defer m.Close()

		idxs, err := utils.ParseIndexes(args[1:], len(m.Loads))
		if err != nil {
			return err
		}

		if conf.JSON {
			out := make([]loadJSON, 0, len(idxs))
			for _, i := range idxs {
				out = append(out, toJSON(i, m.Loads[i], true))
			}
			return printJSON(out)
		}

		for _, i := range idxs {
			l := m.Loads[i]
			fmt.Printf("%s: %s (%s)\n", idxColor("%03d", i), cmdColor("%s", l.Command()), humanize.Bytes(uint64(l.LoadSize())))
			printLoad(l)
			fmt.Println()
		}
		return nil
	},
}

func printLoad(l commands.LoadCommand) {
	indent := utils.Pad(4)
	switch l := l.(type) {
	case *commands.Segment64:
		fmt.Printf("%s%s\n", indent, l)
		for _, s := range l.Sections {
			fmt.Printf("%s%s%s\n", indent, indent, s)
		}
	case *commands.Thread:
		fmt.Printf("%sFlavor: %s, Count: %d\n", indent, l.Flavor, l.Count)
		if l.Regs != nil {
			fmt.Print(l.Regs.String())
		} else {
			fmt.Print(utils.HexDump(l.Data, 0))
		}
	case *commands.Unknown:
		fmt.Printf("%s%s\n", indent, colors.Yellow().Sprint("unmodeled load command"))
		fmt.Print(utils.HexDump(l.Data, 0))
	default:
		fmt.Printf("%s%s\n", indent, l)
	}
}

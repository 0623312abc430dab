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
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/apex/log"
	"github.com/blacktop/readmacho/internal/colors"
	"github.com/blacktop/readmacho/pkg/macho/commands"
	"github.com/spf13/cobra"
)

var cmdColor = colors.HiMagenta().SprintfFunc()
var idxColor = colors.Faint().SprintfFunc()

type loadJSON struct {
	Index   int                  `json:"index"`
	Cmd     string               `json:"cmd"`
	Size    uint32               `json:"cmdsize"`
	Summary string               `json:"summary"`
	Detail  commands.LoadCommand `json:"detail,omitempty"`
}

func toJSON(i int, l commands.LoadCommand, detail bool) loadJSON {
	lj := loadJSON{Index: i, Cmd: l.Command().String(), Size: l.LoadSize(), Summary: l.String()}
	if detail {
		lj.Detail = l
	}
	return lj
}

func printJSON(v any) error {
	dat, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if colors.Enabled() {
		return quick.Highlight(os.Stdout, string(dat)+"\n", "json", "terminal256", "nord")
	}
	fmt.Println(string(dat))
	return nil
}

var loadsCmd = &cobra.Command{
	Use:           "loads <MACHO>",
	Short:         "List the load commands",
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openMachO(args[0])
		if err != nil {
			return err
		}
		defer m.Close()

		if conf.JSON {
			out := make([]loadJSON, 0, len(m.Loads))
			for i, l := range m.Loads {
				out = append(out, toJSON(i, l, false))
			}
			return printJSON(out)
		}

		log.WithField("count", len(m.Loads)).Debug("Load Commands")
		for i, l := range m.Loads {
			fmt.Printf("%s: %s %s\n", idxColor("%03d", i), cmdColor("%-26s", l.Command()), l)
			if !commands.Known(l.Command()) {
				log.Debugf("load %d: %s decoded as opaque payload", i, l.Command())
			}
		}
		return nil
	},
}

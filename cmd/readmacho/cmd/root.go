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
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/blacktop/readmacho/internal/colors"
	"github.com/blacktop/readmacho/internal/config"
	"github.com/blacktop/readmacho/internal/magic"
	"github.com/blacktop/readmacho/pkg/macho"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// Verbose boolean flag for verbose logging
	Verbose bool
	// Color boolean flag for colorized output
	Color bool
	// AppVersion stores the plugin's version
	AppVersion string
	// AppBuildTime stores the plugin's build time
	AppBuildTime string

	conf *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "readmacho",
	Short: "Decode and re-encode Mach-O headers and load commands",
	Example: heredoc.Doc(`
		# Print the mach header of a binary
		❯ readmacho header /bin/ls
		# List the load commands of the arm64e slice of a universal binary
		❯ readmacho loads --arch arm64e /usr/lib/dyld
		# Show load commands 0 and 3 in detail
		❯ readmacho load /bin/ls 0 3`),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if conf, err = config.LoadConfig(); err != nil {
			return err
		}
		if conf.Verbose {
			log.SetLevel(log.DebugLevel)
		}
		if viper.IsSet("color") {
			colors.Init(&conf.Color)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s, BuildTime: %s", AppVersion, AppBuildTime)
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	log.SetHandler(clihander.Default)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/readmacho/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&Color, "color", false, "colorize output")
	rootCmd.PersistentFlags().StringP("arch", "a", "", "Which architecture to use for fat/universal MachO")
	rootCmd.PersistentFlags().Bool("lenient", false, "Keep unknown flag bits instead of failing")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Print as JSON")
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name != "config" {
			viper.BindPFlag(f.Name, f)
		}
	})
	viper.BindEnv("color", "CLICOLOR")

	rootCmd.AddCommand(headerCmd)
	rootCmd.AddCommand(loadsCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(sectionCmd)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "readmacho"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("readmacho")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}

// openMachO opens path with the configured arch and leniency.
func openMachO(path string) (*macho.File, error) {
	if ok, err := magic.IsMachO(path); !ok {
		return nil, errors.Wrapf(err, "cannot read %s", filepath.Base(path))
	}
	log.WithField("path", path).Debug("Opening MachO")
	m, err := macho.Open(path, conf.Options()...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", filepath.Base(path))
	}
	return m, nil
}

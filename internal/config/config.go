// Package config is used to load the configuration file
package config

import (
	"reflect"

	"github.com/blacktop/readmacho/pkg/macho"
	"github.com/blacktop/readmacho/pkg/macho/header"
	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the configuration struct
type Config struct {
	Arch    header.CPU `mapstructure:"arch"`
	Lenient bool       `mapstructure:"lenient"`
	JSON    bool       `mapstructure:"json"`
	Verbose bool       `mapstructure:"verbose"`
	Color   bool       `mapstructure:"color"`
}

// stringToCPUHook decodes architecture names such as arm64e into a header.CPU.
func stringToCPUHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.String || t != reflect.TypeOf(header.CPU(0)) {
		return data, nil
	}
	if data.(string) == "" {
		return header.CPU(0), nil
	}
	return header.ParseCPU(data.(string))
}

func (c *Config) verify() error {
	if c.Arch != 0 && !c.Arch.Valid() {
		return errors.Wrapf(types.ErrUnsupportedCPU, "arch %#x", uint32(c.Arch))
	}
	return nil
}

// Options returns the macho.Open options selected by the configuration.
func (c *Config) Options() []macho.Option {
	var opts []macho.Option
	if c.Arch != 0 {
		opts = append(opts, macho.WithArch(c.Arch))
	}
	if c.Lenient {
		opts = append(opts, macho.WithLenient())
	}
	return opts
}

// LoadConfig loads the configuration file
func LoadConfig() (*Config, error) {
	return load(viper.GetViper())
}

func load(v *viper.Viper) (*Config, error) {
	var c Config

	if err := v.Unmarshal(&c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		stringToCPUHook,
	))); err != nil {
		return nil, errors.Wrap(err, "config: failed to unmarshal")
	}

	if err := c.verify(); err != nil {
		return nil, errors.Wrap(err, "config: failed to verify")
	}

	return &c, nil
}

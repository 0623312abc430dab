package colors

import (
	"testing"

	"github.com/fatih/color"
)

func TestInit(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	on, off := true, false
	tests := []struct {
		name  string
		start bool // color.NoColor before Init
		force *bool
		want  bool // Enabled() after Init
	}{
		{"--color on a pipe", true, &on, true},
		{"--color=false on a tty", false, &off, false},
		{"no flag keeps tty detection", false, nil, true},
		{"no flag keeps pipe detection", true, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color.NoColor = tt.start
			Init(tt.force)
			if Enabled() != tt.want {
				t.Errorf("Expected Enabled() = %t, got %t", tt.want, Enabled())
			}
		})
	}
}

func TestOutputColors(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	// the escape sequence each piece of readmacho output is drawn with
	tests := []struct {
		use  string
		c    *color.Color
		want string
	}{
		{"header titles", BoldHiCyan(), "\x1b[1;96m"},
		{"selected fat slice", Green(), "\x1b[32m"},
		{"unmodeled load commands", Yellow(), "\x1b[33m"},
		{"load command names", HiMagenta(), "\x1b[95m"},
		{"load indexes", Faint(), "\x1b[2m"},
		{"symbol types", HiCyan(), "\x1b[96m"},
		{"symbol names", Bold(), "\x1b[1m"},
		{"undefined symbols", Red(), "\x1b[31m"},
		{"relocation addresses", HiBlue(), "\x1b[94m"},
		{"hexdump zeros", FaintHiBlue(), "\x1b[2;94m"},
		{"hexdump addresses", ItalicFaint(), "\x1b[3;2m"},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			color.NoColor = false
			if got, want := tt.c.Sprint("x"), tt.want+"x\x1b[0m"; got != want {
				t.Errorf("Expected %q, got %q", want, got)
			}
			color.NoColor = true
			if got := tt.c.Sprint("x"); got != "x" {
				t.Errorf("Expected plain text with colors off, got %q", got)
			}
		})
	}
}

package header

import (
	"errors"
	"testing"

	"github.com/blacktop/readmacho/pkg/macho/types"
)

func TestFlagsRoundTrip(t *testing.T) {
	var all uint32
	for _, f := range flagStrings {
		fs, err := DecodeFlags(f.I, types.Options{})
		if err != nil {
			t.Fatalf("DecodeFlags(%#x): %v", f.I, err)
		}
		if len(fs.Set) != 1 || fs.Mask() != f.I {
			t.Errorf("Expected single flag %s, got %v", f.S, fs.Set)
		}
		all |= f.I
	}
	fs, err := DecodeFlags(all, types.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if fs.Mask() != all {
		t.Errorf("Expected %#x, got %#x", all, fs.Mask())
	}
	for i := 1; i < len(fs.Set); i++ {
		if fs.Set[i-1] >= fs.Set[i] {
			t.Fatalf("flags not in ascending bit order: %v", fs.Set)
		}
	}
}

func TestFlagsUnknownBit(t *testing.T) {
	if _, err := DecodeFlags(0x10000001, types.Options{}); !errors.Is(err, types.ErrUnknownFlagBit) {
		t.Fatalf("Expected ErrUnknownFlagBit, got %v", err)
	}
	fs, err := DecodeFlags(0x10000001, types.Options{Lenient: true})
	if err != nil {
		t.Fatal(err)
	}
	if fs.Residual != 0x10000000 || !fs.Has(NoUndefs) || fs.Mask() != 0x10000001 {
		t.Errorf("unexpected lenient decode %+v", fs)
	}
	if got := fs.String(); got != "NoUndefs, 0x10000000" {
		t.Errorf("Expected %q, got %q", "NoUndefs, 0x10000000", got)
	}
}

func TestFlagsEmpty(t *testing.T) {
	fs, err := DecodeFlags(0, types.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(fs.Set) != 0 || fs.Mask() != 0 || fs.String() != "" {
		t.Errorf("Expected empty flags, got %+v", fs)
	}
}

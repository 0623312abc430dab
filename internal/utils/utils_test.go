package utils

import (
	"errors"
	"testing"

	"github.com/blacktop/readmacho/internal/colors"
	"github.com/google/go-cmp/cmp"
)

func TestConvertStrToInt(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"42", 42, false},
		{"0x2a", 42, false},
		{"ff", 255, false},
		{"0xzz", 0, true},
		{"nope", 0, true},
	}
	for _, tt := range tests {
		got, err := ConvertStrToInt(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ConvertStrToInt(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ConvertStrToInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseIndexes(t *testing.T) {
	got, err := ParseIndexes([]string{"0", "3", "1"}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 3, 1}, got); diff != "" {
		t.Errorf("ParseIndexes mismatch (-want +got):\n%s", diff)
	}

	_, err = ParseIndexes([]string{"4"}, 4)
	var ie *IndexError
	if !errors.As(err, &ie) || ie.Index != 4 {
		t.Errorf("Expected IndexError for 4, got %v", err)
	}
	for _, bad := range []string{"x", "-1", "0x1", "1_0", "+1", ""} {
		if _, err := ParseIndexes([]string{bad}, 4); err == nil {
			t.Errorf("Expected error for index %q", bad)
		}
	}

	// zero padded indexes are decimal, as printed by the loads command
	got, err = ParseIndexes([]string{"000", "008", "010", "011"}, 12)
	if err != nil {
		t.Fatalf("zero padded: %v", err)
	}
	if diff := cmp.Diff([]int{0, 8, 10, 11}, got); diff != "" {
		t.Errorf("zero padded mismatch (-want +got):\n%s", diff)
	}
}

func TestHexDump(t *testing.T) {
	off := false
	colors.Init(&off)

	if got := HexDump(nil, 0); got != "" {
		t.Errorf("Expected empty dump, got %q", got)
	}
	got := HexDump([]byte("ABCDEFGHIJKLMNOPQR"), 0x1000)
	want := "0000000000001000:  41 42 43 44 45 46 47 48  49 4a 4b 4c 4d 4e 4f 50  |ABCDEFGHIJKLMNOP|\n" +
		"0000000000001010:  51 52                                             |QR|\n"
	if got != want {
		t.Errorf("HexDump mismatch\nwant %q\n got %q", want, got)
	}
}

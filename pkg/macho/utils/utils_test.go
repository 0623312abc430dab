package utils

import "testing"

func TestStringName(t *testing.T) {
	names := []IntName{{1, "One"}, {2, "Two"}}
	tests := []struct {
		i        uint32
		goSyntax bool
		want     string
	}{
		{1, false, "One"},
		{2, true, "macho.Two"},
		{7, false, "7"},
	}
	for _, tt := range tests {
		if got := StringName(tt.i, names, tt.goSyntax); got != tt.want {
			t.Errorf("StringName(%d) = %q, want %q", tt.i, got, tt.want)
		}
	}
	if Known(7, names) {
		t.Error("Known(7) should be false")
	}
}

func TestName16(t *testing.T) {
	n := Name16("__TEXT")
	if got := CString(n[:]); got != "__TEXT" {
		t.Errorf("Expected __TEXT, got %q", got)
	}
	full := Name16("0123456789abcdefXYZ")
	if got := CString(full[:]); got != "0123456789abcdef" {
		t.Errorf("Expected truncated 16 byte name, got %q", got)
	}
}

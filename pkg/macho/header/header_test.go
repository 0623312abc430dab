package header

import (
	"bytes"
	"errors"
	"testing"

	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/google/go-cmp/cmp"
)

func objHeader() *FileHeader {
	return &FileHeader{
		Magic: Magic64,
		CPU:   CPUIdentity{CPU: CPUAmd64, SubCPU: CPUSubtypeX86_64All},
		Type:  Obj,
		Ncmd:  2,
		Cmdsz: 42,
	}
}

func encode(t *testing.T, h Header, host types.Endian) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := h.Encode(types.NewWriter(&buf), host); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, data []byte, host types.Endian) Header {
	t.Helper()
	h, err := Read(types.NewReader(bytes.NewReader(data)), host, types.Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return h
}

func TestObjectHeaderRoundTrip(t *testing.T) {
	want := []byte{
		0xcf, 0xfa, 0xed, 0xfe, // magic
		0x07, 0x00, 0x00, 0x01, // x86_64
		0x03, 0x00, 0x00, 0x00, // All
		0x01, 0x00, 0x00, 0x00, // Obj
		0x02, 0x00, 0x00, 0x00, // ncmds
		0x2a, 0x00, 0x00, 0x00, // sizeofcmds
		0x00, 0x00, 0x00, 0x00, // flags
		0x00, 0x00, 0x00, 0x00, // reserved
	}
	got := encode(t, objHeader(), types.LittleEndian)
	if len(got) != FileHeaderSize64 {
		t.Fatalf("Expected %d bytes, got %d", FileHeaderSize64, len(got))
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Expected % x, got % x", want, got)
	}
	back := decode(t, got, types.LittleEndian)
	if diff := cmp.Diff(objHeader(), back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSwappedHeader(t *testing.T) {
	// a big-endian file read on a little-endian host
	data := []byte{
		0xfe, 0xed, 0xfa, 0xcf,
		0x01, 0x00, 0x00, 0x07,
		0x00, 0x00, 0x00, 0x03,
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x05,
		0x00, 0x00, 0x01, 0x00,
		0x00, 0x20, 0x00, 0x85,
		0x00, 0x00, 0x00, 0x00,
	}
	h := decode(t, data, types.LittleEndian).(*FileHeader)
	if h.Magic != Cigam64 {
		t.Errorf("Expected Cigam64, got %s", h.Magic)
	}
	if h.CPU.CPU != CPUAmd64 || h.Type != Exec || h.Ncmd != 5 || h.Cmdsz != 256 {
		t.Errorf("unexpected header %+v", h)
	}
	for _, f := range []Flag{NoUndefs, DyldLink, TwoLevel, PIE} {
		if !h.Flags.Has(f) {
			t.Errorf("Expected flag %s", f)
		}
	}
	if got := encode(t, h, types.LittleEndian); !bytes.Equal(got, data) {
		t.Errorf("Expected % x, got % x", data, got)
	}

	// the same bytes are native on a big-endian host
	native := decode(t, data, types.BigEndian).(*FileHeader)
	if native.Magic != Magic64 {
		t.Errorf("Expected Magic64 on a big-endian host, got %s", native.Magic)
	}
	if native.Flags.Mask() != h.Flags.Mask() || native.Ncmd != h.Ncmd {
		t.Error("host assumption should not change decoded fields")
	}
	if got := encode(t, native, types.BigEndian); !bytes.Equal(got, data) {
		t.Errorf("Expected % x, got % x", data, got)
	}
}

func TestHeader32(t *testing.T) {
	h := &FileHeader{
		Magic: Magic32,
		CPU:   CPUIdentity{CPU: CPUX86, SubCPU: CPUSubtypeX86All},
		Type:  Exec,
		Ncmd:  1,
		Cmdsz: 8,
		Flags: NewFlags(NoUndefs),
	}
	got := encode(t, h, types.LittleEndian)
	if len(got) != FileHeaderSize32 {
		t.Fatalf("Expected %d bytes, got %d", FileHeaderSize32, len(got))
	}
	if diff := cmp.Diff(h, decode(t, got, types.LittleEndian)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestHeaderErrors(t *testing.T) {
	good := encode(t, objHeader(), types.LittleEndian)
	patch := func(off int, v ...byte) []byte {
		b := append([]byte(nil), good...)
		copy(b[off:], v)
		return b
	}
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, types.ErrTruncatedInput},
		{"magic", []byte{0x7f, 'E', 'L', 'F', 0, 0, 0, 0}, types.ErrUnknownMagic},
		{"cpu", patch(4, 0x12, 0, 0, 0), types.ErrUnsupportedCPU},
		{"subtype", patch(8, 0x09, 0, 0, 0), types.ErrUnsupportedCPU},
		{"file type", patch(12, 0x0d, 0, 0, 0), types.ErrUnsupportedFileKind},
		{"flag bit", patch(24, 0, 0, 0, 0x10), types.ErrUnknownFlagBit},
		{"truncated flags", good[:26], types.ErrTruncatedInput},
		{"truncated reserved", good[:30], types.ErrTruncatedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Read(types.NewReader(bytes.NewReader(tt.data)), types.LittleEndian, types.Options{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if h != nil {
				t.Errorf("Expected no header on failure, got %v", h)
			}
		})
	}
}

func TestLenientFlags(t *testing.T) {
	h := objHeader()
	h.Flags = Flags{Set: []Flag{NoUndefs}, Residual: 0x10000000}
	data := encode(t, h, types.LittleEndian)
	if _, err := Read(types.NewReader(bytes.NewReader(data)), types.LittleEndian, types.Options{}); !errors.Is(err, types.ErrUnknownFlagBit) {
		t.Fatalf("Expected ErrUnknownFlagBit, got %v", err)
	}
	back, err := Read(types.NewReader(bytes.NewReader(data)), types.LittleEndian, types.Options{Lenient: true})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(h, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFatHeaderHostIndependent(t *testing.T) {
	fh := &FatHeader{
		Magic: MagicFat,
		Arches: []FatArch{
			{CPU: CPUIdentity{CPU: CPUAmd64, SubCPU: CPUSubtypeX86_64All}, Offset: 0x4000, Size: 0x1234, Align: 14},
			{CPU: CPUIdentity{CPU: CPUArm64, SubCPU: CPUSubtypeArm64E}, Offset: 0x8000, Size: 0x5678, Align: 14},
		},
	}
	le := encode(t, fh, types.LittleEndian)
	be := encode(t, fh, types.BigEndian)
	if !bytes.Equal(le, be) {
		t.Fatalf("fat header depends on host order:\nLE: % x\nBE: % x", le, be)
	}
	if len(le) != fh.Size() || fh.Size() != 48 {
		t.Fatalf("Expected 48 bytes, got %d", len(le))
	}
	prefix := []byte{0xca, 0xfe, 0xba, 0xbe, 0, 0, 0, 2, 0x01, 0, 0, 0x07}
	if !bytes.Equal(le[:len(prefix)], prefix) {
		t.Errorf("Expected prefix % x, got % x", prefix, le[:len(prefix)])
	}
	for _, host := range []types.Endian{types.LittleEndian, types.BigEndian} {
		back := decode(t, le, host)
		if !back.IsFat() {
			t.Fatalf("%s: expected a fat header", host)
		}
		if diff := cmp.Diff(fh, back); diff != "" {
			t.Errorf("%s: round trip mismatch (-want +got):\n%s", host, diff)
		}
	}
	if a, ok := fh.Arch(CPUArm64); !ok || a.Offset != 0x8000 {
		t.Errorf("Arch(arm64) = %+v, %v", a, ok)
	}
}

func TestReadFileHeaderRejectsFat(t *testing.T) {
	data := []byte{0xca, 0xfe, 0xba, 0xbe, 0, 0, 0, 0}
	if _, err := ReadFileHeader(types.NewReader(bytes.NewReader(data)), types.LittleEndian, types.Options{}); !errors.Is(err, types.ErrUnknownMagic) {
		t.Errorf("Expected ErrUnknownMagic, got %v", err)
	}
}

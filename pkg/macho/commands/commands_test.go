package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"runtime"
	"testing"

	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/blacktop/readmacho/pkg/macho/utils"
	"github.com/google/go-cmp/cmp"
)

func encodeLoad(t *testing.T, l LoadCommand, e types.Endian) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := l.Encode(types.NewWriter(&buf), e); err != nil {
		t.Fatalf("Encode(%s): %v", l.Command(), err)
	}
	return buf.Bytes()
}

func decodeLoad(t *testing.T, data []byte, e types.Endian, opts types.Options) (LoadCommand, int64) {
	t.Helper()
	r := types.NewReader(bytes.NewReader(data))
	l, err := Read(r, e, opts)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return l, r.Offset()
}

func textSegment(k int) *Segment64 {
	var sects []*Section64
	for i := 0; i < k; i++ {
		sects = append(sects, &Section64{
			SectName: utils.Name16([]string{"__text", "__stubs", "__cstring"}[i%3]),
			SegName:  utils.Name16("__TEXT"),
			Addr:     0x100000f00 + uint64(i)*0x40,
			Size:     0x40,
			Offset:   0xf00 + uint32(i)*0x40,
			Align:    4,
			Type:     Regular,
			Attrs:    NewSectionAttrs(AttrPureInstructions, AttrSomeInstructions),
		})
	}
	seg := NewSegment64("__TEXT", sects...)
	seg.Addr = 0x100000000
	seg.Memsz = 0x1000
	seg.Filesz = 0x1000
	seg.Maxprot = 5
	seg.Prot = 5
	return seg
}

func TestSegmentRoundTrip(t *testing.T) {
	for _, k := range []int{0, 1, 3} {
		for _, e := range []types.Endian{types.LittleEndian, types.BigEndian} {
			seg := textSegment(k)
			data := encodeLoad(t, seg, e)
			want := segment64Size + k*section64Size
			if len(data) != want {
				t.Fatalf("k=%d: Expected %d bytes, got %d", k, want, len(data))
			}
			l, consumed := decodeLoad(t, data, e, types.Options{})
			if consumed != int64(want) {
				t.Errorf("k=%d: Expected to consume %d bytes, consumed %d", k, want, consumed)
			}
			if diff := cmp.Diff(LoadCommand(seg), l); diff != "" {
				t.Errorf("k=%d %s: round trip mismatch (-want +got):\n%s", k, e, diff)
			}
			if again := encodeLoad(t, l, e); !bytes.Equal(again, data) {
				t.Errorf("k=%d %s: re-encode differs", k, e)
			}
		}
	}
	seg := textSegment(2)
	if seg.Section("__stubs") == nil || seg.Section("__data") != nil {
		t.Error("Section lookup failed")
	}
}

func TestSectionFlags(t *testing.T) {
	seg := textSegment(1)
	data := encodeLoad(t, seg, types.LittleEndian)
	flagsOff := segment64Size + 64
	patch := func(flags uint32) []byte {
		b := append([]byte(nil), data...)
		types.LittleEndian.ByteOrder().PutUint32(b[flagsOff:], flags)
		return b
	}

	if _, err := Read(types.NewReader(bytes.NewReader(patch(0x17))), types.LittleEndian, types.Options{}); !errors.Is(err, types.ErrUnsupportedSectionType) {
		t.Errorf("Expected ErrUnsupportedSectionType, got %v", err)
	}
	unknownAttr := patch(0x00800000 | uint32(SymbolStubs))
	if _, err := Read(types.NewReader(bytes.NewReader(unknownAttr)), types.LittleEndian, types.Options{}); !errors.Is(err, types.ErrUnknownFlagBit) {
		t.Errorf("Expected ErrUnknownFlagBit, got %v", err)
	}
	l, _ := decodeLoad(t, unknownAttr, types.LittleEndian, types.Options{Lenient: true})
	sect := l.(*Segment64).Sections[0]
	if sect.Type != SymbolStubs || sect.Attrs.Residual != 0x00800000 || sect.Flags() != 0x00800008 {
		t.Errorf("unexpected lenient section %+v", sect)
	}
	if again := encodeLoad(t, l, types.LittleEndian); !bytes.Equal(again, unknownAttr) {
		t.Error("lenient section did not round trip")
	}
}

func TestSegmentJSONNames(t *testing.T) {
	dat, err := json.Marshal(textSegment(1))
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		SegName  string
		Addr     uint64
		Sections []struct {
			SectName string
			SegName  string
		}
	}
	if err := json.Unmarshal(dat, &got); err != nil {
		t.Fatalf("Expected names as strings: %v\n%s", err, dat)
	}
	if got.SegName != "__TEXT" || got.Addr != 0x100000000 {
		t.Errorf("unexpected segment %+v", got)
	}
	if len(got.Sections) != 1 || got.Sections[0].SegName != "__TEXT" || got.Sections[0].SectName != textSegment(1).Sections[0].Name() {
		t.Errorf("unexpected sections %+v", got.Sections)
	}
}

func TestUnknown(t *testing.T) {
	tests := []struct {
		name string
		cmd  LoadCmd
		data []byte
	}{
		{"dylib", LoadCmdDylib, []byte("\x18\x00\x00\x00\x02\x00\x00\x00\x00\x00\x01\x00\x00\x00\x01\x00/usr/lib/libSystem.B.dylib\x00\x00")},
		{"empty", LoadCmd(0x7777), nil},
		{"main", LoadCmdMain, make([]byte, 16)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := types.NewWriter(&buf)
			w.PutUint32(types.LittleEndian, uint32(tt.cmd))
			w.PutUint32(types.LittleEndian, uint32(PrefixSize+len(tt.data)))
			w.Write(tt.data)
			w.Write([]byte{0xde, 0xad}) // trailing bytes belong to the next command

			l, consumed := decodeLoad(t, buf.Bytes(), types.LittleEndian, types.Options{})
			u, ok := l.(*Unknown)
			if !ok {
				t.Fatalf("Expected *Unknown, got %T", l)
			}
			if consumed != int64(PrefixSize+len(tt.data)) {
				t.Errorf("Expected to consume %d bytes, consumed %d", PrefixSize+len(tt.data), consumed)
			}
			if u.Cmd != tt.cmd || !bytes.Equal(u.Data, tt.data) || len(u.Data) != len(tt.data) {
				t.Errorf("Expected payload % x, got % x", tt.data, u.Data)
			}
			if err := u.Encode(types.NewWriter(&bytes.Buffer{}), types.LittleEndian); !errors.Is(err, types.ErrUnwritableUnknownCommand) {
				t.Errorf("Expected ErrUnwritableUnknownCommand, got %v", err)
			}
		})
	}
}

func TestUnknownTooSmall(t *testing.T) {
	data := []byte{0x77, 0x77, 0, 0, 4, 0, 0, 0}
	_, err := Read(types.NewReader(bytes.NewReader(data)), types.LittleEndian, types.Options{})
	var sm *types.SizeMismatchError
	if !errors.As(err, &sm) || sm.Expected != 8 || sm.Actual != 4 {
		t.Fatalf("Expected SizeMismatch{8, 4}, got %v", err)
	}
}

func TestDeclaredSizeBeyondInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		// unknown command claiming 2 GiB
		{"unknown", []byte{0x77, 0x77, 0, 0, 0xff, 0xff, 0xff, 0x7f, 1, 2, 3, 4}},
		// opaque thread flavor with a 0xffffffff word count
		{"thread", []byte{0x05, 0, 0, 0, 0x50, 0, 0, 0, 0x99, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before, after runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&before)
			_, err := Read(types.NewReader(bytes.NewReader(tt.data)), types.LittleEndian, types.Options{})
			runtime.ReadMemStats(&after)
			if !errors.Is(err, types.ErrTruncatedInput) {
				t.Fatalf("Expected ErrTruncatedInput, got %v", err)
			}
			if n := after.TotalAlloc - before.TotalAlloc; n > 1<<20 {
				t.Errorf("Expected the short input to fail cheaply, allocated %d bytes", n)
			}
		})
	}
}

func TestFixedCommands(t *testing.T) {
	id, _ := types.ParseUUID("2F8D4C3E-0C5C-3A86-9B3A-43E1B4D1A7C2")
	dysym := &Dysymtab{Prefix: Prefix{Cmd: LoadCmdDysymtab, Len: dysymtabSize}}
	dysym.Nlocalsym = 12
	dysym.Iextdefsym = 12
	dysym.Nextdefsym = 3
	dysym.Iundefsym = 15
	dysym.Nundefsym = 7
	dysym.Indirectsymoff = 0x8100
	dysym.Nindirectsyms = 9

	tests := []struct {
		name string
		load LoadCommand
		size int
	}{
		{"uuid", NewUUID(id), 24},
		{"symtab", &Symtab{Prefix: Prefix{Cmd: LoadCmdSymtab, Len: symtabSize}, Symoff: 0x8000, Nsyms: 22, Stroff: 0x8200, Strsize: 0x130}, 24},
		{"dysymtab", dysym, 80},
		{"source version", NewSourceVersion(types.NewSrcVersion(1300, 1, 2, 3, 4)), 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, e := range []types.Endian{types.LittleEndian, types.BigEndian} {
				data := encodeLoad(t, tt.load, e)
				if len(data) != tt.size {
					t.Fatalf("Expected %d bytes, got %d", tt.size, len(data))
				}
				l, _ := decodeLoad(t, data, e, types.Options{})
				if diff := cmp.Diff(tt.load, l); diff != "" {
					t.Errorf("%s: round trip mismatch (-want +got):\n%s", e, diff)
				}

				// declared size one word too large
				bad := append([]byte(nil), data...)
				e.ByteOrder().PutUint32(bad[4:], uint32(tt.size+4))
				bad = append(bad, 0, 0, 0, 0)
				_, err := Read(types.NewReader(bytes.NewReader(bad)), e, types.Options{})
				var sm *types.SizeMismatchError
				if !errors.As(err, &sm) || sm.Expected != uint32(tt.size) || sm.Actual != uint32(tt.size+4) {
					t.Errorf("%s: Expected SizeMismatch{%d, %d}, got %v", e, tt.size, tt.size+4, err)
				}
			}
		})
	}
}

func TestFixedEncodeSizeMismatch(t *testing.T) {
	u := NewUUID(types.UUID{})
	u.Len = 20
	if err := u.Encode(types.NewWriter(&bytes.Buffer{}), types.LittleEndian); !errors.Is(err, types.ErrSizeMismatch) {
		t.Errorf("Expected ErrSizeMismatch, got %v", err)
	}
}

func TestSourceVersionMasks(t *testing.T) {
	sv := NewSourceVersion(types.NewSrcVersion(1, 2, 3, 4, 5))
	if sv.Version.String() != "1.2.3.4.5" {
		t.Errorf("Expected 1.2.3.4.5, got %s", sv.Version)
	}
	if sv.Version.B() != 2<<30 {
		t.Errorf("Expected masked B %#x, got %#x", 2<<30, sv.Version.B())
	}
}

func TestThreadX86_64(t *testing.T) {
	regs := RegsAMD64{SP: 0x7ff7bfeff000, IP: 0x100000f50, FLAGS: 0x202, CS: 0x2b}
	th := NewUnixThread(regs)
	data := encodeLoad(t, th, types.LittleEndian)
	if len(data) != threadHeaderSize+X86ThreadState64Count*4 {
		t.Fatalf("Expected %d bytes, got %d", threadHeaderSize+X86ThreadState64Count*4, len(data))
	}
	l, _ := decodeLoad(t, data, types.LittleEndian, types.Options{})
	if diff := cmp.Diff(LoadCommand(th), l); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if ip, ok := l.(*Thread).EntryPoint(); !ok || ip != 0x100000f50 {
		t.Errorf("Expected entry 0x100000f50, got %#x", ip)
	}

	// count must match the flavor's layout
	bad := append([]byte(nil), data...)
	types.LittleEndian.ByteOrder().PutUint32(bad[12:], 40)
	var sm *types.SizeMismatchError
	if _, err := Read(types.NewReader(bytes.NewReader(bad)), types.LittleEndian, types.Options{}); !errors.As(err, &sm) || sm.Expected != 42 {
		t.Errorf("Expected SizeMismatch for count 40, got %v", err)
	}
}

func TestThreadUnknownFlavor(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	th := &Thread{
		Prefix: Prefix{Cmd: LoadCmdUnixThread, Len: threadHeaderSize + 12},
		Flavor: ThreadFlavor(0x99),
		Count:  3,
		Data:   payload,
	}
	for _, e := range []types.Endian{types.LittleEndian, types.BigEndian} {
		data := encodeLoad(t, th, e)
		if !bytes.Equal(data[threadHeaderSize:], payload) {
			t.Fatalf("Expected payload % x, got % x", payload, data[threadHeaderSize:])
		}
		l, consumed := decodeLoad(t, data, e, types.Options{})
		if consumed != threadHeaderSize+12 {
			t.Errorf("Expected to consume %d bytes, consumed %d", threadHeaderSize+12, consumed)
		}
		got := l.(*Thread)
		if got.Regs != nil || !bytes.Equal(got.Data, payload) {
			t.Errorf("Expected opaque payload % x, got % x", payload, got.Data)
		}
		if again := encodeLoad(t, got, e); !bytes.Equal(again, data) {
			t.Errorf("%s: re-encode differs", e)
		}
	}
}

func TestBuildVersion(t *testing.T) {
	bv := NewBuildVersion(types.MacOS, types.NewVersion(13, 0, 0), types.NewVersion(14, 2, 0),
		types.BuildToolVersion{Tool: types.Clang, Version: types.NewVersion(1500, 1, 0)},
		types.BuildToolVersion{Tool: types.Ld, Version: types.NewVersion(1022, 1, 0)},
	)
	data := encodeLoad(t, bv, types.LittleEndian)
	if len(data) != 24+2*8 || bv.Len != 40 {
		t.Fatalf("Expected 40 bytes, got %d", len(data))
	}
	l, consumed := decodeLoad(t, data, types.LittleEndian, types.Options{})
	if consumed != 40 {
		t.Errorf("Expected to consume 40 bytes, consumed %d", consumed)
	}
	if diff := cmp.Diff(LoadCommand(bv), l); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got := l.String(); got != "Platform: macOS, MinOS: 13.0.0, SDK: 14.2.0, Tools: clang (1500.1.0), ld (1022.1.0)" {
		t.Errorf("unexpected String() %q", got)
	}

	// tool list cut short
	if _, err := Read(types.NewReader(bytes.NewReader(data[:36])), types.LittleEndian, types.Options{}); !errors.Is(err, types.ErrTruncatedInput) {
		t.Errorf("Expected ErrTruncatedInput, got %v", err)
	}
}

func TestReadAll(t *testing.T) {
	id, _ := types.ParseUUID("00112233-4455-6677-8899-AABBCCDDEEFF")
	loads := []LoadCommand{
		textSegment(2),
		NewUUID(id),
		NewSourceVersion(types.NewSrcVersion(7, 0, 0, 0, 0)),
	}
	var buf bytes.Buffer
	if err := WriteAll(types.NewWriter(&buf), types.BigEndian, loads); err != nil {
		t.Fatal(err)
	}
	got, err := ReadAll(types.NewReader(bytes.NewReader(buf.Bytes())), types.BigEndian, uint32(len(loads)), types.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(loads, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if _, err := ReadAll(types.NewReader(bytes.NewReader(buf.Bytes())), types.BigEndian, 4, types.Options{}); !errors.Is(err, types.ErrTruncatedInput) {
		t.Errorf("Expected ErrTruncatedInput reading past the last command, got %v", err)
	}

	withUnknown := append(loads, &Unknown{Prefix: Prefix{Cmd: LoadCmdMain, Len: 24}, Data: make([]byte, 16)})
	if err := WriteAll(types.NewWriter(&bytes.Buffer{}), types.BigEndian, withUnknown); !errors.Is(err, types.ErrUnwritableUnknownCommand) {
		t.Errorf("Expected ErrUnwritableUnknownCommand, got %v", err)
	}
}

func TestLoadCmdString(t *testing.T) {
	if LoadCmdSegment64.String() != "LC_SEGMENT_64" {
		t.Errorf("Expected LC_SEGMENT_64, got %s", LoadCmdSegment64)
	}
	if !Known(LoadCmdUUID) || Known(LoadCmdMain) {
		t.Error("unexpected shape table membership")
	}
}

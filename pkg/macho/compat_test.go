package macho

import (
	"bytes"
	"testing"

	gomacho "github.com/blacktop/go-macho"
	"github.com/blacktop/readmacho/pkg/macho/header"
	"github.com/blacktop/readmacho/pkg/macho/types"
)

// TestGoMachoAgrees decodes the same image with github.com/blacktop/go-macho
// and checks that both readers see the same layout.
func TestGoMachoAgrees(t *testing.T) {
	img := buildImage(t, header.Magic64)

	ours, err := NewFile(bytes.NewReader(img), WithHost(types.LittleEndian))
	if err != nil {
		t.Fatal(err)
	}
	theirs, err := gomacho.NewFile(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("go-macho NewFile: %v", err)
	}
	defer theirs.Close()

	if uint32(theirs.NCommands) != ours.Ncmd || uint32(theirs.SizeCommands) != ours.Cmdsz {
		t.Errorf("Expected %d commands (%d bytes), go-macho saw %d (%d bytes)",
			ours.Ncmd, ours.Cmdsz, theirs.NCommands, theirs.SizeCommands)
	}
	if uint32(theirs.CPU) != uint32(ours.CPU.CPU) {
		t.Errorf("Expected cpu %s, go-macho saw %s", ours.CPU.CPU, theirs.CPU)
	}

	segs := theirs.Segments()
	if len(segs) != len(ours.Segments()) {
		t.Fatalf("Expected %d segments, go-macho saw %d", len(ours.Segments()), len(segs))
	}
	for i, s := range ours.Segments() {
		if segs[i].Name != s.Name() || segs[i].Addr != s.Addr || segs[i].Nsect != uint32(len(s.Sections)) {
			t.Errorf("segment %d: Expected %s@%#x, go-macho saw %s@%#x", i, s.Name(), s.Addr, segs[i].Name, segs[i].Addr)
		}
	}

	syms, err := ours.Symbols()
	if err != nil {
		t.Fatal(err)
	}
	if theirs.Symtab == nil || len(theirs.Symtab.Syms) != len(syms) {
		t.Fatalf("Expected %d symbols from go-macho", len(syms))
	}
	for i, s := range syms {
		if theirs.Symtab.Syms[i].Name != s.Name || theirs.Symtab.Syms[i].Value != s.Value {
			t.Errorf("symbol %d: Expected %s@%#x, go-macho saw %s@%#x", i, s.Name, s.Value,
				theirs.Symtab.Syms[i].Name, theirs.Symtab.Syms[i].Value)
		}
	}
}

package commands

import (
	"fmt"
	"strings"

	"github.com/blacktop/readmacho/pkg/macho/types"
	"github.com/blacktop/readmacho/pkg/macho/utils"
	"github.com/pkg/errors"
)

const threadHeaderSize = PrefixSize + 8

// A ThreadFlavor selects the layout of a thread state.
type ThreadFlavor uint32

const (
	X86ThreadState32 ThreadFlavor = 1
	X86FloatState32  ThreadFlavor = 2
	X86ThreadState64 ThreadFlavor = 4
	X86FloatState64  ThreadFlavor = 5
	X86ThreadState   ThreadFlavor = 7
	X86DebugState64  ThreadFlavor = 11
)

// X86ThreadState64Count is the size of an x86_thread_state64_t in 32-bit words.
const X86ThreadState64Count = 42

var threadFlavorStrings = []utils.IntName{
	{uint32(X86ThreadState32), "x86_THREAD_STATE32"},
	{uint32(X86FloatState32), "x86_FLOAT_STATE32"},
	{uint32(X86ThreadState64), "x86_THREAD_STATE64"},
	{uint32(X86FloatState64), "x86_FLOAT_STATE64"},
	{uint32(X86ThreadState), "x86_THREAD_STATE"},
	{uint32(X86DebugState64), "x86_DEBUG_STATE64"},
}

func (f ThreadFlavor) String() string { return utils.StringName(uint32(f), threadFlavorStrings, false) }

// RegsAMD64 is the Mach-O AMD64 register structure.
type RegsAMD64 struct {
	AX    uint64
	BX    uint64
	CX    uint64
	DX    uint64
	DI    uint64
	SI    uint64
	BP    uint64
	SP    uint64
	R8    uint64
	R9    uint64
	R10   uint64
	R11   uint64
	R12   uint64
	R13   uint64
	R14   uint64
	R15   uint64
	IP    uint64
	FLAGS uint64
	CS    uint64
	FS    uint64
	GS    uint64
}

func (r *RegsAMD64) String() string {
	var sb strings.Builder
	regs := []struct {
		name string
		val  uint64
	}{
		{"rax", r.AX}, {"rbx", r.BX}, {"rcx", r.CX}, {"rdx", r.DX},
		{"rdi", r.DI}, {"rsi", r.SI}, {"rbp", r.BP}, {"rsp", r.SP},
		{"r8", r.R8}, {"r9", r.R9}, {"r10", r.R10}, {"r11", r.R11},
		{"r12", r.R12}, {"r13", r.R13}, {"r14", r.R14}, {"r15", r.R15},
		{"rip", r.IP}, {"rflags", r.FLAGS}, {"cs", r.CS}, {"fs", r.FS},
		{"gs", r.GS},
	}
	for i, reg := range regs {
		fmt.Fprintf(&sb, "%6s %#016x", reg.name, reg.val)
		if i%4 == 3 || i == len(regs)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// A Thread is an LC_THREAD or LC_UNIXTHREAD command holding one thread
// state. x86_THREAD_STATE64 is decoded into Regs; any other flavor keeps
// its Count*4 bytes in Data.
type Thread struct {
	Prefix
	Flavor ThreadFlavor
	Count  uint32 // state size in 32-bit words
	Regs   *RegsAMD64
	Data   []byte
}

// NewUnixThread returns an LC_UNIXTHREAD command with an x86_64 register state.
func NewUnixThread(regs RegsAMD64) *Thread {
	return &Thread{
		Prefix: Prefix{Cmd: LoadCmdUnixThread, Len: threadHeaderSize + X86ThreadState64Count*4},
		Flavor: X86ThreadState64,
		Count:  X86ThreadState64Count,
		Regs:   &regs,
	}
}

func readThread(r *types.Reader, e types.Endian, cmd LoadCmd, size uint32, _ types.Options) (LoadCommand, error) {
	t := &Thread{Prefix: Prefix{Cmd: cmd, Len: size}}
	flavor, err := r.Uint32(e)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read thread flavor")
	}
	t.Flavor = ThreadFlavor(flavor)
	if t.Count, err = r.Uint32(e); err != nil {
		return nil, errors.Wrap(err, "failed to read thread state count")
	}

	if t.Flavor == X86ThreadState64 {
		if t.Count != X86ThreadState64Count {
			return nil, &types.SizeMismatchError{Record: t.Flavor.String(), Expected: X86ThreadState64Count, Actual: t.Count}
		}
		t.Regs = new(RegsAMD64)
		if err := r.Struct(e, t.Regs); err != nil {
			return nil, errors.Wrap(err, "failed to read x86_64 thread state")
		}
		return t, nil
	}

	if t.Data, err = r.ReadBytes(int(t.Count) * 4); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s state", t.Flavor)
	}
	return t, nil
}

func (t *Thread) Encode(w *types.Writer, e types.Endian) error {
	if err := t.put(w, e); err != nil {
		return err
	}
	if err := w.PutUint32(e, uint32(t.Flavor)); err != nil {
		return err
	}
	if err := w.PutUint32(e, t.Count); err != nil {
		return err
	}
	if t.Flavor == X86ThreadState64 {
		if t.Regs == nil || t.Count != X86ThreadState64Count {
			return &types.SizeMismatchError{Record: t.Flavor.String(), Expected: X86ThreadState64Count, Actual: t.Count}
		}
		return w.Struct(e, t.Regs)
	}
	if uint32(len(t.Data)) != t.Count*4 {
		return &types.SizeMismatchError{Record: t.Flavor.String(), Expected: t.Count * 4, Actual: uint32(len(t.Data))}
	}
	_, err := w.Write(t.Data)
	return err
}

// EntryPoint returns the initial instruction pointer of an x86_64 state.
func (t *Thread) EntryPoint() (uint64, bool) {
	if t.Regs == nil {
		return 0, false
	}
	return t.Regs.IP, true
}

func (t *Thread) String() string {
	if t.Regs != nil {
		return fmt.Sprintf("%s, Entry: %#016x", t.Flavor, t.Regs.IP)
	}
	return fmt.Sprintf("%s, Count: %d", t.Flavor, t.Count)
}

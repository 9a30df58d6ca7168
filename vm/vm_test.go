package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lookbusy1344/rvm/isa"
)

func assemble(instrs ...isa.Instruction) []uint16 {
	words := make([]uint16, len(instrs))
	for i, in := range instrs {
		words[i] = isa.Encode(in)
	}
	return words
}

func TestHaltImmediately(t *testing.T) {
	m := New()
	m.Load(isa.DefaultOrigin, assemble(isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapHalt}), 0)

	var out bytes.Buffer
	m.SetIO(strings.NewReader(""), &out)

	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.State != StateHalted {
		t.Errorf("State = %v, want StateHalted", m.State)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want empty", out.String())
	}
}

// An imm5 holds at most 15, so 'A' (65) is built up from in-range adds
// before OUT writes it.
func TestAddImmediateAndOutput(t *testing.T) {
	m := New()
	m.Load(isa.DefaultOrigin, assemble(
		isa.Instruction{Kind: isa.KindAddImm, DR: R0, SR1: R0, Imm5: 15},
		isa.Instruction{Kind: isa.KindAddImm, DR: R0, SR1: R0, Imm5: 15},
		isa.Instruction{Kind: isa.KindAddImm, DR: R0, SR1: R0, Imm5: 15},
		isa.Instruction{Kind: isa.KindAddImm, DR: R0, SR1: R0, Imm5: 15},
		isa.Instruction{Kind: isa.KindAddImm, DR: R0, SR1: R0, Imm5: 5},
		isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapOut},
		isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapHalt},
	), 0)

	var out bytes.Buffer
	m.SetIO(strings.NewReader(""), &out)

	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "A") {
		t.Errorf("output = %q, want it to contain %q", out.String(), "A")
	}
}

func TestBranchTakenNotTaken(t *testing.T) {
	taken := func() bool {
		m := New()
		m.Load(isa.DefaultOrigin, assemble(
			isa.Instruction{Kind: isa.KindAddImm, DR: R0, SR1: R0, Imm5: 0}, // sets Z
			isa.Instruction{Kind: isa.KindBr, Z: true, Offset9: 1},          // skip next instr
			isa.Instruction{Kind: isa.KindAddImm, DR: R1, SR1: R1, Imm5: 9}, // should be skipped
			isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapHalt},
		), 0)
		var out bytes.Buffer
		m.SetIO(strings.NewReader(""), &out)
		if err := m.Run(); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return m.Regs.R[R1] == 0
	}

	notTaken := func() bool {
		m := New()
		m.Load(isa.DefaultOrigin, assemble(
			isa.Instruction{Kind: isa.KindAddImm, DR: R0, SR1: R0, Imm5: 0}, // sets Z
			isa.Instruction{Kind: isa.KindBr, P: true, Offset9: 1},          // Z set, P not in mask: no branch
			isa.Instruction{Kind: isa.KindAddImm, DR: R1, SR1: R1, Imm5: 9},
			isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapHalt},
		), 0)
		var out bytes.Buffer
		m.SetIO(strings.NewReader(""), &out)
		if err := m.Run(); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return m.Regs.R[R1] == 9
	}

	if !taken() {
		t.Error("brz should branch when Z is set")
	}
	if !notTaken() {
		t.Error("brp should not branch when only Z is set")
	}
}

func TestNotAndFlag(t *testing.T) {
	m := New()
	m.Load(isa.DefaultOrigin, assemble(
		isa.Instruction{Kind: isa.KindAddImm, DR: R0, SR1: R0, Imm5: 0},
		isa.Instruction{Kind: isa.KindNot, DR: R0, SR: R0},
		isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapHalt},
	), 0)
	var out bytes.Buffer
	m.SetIO(strings.NewReader(""), &out)

	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Regs.R[R0] != 0xFFFF {
		t.Errorf("R0 = %#04x, want 0xFFFF", m.Regs.R[R0])
	}
	if m.Regs.COND != isa.FlagN {
		t.Errorf("COND = %#x, want FlagN", m.Regs.COND)
	}
}

func TestLeaAndPuts(t *testing.T) {
	m := New()
	// lea r0, #2 (PC-relative to the next word, so R0 points 3 words past
	// this instruction); puts; halt; "Hi" + NUL
	prog := assemble(
		isa.Instruction{Kind: isa.KindLea, DR: R0, Offset9: 2},
		isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapPuts},
		isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapHalt},
	)
	prog = append(prog, uint16('H'), uint16('i'), 0)
	m.Load(isa.DefaultOrigin, prog, 0)

	var out bytes.Buffer
	m.SetIO(strings.NewReader(""), &out)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "Hi" {
		t.Errorf("output = %q, want %q", out.String(), "Hi")
	}
}

func TestInU16OutU16Headless(t *testing.T) {
	m := New()
	m.Headless = true
	m.Load(isa.DefaultOrigin, assemble(
		isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapInU16},
		isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapOutU16},
		isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapHalt},
	), 0)

	var out bytes.Buffer
	m.SetIO(strings.NewReader("42\n"), &out)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Regs.R[R0] != 42 {
		t.Errorf("R0 = %d, want 42", m.Regs.R[R0])
	}
	if out.String() != "42\n" {
		t.Errorf("output = %q, want %q", out.String(), "42\n")
	}
}

func TestInU16InvalidInputIsFatal(t *testing.T) {
	m := New()
	m.Headless = true
	m.Load(isa.DefaultOrigin, assemble(
		isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapInU16},
		isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapHalt},
	), 0)

	var out bytes.Buffer
	m.SetIO(strings.NewReader("not-a-number\n"), &out)
	if err := m.Run(); err == nil {
		t.Fatal("Run: expected error for malformed IN_U16 input")
	}
	if m.State != StateError {
		t.Errorf("State = %v, want StateError", m.State)
	}
}

func TestTrapVectorOutOfRangeIsFatal(t *testing.T) {
	m := New()
	m.Load(isa.DefaultOrigin, assemble(isa.Instruction{Kind: isa.KindTrap, TrapVect: 0x99}), 0)
	var out bytes.Buffer
	m.SetIO(strings.NewReader(""), &out)
	if err := m.Run(); err == nil {
		t.Fatal("Run: expected error for out-of-range trap vector")
	}
}

func TestJsrSavesR7AndJumps(t *testing.T) {
	m := New()
	m.Load(isa.DefaultOrigin, assemble(
		isa.Instruction{Kind: isa.KindJsr, Offset11: 1},              // jumps over the next instr
		isa.Instruction{Kind: isa.KindAddImm, DR: R1, SR1: R1, Imm5: 9}, // skipped
		isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapHalt},
	), 0)
	var out bytes.Buffer
	m.SetIO(strings.NewReader(""), &out)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Regs.R[R1] != 0 {
		t.Errorf("R1 = %d, want 0 (jsr should have jumped past it)", m.Regs.R[R1])
	}
	// R7 held the return address (origin+1) right after the jsr executed.
	if m.Regs.R[R7] != isa.DefaultOrigin+1 {
		t.Errorf("R7 = %#04x, want %#04x", m.Regs.R[R7], isa.DefaultOrigin+1)
	}
}

func TestMaxCyclesAbortsRunawayProgram(t *testing.T) {
	m := New()
	m.MaxCycles = 10
	// An infinite loop: an always-taken branch with offset -1 retargets
	// itself forever.
	m.Load(isa.DefaultOrigin, assemble(
		isa.Instruction{Kind: isa.KindAddImm, DR: R0, SR1: R0, Imm5: 0}, // sets Z
		isa.Instruction{Kind: isa.KindBr, Z: true, N: true, P: true, Offset9: 0x1FF},
	), 0)
	var out bytes.Buffer
	m.SetIO(strings.NewReader(""), &out)
	if err := m.Run(); err == nil {
		t.Fatal("Run: expected cycle-limit error")
	}
	if m.State != StateError {
		t.Errorf("State = %v, want StateError", m.State)
	}
}

package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/lookbusy1344/rvm/isa"
)

// State is the current execution state of a VM.
type State int

const (
	StateHalted State = iota
	StateRunning
	StateError
)

// VM is the complete machine: register file, memory, and the execution
// state. Each VM value owns its own state; nothing prevents running several
// independent VMs, each with its own instance.
type VM struct {
	Regs   *Registers
	Memory *Memory
	State  State

	// Cycles counts fetched instructions since the last Reset. MaxCycles,
	// when non-zero, makes Run abort a runaway program instead of looping
	// forever on a program that never executes HALT.
	Cycles    uint64
	MaxCycles uint64

	// Headless suppresses the "input: "/"output: " prompts IN_U16/OUT_U16
	// print before blocking; see cmd/rvm's -headless flag.
	Headless bool

	LastError error

	Stdin  *bufio.Reader
	Stdout *bufio.Writer
}

// New returns a VM with a fresh register file and a zeroed address space,
// writing to os.Stdout and reading from os.Stdin by default.
func New() *VM {
	return &VM{
		Regs:      NewRegisters(),
		Memory:    NewMemory(),
		State:     StateHalted,
		MaxCycles: DefaultMaxCycles,
		Stdin:     bufio.NewReader(os.Stdin),
		Stdout:    bufio.NewWriter(os.Stdout),
	}
}

// Reset clears registers and memory and returns the VM to StateHalted.
func (vm *VM) Reset() {
	vm.Regs.Reset()
	vm.Memory.Reset()
	vm.State = StateHalted
	vm.Cycles = 0
	vm.LastError = nil
}

// SetIO redirects the VM's standard streams, e.g. for testing.
func (vm *VM) SetIO(in io.Reader, out io.Writer) {
	vm.Stdin = bufio.NewReader(in)
	vm.Stdout = bufio.NewWriter(out)
}

// Step fetches, decodes, and executes exactly one instruction.
func (vm *VM) Step() error {
	if vm.MaxCycles > 0 && vm.Cycles >= vm.MaxCycles {
		vm.State = StateError
		vm.LastError = fmt.Errorf("cycle limit exceeded (%d cycles)", vm.MaxCycles)
		return vm.LastError
	}

	ir := vm.Memory.Read(vm.Regs.PC)
	vm.Regs.PC = vm.Regs.PC + 1 // wraps modulo 2^16 via uint16 arithmetic
	vm.Cycles++

	inst := isa.Decode(ir)
	if err := vm.execute(inst); err != nil {
		vm.State = StateError
		vm.LastError = fmt.Errorf("execute failed at pc=%#04x: %w", vm.Regs.PC-1, err)
		return vm.LastError
	}
	return nil
}

// Run executes instructions until HALT sets State to StateHalted or an
// error occurs.
func (vm *VM) Run() error {
	vm.State = StateRunning
	for vm.State == StateRunning {
		if err := vm.Step(); err != nil {
			_ = vm.Stdout.Flush()
			return err
		}
	}
	_ = vm.Stdout.Flush()
	return nil
}

// Load copies words into memory starting at origin and sets PC to
// origin+offset. offset is normally zero.
func (vm *VM) Load(origin uint16, words []uint16, offset uint16) {
	vm.Memory.LoadWords(origin, words)
	vm.Regs.PC = origin + offset
	vm.State = StateHalted
}

package vm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/rvm/isa"
)

// trap dispatches a TRAP instruction to the handler for its vector. A vect
// outside GETC..OUT_U16 is a fatal VM error.
func (vm *VM) trap(vect uint16) error {
	switch vect {
	case isa.TrapGetc:
		return vm.trapGetc()
	case isa.TrapOut:
		return vm.trapOut()
	case isa.TrapPuts:
		return vm.trapPuts()
	case isa.TrapIn:
		return vm.trapIn()
	case isa.TrapPutsp:
		return nil // PUTSP is reserved and deliberately left a no-op
	case isa.TrapHalt:
		vm.State = StateHalted
		return vm.Stdout.Flush()
	case isa.TrapInU16:
		return vm.trapInU16()
	case isa.TrapOutU16:
		return vm.trapOutU16()
	default:
		return fmt.Errorf("vm: trap vector %#02x out of range [%#02x, %#02x]", vect, isa.TrapGetc, isa.TrapOutU16)
	}
}

// trapGetc reads one raw byte from stdin into R0, without echoing it.
func (vm *VM) trapGetc() error {
	if err := vm.Stdout.Flush(); err != nil {
		return fmt.Errorf("vm: trap GETC: flush stdout: %w", err)
	}
	b, err := vm.Stdin.ReadByte()
	if err != nil {
		return fmt.Errorf("vm: trap GETC: read stdin: %w", err)
	}
	vm.Regs.R[R0] = uint16(b)
	return nil
}

// trapOut writes the low byte of R0 to stdout.
func (vm *VM) trapOut() error {
	if err := vm.Stdout.WriteByte(byte(vm.Regs.R[R0])); err != nil {
		return fmt.Errorf("vm: trap OUT: write stdout: %w", err)
	}
	return vm.Stdout.Flush()
}

// trapPuts writes the low byte of each word starting at R0 until a zero
// word is reached.
func (vm *VM) trapPuts() error {
	addr := vm.Regs.R[R0]
	for {
		w := vm.Memory.Read(addr)
		if w == 0 {
			break
		}
		if err := vm.Stdout.WriteByte(byte(w)); err != nil {
			return fmt.Errorf("vm: trap PUTS: write stdout: %w", err)
		}
		addr++
	}
	return vm.Stdout.Flush()
}

// trapIn reads one raw byte from stdin into R0, echoing it back.
func (vm *VM) trapIn() error {
	if err := vm.Stdout.Flush(); err != nil {
		return fmt.Errorf("vm: trap IN: flush stdout: %w", err)
	}
	b, err := vm.Stdin.ReadByte()
	if err != nil {
		return fmt.Errorf("vm: trap IN: read stdin: %w", err)
	}
	vm.Regs.R[R0] = uint16(b)
	if err := vm.Stdout.WriteByte(b); err != nil {
		return fmt.Errorf("vm: trap IN: echo: %w", err)
	}
	return vm.Stdout.Flush()
}

// trapInU16 reads a line, parses it as an unsigned decimal, and places the
// result in R0. A malformed line is a fatal VM error.
func (vm *VM) trapInU16() error {
	if !vm.Headless {
		if _, err := vm.Stdout.WriteString("input: "); err != nil {
			return fmt.Errorf("vm: trap IN_U16: write prompt: %w", err)
		}
	}
	if err := vm.Stdout.Flush(); err != nil {
		return fmt.Errorf("vm: trap IN_U16: flush stdout: %w", err)
	}
	line, err := vm.Stdin.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("vm: trap IN_U16: read stdin: %w", err)
	}
	n, convErr := strconv.ParseUint(strings.TrimSpace(line), 10, 16)
	if convErr != nil {
		return fmt.Errorf("vm: trap IN_U16: invalid unsigned decimal %q: %w", strings.TrimSpace(line), convErr)
	}
	vm.Regs.R[R0] = uint16(n)
	return nil
}

// trapOutU16 writes R0 as an unsigned decimal number followed by a newline.
func (vm *VM) trapOutU16() error {
	if !vm.Headless {
		if _, err := vm.Stdout.WriteString("output: "); err != nil {
			return fmt.Errorf("vm: trap OUT_U16: write prompt: %w", err)
		}
	}
	if _, err := vm.Stdout.WriteString(strconv.FormatUint(uint64(vm.Regs.R[R0]), 10)); err != nil {
		return fmt.Errorf("vm: trap OUT_U16: write value: %w", err)
	}
	if err := vm.Stdout.WriteByte('\n'); err != nil {
		return fmt.Errorf("vm: trap OUT_U16: write newline: %w", err)
	}
	return vm.Stdout.Flush()
}

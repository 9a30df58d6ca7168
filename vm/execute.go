package vm

import (
	"fmt"

	"github.com/lookbusy1344/rvm/isa"
)

// execute carries out one decoded instruction against vm's register file and
// memory. vm.Regs.PC has already been incremented past the instruction word,
// so PC-relative handlers compute against the address of the *next*
// instruction.
func (vm *VM) execute(inst isa.Instruction) error {
	switch inst.Kind {
	case isa.KindBr:
		mask := uint16(0)
		if inst.N {
			mask |= isa.FlagN
		}
		if inst.Z {
			mask |= isa.FlagZ
		}
		if inst.P {
			mask |= isa.FlagP
		}
		if vm.Regs.COND&mask != 0 {
			vm.Regs.PC += isa.SignExtend(inst.Offset9, 9)
		}

	case isa.KindAddReg:
		vm.Regs.R[inst.DR] = vm.Regs.R[inst.SR1] + vm.Regs.R[inst.SR2]
		vm.Regs.UpdateFlags(inst.DR)

	case isa.KindAddImm:
		vm.Regs.R[inst.DR] = vm.Regs.R[inst.SR1] + isa.SignExtend(inst.Imm5, 5)
		vm.Regs.UpdateFlags(inst.DR)

	case isa.KindAndReg:
		vm.Regs.R[inst.DR] = vm.Regs.R[inst.SR1] & vm.Regs.R[inst.SR2]
		vm.Regs.UpdateFlags(inst.DR)

	case isa.KindAndImm:
		vm.Regs.R[inst.DR] = vm.Regs.R[inst.SR1] & isa.SignExtend(inst.Imm5, 5)
		vm.Regs.UpdateFlags(inst.DR)

	case isa.KindNot:
		vm.Regs.R[inst.DR] = ^vm.Regs.R[inst.SR]
		vm.Regs.UpdateFlags(inst.DR)

	case isa.KindLd:
		vm.Regs.R[inst.DR] = vm.Memory.Read(vm.Regs.PC + isa.SignExtend(inst.Offset9, 9))
		vm.Regs.UpdateFlags(inst.DR)

	case isa.KindLdi:
		addr := vm.Memory.Read(vm.Regs.PC + isa.SignExtend(inst.Offset9, 9))
		vm.Regs.R[inst.DR] = vm.Memory.Read(addr)
		vm.Regs.UpdateFlags(inst.DR)

	case isa.KindLdr:
		vm.Regs.R[inst.DR] = vm.Memory.Read(vm.Regs.R[inst.Base] + isa.SignExtend(inst.Offset6, 6))
		vm.Regs.UpdateFlags(inst.DR)

	case isa.KindLea:
		vm.Regs.R[inst.DR] = vm.Regs.PC + isa.SignExtend(inst.Offset9, 9)
		vm.Regs.UpdateFlags(inst.DR)

	case isa.KindSt:
		vm.Memory.Write(vm.Regs.PC+isa.SignExtend(inst.Offset9, 9), vm.Regs.R[inst.SR])

	case isa.KindSti:
		addr := vm.Memory.Read(vm.Regs.PC + isa.SignExtend(inst.Offset9, 9))
		vm.Memory.Write(addr, vm.Regs.R[inst.SR])

	case isa.KindStr:
		vm.Memory.Write(vm.Regs.R[inst.Base]+isa.SignExtend(inst.Offset6, 6), vm.Regs.R[inst.SR])

	case isa.KindJmp:
		vm.Regs.PC = vm.Regs.R[inst.Base]

	case isa.KindJsr:
		vm.Regs.R[R7] = vm.Regs.PC
		vm.Regs.PC += isa.SignExtend(inst.Offset11, 11)

	case isa.KindJsrr:
		vm.Regs.R[R7] = vm.Regs.PC
		vm.Regs.PC = vm.Regs.R[inst.Base]

	case isa.KindRti, isa.KindRes:
		// No-op: this machine has no supervisor mode and no reserved behavior.

	case isa.KindTrap:
		return vm.trap(inst.TrapVect)

	default:
		return fmt.Errorf("vm: unhandled instruction kind %d", inst.Kind)
	}
	return nil
}

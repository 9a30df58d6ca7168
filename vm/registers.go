package vm

import "github.com/lookbusy1344/rvm/isa"

// Register aliases for convenience.
const (
	R0 = 0
	R1 = 1
	R2 = 2
	R3 = 3
	R4 = 4
	R5 = 5
	R6 = 6
	R7 = 7
)

// Registers holds the machine's general-purpose register file plus the two
// special registers PC and COND. PC and COND never appear in an instruction
// word's register fields.
type Registers struct {
	R    [isa.RegisterCount]uint16
	PC   uint16
	COND uint16
}

// NewRegisters returns a zeroed register file.
func NewRegisters() *Registers {
	return &Registers{}
}

// Reset zeroes every register, including PC and COND.
func (r *Registers) Reset() {
	for i := range r.R {
		r.R[i] = 0
	}
	r.PC = 0
	r.COND = 0
}

// UpdateFlags sets COND from the sign of R[n] under two's-complement: Z if
// zero, N if the high bit is set, P otherwise.
func (r *Registers) UpdateFlags(n int) {
	v := r.R[n]
	switch {
	case v == 0:
		r.COND = isa.FlagZ
	case v&0x8000 != 0:
		r.COND = isa.FlagN
	default:
		r.COND = isa.FlagP
	}
}

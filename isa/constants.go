// Package isa defines the instruction set this machine executes: the 16-bit
// word format, opcode tags, trap vectors, and the bit layouts used by both
// the encoder (assembler) and the decoder (VM).
package isa

// ============================================================================
// Word and register layout
// ============================================================================

const (
	WordSize      = 16     // bits per machine word
	WordMask      = 0xFFFF // mask for 16-bit wraparound
	RegisterCount = 8      // R0-R7

	// Condition flags, packed into the low 3 bits of COND.
	FlagP = 0b001 // positive
	FlagZ = 0b010 // zero
	FlagN = 0b100 // negative
)

// ============================================================================
// Opcodes — top 4 bits of every instruction word
// ============================================================================

const (
	OpBr   = 0x0
	OpAdd  = 0x1
	OpLd   = 0x2
	OpSt   = 0x3
	OpJsr  = 0x4
	OpAnd  = 0x5
	OpLdr  = 0x6
	OpStr  = 0x7
	OpRti  = 0x8
	OpNot  = 0x9
	OpLdi  = 0xA
	OpSti  = 0xB
	OpJmp  = 0xC
	OpRes  = 0xD
	OpLea  = 0xE
	OpTrap = 0xF
)

// ============================================================================
// Trap vectors
// ============================================================================

const (
	TrapGetc   = 0x20
	TrapOut    = 0x21
	TrapPuts   = 0x22
	TrapIn     = 0x23
	TrapPutsp  = 0x24
	TrapHalt   = 0x25
	TrapInU16  = 0x26
	TrapOutU16 = 0x27
)

// ============================================================================
// Bit shift positions and masks shared by encoder and decoder
// ============================================================================

const (
	OpcodeShift = 12
	OpcodeMask  = 0xF

	DRShift  = 9 // destination register field, bits [11:9]
	SR1Shift = 6 // first source register field, bits [8:6]
	RegMask  = 0x7

	ImmFlagBit = 5 // bit [5] of an Add/And word: 1 selects the immediate form

	Imm5Mask     = 0x1F
	Offset6Mask  = 0x3F
	Offset9Mask  = 0x1FF
	Offset11Mask = 0x7FF

	JsrFlagBit = 11 // bit [11] of a Jsr/Jsrr word: 1 selects the long (offset11) form

	TrapVectMask = 0xFF
)

// DefaultOrigin is where the assembler places a program and where the VM
// expects to find it absent an explicit origin override.
const DefaultOrigin = 0x3000

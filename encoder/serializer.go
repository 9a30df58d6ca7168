// Package encoder turns a parsed Program into the big-endian binary image
// the VM's loader expects.
package encoder

import (
	"encoding/binary"

	"github.com/lookbusy1344/rvm/isa"
	"github.com/lookbusy1344/rvm/parser"
)

// Serialize encodes prog into an image: a 2-byte big-endian origin header
// (always isa.DefaultOrigin; user programs conventionally live at 0x3000)
// followed by each instruction's encoding, one big-endian word per
// instruction, in source order.
func Serialize(prog *parser.Program) []byte {
	out := make([]byte, 2+2*len(prog.Instructions))
	binary.BigEndian.PutUint16(out[0:2], isa.DefaultOrigin)
	for i, inst := range prog.Instructions {
		binary.BigEndian.PutUint16(out[2+2*i:4+2*i], isa.Encode(inst))
	}
	return out
}

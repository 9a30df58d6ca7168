package vm

import (
	"testing"

	"github.com/lookbusy1344/rvm/isa"
)

func TestUpdateFlags(t *testing.T) {
	cases := []struct {
		value uint16
		want  uint16
	}{
		{0, isa.FlagZ},
		{1, isa.FlagP},
		{0x7FFF, isa.FlagP},
		{0x8000, isa.FlagN},
		{0xFFFF, isa.FlagN},
	}
	for _, c := range cases {
		r := NewRegisters()
		r.R[R0] = c.value
		r.UpdateFlags(R0)
		if r.COND != c.want {
			t.Errorf("UpdateFlags(%#04x): COND = %#x, want %#x", c.value, r.COND, c.want)
		}
	}
}

func TestMemoryLoadWordsWraps(t *testing.T) {
	m := NewMemory()
	m.LoadWords(0xFFFE, []uint16{0xAAAA, 0xBBBB, 0xCCCC})
	if m.Read(0xFFFE) != 0xAAAA || m.Read(0xFFFF) != 0xBBBB || m.Read(0) != 0xCCCC {
		t.Error("LoadWords should wrap addresses modulo 2^16")
	}
}

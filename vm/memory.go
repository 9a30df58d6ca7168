package vm

// Memory is the machine's flat, unprotected 65536-word address space. Unlike
// a segmented model, there is exactly one invariant: every address in
// [0, 0xFFFF] is always readable and writable. There are no segments, no
// permissions, and no alignment requirement — every access is one word wide.
type Memory struct {
	words [1 << 16]uint16
}

// NewMemory returns a zeroed address space.
func NewMemory() *Memory {
	return &Memory{}
}

// Read returns the word stored at addr. addr wraps modulo 2^16.
func (m *Memory) Read(addr uint16) uint16 {
	return m.words[addr]
}

// Write stores value at addr. addr wraps modulo 2^16.
func (m *Memory) Write(addr, value uint16) {
	m.words[addr] = value
}

// Reset clears every word to zero.
func (m *Memory) Reset() {
	for i := range m.words {
		m.words[i] = 0
	}
}

// LoadWords copies words into memory starting at origin, wrapping addresses
// modulo 2^16 the same way any other memory write does.
func (m *Memory) LoadWords(origin uint16, words []uint16) {
	addr := origin
	for _, w := range words {
		m.words[addr] = w
		addr++
	}
}

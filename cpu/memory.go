// Package cpu implements the core of a cycle-accurate DCPU-16 emulator: the
// instruction decoder and the cycle-driven execution engine. See the package
// doc comments on Machine, StepCycle, and the other Step* methods for the pieces
// that make up that engine.
package cpu

const (
	// MemSize is the number of addressable words: the DCPU-16 has a flat,
	// word-addressed 65536-word memory.
	MemSize = 0x10000
	// ResetSP is the stack pointer value after a reset.
	ResetSP = 0xFFFF
)

// Reg identifies one of the eight general-purpose registers.
type Reg int

const (
	A Reg = iota
	B
	C
	X
	Y
	Z
	I
	J
)

var regNames = [...]string{"A", "B", "C", "X", "Y", "Z", "I", "J"}

// RegisterName returns the canonical one-letter name of a general register,
// or "" if reg is out of range.
func RegisterName(reg Reg) string {
	if reg < A || reg > J {
		return ""
	}
	return regNames[reg]
}

// Memory is the flat 65536-word store shared by every other component. It
// has no bounds-checking because every address is already a 16-bit value
// (the type system makes out-of-range addresses unrepresentable).
type Memory struct {
	words [MemSize]uint16
}

// Read returns the word at addr.
func (m *Memory) Read(addr uint16) uint16 {
	return m.words[addr]
}

// Write stores val at addr.
func (m *Memory) Write(addr uint16, val uint16) {
	m.words[addr] = val
}

// Load copies words into memory starting at addr, wrapping around address
// 0xFFFF if the block runs past the end of memory.
func (m *Memory) Load(addr uint16, words []uint16) {
	for _, w := range words {
		m.words[addr] = w
		addr++
	}
}

// Snapshot returns a copy of the first n words of memory starting at addr,
// truncated if it would run past the end of memory.
func (m *Memory) Snapshot(addr uint16, n int) []uint16 {
	if int(addr)+n > MemSize {
		n = MemSize - int(addr)
	}
	if n <= 0 {
		return nil
	}
	out := make([]uint16, n)
	copy(out, m.words[addr:int(addr)+n])
	return out
}

// Registers holds the eight general registers and the three special
// registers (PC, SP, O). It is pure state, mutated by every other
// component in this package.
type Registers struct {
	gp [8]uint16
	pc uint16
	sp uint16
	o  uint16
}

// reset restores the power-on/reset values: all words zero except SP,
// which resets to 0xFFFF.
func (r *Registers) reset() {
	r.gp = [8]uint16{}
	r.pc = 0
	r.sp = ResetSP
	r.o = 0
}

// Get returns the value of a general register.
func (r *Registers) Get(reg Reg) uint16 { return r.gp[reg] }

// Set stores val into a general register.
func (r *Registers) Set(reg Reg, val uint16) { r.gp[reg] = val }

// PC returns the program counter.
func (r *Registers) PC() uint16 { return r.pc }

// SetPC stores the program counter, wrapping modulo 2^16 (the uint16 type
// already does this on assignment).
func (r *Registers) SetPC(val uint16) { r.pc = val }

// SP returns the stack pointer.
func (r *Registers) SP() uint16 { return r.sp }

// SetSP stores the stack pointer.
func (r *Registers) SetSP(val uint16) { r.sp = val }

// O returns the overflow register.
func (r *Registers) O() uint16 { return r.o }

// SetO stores the overflow register.
func (r *Registers) SetO(val uint16) { r.o = val }

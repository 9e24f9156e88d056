package cpu

// refKind tags the location (or lack of one) an OpRef designates.
type refKind int

const (
	refRegister refKind = iota
	refSP
	refPC
	refO
	refMemory
	refImmediate
)

// OpRef is the operand resolver's output: a write-capable reference to
// where an operand's value lives, or a read-only immediate. Reads and
// writes pattern-match on kind, and the Immediate arm of a write does
// nothing.
type OpRef struct {
	kind refKind
	reg  Reg
	addr uint16
	imm  uint16
}

// Read returns the current value the reference designates.
func (ref OpRef) Read(m *Machine) uint16 {
	switch ref.kind {
	case refRegister:
		return m.Registers.Get(ref.reg)
	case refSP:
		return m.Registers.SP()
	case refPC:
		return m.Registers.PC()
	case refO:
		return m.Registers.O()
	case refMemory:
		return m.Memory.Read(ref.addr)
	case refImmediate:
		return ref.imm
	}
	return 0
}

// Write stores val through the reference. Writes to an Immediate ref are
// silently discarded: small literals and the next-word literal can never
// be mutated.
func (ref OpRef) Write(m *Machine, val uint16) {
	switch ref.kind {
	case refRegister:
		m.Registers.Set(ref.reg, val)
	case refSP:
		m.Registers.SetSP(val)
	case refPC:
		m.Registers.SetPC(val)
	case refO:
		m.Registers.SetO(val)
	case refMemory:
		m.Memory.Write(ref.addr, val)
	case refImmediate:
		// discarded
	}
}

// ReadOnly reports whether writes to this reference are discarded.
func (ref OpRef) ReadOnly() bool { return ref.kind == refImmediate }

// takesExtraWord reports whether an operand code consumes an additional
// program word (and, in turn, one extra cycle) when resolved:
// next-word+register (0x10-0x17), [next word] (0x1E), and the next-word
// literal (0x1F).
func takesExtraWord(code uint16) bool {
	switch {
	case code >= 0x10 && code <= 0x17:
		return true
	case code == 0x1e, code == 0x1f:
		return true
	}
	return false
}

// resolve resolves a 6-bit operand code into an OpRef. It performs any
// side effects the resolution itself carries (PC advance to consume a
// next-word, SP adjust for PUSH/POP) immediately, and reports whether it
// consumed a program word doing so. The caller (the cycle scheduler)
// uses that to decide whether resolution spans a cycle boundary of its
// own or folds into the current cycle.
func (m *Machine) resolve(code uint16) (ref OpRef, consumedWord bool) {
	code &= 0x3f
	switch {
	case code <= 0x07:
		return OpRef{kind: refRegister, reg: Reg(code)}, false
	case code <= 0x0f:
		return OpRef{kind: refMemory, addr: m.Registers.Get(Reg(code - 0x08))}, false
	case code <= 0x17:
		next := m.fetchWord()
		base := m.Registers.Get(Reg(code - 0x10))
		return OpRef{kind: refMemory, addr: next + base}, true
	case code == 0x18: // POP
		addr := m.Registers.SP()
		m.Registers.SetSP(addr + 1)
		return OpRef{kind: refMemory, addr: addr}, false
	case code == 0x19: // PEEK
		return OpRef{kind: refMemory, addr: m.Registers.SP()}, false
	case code == 0x1a: // PUSH
		addr := m.Registers.SP() - 1
		m.Registers.SetSP(addr)
		return OpRef{kind: refMemory, addr: addr}, false
	case code == 0x1b:
		return OpRef{kind: refSP}, false
	case code == 0x1c:
		return OpRef{kind: refPC}, false
	case code == 0x1d:
		return OpRef{kind: refO}, false
	case code == 0x1e:
		addr := m.fetchWord()
		return OpRef{kind: refMemory, addr: addr}, true
	case code == 0x1f:
		v := m.fetchWord()
		return OpRef{kind: refImmediate, imm: v}, true
	default: // 0x20-0x3f: small literal 0..31
		return OpRef{kind: refImmediate, imm: code - 0x20}, false
	}
}

// fetchWord reads the word at PC and advances PC by one. It is used both
// by the fetch stage and by operand resolution for next-word operands;
// in both cases a word consumed from the instruction stream advances PC
// immediately, at the time the operand is resolved.
func (m *Machine) fetchWord() uint16 {
	w := m.Memory.Read(m.Registers.PC())
	m.Registers.SetPC(m.Registers.PC() + 1)
	return w
}

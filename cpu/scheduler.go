package cpu

// stage names the scheduler's current position within an instruction.
type stage int

const (
	stageFetch stage = iota
	stageResolveA
	stageResolveB
	stageExecute
)

// StepCycle advances the machine by exactly one clock cycle, dispatching
// among fetch, operand-resolve, and execute. Multiple logical stages can
// complete within a single call to StepCycle when each of them is
// "instantaneous": an operand resolution that doesn't need an extra
// program word, or an opcode whose extra-cycle cost is zero, folds into
// whichever cycle reaches it rather than claiming a cycle of its own.
// The fetch stage is the one exception — it always claims a cycle by
// itself, so that the first cycle charged to any instruction is always
// a pure fetch.
func (m *Machine) StepCycle() {
	m.cycles++
	for {
		switch m.stage {
		case stageFetch:
			m.doFetch()
			return
		case stageResolveA:
			consumed := m.doResolveA()
			if consumed {
				return
			}
		case stageResolveB:
			consumed := m.doResolveB()
			if consumed {
				return
			}
		case stageExecute:
			m.doExecute()
			return
		}
	}
}

// doFetch implements S0. If skip is set, it discards the instruction at
// PC (advancing PC past it) instead of decoding it; otherwise it reads
// the instruction word, decodes it, and moves to operand resolution.
func (m *Machine) doFetch() {
	if m.skip {
		w := m.Memory.Read(m.Registers.PC())
		m.Registers.SetPC(m.Registers.PC() + instructionLength(w))
		m.skip = false
		m.inst = 0
		return
	}

	w := m.fetchWord()
	// A fetched word of 0 carries no decodable opcode (op=0, xop=0 is an
	// undefined extended opcode); inst==0 is this package's own
	// convention for "no current instruction", so a literal zero word is
	// treated the same way a malformed xop=0 instruction would behave:
	// one fetch cycle consumed, no further state touched.
	if w == 0 {
		m.inst = 0
		return
	}

	m.inst = w
	m.dec = decode(w)
	// Any extended opcode other than JSR is malformed: it costs only this
	// fetch cycle, its operand is never resolved, and PC moves past any
	// next-word its operand field names.
	if !m.dec.basic && m.dec.xop != XOPJSR {
		m.logf("malformed extended opcode 0x%02x at pc=0x%04x: treated as no-op", m.dec.xop, m.Registers.PC()-1)
		m.Registers.SetPC(m.Registers.PC() + instructionLength(w) - 1)
		m.inst = 0
		return
	}
	m.executeStarted = false
	m.stage = stageResolveA
}

// doResolveA implements S1: resolve operand field a (the sole operand for
// extended instructions). Returns true if this consumed a program word,
// meaning it claims this cycle for itself.
func (m *Machine) doResolveA() bool {
	ref, consumedWord := m.resolve(m.dec.a)
	m.aRef = ref
	if m.dec.basic {
		m.stage = stageResolveB
	} else {
		m.stage = stageExecute
	}
	return consumedWord
}

// doResolveB implements S2: resolve operand field b. Only reached for
// basic instructions.
func (m *Machine) doResolveB() bool {
	ref, consumedWord := m.resolve(m.dec.b)
	m.bRef = ref
	m.stage = stageExecute
	return consumedWord
}

// doExecute implements S3. On the first visit for an instruction it
// applies the opcode's effect (the write happens here) and computes how
// many cycles, beyond this one, the opcode still owes; further visits
// are idle burn cycles that simply count that debt down. Once the debt
// reaches zero the instruction is complete and the scheduler returns to
// S0.
func (m *Machine) doExecute() {
	if !m.executeStarted {
		m.executeStarted = true
		extra := m.applyExecuteEffect()
		m.burn = extra - 1
		if m.burn < 0 {
			m.burn = 0
		}
	} else {
		m.burn--
	}
	if m.burn <= 0 {
		m.finishInstruction()
	}
}

// finishInstruction resets the decoding working set to the "between
// instructions" state.
func (m *Machine) finishInstruction() {
	m.inst = 0
	m.aRef = OpRef{}
	m.bRef = OpRef{}
	m.executeStarted = false
	m.stage = stageFetch
}

// applyExecuteEffect computes and applies a decoded instruction's
// effect, returning the opcode's extra-cycle cost counted from the end of
// the fetch cycle, plus one more if a conditional test failed. The first
// of those cycles is the one this execute stage runs in, so doExecute
// burns one fewer than the value returned.
func (m *Machine) applyExecuteEffect() int {
	if !m.dec.basic {
		return m.applyExtended()
	}

	a := m.aRef.Read(m)
	b := m.bRef.Read(m)
	res := applyBasic(m.dec.op, a, b)

	if res.writeA {
		m.aRef.Write(m, res.value)
	}
	if res.setO {
		m.Registers.SetO(res.o)
	}

	extra := res.extraCycles
	if res.skip {
		m.skip = true
		extra++
	}
	return extra
}

// applyExtended applies an extended (xop-field) instruction's effect.
// The only extended opcode this architecture defines is JSR; any other
// xop is a malformed instruction and is treated as a no-op.
func (m *Machine) applyExtended() int {
	switch m.dec.xop {
	case XOPJSR:
		target := m.aRef.Read(m)
		m.pushValue(m.Registers.PC())
		m.Registers.SetPC(target)
		return 1
	default:
		m.logf("malformed extended opcode 0x%02x at pc=0x%04x: treated as no-op", m.dec.xop, m.Registers.PC())
		return 0
	}
}

// pushValue decrements SP and stores val at the new SP, the same
// push-then-write ordering the PUSH operand code uses.
func (m *Machine) pushValue(val uint16) {
	sp := m.Registers.SP() - 1
	m.Registers.SetSP(sp)
	m.Memory.Write(sp, val)
}

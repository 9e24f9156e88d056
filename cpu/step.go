package cpu

// StepCycles advances the machine by exactly n clock cycles, regardless
// of instruction boundaries.
func (m *Machine) StepCycles(n int) {
	for i := 0; i < n; i++ {
		m.StepCycle()
	}
}

// StepInstruction runs the machine until the current instruction — the
// one in flight, or a fresh one if the scheduler is idle — completes,
// and returns the number of cycles that took. If that instruction is a
// failed IFx test, the skip it sets is also consumed — the following
// instruction is fetched and discarded — before StepInstruction
// returns, so the caller never observes a pending skip in between two
// calls.
func (m *Machine) StepInstruction() uint64 {
	start := m.cycles
	m.StepCycle()
	for m.stage != stageFetch {
		m.StepCycle()
	}
	if m.skip {
		m.StepCycle()
	}
	return m.cycles - start
}

// StepUntilStuck runs whole instructions until it detects the
// single-instruction infinite loop pattern (classically `SUB PC, 1`):
// an instruction whose execution leaves PC exactly where it was before
// it ran. It returns the total number of cycles elapsed, including the
// cycles spent on the stuck instruction's one (detected) execution.
func (m *Machine) StepUntilStuck() uint64 {
	var total uint64
	for {
		pcBefore := m.GetPC()
		total += m.StepInstruction()
		if m.GetPC() == pcBefore {
			return total
		}
	}
}

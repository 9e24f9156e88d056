package cpu

import "log"

// Machine is a complete DCPU-16: its memory, its registers, and the
// decoding working set the scheduler uses to carry an instruction across
// cycle boundaries. Every exported method is safe to call between any
// two cycles, including mid-instruction — that's the entire point of
// driving it one cycle at a time instead of one instruction at a time.
type Machine struct {
	Memory    Memory
	Registers Registers

	// decoding working set, valid while an instruction is in flight.
	inst           uint16
	dec            decoded
	aRef           OpRef
	bRef           OpRef
	stage          stage
	executeStarted bool
	burn           int
	skip           bool

	cycles uint64

	// Logger receives diagnostics for malformed instructions. It
	// defaults to log.Default() and can be overridden per instance.
	Logger *log.Logger
}

// New returns a Machine in its reset state.
func New() *Machine {
	m := &Machine{Logger: log.Default()}
	m.Reset()
	return m
}

// Reset restores power-on state: all memory and general registers zero,
// SP at 0xFFFF, PC and O zero, no instruction in flight, skip cleared,
// and the scheduler back at its fetch stage.
func (m *Machine) Reset() {
	m.Memory = Memory{}
	m.Registers.reset()
	m.inst = 0
	m.dec = decoded{}
	m.aRef = OpRef{}
	m.bRef = OpRef{}
	m.stage = stageFetch
	m.executeStarted = false
	m.burn = 0
	m.skip = false
	m.cycles = 0
}

// Load copies words into memory starting at address addr.
func (m *Machine) Load(addr uint16, words []uint16) {
	m.Memory.Load(addr, words)
}

// GetRegister returns the current value of one of the eight general
// registers.
func (m *Machine) GetRegister(reg Reg) uint16 {
	return m.Registers.Get(reg)
}

// GetPC returns the program counter.
func (m *Machine) GetPC() uint16 { return m.Registers.PC() }

// GetSP returns the stack pointer.
func (m *Machine) GetSP() uint16 { return m.Registers.SP() }

// GetO returns the overflow register.
func (m *Machine) GetO() uint16 { return m.Registers.O() }

// GetMemory returns the word at addr.
func (m *Machine) GetMemory(addr uint16) uint16 {
	return m.Memory.Read(addr)
}

// Cycles returns the total number of cycles this machine has executed
// since the last Reset.
func (m *Machine) Cycles() uint64 { return m.cycles }

// CurrentInstruction returns the raw word of the instruction currently in
// flight, or 0 if the scheduler is idle at S0 with nothing fetched yet —
// the inst==0 invariant this package's data model is built around.
func (m *Machine) CurrentInstruction() uint16 { return m.inst }

// Skip reports whether the next fetched instruction will be discarded
// rather than executed (the effect of a failed IFx test).
func (m *Machine) Skip() bool { return m.skip }

func (m *Machine) logf(format string, args ...interface{}) {
	if m.Logger != nil {
		m.Logger.Printf(format, args...)
	}
}

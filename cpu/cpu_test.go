package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// encode packs an opcode and its two operand fields into an instruction
// word. For extended instructions (op==0), a carries the xop and b the
// sole operand.
func encode(op, a, b uint16) uint16 {
	return (op & 0xf) | ((a & 0x3f) << 4) | ((b & 0x3f) << 10)
}

// encodeExt packs an extended instruction: op field 0, xop in the a-field
// position, sole operand in the b-field position.
func encodeExt(xop, operand uint16) uint16 {
	return encode(0, xop, operand)
}

const litBase = 0x20 // small literal operand codes start at 0x20

func TestResetState(t *testing.T) {
	m := New()
	assert.EqualValues(t, 0, m.GetPC())
	assert.EqualValues(t, ResetSP, m.GetSP())
	assert.EqualValues(t, 0, m.GetO())
	assert.EqualValues(t, 0, m.CurrentInstruction())
	for r := A; r <= J; r++ {
		assert.EqualValues(t, 0, m.GetRegister(r), RegisterName(r))
	}
}

// A freshly reset machine, stepped for any number of cycles over an
// all-zero memory image, never mutates anything but PC (each zero word
// is treated as a one-cycle no-op and PC simply advances).
func TestZeroMemoryIsNoOp(t *testing.T) {
	m := New()
	for i := 0; i < 10; i++ {
		m.StepCycle()
	}
	assert.EqualValues(t, 10, m.GetPC())
	assert.EqualValues(t, ResetSP, m.GetSP())
	assert.EqualValues(t, 0, m.GetO())
}

// SET A, 0x30 loads the literal into A and leaves everything else
// untouched. 0x30 exceeds the small-literal range (0..31) so it is
// encoded as a next-word literal: [0x7C01, 0x0030].
func TestSetLiteral(t *testing.T) {
	m := New()
	m.Load(0, []uint16{0x7C01, 0x0030})
	cycles := m.StepInstruction()
	assert.EqualValues(t, 0x30, m.GetRegister(A))
	assert.EqualValues(t, 2, m.GetPC())
	assert.EqualValues(t, 0, m.GetO())
	assert.True(t, cycles > 0)
}

// SET A, 0x1F (the next-word literal) costs one more cycle than SET A, a
// small literal, and still advances PC past the extra word.
func TestSetNextWordLiteralCostsExtraCycle(t *testing.T) {
	mSmall := New()
	mSmall.Load(0, []uint16{encode(uint16(OpSET), 0x00, litBase)})
	smallCycles := mSmall.StepInstruction()

	mBig := New()
	mBig.Load(0, []uint16{encode(uint16(OpSET), 0x00, 0x1f), 0x1234})
	bigCycles := mBig.StepInstruction()

	assert.EqualValues(t, 0, mSmall.GetRegister(A))
	assert.EqualValues(t, 0x1234, mBig.GetRegister(A))
	assert.EqualValues(t, 2, mBig.GetPC())
	assert.Equal(t, smallCycles+1, bigCycles)
}

// ADD A, B sets the overflow register to exactly 1 (not some other
// truthy value) when the sum overflows 16 bits, and to 0 otherwise.
func TestAddOverflow(t *testing.T) {
	m := New()
	m.Registers.Set(A, 0xFFFF)
	m.Registers.Set(B, 1)
	m.Load(0, []uint16{encode(uint16(OpADD), 0x00, 0x01)})
	m.StepInstruction()
	assert.EqualValues(t, 0, m.GetRegister(A))
	assert.EqualValues(t, 1, m.GetO())

	m2 := New()
	m2.Registers.Set(A, 1)
	m2.Registers.Set(B, 1)
	m2.Load(0, []uint16{encode(uint16(OpADD), 0x00, 0x01)})
	m2.StepInstruction()
	assert.EqualValues(t, 2, m2.GetRegister(A))
	assert.EqualValues(t, 0, m2.GetO())
}

// SUB A, B sets O to 0xFFFF on underflow (A < B), 0 otherwise.
func TestSubUnderflow(t *testing.T) {
	m := New()
	m.Registers.Set(A, 0)
	m.Registers.Set(B, 1)
	m.Load(0, []uint16{encode(uint16(OpSUB), 0x00, 0x01)})
	m.StepInstruction()
	assert.EqualValues(t, 0xFFFF, m.GetRegister(A))
	assert.EqualValues(t, 0xFFFF, m.GetO())
}

func TestDivByZero(t *testing.T) {
	m := New()
	m.Registers.Set(A, 42)
	m.Registers.Set(B, 0)
	m.Load(0, []uint16{encode(uint16(OpDIV), 0x00, 0x01)})
	m.StepInstruction()
	assert.EqualValues(t, 0, m.GetRegister(A))
	assert.EqualValues(t, 0, m.GetO())
}

func TestModByZero(t *testing.T) {
	m := New()
	m.Registers.Set(A, 42)
	m.Registers.Set(B, 0)
	m.Load(0, []uint16{encode(uint16(OpMOD), 0x00, 0x01)})
	m.StepInstruction()
	assert.EqualValues(t, 0, m.GetRegister(A))
}

// DIV's overflow register is computed from A's value before the write,
// not after.
func TestDivOverflowUsesPreWriteA(t *testing.T) {
	m := New()
	m.Registers.Set(A, 7)
	m.Registers.Set(B, 2)
	m.Load(0, []uint16{encode(uint16(OpDIV), 0x00, 0x01)})
	m.StepInstruction()
	assert.EqualValues(t, 3, m.GetRegister(A))
	assert.EqualValues(t, uint16((uint32(7)<<16)/2), m.GetO())
}

func TestShlByFullWidth(t *testing.T) {
	m := New()
	m.Registers.Set(A, 0x1234)
	m.Load(0, []uint16{encode(uint16(OpSHL), 0x00, litBase+16)})
	m.StepInstruction()
	assert.EqualValues(t, 0, m.GetRegister(A))
	assert.EqualValues(t, 0x1234, m.GetO())
}

// AND performs a bitwise AND and touches no other state.
func TestAnd(t *testing.T) {
	m := New()
	m.Registers.Set(A, 0xF0F0)
	m.Registers.Set(B, 0x0FF0)
	m.Load(0, []uint16{encode(uint16(OpAND), 0x00, 0x01)})
	m.StepInstruction()
	assert.EqualValues(t, 0x00F0, m.GetRegister(A))
	assert.EqualValues(t, 0, m.GetO())
}

// A failed IFE test sets skip, which causes the following instruction
// to be discarded rather than executed; StepInstruction consumes that
// discard itself before returning, so the failing call already reflects
// both the extra IFx burn cycle and the one-cycle discard.
func TestIfeFailureSkipsNextInstruction(t *testing.T) {
	m := New()
	m.Registers.Set(A, 1)
	m.Registers.Set(B, 2)
	m.Load(0, []uint16{
		encode(uint16(OpIFE), 0x00, 0x01),         // IFE A, B -- fails, since A != B
		encode(uint16(OpSET), 0x02, litBase+0x05), // SET C, 5 -- discarded along with the failed IFE
		encode(uint16(OpSET), 0x02, litBase+0x07), // SET C, 7 -- should run
	})

	ifCycles := m.StepInstruction()
	assert.False(t, m.Skip(), "the skip must already be consumed when StepInstruction returns")
	assert.EqualValues(t, 0, m.GetRegister(C), "discarded instruction must not execute")

	m.StepInstruction()
	assert.EqualValues(t, 0x07, m.GetRegister(C))

	// a passing test costs two fewer cycles than a failing one: one for
	// the extra IFx burn cycle, one for discarding the skipped instruction.
	mPass := New()
	mPass.Registers.Set(A, 1)
	mPass.Registers.Set(B, 1)
	mPass.Load(0, []uint16{encode(uint16(OpIFE), 0x00, 0x01)})
	passCycles := mPass.StepInstruction()
	assert.Equal(t, passCycles+2, ifCycles)
}

// IFB is a bitwise AND test: it skips when (a & b) == 0, not when a > b.
func TestIfbIsBitwiseAnd(t *testing.T) {
	m := New()
	m.Registers.Set(A, 0x0F)
	m.Registers.Set(B, 0xF0)
	m.Load(0, []uint16{
		encode(uint16(OpIFB), 0x00, 0x01),
		encode(uint16(OpSET), 0x02, litBase+1),
	})
	m.StepInstruction()
	assert.False(t, m.Skip(), "the skip must already be consumed when StepInstruction returns")
	assert.EqualValues(t, 0, m.GetRegister(C), "disjoint bitmasks must fail the IFB test and discard the next instruction")
	assert.EqualValues(t, 2, m.GetPC())

	m2 := New()
	m2.Registers.Set(A, 0x0F)
	m2.Registers.Set(B, 0x01)
	m2.Load(0, []uint16{
		encode(uint16(OpIFB), 0x00, 0x01),
		encode(uint16(OpSET), 0x02, litBase+1),
	})
	m2.StepInstruction()
	assert.False(t, m2.Skip(), "overlapping bitmasks must pass the IFB test")
	m2.StepInstruction()
	assert.EqualValues(t, 1, m2.GetRegister(C), "the next instruction must run when the test passes")
}

// PUSH then POP round-trips a value through the stack and restores SP.
func TestPushPopRoundTrip(t *testing.T) {
	m := New()
	m.Registers.Set(A, 0xBEEF)
	startSP := m.GetSP()
	m.Load(0, []uint16{
		encode(uint16(OpSET), 0x1a, 0x00), // SET PUSH, A
		encode(uint16(OpSET), 0x01, 0x18), // SET B, POP
	})
	m.StepInstruction()
	assert.EqualValues(t, startSP-1, m.GetSP())
	m.StepInstruction()
	assert.EqualValues(t, startSP, m.GetSP())
	assert.EqualValues(t, 0xBEEF, m.GetRegister(B))
}

// JSR pushes the return address (PC after the JSR instruction, already
// advanced by fetch) and jumps to its operand.
func TestJsr(t *testing.T) {
	m := New()
	startSP := m.GetSP()
	m.Load(0, []uint16{
		encodeExt(uint16(XOPJSR), litBase+0x10),
	})
	m.StepInstruction()
	assert.EqualValues(t, 0x10, m.GetPC())
	assert.EqualValues(t, startSP-1, m.GetSP())
	assert.EqualValues(t, 1, m.GetMemory(m.GetSP()))
}

// Writes to a literal destination (small literal or next-word literal)
// are silently discarded.
func TestWriteToLiteralIsDiscarded(t *testing.T) {
	m := New()
	m.Load(0, []uint16{encode(uint16(OpSET), litBase+5, litBase+9)})
	assert.NotPanics(t, func() { m.StepInstruction() })
	assert.EqualValues(t, 1, m.GetPC())
}

// A malformed extended opcode is a one-cycle no-op: PC advances past it
// (and any next-word its operand consumed) and nothing else changes.
func TestMalformedExtendedOpcodeIsNoOp(t *testing.T) {
	m := New()
	m.Registers.Set(A, 0x1111)
	m.Load(0, []uint16{encodeExt(0x3f, 0x00)})
	m.StepInstruction()
	assert.EqualValues(t, 1, m.GetPC())
	assert.EqualValues(t, 0x1111, m.GetRegister(A))
	assert.EqualValues(t, ResetSP, m.GetSP())
}

// StepUntilStuck recognizes the classic single-instruction infinite
// loop and returns instead of spinning forever.
func TestStepUntilStuckDetectsSelfLoop(t *testing.T) {
	m := New()
	m.Load(0, []uint16{encode(uint16(OpSUB), 0x1c, litBase+1)}) // SUB PC, 1
	cycles := m.StepUntilStuck()
	assert.EqualValues(t, 0, m.GetPC())
	assert.True(t, cycles > 0)
}

// The cycle cost of a completed instruction always equals the fetch
// cycle, the dedicated resolve/execute cycle, any cycles consumed by
// reading extra operand words, any burn cycles an opcode's cost leaves
// beyond that dedicated cycle (one for DIV and MOD), and one more for a
// failed IFx test — the sum this package's scheduler is built to maintain.
func TestInstructionCycleAccounting(t *testing.T) {
	m := New()
	m.Load(0, []uint16{
		encode(uint16(OpSET), 0x00, 0x1f), // SET A, next-word literal
		0x0042,
	})
	cycles := m.StepInstruction()
	assert.EqualValues(t, 3, cycles) // fetch + resolve/execute + 1 extra word
}

func TestStepCyclesAdvancesExactlyN(t *testing.T) {
	m := New()
	m.StepCycles(7)
	assert.EqualValues(t, 7, m.Cycles())
}

package cpu

// basicResult carries everything a basic opcode's execute stage needs to
// apply: whether/what to write back to A, whether/what to set O to,
// whether the instruction sets skip, and how many cycles beyond the base
// fetch cycle it costs (the scheduler still charges one cycle after fetch
// when this is zero; operand-resolution cycles are accounted separately
// by the scheduler).
type basicResult struct {
	value       uint16
	writeA      bool
	o           uint16
	setO        bool
	skip        bool
	extraCycles int
}

// applyBasic computes the effect of a basic opcode given the (already
// read) operand values A and B. It never touches CPU state directly so it
// can be exercised and tested in isolation from the scheduler.
func applyBasic(op Opcode, a, b uint16) basicResult {
	switch op {
	case OpSET:
		return basicResult{value: b, writeA: true}
	case OpADD:
		sum := uint32(a) + uint32(b)
		o := uint16(0)
		if sum > 0xFFFF {
			o = 1
		}
		return basicResult{value: uint16(sum), writeA: true, o: o, setO: true, extraCycles: 1}
	case OpSUB:
		diff := int32(a) - int32(b)
		o := uint16(0)
		if a < b {
			o = 0xFFFF
		}
		return basicResult{value: uint16(diff), writeA: true, o: o, setO: true, extraCycles: 1}
	case OpMUL:
		prod := uint32(a) * uint32(b)
		return basicResult{value: uint16(prod), writeA: true, o: uint16(prod >> 16), setO: true, extraCycles: 1}
	case OpDIV:
		if b == 0 {
			return basicResult{value: 0, writeA: true, o: 0, setO: true, extraCycles: 2}
		}
		v := uint16(a / b)
		o := uint16((uint32(a) << 16) / uint32(b))
		return basicResult{value: v, writeA: true, o: o, setO: true, extraCycles: 2}
	case OpMOD:
		if b == 0 {
			return basicResult{value: 0, writeA: true, extraCycles: 2}
		}
		return basicResult{value: a % b, writeA: true, extraCycles: 2}
	case OpSHL:
		wide := uint32(a) << b
		return basicResult{value: uint16(wide), writeA: true, o: uint16(wide >> 16), setO: true, extraCycles: 1}
	case OpSHR:
		o := uint16((uint32(a) << 16) >> b)
		return basicResult{value: a >> b, writeA: true, o: o, setO: true, extraCycles: 1}
	case OpAND:
		return basicResult{value: a & b, writeA: true}
	case OpBOR:
		return basicResult{value: a | b, writeA: true}
	case OpXOR:
		return basicResult{value: a ^ b, writeA: true}
	case OpIFE:
		return basicResult{skip: a != b, extraCycles: 1}
	case OpIFN:
		return basicResult{skip: a == b, extraCycles: 1}
	case OpIFG:
		return basicResult{skip: !(a > b), extraCycles: 1}
	case OpIFB:
		return basicResult{skip: (a & b) == 0, extraCycles: 1}
	}
	return basicResult{}
}

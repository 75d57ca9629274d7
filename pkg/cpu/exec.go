package cpu

import "github.com/oisee/superopt64/pkg/inst"

// Exec returns the state that results from executing instr against state.
// All arithmetic is modular in 64 bits; signed operations use two's
// complement semantics throughout.
func Exec(state State, instr inst.Instruction) State {
	s := state
	resolve := func(o inst.Operand) uint64 { return o.Value(s.Get) }

	switch instr.Op {
	case inst.MovReg:
		s.Set(instr.Rd, s.Get(instr.Rn))

	case inst.MovImm:
		s.Set(instr.Rd, uint64(instr.Operand.Immediate()))

	case inst.Add:
		s.Set(instr.Rd, s.Get(instr.Rn)+resolve(instr.Operand))

	case inst.Sub:
		s.Set(instr.Rd, s.Get(instr.Rn)-resolve(instr.Operand))

	case inst.Mul:
		s.Set(instr.Rd, s.Get(instr.Rn)*s.Get(instr.Rm))

	case inst.Sdiv:
		s.Set(instr.Rd, uint64(sdiv(int64(s.Get(instr.Rn)), int64(s.Get(instr.Rm)))))

	case inst.Udiv:
		s.Set(instr.Rd, udiv(s.Get(instr.Rn), s.Get(instr.Rm)))

	case inst.And:
		s.Set(instr.Rd, s.Get(instr.Rn)&resolve(instr.Operand))

	case inst.Orr:
		s.Set(instr.Rd, s.Get(instr.Rn)|resolve(instr.Operand))

	case inst.Eor:
		s.Set(instr.Rd, s.Get(instr.Rn)^resolve(instr.Operand))

	case inst.Lsl:
		amt := resolve(instr.Operand) % 64
		s.Set(instr.Rd, s.Get(instr.Rn)<<amt)

	case inst.Lsr:
		amt := resolve(instr.Operand) % 64
		s.Set(instr.Rd, s.Get(instr.Rn)>>amt)

	case inst.Asr:
		amt := resolve(instr.Operand) % 64
		s.Set(instr.Rd, uint64(int64(s.Get(instr.Rn))>>amt))

	case inst.Cmp:
		a, b := s.Get(instr.Rn), resolve(instr.Operand)
		s.Flags = subFlags(a, b)

	case inst.Cmn:
		a, b := s.Get(instr.Rn), resolve(instr.Operand)
		s.Flags = addFlags(a, b)

	case inst.Tst:
		a, b := s.Get(instr.Rn), resolve(instr.Operand)
		s.Flags = tstFlags(a, b)

	case inst.Csel:
		if s.Flags.Holds(instr.Cond) {
			s.Set(instr.Rd, s.Get(instr.Rn))
		} else {
			s.Set(instr.Rd, s.Get(instr.Rm))
		}

	case inst.Csinc:
		if s.Flags.Holds(instr.Cond) {
			s.Set(instr.Rd, s.Get(instr.Rn))
		} else {
			s.Set(instr.Rd, s.Get(instr.Rm)+1)
		}

	case inst.Csinv:
		if s.Flags.Holds(instr.Cond) {
			s.Set(instr.Rd, s.Get(instr.Rn))
		} else {
			s.Set(instr.Rd, ^s.Get(instr.Rm))
		}

	case inst.Csneg:
		if s.Flags.Holds(instr.Cond) {
			s.Set(instr.Rd, s.Get(instr.Rn))
		} else {
			s.Set(instr.Rd, uint64(-int64(s.Get(instr.Rm))))
		}

	case inst.Nop:
		// identity on state

	default:
		// Unknown opcode: identity on state.
	}
	return s
}

// ExecSeq runs a sequence of instructions on a state, left to right.
func ExecSeq(state State, seq []inst.Instruction) State {
	s := state
	for _, instr := range seq {
		s = Exec(s, instr)
	}
	return s
}

// sdiv implements signed division with the ISA-defined edge cases:
// division by zero yields 0; MIN / -1 yields MIN.
func sdiv(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	if a == minInt64 && b == -1 {
		return minInt64
	}
	return a / b
}

// udiv implements unsigned division with division-by-zero yielding 0.
func udiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return a / b
}

const minInt64 = -1 << 63

// subFlags computes the four flags for Cmp(rn, op): result = rn - op.
func subFlags(a, b uint64) inst.Flags {
	result := a - b
	return inst.Flags{
		N: result>>63 == 1,
		Z: result == 0,
		C: a >= b,
		V: subOverflow(a, b, result),
	}
}

// addFlags computes the four flags for Cmn(rn, op): result = rn + op.
func addFlags(a, b uint64) inst.Flags {
	result := a + b
	return inst.Flags{
		N: result>>63 == 1,
		Z: result == 0,
		C: result < a, // unsigned carry-out
		V: addOverflow(a, b, result),
	}
}

// tstFlags computes the four flags for Tst(rn, op): result = rn & op.
func tstFlags(a, b uint64) inst.Flags {
	result := a & b
	return inst.Flags{
		N: result>>63 == 1,
		Z: result == 0,
		C: false,
		V: false,
	}
}

func addOverflow(a, b, result uint64) bool {
	// Signed overflow on addition: operands share a sign and differ from
	// the result's sign.
	return ((a^result)&(b^result))>>63 == 1
}

func subOverflow(a, b, result uint64) bool {
	// Signed overflow on subtraction: operands differ in sign and the
	// result's sign differs from the minuend's.
	return ((a^b)&(a^result))>>63 == 1
}

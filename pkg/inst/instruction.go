package inst

// OpCode identifies one of the 20 supported ISA operations, plus the
// zero-cost Nop marker used internally by stochastic search (SPEC_FULL.md
// §4.7). Nop is never encodable and never appears in the enumerative
// search alphabet.
type OpCode uint8

const (
	MovReg OpCode = iota
	MovImm
	Add
	Sub
	Mul
	Sdiv
	Udiv
	And
	Orr
	Eor
	Lsl
	Lsr
	Asr
	Cmp
	Cmn
	Tst
	Csel
	Csinc
	Csinv
	Csneg
	Nop
	OpCodeCount
)

// Instruction is a tagged variant over the 20 opcodes (plus Nop). Only the
// fields relevant to Op are meaningful; the rest are the zero value. Each
// Instruction is a plain value: copyable, comparable, and hashable.
type Instruction struct {
	Op      OpCode
	Rd      Register // destination, where applicable
	Rn      Register // first source register
	Rm      Register // second source register (three-register forms)
	Operand Operand  // second source operand (register-or-immediate forms)
	Cond    Condition
}

// hasDest reports whether Op writes Rd.
func (i Instruction) hasDest() bool {
	switch i.Op {
	case Cmp, Cmn, Tst, Nop:
		return false
	default:
		return true
	}
}

// SetsFlags reports whether Op updates N, Z, C, V.
func (i Instruction) SetsFlags() bool {
	switch i.Op {
	case Cmp, Cmn, Tst:
		return true
	default:
		return false
	}
}

// ReadsFlags reports whether Op consults the flags.
func (i Instruction) ReadsFlags() bool {
	switch i.Op {
	case Csel, Csinc, Csinv, Csneg:
		return true
	default:
		return false
	}
}

// Writes returns the set of registers this instruction writes (excluding
// XZR, which silently discards writes).
func (i Instruction) Writes() RegSet {
	if !i.hasDest() || i.Rd == XZR {
		return 0
	}
	return NewRegSet(i.Rd)
}

// Reads returns the set of registers this instruction reads as values
// (excluding XZR, which always reads as zero regardless of membership).
func (i Instruction) Reads() RegSet {
	var s RegSet
	add := func(r Register) {
		if r != XZR {
			s = s.Add(r)
		}
	}
	switch i.Op {
	case MovReg:
		add(i.Rn)
	case MovImm:
		// no register operands
	case Add, Sub, And, Orr, Eor, Lsl, Lsr, Asr:
		add(i.Rn)
		if !i.Operand.IsImmediate() {
			add(i.Operand.Register())
		}
	case Mul, Sdiv, Udiv:
		add(i.Rn)
		add(i.Rm)
	case Cmp, Cmn, Tst:
		add(i.Rn)
		if !i.Operand.IsImmediate() {
			add(i.Operand.Register())
		}
	case Csel, Csinc, Csinv, Csneg:
		add(i.Rn)
		add(i.Rm)
	case Nop:
	}
	return s
}

package symb

import "github.com/oisee/superopt64/pkg/inst"

// FlagTerms holds the four one-bit symbolic flag terms, mirroring
// cpu.State.Flags (never folded into a single nibble — SPEC_FULL.md §9).
type FlagTerms struct {
	N, Z, C, V *Term
}

// SymState is a symbolic machine state: a mapping from Register to Term,
// plus symbolic flags. NewSymState fills every register with a fresh Input
// term up front; XZR is hard-wired to the zero constant.
type SymState struct {
	Regs  [inst.RegisterCount]*Term
	Flags FlagTerms
}

// NewSymState seeds every register, and all four condition flags, with a
// fresh symbolic input, except XZR which reads as the constant zero term.
// The flags are live-in exactly like a live-in register: a window that
// reads a flag before any of its own instructions set it must see an
// unconstrained value, not a fixed false, or a conditional operation at the
// start of the window canonicalizes against a constant that need not hold
// for every reachable initial state (DESIGN.md's flag-live-in contract).
func NewSymState(b *Builder) SymState {
	var s SymState
	for r := inst.Register(0); r < inst.RegisterCount; r++ {
		s.Regs[r] = b.Input(uint8(r))
	}
	s.Regs[inst.XZR] = b.Const(0)
	s.Flags = FlagTerms{
		N: b.FlagInput(0),
		Z: b.FlagInput(1),
		C: b.FlagInput(2),
		V: b.FlagInput(3),
	}
	return s
}

func (s SymState) get(r inst.Register) *Term {
	return s.Regs[r]
}

func (s *SymState) set(r inst.Register, t *Term) {
	if r == inst.XZR {
		return
	}
	s.Regs[r] = t
}

func (s SymState) resolve(b *Builder, o inst.Operand) *Term {
	if o.IsImmediate() {
		return b.Const(uint64(o.Immediate()))
	}
	return s.get(o.Register())
}

// condTerm builds the one-bit term for whether condition c holds under
// flags f, following the same table as inst.Flags.Holds.
func condTerm(b *Builder, c inst.Condition, f FlagTerms) *Term {
	switch c {
	case inst.EQ:
		return f.Z
	case inst.NE:
		return b.BoolNot(f.Z)
	case inst.CS:
		return f.C
	case inst.CC:
		return b.BoolNot(f.C)
	case inst.MI:
		return f.N
	case inst.PL:
		return b.BoolNot(f.N)
	case inst.VS:
		return f.V
	case inst.VC:
		return b.BoolNot(f.V)
	case inst.HI:
		return b.BoolAnd(f.C, b.BoolNot(f.Z))
	case inst.LS:
		return b.BoolNot(b.BoolAnd(f.C, b.BoolNot(f.Z)))
	case inst.GE:
		return b.BoolEq(f.N, f.V)
	case inst.LT:
		return b.BoolNot(b.BoolEq(f.N, f.V))
	case inst.GT:
		return b.BoolAnd(b.BoolNot(f.Z), b.BoolEq(f.N, f.V))
	case inst.LE:
		return b.BoolNot(b.BoolAnd(b.BoolNot(f.Z), b.BoolEq(f.N, f.V)))
	default: // AL, NV
		return b.BoolConst(true)
	}
}

// Translate returns the successor symbolic state after instr, mirroring
// cpu.Exec exactly but over terms.
func Translate(b *Builder, state SymState, instr inst.Instruction) SymState {
	s := state
	resolve := func(o inst.Operand) *Term { return s.resolve(b, o) }

	switch instr.Op {
	case inst.MovReg:
		s.set(instr.Rd, s.get(instr.Rn))

	case inst.MovImm:
		s.set(instr.Rd, b.Const(uint64(instr.Operand.Immediate())))

	case inst.Add:
		s.set(instr.Rd, b.Add(s.get(instr.Rn), resolve(instr.Operand)))

	case inst.Sub:
		s.set(instr.Rd, b.Sub(s.get(instr.Rn), resolve(instr.Operand)))

	case inst.Mul:
		s.set(instr.Rd, b.Mul(s.get(instr.Rn), s.get(instr.Rm)))

	case inst.Sdiv:
		s.set(instr.Rd, b.Sdiv(s.get(instr.Rn), s.get(instr.Rm)))

	case inst.Udiv:
		s.set(instr.Rd, b.Udiv(s.get(instr.Rn), s.get(instr.Rm)))

	case inst.And:
		s.set(instr.Rd, b.And(s.get(instr.Rn), resolve(instr.Operand)))

	case inst.Orr:
		s.set(instr.Rd, b.Or(s.get(instr.Rn), resolve(instr.Operand)))

	case inst.Eor:
		s.set(instr.Rd, b.Xor(s.get(instr.Rn), resolve(instr.Operand)))

	// Shift amounts are taken mod 64 in the term itself, as cpu.Exec does.
	case inst.Lsl:
		s.set(instr.Rd, b.Shl(s.get(instr.Rn), b.And(resolve(instr.Operand), b.Const(63))))

	case inst.Lsr:
		s.set(instr.Rd, b.Lshr(s.get(instr.Rn), b.And(resolve(instr.Operand), b.Const(63))))

	case inst.Asr:
		s.set(instr.Rd, b.Ashr(s.get(instr.Rn), b.And(resolve(instr.Operand), b.Const(63))))

	case inst.Cmp:
		// Modeled as a flag-only subtraction with no destination register
		// (SPEC_FULL.md §9's Cmp resolution): the register map is never
		// written here.
		a, op := s.get(instr.Rn), resolve(instr.Operand)
		result := b.Sub(a, op)
		s.Flags = FlagTerms{
			N: b.Bit63(result),
			Z: b.IsZero(result),
			C: b.UGE(a, op),
			V: b.SOverflowSub(a, op, result),
		}

	case inst.Cmn:
		a, op := s.get(instr.Rn), resolve(instr.Operand)
		result := b.Add(a, op)
		s.Flags = FlagTerms{
			N: b.Bit63(result),
			Z: b.IsZero(result),
			C: b.UCarryAdd(a, op),
			V: b.SOverflowAdd(a, op, result),
		}

	case inst.Tst:
		a, op := s.get(instr.Rn), resolve(instr.Operand)
		result := b.And(a, op)
		s.Flags = FlagTerms{
			N: b.Bit63(result),
			Z: b.IsZero(result),
			C: b.BoolConst(false),
			V: b.BoolConst(false),
		}

	case inst.Csel:
		cond := condTerm(b, instr.Cond, s.Flags)
		s.set(instr.Rd, b.Ite(cond, s.get(instr.Rn), s.get(instr.Rm)))

	case inst.Csinc:
		cond := condTerm(b, instr.Cond, s.Flags)
		s.set(instr.Rd, b.Ite(cond, s.get(instr.Rn), b.Add(s.get(instr.Rm), b.Const(1))))

	case inst.Csinv:
		cond := condTerm(b, instr.Cond, s.Flags)
		s.set(instr.Rd, b.Ite(cond, s.get(instr.Rn), b.Not(s.get(instr.Rm))))

	case inst.Csneg:
		cond := condTerm(b, instr.Cond, s.Flags)
		s.set(instr.Rd, b.Ite(cond, s.get(instr.Rn), b.Neg(s.get(instr.Rm))))

	case inst.Nop:
		// identity

	default:
		// identity
	}
	return s
}

// TranslateSeq folds Translate over a sequence of instructions.
func TranslateSeq(b *Builder, state SymState, seq []inst.Instruction) SymState {
	s := state
	for _, instr := range seq {
		s = Translate(b, s, instr)
	}
	return s
}

package stoke

import (
	"math/rand/v2"

	"github.com/oisee/superopt64/pkg/inst"
)

// MutationKind identifies one of the four proposal shapes.
type MutationKind int

const (
	MutateOpcode MutationKind = iota
	MutateOperand
	MutateSwap
	MutateInstruction
)

// Mutator samples and applies proposals for the MCMC loop. Generalized
// from the donor engine's Mutator, with operand sampling drawn from the
// configured register/immediate pools instead of a fixed 8-bit alphabet.
type Mutator struct {
	rng  *rand.Rand
	regs []inst.Register
	imms []int64
}

// NewMutator creates a Mutator over the given pools.
func NewMutator(rng *rand.Rand, regs []inst.Register, imms []int64) *Mutator {
	return &Mutator{rng: rng, regs: regs, imms: imms}
}

// Mutate returns a new sequence derived from seq by one proposal, sampled
// from the default distribution (opcode 50%, operand 18%, swap 16%,
// instruction 16% — SPEC_FULL.md §4.7).
func (m *Mutator) Mutate(seq []inst.Instruction) []inst.Instruction {
	out := copySeq(seq)
	if len(out) == 0 {
		return out
	}
	pos := m.rng.IntN(len(out))

	switch m.sampleKind() {
	case MutateOpcode:
		out[pos] = m.replaceOpcode(out[pos])
	case MutateOperand:
		out[pos] = m.replaceOperand(out[pos])
	case MutateSwap:
		j := m.rng.IntN(len(out))
		out[pos], out[j] = out[j], out[pos]
	case MutateInstruction:
		out[pos] = m.randomInstruction()
	}
	return out
}

func (m *Mutator) sampleKind() MutationKind {
	r := m.rng.Float64()
	switch {
	case r < 0.50:
		return MutateOpcode
	case r < 0.68:
		return MutateOperand
	case r < 0.84:
		return MutateSwap
	default:
		return MutateInstruction
	}
}

// sameShapeOps returns opcodes sharing instr's operand shape.
func sameShapeOps(shape inst.Shape) []inst.OpCode {
	var out []inst.OpCode
	for _, op := range inst.AllOps() {
		if inst.Catalog[op].Shape == shape {
			out = append(out, op)
		}
	}
	return out
}

func (m *Mutator) replaceOpcode(in inst.Instruction) inst.Instruction {
	shape := inst.Catalog[in.Op].Shape
	candidates := sameShapeOps(shape)
	if len(candidates) == 0 {
		return in
	}
	in.Op = candidates[m.rng.IntN(len(candidates))]
	return in
}

func (m *Mutator) randomReg() inst.Register {
	return m.regs[m.rng.IntN(len(m.regs))]
}

func (m *Mutator) randomOperand() inst.Operand {
	if len(m.imms) > 0 && m.rng.IntN(2) == 0 {
		return inst.Imm(m.imms[m.rng.IntN(len(m.imms))])
	}
	return inst.Reg(m.randomReg())
}

func (m *Mutator) randomCond() inst.Condition {
	return inst.Condition(m.rng.IntN(int(inst.ConditionCount)))
}

func (m *Mutator) replaceOperand(in inst.Instruction) inst.Instruction {
	shape := inst.Catalog[in.Op].Shape
	switch shape {
	case inst.ShapeRdRn:
		if m.rng.IntN(2) == 0 {
			in.Rd = m.randomReg()
		} else {
			in.Rn = m.randomReg()
		}
	case inst.ShapeRdImm:
		if m.rng.IntN(2) == 0 {
			in.Rd = m.randomReg()
		} else {
			in.Operand = inst.Imm(m.imms[m.rng.IntN(len(m.imms))])
		}
	case inst.ShapeRdRnOperand:
		switch m.rng.IntN(3) {
		case 0:
			in.Rd = m.randomReg()
		case 1:
			in.Rn = m.randomReg()
		default:
			in.Operand = m.randomOperand()
		}
	case inst.ShapeRdRnRm:
		switch m.rng.IntN(3) {
		case 0:
			in.Rd = m.randomReg()
		case 1:
			in.Rn = m.randomReg()
		default:
			in.Rm = m.randomReg()
		}
	case inst.ShapeRnOperand:
		if m.rng.IntN(2) == 0 {
			in.Rn = m.randomReg()
		} else {
			in.Operand = m.randomOperand()
		}
	case inst.ShapeCsel:
		switch m.rng.IntN(4) {
		case 0:
			in.Rd = m.randomReg()
		case 1:
			in.Rn = m.randomReg()
		case 2:
			in.Rm = m.randomReg()
		default:
			in.Cond = m.randomCond()
		}
	}
	return in
}

// randomInstruction builds a fresh random instruction of any arity, or
// the Nop marker.
func (m *Mutator) randomInstruction() inst.Instruction {
	if m.rng.IntN(10) == 0 {
		return inst.Instruction{Op: inst.Nop}
	}
	op := inst.AllOps()[m.rng.IntN(len(inst.AllOps()))]
	in := inst.Instruction{Op: op, Rd: m.randomReg(), Rn: m.randomReg(), Rm: m.randomReg(), Cond: m.randomCond()}
	switch inst.Catalog[op].Shape {
	case inst.ShapeRdImm:
		in.Operand = inst.Imm(m.imms[m.rng.IntN(len(m.imms))])
	case inst.ShapeRdRnOperand, inst.ShapeRnOperand:
		in.Operand = m.randomOperand()
	}
	return in
}

func copySeq(seq []inst.Instruction) []inst.Instruction {
	out := make([]inst.Instruction, len(seq))
	copy(out, seq)
	return out
}

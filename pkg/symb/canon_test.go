package symb

import (
	"testing"

	"github.com/oisee/superopt64/pkg/inst"
)

func translateX0(seq []inst.Instruction) (*Builder, *Term) {
	b := NewBuilder()
	s := NewSymState(b)
	out := TranslateSeq(b, s, seq)
	return b, out.Regs[inst.X0]
}

func TestCanonicalMovImmZeroEqualsEorSelf(t *testing.T) {
	b1, t1 := translateX0([]inst.Instruction{{Op: inst.MovImm, Rd: inst.X0, Operand: inst.Imm(0)}})
	b2, t2 := translateX0([]inst.Instruction{{Op: inst.Eor, Rd: inst.X0, Rn: inst.X0, Operand: inst.Reg(inst.X0)}})

	c1 := Canonicalize(b1, t1)
	c2 := Canonicalize(b2, t2)
	if c1.Kind != KConst || c2.Kind != KConst || c1.Const != c2.Const {
		t.Fatalf("expected both canonical forms to be the constant 0, got %+v and %+v", c1, c2)
	}
}

func TestCanonicalAddCommutes(t *testing.T) {
	seqA := []inst.Instruction{{Op: inst.Add, Rd: inst.X0, Rn: inst.X1, Operand: inst.Reg(inst.X2)}}
	seqB := []inst.Instruction{{Op: inst.Add, Rd: inst.X0, Rn: inst.X2, Operand: inst.Reg(inst.X1)}}

	// Must canonicalize within the same builder for pointer identity to
	// be a meaningful comparison (hash-consing is per-Builder).
	b := NewBuilder()
	sA := TranslateSeq(b, NewSymState(b), seqA)
	sB := TranslateSeq(b, NewSymState(b), seqB)

	cA := Canonicalize(b, sA.Regs[inst.X0])
	cB := Canonicalize(b, sB.Regs[inst.X0])
	if cA != cB {
		t.Errorf("Add(X1,X2) and Add(X2,X1) should canonicalize identically, got %+v vs %+v", cA, cB)
	}
}

func TestCanonicalSelfEquivalence(t *testing.T) {
	seq := []inst.Instruction{
		{Op: inst.MovReg, Rd: inst.X0, Rn: inst.X1},
		{Op: inst.Add, Rd: inst.X0, Rn: inst.X0, Operand: inst.Imm(1)},
	}
	b := NewBuilder()
	s1 := TranslateSeq(b, NewSymState(b), seq)
	s2 := TranslateSeq(b, NewSymState(b), seq)
	if Canonicalize(b, s1.Regs[inst.X0]) != Canonicalize(b, s2.Regs[inst.X0]) {
		t.Error("identical sequences over the same builder should canonicalize to the same term")
	}
}

func TestCmpFlagsDoNotWriteRegisters(t *testing.T) {
	b := NewBuilder()
	s := NewSymState(b)
	before := s.Regs
	out := Translate(b, s, inst.Instruction{Op: inst.Cmp, Rn: inst.X0, Operand: inst.Reg(inst.X1)})
	if out.Regs != before {
		t.Error("Cmp must not write any register")
	}
}

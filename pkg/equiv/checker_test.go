package equiv

import (
	"testing"

	"github.com/oisee/superopt64/pkg/inst"
)

func TestSelfEquivalence(t *testing.T) {
	seq := []inst.Instruction{
		{Op: inst.MovReg, Rd: inst.X0, Rn: inst.X1},
		{Op: inst.Add, Rd: inst.X0, Rn: inst.X0, Operand: inst.Imm(1)},
	}
	liveOut := inst.NewRegSet(inst.X0)
	res := Check(seq, seq, liveOut, Config{})
	if res.Status != Equivalent {
		t.Errorf("Check(s, s) = %v, want Equivalent", res.Status)
	}
}

func TestMovImmZeroEqualsEorSelf(t *testing.T) {
	a := []inst.Instruction{{Op: inst.MovImm, Rd: inst.X0, Operand: inst.Imm(0)}}
	bSeq := []inst.Instruction{{Op: inst.Eor, Rd: inst.X0, Rn: inst.X0, Operand: inst.Reg(inst.X0)}}
	liveOut := inst.NewRegSet(inst.X0)

	if res := Check(a, bSeq, liveOut, Config{}); res.Status != Equivalent {
		t.Errorf("MovImm(0) vs Eor(self) = %v, want Equivalent", res.Status)
	}
	if res := Check(bSeq, a, liveOut, Config{}); res.Status != Equivalent {
		t.Errorf("Eor(self) vs MovImm(0) = %v, want Equivalent", res.Status)
	}
}

func TestAddCommutativityDetected(t *testing.T) {
	a := []inst.Instruction{{Op: inst.Add, Rd: inst.X0, Rn: inst.X1, Operand: inst.Reg(inst.X2)}}
	b := []inst.Instruction{{Op: inst.Add, Rd: inst.X0, Rn: inst.X2, Operand: inst.Reg(inst.X1)}}
	liveOut := inst.NewRegSet(inst.X0)

	if res := Check(a, b, liveOut, Config{}); res.Status != Equivalent {
		t.Errorf("Add(X1,X2) vs Add(X2,X1) = %v, want Equivalent", res.Status)
	}
}

func TestDistinctImmediatesNotEquivalent(t *testing.T) {
	a := []inst.Instruction{{Op: inst.MovImm, Rd: inst.X0, Operand: inst.Imm(1)}}
	b := []inst.Instruction{{Op: inst.MovImm, Rd: inst.X0, Operand: inst.Imm(2)}}
	liveOut := inst.NewRegSet(inst.X0)

	res := Check(a, b, liveOut, Config{})
	if res.Status != NotEquivalent {
		t.Fatalf("MovImm(1) vs MovImm(2) = %v, want NotEquivalent", res.Status)
	}
	if !res.HasCounterexample {
		t.Error("expected a counterexample")
	}
}

func TestConditionMismatchDetected(t *testing.T) {
	base := func(cond inst.Condition) []inst.Instruction {
		return []inst.Instruction{
			{Op: inst.Cmp, Rn: inst.X0, Operand: inst.Imm(0)},
			{Op: inst.Csel, Rd: inst.X1, Rn: inst.X2, Rm: inst.X3, Cond: cond},
		}
	}
	liveOut := inst.NewRegSet(inst.X1)
	res := Check(base(inst.EQ), base(inst.NE), liveOut, Config{})
	if res.Status != NotEquivalent {
		t.Errorf("Csel EQ vs NE = %v, want NotEquivalent", res.Status)
	}
}

func TestCselOnLiveInFlagsNotEquivalentToPlainMove(t *testing.T) {
	// A bare Csel reads whatever flags were live coming into the window —
	// it must never be folded against a fixed initial flag state.
	a := []inst.Instruction{{Op: inst.Csel, Rd: inst.X0, Rn: inst.X1, Rm: inst.X2, Cond: inst.EQ}}
	b := []inst.Instruction{{Op: inst.MovReg, Rd: inst.X0, Rn: inst.X2}}
	liveOut := inst.NewRegSet(inst.X0)

	res := Check(a, b, liveOut, Config{Seed: 7})
	if res.Status == Equivalent {
		t.Fatal("Csel(EQ) on live-in flags reported Equivalent to MovReg(X0,X2) — flags with Z=1 and X1!=X2 is a counterexample")
	}
}

func TestFastOnlySkipsPhase2(t *testing.T) {
	seq := []inst.Instruction{{Op: inst.Add, Rd: inst.X0, Rn: inst.X1, Operand: inst.Reg(inst.X2)}}
	seq2 := []inst.Instruction{{Op: inst.Add, Rd: inst.X0, Rn: inst.X2, Operand: inst.Reg(inst.X1)}}
	res := Check(seq, seq2, inst.NewRegSet(inst.X0), Config{FastOnly: true})
	if res.Status != Unknown {
		t.Errorf("FastOnly check that passed phase 1 = %v, want Unknown (never promoted without phase 2)", res.Status)
	}
}

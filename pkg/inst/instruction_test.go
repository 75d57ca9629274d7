package inst

import "testing"

func TestXZRNeverWritten(t *testing.T) {
	tests := []Instruction{
		{Op: MovImm, Rd: XZR, Operand: Imm(5)},
		{Op: Add, Rd: XZR, Rn: X0, Operand: Reg(X1)},
		{Op: Csel, Rd: XZR, Rn: X0, Rm: X1, Cond: EQ},
	}
	for _, instr := range tests {
		if w := instr.Writes(); w != 0 {
			t.Errorf("%s: Writes() = %v, want empty (XZR writes drop)", Disassemble(instr), w)
		}
	}
}

func TestXZRNeverRead(t *testing.T) {
	instr := Instruction{Op: Add, Rd: X0, Rn: XZR, Operand: Reg(XZR)}
	if r := instr.Reads(); r.Has(XZR) {
		t.Errorf("Reads() reports XZR as read: %v", r)
	}
}

func TestDisassemble(t *testing.T) {
	cases := []struct {
		in   Instruction
		want string
	}{
		{Instruction{Op: MovReg, Rd: X0, Rn: X1}, "mov X0, X1"},
		{Instruction{Op: MovImm, Rd: X0, Operand: Imm(0)}, "mov X0, #0x0"},
		{Instruction{Op: Add, Rd: X0, Rn: X1, Operand: Imm(1)}, "add X0, X1, #0x1"},
		{Instruction{Op: Csel, Rd: X1, Rn: X2, Rm: X3, Cond: EQ}, "csel X1, X2, X3, EQ"},
	}
	for _, c := range cases {
		if got := Disassemble(c.in); got != c.want {
			t.Errorf("Disassemble(%+v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSeqCostMonotone(t *testing.T) {
	seq := []Instruction{
		{Op: MovReg, Rd: X0, Rn: X1},
		{Op: Add, Rd: X0, Rn: X0, Operand: Imm(1)},
	}
	for _, metric := range []CostMetric{InstructionCount, Latency, CodeSize} {
		full := SeqCost(seq, metric)
		prefix := SeqCost(seq[:1], metric)
		if prefix > full {
			t.Errorf("metric %v: prefix cost %d exceeds full cost %d", metric, prefix, full)
		}
	}
}

func TestEncodableShiftAmount(t *testing.T) {
	if !Encodable(Instruction{Op: Lsl, Rd: X0, Rn: X1, Operand: Imm(63)}) {
		t.Error("shift amount 63 should be encodable")
	}
	if Encodable(Instruction{Op: Lsl, Rd: X0, Rn: X1, Operand: Imm(64)}) {
		t.Error("shift amount 64 should not be encodable")
	}
}

func TestTstRejectsImmediate(t *testing.T) {
	if Encodable(Instruction{Op: Tst, Rn: X0, Operand: Imm(1)}) {
		t.Error("Tst with immediate should not be encodable in the minimal encoder")
	}
}

func TestRegisterRoundTrip(t *testing.T) {
	for r := Register(0); r < RegisterCount; r++ {
		got, ok := ParseRegister(r.String())
		if !ok || got != r {
			t.Errorf("ParseRegister(%q) = %v, %v, want %v, true", r.String(), got, ok, r)
		}
	}
}

func TestConditionRoundTrip(t *testing.T) {
	for c := Condition(0); c < ConditionCount; c++ {
		got, ok := ParseCondition(c.String())
		if !ok || got != c {
			t.Errorf("ParseCondition(%q) = %v, %v, want %v, true", c.String(), got, ok, c)
		}
	}
}

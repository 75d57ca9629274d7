package cpu

import (
	"testing"

	"github.com/oisee/superopt64/pkg/inst"
)

func withX0X1(x0, x1 uint64) State {
	var s State
	s.Set(inst.X0, x0)
	s.Set(inst.X1, x1)
	return s
}

func TestCmpSameValue(t *testing.T) {
	for _, x := range []uint64{0, 1, 0xFFFFFFFFFFFFFFFF, 1 << 63} {
		s := withX0X1(x, x)
		out := Exec(s, inst.Instruction{Op: inst.Cmp, Rn: inst.X0, Operand: inst.Reg(inst.X1)})
		want := inst.Flags{N: false, Z: true, C: true, V: false}
		if out.Flags != want {
			t.Errorf("Cmp(%#x, %#x) flags = %+v, want %+v", x, x, out.Flags, want)
		}
	}
}

func TestTstZeroImmediate(t *testing.T) {
	s := withX0X1(0x1234, 0)
	out := Exec(s, inst.Instruction{Op: inst.Tst, Rn: inst.X0, Operand: inst.Imm(0)})
	want := inst.Flags{N: false, Z: true, C: false, V: false}
	if out.Flags != want {
		t.Errorf("Tst(x, 0) flags = %+v, want %+v", out.Flags, want)
	}
}

func TestShiftBoundary(t *testing.T) {
	s := withX0X1(1, 0)
	cases := []struct {
		amt  int64
		want uint64
	}{
		{0, 1},
		{63, 1 << 63},
		{64, 1}, // modulo rule: 64 behaves as 0
	}
	for _, c := range cases {
		out := Exec(s, inst.Instruction{Op: inst.Lsl, Rd: inst.X1, Rn: inst.X0, Operand: inst.Imm(c.amt)})
		if got := out.Get(inst.X1); got != c.want {
			t.Errorf("Lsl(1, %d) = %#x, want %#x", c.amt, got, c.want)
		}
	}
}

func TestDivisionEdgeCases(t *testing.T) {
	minVal := uint64(1) << 63
	s := withX0X1(minVal, 0)
	s.Set(inst.X2, ^uint64(0)) // -1

	out := Exec(s, inst.Instruction{Op: inst.Sdiv, Rd: inst.X0, Rn: inst.X0, Rm: inst.X2})
	if got := out.Get(inst.X0); got != minVal {
		t.Errorf("SDIV(MIN, -1) = %#x, want MIN (%#x)", got, minVal)
	}

	s2 := withX0X1(42, 0)
	out2 := Exec(s2, inst.Instruction{Op: inst.Udiv, Rd: inst.X0, Rn: inst.X0, Rm: inst.X1})
	if got := out2.Get(inst.X0); got != 0 {
		t.Errorf("UDIV(42, 0) = %#x, want 0", got)
	}

	out3 := Exec(s2, inst.Instruction{Op: inst.Sdiv, Rd: inst.X0, Rn: inst.X0, Rm: inst.X1})
	if got := out3.Get(inst.X0); got != 0 {
		t.Errorf("SDIV(42, 0) = %#x, want 0", got)
	}
}

func TestXZRInvariant(t *testing.T) {
	s := withX0X1(1, 2)
	out := Exec(s, inst.Instruction{Op: inst.Add, Rd: inst.XZR, Rn: inst.X0, Operand: inst.Reg(inst.X1)})
	if got := out.Get(inst.XZR); got != 0 {
		t.Errorf("XZR read %#x, want 0", got)
	}
	if !out.Equal(s) {
		t.Errorf("writing XZR altered other state: got %+v, want %+v", out, s)
	}
}

func TestConditionalSelectVariants(t *testing.T) {
	base := withX0X1(10, 20)
	trueFlags := inst.Flags{Z: true}
	falseFlags := inst.Flags{Z: false}

	cases := []struct {
		op       inst.OpCode
		flags    inst.Flags
		wantTrue uint64
		wantElse uint64
	}{
		{inst.Csel, trueFlags, 10, 20},
		{inst.Csinc, falseFlags, 10, 21},
		{inst.Csinv, falseFlags, 10, ^uint64(20)},
		{inst.Csneg, falseFlags, 10, ^uint64(20) + 1},
	}
	for _, c := range cases {
		s := base
		s.Flags = c.flags
		out := Exec(s, inst.Instruction{Op: c.op, Rd: inst.X2, Rn: inst.X0, Rm: inst.X1, Cond: inst.EQ})
		var want uint64
		if c.flags.Holds(inst.EQ) {
			want = c.wantTrue
		} else {
			want = c.wantElse
		}
		if got := out.Get(inst.X2); got != want {
			t.Errorf("%v with flags %+v = %#x, want %#x", c.op, c.flags, got, want)
		}
	}
}

func TestExecSeqIsLeftToRight(t *testing.T) {
	seq := []inst.Instruction{
		{Op: inst.MovImm, Rd: inst.X0, Operand: inst.Imm(1)},
		{Op: inst.Add, Rd: inst.X0, Rn: inst.X0, Operand: inst.Imm(1)},
		{Op: inst.Add, Rd: inst.X0, Rn: inst.X0, Operand: inst.Imm(1)},
	}
	out := ExecSeq(State{}, seq)
	if got := out.Get(inst.X0); got != 3 {
		t.Errorf("ExecSeq = %d, want 3", got)
	}
}

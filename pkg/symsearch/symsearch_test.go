package symsearch

import (
	"context"
	"testing"
	"time"

	"github.com/oisee/superopt64/pkg/equiv"
	"github.com/oisee/superopt64/pkg/inst"
)

func TestEnumerateTemplatesRespectsBound(t *testing.T) {
	ops := []inst.OpCode{inst.MovReg, inst.Add}
	templates := EnumerateTemplates(ops, 2, inst.InstructionCount, 1)
	for _, tmpl := range templates {
		if templateCost(tmpl, inst.InstructionCount) > 1 {
			t.Errorf("template %v exceeds bound 1", tmpl)
		}
	}
}

func TestSynthesizeOperandsFindsMovRegEquivalent(t *testing.T) {
	target := []inst.Instruction{
		{Op: inst.Add, Rd: inst.X0, Rn: inst.X1, Operand: inst.Imm(0)},
	}
	regs := []inst.Register{inst.X0, inst.X1}
	alphabet := alphabetFor(regs)
	grouped := byOpcode(alphabet)

	tmpl := Template{inst.MovReg}
	seq, ok := SynthesizeOperands(context.Background(), tmpl, grouped, target, inst.NewRegSet(inst.X0), equiv.Config{})
	if !ok {
		t.Fatal("expected a synthesized MovReg equivalent")
	}
	if seq[0].Op != inst.MovReg {
		t.Errorf("synthesized op = %v, want MovReg", seq[0].Op)
	}
}

func TestSearchLinearFindsImprovement(t *testing.T) {
	target := []inst.Instruction{
		{Op: inst.Add, Rd: inst.X0, Rn: inst.X1, Operand: inst.Imm(0)},
		{Op: inst.Add, Rd: inst.X0, Rn: inst.X0, Operand: inst.Imm(0)},
	}
	cfg := Config{
		MaxLen:             1,
		Metric:             inst.InstructionCount,
		Registers:          []inst.Register{inst.X0, inst.X1},
		Immediates:         []int64{0},
		LiveOut:            inst.NewRegSet(inst.X0),
		Mode:               Linear,
		PerTemplateTimeout: time.Second,
	}
	res := Search(target, cfg)
	if !res.Found {
		t.Fatal("expected Search to find a cheaper equivalent")
	}
}

func alphabetFor(regs []inst.Register) []inst.Instruction {
	var out []inst.Instruction
	for _, rd := range regs {
		for _, rn := range regs {
			in := inst.Instruction{Op: inst.MovReg, Rd: rd, Rn: rn}
			if inst.Encodable(in) {
				out = append(out, in)
			}
		}
	}
	return out
}

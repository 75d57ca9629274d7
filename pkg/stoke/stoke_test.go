package stoke

import (
	"math/rand/v2"
	"testing"

	"github.com/oisee/superopt64/pkg/inst"
)

func targetAddZero() []inst.Instruction {
	return []inst.Instruction{
		{Op: inst.Add, Rd: inst.X0, Rn: inst.X0, Operand: inst.Imm(0)},
		{Op: inst.MovReg, Rd: inst.X1, Rn: inst.X0},
	}
}

func liveX1() inst.RegSet {
	return inst.NewRegSet(inst.X1)
}

func TestMismatchesZeroForIdenticalSequence(t *testing.T) {
	panel := NewTestPanel(8, 1)
	target := targetAddZero()
	if got := Mismatches(panel, target, target, liveX1()); got != 0 {
		t.Errorf("Mismatches(target, target) = %d, want 0", got)
	}
}

func TestEnergyPrefersZeroMismatch(t *testing.T) {
	e0 := Energy(0, 5, DefaultWeights)
	e1 := Energy(1, 0, DefaultWeights)
	if e0 >= e1 {
		t.Errorf("Energy(0 mism, cost 5) = %v, should be < Energy(1 mism, cost 0) = %v", e0, e1)
	}
}

func TestMutatorPreservesLength(t *testing.T) {
	seq := targetAddZero()
	m := NewMutator(rand.New(rand.NewPCG(1, 1)), []inst.Register{inst.X0, inst.X1, inst.X2}, []int64{0, 1, 2})
	for i := 0; i < 20; i++ {
		out := m.Mutate(seq)
		if len(out) != len(seq) {
			t.Fatalf("Mutate changed length: got %d, want %d", len(out), len(seq))
		}
	}
}

func TestChainNeverWorsensBest(t *testing.T) {
	target := targetAddZero()
	panel := NewTestPanel(8, 2)
	c := NewChain(target, target, liveX1(), inst.InstructionCount, panel, DefaultWeights, 2.0, []inst.Register{inst.X0, inst.X1, inst.X2}, []int64{0, 1}, 42)
	prevBest := c.BestEnergy()
	for i := 0; i < 200; i++ {
		c.Step(0.995)
		if c.BestEnergy() > prevBest {
			t.Fatalf("best energy worsened: %v -> %v", prevBest, c.BestEnergy())
		}
		prevBest = c.BestEnergy()
	}
}

func TestRunFindsNoWorseThanTarget(t *testing.T) {
	target := targetAddZero()
	cfg := Config{
		Chains:      4,
		Steps:       100,
		Temperature: 2.0,
		Decay:       0.99,
		PanelSize:   8,
		Metric:      inst.InstructionCount,
		LiveOut:     liveX1(),
		Registers:   []inst.Register{inst.X0, inst.X1, inst.X2},
		Immediates:  []int64{0, 1},
		Seed:        7,
	}
	res := Run(target, cfg)
	if res.Best == nil {
		t.Fatal("Run returned nil Best")
	}
	if got, want := inst.SeqCost(res.Best, cfg.Metric), inst.SeqCost(target, cfg.Metric); got > want {
		t.Errorf("Run's Best costs %d, worse than the target's %d", got, want)
	}
}

func TestDeduplicateCollapsesIdenticalSequences(t *testing.T) {
	a := targetAddZero()
	b := targetAddZero()
	out := Deduplicate([][]inst.Instruction{a, b})
	if len(out) != 1 {
		t.Errorf("Deduplicate([a, b]) = %d entries, want 1", len(out))
	}
}

package result

import (
	"path/filepath"
	"testing"

	"github.com/oisee/superopt64/pkg/inst"
)

func sampleRule() Rule {
	return Rule{
		Source:      []inst.Instruction{{Op: inst.Add, Rd: inst.X0, Rn: inst.X1, Operand: inst.Imm(0)}},
		Replacement: []inst.Instruction{{Op: inst.MovReg, Rd: inst.X0, Rn: inst.X1}},
		Metric:      inst.InstructionCount,
		Saved:       0,
		LiveOut:     inst.NewRegSet(inst.X0),
	}
}

func TestTableRulesSortedBySavedDescending(t *testing.T) {
	tbl := NewTable()
	tbl.Add(Rule{Saved: 1})
	tbl.Add(Rule{Saved: 5})
	tbl.Add(Rule{Saved: 3})

	rules := tbl.Rules()
	for i := 1; i < len(rules); i++ {
		if rules[i-1].Saved < rules[i].Saved {
			t.Fatalf("Rules() not sorted descending: %v", rules)
		}
	}
	if tbl.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tbl.Len())
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.gob")
	want := &Checkpoint{
		Rules:           []Rule{sampleRule()},
		CompletedTarget: 2,
		TargetLen:       3,
	}
	if err := SaveCheckpoint(path, want); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	got, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if got.CompletedTarget != want.CompletedTarget || got.TargetLen != want.TargetLen {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
	if len(got.Rules) != 1 || got.Rules[0].Saved != want.Rules[0].Saved {
		t.Errorf("rule round trip mismatch: got %+v", got.Rules)
	}
}

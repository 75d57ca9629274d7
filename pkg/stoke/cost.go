// Package stoke implements the stochastic (Metropolis-Hastings) search
// strategy (SPEC_FULL.md §4.7), generalized from the donor engine's STOKE-
// lineage package of the same name.
package stoke

import (
	"math/bits"

	"github.com/oisee/superopt64/pkg/cpu"
	"github.com/oisee/superopt64/pkg/equiv"
	"github.com/oisee/superopt64/pkg/inst"
)

// TestPanel is a fixed panel of concrete input states used by the
// correctness term, drawn once per search run (SPEC_FULL.md §4.7).
type TestPanel []cpu.State

// NewTestPanel builds a panel of size K from the same mixed distribution
// package equiv uses for phase-1 random testing.
func NewTestPanel(k int, seed uint64) TestPanel {
	if k <= 0 {
		k = equiv.DefaultPanelSize
	}
	return TestPanel(equiv.GenerateStates(k, seed))
}

// Absorb appends a counterexample state to the panel, amortizing the cost
// of future exhaustive-sweep fallbacks across a session (SPEC_FULL.md §9).
func (p *TestPanel) Absorb(s cpu.State) {
	*p = append(*p, s)
}

// Mismatches returns the total Hamming distance, summed over the panel,
// between live-out registers of candidate and target.
func Mismatches(panel TestPanel, target, candidate []inst.Instruction, liveOut inst.RegSet) int {
	total := 0
	for _, s := range panel {
		outT := cpu.ExecSeq(s, target)
		outC := cpu.ExecSeq(s, candidate)
		for _, r := range liveOut.Registers() {
			total += bits.OnesCount64(outT.Get(r) ^ outC.Get(r))
		}
	}
	return total
}

// Perf returns the candidate's cost under metric — the performance term
// of the energy function.
func Perf(candidate []inst.Instruction, metric inst.CostMetric) int {
	return inst.SeqCost(candidate, metric)
}

// Weights controls the energy function's correctness/performance balance.
type Weights struct {
	Correctness float64 // w_c
	Performance float64 // w_p
}

// DefaultWeights matches the donor's own two-regime cost shape: a large
// per-mismatch penalty dwarfs the performance term until mismatches reach
// zero.
var DefaultWeights = Weights{Correctness: 1000, Performance: 1}

// Energy computes E(S) per SPEC_FULL.md §4.7: a weighted mismatch term
// plus a performance term once mismatches are zero.
func Energy(mismatches, perf int, w Weights) float64 {
	if mismatches > 0 {
		return w.Correctness*float64(mismatches) + w.Performance*float64(perf)
	}
	return float64(perf)
}

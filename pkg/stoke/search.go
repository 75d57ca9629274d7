package stoke

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/oisee/superopt64/pkg/inst"
)

// Config configures a multi-chain stochastic search run.
type Config struct {
	Chains      int
	Steps       int
	Temperature float64
	Decay       float64
	PanelSize   int
	Metric      inst.CostMetric
	LiveOut     inst.RegSet
	Registers   []inst.Register
	Immediates  []int64
	Weights     Weights
	Seed        uint64
}

// Result is a multi-chain run's outcome: the best sequence any chain found,
// with tests-only status (stochastic search never proves equivalence
// itself — a caller must run equiv.Check against the result before trusting
// it, per SPEC_FULL.md §4.7).
type Result struct {
	Target   []inst.Instruction
	Best     []inst.Instruction
	Improved bool
	Elapsed  time.Duration
}

// Run launches cfg.Chains independent chains, one goroutine each, and
// returns the lowest-energy candidate across all of them (the donor
// engine's goroutine-per-chain pattern, generalized).
func Run(target []inst.Instruction, cfg Config) Result {
	start := time.Now()
	regs := cfg.Registers
	if regs == nil {
		set := inst.NewRegSet(inst.XZR)
		for _, in := range target {
			set = set.Union(in.Reads()).Union(in.Writes())
		}
		regs = set.Registers()
	}
	imms := cfg.Immediates
	if imms == nil {
		imms = []int64{0, 1}
	}
	weights := cfg.Weights
	if weights == (Weights{}) {
		weights = DefaultWeights
	}
	panel := NewTestPanel(cfg.PanelSize, cfg.Seed)

	type chainResult struct {
		best   []inst.Instruction
		energy float64
	}
	results := make([]chainResult, cfg.Chains)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Chains; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			chain := NewChain(target, target, cfg.LiveOut, cfg.Metric, panel, weights, cfg.Temperature, regs, imms, cfg.Seed+uint64(idx))
			for s := 0; s < cfg.Steps; s++ {
				chain.Step(cfg.Decay)
			}
			results[idx] = chainResult{best: chain.Best(), energy: chain.BestEnergy()}
		}(i)
	}
	wg.Wait()

	out := Result{Target: target, Best: target}
	bestEnergy := Energy(Mismatches(panel, target, target, cfg.LiveOut), Perf(target, cfg.Metric), weights)
	for _, r := range results {
		if r.energy < bestEnergy {
			bestEnergy = r.energy
			out.Best = r.best
			out.Improved = true
		}
	}
	out.Elapsed = time.Since(start)
	return out
}

// Deduplicate removes sequences already seen (by their seqKey), preserving
// the first occurrence's order. Run does not call it; it is a helper for
// collapsing identical proposals from several chains.
func Deduplicate(seqs [][]inst.Instruction) [][]inst.Instruction {
	seen := make(map[string]bool)
	var out [][]inst.Instruction
	for _, s := range seqs {
		k := seqKey(s)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

func seqKey(seq []inst.Instruction) string {
	b := make([]byte, 0, len(seq)*8)
	for _, in := range seq {
		b = append(b, byte(in.Op), byte(in.Rd), byte(in.Rn), byte(in.Rm), byte(in.Cond))
		if in.Operand.IsImmediate() {
			b = binary.LittleEndian.AppendUint64(append(b, 1), uint64(in.Operand.Immediate()))
		} else {
			b = append(b, 0, byte(in.Operand.Register()))
		}
	}
	return string(b)
}

package search

import (
	"time"

	"github.com/oisee/superopt64/pkg/equiv"
	"github.com/oisee/superopt64/pkg/inst"
)

// Config configures a single-target enumerative search run.
type Config struct {
	MaxLen      int              // longest candidate length to try (inclusive)
	Metric      inst.CostMetric
	Registers   []inst.Register  // defaults to DefaultRegisters(target) if nil
	Immediates  []int64          // defaults to DefaultImmediates(target) if nil
	LiveOut     inst.RegSet
	EquivConfig equiv.Config
}

// VerificationStatus reports how thoroughly an Outcome's Best was proved
// equivalent to Original.
type VerificationStatus int

const (
	Verified VerificationStatus = iota
	TestsOnly
	StatusUnknown
)

func (v VerificationStatus) String() string {
	switch v {
	case Verified:
		return "Verified"
	case TestsOnly:
		return "TestsOnly"
	default:
		return "Unknown"
	}
}

// Outcome is the core's return value: the original sequence, the best
// verified equivalent found (or Original if none improved), the
// verification status, and elapsed wall-clock time.
type Outcome struct {
	Original            []inst.Instruction
	Best                []inst.Instruction
	VerificationStatus  VerificationStatus
	Elapsed             time.Duration
}

// SearchSingle runs enumerative search for a lower-cost equivalent of
// target, returning the first verified improvement found in non-decreasing
// cost order, or target unchanged (SPEC_FULL.md §4.6).
func SearchSingle(target []inst.Instruction, cfg Config) Outcome {
	start := time.Now()
	regs := cfg.Registers
	if regs == nil {
		regs = DefaultRegisters(target)
	}
	imms := cfg.Immediates
	if imms == nil {
		imms = DefaultImmediates(target)
	}
	alphabet := Alphabet(regs, imms)
	targetCost := inst.SeqCost(target, cfg.Metric)

	status := TestsOnly
	if !cfg.EquivConfig.FastOnly {
		status = Verified
	}

	out := Outcome{Original: target, Best: target, VerificationStatus: StatusUnknown}
	maxLen := cfg.MaxLen
	if maxLen < 0 {
		maxLen = len(target)
	}

	found := false
	EnumerateSequences(alphabet, maxLen, cfg.Metric, func(cand []inst.Instruction) bool {
		if inst.SeqCost(cand, cfg.Metric) >= targetCost {
			return false // global cost order: no later candidate can be cheaper either
		}
		if ShouldPrune(cand) {
			return true
		}
		res := equiv.Check(target, cand, cfg.LiveOut, cfg.EquivConfig)
		if res.Status != equiv.Equivalent {
			return true
		}
		out.Best = cand
		out.VerificationStatus = status
		found = true
		return false
	})

	if !found {
		out.Best = target
		out.VerificationStatus = Verified // the original is trivially equivalent to itself
	}
	out.Elapsed = time.Since(start)
	return out
}

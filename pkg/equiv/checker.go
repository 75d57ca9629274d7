// Package equiv implements the equivalence checker: a two-phase check
// combining mandatory random testing with a decision-procedure back end
// (SPEC_FULL.md §4.4). No bit-vector SMT solver library is reachable from
// this module's dependency corpus (see DESIGN.md); phase 2 is instead a
// canonical-form proof over package symb's term DAG, falling back to a
// bounded concrete sweep grounded on the donor engine's own
// ExhaustiveCheck technique. Both stages are sound: neither ever reports
// Equivalent on an unproven case.
package equiv

import (
	"time"

	"github.com/oisee/superopt64/pkg/cpu"
	"github.com/oisee/superopt64/pkg/inst"
	"github.com/oisee/superopt64/pkg/symb"
)

// Status is the outcome of an equivalence check.
type Status int

const (
	Equivalent Status = iota
	NotEquivalent
	Unknown
)

func (s Status) String() string {
	switch s {
	case Equivalent:
		return "Equivalent"
	case NotEquivalent:
		return "NotEquivalent"
	default:
		return "Unknown"
	}
}

// Result is the full outcome of Check: a Status plus, for NotEquivalent,
// the distinguishing concrete state.
type Result struct {
	Status          Status
	Counterexample  cpu.State
	HasCounterexample bool
}

// Config controls both phases of the check.
type Config struct {
	RandomCount int           // phase-1 panel size (default DefaultRandomCount)
	Seed        uint64        // phase-1 panel seed
	FastOnly    bool          // skip phase 2
	Timeout     time.Duration // phase-2 budget, checked once after the canonical stage: if spent, the sweep is skipped (Unknown); a started sweep is not interrupted (0 = no limit)
}

func (c Config) randomCount() int {
	if c.RandomCount > 0 {
		return c.RandomCount
	}
	return DefaultRandomCount
}

// Check runs the two-phase equivalence check described in SPEC_FULL.md
// §4.4 against seqA and seqB, observing only the registers in liveOut.
func Check(seqA, seqB []inst.Instruction, liveOut inst.RegSet, cfg Config) Result {
	states := GenerateStates(cfg.randomCount(), cfg.Seed)
	for _, s := range states {
		outA := cpu.ExecSeq(s, seqA)
		outB := cpu.ExecSeq(s, seqB)
		if !outA.EqualOn(outB, liveOut) {
			return Result{Status: NotEquivalent, Counterexample: s, HasCounterexample: true}
		}
	}

	if cfg.FastOnly {
		return Result{Status: Unknown}
	}

	return decide(seqA, seqB, liveOut, cfg, states[0])
}

// decide implements phase 2: canonical-form proof first, exhaustive sweep
// fallback second.
func decide(seqA, seqB []inst.Instruction, liveOut inst.RegSet, cfg Config, base cpu.State) Result {
	deadline := time.Time{}
	if cfg.Timeout > 0 {
		deadline = time.Now().Add(cfg.Timeout)
	}

	b := symb.NewBuilder()
	symA := symb.TranslateSeq(b, symb.NewSymState(b), seqA)
	symB := symb.TranslateSeq(b, symb.NewSymState(b), seqB)

	allMatch := true
	for _, r := range liveOut.Registers() {
		ca := symb.Canonicalize(b, symA.Regs[r])
		cb := symb.Canonicalize(b, symB.Regs[r])
		if ca != cb {
			allMatch = false
			break
		}
	}
	if allMatch {
		return Result{Status: Equivalent}
	}

	if !deadline.IsZero() && time.Now().After(deadline) {
		return Result{Status: Unknown}
	}

	equivalent, ce, exhaustive := exhaustiveSweep(seqA, seqB, liveOut, base)
	if !exhaustive {
		return Result{Status: Unknown}
	}
	if equivalent {
		return Result{Status: Equivalent}
	}
	return Result{Status: NotEquivalent, Counterexample: ce, HasCounterexample: true}
}

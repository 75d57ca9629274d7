// Package symsearch implements cost-bounded symbolic search (SPEC_FULL.md
// §4.8): template enumeration down to opcode arity, followed by operand
// synthesis via finite-pool enumeration checked against the equivalence
// checker. This stands in for an external solver's model-producing `sat`
// query — no bit-vector SMT solver exists anywhere in the donor corpus
// (see DESIGN.md), so the "does a witness exist" question is answered by
// bounded enumeration over the same finite register/immediate pools the
// enumerative search already commits to.
package symsearch

import (
	"context"
	"time"

	"github.com/oisee/superopt64/pkg/equiv"
	"github.com/oisee/superopt64/pkg/inst"
	"github.com/oisee/superopt64/pkg/search"
)

// Template is a sequence of opcodes with unfilled operand slots.
type Template []inst.OpCode

func templateCost(t Template, metric inst.CostMetric) int {
	sum := 0
	for _, op := range t {
		sum += inst.Catalog[op].Cost[metric]
	}
	return sum
}

// EnumerateTemplates returns every template of length 0..maxLen built from
// ops whose total cost is ≤ bound, cheapest first.
func EnumerateTemplates(ops []inst.OpCode, maxLen int, metric inst.CostMetric, bound int) []Template {
	var out []Template
	for k := 0; k <= maxLen; k++ {
		cur := make(Template, k)
		var rec func(pos, cost int)
		rec = func(pos, cost int) {
			if cost > bound {
				return
			}
			if pos == k {
				cp := make(Template, k)
				copy(cp, cur)
				out = append(out, cp)
				return
			}
			for _, op := range ops {
				c := inst.Catalog[op].Cost[metric]
				if cost+c > bound {
					continue
				}
				cur[pos] = op
				rec(pos+1, cost+c)
			}
		}
		rec(0, 0)
	}
	return out
}

// byOpcode groups alphabet (built from search.Alphabet, per SPEC_FULL.md
// §4.8's reuse of the enumerative search's alphabet-generation machinery)
// by opcode, so template operand slots can be filled independently.
func byOpcode(alphabet []inst.Instruction) map[inst.OpCode][]inst.Instruction {
	out := make(map[inst.OpCode][]inst.Instruction)
	for _, in := range alphabet {
		out[in.Op] = append(out[in.Op], in)
	}
	return out
}

// SynthesizeOperands fills template's operand slots by finite enumeration
// over grouped, returning the first filled-in sequence that the
// equivalence checker proves Equivalent to target. ctx bounds the search;
// cancellation or an expired deadline is treated as inconclusive (ok=false), matching
// SPEC_FULL.md §4.8's timeout-as-skip rule.
func SynthesizeOperands(ctx context.Context, tmpl Template, grouped map[inst.OpCode][]inst.Instruction, target []inst.Instruction, liveOut inst.RegSet, cfg equiv.Config) (seq []inst.Instruction, ok bool) {
	choices := make([][]inst.Instruction, len(tmpl))
	for i, op := range tmpl {
		opts, present := grouped[op]
		if !present || len(opts) == 0 {
			return nil, false
		}
		choices[i] = opts
	}

	cur := make([]inst.Instruction, len(tmpl))
	var rec func(pos int) (found bool)
	rec = func(pos int) bool {
		if ctx.Err() != nil {
			return false
		}
		if pos == len(tmpl) {
			res := equiv.Check(target, cur, liveOut, cfg)
			if res.Status == equiv.Equivalent {
				seq = make([]inst.Instruction, len(cur))
				copy(seq, cur)
				return true
			}
			return false
		}
		for _, in := range choices[pos] {
			cur[pos] = in
			if rec(pos + 1) {
				return true
			}
			if ctx.Err() != nil {
				return false
			}
		}
		return false
	}
	ok = rec(0)
	return seq, ok
}

// Mode selects the outer bound-search strategy.
type Mode int

const (
	Linear Mode = iota
	Binary
)

// Config configures a single-target symbolic search run.
type Config struct {
	MaxLen             int
	Metric             inst.CostMetric
	Registers          []inst.Register
	Immediates         []int64
	LiveOut            inst.RegSet
	EquivConfig        equiv.Config
	Mode               Mode
	PerTemplateTimeout time.Duration
}

// Result is a symbolic search run's outcome.
type Result struct {
	Target  []inst.Instruction
	Best    []inst.Instruction
	Found   bool
	Elapsed time.Duration
}

// Search runs the outer bound-search loop described in SPEC_FULL.md §4.8,
// calling its query closure at each candidate B.
func Search(target []inst.Instruction, cfg Config) Result {
	start := time.Now()
	regs := cfg.Registers
	if regs == nil {
		regs = search.DefaultRegisters(target)
	}
	imms := cfg.Immediates
	if imms == nil {
		imms = search.DefaultImmediates(target)
	}
	alphabet := search.Alphabet(regs, imms)
	grouped := byOpcode(alphabet)
	ops := inst.AllOps()

	originalCost := inst.SeqCost(target, cfg.Metric)
	out := Result{Target: target, Best: target}

	query := func(bound int) ([]inst.Instruction, bool) {
		templates := EnumerateTemplates(ops, cfg.MaxLen, cfg.Metric, bound)
		for _, tmpl := range templates {
			ctx := context.Background()
			var cancel context.CancelFunc
			if cfg.PerTemplateTimeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, cfg.PerTemplateTimeout)
			}
			seq, ok := SynthesizeOperands(ctx, tmpl, grouped, target, cfg.LiveOut, cfg.EquivConfig)
			if cancel != nil {
				cancel()
			}
			if ok {
				return seq, true
			}
		}
		return nil, false
	}

	switch cfg.Mode {
	case Binary:
		lo, hi := 0, originalCost-1
		for lo <= hi {
			b := (lo + hi) / 2
			if seq, ok := query(b); ok {
				out.Best = seq
				out.Found = true
				hi = inst.SeqCost(seq, cfg.Metric) - 1
			} else {
				lo = b + 1
			}
		}
	default: // Linear
		for b := originalCost - 1; b >= 0; b-- {
			if seq, ok := query(b); ok {
				out.Best = seq
				out.Found = true
				break
			}
		}
	}

	out.Elapsed = time.Since(start)
	return out
}

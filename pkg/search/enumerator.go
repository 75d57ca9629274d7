// Package search implements the enumerative search strategy and candidate
// pruning (SPEC_FULL.md §4.6); the parallel coordinator lives in package
// parallel. Generalized from the donor engine's length-first Z80 enumerator
// to the 64-bit ISA's 20-opcode alphabet with explicit cost ordering.
package search

import (
	"sort"

	"github.com/oisee/superopt64/pkg/inst"
)

// Alphabet enumerates every well-typed instruction (every opcode with
// every valid operand-tuple choice from regs and imms, and every
// condition for conditional selects). Nop and non-encodable instructions
// are excluded.
func Alphabet(regs []inst.Register, imms []int64) []inst.Instruction {
	var out []inst.Instruction
	add := func(in inst.Instruction) {
		if inst.Encodable(in) {
			out = append(out, in)
		}
	}
	var operands []inst.Operand
	for _, r := range regs {
		operands = append(operands, inst.Reg(r))
	}
	for _, v := range imms {
		operands = append(operands, inst.Imm(v))
	}

	for _, op := range inst.AllOps() {
		info := inst.Catalog[op]
		switch info.Shape {
		case inst.ShapeRdRn:
			for _, rd := range regs {
				for _, rn := range regs {
					add(inst.Instruction{Op: op, Rd: rd, Rn: rn})
				}
			}
		case inst.ShapeRdImm:
			for _, rd := range regs {
				for _, v := range imms {
					add(inst.Instruction{Op: op, Rd: rd, Operand: inst.Imm(v)})
				}
			}
		case inst.ShapeRdRnOperand:
			for _, rd := range regs {
				for _, rn := range regs {
					for _, o := range operands {
						add(inst.Instruction{Op: op, Rd: rd, Rn: rn, Operand: o})
					}
				}
			}
		case inst.ShapeRdRnRm:
			for _, rd := range regs {
				for _, rn := range regs {
					for _, rm := range regs {
						add(inst.Instruction{Op: op, Rd: rd, Rn: rn, Rm: rm})
					}
				}
			}
		case inst.ShapeRnOperand:
			for _, rn := range regs {
				for _, o := range operands {
					add(inst.Instruction{Op: op, Rn: rn, Operand: o})
				}
			}
		case inst.ShapeCsel:
			for _, rd := range regs {
				for _, rn := range regs {
					for _, rm := range regs {
						for c := inst.Condition(0); c < inst.ConditionCount; c++ {
							add(inst.Instruction{Op: op, Rd: rd, Rn: rn, Rm: rm, Cond: c})
						}
					}
				}
			}
		}
	}
	return out
}

// DefaultRegisters returns the registers mentioned by seq, plus XZR.
func DefaultRegisters(seq []inst.Instruction) []inst.Register {
	set := inst.NewRegSet(inst.XZR)
	for _, in := range seq {
		set = set.Union(in.Reads()).Union(in.Writes())
	}
	return set.Registers()
}

// DefaultImmediates returns the immediates appearing in seq, plus {0, 1}.
func DefaultImmediates(seq []inst.Instruction) []int64 {
	seen := map[int64]bool{0: true, 1: true}
	out := []int64{0, 1}
	for _, in := range seq {
		if in.Operand.IsImmediate() {
			v := in.Operand.Immediate()
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// EnumerateSequences visits every sequence of length 0..maxLen built from
// alphabet in non-decreasing cost order under metric, globally across all
// lengths — not length-first (SPEC_FULL.md §4.6, §9's ordering
// clarification: a cheaper longer sequence must be visited before a dearer
// shorter one under metrics like latency where cost and length diverge).
// Ties are broken by length, shortest first. visit returning false stops
// the visiting early; every sequence up to maxLen is still generated and
// sorted before the first visit.
func EnumerateSequences(alphabet []inst.Instruction, maxLen int, metric inst.CostMetric, visit func([]inst.Instruction) bool) {
	type candidate struct {
		seq  []inst.Instruction
		cost int
	}
	var all []candidate
	for k := 0; k <= maxLen; k++ {
		for _, seq := range sequencesOfLength(alphabet, k) {
			all = append(all, candidate{seq: seq, cost: inst.SeqCost(seq, metric)})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].cost != all[j].cost {
			return all[i].cost < all[j].cost
		}
		return len(all[i].seq) < len(all[j].seq)
	})
	for _, c := range all {
		if !visit(c.seq) {
			return
		}
	}
}

// sequencesOfLength materializes every length-k sequence built from
// alphabet, len(alphabet)^k of them, in memory at once. Over two registers
// the conditional selects alone contribute 512 instructions, so k = 3
// already means more than 10^8 sequences.
func sequencesOfLength(alphabet []inst.Instruction, k int) [][]inst.Instruction {
	if k == 0 {
		return [][]inst.Instruction{nil}
	}
	var all [][]inst.Instruction
	cur := make([]inst.Instruction, k)
	var rec func(pos int)
	rec = func(pos int) {
		if pos == k {
			cp := make([]inst.Instruction, k)
			copy(cp, cur)
			all = append(all, cp)
			return
		}
		for _, in := range alphabet {
			cur[pos] = in
			rec(pos + 1)
		}
	}
	rec(0)
	return all
}

// SequenceCount returns the total number of length-k sequences over
// alphabet, i.e. len(alphabet)^k — useful for budget estimation before
// calling EnumerateSequences.
func SequenceCount(alphabet []inst.Instruction, k int) int {
	n := 1
	for i := 0; i < k; i++ {
		n *= len(alphabet)
	}
	return n
}

package search

import "github.com/oisee/superopt64/pkg/inst"

// ShouldPrune reports whether seq can be discarded without running the
// equivalence checker: self-moves, dead writes, and adjacent independent
// instructions in non-canonical order are all wasted search effort that
// some other candidate (or a shorter one) already covers. Generalized
// from the donor engine's isSelfLoad/isDeadWrite/areIndependent pruner.
func ShouldPrune(seq []inst.Instruction) bool {
	for _, in := range seq {
		if isSelfMove(in) {
			return true
		}
	}
	if hasDeadWrite(seq) {
		return true
	}
	if hasOutOfOrderIndependentPair(seq) {
		return true
	}
	return false
}

// isSelfMove reports whether in is MovReg(rd, rd) — a no-op.
func isSelfMove(in inst.Instruction) bool {
	return in.Op == inst.MovReg && in.Rd == in.Rn
}

// hasDeadWrite reports whether some instruction writes a register that is
// overwritten by a later instruction before any instruction in between
// reads it.
func hasDeadWrite(seq []inst.Instruction) bool {
	for i, in := range seq {
		w := in.Writes()
		if w == 0 {
			continue
		}
		for j := i + 1; j < len(seq); j++ {
			if seq[j].Reads()&w != 0 {
				break // read before overwrite: not dead
			}
			if seq[j].Writes()&w != 0 {
				return true // overwritten with no intervening read
			}
		}
	}
	return false
}

// areIndependent reports whether a and b touch disjoint registers (no
// write/write, write/read, or read/write overlap) and neither one's flag
// def/use conflicts with the other's — the donor engine's pruner folds the
// flag register into the same masks so a flag-setter and a flag-reader (or
// two flag-setters) are never deemed reorderable.
func areIndependent(a, b inst.Instruction) bool {
	aw, bw := a.Writes(), b.Writes()
	ar, br := a.Reads(), b.Reads()
	if aw&bw != 0 || aw&br != 0 || bw&ar != 0 {
		return false
	}
	if a.SetsFlags() && (b.SetsFlags() || b.ReadsFlags()) {
		return false
	}
	if b.SetsFlags() && (a.SetsFlags() || a.ReadsFlags()) {
		return false
	}
	return true
}

// instKey produces a total order key for an instruction, used to canonicalize
// the relative order of independent adjacent instructions.
func instKey(in inst.Instruction) uint64 {
	return uint64(in.Op)<<40 | uint64(in.Rd)<<32 | uint64(in.Rn)<<24 | uint64(in.Rm)<<16 | uint64(in.Cond)<<8
}

// hasOutOfOrderIndependentPair reports whether any adjacent pair of
// independent instructions is in non-canonical (descending key) order —
// such a sequence is a duplicate of one already visited with the pair
// swapped, so it is safe to prune.
func hasOutOfOrderIndependentPair(seq []inst.Instruction) bool {
	for i := 0; i+1 < len(seq); i++ {
		a, b := seq[i], seq[i+1]
		if areIndependent(a, b) && instKey(a) > instKey(b) {
			return true
		}
	}
	return false
}

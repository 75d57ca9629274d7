package equiv

import (
	"github.com/oisee/superopt64/pkg/cpu"
	"github.com/oisee/superopt64/pkg/inst"
)

// maxSweepRegisters bounds how many free input registers the exhaustive
// fallback will cross-product over. Beyond this, a sweep over the
// representative domain is not exhaustive over every contributing
// dimension and must not be reported as Equivalent — it degrades to
// Unknown (SPEC_FULL.md §4.4's soundness bound).
const maxSweepRegisters = 2

// representativeDomain returns the stratified value set the reduced sweep
// iterates: every 256 low-byte pattern zero/sign/one-extended, every
// single-bit mask, and the boundary/all-ones set — generalizing the
// donor's exhaustiveReducedSweep from an 8-bit register file to 64-bit
// operands (DESIGN.md).
func representativeDomain() []uint64 {
	seen := make(map[uint64]bool)
	var out []uint64
	add := func(v uint64) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for b := 0; b < 256; b++ {
		add(uint64(b))                      // zero-extended
		add(uint64(int64(int8(b))))         // sign-extended
		add(uint64(b) | 0xFFFFFFFFFFFFFF00) // one-extended
	}
	for k := 0; k < 64; k++ {
		add(uint64(1) << uint(k))
	}
	for _, v := range boundaryValues {
		add(v)
	}
	return out
}

// contributingRegisters returns the registers read by either sequence,
// which is an over-approximation of the inputs an equivalence difference
// could depend on.
func contributingRegisters(a, b []inst.Instruction) []inst.Register {
	var set inst.RegSet
	for _, in := range a {
		set = set.Union(in.Reads())
	}
	for _, in := range b {
		set = set.Union(in.Reads())
	}
	return set.Registers()
}

// readsLiveInFlags reports whether seq reads the condition flags (Csel and
// its variants) before any of its own instructions set them — meaning the
// flag values seq observes come from outside the window and must be
// cross-producted like any other live-in dimension, not fixed to the base
// state's single sample.
func readsLiveInFlags(seq []inst.Instruction) bool {
	defined := false
	for _, in := range seq {
		if in.ReadsFlags() && !defined {
			return true
		}
		if in.SetsFlags() {
			defined = true
		}
	}
	return false
}

// flagDomain returns the flag combinations the sweep must cross: every one
// of the 16 if either sequence reads its live-in flags (DESIGN.md's
// flag-live-in contract), or just base's own sample otherwise — varying
// flags that no instruction in the window can observe would only waste
// sweep iterations.
func flagDomain(vary bool, base inst.Flags) []inst.Flags {
	if !vary {
		return []inst.Flags{base}
	}
	domain := make([]inst.Flags, 16)
	for v := 0; v < 16; v++ {
		domain[v] = inst.Flags{N: v&1 != 0, Z: v&2 != 0, C: v&4 != 0, V: v&8 != 0}
	}
	return domain
}

// exhaustiveSweep attempts to prove a == b on liveOut by crossing a
// representative domain over every register either sequence reads, and the
// full 16-way flag domain when either sequence reads live-in flags. It
// returns (equivalent, counterexample, exhaustive). exhaustive is false
// when there are too many contributing registers to cover every
// dimension — in that case the caller must treat the result as Unknown,
// never as Equivalent, regardless of what the partial sweep found.
func exhaustiveSweep(a, b []inst.Instruction, liveOut inst.RegSet, base cpu.State) (equivalent bool, counterexample cpu.State, exhaustive bool) {
	regs := contributingRegisters(a, b)
	if len(regs) > maxSweepRegisters {
		return false, cpu.State{}, false
	}
	domain := representativeDomain()
	flags := flagDomain(readsLiveInFlags(a) || readsLiveInFlags(b), base.Flags)

	var walk func(idx int, s cpu.State) (bool, cpu.State, bool)
	walk = func(idx int, s cpu.State) (bool, cpu.State, bool) {
		if idx == len(regs) {
			for _, fl := range flags {
				s2 := s
				s2.Flags = fl
				outA := cpu.ExecSeq(s2, a)
				outB := cpu.ExecSeq(s2, b)
				if !outA.EqualOn(outB, liveOut) {
					return false, s2, true
				}
			}
			return true, cpu.State{}, true
		}
		for _, v := range domain {
			s2 := s
			s2.Set(regs[idx], v)
			ok, ce, _ := walk(idx+1, s2)
			if !ok {
				return false, ce, true
			}
		}
		return true, cpu.State{}, true
	}

	ok, ce, _ := walk(0, base)
	return ok, ce, true
}

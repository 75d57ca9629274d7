// Package cpu implements the concrete interpreter: fast, input-driven
// execution of instruction sequences over a total 64-bit register file plus
// the four condition flags.
package cpu

import "github.com/oisee/superopt64/pkg/inst"

// State is a total mapping from Register to a 64-bit word, plus the four
// condition flags. XZR is constrained to read zero regardless of what is
// stored in its slot.
type State struct {
	Regs  [inst.RegisterCount]uint64
	Flags inst.Flags
}

// Get reads a register, honoring the XZR invariant.
func (s State) Get(r inst.Register) uint64 {
	if r == inst.XZR {
		return 0
	}
	return s.Regs[r]
}

// Set writes a register, silently dropping writes to XZR.
func (s *State) Set(r inst.Register, v uint64) {
	if r == inst.XZR {
		return
	}
	s.Regs[r] = v
}

// Equal reports whether two states agree on every register and flag.
func (s State) Equal(o State) bool {
	if s.Flags != o.Flags {
		return false
	}
	return s.Regs == o.Regs
}

// EqualOn reports whether two states agree on every register in mask
// (flags are never compared — they are never live-out, SPEC_FULL.md §3).
func (s State) EqualOn(o State, mask inst.RegSet) bool {
	for _, r := range mask.Registers() {
		if s.Get(r) != o.Get(r) {
			return false
		}
	}
	return true
}

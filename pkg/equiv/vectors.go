package equiv

import (
	"math/rand/v2"

	"github.com/oisee/superopt64/pkg/cpu"
	"github.com/oisee/superopt64/pkg/inst"
)

// boundaryValues are fixed boundary patterns folded into every random
// panel (SPEC_FULL.md §4.4): 0, 1, 2^31, 2^31-1, 2^63, 2^63-1, all-ones.
var boundaryValues = []uint64{
	0, 1,
	1 << 31, (1 << 31) - 1,
	1 << 63, (1 << 63) - 1,
	^uint64(0),
}

// smallInts are the small-integer samples {-2,-1,0,1,2} reinterpreted as
// uint64.
var smallInts = []uint64{
	^uint64(1), ^uint64(0), 0, 1, 2,
}

// GenerateStates builds n pseudo-random cpu.States from a mixed
// distribution: uniform random, small integers, boundary values, and
// one-hot / all-but-one-bit patterns, seeded deterministically by seed. The
// four condition flags are part of concrete state (SPEC_FULL.md §3) and are
// varied along with the registers, so a window that reads its live-in flags
// before setting them is exercised against both flag values, not just zero.
func GenerateStates(n int, seed uint64) []cpu.State {
	rng := rand.New(rand.NewPCG(seed, seed^0xC0FFEE))
	states := make([]cpu.State, n)
	for i := range states {
		var s cpu.State
		for r := inst.Register(0); r < inst.RegisterCount; r++ {
			s.Regs[r] = sampleValue(rng, i, r)
		}
		s.Flags = sampleFlags(rng)
		states[i] = s
	}
	return states
}

// sampleFlags draws a uniformly random combination of the four condition
// flags.
func sampleFlags(rng *rand.Rand) inst.Flags {
	v := rng.IntN(16)
	return inst.Flags{N: v&1 != 0, Z: v&2 != 0, C: v&4 != 0, V: v&8 != 0}
}

// sampleValue draws one register's value from the mixed distribution.
// The distribution bucket is chosen per (state index, register) so that a
// panel exercises every bucket across its states rather than collapsing
// to one bucket.
func sampleValue(rng *rand.Rand, stateIdx int, r inst.Register) uint64 {
	switch (stateIdx + int(r)) % 4 {
	case 0:
		return rng.Uint64()
	case 1:
		return smallInts[rng.IntN(len(smallInts))]
	case 2:
		return boundaryValues[rng.IntN(len(boundaryValues))]
	default:
		// one-hot or all-but-one-bit
		bit := uint(rng.IntN(64))
		if rng.IntN(2) == 0 {
			return 1 << bit
		}
		return ^(uint64(1) << bit)
	}
}

// DefaultRandomCount is the phase-1 panel size when Config.RandomCount is
// zero.
const DefaultRandomCount = 64

// DefaultPanelSize is the stochastic search correctness-term panel size
// (K) when unset.
const DefaultPanelSize = 16

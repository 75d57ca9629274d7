package parallel

import "math/rand/v2"

// pollRand decides, with a coin flip at a configured probability, whether a
// stochastic worker restarts its chain from a broadcast improvement
// (SPEC_FULL.md §4.9's restart_prob resolution).
type pollRand struct {
	rng *rand.Rand
}

func newPollRand(seed uint64) *pollRand {
	return &pollRand{rng: rand.New(rand.NewPCG(seed, seed^0xFACADE))}
}

func (p *pollRand) pollRestart(prob float64) bool {
	return p.rng.Float64() < prob
}

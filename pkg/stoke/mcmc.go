package stoke

import (
	"math"
	"math/rand/v2"

	"github.com/oisee/superopt64/pkg/inst"
)

// Chain runs a single Metropolis-Hastings walk over fixed-length candidate
// sequences, generalized from the donor engine's Chain. The correctness
// term dominates the energy function until the panel shows zero mismatches,
// at which point the walk optimizes cost alone (SPEC_FULL.md §4.7).
type Chain struct {
	target  []inst.Instruction
	liveOut inst.RegSet
	metric  inst.CostMetric
	panel   TestPanel
	weights Weights

	current     []inst.Instruction
	currentCost float64
	best        []inst.Instruction
	bestCost    float64
	bestSeqCost int

	temperature float64
	rng         *rand.Rand
	mutator     *Mutator

	Accepted int64
	Rejected int64
}

// NewChain seeds a chain at start (typically target itself) with the given
// initial temperature and deterministic seed.
func NewChain(target []inst.Instruction, start []inst.Instruction, liveOut inst.RegSet, metric inst.CostMetric, panel TestPanel, weights Weights, temperature float64, regs []inst.Register, imms []int64, seed uint64) *Chain {
	rng := rand.New(rand.NewPCG(seed, seed^0xDEADBEEF))
	c := &Chain{
		target:      target,
		liveOut:     liveOut,
		metric:      metric,
		panel:       panel,
		weights:     weights,
		current:     copySeq(start),
		temperature: temperature,
		rng:         rng,
		mutator:     NewMutator(rng, regs, imms),
	}
	c.currentCost = c.energyOf(c.current)
	c.best = copySeq(c.current)
	c.bestCost = c.currentCost
	c.bestSeqCost = inst.SeqCost(c.current, metric)
	return c
}

func (c *Chain) energyOf(seq []inst.Instruction) float64 {
	mism := Mismatches(c.panel, c.target, seq, c.liveOut)
	perf := Perf(seq, c.metric)
	return Energy(mism, perf, c.weights)
}

// Step proposes one mutation and accepts or rejects it per the Metropolis
// criterion, returning true if the proposal was accepted. decay anneals the
// temperature multiplicatively after every step.
func (c *Chain) Step(decay float64) bool {
	proposal := c.mutator.Mutate(c.current)
	proposalCost := c.energyOf(proposal)
	delta := proposalCost - c.currentCost

	accept := delta <= 0
	if !accept && c.temperature > 0 {
		accept = c.rng.Float64() < math.Exp(-delta/c.temperature)
	}

	if accept {
		c.current = proposal
		c.currentCost = proposalCost
		c.Accepted++
		if proposalCost < c.bestCost {
			c.best = copySeq(proposal)
			c.bestCost = proposalCost
			c.bestSeqCost = inst.SeqCost(proposal, c.metric)
		}
	} else {
		c.Rejected++
	}

	c.temperature *= decay
	return accept
}

// Current returns the chain's present sequence.
func (c *Chain) Current() []inst.Instruction { return c.current }

// Best returns the lowest-energy sequence seen so far.
func (c *Chain) Best() []inst.Instruction { return c.best }

// BestEnergy returns the energy of Best.
func (c *Chain) BestEnergy() float64 { return c.bestCost }

// IsShorter reports whether Best is strictly cheaper under metric than
// target — a necessary (but not sufficient, pending formal verification)
// condition for Best to be worth reporting.
func (c *Chain) IsShorter() bool {
	return Mismatches(c.panel, c.target, c.best, c.liveOut) == 0 && c.bestSeqCost < inst.SeqCost(c.target, c.metric)
}

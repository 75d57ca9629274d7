// Package parallel implements the parallel search coordinator (SPEC_FULL.md
// §4.9): a fixed worker pool running stochastic and symbolic search
// strategies concurrently, sharing a mutex-guarded best-so-far record and
// broadcasting improvements to all workers. Generalized from the donor
// engine's search.WorkerPool/RunTasks goroutine-per-worker pattern. This
// package is separate from pkg/search (rather than living inside it, as the
// donor's WorkerPool does) because it must import pkg/search, pkg/stoke, and
// pkg/symsearch together, and pkg/symsearch itself imports pkg/search's
// alphabet machinery — folding the coordinator into pkg/search would create
// an import cycle.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/oisee/superopt64/pkg/equiv"
	"github.com/oisee/superopt64/pkg/inst"
	"github.com/oisee/superopt64/pkg/search"
	"github.com/oisee/superopt64/pkg/stoke"
	"github.com/oisee/superopt64/pkg/symsearch"
)

// Record is a published best-so-far: a verified-equivalent sequence and its
// cost under the configured metric.
type Record struct {
	Seq  []inst.Instruction
	Cost int
}

// coordinator owns the shared best-so-far record and fans out updates to
// subscribed workers, mirroring the donor's WorkerPool.mu pattern.
type coordinator struct {
	mu          sync.Mutex
	best        Record
	subscribers []chan Record
}

func newCoordinator(initial Record) *coordinator {
	return &coordinator{best: initial}
}

// subscribe returns a buffered channel that always holds the latest
// broadcast record (capacity 1; publish drains any stale value before
// pushing the new one, so delivery is eventually consistent per
// SPEC_FULL.md §5).
func (c *coordinator) subscribe() <-chan Record {
	ch := make(chan Record, 1)
	c.mu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.mu.Unlock()
	return ch
}

// publish attempts to install rec as the new best-so-far. It wins only if
// rec.Cost is strictly lower than the current record; on a win it is
// broadcast to every subscriber.
func (c *coordinator) publish(rec Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec.Cost >= c.best.Cost {
		return false
	}
	c.best = rec
	for _, ch := range c.subscribers {
		select {
		case <-ch: // drop stale value
		default:
		}
		select {
		case ch <- rec:
		default:
		}
	}
	return true
}

func (c *coordinator) snapshot() Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.best
}

// Config configures a coordinated multi-worker search run.
type Config struct {
	Workers     int  // default runtime.NumCPU()
	Hybrid      bool // worker 0 runs symbolic search, the rest stochastic
	RestartProb float64

	Metric      inst.CostMetric
	LiveOut     inst.RegSet
	Registers   []inst.Register
	Immediates  []int64
	EquivConfig equiv.Config

	Budget time.Duration // wall-clock budget, 0 = unbounded

	StokeSteps       int
	StokeTemperature float64
	StokeDecay       float64
	StokePanelSize   int

	SymMaxLen             int
	SymMode               symsearch.Mode
	SymPerTemplateTimeout time.Duration

	Seed uint64
}

// Result is the coordinator's final answer: the best verified-equivalent
// sequence any worker published, or the original target if none improved.
type Result struct {
	Target  []inst.Instruction
	Best    []inst.Instruction
	Elapsed time.Duration
}

// Run launches cfg.Workers workers against target and returns once they
// have all terminated (local budget, global wall-clock budget, or context
// cancellation — SPEC_FULL.md §4.9's termination rule). The coordinator
// itself signals shutdown by closing the context's Done channel once the
// budget elapses; a worker's own sync.WaitGroup completion is the final
// join point, exactly as the donor's RunTasks waits on its WaitGroup.
func Run(target []inst.Instruction, cfg Config) Result {
	start := time.Now()
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	restartProb := cfg.RestartProb
	if restartProb == 0 {
		restartProb = 0.2 // SPEC_FULL.md §9 Open Question resolution
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if cfg.Budget > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Budget)
		defer cancel()
	}

	coord := newCoordinator(Record{Seq: target, Cost: inst.SeqCost(target, cfg.Metric)})

	regs := cfg.Registers
	if regs == nil {
		regs = search.DefaultRegisters(target)
	}
	imms := cfg.Immediates
	if imms == nil {
		imms = search.DefaultImmediates(target)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		sub := coord.subscribe()
		wg.Add(1)
		go func(id int, sub <-chan Record) {
			defer wg.Done()
			if cfg.Hybrid && id == 0 {
				runSymbolicWorker(ctx, coord, target, cfg, regs, imms, sub)
			} else {
				runStochasticWorker(ctx, coord, target, cfg, regs, imms, sub, restartProb, cfg.Seed+uint64(id))
			}
		}(i, sub)
	}
	wg.Wait()

	best := coord.snapshot()
	return Result{Target: target, Best: best.Seq, Elapsed: time.Since(start)}
}

// runStochasticWorker runs an independent MCMC chain, verifying and
// publishing any improvement the equivalence checker confirms, and
// optionally restarting from a broadcast improvement per SPEC_FULL.md §4.9.
func runStochasticWorker(ctx context.Context, coord *coordinator, target []inst.Instruction, cfg Config, regs []inst.Register, imms []int64, sub <-chan Record, restartProb float64, seed uint64) {
	panel := stoke.NewTestPanel(cfg.StokePanelSize, seed)
	temperature := cfg.StokeTemperature
	if temperature == 0 {
		temperature = 2.0
	}
	decay := cfg.StokeDecay
	if decay == 0 {
		decay = 0.99
	}
	chain := stoke.NewChain(target, target, cfg.LiveOut, cfg.Metric, panel, stoke.DefaultWeights, temperature, regs, imms, seed)
	rng := newPollRand(seed)

	steps := cfg.StokeSteps
	if steps <= 0 {
		steps = 10000
	}
	for i := 0; i < steps; i++ {
		if ctx.Err() != nil {
			return
		}
		chain.Step(decay)

		if chain.IsShorter() {
			best := coord.snapshot()
			candCost := inst.SeqCost(chain.Best(), cfg.Metric)
			if candCost < best.Cost {
				res := equiv.Check(target, chain.Best(), cfg.LiveOut, cfg.EquivConfig)
				if res.Status == equiv.Equivalent {
					coord.publish(Record{Seq: chain.Best(), Cost: candCost})
				}
			}
		}

		if i%50 == 0 {
			select {
			case rec := <-sub:
				if rec.Cost < inst.SeqCost(chain.Current(), cfg.Metric) && rng.pollRestart(restartProb) {
					chain = stoke.NewChain(target, rec.Seq, cfg.LiveOut, cfg.Metric, panel, stoke.DefaultWeights, temperature, regs, imms, seed)
				}
			default:
			}
		}
	}
}

// runSymbolicWorker repeatedly queries symsearch against the current
// coordinator best, tightening its bound whenever a stochastic worker
// publishes a cheaper verified sequence.
func runSymbolicWorker(ctx context.Context, coord *coordinator, target []inst.Instruction, cfg Config, regs []inst.Register, imms []int64, sub <-chan Record) {
	maxLen := cfg.SymMaxLen
	if maxLen <= 0 {
		maxLen = len(target)
	}
	for {
		if ctx.Err() != nil {
			return
		}
		best := coord.snapshot()
		symCfg := symsearch.Config{
			MaxLen:             maxLen,
			Metric:             cfg.Metric,
			Registers:          regs,
			Immediates:         imms,
			LiveOut:            cfg.LiveOut,
			EquivConfig:        cfg.EquivConfig,
			Mode:               cfg.SymMode,
			PerTemplateTimeout: cfg.SymPerTemplateTimeout,
		}
		res := symsearch.Search(best.Seq, symCfg)
		if res.Found {
			cost := inst.SeqCost(res.Best, cfg.Metric)
			if !coord.publish(Record{Seq: res.Best, Cost: cost}) {
				return // no further improvement possible from here
			}
		} else {
			return // this bound is exhausted; nothing left to tighten
		}

		select {
		case <-sub:
		default:
		}
	}
}

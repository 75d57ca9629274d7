package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oisee/superopt64/internal/obslog"
	"github.com/oisee/superopt64/pkg/asmtext"
	"github.com/oisee/superopt64/pkg/encode"
	"github.com/oisee/superopt64/pkg/equiv"
	"github.com/oisee/superopt64/pkg/inst"
	"github.com/oisee/superopt64/pkg/parallel"
	"github.com/oisee/superopt64/pkg/result"
	"github.com/oisee/superopt64/pkg/search"
	"github.com/oisee/superopt64/pkg/stoke"
	"github.com/oisee/superopt64/pkg/symsearch"
	"github.com/oisee/superopt64/pkg/verify"
)

var (
	logLevel   string
	metricName string
	logger     *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "superopt",
		Short: "64-bit integer-ISA superoptimizer — find cost-minimal equivalent instruction sequences",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := obslog.ParseLevel(logLevel)
			logger = obslog.New(os.Stderr, level, false)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&metricName, "metric", "instruction_count", "cost metric: instruction_count, latency, code_size")

	rootCmd.AddCommand(newTargetCmd(), newVerifyJSONLCmd(), newExportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveMetric() (inst.CostMetric, error) {
	m, ok := inst.ParseCostMetric(metricName)
	if !ok {
		return 0, fmt.Errorf("unknown --metric %q", metricName)
	}
	return m, nil
}

func parseLiveOut(s string, seq []inst.Instruction) (inst.RegSet, error) {
	if s == "" {
		var set inst.RegSet
		for _, in := range seq {
			set = set.Union(in.Writes())
		}
		return set, nil
	}
	var set inst.RegSet
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		r, ok := inst.ParseRegister(tok)
		if !ok {
			return 0, fmt.Errorf("unknown register %q in --live-out", tok)
		}
		set = set.Add(r)
	}
	return set, nil
}

func newTargetCmd() *cobra.Command {
	var (
		algo           string
		liveOutStr     string
		maxLen         int
		seed           uint64
		workers        int
		budget         time.Duration
		checkpointPath string
		output         string
	)

	cmd := &cobra.Command{
		Use:   "target [instructions]",
		Short: "Find a cost-minimal equivalent for a specific instruction sequence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			seq, err := asmtext.ReadInline(text)
			if err != nil {
				return fmt.Errorf("parse target: %w", err)
			}
			metric, err := resolveMetric()
			if err != nil {
				return err
			}
			liveOut, err := parseLiveOut(liveOutStr, seq)
			if err != nil {
				return err
			}

			logger.Info("target parsed", "instructions", len(seq), "cost", inst.SeqCost(seq, metric))

			var best []inst.Instruction
			switch algo {
			case "enum":
				out := search.SearchSingle(seq, search.Config{
					MaxLen:      maxLen,
					Metric:      metric,
					LiveOut:     liveOut,
					EquivConfig: equiv.Config{Seed: seed},
				})
				best = out.Best
				logger.Info("enumerative search done", "status", out.VerificationStatus.String(), "elapsed", out.Elapsed)

			case "stoke":
				chains := workers
				if chains <= 0 {
					chains = runtime.NumCPU()
				}
				res := stoke.Run(seq, stoke.Config{
					Chains:      chains,
					Steps:       200_000,
					Temperature: 2.0,
					Decay:       0.9999,
					Metric:      metric,
					LiveOut:     liveOut,
					Seed:        seed,
				})
				best = res.Best
				if res.Improved {
					checkResult := equiv.Check(seq, best, liveOut, equiv.Config{Seed: seed})
					if checkResult.Status != equiv.Equivalent {
						logger.Warn("stochastic candidate failed verification, falling back to original")
						best = seq
					}
				}
				logger.Info("stochastic search done", "improved", res.Improved, "elapsed", res.Elapsed)

			case "symbolic":
				res := symsearch.Search(seq, symsearch.Config{
					MaxLen:             maxLen,
					Metric:             metric,
					LiveOut:            liveOut,
					EquivConfig:        equiv.Config{Seed: seed},
					PerTemplateTimeout: time.Second,
				})
				best = res.Best
				logger.Info("symbolic search done", "found", res.Found, "elapsed", res.Elapsed)

			case "parallel":
				res := parallel.Run(seq, parallel.Config{
					Workers:          workers,
					Hybrid:           true,
					Metric:           metric,
					LiveOut:          liveOut,
					EquivConfig:      equiv.Config{Seed: seed},
					Budget:           budget,
					StokeSteps:       50_000,
					StokeTemperature: 2.0,
					StokeDecay:       0.999,
					StokePanelSize:   equiv.DefaultPanelSize,
					SymMaxLen:        maxLen,
					Seed:             seed,
				})
				best = res.Best
				logger.Info("coordinated search done", "elapsed", res.Elapsed)

			default:
				return fmt.Errorf("unknown --algo %q (want enum, stoke, symbolic, or parallel)", algo)
			}

			fmt.Printf("Target:      %s (%d under %s)\n", asmtext.WriteInline(seq), inst.SeqCost(seq, metric), metric)
			fmt.Printf("Replacement: %s (%d under %s)\n", asmtext.WriteInline(best), inst.SeqCost(best, metric), metric)

			if output != "" {
				rule := result.Rule{Source: seq, Replacement: best, Metric: metric, Saved: inst.SeqCost(seq, metric) - inst.SeqCost(best, metric), LiveOut: liveOut}
				tbl := result.NewTable()
				tbl.Add(rule)
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				return writeRulesJSON(f, tbl.Rules())
			}
			if checkpointPath != "" {
				rule := result.Rule{Source: seq, Replacement: best, Metric: metric, Saved: inst.SeqCost(seq, metric) - inst.SeqCost(best, metric), LiveOut: liveOut}
				return result.SaveCheckpoint(checkpointPath, &result.Checkpoint{Rules: []result.Rule{rule}, CompletedTarget: 1, TargetLen: len(seq)})
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&algo, "algo", "enum", "search strategy: enum, stoke, symbolic, parallel")
	cmd.Flags().StringVar(&liveOutStr, "live-out", "", "comma-separated live-out registers (default: every register the target writes)")
	cmd.Flags().IntVar(&maxLen, "max-len", 4, "maximum candidate sequence length")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "deterministic seed for randomized phases")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker/chain count (0 = NumCPU)")
	cmd.Flags().DurationVar(&budget, "budget", 2*time.Second, "wall-clock budget for --algo=parallel")
	cmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "gob checkpoint file to write after the run")
	cmd.Flags().StringVar(&output, "output", "", "JSON rule output path")
	return cmd
}

func newVerifyJSONLCmd() *cobra.Command {
	var seed uint64
	var randomCount int
	var fastOnly bool

	cmd := &cobra.Command{
		Use:   "verify-jsonl [file.jsonl]",
		Short: "Re-verify a batch of JSONL rules against the equivalence checker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			cfg := equiv.Config{Seed: seed, RandomCount: randomCount, FastOnly: fastOnly}
			sum, err := verify.Batch(f, cfg, func(o verify.Outcome) {
				if o.Err != nil {
					fmt.Printf("  [%d] SKIP: %v\n", o.Line, o.Err)
					return
				}
				fmt.Printf("  [%d] %s: %s -> %s\n", o.Line, o.Status, o.Record.SourceASM, o.Record.ReplacementASM)
			})
			if err != nil {
				return err
			}
			fmt.Printf("\n%d total, %d passed, %d failed, %d skipped\n", sum.Total, sum.Passed, sum.Failed, sum.Skipped)
			if sum.Failed > 0 {
				return fmt.Errorf("%d rules failed verification", sum.Failed)
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 1, "phase-1 random testing seed")
	cmd.Flags().IntVar(&randomCount, "random-count", 0, "phase-1 panel size (0 = default)")
	cmd.Flags().BoolVar(&fastOnly, "fast-only", false, "skip phase-2 decision procedure")
	return cmd
}

func newExportCmd() *cobra.Command {
	var targetLen int
	var output string
	var wordsOutput string

	cmd := &cobra.Command{
		Use:   "export [replacement instructions]",
		Short: "Pad a replacement sequence to the original window length and encode it to machine words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := asmtext.ReadInline(strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("parse replacement: %w", err)
			}
			if targetLen > 0 {
				if targetLen < len(seq) {
					return fmt.Errorf("--target-len %d is shorter than the %d-instruction replacement", targetLen, len(seq))
				}
				seq = padWithNop(seq, targetLen)
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := asmtext.WriteSequence(out, seq); err != nil {
				return err
			}

			wordsOut := os.Stderr
			if wordsOutput != "" {
				f, err := os.Create(wordsOutput)
				if err != nil {
					return err
				}
				defer f.Close()
				wordsOut = f
			}
			for _, in := range seq {
				word, err := encode.Word(in)
				if err != nil {
					fmt.Fprintf(wordsOut, "%s: unavailable (%v)\n", asmtext.WriteInline([]inst.Instruction{in}), err)
					continue
				}
				fmt.Fprintf(wordsOut, "%08x\n", word)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&targetLen, "target-len", 0, "pad the replacement to this many instructions with MovReg(XZR,XZR) filler (0 = no padding)")
	cmd.Flags().StringVar(&output, "output", "", "assembly output path (default: stdout)")
	cmd.Flags().StringVar(&wordsOutput, "words-output", "", "machine word output path (default: stderr)")
	return cmd
}

// padWithNop appends Nop markers, lowered to the true machine no-op
// MovReg(XZR,XZR), until seq reaches targetLen — the outer patching step
// SPEC_FULL.md §6 assigns to export rather than to the search core, which
// never emits Nop into a candidate it proposes.
func padWithNop(seq []inst.Instruction, targetLen int) []inst.Instruction {
	padded := make([]inst.Instruction, len(seq), targetLen)
	copy(padded, seq)
	for len(padded) < targetLen {
		padded = append(padded, lowerNop(inst.Instruction{Op: inst.Nop}))
	}
	return padded
}

// lowerNop rewrites the internal Nop marker into MovReg(XZR,XZR): a real,
// always-encodable instruction that is identity on every observed register
// (XZR writes are dropped), since Nop itself is never encodable.
func lowerNop(in inst.Instruction) inst.Instruction {
	if in.Op != inst.Nop {
		return in
	}
	return inst.Instruction{Op: inst.MovReg, Rd: inst.XZR, Rn: inst.XZR}
}

func writeRulesJSON(w *os.File, rules []result.Rule) error {
	for i, r := range rules {
		fmt.Fprintf(w, "{\"source\":%q,\"replacement\":%q,\"metric\":%q,\"saved\":%d}",
			asmtext.WriteInline(r.Source), asmtext.WriteInline(r.Replacement), r.Metric.String(), r.Saved)
		if i < len(rules)-1 {
			fmt.Fprint(w, "\n")
		}
	}
	fmt.Fprintln(w)
	return nil
}

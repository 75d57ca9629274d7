// Package verify implements JSONL batch verification of discovered rules,
// generalized from the donor CLI's verifyJSONL (cmd/z80opt/main.go),
// which re-checks externally produced (e.g. GPU-search) rules against the
// CPU-side equivalence checker before they are trusted.
package verify

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/oisee/superopt64/pkg/asmtext"
	"github.com/oisee/superopt64/pkg/equiv"
	"github.com/oisee/superopt64/pkg/inst"
)

// Record is one line of a JSONL rule batch.
type Record struct {
	SourceASM      string `json:"source_asm"`
	ReplacementASM string `json:"replacement_asm"`
	LiveOutMask    uint64 `json:"live_out_mask"`
}

// Outcome reports one record's verification result.
type Outcome struct {
	Line   int
	Record Record
	Status equiv.Status
	Err    error
}

// Summary totals a batch run.
type Summary struct {
	Total, Passed, Failed, Skipped int
}

// Batch reads JSONL records from r, checks each against cfg, and reports
// every outcome via report as it completes (so a CLI can stream progress
// exactly as the donor's verifyJSONL prints per-line PASS/FAIL).
func Batch(r io.Reader, cfg equiv.Config, report func(Outcome)) (Summary, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)

	var sum Summary
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sum.Total++

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			sum.Skipped++
			report(Outcome{Line: lineNo, Err: fmt.Errorf("json parse: %w", err)})
			continue
		}

		source, err := asmtext.ReadInline(rec.SourceASM)
		if err != nil {
			sum.Skipped++
			report(Outcome{Line: lineNo, Record: rec, Err: fmt.Errorf("source: %w", err)})
			continue
		}
		replacement, err := asmtext.ReadInline(rec.ReplacementASM)
		if err != nil {
			sum.Skipped++
			report(Outcome{Line: lineNo, Record: rec, Err: fmt.Errorf("replacement: %w", err)})
			continue
		}

		liveOut := inst.RegSet(rec.LiveOutMask)
		if liveOut == 0 {
			liveOut = inst.NewRegSet(inst.X0)
		}
		res := equiv.Check(source, replacement, liveOut, cfg)
		switch res.Status {
		case equiv.Equivalent:
			sum.Passed++
		default:
			sum.Failed++
		}
		report(Outcome{Line: lineNo, Record: rec, Status: res.Status})
	}
	if err := scanner.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}

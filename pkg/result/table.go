// Package result persists discovered optimization rules and search
// checkpoints, generalized from the donor engine's pkg/result package.
package result

import (
	"sort"
	"sync"

	"github.com/oisee/superopt64/pkg/inst"
)

// Rule records a single verified optimization: Source was proved
// equivalent to Replacement under Metric, saving Saved units of cost.
// Unlike the donor's Rule, this type carries no DeadFlags field — the
// donor referenced one in sibling files without ever defining it on the
// struct itself, and this module has no masked-equivalence mode to need it
// (flags are never live-out; see pkg/inst's Flags model).
type Rule struct {
	Source      []inst.Instruction
	Replacement []inst.Instruction
	Metric      inst.CostMetric
	Saved       int
	LiveOut     inst.RegSet
}

// Table stores discovered optimization rules behind a mutex, safe for
// concurrent use by the worker pool.
type Table struct {
	mu    sync.Mutex
	rules []Rule
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts a rule into the table.
func (t *Table) Add(r Rule) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = append(t.rules, r)
}

// Rules returns a copy of all rules, sorted by savings (descending).
func (t *Table) Rules() []Rule {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Saved > out[j].Saved
	})
	return out
}

// Len returns the number of rules.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rules)
}

// Package suite accumulates per-suite pass/fail counters so each failure
// record can self-report its suite context without a second round-trip.
package suite

import (
	"sync"

	"github.com/ddn-qa/testharness/pkg/report"
)

// Tracker counts test outcomes for one suite. Snapshots taken at failure
// time are deliberately partial: counts as of the failing test, not
// suite-final. Later tests are reconciled by the end-of-suite backfill.
type Tracker struct {
	mu    sync.Mutex
	stats report.SuiteStats
}

func NewTracker(suiteName string) *Tracker {
	return &Tracker{stats: report.SuiteStats{SuiteName: suiteName}}
}

func (t *Tracker) RecordPass() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.PassCount++
	t.stats.TotalCount++
}

func (t *Tracker) RecordFail() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.FailCount++
	t.stats.TotalCount++
}

// Snapshot returns a value copy of the current counters.
func (t *Tracker) Snapshot() report.SuiteStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

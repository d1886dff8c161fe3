// Package listener adapts the reporter to a test runner's suite lifecycle:
// it tracks the running suite's counters, measures test durations, and fires
// failure/success reports as tests complete.
package listener

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ddn-qa/testharness/pkg/report"
	"github.com/ddn-qa/testharness/pkg/suite"
)

type testContext struct {
	name     string
	category string
	started  time.Time
}

// Listener receives suite/test lifecycle callbacks from the runner. All
// reporting goes through the reporter's fault boundary, so a reporting
// outage is invisible to the suite's outcome.
type Listener struct {
	reporter *report.Reporter
	logger   *slog.Logger
	nowFn    func() time.Time

	mu      sync.Mutex
	tracker *suite.Tracker
	current *testContext
}

func New(rep *report.Reporter) *Listener {
	return &Listener{
		reporter: rep,
		logger:   slog.Default().With("component", "listener"),
		nowFn:    time.Now,
	}
}

// WithClock injects the time source for duration measurement.
func (l *Listener) WithClock(now func() time.Time) *Listener {
	l.nowFn = now
	return l
}

// StartSuite begins counter tracking for a suite.
func (l *Listener) StartSuite(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tracker = suite.NewTracker(name)
	l.logger.Info("suite started", "suite", name)
}

// StartTest records the running test's identity and start time.
func (l *Listener) StartTest(name, category string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = &testContext{name: name, category: category, started: l.nowFn()}
}

// FailTest counts the failure and reports it with the suite's current
// counter snapshot (including this failure). Returns the record id, or ""
// when the report was dropped or suppressed.
func (l *Listener) FailTest(ctx context.Context, errorMessage, stackTrace string) string {
	l.mu.Lock()
	cur := l.current
	tracker := l.tracker
	l.mu.Unlock()

	if cur == nil {
		l.logger.Warn("test failure outside of a running test, not reported")
		return ""
	}
	if stackTrace == "" {
		stackTrace = errorMessage
	}

	raw := report.RawFailure{
		TestName:     cur.name,
		TestCategory: cur.category,
		ErrorMessage: errorMessage,
		StackTrace:   stackTrace,
		DurationMS:   l.nowFn().Sub(cur.started).Milliseconds(),
	}
	if tracker != nil {
		tracker.RecordFail()
		snap := tracker.Snapshot()
		raw.Suite = &snap
	}

	return l.reporter.ReportFailure(ctx, raw)
}

// PassTest counts the pass and fires a best-effort success record.
func (l *Listener) PassTest(ctx context.Context) {
	l.mu.Lock()
	cur := l.current
	tracker := l.tracker
	l.mu.Unlock()

	if cur == nil {
		return
	}
	if tracker != nil {
		tracker.RecordPass()
	}

	l.reporter.ReportSuccess(ctx, report.TestResult{
		TestName:     cur.name,
		TestCategory: cur.category,
		DurationMS:   l.nowFn().Sub(cur.started).Milliseconds(),
	})
}

// EndSuite backfills the suite's final counters onto this build's failure
// rows and logs the summary. Best-effort.
func (l *Listener) EndSuite(ctx context.Context) {
	l.mu.Lock()
	tracker := l.tracker
	l.tracker = nil
	l.current = nil
	l.mu.Unlock()

	if tracker == nil {
		return
	}
	stats := tracker.Snapshot()
	l.logger.Info("suite ended",
		"suite", stats.SuiteName,
		"pass", stats.PassCount, "fail", stats.FailCount, "total", stats.TotalCount)

	if stats.FailCount > 0 {
		l.reporter.BackfillSuiteStats(ctx, stats)
	}
}

// Close tears down the reporter. Call once when the whole run ends.
func (l *Listener) Close() error {
	return l.reporter.Close()
}

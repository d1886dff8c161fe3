// Package report turns failing test assertions plus ambient CI state into
// durable, structured records for trend analysis and downstream triage.
//
// The one hard rule in this package: no fault on the reporting path may become
// a new test failure. The Reporter's public methods never return errors.
package report

import (
	"time"

	"github.com/ddn-qa/testharness/pkg/ci"
)

// Record field contract, shared with the dashboard and the JS reporter.
// Changing any of these values is a breaking schema change.
const (
	StatusFailure = "FAILURE"
	StatusSuccess = "SUCCESS"

	DefaultProduct   = "DDN Storage"
	DefaultSuiteName = "Unknown Suite"
	SystemName       = "DDN Storage Tests"
)

// SuiteStats is the suite context embedded in each failure record: the
// counters as of the moment the failing test finished, not suite-final.
type SuiteStats struct {
	SuiteName  string `json:"suite_name"`
	PassCount  int    `json:"pass_count"`
	FailCount  int    `json:"fail_count"`
	TotalCount int    `json:"total_count"`
}

// RawFailure is the caller-supplied view of one failed assertion. Everything
// except TestName is optional; the normalizer fills defaults.
type RawFailure struct {
	TestName     string
	TestCategory string
	Product      string
	ErrorMessage string
	StackTrace   string
	DurationMS   int64

	// Suite is the caller's counter snapshot at failure time. Nil means an
	// ad-hoc single failure (fail=1, total=1).
	Suite *SuiteStats

	// Extra fields travel verbatim into the record's extra block. Keys
	// colliding with computed record fields are dropped, never merged.
	Extra map[string]any
}

// FailureRecord is the persisted failure document.
type FailureRecord struct {
	ID           string `json:"id,omitempty"`
	TestName     string `json:"test_name"`
	TestCategory string `json:"test_category,omitempty"`
	Product      string `json:"product"`
	ErrorMessage string `json:"error_message"`
	StackTrace   string `json:"stack_trace"`
	DurationMS   int64  `json:"duration_ms"`

	SuiteStats
	ci.RunIdentity

	Status           string `json:"status"`
	Analyzed         bool   `json:"analyzed"`
	AnalysisRequired bool   `json:"analysis_required"`

	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`

	Environment string `json:"environment"`
	System      string `json:"system"`

	Extra map[string]any `json:"extra,omitempty"`
}

// TestResult is the caller-supplied view of one passed test for the
// lower-priority success/trend path.
type TestResult struct {
	TestName     string
	TestCategory string
	DurationMS   int64
}

// SuccessRecord is the lightweight persisted pass document. It deliberately
// carries no suite or full run-identity embedding.
type SuccessRecord struct {
	ID           string    `json:"id,omitempty"`
	TestName     string    `json:"test_name"`
	TestCategory string    `json:"test_category,omitempty"`
	Status       string    `json:"status"`
	DurationMS   int64     `json:"duration_ms"`
	BuildID      string    `json:"build_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// reservedKeys are record fields a caller's Extra map may never shadow.
var reservedKeys = map[string]struct{}{
	"id":                {},
	"test_name":         {},
	"test_category":     {},
	"product":           {},
	"error_message":     {},
	"stack_trace":       {},
	"duration_ms":       {},
	"suite_name":        {},
	"pass_count":        {},
	"fail_count":        {},
	"total_count":       {},
	"build_id":          {},
	"job_name":          {},
	"build_url":         {},
	"git_commit":        {},
	"git_branch":        {},
	"status":            {},
	"analyzed":          {},
	"analysis_required": {},
	"timestamp":         {},
	"created_at":        {},
	"environment":       {},
	"system":            {},
	"extra":             {},
}

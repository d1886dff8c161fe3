package report

import (
	"time"

	"github.com/ddn-qa/testharness/pkg/ci"
)

// Normalize merges a raw failure with a freshly resolved run identity into a
// schema-conformant record ready for persistence. It is pure: no I/O, no
// failure mode. Malformed optional values pass through unchanged; the only
// processing beyond defaulting is dropping reserved keys from Extra.
func Normalize(raw RawFailure, env ci.CIEnvironment, environment string, now time.Time) FailureRecord {
	now = now.UTC()

	rec := FailureRecord{
		TestName:     raw.TestName,
		TestCategory: raw.TestCategory,
		Product:      raw.Product,
		ErrorMessage: raw.ErrorMessage,
		StackTrace:   raw.StackTrace,
		DurationMS:   raw.DurationMS,

		RunIdentity: ci.Resolve(env),

		Status:           StatusFailure,
		Analyzed:         false,
		AnalysisRequired: true,

		Timestamp: now,
		CreatedAt: now,

		Environment: environment,
		System:      SystemName,
	}

	if rec.Product == "" {
		rec.Product = DefaultProduct
	}
	if rec.Environment == "" {
		rec.Environment = "test"
	}

	if raw.Suite != nil {
		// Value copy, never recomputed: the caller owns these counters.
		rec.SuiteStats = *raw.Suite
	} else {
		rec.SuiteStats = SuiteStats{FailCount: 1, TotalCount: 1}
	}
	if rec.SuiteName == "" {
		if raw.TestCategory != "" {
			rec.SuiteName = raw.TestCategory
		} else {
			rec.SuiteName = DefaultSuiteName
		}
	}

	if len(raw.Extra) > 0 {
		rec.Extra = make(map[string]any, len(raw.Extra))
		for k, v := range raw.Extra {
			if _, reserved := reservedKeys[k]; reserved {
				continue
			}
			rec.Extra[k] = v
		}
		if len(rec.Extra) == 0 {
			rec.Extra = nil
		}
	}

	return rec
}

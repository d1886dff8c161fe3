package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ddn-qa/testharness/pkg/ci"
)

var testNow = time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)

func TestNormalizeDefaults(t *testing.T) {
	rec := Normalize(RawFailure{TestName: "Volume Create Should Succeed"}, ci.CIEnvironment{}, "", testNow)

	assert.Equal(t, "Volume Create Should Succeed", rec.TestName)
	assert.Equal(t, "DDN Storage", rec.Product)
	assert.Equal(t, "Unknown Suite", rec.SuiteName)
	assert.Equal(t, 0, rec.PassCount)
	assert.Equal(t, 1, rec.FailCount)
	assert.Equal(t, 1, rec.TotalCount)
	assert.Equal(t, "test", rec.Environment)
}

func TestNormalizeFixedFields(t *testing.T) {
	rec := Normalize(RawFailure{TestName: "t"}, ci.CIEnvironment{}, "staging", testNow)

	assert.Equal(t, "FAILURE", rec.Status)
	assert.False(t, rec.Analyzed)
	assert.True(t, rec.AnalysisRequired)
	assert.Equal(t, "DDN Storage Tests", rec.System)
	assert.Equal(t, testNow, rec.Timestamp)
	assert.Equal(t, rec.Timestamp, rec.CreatedAt)
	assert.Equal(t, "staging", rec.Environment)
}

func TestNormalizeSuiteNameFallsBackToCategory(t *testing.T) {
	rec := Normalize(RawFailure{TestName: "t", TestCategory: "S3_SECURITY"}, ci.CIEnvironment{}, "", testNow)
	assert.Equal(t, "S3_SECURITY", rec.SuiteName)
	assert.Equal(t, "S3_SECURITY", rec.TestCategory)
}

func TestNormalizeSuiteStatsPassThrough(t *testing.T) {
	raw := RawFailure{
		TestName: "t",
		Suite:    &SuiteStats{SuiteName: "EXAScaler Smoke", PassCount: 5, FailCount: 2, TotalCount: 7},
	}

	rec := Normalize(raw, ci.CIEnvironment{}, "", testNow)
	assert.Equal(t, "EXAScaler Smoke", rec.SuiteName)
	assert.Equal(t, 5, rec.PassCount)
	assert.Equal(t, 2, rec.FailCount)
	assert.Equal(t, 7, rec.TotalCount)

	// The caller's snapshot is value-copied, not referenced.
	raw.Suite.PassCount = 99
	assert.Equal(t, 5, rec.PassCount)
}

func TestNormalizeInconsistentSuiteStatsPreserved(t *testing.T) {
	// total != pass+fail is the caller's problem; this layer never recomputes.
	raw := RawFailure{TestName: "t", Suite: &SuiteStats{SuiteName: "s", PassCount: 3, FailCount: 1, TotalCount: 9}}
	rec := Normalize(raw, ci.CIEnvironment{}, "", testNow)
	assert.Equal(t, 9, rec.TotalCount)
}

func TestNormalizeExtraCannotShadowComputedFields(t *testing.T) {
	raw := RawFailure{
		TestName: "t",
		Extra: map[string]any{
			"status":            "SUCCESS",
			"analyzed":          true,
			"analysis_required": false,
			"system":            "bogus",
			"build_id":          "spoofed",
			"retry_attempt":     3,
			"client_version":    "5.2.1",
		},
	}

	rec := Normalize(raw, ci.CIEnvironment{}, "", testNow)
	assert.Equal(t, "FAILURE", rec.Status)
	assert.False(t, rec.Analyzed)
	assert.True(t, rec.AnalysisRequired)
	assert.Equal(t, "DDN Storage Tests", rec.System)
	assert.Equal(t, "local", rec.BuildID)

	assert.Equal(t, map[string]any{"retry_attempt": 3, "client_version": "5.2.1"}, rec.Extra)
}

func TestNormalizeAllExtrasReservedYieldsNil(t *testing.T) {
	rec := Normalize(RawFailure{TestName: "t", Extra: map[string]any{"status": "x"}}, ci.CIEnvironment{}, "", testNow)
	assert.Nil(t, rec.Extra)
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := RawFailure{
		TestName:     "S3 Should Prevent Cross-Tenant Bucket Access",
		TestCategory: "S3_SECURITY",
		ErrorMessage: "Expected AccessDenied, got: timeout",
		Extra:        map[string]any{"tenant": "acme"},
	}
	env := ci.CIEnvironment{JobName: "DDN-Nightly-Tests", BuildNumber: "12"}

	first := Normalize(raw, env, "test", testNow)
	second := Normalize(raw, env, "test", testNow)
	assert.Equal(t, first, second)
}

// The end-to-end scenario from the reporting contract.
func TestNormalizeNightlyScenario(t *testing.T) {
	raw := RawFailure{
		TestName:     "S3 Should Prevent Cross-Tenant Bucket Access",
		TestCategory: "S3_SECURITY",
		ErrorMessage: "Expected AccessDenied, got: timeout",
	}
	env := ci.CIEnvironment{JobName: "DDN-Nightly-Tests", BuildNumber: "12"}

	rec := Normalize(raw, env, "test", testNow)
	assert.Equal(t, "DDN-Nightly-Tests-12", rec.BuildID)
	assert.Equal(t, "S3_SECURITY", rec.SuiteName)
	assert.Equal(t, 0, rec.PassCount)
	assert.Equal(t, 1, rec.FailCount)
	assert.Equal(t, "FAILURE", rec.Status)
	assert.False(t, rec.Analyzed)
}

package listener_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddn-qa/testharness/pkg/ci"
	"github.com/ddn-qa/testharness/pkg/config"
	"github.com/ddn-qa/testharness/pkg/listener"
	"github.com/ddn-qa/testharness/pkg/report"
	"github.com/ddn-qa/testharness/pkg/report/storage"
)

func newListener(t *testing.T) (*listener.Listener, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	rep, err := report.NewReporter(
		&config.Config{Environment: "test", ReportTimeout: time.Second},
		mem,
		report.WithEnvFunc(func() ci.CIEnvironment {
			return ci.CIEnvironment{JobName: "DDN-Nightly-Tests", BuildNumber: "12"}
		}),
	)
	require.NoError(t, err)
	return listener.New(rep), mem
}

func TestFailureEmbedsRunningSuiteSnapshot(t *testing.T) {
	l, mem := newListener(t)
	ctx := context.Background()

	l.StartSuite("S3 Security")
	l.StartTest("S3 Bucket Isolation", "S3_SECURITY")
	l.PassTest(ctx)
	l.StartTest("S3 Cross-Tenant Access", "S3_SECURITY")
	id := l.FailTest(ctx, "Expected AccessDenied, got: timeout", "")

	assert.NotEmpty(t, id)
	failures := mem.Failures()
	require.Len(t, failures, 1)
	rec := failures[0]
	assert.Equal(t, "S3 Cross-Tenant Access", rec.TestName)
	assert.Equal(t, "S3 Security", rec.SuiteName)
	assert.Equal(t, 1, rec.PassCount)
	assert.Equal(t, 1, rec.FailCount)
	assert.Equal(t, 2, rec.TotalCount)
	assert.Equal(t, "DDN-Nightly-Tests-12", rec.BuildID)
	// Stack trace falls back to the error message.
	assert.Equal(t, "Expected AccessDenied, got: timeout", rec.StackTrace)
}

func TestEarlyFailureKeepsPartialSnapshot(t *testing.T) {
	l, mem := newListener(t)
	ctx := context.Background()

	l.StartSuite("Quota")
	l.StartTest("Quota Soft Limit", "QUOTA")
	l.FailTest(ctx, "quota not enforced", "")
	// Later tests do not retroactively change the stored snapshot.
	l.StartTest("Quota Hard Limit", "QUOTA")
	l.PassTest(ctx)

	failures := mem.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, 0, failures[0].PassCount)
	assert.Equal(t, 1, failures[0].TotalCount)
}

func TestEndSuiteBackfillsFinalStats(t *testing.T) {
	l, mem := newListener(t)
	ctx := context.Background()

	l.StartSuite("Quota")
	l.StartTest("Quota Soft Limit", "QUOTA")
	l.FailTest(ctx, "quota not enforced", "")
	l.StartTest("Quota Hard Limit", "QUOTA")
	l.PassTest(ctx)
	l.EndSuite(ctx)

	failures := mem.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].PassCount)
	assert.Equal(t, 1, failures[0].FailCount)
	assert.Equal(t, 2, failures[0].TotalCount)
}

func TestPassReportsSuccessRecord(t *testing.T) {
	l, mem := newListener(t)
	ctx := context.Background()

	l.StartSuite("Health")
	l.StartTest("EXAScaler Health Should Be OK", "HEALTH")
	l.PassTest(ctx)

	successes := mem.Successes()
	require.Len(t, successes, 1)
	assert.Equal(t, "EXAScaler Health Should Be OK", successes[0].TestName)
	assert.Equal(t, "SUCCESS", successes[0].Status)
	assert.Equal(t, "DDN-Nightly-Tests-12", successes[0].BuildID)
}

func TestFailureOutsideTestIsDropped(t *testing.T) {
	l, mem := newListener(t)

	id := l.FailTest(context.Background(), "boom", "")
	assert.Empty(t, id)
	assert.Empty(t, mem.Failures())
}

func TestFailureDuration(t *testing.T) {
	l, mem := newListener(t)
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	l.WithClock(func() time.Time { return now })

	l.StartSuite("s")
	l.StartTest("t", "c")
	now = now.Add(1500 * time.Millisecond)
	l.FailTest(context.Background(), "err", "")

	failures := mem.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, int64(1500), failures[0].DurationMS)
}

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddn-qa/testharness/pkg/report"
)

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open("")
	assert.ErrorIs(t, err, ErrNoDSN)
}

func TestOpenSelectsDriver(t *testing.T) {
	st, err := Open("postgres://ci@db.lab/ddn_tests?sslmode=disable")
	require.NoError(t, err)
	assert.IsType(t, &Postgres{}, st)
	_ = st.Close()

	st, err = Open("sqlite::memory:")
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, st)
	_ = st.Close()

	st, err = Open("memory:")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, st)
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open("mongodb://atlas.example.com/ddn_tests")
	assert.Error(t, err)
}

func TestMemoryRoundTrip(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Init(ctx))

	rec := testFailureRecord()
	id, err := mem.InsertFailure(ctx, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// The store keeps a copy; the caller's record is not retained by
	// reference.
	rec.TestName = "mutated"
	failures := mem.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "S3 Should Prevent Cross-Tenant Bucket Access", failures[0].TestName)
}

func TestMemoryUpdateSuiteStatsScopedToBuild(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	a := testFailureRecord()
	b := testFailureRecord()
	b.BuildID = "DDN-Nightly-Tests-13"
	_, err := mem.InsertFailure(ctx, a)
	require.NoError(t, err)
	_, err = mem.InsertFailure(ctx, b)
	require.NoError(t, err)

	n, err := mem.UpdateSuiteStats(ctx, "DDN-Nightly-Tests-12",
		report.SuiteStats{SuiteName: "S3_SECURITY", PassCount: 4, FailCount: 1, TotalCount: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	failures := mem.Failures()
	assert.Equal(t, 4, failures[0].PassCount)
	assert.Equal(t, 0, failures[1].PassCount)
}

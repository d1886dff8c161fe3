package report

import "context"

// Store is what the reporter needs from a backing store. Implementations
// live in the storage subpackage; the domain owns the interface so the
// reporter can be tested against stubs.
//
// Implementations must be safe for concurrent use by one process's reporter.
type Store interface {
	// Init establishes the connection and runs schema migration. The
	// reporter calls it once, lazily, before the first write.
	Init(ctx context.Context) error

	// InsertFailure writes one failure record and returns its generated id.
	InsertFailure(ctx context.Context, rec *FailureRecord) (string, error)

	// InsertSuccess writes one lightweight pass record.
	InsertSuccess(ctx context.Context, rec *SuccessRecord) (string, error)

	// UpdateSuiteStats backfills final suite counters onto every failure row
	// of one suite in one build. Returns the number of rows touched.
	UpdateSuiteStats(ctx context.Context, buildID string, stats SuiteStats) (int64, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the connection. Safe to call more than once.
	Close() error
}

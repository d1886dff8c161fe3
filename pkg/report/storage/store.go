// Package storage persists failure and success records. The report package
// owns the write contract (report.Store); this package owns drivers and
// schema.
//
// Postgres backs CI runs; the sqlite driver keeps local runs working without
// a database server. The DSN scheme selects the driver.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ddn-qa/testharness/pkg/report"
)

// ErrNoDSN is returned by Open when no connection string is configured.
// This is the subsystem's only fatal configuration error: without a backing
// store there is nothing to report to.
var ErrNoDSN = errors.New("storage: no database connection string configured")

// Open selects a driver from the DSN scheme. It does not dial; connection
// establishment is deferred to Init so construction stays cheap and the
// reporter can connect lazily on first use.
func Open(dsn string) (report.Store, error) {
	switch {
	case dsn == "":
		return nil, ErrNoDSN
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgres(dsn)
	case strings.HasPrefix(dsn, "sqlite:"):
		return NewSQLite(strings.TrimPrefix(dsn, "sqlite:"))
	case strings.HasPrefix(dsn, "memory:"):
		return NewMemory(), nil
	default:
		// Bare paths are treated as sqlite files, matching local-run usage.
		if strings.Contains(dsn, "://") {
			return nil, fmt.Errorf("storage: unsupported DSN scheme in %q", dsn)
		}
		return NewSQLite(dsn)
	}
}

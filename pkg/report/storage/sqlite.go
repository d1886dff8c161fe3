package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ddn-qa/testharness/pkg/report"
)

// SQLite stores records in a local sqlite file. Used for runs outside CI
// where no Postgres is reachable; ids are uuids.
type SQLite struct {
	db *sql.DB
}

// NewSQLite prepares a sqlite store backed by the given file path
// (":memory:" works for throwaway runs).
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	return &SQLite{db: db}, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS test_failures (
	id TEXT PRIMARY KEY,
	test_name TEXT NOT NULL,
	test_category TEXT NOT NULL DEFAULT '',
	product TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	stack_trace TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	suite_name TEXT NOT NULL,
	pass_count INTEGER NOT NULL,
	fail_count INTEGER NOT NULL,
	total_count INTEGER NOT NULL,
	build_id TEXT NOT NULL,
	job_name TEXT NOT NULL,
	build_url TEXT NOT NULL,
	git_commit TEXT NOT NULL,
	git_branch TEXT NOT NULL,
	status TEXT NOT NULL,
	analyzed INTEGER NOT NULL,
	analysis_required INTEGER NOT NULL,
	timestamp TEXT NOT NULL,
	created_at TEXT NOT NULL,
	environment TEXT NOT NULL,
	system TEXT NOT NULL,
	extra TEXT
);
CREATE INDEX IF NOT EXISTS idx_test_failures_build_suite ON test_failures(build_id, suite_name);
CREATE TABLE IF NOT EXISTS test_successes (
	id TEXT PRIMARY KEY,
	test_name TEXT NOT NULL,
	test_category TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	build_id TEXT NOT NULL,
	timestamp TEXT NOT NULL
);
`

func (s *SQLite) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("storage: sqlite migrate: %w", err)
	}
	return nil
}

func (s *SQLite) InsertFailure(ctx context.Context, rec *report.FailureRecord) (string, error) {
	var extraJSON []byte
	if rec.Extra != nil {
		var err error
		extraJSON, err = json.Marshal(rec.Extra)
		if err != nil {
			return "", fmt.Errorf("storage: marshal extra: %w", err)
		}
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO test_failures (
			id, test_name, test_category, product, error_message, stack_trace, duration_ms,
			suite_name, pass_count, fail_count, total_count,
			build_id, job_name, build_url, git_commit, git_branch,
			status, analyzed, analysis_required, timestamp, created_at,
			environment, system, extra
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id, rec.TestName, rec.TestCategory, rec.Product, rec.ErrorMessage, rec.StackTrace, rec.DurationMS,
		rec.SuiteName, rec.PassCount, rec.FailCount, rec.TotalCount,
		rec.BuildID, rec.JobName, rec.BuildURL, rec.GitCommit, rec.GitBranch,
		rec.Status, rec.Analyzed, rec.AnalysisRequired,
		rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.Environment, rec.System, extraJSON,
	)
	if err != nil {
		return "", fmt.Errorf("storage: insert failure: %w", err)
	}
	return id, nil
}

func (s *SQLite) InsertSuccess(ctx context.Context, rec *report.SuccessRecord) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO test_successes (id, test_name, test_category, status, duration_ms, build_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, rec.TestName, rec.TestCategory, rec.Status, rec.DurationMS, rec.BuildID,
		rec.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("storage: insert success: %w", err)
	}
	return id, nil
}

func (s *SQLite) UpdateSuiteStats(ctx context.Context, buildID string, stats report.SuiteStats) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE test_failures
		SET pass_count = ?, fail_count = ?, total_count = ?
		WHERE build_id = ? AND suite_name = ?
	`, stats.PassCount, stats.FailCount, stats.TotalCount, buildID, stats.SuiteName)
	if err != nil {
		return 0, fmt.Errorf("storage: update suite stats: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: update suite stats: %w", err)
	}
	return n, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	_ "github.com/lib/pq"

	"github.com/ddn-qa/testharness/pkg/report"
)

// Postgres stores records in PostgreSQL. Failure ids are bigserial values
// rendered as strings for the caller.
type Postgres struct {
	db *sql.DB
}

// NewPostgres prepares a Postgres store. sql.Open does not dial; the first
// Init call does.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgresFromDB wraps an existing handle. Used by tests with sqlmock.
func NewPostgresFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS test_failures (
	id BIGSERIAL PRIMARY KEY,
	test_name TEXT NOT NULL,
	test_category TEXT NOT NULL DEFAULT '',
	product TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	stack_trace TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL DEFAULT 0,
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
	analyzed BOOLEAN NOT NULL,
	analysis_required BOOLEAN NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	environment TEXT NOT NULL,
	system TEXT NOT NULL,
	extra JSONB
);
CREATE INDEX IF NOT EXISTS idx_test_failures_build_suite ON test_failures(build_id, suite_name);
CREATE INDEX IF NOT EXISTS idx_test_failures_timestamp ON test_failures(timestamp);
CREATE TABLE IF NOT EXISTS test_successes (
	id BIGSERIAL PRIMARY KEY,
	test_name TEXT NOT NULL,
	test_category TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	build_id TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_test_successes_build ON test_successes(build_id);
`

// Init connects and creates the tables if they do not exist.
func (p *Postgres) Init(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("storage: postgres ping: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("storage: postgres migrate: %w", err)
	}
	return nil
}

func (p *Postgres) InsertFailure(ctx context.Context, rec *report.FailureRecord) (string, error) {
	var extraJSON []byte
	if rec.Extra != nil {
		var err error
		extraJSON, err = json.Marshal(rec.Extra)
		if err != nil {
			return "", fmt.Errorf("storage: marshal extra: %w", err)
		}
	}

	var id int64
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO test_failures (
			test_name, test_category, product, error_message, stack_trace, duration_ms,
			suite_name, pass_count, fail_count, total_count,
			build_id, job_name, build_url, git_commit, git_branch,
			status, analyzed, analysis_required, timestamp, created_at,
			environment, system, extra
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING id
	`,
		rec.TestName, rec.TestCategory, rec.Product, rec.ErrorMessage, rec.StackTrace, rec.DurationMS,
		rec.SuiteName, rec.PassCount, rec.FailCount, rec.TotalCount,
		rec.BuildID, rec.JobName, rec.BuildURL, rec.GitCommit, rec.GitBranch,
		rec.Status, rec.Analyzed, rec.AnalysisRequired, rec.Timestamp, rec.CreatedAt,
		rec.Environment, rec.System, extraJSON,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("storage: insert failure: %w", err)
	}

	return strconv.FormatInt(id, 10), nil
}

func (p *Postgres) InsertSuccess(ctx context.Context, rec *report.SuccessRecord) (string, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO test_successes (test_name, test_category, status, duration_ms, build_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, rec.TestName, rec.TestCategory, rec.Status, rec.DurationMS, rec.BuildID, rec.Timestamp).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("storage: insert success: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (p *Postgres) UpdateSuiteStats(ctx context.Context, buildID string, stats report.SuiteStats) (int64, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE test_failures
		SET pass_count = $1, fail_count = $2, total_count = $3
		WHERE build_id = $4 AND suite_name = $5
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

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

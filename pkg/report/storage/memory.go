package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ddn-qa/testharness/pkg/report"
)

// Memory is an in-process Store for tests and dry runs.
type Memory struct {
	mu        sync.Mutex
	failures  []report.FailureRecord
	successes []report.SuccessRecord
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Init(ctx context.Context) error { return nil }

func (m *Memory) InsertFailure(ctx context.Context, rec *report.FailureRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *rec
	stored.ID = uuid.New().String()
	m.failures = append(m.failures, stored)
	return stored.ID, nil
}

func (m *Memory) InsertSuccess(ctx context.Context, rec *report.SuccessRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *rec
	stored.ID = uuid.New().String()
	m.successes = append(m.successes, stored)
	return stored.ID, nil
}

func (m *Memory) UpdateSuiteStats(ctx context.Context, buildID string, stats report.SuiteStats) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var touched int64
	for i := range m.failures {
		if m.failures[i].BuildID == buildID && m.failures[i].SuiteName == stats.SuiteName {
			m.failures[i].PassCount = stats.PassCount
			m.failures[i].FailCount = stats.FailCount
			m.failures[i].TotalCount = stats.TotalCount
			touched++
		}
	}
	return touched, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// Failures returns a copy of the stored failure records.
func (m *Memory) Failures() []report.FailureRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]report.FailureRecord, len(m.failures))
	copy(out, m.failures)
	return out
}

// Successes returns a copy of the stored success records.
func (m *Memory) Successes() []report.SuccessRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]report.SuccessRecord, len(m.successes))
	copy(out, m.successes)
	return out
}

package report

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ddn-qa/testharness/pkg/ci"
	"github.com/ddn-qa/testharness/pkg/config"
	"github.com/ddn-qa/testharness/pkg/report/dedup"
)

var (
	errMissingStore    = errors.New("report: reporter requires a backing store")
	errMissingTestName = errors.New("report: failure has no test name")
	errRateLimited     = errors.New("report: local report rate limit exceeded")
	errClosed          = errors.New("report: reporter is closed")
)

// Metrics receives report-path observations. Implemented by pkg/telemetry;
// nil disables instrumentation.
type Metrics interface {
	ReportStored(ctx context.Context)
	ReportDropped(ctx context.Context, reason string)
	ObserveReportDuration(ctx context.Context, d time.Duration)
}

// Reporter is the persistence gateway: it normalizes raw failures, writes
// them through the backing store, and guarantees that no fault on that path
// ever reaches the calling test.
//
// Internally every step returns errors as usual; the public ReportFailure /
// ReportSuccess methods are the single place where errors become logged
// no-ops, so the "never raises" contract is visible in one conversion rather
// than scattered recovers.
type Reporter struct {
	store   Store
	env     string
	timeout time.Duration
	logger  *slog.Logger

	envFn func() ci.CIEnvironment
	nowFn func() time.Time

	limiter *rate.Limiter
	deduper dedup.Deduper
	metrics Metrics

	mu     sync.Mutex
	ready  bool
	closed bool
}

// Option customizes a Reporter.
type Option func(*Reporter)

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reporter) { r.logger = l }
}

// WithClock injects the time source. Tests use it to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) { r.nowFn = now }
}

// WithEnvFunc injects the CI environment capture. The default snapshots the
// process environment on every report so identity reflects call-time state.
func WithEnvFunc(fn func() ci.CIEnvironment) Option {
	return func(r *Reporter) { r.envFn = fn }
}

// WithDeduper enables duplicate-failure suppression.
func WithDeduper(d dedup.Deduper) Option {
	return func(r *Reporter) { r.deduper = d }
}

// WithRateLimit caps reports per second from this process. A keyword stuck in
// a tight retry loop must not flood the store.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(r *Reporter) { r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithMetrics attaches report-path instrumentation.
func WithMetrics(m Metrics) Option {
	return func(r *Reporter) { r.metrics = m }
}

// NewReporter builds a reporter over the given store. The store connects
// lazily on first report; construction is the only fatal path (a nil store,
// i.e. a missing connection string upstream, is a configuration error).
func NewReporter(cfg *config.Config, store Store, opts ...Option) (*Reporter, error) {
	if store == nil {
		return nil, errMissingStore
	}
	if cfg == nil {
		cfg = config.Load()
	}

	r := &Reporter{
		store:   store,
		env:     cfg.Environment,
		timeout: cfg.ReportTimeout,
		logger:  slog.Default().With("component", "reporter"),
		envFn:   ci.CaptureEnv,
		nowFn:   time.Now,
	}
	if r.timeout <= 0 {
		r.timeout = 5 * time.Second
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ReportFailure persists one failure and returns the record id, or "" when
// the write did not happen. It never returns an error and never panics on
// store faults; the original test failure propagates to the framework
// untouched regardless of what happens here.
func (r *Reporter) ReportFailure(ctx context.Context, raw RawFailure) string {
	start := time.Now()
	id, err := r.reportFailure(ctx, raw)
	if r.metrics != nil {
		r.metrics.ObserveReportDuration(ctx, time.Since(start))
	}

	if err != nil {
		r.logger.Warn("failure report dropped",
			"test_name", raw.TestName, "reason", err)
		if r.metrics != nil {
			r.metrics.ReportDropped(ctx, err.Error())
		}
		return ""
	}
	if id == "" {
		// Suppressed duplicate; already logged at debug.
		return ""
	}

	r.logger.Info("failure stored", "test_name", raw.TestName, "record_id", id)
	if r.metrics != nil {
		r.metrics.ReportStored(ctx)
	}
	return id
}

func (r *Reporter) reportFailure(ctx context.Context, raw RawFailure) (string, error) {
	if raw.TestName == "" {
		return "", errMissingTestName
	}
	if r.limiter != nil && !r.limiter.Allow() {
		return "", errRateLimited
	}

	// Record construction completes fully before any I/O.
	rec := Normalize(raw, r.envFn(), r.env, r.nowFn())

	if r.deduper != nil {
		fp := dedup.Fingerprint(rec.BuildID, rec.TestName, rec.ErrorMessage)
		seen, err := r.deduper.Seen(ctx, fp)
		if err != nil {
			// Dedup is an optimization; its faults never block the write.
			r.logger.Debug("dedup check failed, reporting anyway", "reason", err)
		} else if seen {
			r.logger.Debug("duplicate failure suppressed",
				"test_name", rec.TestName, "build_id", rec.BuildID)
			return "", nil
		}
	}

	store, err := r.ensureStore(ctx)
	if err != nil {
		return "", err
	}

	wctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return store.InsertFailure(wctx, &rec)
}

// ReportSuccess persists a lightweight pass record for trend completeness.
// Best-effort under the same fault boundary as ReportFailure.
func (r *Reporter) ReportSuccess(ctx context.Context, res TestResult) {
	if err := r.reportSuccess(ctx, res); err != nil {
		r.logger.Warn("success report dropped",
			"test_name", res.TestName, "reason", err)
		if r.metrics != nil {
			r.metrics.ReportDropped(ctx, err.Error())
		}
	}
}

func (r *Reporter) reportSuccess(ctx context.Context, res TestResult) error {
	if res.TestName == "" {
		return errMissingTestName
	}

	rec := SuccessRecord{
		TestName:     res.TestName,
		TestCategory: res.TestCategory,
		Status:       StatusSuccess,
		DurationMS:   res.DurationMS,
		BuildID:      ci.Resolve(r.envFn()).BuildID,
		Timestamp:    r.nowFn().UTC(),
	}

	store, err := r.ensureStore(ctx)
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, err = store.InsertSuccess(wctx, &rec)
	return err
}

// BackfillSuiteStats updates this build's failure rows for one suite with its
// final counters. Best-effort: faults are logged and swallowed.
func (r *Reporter) BackfillSuiteStats(ctx context.Context, stats SuiteStats) {
	store, err := r.ensureStore(ctx)
	if err != nil {
		r.logger.Warn("suite stats backfill skipped", "suite", stats.SuiteName, "reason", err)
		return
	}

	buildID := ci.Resolve(r.envFn()).BuildID
	wctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := store.UpdateSuiteStats(wctx, buildID, stats)
	if err != nil {
		r.logger.Warn("suite stats backfill failed", "suite", stats.SuiteName, "reason", err)
		return
	}
	r.logger.Info("suite stats backfilled",
		"suite", stats.SuiteName,
		"pass", stats.PassCount, "fail", stats.FailCount, "total", stats.TotalCount,
		"records_updated", n)
}

// ensureStore connects and migrates on first use. Connect faults are
// transient: a failed Init drops that report but the next one tries again,
// so a database that comes up mid-run starts receiving records.
func (r *Reporter) ensureStore(ctx context.Context) (Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errClosed
	}
	if r.ready {
		return r.store, nil
	}

	ictx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.store.Init(ictx); err != nil {
		return nil, err
	}
	r.ready = true
	r.logger.Info("backing store connected")
	return r.store, nil
}

// Close releases the store connection (and deduper, if any). Idempotent and
// safe to call when the store was never used.
func (r *Reporter) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	var errs []error
	if r.deduper != nil {
		if err := r.deduper.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

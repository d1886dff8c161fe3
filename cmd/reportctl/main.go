// reportctl drives the failure reporting pipeline from the command line. CI
// wrapper scripts use it to record failures that happen outside the test
// framework (setup scripts, provisioning), to validate record documents
// against the shared schema, and to check reporting configuration on an
// agent.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/ddn-qa/testharness/pkg/ci"
	"github.com/ddn-qa/testharness/pkg/config"
	"github.com/ddn-qa/testharness/pkg/report"
	"github.com/ddn-qa/testharness/pkg/report/dedup"
	"github.com/ddn-qa/testharness/pkg/report/schema"
	"github.com/ddn-qa/testharness/pkg/report/storage"
	"github.com/ddn-qa/testharness/pkg/telemetry"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint for testing.
//
// Exit codes:
//
//	0 = success
//	1 = operation failed
//	2 = usage error
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	switch args[1] {
	case "failure":
		return runFailureCmd(args[2:], stdout, stderr)
	case "success":
		return runSuccessCmd(args[2:], stdout, stderr)
	case "backfill":
		return runBackfillCmd(args[2:], stdout, stderr)
	case "validate":
		return runValidateCmd(args[2:], stdout, stderr)
	case "schema":
		_, _ = stdout.Write(schema.FailureRecordSchema())
		return 0
	case "doctor":
		return runDoctorCmd(stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: reportctl <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  failure    Record a test failure (--name, --error, ...)")
	fmt.Fprintln(w, "  success    Record a test pass (--name, ...)")
	fmt.Fprintln(w, "  backfill   Backfill suite counters onto this build's failures")
	fmt.Fprintln(w, "  validate   Validate a failure document against the record schema")
	fmt.Fprintln(w, "  schema     Print the failure record JSON schema")
	fmt.Fprintln(w, "  doctor     Check reporting configuration on this agent")
	fmt.Fprintln(w, "  help       Show this help")
}

// newReporter wires the standard pipeline: DSN-selected store, optional Redis
// dedup, optional OTLP telemetry. The flag overrides the environment so
// one-off runs don't need env edits. The returned teardown closes the
// reporter and flushes telemetry; call it exactly once.
func newReporter(ctx context.Context, dbFlag string) (*report.Reporter, func(), error) {
	cfg := config.Load()
	if dbFlag != "" {
		cfg.DatabaseURL = dbFlag
	}

	store, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	var opts []report.Option
	if cfg.RedisAddr != "" {
		opts = append(opts, report.WithDeduper(dedup.NewRedis(cfg.RedisAddr, cfg.RedisPassword, 0)))
	}

	var provider *telemetry.Provider
	if cfg.OTLPEndpoint != "" {
		tcfg := telemetry.DefaultConfig()
		tcfg.Enabled = true
		tcfg.OTLPEndpoint = cfg.OTLPEndpoint
		tcfg.Insecure = cfg.OTLPInsecure
		tcfg.Environment = cfg.Environment
		provider, err = telemetry.New(ctx, tcfg)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		opts = append(opts, report.WithMetrics(provider))
	}

	rep, err := report.NewReporter(cfg, store, opts...)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	teardown := func() {
		_ = rep.Close()
		if provider != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			_ = provider.Shutdown(sctx)
			cancel()
		}
	}
	return rep, teardown, nil
}

func runFailureCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("failure", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	name := cmd.String("name", "", "test name (required)")
	category := cmd.String("category", "", "test category")
	product := cmd.String("product", "", "product under test")
	errMsg := cmd.String("error", "", "error message")
	stack := cmd.String("stack", "", "stack trace")
	duration := cmd.Int64("duration", 0, "test duration in milliseconds")
	extra := cmd.String("extra", "", "extra fields as a JSON object")
	db := cmd.String("db", "", "database DSN (overrides DATABASE_URL)")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if *name == "" {
		_, _ = fmt.Fprintln(stderr, "failure: --name is required")
		return 2
	}

	raw := report.RawFailure{
		TestName:     *name,
		TestCategory: *category,
		Product:      *product,
		ErrorMessage: *errMsg,
		StackTrace:   *stack,
		DurationMS:   *duration,
	}
	if *extra != "" {
		if err := json.Unmarshal([]byte(*extra), &raw.Extra); err != nil {
			_, _ = fmt.Fprintf(stderr, "failure: --extra is not a JSON object: %v\n", err)
			return 2
		}
	}

	ctx := context.Background()
	rep, teardown, err := newReporter(ctx, *db)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "failure: %v\n", err)
		return 1
	}
	defer teardown()

	id := rep.ReportFailure(ctx, raw)
	if id == "" {
		_, _ = fmt.Fprintln(stderr, "failure: record was not stored (see log)")
		return 1
	}
	_, _ = fmt.Fprintln(stdout, id)
	return 0
}

func runSuccessCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("success", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	name := cmd.String("name", "", "test name (required)")
	category := cmd.String("category", "", "test category")
	duration := cmd.Int64("duration", 0, "test duration in milliseconds")
	db := cmd.String("db", "", "database DSN (overrides DATABASE_URL)")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if *name == "" {
		_, _ = fmt.Fprintln(stderr, "success: --name is required")
		return 2
	}

	ctx := context.Background()
	rep, teardown, err := newReporter(ctx, *db)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "success: %v\n", err)
		return 1
	}
	defer teardown()

	rep.ReportSuccess(ctx, report.TestResult{
		TestName:     *name,
		TestCategory: *category,
		DurationMS:   *duration,
	})
	_, _ = fmt.Fprintf(stdout, "recorded pass for %s\n", *name)
	return 0
}

func runBackfillCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("backfill", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	suite := cmd.String("suite", "", "suite name (required)")
	pass := cmd.Int("pass", 0, "passed test count")
	fail := cmd.Int("fail", 0, "failed test count")
	db := cmd.String("db", "", "database DSN (overrides DATABASE_URL)")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if *suite == "" {
		_, _ = fmt.Fprintln(stderr, "backfill: --suite is required")
		return 2
	}

	ctx := context.Background()
	rep, teardown, err := newReporter(ctx, *db)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "backfill: %v\n", err)
		return 1
	}
	defer teardown()

	rep.BackfillSuiteStats(ctx, report.SuiteStats{
		SuiteName:  *suite,
		PassCount:  *pass,
		FailCount:  *fail,
		TotalCount: *pass + *fail,
	})
	_, _ = fmt.Fprintf(stdout, "backfilled %s\n", *suite)
	return 0
}

func runValidateCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	file := cmd.String("file", "-", "document to validate ('-' for stdin)")
	if err := cmd.Parse(args); err != nil {
		return 2
	}

	var doc []byte
	var err error
	if *file == "-" {
		doc, err = io.ReadAll(os.Stdin)
	} else {
		doc, err = os.ReadFile(*file)
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "validate: %v\n", err)
		return 1
	}

	if err := schema.ValidateJSON(doc); err != nil {
		_, _ = fmt.Fprintf(stderr, "validate: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(stdout, "document is valid")
	return 0
}

// runDoctorCmd checks the reporting configuration visible on this agent.
func runDoctorCmd(stdout, stderr io.Writer) int {
	type checkResult struct {
		Name   string
		Status string // "ok", "warn", "fail"
		Detail string
	}

	var results []checkResult
	allOK := true

	results = append(results, checkResult{
		Name:   "go_runtime",
		Status: "ok",
		Detail: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	})

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		results = append(results, checkResult{
			Name:   "database_url",
			Status: "warn",
			Detail: "DATABASE_URL not set; failure reports will be dropped",
		})
	} else if store, err := storage.Open(cfg.DatabaseURL); err != nil {
		results = append(results, checkResult{
			Name:   "database_url",
			Status: "fail",
			Detail: err.Error(),
		})
		allOK = false
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := store.Init(ctx); err != nil {
			results = append(results, checkResult{
				Name:   "database_url",
				Status: "fail",
				Detail: fmt.Sprintf("set, but unreachable: %v", err),
			})
			allOK = false
		} else {
			results = append(results, checkResult{Name: "database_url", Status: "ok", Detail: "connected"})
		}
		cancel()
		_ = store.Close()
	}

	id := ci.Resolve(ci.CaptureEnv())
	status := "ok"
	if id.BuildID == ci.DefaultBuildID {
		status = "warn"
	}
	results = append(results, checkResult{
		Name:   "build_identity",
		Status: status,
		Detail: fmt.Sprintf("build_id=%s job=%s", id.BuildID, id.JobName),
	})

	if cfg.RedisAddr == "" {
		results = append(results, checkResult{
			Name:   "dedup",
			Status: "warn",
			Detail: "REDIS_ADDR not set; duplicate suppression disabled",
		})
	} else {
		results = append(results, checkResult{Name: "dedup", Status: "ok", Detail: cfg.RedisAddr})
	}

	if cfg.OTLPEndpoint == "" {
		results = append(results, checkResult{
			Name:   "telemetry",
			Status: "warn",
			Detail: "OTLP_ENDPOINT not set; telemetry disabled",
		})
	} else {
		results = append(results, checkResult{Name: "telemetry", Status: "ok", Detail: cfg.OTLPEndpoint})
	}

	fmt.Fprintln(stdout, "reportctl doctor")
	fmt.Fprintln(stdout, "────────────────")
	for _, r := range results {
		fmt.Fprintf(stdout, "  %-5s %-16s %s\n", r.Status, r.Name, r.Detail)
	}
	if allOK {
		return 0
	}
	return 1
}

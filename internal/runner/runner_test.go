package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"gpwsched/internal/collect"
	"gpwsched/internal/job"
	"gpwsched/internal/schedule"
	"gpwsched/internal/store"
)

// fakeJobs is a JobStore over a fixed config set.
type fakeJobs struct {
	configs  map[string]job.Config
	executed []string
	nextRuns []time.Time
}

func (f *fakeJobs) Load(_ context.Context, name string) (job.Config, error) {
	cfg, ok := f.configs[name]
	if !ok {
		return job.Config{}, fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	return cfg, nil
}

func (f *fakeJobs) MarkExecuted(_ context.Context, name string, nextRun time.Time) error {
	f.executed = append(f.executed, name)
	f.nextRuns = append(f.nextRuns, nextRun)
	return nil
}

// fakeLedger records open/close calls in memory.
type fakeLedger struct {
	nextID   int64
	opened   []string
	outcomes map[int64]store.Outcome
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{outcomes: make(map[int64]store.Outcome)}
}

func (f *fakeLedger) OpenExecution(_ context.Context, jobName string) (int64, error) {
	f.nextID++
	f.opened = append(f.opened, jobName)
	return f.nextID, nil
}

func (f *fakeLedger) CloseExecution(_ context.Context, id int64, outcome store.Outcome) error {
	if _, exists := f.outcomes[id]; exists {
		return store.ErrExecutionClosed
	}
	f.outcomes[id] = outcome
	return nil
}

// collectorFunc adapts a function to collect.Collector.
type collectorFunc func(ctx context.Context, req collect.Request) (collect.Result, error)

func (f collectorFunc) Collect(ctx context.Context, req collect.Request) (collect.Result, error) {
	return f(ctx, req)
}

func mustSchedule(t *testing.T, text string) schedule.Expression {
	t.Helper()
	expr, err := schedule.Parse(text)
	if err != nil {
		t.Fatalf("parse schedule %q: %v", text, err)
	}
	return expr
}

func testJobs(t *testing.T) *fakeJobs {
	t.Helper()
	return &fakeJobs{configs: map[string]job.Config{
		"PKO_daily": {
			Name:        "PKO_daily",
			Company:     "PKO",
			Model:       "llama3",
			Schedule:    mustSchedule(t, "0 9 * * *"),
			Enabled:     true,
			ReportLimit: 5,
		},
		"disabled_job": {
			Name:     "disabled_job",
			Company:  "KGHM",
			Model:    "llama3",
			Schedule: mustSchedule(t, "0 9 * * *"),
			Enabled:  false,
		},
	}}
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	jobs := testJobs(t)
	ledger := newFakeLedger()
	resultsDir := t.TempDir()

	var gotReq collect.Request
	collector := collectorFunc(func(_ context.Context, req collect.Request) (collect.Result, error) {
		gotReq = req
		return collect.Result{ReportsFound: 4, DocumentsProcessed: 9, Summary: "quarterly results"}, nil
	})

	r := New(jobs, ledger, collector, resultsDir, slog.Default())
	if !r.Run(context.Background(), "PKO_daily") {
		t.Fatal("run should succeed")
	}

	if gotReq.Company != "PKO" || gotReq.Model != "llama3" || gotReq.Limit != 5 {
		t.Errorf("collector request = %+v", gotReq)
	}

	outcome := ledger.outcomes[1]
	if outcome.Status != store.StatusSuccess {
		t.Errorf("status = %s, want success", outcome.Status)
	}
	if outcome.ReportsFound != 4 || outcome.DocumentsProcessed != 9 {
		t.Errorf("counts = %d/%d", outcome.ReportsFound, outcome.DocumentsProcessed)
	}
	if outcome.LogFilePath == "" {
		t.Error("artifact path not recorded")
	}
	raw, err := os.ReadFile(outcome.LogFilePath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !strings.Contains(string(raw), "quarterly results") {
		t.Errorf("artifact missing summary:\n%s", raw)
	}

	if len(jobs.executed) != 1 || jobs.executed[0] != "PKO_daily" {
		t.Errorf("MarkExecuted calls = %v", jobs.executed)
	}
	if jobs.nextRuns[0].IsZero() {
		t.Error("next run not computed")
	}
}

func TestRun_NoReports(t *testing.T) {
	t.Parallel()

	jobs := testJobs(t)
	ledger := newFakeLedger()
	collector := collectorFunc(func(context.Context, collect.Request) (collect.Result, error) {
		return collect.Result{}, nil
	})

	r := New(jobs, ledger, collector, t.TempDir(), slog.Default())
	if !r.Run(context.Background(), "PKO_daily") {
		t.Fatal("empty run is not a failure")
	}
	if ledger.outcomes[1].Status != store.StatusNoReports {
		t.Errorf("status = %s, want no_reports", ledger.outcomes[1].Status)
	}
	if len(jobs.executed) != 1 {
		t.Error("empty run still counts as an execution")
	}
}

func TestRun_UnknownJob_NoRecord(t *testing.T) {
	t.Parallel()

	jobs := testJobs(t)
	ledger := newFakeLedger()
	collector := collectorFunc(func(context.Context, collect.Request) (collect.Result, error) {
		t.Error("collector must not be called")
		return collect.Result{}, nil
	})

	r := New(jobs, ledger, collector, t.TempDir(), slog.Default())
	if r.Run(context.Background(), "unknown_job") {
		t.Error("run of unknown job should fail")
	}
	if len(ledger.opened) != 0 {
		t.Error("no execution record may be created for an unknown job")
	}
}

func TestRun_DisabledJob_NoRecord(t *testing.T) {
	t.Parallel()

	jobs := testJobs(t)
	ledger := newFakeLedger()
	collector := collectorFunc(func(context.Context, collect.Request) (collect.Result, error) {
		t.Error("collector must not be called")
		return collect.Result{}, nil
	})

	r := New(jobs, ledger, collector, t.TempDir(), slog.Default())
	if r.Run(context.Background(), "disabled_job") {
		t.Error("run of disabled job should fail")
	}
	if len(ledger.opened) != 0 {
		t.Error("no execution record may be created for a disabled job")
	}
}

func TestRun_CollectorError_RecordedAndSwallowed(t *testing.T) {
	t.Parallel()

	jobs := testJobs(t)
	ledger := newFakeLedger()
	collector := collectorFunc(func(context.Context, collect.Request) (collect.Result, error) {
		return collect.Result{}, errors.New("scrape blew up")
	})

	r := New(jobs, ledger, collector, t.TempDir(), slog.Default())
	if r.Run(context.Background(), "PKO_daily") {
		t.Error("run should report failure")
	}

	if len(ledger.outcomes) != 1 {
		t.Fatalf("got %d outcomes, want exactly 1", len(ledger.outcomes))
	}
	outcome := ledger.outcomes[1]
	if outcome.Status != store.StatusFailed {
		t.Errorf("status = %s, want failed", outcome.Status)
	}
	if !strings.Contains(outcome.ErrorMessage, "scrape blew up") {
		t.Errorf("error_message = %q", outcome.ErrorMessage)
	}
	if len(jobs.executed) != 0 {
		t.Error("failed run must not update run statistics")
	}
}

func TestRun_Timeout_Distinguishable(t *testing.T) {
	t.Parallel()

	jobs := testJobs(t)
	ledger := newFakeLedger()
	collector := collectorFunc(func(context.Context, collect.Request) (collect.Result, error) {
		return collect.Result{}, fmt.Errorf("%w after 10m0s", collect.ErrTimeout)
	})

	r := New(jobs, ledger, collector, t.TempDir(), slog.Default())
	if r.Run(context.Background(), "PKO_daily") {
		t.Error("run should report failure")
	}

	outcome := ledger.outcomes[1]
	if outcome.Status != store.StatusFailed {
		t.Errorf("status = %s, want failed", outcome.Status)
	}
	if !strings.HasPrefix(outcome.ErrorMessage, "timed out:") {
		t.Errorf("timeout not distinguishable in %q", outcome.ErrorMessage)
	}
}

// Package runner executes one declared job end to end: load the
// declaration, open a ledger record, invoke the collection pipeline, write
// the result artifact, close the record. One invocation per triggered job;
// the external scheduler is the only trigger source.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gpwsched/internal/collect"
	"gpwsched/internal/job"
	"gpwsched/internal/store"
)

// JobStore is the subset of the job store needed by the runner.
type JobStore interface {
	Load(ctx context.Context, name string) (job.Config, error)
	MarkExecuted(ctx context.Context, name string, nextRun time.Time) error
}

// Ledger is the subset of the execution ledger needed by the runner.
type Ledger interface {
	OpenExecution(ctx context.Context, jobName string) (int64, error)
	CloseExecution(ctx context.Context, id int64, outcome store.Outcome) error
}

// Runner executes single job runs and records their audit trail.
type Runner struct {
	jobs       JobStore
	ledger     Ledger
	collector  collect.Collector
	resultsDir string
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a runner writing result artifacts under resultsDir.
func New(jobs JobStore, ledger Ledger, collector collect.Collector, resultsDir string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		jobs:       jobs,
		ledger:     ledger,
		collector:  collector,
		resultsDir: resultsDir,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes the named job and reports success. An unknown or disabled
// job fails without opening a ledger record: there is nothing to audit.
// Collaborator errors are recorded as a failed execution and swallowed, so
// one bad job never aborts a scheduler-invoked batch.
func (r *Runner) Run(ctx context.Context, jobName string) bool {
	cfg, err := r.jobs.Load(ctx, jobName)
	if err != nil {
		r.logger.Error("runner: loading job failed", "job", jobName, "error", err)
		return false
	}
	if !cfg.Enabled {
		r.logger.Info("runner: job disabled, skipping", "job", jobName)
		return false
	}

	execID, err := r.ledger.OpenExecution(ctx, jobName)
	if err != nil {
		r.logger.Error("runner: opening execution record failed", "job", jobName, "error", err)
		return false
	}

	r.logger.Info("runner: job started",
		"job", jobName,
		"company", cfg.Company,
		"model", cfg.Model,
		"limit", cfg.ReportLimit,
	)

	result, err := r.collector.Collect(ctx, collect.Request{
		JobName:          cfg.Name,
		Company:          cfg.Company,
		Model:            cfg.Model,
		Limit:            cfg.ReportLimit,
		ReportTypes:      cfg.ReportTypes,
		ReportCategories: cfg.ReportCategories,
	})
	if err != nil {
		r.closeFailed(ctx, execID, jobName, result, err)
		return false
	}

	artifact, err := r.writeArtifact(cfg, result)
	if err != nil {
		r.closeFailed(ctx, execID, jobName, result, err)
		return false
	}

	status := store.StatusSuccess
	if result.ReportsFound == 0 {
		status = store.StatusNoReports
	}

	if err := r.ledger.CloseExecution(ctx, execID, store.Outcome{
		Status:             status,
		ReportsFound:       result.ReportsFound,
		DocumentsProcessed: result.DocumentsProcessed,
		LogFilePath:        artifact,
	}); err != nil {
		r.logger.Error("runner: closing execution record failed", "job", jobName, "error", err)
	}

	next := r.nextRun(cfg)
	if err := r.jobs.MarkExecuted(ctx, jobName, next); err != nil {
		r.logger.Error("runner: updating run statistics failed", "job", jobName, "error", err)
	}

	r.logger.Info("runner: job finished",
		"job", jobName,
		"status", string(status),
		"reports", result.ReportsFound,
		"documents", result.DocumentsProcessed,
	)
	return true
}

// closeFailed records a failed execution. Timeouts get a distinguishable
// message so operators can tell a hang from an ordinary failure.
func (r *Runner) closeFailed(ctx context.Context, execID int64, jobName string, result collect.Result, cause error) {
	msg := cause.Error()
	if errors.Is(cause, collect.ErrTimeout) {
		msg = "timed out: " + msg
	}

	if err := r.ledger.CloseExecution(ctx, execID, store.Outcome{
		Status:             store.StatusFailed,
		ReportsFound:       result.ReportsFound,
		DocumentsProcessed: result.DocumentsProcessed,
		ErrorMessage:       msg,
	}); err != nil {
		r.logger.Error("runner: closing execution record failed", "job", jobName, "error", err)
	}

	r.logger.Error("runner: job failed", "job", jobName, "error", cause)
}

// nextRun computes the advisory next activation time. The installed crontab
// stays authoritative; a zero time just leaves next_run unset.
func (r *Runner) nextRun(cfg job.Config) time.Time {
	next, err := cfg.Schedule.Next(r.now())
	if err != nil {
		r.logger.Warn("runner: computing next run failed", "job", cfg.Name, "error", err)
		return time.Time{}
	}
	return next
}

// writeArtifact stores the run's summary text at a deterministic per-run
// path and returns it.
func (r *Runner) writeArtifact(cfg job.Config, result collect.Result) (string, error) {
	if err := os.MkdirAll(r.resultsDir, 0o755); err != nil {
		return "", fmt.Errorf("runner: create results directory: %w", err)
	}

	now := r.now()
	path := filepath.Join(r.resultsDir, fmt.Sprintf("%s_%s.txt", cfg.Name, now.Format("20060102_150405")))

	var b []byte
	b = fmt.Appendf(b, "Report - %s\n", cfg.Company)
	b = fmt.Appendf(b, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	b = fmt.Appendf(b, "Model: %s\n", cfg.Model)
	b = append(b, []byte(separator+"\n\n")...)
	b = append(b, []byte(result.Summary)...)
	b = fmt.Appendf(b, "\n\n%s\nFound %d report(s), processed %d document(s)\n",
		separator, result.ReportsFound, result.DocumentsProcessed)

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("runner: write artifact: %w", err)
	}
	return path, nil
}

const separator = "================================================================================"

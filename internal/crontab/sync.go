package crontab

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"gpwsched/internal/job"
	"gpwsched/internal/schedule"
)

// JobSource is the subset of the job store needed by the synchronizer.
type JobSource interface {
	List(ctx context.Context, enabledOnly bool) ([]job.Config, error)
}

// Synchronizer rewrites the managed section of the crontab to match the set
// of enabled job declarations. Install and Uninstall are serialised by a
// mutex: the crontab is a whole-document resource and concurrent
// read-modify-write cycles must not interleave.
type Synchronizer struct {
	mu        sync.Mutex
	jobs      JobSource
	crontab   Crontab
	runnerCmd string
	logDir    string
	logger    *slog.Logger
}

// NewSynchronizer creates a synchronizer. runnerCmd is the command prefix
// placed before the job name on every generated line; logDir receives one
// log file per job.
func NewSynchronizer(jobs JobSource, crontab Crontab, runnerCmd, logDir string, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		jobs:      jobs,
		crontab:   crontab,
		runnerCmd: runnerCmd,
		logDir:    logDir,
		logger:    logger,
	}
}

// Install rewrites the managed section from the currently enabled jobs.
// With no enabled jobs it fails fast without touching the crontab. Any
// read or write failure is surfaced verbatim; job declarations are never
// mutated by an install.
func (s *Synchronizer) Install(ctx context.Context) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled, err := s.jobs.List(ctx, true)
	if err != nil {
		return false, fmt.Sprintf("listing enabled jobs: %v", err)
	}
	if len(enabled) == 0 {
		return false, "no enabled jobs to install"
	}

	if err := os.MkdirAll(s.logDir, 0o755); err != nil {
		return false, fmt.Sprintf("creating log directory: %v", err)
	}

	current, err := s.crontab.Read(ctx)
	if err != nil {
		return false, err.Error()
	}

	kept := excise(current)
	section := renderSection(enabled, s.runnerCmd, s.logDir)
	merged := strings.TrimSpace(strings.Join(append(kept, section), "\n")) + "\n"

	if err := s.crontab.Write(ctx, merged); err != nil {
		return false, err.Error()
	}

	s.logger.Info("crontab: managed section installed", "jobs", len(enabled))
	return true, fmt.Sprintf("installed %d job(s)", len(enabled))
}

// Uninstall removes the managed section entirely. It is idempotent: with no
// managed section present it reports success without rewriting anything.
func (s *Synchronizer) Uninstall(ctx context.Context) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.crontab.Read(ctx)
	if err != nil {
		return false, err.Error()
	}

	if !strings.Contains(current, MarkerStart) {
		return true, "no managed section installed"
	}

	kept := excise(current)
	merged := strings.TrimSpace(strings.Join(kept, "\n"))
	if merged != "" {
		merged += "\n"
	}

	if err := s.crontab.Write(ctx, merged); err != nil {
		return false, err.Error()
	}

	s.logger.Info("crontab: managed section removed")
	return true, "removed managed section"
}

// Installed returns the raw scheduler lines currently inside the managed
// section, comments excluded.
func (s *Synchronizer) Installed(ctx context.Context) ([]string, error) {
	current, err := s.crontab.Read(ctx)
	if err != nil {
		return nil, err
	}
	return sectionLines(current), nil
}

// Drift is the mismatch between enabled declarations and installed lines.
type Drift struct {
	// Stale jobs are enabled but have no installed line.
	Stale []string

	// Orphaned jobs have an installed line but no enabled declaration.
	Orphaned []string
}

// Empty reports whether declarations and crontab agree.
func (d Drift) Empty() bool {
	return len(d.Stale) == 0 && len(d.Orphaned) == 0
}

// DetectDrift diffs the enabled job set against the installed lines.
func (s *Synchronizer) DetectDrift(ctx context.Context) (Drift, error) {
	enabled, err := s.jobs.List(ctx, true)
	if err != nil {
		return Drift{}, fmt.Errorf("crontab: listing enabled jobs: %w", err)
	}

	installed, err := s.Installed(ctx)
	if err != nil {
		return Drift{}, err
	}

	installedNames := make(map[string]struct{}, len(installed))
	for _, line := range installed {
		if name := jobNameFromLine(line); name != "" {
			installedNames[name] = struct{}{}
		}
	}

	var drift Drift
	enabledNames := make(map[string]struct{}, len(enabled))
	for _, cfg := range enabled {
		enabledNames[cfg.Name] = struct{}{}
		if _, ok := installedNames[cfg.Name]; !ok {
			drift.Stale = append(drift.Stale, cfg.Name)
		}
	}
	for name := range installedNames {
		if _, ok := enabledNames[name]; !ok {
			drift.Orphaned = append(drift.Orphaned, name)
		}
	}
	sort.Strings(drift.Orphaned)
	return drift, nil
}

// Validate checks an expression text and renders a human-readable verdict.
func Validate(text string) (bool, string) {
	if _, err := schedule.Parse(text); err != nil {
		return false, err.Error()
	}
	return true, fmt.Sprintf("valid cron expression: %s", text)
}

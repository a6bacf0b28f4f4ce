// Package job defines the declared recurring collection task and its
// validation rules.
package job

import (
	"fmt"
	"strings"
	"time"

	"gpwsched/internal/schedule"
)

// DefaultReportLimit applies when a stored declaration has no limit.
const DefaultReportLimit = 5

// Config is one declared recurring collection job. Name is the unique,
// immutable key. LastRun, NextRun, RunCount, CreatedAt and UpdatedAt are
// owned by the store and ignored on save.
type Config struct {
	Name             string
	Company          string
	DateFrom         string // DD-MM-YYYY, optional
	DateTo           string // DD-MM-YYYY, optional
	Model            string
	Schedule         schedule.Expression
	Enabled          bool
	ReportLimit      int
	ReportTypes      []string
	ReportCategories []string
	Description      string

	LastRun   *time.Time
	NextRun   *time.Time
	RunCount  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidationError lists every violated field of a Config, not just the first.
type ValidationError struct {
	Violations []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return "job: invalid configuration: " + strings.Join(e.Violations, "; ")
}

// Validate checks the declarative fields of cfg. A nil return means the
// config is safe to persist.
func Validate(cfg Config) error {
	var violations []string

	switch {
	case cfg.Name == "":
		violations = append(violations, "job_name is required")
	case strings.ContainsAny(cfg.Name, " \t\n"):
		violations = append(violations, "job_name must not contain whitespace")
	}
	if cfg.Company == "" {
		violations = append(violations, "company is required")
	}
	if cfg.Model == "" {
		violations = append(violations, "model is required")
	}
	if cfg.Schedule.IsZero() {
		violations = append(violations, "cron_schedule is required")
	}
	if cfg.ReportLimit < 0 {
		violations = append(violations, fmt.Sprintf("report_limit must be positive, got %d", cfg.ReportLimit))
	}

	for _, f := range []struct{ name, value string }{
		{"date_from", cfg.DateFrom},
		{"date_to", cfg.DateTo},
	} {
		if f.value == "" {
			continue
		}
		if _, err := time.Parse("02-01-2006", f.value); err != nil {
			violations = append(violations, f.name+" must be in DD-MM-YYYY format")
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

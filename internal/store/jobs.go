package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gpwsched/internal/job"
	"gpwsched/internal/schedule"
)

// ErrNotFound indicates the named job declaration does not exist.
var ErrNotFound = errors.New("store: job not found")

// Save validates cfg and upserts it keyed on the job name. On conflict only
// the declarative fields are overwritten; last_run, next_run and run_count
// survive re-saves. Returns the job name.
func (s *Store) Save(ctx context.Context, cfg job.Config) (string, error) {
	if err := job.Validate(cfg); err != nil {
		return "", err
	}

	typesJSON, err := marshalStringSet(cfg.ReportTypes)
	if err != nil {
		return "", fmt.Errorf("store: marshal report_types: %w", err)
	}
	categoriesJSON, err := marshalStringSet(cfg.ReportCategories)
	if err != nil {
		return "", fmt.Errorf("store: marshal report_categories: %w", err)
	}

	limit := cfg.ReportLimit
	if limit == 0 {
		limit = job.DefaultReportLimit
	}

	now := s.now().UTC().Format(time.RFC3339Nano)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scheduled_jobs
			(job_name, company, date_from, date_to, model, cron_schedule,
			 enabled, report_limit, report_types, report_categories, description,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_name) DO UPDATE SET
			company           = excluded.company,
			date_from         = excluded.date_from,
			date_to           = excluded.date_to,
			model             = excluded.model,
			cron_schedule     = excluded.cron_schedule,
			enabled           = excluded.enabled,
			report_limit      = excluded.report_limit,
			report_types      = excluded.report_types,
			report_categories = excluded.report_categories,
			description       = excluded.description,
			updated_at        = excluded.updated_at`,
		cfg.Name, cfg.Company, toISODate(cfg.DateFrom), toISODate(cfg.DateTo),
		cfg.Model, cfg.Schedule.String(), boolInt(cfg.Enabled), limit,
		typesJSON, categoriesJSON, cfg.Description, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("store: save job %s: %w", cfg.Name, err)
	}

	return cfg.Name, nil
}

// Load returns the job declaration with the given name, or ErrNotFound.
func (s *Store) Load(ctx context.Context, name string) (job.Config, error) {
	row := s.db.QueryRowContext(ctx, selectJobColumns+" FROM scheduled_jobs WHERE job_name = ?", name)
	cfg, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return job.Config{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return cfg, err
}

// List returns all job declarations ordered by name. With enabledOnly set,
// disabled jobs are filtered out.
func (s *Store) List(ctx context.Context, enabledOnly bool) ([]job.Config, error) {
	query := selectJobColumns + " FROM scheduled_jobs"
	if enabledOnly {
		query += " WHERE enabled = 1"
	}
	query += " ORDER BY job_name"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var configs []job.Config
	for rows.Next() {
		cfg, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list jobs rows: %w", err)
	}
	return configs, nil
}

// Delete removes the named job declaration. Returns false when it was absent.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM scheduled_jobs WHERE job_name = ?", name)
	if err != nil {
		return false, fmt.Errorf("store: delete job %s: %w", name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: rows affected: %w", err)
	}
	return n > 0, nil
}

// SetEnabled flips the enabled flag of the named job.
func (s *Store) SetEnabled(ctx context.Context, name string, enabled bool) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE scheduled_jobs SET enabled = ?, updated_at = ? WHERE job_name = ?",
		boolInt(enabled), s.now().UTC().Format(time.RFC3339Nano), name,
	)
	if err != nil {
		return fmt.Errorf("store: set enabled for %s: %w", name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// MarkExecuted records a completed run: last_run is set to now, next_run to
// the advisory next activation, and run_count is incremented. The increment
// happens inside the UPDATE so a concurrent Save cannot lose it.
func (s *Store) MarkExecuted(ctx context.Context, name string, nextRun time.Time) error {
	now := s.now().UTC().Format(time.RFC3339Nano)
	var next any
	if !nextRun.IsZero() {
		next = nextRun.UTC().Format(time.RFC3339Nano)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_jobs
		SET last_run = ?, next_run = ?, run_count = run_count + 1, updated_at = ?
		WHERE job_name = ?`,
		now, next, now, name,
	)
	if err != nil {
		return fmt.Errorf("store: mark executed %s: %w", name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

const selectJobColumns = `SELECT job_name, company, date_from, date_to, model, cron_schedule,
	enabled, report_limit, report_types, report_categories, description,
	last_run, next_run, run_count, created_at, updated_at`

// scanner is the common subset of *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (job.Config, error) {
	var (
		cfg                        job.Config
		exprText                   string
		dateFrom, dateTo           sql.NullString
		typesJSON, catsJSON        sql.NullString
		enabled                    int
		lastRun, nextRun           sql.NullString
		createdAtStr, updatedAtStr string
	)

	err := row.Scan(
		&cfg.Name, &cfg.Company, &dateFrom, &dateTo, &cfg.Model, &exprText,
		&enabled, &cfg.ReportLimit, &typesJSON, &catsJSON, &cfg.Description,
		&lastRun, &nextRun, &cfg.RunCount, &createdAtStr, &updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return job.Config{}, err
	}
	if err != nil {
		return job.Config{}, fmt.Errorf("store: scan job: %w", err)
	}

	cfg.Schedule, err = schedule.Parse(exprText)
	if err != nil {
		return job.Config{}, fmt.Errorf("store: job %s has invalid cron_schedule: %w", cfg.Name, err)
	}

	cfg.DateFrom = fromISODate(dateFrom.String)
	cfg.DateTo = fromISODate(dateTo.String)
	cfg.Enabled = enabled != 0
	if cfg.ReportLimit <= 0 {
		cfg.ReportLimit = job.DefaultReportLimit
	}

	if cfg.ReportTypes, err = unmarshalStringSet(typesJSON); err != nil {
		return job.Config{}, fmt.Errorf("store: job %s report_types: %w", cfg.Name, err)
	}
	if cfg.ReportCategories, err = unmarshalStringSet(catsJSON); err != nil {
		return job.Config{}, fmt.Errorf("store: job %s report_categories: %w", cfg.Name, err)
	}

	if cfg.LastRun, err = parseOptionalTime(lastRun); err != nil {
		return job.Config{}, fmt.Errorf("store: job %s last_run: %w", cfg.Name, err)
	}
	if cfg.NextRun, err = parseOptionalTime(nextRun); err != nil {
		return job.Config{}, fmt.Errorf("store: job %s next_run: %w", cfg.Name, err)
	}
	if cfg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr); err != nil {
		return job.Config{}, fmt.Errorf("store: job %s created_at: %w", cfg.Name, err)
	}
	if cfg.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAtStr); err != nil {
		return job.Config{}, fmt.Errorf("store: job %s updated_at: %w", cfg.Name, err)
	}

	return cfg, nil
}

func marshalStringSet(values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func unmarshalStringSet(column sql.NullString) ([]string, error) {
	if !column.Valid || column.String == "" || column.String == "null" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(column.String), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func parseOptionalTime(column sql.NullString) (*time.Time, error) {
	if !column.Valid || column.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, column.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// toISODate converts a DD-MM-YYYY date to the YYYY-MM-DD storage form.
// Empty and unparseable inputs pass through (validation happens in Save).
func toISODate(date string) any {
	if date == "" {
		return nil
	}
	t, err := time.Parse("02-01-2006", date)
	if err != nil {
		return date
	}
	return t.Format("2006-01-02")
}

// fromISODate is the inverse of toISODate.
func fromISODate(date string) string {
	if date == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("02-01-2006")
}

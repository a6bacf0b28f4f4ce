package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of one execution attempt.
type Status string

// Execution statuses. A record is created as StatusRunning and receives
// exactly one terminal update.
const (
	StatusRunning   Status = "running"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusNoReports Status = "no_reports"
)

// Sentinel errors for ledger operations.
var (
	// ErrExecutionNotFound indicates the execution id does not exist.
	ErrExecutionNotFound = errors.New("store: execution not found")

	// ErrExecutionClosed indicates the execution already received its
	// terminal update.
	ErrExecutionClosed = errors.New("store: execution already closed")
)

// Execution is one audit row of the execution ledger.
type Execution struct {
	ID                 int64
	JobName            string
	Status             Status
	StartedAt          time.Time
	FinishedAt         *time.Time
	DurationSeconds    *int64
	ReportsFound       int
	DocumentsProcessed int
	ErrorMessage       string
	LogFilePath        string
}

// Outcome carries the terminal update for an execution record.
type Outcome struct {
	Status             Status
	ReportsFound       int
	DocumentsProcessed int
	ErrorMessage       string
	LogFilePath        string
}

// OpenExecution appends a running ledger record for the named job and
// returns its id.
func (s *Store) OpenExecution(ctx context.Context, jobName string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO job_executions (job_name, status, started_at) VALUES (?, ?, ?)",
		jobName, StatusRunning, s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("store: open execution for %s: %w", jobName, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: execution id: %w", err)
	}
	return id, nil
}

// CloseExecution applies the terminal update to the execution with the given
// id, setting finished_at and the derived duration. Closing a record that is
// already terminal returns ErrExecutionClosed.
func (s *Store) CloseExecution(ctx context.Context, id int64, outcome Outcome) error {
	if outcome.Status == StatusRunning {
		return fmt.Errorf("store: close execution %d: %q is not a terminal status", id, outcome.Status)
	}

	finished := s.now().UTC().Format(time.RFC3339)

	result, err := s.db.ExecContext(ctx, `
		UPDATE job_executions
		SET status              = ?,
		    finished_at         = ?,
		    duration_seconds    = CAST(strftime('%s', ?) - strftime('%s', started_at) AS INTEGER),
		    reports_found       = ?,
		    documents_processed = ?,
		    error_message       = NULLIF(?, ''),
		    log_file_path       = NULLIF(?, '')
		WHERE id = ? AND status = ?`,
		outcome.Status, finished, finished,
		outcome.ReportsFound, outcome.DocumentsProcessed,
		outcome.ErrorMessage, outcome.LogFilePath,
		id, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("store: close execution %d: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		var exists int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM job_executions WHERE id = ?", id).Scan(&exists); err != nil {
			return fmt.Errorf("store: close execution %d: %w", id, err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: %d", ErrExecutionNotFound, id)
		}
		return fmt.Errorf("%w: %d", ErrExecutionClosed, id)
	}
	return nil
}

// Executions returns ledger records newest first, optionally filtered by job
// name (empty string means all jobs), capped at limit.
func (s *Store) Executions(ctx context.Context, jobName string, limit int) ([]Execution, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, job_name, status, started_at, finished_at, duration_seconds,
		reports_found, documents_processed, error_message, log_file_path
		FROM job_executions`
	args := []any{}
	if jobName != "" {
		query += " WHERE job_name = ?"
		args = append(args, jobName)
	}
	query += " ORDER BY started_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query executions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var executions []Execution
	for rows.Next() {
		var (
			e                         Execution
			startedStr                string
			finished, errMsg, logPath sql.NullString
			duration                  sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.JobName, &e.Status, &startedStr, &finished,
			&duration, &e.ReportsFound, &e.DocumentsProcessed, &errMsg, &logPath); err != nil {
			return nil, fmt.Errorf("store: scan execution: %w", err)
		}

		if e.StartedAt, err = time.Parse(time.RFC3339, startedStr); err != nil {
			return nil, fmt.Errorf("store: execution %d started_at: %w", e.ID, err)
		}
		if finished.Valid {
			t, err := time.Parse(time.RFC3339, finished.String)
			if err != nil {
				return nil, fmt.Errorf("store: execution %d finished_at: %w", e.ID, err)
			}
			e.FinishedAt = &t
		}
		if duration.Valid {
			d := duration.Int64
			e.DurationSeconds = &d
		}
		e.ErrorMessage = errMsg.String
		e.LogFilePath = logPath.String

		executions = append(executions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: executions rows: %w", err)
	}
	return executions, nil
}

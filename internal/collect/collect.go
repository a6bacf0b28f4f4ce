// Package collect defines the boundary to the scraping/summarization
// pipeline. The runner treats the collector as opaque: it hands over the
// job's declared parameters and receives one explicit result struct.
package collect

import (
	"context"
	"errors"
)

// ErrTimeout indicates the collector exceeded its wall-clock budget and was
// forcibly terminated.
var ErrTimeout = errors.New("collect: collection timed out")

// Request carries a job's declared collection parameters.
type Request struct {
	JobName          string   `json:"job_name"`
	Company          string   `json:"company"`
	Model            string   `json:"model"`
	Limit            int      `json:"limit"`
	ReportTypes      []string `json:"report_types,omitempty"`
	ReportCategories []string `json:"report_categories,omitempty"`
}

// Result is the collector's outcome. One versioned struct with optional
// fields, regardless of how the pipeline evolves.
type Result struct {
	ReportsFound       int    `json:"reports_found"`
	DocumentsProcessed int    `json:"documents_processed"`
	SummaryReportID    int64  `json:"summary_report_id,omitempty"`
	Summary            string `json:"summary"`
}

// Collector runs one collection pass for a job.
type Collector interface {
	Collect(ctx context.Context, req Request) (Result, error)
}

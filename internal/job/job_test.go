package job

import (
	"errors"
	"strings"
	"testing"

	"gpwsched/internal/schedule"
)

func mustSchedule(t *testing.T, text string) schedule.Expression {
	t.Helper()
	expr, err := schedule.Parse(text)
	if err != nil {
		t.Fatalf("parse schedule %q: %v", text, err)
	}
	return expr
}

func validConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Name:     "PKO_daily",
		Company:  "PKO",
		Model:    "llama3",
		Schedule: mustSchedule(t, "0 9 * * *"),
		Enabled:  true,
	}
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()

	cfg := validConfig(t)
	cfg.DateFrom = "01-03-2025"
	cfg.DateTo = "31-03-2025"
	cfg.ReportLimit = 10

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	t.Parallel()

	err := Validate(Config{DateFrom: "2025-03-01", ReportLimit: -1})
	if err == nil {
		t.Fatal("expected error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}

	for _, want := range []string{
		"job_name is required",
		"company is required",
		"model is required",
		"cron_schedule is required",
		"report_limit must be positive",
		"date_from must be in DD-MM-YYYY format",
	} {
		found := false
		for _, v := range verr.Violations {
			if strings.HasPrefix(v, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing violation %q in %v", want, verr.Violations)
		}
	}
}

func TestValidate_NameWhitespace(t *testing.T) {
	t.Parallel()

	cfg := validConfig(t)
	cfg.Name = "PKO daily"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for job name with whitespace")
	}
	if !strings.Contains(err.Error(), "whitespace") {
		t.Errorf("error %q does not mention whitespace", err)
	}
}

func TestValidate_DateFormat(t *testing.T) {
	t.Parallel()

	cfg := validConfig(t)
	cfg.DateTo = "March 1st"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for malformed date_to")
	}
}

package schedule

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParse_Valid(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"0 9 * * *",
		"30 23 1 12 0",
		"0 9 * * 7", // 7 means Sunday, same as 0
		"* * * * *",
		"*/5 * * * *",
		"0 9 * * 1",
	} {
		expr, err := Parse(text)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", text, err)
			continue
		}
		if expr.IsZero() {
			t.Errorf("Parse(%q): returned zero expression", text)
		}
	}
}

func TestParse_Normalizes_Whitespace(t *testing.T) {
	t.Parallel()

	expr, err := Parse("  0   9  *  *  1 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := expr.String(); got != "0 9 * * 1" {
		t.Errorf("String() = %q, want %q", got, "0 9 * * 1")
	}
}

func TestParse_FieldCount(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "0 9", "0 9 * *", "0 9 * * * *"} {
		if _, err := Parse(text); err == nil {
			t.Errorf("Parse(%q): expected error", text)
		}
	}
}

func TestParse_ReportsEveryViolation(t *testing.T) {
	t.Parallel()

	_, err := Parse("60 24 32 13 8")
	if err == nil {
		t.Fatal("expected error")
	}

	var invalid *InvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("error type = %T, want *InvalidError", err)
	}
	if len(invalid.Violations) != 5 {
		t.Fatalf("got %d violations, want 5: %v", len(invalid.Violations), invalid.Violations)
	}
	for _, want := range []string{"minute", "hour", "day_of_month", "month", "weekday"} {
		found := false
		for _, v := range invalid.Violations {
			if strings.HasPrefix(v, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no violation for field %q in %v", want, invalid.Violations)
		}
	}
}

func TestParse_RejectsGarbageSyntax(t *testing.T) {
	t.Parallel()

	if _, err := Parse("a b c d e"); err == nil {
		t.Error("expected error for non-cron fields")
	}
}

func TestExpression_Next(t *testing.T) {
	t.Parallel()

	expr, err := Parse("0 9 * * *")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	from := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC) // after 09:00
	next, err := expr.Next(from)
	if err != nil {
		t.Fatalf("next: %v", err)
	}

	want := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Next(%v) = %v, want %v", from, next, want)
	}
}

func TestExpression_WeekdaySevenMeansSunday(t *testing.T) {
	t.Parallel()

	expr, err := Parse("0 9 * * 7")
	if err != nil {
		t.Fatalf("Parse(%q): %v", "0 9 * * 7", err)
	}
	if got := expr.String(); got != "0 9 * * 7" {
		t.Errorf("String() = %q, want %q", got, "0 9 * * 7")
	}

	from := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC) // a Monday
	next, err := expr.Next(from)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next.Weekday() != time.Sunday {
		t.Errorf("Next(%v) = %v, want a Sunday", from, next)
	}

	sunday, err := Parse("0 9 * * 0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	same, err := sunday.Next(from)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !next.Equal(same) {
		t.Errorf("weekday 7 fires at %v, weekday 0 at %v", next, same)
	}
}

func TestExpression_ZeroValue(t *testing.T) {
	t.Parallel()

	var expr Expression
	if !expr.IsZero() {
		t.Error("zero value should report IsZero")
	}
}

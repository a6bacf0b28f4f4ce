// Package schedule provides the 5-field cron expression value type used by
// job declarations: parsing, validation, rendering, and conversion from a
// human-friendly daily/weekly/monthly description.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// parser accepts the standard 5-field form (minute hour dom month dow).
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// fieldDomain describes the allowed numeric range of one cron field.
type fieldDomain struct {
	name     string
	min, max int
}

// fieldDomains lists the five fields in expression order. Weekday allows
// 0-7 because both 0 and 7 mean Sunday.
var fieldDomains = [5]fieldDomain{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day_of_month", 1, 31},
	{"month", 1, 12},
	{"weekday", 0, 7},
}

// Expression is an immutable, validated 5-field cron expression.
// The zero value is not a valid expression; construct one with Parse
// or FromHuman.
type Expression struct {
	fields [5]string
}

// InvalidError reports why an expression text was rejected. Violations
// holds one entry per violated field, not just the first.
type InvalidError struct {
	Text       string
	Violations []string
}

// Error implements error.
func (e *InvalidError) Error() string {
	return fmt.Sprintf("schedule: invalid expression %q: %s", e.Text, strings.Join(e.Violations, "; "))
}

// Parse validates text as a 5-field cron expression. Numeric fields must
// fall inside their documented domain; non-numeric forms (wildcards, steps,
// lists) are checked semantically by the cron parser. All field violations
// are collected into a single InvalidError.
func Parse(text string) (Expression, error) {
	parts := strings.Fields(text)
	if len(parts) != 5 {
		return Expression{}, &InvalidError{
			Text:       text,
			Violations: []string{fmt.Sprintf("expected 5 fields (minute hour day_of_month month weekday), got %d", len(parts))},
		}
	}

	var violations []string
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			continue // wildcard or other cron syntax, validated below
		}
		d := fieldDomains[i]
		if n < d.min || n > d.max {
			violations = append(violations, fmt.Sprintf("%s must be between %d and %d, got %d", d.name, d.min, d.max, n))
		}
	}
	if len(violations) > 0 {
		return Expression{}, &InvalidError{Text: text, Violations: violations}
	}

	var expr Expression
	copy(expr.fields[:], parts)

	if _, err := parser.Parse(parserText(expr.fields)); err != nil {
		return Expression{}, &InvalidError{Text: text, Violations: []string{err.Error()}}
	}
	return expr, nil
}

// parserText renders fields for the cron parser, whose weekday domain stops
// at 6. A standalone 7 means Sunday and maps to 0; the expression itself
// keeps the 7 the caller wrote.
func parserText(fields [5]string) string {
	if fields[4] == "7" {
		fields[4] = "0"
	}
	return strings.Join(fields[:], " ")
}

// String renders the expression as 5 space-separated fields.
func (e Expression) String() string {
	return strings.Join(e.fields[:], " ")
}

// IsZero reports whether the expression was never constructed.
func (e Expression) IsZero() bool {
	return e.fields == [5]string{}
}

// Next returns the first activation time strictly after from. The result is
// advisory: the installed crontab remains the authoritative trigger.
func (e Expression) Next(from time.Time) (time.Time, error) {
	sched, err := parser.Parse(parserText(e.fields))
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule: parse %q: %w", e.String(), err)
	}
	return sched.Next(from), nil
}

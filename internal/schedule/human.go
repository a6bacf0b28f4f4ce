package schedule

import (
	"fmt"
	"strconv"
	"time"
)

// Frequency selects one of the three canonical recurrence shapes.
type Frequency string

// Supported frequencies.
const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// FromHuman builds an expression from a simple schedule description.
// Weekly schedules run on the given weekday (out-of-range values default to
// Monday); monthly schedules run on dayOfMonth (out-of-range values default
// to the 1st).
func FromHuman(freq Frequency, hour, minute int, weekday time.Weekday, dayOfMonth int) (Expression, error) {
	var violations []string
	if hour < 0 || hour > 23 {
		violations = append(violations, fmt.Sprintf("hour must be between 0 and 23, got %d", hour))
	}
	if minute < 0 || minute > 59 {
		violations = append(violations, fmt.Sprintf("minute must be between 0 and 59, got %d", minute))
	}
	if len(violations) > 0 {
		return Expression{}, &InvalidError{Text: string(freq), Violations: violations}
	}

	m, h := strconv.Itoa(minute), strconv.Itoa(hour)

	switch freq {
	case Weekly:
		if weekday < time.Sunday || weekday > time.Saturday {
			weekday = time.Monday
		}
		return Expression{fields: [5]string{m, h, "*", "*", strconv.Itoa(int(weekday))}}, nil
	case Monthly:
		if dayOfMonth < 1 || dayOfMonth > 31 {
			dayOfMonth = 1
		}
		return Expression{fields: [5]string{m, h, strconv.Itoa(dayOfMonth), "*", "*"}}, nil
	case Daily:
		return Expression{fields: [5]string{m, h, "*", "*", "*"}}, nil
	default:
		return Expression{}, &InvalidError{
			Text:       string(freq),
			Violations: []string{fmt.Sprintf("unknown frequency %q (supported: daily, weekly, monthly)", freq)},
		}
	}
}

// HumanText renders the expression for display, e.g. "Every Monday at 09:00".
// Expressions that do not match one of the three canonical shapes fall back
// to the raw cron text.
func (e Expression) HumanText() string {
	minute, hour := e.fields[0], e.fields[1]
	dom, month, dow := e.fields[2], e.fields[3], e.fields[4]

	mv, merr := strconv.Atoi(minute)
	hv, herr := strconv.Atoi(hour)
	if merr != nil || herr != nil || month != "*" {
		return e.String()
	}
	at := fmt.Sprintf("%02d:%02d", hv, mv)

	switch {
	case dom == "*" && dow == "*":
		return "Every day at " + at
	case dom == "*" && dow != "*":
		wd, err := strconv.Atoi(dow)
		if err != nil || wd < 0 || wd > 7 {
			return e.String()
		}
		return fmt.Sprintf("Every %s at %s", time.Weekday(wd%7), at)
	case dom != "*" && dow == "*":
		day, err := strconv.Atoi(dom)
		if err != nil {
			return e.String()
		}
		return fmt.Sprintf("Monthly on day %d at %s", day, at)
	default:
		return e.String()
	}
}

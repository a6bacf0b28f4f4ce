package schedule

import (
	"testing"
	"time"
)

func TestFromHuman_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		freq       Frequency
		hour       int
		minute     int
		weekday    time.Weekday
		dayOfMonth int
		want       string
	}{
		{"daily", Daily, 9, 0, 0, 0, "0 9 * * *"},
		{"daily late", Daily, 23, 30, 0, 0, "30 23 * * *"},
		{"weekly monday", Weekly, 9, 0, time.Monday, 0, "0 9 * * 1"},
		{"weekly sunday", Weekly, 7, 15, time.Sunday, 0, "15 7 * * 0"},
		{"weekly out-of-range weekday defaults to monday", Weekly, 9, 0, time.Weekday(9), 0, "0 9 * * 1"},
		{"monthly", Monthly, 8, 45, 0, 15, "45 8 15 * *"},
		{"monthly out-of-range day defaults to 1st", Monthly, 8, 0, 0, 0, "0 8 1 * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			expr, err := FromHuman(tt.freq, tt.hour, tt.minute, tt.weekday, tt.dayOfMonth)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := expr.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromHuman_InvalidInputs(t *testing.T) {
	t.Parallel()

	if _, err := FromHuman(Daily, 24, 0, 0, 0); err == nil {
		t.Error("expected error for hour 24")
	}
	if _, err := FromHuman(Daily, 9, 60, 0, 0); err == nil {
		t.Error("expected error for minute 60")
	}
	if _, err := FromHuman(Frequency("yearly"), 9, 0, 0, 0); err == nil {
		t.Error("expected error for unknown frequency")
	}
}

// FromHuman output must parse back to the identical 5 fields.
func TestFromHuman_ParseRoundTrip(t *testing.T) {
	t.Parallel()

	for _, freq := range []Frequency{Daily, Weekly, Monthly} {
		for hour := 0; hour < 24; hour += 7 {
			for minute := 0; minute < 60; minute += 13 {
				expr, err := FromHuman(freq, hour, minute, time.Wednesday, 12)
				if err != nil {
					t.Fatalf("FromHuman(%s, %d, %d): %v", freq, hour, minute, err)
				}
				parsed, err := Parse(expr.String())
				if err != nil {
					t.Fatalf("Parse(%q): %v", expr.String(), err)
				}
				if parsed != expr {
					t.Errorf("round trip: %q != %q", parsed.String(), expr.String())
				}
			}
		}
	}
}

func TestHumanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr string
		want string
	}{
		{"0 9 * * *", "Every day at 09:00"},
		{"30 18 * * *", "Every day at 18:30"},
		{"0 9 * * 1", "Every Monday at 09:00"},
		{"15 7 * * 0", "Every Sunday at 07:15"},
		{"15 7 * * 7", "Every Sunday at 07:15"},
		{"45 8 15 * *", "Monthly on day 15 at 08:45"},
		// Non-canonical shapes fall back to the raw expression.
		{"*/5 * * * *", "*/5 * * * *"},
		{"0 9 1 * 1", "0 9 1 * 1"},
		{"0 9 * 6 *", "0 9 * 6 *"},
	}

	for _, tt := range tests {
		expr, err := Parse(tt.expr)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.expr, err)
		}
		if got := expr.HumanText(); got != tt.want {
			t.Errorf("HumanText(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

package core

import (
	"testing"
	"time"
)

func TestPeriodBound(t *testing.T) {
	now := time.Date(2024, 7, 1, 15, 30, 0, 0, time.UTC)
	cases := []struct {
		period string
		exact  string
		from   string
	}{
		{"day", "2024-07-01", ""},
		{"week", "", "2024-06-24"},
		{"month", "", "2024-06-01"},
		{"year", "", "2023-07-01"},
		{"all", "", ""},
		{"", "", ""},
		{"fortnight", "", ""}, // unknown names filter nothing
	}
	for _, tc := range cases {
		got := PeriodBound(tc.period, now)
		if got.Exact != tc.exact || got.From != tc.from {
			t.Fatalf("PeriodBound(%q) = %+v, want exact=%q from=%q",
				tc.period, got, tc.exact, tc.from)
		}
	}
}

func TestPeriodBoundCalendarAware(t *testing.T) {
	// One month before March 31 follows the calendar arithmetic of
	// AddDate, which normalizes the overflowed day into March.
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	got := PeriodBound("month", now)
	if got.From != "2024-03-02" {
		t.Fatalf("month bound from Mar 31 = %q", got.From)
	}

	// Leap-year boundary for the year filter.
	now = time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	got = PeriodBound("year", now)
	if got.From != "2023-03-01" {
		t.Fatalf("year bound from Feb 29 = %q", got.From)
	}
}

func TestNormalizePeriod(t *testing.T) {
	cases := map[string]string{
		"day":     "day",
		"week":    "week",
		"month":   "month",
		"year":    "year",
		"all":     "all",
		"":        "all",
		"decade":  "all",
		"MONTH":   "all", // period names are case sensitive
		"monthly": "all",
	}
	for in, want := range cases {
		if got := NormalizePeriod(in); got != want {
			t.Fatalf("NormalizePeriod(%q) = %q, want %q", in, got, want)
		}
	}
}

package core

import "time"

// Period names accepted by query filters. Anything outside this set is
// treated as PeriodAll without complaint; callers get the full history
// rather than an error.
const (
	PeriodAll   = "all"
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// PeriodFilter is the resolved date bound for a named period. The zero
// value means no filtering.
type PeriodFilter struct {
	// Exact matches the date column exactly (used by the day period).
	Exact string
	// From is an inclusive lower bound on the date column.
	From string
}

func (f PeriodFilter) IsZero() bool {
	return f.Exact == "" && f.From == ""
}

// PeriodBound resolves a named period against a reference clock.
// Week is a fixed seven days back; month and year follow the calendar
// (AddDate), so "one month before March 31" lands where the calendar
// says, not thirty days earlier.
func PeriodBound(period string, now time.Time) PeriodFilter {
	switch period {
	case PeriodDay:
		return PeriodFilter{Exact: now.Format(DateLayout)}
	case PeriodWeek:
		return PeriodFilter{From: now.AddDate(0, 0, -7).Format(DateLayout)}
	case PeriodMonth:
		return PeriodFilter{From: now.AddDate(0, -1, 0).Format(DateLayout)}
	case PeriodYear:
		return PeriodFilter{From: now.AddDate(-1, 0, 0).Format(DateLayout)}
	default:
		return PeriodFilter{}
	}
}

// NormalizePeriod collapses unknown period names to PeriodAll for display
// and filenames. The filter itself already ignores unknown names.
func NormalizePeriod(period string) string {
	switch period {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return period
	default:
		return PeriodAll
	}
}

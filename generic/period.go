package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - Inclusive date range a payroll is computed for
// =============================================================================

// Period is the inclusive range [Start, End].
// A period whose End is before its Start is empty: it has no days and every
// calculation over it yields zero.
//
// Examples:
//   - Monthly payroll for March 2025: Mar 1 - Mar 31
//   - Semi-monthly: Mar 1 - Mar 15, Mar 16 - Mar 31
type Period struct {
	Start Date
	End   Date
}

// MonthPeriod returns the calendar month containing year/month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// IsEmpty returns true when the period contains no days.
func (p Period) IsEmpty() bool { return p.End.Before(p.Start) }

// Contains returns true if the date is within the period [Start, End]
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns all days in the period.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Len returns the number of days in the period.
func (p Period) Len() int {
	if p.IsEmpty() {
		return 0
	}
	return int(p.End.t.Sub(p.Start.t).Hours()/24) + 1
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// MaxPeriodDays bounds the length of a payroll period.
const MaxPeriodDays = 366

// Validate reports ErrInvalidPeriod for a period with a missing bound or one
// longer than MaxPeriodDays. An empty (End before Start) period is valid.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ErrInvalidPeriod
	}
	if p.End.After(p.Start.AddDays(MaxPeriodDays - 1)) {
		return fmt.Errorf("%w: %s is longer than %d days", ErrInvalidPeriod, p, MaxPeriodDays)
	}
	return nil
}

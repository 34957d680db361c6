package generic

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// DATE - Calendar date without a clock component
// =============================================================================

// Date is a calendar day. The wrapped time is always midnight UTC so two Dates
// for the same day compare equal regardless of how they were built.
type Date struct {
	t time.Time
}

const DateLayout = "2006-01-02"

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(o Date) bool        { return d.t.Before(o.t) }
func (d Date) After(o Date) bool         { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool         { return d.t.Equal(o.t) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.t.After(o.t) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.t.Before(o.t) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// At returns the instant at the given time of day on this date in loc.
func (d Date) At(tod TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).Add(tod.Duration())
}

func (d Date) String() string { return d.t.Format(DateLayout) }

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// TIME OF DAY - Offset from midnight, e.g. 08:30
// =============================================================================

// TimeOfDay is a wall-clock offset from midnight in minutes, in [0, 24:00].
// 24:00 is allowed so a range can end at the end of the day.
type TimeOfDay int

const (
	Midnight  TimeOfDay = 0
	EndOfDay  TimeOfDay = 24 * 60
	minuteDur           = time.Minute
)

func NewTimeOfDay(hour, minute int) TimeOfDay { return TimeOfDay(hour*60 + minute) }

// ParseTimeOfDay accepts "HH:MM" (and "24:00").
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time of day %q: out of range", s)
	}
	return NewTimeOfDay(h, m), nil
}

func (t TimeOfDay) Duration() time.Duration { return time.Duration(t) * minuteDur }
func (t TimeOfDay) Valid() bool             { return t >= Midnight && t <= EndOfDay }
func (t TimeOfDay) String() string          { return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60) }

func (t TimeOfDay) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// =============================================================================
// HOLIDAY SET - Paid holidays
// =============================================================================

// Holiday is a paid company holiday.
type Holiday struct {
	Date Date
	Name string
}

// HolidaySet is an immutable set of holiday dates. The zero value is empty.
type HolidaySet struct {
	byDate map[Date]Holiday
}

func NewHolidaySet(holidays ...Holiday) HolidaySet {
	m := make(map[Date]Holiday, len(holidays))
	for _, h := range holidays {
		m[h.Date] = h
	}
	return HolidaySet{byDate: m}
}

// NewHolidaySetFromDates builds a set of unnamed holidays.
func NewHolidaySetFromDates(dates ...Date) HolidaySet {
	hs := make([]Holiday, len(dates))
	for i, d := range dates {
		hs[i] = Holiday{Date: d}
	}
	return NewHolidaySet(hs...)
}

func (s HolidaySet) Contains(d Date) bool {
	_, ok := s.byDate[d]
	return ok
}

func (s HolidaySet) Len() int { return len(s.byDate) }

// List returns the holidays ordered by date.
func (s HolidaySet) List() []Holiday {
	out := make([]Holiday, 0, len(s.byDate))
	for _, h := range s.byDate {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// InPeriod returns the holidays falling inside p.
func (s HolidaySet) InPeriod(p Period) []Holiday {
	var out []Holiday
	for _, h := range s.List() {
		if p.Contains(h.Date) {
			out = append(out, h)
		}
	}
	return out
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }
func EndOfMonth(year int, month time.Month) Date   { return NewDate(year, month+1, 1).AddDays(-1) }

// Overlap returns the length of the intersection of [aStart, aEnd) and [bStart, bEnd).
func Overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

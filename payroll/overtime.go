/*
overtime.go - Overtime time-bucket calculation

PURPOSE:
  Turns a period's attendance into overtime pay. Each day is classified
  (normal, weekend, holiday), reduced to its assessable interval, and the
  assessable time is partitioned against that day type's rate buckets.

ASSESSABLE INTERVAL:
  The worked interval minus the standard shift of every Normal calendar
  day it touches. Weekend and holiday time is assessable in full.

  Example (shift 08:30-17:30, normal bucket 06:00-22:00 x1.5):
    worked 08:30-19:30 -> assessable 17:30-19:30 -> 2h x 1.5 x hourly rate

NIGHT WORK:
  A worked interval that runs past midnight is matched against the start
  day's buckets and the same buckets repeated on the next calendar day. The
  record's own date decides which buckets apply; each calendar day's own
  type decides whether its standard shift is removed first.

MALFORMED RECORDS:
  A record with a missing clock, or a clock-out not after its clock-in,
  contributes nothing. The date is listed in OvertimeResult.SkippedDays so a
  reporting layer can flag it; the calculation itself never fails.

ROUNDING:
  Line amounts stay unrounded. Only OvertimeResult.Pay is rounded, once, to
  the currency's smallest unit.

SEE ALSO:
  - rates.go: RateTable validation
  - daytype.go: Classify
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

var secondsPerHour = decimal.NewFromInt(3600)

// =============================================================================
// RESULT TYPES
// =============================================================================

// OvertimeLine is the time one day spent inside one rate bucket.
type OvertimeLine struct {
	Date    generic.Date
	DayType DayType
	Bucket  RateBucket
	Hours   decimal.Decimal
	Amount  decimal.Decimal // unrounded
}

// OvertimeResult is the overtime for a period with its audit breakdown.
type OvertimeResult struct {
	Pay         decimal.Decimal // rounded to the currency unit
	Hours       decimal.Decimal // assessable hours, paid or not
	Lines       []OvertimeLine
	SkippedDays []generic.Date
}

// PaidHours sums the hours that fell inside a bucket with a positive multiplier.
func (r OvertimeResult) PaidHours() decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Lines {
		if l.Bucket.Multiplier.IsPositive() {
			total = total.Add(l.Hours)
		}
	}
	return total
}

// =============================================================================
// OVERTIME CALCULATOR
// =============================================================================

// OvertimeCalculator holds the configuration overtime depends on.
type OvertimeCalculator struct {
	Shift    ShiftSchedule
	Rates    RateTable
	Holidays generic.HolidaySet
	Currency generic.Currency
}

type interval struct {
	start, end time.Time
}

// Compute returns overtime for employeeID over every day of period.
// Records belonging to another employee are ignored.
func (oc OvertimeCalculator) Compute(
	employeeID generic.EmployeeID,
	period generic.Period,
	hourlyRate decimal.Decimal,
	attendance AttendanceLog,
) OvertimeResult {
	result := OvertimeResult{Pay: decimal.Zero, Hours: decimal.Zero}
	total := decimal.Zero

	for _, day := range period.Days() {
		record, ok := attendance[day]
		if !ok || (record.EmployeeID != "" && record.EmployeeID != employeeID) {
			continue
		}
		in, out, ok := record.Worked()
		if !ok {
			result.SkippedDays = append(result.SkippedDays, day)
			continue
		}

		dayType := Classify(day, oc.Holidays)
		segments := oc.assessable(interval{start: in, end: out})
		for _, seg := range segments {
			result.Hours = result.Hours.Add(hours(seg.end.Sub(seg.start)))
		}

		for _, line := range oc.partition(day, dayType, segments, hourlyRate, in.Location()) {
			total = total.Add(line.Amount)
			result.Lines = append(result.Lines, line)
		}
	}

	result.Pay = generic.RoundTo(total, oc.Currency)
	return result
}

// assessable returns the parts of worked that count toward overtime: the
// worked interval minus the standard shift of every Normal calendar day it
// touches.
func (oc OvertimeCalculator) assessable(worked interval) []interval {
	loc := worked.start.Location()
	out := []interval{worked}
	for day := generic.DateOf(worked.start); day.At(generic.Midnight, loc).Before(worked.end); day = day.AddDays(1) {
		if Classify(day, oc.Holidays) != DayNormal {
			continue
		}
		out = cut(out, day.At(oc.Shift.Start, loc), day.At(oc.Shift.End, loc))
	}
	return out
}

// cut removes [from, to) from each segment.
func cut(segments []interval, from, to time.Time) []interval {
	var out []interval
	for _, seg := range segments {
		if !seg.start.Before(to) || !seg.end.After(from) {
			out = append(out, seg)
			continue
		}
		if seg.start.Before(from) {
			out = append(out, interval{start: seg.start, end: from})
		}
		if seg.end.After(to) {
			out = append(out, interval{start: to, end: seg.end})
		}
	}
	return out
}

// partition intersects segments with the day type's buckets on day and day+1.
func (oc OvertimeCalculator) partition(
	day generic.Date,
	dayType DayType,
	segments []interval,
	hourlyRate decimal.Decimal,
	loc *time.Location,
) []OvertimeLine {
	var lines []OvertimeLine
	for offset := 0; offset <= 1; offset++ {
		base := day.AddDays(offset)
		for _, bucket := range oc.Rates.For(dayType) {
			bStart := base.At(bucket.Start, loc)
			bEnd := base.At(bucket.End, loc)

			var covered time.Duration
			for _, seg := range segments {
				covered += generic.Overlap(seg.start, seg.end, bStart, bEnd)
			}
			if covered <= 0 {
				continue
			}

			seconds := decimal.NewFromInt(int64(covered / time.Second))
			lines = append(lines, OvertimeLine{
				Date:    day,
				DayType: dayType,
				Bucket:  bucket,
				Hours:   seconds.Div(secondsPerHour),
				Amount:  seconds.Mul(hourlyRate).Mul(bucket.Multiplier).Div(secondsPerHour),
			})
		}
	}
	return lines
}

func hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Second)).Div(secondsPerHour)
}

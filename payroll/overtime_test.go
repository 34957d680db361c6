package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func khr(v int64) generic.Money {
	return generic.NewMoneyFromInt(v, generic.KHR)
}

func jan(day int) generic.Date {
	return generic.NewDate(2025, time.January, day)
}

func clockAt(day, hour, minute int) *time.Time {
	t := time.Date(2025, time.January, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func worked(emp generic.EmployeeID, day, inH, inM, outH, outM int) payroll.AttendanceDay {
	return payroll.AttendanceDay{
		EmployeeID: emp,
		Date:       jan(day),
		ClockIn:    clockAt(day, inH, inM),
		ClockOut:   clockAt(day, outH, outM),
	}
}

func january() generic.Period {
	return generic.MonthPeriod(2025, time.January)
}

// referenceHolidays marks Monday 2025-01-06 as a holiday.
func referenceHolidays() generic.HolidaySet {
	return generic.NewHolidaySet(generic.Holiday{Date: jan(6), Name: "Victory over Genocide Day"})
}

func defaultCalculator(t *testing.T) payroll.OvertimeCalculator {
	t.Helper()
	shift, err := payroll.NewShiftSchedule(generic.NewTimeOfDay(8, 30), generic.NewTimeOfDay(17, 30))
	require.NoError(t, err)
	return payroll.OvertimeCalculator{
		Shift:    shift,
		Rates:    payroll.MustRateTable(payroll.DefaultRateBuckets()),
		Holidays: referenceHolidays(),
		Currency: generic.KHR,
	}
}

// hourly is 20,800,000 / 26 / 8.
var hourly = decimal.NewFromInt(100_000)

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// =============================================================================
// CLASSIFY
// =============================================================================

func TestClassify(t *testing.T) {
	holidays := generic.NewHolidaySet(
		generic.Holiday{Date: jan(6)},
		generic.Holiday{Date: jan(11)}, // Saturday
	)

	assert.Equal(t, payroll.DayNormal, payroll.Classify(jan(2), holidays))
	assert.Equal(t, payroll.DayWeekend, payroll.Classify(jan(5), holidays))
	assert.Equal(t, payroll.DayHoliday, payroll.Classify(jan(6), holidays))
	assert.Equal(t, payroll.DayHoliday, payroll.Classify(jan(11), holidays), "holiday wins over weekend")
}

// =============================================================================
// REFERENCE SCENARIOS
// =============================================================================

func TestOvertime_ReferenceScenarios(t *testing.T) {
	oc := defaultCalculator(t)

	cases := []struct {
		name   string
		record payroll.AttendanceDay
		pay    string
		hours  string
	}{
		{
			name:   "normal day inside the shift",
			record: worked("emp", 2, 8, 30, 17, 30),
			pay:    "0",
			hours:  "0",
		},
		{
			name:   "normal day evening",
			record: worked("emp", 2, 8, 30, 19, 30),
			pay:    "300000",
			hours:  "2",
		},
		{
			name:   "sunday morning",
			record: worked("emp", 5, 8, 0, 12, 0),
			pay:    "1000000",
			hours:  "4",
		},
		{
			name:   "monday holiday",
			record: worked("emp", 6, 8, 0, 10, 0),
			pay:    "500000",
			hours:  "2",
		},
		{
			name:   "normal day early start",
			record: worked("emp", 2, 6, 30, 17, 30),
			pay:    "300000",
			hours:  "2",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// WHEN: Computing overtime for the single record
			got := oc.Compute("emp", january(), hourly, payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{tc.record}))

			// THEN: Pay and assessable hours match
			assertDecimal(t, tc.pay, got.Pay)
			assertDecimal(t, tc.hours, got.Hours)
			assert.Empty(t, got.SkippedDays)
		})
	}
}

func TestOvertime_SumsAcrossDays(t *testing.T) {
	oc := defaultCalculator(t)
	log := payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{
		worked("emp", 2, 8, 30, 19, 30),
		worked("emp", 5, 8, 0, 12, 0),
		worked("emp", 6, 8, 0, 10, 0),
	})

	got := oc.Compute("emp", january(), hourly, log)

	assertDecimal(t, "1800000", got.Pay)
	assertDecimal(t, "8", got.Hours)
	assertDecimal(t, "8", got.PaidHours())
	assert.Len(t, got.Lines, 3)
}

// =============================================================================
// UNPAID AND MALFORMED RECORDS
// =============================================================================

func TestOvertime_HoursOutsideBucketsAreUnpaid(t *testing.T) {
	// GIVEN: Sunday work running past the weekend bucket's 16:00 end
	oc := defaultCalculator(t)
	log := payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{worked("emp", 5, 14, 0, 18, 0)})

	// WHEN: Computing overtime
	got := oc.Compute("emp", january(), hourly, log)

	// THEN: All four hours are assessable but only two are paid
	assertDecimal(t, "4", got.Hours)
	assertDecimal(t, "2", got.PaidHours())
	assertDecimal(t, "500000", got.Pay)
}

func TestOvertime_MalformedRecordsAreSkipped(t *testing.T) {
	// GIVEN: A missing clock-out and a clock-out before clock-in
	oc := defaultCalculator(t)
	missing := payroll.AttendanceDay{EmployeeID: "emp", Date: jan(7), ClockIn: clockAt(7, 9, 0)}
	inverted := payroll.AttendanceDay{EmployeeID: "emp", Date: jan(8), ClockIn: clockAt(8, 19, 0), ClockOut: clockAt(8, 18, 0)}
	log := payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{missing, inverted, worked("emp", 2, 8, 30, 19, 30)})

	// WHEN: Computing overtime
	got := oc.Compute("emp", january(), hourly, log)

	// THEN: Both days are reported and contribute nothing
	assert.Equal(t, []generic.Date{jan(7), jan(8)}, got.SkippedDays)
	assertDecimal(t, "300000", got.Pay)
}

func TestOvertime_IgnoresOtherEmployeesAndOutOfPeriodDays(t *testing.T) {
	oc := defaultCalculator(t)
	other := worked("someone-else", 5, 8, 0, 12, 0)
	february := payroll.AttendanceDay{
		EmployeeID: "emp",
		Date:       generic.NewDate(2025, time.February, 1),
		ClockIn:    clockAt(32, 8, 0), // normalizes to 2025-02-01
		ClockOut:   clockAt(32, 12, 0),
	}
	log := payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{other, february})

	got := oc.Compute("emp", january(), hourly, log)

	assert.True(t, got.Pay.IsZero())
	assert.Empty(t, got.Lines)
}

func TestOvertime_OtherEmployeeOnTheSameDateDoesNotReplaceOwnRecord(t *testing.T) {
	// GIVEN: Two employees clocked the same Sunday, the colleague listed last
	oc := defaultCalculator(t)
	log := payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{
		worked("emp", 5, 8, 0, 12, 0),
		worked("someone-else", 5, 8, 0, 12, 0),
	})

	// WHEN: Computing overtime for emp
	got := oc.Compute("emp", january(), hourly, log)

	// THEN: emp keeps its own four weekend hours
	assertDecimal(t, "1000000", got.Pay)
	assertDecimal(t, "4", got.Hours)
}

func TestOvertime_LastRecordForADateWins(t *testing.T) {
	oc := defaultCalculator(t)
	log := payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{
		worked("emp", 2, 8, 30, 21, 30),
		worked("emp", 2, 8, 30, 18, 30),
	})

	got := oc.Compute("emp", january(), hourly, log)

	assertDecimal(t, "150000", got.Pay)
}

func TestOvertime_EmptyPeriod(t *testing.T) {
	oc := defaultCalculator(t)
	period := generic.Period{Start: jan(31), End: jan(1)}
	log := payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{worked("emp", 5, 8, 0, 12, 0)})

	got := oc.Compute("emp", period, hourly, log)

	assert.True(t, got.Pay.IsZero())
	assert.True(t, got.Hours.IsZero())
}

// =============================================================================
// NIGHT SHIFTS
// =============================================================================

func nightShift() payroll.AttendanceDay {
	return payroll.AttendanceDay{
		EmployeeID: "emp",
		Date:       jan(9), // Thursday
		ClockIn:    clockAt(9, 20, 0),
		ClockOut:   clockAt(10, 2, 0),
	}
}

func TestOvertime_NightShiftWithDefaultBuckets(t *testing.T) {
	// GIVEN: 20:00 to 02:00 with only the 06:00-22:00 normal bucket
	oc := defaultCalculator(t)

	// WHEN: Computing overtime
	got := oc.Compute("emp", january(), hourly, payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{nightShift()}))

	// THEN: Six hours assessable, the two before 22:00 paid at x1.5
	assertDecimal(t, "6", got.Hours)
	assertDecimal(t, "2", got.PaidHours())
	assertDecimal(t, "300000", got.Pay)
}

func TestOvertime_NightShiftUsesNextDayBuckets(t *testing.T) {
	// GIVEN: Normal-day buckets covering the whole night at x2
	oc := defaultCalculator(t)
	oc.Rates = payroll.MustRateTable([]payroll.RateBucket{
		{DayType: payroll.DayNormal, Start: generic.NewTimeOfDay(0, 0), End: generic.NewTimeOfDay(6, 0), Multiplier: dec("2")},
		{DayType: payroll.DayNormal, Start: generic.NewTimeOfDay(6, 0), End: generic.NewTimeOfDay(22, 0), Multiplier: dec("1.5")},
		{DayType: payroll.DayNormal, Start: generic.NewTimeOfDay(22, 0), End: generic.EndOfDay, Multiplier: dec("2")},
	})

	// WHEN: Computing overtime
	got := oc.Compute("emp", january(), hourly, payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{nightShift()}))

	// THEN: 2h x1.5 + 2h x2 before midnight + 2h x2 after midnight
	assertDecimal(t, "6", got.PaidHours())
	assertDecimal(t, "1100000", got.Pay)
	for _, l := range got.Lines {
		assert.Equal(t, jan(9), l.Date, "lines are attributed to the clock-in day")
	}
}

// =============================================================================
// ROUNDING
// =============================================================================

func TestOvertime_RoundsOnlyTheTotal(t *testing.T) {
	// GIVEN: An hourly rate that produces fractional amounts per line
	oc := defaultCalculator(t)
	rate := dec("10000.3")
	log := payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{
		worked("emp", 2, 17, 30, 18, 30), // 1h x1.5 = 15000.45
		worked("emp", 3, 17, 30, 18, 30), // 1h x1.5 = 15000.45
	})

	// WHEN: Computing overtime
	got := oc.Compute("emp", january(), rate, log)

	// THEN: 30000.9 rounds to 30001; rounding each line would give 30000
	assertDecimal(t, "30001", got.Pay)
	for _, l := range got.Lines {
		assertDecimal(t, "15000.45", l.Amount)
	}
}

func TestOvertime_ShiftIntoNextWorkdayExcludesItsStandardShift(t *testing.T) {
	// GIVEN: Thursday 17:30 to Friday 17:30, both normal workdays
	oc := defaultCalculator(t)
	record := payroll.AttendanceDay{
		EmployeeID: "emp",
		Date:       jan(9),
		ClockIn:    clockAt(9, 17, 30),
		ClockOut:   clockAt(10, 17, 30),
	}

	// WHEN: Computing overtime
	got := oc.Compute("emp", january(), hourly, payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{record}))

	// THEN: Friday's 08:30-17:30 is regular time
	// Thursday 17:30-24:00 (4.5h paid) and Friday 00:00-08:30 (2.5h paid)
	assertDecimal(t, "15", got.Hours)
	assertDecimal(t, "7", got.PaidHours())
	assertDecimal(t, "1050000", got.Pay)
}

func TestOvertime_ShiftIntoNextDayHolidayIsAssessableInFull(t *testing.T) {
	// GIVEN: Sunday 20:00 into the Monday holiday until 10:00
	oc := defaultCalculator(t)
	record := payroll.AttendanceDay{
		EmployeeID: "emp",
		Date:       jan(5),
		ClockIn:    clockAt(5, 20, 0),
		ClockOut:   clockAt(6, 10, 0),
	}

	// WHEN: Computing overtime
	got := oc.Compute("emp", january(), hourly, payroll.NewAttendanceLog("emp", []payroll.AttendanceDay{record}))

	// THEN: No standard shift is removed; Monday 06:00-10:00 is paid at the weekend rate
	assertDecimal(t, "14", got.Hours)
	assertDecimal(t, "4", got.PaidHours())
	assertDecimal(t, "1000000", got.Pay)
}

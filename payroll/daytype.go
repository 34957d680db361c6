package payroll

import "github.com/warp/payroll-engine/generic"

// Classify returns the DayType of date. Holiday membership wins over the
// weekend check, so a Saturday holiday is a Holiday.
func Classify(date generic.Date, holidays generic.HolidaySet) DayType {
	switch {
	case holidays.Contains(date):
		return DayHoliday
	case date.IsWeekend():
		return DayWeekend
	default:
		return DayNormal
	}
}

/*
presets.go - Seeded payroll configuration

PURPOSE:
  Ready-to-use configuration matching the seeded installation: a KHR payroll
  with a 08:30-17:30 shift, 26 working days of 8 hours, NSSF at 2% / 2% under
  a 1,200,000 ceiling, and a six-band progressive tax table.

RATE BUCKETS:
  Only three rates are confirmed by observed payroll behavior:
    normal evening  x1.5
    weekend daytime x2.5
    holiday         x2.5
  Normal-day night hours (22:00-06:00), weekend hours outside 06:00-16:00 and
  any holiday structure beyond a flat daytime rate have no confirmed rate and
  are deliberately left unpaid here until product signs them off. Installations
  that know their rates supply their own buckets through the factory.

CUSTOMIZATION:
  cfg := payroll.DefaultConfig()
  cfg.Settings = cfg.Settings.With(payroll.KeyShiftStart, "08:00")

SEE ALSO:
  - factory/config.go: JSON/YAML configuration documents
*/
package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// DefaultSettings returns the seeded settings keys.
func DefaultSettings() SettingsSnapshot {
	values := map[string]string{
		KeyBaseCurrency:        string(generic.KHR),
		KeyShiftStart:          "08:30",
		KeyShiftEnd:            "17:30",
		KeyWorkingDaysPerMonth: "26",
		KeyWorkingHoursPerDay:  "8",
		KeyNssfCeiling:         "1200000",
		KeyNssfEmployeeRate:    "0.02",
		KeyNssfEmployerRate:    "0.02",
	}
	values[KeyExchangeRatePrefix+"USD"] = "4100"
	return NewSettingsSnapshot(values)
}

// DefaultRateBuckets returns the confirmed overtime buckets.
func DefaultRateBuckets() []RateBucket {
	oneAndHalf := decimal.RequireFromString("1.5")
	twoAndHalf := decimal.RequireFromString("2.5")
	return []RateBucket{
		{DayType: DayNormal, Start: generic.NewTimeOfDay(6, 0), End: generic.NewTimeOfDay(22, 0), Multiplier: oneAndHalf},
		{DayType: DayWeekend, Start: generic.NewTimeOfDay(6, 0), End: generic.NewTimeOfDay(16, 0), Multiplier: twoAndHalf},
		{DayType: DayHoliday, Start: generic.NewTimeOfDay(6, 0), End: generic.NewTimeOfDay(16, 0), Multiplier: twoAndHalf},
	}
}

// DefaultTaxBrackets returns the seeded progressive table.
func DefaultTaxBrackets() []TaxBracket {
	bound := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	pct := func(p int64) decimal.Decimal { return decimal.NewFromInt(p).Div(decimal.NewFromInt(100)) }
	return []TaxBracket{
		{SortOrder: 1, Min: decimal.Zero, Max: bound(1_300_000), Rate: pct(0)},
		{SortOrder: 2, Min: decimal.NewFromInt(1_300_001), Max: bound(5_000_000), Rate: pct(5)},
		{SortOrder: 3, Min: decimal.NewFromInt(5_000_001), Max: bound(15_000_000), Rate: pct(10)},
		{SortOrder: 4, Min: decimal.NewFromInt(15_000_001), Max: bound(35_000_000), Rate: pct(15)},
		{SortOrder: 5, Min: decimal.NewFromInt(35_000_001), Max: bound(65_000_000), Rate: pct(20)},
		{SortOrder: 6, Min: decimal.NewFromInt(65_000_001), Max: nil, Rate: pct(25)},
	}
}

// DefaultConfig bundles the presets with an empty holiday set.
func DefaultConfig() Config {
	return Config{
		Settings: DefaultSettings(),
		Taxes:    MustTaxTable(DefaultTaxBrackets()),
		Rates:    MustRateTable(DefaultRateBuckets()),
		Holidays: generic.NewHolidaySet(),
	}
}

/*
settings.go - Settings snapshot and its typed view

PURPOSE:
  Payroll configuration arrives as flat key/value pairs (as stored by the
  settings table or a configuration file). SettingsSnapshot freezes a copy of
  those pairs for the duration of a calculation; Resolve parses and validates
  them once into Settings, which every calculator receives explicitly.

KEYS:
  base_currency            Currency results are expressed in (default KHR)
  standard_shift_start     "HH:MM", required
  standard_shift_end       "HH:MM", required, after start
  working_days_per_month   default 26
  working_hours_per_day    default 8
  nssf_ceiling             required, >= 0
  nssf_employee_rate       required, in [0, 1]
  nssf_employer_rate       required, in [0, 1]
  exchange_rate.<CODE>     base-currency units per 1 <CODE>, > 0

SEE ALSO:
  - presets.go: DefaultSettings
  - engine.go: resolves settings once in NewEngine
*/
package payroll

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

const (
	KeyBaseCurrency        = "base_currency"
	KeyShiftStart          = "standard_shift_start"
	KeyShiftEnd            = "standard_shift_end"
	KeyWorkingDaysPerMonth = "working_days_per_month"
	KeyWorkingHoursPerDay  = "working_hours_per_day"
	KeyNssfCeiling         = "nssf_ceiling"
	KeyNssfEmployeeRate    = "nssf_employee_rate"
	KeyNssfEmployerRate    = "nssf_employer_rate"
	KeyExchangeRatePrefix  = "exchange_rate."
)

const (
	defaultWorkingDaysPerMonth = 26
	defaultWorkingHoursPerDay  = 8
)

// =============================================================================
// SETTINGS SNAPSHOT
// =============================================================================

// SettingsSnapshot is an immutable copy of the raw configuration keys.
type SettingsSnapshot struct {
	values map[string]string
}

func NewSettingsSnapshot(values map[string]string) SettingsSnapshot {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return SettingsSnapshot{values: cp}
}

// Get returns the raw value for key.
func (s SettingsSnapshot) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok && v != ""
}

// Map returns a copy of the raw values.
func (s SettingsSnapshot) Map() map[string]string {
	cp := make(map[string]string, len(s.values))
	for k, v := range s.values {
		cp[k] = v
	}
	return cp
}

// Keys returns the keys in sorted order.
func (s SettingsSnapshot) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a new snapshot with key set to value.
func (s SettingsSnapshot) With(key, value string) SettingsSnapshot {
	m := s.Map()
	m[key] = value
	return NewSettingsSnapshot(m)
}

func (s SettingsSnapshot) decimal(key string, required bool, fallback int64) (decimal.Decimal, error) {
	raw, ok := s.Get(key)
	if !ok {
		if required {
			return decimal.Zero, generic.NewConfigurationError("settings."+key, "missing")
		}
		return decimal.NewFromInt(fallback), nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, generic.NewConfigurationError("settings."+key, "not a number: %q", raw)
	}
	return d, nil
}

func (s SettingsSnapshot) timeOfDay(key string) (generic.TimeOfDay, error) {
	raw, ok := s.Get(key)
	if !ok {
		return 0, generic.NewConfigurationError("settings."+key, "missing")
	}
	t, err := generic.ParseTimeOfDay(raw)
	if err != nil {
		return 0, generic.NewConfigurationError("settings."+key, "%v", err)
	}
	return t, nil
}

// =============================================================================
// RESOLVED SETTINGS
// =============================================================================

// ShiftSchedule is the standard working shift. Start is strictly before End.
type ShiftSchedule struct {
	Start generic.TimeOfDay
	End   generic.TimeOfDay
}

func NewShiftSchedule(start, end generic.TimeOfDay) (ShiftSchedule, error) {
	if !start.Valid() || !end.Valid() {
		return ShiftSchedule{}, generic.NewConfigurationError("shift", "times must be within the day")
	}
	if start >= end {
		return ShiftSchedule{}, generic.NewConfigurationError("shift", "start %s must be before end %s", start, end)
	}
	return ShiftSchedule{Start: start, End: end}, nil
}

// Hours returns the shift length in hours.
func (s ShiftSchedule) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(s.End - s.Start)).Div(decimal.NewFromInt(60))
}

// NssfSettings holds the statutory contribution parameters.
type NssfSettings struct {
	Ceiling      decimal.Decimal
	EmployeeRate decimal.Decimal
	EmployerRate decimal.Decimal
}

// Settings is the validated, typed view of a SettingsSnapshot.
type Settings struct {
	BaseCurrency        generic.Currency
	Shift               ShiftSchedule
	WorkingDaysPerMonth decimal.Decimal
	WorkingHoursPerDay  decimal.Decimal
	Nssf                NssfSettings
	ExchangeRates       map[generic.Currency]decimal.Decimal
}

// Resolve parses and validates every key the engine needs.
func (s SettingsSnapshot) Resolve() (Settings, error) {
	var out Settings

	out.BaseCurrency = generic.KHR
	if raw, ok := s.Get(KeyBaseCurrency); ok {
		out.BaseCurrency = generic.Currency(strings.ToUpper(raw))
	}

	start, err := s.timeOfDay(KeyShiftStart)
	if err != nil {
		return Settings{}, err
	}
	end, err := s.timeOfDay(KeyShiftEnd)
	if err != nil {
		return Settings{}, err
	}
	if out.Shift, err = NewShiftSchedule(start, end); err != nil {
		return Settings{}, err
	}

	if out.WorkingDaysPerMonth, err = s.decimal(KeyWorkingDaysPerMonth, false, defaultWorkingDaysPerMonth); err != nil {
		return Settings{}, err
	}
	if !out.WorkingDaysPerMonth.IsPositive() {
		return Settings{}, generic.NewConfigurationError("settings."+KeyWorkingDaysPerMonth, "must be positive")
	}
	if out.WorkingHoursPerDay, err = s.decimal(KeyWorkingHoursPerDay, false, defaultWorkingHoursPerDay); err != nil {
		return Settings{}, err
	}
	if !out.WorkingHoursPerDay.IsPositive() {
		return Settings{}, generic.NewConfigurationError("settings."+KeyWorkingHoursPerDay, "must be positive")
	}

	if out.Nssf, err = s.resolveNssf(); err != nil {
		return Settings{}, err
	}

	out.ExchangeRates = make(map[generic.Currency]decimal.Decimal)
	for k, raw := range s.values {
		if !strings.HasPrefix(k, KeyExchangeRatePrefix) {
			continue
		}
		code := generic.Currency(strings.ToUpper(strings.TrimPrefix(k, KeyExchangeRatePrefix)))
		rate, err := decimal.NewFromString(raw)
		if err != nil || !rate.IsPositive() {
			return Settings{}, generic.NewConfigurationError("settings."+k, "exchange rate must be a positive number, got %q", raw)
		}
		out.ExchangeRates[code] = rate
	}

	return out, nil
}

func (s SettingsSnapshot) resolveNssf() (NssfSettings, error) {
	var n NssfSettings
	var err error
	if n.Ceiling, err = s.decimal(KeyNssfCeiling, true, 0); err != nil {
		return n, err
	}
	if n.Ceiling.IsNegative() {
		return n, generic.NewConfigurationError("settings."+KeyNssfCeiling, "must not be negative")
	}
	if n.EmployeeRate, err = s.decimal(KeyNssfEmployeeRate, true, 0); err != nil {
		return n, err
	}
	if n.EmployerRate, err = s.decimal(KeyNssfEmployerRate, true, 0); err != nil {
		return n, err
	}
	if err := checkRate("settings."+KeyNssfEmployeeRate, n.EmployeeRate); err != nil {
		return n, err
	}
	if err := checkRate("settings."+KeyNssfEmployerRate, n.EmployerRate); err != nil {
		return n, err
	}
	return n, nil
}

// checkRate rejects rates outside [0, 1].
func checkRate(component string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return generic.NewConfigurationError(component, "rate %s must be within [0, 1]", rate)
	}
	return nil
}

// ExchangeRate returns the rate converting one unit of from into the base
// currency. Identity for the base currency itself.
func (s Settings) ExchangeRate(from generic.Currency) (decimal.Decimal, error) {
	if from == s.BaseCurrency || from == "" {
		return decimal.NewFromInt(1), nil
	}
	rate, ok := s.ExchangeRates[from]
	if !ok {
		return decimal.Zero, generic.NewConfigurationError("settings."+KeyExchangeRatePrefix+string(from), "no exchange rate to %s", s.BaseCurrency)
	}
	return rate, nil
}

// HourlyRate derives the overtime hourly rate from a monthly base salary.
func (s Settings) HourlyRate(monthlyBase decimal.Decimal) decimal.Decimal {
	return monthlyBase.Div(s.WorkingDaysPerMonth).Div(s.WorkingHoursPerDay)
}

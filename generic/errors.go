/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify failures with errors.Is / errors.As, never by message.

ERROR CATEGORIES:
  1. Configuration errors - Tax brackets, rate buckets, shift or settings that
     cannot produce a trustworthy payroll. Fatal for the whole run.
  2. Input errors - A single employee's inputs are unusable (bad adjustment,
     period without bounds). Fatal for that employee only.
  3. Store errors - Missing or duplicate records in persistence adapters.

  Malformed attendance is NOT an error: the overtime calculator absorbs it
  and reports the skipped day in its breakdown.

USAGE:
    if generic.IsConfigurationError(err) {
        // stop the run, surface to the operator
    }

SEE ALSO:
  - payroll/tax.go, payroll/overtime.go: raise ConfigurationError at load
  - payroll/runner.go: decides abort vs. continue from these helpers
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfiguration is the root of every configuration failure. A payroll
	// run must not proceed until it is fixed.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidPeriod is returned when a period has a missing bound or is too long.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidAdjustment is returned for adjustments that cannot be aggregated.
	ErrInvalidAdjustment = errors.New("invalid adjustment")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateCalculation is returned when a calculation already exists
	// for the employee and period.
	ErrDuplicateCalculation = errors.New("calculation already exists for employee and period")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigurationError names the piece of configuration that is wrong.
type ConfigurationError struct {
	Component string // e.g. "tax_brackets", "rate_buckets.weekend", "settings.nssf_ceiling"
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError formats the reason.
func NewConfigurationError(component, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Component: component, Reason: fmt.Sprintf(format, args...)}
}

// AdjustmentError identifies the adjustment that was rejected.
type AdjustmentError struct {
	ID     AdjustmentID
	Reason string
}

func (e *AdjustmentError) Error() string {
	return fmt.Sprintf("invalid adjustment %s: %s", e.ID, e.Reason)
}

func (e *AdjustmentError) Unwrap() error {
	return ErrInvalidAdjustment
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigurationError returns true if the error must stop a payroll run.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidAdjustment) ||
		errors.Is(err, ErrDuplicateCalculation)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

package generic_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
)

func TestMonthPeriod(t *testing.T) {
	p := generic.MonthPeriod(2024, time.February)

	assert.Equal(t, "2024-02-01", p.Start.String())
	assert.Equal(t, "2024-02-29", p.End.String())
	assert.Equal(t, 29, p.Len())
	assert.Len(t, p.Days(), 29)
	assert.True(t, p.Contains(generic.MustParseDate("2024-02-29")))
	assert.False(t, p.Contains(generic.MustParseDate("2024-03-01")))
}

func TestPeriod_EndBeforeStartIsEmpty(t *testing.T) {
	// GIVEN: A period whose end precedes its start
	p := generic.Period{Start: generic.MustParseDate("2025-01-31"), End: generic.MustParseDate("2025-01-01")}

	// THEN: It is valid but contains no days
	assert.NoError(t, p.Validate())
	assert.True(t, p.IsEmpty())
	assert.Empty(t, p.Days())
	assert.Equal(t, 0, p.Len())
}

func TestPeriod_MissingBoundIsInvalid(t *testing.T) {
	p := generic.Period{Start: generic.MustParseDate("2025-01-01")}

	err := p.Validate()
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
	assert.True(t, generic.IsClientError(err))
}

func TestPeriod_LongerThanMaxIsInvalid(t *testing.T) {
	// GIVEN: A leap year (366 days) and a period one day longer
	leap := generic.Period{Start: generic.MustParseDate("2024-01-01"), End: generic.MustParseDate("2024-12-31")}
	tooLong := generic.Period{Start: generic.MustParseDate("2024-01-01"), End: generic.MustParseDate("2025-01-01")}
	huge := generic.Period{Start: generic.MustParseDate("0002-01-01"), End: generic.MustParseDate("9999-12-31")}

	// THEN: Only the leap year is accepted
	assert.NoError(t, leap.Validate())
	assert.ErrorIs(t, tooLong.Validate(), generic.ErrInvalidPeriod)
	assert.ErrorIs(t, huge.Validate(), generic.ErrInvalidPeriod)
}

// =============================================================================
// MONEY
// =============================================================================

func TestCurrency_Places(t *testing.T) {
	assert.Equal(t, int32(0), generic.KHR.Places())
	assert.Equal(t, int32(0), generic.VND.Places())
	assert.Equal(t, int32(2), generic.USD.Places())
	assert.Equal(t, int32(2), generic.THB.Places())
}

func TestMoney_RoundHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   string
		cur  generic.Currency
		want string
	}{
		{in: "1000.5", cur: generic.KHR, want: "1001"},
		{in: "1000.49", cur: generic.KHR, want: "1000"},
		{in: "-2.5", cur: generic.KHR, want: "-3"},
		{in: "10.005", cur: generic.USD, want: "10.01"},
		{in: "10.004", cur: generic.USD, want: "10"},
	}
	for _, tc := range cases {
		t.Run(tc.in+string(tc.cur), func(t *testing.T) {
			got := generic.MustParseMoney(tc.in, tc.cur).Round()
			assert.True(t, got.Value.Equal(decimal.RequireFromString(tc.want)), "got %s", got.Value)
			assert.Equal(t, tc.cur, got.Currency)
		})
	}
}

func TestMoney_Convert(t *testing.T) {
	usd := generic.MustParseMoney("1500", generic.USD)

	khr := usd.Convert(decimal.NewFromInt(4100), generic.KHR)
	assert.Equal(t, generic.KHR, khr.Currency)
	assert.True(t, khr.Value.Equal(decimal.NewFromInt(6_150_000)))
	assert.Equal(t, "6150000 KHR", khr.String())

	// Same currency is the identity regardless of rate
	same := usd.Convert(decimal.NewFromInt(4100), generic.USD)
	assert.True(t, same.Equal(usd))
}

func TestParseMoney_Invalid(t *testing.T) {
	_, err := generic.ParseMoney("12,5", generic.USD)
	assert.Error(t, err)
}

// =============================================================================
// ERRORS
// =============================================================================

func TestErrorClassification(t *testing.T) {
	cfgErr := generic.NewConfigurationError("tax_brackets", "gap after %d", 3)
	assert.True(t, generic.IsConfigurationError(cfgErr))
	assert.Equal(t, "configuration error in tax_brackets: gap after 3", cfgErr.Error())

	wrapped := errors.Join(errors.New("context"), cfgErr)
	assert.True(t, generic.IsConfigurationError(wrapped))

	var adjErr error = &generic.AdjustmentError{ID: "adj-1", Reason: "bad kind"}
	assert.ErrorIs(t, adjErr, generic.ErrInvalidAdjustment)
	assert.True(t, generic.IsClientError(adjErr))
	assert.False(t, generic.IsConfigurationError(adjErr))

	assert.True(t, generic.IsClientError(generic.ErrDuplicateCalculation))
	assert.True(t, generic.IsNotFound(generic.ErrNotFound))

	var target *generic.ConfigurationError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "tax_brackets", target.Component)
}

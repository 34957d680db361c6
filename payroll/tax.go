/*
tax.go - Progressive income tax

PURPOSE:
  Computes tax as the integral of the marginal rate from 0 to the taxable
  income. Brackets are configuration: they are validated once by NewTaxTable
  and never hardcoded in the calculation.

BRACKETS:
  Brackets are whole-unit ranges [Min, Max], contiguous (Max + 1 == next Min),
  starting at 0, with only the last one unbounded (Max == nil). A bracket's
  taxed slice starts at the previous bracket's Max:

    {0-1,300,000: 0%, 1,300,001-5,000,000: 5%, ...}
    income 5,000,000 -> 0% x 1,300,000 + 5% x 3,700,000 = 185,000

  At an income equal to a bracket's Max the next bracket contributes nothing,
  so tax has no cliff at a boundary.

SEE ALSO:
  - presets.go: DefaultTaxBrackets
  - engine.go: Taxes income after the employee NSSF deduction
*/
package payroll

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// TaxBracket is one marginal-rate band. Max nil means unbounded.
type TaxBracket struct {
	Min       decimal.Decimal
	Max       *decimal.Decimal
	Rate      decimal.Decimal
	SortOrder int
}

// lowerEdge is where the bracket's taxed slice starts.
func (b TaxBracket) lowerEdge() decimal.Decimal {
	if b.Min.IsZero() {
		return decimal.Zero
	}
	return b.Min.Sub(decimal.NewFromInt(1))
}

// TaxTable is a validated, ordered list of brackets.
type TaxTable struct {
	brackets []TaxBracket
}

// NewTaxTable sorts brackets by SortOrder and checks they tile [0, +inf).
func NewTaxTable(brackets []TaxBracket) (TaxTable, error) {
	if len(brackets) == 0 {
		return TaxTable{}, generic.NewConfigurationError("tax_brackets", "at least one bracket is required")
	}

	sorted := make([]TaxBracket, len(brackets))
	copy(sorted, brackets)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })

	one := decimal.NewFromInt(1)
	if !sorted[0].Min.IsZero() {
		return TaxTable{}, generic.NewConfigurationError("tax_brackets", "first bracket must start at 0, starts at %s", sorted[0].Min)
	}
	for i, b := range sorted {
		if i > 0 && b.SortOrder == sorted[i-1].SortOrder {
			return TaxTable{}, generic.NewConfigurationError("tax_brackets", "duplicate sort order %d", b.SortOrder)
		}
		if err := checkRate("tax_brackets", b.Rate); err != nil {
			return TaxTable{}, err
		}
		last := i == len(sorted)-1
		if b.Max == nil {
			if !last {
				return TaxTable{}, generic.NewConfigurationError("tax_brackets", "only the last bracket may be unbounded (sort order %d)", b.SortOrder)
			}
			continue
		}
		if last {
			return TaxTable{}, generic.NewConfigurationError("tax_brackets", "last bracket must be unbounded, ends at %s", *b.Max)
		}
		if b.Max.LessThan(b.Min) {
			return TaxTable{}, generic.NewConfigurationError("tax_brackets", "bracket %d ends (%s) before it starts (%s)", b.SortOrder, *b.Max, b.Min)
		}
		next := sorted[i+1]
		if !b.Max.Add(one).Equal(next.Min) {
			return TaxTable{}, generic.NewConfigurationError("tax_brackets",
				"bracket %d ends at %s but bracket %d starts at %s", b.SortOrder, *b.Max, next.SortOrder, next.Min)
		}
	}
	return TaxTable{brackets: sorted}, nil
}

// MustTaxTable panics on invalid brackets. For presets and tests.
func MustTaxTable(brackets []TaxBracket) TaxTable {
	t, err := NewTaxTable(brackets)
	if err != nil {
		panic(err)
	}
	return t
}

// Brackets returns a copy of the ordered brackets.
func (t TaxTable) Brackets() []TaxBracket {
	out := make([]TaxBracket, len(t.brackets))
	copy(out, t.brackets)
	return out
}

// =============================================================================
// TAX CALCULATION
// =============================================================================

// TaxSlice is the portion of income taxed within one bracket.
type TaxSlice struct {
	Bracket TaxBracket
	Taxed   decimal.Decimal
	Tax     decimal.Decimal
}

// TaxResult is the tax owed with its per-bracket breakdown.
type TaxResult struct {
	Income decimal.Decimal
	Tax    decimal.Decimal // unrounded
	Slices []TaxSlice
}

// Compute walks the brackets in order until income is exhausted.
// Zero or negative income owes nothing.
func (t TaxTable) Compute(income decimal.Decimal) TaxResult {
	result := TaxResult{Income: income, Tax: decimal.Zero}
	if !income.IsPositive() {
		return result
	}

	for _, b := range t.brackets {
		edge := b.lowerEdge()
		if !income.GreaterThan(edge) {
			break
		}
		top := income
		if b.Max != nil && b.Max.LessThan(income) {
			top = *b.Max
		}
		taxed := top.Sub(edge)
		tax := taxed.Mul(b.Rate)
		result.Slices = append(result.Slices, TaxSlice{Bracket: b, Taxed: taxed, Tax: tax})
		result.Tax = result.Tax.Add(tax)

		if b.Max == nil || !income.GreaterThan(*b.Max) {
			break
		}
	}
	return result
}

// ComputeTax returns the tax owed on income.
func ComputeTax(income decimal.Decimal, table TaxTable) decimal.Decimal {
	return table.Compute(income).Tax
}

/*
rates.go - Overtime rate buckets per day type

PURPOSE:
  A RateBucket pays hours falling inside [Start, End) at Multiplier times the
  hourly rate. Each DayType has its own ordered list of buckets. Hours not
  covered by any bucket are unpaid overtime (multiplier 0).

VALIDATION (once, in NewRateTable):
  - Start < End, both within [00:00, 24:00]
  - Multiplier >= 0
  - Buckets of the same DayType do not overlap (touching is fine)
  - DayType is one of normal, weekend, holiday

  A RateTable can only be obtained through NewRateTable, so the overtime
  calculator never re-checks for double counting.

SEE ALSO:
  - overtime.go: Partitions worked time against a RateTable
  - presets.go: DefaultRateBuckets
*/
package payroll

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// RateBucket is a time-of-day window with an overtime multiplier.
type RateBucket struct {
	DayType    DayType
	Start      generic.TimeOfDay
	End        generic.TimeOfDay
	Multiplier decimal.Decimal
}

func (b RateBucket) String() string {
	return fmt.Sprintf("%s %s-%s x%s", b.DayType, b.Start, b.End, b.Multiplier)
}

// RateTable is a validated set of buckets grouped by DayType.
type RateTable struct {
	byDay map[DayType][]RateBucket
}

// NewRateTable validates buckets and orders them by start time.
func NewRateTable(buckets []RateBucket) (RateTable, error) {
	byDay := make(map[DayType][]RateBucket)
	for _, b := range buckets {
		component := "rate_buckets." + string(b.DayType)
		if !b.DayType.Valid() {
			return RateTable{}, generic.NewConfigurationError("rate_buckets", "unknown day type %q", b.DayType)
		}
		if !b.Start.Valid() || !b.End.Valid() {
			return RateTable{}, generic.NewConfigurationError(component, "bucket %s is outside the day", b)
		}
		if b.Start >= b.End {
			return RateTable{}, generic.NewConfigurationError(component, "bucket %s must start before it ends", b)
		}
		if b.Multiplier.IsNegative() {
			return RateTable{}, generic.NewConfigurationError(component, "bucket %s has a negative multiplier", b)
		}
		byDay[b.DayType] = append(byDay[b.DayType], b)
	}

	for dt, list := range byDay {
		sort.Slice(list, func(i, j int) bool { return list[i].Start < list[j].Start })
		for i := 1; i < len(list); i++ {
			if list[i].Start < list[i-1].End {
				return RateTable{}, generic.NewConfigurationError("rate_buckets."+string(dt),
					"bucket %s overlaps %s", list[i], list[i-1])
			}
		}
		byDay[dt] = list
	}
	return RateTable{byDay: byDay}, nil
}

// MustRateTable panics on invalid buckets. For presets and tests.
func MustRateTable(buckets []RateBucket) RateTable {
	t, err := NewRateTable(buckets)
	if err != nil {
		panic(err)
	}
	return t
}

// For returns the ordered buckets of a DayType.
func (t RateTable) For(dt DayType) []RateBucket {
	return t.byDay[dt]
}

// Buckets returns every bucket, grouped by DayType in precedence order.
func (t RateTable) Buckets() []RateBucket {
	var out []RateBucket
	for _, dt := range DayTypes {
		out = append(out, t.byDay[dt]...)
	}
	return out
}

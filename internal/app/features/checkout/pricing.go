// internal/app/features/checkout/pricing.go
package checkout

import (
	"github.com/ourthirdplace/thirdplace/internal/app/system/normalize"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
)

// All amounts are cents.
const (
	monthlyBase     = 1500
	annualBase      = 14400
	monthlyPerExtra = 500
	annualPerExtra  = 5000
)

// Discount kinds.
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// Discount is one entry in the discount table.
type Discount struct {
	Code string `json:"code"`
	Kind string `json:"kind"`
	// Value is a percentage for percent discounts and cents for fixed ones.
	Value int64 `json:"value"`
}

// discounts is the authoritative table. Codes are stored uppercase; lookups
// go through normalize.DiscountCode.
var discounts = map[string]Discount{
	"SAVE20":    {Code: "SAVE20", Kind: DiscountFixed, Value: 2000},
	"EARLYBIRD": {Code: "EARLYBIRD", Kind: DiscountPercent, Value: 15},
}

// Discounts returns the table in a stable order for display use.
func Discounts() []Discount {
	return []Discount{discounts["SAVE20"], discounts["EARLYBIRD"]}
}

// ComputeAmount prices a plan: base plus per-extra-location add-on, then the
// discount. Unknown codes are ignored so a typo never blocks checkout. A
// fixed discount clamps at zero rather than going negative.
func ComputeAmount(tier string, extraLocations int, code string) (amount int64, applied *Discount) {
	if extraLocations < 0 {
		extraLocations = 0
	}

	switch tier {
	case models.TierAnnual:
		amount = annualBase + int64(extraLocations)*annualPerExtra
	default:
		amount = monthlyBase + int64(extraLocations)*monthlyPerExtra
	}

	d, ok := discounts[normalize.DiscountCode(code)]
	if !ok {
		return amount, nil
	}

	switch d.Kind {
	case DiscountPercent:
		amount -= amount * d.Value / 100
	case DiscountFixed:
		amount -= d.Value
		if amount < 0 {
			amount = 0
		}
	}
	return amount, &d
}

// Interval maps a membership tier to the processor's billing interval.
func Interval(tier string) string {
	if tier == models.TierAnnual {
		return "year"
	}
	return "month"
}

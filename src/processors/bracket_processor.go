package processors

import (
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

// BracketTax applies a marginal schedule to a non-negative amount.
//
// Each tier taxes the part of the amount strictly above its lower bound and at or below
// the next tier's lower bound. An amount equal to a boundary is taxed entirely at the
// lower tier's rate. Every slice is rounded to the cent before it is accumulated.
func BracketTax(amount money.Cents, schedule models.Schedule) money.Cents {
	if amount <= 0 {
		return 0
	}
	var total money.Cents
	for i, tier := range schedule {
		if amount <= tier.Lower {
			break
		}
		top := amount
		if i+1 < len(schedule) && schedule[i+1].Lower < amount {
			top = schedule[i+1].Lower
		}
		total += money.MulRate(top-tier.Lower, tier.Rate)
	}
	return total
}

// BracketTaxRanges taxes against the [lower, upper) encoding by normalizing it first, so
// both encodings share one code path.
func BracketTaxRanges(amount money.Cents, ranges models.BracketRanges) (money.Cents, error) {
	schedule, err := ranges.Normalize()
	if err != nil {
		return 0, err
	}
	return BracketTax(amount, schedule), nil
}

// MarginalRate is the rate applied to the last cent of amount. An amount sitting exactly
// on a boundary belongs to the lower tier.
func MarginalRate(amount money.Cents, schedule models.Schedule) float64 {
	if len(schedule) == 0 {
		return 0
	}
	rate := schedule[0].Rate
	for _, tier := range schedule[1:] {
		if amount <= tier.Lower {
			break
		}
		rate = tier.Rate
	}
	return rate
}

package processors

import (
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

const (
	preferentialMidRate = 0.15
	preferentialTopRate = 0.20
)

// StackPreferential splits qualified dividends and net long-term gain over the 0/15/20%
// tiers. Preferential income sits on top of ordinary income: the 0% tier only has room
// left above ordinary income, and the 15% tier starts no lower than the 0% ceiling.
//
// preferential is clipped to [0, taxable]. The three parts always sum to the clipped
// amount.
func StackPreferential(taxable, preferential, zeroCeiling, fifteenCeiling money.Cents) models.PreferentialBreakdown {
	taxable = taxable.Positive()
	pref := money.Clamp(preferential, 0, taxable)
	ordinary := taxable - pref

	zeroCapacity := money.SubFloor(zeroCeiling, ordinary)
	atZero := money.Min(pref, zeroCapacity)

	fifteenCapacity := money.SubFloor(fifteenCeiling, money.Max(ordinary, zeroCeiling))
	atFifteen := money.Min(pref-atZero, fifteenCapacity)

	atTwenty := pref - atZero - atFifteen

	return models.PreferentialBreakdown{
		Preferential: pref,
		AtZero:       atZero,
		AtFifteen:    atFifteen,
		AtTwenty:     atTwenty,
		Tax:          money.MulRate(atFifteen, preferentialMidRate) + money.MulRate(atTwenty, preferentialTopRate),
	}
}

// TaxWithPreferential is the qualified dividends and capital gain tax worksheet: ordinary
// income through the schedule, preferential income through the stacker, capped at the
// plain schedule tax on the whole amount.
func TaxWithPreferential(taxable, preferential money.Cents, schedule models.Schedule, zeroCeiling, fifteenCeiling money.Cents) (ordinaryTax money.Cents, pref models.PreferentialBreakdown) {
	pref = StackPreferential(taxable, preferential, zeroCeiling, fifteenCeiling)
	ordinaryTax = BracketTax(taxable.Positive()-pref.Preferential, schedule)
	if plain := BracketTax(taxable, schedule); ordinaryTax+pref.Tax > plain {
		// Only reachable with unusual tables where the schedule undercuts 15/20%.
		return plain, models.PreferentialBreakdown{}
	}
	return ordinaryTax, pref
}

package federal

import (
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
	"github.com/username/ustax/src/processors"
)

// alternativeMinimumTax adds back preferences, applies the exemption and the two-rate
// schedule, and keeps any excess of tentative minimum tax over regular tax.
func (c *computation) alternativeMinimumTax() {
	res := c.res
	a := c.r.AMT

	addBack := res.Itemized.SALT
	if res.DeductionType == models.DeductionStandard {
		addBack = res.StandardDeduction
	}
	amti := res.TaxableIncome + addBack + c.in.AMT.ISOBargainElement + c.in.AMT.PrivateActivityBondInterest + c.in.AMT.Other

	exemption := a.Exemption.Get(c.status)
	if excess := amti - a.PhaseoutStart.Get(c.status); excess > 0 {
		exemption = money.SubFloor(exemption, money.MulRate(excess, a.PhaseoutRate))
	}
	base := money.SubFloor(amti, exemption)
	if base == 0 {
		return
	}

	pref := processors.StackPreferential(
		base,
		c.preferentialBase,
		c.r.CapitalGains.ZeroCeiling.Get(c.status),
		c.r.CapitalGains.FifteenCeiling.Get(c.status),
	)
	ordinary := base - pref.Preferential
	breakpoint := a.Breakpoint.Get(c.status)
	tentative := money.MulRate(money.Min(ordinary, breakpoint), a.LowRate) +
		money.MulRate(money.SubFloor(ordinary, breakpoint), a.HighRate) +
		pref.Tax

	if tentative > res.TaxBeforeCredits {
		res.AdditionalTaxes.AMT = tentative - res.TaxBeforeCredits
		c.diags.info(codeAMTApplies, models.PhaseAdditionalTaxes, "amt",
			"tentative minimum tax %s exceeds regular tax; alternative minimum tax is %s", tentative, res.AdditionalTaxes.AMT)
	}
}

// otherTaxes adds the net investment income tax and the additional Medicare tax.
func (c *computation) otherTaxes() {
	res := c.res

	niit := c.r.NIIT
	if over := res.AGI - niit.Threshold.Get(c.status); over > 0 && res.Income.InvestmentIncome > 0 {
		res.AdditionalTaxes.NIIT = money.MulRate(money.Min(res.Income.InvestmentIncome, over), niit.Rate)
	}

	med := c.r.AdditionalMedicare
	medicareWages := res.Income.Wages + c.seNetEarnings
	if over := medicareWages - med.Threshold.Get(c.status); over > 0 {
		res.AdditionalTaxes.MedicareSurtax = money.MulRate(over, med.Rate)
	}
}

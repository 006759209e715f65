package federal

import (
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

// deductions computes both deductions and keeps the larger one. A separate filer whose
// spouse itemizes must itemize too.
func (c *computation) deductions() {
	res := c.res
	res.StandardDeduction = c.standardDeduction()
	res.Itemized = c.itemized()
	res.ItemizedDeduction = res.Itemized.Total

	switch {
	case c.status == models.MarriedSeparately && c.in.SpouseItemizes:
		res.StandardDeduction = 0
		res.DeductionType = models.DeductionItemized
		c.diags.info(codeForcedItemized, models.PhaseDeductions, "spouse_itemizes",
			"spouse itemizes; the standard deduction is not available")
	case res.ItemizedDeduction > res.StandardDeduction:
		res.DeductionType = models.DeductionItemized
	default:
		res.DeductionType = models.DeductionStandard
	}

	if res.DeductionType == models.DeductionItemized {
		res.Deduction = res.ItemizedDeduction
	} else {
		res.Deduction = res.StandardDeduction
	}
	c.diags.info(codeDeductionChosen, models.PhaseDeductions, "deduction",
		"%s deduction of %s used (standard %s, itemized %s)",
		res.DeductionType, res.Deduction, res.StandardDeduction, res.ItemizedDeduction)

	c.taxableBeforeQBI = money.SubFloor(res.AGI, res.Deduction)
}

func (c *computation) standardDeduction() money.Cents {
	base := c.r.StandardDeduction.Get(c.status)
	if c.in.ClaimedAsDependent {
		limited := money.Max(c.r.DependentStdMinimum, c.res.Income.EarnedIncome+c.r.DependentEarnedAddOn)
		if limited < base {
			c.diags.info(codeDependentStdLimit, models.PhaseDeductions, "claimed_as_dependent",
				"standard deduction limited to %s for a filer claimed as a dependent", limited)
			base = limited
		}
	}

	addOn := c.r.AdditionalAgedOrBlind.Get(c.status)
	count := agedOrBlind(c.in.Taxpayer)
	if c.status.Married() && c.in.Spouse != nil {
		count += agedOrBlind(*c.in.Spouse)
	}
	return base + money.Cents(count)*addOn
}

func agedOrBlind(p models.Person) int {
	n := 0
	if p.Age >= 65 {
		n++
	}
	if p.Blind {
		n++
	}
	return n
}

func (c *computation) itemized() models.ItemizedSummary {
	it := c.in.Itemized
	agi := c.res.AGI
	var out models.ItemizedSummary

	out.Medical = money.SubFloor(it.MedicalExpenses, money.MulRate(agi.Positive(), c.r.MedicalFloorRate))

	out.SALTClaimed = money.Max(it.StateLocalIncomeTax, it.GeneralSalesTax) + it.RealEstateTax + it.PersonalPropertyTax
	saltCap := c.r.SALTCap.Get(c.status)
	out.SALT = money.Min(out.SALTClaimed, saltCap)
	if out.SALTClaimed > saltCap {
		c.diags.warn(codeSALTCapped, models.PhaseDeductions, "itemized.state_local_income_tax",
			"state and local taxes of %s capped at %s", out.SALTClaimed, saltCap)
	}

	out.MortgageInterest = it.MortgageInterest

	charitableCap := money.MulRate(agi.Positive(), c.r.CharitableAGILimitRate)
	out.Charitable = money.Min(it.Charitable, charitableCap)
	if it.Charitable > charitableCap {
		c.diags.warn(codeCharitableLimited, models.PhaseDeductions, "itemized.charitable",
			"charitable contributions limited to %s", charitableCap)
	}

	out.CasualtyLoss = it.CasualtyLoss
	out.Other = it.Other
	out.Total = money.Sum(out.Medical, out.SALT, out.MortgageInterest, out.Charitable, out.CasualtyLoss, out.Other)
	return out
}

// qbiDeduction is the simplified qualified business income deduction. Above the threshold
// the W-2 wage and property limit phases in across the range.
func (c *computation) qbiDeduction() {
	q := c.r.QBI
	b := c.in.Business
	if b.QualifiedBusinessIncome <= 0 {
		return
	}
	tentative := money.MulRate(b.QualifiedBusinessIncome, q.Rate)

	threshold := q.Threshold.Get(c.status)
	width := q.PhaseInRange.Get(c.status)
	if excess := c.taxableBeforeQBI - threshold; excess > 0 {
		wageLimit := money.Max(money.MulRate(b.W2Wages, 0.50), money.MulRate(b.W2Wages, 0.25)+money.MulRate(b.UBIA, 0.025))
		if wageLimit < tentative {
			reduction := tentative - wageLimit
			if width > 0 && excess < width {
				reduction = money.MulRatio(reduction, excess, width)
			}
			tentative -= reduction
			c.diags.info(codeQBILimited, models.PhaseQBI, "business.w2_wages",
				"qualified business income deduction limited by W-2 wages and property to %s", tentative)
		}
	}

	incomeCap := money.MulRate(money.SubFloor(c.taxableBeforeQBI, c.preferentialBase), q.Rate)
	if incomeCap < tentative {
		c.diags.info(codeQBILimited, models.PhaseQBI, "business.qualified_business_income",
			"qualified business income deduction limited by taxable income to %s", incomeCap)
		tentative = incomeCap
	}
	c.res.QBIDeduction = tentative
}

// nolDeduction applies a carryforward up to the percentage limit of taxable income.
func (c *computation) nolDeduction() {
	carry := c.in.NOLCarryforward
	if carry <= 0 {
		return
	}
	limit := money.MulRate(money.SubFloor(c.taxableBeforeQBI, c.res.QBIDeduction), c.r.NOLLimitRate)
	c.res.NOLDeduction = money.Min(carry, limit)
	if remaining := carry - c.res.NOLDeduction; remaining > 0 {
		c.diags.warn(codeNOLCarryforward, models.PhaseNOL, "nol_carryforward",
			"%s of the net operating loss carries forward", remaining)
	}
}

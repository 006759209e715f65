package federal

import (
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

// aggregateIncome builds everything in the income summary except taxable Social Security,
// which depends on adjustments and is filled in by adjustments().
func (c *computation) aggregateIncome() {
	inc := c.in.Income
	sum := &c.res.Income

	sum.Wages = inc.Wages
	sum.TaxableInterest = inc.TaxableInterest
	sum.TaxExemptInterest = inc.TaxExemptInterest
	sum.OrdinaryDividends = inc.OrdinaryDividends
	sum.QualifiedDividends = inc.QualifiedDividends
	sum.BusinessIncome = inc.BusinessIncome
	sum.RentalIncome = inc.RentalIncome
	sum.Unemployment = inc.Unemployment
	sum.RetirementDistributions = inc.RetirementDistributions
	sum.OtherIncome = inc.OtherIncome

	c.netCapitalGains()

	c.incomeBeforeSS = money.Sum(
		sum.Wages,
		sum.TaxableInterest,
		sum.OrdinaryDividends,
		sum.NetCapitalGain,
		sum.BusinessIncome,
		sum.RentalIncome,
		sum.Unemployment,
		sum.RetirementDistributions,
		sum.OtherIncome,
	)

	sum.InvestmentIncome = money.Sum(
		sum.TaxableInterest,
		sum.OrdinaryDividends,
		sum.NetCapitalGain.Positive(),
		sum.RentalIncome.Positive(),
	)
	c.eitcInvestment = sum.InvestmentIncome + sum.TaxExemptInterest

	c.preferentialBase = sum.QualifiedDividends + sum.NetLongTermGain

	if len(c.in.Dependents) == 0 {
		c.diags.info(codeNoDependents, models.PhaseCredits, "dependents", "no dependents claimed; dependent credits are zero")
	}
}

// netCapitalGains nets short- and long-term results, applies the carryover as a
// short-term loss, and limits a net loss to the annual deduction limit.
func (c *computation) netCapitalGains() {
	inc := c.in.Income
	sum := &c.res.Income

	shortTerm := inc.ShortTermCapitalGain - inc.CapitalLossCarryover
	longTerm := inc.LongTermCapitalGain
	net := shortTerm + longTerm

	if net < 0 {
		limit := c.r.CapitalLossLimit.Get(c.status)
		allowed := money.Max(net, -limit)
		sum.NetCapitalGain = allowed
		sum.CapitalLossCarryforward = allowed - net
		if sum.CapitalLossCarryforward > 0 {
			c.diags.warn(codeCapitalLossLimited, models.PhaseAGI, "income.long_term_capital_gain",
				"net capital loss limited to %s; %s carries forward", limit, sum.CapitalLossCarryforward)
		}
	} else {
		sum.NetCapitalGain = net
	}

	// Net capital gain for the preferential rates: long-term gain reduced by any
	// short-term loss, never below zero.
	if longTerm > 0 {
		sum.NetLongTermGain = money.Min(longTerm, net).Positive()
	}
}

// taxableSocialSecurity is the benefits worksheet. provisional income is other income
// plus tax-exempt interest less adjustments, plus half the benefits.
func (c *computation) taxableSocialSecurity(otherIncome money.Cents) money.Cents {
	benefits := c.in.Income.SocialSecurityBenefits
	if benefits <= 0 {
		return 0
	}
	ss := c.r.SocialSecurity
	base := ss.BaseAmount.Get(c.status)
	adjusted := ss.AdjustedBase.Get(c.status)

	provisional := otherIncome + c.in.Income.TaxExemptInterest + money.MulRate(benefits, ss.LowerRate)
	if provisional <= base {
		return 0
	}
	upperCap := money.MulRate(benefits, ss.UpperRate)
	lowerCap := money.MulRate(benefits, ss.LowerRate)

	var taxable money.Cents
	if provisional <= adjusted {
		taxable = money.Min(money.MulRate(provisional-base, ss.LowerRate), lowerCap)
	} else {
		lowerTier := money.Min(money.MulRate(adjusted-base, ss.LowerRate), lowerCap)
		taxable = money.Min(money.MulRate(provisional-adjusted, ss.UpperRate)+lowerTier, upperCap)
	}
	if taxable > 0 {
		c.diags.info(codeSocialSecurityTaxed, models.PhaseAGI, "income.social_security_benefits",
			"%s of %s Social Security benefits is taxable", taxable, benefits)
	}
	return taxable
}

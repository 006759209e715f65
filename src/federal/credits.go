package federal

import (
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

// nonrefundableCredits applies the credits in order against the remaining liability:
// foreign tax, education, saver's, then the child and other dependent credits.
func (c *computation) nonrefundableCredits() {
	res := c.res
	add := res.AdditionalTaxes
	c.liability = res.TaxBeforeCredits + add.AMT + add.ExcessAPTCRepayment

	cr := &res.Credits
	cr.ForeignTax = c.allow("foreign_income", "foreign tax credit", c.foreignTaxCredit())
	cr.EducationNonrefund = c.allow("students", "education credit", c.educationCredits())
	cr.Savers = c.allow("retirement_contributions", "saver's credit", c.saversCredit())
	c.childCredits()

	cr.TotalNonrefundable = money.Sum(cr.ForeignTax, cr.EducationNonrefund, cr.Savers, cr.ChildTax, cr.OtherDependent)
}

// allow limits a credit to the remaining liability and consumes it.
func (c *computation) allow(field, name string, amount money.Cents) money.Cents {
	if amount <= 0 {
		return 0
	}
	allowed := money.Min(amount, c.liability)
	c.liability -= allowed
	if allowed < amount {
		c.diags.info(codeCreditLimited, models.PhaseCredits, field,
			"%s of %s limited to remaining tax of %s", name, amount, allowed)
	}
	return allowed
}

func (c *computation) foreignTaxCredit() money.Cents {
	if len(c.in.ForeignIncome) == 0 {
		c.diags.info(codeNoForeignIncome, models.PhaseCredits, "foreign_income", "no foreign income reported")
		return 0
	}
	var income, paid money.Cents
	for _, f := range c.in.ForeignIncome {
		income += f.Income
		paid += f.TaxPaid
	}
	if paid <= c.r.ForeignTax.DeMinimis.Get(c.status) {
		return paid
	}

	taxable := c.res.TaxableIncome
	limit := c.res.TaxBeforeCredits
	if taxable > 0 && income < taxable {
		limit = money.MulRatio(limit, income.Positive(), taxable)
	}
	if taxable <= 0 {
		limit = 0
	}
	if paid > limit {
		c.diags.warn(codeForeignTaxLimited, models.PhaseCredits, "foreign_income",
			"foreign tax credit limited to %s of %s paid", limit, paid)
		return limit
	}
	return paid
}

// educationCredits returns the nonrefundable education credit and records the refundable
// share of the American opportunity credit.
func (c *computation) educationCredits() money.Cents {
	if len(c.in.Students) == 0 {
		return 0
	}
	if c.status == models.MarriedSeparately || c.in.ClaimedAsDependent {
		c.diags.warn(codeEducationIneligible, models.PhaseCredits, "students",
			"education credits are not available to this filer")
		return 0
	}
	e := c.r.Education

	var aotc, llcExpenses money.Cents
	for _, s := range c.in.Students {
		if s.AOTCEligible {
			full := money.Min(s.QualifiedExpenses, e.AOTCFullTier)
			partial := money.Min(money.SubFloor(s.QualifiedExpenses, e.AOTCFullTier), e.AOTCPartialTier)
			aotc += full + money.MulRate(partial, e.AOTCPartialRate)
			continue
		}
		llcExpenses += s.QualifiedExpenses
	}
	llc := money.MulRate(money.Min(llcExpenses, e.LLCMaxExpenses), e.LLCRate)

	start, width := e.PhaseoutStart.Get(c.status), e.PhaseoutRange.Get(c.status)
	aotc = money.PhaseDown(aotc, c.res.AGI, start, width)
	llc = money.PhaseDown(llc, c.res.AGI, start, width)

	refundable := money.MulRate(aotc, e.AOTCRefundableShare)
	c.res.Credits.EducationRefundable = refundable
	return aotc - refundable + llc
}

func (c *computation) saversCredit() money.Cents {
	s := c.r.Savers
	if c.in.ClaimedAsDependent || c.in.RetirementContributions+c.in.SpouseRetirementContrib <= 0 {
		return 0
	}
	rate := 0.0
	for _, tier := range s.Tiers {
		if c.res.AGI <= tier.AGILimit.Get(c.status) {
			rate = tier.Rate
			break
		}
	}
	if rate == 0 {
		return 0
	}
	contributions := money.Min(c.in.RetirementContributions, s.MaxContribution)
	if c.status == models.MarriedJointly {
		contributions += money.Min(c.in.SpouseRetirementContrib, s.MaxContribution)
	}
	return money.MulRate(contributions, rate)
}

// livedHalfYear treats an unreported month count as the full year.
func livedHalfYear(d models.Dependent) bool {
	return d.MonthsLived == 0 || d.MonthsLived > 6
}

func (c *computation) countChildren() (children, others int) {
	for _, d := range c.in.Dependents {
		if d.Age <= c.r.ChildTaxCredit.MaxChildAge && livedHalfYear(d) {
			children++
		} else {
			others++
		}
	}
	return children, others
}

// childCredits computes the child tax credit and the credit for other dependents. The
// child portion the tax could not absorb is kept for the additional child tax credit.
func (c *computation) childCredits() {
	ct := c.r.ChildTaxCredit
	children, others := c.countChildren()
	if children+others == 0 {
		return
	}
	childPart := money.Cents(children) * ct.PerChild
	otherPart := money.Cents(others) * ct.OtherDependent

	if excess := c.res.AGI - ct.PhaseoutStart.Get(c.status); excess > 0 && ct.PhaseoutStep > 0 {
		steps := (excess + ct.PhaseoutStep - 1) / ct.PhaseoutStep
		reduction := steps * ct.PhaseoutPerStep
		combined := money.SubFloor(childPart+otherPart, reduction)
		childPart = money.Min(childPart, combined)
		otherPart = combined - childPart
	}

	combined := childPart + otherPart
	allowed := c.allow("dependents", "child and other dependent credit", combined)
	cr := &c.res.Credits
	cr.ChildTax = money.Min(childPart, allowed)
	cr.OtherDependent = allowed - cr.ChildTax
	c.unusedChildCredit = money.Min(combined-allowed, childPart)
}

// refundableCredits computes the earned income credit and the additional child tax
// credit, then totals every refundable credit.
func (c *computation) refundableCredits() {
	cr := &c.res.Credits
	cr.EarnedIncome = c.earnedIncomeCredit()
	cr.AdditionalChildTax = c.additionalChildTaxCredit()
	cr.TotalRefundable = money.Sum(cr.EarnedIncome, cr.AdditionalChildTax, cr.EducationRefundable, cr.NetPremiumTaxCredit)
}

func (c *computation) additionalChildTaxCredit() money.Cents {
	ct := c.r.ChildTaxCredit
	if c.unusedChildCredit <= 0 {
		return 0
	}
	children, _ := c.countChildren()
	earnedLimit := money.MulRate(money.SubFloor(c.res.Income.EarnedIncome, ct.EarnedIncomeFloor), ct.RefundableRate)
	return money.Min(money.Min(c.unusedChildCredit, money.Cents(children)*ct.RefundableMax), earnedLimit)
}

func (c *computation) eitcChildren() int {
	n := 0
	for _, d := range c.in.Dependents {
		if !livedHalfYear(d) {
			continue
		}
		if d.Age < 19 || (d.Student && d.Age < 24) || d.Disabled {
			n++
		}
	}
	return min(n, 3)
}

func (c *computation) earnedIncomeCredit() money.Cents {
	e := c.r.EITC
	earned := c.res.Income.EarnedIncome
	if earned <= 0 || c.in.ClaimedAsDependent {
		return 0
	}
	if c.status == models.MarriedSeparately {
		c.diags.info(codeEITCFilingStatus, models.PhaseCredits, "filing_status",
			"earned income credit is not available when married filing separately")
		return 0
	}
	if c.eitcInvestment > e.InvestmentIncomeLimit {
		c.diags.warn(codeEITCInvestment, models.PhaseCredits, "income.investment_income",
			"investment income %s exceeds the earned income credit limit of %s", c.eitcInvestment, e.InvestmentIncomeLimit)
		return 0
	}

	children := c.eitcChildren()
	if children == 0 && !c.eitcAgeEligible() {
		return 0
	}
	tier := e.Tiers[children]
	start := tier.PhaseoutStart
	if c.status == models.MarriedJointly {
		start = tier.PhaseoutStartJoint
	}

	credit := money.Min(money.MulRate(earned, tier.Rate), tier.MaxCredit)
	phaseIncome := money.Max(earned, c.res.AGI)
	return money.SubFloor(credit, money.MulRate(money.SubFloor(phaseIncome, start), tier.PhaseoutRate))
}

// eitcAgeEligible applies the age window for filers without a qualifying child. On a
// joint return either spouse may meet it.
func (c *computation) eitcAgeEligible() bool {
	e := c.r.EITC
	inWindow := func(age int) bool { return age >= e.MinAgeNoChild && age <= e.MaxAgeNoChild }
	if inWindow(c.in.Taxpayer.Age) {
		return true
	}
	return c.status == models.MarriedJointly && c.in.Spouse != nil && inWindow(c.in.Spouse.Age)
}

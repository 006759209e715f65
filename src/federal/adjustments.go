package federal

import (
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

// selfEmploymentTax computes SE tax on Schedule C profit. Earnings under the minimum owe
// nothing.
func (c *computation) selfEmploymentTax() {
	se := c.r.SelfEmployment
	profit := c.in.Income.BusinessIncome
	if profit <= 0 {
		return
	}
	net := money.MulRate(profit, se.NetEarningsFactor)
	if net < se.MinimumNetEarnings {
		c.diags.info(codeSEBelowMinimum, models.PhaseSelfEmployment, "income.business_income",
			"net self-employment earnings %s are below %s; no self-employment tax", net, se.MinimumNetEarnings)
		return
	}
	c.seNetEarnings = net

	socialSecurityBase := money.Min(net, money.SubFloor(se.WageBase, c.in.Income.Wages))
	tax := money.MulRate(socialSecurityBase, se.SocialSecurityRate) + money.MulRate(net, se.MedicareRate)
	c.res.AdditionalTaxes.SETax = tax
	c.res.Adjustments.HalfSETax = money.MulRate(tax, 0.5)
}

// adjustments allows the Schedule 1 adjustments, completes the income summary with taxable
// Social Security, and sets AGI.
func (c *computation) adjustments() {
	a := c.in.Adjustments
	out := &c.res.Adjustments
	inc := &c.res.Income

	educatorCap := c.r.EducatorExpenseMax
	if c.status == models.MarriedJointly {
		educatorCap *= 2
	}
	out.EducatorExpenses = money.Min(a.EducatorExpenses, educatorCap)
	if a.EducatorExpenses > educatorCap {
		c.diags.warn(codeEducatorCapped, models.PhaseAGI, "adjustments.educator_expenses",
			"educator expenses limited to %s", educatorCap)
	}

	out.HSADeduction = a.HSADeduction
	out.IRADeduction = a.IRADeduction
	out.SelfEmployedRetirement = a.SelfEmployedRetirement
	out.EarlyWithdrawalPenalty = a.EarlyWithdrawalPenalty
	out.AlimonyPaid = a.AlimonyPaid

	healthCap := money.SubFloor(inc.BusinessIncome, out.HalfSETax+out.SelfEmployedRetirement)
	out.SelfEmployedHealthInsurance = money.Min(a.SelfEmployedHealthInsurance, healthCap)
	if a.SelfEmployedHealthInsurance > healthCap {
		c.diags.warn(codeHealthInsLimited, models.PhaseAGI, "adjustments.self_employed_health_insurance",
			"self-employed health insurance limited to business profit of %s", healthCap)
	}

	beforeStudentLoan := money.Sum(
		out.HalfSETax,
		out.EducatorExpenses,
		out.HSADeduction,
		out.IRADeduction,
		out.SelfEmployedRetirement,
		out.SelfEmployedHealthInsurance,
		out.EarlyWithdrawalPenalty,
		out.AlimonyPaid,
	)

	inc.TaxableSocialSecurity = c.taxableSocialSecurity(c.incomeBeforeSS - beforeStudentLoan)
	inc.TotalIncome = c.incomeBeforeSS + inc.TaxableSocialSecurity
	inc.EarnedIncome = money.SubFloor(inc.Wages+inc.BusinessIncome.Positive(), out.HalfSETax)

	out.StudentLoanInterest = c.studentLoanInterest(inc.TotalIncome - beforeStudentLoan)
	out.Total = beforeStudentLoan + out.StudentLoanInterest
	c.res.AGI = inc.TotalIncome - out.Total
}

// studentLoanInterest applies the cap and the MAGI phase-out. Married filing separately
// cannot take the deduction.
func (c *computation) studentLoanInterest(magi money.Cents) money.Cents {
	paid := c.in.Adjustments.StudentLoanInterest
	if paid <= 0 {
		return 0
	}
	sl := c.r.StudentLoan
	if c.status == models.MarriedSeparately {
		c.diags.warn(codeStudentLoanLimited, models.PhaseAGI, "adjustments.student_loan_interest",
			"student loan interest is not deductible when married filing separately")
		return 0
	}
	allowed := money.Min(paid, sl.Max)
	phased := money.PhaseDown(allowed, magi, sl.Start.Get(c.status), sl.Range.Get(c.status))
	if phased < paid {
		c.diags.warn(codeStudentLoanLimited, models.PhaseAGI, "adjustments.student_loan_interest",
			"student loan interest deduction limited to %s", phased)
	}
	return phased
}

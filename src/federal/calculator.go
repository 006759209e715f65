// Package federal runs the federal determination pipeline: income, adjustments, AGI,
// deductions, taxable income, tax, additional taxes, credits and the refund or balance due.
//
// The pipeline is a fixed sequence of steps over one working record. It is pure: it reads
// the input and the year's rules, performs no I/O, and returns a new result.
package federal

import (
	"fmt"
	"math"
	"slices"

	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
	"github.com/username/ustax/src/processors"
	"github.com/username/ustax/src/rules"
	"github.com/username/ustax/src/validation"
)

// Calculator computes federal results for any year in its catalog.
type Calculator struct {
	catalog *rules.Catalog
}

func NewCalculator(catalog *rules.Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// Compute looks up the year's rules and runs the pipeline.
func (c *Calculator) Compute(year int, in models.FederalInput) (*models.FederalResult, error) {
	yr, err := c.catalog.Get(year)
	if err != nil {
		return nil, err
	}
	return Compute(year, &yr.Federal, in)
}

// computation is the working record the steps read from and write to.
type computation struct {
	in     *models.FederalInput
	r      *rules.FederalRules
	status models.FilingStatus
	res    *models.FederalResult
	diags  diagnostics

	// intermediate values that are not part of the result
	seNetEarnings     money.Cents
	incomeBeforeSS    money.Cents
	preferentialBase  money.Cents
	taxableBeforeQBI  money.Cents
	liability         money.Cents // regular tax + AMT + excess APTC, reduced by each nonrefundable credit
	unusedChildCredit money.Cents
	eitcInvestment    money.Cents
}

// Compute runs the pipeline for one input against one year's federal rules.
// Structurally invalid input returns a *validation.InputValidationError before any
// arithmetic happens.
func Compute(year int, r *rules.FederalRules, in models.FederalInput) (*models.FederalResult, error) {
	if r == nil {
		return nil, fmt.Errorf("no federal rules for %d", year)
	}
	in = cloneInput(in)
	validation.SanitizeFederalInput(&in)
	if err := validation.ValidateFederalInput(&in); err != nil {
		return nil, err
	}

	c := &computation{
		in:     &in,
		r:      r,
		status: in.FilingStatus,
		res:    &models.FederalResult{Year: year, FilingStatus: in.FilingStatus},
	}

	c.aggregateIncome()
	c.selfEmploymentTax()
	c.adjustments()
	c.deductions()
	c.qbiDeduction()
	c.nolDeduction()
	c.taxableIncome()
	c.incomeTax()
	c.alternativeMinimumTax()
	c.premiumTaxCredit()
	c.nonrefundableCredits()
	c.otherTaxes()
	c.refundableCredits()
	c.totals()

	c.res.Diagnostics = c.diags.list()
	return c.res, nil
}

// cloneInput copies the slices so sanitising never writes through to the caller.
func cloneInput(in models.FederalInput) models.FederalInput {
	in.Dependents = slices.Clone(in.Dependents)
	in.Students = slices.Clone(in.Students)
	in.ForeignIncome = slices.Clone(in.ForeignIncome)
	if in.Spouse != nil {
		s := *in.Spouse
		in.Spouse = &s
	}
	if in.PremiumCredit != nil {
		p := *in.PremiumCredit
		in.PremiumCredit = &p
	}
	return in
}

func (c *computation) taxableIncome() {
	res := c.res
	res.TaxableIncome = money.SubFloor(c.taxableBeforeQBI, res.QBIDeduction+res.NOLDeduction)
}

func (c *computation) incomeTax() {
	res := c.res
	schedule := c.r.Brackets.Get(c.status)
	res.OrdinaryTax, res.Preferential = processors.TaxWithPreferential(
		res.TaxableIncome,
		c.preferentialBase,
		schedule,
		c.r.CapitalGains.ZeroCeiling.Get(c.status),
		c.r.CapitalGains.FifteenCeiling.Get(c.status),
	)
	res.TaxBeforeCredits = res.OrdinaryTax + res.Preferential.Tax
	res.MarginalRate = processors.MarginalRate(res.TaxableIncome, schedule)
	if res.Preferential.Preferential > 0 {
		c.diags.info(codePreferentialApplied, models.PhaseIncomeTax, "income.qualified_dividends",
			"%s of qualified dividends and long-term gain taxed at preferential rates", res.Preferential.Preferential)
	}
}

func (c *computation) totals() {
	res := c.res
	add := res.AdditionalTaxes
	afterCredits := money.SubFloor(res.TaxBeforeCredits+add.AMT+add.ExcessAPTCRepayment, res.Credits.TotalNonrefundable)
	res.TotalTax = afterCredits + add.SETax + add.NIIT + add.MedicareSurtax - res.Credits.TotalRefundable

	pay := c.in.Payments
	res.TotalPayments = money.Sum(pay.Withholding, pay.EstimatedPayments, pay.ExtensionPayment, pay.ExcessSocialSecurity)
	res.RefundOrOwe = res.TotalPayments - res.TotalTax

	if res.AGI > 0 {
		res.EffectiveRate = math.Round(float64(res.TotalTax)/float64(res.AGI)*10000) / 10000
	}
}

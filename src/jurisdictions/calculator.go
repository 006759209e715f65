package jurisdictions

import (
	"fmt"
	"math"

	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
	"github.com/username/ustax/src/processors"
	"github.com/username/ustax/src/rules"
)

const agedExemptionAge = 65

// passthrough is the calculator for a jurisdiction without an income tax. It still reports
// AGI and payments so the absence of tax is visible in the result.
func passthrough(sr *rules.StateRules) Calculator {
	return func(in models.JurisdictionTaxInput) models.JurisdictionResult {
		if c, ok := outOfRange(&in); ok {
			return rejected(sr, "Amount %s is outside the supported range; nothing was computed.", c)
		}
		res := models.JurisdictionResult{
			Code:             sr.Code,
			Name:             sr.Name,
			Year:             sr.EffectiveYear,
			StateAGI:         in.Federal.AGI,
			StateWithheld:    in.StateWithheld,
			StateEstPayments: in.StateEstimatedPayments,
		}
		res.StateRefundOrOwe = in.StateWithheld + in.StateEstimatedPayments + in.LocalWithheld
		res.Notes = append([]string{fmt.Sprintf("%s has no personal income tax.", sr.Name)}, sr.Notes...)
		return res
	}
}

// tableCalculator composes the step functions over one jurisdiction table. When the
// taxpayer leaves the property-tax election open and both forms are offered, both are
// computed and the better outcome is kept.
func tableCalculator(sr *rules.StateRules) Calculator {
	return func(in models.JurisdictionTaxInput) models.JurisdictionResult {
		status := in.FilingStatus
		if !status.Valid() {
			status = in.Federal.FilingStatus
		}
		if !status.Valid() {
			return rejected(sr, "No filing status on the input or its federal result; nothing was computed.")
		}
		if c, ok := outOfRange(&in); ok {
			return rejected(sr, "Amount %s is outside the supported range; nothing was computed.", c)
		}
		if in.PropertyTaxChoice != models.PropertyTaxAuto || !offersBoth(sr, in.PropertyTaxPaid) {
			return run(sr, in, status, in.PropertyTaxChoice)
		}

		credit := run(sr, in, status, models.PropertyTaxCredit)
		deduction := run(sr, in, status, models.PropertyTaxDeduction)
		if deduction.StateRefundOrOwe > credit.StateRefundOrOwe {
			deduction.Notes = append(deduction.Notes, "Property tax deduction used; it produced a better result than the credit.")
			return deduction
		}
		credit.Notes = append(credit.Notes, "Property tax credit used; it produced a better result than the deduction.")
		return credit
	}
}

// rejected is the result for an input the steps cannot run on.
func rejected(sr *rules.StateRules, format string, args ...any) models.JurisdictionResult {
	return models.JurisdictionResult{
		Code:  sr.Code,
		Name:  sr.Name,
		Year:  sr.EffectiveYear,
		Notes: []string{fmt.Sprintf(format, args...)},
	}
}

// outOfRange returns the first amount the calculators read that exceeds money.MaxAmount.
func outOfRange(in *models.JurisdictionTaxInput) (money.Cents, bool) {
	fed := &in.Federal
	for _, c := range []money.Cents{
		fed.AGI, fed.TaxableIncome, fed.Income.TaxableSocialSecurity, fed.Income.RetirementDistributions,
		fed.Credits.EarnedIncome, in.Additions, in.Subtractions, in.PropertyTaxPaid,
		in.StateWithheld, in.StateEstimatedPayments, in.LocalWithheld,
	} {
		if !c.InRange() {
			return c, true
		}
	}
	return 0, false
}

func offersBoth(sr *rules.StateRules, paid money.Cents) bool {
	p := sr.PropertyTax
	return p != nil && paid > 0 && p.DeductionMax > 0 && (p.CreditRate > 0 || p.CreditFlat > 0)
}

// work is the record the steps share.
type work struct {
	in     *models.JurisdictionTaxInput
	r      *rules.StateRules
	status models.FilingStatus
	choice models.PropertyTaxChoice
	res    models.JurisdictionResult

	taxBeforeCredits money.Cents
}

func run(sr *rules.StateRules, in models.JurisdictionTaxInput, status models.FilingStatus, choice models.PropertyTaxChoice) models.JurisdictionResult {
	w := &work{
		in:     &in,
		r:      sr,
		status: status,
		choice: choice,
		res: models.JurisdictionResult{
			Code:             sr.Code,
			Name:             sr.Name,
			Year:             sr.EffectiveYear,
			StateWithheld:    in.StateWithheld,
			StateEstPayments: in.StateEstimatedPayments,
			Notes:            append([]string{}, sr.Notes...),
		},
	}
	if err := w.stateAGI(); err != nil {
		return rejected(sr, "State AGI cannot be computed: %v.", err)
	}
	w.deductions()
	w.taxableIncome()
	w.tax()
	w.credits()
	w.localTax()
	w.totals()
	return w.res
}

func (w *work) note(format string, args ...any) {
	w.res.Notes = append(w.res.Notes, fmt.Sprintf(format, args...))
}

func (w *work) joint() bool {
	return w.status == models.MarriedJointly
}

// filers counts the taxpayer and, on a joint return, the spouse.
func (w *work) filers() int {
	if w.joint() {
		return 2
	}
	return 1
}

// atOrAbove counts filers at or above age.
func (w *work) atOrAbove(age int) int {
	n := 0
	if w.in.TaxpayerAge >= age {
		n++
	}
	if w.joint() && w.in.SpouseAge >= age {
		n++
	}
	return n
}

func (w *work) stateAGI() error {
	fed := w.in.Federal
	agi := fed.AGI
	if w.r.StartingPoint == rules.StartFederalTaxable {
		agi = fed.TaxableIncome
	}
	agi, err := money.Add(agi, w.in.Additions)
	if err != nil {
		return err
	}
	if agi, err = money.Sub(agi, w.in.Subtractions); err != nil {
		return err
	}

	if w.r.ExemptSocialSecurity && fed.Income.TaxableSocialSecurity > 0 {
		if agi, err = money.Sub(agi, fed.Income.TaxableSocialSecurity); err != nil {
			return err
		}
	}
	if ex := w.retirementExclusion(); ex > 0 {
		if agi, err = money.Sub(agi, ex); err != nil {
			return err
		}
		w.note("Retirement income exclusion of %s applied.", ex)
	}
	w.res.StateAGI = agi
	return nil
}

func (w *work) retirementExclusion() money.Cents {
	re := w.r.RetirementExclusion
	dist := w.in.Federal.Income.RetirementDistributions
	if re == nil || dist <= 0 {
		return 0
	}
	eligible := w.atOrAbove(re.MinAge)
	if eligible == 0 {
		return 0
	}
	if re.MaxPerPerson == 0 {
		return dist
	}
	return money.Min(dist, money.Cents(eligible)*re.MaxPerPerson)
}

func (w *work) deductions() {
	r := w.r
	agi := w.res.StateAGI

	deduction := r.Deduction(w.status)
	if r.DeductionPhaseout != nil {
		deduction = phase(deduction, agi, r.DeductionPhaseout, w.status)
	}
	if ad := r.AgeDeduction; ad != nil {
		extra := money.Cents(w.atOrAbove(ad.MinAge)) * ad.Amount
		if ad.Phaseout != nil {
			extra = phase(extra, agi, ad.Phaseout, w.status)
		}
		deduction += extra
	}
	if w.propertyDeduction() {
		d := money.Min(w.in.PropertyTaxPaid, r.PropertyTax.DeductionMax)
		deduction += d
		w.note("Property tax deduction of %s taken.", d)
	}
	w.res.StateDeduction = deduction

	exemptions := money.Cents(w.filers())*r.PersonalExemption +
		money.Cents(w.in.Dependents)*r.DependentExemption +
		money.Cents(w.atOrAbove(agedExemptionAge))*r.AgeExemption
	if r.ExemptionPhaseout != nil {
		exemptions = phase(exemptions, agi, r.ExemptionPhaseout, w.status)
	}
	w.res.StateExemptions = exemptions
}

func (w *work) taxableIncome() {
	w.res.StateTaxableIncome = money.SubFloor(w.res.StateAGI, w.res.StateDeduction+w.res.StateExemptions)
}

func topRate(sr *rules.StateRules) float64 {
	var top float64
	switch sr.TaxType {
	case rules.TaxFlat:
		top = sr.FlatRate
	case rules.TaxProgressive:
		for _, status := range models.FilingStatuses {
			top = math.Max(top, sr.Brackets.Get(status).TopRate())
		}
	}
	if sr.Surtax != nil {
		top += sr.Surtax.Rate
	}
	return top
}

// applier picks flat or schedule taxation from the table.
func applier(r *rules.StateRules, status models.FilingStatus) processors.TaxApplier {
	if r.TaxType == rules.TaxFlat {
		a := processors.FlatApplier{Rate: r.FlatRate}
		if r.Surtax != nil {
			a.SurtaxThreshold, a.SurtaxRate = r.Surtax.Threshold, r.Surtax.Rate
		}
		return a
	}
	return processors.ScheduleApplier{Schedule: r.Brackets.Get(status)}
}

func (w *work) tax() {
	taxable := w.res.StateTaxableIncome
	tax := applier(w.r, w.status).Apply(taxable)
	if s := w.r.Surtax; s != nil && w.r.TaxType == rules.TaxProgressive && taxable > s.Threshold {
		tax += money.MulRate(taxable-s.Threshold, s.Rate)
	}
	w.taxBeforeCredits = tax
}

// credits splits jurisdiction credits into the part limited to tax and the part that
// can be refunded.
func (w *work) credits() {
	r := w.r
	var nonRefundable, refundable money.Cents

	if ec := r.ExemptionCredits; ec != nil {
		amount := money.Cents(w.filers())*ec.Personal + money.Cents(w.in.Dependents)*ec.Dependent
		if ec.Phaseout != nil {
			amount = phase(amount, w.res.StateAGI, ec.Phaseout, w.status)
		}
		nonRefundable += amount
	}

	if fed := w.in.Federal.Credits.EarnedIncome; r.EITC.Percent > 0 && fed > 0 {
		eitc := money.MulRate(fed, r.EITC.Percent)
		if r.EITC.Refundable {
			refundable += eitc
		} else {
			nonRefundable += eitc
		}
	}

	if credit := w.propertyCredit(); credit > 0 {
		if r.PropertyTax.CreditRefundable {
			refundable += credit
		} else {
			nonRefundable += credit
		}
		w.note("Property tax credit of %s allowed.", credit)
	}

	w.res.StateCredits = models.StateCredits{
		NonRefundable: money.Min(nonRefundable, w.taxBeforeCredits),
		Refundable:    refundable,
	}
	w.res.StateTax = w.taxBeforeCredits
}

func (w *work) propertyEligibleFor(agi money.Cents) bool {
	p := w.r.PropertyTax
	if p == nil || w.in.PropertyTaxPaid <= 0 {
		return false
	}
	limit := p.AGILimit.Get(w.status)
	return limit == 0 || agi <= limit
}

func (w *work) propertyDeduction() bool {
	p := w.r.PropertyTax
	if p == nil || p.DeductionMax == 0 || !w.propertyEligibleFor(w.res.StateAGI) {
		return false
	}
	return w.choice == models.PropertyTaxDeduction || (w.choice == models.PropertyTaxAuto && p.CreditRate == 0 && p.CreditFlat == 0)
}

func (w *work) propertyCredit() money.Cents {
	p := w.r.PropertyTax
	if p == nil || w.choice == models.PropertyTaxDeduction || !w.propertyEligibleFor(w.res.StateAGI) {
		return 0
	}
	if p.CreditFlat > 0 {
		return p.CreditFlat
	}
	if p.CreditRate == 0 {
		return 0
	}
	base := money.SubFloor(w.in.PropertyTaxPaid, money.MulRate(w.res.StateAGI.Positive(), p.CreditFloorRate))
	credit := money.MulRate(base, p.CreditRate)
	if p.CreditMax > 0 {
		credit = money.Min(credit, p.CreditMax)
	}
	return credit
}

// localTax levies the county or city tax selected by the local code.
func (w *work) localTax() {
	code := normalizeCode(w.in.LocalCode)
	if code == "" {
		return
	}
	loc, ok := w.r.Locality(code)
	if !ok {
		w.note("Local code %s has no local income tax in %s.", code, w.r.Name)
		return
	}

	var base money.Cents
	switch loc.Base {
	case rules.LocalOnStateAGI:
		base = w.res.StateAGI.Positive()
	case rules.LocalOnStateTax:
		base = w.res.StateTax - w.res.StateCredits.NonRefundable
	default:
		base = w.res.StateTaxableIncome
	}

	if loc.Brackets != nil {
		w.res.LocalTax = processors.BracketTax(base, loc.Brackets.Get(w.status))
	} else {
		w.res.LocalTax = money.MulRate(base, loc.Rate)
	}
	w.note("%s local tax of %s.", loc.Name, w.res.LocalTax)
}

func (w *work) totals() {
	res := &w.res
	res.TotalStateLiability = money.SubFloor(res.StateTax+res.LocalTax, res.StateCredits.NonRefundable)
	payments := res.StateWithheld + res.StateEstPayments + w.in.LocalWithheld
	res.StateRefundOrOwe = payments + res.StateCredits.Refundable - res.TotalStateLiability
	if res.StateAGI > 0 {
		res.EffectiveRate = math.Round(float64(res.TotalStateLiability)/float64(res.StateAGI)*10000) / 10000
	}
}

// phase applies a jurisdiction phase-out to amount.
func phase(amount, income money.Cents, p *rules.Phaseout, status models.FilingStatus) money.Cents {
	return money.PhaseDown(amount, income, p.Start.Get(status), p.Range.Get(status))
}

// Package validation checks rule tables before they are registered and taxpayer input
// before it reaches any arithmetic.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

// ErrValidationFailed matches every *InputValidationError with errors.Is.
var ErrValidationFailed = errors.New("input validation failed")

const maxAge = 130

// FieldError is one problem with one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InputValidationError carries every field problem found in one input, not just the first.
type InputValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *InputValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("input validation failed (%d problem(s)): %s", len(e.Fields), strings.Join(parts, "; "))
}

func (e *InputValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Diagnostics renders the field problems as error diagnostics.
func (e *InputValidationError) Diagnostics() []models.Diagnostic {
	out := make([]models.Diagnostic, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = models.Diagnostic{
			Code:     "FED-E-001",
			Severity: models.SeverityError,
			Phase:    models.PhaseInputValidation,
			Field:    f.Field,
			Message:  f.Message,
		}
	}
	return out
}

type collector struct {
	fields []FieldError
}

func (c *collector) add(field, format string, args ...any) {
	c.fields = append(c.fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &InputValidationError{Fields: c.fields}
}

type amountField struct {
	name  string
	value money.Cents
}

// amounts checks range and sign. Loss-eligible fields may be negative.
func (c *collector) amounts(prefix string, allowNegative bool, fields ...amountField) {
	for _, f := range fields {
		name := prefix + "." + f.name
		if !f.value.InRange() {
			c.add(name, "amount %s is outside the supported range of ±%s", f.value, money.MaxAmount)
			continue
		}
		if !allowNegative && f.value < 0 {
			c.add(name, "amount %s must not be negative", f.value)
		}
	}
}

func (c *collector) age(field string, age int) {
	if age < 0 || age > maxAge {
		c.add(field, "age %d is outside 0-%d", age, maxAge)
	}
}

// ValidateFederalInput checks the structure of a federal input and returns an
// *InputValidationError listing every problem, or nil.
func ValidateFederalInput(in *models.FederalInput) error {
	c := &collector{}
	if in == nil {
		c.add("input", "input is required")
		return c.err()
	}

	if !in.FilingStatus.Valid() {
		c.add("filing_status", "must be one of single, married_jointly, married_separately, head_of_household")
	}
	c.age("taxpayer.age", in.Taxpayer.Age)
	if in.Spouse != nil {
		c.age("spouse.age", in.Spouse.Age)
		if in.FilingStatus.Valid() && !in.FilingStatus.Married() {
			c.add("spouse", "spouse given for a %s return", in.FilingStatus)
		}
	}
	if in.SpouseItemizes && in.FilingStatus != models.MarriedSeparately {
		c.add("spouse_itemizes", "only applies to married filing separately")
	}

	for i, d := range in.Dependents {
		prefix := fmt.Sprintf("dependents[%d]", i)
		c.age(prefix+".age", d.Age)
		if d.MonthsLived < 0 || d.MonthsLived > 12 {
			c.add(prefix+".months_lived", "must be between 0 and 12, got %d", d.MonthsLived)
		}
	}

	inc := in.Income
	c.amounts("income", false,
		amountField{"wages", inc.Wages},
		amountField{"taxable_interest", inc.TaxableInterest},
		amountField{"tax_exempt_interest", inc.TaxExemptInterest},
		amountField{"ordinary_dividends", inc.OrdinaryDividends},
		amountField{"qualified_dividends", inc.QualifiedDividends},
		amountField{"capital_loss_carryover", inc.CapitalLossCarryover},
		amountField{"unemployment", inc.Unemployment},
		amountField{"retirement_distributions", inc.RetirementDistributions},
		amountField{"social_security_benefits", inc.SocialSecurityBenefits},
	)
	c.amounts("income", true,
		amountField{"short_term_capital_gain", inc.ShortTermCapitalGain},
		amountField{"long_term_capital_gain", inc.LongTermCapitalGain},
		amountField{"business_income", inc.BusinessIncome},
		amountField{"rental_income", inc.RentalIncome},
		amountField{"other_income", inc.OtherIncome},
	)
	if inc.QualifiedDividends > inc.OrdinaryDividends {
		c.add("income.qualified_dividends", "qualified dividends %s exceed ordinary dividends %s", inc.QualifiedDividends, inc.OrdinaryDividends)
	}

	adj := in.Adjustments
	c.amounts("adjustments", false,
		amountField{"educator_expenses", adj.EducatorExpenses},
		amountField{"hsa_deduction", adj.HSADeduction},
		amountField{"ira_deduction", adj.IRADeduction},
		amountField{"self_employed_retirement", adj.SelfEmployedRetirement},
		amountField{"self_employed_health_insurance", adj.SelfEmployedHealthInsurance},
		amountField{"student_loan_interest", adj.StudentLoanInterest},
		amountField{"early_withdrawal_penalty", adj.EarlyWithdrawalPenalty},
		amountField{"alimony_paid", adj.AlimonyPaid},
	)

	it := in.Itemized
	c.amounts("itemized", false,
		amountField{"medical_expenses", it.MedicalExpenses},
		amountField{"state_local_income_tax", it.StateLocalIncomeTax},
		amountField{"general_sales_tax", it.GeneralSalesTax},
		amountField{"real_estate_tax", it.RealEstateTax},
		amountField{"personal_property_tax", it.PersonalPropertyTax},
		amountField{"mortgage_interest", it.MortgageInterest},
		amountField{"charitable", it.Charitable},
		amountField{"casualty_loss", it.CasualtyLoss},
		amountField{"other", it.Other},
	)

	c.amounts("business", true, amountField{"qualified_business_income", in.Business.QualifiedBusinessIncome})
	c.amounts("business", false,
		amountField{"w2_wages", in.Business.W2Wages},
		amountField{"ubia", in.Business.UBIA},
	)
	c.amounts("amt", true,
		amountField{"iso_bargain_element", in.AMT.ISOBargainElement},
		amountField{"private_activity_bond_interest", in.AMT.PrivateActivityBondInterest},
		amountField{"other", in.AMT.Other},
	)
	c.amounts("input", false,
		amountField{"nol_carryforward", in.NOLCarryforward},
		amountField{"retirement_contributions", in.RetirementContributions},
		amountField{"spouse_retirement_contributions", in.SpouseRetirementContrib},
	)

	for i, s := range in.Students {
		c.amounts(fmt.Sprintf("students[%d]", i), false, amountField{"qualified_expenses", s.QualifiedExpenses})
	}
	for i, f := range in.ForeignIncome {
		prefix := fmt.Sprintf("foreign_income[%d]", i)
		c.amounts(prefix, false,
			amountField{"income", f.Income},
			amountField{"tax_paid", f.TaxPaid},
		)
	}
	if p := in.PremiumCredit; p != nil {
		if p.HouseholdSize < 1 || p.HouseholdSize > 20 {
			c.add("premium_credit.household_size", "must be between 1 and 20, got %d", p.HouseholdSize)
		}
		c.amounts("premium_credit", false,
			amountField{"annual_premium", p.AnnualPremium},
			amountField{"annual_slcsp", p.AnnualSLCSP},
			amountField{"advance_payments", p.AdvancePayments},
		)
	}

	pay := in.Payments
	c.amounts("payments", false,
		amountField{"withholding", pay.Withholding},
		amountField{"estimated_payments", pay.EstimatedPayments},
		amountField{"extension_payment", pay.ExtensionPayment},
		amountField{"excess_social_security", pay.ExcessSocialSecurity},
	)

	return c.err()
}

// ValidateJurisdictionInput checks the jurisdiction-specific facts and the federal amounts
// the calculators read. The federal result may come from a caller rather than the federal
// pipeline, so it is range-checked like any other input.
func ValidateJurisdictionInput(in *models.JurisdictionTaxInput) error {
	c := &collector{}
	if in == nil {
		c.add("input", "input is required")
		return c.err()
	}
	if !in.FilingStatus.Valid() {
		c.add("filing_status", "must be one of single, married_jointly, married_separately, head_of_household")
	}
	c.age("taxpayer_age", in.TaxpayerAge)
	c.age("spouse_age", in.SpouseAge)
	if in.Dependents < 0 {
		c.add("dependents", "must not be negative, got %d", in.Dependents)
	}
	if in.LocalCode != StripUnprintable(in.LocalCode) {
		c.add("local_code", "contains unprintable characters")
	}
	switch in.PropertyTaxChoice {
	case models.PropertyTaxAuto, models.PropertyTaxCredit, models.PropertyTaxDeduction:
	default:
		c.add("property_tax_choice", "must be credit, deduction, or empty, got %q", in.PropertyTaxChoice)
	}
	c.amounts("input", false,
		amountField{"additions", in.Additions},
		amountField{"subtractions", in.Subtractions},
		amountField{"property_tax_paid", in.PropertyTaxPaid},
		amountField{"state_withheld", in.StateWithheld},
		amountField{"state_estimated_payments", in.StateEstimatedPayments},
		amountField{"local_withheld", in.LocalWithheld},
	)
	fed := &in.Federal
	c.amounts("federal", true,
		amountField{"agi", fed.AGI},
	)
	c.amounts("federal", false,
		amountField{"taxable_income", fed.TaxableIncome},
		amountField{"income.taxable_social_security", fed.Income.TaxableSocialSecurity},
		amountField{"income.retirement_distributions", fed.Income.RetirementDistributions},
		amountField{"credits.earned_income", fed.Credits.EarnedIncome},
	)
	return c.err()
}

package models

import "github.com/username/ustax/src/money"

// PropertyTaxChoice is the taxpayer's election where a jurisdiction offers either a
// property-tax credit or a property-tax deduction, never both.
type PropertyTaxChoice string

const (
	PropertyTaxAuto      PropertyTaxChoice = ""
	PropertyTaxCredit    PropertyTaxChoice = "credit"
	PropertyTaxDeduction PropertyTaxChoice = "deduction"
)

// JurisdictionTaxInput wraps the federal outcome with the jurisdiction-specific facts.
// Federal is a copy; calculators read it and never write back.
type JurisdictionTaxInput struct {
	Federal      FederalResult `json:"federal"`
	FilingStatus FilingStatus  `json:"filing_status"`
	LocalCode    string        `json:"local_code,omitempty"` // county / city code

	Additions    money.Cents `json:"additions"`
	Subtractions money.Cents `json:"subtractions"`

	TaxpayerAge int `json:"taxpayer_age"`
	SpouseAge   int `json:"spouse_age"`
	Dependents  int `json:"dependents"`

	PropertyTaxPaid   money.Cents       `json:"property_tax_paid"`
	PropertyTaxChoice PropertyTaxChoice `json:"property_tax_choice"`

	StateWithheld          money.Cents `json:"state_withheld"`
	StateEstimatedPayments money.Cents `json:"state_estimated_payments"`
	LocalWithheld          money.Cents `json:"local_withheld"`
}

// StateCredits splits credits by whether they can create a refund.
type StateCredits struct {
	NonRefundable money.Cents `json:"non_refundable"`
	Refundable    money.Cents `json:"refundable"`
}

// JurisdictionResult is the computed state and local outcome.
type JurisdictionResult struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Year int    `json:"year"`

	StateAGI            money.Cents  `json:"state_agi"`
	StateDeduction      money.Cents  `json:"state_deduction"`
	StateExemptions     money.Cents  `json:"state_exemptions"`
	StateTaxableIncome  money.Cents  `json:"state_taxable_income"`
	StateTax            money.Cents  `json:"state_tax"`
	LocalTax            money.Cents  `json:"local_tax"`
	StateCredits        StateCredits `json:"state_credits"`
	TotalStateLiability money.Cents  `json:"total_state_liability"`

	StateWithheld    money.Cents `json:"state_withheld"`
	StateEstPayments money.Cents `json:"state_est_payments"`
	StateRefundOrOwe money.Cents `json:"state_refund_or_owe"` // positive is a refund

	EffectiveRate float64  `json:"effective_rate"`
	Notes         []string `json:"notes"`
}

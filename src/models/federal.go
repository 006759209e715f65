package models

import "github.com/username/ustax/src/money"

// Person carries the per-person facts that change deductions and credit eligibility.
type Person struct {
	Age   int  `json:"age"`
	Blind bool `json:"blind"`
}

// Dependent is a person claimed on the return.
type Dependent struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Student     bool   `json:"student"`      // full-time student, extends EITC age limit to 24
	Disabled    bool   `json:"disabled"`     // permanently disabled, no EITC age limit
	MonthsLived int    `json:"months_lived"` // months lived with the taxpayer during the year
}

// Income is the income composite. Fields that can carry a loss say so.
type Income struct {
	Wages                   money.Cents `json:"wages"`
	TaxableInterest         money.Cents `json:"taxable_interest"`
	TaxExemptInterest       money.Cents `json:"tax_exempt_interest"`
	OrdinaryDividends       money.Cents `json:"ordinary_dividends"`
	QualifiedDividends      money.Cents `json:"qualified_dividends"`     // subset of ordinary dividends
	ShortTermCapitalGain    money.Cents `json:"short_term_capital_gain"` // net, may be negative
	LongTermCapitalGain     money.Cents `json:"long_term_capital_gain"`  // net, may be negative
	CapitalLossCarryover    money.Cents `json:"capital_loss_carryover"`  // positive amount carried in
	BusinessIncome          money.Cents `json:"business_income"`         // Schedule C net profit, may be negative
	RentalIncome            money.Cents `json:"rental_income"`           // may be negative
	Unemployment            money.Cents `json:"unemployment"`
	RetirementDistributions money.Cents `json:"retirement_distributions"` // taxable IRA/pension amounts
	SocialSecurityBenefits  money.Cents `json:"social_security_benefits"` // gross benefits
	OtherIncome             money.Cents `json:"other_income"`
}

// Adjustments are the above-the-line deductions the taxpayer supplies. Half of
// self-employment tax is computed, not supplied.
type Adjustments struct {
	EducatorExpenses            money.Cents `json:"educator_expenses"`
	HSADeduction                money.Cents `json:"hsa_deduction"`
	IRADeduction                money.Cents `json:"ira_deduction"`
	SelfEmployedRetirement      money.Cents `json:"self_employed_retirement"`
	SelfEmployedHealthInsurance money.Cents `json:"self_employed_health_insurance"`
	StudentLoanInterest         money.Cents `json:"student_loan_interest"`
	EarlyWithdrawalPenalty      money.Cents `json:"early_withdrawal_penalty"`
	AlimonyPaid                 money.Cents `json:"alimony_paid"`
}

// ItemizedDeductions are Schedule A components before limits.
type ItemizedDeductions struct {
	MedicalExpenses     money.Cents `json:"medical_expenses"`
	StateLocalIncomeTax money.Cents `json:"state_local_income_tax"`
	GeneralSalesTax     money.Cents `json:"general_sales_tax"` // used instead of income tax when larger
	RealEstateTax       money.Cents `json:"real_estate_tax"`
	PersonalPropertyTax money.Cents `json:"personal_property_tax"`
	MortgageInterest    money.Cents `json:"mortgage_interest"`
	Charitable          money.Cents `json:"charitable"`
	CasualtyLoss        money.Cents `json:"casualty_loss"`
	Other               money.Cents `json:"other"`
}

// QualifiedBusiness feeds the qualified business income deduction.
type QualifiedBusiness struct {
	QualifiedBusinessIncome money.Cents `json:"qualified_business_income"`
	W2Wages                 money.Cents `json:"w2_wages"`
	UBIA                    money.Cents `json:"ubia"` // unadjusted basis of qualified property
}

// Student is one education-credit claim.
type Student struct {
	Name              string      `json:"name"`
	QualifiedExpenses money.Cents `json:"qualified_expenses"`
	AOTCEligible      bool        `json:"aotc_eligible"` // first four years of post-secondary
}

// ForeignIncomeSource is income earned abroad and the foreign tax paid on it.
type ForeignIncomeSource struct {
	Country string      `json:"country"`
	Income  money.Cents `json:"income"`
	TaxPaid money.Cents `json:"tax_paid"`
}

// PremiumCreditReconciliation is the Form 8962 data for marketplace coverage.
type PremiumCreditReconciliation struct {
	HouseholdSize   int         `json:"household_size"`
	AnnualPremium   money.Cents `json:"annual_premium"`
	AnnualSLCSP     money.Cents `json:"annual_slcsp"` // second lowest cost silver plan
	AdvancePayments money.Cents `json:"advance_payments"`
}

// AMTAdjustments are preference items added back for the minimum-tax track.
type AMTAdjustments struct {
	ISOBargainElement           money.Cents `json:"iso_bargain_element"`
	PrivateActivityBondInterest money.Cents `json:"private_activity_bond_interest"`
	Other                       money.Cents `json:"other"`
}

// Payments are amounts already paid toward the year's tax.
type Payments struct {
	Withholding          money.Cents `json:"withholding"`
	EstimatedPayments    money.Cents `json:"estimated_payments"`
	ExtensionPayment     money.Cents `json:"extension_payment"`
	ExcessSocialSecurity money.Cents `json:"excess_social_security"`
}

// FederalInput is the taxpayer's facts for one year. All money fields are cents.
type FederalInput struct {
	FilingStatus       FilingStatus `json:"filing_status"`
	Taxpayer           Person       `json:"taxpayer"`
	Spouse             *Person      `json:"spouse,omitempty"`
	ClaimedAsDependent bool         `json:"claimed_as_dependent"`
	SpouseItemizes     bool         `json:"spouse_itemizes"` // married separately only
	Dependents         []Dependent  `json:"dependents,omitempty"`

	Income      Income             `json:"income"`
	Adjustments Adjustments        `json:"adjustments"`
	Itemized    ItemizedDeductions `json:"itemized"`
	Business    QualifiedBusiness  `json:"business"`
	AMT         AMTAdjustments     `json:"amt"`

	NOLCarryforward         money.Cents                  `json:"nol_carryforward"`
	Students                []Student                    `json:"students,omitempty"`
	RetirementContributions money.Cents                  `json:"retirement_contributions"`        // taxpayer, saver's credit
	SpouseRetirementContrib money.Cents                  `json:"spouse_retirement_contributions"` // spouse, saver's credit
	ForeignIncome           []ForeignIncomeSource        `json:"foreign_income,omitempty"`
	PremiumCredit           *PremiumCreditReconciliation `json:"premium_credit,omitempty"`
	Payments                Payments                     `json:"payments"`
}

// DeductionType records which deduction the pipeline used.
type DeductionType string

const (
	DeductionStandard DeductionType = "standard"
	DeductionItemized DeductionType = "itemized"
)

// IncomeSummary is the aggregated income the rest of the pipeline and the jurisdiction
// calculators work from.
type IncomeSummary struct {
	Wages                   money.Cents `json:"wages"`
	TaxableInterest         money.Cents `json:"taxable_interest"`
	TaxExemptInterest       money.Cents `json:"tax_exempt_interest"`
	OrdinaryDividends       money.Cents `json:"ordinary_dividends"`
	QualifiedDividends      money.Cents `json:"qualified_dividends"`
	NetCapitalGain          money.Cents `json:"net_capital_gain"` // after the loss limit, may be negative
	NetLongTermGain         money.Cents `json:"net_long_term_gain"`
	CapitalLossCarryforward money.Cents `json:"capital_loss_carryforward"`
	BusinessIncome          money.Cents `json:"business_income"`
	RentalIncome            money.Cents `json:"rental_income"`
	Unemployment            money.Cents `json:"unemployment"`
	RetirementDistributions money.Cents `json:"retirement_distributions"`
	TaxableSocialSecurity   money.Cents `json:"taxable_social_security"`
	OtherIncome             money.Cents `json:"other_income"`
	TotalIncome             money.Cents `json:"total_income"`
	EarnedIncome            money.Cents `json:"earned_income"`
	InvestmentIncome        money.Cents `json:"investment_income"`
}

// AdjustmentSummary are the allowed above-the-line deductions.
type AdjustmentSummary struct {
	HalfSETax                   money.Cents `json:"half_se_tax"`
	EducatorExpenses            money.Cents `json:"educator_expenses"`
	HSADeduction                money.Cents `json:"hsa_deduction"`
	IRADeduction                money.Cents `json:"ira_deduction"`
	SelfEmployedRetirement      money.Cents `json:"self_employed_retirement"`
	SelfEmployedHealthInsurance money.Cents `json:"self_employed_health_insurance"`
	StudentLoanInterest         money.Cents `json:"student_loan_interest"`
	EarlyWithdrawalPenalty      money.Cents `json:"early_withdrawal_penalty"`
	AlimonyPaid                 money.Cents `json:"alimony_paid"`
	Total                       money.Cents `json:"total"`
}

// ItemizedSummary are the Schedule A amounts after limits.
type ItemizedSummary struct {
	Medical          money.Cents `json:"medical"`
	SALTClaimed      money.Cents `json:"salt_claimed"` // before the cap
	SALT             money.Cents `json:"salt"`         // after the cap
	MortgageInterest money.Cents `json:"mortgage_interest"`
	Charitable       money.Cents `json:"charitable"`
	CasualtyLoss     money.Cents `json:"casualty_loss"`
	Other            money.Cents `json:"other"`
	Total            money.Cents `json:"total"`
}

// PreferentialBreakdown is the 0/15/20 split of qualified dividends and long-term gain.
type PreferentialBreakdown struct {
	Preferential money.Cents `json:"preferential"`
	AtZero       money.Cents `json:"at_zero"`
	AtFifteen    money.Cents `json:"at_fifteen"`
	AtTwenty     money.Cents `json:"at_twenty"`
	Tax          money.Cents `json:"tax"`
}

// AdditionalTaxes are computed independently of regular income tax and added to it.
type AdditionalTaxes struct {
	SETax               money.Cents `json:"se_tax"`
	NIIT                money.Cents `json:"niit"`
	MedicareSurtax      money.Cents `json:"medicare_surtax"`
	AMT                 money.Cents `json:"amt"`
	ExcessAPTCRepayment money.Cents `json:"excess_aptc_repayment"`
}

// Credits lists each credit actually allowed, after caps.
type Credits struct {
	ForeignTax          money.Cents `json:"foreign_tax"`
	EducationNonrefund  money.Cents `json:"education_nonrefundable"`
	Savers              money.Cents `json:"savers"`
	ChildTax            money.Cents `json:"child_tax"`
	OtherDependent      money.Cents `json:"other_dependent"`
	TotalNonrefundable  money.Cents `json:"total_nonrefundable"`
	EarnedIncome        money.Cents `json:"earned_income"`
	AdditionalChildTax  money.Cents `json:"additional_child_tax"`
	EducationRefundable money.Cents `json:"education_refundable"`
	NetPremiumTaxCredit money.Cents `json:"net_premium_tax_credit"`
	TotalRefundable     money.Cents `json:"total_refundable"`
}

// FederalResult is the computed federal outcome. It is a value: nothing mutates it after
// the pipeline returns it.
type FederalResult struct {
	Year         int          `json:"year"`
	FilingStatus FilingStatus `json:"filing_status"`

	Income      IncomeSummary     `json:"income"`
	Adjustments AdjustmentSummary `json:"adjustments"`
	AGI         money.Cents       `json:"agi"`

	StandardDeduction money.Cents     `json:"standard_deduction"`
	ItemizedDeduction money.Cents     `json:"itemized_deduction"`
	Itemized          ItemizedSummary `json:"itemized"`
	DeductionType     DeductionType   `json:"deduction_type"`
	Deduction         money.Cents     `json:"deduction"`
	QBIDeduction      money.Cents     `json:"qbi_deduction"`
	NOLDeduction      money.Cents     `json:"nol_deduction"`
	TaxableIncome     money.Cents     `json:"taxable_income"`

	OrdinaryTax      money.Cents           `json:"ordinary_tax"`
	Preferential     PreferentialBreakdown `json:"preferential"`
	TaxBeforeCredits money.Cents           `json:"tax_before_credits"`
	AdditionalTaxes  AdditionalTaxes       `json:"additional_taxes"`
	Credits          Credits               `json:"credits"`

	TotalTax      money.Cents `json:"total_tax"`
	TotalPayments money.Cents `json:"total_payments"`
	RefundOrOwe   money.Cents `json:"refund_or_owe"` // positive is a refund, negative is owed

	MarginalRate  float64 `json:"marginal_rate"`
	EffectiveRate float64 `json:"effective_rate"`

	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Package rules holds the per-year tax parameter tables.
//
// A YearRules value is built once (from the Go tables in this package or from a YAML
// file) and is read-only afterwards; the pipeline and every jurisdiction calculator share
// it without locking. A new year is a new YearRules, never an edit to an existing one.
package rules

import (
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

type (
	Cents     = money.Cents
	Schedule  = models.Schedule
	CentsBy   = models.PerStatus[money.Cents]
	Schedules = models.PerStatus[models.Schedule]
)

// YearRules is the complete rule set for one tax year.
type YearRules struct {
	Year    int                    `yaml:"year" json:"year"`
	Federal FederalRules           `yaml:"federal" json:"federal"`
	States  map[string]*StateRules `yaml:"states" json:"states"`
}

// FederalRules are the year's published federal parameters.
type FederalRules struct {
	Brackets               Schedules `yaml:"brackets" json:"brackets"`
	StandardDeduction      CentsBy   `yaml:"standard_deduction" json:"standard_deduction"`
	AdditionalAgedOrBlind  CentsBy   `yaml:"additional_aged_or_blind" json:"additional_aged_or_blind"`
	DependentStdMinimum    Cents     `yaml:"dependent_std_minimum" json:"dependent_std_minimum"`
	DependentEarnedAddOn   Cents     `yaml:"dependent_earned_add_on" json:"dependent_earned_add_on"`
	SALTCap                CentsBy   `yaml:"salt_cap" json:"salt_cap"`
	MedicalFloorRate       float64   `yaml:"medical_floor_rate" json:"medical_floor_rate"`
	CharitableAGILimitRate float64   `yaml:"charitable_agi_limit_rate" json:"charitable_agi_limit_rate"`
	CapitalLossLimit       CentsBy   `yaml:"capital_loss_limit" json:"capital_loss_limit"`
	EducatorExpenseMax     Cents     `yaml:"educator_expense_max" json:"educator_expense_max"`
	NOLLimitRate           float64   `yaml:"nol_limit_rate" json:"nol_limit_rate"`

	CapitalGains       CapitalGainRules    `yaml:"capital_gains" json:"capital_gains"`
	SocialSecurity     SocialSecurityRules `yaml:"social_security" json:"social_security"`
	StudentLoan        PhaseoutLimit       `yaml:"student_loan" json:"student_loan"`
	SelfEmployment     SelfEmploymentRules `yaml:"self_employment" json:"self_employment"`
	AdditionalMedicare ThresholdRate       `yaml:"additional_medicare" json:"additional_medicare"`
	NIIT               ThresholdRate       `yaml:"niit" json:"niit"`
	AMT                AMTRules            `yaml:"amt" json:"amt"`
	QBI                QBIRules            `yaml:"qbi" json:"qbi"`
	ChildTaxCredit     ChildTaxCreditRules `yaml:"child_tax_credit" json:"child_tax_credit"`
	EITC               EITCRules           `yaml:"eitc" json:"eitc"`
	Education          EducationRules      `yaml:"education" json:"education"`
	Savers             SaversRules         `yaml:"savers" json:"savers"`
	ForeignTax         ForeignTaxRules     `yaml:"foreign_tax" json:"foreign_tax"`
	PremiumCredit      PremiumCreditRules  `yaml:"premium_credit" json:"premium_credit"`
}

type CapitalGainRules struct {
	ZeroCeiling    CentsBy `yaml:"zero_ceiling" json:"zero_ceiling"`
	FifteenCeiling CentsBy `yaml:"fifteen_ceiling" json:"fifteen_ceiling"`
}

// SocialSecurityRules are the taxable-benefits worksheet thresholds.
type SocialSecurityRules struct {
	BaseAmount   CentsBy `yaml:"base_amount" json:"base_amount"`
	AdjustedBase CentsBy `yaml:"adjusted_base" json:"adjusted_base"`
	LowerRate    float64 `yaml:"lower_rate" json:"lower_rate"`
	UpperRate    float64 `yaml:"upper_rate" json:"upper_rate"`
}

// PhaseoutLimit is a capped amount reduced linearly to zero over a MAGI range.
type PhaseoutLimit struct {
	Max   Cents   `yaml:"max" json:"max"`
	Start CentsBy `yaml:"start" json:"start"`
	Range CentsBy `yaml:"range" json:"range"`
}

type SelfEmploymentRules struct {
	NetEarningsFactor  float64 `yaml:"net_earnings_factor" json:"net_earnings_factor"`
	SocialSecurityRate float64 `yaml:"social_security_rate" json:"social_security_rate"`
	MedicareRate       float64 `yaml:"medicare_rate" json:"medicare_rate"`
	WageBase           Cents   `yaml:"wage_base" json:"wage_base"`
	MinimumNetEarnings Cents   `yaml:"minimum_net_earnings" json:"minimum_net_earnings"`
}

type ThresholdRate struct {
	Rate      float64 `yaml:"rate" json:"rate"`
	Threshold CentsBy `yaml:"threshold" json:"threshold"`
}

type AMTRules struct {
	Exemption     CentsBy `yaml:"exemption" json:"exemption"`
	PhaseoutStart CentsBy `yaml:"phaseout_start" json:"phaseout_start"`
	PhaseoutRate  float64 `yaml:"phaseout_rate" json:"phaseout_rate"`
	LowRate       float64 `yaml:"low_rate" json:"low_rate"`
	HighRate      float64 `yaml:"high_rate" json:"high_rate"`
	Breakpoint    CentsBy `yaml:"breakpoint" json:"breakpoint"`
}

type QBIRules struct {
	Rate         float64 `yaml:"rate" json:"rate"`
	Threshold    CentsBy `yaml:"threshold" json:"threshold"`
	PhaseInRange CentsBy `yaml:"phase_in_range" json:"phase_in_range"`
}

type ChildTaxCreditRules struct {
	PerChild          Cents   `yaml:"per_child" json:"per_child"`
	OtherDependent    Cents   `yaml:"other_dependent" json:"other_dependent"`
	MaxChildAge       int     `yaml:"max_child_age" json:"max_child_age"`
	RefundableMax     Cents   `yaml:"refundable_max" json:"refundable_max"`
	RefundableRate    float64 `yaml:"refundable_rate" json:"refundable_rate"`
	EarnedIncomeFloor Cents   `yaml:"earned_income_floor" json:"earned_income_floor"`
	PhaseoutStart     CentsBy `yaml:"phaseout_start" json:"phaseout_start"`
	PhaseoutStep      Cents   `yaml:"phaseout_step" json:"phaseout_step"`
	PhaseoutPerStep   Cents   `yaml:"phaseout_per_step" json:"phaseout_per_step"`
}

// EITCTier is the schedule for one count of qualifying children (0, 1, 2, 3+).
type EITCTier struct {
	Rate               float64 `yaml:"rate" json:"rate"`
	EarnedAmount       Cents   `yaml:"earned_amount" json:"earned_amount"`
	MaxCredit          Cents   `yaml:"max_credit" json:"max_credit"`
	PhaseoutRate       float64 `yaml:"phaseout_rate" json:"phaseout_rate"`
	PhaseoutStart      Cents   `yaml:"phaseout_start" json:"phaseout_start"`
	PhaseoutStartJoint Cents   `yaml:"phaseout_start_joint" json:"phaseout_start_joint"`
}

type EITCRules struct {
	Tiers                 [4]EITCTier `yaml:"tiers" json:"tiers"`
	InvestmentIncomeLimit Cents       `yaml:"investment_income_limit" json:"investment_income_limit"`
	MinAgeNoChild         int         `yaml:"min_age_no_child" json:"min_age_no_child"`
	MaxAgeNoChild         int         `yaml:"max_age_no_child" json:"max_age_no_child"`
}

type EducationRules struct {
	AOTCFullTier        Cents   `yaml:"aotc_full_tier" json:"aotc_full_tier"`
	AOTCPartialTier     Cents   `yaml:"aotc_partial_tier" json:"aotc_partial_tier"`
	AOTCPartialRate     float64 `yaml:"aotc_partial_rate" json:"aotc_partial_rate"`
	AOTCRefundableShare float64 `yaml:"aotc_refundable_share" json:"aotc_refundable_share"`
	LLCRate             float64 `yaml:"llc_rate" json:"llc_rate"`
	LLCMaxExpenses      Cents   `yaml:"llc_max_expenses" json:"llc_max_expenses"`
	PhaseoutStart       CentsBy `yaml:"phaseout_start" json:"phaseout_start"`
	PhaseoutRange       CentsBy `yaml:"phaseout_range" json:"phaseout_range"`
}

// SaversTier applies Rate when AGI is at or below AGILimit.
type SaversTier struct {
	Rate     float64 `yaml:"rate" json:"rate"`
	AGILimit CentsBy `yaml:"agi_limit" json:"agi_limit"`
}

type SaversRules struct {
	Tiers           []SaversTier `yaml:"tiers" json:"tiers"`
	MaxContribution Cents        `yaml:"max_contribution" json:"max_contribution"`
}

type ForeignTaxRules struct {
	DeMinimis CentsBy `yaml:"de_minimis" json:"de_minimis"`
}

// ApplicableBand maps household income as a percent of the poverty line to the share of
// income expected toward the benchmark plan, interpolated linearly inside the band.
type ApplicableBand struct {
	FromPct   float64 `yaml:"from_pct" json:"from_pct"`
	ToPct     float64 `yaml:"to_pct" json:"to_pct"`
	StartRate float64 `yaml:"start_rate" json:"start_rate"`
	EndRate   float64 `yaml:"end_rate" json:"end_rate"`
}

// RepaymentCap limits excess advance credit repayment below a poverty-line percentage.
type RepaymentCap struct {
	BelowPct float64 `yaml:"below_pct" json:"below_pct"`
	Single   Cents   `yaml:"single" json:"single"`
	Other    Cents   `yaml:"other" json:"other"`
}

type PremiumCreditRules struct {
	PovertyLineBase      Cents            `yaml:"poverty_line_base" json:"poverty_line_base"`
	PovertyLinePerPerson Cents            `yaml:"poverty_line_per_person" json:"poverty_line_per_person"`
	Bands                []ApplicableBand `yaml:"bands" json:"bands"`
	RepaymentCaps        []RepaymentCap   `yaml:"repayment_caps" json:"repayment_caps"`
}

// PovertyLine returns the poverty guideline for a household size.
func (p PremiumCreditRules) PovertyLine(householdSize int) Cents {
	if householdSize < 1 {
		householdSize = 1
	}
	return p.PovertyLineBase + Cents(householdSize-1)*p.PovertyLinePerPerson
}

package rules

import "github.com/username/ustax/src/models"

// TaxType is how a jurisdiction turns taxable income into tax.
type TaxType string

const (
	TaxNone        TaxType = "none"
	TaxFlat        TaxType = "flat"
	TaxProgressive TaxType = "progressive"
)

// StartingPoint is the federal figure a jurisdiction's income computation starts from.
type StartingPoint string

const (
	StartFederalAGI     StartingPoint = "federal_agi"
	StartFederalTaxable StartingPoint = "federal_taxable"
)

// LocalBase is what a local surtax is levied on.
type LocalBase string

const (
	LocalOnStateTaxable LocalBase = "state_taxable"
	LocalOnStateAGI     LocalBase = "state_agi"
	LocalOnStateTax     LocalBase = "state_tax"
)

// Phaseout reduces an amount linearly to zero as income rises from Start over Range.
// A zero Range is a cliff: the amount disappears as soon as income exceeds Start.
type Phaseout struct {
	Start CentsBy `yaml:"start" json:"start"`
	Range CentsBy `yaml:"range" json:"range"`
}

// RetirementExclusion subtracts pension/IRA distributions from state income.
// MaxPerPerson zero means unlimited.
type RetirementExclusion struct {
	MaxPerPerson Cents `yaml:"max_per_person" json:"max_per_person"`
	MinAge       int   `yaml:"min_age" json:"min_age"`
}

// AgeDeduction is an extra deduction per person at or above MinAge.
type AgeDeduction struct {
	Amount   Cents     `yaml:"amount" json:"amount"`
	MinAge   int       `yaml:"min_age" json:"min_age"`
	Phaseout *Phaseout `yaml:"phaseout,omitempty" json:"phaseout,omitempty"`
}

// ExemptionCredits are per-person credits used instead of exemptions.
type ExemptionCredits struct {
	Personal  Cents     `yaml:"personal" json:"personal"`
	Dependent Cents     `yaml:"dependent" json:"dependent"`
	Phaseout  *Phaseout `yaml:"phaseout,omitempty" json:"phaseout,omitempty"`
}

// EITCMatch is a jurisdiction earned income credit expressed as a share of the federal one.
type EITCMatch struct {
	Percent    float64 `yaml:"percent" json:"percent"`
	Refundable bool    `yaml:"refundable" json:"refundable"`
}

// PropertyTaxRelief offers a credit or a deduction for property tax paid. The taxpayer
// gets one or the other.
type PropertyTaxRelief struct {
	CreditRate       float64 `yaml:"credit_rate" json:"credit_rate"`
	CreditFloorRate  float64 `yaml:"credit_floor_rate" json:"credit_floor_rate"` // share of AGI that earns no credit
	CreditFlat       Cents   `yaml:"credit_flat" json:"credit_flat"`
	CreditMax        Cents   `yaml:"credit_max" json:"credit_max"`
	CreditRefundable bool    `yaml:"credit_refundable" json:"credit_refundable"`
	DeductionMax     Cents   `yaml:"deduction_max" json:"deduction_max"`
	AGILimit         CentsBy `yaml:"agi_limit" json:"agi_limit"` // zero means no limit
}

// Surtax is an extra rate on taxable income above a threshold.
type Surtax struct {
	Threshold Cents   `yaml:"threshold" json:"threshold"`
	Rate      float64 `yaml:"rate" json:"rate"`
}

// Locality is a county or city income tax inside a jurisdiction. It is either a flat Rate
// or a Brackets schedule applied to Base.
type Locality struct {
	Name     string     `yaml:"name" json:"name"`
	Base     LocalBase  `yaml:"base" json:"base"`
	Rate     float64    `yaml:"rate,omitempty" json:"rate,omitempty"`
	Brackets *Schedules `yaml:"brackets,omitempty" json:"brackets,omitempty"`
}

// StateRules is one jurisdiction's table for one year.
type StateRules struct {
	Code          string        `yaml:"code" json:"code"`
	Name          string        `yaml:"name" json:"name"`
	TaxType       TaxType       `yaml:"tax_type" json:"tax_type"`
	EffectiveYear int           `yaml:"effective_year" json:"effective_year"`
	StartingPoint StartingPoint `yaml:"starting_point,omitempty" json:"starting_point,omitempty"`

	FlatRate float64   `yaml:"flat_rate,omitempty" json:"flat_rate,omitempty"`
	Brackets Schedules `yaml:"brackets,omitempty" json:"brackets,omitempty"`
	Surtax   *Surtax   `yaml:"surtax,omitempty" json:"surtax,omitempty"`

	StandardDeduction  CentsBy   `yaml:"standard_deduction" json:"standard_deduction"`
	DeductionPhaseout  *Phaseout `yaml:"deduction_phaseout,omitempty" json:"deduction_phaseout,omitempty"`
	PersonalExemption  Cents     `yaml:"personal_exemption" json:"personal_exemption"`
	DependentExemption Cents     `yaml:"dependent_exemption" json:"dependent_exemption"`
	AgeExemption       Cents     `yaml:"age_exemption" json:"age_exemption"`
	ExemptionPhaseout  *Phaseout `yaml:"exemption_phaseout,omitempty" json:"exemption_phaseout,omitempty"`

	ExemptSocialSecurity bool                 `yaml:"exempt_social_security" json:"exempt_social_security"`
	RetirementExclusion  *RetirementExclusion `yaml:"retirement_exclusion,omitempty" json:"retirement_exclusion,omitempty"`
	AgeDeduction         *AgeDeduction        `yaml:"age_deduction,omitempty" json:"age_deduction,omitempty"`
	ExemptionCredits     *ExemptionCredits    `yaml:"exemption_credits,omitempty" json:"exemption_credits,omitempty"`

	EITC        EITCMatch           `yaml:"eitc" json:"eitc"`
	PropertyTax *PropertyTaxRelief  `yaml:"property_tax,omitempty" json:"property_tax,omitempty"`
	Localities  map[string]Locality `yaml:"localities,omitempty" json:"localities,omitempty"`

	Notes []string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// HasTax reports whether the jurisdiction levies a personal income tax.
func (s *StateRules) HasTax() bool {
	return s.TaxType != TaxNone && s.TaxType != ""
}

// HasLocalTax reports whether any locality inside the jurisdiction levies income tax.
func (s *StateRules) HasLocalTax() bool {
	return len(s.Localities) > 0
}

// Locality looks up a local code.
func (s *StateRules) Locality(code string) (Locality, bool) {
	l, ok := s.Localities[code]
	return l, ok
}

// Deduction returns the standard deduction for a filing status.
func (s *StateRules) Deduction(status models.FilingStatus) Cents {
	return s.StandardDeduction.Get(status)
}

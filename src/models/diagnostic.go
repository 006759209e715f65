package models

// Severity of a diagnostic attached to a result.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Phase names the pipeline stage that raised a diagnostic.
type Phase string

const (
	PhaseInputValidation Phase = "input-validation"
	PhaseAGI             Phase = "agi"
	PhaseSelfEmployment  Phase = "self-employment"
	PhaseDeductions      Phase = "deductions"
	PhaseQBI             Phase = "qbi"
	PhaseNOL             Phase = "nol"
	PhaseIncomeTax       Phase = "income-tax"
	PhaseAdditionalTaxes Phase = "additional-taxes"
	PhaseCredits         Phase = "credits"
)

// Diagnostic is an informational note, warning, or error about one computation.
// Codes look like FED-W-004: issuer, severity letter, number.
type Diagnostic struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Phase    Phase    `json:"phase,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

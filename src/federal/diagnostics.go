package federal

import (
	"fmt"

	"github.com/username/ustax/src/models"
)

// Diagnostic codes. FED-E-001 belongs to input validation and FED-W-001 to the amount
// parser; both live in the validation package.
const (
	codeNoDependents        = "FED-I-001"
	codeNoForeignIncome     = "FED-I-002"
	codeNoPremiumCredit     = "FED-I-003"
	codeForcedItemized      = "FED-I-004"
	codeSEBelowMinimum      = "FED-I-005"
	codeQBILimited          = "FED-I-006"
	codeAMTApplies          = "FED-I-007"
	codeEITCFilingStatus    = "FED-I-008"
	codeCreditLimited       = "FED-I-009"
	codeSocialSecurityTaxed = "FED-I-010"
	codeDeductionChosen     = "FED-I-011"
	codeDependentStdLimit   = "FED-I-012"
	codePreferentialApplied = "FED-I-013"

	codeCapitalLossLimited  = "FED-W-002"
	codeEducatorCapped      = "FED-W-003"
	codeStudentLoanLimited  = "FED-W-004"
	codeCharitableLimited   = "FED-W-005"
	codeNOLCarryforward     = "FED-W-006"
	codeEITCInvestment      = "FED-W-007"
	codeExcessAPTC          = "FED-W-008"
	codeEducationIneligible = "FED-W-009"
	codeForeignTaxLimited   = "FED-W-010"
	codeHealthInsLimited    = "FED-W-011"
	codeSALTCapped          = "FED-W-012"
)

type diagnostics struct {
	items []models.Diagnostic
}

func (d *diagnostics) add(sev models.Severity, code string, phase models.Phase, field, format string, args ...any) {
	d.items = append(d.items, models.Diagnostic{
		Code:     code,
		Severity: sev,
		Phase:    phase,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (d *diagnostics) info(code string, phase models.Phase, field, format string, args ...any) {
	d.add(models.SeverityInfo, code, phase, field, format, args...)
}

func (d *diagnostics) warn(code string, phase models.Phase, field, format string, args ...any) {
	d.add(models.SeverityWarning, code, phase, field, format, args...)
}

// list never returns nil so results always serialize diagnostics as an array.
func (d *diagnostics) list() []models.Diagnostic {
	if d.items == nil {
		return []models.Diagnostic{}
	}
	return d.items
}

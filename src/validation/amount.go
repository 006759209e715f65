package validation

import (
	"fmt"
	"strings"

	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

// AmountParser converts user-entered currency text field by field. Text that is not a
// number is always an error; blank text is zero and leaves a warning diagnostic behind.
type AmountParser struct {
	errs     collector
	warnings []models.Diagnostic
}

// Parse converts text for the named field. On error it records the problem and returns 0,
// so a caller can parse a whole form and check Err once.
func (p *AmountParser) Parse(field, text string) money.Cents {
	cleaned := strings.TrimSpace(StripUnprintable(text))
	if cleaned == "" {
		p.warnings = append(p.warnings, models.Diagnostic{
			Code:     "FED-W-001",
			Severity: models.SeverityWarning,
			Phase:    models.PhaseInputValidation,
			Field:    field,
			Message:  "blank amount treated as $0.00",
		})
		return 0
	}
	c, err := money.Parse(cleaned)
	if err != nil {
		p.errs.add(field, "%v", err)
		return 0
	}
	return c
}

// ParseInto parses text and stores the result in dst.
func (p *AmountParser) ParseInto(dst *money.Cents, field, text string) {
	*dst = p.Parse(field, text)
}

// Warnings returns the blank-field diagnostics collected so far.
func (p *AmountParser) Warnings() []models.Diagnostic {
	return p.warnings
}

// Err returns an *InputValidationError for every field that failed to parse.
func (p *AmountParser) Err() error {
	return p.errs.err()
}

func (p *AmountParser) String() string {
	return fmt.Sprintf("AmountParser(%d errors, %d warnings)", len(p.errs.fields), len(p.warnings))
}

package validation

import (
	"strings"
	"unicode"

	"github.com/username/ustax/src/models"
)

// SanitizeForFormulaInjection prepends a single quote if the string starts with a formula character.
// This makes most spreadsheet software treat it as text.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '=', '+', '-', '@', '\t', '\r':
			return "'" + s
		}
	}
	return s
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// SanitizeFederalInput cleans the free-text fields of a federal input in place.
func SanitizeFederalInput(in *models.FederalInput) {
	if in == nil {
		return
	}
	for i := range in.Dependents {
		in.Dependents[i].Name = strings.TrimSpace(StripUnprintable(in.Dependents[i].Name))
	}
	for i := range in.Students {
		in.Students[i].Name = strings.TrimSpace(StripUnprintable(in.Students[i].Name))
	}
	for i := range in.ForeignIncome {
		in.ForeignIncome[i].Country = strings.ToUpper(strings.TrimSpace(StripUnprintable(in.ForeignIncome[i].Country)))
	}
}

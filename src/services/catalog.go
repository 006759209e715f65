package services

import (
	"fmt"

	"github.com/username/ustax/src/logger"
	"github.com/username/ustax/src/rules"
	"github.com/username/ustax/src/validation"
)

// LoadCatalog returns the built-in rule sets plus every YAML rule set in dir. Each year is
// validated before it is registered: error-level issues abort, warnings are logged. An
// empty dir loads only the built-in years.
func LoadCatalog(dir string) (*rules.Catalog, error) {
	catalog := rules.Builtin()
	for _, year := range catalog.Years() {
		yr, _ := catalog.Get(year)
		if err := checkYear(yr, "builtin"); err != nil {
			return nil, err
		}
	}
	if dir == "" {
		return catalog, nil
	}

	loaded, err := rules.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, yr := range loaded {
		if err := checkYear(yr, dir); err != nil {
			return nil, err
		}
		if err := catalog.Add(yr); err != nil {
			return nil, fmt.Errorf("cannot register rules from %s: %w", dir, err)
		}
		logger.L.Info("Registered tax year rule set", "year", yr.Year, "jurisdictions", len(yr.States), "source", dir)
	}
	return catalog, nil
}

func checkYear(yr *rules.YearRules, source string) error {
	report := validation.ValidateYear(yr)
	for _, w := range report.Warnings() {
		logger.L.Warn("Rule table warning", "year", yr.Year, "source", source, "issue", w.String())
	}
	return report.Err()
}

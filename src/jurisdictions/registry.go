// Package jurisdictions holds the state calculator registry. Every jurisdiction registers
// a static Config and a pure Calculator; the registry maps postal codes to entries.
package jurisdictions

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/rules"
)

// ErrUnsupportedJurisdiction matches every *UnsupportedJurisdictionError.
var ErrUnsupportedJurisdiction = errors.New("unsupported jurisdiction")

// UnsupportedJurisdictionError is returned for a code with no registered calculator.
type UnsupportedJurisdictionError struct {
	Code string
	Year int
}

func (e *UnsupportedJurisdictionError) Error() string {
	return fmt.Sprintf("jurisdiction %q is not supported for %d", e.Code, e.Year)
}

func (e *UnsupportedJurisdictionError) Is(target error) bool {
	return target == ErrUnsupportedJurisdiction
}

// Config is the static description of a jurisdiction.
type Config struct {
	Code          string        `json:"code"`
	Name          string        `json:"name"`
	HasTax        bool          `json:"has_tax"`
	HasLocalTax   bool          `json:"has_local_tax"`
	TaxType       rules.TaxType `json:"tax_type"`
	EITCPercent   float64       `json:"eitc_percent"`
	TopRate       float64       `json:"top_rate"` // highest marginal rate across filing statuses, surtax included
	EffectiveYear int           `json:"effective_year"`
}

// Calculator is pure: identical input yields identical output.
type Calculator func(models.JurisdictionTaxInput) models.JurisdictionResult

type Entry struct {
	Config     Config
	Calculator Calculator
}

// Registry maps jurisdiction codes to entries for one tax year. Register entries before
// sharing the registry; lookups are then safe from any goroutine.
type Registry struct {
	year    int
	entries map[string]Entry
}

func NewEmptyRegistry(year int) *Registry {
	return &Registry{year: year, entries: make(map[string]Entry)}
}

// NewRegistry builds an entry for every jurisdiction table in the year's rules. A table
// that cannot be registered fails the whole year.
func NewRegistry(yr *rules.YearRules) (*Registry, error) {
	reg := NewEmptyRegistry(yr.Year)
	for key, sr := range yr.States {
		if sr == nil {
			return nil, fmt.Errorf("year %d: jurisdiction %s has no table", yr.Year, key)
		}
		if err := reg.Register(EntryFor(sr)); err != nil {
			return nil, fmt.Errorf("year %d: %w", yr.Year, err)
		}
	}
	return reg, nil
}

// EntryFor derives the config and calculator from one jurisdiction table.
func EntryFor(sr *rules.StateRules) Entry {
	cfg := Config{
		Code:          sr.Code,
		Name:          sr.Name,
		HasTax:        sr.HasTax(),
		HasLocalTax:   sr.HasLocalTax(),
		TaxType:       sr.TaxType,
		EITCPercent:   sr.EITC.Percent,
		TopRate:       topRate(sr),
		EffectiveYear: sr.EffectiveYear,
	}
	if !cfg.HasTax {
		return Entry{Config: cfg, Calculator: passthrough(sr)}
	}
	return Entry{Config: cfg, Calculator: tableCalculator(sr)}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Register adds an entry. A code can be registered once.
func (r *Registry) Register(e Entry) error {
	code := normalizeCode(e.Config.Code)
	if code == "" {
		return errors.New("jurisdiction entry has no code")
	}
	if e.Calculator == nil {
		return fmt.Errorf("jurisdiction %s has no calculator", code)
	}
	if _, exists := r.entries[code]; exists {
		return fmt.Errorf("jurisdiction %s is already registered", code)
	}
	e.Config.Code = code
	r.entries[code] = e
	return nil
}

// Lookup returns the entry for code, or an *UnsupportedJurisdictionError.
func (r *Registry) Lookup(code string) (Entry, error) {
	e, ok := r.entries[normalizeCode(code)]
	if !ok {
		return Entry{}, &UnsupportedJurisdictionError{Code: code, Year: r.year}
	}
	return e, nil
}

func (r *Registry) Year() int { return r.year }

// Configs lists every registered jurisdiction ordered by code.
func (r *Registry) Configs() []Config {
	out := make([]Config, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Config)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

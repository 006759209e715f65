package models

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/username/ustax/src/money"
)

// Unbounded marks the open upper end of the top bracket in range form.
const Unbounded money.Cents = math.MaxInt64

// TaxBracket is one marginal tier: income above Lower (up to the next tier's Lower) is
// taxed at Rate.
type TaxBracket struct {
	Lower money.Cents `json:"lower" yaml:"lower"`
	Rate  float64     `json:"rate" yaml:"rate"`
}

// Schedule is the canonical threshold encoding: ascending lower bounds, the last tier
// unbounded.
type Schedule []TaxBracket

// BracketRange is the explicit [Lower, Upper) encoding. Upper == Unbounded on the top tier.
type BracketRange struct {
	Lower money.Cents `json:"lower" yaml:"lower"`
	Upper money.Cents `json:"upper" yaml:"upper"`
	Rate  float64     `json:"rate" yaml:"rate"`
}

type BracketRanges []BracketRange

// NewSchedule builds a schedule from parallel lists of whole-dollar thresholds and rates.
// thresholds[0] is normally 0.
func NewSchedule(thresholds []int64, rates []float64) Schedule {
	if len(thresholds) != len(rates) {
		panic(fmt.Sprintf("models: %d thresholds for %d rates", len(thresholds), len(rates)))
	}
	s := make(Schedule, len(rates))
	for i := range rates {
		s[i] = TaxBracket{Lower: money.FromDollars(thresholds[i]), Rate: rates[i]}
	}
	return s
}

// Ranges converts to the explicit pair encoding.
func (s Schedule) Ranges() BracketRanges {
	out := make(BracketRanges, len(s))
	for i, b := range s {
		upper := Unbounded
		if i+1 < len(s) {
			upper = s[i+1].Lower
		}
		out[i] = BracketRange{Lower: b.Lower, Upper: upper, Rate: b.Rate}
	}
	return out
}

// TopRate returns the rate of the last tier.
func (s Schedule) TopRate() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Rate
}

// Normalize converts ranges to a Schedule, rejecting gaps, overlaps, a non-zero first
// bound and a bounded top tier.
func (r BracketRanges) Normalize() (Schedule, error) {
	if len(r) == 0 {
		return nil, fmt.Errorf("bracket table is empty")
	}
	if r[0].Lower != 0 {
		return nil, fmt.Errorf("first bracket starts at %s, want $0.00", r[0].Lower)
	}
	s := make(Schedule, len(r))
	for i, b := range r {
		if b.Upper <= b.Lower {
			return nil, fmt.Errorf("bracket %d: upper %s not above lower %s", i, b.Upper, b.Lower)
		}
		if i > 0 && b.Lower != r[i-1].Upper {
			if b.Lower > r[i-1].Upper {
				return nil, fmt.Errorf("gap between bracket %d and %d", i-1, i)
			}
			return nil, fmt.Errorf("bracket %d overlaps bracket %d", i, i-1)
		}
		s[i] = TaxBracket{Lower: b.Lower, Rate: b.Rate}
	}
	if r[len(r)-1].Upper != Unbounded {
		return nil, fmt.Errorf("top bracket is bounded at %s", r[len(r)-1].Upper)
	}
	return s, nil
}

// RangeTableError is a ranged table that does not normalize. Ranges is the table as
// written, so a validator can report every defect rather than the first.
type RangeTableError struct {
	Line   int
	Ranges BracketRanges
	Err    error
}

func (e *RangeTableError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RangeTableError) Unwrap() error { return e.Err }

// UnmarshalYAML accepts either encoding. A table where any tier carries an upper bound is
// read as ranges (an omitted upper on the last tier means unbounded) and normalized.
func (s *Schedule) UnmarshalYAML(node *yaml.Node) error {
	var raw []struct {
		Lower money.Cents  `yaml:"lower"`
		Upper *money.Cents `yaml:"upper"`
		Rate  float64      `yaml:"rate"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	ranged := false
	for _, r := range raw {
		if r.Upper != nil {
			ranged = true
			break
		}
	}
	if !ranged {
		out := make(Schedule, len(raw))
		for i, r := range raw {
			out[i] = TaxBracket{Lower: r.Lower, Rate: r.Rate}
		}
		*s = out
		return nil
	}

	ranges := make(BracketRanges, len(raw))
	for i, r := range raw {
		upper := Unbounded
		switch {
		case r.Upper != nil:
			upper = *r.Upper
		case i+1 < len(raw):
			return fmt.Errorf("line %d: bracket %d has no upper bound", node.Line, i)
		}
		ranges[i] = BracketRange{Lower: r.Lower, Upper: upper, Rate: r.Rate}
	}
	normalized, err := ranges.Normalize()
	if err != nil {
		return &RangeTableError{Line: node.Line, Ranges: ranges, Err: err}
	}
	*s = normalized
	return nil
}

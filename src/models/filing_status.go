package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FilingStatus is the closed set of taxpayer categories. The zero value is invalid so an
// unset status is caught by input validation rather than silently treated as single.
type FilingStatus int

const (
	Single FilingStatus = iota + 1
	MarriedJointly
	MarriedSeparately
	HeadOfHousehold
)

// FilingStatuses lists every status in table order.
var FilingStatuses = [...]FilingStatus{Single, MarriedJointly, MarriedSeparately, HeadOfHousehold}

func (s FilingStatus) String() string {
	switch s {
	case Single:
		return "single"
	case MarriedJointly:
		return "married_jointly"
	case MarriedSeparately:
		return "married_separately"
	case HeadOfHousehold:
		return "head_of_household"
	}
	return fmt.Sprintf("FilingStatus(%d)", int(s))
}

// Valid reports whether s is one of the four statuses.
func (s FilingStatus) Valid() bool {
	return s >= Single && s <= HeadOfHousehold
}

// Married reports whether the status is one of the two married statuses.
func (s FilingStatus) Married() bool {
	return s == MarriedJointly || s == MarriedSeparately
}

// ParseFilingStatus accepts the canonical names plus the usual short forms.
func ParseFilingStatus(v string) (FilingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "single", "s":
		return Single, nil
	case "married_jointly", "marriedjointly", "married_filing_jointly", "mfj", "joint":
		return MarriedJointly, nil
	case "married_separately", "marriedseparately", "married_filing_separately", "mfs":
		return MarriedSeparately, nil
	case "head_of_household", "headofhousehold", "hoh":
		return HeadOfHousehold, nil
	}
	return 0, fmt.Errorf("unrecognized filing status %q", v)
}

func (s FilingStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return json.Marshal("")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON keeps unknown names as the invalid zero value; validation reports them
// together with every other field problem instead of failing the whole decode.
func (s *FilingStatus) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return fmt.Errorf("filing status must be a string: %w", err)
	}
	parsed, err := ParseFilingStatus(name)
	if err != nil {
		*s = 0
		return nil
	}
	*s = parsed
	return nil
}

// PerStatus holds one value per filing status. Tables are declared with this type so a
// missing status is a compile-time omission that reviewers can see, not a map miss.
type PerStatus[T any] struct {
	Single            T `json:"single" yaml:"single"`
	MarriedJointly    T `json:"married_jointly" yaml:"married_jointly"`
	MarriedSeparately T `json:"married_separately" yaml:"married_separately"`
	HeadOfHousehold   T `json:"head_of_household" yaml:"head_of_household"`
}

// Same builds a PerStatus with one value for every status.
func Same[T any](v T) PerStatus[T] {
	return PerStatus[T]{Single: v, MarriedJointly: v, MarriedSeparately: v, HeadOfHousehold: v}
}

// Get returns the value for s. It panics on an invalid status: callers validate input
// before any table lookup.
func (p PerStatus[T]) Get(s FilingStatus) T {
	switch s {
	case Single:
		return p.Single
	case MarriedJointly:
		return p.MarriedJointly
	case MarriedSeparately:
		return p.MarriedSeparately
	case HeadOfHousehold:
		return p.HeadOfHousehold
	}
	panic(fmt.Sprintf("models: invalid filing status %d", int(s)))
}

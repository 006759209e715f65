package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
	"github.com/username/ustax/src/rules"
)

// IssueLevel separates build-blocking problems from suspicious but legal tables.
type IssueLevel string

const (
	LevelError   IssueLevel = "error"
	LevelWarning IssueLevel = "warning"
)

// Issue is one finding against a rule table.
type Issue struct {
	Level   IssueLevel `json:"level"`
	Table   string     `json:"table"`
	Status  string     `json:"status,omitempty"`
	Message string     `json:"message"`
}

func (i Issue) String() string {
	if i.Status != "" {
		return fmt.Sprintf("%s [%s]: %s", i.Table, i.Status, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Table, i.Message)
}

// Report collects every issue found in a rule set.
type Report struct {
	Year   int     `json:"year"`
	Issues []Issue `json:"issues"`
}

func (r *Report) add(level IssueLevel, table, status, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Level: level, Table: table, Status: status, Message: fmt.Sprintf(format, args...)})
}

func (r Report) filter(level IssueLevel) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Level == level {
			out = append(out, i)
		}
	}
	return out
}

// Errors returns the blocking issues.
func (r Report) Errors() []Issue { return r.filter(LevelError) }

// Warnings returns the non-blocking issues.
func (r Report) Warnings() []Issue { return r.filter(LevelWarning) }

// Err returns a *RuleTableInvariantError when the report has any error-level issue.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	return &RuleTableInvariantError{Year: r.Year, Issues: errs}
}

// RuleTableInvariantError means a rule table is structurally unusable.
type RuleTableInvariantError struct {
	Year   int
	Issues []Issue
}

func (e *RuleTableInvariantError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("rule tables for %d violate %d invariant(s): %s", e.Year, len(e.Issues), strings.Join(parts, "; "))
}

// ValidateSchedule checks a threshold-form schedule.
func ValidateSchedule(table, status string, s models.Schedule) []Issue {
	r := &Report{}
	checkSchedule(r, table, status, s)
	return r.Issues
}

// ValidateRanges checks a [lower, upper) table, reporting every defect instead of
// stopping at the first one the way Normalize does.
func ValidateRanges(table, status string, ranges models.BracketRanges) []Issue {
	r := &Report{}
	if len(ranges) == 0 {
		r.add(LevelError, table, status, "no brackets defined")
		return r.Issues
	}
	if ranges[0].Lower != 0 {
		r.add(LevelError, table, status, "first bracket starts at %s, must start at $0.00", ranges[0].Lower)
	}
	for i, b := range ranges {
		if b.Upper <= b.Lower {
			r.add(LevelError, table, status, "bracket %d upper bound %s is not above lower bound %s", i, b.Upper, b.Lower)
		}
		if i == 0 {
			continue
		}
		prev := ranges[i-1].Upper
		switch {
		case b.Lower > prev:
			r.add(LevelError, table, status, "gap between bracket %d and %d (%s to %s)", i-1, i, prev, b.Lower)
		case b.Lower < prev:
			r.add(LevelError, table, status, "bracket %d overlaps bracket %d", i, i-1)
		}
	}
	if last := ranges[len(ranges)-1]; last.Upper != models.Unbounded {
		r.add(LevelError, table, status, "top bracket is bounded at %s, must be unbounded", last.Upper)
	}
	checkRates(r, table, status, rangeRates(ranges))
	return r.Issues
}

func rangeRates(ranges models.BracketRanges) []float64 {
	out := make([]float64, len(ranges))
	for i, b := range ranges {
		out[i] = b.Rate
	}
	return out
}

func checkSchedule(r *Report, table, status string, s models.Schedule) {
	if len(s) == 0 {
		r.add(LevelError, table, status, "no brackets defined")
		return
	}
	if s[0].Lower != 0 {
		r.add(LevelError, table, status, "first bracket starts at %s, must start at $0.00", s[0].Lower)
	}
	rates := make([]float64, len(s))
	for i, b := range s {
		rates[i] = b.Rate
		if i > 0 && b.Lower <= s[i-1].Lower {
			r.add(LevelError, table, status, "bracket %d starts at %s, not above bracket %d at %s", i, b.Lower, i-1, s[i-1].Lower)
		}
	}
	checkRates(r, table, status, rates)
}

func checkRates(r *Report, table, status string, rates []float64) {
	for i, rate := range rates {
		if !validRate(rate) {
			r.add(LevelError, table, status, "bracket %d rate %v outside [0, 1]", i, rate)
		}
		if i > 0 && rate < rates[i-1] {
			r.add(LevelWarning, table, status, "bracket %d rate %v is lower than the bracket below it", i, rate)
		}
	}
}

func validRate(rate float64) bool {
	return !math.IsNaN(rate) && rate >= 0 && rate <= 1
}

func checkSchedules(r *Report, table string, s rules.Schedules) {
	for _, status := range models.FilingStatuses {
		r.Issues = append(r.Issues, ValidateSchedule(table, status.String(), s.Get(status))...)
	}
}

// checkDeductions applies the relationship warnings between the per-status amounts.
func checkDeductions(r *Report, table string, d rules.CentsBy, required bool) {
	for _, status := range models.FilingStatuses {
		v := d.Get(status)
		if v < 0 {
			r.add(LevelError, table, status.String(), "negative deduction %s", v)
		}
		if required && v == 0 {
			r.add(LevelError, table, status.String(), "deduction missing")
		}
	}
	single, joint, head := d.Single, d.MarriedJointly, d.HeadOfHousehold
	if single <= 0 {
		return
	}
	if ratio := float64(joint) / float64(2*single); ratio < 0.95 || ratio > 1.05 {
		r.add(LevelWarning, table, models.MarriedJointly.String(), "joint amount %s is not about twice the single amount %s", joint, single)
	}
	if head != 0 && (head < single || head > joint) {
		r.add(LevelWarning, table, models.HeadOfHousehold.String(), "head of household amount %s is not between single %s and joint %s", head, single, joint)
	}
}

func checkRate(r *Report, table string, rate float64) {
	if !validRate(rate) {
		r.add(LevelError, table, "", "rate %v outside [0, 1]", rate)
	}
}

// ValidateYear checks a complete rule set.
func ValidateYear(yr *rules.YearRules) Report {
	r := Report{}
	if yr == nil {
		r.add(LevelError, "year", "", "rule set is nil")
		return r
	}
	r.Year = yr.Year
	if yr.Year <= 0 {
		r.add(LevelError, "year", "", "year %d is not valid", yr.Year)
	}
	validateFederal(&r, &yr.Federal)

	codes := make([]string, 0, len(yr.States))
	for code := range yr.States {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		validateState(&r, code, yr.States[code])
	}
	return r
}

func validateFederal(r *Report, f *rules.FederalRules) {
	checkSchedules(r, "federal.brackets", f.Brackets)
	checkDeductions(r, "federal.standard_deduction", f.StandardDeduction, true)

	for _, status := range models.FilingStatuses {
		zero, fifteen := f.CapitalGains.ZeroCeiling.Get(status), f.CapitalGains.FifteenCeiling.Get(status)
		if zero < 0 || fifteen < zero {
			r.add(LevelError, "federal.capital_gains", status.String(), "ceilings out of order: 0%% up to %s, 15%% up to %s", zero, fifteen)
		}
	}

	for _, c := range []struct {
		table string
		rate  float64
	}{
		{"federal.medical_floor_rate", f.MedicalFloorRate},
		{"federal.charitable_agi_limit_rate", f.CharitableAGILimitRate},
		{"federal.nol_limit_rate", f.NOLLimitRate},
		{"federal.social_security.lower_rate", f.SocialSecurity.LowerRate},
		{"federal.social_security.upper_rate", f.SocialSecurity.UpperRate},
		{"federal.self_employment.net_earnings_factor", f.SelfEmployment.NetEarningsFactor},
		{"federal.self_employment.social_security_rate", f.SelfEmployment.SocialSecurityRate},
		{"federal.self_employment.medicare_rate", f.SelfEmployment.MedicareRate},
		{"federal.additional_medicare.rate", f.AdditionalMedicare.Rate},
		{"federal.niit.rate", f.NIIT.Rate},
		{"federal.amt.phaseout_rate", f.AMT.PhaseoutRate},
		{"federal.amt.low_rate", f.AMT.LowRate},
		{"federal.amt.high_rate", f.AMT.HighRate},
		{"federal.qbi.rate", f.QBI.Rate},
		{"federal.child_tax_credit.refundable_rate", f.ChildTaxCredit.RefundableRate},
		{"federal.education.aotc_partial_rate", f.Education.AOTCPartialRate},
		{"federal.education.aotc_refundable_share", f.Education.AOTCRefundableShare},
		{"federal.education.llc_rate", f.Education.LLCRate},
	} {
		checkRate(r, c.table, c.rate)
	}
	if f.AMT.HighRate < f.AMT.LowRate {
		r.add(LevelWarning, "federal.amt", "", "high rate %v below low rate %v", f.AMT.HighRate, f.AMT.LowRate)
	}

	for i, tier := range f.EITC.Tiers {
		table := fmt.Sprintf("federal.eitc.tiers[%d]", i)
		checkRate(r, table, tier.Rate)
		checkRate(r, table, tier.PhaseoutRate)
		if tier.MaxCredit < 0 || tier.EarnedAmount < 0 {
			r.add(LevelError, table, "", "negative amounts")
		}
	}

	for _, status := range models.FilingStatuses {
		var prev money.Cents
		for i, tier := range f.Savers.Tiers {
			limit := tier.AGILimit.Get(status)
			if i > 0 && limit < prev {
				r.add(LevelError, "federal.savers", status.String(), "tier %d limit %s below tier %d limit %s", i, limit, i-1, prev)
			}
			prev = limit
		}
	}

	for i, band := range f.PremiumCredit.Bands {
		table := "federal.premium_credit.bands"
		if i > 0 && band.FromPct != f.PremiumCredit.Bands[i-1].ToPct {
			r.add(LevelError, table, "", "band %d starts at %v%%, previous band ends at %v%%", i, band.FromPct, f.PremiumCredit.Bands[i-1].ToPct)
		}
		checkRate(r, table, band.StartRate)
		checkRate(r, table, band.EndRate)
	}
}

func validateState(r *Report, code string, s *rules.StateRules) {
	table := "states." + code
	if s == nil {
		r.add(LevelError, table, "", "no table")
		return
	}
	if s.Code != code {
		r.add(LevelError, table, "", "table is keyed %s but declares code %s", code, s.Code)
	}
	if strings.TrimSpace(s.Name) == "" {
		r.add(LevelWarning, table, "", "no display name")
	}

	switch s.TaxType {
	case rules.TaxNone:
		return
	case rules.TaxFlat:
		if s.FlatRate <= 0 || !validRate(s.FlatRate) {
			r.add(LevelError, table+".flat_rate", "", "flat rate %v outside (0, 1]", s.FlatRate)
		}
	case rules.TaxProgressive:
		checkSchedules(r, table+".brackets", s.Brackets)
	default:
		r.add(LevelError, table+".tax_type", "", "unknown tax type %q", s.TaxType)
		return
	}

	switch s.StartingPoint {
	case "", rules.StartFederalAGI, rules.StartFederalTaxable:
	default:
		r.add(LevelError, table+".starting_point", "", "unknown starting point %q", s.StartingPoint)
	}

	checkDeductions(r, table+".standard_deduction", s.StandardDeduction, false)
	if s.Surtax != nil {
		checkRate(r, table+".surtax", s.Surtax.Rate)
	}
	if s.EITC.Percent < 0 || s.EITC.Percent > 1 {
		r.add(LevelError, table+".eitc", "", "percent %v outside [0, 1]", s.EITC.Percent)
	}
	if p := s.PropertyTax; p != nil {
		checkRate(r, table+".property_tax.credit_rate", p.CreditRate)
		checkRate(r, table+".property_tax.credit_floor_rate", p.CreditFloorRate)
	}

	localCodes := make([]string, 0, len(s.Localities))
	for lc := range s.Localities {
		localCodes = append(localCodes, lc)
	}
	sort.Strings(localCodes)
	for _, lc := range localCodes {
		l := s.Localities[lc]
		lt := table + ".localities." + lc
		switch l.Base {
		case rules.LocalOnStateTaxable, rules.LocalOnStateAGI, rules.LocalOnStateTax:
		default:
			r.add(LevelError, lt, "", "unknown base %q", l.Base)
		}
		if l.Brackets != nil {
			checkSchedules(r, lt, *l.Brackets)
		} else {
			checkRate(r, lt, l.Rate)
		}
	}
}

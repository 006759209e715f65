package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
	"github.com/username/ustax/src/rules"
)

var single2025 = rules.Federal2025().Brackets.Single

func TestBracketTaxKnownValues(t *testing.T) {
	tests := []struct {
		name   string
		amount money.Cents
		want   money.Cents
	}{
		{"zero", 0, 0},
		{"negative", -money.FromDollars(500), 0},
		{"one cent", 1, 0},
		{"ten dollars", money.FromDollars(10), 100},
		{"top of 10%", money.FromDollars(11925), 119250},
		{"top of 12%", money.FromDollars(48475), 557850},
		{"scenario taxable income", money.FromDollars(45200), 518550},
		{"top of 22%", money.FromDollars(103350), 1765100},
		{"top of 24%", money.FromDollars(197300), 4019900},
		{"top of 32%", money.FromDollars(250525), 5723100},
		{"top of 35%", money.FromDollars(626350), 18876975},
		{"one million", money.FromDollars(1000000), 32702025},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BracketTax(tt.amount, single2025))
		})
	}
}

// allSchedules collects every federal, state and local schedule, one per filing status.
func allSchedules() map[string]models.Schedule {
	out := make(map[string]models.Schedule)
	for _, status := range models.FilingStatuses {
		out["federal 2024 "+status.String()] = rules.Federal2024().Brackets.Get(status)
		out["federal 2025 "+status.String()] = rules.Federal2025().Brackets.Get(status)
		for code, sr := range rules.States2025() {
			if sr.TaxType == rules.TaxProgressive {
				out[code+" "+status.String()] = sr.Brackets.Get(status)
			}
			for local, loc := range sr.Localities {
				if loc.Brackets != nil {
					out[code+"/"+local+" "+status.String()] = loc.Brackets.Get(status)
				}
			}
		}
	}
	return out
}

func TestBracketTaxMonotonic(t *testing.T) {
	for name, schedule := range allSchedules() {
		t.Run(name, func(t *testing.T) {
			require.NotEmpty(t, schedule)
			var prev money.Cents
			for amount := money.Cents(0); amount <= money.FromDollars(3000000); amount += 123457 {
				tax := BracketTax(amount, schedule)
				require.GreaterOrEqual(t, tax, prev, "amount %s", amount)
				prev = tax
			}
		})
	}
}

func TestBracketTaxContinuousAtBoundaries(t *testing.T) {
	for _, status := range models.FilingStatuses {
		schedule := rules.Federal2025().Brackets.Get(status)
		for _, tier := range schedule[1:] {
			below := BracketTax(tier.Lower-1, schedule)
			at := BracketTax(tier.Lower, schedule)
			above := BracketTax(tier.Lower+1, schedule)
			assert.LessOrEqual(t, at-below, money.Cents(1), "%s at %s", status, tier.Lower)
			assert.LessOrEqual(t, above-at, money.Cents(1), "%s at %s", status, tier.Lower)
		}
	}
}

func TestBracketEncodingsAgree(t *testing.T) {
	ranges := single2025.Ranges()
	require.Equal(t, models.Unbounded, ranges[len(ranges)-1].Upper)

	normalized, err := ranges.Normalize()
	require.NoError(t, err)
	assert.Equal(t, single2025, normalized)

	for _, amount := range []money.Cents{0, 99, money.FromDollars(11925), money.FromDollars(75000), money.FromDollars(2000000)} {
		got, err := BracketTaxRanges(amount, ranges)
		require.NoError(t, err)
		assert.Equal(t, BracketTax(amount, single2025), got)
	}
}

func TestBracketTaxRangesRejectsGap(t *testing.T) {
	_, err := BracketTaxRanges(100, models.BracketRanges{
		{Lower: 0, Upper: 1000, Rate: 0.1},
		{Lower: 2000, Upper: models.Unbounded, Rate: 0.2},
	})
	assert.ErrorContains(t, err, "gap")
}

func TestMarginalRateBoundaryBelongsToLowerTier(t *testing.T) {
	assert.Equal(t, 0.10, MarginalRate(0, single2025))
	assert.Equal(t, 0.10, MarginalRate(money.FromDollars(11925), single2025))
	assert.Equal(t, 0.12, MarginalRate(money.FromDollars(11925)+1, single2025))
	assert.Equal(t, 0.37, MarginalRate(money.FromDollars(5000000), single2025))
	assert.Equal(t, 0.0, MarginalRate(100, nil))
}

func TestAppliers(t *testing.T) {
	var a TaxApplier = ScheduleApplier{Schedule: single2025}
	assert.Equal(t, money.Cents(518550), a.Apply(money.FromDollars(45200)))
	assert.Equal(t, 0.12, a.Marginal(money.FromDollars(45200)))

	flat := FlatApplier{Rate: 0.05, SurtaxThreshold: money.FromDollars(1000000), SurtaxRate: 0.04}
	assert.Equal(t, money.FromDollars(2500), flat.Apply(money.FromDollars(50000)))
	assert.Equal(t, money.FromDollars(68000), flat.Apply(money.FromDollars(1200000)))
	assert.Equal(t, 0.09, flat.Marginal(money.FromDollars(1200000)))
	assert.Equal(t, money.Cents(0), flat.Apply(-5))
}

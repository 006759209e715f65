package rules

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

func TestBuiltinCatalog(t *testing.T) {
	c := Builtin()
	assert.Equal(t, []int{2024, 2025}, c.Years())
	assert.Equal(t, 2025, c.Latest())

	yr, err := c.Get(2025)
	require.NoError(t, err)
	assert.Equal(t, money.FromDollars(15000), yr.Federal.StandardDeduction.Single)
	assert.Equal(t, money.FromDollars(30000), yr.Federal.StandardDeduction.MarriedJointly)
	assert.Equal(t, money.FromDollars(48475), yr.Federal.Brackets.Single[2].Lower)
	assert.Equal(t, 0.22, yr.Federal.Brackets.Single[2].Rate)
	assert.Equal(t, money.FromDollars(375800), yr.Federal.Brackets.MarriedSeparately[6].Lower)
	assert.Equal(t, money.FromDollars(176100), yr.Federal.SelfEmployment.WageBase)

	_, err = c.Get(1999)
	assert.ErrorIs(t, err, ErrUnknownYear)
}

func TestEITCTiersMatchPublishedMaximums(t *testing.T) {
	for _, f := range []FederalRules{Federal2024(), Federal2025()} {
		for i, tier := range f.EITC.Tiers {
			computed := money.MulRate(tier.EarnedAmount, tier.Rate)
			assert.InDelta(t, float64(tier.MaxCredit), float64(computed), 100, "tier %d", i)
		}
	}
}

func TestStatesCoverBothTaxTypes(t *testing.T) {
	states := States2025()
	for _, code := range []string{"AK", "FL", "NV", "NH", "SD", "TN", "TX", "WA", "WY"} {
		require.Contains(t, states, code)
		assert.False(t, states[code].HasTax(), code)
	}
	assert.Equal(t, TaxFlat, states["IL"].TaxType)
	assert.Equal(t, TaxProgressive, states["NY"].TaxType)
	assert.True(t, states["NY"].HasLocalTax())
	assert.False(t, states["NC"].HasLocalTax())

	nyc, ok := states["NY"].Locality("NYC")
	require.True(t, ok)
	require.NotNil(t, nyc.Brackets)
	assert.Equal(t, LocalOnStateTaxable, nyc.Base)

	for code, s := range States2024() {
		assert.False(t, s.HasTax(), code)
		assert.Equal(t, 2024, s.EffectiveYear)
	}
}

func TestCatalogAddRejectsExistingYear(t *testing.T) {
	c := Builtin()
	err := c.Add(&YearRules{Year: 2025})
	assert.ErrorIs(t, err, ErrYearDefined)

	require.NoError(t, c.Add(&YearRules{Year: 2026}))
	assert.Equal(t, []int{2024, 2025, 2026}, c.Years())

	assert.ErrorIs(t, c.Add(&YearRules{}), ErrMalformedYear)
}

func TestMarshalParseRoundTrip(t *testing.T) {
	original := &YearRules{Year: 2026, Federal: Federal2025(), States: States2025()}
	data, err := Marshal(original)
	require.NoError(t, err)

	parsed, err := Parse(bytes.NewReader(data))
	require.NoError(t, err)
	if diff := cmp.Diff(original, parsed); diff != "" {
		t.Fatalf("round trip changed the rule set (-want +got):\n%s", diff)
	}
}

const rangeForm = `
year: 2030
federal:
  brackets:
    single:
      - {lower: 0, upper: 1000000, rate: 0.1}
      - {lower: 1000000, upper: 5000000, rate: 0.2}
      - {lower: 5000000, rate: 0.3}
states:
  ZZ:
    name: Testland
    tax_type: flat
    flat_rate: 0.05
`

const thresholdForm = `
year: 2030
federal:
  brackets:
    single:
      - {lower: 0, rate: 0.1}
      - {lower: 1000000, rate: 0.2}
      - {lower: 5000000, rate: 0.3}
`

func TestParseBracketEncodingsAgree(t *testing.T) {
	ranged, err := Parse(strings.NewReader(rangeForm))
	require.NoError(t, err)
	thresholds, err := Parse(strings.NewReader(thresholdForm))
	require.NoError(t, err)

	assert.Equal(t, thresholds.Federal.Brackets.Single, ranged.Federal.Brackets.Single)
	assert.Equal(t, models.Schedule{{Lower: 0, Rate: 0.1}, {Lower: 1000000, Rate: 0.2}, {Lower: 5000000, Rate: 0.3}}, ranged.Federal.Brackets.Single)

	zz := ranged.States["ZZ"]
	require.NotNil(t, zz)
	assert.Equal(t, "ZZ", zz.Code)
	assert.Equal(t, 2030, zz.EffectiveYear)
}

func TestParseRejectsMalformedTables(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "gap between ranges",
			doc: `
year: 2030
federal:
  brackets:
    single:
      - {lower: 0, upper: 1000000, rate: 0.1}
      - {lower: 1100000, rate: 0.2}
`,
			want: "gap",
		},
		{
			name: "overlapping ranges",
			doc: `
year: 2030
federal:
  brackets:
    single:
      - {lower: 0, upper: 1000000, rate: 0.1}
      - {lower: 900000, rate: 0.2}
`,
			want: "overlaps",
		},
		{
			name: "unknown key",
			doc: `
year: 2030
federal:
  standard_deducton: {single: 100}
`,
			want: "standard_deducton",
		},
		{
			name: "missing year",
			doc:  "federal: {}\n",
			want: "year is required",
		},
		{
			name: "mismatched state key",
			doc: `
year: 2030
states:
  AA:
    code: BB
`,
			want: "holds table for BB",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedYear)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseKeepsRangedTableForReporting(t *testing.T) {
	doc := `
year: 2030
federal:
  brackets:
    single:
      - {lower: 100, upper: 1000000, rate: 0.1}
      - {lower: 1100000, upper: 2000000, rate: 0.2}
`
	_, err := Parse(strings.NewReader(doc))
	var rangeErr *models.RangeTableError
	require.True(t, errors.As(err, &rangeErr), "got %v", err)
	assert.ErrorIs(t, err, ErrMalformedYear)
	assert.Len(t, rangeErr.Ranges, 2)
	assert.Equal(t, money.Cents(100), rangeErr.Ranges[0].Lower)
	assert.Positive(t, rangeErr.Line)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2030.yaml"), []byte(rangeForm), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o600))

	years, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, years, 1)
	assert.Equal(t, 2030, years[0].Year)

	_, err = LoadDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

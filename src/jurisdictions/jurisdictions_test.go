package jurisdictions

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
	"github.com/username/ustax/src/rules"
)

func dollars(d int64) money.Cents { return money.FromDollars(d) }

func registry2025(t *testing.T) *Registry {
	t.Helper()
	yr, err := rules.Builtin().Get(2025)
	require.NoError(t, err)
	reg, err := NewRegistry(yr)
	require.NoError(t, err)
	return reg
}

func calc(t *testing.T, code string, in models.JurisdictionTaxInput) models.JurisdictionResult {
	t.Helper()
	e, err := registry2025(t).Lookup(code)
	require.NoError(t, err)
	return e.Calculator(in)
}

func singleInput(agi int64) models.JurisdictionTaxInput {
	return models.JurisdictionTaxInput{
		Federal:      models.FederalResult{Year: 2025, FilingStatus: models.Single, AGI: dollars(agi)},
		FilingStatus: models.Single,
		TaxpayerAge:  40,
	}
}

func TestLookup(t *testing.T) {
	reg := registry2025(t)

	e, err := reg.Lookup(" il ")
	require.NoError(t, err)
	assert.Equal(t, "IL", e.Config.Code)
	assert.True(t, e.Config.HasTax)
	assert.Equal(t, rules.TaxFlat, e.Config.TaxType)
	assert.Equal(t, 0.20, e.Config.EITCPercent)
	assert.Equal(t, 2025, e.Config.EffectiveYear)

	_, err = reg.Lookup("ZZ")
	require.Error(t, err)
	var uje *UnsupportedJurisdictionError
	require.True(t, errors.As(err, &uje))
	assert.Equal(t, "ZZ", uje.Code)
	assert.Equal(t, 2025, uje.Year)
	assert.ErrorIs(t, err, ErrUnsupportedJurisdiction)
}

func TestConfigs(t *testing.T) {
	configs := registry2025(t).Configs()
	require.Len(t, configs, 26)
	for i := 1; i < len(configs); i++ {
		assert.Less(t, configs[i-1].Code, configs[i].Code)
	}

	byCode := make(map[string]Config, len(configs))
	for _, c := range configs {
		byCode[c.Code] = c
	}
	assert.False(t, byCode["TX"].HasTax)
	assert.True(t, byCode["MI"].HasLocalTax)
	assert.False(t, byCode["IL"].HasLocalTax)
	assert.Equal(t, rules.TaxProgressive, byCode["CA"].TaxType)
	assert.InDelta(t, 0.133, byCode["CA"].TopRate, 1e-9)
	assert.InDelta(t, 0.09, byCode["MA"].TopRate, 1e-9)
	assert.Equal(t, 0.0495, byCode["IL"].TopRate)
	assert.Zero(t, byCode["TX"].TopRate)

	yr, err := rules.Builtin().Get(2024)
	require.NoError(t, err)
	reg, err := NewRegistry(yr)
	require.NoError(t, err)
	assert.Len(t, reg.Configs(), 9)
}

func TestNewRegistryRejectsUnregistrableTables(t *testing.T) {
	_, err := NewRegistry(&rules.YearRules{Year: 2030, States: map[string]*rules.StateRules{
		"TX": {Name: "Texas", TaxType: rules.TaxNone, EffectiveYear: 2030},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no code")

	_, err = NewRegistry(&rules.YearRules{Year: 2030, States: map[string]*rules.StateRules{"TX": nil}})
	assert.Error(t, err)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := NewEmptyRegistry(2025)
	entry := Entry{Config: Config{Code: "xx"}, Calculator: func(models.JurisdictionTaxInput) models.JurisdictionResult { return models.JurisdictionResult{} }}
	require.NoError(t, reg.Register(entry))
	assert.Error(t, reg.Register(entry))
	assert.Error(t, reg.Register(Entry{Config: Config{Code: "YY"}}))
	assert.Error(t, reg.Register(Entry{Calculator: entry.Calculator}))

	_, err := reg.Lookup("XX")
	assert.NoError(t, err)
}

func TestNoTaxPassthrough(t *testing.T) {
	for _, code := range []string{"AK", "FL", "NV", "NH", "SD", "TN", "TX", "WA", "WY"} {
		t.Run(code, func(t *testing.T) {
			in := singleInput(60200)
			in.StateWithheld = dollars(100)
			res := calc(t, code, in)
			assert.Equal(t, dollars(60200), res.StateAGI)
			assert.Zero(t, res.StateTax)
			assert.Zero(t, res.TotalStateLiability)
			assert.Equal(t, dollars(100), res.StateRefundOrOwe)
			require.NotEmpty(t, res.Notes)
			assert.True(t, strings.HasSuffix(res.Notes[0], "has no personal income tax."))
		})
	}
}

func TestFlatRateWithExemption(t *testing.T) {
	const rate = 0.0495
	exemption := dollars(2850)
	for _, agi := range []int64{0, 1000, 2850, 2851, 60200, 249999} {
		t.Run(fmt.Sprint(agi), func(t *testing.T) {
			res := calc(t, "IL", singleInput(agi))
			want := money.Cents(0)
			if dollars(agi) >= exemption {
				want = money.MulRate(dollars(agi)-exemption, rate)
			}
			assert.Equal(t, want, res.StateTax)
			assert.Equal(t, want, res.TotalStateLiability)
		})
	}
	assert.Equal(t, money.Cents(283883), calc(t, "IL", singleInput(60200)).StateTax)
}

func TestExemptionCliff(t *testing.T) {
	res := calc(t, "IL", singleInput(250001))
	assert.Zero(t, res.StateExemptions)
	assert.Equal(t, dollars(250001), res.StateTaxableIncome)
}

func TestStartsFromFederalTaxableWithEITCMatch(t *testing.T) {
	in := singleInput(35000)
	in.Federal.TaxableIncome = dollars(20000)
	in.Federal.Credits.EarnedIncome = dollars(1000)

	res := calc(t, "CO", in)
	assert.Equal(t, dollars(20000), res.StateAGI)
	assert.Equal(t, dollars(880), res.StateTax)
	assert.Equal(t, dollars(350), res.StateCredits.Refundable)
	assert.Equal(t, dollars(880), res.TotalStateLiability)
	assert.Equal(t, -dollars(530), res.StateRefundOrOwe)
}

func TestSocialSecurityAndRetirementExclusions(t *testing.T) {
	in := singleInput(60000)
	in.Federal.Income.TaxableSocialSecurity = dollars(10000)
	res := calc(t, "GA", in)
	assert.Equal(t, dollars(50000), res.StateAGI)

	in = singleInput(80000)
	in.TaxpayerAge = 65
	in.Federal.Income.RetirementDistributions = dollars(30000)
	res = calc(t, "PA", in)
	assert.Equal(t, dollars(50000), res.StateAGI)
	assert.Equal(t, dollars(1535), res.StateTax)

	in.TaxpayerAge = 55
	assert.Equal(t, dollars(80000), calc(t, "PA", in).StateAGI)
}

func TestSurtaxTier(t *testing.T) {
	res := calc(t, "MA", singleInput(2000000))
	assert.Equal(t, dollars(1995600), res.StateTaxableIncome)
	assert.Equal(t, dollars(136278), res.StateTax)
}

func TestNonRefundableCreditsFloorLiability(t *testing.T) {
	res := calc(t, "UT", singleInput(10000))
	assert.Equal(t, dollars(450), res.StateTax)
	assert.Equal(t, dollars(450), res.StateCredits.NonRefundable)
	assert.Zero(t, res.TotalStateLiability)
	assert.Zero(t, res.StateRefundOrOwe)
}

func TestPropertyTaxChoice(t *testing.T) {
	in := singleInput(100000)
	in.PropertyTaxPaid = dollars(8000)

	in.PropertyTaxChoice = models.PropertyTaxCredit
	credit := calc(t, "NJ", in)
	assert.Zero(t, credit.StateDeduction)
	assert.Equal(t, dollars(50), credit.StateCredits.Refundable)
	assert.Equal(t, money.Cents(418005), credit.StateTax)

	in.PropertyTaxChoice = models.PropertyTaxDeduction
	deduction := calc(t, "NJ", in)
	assert.Equal(t, dollars(8000), deduction.StateDeduction)
	assert.Zero(t, deduction.StateCredits.Refundable)
	assert.Equal(t, money.Cents(367045), deduction.StateTax)

	in.PropertyTaxChoice = models.PropertyTaxAuto
	auto := calc(t, "NJ", in)
	assert.Equal(t, deduction.StateTax, auto.StateTax)
	assert.Equal(t, deduction.StateRefundOrOwe, auto.StateRefundOrOwe)
	assert.Contains(t, auto.Notes[len(auto.Notes)-1], "deduction used")
}

func TestPropertyTaxCreditAboveFloor(t *testing.T) {
	in := singleInput(40000)
	in.PropertyTaxPaid = dollars(3000)
	res := calc(t, "MI", in)
	// 60% of (3,000 - 3.2% of 40,000)
	assert.Equal(t, dollars(1032), res.StateCredits.Refundable)

	in = singleInput(80000)
	in.PropertyTaxPaid = dollars(3000)
	assert.Zero(t, calc(t, "MI", in).StateCredits.Refundable)
}

func TestLocalTaxes(t *testing.T) {
	tests := []struct {
		state, local string
		agi          int64
		stateTax     money.Cents
		localTax     money.Cents
	}{
		{"MI", "DETROIT", 50000, 187850, 106080},
		{"PA", "PHILADELPHIA", 50000, 153500, 187500},
		{"NY", "NYC", 100000, 495175, 344109},
		{"NY", "yonkers", 100000, 495175, 82942},
		{"NY", "BUFFALO", 100000, 495175, 0},
	}
	for _, tt := range tests {
		t.Run(tt.state+"/"+tt.local, func(t *testing.T) {
			in := singleInput(tt.agi)
			in.LocalCode = tt.local
			res := calc(t, tt.state, in)
			assert.Equal(t, tt.stateTax, res.StateTax)
			assert.Equal(t, tt.localTax, res.LocalTax)
			assert.Equal(t, tt.stateTax+tt.localTax, res.TotalStateLiability)
		})
	}
}

func TestCalculatorsArePure(t *testing.T) {
	reg := registry2025(t)
	in := singleInput(120000)
	in.Federal.Diagnostics = []models.Diagnostic{{Code: "FED-I-001"}}
	in.PropertyTaxPaid = dollars(5000)
	in.LocalCode = "NYC"
	want := in
	want.Federal.Diagnostics = append([]models.Diagnostic(nil), in.Federal.Diagnostics...)

	for _, c := range reg.Configs() {
		e, err := reg.Lookup(c.Code)
		require.NoError(t, err)
		first := e.Calculator(in)
		second := e.Calculator(in)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%s not deterministic (-first +second):\n%s", c.Code, diff)
		}
		if diff := cmp.Diff(want, in); diff != "" {
			t.Errorf("%s changed its input (-want +got):\n%s", c.Code, diff)
		}
	}
}

func TestLiabilityIdentity(t *testing.T) {
	reg := registry2025(t)
	in := singleInput(85000)
	in.TaxpayerAge = 67
	in.Dependents = 2
	in.StateWithheld = dollars(2500)
	in.Federal.Credits.EarnedIncome = dollars(300)

	for _, c := range reg.Configs() {
		e, _ := reg.Lookup(c.Code)
		res := e.Calculator(in)
		assert.Equal(t, money.SubFloor(res.StateTax+res.LocalTax, res.StateCredits.NonRefundable), res.TotalStateLiability, c.Code)
		assert.Equal(t, res.StateWithheld+res.StateEstPayments+res.StateCredits.Refundable-res.TotalStateLiability, res.StateRefundOrOwe, c.Code)
		assert.GreaterOrEqual(t, res.StateTaxableIncome, money.Cents(0), c.Code)
		assert.NotNil(t, res.Notes, c.Code)
	}
}

func TestOutOfRangeAmountsAreNotTaxed(t *testing.T) {
	for _, code := range []string{"IL", "NY", "TX"} {
		t.Run(code, func(t *testing.T) {
			in := singleInput(0)
			in.Federal.AGI = math.MaxInt64 - 100
			in.Additions = dollars(10)
			res := calc(t, code, in)
			assert.Zero(t, res.StateAGI)
			assert.Zero(t, res.StateTax)
			require.Len(t, res.Notes, 1)
			assert.Contains(t, res.Notes[0], "outside the supported range")

			in.Federal.AGI = money.MaxAmount + 1
			in.Additions = 0
			res = calc(t, code, in)
			assert.Zero(t, res.StateTax)
			assert.Contains(t, res.Notes[0], "outside the supported range")
		})
	}
}

func TestStateAGIAtTheRangeLimit(t *testing.T) {
	in := singleInput(0)
	in.Federal.AGI = money.MaxAmount
	in.Additions = money.MaxAmount
	res := calc(t, "IL", in)
	assert.Equal(t, 2*money.MaxAmount, res.StateAGI)
	assert.Positive(t, res.StateTax)
}

func TestMissingFilingStatus(t *testing.T) {
	in := singleInput(60200)
	in.FilingStatus = 0
	in.Federal.FilingStatus = 0
	var res models.JurisdictionResult
	require.NotPanics(t, func() { res = calc(t, "NY", in) })
	assert.Equal(t, "NY", res.Code)
	assert.Zero(t, res.StateTax)
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0], "No filing status")

	in.Federal.FilingStatus = models.Single
	assert.Equal(t, calc(t, "IL", singleInput(60200)).StateTax, calc(t, "IL", in).StateTax)
}

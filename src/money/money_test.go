package money

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
	}{
		{"0", 0},
		{"1", 100},
		{"1234.56", 123456},
		{"$1,234.56", 123456},
		{" 60,000 ", 6000000},
		{"-20", -2000},
		{"(45.10)", -4510},
		{"0.005", 1},
		{"-0.005", -1},
		{"0.0049", 0},
		{"2.675", 268},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsInvalidText(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "12a", "1.2.3", "NaN"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestParseOutOfRange(t *testing.T) {
	_, err := Parse("100000000000.01")
	var pe *PrecisionError
	require.True(t, errors.As(err, &pe))

	got, err := Parse("100000000000")
	require.NoError(t, err)
	assert.Equal(t, MaxAmount, got)
}

func TestFromFloat(t *testing.T) {
	got, err := FromFloat(19.99)
	require.NoError(t, err)
	assert.Equal(t, Cents(1999), got)

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FromFloat(f)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestFromDecimal(t *testing.T) {
	got, err := FromDecimal(decimal.RequireFromString("10.125"))
	require.NoError(t, err)
	assert.Equal(t, Cents(1013), got)
}

func TestMulRateRoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		name string
		c    Cents
		rate float64
		want Cents
	}{
		{"exact", 10000, 0.10, 1000},
		{"half up", 5, 0.10, 1},      // 0.5 -> 1
		{"below half", 4, 0.10, 0},   // 0.4 -> 0
		{"negative half", -5, 0.10, -1},
		{"fifteen percent", 123457, 0.15, 18519}, // 18518.55
		{"twenty two", 3327500, 0.22, 732050},
		{"zero rate", 999999, 0, 0},
		{"full rate", 12345, 1, 12345},
		{"payroll", 5000000, 0.153, 765000},
		{"se factor", 5000000, 0.9235, 4617500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MulRate(tt.c, tt.rate))
		})
	}
}

func TestMulRatio(t *testing.T) {
	assert.Equal(t, Cents(500), MulRatio(1000, 1, 2))
	assert.Equal(t, Cents(333), MulRatio(1000, 1, 3))
	assert.Equal(t, Cents(667), MulRatio(1000, 2, 3))
	assert.Equal(t, Cents(0), MulRatio(1000, 1, 0))
}

func TestAddSubDetectOverflow(t *testing.T) {
	s, err := Add(100, 250)
	require.NoError(t, err)
	assert.Equal(t, Cents(350), s)

	_, err = Add(math.MaxInt64, 1)
	var pe *PrecisionError
	assert.True(t, errors.As(err, &pe))

	_, err = Sub(math.MinInt64+1, 2)
	assert.True(t, errors.As(err, &pe))

	d, err := Sub(100, 250)
	require.NoError(t, err)
	assert.Equal(t, Cents(-150), d, "plain subtraction keeps negative balances")
}

func TestSubFloor(t *testing.T) {
	assert.Equal(t, Cents(0), SubFloor(100, 250))
	assert.Equal(t, Cents(0), SubFloor(250, 250))
	assert.Equal(t, Cents(150), SubFloor(250, 100))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, Cents(600), Sum(100, 200, 300))
	assert.Equal(t, Cents(5), Clamp(10, 0, 5))
	assert.Equal(t, Cents(0), Clamp(-10, 0, 5))
	assert.Equal(t, Cents(0), Cents(-3).Positive())
	assert.Equal(t, FromDollars(15000), Cents(1500000))
	assert.InDelta(t, 12.34, Cents(1234).Dollars(), 1e-9)
	assert.True(t, Cents(1234).Decimal().Equal(decimal.RequireFromString("12.34")))
	assert.True(t, MaxAmount.InRange())
	assert.False(t, (MaxAmount + 1).InRange())
}

func TestString(t *testing.T) {
	assert.Equal(t, "$0.00", Cents(0).String())
	assert.Equal(t, "$1,234.56", Cents(123456).String())
	assert.Equal(t, "-$0.05", Cents(-5).String())
	assert.Equal(t, "$60,200.00", FromDollars(60200).String())
}

func TestPhaseDown(t *testing.T) {
	d := FromDollars
	assert.Equal(t, d(2500), PhaseDown(d(2500), d(80000), d(85000), d(15000)))
	assert.Equal(t, d(1250), PhaseDown(d(2500), d(92500), d(85000), d(15000)))
	assert.Zero(t, PhaseDown(d(2500), d(100000), d(85000), d(15000)))
	assert.Zero(t, PhaseDown(d(900), d(1), 0, 0))
	assert.Zero(t, PhaseDown(-d(5), 0, d(10), d(10)))
}

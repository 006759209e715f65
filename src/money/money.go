// Package money holds the integer-cents arithmetic every tax computation is built on.
//
// Amounts are int64 cents. Multiplication by a rate is the only operation that can
// produce a fraction of a cent and it always rounds half away from zero, so two code
// paths computing the same tax never disagree by a cent.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Cents is a currency amount in whole cents.
type Cents int64

// MaxAmount bounds any single input field ($100 billion). Sums of a few hundred bounded
// fields stay far inside int64, which is what lets the pipeline use plain + internally.
const MaxAmount Cents = 100_000_000_000 * 100

var hundred = decimal.NewFromInt(100)

// ErrInvalidAmount is returned for text that is not a decimal currency amount.
var ErrInvalidAmount = errors.New("invalid currency amount")

// PrecisionError reports an amount outside the safely representable range.
type PrecisionError struct {
	Value string
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("amount %s exceeds the safe range of ±%s", e.Value, MaxAmount.String())
}

// FromDollars converts a whole-dollar amount. Handy for rule tables.
func FromDollars(d int64) Cents {
	return Cents(d * 100)
}

// FromDecimal converts a decimal dollar amount to cents, rounding half away from zero.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	c := d.Mul(hundred).Round(0)
	limit := decimal.NewFromInt(int64(MaxAmount))
	if c.Abs().GreaterThan(limit) {
		return 0, &PrecisionError{Value: d.String()}
	}
	return Cents(c.IntPart()), nil
}

// FromFloat converts a float dollar amount. NaN and infinities are rejected.
func FromFloat(f float64) (Cents, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: non-finite value %v", ErrInvalidAmount, f)
	}
	return FromDecimal(decimal.NewFromFloat(f))
}

// Parse converts decimal dollar text such as "1,234.56" or "$-20" to cents.
// Blank text is an error here; callers that want blank-as-zero go through
// validation.AmountParser which records a warning.
func Parse(text string) (Cents, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(text))
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty text", ErrInvalidAmount)
	}
	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	if negative {
		d = d.Neg()
	}
	return FromDecimal(d)
}

// MulRate multiplies by a rate and rounds to the nearest cent, half away from zero.
func MulRate(c Cents, rate float64) Cents {
	if c == 0 || rate == 0 {
		return 0
	}
	product := decimal.NewFromInt(int64(c)).Mul(decimal.NewFromFloat(rate))
	return Cents(product.Round(0).IntPart())
}

// MulRatio returns c × num / den rounded half away from zero. Used for proration
// (e.g. foreign-income share of taxable income) where the ratio itself is a quotient of
// two amounts. den must be non-zero.
func MulRatio(c, num, den Cents) Cents {
	if den == 0 {
		return 0
	}
	q := decimal.NewFromInt(int64(c)).Mul(decimal.NewFromInt(int64(num))).
		DivRound(decimal.NewFromInt(int64(den)), 8)
	return Cents(q.Round(0).IntPart())
}

// Add returns a+b or a PrecisionError if the sum would leave int64.
func Add(a, b Cents) (Cents, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, &PrecisionError{Value: fmt.Sprintf("%d+%d", a, b)}
	}
	return s, nil
}

// Sub returns a-b or a PrecisionError if the difference would leave int64.
func Sub(a, b Cents) (Cents, error) {
	if b == math.MinInt64 {
		return 0, &PrecisionError{Value: fmt.Sprintf("%d-%d", a, b)}
	}
	return Add(a, -b)
}

// SubFloor is a-b floored at zero: the "cannot go below nothing" subtraction most tax
// bases use. Refund/owe balances must use plain subtraction instead.
func SubFloor(a, b Cents) Cents {
	if a <= b {
		return 0
	}
	return a - b
}

// Sum adds amounts. Inputs are bounded by MaxAmount, so this cannot wrap for any
// realistic number of terms.
func Sum(amounts ...Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}

func Min(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}

func Max(a, b Cents) Cents {
	if a > b {
		return a
	}
	return b
}

// Clamp limits c to [lo, hi].
func Clamp(c, lo, hi Cents) Cents {
	return Max(lo, Min(c, hi))
}

// PhaseDown reduces amount linearly to zero as income rises from start across width.
// A zero width removes the amount as soon as income exceeds start.
func PhaseDown(amount, income, start, width Cents) Cents {
	if amount <= 0 || income <= start {
		return amount.Positive()
	}
	if width <= 0 || income >= start+width {
		return 0
	}
	return MulRatio(amount, start+width-income, width)
}

// Positive returns c when positive, else zero.
func (c Cents) Positive() Cents {
	return Max(c, 0)
}

// Dollars returns the amount as float dollars. For display and ratios only.
func (c Cents) Dollars() float64 {
	return float64(c) / 100
}

// Decimal returns the exact dollar amount.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// InRange reports whether |c| is within MaxAmount.
func (c Cents) InRange() bool {
	return c <= MaxAmount && c >= -MaxAmount
}

// String formats as "$1,234.56" or "-$1,234.56".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		if v == math.MinInt64 {
			return "-$" + humanize.Comma(math.MaxInt64/100) + ".08"
		}
		v = -v
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(v/100), v%100)
}

package processors

import (
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
)

// TaxApplier turns an amount of taxable income into tax.
type TaxApplier interface {
	Apply(amount money.Cents) money.Cents
	Marginal(amount money.Cents) float64
}

// ScheduleApplier taxes through a marginal bracket schedule.
type ScheduleApplier struct {
	Schedule models.Schedule
}

func (a ScheduleApplier) Apply(amount money.Cents) money.Cents {
	return BracketTax(amount, a.Schedule)
}

func (a ScheduleApplier) Marginal(amount money.Cents) float64 {
	return MarginalRate(amount, a.Schedule)
}

// FlatApplier taxes every dollar at one rate, with an optional surtax above Threshold.
type FlatApplier struct {
	Rate            float64
	SurtaxThreshold money.Cents
	SurtaxRate      float64
}

func (a FlatApplier) Apply(amount money.Cents) money.Cents {
	if amount <= 0 {
		return 0
	}
	tax := money.MulRate(amount, a.Rate)
	if a.SurtaxRate > 0 && amount > a.SurtaxThreshold {
		tax += money.MulRate(amount-a.SurtaxThreshold, a.SurtaxRate)
	}
	return tax
}

func (a FlatApplier) Marginal(amount money.Cents) float64 {
	if a.SurtaxRate > 0 && amount > a.SurtaxThreshold {
		return a.Rate + a.SurtaxRate
	}
	return a.Rate
}

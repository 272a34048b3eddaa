package stats

import (
	"github.com/rustyeddy/strategylab/ledger"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	percent = decimal.New(1, -2) // 0.01
)

// multiplierDigits is the number of significant digits the balance
// multiplier is held at.
const multiplierDigits = 10

// Replay accumulates profit against a running balance, scaling the dollar
// value of a point with account growth. The zero value is not usable; build
// one with NewReplay.
//
// Replay is a plain value: copying it snapshots the balance, and applying
// the remaining trades to the copy continues the same recurrence.
type Replay struct {
	PricePerPoint decimal.Decimal
	Initial       decimal.Decimal
	Balance       decimal.Decimal
	Count         int

	multiplier decimal.Decimal
}

func NewReplay(pricePerPoint, initialBalance float64) Replay {
	ppp := decimal.NewFromFloat(pricePerPoint)
	initial := decimal.NewFromFloat(initialBalance)
	return Replay{
		PricePerPoint: ppp,
		Initial:       initial,
		Balance:       initial,
		multiplier:    divideSignificant(ppp, initial.Mul(percent), multiplierDigits),
	}
}

// PointValue is the price per point the next trade will be booked at.
func (r *Replay) PointValue() decimal.Decimal {
	if r.Count == 0 {
		return r.PricePerPoint
	}
	return r.Balance.Mul(percent).Mul(r.multiplier).RoundBank(2)
}

// Apply books one trade and returns the profit it contributed.
func (r *Replay) Apply(t ledger.Trade) decimal.Decimal {
	profit := t.Profit(r.PointValue())
	r.Balance = r.Balance.Add(profit)
	r.Count++
	return profit
}

// ApplyAll books trades in the order given.
func (r *Replay) ApplyAll(trades []ledger.Trade) {
	for _, t := range trades {
		r.Apply(t)
	}
}

// Profit is the balance gained or lost since the replay started.
func (r *Replay) Profit() decimal.Decimal {
	return r.Balance.Sub(r.Initial)
}

// divide returns a/b rounded half-even to places. A zero divisor yields
// a*100, the convention for all-win or all-loss samples.
func divide(a, b decimal.Decimal, places int32) decimal.Decimal {
	if b.IsZero() {
		return a.Mul(hundred)
	}
	return a.Div(b).RoundBank(places)
}

// divideSignificant is divide rounded half-even to digits significant
// digits rather than to a fixed number of places.
func divideSignificant(a, b decimal.Decimal, digits int) decimal.Decimal {
	if b.IsZero() {
		return a.Mul(hundred)
	}
	q := a.DivRound(b, 32)
	if q.IsZero() {
		return q
	}
	// q.NumDigits()+q.Exponent() is the count of digits left of the point
	places := int32(digits - q.NumDigits() - int(q.Exponent()))
	return q.RoundBank(places)
}

// wholePercentage is round(num/den*100); zero when den is zero.
func wholePercentage(num, den decimal.Decimal) int {
	if den.IsZero() {
		return 0
	}
	return int(num.Mul(hundred).DivRound(den, 0).IntPart())
}

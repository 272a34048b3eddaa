package strategy

import (
	"fmt"

	"github.com/rustyeddy/strategylab/ledger"
	"github.com/rustyeddy/strategylab/market"
	"github.com/shopspring/decimal"
)

// Bloom is a straddle: at the signal bar it opens a BUY and a SELL at the
// bar's open, each with its own take-profit and stop-loss. Whichever side
// the day trends toward pays for the other.
type Bloom struct {
	params BloomParams
}

func NewBloom(p BloomParams) *Bloom {
	return &Bloom{params: p}
}

func (b *Bloom) Name() string { return "bloom" }

func (b *Bloom) Params() Params { return b.params.Params }

// legDistances returns the take-profit and stop-loss distances for one leg,
// after normalization and variance scaling.
func (b *Bloom) legDistances(side ledger.Side) (tp, sl decimal.Decimal, err error) {
	p := b.params
	own, err := p.LimitFor(side)
	if err != nil {
		return tp, sl, err
	}

	tp = decimal.NewFromFloat(own.TakeProfit)
	sl = decimal.NewFromFloat(own.StopLoss)

	if p.Normalize {
		// the sibling's stop is what a winning leg has to cover
		other, err := p.LimitFor(-side)
		if err != nil {
			return tp, sl, err
		}
		span := tp.Sub(decimal.NewFromFloat(other.StopLoss))
		target := decimal.NewFromFloat(p.AbsoluteProfitTarget)
		if !span.Equal(target) {
			tp = tp.Add(target.Sub(span))
		}
	}

	v := decimal.NewFromFloat(p.Variance)
	return tp.Mul(v), sl.Mul(v), nil
}

func (b *Bloom) Simulate(r market.DateRange, bars market.Series) (Outcome, error) {
	p := b.params
	out := Outcome{Strategy: b.Name(), Params: p.Params, Range: r}

	buyTP, buySL, err := b.legDistances(ledger.Buy)
	if err != nil {
		return out, fmt.Errorf("bloom: %w", err)
	}
	sellTP, sellSL, err := b.legDistances(ledger.Sell)
	if err != nil {
		return out, fmt.Errorf("bloom: %w", err)
	}

	l := newLedger(r)
	if p.BreakEvenOffset > 0 {
		l.BreakEvenOffset = decimal.NewFromFloat(p.BreakEvenOffset)
	}

	for _, date := range bars.Dates(r) {
		day := bars[date]
		for _, bar := range day {
			if bar.At(p.StartHour, p.StartMinute) {
				open := decimal.NewFromFloat(bar.Open)
				buy, err := l.Open(ledger.Buy, p.LotSize, bar.Time, open, limitPrice(open, buySL, false), limitPrice(open, buyTP, true))
				if err != nil {
					return out, fmt.Errorf("bloom: %w", err)
				}
				sell, err := l.Open(ledger.Sell, p.LotSize, bar.Time, open, limitPrice(open, sellSL, true), limitPrice(open, sellTP, false))
				if err != nil {
					return out, fmt.Errorf("bloom: %w", err)
				}
				if p.BreakEvenStop {
					if err := l.Link(buy.ID, sell.ID); err != nil {
						return out, fmt.Errorf("bloom: %w", err)
					}
				}
				if isExitBar(bar) {
					l.CloseAll(bar.Time, open, ledger.EndOfDay)
					break
				}
				// limits are evaluated from the next bar on
				continue
			}

			if manageExits(l, bar) {
				break
			}
		}
		closeDay(l, day)
	}

	out.Trades = l.Closed()
	return out, nil
}

package strategy

import (
	"fmt"

	"github.com/rustyeddy/strategylab/ledger"
	"github.com/rustyeddy/strategylab/market"
	"github.com/shopspring/decimal"
)

// DefaultMaxEntries caps Sprout entries per trading day.
const DefaultMaxEntries = 3

// Sprout trades failed breakouts: a signal bar pushes past the reference
// bar in one direction and the current bar reverses through the signal
// bar's opposite extreme.
type Sprout struct {
	params SproutParams
}

func NewSprout(p SproutParams) *Sprout {
	return &Sprout{params: p}
}

func (s *Sprout) Name() string { return "sprout" }

func (s *Sprout) Params() Params { return s.params.Params }

// inWindow reports whether the bar opens strictly between 09:30 and 16:30.
func inWindow(b market.Bar) bool {
	m := b.Time.Hour()*60 + b.Time.Minute()
	return m > 9*60+30 && m < 16*60+30
}

// signal classifies the three-bar pattern ending at cur. It returns 0 when
// there is nothing to trade.
func signal(ref, sig, cur market.Bar) ledger.Side {
	if cur.Time.Hour() == exitHour {
		return 0
	}
	if cur.IsMutuallyExclusive(sig) || sig.IsMutuallyExclusive(ref) {
		return 0
	}

	if sig.Low < ref.Low && cur.High > sig.High && cur.Low > sig.Low && sig.HasBullishIndication() {
		return ledger.Buy
	}
	if sig.High > ref.High && cur.Low < sig.Low && cur.High < sig.High && sig.HasBearishIndication() {
		return ledger.Sell
	}
	return 0
}

// stopDistance sizes the stop from the signal bar's range, measured from
// the far side of the signal bar back to the entry.
func (s *Sprout) stopDistance(sig market.Bar) decimal.Decimal {
	p := s.params
	rng := decimal.NewFromFloat(sig.Range())
	dist := rng.Add(rng.Mul(decimal.NewFromFloat(p.Variance)))

	if floor := decimal.NewFromFloat(p.MinimumRisk); dist.LessThan(floor) {
		dist = floor
	}
	if p.AllowableRisk > 0 {
		if ceiling := decimal.NewFromFloat(p.AllowableRisk); dist.GreaterThan(ceiling) {
			dist = ceiling
		}
	}
	return dist
}

// rewardDistance scales the signal bar's range by the profit multiplier and
// clamps it to the configured reward band.
func (s *Sprout) rewardDistance(sig market.Bar) decimal.Decimal {
	p := s.params
	dist := decimal.NewFromFloat(sig.Range()).Mul(decimal.NewFromFloat(p.ProfitMultiplier))

	if floor := decimal.NewFromFloat(p.MinimumReward); dist.LessThan(floor) {
		return floor
	}
	if ceiling := decimal.NewFromFloat(p.AllowableReward); p.AllowableReward > 0 && dist.GreaterThan(ceiling) {
		return ceiling
	}
	return dist
}

func (s *Sprout) Simulate(r market.DateRange, bars market.Series) (Outcome, error) {
	p := s.params
	out := Outcome{Strategy: s.Name(), Params: p.Params, Range: r}

	maxEntries := p.MaxEntriesPerDay
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	l := newLedger(r)
	for _, date := range bars.Dates(r) {
		day := bars[date]
		entries := 0
		for i, cur := range day {
			opened := false
			if i >= 2 && entries < maxEntries && inWindow(cur) && l.OpenCount() == 0 {
				sig := day[i-1]
				if side := signal(day[i-2], sig, cur); side != 0 {
					if err := s.enter(l, side, sig, cur); err != nil {
						return out, err
					}
					entries++
					opened = true
				}
			}

			if opened {
				continue
			}
			if manageExits(l, cur) {
				break
			}
		}
		closeDay(l, day)
	}

	out.Trades = l.Closed()
	return out, nil
}

func (s *Sprout) enter(l *ledger.Ledger, side ledger.Side, sig, cur market.Bar) error {
	price := decimal.NewFromFloat(sig.Low)
	if side == ledger.Buy {
		price = decimal.NewFromFloat(sig.High)
	}

	stopDist := s.stopDistance(sig)
	takeDist := s.rewardDistance(sig)

	buy := side == ledger.Buy
	stop := limitPrice(price, stopDist, !buy)
	take := limitPrice(price, takeDist, buy)

	if _, err := l.Open(side, s.params.LotSize, cur.Time, price, stop, take); err != nil {
		return fmt.Errorf("sprout: %w", err)
	}
	return nil
}

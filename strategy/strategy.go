package strategy

import (
	"time"

	"github.com/rustyeddy/strategylab/ledger"
	"github.com/rustyeddy/strategylab/market"
	"github.com/rustyeddy/strategylab/pkg/id"
	"github.com/shopspring/decimal"
)

// Strategy simulates one parameter set over a date range. Each call to
// Simulate owns a fresh ledger, so a Strategy value may be reused and
// distinct strategies may run concurrently.
type Strategy interface {
	Name() string
	Params() Params
	Simulate(r market.DateRange, bars market.Series) (Outcome, error)
}

// Outcome is everything a run produced: the parameters it used, the range
// it covered and its closed trades in close-time order.
type Outcome struct {
	Strategy string
	Params   Params
	Range    market.DateRange
	Trades   []ledger.Trade
}

// exit bar: trades still open at 16:00 are force-closed.
const (
	exitHour   = 16
	exitMinute = 0
)

func isExitBar(b market.Bar) bool {
	return b.At(exitHour, exitMinute)
}

// limitPrice offsets price by distance and rounds to cents, half-even.
func limitPrice(price decimal.Decimal, distance decimal.Decimal, add bool) decimal.Decimal {
	if add {
		return price.Add(distance).RoundBank(2)
	}
	return price.Sub(distance).RoundBank(2)
}

// manageExits runs the shared per-bar exit handling once the strategy has had its
// chance to open trades on b: check limits, then force-close at the exit
// bar. It reports whether the day is finished.
func manageExits(l *ledger.Ledger, b market.Bar) bool {
	l.Check(b)
	if isExitBar(b) {
		l.CloseAll(b.Time, decimal.NewFromFloat(b.Open), ledger.EndOfDay)
		return true
	}
	return false
}

// closeDay finishes a day that had no exit bar at its last bar's close.
func closeDay(l *ledger.Ledger, bars []market.Bar) {
	if l.OpenCount() == 0 || len(bars) == 0 {
		return
	}
	last := bars[len(bars)-1]
	l.CloseAll(last.Time, decimal.NewFromFloat(last.Close), ledger.EndOfDay)
}

// newLedger seeds trade ids from the range start so repeated runs over the
// same input mint the same ids.
func newLedger(r market.DateRange) *ledger.Ledger {
	seed := r.Start.In(time.UTC).UnixNano()
	return ledger.New(id.NewGenerator(seed))
}

// Package stats derives performance figures from a simulation outcome.
// Everything here is pure: the same outcome always produces the same Result.
package stats

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/rustyeddy/strategylab/ledger"
	"github.com/rustyeddy/strategylab/market"
	"github.com/rustyeddy/strategylab/strategy"
	"github.com/shopspring/decimal"
)

// OutlierMinutes is one trading session. Trades lasting at least this long
// are left out of duration averages.
const OutlierMinutes = 390

// Entry is one row of the cumulative report, emitted per trade in close
// order.
type Entry struct {
	CumulativePoints decimal.Decimal
	CumulativeProfit decimal.Decimal
	CumulativeTrades int

	Side      string
	OpenTime  time.Time
	CloseTime time.Time
	Points    decimal.Decimal
	Profit    decimal.Decimal
}

// Result is the derived, read-only summary of one outcome.
type Result struct {
	Strategy string
	Params   strategy.Params
	Range    market.DateRange
	Trades   []ledger.Trade

	Hits   int
	Misses int

	WinPercentage      int
	DailyWinPercentage int
	Retention          int

	PointsGained  decimal.Decimal
	PointsLost    decimal.Decimal // magnitude, never negative
	NetPoints     decimal.Decimal
	Profitability decimal.Decimal

	AverageTradeDuration int64
	AverageWinDuration   int64
	AverageLossDuration  int64

	NetProfit        decimal.Decimal
	MaxDrawdown      decimal.Decimal
	RelativeDrawdown decimal.Decimal

	Entries []Entry
}

// Key is the variant the result was computed for.
func (r Result) Key() strategy.VariantKey {
	return r.Params.Key()
}

// Compute builds the Result for o. An outcome with no trades yields a
// zero-valued Result, which is valid.
func Compute(o strategy.Outcome) Result {
	trades := append([]ledger.Trade(nil), o.Trades...)
	ledger.SortByClose(trades)

	res := Result{
		Strategy: o.Strategy,
		Params:   o.Params,
		Range:    o.Range,
		Trades:   trades,
	}

	var all, wins, losses durations
	for _, t := range trades {
		pts := t.Points()
		all.add(t)
		switch pts.Sign() {
		case 1:
			res.Hits++
			res.PointsGained = res.PointsGained.Add(pts)
			wins.add(t)
		case -1:
			res.Misses++
			res.PointsLost = res.PointsLost.Add(pts.Abs())
			losses.add(t)
		}
	}

	res.NetPoints = res.PointsGained.Sub(res.PointsLost)
	res.WinPercentage = wholePercentage(decimal.NewFromInt(int64(res.Hits)), decimal.NewFromInt(int64(res.Hits+res.Misses)))
	res.Retention = wholePercentage(res.PointsGained, res.PointsGained.Add(res.PointsLost))
	res.Profitability = divide(res.PointsGained, res.PointsLost, 2)
	res.DailyWinPercentage = dailyWinPercentage(trades)

	res.AverageTradeDuration = all.mean()
	res.AverageWinDuration = wins.mean()
	res.AverageLossDuration = losses.mean()

	res.Entries, res.NetProfit = entries(trades, o.Params)
	res.MaxDrawdown, res.RelativeDrawdown = drawdowns(trades)

	return res
}

// entries builds the cumulative report and the net profit under the run's
// pricing rules.
func entries(trades []ledger.Trade, p strategy.Params) ([]Entry, decimal.Decimal) {
	replay := NewReplay(p.PricePerPoint, p.InitialBalance)
	flat := decimal.NewFromFloat(p.PricePerPoint)

	out := make([]Entry, 0, len(trades))
	var points, profit decimal.Decimal
	for i, t := range trades {
		delta := t.Profit(flat)
		if p.ScaleProfits {
			delta = replay.Apply(t)
		}
		points = points.Add(t.Points())
		profit = profit.Add(delta)

		out = append(out, Entry{
			CumulativePoints: points,
			CumulativeProfit: profit,
			CumulativeTrades: i + 1,
			Side:             t.Side.Label(),
			OpenTime:         t.OpenTime,
			CloseTime:        t.CloseTime,
			Points:           t.Points(),
			Profit:           delta,
		})
	}

	if !p.ScaleProfits {
		return out, points.Mul(flat).RoundBank(2)
	}
	return out, replay.Profit()
}

// drawdowns returns the lowest point of the cumulative points trace and the
// worst run of consecutive non-winning trades.
func drawdowns(trades []ledger.Trade) (maxDD, relDD decimal.Decimal) {
	var cum, run decimal.Decimal
	for _, t := range trades {
		pts := t.Points()
		cum = cum.Add(pts)
		if cum.LessThan(maxDD) {
			maxDD = cum
		}

		if pts.IsPositive() {
			run = decimal.Zero
		} else {
			run = run.Add(pts)
		}
		if run.LessThan(relDD) {
			relDD = run
		}
	}
	return maxDD, relDD
}

func dailyWinPercentage(trades []ledger.Trade) int {
	days := make(map[civil.Date]decimal.Decimal)
	for _, t := range trades {
		d := civil.DateOf(t.OpenTime)
		days[d] = days[d].Add(t.Points())
	}

	positive := 0
	for _, pts := range days {
		if pts.IsPositive() {
			positive++
		}
	}
	return wholePercentage(decimal.NewFromInt(int64(positive)), decimal.NewFromInt(int64(len(days))))
}

type durations struct {
	sum int64
	n   int64
}

func (d *durations) add(t ledger.Trade) {
	if m := t.Duration(); m < OutlierMinutes {
		d.sum += m
		d.n++
	}
}

func (d durations) mean() int64 {
	if d.n == 0 {
		return 0
	}
	return decimal.NewFromInt(d.sum).Div(decimal.NewFromInt(d.n)).IntPart()
}

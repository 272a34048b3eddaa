package strategy

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rustyeddy/strategylab/ledger"
	"github.com/rustyeddy/strategylab/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = civil.Date{Year: 2024, Month: time.March, Day: 4}

var wholeDay = market.DateRange{Start: day, End: day.AddDays(1)}

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func at(hh, mm int, o, h, l, c float64) market.Bar {
	return market.Bar{
		Time:     day.In(time.UTC).Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute),
		Interval: market.FiveMinute,
		Open:     o, High: h, Low: l, Close: c,
	}
}

func series(bars ...market.Bar) market.Series {
	s := market.Series{}
	s.Add(bars...)
	return s
}

func bySide(t *testing.T, trades []ledger.Trade, side ledger.Side) ledger.Trade {
	t.Helper()
	for _, tr := range trades {
		if tr.Side == side {
			return tr
		}
	}
	require.Failf(t, "missing trade", "no %s trade in %d", side, len(trades))
	return ledger.Trade{}
}

func bloomParams() BloomParams {
	return BloomParams{
		Params: Params{
			StartHour:     9,
			StartMinute:   30,
			Variance:      1,
			LotSize:       1,
			BuyLimit:      Limit{TakeProfit: 20, StopLoss: 30},
			SellLimit:     Limit{TakeProfit: 20, StopLoss: 30},
			PricePerPoint: 2,
		},
	}
}

func TestBloomTakeProfitBeforeSiblingStop(t *testing.T) {
	t.Parallel()

	bars := series(
		at(9, 30, 100, 101, 99, 100),
		at(9, 35, 100, 121, 99, 118),  // buy take-profit at 120
		at(9, 40, 120, 131, 120, 129), // sell stop at 130
	)

	out, err := NewBloom(bloomParams()).Simulate(wholeDay, bars)
	require.NoError(t, err)
	require.Len(t, out.Trades, 2)
	assert.Equal(t, "bloom", out.Strategy)

	buy := out.Trades[0]
	assert.Equal(t, ledger.Buy, buy.Side)
	assert.Equal(t, ledger.TakeProfit, buy.Reason)
	assert.True(t, buy.Points().Equal(d(20)))

	sell := out.Trades[1]
	assert.Equal(t, ledger.Sell, sell.Side)
	assert.Equal(t, ledger.StopLoss, sell.Reason)
	assert.True(t, sell.Points().Equal(d(-30)))
	assert.True(t, sell.OpenPrice.Equal(d(100)))
}

func TestBloomSignalBarIsNotChecked(t *testing.T) {
	t.Parallel()

	// the signal bar itself spans both take-profits
	bars := series(
		at(9, 30, 100, 125, 75, 100),
		at(16, 0, 101, 102, 100, 101),
	)

	out, err := NewBloom(bloomParams()).Simulate(wholeDay, bars)
	require.NoError(t, err)
	require.Len(t, out.Trades, 2)
	for _, tr := range out.Trades {
		assert.Equal(t, ledger.EndOfDay, tr.Reason)
	}
}

func TestBloomForcedCloseAtExitBar(t *testing.T) {
	t.Parallel()

	bars := series(
		at(9, 30, 100, 101, 99, 100),
		at(10, 0, 100, 105, 95, 102),
		at(16, 0, 103, 104, 102, 103),
		at(16, 5, 103, 140, 60, 103), // ignored, the day is closed
	)

	out, err := NewBloom(bloomParams()).Simulate(wholeDay, bars)
	require.NoError(t, err)
	require.Len(t, out.Trades, 2)

	buy := bySide(t, out.Trades, ledger.Buy)
	sell := bySide(t, out.Trades, ledger.Sell)
	assert.Equal(t, ledger.EndOfDay, buy.Reason)
	assert.True(t, buy.ClosePrice.Equal(d(103)))
	assert.True(t, buy.Points().Equal(d(3)))
	assert.True(t, sell.Points().Equal(d(-3)))
	assert.Equal(t, int64(390), buy.Duration())
}

func TestBloomDayWithoutExitBar(t *testing.T) {
	t.Parallel()

	bars := series(
		at(9, 30, 100, 101, 99, 100),
		at(12, 0, 100, 105, 95, 104),
	)

	out, err := NewBloom(bloomParams()).Simulate(wholeDay, bars)
	require.NoError(t, err)
	require.Len(t, out.Trades, 2)
	buy := bySide(t, out.Trades, ledger.Buy)
	assert.True(t, buy.ClosePrice.Equal(d(104)))
	assert.Equal(t, ledger.EndOfDay, buy.Reason)
}

func TestBloomBreakEvenStop(t *testing.T) {
	t.Parallel()

	p := bloomParams()
	p.BuyLimit = Limit{TakeProfit: 40, StopLoss: 10}
	p.SellLimit = Limit{TakeProfit: 40, StopLoss: 10}
	p.BreakEvenStop = true

	bars := series(
		at(9, 30, 100, 101, 99, 100),
		at(9, 35, 100, 101, 89, 90), // buy stopped at 90
		at(9, 40, 90, 91, 88, 90),   // sell stop now at 115, nothing hit
		at(10, 0, 100, 116, 99, 110),
	)

	out, err := NewBloom(p).Simulate(wholeDay, bars)
	require.NoError(t, err)
	require.Len(t, out.Trades, 2)

	buy := bySide(t, out.Trades, ledger.Buy)
	assert.True(t, buy.ClosePrice.Equal(d(90)))

	sell := bySide(t, out.Trades, ledger.Sell)
	assert.Equal(t, ledger.StopLoss, sell.Reason)
	assert.Equal(t, at(10, 0, 0, 0, 0, 0).Time, sell.CloseTime)
	assert.True(t, sell.ClosePrice.Equal(d(115)), "got %s", sell.ClosePrice)
	assert.True(t, sell.Points().Equal(d(-15)))
}

func TestBloomLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*BloomParams)
		buyTake  float64
		sellTake float64
		buyStop  float64
	}{
		{
			name:     "plain",
			mutate:   func(*BloomParams) {},
			buyTake:  120,
			sellTake: 80,
			buyStop:  70,
		},
		{
			name:     "variance",
			mutate:   func(p *BloomParams) { p.Variance = 1.1 },
			buyTake:  122,
			sellTake: 78,
			buyStop:  67,
		},
		{
			name: "normalized",
			mutate: func(p *BloomParams) {
				p.BuyLimit = Limit{TakeProfit: 15, StopLoss: 10}
				p.SellLimit = Limit{TakeProfit: 15, StopLoss: 10}
				p.Normalize = true
				p.AbsoluteProfitTarget = 20
			},
			buyTake:  130,
			sellTake: 70,
			buyStop:  90,
		},
		{
			name: "normalized down to target",
			mutate: func(p *BloomParams) {
				p.BuyLimit = Limit{TakeProfit: 40, StopLoss: 10}
				p.SellLimit = Limit{TakeProfit: 40, StopLoss: 10}
				p.Normalize = true
				p.AbsoluteProfitTarget = 20
			},
			buyTake:  130,
			sellTake: 70,
			buyStop:  90,
		},
		{
			name: "normalized on target",
			mutate: func(p *BloomParams) {
				p.BuyLimit = Limit{TakeProfit: 30, StopLoss: 10}
				p.SellLimit = Limit{TakeProfit: 30, StopLoss: 10}
				p.Normalize = true
				p.AbsoluteProfitTarget = 20
				p.Variance = 1.5
			},
			buyTake:  145,
			sellTake: 55,
			buyStop:  85,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := bloomParams()
			tt.mutate(&p)
			bars := series(at(9, 30, 100, 101, 99, 100), at(16, 0, 100, 101, 99, 100))

			out, err := NewBloom(p).Simulate(wholeDay, bars)
			require.NoError(t, err)

			buy := bySide(t, out.Trades, ledger.Buy)
			sell := bySide(t, out.Trades, ledger.Sell)
			assert.True(t, buy.TakeProfit.Equal(d(tt.buyTake)), "buy take %s", buy.TakeProfit)
			assert.True(t, sell.TakeProfit.Equal(d(tt.sellTake)), "sell take %s", sell.TakeProfit)
			assert.True(t, buy.StopLoss.Equal(d(tt.buyStop)), "buy stop %s", buy.StopLoss)
		})
	}
}

func TestBloomSkipsDatesOutsideRange(t *testing.T) {
	t.Parallel()

	bars := series(at(9, 30, 100, 101, 99, 100), at(16, 0, 100, 101, 99, 100))

	tests := []struct {
		name string
		r    market.DateRange
	}{
		{"after", market.DateRange{Start: day.AddDays(1), End: day.AddDays(5)}},
		{"end exclusive", market.DateRange{Start: day.AddDays(-3), End: day}},
		{"inverted", market.DateRange{Start: day.AddDays(1), End: day}},
		{"zero", market.DateRange{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewBloom(bloomParams()).Simulate(tt.r, bars)
			require.NoError(t, err)
			assert.Empty(t, out.Trades)
		})
	}
}

func TestBloomNoSignalBar(t *testing.T) {
	t.Parallel()

	out, err := NewBloom(bloomParams()).Simulate(wholeDay, series(at(10, 0, 100, 101, 99, 100)))
	require.NoError(t, err)
	assert.Empty(t, out.Trades)
	assert.Equal(t, wholeDay, out.Range)
}

func sproutParams() SproutParams {
	return SproutParams{
		Params: Params{
			Variance:      0.5,
			LotSize:       1,
			PricePerPoint: 1,
		},
		ProfitMultiplier: 2,
		MinimumReward:    5,
		AllowableReward:  20,
		MinimumRisk:      5,
	}
}

func TestSproutBuyReversal(t *testing.T) {
	t.Parallel()

	bars := series(
		at(9, 35, 105, 106, 100, 101), // reference
		at(9, 40, 99, 104, 98, 103),   // signal: lower low, bullish
		at(9, 45, 100, 105, 99, 104),  // current: breaks the signal high
		at(9, 50, 104, 117, 100, 116),
	)

	out, err := NewSprout(sproutParams()).Simulate(wholeDay, bars)
	require.NoError(t, err)
	require.Len(t, out.Trades, 1)

	tr := out.Trades[0]
	assert.Equal(t, ledger.Buy, tr.Side)
	assert.True(t, tr.OpenPrice.Equal(d(104)))
	assert.Equal(t, bars[day][2].Time, tr.OpenTime)
	assert.True(t, tr.StopLoss.Equal(d(95)), "stop %s", tr.StopLoss)
	assert.True(t, tr.TakeProfit.Equal(d(116)), "take %s", tr.TakeProfit)
	assert.Equal(t, ledger.TakeProfit, tr.Reason)
	assert.True(t, tr.Points().Equal(d(12)))
}

func TestSproutSellReversal(t *testing.T) {
	t.Parallel()

	bars := series(
		at(9, 35, 95, 100, 94, 99),
		at(9, 40, 101, 102, 96, 97),
		at(9, 45, 100, 101, 95, 96),
		at(16, 0, 90, 92, 88, 90),
	)

	out, err := NewSprout(sproutParams()).Simulate(wholeDay, bars)
	require.NoError(t, err)
	require.Len(t, out.Trades, 1)

	tr := out.Trades[0]
	assert.Equal(t, ledger.Sell, tr.Side)
	assert.True(t, tr.OpenPrice.Equal(d(96)))
	assert.True(t, tr.StopLoss.Equal(d(105)))
	assert.True(t, tr.TakeProfit.Equal(d(84)))
	assert.Equal(t, ledger.EndOfDay, tr.Reason)
	assert.True(t, tr.Points().Equal(d(6)))
}

func TestSproutRequiresConfirmation(t *testing.T) {
	t.Parallel()

	// same violation pattern, but the signal bar is bearish and not a hammer
	bars := series(
		at(9, 35, 105, 106, 100, 101),
		at(9, 40, 103, 104, 98, 99),
		at(9, 45, 100, 105, 99, 104),
	)

	out, err := NewSprout(sproutParams()).Simulate(wholeDay, bars)
	require.NoError(t, err)
	assert.Empty(t, out.Trades)
}

func TestSproutOutsideWindow(t *testing.T) {
	t.Parallel()

	// a valid buy pattern whose current bar lands on 09:30
	bars := series(
		at(9, 20, 105, 106, 100, 101),
		at(9, 25, 99, 104, 98, 103),
		at(9, 30, 100, 105, 99, 104),
	)

	out, err := NewSprout(sproutParams()).Simulate(wholeDay, bars)
	require.NoError(t, err)
	assert.Empty(t, out.Trades)
}

func TestSproutRewardAndRiskClamps(t *testing.T) {
	t.Parallel()

	p := sproutParams()
	s := NewSprout(p)
	narrow := at(9, 40, 100, 101, 100, 101) // range 1
	wide := at(9, 40, 100, 140, 100, 139)   // range 40

	assert.True(t, s.rewardDistance(narrow).Equal(d(5)))
	assert.True(t, s.rewardDistance(wide).Equal(d(20)))
	assert.True(t, s.stopDistance(narrow).Equal(d(5)))
	assert.True(t, s.stopDistance(wide).Equal(d(60)))

	p.AllowableRisk = 25
	assert.True(t, NewSprout(p).stopDistance(wide).Equal(d(25)))
}

func TestParamsLimitFor(t *testing.T) {
	t.Parallel()

	p := bloomParams().Params
	l, err := p.LimitFor(ledger.Sell)
	require.NoError(t, err)
	assert.Equal(t, p.SellLimit, l)

	_, err = p.LimitFor(ledger.Side(0))
	assert.ErrorIs(t, err, ErrUnsupportedSide)
}

func TestVariantKeys(t *testing.T) {
	t.Parallel()

	a := NewVariantKey(9, 30, 1.05)
	b := NewVariantKey(9, 30, 1.0+0.05)
	assert.Equal(t, a, b)
	assert.Equal(t, int64(10500), a.VarianceBP)
	assert.Equal(t, "0930_1.05", a.String())

	keys := []VariantKey{
		NewVariantKey(9, 35, 1),
		NewVariantKey(9, 30, 1.1),
		NewVariantKey(9, 30, 1),
	}
	SortKeys(keys)
	assert.Equal(t, []VariantKey{NewVariantKey(9, 30, 1), NewVariantKey(9, 30, 1.1), NewVariantKey(9, 35, 1)}, keys)
}

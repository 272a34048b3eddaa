package report

import (
	"bytes"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rustyeddy/strategylab/decision"
	"github.com/rustyeddy/strategylab/ledger"
	"github.com/rustyeddy/strategylab/market"
	"github.com/rustyeddy/strategylab/simulation"
	"github.com/rustyeddy/strategylab/stats"
	"github.com/rustyeddy/strategylab/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sampleResult() stats.Result {
	day := civil.Date{Year: 2024, Month: time.March, Day: 4}
	open := day.In(time.UTC).Add(9*time.Hour + 30*time.Minute)
	return stats.Compute(strategy.Outcome{
		Strategy: "bloom",
		Params:   strategy.Params{StartHour: 9, StartMinute: 30, Variance: 1, PricePerPoint: 2},
		Range:    market.DateRange{Start: day, End: day.AddDays(1)},
		Trades: []ledger.Trade{{
			Side: ledger.Buy, OpenTime: open, OpenPrice: decimal.NewFromInt(100),
			CloseTime: open.Add(time.Hour), ClosePrice: decimal.NewFromInt(112), Closed: true,
		}},
	})
}

func TestPrintResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	PrintResult(&buf, sampleResult())

	out := buf.String()
	assert.Contains(t, out, "Strategy:      bloom")
	assert.Contains(t, out, "Variant:       0930_1")
	assert.Contains(t, out, "Net P/L:       24.00")
	assert.Contains(t, out, "Period:        2024-03-04 .. 2024-03-05")
}

func TestPrintTables(t *testing.T) {
	t.Parallel()

	res := sampleResult()
	run := simulation.Run{Key: res.Key(), Result: res}

	var buf bytes.Buffer
	PrintRuns(&buf, []simulation.Run{run})
	assert.Contains(t, buf.String(), "0930_1")
	assert.Contains(t, buf.String(), "12.00")

	buf.Reset()
	PrintDaily(&buf, []simulation.DailyRun{{Date: res.Range.Start, Run: run}})
	assert.Contains(t, buf.String(), "2024-03-04")

	buf.Reset()
	PrintDecisions(&buf, []decision.Decision{{Index: 0, Key: res.Key(), TradeCount: 1}})
	assert.Contains(t, buf.String(), "VARIANT")
	assert.Contains(t, buf.String(), "0930_1")

	buf.Reset()
	PrintSweep(&buf, []decision.SweepResult{{Window: 5, Points: decimal.NewFromInt(18)}})
	assert.Contains(t, buf.String(), "18.00")
}

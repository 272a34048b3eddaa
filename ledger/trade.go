package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side: +1 buy, -1 sell
type Side int8

const (
	Buy  Side = +1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return fmt.Sprintf("Side(%d)", int8(s))
	}
}

// Label is the capitalized form used in report entries ("Buy", "Sell").
func (s Side) Label() string {
	switch s {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return s.String()
	}
}

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// CloseReason records which of the three close events ended a trade.
type CloseReason string

const (
	TakeProfit CloseReason = "TAKE"
	StopLoss   CloseReason = "STOP"
	EndOfDay   CloseReason = "EOD"
)

// Trade is mutable while open and frozen once closed.
type Trade struct {
	ID       string
	Side     Side
	LotSize  float64
	OpenTime time.Time

	OpenPrice  decimal.Decimal
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal

	// Realized
	CloseTime  time.Time
	ClosePrice decimal.Decimal
	Reason     CloseReason
	Closed     bool
}

// Points is the signed point delta in the trade's favour; zero while open.
func (t Trade) Points() decimal.Decimal {
	if !t.Closed {
		return decimal.Zero
	}
	delta := t.ClosePrice.Sub(t.OpenPrice)
	if t.Side == Sell {
		return delta.Neg()
	}
	return delta
}

// Profit converts Points to money at pricePerPoint, rounded to cents.
func (t Trade) Profit(pricePerPoint decimal.Decimal) decimal.Decimal {
	return t.Points().Mul(pricePerPoint).RoundBank(2)
}

// Duration is the open-to-close time in whole minutes.
func (t Trade) Duration() int64 {
	if !t.Closed {
		return 0
	}
	d := t.CloseTime.Sub(t.OpenTime)
	if d < 0 {
		d = -d
	}
	return int64(d / time.Minute)
}

// checkExit evaluates take-profit and stop-loss against one bar's extremes.
// Take-profit is checked first.
func checkExit(t *Trade, high, low decimal.Decimal) (exit decimal.Decimal, reason CloseReason, hit bool) {
	switch t.Side {
	case Buy:
		if high.GreaterThanOrEqual(t.TakeProfit) {
			return t.TakeProfit, TakeProfit, true
		}
		if low.LessThanOrEqual(t.StopLoss) {
			return t.StopLoss, StopLoss, true
		}
	case Sell:
		if low.LessThanOrEqual(t.TakeProfit) {
			return t.TakeProfit, TakeProfit, true
		}
		if high.GreaterThanOrEqual(t.StopLoss) {
			return t.StopLoss, StopLoss, true
		}
	}
	return decimal.Zero, "", false
}

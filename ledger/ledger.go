package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/strategylab/market"
	"github.com/rustyeddy/strategylab/pkg/id"
	"github.com/shopspring/decimal"
)

var (
	ErrTradeNotOpen = errors.New("ledger: trade is not open")
	ErrInvalidSide  = errors.New("ledger: invalid side")
)

// DefaultBreakEvenOffset is how far on the losing side of entry a surviving
// sibling's stop is placed once its pair leg is stopped out.
var DefaultBreakEvenOffset = decimal.NewFromInt(15)

// Ledger tracks the open and closed trades of a single simulation run.
// A trade moves from open to closed exactly once. Linked pairs are short
// lived: the link is dropped as soon as either sibling closes.
//
// A Ledger is not safe for concurrent use; each run owns its own.
type Ledger struct {
	ids *id.Generator

	open   map[string]*Trade
	order  []string // open ids in open order, for deterministic evaluation
	closed map[string]*Trade
	links  map[string]string

	BreakEvenOffset decimal.Decimal
}

// New returns an empty ledger. A nil generator gets a fresh random one.
func New(ids *id.Generator) *Ledger {
	if ids == nil {
		ids = id.NewGenerator(0)
	}
	return &Ledger{
		ids:             ids,
		open:            make(map[string]*Trade),
		closed:          make(map[string]*Trade),
		links:           make(map[string]string),
		BreakEvenOffset: DefaultBreakEvenOffset,
	}
}

// Open records a new open trade and returns it.
func (l *Ledger) Open(side Side, lots float64, t time.Time, price, stop, take decimal.Decimal) (*Trade, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}
	tr := &Trade{
		ID:         l.ids.Next(t),
		Side:       side,
		LotSize:    lots,
		OpenTime:   t,
		OpenPrice:  price,
		StopLoss:   stop,
		TakeProfit: take,
	}
	l.open[tr.ID] = tr
	l.order = append(l.order, tr.ID)
	return tr, nil
}

// Link pairs two open trades so a stop-out of one moves the other's stop
// to break-even.
func (l *Ledger) Link(a, b string) error {
	if _, ok := l.open[a]; !ok {
		return fmt.Errorf("%w: %s", ErrTradeNotOpen, a)
	}
	if _, ok := l.open[b]; !ok {
		return fmt.Errorf("%w: %s", ErrTradeNotOpen, b)
	}
	l.links[a] = b
	l.links[b] = a
	return nil
}

// Sibling returns the open trade linked to tradeID, if any.
func (l *Ledger) Sibling(tradeID string) (*Trade, bool) {
	sib, ok := l.links[tradeID]
	if !ok {
		return nil, false
	}
	tr, ok := l.open[sib]
	return tr, ok
}

// Get looks up an open trade.
func (l *Ledger) Get(tradeID string) (*Trade, bool) {
	tr, ok := l.open[tradeID]
	return tr, ok
}

// Close moves an open trade to the closed collection.
func (l *Ledger) Close(tradeID string, t time.Time, price decimal.Decimal, reason CloseReason) error {
	tr, ok := l.open[tradeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTradeNotOpen, tradeID)
	}
	l.finish(tr, t, price, reason)
	return nil
}

// finish closes tr, which must be open.
func (l *Ledger) finish(tr *Trade, t time.Time, price decimal.Decimal, reason CloseReason) {
	tradeID := tr.ID
	tr.CloseTime = t
	tr.ClosePrice = price
	tr.Reason = reason
	tr.Closed = true

	delete(l.open, tradeID)
	for i, oid := range l.order {
		if oid == tradeID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.closed[tradeID] = tr
	l.unlink(tradeID)
}

func (l *Ledger) unlink(tradeID string) {
	if sib, ok := l.links[tradeID]; ok {
		delete(l.links, sib)
	}
	delete(l.links, tradeID)
}

// Check closes every open trade whose take-profit or stop-loss the bar
// reaches and returns the trades it closed. Stop moves on surviving
// siblings apply after the whole bar is evaluated, so they take effect from
// the next bar.
func (l *Ledger) Check(b market.Bar) []Trade {
	high := decimal.NewFromFloat(b.High)
	low := decimal.NewFromFloat(b.Low)

	type move struct {
		id   string
		stop decimal.Decimal
	}
	var moves []move
	var out []Trade

	for _, tid := range append([]string(nil), l.order...) {
		tr := l.open[tid]
		exit, reason, hit := checkExit(tr, high, low)
		if !hit {
			continue
		}
		if reason == StopLoss {
			if sib, ok := l.Sibling(tid); ok {
				moves = append(moves, move{id: sib.ID, stop: l.breakEven(sib)})
			}
		}
		l.finish(tr, b.Time, exit, reason)
		out = append(out, *tr)
	}

	for _, m := range moves {
		if tr, ok := l.open[m.id]; ok {
			tr.StopLoss = m.stop
		}
	}
	return out
}

// breakEven places the survivor's stop BreakEvenOffset against it: below
// entry for a buy, above entry for a sell. A stop on the profit side would
// sit where the market is not trading once the pair leg has been stopped.
func (l *Ledger) breakEven(tr *Trade) decimal.Decimal {
	if tr.Side == Buy {
		return tr.OpenPrice.Sub(l.BreakEvenOffset)
	}
	return tr.OpenPrice.Add(l.BreakEvenOffset)
}

// CloseAll force-closes every open trade at price.
func (l *Ledger) CloseAll(t time.Time, price decimal.Decimal, reason CloseReason) []Trade {
	var out []Trade
	for _, tid := range append([]string(nil), l.order...) {
		tr := l.open[tid]
		l.finish(tr, t, price, reason)
		out = append(out, *tr)
	}
	return out
}

func (l *Ledger) OpenCount() int {
	return len(l.open)
}

// Closed returns copies of the closed trades ordered by close time, with
// open time and id breaking ties.
func (l *Ledger) Closed() []Trade {
	out := make([]Trade, 0, len(l.closed))
	for _, tr := range l.closed {
		out = append(out, *tr)
	}
	SortByClose(out)
	return out
}

// SortByClose orders trades by close time, then open time, then id.
func SortByClose(trades []Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
		if !a.CloseTime.Equal(b.CloseTime) {
			return a.CloseTime.Before(b.CloseTime)
		}
		if !a.OpenTime.Equal(b.OpenTime) {
			return a.OpenTime.Before(b.OpenTime)
		}
		return a.ID < b.ID
	})
}

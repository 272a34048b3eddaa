// Package decision turns the cumulative reports of several variants into a
// switching policy: which variant should be live at each point in time.
package decision

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rustyeddy/strategylab/stats"
	"github.com/rustyeddy/strategylab/strategy"
	"github.com/shopspring/decimal"
)

var ErrMisaligned = errors.New("decision: variants have unequal entry counts")

// DefaultWindow is the number of ticks between comparisons.
const DefaultWindow = 5

// Decision records a switch of the live variant.
type Decision struct {
	Index      int // emission order
	Tick       int
	Key        strategy.VariantKey
	Params     strategy.Params
	TradeCount int // zero for the initial selection
}

// Engine compares variants every Window ticks. It only reads its input so
// one Engine may be shared.
type Engine struct {
	Window int
}

func New(window int) *Engine {
	return &Engine{Window: window}
}

func (e *Engine) window() int {
	if e == nil || e.Window <= 0 {
		return DefaultWindow
	}
	return e.Window
}

// Consider walks the aligned cumulative reports and returns the initial
// selection followed by one Decision per switch. A variant is only switched
// to when its cumulative points are positive and strictly above the current
// selection's. Variants must carry the same number of entries; otherwise
// ErrMisaligned is returned.
func (e *Engine) Consider(results map[strategy.VariantKey]stats.Result) ([]Decision, error) {
	keys, n, err := align(results)
	if err != nil || len(keys) == 0 {
		return nil, err
	}
	window := e.window()

	current := keys[0]
	decisions := []Decision{{Key: current, Params: results[current].Params}}

	for tick := window; tick < n; tick += window {
		score := results[current].Entries[tick].CumulativePoints
		best := decimal.Zero
		next := current
		for _, k := range keys {
			if v := results[k].Entries[tick].CumulativePoints; v.GreaterThan(best) {
				best = v
				next = k
			}
		}
		if next != current && best.GreaterThan(score) {
			current = next
			decisions = append(decisions, newDecision(len(decisions), tick, current, results[current]))
		}
	}

	sort.SliceStable(decisions, func(i, j int) bool { return decisions[i].Index < decisions[j].Index })
	return decisions, nil
}

func newDecision(index, tick int, k strategy.VariantKey, r stats.Result) Decision {
	return Decision{Index: index, Tick: tick, Key: k, Params: r.Params, TradeCount: r.Entries[tick].CumulativeTrades}
}

// align returns the sorted variant keys and the shared entry count.
func align(results map[strategy.VariantKey]stats.Result) ([]strategy.VariantKey, int, error) {
	keys := make([]strategy.VariantKey, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	strategy.SortKeys(keys)

	n := -1
	for _, k := range keys {
		got := len(results[k].Entries)
		if n < 0 {
			n = got
			continue
		}
		if got != n {
			return nil, 0, fmt.Errorf("%w: %s has %d, want %d", ErrMisaligned, k, got, n)
		}
	}
	return keys, n, nil
}

// Decide returns the variant live at the end of the policy.
func Decide(decisions []Decision) (Decision, bool) {
	if len(decisions) == 0 {
		return Decision{}, false
	}
	return decisions[len(decisions)-1], true
}

// Interval is the half-open tick span [From, To) a decision was live for.
// A variant chosen at tick t takes over from tick t+1.
type Interval struct {
	Decision Decision
	From     int
	To       int
}

// Intervals splits ticks 0..n-1 across decisions.
func Intervals(decisions []Decision, n int) []Interval {
	out := make([]Interval, 0, len(decisions))
	for i, d := range decisions {
		from := 0
		if i > 0 {
			from = d.Tick + 1
		}
		to := n
		if i+1 < len(decisions) {
			to = decisions[i+1].Tick + 1
		}
		if to > n {
			to = n
		}
		if from >= to {
			continue
		}
		out = append(out, Interval{Decision: d, From: from, To: to})
	}
	return out
}

// Evaluate returns the points collected by following the policy, taking
// each live variant's gain over its interval.
func (e *Engine) Evaluate(results map[strategy.VariantKey]stats.Result) (decimal.Decimal, []Decision, error) {
	decisions, err := e.Consider(results)
	if err != nil {
		return decimal.Zero, nil, err
	}
	_, n, _ := align(results)

	total := decimal.Zero
	for _, iv := range Intervals(decisions, n) {
		entries := results[iv.Decision.Key].Entries
		gain := entries[iv.To-1].CumulativePoints
		if iv.From > 0 {
			gain = gain.Sub(entries[iv.From-1].CumulativePoints)
		}
		total = total.Add(gain)
	}
	return total, decisions, nil
}

// SweepResult is the policy outcome for one window size.
type SweepResult struct {
	Window    int
	Switches  int
	Points    decimal.Decimal
	Decisions []Decision
}

// Sweep evaluates the policy for each window size, in ascending order of
// window.
func Sweep(results map[strategy.VariantKey]stats.Result, windows []int) ([]SweepResult, error) {
	ws := append([]int(nil), windows...)
	sort.Ints(ws)

	out := make([]SweepResult, 0, len(ws))
	for _, w := range ws {
		if w <= 0 {
			return nil, fmt.Errorf("decision: invalid window %d", w)
		}
		pts, decisions, err := New(w).Evaluate(results)
		if err != nil {
			return nil, err
		}
		switches := 0
		if len(decisions) > 0 {
			switches = len(decisions) - 1
		}
		out = append(out, SweepResult{Window: w, Switches: switches, Points: pts, Decisions: decisions})
	}
	return out, nil
}

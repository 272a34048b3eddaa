package strategy

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rustyeddy/strategylab/ledger"
)

var ErrUnsupportedSide = errors.New("strategy: unsupported trade side")

// VarianceScale converts a variance multiplier to the fixed-point units
// stored in a VariantKey (1.05 -> 10500).
const VarianceScale = 10_000

// Limit is a take-profit/stop-loss pair expressed as point distances from entry.
type Limit struct {
	TakeProfit float64 `json:"take_profit" yaml:"take_profit"`
	StopLoss   float64 `json:"stop_loss" yaml:"stop_loss"`
}

// Params is the parameter set shared by every strategy. It is treated as a
// value and never modified after construction.
type Params struct {
	Description string

	StartHour   int
	StartMinute int
	Variance    float64

	LotSize   float64
	BuyLimit  Limit
	SellLimit Limit

	PricePerPoint  float64
	InitialBalance float64
	ScaleProfits   bool
}

// LimitFor returns the limit configured for side.
func (p Params) LimitFor(side ledger.Side) (Limit, error) {
	switch side {
	case ledger.Buy:
		return p.BuyLimit, nil
	case ledger.Sell:
		return p.SellLimit, nil
	default:
		return Limit{}, fmt.Errorf("%w: %d", ErrUnsupportedSide, side)
	}
}

// Key identifies the variant this parameter set describes.
func (p Params) Key() VariantKey {
	return NewVariantKey(p.StartHour, p.StartMinute, p.Variance)
}

// VariantKey is the discrete identity of a variant. Variance is kept in
// fixed point so keys compare exactly.
type VariantKey struct {
	StartHour   int
	StartMinute int
	VarianceBP  int64
}

func NewVariantKey(hour, minute int, variance float64) VariantKey {
	return VariantKey{
		StartHour:   hour,
		StartMinute: minute,
		VarianceBP:  int64(math.Round(variance * VarianceScale)),
	}
}

// Variance returns the multiplier the key was built from.
func (k VariantKey) Variance() float64 {
	return float64(k.VarianceBP) / VarianceScale
}

func (k VariantKey) String() string {
	return fmt.Sprintf("%02d%02d_%.4g", k.StartHour, k.StartMinute, k.Variance())
}

// Less orders keys by start hour, then start minute, then variance.
func (k VariantKey) Less(o VariantKey) bool {
	if k.StartHour != o.StartHour {
		return k.StartHour < o.StartHour
	}
	if k.StartMinute != o.StartMinute {
		return k.StartMinute < o.StartMinute
	}
	return k.VarianceBP < o.VarianceBP
}

// SortKeys sorts keys in place using Less.
func SortKeys(keys []VariantKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}

// BloomParams configures the straddle strategy.
type BloomParams struct {
	Params

	// Normalize shifts each leg's take-profit so a winning leg plus a
	// losing sibling nets AbsoluteProfitTarget points.
	Normalize            bool
	AbsoluteProfitTarget float64

	// BreakEvenStop links the two legs; a stop-out moves the survivor's
	// stop to BreakEvenOffset points against it from entry.
	BreakEvenStop   bool
	BreakEvenOffset float64
}

// SproutParams configures the reversal strategy.
type SproutParams struct {
	Params

	ProfitMultiplier float64
	MinimumReward    float64
	AllowableReward  float64
	MinimumRisk      float64
	AllowableRisk    float64 // 0 disables the cap
	MaxEntriesPerDay int     // 0 means 3
}

// WithKey returns a copy of p re-targeted at the variant k.
func (p Params) WithKey(k VariantKey) Params {
	p.StartHour = k.StartHour
	p.StartMinute = k.StartMinute
	p.Variance = k.Variance()
	return p
}

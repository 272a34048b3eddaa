package simulation

import (
	"fmt"
	"math"

	"cloud.google.com/go/civil"
	"github.com/rustyeddy/strategylab/strategy"
)

// Grid spans signal times [Start, End) every StepMinutes crossed with
// variances [VarianceFrom, VarianceTo] every VarianceStep.
type Grid struct {
	Start       civil.Time
	End         civil.Time
	StepMinutes int

	VarianceFrom float64
	VarianceTo   float64
	VarianceStep float64
}

// DefaultGrid is 09:30..10:00 every 5 minutes by 1.00..1.25 in 0.05 steps.
func DefaultGrid() Grid {
	return Grid{
		Start:        civil.Time{Hour: 9, Minute: 30},
		End:          civil.Time{Hour: 10},
		StepMinutes:  5,
		VarianceFrom: 1,
		VarianceTo:   1.25,
		VarianceStep: 0.05,
	}
}

func basisPoints(v float64) int64 {
	return int64(math.Round(v * strategy.VarianceScale))
}

// Keys enumerates the grid in key order.
func (g Grid) Keys() ([]strategy.VariantKey, error) {
	if g.StepMinutes <= 0 {
		return nil, fmt.Errorf("simulation: grid step must be positive, got %d", g.StepMinutes)
	}
	step := basisPoints(g.VarianceStep)
	if step <= 0 {
		return nil, fmt.Errorf("simulation: variance step must be positive, got %v", g.VarianceStep)
	}
	from, to := basisPoints(g.VarianceFrom), basisPoints(g.VarianceTo)
	if from > to {
		return nil, fmt.Errorf("simulation: variance range %v..%v is inverted", g.VarianceFrom, g.VarianceTo)
	}

	start := g.Start.Hour*60 + g.Start.Minute
	end := g.End.Hour*60 + g.End.Minute

	var keys []strategy.VariantKey
	for m := start; m < end; m += g.StepMinutes {
		for v := from; v <= to; v += step {
			keys = append(keys, strategy.VariantKey{StartHour: m / 60, StartMinute: m % 60, VarianceBP: v})
		}
	}
	return keys, nil
}

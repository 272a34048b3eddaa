package simulation

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rustyeddy/strategylab/market"
	"github.com/rustyeddy/strategylab/strategy"
)

var ErrNoParameters = errors.New("simulation: no parameters for date")

// Schedule holds the strategy in force from a given date. Entries are
// usually keyed on the first of a month or year.
type Schedule map[civil.Date]strategy.Strategy

// Lookup resolves d by trying the exact date, then the first of its month,
// then the first of its year.
func (s Schedule) Lookup(d civil.Date) (strategy.Strategy, error) {
	candidates := []civil.Date{
		d,
		{Year: d.Year, Month: d.Month, Day: 1},
		{Year: d.Year, Month: time.January, Day: 1},
	}
	for _, c := range candidates {
		if st, ok := s[c]; ok {
			return st, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoParameters, d)
}

// Yearly keys st on January 1st of every year rng touches.
func Yearly(st strategy.Strategy, rng market.DateRange) Schedule {
	s := Schedule{}
	if !rng.Start.IsValid() || !rng.End.IsValid() {
		return s
	}
	for y := rng.Start.Year; y <= rng.End.Year; y++ {
		s[civil.Date{Year: y, Month: time.January, Day: 1}] = st
	}
	return s
}

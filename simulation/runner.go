// Package simulation fans strategy variants out across workers and joins
// their statistics for the decision engine.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rustyeddy/strategylab/market"
	"github.com/rustyeddy/strategylab/stats"
	"github.com/rustyeddy/strategylab/strategy"
	"golang.org/x/sync/errgroup"
)

// Run is one variant's completed simulation.
type Run struct {
	Key     strategy.VariantKey
	Outcome strategy.Outcome
	Result  stats.Result
}

// DailyRun is a Run restricted to a single calendar day.
type DailyRun struct {
	Date civil.Date
	Run
}

// Runner simulates independent variants in parallel. Each goroutine owns
// its strategy's ledger and writes only its own slot of the output, so no
// locking is needed.
type Runner struct {
	Bars    market.Series
	Workers int // <= 0 uses GOMAXPROCS
	Log     *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Log
}

func (r *Runner) workers() int {
	if r.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return r.Workers
}

// Run simulates every strategy over rng. Results come back in the order the
// strategies were given.
func (r *Runner) Run(ctx context.Context, rng market.DateRange, strategies []strategy.Strategy) ([]Run, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("simulation: at least one strategy is required")
	}
	log := r.logger()
	began := time.Now()

	runs := make([]Run, len(strategies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())

	for i, s := range strategies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			key := s.Params().Key()
			log.Debug("simulating variant", "strategy", s.Name(), "variant", key.String())

			out, err := s.Simulate(rng, r.Bars)
			if err != nil {
				return fmt.Errorf("simulation: %s %s: %w", s.Name(), key, err)
			}
			runs[i] = Run{Key: key, Outcome: out, Result: stats.Compute(out)}

			log.Debug("variant done", "variant", key.String(), "trades", len(out.Trades))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("simulation complete",
		"variants", len(runs),
		"start", rng.Start.String(),
		"end", rng.End.String(),
		"elapsed", time.Since(began).String(),
	)
	return runs, nil
}

// RunDaily simulates each day of rng that has bars on its own, resolving
// the strategy for that day from sched. Output is ordered by date.
func (r *Runner) RunDaily(ctx context.Context, rng market.DateRange, sched Schedule) ([]DailyRun, error) {
	dates := r.Bars.Dates(rng)
	resolved := make([]strategy.Strategy, len(dates))
	for i, date := range dates {
		s, err := sched.Lookup(date)
		if err != nil {
			return nil, err
		}
		resolved[i] = s
	}

	runs := make([]DailyRun, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())

	for i, date := range dates {
		s := resolved[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			day := market.DateRange{Start: date, End: date.AddDays(1)}
			out, err := s.Simulate(day, r.Bars)
			if err != nil {
				return fmt.Errorf("simulation: %s on %s: %w", s.Name(), date, err)
			}
			runs[i] = DailyRun{
				Date: date,
				Run:  Run{Key: s.Params().Key(), Outcome: out, Result: stats.Compute(out)},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger().Info("daily simulation complete", "days", len(runs))
	return runs, nil
}

// Results indexes runs by variant for the decision engine. A repeated key
// keeps the later run.
func Results(runs []Run) map[strategy.VariantKey]stats.Result {
	out := make(map[strategy.VariantKey]stats.Result, len(runs))
	for _, run := range runs {
		out[run.Key] = run.Result
	}
	return out
}

// Best returns the run with the highest net points; ties go to the lower key.
func Best(runs []Run) (Run, bool) {
	if len(runs) == 0 {
		return Run{}, false
	}
	sorted := append([]Run(nil), runs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Result.NetPoints, sorted[j].Result.NetPoints
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return sorted[i].Key.Less(sorted[j].Key)
	})
	return sorted[0], true
}

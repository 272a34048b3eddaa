package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rustyeddy/strategylab/config"
	"github.com/rustyeddy/strategylab/internal/logging"
	"github.com/rustyeddy/strategylab/market"
	"github.com/rustyeddy/strategylab/pricestore"
	"github.com/rustyeddy/strategylab/simulation"
	"github.com/spf13/cobra"
)

// session is everything a simulating command needs once the config is read.
type session struct {
	cfg    *config.Config
	log    *slog.Logger
	rng    market.DateRange
	bars   market.Series
	runner *simulation.Runner
}

func openSession(ctx context.Context, cmd *cobra.Command, path string) (*session, error) {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())

	rng, err := cfg.Range()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := pricestore.Open(cfg.Data.DBPath, loc)
	if err != nil {
		return nil, fmt.Errorf("open price store: %w", err)
	}
	defer store.Close()

	bars, err := store.Load(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	log.Info("bars loaded", "db", cfg.Data.DBPath, "days", len(bars))

	runner := &simulation.Runner{
		Bars:    bars,
		Workers: cfg.Simulation.Workers,
		Log:     log,
	}
	return &session{
		cfg:    cfg,
		log:    log,
		rng:    rng,
		bars:   bars,
		runner: runner,
	}, nil
}

// runAll simulates every configured variant over the whole range.
func (s *session) runAll(ctx context.Context) ([]simulation.Run, error) {
	strategies, err := s.cfg.Strategies()
	if err != nil {
		return nil, err
	}
	return s.runner.Run(ctx, s.rng, strategies)
}

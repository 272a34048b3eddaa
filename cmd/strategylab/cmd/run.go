package cmd

import (
	"fmt"

	"github.com/rustyeddy/strategylab/internal/report"
	"github.com/rustyeddy/strategylab/simulation"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate every configured variant",
	Long: `Run the configured strategy over the grid of variants and print the
statistics of each, followed by the full result of the best variant.

With simulation.per_day set, every variant is also simulated one day at a
time.

Example:
  strategylab run -f strategylab.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, runConfigPath)
	if err != nil {
		return err
	}
	if len(s.bars) == 0 {
		s.log.Warn("no bars in range", "start", s.rng.Start.String(), "end", s.rng.End.String())
	}

	w := cmd.OutOrStdout()
	runs, err := s.runAll(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Simulated %d variants of %s from %s to %s\n\n", len(runs), s.cfg.Strategy.Name, s.rng.Start, s.rng.End)
	report.PrintRuns(w, runs)

	if best, ok := simulation.Best(runs); ok {
		fmt.Fprintln(w)
		report.PrintResult(w, best.Result)
	}

	if !s.cfg.Simulation.PerDay {
		return nil
	}

	strategies, err := s.cfg.Strategies()
	if err != nil {
		return err
	}
	for _, st := range strategies {
		days, err := s.runner.RunDaily(ctx, s.rng, simulation.Yearly(st, s.rng))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nDaily results for %s\n", st.Params().Key())
		report.PrintDaily(w, days)
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/rustyeddy/strategylab/decision"
	"github.com/rustyeddy/strategylab/internal/report"
	"github.com/rustyeddy/strategylab/simulation"
	"github.com/spf13/cobra"
)

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Derive the variant switching policy",
	Long: `Simulate every configured variant, then walk their cumulative reports
and print which variant should be live at each window boundary.

With --sweep the policy is also evaluated for every window in
decision.sweep_windows (or 3, 5, 10 and 20 when unset).

Example:
  strategylab decide -f strategylab.yaml --sweep`,
	RunE: runDecide,
}

var (
	decideConfigPath string
	decideSweep      bool
)

var defaultSweepWindows = []int{3, 5, 10, 20}

func init() {
	rootCmd.AddCommand(decideCmd)

	decideCmd.Flags().StringVarP(&decideConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	decideCmd.Flags().BoolVar(&decideSweep, "sweep", false, "evaluate the policy over several window sizes")
	decideCmd.MarkFlagRequired("config")
}

func runDecide(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, decideConfigPath)
	if err != nil {
		return err
	}

	runs, err := s.runAll(ctx)
	if err != nil {
		return err
	}
	results := simulation.Results(runs)

	engine := decision.New(s.cfg.Decision.Window)
	points, decisions, err := engine.Evaluate(results)
	if err != nil {
		return fmt.Errorf("decide: %w", err)
	}

	w := cmd.OutOrStdout()
	report.PrintDecisions(w, decisions)
	if final, ok := decision.Decide(decisions); ok {
		fmt.Fprintf(w, "\nLive variant: %s (policy points %s)\n", final.Key, points.StringFixed(2))
	}

	if !decideSweep {
		return nil
	}
	windows := s.cfg.Decision.SweepWindows
	if len(windows) == 0 {
		windows = defaultSweepWindows
	}
	sweep, err := decision.Sweep(results, windows)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	fmt.Fprintln(w)
	report.PrintSweep(w, sweep)
	return nil
}

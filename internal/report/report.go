// Package report prints human-readable summaries of simulation runs.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rustyeddy/strategylab/decision"
	"github.com/rustyeddy/strategylab/simulation"
	"github.com/rustyeddy/strategylab/stats"
)

const rule = "--------------------------------------------------"

// PrintResult writes the full statistics block for one variant.
func PrintResult(w io.Writer, r stats.Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Strategy Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	fmt.Fprintf(w, "Variant:       %s\n", r.Key())
	if r.Params.Description != "" {
		fmt.Fprintf(w, "Description:   %s\n", r.Params.Description)
	}
	fmt.Fprintf(w, "Period:        %s .. %s\n", r.Range.Start, r.Range.End)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Trades:        %d\n", len(r.Trades))
	fmt.Fprintf(w, "Hits:          %d\n", r.Hits)
	fmt.Fprintf(w, "Misses:        %d\n", r.Misses)
	fmt.Fprintf(w, "Win Rate:      %d%%\n", r.WinPercentage)
	fmt.Fprintf(w, "Daily Wins:    %d%%\n", r.DailyWinPercentage)
	fmt.Fprintf(w, "Retention:     %d%%\n", r.Retention)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Points")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Gained:        %s\n", r.PointsGained.StringFixed(2))
	fmt.Fprintf(w, "Lost:          %s\n", r.PointsLost.StringFixed(2))
	fmt.Fprintf(w, "Net:           %s\n", r.NetPoints.StringFixed(2))
	fmt.Fprintf(w, "Profitability: %s\n", r.Profitability.StringFixed(2))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Durations (minutes)")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Average:       %d\n", r.AverageTradeDuration)
	fmt.Fprintf(w, "Winners:       %d\n", r.AverageWinDuration)
	fmt.Fprintf(w, "Losers:        %d\n", r.AverageLossDuration)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Net P/L:       %s\n", r.NetProfit.StringFixed(2))
	fmt.Fprintf(w, "Max Drawdown:  %s\n", r.MaxDrawdown.StringFixed(2))
	fmt.Fprintf(w, "Rel. Drawdown: %s\n", r.RelativeDrawdown.StringFixed(2))
	fmt.Fprintln(w, "==================================================")
}

// PrintRuns writes one line per variant.
func PrintRuns(w io.Writer, runs []simulation.Run) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "VARIANT\tTRADES\tWIN%\tNET PTS\tNET P/L\tMAX DD\t")
	for _, run := range runs {
		r := run.Result
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t\n",
			run.Key, len(r.Trades), r.WinPercentage,
			r.NetPoints.StringFixed(2), r.NetProfit.StringFixed(2), r.MaxDrawdown.StringFixed(2))
	}
	_ = tw.Flush()
}

// PrintDaily writes one line per simulated day.
func PrintDaily(w io.Writer, days []simulation.DailyRun) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\tVARIANT\tTRADES\tNET PTS\tNET P/L\t")
	for _, d := range days {
		r := d.Result
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t\n",
			d.Date, d.Key, len(r.Trades), r.NetPoints.StringFixed(2), r.NetProfit.StringFixed(2))
	}
	_ = tw.Flush()
}

// PrintDecisions writes the switching policy.
func PrintDecisions(w io.Writer, decisions []decision.Decision) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tTICK\tTRADES\tVARIANT\t")
	for _, d := range decisions {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t\n", d.Index, d.Tick, d.TradeCount, d.Key)
	}
	_ = tw.Flush()
}

// PrintSweep writes the policy outcome per window size.
func PrintSweep(w io.Writer, sweep []decision.SweepResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "WINDOW\tSWITCHES\tPOINTS\t")
	for _, s := range sweep {
		fmt.Fprintf(tw, "%d\t%d\t%s\t\n", s.Window, s.Switches, s.Points.StringFixed(2))
	}
	_ = tw.Flush()
}

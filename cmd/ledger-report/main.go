// ledger-report prints the contents of a processing-run ledger: recent runs,
// or the per-metric grid statistics recorded for one run. It is the quick
// inspection tool for regression checks between reprocessing campaigns.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cryogrid/snowmetrics/internal/constants"
	"github.com/cryogrid/snowmetrics/internal/store"
)

func main() {
	dbPath := flag.String("db", "ledger.db", "Path to the ledger database")
	runID := flag.String("run", "", "Run ID to report grid statistics for (default: list recent runs)")
	limit := flag.Int("limit", 20, "Maximum number of runs to list")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ledger-report %s\n", constants.Version)
		os.Exit(0)
	}

	if err := run(*dbPath, *runID, *limit); err != nil {
		fmt.Fprintf(os.Stderr, "ledger-report: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, runID string, limit int) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("ledger %s: %w", dbPath, err)
	}
	ledger, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	ctx := context.Background()
	if runID != "" {
		return reportRun(ctx, ledger, runID)
	}
	return listRuns(ctx, ledger, limit)
}

func listRuns(ctx context.Context, ledger *store.Store, limit int) error {
	runs, err := ledger.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSNOW YEAR\tTILE\tSTRATEGY\tTHRESHOLD\tSTARTED\tCOMPLETED")
	for _, r := range runs {
		completed := "-"
		if !r.Completed.IsZero() {
			completed = r.Completed.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.SnowYear, r.TileID, r.Strategy, r.Threshold,
			r.Started.Format("2006-01-02 15:04:05"), completed)
	}
	return w.Flush()
}

func reportRun(ctx context.Context, ledger *store.Store, runID string) error {
	r, err := ledger.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	fmt.Printf("Run %s: snow year %d, tile %s, strategy %s, threshold %d\n\n",
		r.ID, r.SnowYear, r.TileID, r.Strategy, r.Threshold)

	stats, err := ledger.ListGridStats(ctx, runID)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Println("No grid statistics recorded for this run.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMIN\tMAX\tMEAN\tNODATA")
	for _, st := range stats {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%d\n", st.Metric, st.Min, st.Max, st.Mean, st.NodataCount)
	}
	return w.Flush()
}

package main

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lawnchairsociety/eldritchhouse/internal/database"
)

var (
	historyLimit  int
	historyStatus string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded generation runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Only list runs with this status (ok, stalled, failed)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in %s", configPath)
	}

	switch historyStatus {
	case "", database.StatusOK, database.StatusStalled, database.StatusFailed:
	default:
		return fmt.Errorf("unknown status %q", historyStatus)
	}

	db, err := openHistory(cfg.History)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	runs, err := db.ListRuns(ctx, historyStatus, historyLimit)
	if err != nil {
		return err
	}
	stats, err := db.Stats(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tSOURCE\tSEED\tROOMS\tATTEMPTS\tSTATUS\tERROR")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d/%d\t%d\t%s\t%s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Source, r.Seed,
			r.Placed, r.RoomCount, r.Attempts, r.Status, r.Error)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	statuses := make([]string, 0, len(stats.ByState))
	for s := range stats.ByState {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)

	fmt.Fprintf(out, "\n%d run(s) recorded", stats.Total)
	for _, s := range statuses {
		fmt.Fprintf(out, ", %s %d", s, stats.ByState[s])
	}
	fmt.Fprintln(out)
	return nil
}

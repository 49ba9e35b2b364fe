package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fentz26/taskgov/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded report runs",
	RunE:  runHistory,
}

var historyDecisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "List audit records for fetches, fact sheets and posted summaries",
	RunE:  runHistoryDecisions,
}

var historyLimit int

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", store.DefaultListLimit, "Maximum rows to show")
	historyCmd.AddCommand(historyDecisionsCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGENERATED\tITEMS\tDOING\tBLOCKED\tVIOLATIONS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%d\t%d\t%d\n",
			truncateID(r.ID),
			r.GeneratedAt.In(cfg.Location()).Format("2006-01-02 15:04"),
			r.Processed, r.ReportedTotal,
			r.Counts["Doing"], r.Counts["Blocked"],
			len(r.Violations))
	}
	return w.Flush()
}

func runHistoryDecisions(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	decisions, err := s.ListDecisions(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(decisions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No decisions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tACTION\tOUTCOME\tDETAILS")
	for _, d := range decisions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncateID(d.ID),
			d.Timestamp.In(cfg.Location()).Format("2006-01-02 15:04"),
			d.Action, d.Outcome, truncate(d.Details, 60))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

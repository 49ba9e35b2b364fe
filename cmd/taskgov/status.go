package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fentz26/taskgov/internal/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running report server",
	Long:  `Checks the health of a running 'taskgov serve' and prints its live status counts and violations.`,
	RunE:  runStatus,
}

var statusAddr string

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "Server address (default server.listen from config)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Listen
	if statusAddr != "" {
		addr = statusAddr
	}
	base := serverURL(addr)
	out := cmd.OutOrStdout()

	health, err := CheckHealth(base)
	if health != nil {
		fmt.Fprintf(out, "Server %s: version %s, history %s\n", base, health.Version, health.DB)
	}
	if err != nil {
		return err
	}

	sum, err := fetchSummary(base)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tCOUNT")
	for _, s := range models.Statuses() {
		fmt.Fprintf(w, "%s\t%d\n", s, sum.Counts[s.String()])
	}
	fmt.Fprintf(w, "Total\t%d/%d\n", sum.Processed, sum.ReportedTotal)
	if err := w.Flush(); err != nil {
		return err
	}

	if sum.Compliant {
		fmt.Fprintln(out, "\nCompliant.")
		return nil
	}
	fmt.Fprintf(out, "\n%d violation(s):\n", len(sum.Violations))
	for _, v := range sum.Violations {
		fmt.Fprintf(out, "  - %s\n", v.Message)
	}
	return ErrViolations
}

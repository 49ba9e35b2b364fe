package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the HTML governance report",
	Long: `Load the board snapshot, evaluate the governance rules and write the
static HTML report. The previous report is only replaced on success.`,
	RunE: runReport,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate the rules without writing a report",
	Long:  `Load the board snapshot and print the status counts and violations. Exits with status 2 when any rule is violated.`,
	RunE:  runCheck,
}

var (
	reportSnapshot  string
	reportOutput    string
	reportStrict    bool
	reportNoHistory bool
	checkSnapshot   string
)

func init() {
	reportCmd.Flags().StringVar(&reportSnapshot, "snapshot", "", "Snapshot JSON path (default from config)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "HTML output path (default from config)")
	reportCmd.Flags().BoolVar(&reportStrict, "strict", false, "Exit with status 2 when rules are violated")
	reportCmd.Flags().BoolVar(&reportNoHistory, "no-history", false, "Do not record the run in the history database")

	checkCmd.Flags().StringVar(&checkSnapshot, "snapshot", "", "Snapshot JSON path (default from config)")
}

func runReport(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newService(serviceOptions{
		snapshot: reportSnapshot,
		output:   reportOutput,
		history:  !reportNoHistory,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.Generate(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderSummary(res.Document))
	fmt.Fprintf(out, "\nWrote %s\n", res.OutputPath)

	if reportStrict && !res.Document.Compliant() {
		return ErrViolations
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newService(serviceOptions{snapshot: checkSnapshot})
	if err != nil {
		return err
	}
	defer cleanup()

	doc, err := svc.Build()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), renderSummary(doc))
	if !doc.Compliant() {
		return ErrViolations
	}
	return nil
}

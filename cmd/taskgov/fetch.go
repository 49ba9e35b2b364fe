package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fentz26/taskgov/internal/controlplane"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Export the board snapshot with gh",
	Long: `Run 'gh project item-list' and replace the snapshot file with its JSON
output. The existing snapshot is kept when gh fails or returns invalid JSON.`,
	RunE: runFetch,
}

var (
	fetchOwner  string
	fetchNumber int
	fetchLimit  int
)

func init() {
	fetchCmd.Flags().StringVar(&fetchOwner, "owner", "", "Project owner (default from config)")
	fetchCmd.Flags().IntVar(&fetchNumber, "number", 0, "Project number (default from config)")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "Maximum items to export (default from config)")
}

// projectRef merges the fetch flags over the project section of the config.
func projectRef() controlplane.ProjectRef {
	ref := controlplane.ProjectRef{
		Owner:  cfg.Project.Owner,
		Number: cfg.Project.Number,
		Limit:  cfg.Project.Limit,
	}
	if fetchOwner != "" {
		ref.Owner = fetchOwner
	}
	if fetchNumber > 0 {
		ref.Number = fetchNumber
	}
	if fetchLimit > 0 {
		ref.Limit = fetchLimit
	}
	return ref
}

func runFetch(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newService(serviceOptions{history: true, connector: true})
	if err != nil {
		return err
	}
	defer cleanup()

	ref := projectRef()
	snap, err := svc.Fetch(cmd.Context(), ref)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d items (%d reported) from project %d of %s into %s\n",
		snap.Processed(), snap.ReportedTotal, ref.Number, ref.Owner, snap.Source)
	return nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/fentz26/taskgov/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the board in an interactive terminal UI",
	Long:  `Opens a terminal UI listing the sorted items with status filters, item details and the current violations. Press r to reload the snapshot.`,
	RunE:  runBrowse,
}

var browseSnapshot string

func init() {
	browseCmd.Flags().StringVar(&browseSnapshot, "snapshot", "", "Snapshot JSON path (default from config)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newService(serviceOptions{snapshot: browseSnapshot})
	if err != nil {
		return err
	}
	defer cleanup()

	return tui.New(svc.Build).Run()
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fentz26/taskgov/internal/controlplane"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the taskgov version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "taskgov %s\n", controlplane.Version)
	},
}

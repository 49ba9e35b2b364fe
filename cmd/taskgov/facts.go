package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fentz26/taskgov/internal/controlplane"
	"github.com/fentz26/taskgov/internal/inventory"
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Write per-repository fact sheets and the run list",
	Long: `Group the snapshot by repository and write one Markdown fact sheet and
one summary request (prompt followed by the facts) per repository, plus a
tab-separated run list pairing each with its summary output path.

Default branch, last push and branch samples are read with 'gh api'
unless --no-meta is given.

With --issue-title, the tracking issue of each repository is looked up
with gh and recorded in the run list.`,
	RunE: runFacts,
}

var (
	factsOut        string
	factsSnapshot   string
	factsIssueTitle string
	factsNoIssues   bool
	factsNoMeta     bool
	factsTemplate   string
	factsBranches   int
)

func init() {
	factsCmd.Flags().StringVar(&factsOut, "out", "", "Output directory (default from config)")
	factsCmd.Flags().StringVar(&factsSnapshot, "snapshot", "", "Snapshot JSON path (default from config)")
	factsCmd.Flags().StringVar(&factsIssueTitle, "issue-title", "", "Tracking issue title to resolve (default from config)")
	factsCmd.Flags().BoolVar(&factsNoIssues, "no-issues", false, "Skip tracking issue lookup")
	factsCmd.Flags().BoolVar(&factsNoMeta, "no-meta", false, "Skip repository metadata lookup")
	factsCmd.Flags().StringVar(&factsTemplate, "template", "", "Prompt template file (default from config, else built in)")
	factsCmd.Flags().IntVar(&factsBranches, "max-branches", 0, "Branches sampled per repository (default from config)")
}

func runFacts(cmd *cobra.Command, args []string) error {
	req := controlplane.FactsRequest{
		OutDir:      cfg.FactsDir,
		IssueTitle:  cfg.Project.IssueTitle,
		Meta:        cfg.Inventory.Meta && !factsNoMeta,
		MaxBranches: cfg.Inventory.MaxBranches,
	}
	if factsBranches > 0 {
		req.MaxBranches = factsBranches
	}

	templatePath := cfg.Inventory.Template
	if factsTemplate != "" {
		templatePath = factsTemplate
	}
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return fmt.Errorf("read prompt template: %w", err)
		}
		req.Template = string(data)
	}

	if factsOut != "" {
		req.OutDir = factsOut
	}
	if factsIssueTitle != "" {
		req.IssueTitle = factsIssueTitle
	}
	if factsNoIssues {
		req.IssueTitle = ""
	}

	svc, cleanup, err := newService(serviceOptions{
		snapshot:  factsSnapshot,
		history:   true,
		connector: req.IssueTitle != "" || req.Meta,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := svc.Facts(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	linked := 0
	for _, e := range entries {
		if e.IssueURL != "" {
			linked++
		}
	}
	fmt.Fprintf(out, "Wrote %d fact sheet(s) to %s\n", len(entries), filepath.Join(req.OutDir, inventory.FactsDir))
	fmt.Fprintf(out, "Requests in %s\n", filepath.Join(req.OutDir, inventory.RequestsDir))
	if req.IssueTitle != "" {
		fmt.Fprintf(out, "Tracking issues found: %d/%d\n", linked, len(entries))
	}
	fmt.Fprintf(out, "Run list: %s\n", filepath.Join(req.OutDir, inventory.RunlistFile))
	return nil
}

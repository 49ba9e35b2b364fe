package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fentz26/taskgov/internal/fsutil"
	"github.com/fentz26/taskgov/internal/inventory"
	"github.com/fentz26/taskgov/internal/summary"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Validate and publish repository inventory summaries",
}

var summaryCheckCmd = &cobra.Command{
	Use:   "check <file|->",
	Short: "Normalize and validate a summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummaryCheck,
}

var summaryShowCmd = &cobra.Command{
	Use:   "show <file|->",
	Short: "Render a summary in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummaryShow,
}

var summaryPostCmd = &cobra.Command{
	Use:   "post <file|->",
	Short: "Post a summary to its tracking issue",
	Long: `Validate the summary and post it as a comment on the tracking issue.
The last comment is edited when possible; otherwise a new comment is created.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummaryPost,
}

var summaryPostAllCmd = &cobra.Command{
	Use:   "post-all",
	Short: "Post every generated summary named in the run list",
	RunE:  runSummaryPostAll,
}

var (
	summaryIssue   string
	summaryWidth   int
	summaryRunlist string
	summaryWrite   bool
)

func init() {
	summaryCheckCmd.Flags().BoolVarP(&summaryWrite, "write", "w", false, "Rewrite the file with the normalized text")
	summaryShowCmd.Flags().IntVar(&summaryWidth, "width", summary.DefaultWidth, "Word-wrap width")
	summaryPostCmd.Flags().StringVar(&summaryIssue, "issue", "", "Tracking issue URL (required)")
	summaryPostAllCmd.Flags().StringVar(&summaryRunlist, "runlist", "", "Run list path (default <facts_dir>/runlist.tsv)")

	summaryCmd.AddCommand(summaryCheckCmd, summaryShowCmd, summaryPostCmd, summaryPostAllCmd)
}

// readInput reads a file, or stdin when name is "-".
func readInput(cmd *cobra.Command, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read summary: %w", err)
	}
	return string(data), nil
}

func runSummaryCheck(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	res := summary.Check(text)
	out := cmd.OutOrStdout()
	for _, line := range res.Stripped {
		fmt.Fprintf(out, "line %d: stripped leading %q\n", line, summary.BulletGlyph)
	}
	for _, p := range res.Problems {
		fmt.Fprintln(out, p.String())
	}
	if !res.OK() {
		return res.Err()
	}

	if summaryWrite && args[0] != "-" && len(res.Stripped) > 0 {
		if err := fsutil.WriteAtomic(args[0], []byte(res.Normalized), 0644); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	fmt.Fprintln(out, "OK")
	return nil
}

func runSummaryShow(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	rendered, err := summary.Render(summary.Normalize(text), summaryWidth)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

func runSummaryPost(cmd *cobra.Command, args []string) error {
	if summaryIssue == "" {
		return summary.ErrEmptyIssueURL
	}
	text, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	svc, cleanup, err := newService(serviceOptions{history: true, connector: true})
	if err != nil {
		return err
	}
	defer cleanup()

	action, err := svc.PostSummary(cmd.Context(), summaryIssue, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Comment %s on %s\n", action, summaryIssue)
	return nil
}

func runSummaryPostAll(cmd *cobra.Command, args []string) error {
	path := summaryRunlist
	if path == "" {
		path = filepath.Join(cfg.FactsDir, inventory.RunlistFile)
	}
	entries, err := inventory.ReadRunlist(path)
	if err != nil {
		return err
	}

	svc, cleanup, err := newService(serviceOptions{history: true, connector: true})
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	var failed int
	for _, o := range svc.PostAll(cmd.Context(), entries) {
		switch {
		case o.Err != nil:
			failed++
			fmt.Fprintf(out, "FAIL  %s: %v\n", o.Repository, o.Err)
		case o.Skipped != "":
			fmt.Fprintf(out, "SKIP  %s: %s\n", o.Repository, o.Skipped)
		default:
			fmt.Fprintf(out, "OK    %s: comment %s\n", o.Repository, o.Action)
		}
	}
	if failed > 0 {
		return errors.Join(summary.ErrPostFailed, fmt.Errorf("%d of %d summaries failed", failed, len(entries)))
	}
	return nil
}

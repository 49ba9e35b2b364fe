package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fentz26/taskgov/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the report whenever the snapshot changes",
	Long: `Generate the report once, then watch the snapshot file and regenerate
after each change. A failed pass is logged and the previous report stays
in place.`,
	RunE: runWatch,
}

var (
	watchSnapshot  string
	watchOutput    string
	watchNoHistory bool
	watchDebounce  time.Duration
)

func init() {
	watchCmd.Flags().StringVar(&watchSnapshot, "snapshot", "", "Snapshot JSON path (default from config)")
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "HTML output path (default from config)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before regenerating")
	watchCmd.Flags().BoolVar(&watchNoHistory, "no-history", false, "Do not record runs in the history database")
}

func runWatch(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newService(serviceOptions{
		snapshot: watchSnapshot,
		output:   watchOutput,
		history:  !watchNoHistory,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := regenerate(svc)
	if err := handler(ctx); err != nil {
		logger.Warn("initial report failed", zap.Error(err))
	}

	return watch.New(svc.Settings().SnapshotPath, watchDebounce, handler, logger).Run(ctx)
}

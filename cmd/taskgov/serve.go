package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fentz26/taskgov/internal/controlplane"
	"github.com/fentz26/taskgov/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live report and run history over HTTP",
	Long: `Starts an HTTP server that renders the report from the current snapshot
on every request and exposes the counts, run history and audit records as
JSON. With --watch, the static report is also regenerated whenever the
snapshot changes.`,
	RunE: runServe,
}

var (
	serveListen string
	serveWatch  bool
)

const shutdownTimeout = 30 * time.Second

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Regenerate the static report when the snapshot changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Listen
	if serveListen != "" {
		addr = serveListen
	}

	svc, cleanup, err := newService(serviceOptions{history: true})
	if err != nil {
		return err
	}
	defer cleanup()

	server := controlplane.NewServer(svc, addr)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if serveWatch {
		w := watch.New(svc.Settings().SnapshotPath, watch.DefaultDebounce, regenerate(svc), logger)
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("snapshot watcher stopped", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	serverErr := make(chan error, 1)
	go func() {
		err := server.Start()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	logger.Info("serving report", zap.String("listen", addr), zap.Bool("watch", serveWatch))

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}

// regenerate returns a watch handler that rewrites the static report.
func regenerate(svc *controlplane.Service) watch.Handler {
	return func(ctx context.Context) error {
		_, err := svc.Generate(ctx)
		return err
	}
}

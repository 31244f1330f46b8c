package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidensmith24/shopifyscraper/internal/server"
	"github.com/aidensmith24/shopifyscraper/internal/snapshot"
)

// newServeCmd creates and configures the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored snapshots over HTTP",
		Long: `Starts a read-only HTTP server exposing stored snapshots, their
statistics, diffs between captures, and generated report files.`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			if addr == "" {
				addr = rt.Config.Server.Addr
			}
			return runServe(cmd.Context(), rt, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}

func runServe(parent context.Context, rt *Runtime, addr string) error {
	store, err := snapshot.NewStore(rt.Config.Data.Dir)
	if err != nil {
		return err
	}
	viewer := server.NewServer(store, rt.Config.ReportDir(), rt.Config.Report.TopN, rt.Logger)

	srv := &http.Server{
		Addr:              addr,
		Handler:           viewer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		rt.Logger.Info("http server started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	rt.Logger.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	rt.Logger.Info("shutdown complete")
	return nil
}

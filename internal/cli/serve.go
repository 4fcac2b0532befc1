package cli

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

	"github.com/utkarsh5026/makespan/internal/server"
	"github.com/utkarsh5026/makespan/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		addr          string
		db            string
		maxTasks      int
		maxProcessors int
		searchTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the scheduling API over HTTP",
		Example: "  makespan serve --addr :8080 --db runs.db",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("max-tasks") {
				maxTasks = cfg.Server.MaxTasks
			}
			if !cmd.Flags().Changed("max-processors") {
				maxProcessors = cfg.Server.MaxProcessors
			}
			if !cmd.Flags().Changed("search-timeout") && cfg.Solve.Timeout > 0 {
				searchTimeout = cfg.Solve.Timeout
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var st store.Store
			sqlite, err := openStore(ctx, dbPath(cmd, db))
			if err != nil {
				return err
			}
			if sqlite != nil {
				defer sqlite.Close()
				st = sqlite
			}

			srv := server.New(st, logger,
				server.WithMaxTasks(maxTasks),
				server.WithMaxProcessors(maxProcessors),
				server.WithSearchTimeout(searchTimeout),
			)
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server starting", "addr", addr, "archive", st != nil)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("listen on %s: %w", addr, err)
				}
				return nil
			case <-ctx.Done():
			}
			logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (default from config)")
	cmd.Flags().StringVar(&db, "db", "", "SQLite run archive; list and get are disabled without one")
	cmd.Flags().IntVar(&maxTasks, "max-tasks", server.DefaultMaxTasks, "Reject instances with more tasks")
	cmd.Flags().IntVar(&maxProcessors, "max-processors", server.DefaultMaxProcessors, "Reject instances with more processors")
	cmd.Flags().DurationVar(&searchTimeout, "search-timeout", 5*time.Second, "Cap on each optimal search")

	return cmd
}

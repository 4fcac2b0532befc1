// Package cli implements the makespan command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/makespan/batch"
	"github.com/utkarsh5026/makespan/internal/config"
	"github.com/utkarsh5026/makespan/internal/logging"
	"github.com/utkarsh5026/makespan/internal/store"
	"github.com/utkarsh5026/makespan/schedule"
)

var (
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	cfg    config.Config
	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the makespan CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "makespan",
		Short: "Schedule independent tasks on identical processors",
		Long: "makespan assigns tasks to identical processors so that the last one finishes as early as possible.\n" +
			"It offers a fast greedy heuristic, an exact branch-and-bound search, batch solving and an HTTP API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				loaded.Log.Level = flagLogLevel
			}
			if cmd.Flags().Changed("log-format") {
				loaded.Log.Format = flagLogFormat
			}
			if flagDebug {
				loaded.Log.Level = "debug"
			}

			cfg = loaded
			logger = logging.NewWithWriter(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newSolveCmd(),
		newBatchCmd(),
		newGenCmd(),
		newServeCmd(),
		newHistoryCmd(),
	)

	return root
}

// solveSettings are the per-instance options shared by solve, batch and serve.
type solveSettings struct {
	mode    string
	order   string
	timeout string
}

func (s *solveSettings) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.mode, "mode", "", "heuristic, optimal or compare (default from config)")
	cmd.Flags().StringVar(&s.order, "order", "", "Heuristic task order: lpt or id (default from config)")
	cmd.Flags().StringVar(&s.timeout, "timeout", "", "Bound on each optimal search, e.g. 2s (default from config)")
}

// options resolves flags over the loaded config into solver options.
func (s *solveSettings) options(cmd *cobra.Command) ([]batch.Option, batch.Mode, error) {
	modeName := cfg.Solve.Mode
	if cmd.Flags().Changed("mode") {
		modeName = s.mode
	}
	mode, err := batch.ParseMode(modeName)
	if err != nil {
		return nil, 0, err
	}

	orderName := cfg.Solve.Order
	if cmd.Flags().Changed("order") {
		orderName = s.order
	}
	order, err := parseOrder(orderName)
	if err != nil {
		return nil, 0, err
	}

	timeout := cfg.Solve.Timeout
	if cmd.Flags().Changed("timeout") {
		if timeout, err = parseDuration(s.timeout); err != nil {
			return nil, 0, fmt.Errorf("--timeout: %w", err)
		}
	}

	return []batch.Option{
		batch.WithMode(mode),
		batch.WithOrder(order),
		batch.WithTimeout(timeout),
		batch.WithLogger(logger),
	}, mode, nil
}

func parseOrder(s string) (schedule.Order, error) {
	switch s {
	case "lpt", "":
		return schedule.OrderLongestFirst, nil
	case "id":
		return schedule.OrderByID, nil
	default:
		return 0, fmt.Errorf("unknown order %q (want lpt or id)", s)
	}
}

// openStore opens and migrates the run archive at path. It returns nil when
// path is empty.
func openStore(ctx context.Context, path string) (*store.SQLiteStore, error) {
	if path == "" {
		return nil, nil
	}
	st, err := store.NewSQLiteStore(path, logger)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// dbPath returns the --db flag when set, the configured path otherwise.
func dbPath(cmd *cobra.Command, flag string) string {
	if cmd.Flags().Changed("db") {
		return flag
	}
	return cfg.Store.Path
}

// archive saves a solved outcome as a run.
func archive(ctx context.Context, st store.Store, mode batch.Mode, o batch.Outcome) (*store.Run, error) {
	run := store.NewRun(o.Name, mode.String(), o.Best)
	run.Proven = o.Proven
	run.Nodes = o.Nodes
	run.Elapsed = o.Elapsed
	if o.Heuristic != nil {
		run.HeuristicMakespan = o.Heuristic.Makespan()
	}
	if err := st.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("archive %q: %w", o.Name, err)
	}
	return run, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/makespan/batch"
	"github.com/utkarsh5026/makespan/instance"
	"github.com/utkarsh5026/makespan/internal/render"
)

func newBatchCmd() *cobra.Command {
	var (
		settings   solveSettings
		workers    int
		buffer     int
		rate       float64
		burst      int
		pin        bool
		noProgress bool
		db         string
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Solve every instance in a file concurrently",
		Example: "  makespan gen --count 50 --tasks 12 > jobs.yaml\n" +
			"  makespan batch jobs.yaml --workers 8 --timeout 2s",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instances, err := instance.Load(args[0])
			if err != nil {
				return err
			}

			opts, mode, err := settings.options(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("workers") {
				workers = cfg.Batch.Workers
			}
			if !cmd.Flags().Changed("buffer") {
				buffer = cfg.Batch.Buffer
			}
			if !cmd.Flags().Changed("rate") {
				rate, burst = cfg.Batch.Rate, max(cfg.Batch.Burst, 1)
			}
			if !cmd.Flags().Changed("pin") {
				pin = cfg.Batch.Pin
			}

			opts = append(opts,
				batch.WithWorkerCount(workers),
				batch.WithTaskBuffer(buffer),
				batch.WithRateLimit(rate, burst),
				batch.WithCPUPinning(pin),
			)

			if !noProgress {
				bar := render.NewProgressBar(cmd.ErrOrStderr(), len(instances), "solving")
				opts = append(opts, batch.WithOnSolved(func(batch.Outcome) {
					_ = bar.Add(1)
				}))
				defer bar.Finish()
			}

			st, err := openStore(cmd.Context(), dbPath(cmd, db))
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			outcomes, err := batch.NewSolver(opts...).Solve(cmd.Context(), instances)
			if err != nil {
				return err
			}

			if st != nil {
				for _, o := range outcomes {
					if o.Err != nil {
						continue
					}
					if _, err := archive(cmd.Context(), st, mode, o); err != nil {
						return err
					}
				}
			}

			if err := render.Outcomes(cmd.OutOrStdout(), outcomes); err != nil {
				return err
			}

			for _, o := range outcomes {
				if o.Err != nil {
					return fmt.Errorf("some instances failed")
				}
			}
			return nil
		},
	}

	settings.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent workers (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&buffer, "buffer", 0, "Instance channel buffer (0 = worker count)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Start at most this many instances per second (0 = unlimited)")
	cmd.Flags().IntVar(&burst, "burst", 1, "Rate limiter burst size")
	cmd.Flags().BoolVar(&pin, "pin", false, "Pin workers to CPU cores")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Hide the progress bar")
	cmd.Flags().StringVar(&db, "db", "", "Archive runs in this SQLite database")

	return cmd
}

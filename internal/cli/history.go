package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/makespan/internal/render"
	"github.com/utkarsh5026/makespan/internal/store"
)

func newHistoryCmd() *cobra.Command {
	var (
		db     string
		limit  int
		offset int
		show   string
		del    string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show or delete archived runs",
		Example: "  makespan history --db runs.db\n" +
			"  makespan history --db runs.db --show run_3f2a...",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := dbPath(cmd, db)
			if path == "" {
				return errors.New("no run archive configured (use --db or store.path)")
			}
			st, err := openStore(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			switch {
			case del != "":
				if err := st.DeleteRun(cmd.Context(), del); err != nil {
					return fmt.Errorf("delete %s: %w", del, err)
				}
				_, err := fmt.Fprintf(out, "Deleted %s\n", del)
				return err

			case show != "":
				run, err := st.GetRun(cmd.Context(), show)
				if err != nil {
					return fmt.Errorf("show %s: %w", show, err)
				}
				s, err := run.Schedule()
				if err != nil {
					return fmt.Errorf("show %s: %w", show, err)
				}
				render.Bold.Fprintf(out, "%s (%s, %s)\n", run.Name, run.ID, run.Mode)
				return render.Table(out, s)

			default:
				opts := store.ListOptions{Limit: limit, Offset: offset}
				opts.Clamp()
				runs, total, err := st.ListRuns(cmd.Context(), opts)
				if err != nil {
					return err
				}
				return render.Runs(out, runs, total, opts.Offset)
			}
		},
	}

	cmd.Flags().StringVar(&db, "db", "", "SQLite run archive (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Runs per page (max 100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Runs to skip")
	cmd.Flags().StringVar(&show, "show", "", "Print the schedule of one run")
	cmd.Flags().StringVar(&del, "delete", "", "Delete one run")
	cmd.MarkFlagsMutuallyExclusive("show", "delete")

	return cmd
}

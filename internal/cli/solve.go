package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/makespan/batch"
	"github.com/utkarsh5026/makespan/instance"
	"github.com/utkarsh5026/makespan/internal/render"
)

type solveOutput struct {
	Name      string       `json:"name,omitempty"`
	Heuristic *render.View `json:"heuristic,omitempty"`
	Best      render.View  `json:"best"`
	Proven    bool         `json:"proven"`
	Nodes     int64        `json:"nodes"`
	ElapsedMS float64      `json:"elapsed_ms"`
	RunID     string       `json:"run_id,omitempty"`
}

func newSolveCmd() *cobra.Command {
	var (
		settings   solveSettings
		durations  string
		processors int
		name       string
		format     string
		db         string
	)

	cmd := &cobra.Command{
		Use:   "solve [file]",
		Short: "Schedule one instance, or each instance in a file",
		Long: "Schedule the instance given by --durations and --processors, or every instance in a YAML/JSON file.\n" +
			"Instances are solved one after another; use 'batch' for concurrent solving.",
		Example: "  makespan solve --durations 5,3,8,2 --processors 2\n" +
			"  makespan solve jobs.yaml --mode optimal --timeout 5s --format table",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var instances []instance.Instance
			switch {
			case len(args) == 1:
				loaded, err := instance.Load(args[0])
				if err != nil {
					return err
				}
				instances = loaded
			case cmd.Flags().Changed("durations"):
				ds, err := instance.ParseDurations(durations)
				if err != nil {
					return err
				}
				instances = []instance.Instance{{Name: name, Durations: ds, Processors: processors}}
			default:
				return errors.New("give an instance file or --durations")
			}

			opts, mode, err := settings.options(cmd)
			if err != nil {
				return err
			}

			st, err := openStore(cmd.Context(), dbPath(cmd, db))
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			outcomes, err := batch.NewSolver(append(opts, batch.WithWorkerCount(1))...).
				Solve(cmd.Context(), instances)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			results := []solveOutput{}
			var failed int
			for _, o := range outcomes {
				if o.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", label(o), o.Err)
					continue
				}

				var runID string
				if st != nil {
					run, err := archive(cmd.Context(), st, mode, o)
					if err != nil {
						return err
					}
					runID = run.ID
				}

				switch format {
				case "json":
					results = append(results, toSolveOutput(o, runID))
				case "table":
					if err := printTable(out, o); err != nil {
						return err
					}
				default:
					if err := printText(out, o, len(outcomes) > 1); err != nil {
						return err
					}
				}
			}

			if format == "json" {
				if err := render.JSON(out, results); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d instances failed", failed, len(outcomes))
			}
			return nil
		},
	}

	settings.register(cmd)
	cmd.Flags().StringVar(&durations, "durations", "", "Comma-separated task durations, e.g. 5,3,8,2")
	cmd.Flags().IntVarP(&processors, "processors", "m", 1, "Number of identical processors")
	cmd.Flags().StringVar(&name, "name", "", "Instance name")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, table, json")
	cmd.Flags().StringVar(&db, "db", "", "Archive runs in this SQLite database")

	return cmd
}

func label(o batch.Outcome) string {
	if o.Name != "" {
		return o.Name
	}
	return fmt.Sprintf("instance %d", o.Index)
}

func printText(w io.Writer, o batch.Outcome, withName bool) error {
	if withName {
		render.Bold.Fprintf(w, "== %s ==\n", label(o))
	}
	if o.Heuristic != nil && o.Heuristic != o.Best {
		fmt.Fprintln(w, "Heuristic:")
		if err := render.Summary(w, o.Heuristic); err != nil {
			return err
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Best:")
	}
	if err := render.Summary(w, o.Best); err != nil {
		return err
	}
	return printVerdict(w, o)
}

func printTable(w io.Writer, o batch.Outcome) error {
	render.Bold.Fprintf(w, "== %s ==\n", label(o))
	if err := render.Table(w, o.Best); err != nil {
		return err
	}
	return printVerdict(w, o)
}

func printVerdict(w io.Writer, o batch.Outcome) error {
	var err error
	switch {
	case o.Proven:
		_, err = render.Green.Fprintf(w, "optimal (%s nodes, %s)\n", render.FormatCount(o.Nodes), render.FormatElapsed(o.Elapsed))
	default:
		_, err = render.Yellow.Fprintf(w, "not proven optimal (%s nodes, %s)\n", render.FormatCount(o.Nodes), render.FormatElapsed(o.Elapsed))
	}
	return err
}

func toSolveOutput(o batch.Outcome, runID string) solveOutput {
	res := solveOutput{
		Name:      o.Name,
		Best:      render.NewView(o.Best),
		Proven:    o.Proven,
		Nodes:     o.Nodes,
		ElapsedMS: float64(o.Elapsed.Microseconds()) / 1000,
		RunID:     runID,
	}
	if o.Heuristic != nil {
		h := render.NewView(o.Heuristic)
		res.Heuristic = &h
	}
	return res
}

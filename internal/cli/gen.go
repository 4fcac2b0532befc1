package cli

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/makespan/instance"
)

func newGenCmd() *cobra.Command {
	var (
		count      int
		tasks      int
		processors int
		minDur     int
		maxDur     int
		seed       int64
		out        string
	)

	cmd := &cobra.Command{
		Use:     "gen",
		Short:   "Generate random instances as YAML",
		Example: "  makespan gen --count 20 --tasks 10 --processors 3 --seed 42 > jobs.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 || tasks < 0 || processors < 1 {
				return fmt.Errorf("need --count >= 1, --tasks >= 0 and --processors >= 1")
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			rng := rand.New(rand.NewSource(seed))

			instances := make([]instance.Instance, count)
			for i := range instances {
				instances[i] = instance.Random(rng, fmt.Sprintf("random-%d", i), tasks, processors, minDur, maxDur)
			}
			logger.Debug("generated instances", "count", count, "seed", seed)

			data, err := instance.Marshal(instances)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "Number of instances")
	cmd.Flags().IntVarP(&tasks, "tasks", "t", 10, "Tasks per instance")
	cmd.Flags().IntVarP(&processors, "processors", "m", 3, "Processors per instance")
	cmd.Flags().IntVar(&minDur, "min", 1, "Shortest task duration")
	cmd.Flags().IntVar(&maxDur, "max", 20, "Longest task duration")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (default: current time)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")

	return cmd
}

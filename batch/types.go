package batch

import (
	"fmt"
	"strings"
	"time"

	"github.com/utkarsh5026/makespan/schedule"
)

// Mode selects which schedules a Solver computes for every instance.
type Mode int

const (
	// ModeCompare runs the heuristic and the optimal search.
	ModeCompare Mode = iota
	// ModeHeuristic runs only the greedy heuristic.
	ModeHeuristic
	// ModeOptimal runs only the optimal search (which is seeded internally).
	ModeOptimal
)

func (m Mode) String() string {
	switch m {
	case ModeCompare:
		return "compare"
	case ModeHeuristic:
		return "heuristic"
	case ModeOptimal:
		return "optimal"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps "heuristic", "optimal" or "compare" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "compare", "":
		return ModeCompare, nil
	case "heuristic":
		return ModeHeuristic, nil
	case "optimal":
		return ModeOptimal, nil
	default:
		return 0, fmt.Errorf("batch: unknown mode %q", s)
	}
}

// Outcome is the result of solving one instance.
//
// Fields:
//   - Index: Position of the instance in the input slice
//   - Name: Instance name, copied for convenience
//   - Heuristic: Greedy schedule (nil in ModeOptimal)
//   - Best: Best schedule found; the heuristic one in ModeHeuristic
//   - Proven: Best is known to be optimal, either because the search finished
//     or because it meets the lower bound
//   - Nodes: Search nodes explored (0 in ModeHeuristic)
//   - Elapsed: Wall time spent on the instance
//   - Err: Validation failure, panic or context error for this instance
type Outcome struct {
	Index     int
	Name      string
	Heuristic *schedule.Schedule
	Best      *schedule.Schedule
	Proven    bool
	Nodes     int64
	Elapsed   time.Duration
	Err       error
}

// Ratio returns the heuristic makespan divided by the best makespan, or 0
// when either schedule is missing. An empty instance has ratio 1.
func (o Outcome) Ratio() float64 {
	if o.Heuristic == nil || o.Best == nil {
		return 0
	}
	if o.Best.Makespan() == 0 {
		return 1
	}
	return float64(o.Heuristic.Makespan()) / float64(o.Best.Makespan())
}

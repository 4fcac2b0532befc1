package schedule

import (
	"cmp"
	"fmt"
	"time"
)

// ScheduledTask assigns a single task to a processor.
//
// Fields:
//   - ID: The task identifier, i.e. the index into the durations slice
//   - Processor: The processor the task runs on, in [0, m-1]
type ScheduledTask struct {
	ID        int `json:"id" yaml:"id"`
	Processor int `json:"processor" yaml:"processor"`
}

// Compare orders two assignments by task ID. It can be passed directly to
// slices.SortFunc.
func Compare(a, b ScheduledTask) int {
	return cmp.Compare(a.ID, b.ID)
}

func (st ScheduledTask) String() string {
	return fmt.Sprintf("(%d→%d)", st.ID, st.Processor)
}

// Order selects the sequence in which the greedy heuristic visits tasks.
type Order int

const (
	// OrderLongestFirst visits tasks by descending duration, ties broken by
	// ascending task ID (longest processing time first).
	OrderLongestFirst Order = iota
	// OrderByID visits tasks in index order (plain list scheduling).
	OrderByID
)

func (o Order) String() string {
	switch o {
	case OrderLongestFirst:
		return "longest-first"
	case OrderByID:
		return "by-id"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// Bound selects the schedule that seeds the optimal search.
type Bound int

const (
	// BoundHeuristic seeds the search with the greedy heuristic schedule.
	BoundHeuristic Bound = iota
	// BoundSingleProcessor seeds the search with every task on processor 0.
	// The initial bound is the total work, so the search prunes less early on.
	BoundSingleProcessor
)

func (b Bound) String() string {
	switch b {
	case BoundHeuristic:
		return "heuristic"
	case BoundSingleProcessor:
		return "single-processor"
	default:
		return fmt.Sprintf("Bound(%d)", int(b))
	}
}

// SearchResult is the outcome of a branch-and-bound search.
//
// Fields:
//   - Schedule: Best schedule found (never nil)
//   - Optimal: True when the search ran to completion, so Schedule has minimum makespan
//   - Nodes: Number of (task, processor) extensions explored
//   - Pruned: Number of extensions or subtrees cut by a bound
//   - Elapsed: Wall time spent searching
type SearchResult struct {
	Schedule *Schedule
	Optimal  bool
	Nodes    int64
	Pruned   int64
	Elapsed  time.Duration
}

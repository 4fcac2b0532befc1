package schedule

import (
	"slices"
	"strconv"
	"strings"
)

// Schedule is a validated assignment of tasks to identical processors.
//
// A Schedule that exists always satisfies the following invariants:
//   - every task ID lies in [0, n-1] and every processor in [0, m-1]
//   - every task ID appears exactly once
//   - for two assignments on the same processor, the one with the smaller task
//     ID appears earlier in the assignment array
//
// The last invariant is positional and local to each processor: assignments
// for different processors may interleave freely, and the array is never
// reordered on construction.
//
// Schedules are immutable; every query is a pure read.
type Schedule struct {
	durations   []int
	m           int
	assignments []ScheduledTask
	makespan    int
}

// New validates the arguments and builds a Schedule. The slices are copied, so
// later changes by the caller do not affect the result.
//
// Parameters:
//   - durations: Duration of each task, indexed by task ID (every value >= 1)
//   - m: Number of processors (>= 1)
//   - assignments: One ScheduledTask per task, honouring the per-processor order
//
// Returns:
//   - *Schedule: The validated schedule
//   - error: Wraps ErrInvalidArgument when any invariant is violated
//
// Example:
//
//	s, err := schedule.New([]int{4, 4}, 2, []schedule.ScheduledTask{
//	    {ID: 0, Processor: 0},
//	    {ID: 1, Processor: 1},
//	})
//	// s.Makespan() == 4, s.Utilization() == 1.0
func New(durations []int, m int, assignments []ScheduledTask) (*Schedule, error) {
	if m < 1 {
		return nil, invalidf("new schedule", "processor count %d < 1", m)
	}
	if i := firstInvalidDuration(durations); i >= 0 {
		return nil, invalidf("new schedule", "task %d has duration %d < 1", i, durations[i])
	}
	if !IsConsistent(durations, m, assignments) {
		return nil, invalidf("new schedule", "assignments are not consistent with %d tasks on %d processors", len(durations), m)
	}

	s := &Schedule{
		durations:   slices.Clone(durations),
		m:           m,
		assignments: slices.Clone(assignments),
	}
	for _, load := range s.Loads() {
		s.makespan = max(s.makespan, load)
	}
	return s, nil
}

// AreValid reports whether m >= 1 and every duration is >= 1.
func AreValid(durations []int, m int) bool {
	return m >= 1 && firstInvalidDuration(durations) < 0
}

func firstInvalidDuration(durations []int) int {
	for i, d := range durations {
		if d < 1 {
			return i
		}
	}
	return -1
}

// IsConsistent reports whether assignments is a valid schedule array for the
// given tasks and processor count: IDs in range, each task exactly once, and
// ascending task IDs within every processor in array order.
//
// The durations and processor count are assumed valid (see AreValid).
func IsConsistent(durations []int, m int, assignments []ScheduledTask) bool {
	n := len(durations)
	if len(assignments) != n {
		return false
	}

	seen := make([]bool, n)
	// last task ID placed on each processor so far; -1 when none
	last := make([]int, max(m, 0))
	for p := range last {
		last[p] = -1
	}

	for _, st := range assignments {
		if st.ID < 0 || st.ID >= n || st.Processor < 0 || st.Processor >= m {
			return false
		}
		if seen[st.ID] {
			return false
		}
		seen[st.ID] = true

		if st.ID < last[st.Processor] {
			return false
		}
		last[st.Processor] = st.ID
	}

	for _, ok := range seen {
		if !ok {
			return false
		}
	}
	return true
}

// SortedByTask returns a copy of assignments ordered by task ID. The result
// always satisfies the per-processor ordering invariant, which makes it a
// convenient way to prepare assignments collected in arbitrary order.
func SortedByTask(assignments []ScheduledTask) []ScheduledTask {
	out := slices.Clone(assignments)
	slices.SortStableFunc(out, Compare)
	return out
}

// LowerBound returns a bound no schedule can beat: the larger of the longest
// task and the total work spread evenly over m processors (rounded up).
// It returns 0 for an empty task set or m < 1.
func LowerBound(durations []int, m int) int {
	if len(durations) == 0 || m < 1 {
		return 0
	}
	total, longest := 0, 0
	for _, d := range durations {
		total += d
		longest = max(longest, d)
	}
	return max(longest, (total+m-1)/m)
}

// Makespan returns the time at which the last processor finishes.
func (s *Schedule) Makespan() int {
	return s.makespan
}

// Utilization returns the total work divided by makespan × processors.
// For an empty schedule (makespan 0) it returns 0.
func (s *Schedule) Utilization() float64 {
	makespan := s.Makespan()
	if makespan == 0 {
		return 0
	}
	return float64(s.TotalWork()) / float64(makespan*s.m)
}

// Loads returns the busy time of every processor.
func (s *Schedule) Loads() []int {
	loads := make([]int, s.m)
	for _, st := range s.assignments {
		loads[st.Processor] += s.durations[st.ID]
	}
	return loads
}

// TotalWork returns the sum of all task durations.
func (s *Schedule) TotalWork() int {
	total := 0
	for _, d := range s.durations {
		total += d
	}
	return total
}

// Idle returns the processor time left unused before the makespan.
func (s *Schedule) Idle() int {
	return s.Makespan()*s.m - s.TotalWork()
}

// TasksOn returns the task IDs assigned to processor p, in array order.
// It returns nil for an out-of-range processor.
func (s *Schedule) TasksOn(p int) []int {
	if p < 0 || p >= s.m {
		return nil
	}
	var ids []int
	for _, st := range s.assignments {
		if st.Processor == p {
			ids = append(ids, st.ID)
		}
	}
	return ids
}

// Len returns the number of tasks.
func (s *Schedule) Len() int { return len(s.durations) }

// Processors returns the processor count.
func (s *Schedule) Processors() int { return s.m }

// Durations returns a copy of the task durations.
func (s *Schedule) Durations() []int { return slices.Clone(s.durations) }

// Assignments returns a copy of the assignment array in its original order.
func (s *Schedule) Assignments() []ScheduledTask { return slices.Clone(s.assignments) }

// String renders the schedule as a multi-line summary:
//
//	# Tasks: 4
//	Durations: [5, 3, 8, 2]
//	# Processors: 2
//	Schedule @0: 2, 3
//	Schedule @1: 0, 1
//	Makespan: 10
func (s *Schedule) String() string {
	var b strings.Builder

	b.WriteString("# Tasks: ")
	b.WriteString(strconv.Itoa(len(s.durations)))
	b.WriteString("\nDurations: [")
	b.WriteString(joinInts(s.durations))
	b.WriteString("]\n# Processors: ")
	b.WriteString(strconv.Itoa(s.m))
	b.WriteByte('\n')

	for p := range s.m {
		b.WriteString("Schedule @")
		b.WriteString(strconv.Itoa(p))
		b.WriteByte(':')
		if ids := s.TasksOn(p); len(ids) > 0 {
			b.WriteByte(' ')
			b.WriteString(joinInts(ids))
		}
		b.WriteByte('\n')
	}

	b.WriteString("Makespan: ")
	b.WriteString(strconv.Itoa(s.Makespan()))
	return b.String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

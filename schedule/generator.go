package schedule

import (
	"cmp"
	"slices"
)

// Generator produces schedules for a fixed task set and processor count.
// It holds no state between calls, so a single Generator may be used from
// several goroutines at once.
type Generator struct {
	durations []int
	m         int
	order     Order
	bound     Bound
}

// NewGenerator creates a Generator for the given tasks and processor count.
//
// Parameters:
//   - durations: Duration of each task, indexed by task ID (copied)
//   - m: Number of identical processors
//   - opts: Variadic GeneratorOption values (WithOrder, WithBound)
//
// Returns:
//   - *Generator: The configured generator
//   - error: Wraps ErrInvalidArgument when AreValid(durations, m) is false
//
// Example:
//
//	gen, err := schedule.NewGenerator([]int{5, 3, 8, 2}, 2)
//	if err != nil {
//	    return err
//	}
//	fast := gen.Heuristic()
//	best := gen.Optimal()
func NewGenerator(durations []int, m int, opts ...GeneratorOption) (*Generator, error) {
	if m < 1 {
		return nil, invalidf("new generator", "processor count %d < 1", m)
	}
	if i := firstInvalidDuration(durations); i >= 0 {
		return nil, invalidf("new generator", "task %d has duration %d < 1", i, durations[i])
	}

	cfg := &generatorConfig{
		order: OrderLongestFirst,
		bound: BoundHeuristic,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Generator{
		durations: slices.Clone(durations),
		m:         m,
		order:     cfg.order,
		bound:     cfg.bound,
	}, nil
}

// Heuristic schedules the tasks one by one, always onto the processor with
// the least accumulated load (lowest index on ties). Tasks are visited in the
// generator's Order; the result is deterministic for a given input.
//
// With OrderLongestFirst the makespan is at most (4/3 - 1/(3m)) times the
// optimum. Runs in O(n log n + n log m).
func (g *Generator) Heuristic() *Schedule {
	assignments := make([]ScheduledTask, len(g.durations))
	queue := newLoadQueue(g.m)

	for _, id := range g.visitOrder() {
		p := queue.Add(g.durations[id])
		assignments[id] = ScheduledTask{ID: id, Processor: p}
	}

	// indexed by task ID, so every processor sees ascending IDs
	return g.mustSchedule(assignments)
}

// visitOrder returns task IDs in the order the heuristic assigns them.
func (g *Generator) visitOrder() []int {
	ids := make([]int, len(g.durations))
	for i := range ids {
		ids[i] = i
	}

	if g.order == OrderLongestFirst {
		slices.SortStableFunc(ids, func(a, b int) int {
			return cmp.Compare(g.durations[b], g.durations[a])
		})
	}
	return ids
}

// singleProcessor places every task on processor 0.
func (g *Generator) singleProcessor() *Schedule {
	assignments := make([]ScheduledTask, len(g.durations))
	for id := range assignments {
		assignments[id] = ScheduledTask{ID: id}
	}
	return g.mustSchedule(assignments)
}

// seed returns the initial best-known schedule for the optimal search.
func (g *Generator) seed() *Schedule {
	if g.bound == BoundSingleProcessor {
		return g.singleProcessor()
	}
	return g.Heuristic()
}

// mustSchedule wraps assignments that are consistent by construction.
func (g *Generator) mustSchedule(assignments []ScheduledTask) *Schedule {
	s, err := New(g.durations, g.m, assignments)
	if err != nil {
		panic("schedule: generator built an inconsistent schedule: " + err.Error())
	}
	return s
}

// Durations returns a copy of the task durations.
func (g *Generator) Durations() []int { return slices.Clone(g.durations) }

// Processors returns the processor count.
func (g *Generator) Processors() int { return g.m }

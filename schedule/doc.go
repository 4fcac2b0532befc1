// Package schedule assigns tasks with known integer durations to a fixed
// number of identical processors and evaluates the result.
//
// The package has three parts:
//
//   - ScheduledTask: an immutable (task, processor) pair
//   - Schedule: a validated, immutable assignment of every task, with
//     makespan, utilization and a textual summary
//   - Generator: produces schedules, either with a greedy heuristic or with an
//     exhaustive branch-and-bound search for the minimum makespan
//
// # Basic Usage
//
//	gen, err := schedule.NewGenerator([]int{5, 3, 8, 2}, 2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fast := gen.Heuristic() // greedy, near optimal
//	best := gen.Optimal()   // exact, exponential in the task count
//	fmt.Println(best)
//
// # Validation
//
// Construction is the only place errors occur. New and NewGenerator return an
// error wrapping ErrInvalidArgument when the processor count is below one,
// when a duration is below one, or (for New) when the assignment array is not
// consistent. A Schedule value that exists is always valid, and every query
// on it is a total function.
//
// The ordering invariant is positional: within each processor, task IDs must
// ascend in array order. Assignments for different processors may interleave
// in any way. New never reorders its input; use SortedByTask to prepare an
// array collected in arbitrary order.
//
// # Bounded Search
//
// Optimal runs to completion. Search accepts a context and, when it is
// cancelled, returns the best schedule found so far together with the
// context's error:
//
//	ctx, cancel := context.WithTimeout(ctx, time.Second)
//	defer cancel()
//	res, err := gen.Search(ctx)
//	// res.Schedule is always usable; res.Optimal reports whether it is proven.
//
// # Concurrency
//
// Everything in this package is synchronous. Schedules are immutable and a
// Generator keeps no state between calls, so both can be shared between
// goroutines. Inputs are copied on construction.
//
// Build with -tags debug to trace the search on stderr.
package schedule

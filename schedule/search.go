package schedule

import (
	"context"
	"time"
)

// cancelCheckInterval is how many recursive calls the search makes between
// context checks. Must be a power of two.
const cancelCheckInterval = 1 << 10

// Optimal returns a schedule with the minimum achievable makespan.
//
// The search is exhaustive (branch-and-bound over m^n assignments) and is
// only practical for small task sets. When several schedules share the
// minimum makespan, which one is returned is unspecified.
func (g *Generator) Optimal() *Schedule {
	res, _ := g.Search(context.Background())
	return res.Schedule
}

// Search runs the branch-and-bound search for a minimum-makespan schedule,
// seeded with the generator's Bound.
//
// The search checks ctx periodically. When ctx is cancelled it stops and
// returns the best schedule found so far together with ctx.Err(); the
// returned schedule is never worse than the seed. Result.Optimal is true
// only when the search completed.
//
// Parameters:
//   - ctx: Context for cancellation and deadlines (must not be nil)
//
// Returns:
//   - SearchResult: Best schedule plus search statistics
//   - error: ctx.Err() when the search was interrupted, nil otherwise
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
//	defer cancel()
//	res, err := gen.Search(ctx)
//	if err != nil {
//	    // res.Schedule is still usable, just not proven optimal
//	}
func (g *Generator) Search(ctx context.Context) (SearchResult, error) {
	start := time.Now()
	best := g.seed()

	s := newSearcher(g)
	var err error
	if best.Makespan() > s.lowerBound {
		best, err = s.descend(ctx, 0, best)
	}

	debugLog("search done: n=%d m=%d makespan=%d nodes=%d pruned=%d err=%v",
		len(g.durations), g.m, best.Makespan(), s.nodes, s.pruned, err)

	return SearchResult{
		Schedule: best,
		Optimal:  err == nil,
		Nodes:    s.nodes,
		Pruned:   s.pruned,
		Elapsed:  time.Since(start),
	}, err
}

// searcher holds the scratch state of one Search call. The best-known
// schedule is not part of it; it travels through descend's arguments and
// return values.
type searcher struct {
	durations []int
	m         int

	// partial assignment; buf[:t] is fixed while descending into task t
	buf []ScheduledTask

	loads []int
	// remaining[t] is the total duration of tasks t..n-1
	remaining  []int
	lowerBound int

	calls  int64
	nodes  int64
	pruned int64
}

func newSearcher(g *Generator) *searcher {
	n := len(g.durations)
	remaining := make([]int, n+1)
	for t := n - 1; t >= 0; t-- {
		remaining[t] = remaining[t+1] + g.durations[t]
	}

	return &searcher{
		durations:  g.durations,
		m:          g.m,
		buf:        make([]ScheduledTask, n),
		loads:      make([]int, g.m),
		remaining:  remaining,
		lowerBound: LowerBound(g.durations, g.m),
	}
}

// descend assigns task t to every admissible processor in turn and returns
// the best schedule found in the subtree, or best itself when nothing in the
// subtree beats it.
func (s *searcher) descend(ctx context.Context, t int, best *Schedule) (*Schedule, error) {
	if t == len(s.durations) {
		return s.complete(best), nil
	}

	s.calls++
	if s.calls&(cancelCheckInterval-1) == 0 {
		if err := ctx.Err(); err != nil {
			return best, err
		}
	}

	bestSpan := best.Makespan()

	// the remaining work must fit below bestSpan on every processor
	if s.capacityBelow(bestSpan-1) < s.remaining[t] {
		s.pruned++
		return best, nil
	}

	d := s.durations[t]
	for p := range s.m {
		if s.loads[p]+d >= bestSpan {
			s.pruned++
			continue
		}
		if s.mirrorsEarlier(p) {
			continue
		}

		s.nodes++
		s.buf[t] = ScheduledTask{ID: t, Processor: p}
		s.loads[p] += d
		next, err := s.descend(ctx, t+1, best)
		s.loads[p] -= d

		if next.Makespan() < bestSpan {
			best = next
			bestSpan = next.Makespan()
		}
		if err != nil {
			return best, err
		}
		if bestSpan <= s.lowerBound {
			return best, nil
		}
	}

	return best, nil
}

// complete turns the full assignment buffer into a Schedule and keeps it only
// when it strictly improves on best.
func (s *searcher) complete(best *Schedule) *Schedule {
	candidate, err := New(s.durations, s.m, s.buf)
	if err != nil {
		panic("schedule: search built an inconsistent schedule: " + err.Error())
	}
	if candidate.Makespan() < best.Makespan() {
		debugLog("improved makespan %d -> %d", best.Makespan(), candidate.Makespan())
		return candidate
	}
	return best
}

// mirrorsEarlier reports whether a lower-indexed processor carries the same
// load as p. Processors are identical, so such a branch is a relabelling of
// one already explored.
func (s *searcher) mirrorsEarlier(p int) bool {
	for q := range p {
		if s.loads[q] == s.loads[p] {
			return true
		}
	}
	return false
}

// capacityBelow returns how much more work fits on all processors without
// any of them exceeding limit.
func (s *searcher) capacityBelow(limit int) int {
	capacity := 0
	for _, load := range s.loads {
		capacity += max(limit-load, 0)
	}
	return capacity
}

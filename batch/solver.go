package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/makespan/instance"
	"github.com/utkarsh5026/makespan/internal/cpu"
	"github.com/utkarsh5026/makespan/internal/logging"
	"github.com/utkarsh5026/makespan/schedule"
)

// Solver spreads independent scheduling instances over a pool of workers.
// A Solver holds only configuration and may be reused for several batches,
// including concurrently.
type Solver struct {
	cfg solverConfig
}

// NewSolver creates a Solver with the given options.
// Default configuration: workers = GOMAXPROCS, buffer = worker count,
// ModeCompare, longest-first order, no timeout, no rate limit.
func NewSolver(opts ...Option) *Solver {
	cfg := solverConfig{
		workerCount: runtime.GOMAXPROCS(0),
		mode:        ModeCompare,
		order:       schedule.OrderLongestFirst,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.taskBuffer == 0 {
		cfg.taskBuffer = cfg.workerCount
	}
	if cfg.logger == nil {
		cfg.logger = logging.Discard()
	}
	cfg.logger = cfg.logger.With("component", "batch")

	return &Solver{cfg: cfg}
}

// job is an instance paired with its position in the input.
type job struct {
	index int
	in    instance.Instance
}

// Solve computes an Outcome for every instance, returned in input order.
//
// Parameters:
//   - ctx: Context for cancellation of the whole batch
//   - instances: Problems to solve; invalid ones yield an Outcome with Err set
//
// Returns:
//   - []Outcome: One entry per instance (entries not reached carry the batch error)
//   - error: ctx.Err(), a rate limiter error, or a recovered worker panic
func (s *Solver) Solve(ctx context.Context, instances []instance.Instance) ([]Outcome, error) {
	if len(instances) == 0 {
		return []Outcome{}, nil
	}

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)

	jobs := make(chan job, s.cfg.taskBuffer)
	results := make(chan Outcome, len(instances))

	numWorkers := min(s.cfg.workerCount, len(instances))
	for id := range numWorkers {
		g.Go(func() error {
			return s.worker(ctx, id, jobs, results)
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for i, in := range instances {
			select {
			case jobs <- job{index: i, in: in}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	outcomes := make([]Outcome, len(instances))
	done := make([]bool, len(instances))
	var collectWg sync.WaitGroup
	collectWg.Add(1)

	go func() {
		defer collectWg.Done()
		for o := range results {
			outcomes[o.Index] = o
			done[o.Index] = true
		}
	}()

	err := g.Wait()
	close(results)
	collectWg.Wait()

	if err != nil {
		for i := range outcomes {
			if !done[i] {
				outcomes[i] = Outcome{Index: i, Name: instances[i].Name, Err: err}
			}
		}
		s.cfg.logger.Warn("batch stopped", "instances", len(instances), "error", err)
		return outcomes, err
	}

	s.logSummary(outcomes, time.Since(start))
	return outcomes, nil
}

// worker drains the job channel. It stops on context cancellation, on a
// rate limiter error, or after a recovered panic.
func (s *Solver) worker(ctx context.Context, id int, jobs <-chan job, results chan<- Outcome) error {
	if s.cfg.pinWorkers {
		release, err := cpu.Pin(id)
		defer release()
		if err != nil {
			s.cfg.logger.Debug("cpu pinning failed", "worker", id, "error", err)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case j, ok := <-jobs:
			if !ok {
				return nil
			}

			if s.cfg.rateLimiter != nil {
				if err := s.cfg.rateLimiter.Wait(ctx); err != nil {
					return err
				}
			}

			o, panicErr := s.solveWithRecovery(ctx, j)
			results <- o
			if panicErr != nil {
				return panicErr
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// solveWithRecovery solves one job and runs the OnSolved hook, turning a
// panic in either into an error carrying the stack trace.
func (s *Solver) solveWithRecovery(ctx context.Context, j job) (o Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("worker panic on instance %d: %v\nstack trace:\n%s", j.index, r, buf[:n])
			o = Outcome{Index: j.index, Name: j.in.Name, Err: err}
		}
	}()

	o = s.solve(ctx, j)
	if s.cfg.onSolved != nil {
		s.cfg.onSolved(o)
	}
	return o, nil
}

// solve runs the configured mode on a single instance.
func (s *Solver) solve(ctx context.Context, j job) Outcome {
	start := time.Now()
	o := Outcome{Index: j.index, Name: j.in.Name}

	gen, err := j.in.Generator(schedule.WithOrder(s.cfg.order))
	if err != nil {
		o.Err = err
		o.Elapsed = time.Since(start)
		s.cfg.logger.Debug("instance rejected", "index", j.index, "name", j.in.Name, "error", err)
		return o
	}

	lowerBound := schedule.LowerBound(j.in.Durations, j.in.Processors)

	if s.cfg.mode != ModeOptimal {
		o.Heuristic = gen.Heuristic()
		o.Best = o.Heuristic
		o.Proven = o.Heuristic.Makespan() == lowerBound
	}

	if s.cfg.mode != ModeHeuristic {
		searchCtx, cancel := ctx, context.CancelFunc(func() {})
		if s.cfg.timeout > 0 {
			searchCtx, cancel = context.WithTimeout(ctx, s.cfg.timeout)
		}
		res, err := gen.Search(searchCtx)
		cancel()

		o.Best = res.Schedule
		o.Nodes = res.Nodes
		o.Proven = res.Optimal || res.Schedule.Makespan() == lowerBound

		switch {
		case err == nil:
		case ctx.Err() != nil:
			// the whole batch is going away
			o.Err = ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			s.cfg.logger.Warn("search timed out",
				"index", j.index, "name", j.in.Name,
				"timeout", s.cfg.timeout, "makespan", o.Best.Makespan(), "lower_bound", lowerBound)
		default:
			o.Err = err
		}
	}

	o.Elapsed = time.Since(start)
	s.cfg.logger.Debug("instance solved",
		"index", j.index, "name", j.in.Name,
		"makespan", o.Best.Makespan(), "proven", o.Proven,
		"nodes", o.Nodes, "elapsed", o.Elapsed)
	return o
}

func (s *Solver) logSummary(outcomes []Outcome, elapsed time.Duration) {
	var failed, proven int
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
		case o.Proven:
			proven++
		}
	}
	s.cfg.logger.Info("batch solved",
		"instances", len(outcomes), "proven", proven, "failed", failed,
		"mode", s.cfg.mode, "elapsed", elapsed)
}

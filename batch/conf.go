package batch

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/utkarsh5026/makespan/schedule"
)

// Option is a functional option for configuring a Solver.
type Option func(*solverConfig)

type solverConfig struct {
	workerCount int
	taskBuffer  int
	mode        Mode
	order       schedule.Order
	timeout     time.Duration
	rateLimiter *rate.Limiter
	pinWorkers  bool
	onSolved    func(Outcome)
	logger      *slog.Logger
}

// WithWorkerCount sets the number of concurrent workers.
// If not specified, defaults to runtime.GOMAXPROCS(0).
func WithWorkerCount(count int) Option {
	return func(cfg *solverConfig) {
		if count > 0 {
			cfg.workerCount = count
		}
	}
}

// WithTaskBuffer sets the buffer size of the instance channel.
// If not specified, defaults to the number of workers.
func WithTaskBuffer(size int) Option {
	return func(cfg *solverConfig) {
		if size >= 0 {
			cfg.taskBuffer = size
		}
	}
}

// WithMode selects which schedules are computed. Defaults to ModeCompare.
func WithMode(mode Mode) Option {
	return func(cfg *solverConfig) {
		switch mode {
		case ModeCompare, ModeHeuristic, ModeOptimal:
			cfg.mode = mode
		}
	}
}

// WithOrder sets the task order used by the heuristic (and therefore the
// seed of the optimal search).
func WithOrder(order schedule.Order) Option {
	return func(cfg *solverConfig) {
		cfg.order = order
	}
}

// WithTimeout bounds the optimal search of every single instance. When the
// bound expires the outcome carries the best schedule found so far with
// Proven set to false; it is not an error.
func WithTimeout(d time.Duration) Option {
	return func(cfg *solverConfig) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithRateLimit caps how many instances per second are started.
// burst is the number that may start back to back.
//
// Example:
//
//	WithRateLimit(10, 5) // 10 instances/sec with bursts of 5
func WithRateLimit(perSecond float64, burst int) Option {
	return func(cfg *solverConfig) {
		if perSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithCPUPinning locks every worker to an OS thread bound to its own core.
// Useful when a batch is dominated by a few long searches.
func WithCPUPinning(enabled bool) Option {
	return func(cfg *solverConfig) {
		cfg.pinWorkers = enabled
	}
}

// WithOnSolved registers a hook called after each instance, from the worker
// goroutine that solved it. The hook must be safe for concurrent use.
func WithOnSolved(fn func(Outcome)) Option {
	return func(cfg *solverConfig) {
		cfg.onSolved = fn
	}
}

// WithLogger sets the logger used for per-instance debug records and the
// batch summary. Defaults to a logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *solverConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

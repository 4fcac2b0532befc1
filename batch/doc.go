// Package batch solves many scheduling instances concurrently.
//
// Every instance is still solved by the single-threaded engine in package
// schedule; the Solver only spreads independent instances over a pool of
// workers.
//
// # Basic Usage
//
//	solver := batch.NewSolver(
//	    batch.WithWorkerCount(4),
//	    batch.WithTimeout(2*time.Second),
//	)
//	outcomes, err := solver.Solve(ctx, instances)
//	if err != nil {
//	    return err // cancelled, or a worker panicked
//	}
//	for _, o := range outcomes {
//	    if o.Err != nil {
//	        continue // invalid instance
//	    }
//	    fmt.Println(o.Name, o.Best.Makespan(), o.Proven)
//	}
//
// # Error Handling
//
// An invalid instance does not stop the batch; its Outcome carries the error.
// Cancelling ctx stops all workers and Solve returns the context error. A panic
// inside a worker is recovered, converted into an error with a stack trace and
// also stops the batch.
//
// # Throughput
//
// WithRateLimit paces how quickly instances are started, WithCPUPinning binds
// workers to cores, and WithOnSolved reports progress as instances finish.
package batch

// Package cpu binds batch workers to logical CPUs so that long optimal
// searches do not migrate between cores.
package cpu

import "runtime"

// NumCPU returns the number of logical CPUs available.
func NumCPU() int {
	return runtime.NumCPU()
}

// Core maps a worker ID onto a logical CPU index in [0, NumCPU()-1].
// Worker IDs wrap around when there are more workers than cores, and
// negative IDs map from the end.
func Core(workerID int) int {
	n := NumCPU()
	core := workerID % n
	if core < 0 {
		core += n
	}
	return core
}

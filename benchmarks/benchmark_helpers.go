package benchmarks

import (
	"math"
	"math/rand"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/utkarsh5026/makespan/batch"
	"github.com/utkarsh5026/makespan/instance"
)

// workload describes a family of random instances.
type workload struct {
	name       string
	tasks      int
	processors int
	minDur     int
	maxDur     int
}

// searchWorkloads are small enough for the exact search to finish quickly.
func searchWorkloads() []workload {
	return []workload{
		{name: "n8_m2", tasks: 8, processors: 2, minDur: 1, maxDur: 20},
		{name: "n10_m3", tasks: 10, processors: 3, minDur: 1, maxDur: 20},
		{name: "n12_m3", tasks: 12, processors: 3, minDur: 5, maxDur: 30},
		{name: "n14_m4", tasks: 14, processors: 4, minDur: 10, maxDur: 50},
	}
}

// heuristicWorkloads scale the greedy heuristic well past what search handles.
func heuristicWorkloads() []workload {
	return []workload{
		{name: "n100_m4", tasks: 100, processors: 4, minDur: 1, maxDur: 100},
		{name: "n1000_m16", tasks: 1000, processors: 16, minDur: 1, maxDur: 100},
		{name: "n10000_m64", tasks: 10000, processors: 64, minDur: 1, maxDur: 1000},
	}
}

// instances draws count instances of w from a fixed seed.
func (w workload) instances(count int) []instance.Instance {
	rng := rand.New(rand.NewSource(int64(w.tasks*1000 + w.processors)))
	out := make([]instance.Instance, count)
	for i := range out {
		out[i] = instance.Random(rng, w.name+"-"+strconv.Itoa(i), w.tasks, w.processors, w.minDur, w.maxDur)
	}
	return out
}

// reportBatchMetrics adds throughput and per-instance latency percentiles.
func reportBatchMetrics(b *testing.B, count int, outcomes []batch.Outcome) {
	b.Helper()

	nsPerOp := float64(b.Elapsed().Nanoseconds()) / float64(b.N)
	b.ReportMetric(float64(count)/nsPerOp*1e9, "instances/sec")

	latencies := make([]time.Duration, 0, len(outcomes))
	for _, o := range outcomes {
		latencies = append(latencies, o.Elapsed)
	}
	b.ReportMetric(float64(percentile(latencies, 0.50).Microseconds()), "p50-µs")
	b.ReportMetric(float64(percentile(latencies, 0.99).Microseconds()), "p99-µs")
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	// nearest rank: p=0.50 over 100 values picks index 49
	index := max(int(math.Round(p*float64(len(sorted)-1))), 0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

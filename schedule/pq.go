package schedule

import "container/heap"

// processorLoad is one entry of the load queue.
type processorLoad struct {
	id   int
	load int
}

// loadQueue is a min-heap of processors ordered by accumulated load, with ties
// broken by the lower processor index. Popping the head always yields the
// processor a greedy list scheduler should pick next.
//
// Performance characteristics:
//   - Least: O(1)
//   - Add: O(log m)
//   - Space: O(m)
type loadQueue struct {
	items []processorLoad
}

// newLoadQueue creates a queue holding m idle processors.
func newLoadQueue(m int) *loadQueue {
	q := &loadQueue{items: make([]processorLoad, m)}
	for p := range q.items {
		q.items[p] = processorLoad{id: p}
	}
	heap.Init(q)
	return q
}

func (q *loadQueue) Len() int { return len(q.items) }

func (q *loadQueue) Less(i, j int) bool {
	if q.items[i].load != q.items[j].load {
		return q.items[i].load < q.items[j].load
	}
	return q.items[i].id < q.items[j].id
}

func (q *loadQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}

// Push is part of heap.Interface; use heap.Push rather than calling it.
func (q *loadQueue) Push(x any) {
	item, ok := x.(processorLoad)
	if !ok {
		panic("loadQueue.Push: invalid type assertion")
	}
	q.items = append(q.items, item)
}

// Pop is part of heap.Interface; use heap.Pop rather than calling it.
func (q *loadQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	return item
}

// Least returns the least loaded processor without removing it.
func (q *loadQueue) Least() (id, load int) {
	head := q.items[0]
	return head.id, head.load
}

// Add charges duration to the least loaded processor and returns its index.
func (q *loadQueue) Add(duration int) int {
	q.items[0].load += duration
	id := q.items[0].id
	heap.Fix(q, 0)
	return id
}

// Package retry re-runs operations that fail with transient errors, waiting
// between attempts according to a Backoff.
package retry

import (
	"math/rand"
	"sync"
	"time"
)

// maxShift keeps 1<<attempt from overflowing.
const maxShift = 62

// Backoff computes the wait before a retry. Implementations are safe for
// concurrent use.
type Backoff interface {
	// NextDelay returns the wait before retry number attempt (0 = first retry).
	NextDelay(attempt int) time.Duration
	// Reset clears state kept between attempts.
	Reset()
}

// Kind selects a Backoff algorithm.
type Kind int

const (
	// Exponential doubles the delay on every attempt (default).
	Exponential Kind = iota
	// Jittered is Exponential with a random ±factor spread.
	Jittered
	// Decorrelated draws each delay from [initial, 3×previous].
	Decorrelated
)

// NewBackoff builds the Backoff of the given kind. jitter is only used by
// Jittered and is clamped to [0, 1].
func NewBackoff(kind Kind, initial, maxDelay time.Duration, jitter float64) Backoff {
	switch kind {
	case Jittered:
		return &jittered{
			initial: initial,
			max:     maxDelay,
			factor:  min(max(jitter, 0), 1),
			rng:     rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter only
		}
	case Decorrelated:
		return &decorrelated{
			initial: initial,
			max:     maxDelay,
			prev:    initial,
			rng:     rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter only
		}
	default:
		return exponential{initial: initial, max: maxDelay}
	}
}

type exponential struct {
	initial, max time.Duration
}

func (e exponential) NextDelay(attempt int) time.Duration {
	return exponentialDelay(attempt, e.initial, e.max)
}

func (exponential) Reset() {}

func exponentialDelay(attempt int, initial, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		return 0
	}
	if attempt >= maxShift {
		return maxDelay
	}

	delay := time.Duration(int64(1)<<uint(attempt)) * initial
	if delay > maxDelay || delay < 0 {
		return maxDelay
	}
	return delay
}

type jittered struct {
	initial, max time.Duration
	factor       float64

	mu  sync.Mutex
	rng *rand.Rand
}

func (j *jittered) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}
	base := exponentialDelay(attempt, j.initial, j.max)

	j.mu.Lock()
	spread := 1 + (j.rng.Float64()*2-1)*j.factor
	j.mu.Unlock()

	return min(max(time.Duration(float64(base)*spread), 0), j.max)
}

func (*jittered) Reset() {}

type decorrelated struct {
	initial, max time.Duration

	mu   sync.Mutex
	prev time.Duration
	rng  *rand.Rand
}

func (d *decorrelated) NextDelay(attempt int) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	if attempt == 0 {
		d.prev = d.initial
		return d.initial
	}

	upper := min(d.prev*3, d.max)
	span := upper - d.initial
	if span <= 0 {
		d.prev = d.initial
		return d.initial
	}

	d.prev = d.initial + time.Duration(d.rng.Int63n(int64(span)))
	return d.prev
}

func (d *decorrelated) Reset() {
	d.mu.Lock()
	d.prev = d.initial
	d.mu.Unlock()
}

package retry

import (
	"context"
	"time"
)

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	Attempts  int              // total tries, including the first; < 1 means 1
	Backoff   Backoff          // nil retries without waiting
	Retryable func(error) bool // nil retries every error
}

// Do calls fn until it succeeds, returns an error the policy does not retry,
// or the attempts run out. The last error is returned. Waiting between
// attempts stops early when ctx is done.
func Do(ctx context.Context, p Policy, fn func() error) error {
	attempts := max(p.Attempts, 1)
	if p.Backoff != nil {
		p.Backoff.Reset()
	}

	var err error
	for attempt := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff.NextDelay(attempt)
		}
		if delay <= 0 {
			if ctx.Err() != nil {
				return err
			}
			continue
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}

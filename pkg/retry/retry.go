// Package retry provides a reusable exponential backoff loop, modeled as an
// explicit state machine so callers can observe where a retried operation
// currently stands.
package retry

import (
	"context"
	"fmt"
	"time"
)

// State describes where the retrier is in its lifecycle
type State int

const (
	// StateIdle means Do has not been called yet
	StateIdle State = iota
	// StateAttempting means the operation is currently being executed
	StateAttempting
	// StateBackingOff means the last attempt failed and the retrier is waiting
	StateBackingOff
	// StateSucceeded means an attempt completed without error
	StateSucceeded
	// StateExhausted means the attempt ceiling was reached without success
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttempting:
		return "attempting"
	case StateBackingOff:
		return "backing-off"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Config parameterizes the backoff schedule
type Config struct {
	// MaxAttempts is the attempt ceiling; the operation runs at most this many times
	MaxAttempts int
	// BaseDelay is the wait after the first failed attempt
	BaseDelay time.Duration
	// Multiplier grows the delay after each failed attempt
	Multiplier float64
	// MaxDelay caps the grown delay
	MaxDelay time.Duration
}

// Retrier runs an operation under the configured backoff schedule.
// A Retrier is single-use per Do call; it is not safe for concurrent use.
type Retrier struct {
	cfg     Config
	state   State
	attempt int

	// sleep is swapped out by tests
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Retrier with the given configuration
func New(cfg Config) *Retrier {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2
	}
	return &Retrier{
		cfg:   cfg,
		state: StateIdle,
		sleep: sleepCtx,
	}
}

// State returns the current state of the retrier
func (r *Retrier) State() State {
	return r.state
}

// Attempt returns the number of attempts made so far
func (r *Retrier) Attempt() int {
	return r.attempt
}

// Do executes op until it succeeds, the attempt ceiling is exhausted, or the
// context is cancelled. The returned error is the last attempt's error when
// the ceiling is exhausted.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for r.attempt = 1; r.attempt <= r.cfg.MaxAttempts; r.attempt++ {
		r.state = StateAttempting
		lastErr = op(ctx)
		if lastErr == nil {
			r.state = StateSucceeded
			return nil
		}

		if r.attempt == r.cfg.MaxAttempts {
			break
		}

		r.state = StateBackingOff
		if err := r.sleep(ctx, r.DelayFor(r.attempt)); err != nil {
			r.state = StateExhausted
			return fmt.Errorf("retry cancelled after attempt %d: %w", r.attempt, err)
		}
	}

	r.state = StateExhausted
	return fmt.Errorf("exhausted %d attempts: %w", r.cfg.MaxAttempts, lastErr)
}

// DelayFor returns the backoff delay that follows the given attempt number
// (1-based): BaseDelay * Multiplier^(attempt-1), capped at MaxDelay.
func (r *Retrier) DelayFor(attempt int) time.Duration {
	delay := r.cfg.BaseDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * r.cfg.Multiplier)
		if r.cfg.MaxDelay > 0 && delay >= r.cfg.MaxDelay {
			return r.cfg.MaxDelay
		}
	}
	if r.cfg.MaxDelay > 0 && delay > r.cfg.MaxDelay {
		return r.cfg.MaxDelay
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

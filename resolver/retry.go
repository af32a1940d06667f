package resolver

import (
	"context"
	"fmt"
	"time"
)

// Action is the retry policy's verdict after a probe.
type Action int

const (
	// ActionSucceed stops with a resolved outcome.
	ActionSucceed Action = iota
	// ActionFail stops with a permanent failure for this run.
	ActionFail
	// ActionRetry probes again after Decision.Delay.
	ActionRetry
)

// Decision is returned by RetryPolicy.Decide.
type Decision struct {
	Action    Action
	Delay     time.Duration // Only set for ActionRetry
	Exhausted bool          // ActionFail caused by the attempt ceiling
}

// Named retry profiles.
const (
	ProfileFull = "full"
	ProfileFast = "fast"
)

// RetryPolicy configures the linear backoff schedule between probe attempts.
// The delay after attempt n (1-based) is BaseDelay + Step*n, capped at
// MaxDelay when MaxDelay is positive.
type RetryPolicy struct {
	MaxAttempts int           // Total probes allowed per URL, including the first
	BaseDelay   time.Duration // Fixed part of every delay
	Step        time.Duration // Added once per attempt already made
	MaxDelay    time.Duration // Optional cap; 0 means uncapped
}

// DefaultRetryPolicy returns the full profile: 15 attempts, 2750ms base
// delay plus 250ms per attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 15,
		BaseDelay:   2750 * time.Millisecond,
		Step:        250 * time.Millisecond,
	}
}

// FastRetryPolicy returns the lightweight profile: 2 attempts, 250ms per
// attempt with no base delay.
func FastRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		Step:        250 * time.Millisecond,
	}
}

// PolicyForProfile returns the policy for a named profile.
func PolicyForProfile(name string) (RetryPolicy, error) {
	switch name {
	case "", ProfileFull:
		return DefaultRetryPolicy(), nil
	case ProfileFast:
		return FastRetryPolicy(), nil
	default:
		return RetryPolicy{}, fmt.Errorf("unknown retry profile %q (want %q or %q)", name, ProfileFull, ProfileFast)
	}
}

// Validate reports whether the policy can be applied.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay < 0 || p.Step < 0 || p.MaxDelay < 0 {
		return fmt.Errorf("retry delays cannot be negative")
	}
	return nil
}

// Delay returns the wait after the given attempt number (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	d := p.BaseDelay + time.Duration(attempt)*p.Step
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Decide maps a probe outcome and the number of attempts made so far to
// the next step. Permanent failures stop regardless of attempts left.
func (p RetryPolicy) Decide(res ProbeResult, attempt int) Decision {
	switch res.Kind {
	case ProbeOK:
		return Decision{Action: ActionSucceed}
	case ProbeNotFound, ProbeDisallowed:
		return Decision{Action: ActionFail}
	}

	if attempt >= p.MaxAttempts {
		return Decision{Action: ActionFail, Exhausted: true}
	}
	return Decision{Action: ActionRetry, Delay: p.Delay(attempt)}
}

// SleepFunc suspends the caller for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits on a timer and returns ctx.Err() if ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoSleep returns immediately. Used in tests to skip real backoff.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

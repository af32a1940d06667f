package resolver

import (
	"context"
	"math"
	"sync"

	"golang.org/x/time/rate"
)

const (
	// minRateFloor is the slowest the throttle will go, in requests per second.
	minRateFloor = 0.5

	// recoveryFactor is the multiplier applied after each successful probe.
	recoveryFactor = 1.1

	// backoffFactor is the multiplier applied when the host pushes back
	// (429 or 5xx).
	backoffFactor = 0.5
)

// Throttle paces probes against the remote host. It starts at the
// configured rate, halves on rate-limit or server errors, and recovers
// gradually on success, never exceeding the configured rate.
// A nil *Throttle does not limit.
type Throttle struct {
	limiter     *rate.Limiter
	mu          sync.Mutex
	ceiling     float64
	currentRate float64
}

// NewThrottle creates a throttle allowing rps requests per second.
// It returns nil when rps is not positive.
func NewThrottle(rps float64) *Throttle {
	if rps <= 0 {
		return nil
	}
	burst := max(1, int(math.Ceil(rps)))
	return &Throttle{
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		ceiling:     rps,
		currentRate: rps,
	}
}

// Wait blocks until the next probe may start or ctx is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}

// Observe adjusts the rate after a probe.
func (t *Throttle) Observe(res ProbeResult) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	newRate := t.currentRate
	switch {
	case res.StatusCode == 429 || res.StatusCode >= 500:
		newRate = math.Max(t.currentRate*backoffFactor, math.Min(minRateFloor, t.ceiling))
	case res.Kind == ProbeOK:
		newRate = math.Min(t.currentRate*recoveryFactor, t.ceiling)
	}

	if math.Abs(newRate-t.currentRate) > 0.01 {
		t.currentRate = newRate
		t.limiter.SetLimit(rate.Limit(newRate))
	}
}

// CurrentRate returns the current rate in requests per second.
func (t *Throttle) CurrentRate() float64 {
	if t == nil {
		return math.Inf(1)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentRate
}

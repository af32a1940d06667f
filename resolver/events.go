package resolver

import "time"

// EventKind identifies an advisory resolver event.
type EventKind int

const (
	EventAttempt EventKind = iota
	EventRetry
	EventCacheHit
	EventResolved
	EventFailed
)

// String returns a short label for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventAttempt:
		return "attempt"
	case EventRetry:
		return "retry"
	case EventCacheHit:
		return "cache_hit"
	case EventResolved:
		return "resolved"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event reports resolver progress for a single URL.
type Event struct {
	Kind         EventKind
	URL          string
	Attempt      int
	StatusCode   int
	Delay        time.Duration
	CanonicalURL string
	Error        string
}

// emit sends evt without blocking. Events are dropped when nobody is
// reading fast enough.
func emit(ch chan<- Event, evt Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- evt:
	default:
	}
}

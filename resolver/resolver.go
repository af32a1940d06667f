// Package resolver turns candidate URLs into resolution outcomes. It drives
// a single-attempt Prober under a RetryPolicy, paces requests with a
// Throttle, and memoizes terminal outcomes in a LinkCache for the rest of
// the run.
package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/lukemcguire/reflink/result"
	"github.com/lukemcguire/reflink/urlutil"
)

// OutcomeKind tags a resolution outcome.
type OutcomeKind int

const (
	// Resolved means the URL exists; CanonicalURL is set.
	Resolved OutcomeKind = iota
	// NotFound means the URL answered 404 (or robots.txt forbade it).
	NotFound
	// TransientlyFailed means the retry ceiling was reached.
	TransientlyFailed
)

// String returns the report label for the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case Resolved:
		return result.OutcomeResolved
	case NotFound:
		return result.OutcomeNotFound
	case TransientlyFailed:
		return result.OutcomeTransientlyFailed
	default:
		return "unknown"
	}
}

// Outcome is the terminal classification of a candidate URL.
type Outcome struct {
	Kind         OutcomeKind
	CanonicalURL string
	StatusCode   int
	Category     result.ErrorCategory
	Attempts     int  // Probes issued by this call; 0 on a cache hit
	Cached       bool // Served from the LinkCache
}

// OK reports whether the URL resolved.
func (o Outcome) OK() bool {
	return o.Kind == Resolved
}

// Config wires a Resolver's collaborators. Zero values get defaults.
type Config struct {
	Policy   RetryPolicy  // Default: DefaultRetryPolicy()
	Sleep    SleepFunc    // Default: Sleep
	Cache    *LinkCache   // Default: a fresh cache
	Throttle *Throttle    // Optional
	Metrics  *Metrics     // Optional
	Logger   *slog.Logger // Default: discard
	Events   chan<- Event // Optional, written without blocking
}

// Resolver resolves candidate URLs. It is safe for concurrent use;
// concurrent calls for the same URL share one probe sequence.
type Resolver struct {
	prober Prober
	cfg    Config
	group  singleflight.Group
}

// New creates a Resolver around prober.
func New(prober Prober, cfg Config) *Resolver {
	if cfg.Policy.MaxAttempts <= 0 {
		cfg.Policy = DefaultRetryPolicy()
	}
	if cfg.Sleep == nil {
		cfg.Sleep = Sleep
	}
	if cfg.Cache == nil {
		cfg.Cache = NewLinkCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{prober: prober, cfg: cfg}
}

// Cache returns the resolver's cache.
func (r *Resolver) Cache() *LinkCache {
	return r.cfg.Cache
}

// Resolve returns the outcome for rawURL. A cached outcome is returned
// without network I/O. The error is non-nil only when ctx ends before a
// terminal outcome is reached; such runs are never cached.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (Outcome, error) {
	if entry, ok := r.cfg.Cache.Lookup(rawURL); ok {
		return r.cacheHit(rawURL, entry), nil
	}

	v, err, _ := r.group.Do(rawURL, func() (any, error) {
		// Another caller may have finished while this one waited.
		if entry, ok := r.cfg.Cache.peek(rawURL); ok {
			return r.cacheHit(rawURL, entry), nil
		}
		return r.resolve(ctx, rawURL)
	})
	if err != nil {
		return Outcome{}, err
	}
	return v.(Outcome), nil
}

func (r *Resolver) cacheHit(rawURL string, entry CacheEntry) Outcome {
	r.cfg.Metrics.observeCacheHit()
	emit(r.cfg.Events, Event{Kind: EventCacheHit, URL: rawURL, CanonicalURL: entry.CanonicalURL})
	r.cfg.Logger.Debug("cache hit", "url", rawURL, "valid", entry.Valid)
	return Outcome{
		Kind:         entry.Kind,
		CanonicalURL: entry.CanonicalURL,
		StatusCode:   entry.StatusCode,
		Cached:       true,
	}
}

// resolve runs the probe loop: probe, decide, sleep, repeat.
func (r *Resolver) resolve(ctx context.Context, rawURL string) (Outcome, error) {
	log := r.cfg.Logger.With("url", rawURL)

	for attempt := 1; ; attempt++ {
		if err := r.cfg.Throttle.Wait(ctx); err != nil {
			return Outcome{}, fmt.Errorf("wait for throttle: %w", err)
		}

		emit(r.cfg.Events, Event{Kind: EventAttempt, URL: rawURL, Attempt: attempt})
		res := r.prober.Probe(ctx, rawURL)
		if ctx.Err() != nil {
			return Outcome{}, fmt.Errorf("probe %s: %w", rawURL, ctx.Err())
		}
		r.cfg.Throttle.Observe(res)
		r.cfg.Metrics.observeProbe(res.Kind)

		decision := r.cfg.Policy.Decide(res, attempt)
		switch decision.Action {
		case ActionSucceed:
			return r.succeed(log, rawURL, res, attempt), nil

		case ActionFail:
			return r.fail(log, rawURL, res, attempt, decision.Exhausted), nil

		case ActionRetry:
			r.cfg.Metrics.observeRetry()
			emit(r.cfg.Events, Event{
				Kind:       EventRetry,
				URL:        rawURL,
				Attempt:    attempt,
				StatusCode: res.StatusCode,
				Delay:      decision.Delay,
				Error:      errString(res.Err),
			})
			log.Info("retrying reference",
				"attempt", attempt,
				"status", res.StatusCode,
				"category", res.Category,
				"delay", decision.Delay,
			)
			if err := r.cfg.Sleep(ctx, decision.Delay); err != nil {
				return Outcome{}, fmt.Errorf("backoff for %s: %w", rawURL, err)
			}
		}
	}
}

func (r *Resolver) succeed(log *slog.Logger, rawURL string, res ProbeResult, attempts int) Outcome {
	canonical := res.FinalURL
	if normalized, err := urlutil.Normalize(canonical); err == nil {
		canonical = normalized
	}
	if canonical == "" {
		canonical = rawURL
	}
	if host := urlutil.Hostname(rawURL); !urlutil.IsSameDomain(canonical, host) {
		log.Warn("reference redirected off host", "canonical", canonical)
	}

	r.cfg.Cache.Record(rawURL, CacheEntry{Valid: true, CanonicalURL: canonical, Kind: Resolved, StatusCode: res.StatusCode})
	r.cfg.Metrics.observeOutcome(Resolved)
	emit(r.cfg.Events, Event{Kind: EventResolved, URL: rawURL, Attempt: attempts, StatusCode: res.StatusCode, CanonicalURL: canonical})
	log.Debug("reference resolved", "attempts", attempts, "canonical", canonical)

	return Outcome{Kind: Resolved, CanonicalURL: canonical, StatusCode: res.StatusCode, Attempts: attempts}
}

func (r *Resolver) fail(log *slog.Logger, rawURL string, res ProbeResult, attempts int, exhausted bool) Outcome {
	kind := NotFound
	if exhausted {
		kind = TransientlyFailed
	}

	r.cfg.Cache.Record(rawURL, CacheEntry{Valid: false, Kind: kind, StatusCode: res.StatusCode})
	r.cfg.Metrics.observeOutcome(kind)
	emit(r.cfg.Events, Event{Kind: EventFailed, URL: rawURL, Attempt: attempts, StatusCode: res.StatusCode, Error: errString(res.Err)})
	log.Debug("reference failed", "attempts", attempts, "status", res.StatusCode, "outcome", kind, "exhausted", exhausted)

	return Outcome{Kind: kind, StatusCode: res.StatusCode, Category: res.Category, Attempts: attempts}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lukemcguire/reflink/result"
)

// ErrDisallowed is reported when robots.txt forbids probing a URL.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// maxRedirects caps the redirect chain followed by a probe.
const maxRedirects = 10

// ProbeKind classifies a single probe attempt.
type ProbeKind int

const (
	// ProbeOK means the URL answered 2xx, possibly after redirects.
	ProbeOK ProbeKind = iota
	// ProbeNotFound means the URL answered 404. Never retried.
	ProbeNotFound
	// ProbeTransient covers every other status and all network errors.
	ProbeTransient
	// ProbeDisallowed means robots.txt forbids the URL. Never retried.
	ProbeDisallowed
)

// String returns a short lowercase label for logs and metrics.
func (k ProbeKind) String() string {
	switch k {
	case ProbeOK:
		return "ok"
	case ProbeNotFound:
		return "not_found"
	case ProbeTransient:
		return "transient"
	case ProbeDisallowed:
		return "disallowed"
	default:
		return "unknown"
	}
}

// ProbeResult is the normalized outcome of one existence check.
type ProbeResult struct {
	Kind       ProbeKind
	StatusCode int                  // 0 when no response was received
	FinalURL   string               // URL after redirects (ProbeOK only)
	Category   result.ErrorCategory // Failure classification, empty on success
	Err        error                // Transport error, if any
}

// Prober performs a single existence check against a URL.
// Implementations must not retry.
type Prober interface {
	Probe(ctx context.Context, rawURL string) ProbeResult
}

// HTTPConfig configures an HTTPProber.
type HTTPConfig struct {
	RequestTimeout time.Duration  // Per-request timeout (default 10s)
	UserAgent      string         // User-Agent header
	Robots         *RobotsChecker // Optional robots.txt gate; nil disables it
}

// HTTPProber checks URLs with a single GET request.
type HTTPProber struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPProber creates an HTTPProber. A nil client gets a default client
// that follows up to ten redirects.
func NewHTTPProber(cfg HTTPConfig, client *http.Client) *HTTPProber {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
	}
	return &HTTPProber{cfg: cfg, client: client}
}

// DefaultUserAgent identifies reflink to remote hosts.
const DefaultUserAgent = "reflink/1.0 (+https://github.com/lukemcguire/reflink)"

// Probe issues one GET against rawURL and classifies the response.
// Success is judged by status code only; the body is discarded.
func (p *HTTPProber) Probe(ctx context.Context, rawURL string) (res ProbeResult) {
	if p.cfg.Robots != nil {
		allowed, _ := p.cfg.Robots.Allowed(ctx, rawURL, p.cfg.UserAgent)
		if !allowed {
			return ProbeResult{Kind: ProbeDisallowed, Err: ErrDisallowed, Category: result.CategoryUnknown}
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		// A malformed candidate URL will never become valid.
		return ProbeResult{Kind: ProbeNotFound, Err: fmt.Errorf("create request: %w", err), Category: result.CategoryUnknown}
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return ProbeResult{Kind: ProbeTransient, Err: err, Category: result.ClassifyError(err, 0)}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	res.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		res.Kind = ProbeOK
		res.FinalURL = resp.Request.URL.String()
	case resp.StatusCode == http.StatusNotFound:
		res.Kind = ProbeNotFound
		res.Category = result.Category4xx
	default:
		res.Kind = ProbeTransient
		res.Category = result.ClassifyError(nil, resp.StatusCode)
	}
	return res
}

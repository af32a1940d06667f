package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker fetches robots.txt once per host and answers whether a URL
// may be probed. Fetch and parse failures allow everything.
type RobotsChecker struct {
	client *http.Client
	mu     sync.Mutex
	hosts  map[string]*robotstxt.RobotsData // nil value means allow-all
}

// NewRobotsChecker creates a RobotsChecker. A nil client gets a 5s timeout client.
func NewRobotsChecker(client *http.Client) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &RobotsChecker{
		client: client,
		hosts:  make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether userAgent may fetch rawURL. The returned error is
// advisory: on error the URL is always allowed.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL, userAgent string) (bool, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return true, fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Host == "" {
		return true, nil
	}

	r.mu.Lock()
	data, cached := r.hosts[parsedURL.Host]
	r.mu.Unlock()

	if !cached {
		data, err = r.fetch(ctx, parsedURL)
		r.mu.Lock()
		r.hosts[parsedURL.Host] = data
		r.mu.Unlock()
	}

	if data == nil {
		return true, err
	}
	return data.TestAgent(parsedURL.Path, userAgent), nil
}

func (r *RobotsChecker) fetch(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", target.Scheme, target.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create robots.txt request for host %s: %w", target.Host, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt for host %s: %w", target.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode >= 500 {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt body for host %s: %w", target.Host, err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt for host %s: %w", target.Host, err)
	}
	return data, nil
}

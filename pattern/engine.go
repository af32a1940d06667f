// Package pattern finds textual references in a document, resolves their
// candidate URLs, and rewrites the resolved ones into markdown links. Each
// reference family runs as its own pass over the output of the previous
// pass; finding candidates and applying edits are separate steps.
package pattern

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lukemcguire/reflink/resolver"
	"github.com/lukemcguire/reflink/result"
	"github.com/lukemcguire/reflink/urlutil"
)

// DefaultHost is the forge host used when none is configured.
const DefaultHost = "https://github.com"

// Resolver resolves a candidate URL. *resolver.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, url string) (resolver.Outcome, error)
}

// Options configures an Engine.
type Options struct {
	Host            string       // Forge host base URL; default DefaultHost
	Repo            string       // "owner/name"; empty disables issue and commit passes
	Families        []Family     // Families to rewrite; empty means DefaultFamilies
	Boundary        Boundary     // Issue boundary rule; default BoundaryStrict
	CommitHeuristic bool         // Skip short commit tokens lacking a digit or a letter
	ProtectMarkdown bool         // Skip code, raw HTML, existing links and bare URLs
	Concurrency     int          // Parallel resolutions per pass; <= 1 is sequential
	Logger          *slog.Logger // Default: discard
}

// Engine rewrites references in documents. It holds no per-document state and
// may be reused; outcomes are shared through the Resolver's cache.
type Engine struct {
	resolver    Resolver
	target      Target
	repo        urlutil.Repo
	patterns    []*Pattern
	protect     bool
	concurrency int
	logger      *slog.Logger
}

// New validates opts and builds an Engine. Invalid settings are reported as
// *ConfigError.
func New(res Resolver, opts Options) (*Engine, error) {
	rawHost := opts.Host
	if rawHost == "" {
		rawHost = DefaultHost
	}
	host, err := urlutil.NormalizeHost(rawHost)
	if err != nil {
		return nil, &ConfigError{Field: "host", Value: rawHost, Reason: err.Error(), Err: err}
	}

	var repo urlutil.Repo
	if strings.TrimSpace(opts.Repo) != "" {
		repo, err = urlutil.ParseRepo(opts.Repo)
		if err != nil {
			return nil, &ConfigError{Field: "repo", Value: opts.Repo, Reason: urlutil.ErrInvalidRepo.Error(), Err: err}
		}
	}

	patterns, err := NewPatterns(MatchOptions{
		Boundary:        opts.Boundary,
		Families:        opts.Families,
		CommitHeuristic: opts.CommitHeuristic,
	})
	if err != nil {
		return nil, &ConfigError{Field: "patterns", Value: string(opts.Boundary), Reason: err.Error(), Err: err}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	target := Target{Host: host}
	if !repo.IsZero() {
		target.RepoBase = urlutil.RepoBaseURL(host, repo)
	}

	return &Engine{
		resolver:    res,
		target:      target,
		repo:        repo,
		patterns:    patterns,
		protect:     opts.ProtectMarkdown,
		concurrency: opts.Concurrency,
		logger:      logger,
	}, nil
}

// Target returns the URL bases candidates are derived from.
func (e *Engine) Target() Target {
	return e.target
}

// ValidateRepo checks that the configured repository base URL resolves.
// It is a no-op without a repository.
func (e *Engine) ValidateRepo(ctx context.Context) error {
	if e.repo.IsZero() {
		return nil
	}
	out, err := e.resolver.Resolve(ctx, e.target.RepoBase)
	if err != nil {
		return fmt.Errorf("validate repo %s: %w", e.repo, err)
	}
	if !out.OK() {
		reason := fmt.Sprintf("%s is %s", e.target.RepoBase, strings.ReplaceAll(out.Kind.String(), "_", " "))
		if out.StatusCode != 0 {
			reason += fmt.Sprintf(" (status %d)", out.StatusCode)
		} else if out.Category != "" {
			reason += fmt.Sprintf(" (%s)", out.Category)
		}
		return &ConfigError{Field: "repo", Value: e.repo.String(), Reason: reason}
	}
	e.logger.Debug("repository validated", "repo", e.repo.String(), "url", out.CanonicalURL)
	return nil
}

// Rewrite runs every pass over doc and returns the rewritten text with a
// report of each matched reference. Unresolved references are left as they
// were. Only context cancellation returns an error, in which case the
// partial result is discarded.
func (e *Engine) Rewrite(ctx context.Context, doc string) (string, *result.Report, error) {
	start := time.Now()
	report := &result.Report{}

	text := doc
	for _, p := range e.patterns {
		if p.NeedsRepo() && e.repo.IsZero() {
			e.logger.Debug("skipping pass without repository", "family", string(p.Family()))
			continue
		}
		next, err := e.pass(ctx, p, text, report)
		if err != nil {
			return "", nil, fmt.Errorf("%s pass: %w", p.Family(), err)
		}
		text = next
	}

	report.Stats.Duration = time.Since(start)
	return text, report, nil
}

func (e *Engine) pass(ctx context.Context, p *Pattern, text string, report *result.Report) (string, error) {
	var protected []Range
	if e.protect {
		// The issue-url pass rewrites bare URLs, so only it may match inside them.
		protected = ProtectedRanges([]byte(text), p.Family() != FamilyIssueURL)
	}

	candidates := p.Find(text, e.target, protected)
	if len(candidates) == 0 {
		return text, nil
	}

	outcomes, err := e.resolveAll(ctx, candidates)
	if err != nil {
		return "", err
	}

	lines := newLineIndex(text)
	edits := make([]Edit, 0, len(candidates))
	for i, c := range candidates {
		out := outcomes[i]
		ref := result.Reference{
			Line:          lines.lineOf(c.Start),
			Family:        string(c.Family),
			Text:          c.Text,
			URL:           c.URL,
			Outcome:       out.Kind.String(),
			StatusCode:    out.StatusCode,
			ErrorCategory: out.Category,
			Attempts:      out.Attempts,
			Cached:        out.Cached,
		}
		if out.OK() {
			ref.CanonicalURL = out.CanonicalURL
			edits = append(edits, Edit{Start: c.Start, End: c.End, Replacement: c.Replacement(out.CanonicalURL)})
		} else {
			e.logger.Warn("reference not resolved",
				"family", string(c.Family),
				"text", c.Text,
				"url", c.URL,
				"line", ref.Line,
				"outcome", ref.Outcome,
				"status", out.StatusCode,
			)
		}
		report.Add(ref)
	}

	return ApplyEdits(text, edits)
}

// resolveAll returns one outcome per candidate, in candidate order.
func (e *Engine) resolveAll(ctx context.Context, candidates []Candidate) ([]resolver.Outcome, error) {
	outcomes := make([]resolver.Outcome, len(candidates))
	if e.concurrency <= 1 {
		for i, c := range candidates {
			out, err := e.resolver.Resolve(ctx, c.URL)
			if err != nil {
				return nil, err
			}
			outcomes[i] = out
		}
		return outcomes, nil
	}

	// Resolve the first occurrence of each URL in parallel, then replay the
	// repeats in order so they report as cache hits just like a sequential run.
	first := make(map[string]int, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, c := range candidates {
		if _, seen := first[c.URL]; seen {
			continue
		}
		first[c.URL] = i
		g.Go(func() error {
			out, err := e.resolver.Resolve(gctx, c.URL)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, c := range candidates {
		if first[c.URL] == i {
			continue
		}
		out, err := e.resolver.Resolve(ctx, c.URL)
		if err != nil {
			return nil, err
		}
		outcomes[i] = out
	}
	return outcomes, nil
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(text string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (idx lineIndex) lineOf(offset int) int {
	lo, hi := 0, len(idx)
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if idx[mid] <= offset {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo + 1
}

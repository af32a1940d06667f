package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lukemcguire/reflink/config"
	"github.com/lukemcguire/reflink/pattern"
	"github.com/lukemcguire/reflink/resolver"
	"github.com/lukemcguire/reflink/result"
	"github.com/lukemcguire/reflink/tui"
)

// eventBuffer bounds the progress channel; the resolver drops events
// rather than block when it is full.
const eventBuffer = 256

// runRewrite validates the repository, rewrites path and writes the
// document, report and metrics. The document is written once, after every
// pass has finished.
func runRewrite(ctx context.Context, cfg *config.Configuration, path string, streams Streams) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	logOut := streams.Err
	if cfg.TUI {
		logOut = io.Discard
	}
	logger := newLogger(logOut, cfg.LogLevel, cfg.LogFormat).With("run_id", uuid.NewString())
	if cfg.Source != "" {
		logger.Debug("loaded config", "path", cfg.Source)
	}

	registry := prometheus.NewRegistry()
	var events chan resolver.Event
	if cfg.TUI {
		events = make(chan resolver.Event, eventBuffer)
	}

	engine, res, err := newEngine(cfg, logger, resolver.NewMetrics(registry), events)
	if err != nil {
		return err
	}

	if err := engine.ValidateRepo(ctx); err != nil {
		return err
	}

	input, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var (
		output string
		report *result.Report
	)
	if cfg.TUI {
		output, report, err = rewriteWithTUI(ctx, engine, string(input), events)
	} else {
		output, report, err = engine.Rewrite(ctx, string(input))
	}
	if err != nil {
		return err
	}

	if err := writeDocument(cfg, path, string(input), output, streams.Out, logger); err != nil {
		return err
	}
	if cfg.Report != "" {
		if err := writeReport(cfg.Report, cfg.ReportFormat, report); err != nil {
			return err
		}
		logger.Info("report written", "path", cfg.Report, "format", cfg.ReportFormat)
	}
	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if !cfg.TUI {
		result.PrintSummary(streams.Err, report)
	}
	hits, misses := res.Cache().Stats()
	logger.Info("run complete",
		"found", report.Stats.Found,
		"rewritten", report.Stats.Rewritten,
		"unresolved", report.Stats.Unresolved,
		"probes", report.Stats.Probes,
		"cached_urls", res.Cache().Len(),
		"cache_hits", hits,
		"cache_misses", misses,
		"duration", report.Stats.Duration,
	)
	return nil
}

// newEngine wires the prober, resolver and pattern engine from cfg.
func newEngine(cfg *config.Configuration, logger *slog.Logger, metrics *resolver.Metrics, events chan resolver.Event) (*pattern.Engine, *resolver.Resolver, error) {
	httpCfg := resolver.HTTPConfig{
		RequestTimeout: cfg.RequestTimeout,
		UserAgent:      cfg.UserAgent,
	}
	if cfg.RespectRobots {
		httpCfg.Robots = resolver.NewRobotsChecker(nil)
	}

	res := resolver.New(resolver.NewHTTPProber(httpCfg, nil), resolver.Config{
		Policy:   cfg.Policy,
		Throttle: resolver.NewThrottle(cfg.RateLimit),
		Metrics:  metrics,
		Logger:   logger,
		Events:   events,
	})

	families, err := pattern.ParseFamilies(cfg.FamilyNames())
	if err != nil {
		return nil, nil, &pattern.ConfigError{Field: "families", Value: cfg.Families, Reason: err.Error(), Err: err}
	}

	engine, err := pattern.New(res, pattern.Options{
		Host:            cfg.Host,
		Repo:            cfg.Repo,
		Families:        families,
		Boundary:        pattern.Boundary(cfg.IssueBoundary),
		CommitHeuristic: cfg.CommitHeuristic,
		ProtectMarkdown: cfg.ProtectMarkdown,
		Concurrency:     cfg.Concurrency,
		Logger:          logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return engine, res, nil
}

// rewriteWithTUI runs the rewrite under the progress view and returns its
// result once the view exits.
func rewriteWithTUI(ctx context.Context, engine *pattern.Engine, input string, events chan resolver.Event) (string, *result.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var output string
	run := func(ctx context.Context) (*result.Report, error) {
		defer close(events)
		text, report, err := engine.Rewrite(ctx, input)
		output = text
		return report, err
	}

	final, err := tea.NewProgram(tui.NewModel(ctx, cancel, run, events), tea.WithContext(ctx)).Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		return "", nil, fmt.Errorf("progress view: %w", err)
	}
	model := final.(tui.Model)
	if err := model.Err(); err != nil {
		return "", nil, err
	}
	return output, model.Report(), nil
}

// Package pipeline sequences a generation run: fetch the entity classes, render
// one page per entity from the shell, then write the sitemap and verify the tree.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/seogen/internal/config"
	"git.home.luguber.info/inful/seogen/internal/eventstore"
	"git.home.luguber.info/inful/seogen/internal/logfields"
	"git.home.luguber.info/inful/seogen/internal/meta"
	"git.home.luguber.info/inful/seogen/internal/metrics"
	"git.home.luguber.info/inful/seogen/internal/notify"
	"git.home.luguber.info/inful/seogen/internal/output"
	"git.home.luguber.info/inful/seogen/internal/retry"
	"git.home.luguber.info/inful/seogen/internal/shell"
	"git.home.luguber.info/inful/seogen/internal/source"
)

// Generator owns the collaborators of a run. It is safe to call Run repeatedly;
// each call starts from a fresh state.
type Generator struct {
	cfg       *config.Config
	source    source.Client
	writer    output.Writer
	recorder  metrics.Recorder
	history   eventstore.Store
	notifiers []notify.Notifier
	logger    *slog.Logger
	now       func() time.Time
	newRunID  func() string
}

// Option configures a Generator.
type Option func(*Generator)

func WithSource(c source.Client) Option      { return func(g *Generator) { g.source = c } }
func WithWriter(w output.Writer) Option      { return func(g *Generator) { g.writer = w } }
func WithRecorder(r metrics.Recorder) Option { return func(g *Generator) { g.recorder = r } }
func WithHistory(s eventstore.Store) Option  { return func(g *Generator) { g.history = s } }
func WithLogger(l *slog.Logger) Option       { return func(g *Generator) { g.logger = l } }
func WithClock(now func() time.Time) Option  { return func(g *Generator) { g.now = now } }
func WithRunIDFunc(fn func() string) Option  { return func(g *Generator) { g.newRunID = fn } }
func WithNotifiers(ns ...notify.Notifier) Option {
	return func(g *Generator) { g.notifiers = append(g.notifiers, ns...) }
}

// New builds a Generator for cfg. Without WithSource the HTTP fetchers are
// configured from cfg.Sources; without WithWriter pages go to cfg.Output.Dir.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.source == nil {
		g.source = source.NewHTTPClient(cfg.Sources.CitiesURL, cfg.Sources.ProductsURL,
			source.WithTimeout(cfg.Sources.Timeout.Duration()),
			source.WithRetryPolicy(retry.FromConfig(cfg.Sources.Retry)),
			source.WithLogger(g.logger),
		)
	}
	if g.writer == nil {
		g.writer = output.NewFSWriter(cfg.Output.Dir, cfg.Output.Atomic, cfg.Output.SkipUnchanged)
	}
	return g
}

// stages returns the ordered stage list for the current configuration.
func (g *Generator) stages() []StageDef {
	return NewPipeline().
		Add(StageInit, stageInit).
		Add(StageCities, stageCities).
		Add(StageProducts, stageProducts).
		Add(StageStatic, stageStatic).
		AddIf(g.cfg.Sitemap.Enabled || g.cfg.Robots.Enabled, StageSitemap, stageSitemap).
		Add(StageVerify, stageVerify).
		Build()
}

// Run executes one generation run. The report is always returned; the error is
// non-nil only when a stage aborted the run (malformed shell, invalid
// configuration, cancellation). Source outages and per-entity failures are
// recorded in the report instead.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	rs := newRunState(g)
	g.recorder.SetConcurrency(rs.concurrency())
	g.logger.Info("Generation started",
		logfields.RunID(rs.report.RunID),
		logfields.Path(g.cfg.Output.Dir),
		slog.Int("concurrency", rs.concurrency()))

	err := RunStages(ctx, rs, g.stages())
	// fetches outlive the stage that consumes them when a run aborts early
	_ = rs.fetches.Wait()

	g.finish(context.WithoutCancel(ctx), rs)
	return rs.report, err
}

func (g *Generator) finish(ctx context.Context, rs *runState) {
	r := rs.report
	r.Finish(g.now())
	r.DeriveOutcome()

	g.recorder.ObserveRunDuration(r.End.Sub(r.Start))
	g.recorder.IncRunOutcome(string(r.Outcome))

	rs.record(ctx, eventstore.TypeRunFinished, eventstore.RunFinished{
		Outcome:    string(r.Outcome),
		Counts:     r.Counts(),
		Total:      r.TotalCount,
		Failures:   len(r.Failures),
		DurationMS: r.End.Sub(r.Start).Milliseconds(),
	})

	if r.Outcome == OutcomeSuccess || r.Outcome == OutcomeWarning {
		notify.Dispatch(ctx, g.logger, g.notifiers, notify.Summary{
			RunID:  r.RunID,
			URLs:   rs.urls(),
			Counts: r.Counts(),
		})
	}

	if path := g.cfg.Output.Report; path != "" {
		if err := r.Persist(path); err != nil {
			g.logger.Warn("Failed to persist report", logfields.Path(path), logfields.Error(err))
		}
	}

	if path := g.cfg.Metrics.Textfile; path != "" {
		if tw, ok := g.recorder.(interface{ WriteTextfile(string) error }); ok {
			if err := tw.WriteTextfile(path); err != nil {
				g.logger.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
			}
		}
	}

	g.logger.Info("Generation finished",
		logfields.RunID(r.RunID),
		slog.String("outcome", string(r.Outcome)),
		slog.String("summary", r.Summary()))
}

// fetchResult holds one class download started during init.
type fetchResult[T any] struct {
	done  chan struct{}
	items []T
	err   error
}

func newFetchResult[T any]() *fetchResult[T] {
	return &fetchResult[T]{done: make(chan struct{})}
}

func (f *fetchResult[T]) wait(ctx context.Context) ([]T, error) {
	select {
	case <-f.done:
		return f.items, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// runState is the mutable state of one run. Only the stage goroutine touches
// it, except the fetch results which are published through their done channel.
type runState struct {
	g        *Generator
	cfg      *config.Config
	report   *Report
	logger   *slog.Logger
	recorder metrics.Recorder
	site     meta.Site
	tmpl     *shell.Template

	fetches  errgroup.Group
	cities   *fetchResult[source.City]
	products *fetchResult[source.Product]

	// pages holds the generated pages per class in source order.
	pages map[string][]page
}

func newRunState(g *Generator) *runState {
	runID := g.newRunID()
	return &runState{
		g:        g,
		cfg:      g.cfg,
		report:   NewReport(runID, g.now()),
		logger:   g.logger.With(logfields.RunID(runID)),
		recorder: g.recorder,
		site: meta.Site{
			Domain:         g.cfg.Site.Domain,
			Name:           g.cfg.Site.Name,
			Locale:         g.cfg.Site.Locale,
			LocativeSuffix: g.cfg.Site.LocativeSuffix,
			Image:          g.cfg.Site.Image,
		},
		cities:   newFetchResult[source.City](),
		products: newFetchResult[source.Product](),
		pages:    make(map[string][]page),
	}
}

func (rs *runState) concurrency() int {
	return max(rs.cfg.Generation.Concurrency, 1)
}

// startFetches downloads both classes concurrently. A failure of one class does
// not cancel the other.
func (rs *runState) startFetches(ctx context.Context) {
	rs.fetches.Go(func() error {
		defer close(rs.cities.done)
		t0 := time.Now()
		rs.cities.items, rs.cities.err = rs.g.source.FetchCities(ctx)
		rs.recorder.ObserveFetchDuration(source.ClassCities, time.Since(t0), rs.cities.err == nil)
		return nil
	})
	rs.fetches.Go(func() error {
		defer close(rs.products.done)
		t0 := time.Now()
		rs.products.items, rs.products.err = rs.g.source.FetchProducts(ctx)
		rs.recorder.ObserveFetchDuration(source.ClassProducts, time.Since(t0), rs.products.err == nil)
		return nil
	})
}

// record appends a history event. History is optional and never fails a run.
func (rs *runState) record(ctx context.Context, eventType string, payload any) {
	if rs.g.history == nil {
		return
	}
	md := map[string]string{"domain": rs.cfg.Site.Domain}
	if err := eventstore.AppendJSON(ctx, rs.g.history, rs.report.RunID, eventType, payload, md); err != nil {
		rs.logger.Warn("Failed to record run history", slog.String("event", eventType), logfields.Error(err))
	}
}

// urls lists every generated page URL: static pages, then cities, then products.
func (rs *runState) urls() []string {
	var out []string
	for _, class := range classOrder {
		for _, p := range rs.pages[class] {
			out = append(out, p.url)
		}
	}
	return out
}

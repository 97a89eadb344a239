package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/seogen/internal/eventstore"
	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
	"git.home.luguber.info/inful/seogen/internal/logfields"
	"git.home.luguber.info/inful/seogen/internal/meta"
	"git.home.luguber.info/inful/seogen/internal/metrics"
	"git.home.luguber.info/inful/seogen/internal/output"
	"git.home.luguber.info/inful/seogen/internal/shell"
	"git.home.luguber.info/inful/seogen/internal/sitemap"
	"git.home.luguber.info/inful/seogen/internal/slug"
	"git.home.luguber.info/inful/seogen/internal/source"
)

// ClassStatic is the entity class of the fixed pages.
const ClassStatic = "static"

// classOrder is the order generated pages are listed in the sitemap and in
// notifications.
var classOrder = []string{ClassStatic, source.ClassCities, source.ClassProducts}

const progressEvery = 50

// job is one entity ready for rendering. rank is its position in the source
// list and fixes the order of generated pages independent of completion order.
type job struct {
	rank   int
	entity meta.Entity
	path   string
	url    string
	entry  sitemap.Entry
}

type page struct {
	rank  int
	url   string
	entry sitemap.Entry
}

// plan is the sequential preparation of a class: accepted jobs plus entities
// rejected before rendering (invalid names, collisions).
type plan struct {
	jobs       []job
	rejected   []Failure
	duplicates int
}

func (p *plan) reject(class string, stage StageName, e meta.Entity, err error) {
	p.rejected = append(p.rejected, newFailure(class, stage, e, err))
}

func newFailure(class string, stage StageName, e meta.Entity, err error) Failure {
	return Failure{
		Class:  class,
		Entity: e.Ref(),
		Stage:  stage,
		Code:   string(errors.GetCategory(err)),
		Error:  err.Error(),
	}
}

func stageInit(ctx context.Context, rs *runState) error {
	if err := rs.cfg.Validate(); err != nil {
		return NewFatalStageError(StageInit, err)
	}
	tmpl, err := shell.Load(rs.cfg.Output.ShellPath())
	if err != nil {
		return NewFatalStageError(StageInit, err)
	}
	rs.tmpl = tmpl
	rs.record(ctx, eventstore.TypeRunStarted, eventstore.RunStarted{
		OutputDir:   rs.cfg.Output.Dir,
		Domain:      rs.cfg.Site.Domain,
		Concurrency: rs.concurrency(),
	})
	rs.startFetches(ctx)
	return nil
}

func stageCities(ctx context.Context, rs *runState) error {
	cities, err := rs.cities.wait(ctx)
	if err != nil {
		return rs.classUnavailable(ctx, StageCities, source.ClassCities, err)
	}
	return rs.generateClass(ctx, StageCities, source.ClassCities, rs.planCities(cities))
}

func stageProducts(ctx context.Context, rs *runState) error {
	products, err := rs.products.wait(ctx)
	if err != nil {
		return rs.classUnavailable(ctx, StageProducts, source.ClassProducts, err)
	}
	return rs.generateClass(ctx, StageProducts, source.ClassProducts, rs.planProducts(products))
}

func stageStatic(ctx context.Context, rs *runState) error {
	return rs.generateClass(ctx, StageStatic, ClassStatic, rs.planStatic())
}

// classUnavailable records a source outage. The class is skipped and the run
// moves on to the next stage.
func (rs *runState) classUnavailable(ctx context.Context, stage StageName, class string, err error) error {
	if ctx.Err() != nil {
		return NewCanceledStageError(stage, ctx.Err())
	}
	rs.report.ClassErrors[class] = err.Error()
	rs.logger.Error("Source unavailable, skipping class",
		logfields.Stage(string(stage)), logfields.Class(class), logfields.Error(err))
	rs.record(ctx, eventstore.TypeClassCompleted, eventstore.ClassCompleted{Class: class, Unavailable: true})
	return NewWarnStageError(stage, err)
}

// planCities computes every slug before any page is written so that two
// different names sharing a slug are caught instead of overwriting each other.
// The first name keeps the slug.
func (rs *runState) planCities(cities []source.City) plan {
	var p plan
	seen := make(map[string]string, len(cities))
	for i, c := range cities {
		e := meta.Entity{Kind: meta.KindCity, City: c}
		s, err := slug.Slugify(c.Name)
		if err != nil {
			p.reject(source.ClassCities, StageCities, e, err)
			continue
		}
		if first, ok := seen[s]; ok {
			if first == c.Name {
				p.duplicates++
				rs.logger.Debug("Skipping duplicate city", logfields.Entity(e.Ref()), logfields.Slug(s))
				continue
			}
			p.reject(source.ClassCities, StageCities, e, errors.SlugCollisionError(s, first, c.Name))
			continue
		}
		seen[s] = c.Name
		e.Slug = s
		p.jobs = append(p.jobs, job{
			rank:   i,
			entity: e,
			path:   output.CityPath(s),
			url:    rs.site.CityURL(s),
			entry:  sitemap.City(s, rs.cfg.Sitemap.LastMod),
		})
	}
	return p
}

// planProducts applies the same first-wins rule to product ids. Products with
// an invalid id are left to fail in BuildProduct.
func (rs *runState) planProducts(products []source.Product) plan {
	var p plan
	seen := make(map[int64]string, len(products))
	for i, pr := range products {
		e := meta.Entity{Kind: meta.KindProduct, Product: pr}
		if pr.ID > 0 {
			if first, ok := seen[pr.ID]; ok {
				if first == pr.Name {
					p.duplicates++
					rs.logger.Debug("Skipping duplicate product", logfields.Entity(e.Ref()))
					continue
				}
				p.reject(source.ClassProducts, StageProducts, e,
					errors.SlugCollisionError(output.ProductPath(pr.ID), first, pr.Name))
				continue
			}
			seen[pr.ID] = pr.Name
		}
		p.jobs = append(p.jobs, job{
			rank:   i,
			entity: e,
			path:   output.ProductPath(pr.ID),
			url:    rs.site.ProductURL(pr.ID),
			entry:  sitemap.Product(pr.ID, rs.cfg.Sitemap.LastMod),
		})
	}
	return p
}

func (rs *runState) planStatic() plan {
	var p plan
	for i, sp := range rs.cfg.StaticPages {
		e := meta.Entity{Kind: meta.KindStatic, Static: meta.StaticPage{
			Path:        sp.Path,
			Title:       sp.Title,
			Description: sp.Description,
		}}
		p.jobs = append(p.jobs, job{
			rank:   i,
			entity: e,
			path:   output.StaticPath(sp.Path),
			url:    rs.site.StaticURL(sp.Path),
			entry:  sitemap.Static(sp.Path, sp.Priority, sp.ChangeFreq, rs.cfg.Sitemap.LastMod),
		})
	}
	return p
}

// classResult is the concurrency-safe accumulator of one class.
type classResult struct {
	mu        sync.Mutex
	pages     []page
	unchanged int
	failures  []Failure
}

func (c *classResult) success(j job, res output.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = append(c.pages, page{rank: j.rank, url: j.url, entry: j.entry})
	if res == output.ResultUnchanged {
		c.unchanged++
	}
}

func (c *classResult) fail(f Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, f)
}

// generateClass renders and writes every job of a class with bounded
// parallelism. One entity's failure never stops the others.
func (rs *runState) generateClass(ctx context.Context, stage StageName, class string, p plan) error {
	t0 := time.Now()
	total := len(p.jobs)
	res := &classResult{}
	var processed atomic.Int64

	var g errgroup.Group
	g.SetLimit(rs.concurrency())
	for _, j := range p.jobs {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			r, err := rs.render(j)
			if err != nil {
				f := newFailure(class, stage, j.entity, err)
				rs.logger.Warn("Entity failed",
					logfields.Stage(string(stage)), logfields.Class(class),
					logfields.Entity(f.Entity), logfields.Path(j.path), logfields.Error(err))
				rs.recorder.IncEntityResult(class, metrics.ResultFailed)
				res.fail(f)
			} else {
				label := metrics.ResultSuccess
				if r == output.ResultUnchanged {
					label = metrics.ResultUnchanged
				}
				rs.recorder.IncEntityResult(class, label)
				res.success(j, r)
			}
			if n := processed.Add(1); n%progressEvery == 0 {
				rs.logger.Info("Progress", logfields.Class(class), logfields.Count(int(n)), slog.Int("total", total))
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return NewCanceledStageError(stage, err)
	}

	sort.Slice(res.pages, func(i, k int) bool { return res.pages[i].rank < res.pages[k].rank })
	rs.pages[class] = res.pages

	for _, f := range p.rejected {
		rs.logger.Warn("Entity rejected",
			logfields.Stage(string(stage)), logfields.Class(class),
			logfields.Entity(f.Entity), slog.String("code", f.Code), slog.String(logfields.KeyError, f.Error))
		rs.recorder.IncEntityResult(class, metrics.ResultFailed)
	}
	for i := 0; i < p.duplicates; i++ {
		rs.recorder.IncEntityResult(class, metrics.ResultDuplicate)
	}

	r := rs.report
	switch class {
	case source.ClassCities:
		r.CityCount += len(res.pages)
	case source.ClassProducts:
		r.ProductCount += len(res.pages)
	case ClassStatic:
		r.StaticCount += len(res.pages)
	}
	r.Unchanged += res.unchanged
	r.Duplicates += p.duplicates
	failed := len(res.failures) + len(p.rejected)
	r.addFailures(append(p.rejected, res.failures...)...)

	dur := time.Since(t0)
	rs.logger.Info("Class completed",
		logfields.Class(class),
		logfields.Count(len(res.pages)),
		slog.Int("unchanged", res.unchanged),
		slog.Int("failed", failed),
		slog.Int("duplicates", p.duplicates),
		logfields.DurationMS(float64(dur.Microseconds())/1000))
	rs.record(ctx, eventstore.TypeClassCompleted, eventstore.ClassCompleted{
		Class:      class,
		Generated:  len(res.pages),
		Unchanged:  res.unchanged,
		Failed:     failed,
		DurationMS: dur.Milliseconds(),
	})

	if failed > 0 {
		return NewWarnStageError(stage, fmt.Errorf("%d of %d %s entities failed", failed, total+len(p.rejected), class))
	}
	return nil
}

// render builds the tag set, applies it to the shell and writes the page.
func (rs *runState) render(j job) (output.Result, error) {
	set, err := meta.Build(j.entity, rs.site)
	if err != nil {
		return output.ResultWritten, err
	}
	doc, err := rs.tmpl.Render(set)
	if err != nil {
		return output.ResultWritten, err
	}
	return rs.g.writer.Write(j.path, []byte(doc))
}

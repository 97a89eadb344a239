package pipeline

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/seogen/internal/logfields"
	"git.home.luguber.info/inful/seogen/internal/sitemap"
	"git.home.luguber.info/inful/seogen/internal/source"
	"git.home.luguber.info/inful/seogen/internal/verify"
)

const (
	sitemapFile = "sitemap.xml"
	robotsFile  = "robots.txt"
)

func (rs *runState) staticPaths() []string {
	paths := make([]string, 0, len(rs.cfg.StaticPages))
	for _, sp := range rs.cfg.StaticPages {
		paths = append(paths, sp.Path)
	}
	return paths
}

// stageSitemap lists the root and every generated page. Pages that failed are
// left out so the sitemap never points at a missing document.
func stageSitemap(_ context.Context, rs *runState) error {
	var problems []error

	if rs.cfg.Sitemap.Enabled {
		entries := []sitemap.Entry{sitemap.Home(rs.cfg.Sitemap.LastMod)}
		for _, class := range classOrder {
			for _, p := range rs.pages[class] {
				entries = append(entries, p.entry)
			}
		}
		data, err := sitemap.Build(rs.site.BaseURL(), entries)
		if err == nil {
			_, err = rs.g.writer.Write(sitemapFile, data)
		}
		if err != nil {
			problems = append(problems, err)
		} else {
			rs.logger.Info("Sitemap written", logfields.Path(sitemapFile), logfields.Count(len(entries)))
		}
	}

	if rs.cfg.Robots.Enabled {
		if _, err := rs.g.writer.Write(robotsFile, sitemap.Robots(rs.site.BaseURL(), rs.staticPaths())); err != nil {
			problems = append(problems, err)
		}
	}

	if len(problems) > 0 {
		return NewWarnStageError(StageSitemap, problems[0])
	}
	return nil
}

// stageVerify re-reads the written tree. Problems are warnings: the pages are
// already on disk and a rerun is the remedy.
func stageVerify(_ context.Context, rs *runState) error {
	res, err := verify.Run(rs.cfg.Output.Dir, verify.Layout{StaticPaths: rs.staticPaths()}, rs.cfg.Generation.VerifySamples)
	if err != nil {
		return NewWarnStageError(StageVerify, err)
	}

	expected := map[string]int{
		verify.CategoryCity:    len(rs.pages[source.ClassCities]),
		verify.CategoryProduct: len(rs.pages[source.ClassProducts]),
		verify.CategoryStatic:  len(rs.pages[ClassStatic]),
	}
	for _, category := range []string{verify.CategoryCity, verify.CategoryProduct, verify.CategoryStatic} {
		if got, want := res.Counts[category], expected[category]; got < want {
			res.Issues = append(res.Issues, verify.Issue{
				Path:    category,
				Problem: fmt.Sprintf("found %d documents, generated %d", got, want),
			})
		}
	}
	rs.report.Verification = &res

	for _, s := range res.Samples {
		rs.logger.Debug("Verified sample", logfields.Path(s.Path), logfields.Class(s.Category))
	}
	if !res.OK() {
		return NewWarnStageError(StageVerify, fmt.Errorf("verification found %d problems", len(res.Issues)))
	}
	rs.logger.Info("Verification passed", logfields.Count(res.Total()))
	return nil
}

package meta

import "git.home.luguber.info/inful/seogen/internal/foundation/errors"

// BuildStatic builds the tag set for a fixed route straight from its definition.
func BuildStatic(p StaticPage, site Site) (TagSet, error) {
	if p.Path == "" {
		return TagSet{}, errors.ValidationError("static page has no path").Build()
	}
	url := site.StaticURL(p.Path)
	return TagSet{
		Title:       p.Title,
		Description: p.Description,
		Canonical:   url,
		Robots:      "index, follow",
		OpenGraph:   site.openGraph("website", p.Title, p.Description, url, ""),
		Twitter:     site.twitter(p.Title, p.Description, ""),
		StructuredData: []any{
			WebPage{
				Context:     schemaContext,
				Type:        "WebPage",
				Name:        p.Title,
				Description: p.Description,
				URL:         url,
				InLanguage:  "ru",
				IsPartOf:    WebSite{Type: "WebSite", Name: site.Name, URL: site.HomeURL()},
			},
		},
	}, nil
}

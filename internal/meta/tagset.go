// Package meta builds the per-page SEO tag set: title, description, canonical
// link, Open Graph and Twitter tags, and JSON-LD structured data.
//
// Builders are pure. Values are returned unescaped; encoding for HTML and
// inline scripts is the shell package's job.
package meta

import (
	"fmt"
	"strconv"

	"git.home.luguber.info/inful/seogen/internal/source"
)

// Kind identifies the entity class a page is built for.
type Kind string

const (
	KindCity    Kind = "city"
	KindProduct Kind = "product"
	KindStatic  Kind = "static"
)

// TagSet is everything injected into one page's <head>.
type TagSet struct {
	Title          string
	Description    string
	Keywords       string
	Canonical      string
	Robots         string
	OpenGraph      OpenGraph
	Twitter        TwitterCard
	StructuredData []any
}

type OpenGraph struct {
	Type        string
	Title       string
	Description string
	URL         string
	SiteName    string
	Locale      string
	Image       string
}

type TwitterCard struct {
	Card        string
	Title       string
	Description string
	Image       string
}

// Site carries the storefront-wide values every page shares.
type Site struct {
	Domain         string
	Name           string
	Locale         string
	LocativeSuffix string
	Image          string
}

// BaseURL returns https://<domain>.
func (s Site) BaseURL() string { return "https://" + s.Domain }

// HomeURL is the storefront root with a trailing slash.
func (s Site) HomeURL() string { return s.BaseURL() + "/" }

func (s Site) CityURL(slug string) string { return s.BaseURL() + "/city/" + slug }

func (s Site) ProductURL(id int64) string {
	return s.BaseURL() + "/product/" + strconv.FormatInt(id, 10)
}

func (s Site) StaticURL(path string) string { return s.BaseURL() + "/" + path }

// StaticPage is a fixed route definition.
type StaticPage struct {
	Path        string
	Title       string
	Description string
}

// Entity is one page to build. Exactly one of City, Product or Static is
// meaningful, selected by Kind. Slug is set for cities.
type Entity struct {
	Kind    Kind
	Slug    string
	City    source.City
	Product source.Product
	Static  StaticPage
}

// Ref identifies the entity in logs and reports.
func (e Entity) Ref() string {
	switch e.Kind {
	case KindCity:
		return fmt.Sprintf("city:%s", e.City.Name)
	case KindProduct:
		return fmt.Sprintf("product:%d", e.Product.ID)
	case KindStatic:
		return fmt.Sprintf("static:%s", e.Static.Path)
	default:
		return string(e.Kind)
	}
}

// Build dispatches on the entity kind.
func Build(e Entity, site Site) (TagSet, error) {
	switch e.Kind {
	case KindCity:
		return BuildCity(e.City, e.Slug, site)
	case KindProduct:
		return BuildProduct(e.Product, site)
	case KindStatic:
		return BuildStatic(e.Static, site)
	default:
		return TagSet{}, fmt.Errorf("unknown entity kind %q", e.Kind)
	}
}

func (s Site) openGraph(kind, title, description, url, image string) OpenGraph {
	if image == "" {
		image = s.Image
	}
	return OpenGraph{
		Type:        kind,
		Title:       title,
		Description: description,
		URL:         url,
		SiteName:    s.Name,
		Locale:      s.Locale,
		Image:       image,
	}
}

func (s Site) twitter(title, description, image string) TwitterCard {
	if image == "" {
		image = s.Image
	}
	return TwitterCard{Card: "summary_large_image", Title: title, Description: description, Image: image}
}

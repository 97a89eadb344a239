// Package sitemap renders sitemap.xml and robots.txt for the generated routes.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Change frequencies used by the storefront.
const (
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
)

// Entry is one route. Path is site-relative and starts with "/".
type Entry struct {
	Path       string
	LastMod    string
	ChangeFreq string
	Priority   float64
}

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []url    `xml:"url"`
}

type url struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Home is the storefront root entry.
func Home(lastMod string) Entry {
	return Entry{Path: "/", LastMod: lastMod, ChangeFreq: Daily, Priority: 1.0}
}

func City(slug, lastMod string) Entry {
	return Entry{Path: "/city/" + slug, LastMod: lastMod, ChangeFreq: Daily, Priority: 0.9}
}

func Product(id int64, lastMod string) Entry {
	return Entry{Path: "/product/" + strconv.FormatInt(id, 10), LastMod: lastMod, ChangeFreq: Weekly, Priority: 0.8}
}

// Static uses the page's own priority and change frequency, defaulting to 0.5 monthly.
func Static(path string, priority float64, changeFreq, lastMod string) Entry {
	if priority <= 0 {
		priority = 0.5
	}
	if changeFreq == "" {
		changeFreq = Monthly
	}
	return Entry{Path: "/" + path, LastMod: lastMod, ChangeFreq: changeFreq, Priority: priority}
}

// Build renders the urlset. Entries are written in the given order.
func Build(baseURL string, entries []Entry) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")
	set := urlset{Xmlns: xmlns, URLs: make([]url, 0, len(entries))}
	for _, e := range entries {
		if !strings.HasPrefix(e.Path, "/") {
			return nil, fmt.Errorf("sitemap entry path %q must start with /", e.Path)
		}
		u := url{
			Loc:        base + e.Path,
			LastMod:    e.LastMod,
			ChangeFreq: e.ChangeFreq,
		}
		if e.Priority > 0 {
			u.Priority = strconv.FormatFloat(e.Priority, 'f', 1, 64)
		}
		set.URLs = append(set.URLs, u)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

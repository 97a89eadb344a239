// Package verify re-reads a generated tree and checks the injected head tags.
package verify

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
	"git.home.luguber.info/inful/seogen/internal/output"
)

// Categories counted by Run.
const (
	CategoryCity    = "city"
	CategoryProduct = "product"
	CategoryStatic  = "static"
)

// Layout lists the routes that are not discoverable by walking city/ and product/.
type Layout struct {
	StaticPaths []string
}

// Sample is one checked document.
type Sample struct {
	Category string `json:"category"`
	Path     string `json:"path"`
	Title    string `json:"title"`
}

// Issue is a problem found in a sampled document.
type Issue struct {
	Path    string `json:"path"`
	Problem string `json:"problem"`
}

// Result summarizes a verification pass.
type Result struct {
	Counts  map[string]int `json:"counts"`
	Samples []Sample       `json:"samples,omitempty"`
	Issues  []Issue        `json:"issues,omitempty"`
	// Other counts index.html files outside every category, such as the shell.
	Other int `json:"other"`
}

// Total is the number of generated documents found.
func (r Result) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// OK reports whether no issues were found.
func (r Result) OK() bool { return len(r.Issues) == 0 }

// Run counts generated documents under root and checks up to samples of each
// category. Missing category directories count as zero.
func Run(root string, layout Layout, samples int) (Result, error) {
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", root)
		}
		return Result{}, errors.WrapError(err, errors.CategoryValidation, "output directory unreadable").
			WithContext("path", root).Build()
	}

	res := Result{Counts: map[string]int{}}
	byCategory := map[string][]string{
		CategoryCity:    listIndexes(root, output.CityDir),
		CategoryProduct: listIndexes(root, output.ProductDir),
	}
	var statics []string
	for _, p := range layout.StaticPaths {
		rel := output.StaticPath(p)
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err == nil {
			statics = append(statics, rel)
		}
	}
	sort.Strings(statics)
	byCategory[CategoryStatic] = statics

	for _, cat := range []string{CategoryCity, CategoryProduct, CategoryStatic} {
		files := byCategory[cat]
		res.Counts[cat] = len(files)
		for i, rel := range files {
			if i >= samples {
				break
			}
			title, issues := CheckFile(filepath.Join(root, filepath.FromSlash(rel)))
			for _, problem := range issues {
				res.Issues = append(res.Issues, Issue{Path: rel, Problem: problem})
			}
			res.Samples = append(res.Samples, Sample{Category: cat, Path: rel, Title: title})
		}
	}
	all, err := countFiles(root)
	if err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryValidation, "output directory unreadable").
			WithContext("path", root).Build()
	}
	res.Other = max(all-res.Total(), 0)
	return res, nil
}

// listIndexes returns sorted <dir>/<name>/index.html paths relative to root.
func listIndexes(root, dir string) []string {
	entries, err := os.ReadDir(filepath.Join(root, dir))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		rel := dir + "/" + e.Name() + "/" + output.IndexFile
		if info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err == nil && info.Mode().IsRegular() {
			out = append(out, rel)
		}
	}
	sort.Strings(out)
	return out
}

// CheckFile parses one document and returns its title plus any problems.
func CheckFile(path string) (string, []string) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", []string{fmt.Sprintf("open: %v", err)}
	}
	defer func() { _ = f.Close() }()

	doc, err := html.Parse(f)
	if err != nil {
		return "", []string{fmt.Sprintf("parse: %v", err)}
	}
	return checkDocument(doc)
}

func checkDocument(doc *html.Node) (string, []string) {
	var (
		titles     []string
		canonicals int
		describers int
		problems   []string
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Namespace == "" {
			switch n.Data {
			case "title":
				titles = append(titles, strings.TrimSpace(textOf(n)))
			case "link":
				if hasToken(attr(n, "rel"), "canonical") {
					canonicals++
					if attr(n, "href") == "" {
						problems = append(problems, "canonical link has empty href")
					}
				}
			case "meta":
				if strings.EqualFold(attr(n, "name"), "description") {
					describers++
				}
			case "script":
				if strings.EqualFold(attr(n, "type"), "application/ld+json") {
					var obj map[string]any
					if err := json.Unmarshal([]byte(textOf(n)), &obj); err != nil {
						problems = append(problems, fmt.Sprintf("structured data is not a JSON object: %v", err))
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	title := ""
	switch len(titles) {
	case 0:
		problems = append(problems, "missing <title>")
	case 1:
		title = titles[0]
		if title == "" {
			problems = append(problems, "empty <title>")
		}
	default:
		problems = append(problems, fmt.Sprintf("%d <title> elements", len(titles)))
	}
	if canonicals != 1 {
		problems = append(problems, fmt.Sprintf("%d canonical links", canonicals))
	}
	if describers != 1 {
		problems = append(problems, fmt.Sprintf("%d description meta tags", describers))
	}
	return title, problems
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasToken(list, token string) bool {
	for _, t := range strings.Fields(list) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// countFiles returns the number of index.html files anywhere under root.
func countFiles(root string) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == output.IndexFile {
			n++
		}
		return nil
	})
	return n, err
}

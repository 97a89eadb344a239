package shell

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/seogen/internal/meta"
)

// Rule is one named, idempotent rewrite of the document head.
type Rule interface {
	Name() string
	Apply(doc string) (string, error)
}

// JSONLDMarker tags the script blocks this package owns.
const JSONLDMarker = "jsonld"

var (
	titlePattern  = regexp.MustCompile(`(?is)<title\b[^>]*>.*?</title\s*>`)
	metaPattern   = regexp.MustCompile(`(?is)<meta\b(?:[^>"']|"[^"]*"|'[^']*')*>`)
	linkPattern   = regexp.MustCompile(`(?is)<link\b(?:[^>"']|"[^"]*"|'[^']*')*>`)
	scriptPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
)

// upsertRule replaces the first tag accepted by match and drops the others,
// or inserts render before </head> when none exists.
type upsertRule struct {
	name    string
	pattern *regexp.Regexp
	match   func(tag string) bool
	render  string
}

func (r upsertRule) Name() string { return r.name }

func (r upsertRule) Apply(doc string) (string, error) {
	head, tail, err := splitHead(doc)
	if err != nil {
		return "", err
	}
	var locs [][]int
	for _, loc := range r.pattern.FindAllStringIndex(maskInert(head), -1) {
		if r.match(head[loc[0]:loc[1]]) {
			locs = append(locs, loc)
		}
	}
	if len(locs) == 0 {
		return insertBeforeClose(head, r.render) + tail, nil
	}
	for i := len(locs) - 1; i >= 1; i-- {
		head = removeSpan(head, locs[i][0], locs[i][1])
	}
	first := locs[0]
	return head[:first[0]] + r.render + head[first[1]:] + tail, nil
}

// jsonLDRule drops every block carrying the marker and appends fresh ones.
type jsonLDRule struct {
	blocks []string
}

func (r jsonLDRule) Name() string { return "jsonld" }

func (r jsonLDRule) Apply(doc string) (string, error) {
	head, tail, err := splitHead(doc)
	if err != nil {
		return "", err
	}
	locs := scriptPattern.FindAllStringIndex(maskInert(head), -1)
	for i := len(locs) - 1; i >= 0; i-- {
		attrs := attributes(head[locs[i][0]:locs[i][1]])
		if strings.EqualFold(attrs["type"], "application/ld+json") && attrs["data-seogen"] == JSONLDMarker {
			head = removeSpan(head, locs[i][0], locs[i][1])
		}
	}
	for _, b := range r.blocks {
		head = insertBeforeClose(head, b)
	}
	return head + tail, nil
}

func titleRule(title string) Rule {
	return upsertRule{
		name:    "title",
		pattern: titlePattern,
		match:   func(string) bool { return true },
		render:  "<title>" + html.EscapeString(title) + "</title>",
	}
}

// metaNameRule handles <meta name=...>. Twitter tags are sometimes published with
// property= instead, so both attributes are matched.
func metaNameRule(name, content string) Rule {
	return upsertRule{
		name:    "meta:" + name,
		pattern: metaPattern,
		match: func(tag string) bool {
			a := attributes(tag)
			return strings.EqualFold(a["name"], name) ||
				(strings.HasPrefix(name, "twitter:") && strings.EqualFold(a["property"], name))
		},
		render: fmt.Sprintf(`<meta name="%s" content="%s" />`, name, html.EscapeString(content)),
	}
}

func metaPropertyRule(property, content string) Rule {
	return upsertRule{
		name:    property,
		pattern: metaPattern,
		match: func(tag string) bool {
			a := attributes(tag)
			return strings.EqualFold(a["property"], property) || strings.EqualFold(a["name"], property)
		},
		render: fmt.Sprintf(`<meta property="%s" content="%s" />`, property, html.EscapeString(content)),
	}
}

func canonicalRule(href string) Rule {
	return upsertRule{
		name:    "link:canonical",
		pattern: linkPattern,
		match: func(tag string) bool {
			for _, tok := range strings.Fields(attributes(tag)["rel"]) {
				if strings.EqualFold(tok, "canonical") {
					return true
				}
			}
			return false
		},
		render: fmt.Sprintf(`<link rel="canonical" href="%s" />`, html.EscapeString(href)),
	}
}

// Rules returns the ordered rule list for a tag set. Empty values produce no rule,
// leaving whatever the shell carries.
func Rules(set meta.TagSet) ([]Rule, error) {
	var rules []Rule
	add := func(value string, mk func() Rule) {
		if value != "" {
			rules = append(rules, mk())
		}
	}
	add(set.Title, func() Rule { return titleRule(set.Title) })
	add(set.Description, func() Rule { return metaNameRule("description", set.Description) })
	add(set.Keywords, func() Rule { return metaNameRule("keywords", set.Keywords) })
	add(set.Robots, func() Rule { return metaNameRule("robots", set.Robots) })
	add(set.Canonical, func() Rule { return canonicalRule(set.Canonical) })

	og := set.OpenGraph
	for _, kv := range [][2]string{
		{"og:type", og.Type},
		{"og:title", og.Title},
		{"og:description", og.Description},
		{"og:url", og.URL},
		{"og:site_name", og.SiteName},
		{"og:locale", og.Locale},
		{"og:image", og.Image},
	} {
		add(kv[1], func() Rule { return metaPropertyRule(kv[0], kv[1]) })
	}
	tw := set.Twitter
	for _, kv := range [][2]string{
		{"twitter:card", tw.Card},
		{"twitter:title", tw.Title},
		{"twitter:description", tw.Description},
		{"twitter:image", tw.Image},
	} {
		add(kv[1], func() Rule { return metaNameRule(kv[0], kv[1]) })
	}

	blocks := make([]string, 0, len(set.StructuredData))
	for _, data := range set.StructuredData {
		body, err := EncodeJSONLD(data)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, `<script type="application/ld+json" data-seogen="`+JSONLDMarker+`">`+body+`</script>`)
	}
	rules = append(rules, jsonLDRule{blocks: blocks})
	return rules, nil
}

// EncodeJSONLD serializes one structured-data block. HTML escaping stays on so
// that no "</script>" sequence can appear in the body.
func EncodeJSONLD(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode structured data: %w", err)
	}
	out := bytes.TrimSpace(buf.Bytes())
	if len(out) == 0 || out[0] != '{' {
		return "", fmt.Errorf("structured data must encode to a JSON object, got %.20s", out)
	}
	return string(out), nil
}

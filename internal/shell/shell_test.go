package shell

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
	"git.home.luguber.info/inful/seogen/internal/meta"
	"git.home.luguber.info/inful/seogen/internal/source"
)

const viteShell = `<!doctype html>
<html lang="ru">
  <head>
    <meta charset="UTF-8" />
    <title>FloRustic</title>
    <meta name="description" content="old description" />
    <meta property="og:title" content="old og" />
    <meta content="duplicate" name="DESCRIPTION">
    <link href="https://florustic.ru/" rel="canonical">
    <script type="application/ld+json">{"@context":"https://schema.org","@type":"Organization","name":"FloRustic"}</script>
    <script type="module" crossorigin src="/assets/index.js"></script>
  </head>
  <body>
    <svg><title>icon</title></svg>
    <div id="root"></div>
  </body>
</html>
`

var site = meta.Site{Domain: "florustic.ru", Name: "FloRustic", Locale: "ru_RU", LocativeSuffix: "е"}

func cityTags(t *testing.T, name, slug string) meta.TagSet {
	t.Helper()
	set, err := meta.BuildCity(source.City{Name: name}, slug, site)
	require.NoError(t, err)
	return set
}

func headOf(t *testing.T, doc string) string {
	t.Helper()
	head, _, err := splitHead(doc)
	require.NoError(t, err)
	return head
}

func countMatches(pattern, s string) int {
	return len(regexp.MustCompile(pattern).FindAllStringIndex(s, -1))
}

func TestApplyReplacesAndInserts(t *testing.T) {
	out, err := Apply(viteShell, cityTags(t, "Москва", "moskva"))
	require.NoError(t, err)
	head := headOf(t, out)

	assert.Equal(t, 1, countMatches(`(?i)<title>`, head))
	assert.Contains(t, head, "<title>Доставка цветов Москва — FloRustic | Купить розы, тюльпаны, пионы с доставкой в Москве</title>")
	assert.Equal(t, 1, countMatches(`(?i)name="description"`, head))
	assert.NotContains(t, head, "old description")
	assert.NotContains(t, head, "duplicate")
	assert.Equal(t, 1, countMatches(`rel="canonical"`, head))
	assert.Contains(t, head, `<link rel="canonical" href="https://florustic.ru/city/moskva" />`)
	assert.Equal(t, 1, countMatches(`property="og:title"`, head))
	assert.Contains(t, head, `<meta property="og:site_name" content="FloRustic" />`)
	assert.Contains(t, head, `<meta property="og:locale" content="ru_RU" />`)
	assert.Contains(t, head, `<meta name="twitter:card" content="summary_large_image" />`)
	assert.Contains(t, head, `<meta charset="UTF-8" />`)
	assert.Contains(t, head, `<script type="module" crossorigin src="/assets/index.js"></script>`)

	// body markup is outside the rewritten region
	assert.Contains(t, out, "<svg><title>icon</title></svg>")
	assert.True(t, strings.HasSuffix(out, "</html>\n"))
}

func TestApplyIsIdempotent(t *testing.T) {
	shells := map[string]string{
		"vite":     viteShell,
		"minimal":  "<html><head></head><body></body></html>",
		"one line": `<html><head><meta charset="utf-8"><title>x</title></head><body></body></html>`,
		"crlf":     "<html>\r\n<head>\r\n<title>x</title>\r\n</head>\r\n<body></body></html>",
		"upper":    "<HTML><HEAD>\n  <TITLE>X</TITLE>\n  <META NAME=\"description\" CONTENT=\"a\">\n</HEAD></HTML>",
	}
	sets := map[string]meta.TagSet{
		"city": cityTags(t, "Санкт-Петербург", "sankt-peterburg"),
	}
	product, err := meta.BuildProduct(source.Product{ID: 42, Name: `Букет "Нежность"`, Price: "3500"}, site)
	require.NoError(t, err)
	sets["product"] = product

	for shellName, base := range shells {
		for setName, set := range sets {
			t.Run(shellName+"/"+setName, func(t *testing.T) {
				once, err := Apply(base, set)
				require.NoError(t, err)
				twice, err := Apply(once, set)
				require.NoError(t, err)
				assert.Equal(t, once, twice)
			})
		}
	}
}

func TestApplyOverPreviousPage(t *testing.T) {
	first, err := Apply(viteShell, cityTags(t, "Казань", "kazan"))
	require.NoError(t, err)
	fromPrevious, err := Apply(first, cityTags(t, "Уфа", "ufa"))
	require.NoError(t, err)
	fromBase, err := Apply(viteShell, cityTags(t, "Уфа", "ufa"))
	require.NoError(t, err)
	assert.Equal(t, fromBase, fromPrevious)
	assert.NotContains(t, fromPrevious, "Казан")
}

func TestApplyEscapes(t *testing.T) {
	set := cityTags(t, `Село "Рога" <b>`, "selo-roga-b")
	out, err := Apply(viteShell, set)
	require.NoError(t, err)
	head := headOf(t, out)

	title := regexp.MustCompile(`<title>(.*?)</title>`).FindStringSubmatch(head)
	require.Len(t, title, 2)
	assert.NotContains(t, title[1], `"`)
	assert.NotContains(t, title[1], `<`)
	assert.Contains(t, title[1], "&#34;Рога&#34; &lt;b&gt;")

	desc := regexp.MustCompile(`<meta name="description" content="([^"]*)" />`).FindStringSubmatch(head)
	require.Len(t, desc, 2)
	assert.NotContains(t, desc[1], "<")
	assert.Contains(t, desc[1], "&#34;Рога&#34;")
}

func TestApplyJSONLD(t *testing.T) {
	set := cityTags(t, "Москва", "moskva")
	set.StructuredData = append(set.StructuredData, map[string]string{"@type": "Thing", "name": "</script><script>alert(1)</script>"})

	out, err := Apply(viteShell, set)
	require.NoError(t, err)
	head := headOf(t, out)

	blocks := regexp.MustCompile(`(?s)<script type="application/ld\+json" data-seogen="jsonld">(.*?)</script>`).FindAllStringSubmatch(head, -1)
	require.Len(t, blocks, len(set.StructuredData))
	for _, b := range blocks {
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(b[1]), &obj))
	}
	assert.Contains(t, blocks[len(blocks)-1][1], `\u003c/script\u003e`)
	assert.NotContains(t, head, "alert(1)</script>")

	// unmarked site-wide structured data survives
	assert.Contains(t, head, `"@type":"Organization"`)

	// blocks sit directly before </head>
	assert.Regexp(t, `</script>\n  $`, head)
}

func TestApplyMissingHead(t *testing.T) {
	_, err := Apply("<html><body>no head</body></html>", cityTags(t, "Москва", "moskva"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryMalformedTemplate))

	_, err = Parse("<html><head>")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryMalformedTemplate))
}

func TestApplyEmptyValuesLeaveShellTags(t *testing.T) {
	base := "<html><head>\n<meta property=\"og:image\" content=\"https://florustic.ru/og.jpg\" />\n</head></html>"
	out, err := Apply(base, meta.TagSet{Title: "T"})
	require.NoError(t, err)
	assert.Contains(t, out, `content="https://florustic.ru/og.jpg"`)
	assert.Contains(t, out, "<title>T</title>")
}

func TestTemplateRenderDoesNotMutateBase(t *testing.T) {
	tpl, err := Parse(viteShell)
	require.NoError(t, err)
	_, err = tpl.Render(cityTags(t, "Москва", "moskva"))
	require.NoError(t, err)
	assert.Equal(t, viteShell, tpl.Base())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(path, []byte(viteShell), 0o600))

	tpl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, viteShell, tpl.Base())

	_, err = Load(filepath.Join(dir, "missing.html"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryMalformedTemplate))

	bad := filepath.Join(dir, "bad.html")
	require.NoError(t, os.WriteFile(bad, []byte("<html></html>"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	p, _ := ce.Context().GetString("path")
	assert.Equal(t, bad, p)
}

func TestRulesOrder(t *testing.T) {
	rules, err := Rules(cityTags(t, "Москва", "moskva"))
	require.NoError(t, err)
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name())
	}
	assert.Equal(t, "title", names[0])
	assert.Equal(t, "meta:description", names[1])
	assert.Contains(t, names, "link:canonical")
	assert.Contains(t, names, "og:title")
	assert.Contains(t, names, "meta:twitter:card")
	assert.Equal(t, "jsonld", names[len(names)-1])
}

func TestEncodeJSONLDRejectsNonObjects(t *testing.T) {
	_, err := EncodeJSONLD([]int{1})
	assert.Error(t, err)
	_, err = EncodeJSONLD(make(chan int))
	assert.Error(t, err)
}

func TestAttributes(t *testing.T) {
	a := attributes(`<meta CONTENT='x &amp; y' name=description data-flag>`)
	assert.Equal(t, "x & y", a["content"])
	assert.Equal(t, "description", a["name"])
	_, ok := a["data-flag"]
	assert.True(t, ok)
}

// liveElements counts elements in the parsed document, so tags inside comments
// and script bodies are not counted.
func liveElements(t *testing.T, doc, tag string, match func(map[string]string) bool) []*html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			attrs := map[string]string{}
			for _, a := range n.Attr {
				attrs[a.Key] = a.Val
			}
			if match(attrs) {
				found = append(found, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func TestApplyLeavesInertMarkupAlone(t *testing.T) {
	isDescription := func(a map[string]string) bool { return a["name"] == "description" }
	anyTitle := func(map[string]string) bool { return true }

	tests := []struct {
		name  string
		shell string
		keep  string
	}{
		{
			name:  "gt inside attribute",
			shell: "<html><head>\n<meta name=\"description\" content=\"a > b\">\n<title>x</title>\n</head><body></body></html>",
		},
		{
			name:  "commented out description",
			shell: "<html><head>\n<!-- <meta name=\"description\" content=\"old\"> -->\n<title>x</title>\n</head><body></body></html>",
			keep:  `<!-- <meta name="description" content="old"> -->`,
		},
		{
			name:  "title inside script string",
			shell: "<html><head>\n<script>var s='<title>x</title>';</script>\n<title>real</title>\n</head><body></body></html>",
			keep:  "<script>var s='<title>x</title>';</script>",
		},
		{
			name:  "head close inside comment",
			shell: "<html><head>\n<!-- </head> -->\n<title>x</title>\n</head><body></body></html>",
			keep:  "<!-- </head> -->",
		},
		{
			name:  "style body",
			shell: "<html><head>\n<style>/* <meta name=\"description\"> */ a{}</style>\n</head><body></body></html>",
			keep:  `<style>/* <meta name="description"> */ a{}</style>`,
		},
	}
	set := cityTags(t, "Москва", "moskva")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(tt.shell, set)
			require.NoError(t, err)

			assert.NotContains(t, out, ` b">`)
			if tt.keep != "" {
				assert.Contains(t, out, tt.keep)
			}

			descs := liveElements(t, out, "meta", isDescription)
			require.Len(t, descs, 1)
			for _, a := range descs[0].Attr {
				if a.Key == "content" {
					assert.Equal(t, set.Description, a.Val)
				}
			}
			titles := liveElements(t, out, "title", anyTitle)
			require.Len(t, titles, 1)
			require.NotNil(t, titles[0].FirstChild)
			assert.Equal(t, set.Title, titles[0].FirstChild.Data)
			assert.Len(t, liveElements(t, out, "link", func(a map[string]string) bool { return a["rel"] == "canonical" }), 1)

			twice, err := Apply(out, set)
			require.NoError(t, err)
			assert.Equal(t, out, twice)
		})
	}
}

func TestMaskInertKeepsOffsets(t *testing.T) {
	in := "<head><!-- x --><script type=\"a>b\">if (a<b) {}</script><title>Т</title><meta content='>'></head>"
	masked := maskInert(in)
	require.Len(t, masked, len(in))
	assert.NotContains(t, masked, "<!--")
	assert.NotContains(t, masked, "a<b")
	assert.Contains(t, masked, `<script type="a>b">`)
	assert.Contains(t, masked, "</script>")
	assert.Contains(t, masked, "<meta content='>'>")
}

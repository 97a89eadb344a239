package sitemap

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	data, err := Build("https://florustic.ru/", []Entry{
		Home(""),
		Static("catalog", 0.9, Daily, ""),
		City("moskva", ""),
		Product(42, "2026-10-01"),
	})
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, out, "<loc>https://florustic.ru/</loc>")
	assert.Contains(t, out, "<loc>https://florustic.ru/city/moskva</loc>")
	assert.Contains(t, out, "<lastmod>2026-10-01</lastmod>")
	assert.Equal(t, 1, strings.Count(out, "<lastmod>"))

	var parsed urlset
	require.NoError(t, xml.Unmarshal(data, &parsed))
	require.Len(t, parsed.URLs, 4)
	assert.Equal(t, "1.0", parsed.URLs[0].Priority)
	assert.Equal(t, "0.9", parsed.URLs[1].Priority)
	assert.Equal(t, "0.9", parsed.URLs[2].Priority)
	assert.Equal(t, Daily, parsed.URLs[2].ChangeFreq)
	assert.Equal(t, "0.8", parsed.URLs[3].Priority)
	assert.Equal(t, Weekly, parsed.URLs[3].ChangeFreq)
}

func TestBuildRejectsRelativePath(t *testing.T) {
	_, err := Build("https://florustic.ru", []Entry{{Path: "city/x"}})
	assert.Error(t, err)
}

func TestBuildDeterministic(t *testing.T) {
	entries := []Entry{Home(""), City("ufa", "")}
	a, err := Build("https://florustic.ru", entries)
	require.NoError(t, err)
	b, err := Build("https://florustic.ru", entries)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStaticDefaults(t *testing.T) {
	e := Static("about", 0, "", "")
	assert.Equal(t, "/about", e.Path)
	assert.Equal(t, 0.5, e.Priority)
	assert.Equal(t, Monthly, e.ChangeFreq)
}

func TestRobots(t *testing.T) {
	out := string(Robots("https://florustic.ru/", []string{"catalog", "about"}))
	assert.Contains(t, out, "User-agent: *\nAllow: /\nDisallow: /admin\n")
	assert.Contains(t, out, "Allow: /catalog\n")
	assert.Contains(t, out, "Allow: /city/*\n")
	assert.Contains(t, out, "User-agent: Yandex\n")
	assert.True(t, strings.HasSuffix(out, "Sitemap: https://florustic.ru/sitemap.xml\n"))
	assert.Equal(t, 4, strings.Count(out, "Disallow: /checkout\n"))
}

package sitemap

import (
	"fmt"
	"strings"
)

var privatePaths = []string{"/admin", "/admin/*", "/cart", "/checkout"}

// Robots renders robots.txt. staticPaths are listed as explicit Allow lines next
// to the generated city and product sections.
func Robots(baseURL string, staticPaths []string) []byte {
	base := strings.TrimRight(baseURL, "/")
	var b strings.Builder

	disallow := func() {
		for _, p := range privatePaths {
			fmt.Fprintf(&b, "Disallow: %s\n", p)
		}
	}

	b.WriteString("User-agent: *\nAllow: /\n")
	disallow()
	b.WriteString("\n")
	b.WriteString("Allow: /city/*\nAllow: /product/*\n")
	for _, p := range staticPaths {
		fmt.Fprintf(&b, "Allow: /%s\n", p)
	}

	for _, bot := range []string{"Googlebot", "Yandex", "Bingbot"} {
		fmt.Fprintf(&b, "\nUser-agent: %s\nAllow: /\n", bot)
		disallow()
	}
	for _, bot := range []string{"Twitterbot", "facebookexternalhit", "TelegramBot"} {
		fmt.Fprintf(&b, "\nUser-agent: %s\nAllow: /\n", bot)
	}

	fmt.Fprintf(&b, "\nSitemap: %s/sitemap.xml\n", base)
	return []byte(b.String())
}

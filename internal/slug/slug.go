// Package slug turns display names into URL path segments.
//
// The mapping is part of every generated URL: the storefront resolves
// /city/<slug> with the same table, so changing an entry breaks links that
// are already indexed.
package slug

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
)

// translit maps lowercase runes to their Latin replacement. Runes mapped to ""
// are dropped; separators map to "-".
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch", 'ш': "sh", 'щ': "sch", 'ъ': "",
	'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",

	' ': "-", '_': "-", '-': "-", '.': "-", '/': "-", '—': "-", '–': "-",
	'\t': "-",
}

// Slugify returns the slug for name. Names that reduce to nothing fail with
// an invalid_name error instead of producing an empty path segment.
func Slugify(name string) (string, error) {
	lowered := cases.Lower(language.Russian).String(norm.NFC.String(name))

	var b strings.Builder
	b.Grow(len(lowered))
	lastHyphen := true // suppresses leading hyphens
	for _, r := range lowered {
		var piece string
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			piece = string(r)
		default:
			mapped, ok := translit[r]
			if !ok {
				continue
			}
			piece = mapped
		}
		if piece == "" {
			continue
		}
		if piece == "-" {
			if lastHyphen {
				continue
			}
			lastHyphen = true
		} else {
			lastHyphen = false
		}
		b.WriteString(piece)
	}

	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "", errors.InvalidNameError(name)
	}
	return out, nil
}

// MustSlugify is Slugify for fixed inputs; it panics on invalid names.
func MustSlugify(name string) string {
	s, err := Slugify(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Valid reports whether s is already in slug form.
func Valid(s string) bool {
	if s == "" || s[0] == '-' || s[len(s)-1] == '-' || strings.Contains(s, "--") {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

package shell

import (
	"html"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
)

// HeadAnchor is the closing tag every shell must contain.
const HeadAnchor = "</head>"

var (
	headClosePattern = regexp.MustCompile(`(?i)</head\s*>`)
	attrPattern      = regexp.MustCompile(`([^\s"'<>/=]+)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'=<>` + "`" + `]+)))?`)
	tagNamePattern   = regexp.MustCompile(`^<[a-zA-Z][a-zA-Z0-9-]*`)
)

// splitHead returns the document up to (excluding) the first </head> and the rest.
// A </head> inside a comment or script body does not count.
func splitHead(doc string) (head, tail string, err error) {
	loc := headClosePattern.FindStringIndex(maskInert(doc))
	if loc == nil {
		return "", "", errors.MalformedTemplateError(HeadAnchor)
	}
	return doc[:loc[0]], doc[loc[0]:], nil
}

// attributes parses the attributes of a start tag. Keys are lowercased and values
// unescaped. The tag's body, if any, is not considered.
func attributes(tag string) map[string]string {
	start := strings.TrimSuffix(tag[:tagEnd(tag, 0)], ">")
	start = tagNamePattern.ReplaceAllString(start, "")
	out := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(start, -1) {
		key := strings.ToLower(m[1])
		if _, seen := out[key]; seen {
			continue
		}
		val := m[2]
		if val == "" {
			val = m[3]
		}
		if val == "" {
			val = m[4]
		}
		out[key] = html.UnescapeString(val)
	}
	return out
}

// insertBeforeClose appends snippet at the end of head, keeping the indentation
// used on the </head> line.
func insertBeforeClose(head, snippet string) string {
	nl := strings.LastIndexByte(head, '\n')
	indent := head[nl+1:]
	if nl < 0 || strings.TrimLeft(indent, " \t") != "" {
		return head + snippet
	}
	return head + snippet + "\n" + indent
}

// removeSpan cuts head[start:end]; when the span sits alone on its line the whole
// line goes with it.
func removeSpan(head string, start, end int) string {
	ls := start
	for ls > 0 && (head[ls-1] == ' ' || head[ls-1] == '\t') {
		ls--
	}
	le := end
	for le < len(head) && (head[le] == ' ' || head[le] == '\t') {
		le++
	}
	if (ls == 0 || head[ls-1] == '\n') && le < len(head) && head[le] == '\n' {
		return head[:ls] + head[le+1:]
	}
	if (ls == 0 || head[ls-1] == '\n') && le+1 < len(head) && head[le] == '\r' && head[le+1] == '\n' {
		return head[:ls] + head[le+2:]
	}
	return head[:start] + head[end:]
}

// rawTextElements hold character data that must never be matched as markup.
var rawTextElements = map[string]bool{"script": true, "style": true, "title": true}

// maskInert blanks out comments and the bodies of raw-text elements. The result
// has the same length as s, so offsets found in it index s directly. Start and
// end tags of raw-text elements are kept.
func maskInert(s string) string {
	b := []byte(s)
	lower := strings.ToLower(s)
	for i := 0; i < len(b); {
		if b[i] != '<' {
			i++
			continue
		}
		if strings.HasPrefix(s[i:], "<!--") {
			stop := len(b)
			if end := strings.Index(s[i+4:], "-->"); end >= 0 {
				stop = i + 4 + end + 3
			}
			blank(b, i, stop)
			i = stop
			continue
		}
		end := tagEnd(s, i)
		if name := startTagName(lower[i+1 : end]); rawTextElements[name] {
			stop := len(b)
			if c := strings.Index(lower[end:], "</"+name); c >= 0 {
				stop = end + c
			}
			blank(b, end, stop)
			i = stop + 1
			continue
		}
		i = end
	}
	return string(b)
}

// tagEnd returns the offset just past the '>' closing the tag that opens at i.
// Quoted attribute values may contain '>'.
func tagEnd(s string, i int) int {
	var prev byte
	for j := i + 1; j < len(s); j++ {
		c := s[j]
		switch {
		case c == '>':
			return j + 1
		case (c == '"' || c == '\'') && prev == '=':
			if k := strings.IndexByte(s[j+1:], c); k >= 0 {
				j += k + 1
			} else {
				return len(s)
			}
		}
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			prev = c
		}
	}
	return len(s)
}

func startTagName(tag string) string {
	n := 0
	for n < len(tag) && (tag[n] >= 'a' && tag[n] <= 'z' || n > 0 && tag[n] >= '0' && tag[n] <= '9') {
		n++
	}
	return tag[:n]
}

func blank(b []byte, from, to int) {
	for k := from; k < to; k++ {
		if b[k] != '\n' {
			b[k] = ' '
		}
	}
}

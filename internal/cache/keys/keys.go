// Package keys builds the Redis keys shared by the catalog snapshot store and
// the filter result cache.
package keys

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const (
	// CatalogSnapshot holds the serialized catalog.
	CatalogSnapshot = "ldapi:catalog:snapshot"

	filterNamespace = "ldapi:filter:"
)

var punctSpaces = regexp.MustCompile(`\s*([=<>!\.,\(\)\-])\s*`)

// Filter keys one filter result: collection, its resolution, filter kind and value.
func Filter(collection string, res int, kind, value string) string {
	coll := sanitize(strings.TrimSpace(collection))
	text := normalize(value)
	safe := sanitize(text)

	const maxValueLen = 96
	if len(safe) > maxValueLen {
		safe = safe[:maxValueLen]
	}

	sum := xxhash.Sum64String(kind + "|" + text)

	return fmt.Sprintf("%s%s:%d:%s:v=%s:f=%016x", filterNamespace, coll, res, kind, safe, sum)
}

// FilterPrefix matches every filter key of collection; empty matches all collections.
func FilterPrefix(collection string) string {
	if collection == "" {
		return filterNamespace
	}
	return filterNamespace + sanitize(strings.TrimSpace(collection)) + ":"
}

func normalize(s string) string {
	if s == "" {
		return ""
	}
	s = collapseASCIIWhitespace(strings.TrimSpace(s))
	return punctSpaces.ReplaceAllString(s, "$1")
}

func sanitize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		var out rune
		switch {
		case isSpace(r):
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-' || r == '.':
			out = r
		case r == ',':
			out = '~'
		default:
			// ':' is the key separator, so it is replaced along with non-ASCII runes
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

// converts any run of ASCII whitespace to a single space.
func collapseASCIIWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	wasWS := false
	for _, r := range s {
		if isSpace(r) {
			if !wasWS {
				b.WriteByte(' ')
				wasWS = true
			}
			continue
		}
		b.WriteRune(r)
		wasWS = false
	}
	return strings.TrimSpace(b.String())
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}

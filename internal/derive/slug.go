// Package derive computes fields that are derived from article and poll data.
// Everything here is pure: no I/O, no clock reads.
package derive

import (
	"regexp"
	"strings"
)

var (
	umlauts = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")
	nonSlug = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slug turns a title into a URL-safe slug. Slug(Slug(x)) == Slug(x).
// Uniqueness is the caller's problem.
func Slug(title string) string {
	s := umlauts.Replace(strings.ToLower(title))
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

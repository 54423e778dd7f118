package derive

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// WordsPerMinute is the assumed reading speed
	WordsPerMinute = 200

	// DefaultExcerptLength is the teaser length used when none is given
	DefaultExcerptLength = 160

	ellipsis = "..."
)

// ReadingTime estimates minutes to read body, never less than 1
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

var markdownRules = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`#{1,6}\s`), ""},
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), "$1"},
	{regexp.MustCompile(`\*([^*]+)\*`), "$1"},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile(`>\s`), ""},
	{regexp.MustCompile(`\n+`), " "},
}

// PlainText strips the markdown markers used in article bodies
func PlainText(markdown string) string {
	s := strings.ReplaceAll(markdown, "\r\n", "\n")
	for _, r := range markdownRules {
		s = r.pattern.ReplaceAllString(s, r.repl)
	}
	return strings.TrimSpace(s)
}

// Excerpt builds a teaser of at most maxLength characters (plus ellipsis)
// from a markdown body. A non-positive maxLength means DefaultExcerptLength.
func Excerpt(markdown string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}
	return Truncate(PlainText(markdown), maxLength)
}

// Truncate shortens text to maxLength runes, cutting at the last word
// boundary when there is one, and appends an ellipsis.
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	cut := runes[:maxLength]
	if !unicode.IsSpace(runes[maxLength]) {
		for i := len(cut) - 1; i > 0; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + ellipsis
}

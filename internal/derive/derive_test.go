package derive

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Schüler über Größe", "schueler-ueber-groesse"},
		{"Straße & Äpfel", "strasse-aepfel"},
		{"  --Leading and trailing--  ", "leading-and-trailing"},
		{"Q1/Q2: Abi 2025!!!", "q1-q2-abi-2025"},
		{"already-a-slug", "already-a-slug"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.title))
		})
	}
}

func TestSlug_IdempotentAndURLSafe(t *testing.T) {
	titles := []string{
		"Die Ära der Übermüdung",
		"Interview: Frau Müller (Mathe) über das Abitur",
		"100% Sport – 0% Ausreden",
		"ÄÖÜ äöü ß",
		"ça va? naïve café",
		"---",
		"a--b__c",
	}

	for _, title := range titles {
		once := Slug(title)
		assert.Equal(t, once, Slug(once), "slug of %q is not idempotent", title)
		if once != "" {
			assert.Regexp(t, slugShape, once)
		}
	}
}

func TestReadingTime(t *testing.T) {
	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("wort ", n))
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty body", "", 1},
		{"whitespace only", " \n\t ", 1},
		{"one word", "hallo", 1},
		{"exactly 200 words", words(200), 1},
		{"201 words", words(201), 2},
		{"400 words", words(400), 2},
		{"1000 words across lines", strings.ReplaceAll(words(1000), " ", "\n"), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadingTime(tt.body))
		})
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name string
		body string
		max  int
		want string
	}{
		{"heading and bold", "# Hello **world**", 160, "Hello world"},
		{"italic", "Das ist *wichtig*.", 160, "Das ist wichtig."},
		{"link keeps text", "Siehe [Stundenplan](https://example.org/plan) hier", 160, "Siehe Stundenplan hier"},
		{"blockquote", "> Zitat\n> weiter", 160, "Zitat weiter"},
		{"newlines collapse", "Erste Zeile\n\n\nZweite Zeile", 160, "Erste Zeile Zweite Zeile"},
		{"empty", "", 160, ""},
		{"default length", "kurz", 0, "kurz"},
		{"truncates on word boundary", "eins zwei drei vier", 12, "eins zwei..."},
		{"cut lands on a space", "eins zwei drei", 9, "eins zwei..."},
		{"single long word is hard cut", "Donaudampfschifffahrt", 5, "Donau..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excerpt(tt.body, tt.max))
		})
	}
}

func TestExcerpt_DefaultLengthBound(t *testing.T) {
	body := strings.Repeat("Wörter und Sätze ", 40)
	got := Excerpt(body, 0)

	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len([]rune(strings.TrimSuffix(got, "..."))), DefaultExcerptLength)
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"59 seconds", 59 * time.Second, "just now"},
		{"exactly 60 seconds", 60 * time.Second, "1 minute ago"},
		{"5 minutes", 5 * time.Minute, "5 minutes ago"},
		{"just under an hour", 59*time.Minute + 59*time.Second, "59 minutes ago"},
		{"exactly one hour", time.Hour, "1 hour ago"},
		{"23 hours", 23 * time.Hour, "23 hours ago"},
		{"exactly one day", 24 * time.Hour, "1 day ago"},
		{"6 days", 6 * 24 * time.Hour, "6 days ago"},
		{"exactly 7 days", 7 * 24 * time.Hour, "May 13, 2024"},
		{"future timestamp", -time.Minute, "just now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(now.Add(-tt.ago), now))
		})
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, 1, 5, 9, 7, 0, 0, time.UTC)
	assert.Equal(t, "January 5, 2024", FormatDate(ts))
	assert.Equal(t, "January 5, 2024 09:07", FormatDateTime(ts))
}

func TestPollMath(t *testing.T) {
	assert.Equal(t, 0, PollPercentage(map[string]int{"A": 0, "B": 0}, "A"))
	assert.Equal(t, 75, PollPercentage(map[string]int{"A": 3, "B": 1}, "A"))
	assert.Equal(t, 25, PollPercentage(map[string]int{"A": 3, "B": 1}, "B"))
	assert.Equal(t, 33, PollPercentage(map[string]int{"A": 1, "B": 1, "C": 1}, "C"))
	assert.Equal(t, 0, PollPercentage(map[string]int{"A": 3}, "missing"))

	assert.Equal(t, 0, TotalVotes(nil))
	assert.Equal(t, 7, TotalVotes(map[string]int{"A": 3, "B": 4}))

	assert.Equal(t, map[string]int{"A": 75, "B": 25}, PollPercentages(map[string]int{"A": 3, "B": 1}))
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("## Titel\n\nText mit **Fett**.")
	assert.NoError(t, err)
	assert.Contains(t, out, "<h2 id=\"titel\">Titel</h2>")
	assert.Contains(t, out, "<strong>Fett</strong>")

	out, err = RenderMarkdown("<script>alert(1)</script>")
	assert.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

package derive_test

import (
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/goliatone/go-folio/internal/derive"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World! 2024", "hello-world-2024"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Multiple---hyphens - here", "multiple-hyphens-here"},
		{"CamelCase Title", "camelcase-title"},
		{"!!!", ""},
		{"", ""},
		{"tabs\tand\nnewlines", "tabs-and-newlines"},
	}
	for _, tc := range cases {
		if got := derive.Slug(tc.in); got != tc.want {
			t.Fatalf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugOutputAlphabet(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9-]*$`)
	inputs := []string{
		"Ünïcode Smörgåsbord",
		"semi;colons & ampersands",
		"100% effort!!",
		"--edge--case--",
	}
	for _, in := range inputs {
		got := derive.Slug(in)
		if !valid.MatchString(got) {
			t.Fatalf("Slug(%q) = %q contains invalid characters", in, got)
		}
		if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") {
			t.Fatalf("Slug(%q) = %q has leading/trailing hyphen", in, got)
		}
		if strings.Contains(got, "--") {
			t.Fatalf("Slug(%q) = %q contains a hyphen run", in, got)
		}
	}
}

func TestReadingTime(t *testing.T) {
	if got := derive.ReadingTime(""); got != 0 {
		t.Fatalf("empty content: got %d, want 0", got)
	}
	if got := derive.ReadingTime("one"); got != 1 {
		t.Fatalf("single word: got %d, want 1", got)
	}
	if got := derive.ReadingTime(strings.Repeat("word ", 200)); got != 1 {
		t.Fatalf("200 words: got %d, want 1", got)
	}
	if got := derive.ReadingTime(strings.Repeat("word ", 401)); got != 3 {
		t.Fatalf("401 words: got %d, want 3", got)
	}
	if got := derive.ReadingTime("<p>" + strings.Repeat("word ", 250) + "</p>"); got != 2 {
		t.Fatalf("markup must not count as words: got %d, want 2", got)
	}
}

func TestExcerpt(t *testing.T) {
	long := "<p>" + strings.Repeat("a ", 100) + "</p>"
	got := derive.Excerpt(long, 160)
	if len(got) > 164 {
		t.Fatalf("excerpt too long: %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if strings.ContainsAny(got, "<>") {
		t.Fatalf("expected markup stripped, got %q", got)
	}

	short := "<b>short</b> text"
	if got := derive.Excerpt(short, 160); got != "short text" {
		t.Fatalf("short content must pass through, got %q", got)
	}
}

func TestExcerptNeverSplitsRunes(t *testing.T) {
	// "é" is two bytes; a cut landing inside it must back off to the rune
	// boundary instead of emitting invalid UTF-8.
	text := "caf" + strings.Repeat("é", 100)
	for maxLen := 1; maxLen < 20; maxLen++ {
		got := derive.Excerpt(text, maxLen)
		if !utf8.ValidString(got) {
			t.Fatalf("maxLen %d: invalid UTF-8 excerpt %q", maxLen, got)
		}
		if len(got) > maxLen+3 {
			t.Fatalf("maxLen %d: excerpt too long: %q", maxLen, got)
		}
	}
}

func TestStripHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<p>hello</p>", "hello"},
		{"<div><span>nested</span> content</div>", "nested content"},
		{"<img src='x'>", ""},
	}
	for _, tc := range cases {
		if got := derive.StripHTML(tc.in); got != tc.want {
			t.Fatalf("StripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatFileSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{5242880, "5 MB"},
		{1073741824, "1 GB"},
	}
	for _, tc := range cases {
		if got := derive.FormatFileSize(tc.in); got != tc.want {
			t.Fatalf("FormatFileSize(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

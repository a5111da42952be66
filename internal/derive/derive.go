// Package derive holds the pure policy functions that compute blog and
// asset fields from other fields: slugs, excerpts, reading time and
// human-readable file sizes. Everything here is side-effect free.
package derive

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	// wordsPerMinute is the reading speed assumed by ReadingTime.
	wordsPerMinute = 200
	// ExcerptLength is the default excerpt cut applied by blog derivation.
	ExcerptLength = 160
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugCollapse = regexp.MustCompile(`-+`)
)

// Slug converts a title into a URL-safe identifier: lower-cased, characters
// outside [a-z0-9\s-] stripped, whitespace runs collapsed to single hyphens,
// hyphen runs collapsed, no leading or trailing hyphen.
func Slug(title string) string {
	out := strings.ToLower(title)
	out = slugStrip.ReplaceAllString(out, "")
	out = slugSpaces.ReplaceAllString(out, "-")
	out = slugCollapse.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// ReadingTime estimates minutes to read the content at 200 words per minute.
// Empty content yields 0; any non-empty content yields at least 1.
func ReadingTime(htmlOrText string) int {
	words := strings.Fields(StripHTML(htmlOrText))
	if len(words) == 0 {
		return 0
	}
	minutes := int(math.Ceil(float64(len(words)) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Excerpt strips tags and hard-cuts at maxLen characters, trimming trailing
// whitespace and appending an ellipsis when truncated. The cut is not
// word-boundary aware; it can split mid-word, but never mid-rune.
func Excerpt(htmlOrText string, maxLen int) string {
	text := StripHTML(htmlOrText)
	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return strings.TrimRight(text[:cut], " \t\n") + "..."
}

// StripHTML removes markup and returns the text content. Malformed input
// falls back to the raw string with angle brackets dropped rather than
// erroring; callers feed user-typed fragments, not validated documents.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(tokenizer.Text())
		}
	}
}

var fileSizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with base-1024 scaling, two decimal
// places and the largest unit that keeps the scaled value at or above 1.
func FormatFileSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(fileSizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%s %s", trimDecimal(value), fileSizeUnits[unit])
}

// trimDecimal formats with up to two decimals, dropping trailing zeros so
// 1536 bytes renders as "1.5 KB" rather than "1.50 KB".
func trimDecimal(v float64) string {
	rounded := math.Round(v*100) / 100
	out := fmt.Sprintf("%.2f", rounded)
	out = strings.TrimRight(out, "0")
	out = strings.TrimSuffix(out, ".")
	return out
}

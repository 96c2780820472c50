package content

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	slugStrip   = regexp.MustCompile(`[^\w\s-]`)
	slugSpace   = regexp.MustCompile(`\s+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// Slugify derives a URL slug from a title: lowercase, trimmed, special
// characters removed, whitespace runs turned into single hyphens.
func Slugify(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "-")
	return slugHyphens.ReplaceAllString(s, "-")
}

var (
	richPolicy  = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// SanitizeHTML keeps the formatting a rich-text editor produces and drops
// scripts, event handlers and unsafe URLs.
func SanitizeHTML(s string) string {
	return richPolicy.Sanitize(s)
}

// PlainText strips all markup and collapses whitespace, for table cells.
func PlainText(s string) string {
	text := html.UnescapeString(plainPolicy.Sanitize(s))
	return strings.TrimSpace(spaceRuns.ReplaceAllString(text, " "))
}

// FilterByTitle keeps the categories whose title contains query, ignoring
// case. An empty query keeps everything.
func FilterByTitle(categories []Category, query string) []Category {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if q == "" || strings.Contains(strings.ToLower(c.Title), q) {
			out = append(out, c)
		}
	}
	return out
}

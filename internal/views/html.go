package views

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = bluemonday.StrictPolicy()
	blockBreak  = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|h[1-6])>`)
	listItem    = regexp.MustCompile(`(?i)<li[^>]*>`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
)

// StripHTML turns a rich-text description into plain text suitable for the
// markdown preview. Block boundaries become line breaks and list items become
// markdown bullets; every other tag is dropped.
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	s = blockBreak.ReplaceAllString(s, "\n")
	s = listItem.ReplaceAllString(s, "- ")
	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Package htmlsanitize cleans user-supplied text before it is stored.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc allows basic formatting (paragraphs, emphasis, lists, links).
	ugc = bluemonday.UGCPolicy()
	// strict removes every tag.
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps safe formatting markup and drops scripts, event handlers,
// iframes and javascript: links. Used for event descriptions.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ugc.Sanitize(s))
}

// PlainText removes all markup. Used for post text and names.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strict.Sanitize(s))
}

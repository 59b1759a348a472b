// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize cleans member-supplied text before it is stored.
// Profile bios may carry limited formatting; every other free-text field is
// reduced to plain text.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugcPolicy allows user-generated-content formatting: paragraphs,
	// emphasis, lists, blockquotes, and links (rel="nofollow" enforced).
	ugcPolicy = bluemonday.UGCPolicy()

	// strictPolicy strips all markup, leaving text content only.
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans a rich-text field, keeping safe formatting and dropping
// scripts, event handlers, and javascript: URLs.
func Sanitize(s string) string {
	return ugcPolicy.Sanitize(s)
}

// StripTags removes all markup from a plain-text field.
func StripTags(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// Package htmlsanitize cleans free-text fields submitted with job postings.
//
// Purpose may carry light formatting and goes through a UGC policy. Every
// other text field is plain text and has all markup stripped.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  = newRichPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("table", "td", "th")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	return p
}

// Sanitize keeps safe formatting markup and removes scripts, event handlers
// and unsafe URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(richPolicy.Sanitize(s))
}

// StripTags removes all markup and trims the result. Entities produced by
// the policy for &, < and > are decoded back so plain text round-trips.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	out := plainPolicy.Sanitize(s)
	out = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#39;", "'", "&#34;", `"`).Replace(out)
	return strings.TrimSpace(out)
}

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	if s == "" {
		return true
	}
	i := strings.Index(s, "<")
	if i < 0 {
		return true
	}
	return !strings.Contains(s[i:], ">") || !looksLikeTag(s[i+1:])
}

func looksLikeTag(rest string) bool {
	if rest == "" {
		return false
	}
	c := rest[0]
	return c == '/' || c == '!' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

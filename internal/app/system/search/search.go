// Package search holds the job list filter: a free-text term and a set of
// categories, parsed from the query string and folded for matching.
package search

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
	"github.com/felix-ong/volunteer-board/internal/app/system/htmlsanitize"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
)

// Filter narrows a job listing.
//
// Term matches case- and diacritic-insensitively as a substring of the
// title, purpose, organizer or skills. Categories match with OR semantics:
// a job qualifies when it carries any of them. Empty fields match everything.
type Filter struct {
	Term       string
	Categories []string
}

// FromRequest reads "search" and "categories" (comma separated) from r.
func FromRequest(r *http.Request) Filter {
	return Filter{
		Term:       query.Search(r, "search"),
		Categories: ParseCategories(query.Get(r, "categories")),
	}
}

// ParseCategories splits a comma separated list, trimming blanks and
// dropping duplicates while keeping first-seen order.
func ParseCategories(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		c := strings.TrimSpace(part)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Validate rejects categories outside the fixed enumeration.
func (f Filter) Validate() error {
	for _, c := range f.Categories {
		if !models.IsCategory(c) {
			return apperr.ValidationFailed("categories", "unknown category: "+c)
		}
	}
	return nil
}

// FoldedTerm returns the term trimmed and folded the same way the *_ci
// columns are, or "" when there is no term.
func (f Filter) FoldedTerm() string {
	return text.Fold(strings.TrimSpace(f.Term))
}

// Matches applies the filter to a job in memory. It mirrors the Mongo query
// built by the job store.
func (f Filter) Matches(j models.Job) bool {
	if term := f.FoldedTerm(); term != "" {
		hit := false
		for _, field := range []string{j.Title, htmlsanitize.StripTags(j.Purpose), j.Organizer, j.Skills} {
			if strings.Contains(text.Fold(field), term) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return AnyCategory(j.Categories, f.Categories)
}

// AnyCategory reports whether have intersects want. An empty want matches.
func AnyCategory(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// Package catalog derives lightweight document summaries for index pages and
// provides a plain substring filter over them.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/softdev-labs/learnsite/internal/content"
)

// Summary is the listing projection of one document.
type Summary struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Summaries projects every document in the library, in slug order.
func Summaries(library *content.Library) []Summary {
	docs := library.All()
	summaries := make([]Summary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, Summary{
			Slug:        d.Slug,
			Title:       d.Title,
			Description: d.Description,
		})
	}
	return summaries
}

// Filter returns the summaries whose title or description contains query,
// case-insensitively. An empty query returns the input unchanged. No ranking
// or fuzziness; the list is small and fully loaded.
func Filter(summaries []Summary, query string) []Summary {
	if query == "" {
		return summaries
	}

	// Casers are stateful, so build one per call rather than sharing.
	fold := cases.Fold()
	needle := fold.String(query)
	var matched []Summary
	for _, s := range summaries {
		if strings.Contains(fold.String(s.Title), needle) ||
			strings.Contains(fold.String(s.Description), needle) {
			matched = append(matched, s)
		}
	}
	return matched
}

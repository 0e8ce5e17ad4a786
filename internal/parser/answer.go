package parser

import (
	"fmt"

	"costa-assist/internal/model"
)

// Answer is a composed reply together with the link and filters it was built from
type Answer struct {
	Text    string               `json:"answer"`
	Link    string               `json:"link"`
	Summary string               `json:"summary"`
	Filters *model.ParsedFilters `json:"filters"`
}

// ComposeAnswer builds the user-facing reply for a question. When filters is
// non-nil it is used as-is and the question is not parsed at all.
func ComposeAnswer(question, locale string, filters *model.ParsedFilters) Answer {
	if locale == "" {
		locale = DefaultLocale
	}
	if filters == nil {
		filters = ExtractFilters(question)
	}

	link := BuildLink(filters, locale)
	summary := BuildSummary(filters)
	if summary == "" {
		summary = "properties"
	}

	return Answer{
		Text:    fmt.Sprintf("I found %s that match your request. Tap here to view them: %s", summary, link),
		Link:    link,
		Summary: summary,
		Filters: filters,
	}
}

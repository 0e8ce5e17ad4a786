package model

import (
	"bytes"
	"encoding/json"
)

// CorrectionRequest represents a request to rebuild a bad chat answer
type CorrectionRequest struct {
	Question  string         `json:"question" binding:"required"`
	BadAnswer string         `json:"badAnswer" binding:"required"`
	Locale    string         `json:"locale,omitempty"`
	Filters   *ParsedFilters `json:"filters,omitempty"`
}

// UnmarshalJSON keeps filters only when the payload holds a JSON object.
// Strings, arrays, numbers and null leave Filters nil so the question is parsed.
func (r *CorrectionRequest) UnmarshalJSON(data []byte) error {
	type plain CorrectionRequest
	var raw struct {
		plain
		Filters json.RawMessage `json:"filters"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = CorrectionRequest(raw.plain)
	r.Filters = nil

	filters := bytes.TrimSpace(raw.Filters)
	if len(filters) == 0 || filters[0] != '{' {
		return nil
	}
	var f ParsedFilters
	if err := json.Unmarshal(filters, &f); err != nil {
		return err
	}
	r.Filters = &f
	return nil
}

// CorrectionResponse represents the corrected answer
type CorrectionResponse struct {
	Success bool           `json:"success"`
	Answer  string         `json:"answer"`
	Link    string         `json:"link,omitempty"`
	Filters *ParsedFilters `json:"filters,omitempty"`
}

// ChatRequest represents a chat widget message
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	Locale    string `json:"locale,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// ChatResponse represents the assistant reply to a chat message
type ChatResponse struct {
	ChatID      string          `json:"chatId"`
	Reply       string          `json:"reply"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Filters     *ParsedFilters  `json:"filters"`
	Region      *Region         `json:"region,omitempty"`
	Link        string          `json:"link"`
	Summary     string          `json:"summary"`
	Listings    []RankedListing `json:"listings"`
	Took        int64           `json:"took_ms"` // Response time in milliseconds
}

// Region is a known place resolved from free text
type Region struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ParseRequest represents a request to preview the filters of a question
type ParseRequest struct {
	Question string `json:"question" binding:"required"`
	Locale   string `json:"locale,omitempty"`
}

// ParseResponse represents extracted filters with the derived link and summary
type ParseResponse struct {
	Filters *ParsedFilters `json:"filters"`
	Link    string         `json:"link"`
	Summary string         `json:"summary"`
	Region  *Region        `json:"region,omitempty"`
}

// PropertySearchResponse is the payload of the property API search endpoint
type PropertySearchResponse struct {
	Results []Listing `json:"results"`
	Total   int       `json:"total"`
}

// FeedbackRequest represents a rating of a chat reply
type FeedbackRequest struct {
	ChatID  string `json:"chatId" binding:"required"`
	Rating  string `json:"rating" binding:"required"` // up, down
	Comment string `json:"comment,omitempty"`
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

package parser

import (
	"costa-assist/internal/model"
)

// ExtractFilters runs every field extractor once over the question and
// collects whatever they found. Fields that were not mentioned stay nil.
func ExtractFilters(question string) *model.ParsedFilters {
	f := &model.ParsedFilters{}

	if loc, ok := ExtractLocation(question); ok {
		f.Location = &loc
	}
	if pt, ok := ExtractPropertyType(question); ok {
		f.PropertyType = &pt
	}

	price := ExtractPriceRange(question)
	f.MinPrice = price.Min
	f.MaxPrice = price.Max

	if n, ok := ExtractBedrooms(question); ok {
		f.MinBedrooms = &n
	}
	if n, ok := ExtractBathrooms(question); ok {
		f.MinBathrooms = &n
	}
	if n, ok := ExtractLimit(question); ok {
		f.Limit = &n
	}
	// unknown means "not mentioned" for a parsed question
	if intent := DetectIntent(question); intent != model.IntentUnknown {
		f.Intent = &intent
	}

	return f
}

// ParseQuestion is an alias of ExtractFilters kept for the chat pipeline
func ParseQuestion(question string) *model.ParsedFilters {
	return ExtractFilters(question)
}

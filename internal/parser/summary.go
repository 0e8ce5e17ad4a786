package parser

import (
	"fmt"
	"strconv"
	"strings"

	"costa-assist/internal/model"
)

// BuildSummary renders filters as an English phrase such as
// "villas in Ronda under €300,000 with at least 3 bedrooms".
func BuildSummary(f *model.ParsedFilters) string {
	if f == nil {
		f = &model.ParsedFilters{}
	}
	var parts []string

	if isSet(f.Limit) {
		parts = append(parts, fmt.Sprintf("Top %d", *f.Limit))
	}

	if f.PropertyType != nil && *f.PropertyType != "" {
		parts = append(parts, Pluralize(string(*f.PropertyType)))
	} else {
		parts = append(parts, "properties")
	}

	if f.Location != nil && *f.Location != "" {
		parts = append(parts, "in "+*f.Location)
	}

	switch {
	case isSet(f.MinPrice) && isSet(f.MaxPrice):
		parts = append(parts, fmt.Sprintf("between %s and %s", FormatEuro(*f.MinPrice), FormatEuro(*f.MaxPrice)))
	case isSet(f.MaxPrice):
		parts = append(parts, "under "+FormatEuro(*f.MaxPrice))
	case isSet(f.MinPrice):
		parts = append(parts, "above "+FormatEuro(*f.MinPrice))
	}

	if isSet(f.MinBedrooms) {
		parts = append(parts, fmt.Sprintf("with at least %d bedrooms", *f.MinBedrooms))
	}
	if isSet(f.MinBathrooms) {
		parts = append(parts, fmt.Sprintf("and %d+ bathrooms", *f.MinBathrooms))
	}

	return strings.Join(parts, " ")
}

// Pluralize appends "s" unless the word already ends in one
func Pluralize(word string) string {
	if strings.HasSuffix(word, "s") {
		return word
	}
	return word + "s"
}

// FormatEuro formats an amount with US thousands grouping, e.g. €300,000
func FormatEuro(amount int) string {
	digits := strconv.Itoa(amount)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return sign + "€" + b.String()
}

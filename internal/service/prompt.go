package service

import (
	"fmt"
	"strings"

	"costa-assist/internal/model"
	"costa-assist/internal/parser"
)

const replyFormatJSON = `Respond ONLY with a JSON object of the form
{"reply": "<your answer>", "suggestions": ["<follow-up question>", ...]}
with at most 3 short suggestions.`

const replyFormatText = `Respond with the answer text only, no JSON and no markdown headings.`

// buildMessages assembles the conversation sent to the LLM for one chat turn
func buildMessages(
	message, locale string,
	filters *model.ParsedFilters,
	region *model.Region,
	link, summary string,
	listings []model.RankedListing,
	guidance *model.Correction,
	asJSON bool,
) []ChatMessage {
	var sys strings.Builder
	sys.WriteString("You are the assistant of a real estate agency selling homes in inland Andalusia and on the Costa del Sol. ")
	fmt.Fprintf(&sys, "Answer in %s. Be brief and friendly. Only mention properties listed below; never invent listings or prices.\n", parser.LanguageName(locale))

	if summary != "" {
		fmt.Fprintf(&sys, "\nThe visitor is looking for: %s.\n", summary)
	}
	if region != nil {
		fmt.Fprintf(&sys, "Resolved area: %s.\n", region.Name)
	}
	fmt.Fprintf(&sys, "Link to the full results: %s\n", link)

	if len(listings) == 0 {
		sys.WriteString("\nNo matching properties were found. Suggest widening the search.\n")
	} else {
		sys.WriteString("\nMatching properties:\n")
		for i, l := range listings {
			fmt.Fprintf(&sys, "%d. %s\n", i+1, describeListing(l.Listing))
		}
	}

	if guidance != nil {
		fmt.Fprintf(&sys, "\nA previous answer to a similar question was corrected by staff. Prefer this answer's approach:\n%s\n", guidance.Answer)
	}

	sys.WriteString("\n")
	if asJSON {
		sys.WriteString(replyFormatJSON)
	} else {
		sys.WriteString(replyFormatText)
	}

	return []ChatMessage{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: message},
	}
}

// describeListing renders a listing as one prompt line
func describeListing(l model.Listing) string {
	parts := []string{l.Title}
	if l.Town != "" {
		parts = append(parts, l.Town)
	}
	if l.Price != nil {
		parts = append(parts, parser.FormatEuro(int(*l.Price)))
	}
	if l.Bedrooms != nil {
		parts = append(parts, fmt.Sprintf("%d bed", *l.Bedrooms))
	}
	if l.Bathrooms != nil {
		parts = append(parts, fmt.Sprintf("%d bath", *l.Bathrooms))
	}
	if l.BuiltAreaM2 != nil {
		parts = append(parts, fmt.Sprintf("%.0f m² built", *l.BuiltAreaM2))
	}
	if l.URL != "" {
		parts = append(parts, l.URL)
	}
	return strings.Join(parts, " | ")
}

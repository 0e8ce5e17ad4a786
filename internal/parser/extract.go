package parser

import (
	"regexp"
	"strconv"
	"strings"

	"costa-assist/internal/model"
)

var (
	// Go regexp has no lookahead, so the terminator is consumed; only the capture is used.
	// Terminator words match as prefixes: "without" and "overlooking" end a place too.
	locationRe = regexp.MustCompile(`(?i)\b(?:in|near|around|at)\s+([\p{L}\s-]+?)(?:[?.,]|$|\s+(?:with|under|below|over|price|budget))`)
	// Anything that is not a letter, space or hyphen
	locationJunkRe = regexp.MustCompile(`[^\p{L} \-]`)

	bedroomsRe  = regexp.MustCompile(`(?i)(\d+)[\s-]*(?:bedrooms|bedroom|beds|bed|bhk)\b`)
	bathroomsRe = regexp.MustCompile(`(?i)(\d+)[\s-]*(?:bathrooms|bathroom|baths|bath|toilets|toilet)\b`)
	limitRe     = regexp.MustCompile(`(?i)\b(?:top|best)\s+(\d+)\b`)
)

const minLocationLength = 3

type propertyTypeAliases struct {
	propertyType model.PropertyType
	aliases      []string
}

// Scanned in order; "property" is the catch-all and must stay last
var propertyTypeTable = []propertyTypeAliases{
	{model.PropertyTypeApartment, []string{"apartment", "apartments", "flat", "flats", "penthouse", "penthouses", "studio", "studios"}},
	{model.PropertyTypeVilla, []string{"villa", "villas"}},
	{model.PropertyTypeTownhouse, []string{"townhouse", "townhouses", "town house", "town houses", "terraced house"}},
	{model.PropertyTypeCottage, []string{"cottage", "cottages", "country house", "country houses", "finca", "farmhouse"}},
	{model.PropertyTypeProperty, []string{"property", "properties", "home", "homes", "house", "houses", "listing", "listings"}},
}

type intentKeywords struct {
	intent  model.Intent
	pattern *regexp.Regexp
}

// First matching group wins. Keywords only anchor at the start of a word so
// that "rental" counts as rent but "current" does not.
var intentTable = []intentKeywords{
	{model.IntentBuy, regexp.MustCompile(`(?i)\b(?:buy|purchase|looking for)`)},
	{model.IntentSell, regexp.MustCompile(`(?i)\b(?:sell|list my property|valuation)`)},
	{model.IntentRent, regexp.MustCompile(`(?i)\b(?:rent|rental|tenant)`)},
	{model.IntentInfo, regexp.MustCompile(`(?i)\b(?:information|info|details|process|guide)`)},
}

// ExtractLocation returns the place name following in/near/around/at.
// Only the first match is considered; captures shorter than 3 characters are discarded.
func ExtractLocation(text string) (string, bool) {
	m := locationRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	cleaned := NormalizeWhitespace(locationJunkRe.ReplaceAllString(m[1], ""))
	if len([]rune(cleaned)) < minLocationLength {
		return "", false
	}
	return CapitalizeWords(cleaned), true
}

// ExtractPropertyType returns the first canonical category whose alias appears in text
func ExtractPropertyType(text string) (model.PropertyType, bool) {
	lower := strings.ToLower(text)
	for _, entry := range propertyTypeTable {
		for _, alias := range entry.aliases {
			if strings.Contains(lower, alias) {
				return entry.propertyType, true
			}
		}
	}
	return "", false
}

// ExtractBedrooms returns the count in phrases like "3 bed" or "2 bhk"
func ExtractBedrooms(text string) (int, bool) {
	return firstInt(bedroomsRe, text)
}

// ExtractBathrooms returns the count in phrases like "2 baths" or "1 toilet"
func ExtractBathrooms(text string) (int, bool) {
	return firstInt(bathroomsRe, text)
}

// ExtractLimit returns N from "top N" or "best N"
func ExtractLimit(text string) (int, bool) {
	return firstInt(limitRe, text)
}

// DetectIntent classifies the question into buy, sell, rent or info, or unknown when nothing matches
func DetectIntent(text string) model.Intent {
	for _, entry := range intentTable {
		if entry.pattern.MatchString(text) {
			return entry.intent
		}
	}
	return model.IntentUnknown
}

func firstInt(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// Grouped thousands ("300,000", "1 500 000") or a plain decimal ("250000", "1.5")
	numberPattern = `(\d{1,3}(?:[, ]\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`
	unitPattern   = `(?:\s*(thousand|million|lakhs|lakh|k|m)\b)?`
	amountPattern = `[€$£]?\s*` + numberPattern + unitPattern
)

var (
	priceBetweenRe = regexp.MustCompile(`(?i)\b(?:between|from)\s+` + amountPattern + `\s*(?:and|to|-)\s*` + amountPattern)
	priceMaxRe     = regexp.MustCompile(`(?i)\b(?:under|below|less\s+than|upto|up\s+to|maximum|max)\s*` + amountPattern)
	priceMinRe     = regexp.MustCompile(`(?i)\b(?:over|above|more\s+than|minimum|min)\s*` + amountPattern)
	priceLakhRe    = regexp.MustCompile(`(?i)` + numberPattern + `\s*(lakhs?)\b`)
)

// float64(math.MaxInt64) rounds up to 2^63, so amounts must stay strictly below it
const maxAmount = float64(math.MaxInt64)

var unitMultipliers = map[string]float64{
	"k":        1_000,
	"thousand": 1_000,
	"m":        1_000_000,
	"million":  1_000_000,
	"lakh":     100_000,
	"lakhs":    100_000,
}

// PriceRange holds the price bounds found in a question
type PriceRange struct {
	Min *int
	Max *int
}

// ExtractPriceRange finds price bounds. A between/from range wins outright;
// otherwise max and min phrases are read independently, with a bare lakh
// amount as a last resort for the maximum.
func ExtractPriceRange(text string) PriceRange {
	var r PriceRange

	if m := priceBetweenRe.FindStringSubmatch(text); m != nil {
		r.Min = toIntPtr(ToNumberWithUnit(m[1], m[2]))
		r.Max = toIntPtr(ToNumberWithUnit(m[3], m[4]))
		return r
	}

	if m := priceMaxRe.FindStringSubmatch(text); m != nil {
		r.Max = toIntPtr(ToNumberWithUnit(m[1], m[2]))
	}

	if m := priceMinRe.FindStringSubmatch(text); m != nil {
		r.Min = toIntPtr(ToNumberWithUnit(m[1], m[2]))
	}

	if r.Max == nil {
		if m := priceLakhRe.FindStringSubmatch(text); m != nil {
			r.Max = toIntPtr(ToNumberWithUnit(m[1], m[2]))
		}
	}

	return r
}

// ToNumberWithUnit parses a numeric token with an optional k/thousand,
// m/million or lakh suffix and rounds it to the nearest integer.
// It returns false when the token is not a number or the amount does not
// fit a non-negative int.
func ToNumberWithUnit(num, unit string) (int, bool) {
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(num))
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	if multiplier, ok := unitMultipliers[strings.ToLower(strings.TrimSpace(unit))]; ok {
		value *= multiplier
	}
	value = math.Round(value)
	if value < 0 || value >= maxAmount {
		return 0, false
	}
	return int(value), true
}

func toIntPtr(v int, ok bool) *int {
	if !ok {
		return nil
	}
	return &v
}

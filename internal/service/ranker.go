package service

import (
	"math"
	"sort"
	"strings"
	"time"

	"costa-assist/internal/model"
	"costa-assist/internal/utils"
)

// Match reason constants
const (
	ReasonTypeMatch      = "Property type match"
	ReasonLocationMatch  = "Location match"
	ReasonBedroomsMatch  = "Enough bedrooms"
	ReasonBathroomsMatch = "Enough bathrooms"
	ReasonPriceMatch     = "Price within budget"
	ReasonNewlyListed    = "Newly listed"
	ReasonGeneralMatch   = "General match"
)

// Ranker scores property API listings against parsed filters
type Ranker struct {
	weightMatch   float64
	weightPrice   float64
	weightRecency float64
	now           func() time.Time
}

// NewRanker creates a new ranker with specified weights
func NewRanker(weightMatch, weightPrice, weightRecency float64) *Ranker {
	return &Ranker{
		weightMatch:   weightMatch,
		weightPrice:   weightPrice,
		weightRecency: weightRecency,
		now:           time.Now,
	}
}

// RankListings scores and sorts listings, best first. Listings with equal
// scores keep the order the API returned them in.
func (r *Ranker) RankListings(listings []model.Listing, filters *model.ParsedFilters) []model.RankedListing {
	results := make([]model.RankedListing, 0, len(listings))

	for _, listing := range listings {
		matchScore, reasons := r.calculateMatchScore(listing, filters)
		priceScore := r.calculatePriceScore(listing.Price, filters)
		recencyScore := r.calculateRecencyScore(listing.ListedDate)

		if priceScore > 0.8 && filters != nil && (filters.MinPrice != nil || filters.MaxPrice != nil) {
			reasons = append(reasons, ReasonPriceMatch)
		}
		if listing.ListedDate != nil && r.now().Sub(*listing.ListedDate) < 7*24*time.Hour {
			reasons = append(reasons, ReasonNewlyListed)
		}
		if len(reasons) == 0 {
			reasons = append(reasons, ReasonGeneralMatch)
		}

		results = append(results, model.RankedListing{
			Listing: listing,
			Score: (r.weightMatch * matchScore) +
				(r.weightPrice * priceScore) +
				(r.weightRecency * recencyScore),
			MatchedReasons: reasons,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// calculateMatchScore returns the share of requested criteria the listing
// meets. Nothing requested scores 1.
func (r *Ranker) calculateMatchScore(listing model.Listing, filters *model.ParsedFilters) (float64, []string) {
	reasons := []string{}
	if filters == nil {
		return 1.0, reasons
	}

	criteria, met := 0, 0
	check := func(ok bool, reason string) {
		criteria++
		if ok {
			met++
			reasons = append(reasons, reason)
		}
	}

	if filters.PropertyType != nil && *filters.PropertyType != model.PropertyTypeProperty {
		check(strings.EqualFold(listing.PropertyType, string(*filters.PropertyType)), ReasonTypeMatch)
	}
	if filters.Location != nil {
		check(listing.Town != "" && utils.FuzzyMatchPlace(listing.Town, *filters.Location), ReasonLocationMatch)
	}
	if filters.MinBedrooms != nil {
		check(listing.Bedrooms != nil && *listing.Bedrooms >= *filters.MinBedrooms, ReasonBedroomsMatch)
	}
	if filters.MinBathrooms != nil {
		check(listing.Bathrooms != nil && *listing.Bathrooms >= *filters.MinBathrooms, ReasonBathroomsMatch)
	}

	if criteria == 0 {
		return 1.0, reasons
	}
	return float64(met) / float64(criteria), reasons
}

// calculatePriceScore calculates how well the price matches the budget
func (r *Ranker) calculatePriceScore(price *float64, filters *model.ParsedFilters) float64 {
	if price == nil {
		return 0.5 // Neutral score if no price
	}

	if filters == nil || (filters.MinPrice == nil && filters.MaxPrice == nil) {
		return 1.0
	}

	actualPrice := *price

	if filters.MinPrice != nil && filters.MaxPrice != nil {
		minPrice := float64(*filters.MinPrice)
		maxPrice := float64(*filters.MaxPrice)

		if actualPrice < minPrice || actualPrice > maxPrice {
			return 0.0
		}

		// Within range, score based on distance from midpoint
		midpoint := (minPrice + maxPrice) / 2
		priceRange := maxPrice - minPrice
		if priceRange == 0 {
			return 1.0
		}

		score := 1.0 - (math.Abs(actualPrice-midpoint) / (priceRange / 2))
		return math.Max(score, 0)
	}

	if filters.MinPrice != nil {
		if actualPrice < float64(*filters.MinPrice) {
			return 0.0
		}
		return 1.0
	}

	maxPrice := float64(*filters.MaxPrice)
	if actualPrice > maxPrice {
		return 0.0
	}
	if maxPrice == 0 {
		return 1.0
	}
	// Closer to max is better
	return math.Min(actualPrice/maxPrice, 1.0)
}

// calculateRecencyScore decays exponentially with listing age:
// ~0.74 after 30 days, ~0.41 after 90
func (r *Ranker) calculateRecencyScore(listedDate *time.Time) float64 {
	if listedDate == nil {
		return 0.5 // Neutral score if no date
	}

	daysSinceListed := r.now().Sub(*listedDate).Hours() / 24
	score := math.Exp(-0.01 * daysSinceListed)

	return math.Max(0, math.Min(score, 1.0))
}

package model

import (
	"fmt"
)

// PropertyType is a canonical property category
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeVilla     PropertyType = "villa"
	PropertyTypeTownhouse PropertyType = "townhouse"
	PropertyTypeCottage   PropertyType = "cottage"
	PropertyTypeProperty  PropertyType = "property"
)

// Valid reports whether t is one of the canonical categories
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeVilla, PropertyTypeTownhouse, PropertyTypeCottage, PropertyTypeProperty:
		return true
	}
	return false
}

// Intent is a coarse classification of what the user wants
type Intent string

const (
	IntentBuy     Intent = "buy"
	IntentSell    Intent = "sell"
	IntentRent    Intent = "rent"
	IntentInfo    Intent = "info"
	IntentUnknown Intent = "unknown"
)

// Valid reports whether i is a known intent
func (i Intent) Valid() bool {
	switch i {
	case IntentBuy, IntentSell, IntentRent, IntentInfo, IntentUnknown:
		return true
	}
	return false
}

// ParsedFilters represents the search filters extracted from a free-text question.
// A nil field means the question did not mention it.
type ParsedFilters struct {
	Location     *string       `json:"location,omitempty"`
	PropertyType *PropertyType `json:"propertyType,omitempty"`
	MinPrice     *int          `json:"minPrice,omitempty"`
	MaxPrice     *int          `json:"maxPrice,omitempty"`
	MinBedrooms  *int          `json:"minBedrooms,omitempty"`
	MinBathrooms *int          `json:"minBathrooms,omitempty"`
	Limit        *int          `json:"limit,omitempty"`
	Intent       *Intent       `json:"intent,omitempty"`
}

// IsEmpty returns true when no field is set
func (f *ParsedFilters) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.Location == nil && f.PropertyType == nil &&
		f.MinPrice == nil && f.MaxPrice == nil &&
		f.MinBedrooms == nil && f.MinBathrooms == nil &&
		f.Limit == nil && f.Intent == nil
}

// Validate checks caller-supplied filters against the same invariants the parser guarantees
func (f *ParsedFilters) Validate() error {
	if f == nil {
		return nil
	}
	if f.PropertyType != nil && !f.PropertyType.Valid() {
		return fmt.Errorf("invalid propertyType: %q, must be one of: apartment, villa, townhouse, cottage, property", *f.PropertyType)
	}
	if f.Intent != nil && !f.Intent.Valid() {
		return fmt.Errorf("invalid intent: %q, must be one of: buy, sell, rent, info, unknown", *f.Intent)
	}

	numbers := []struct {
		name  string
		value *int
	}{
		{"minPrice", f.MinPrice},
		{"maxPrice", f.MaxPrice},
		{"minBedrooms", f.MinBedrooms},
		{"minBathrooms", f.MinBathrooms},
		{"limit", f.Limit},
	}
	for _, n := range numbers {
		if n.value != nil && *n.value < 0 {
			return fmt.Errorf("%s cannot be negative", n.name)
		}
	}
	return nil
}

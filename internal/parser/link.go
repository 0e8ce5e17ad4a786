package parser

import (
	"net/url"
	"strconv"
	"strings"

	"costa-assist/internal/model"
)

// DefaultLocale is used whenever a caller passes no locale
const DefaultLocale = "en"

// BuildLink serializes filters into the locale-prefixed search results path.
// Parameters keep a fixed order and zero values are treated as unset.
// Location is emitted twice, as location and town, for the two query conventions the site uses.
func BuildLink(f *model.ParsedFilters, locale string) string {
	if locale == "" {
		locale = DefaultLocale
	}
	path := "/" + locale + "/properties"
	if f == nil {
		return path
	}

	var params []string
	add := func(key, value string) {
		params = append(params, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}
	addInt := func(key string, v *int) {
		if isSet(v) {
			add(key, strconv.Itoa(*v))
		}
	}

	if f.PropertyType != nil && *f.PropertyType != "" {
		add("propertyType", string(*f.PropertyType))
	}
	if f.Location != nil && *f.Location != "" {
		add("location", *f.Location)
		add("town", *f.Location)
	}
	addInt("minPrice", f.MinPrice)
	addInt("maxPrice", f.MaxPrice)
	addInt("minBeds", f.MinBedrooms)
	addInt("minBaths", f.MinBathrooms)
	addInt("limit", f.Limit)

	if len(params) == 0 {
		return path
	}
	return path + "?" + strings.Join(params, "&")
}

// isSet treats nil and zero alike: "0 bedrooms" is not a filter
func isSet(v *int) bool {
	return v != nil && *v != 0
}

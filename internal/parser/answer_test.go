package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costa-assist/internal/model"
)

func strPtr(s string) *string { return &s }

func typePtr(t model.PropertyType) *model.PropertyType { return &t }

func intentPtr(i model.Intent) *model.Intent { return &i }

func TestExtractFilters(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     *model.ParsedFilters
	}{
		{
			name:     "Villa in Ronda under budget",
			question: "3 bed villa in Ronda under 300k",
			want: &model.ParsedFilters{
				PropertyType: typePtr(model.PropertyTypeVilla),
				Location:     strPtr("Ronda"),
				MaxPrice:     intPtr(300000),
				MinBedrooms:  intPtr(3),
			},
		},
		{
			name:     "Top N with price range",
			question: "top 5 apartments between 100000 and 200000",
			want: &model.ParsedFilters{
				PropertyType: typePtr(model.PropertyTypeApartment),
				MinPrice:     intPtr(100000),
				MaxPrice:     intPtr(200000),
				Limit:        intPtr(5),
			},
		},
		{
			name:     "Intent with bedrooms and location",
			question: "looking for a 2 bed flat near Nerja",
			want: &model.ParsedFilters{
				PropertyType: typePtr(model.PropertyTypeApartment),
				Location:     strPtr("Nerja"),
				MinBedrooms:  intPtr(2),
				Intent:       intentPtr(model.IntentBuy),
			},
		},
		{
			name:     "Nothing recognizable",
			question: "hello there",
			want:     &model.ParsedFilters{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFilters(tt.question)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, ParseQuestion("hello there").IsEmpty())
}

func TestBuildLink(t *testing.T) {
	t.Run("Scenario link", func(t *testing.T) {
		f := ExtractFilters("3 bed villa in Ronda under 300k")
		assert.Equal(t,
			"/en/properties?propertyType=villa&location=Ronda&town=Ronda&maxPrice=300000&minBeds=3",
			BuildLink(f, "en"))
	})

	t.Run("All parameters in order", func(t *testing.T) {
		f := &model.ParsedFilters{
			Limit:        intPtr(4),
			MinBathrooms: intPtr(2),
			MinBedrooms:  intPtr(3),
			MaxPrice:     intPtr(500000),
			MinPrice:     intPtr(200000),
			Location:     strPtr("Costa Del Sol"),
			PropertyType: typePtr(model.PropertyTypeTownhouse),
		}
		assert.Equal(t,
			"/es/properties?propertyType=townhouse&location=Costa+Del+Sol&town=Costa+Del+Sol&minPrice=200000&maxPrice=500000&minBeds=3&minBaths=2&limit=4",
			BuildLink(f, "es"))
	})

	t.Run("Zero values are omitted", func(t *testing.T) {
		f := &model.ParsedFilters{
			MinBedrooms: intPtr(0),
			MinPrice:    intPtr(0),
			Location:    strPtr(""),
		}
		link := BuildLink(f, "en")
		assert.Equal(t, "/en/properties", link)
		assert.NotContains(t, link, "minBeds=0")
	})

	t.Run("Defaults", func(t *testing.T) {
		assert.Equal(t, "/en/properties", BuildLink(nil, ""))
		assert.Equal(t, "/de/properties?limit=3", BuildLink(&model.ParsedFilters{Limit: intPtr(3)}, "de"))
	})
}

func TestBuildSummary(t *testing.T) {
	tests := []struct {
		name    string
		filters *model.ParsedFilters
		want    string
	}{
		{
			name:    "Scenario 1",
			filters: ExtractFilters("3 bed villa in Ronda under 300k"),
			want:    "villas in Ronda under €300,000 with at least 3 bedrooms",
		},
		{
			name:    "Scenario 2",
			filters: ExtractFilters("top 5 apartments between 100000 and 200000"),
			want:    "Top 5 apartments between €100,000 and €200,000",
		},
		{
			name:    "Min price and bathrooms",
			filters: &model.ParsedFilters{MinPrice: intPtr(500000), MinBathrooms: intPtr(2)},
			want:    "properties above €500,000 and 2+ bathrooms",
		},
		{
			name:    "Limit only",
			filters: &model.ParsedFilters{Limit: intPtr(3)},
			want:    "Top 3 properties",
		},
		{
			name:    "Empty",
			filters: &model.ParsedFilters{},
			want:    "properties",
		},
		{
			name:    "Nil",
			filters: nil,
			want:    "properties",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSummary(tt.filters))
		})
	}
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "villas", Pluralize("villa"))
	assert.Equal(t, "villas", Pluralize("villas"))

	for _, word := range []string{"apartment", "cottage", "townhouse", "villas"} {
		once := Pluralize(word)
		assert.Equal(t, once, Pluralize(once), "Pluralize should be stable for %q", word)
	}
}

func TestFormatEuro(t *testing.T) {
	tests := []struct {
		amount int
		want   string
	}{
		{300000, "€300,000"},
		{0, "€0"},
		{999, "€999"},
		{1000, "€1,000"},
		{1234567, "€1,234,567"},
		{-1500, "-€1,500"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatEuro(tt.amount))
	}
}

func TestComposeAnswer(t *testing.T) {
	t.Run("No recognizable content", func(t *testing.T) {
		got := ComposeAnswer("hello there", "", nil)
		assert.Equal(t, "I found properties that match your request. Tap here to view them: /en/properties", got.Text)
		assert.Equal(t, "/en/properties", got.Link)
		assert.Equal(t, "properties", got.Summary)
		assert.True(t, got.Filters.IsEmpty())
	})

	t.Run("Parsed question", func(t *testing.T) {
		got := ComposeAnswer("3 bed villa in Ronda under 300k", "en", nil)
		assert.Equal(t,
			"I found villas in Ronda under €300,000 with at least 3 bedrooms that match your request. "+
				"Tap here to view them: /en/properties?propertyType=villa&location=Ronda&town=Ronda&maxPrice=300000&minBeds=3",
			got.Text)
		assert.True(t, strings.HasSuffix(got.Text, got.Link))
	})

	t.Run("Supplied filters skip parsing", func(t *testing.T) {
		supplied := &model.ParsedFilters{PropertyType: typePtr(model.PropertyTypeApartment)}
		got := ComposeAnswer("3 bed villa in Ronda under 300k", "es", supplied)
		assert.Same(t, supplied, got.Filters)
		assert.Equal(t, "/es/properties?propertyType=apartment", got.Link)
		assert.Equal(t, "apartments", got.Summary)
	})
}

func TestNormalizeLocale(t *testing.T) {
	tests := map[string]string{
		"es-ES": "es",
		"EN":    "en",
		" fr ":  "fr",
		"xx":    "en",
		"":      "en",
		"d":     "en",
	}

	for input, want := range tests {
		assert.Equal(t, want, NormalizeLocale(input), "NormalizeLocale(%q)", input)
	}

	assert.Equal(t, "Spanish", LanguageName("es-ES"))
	assert.Equal(t, "English", LanguageName("zz"))
}

func TestResolveRegion(t *testing.T) {
	tests := []struct {
		input  string
		wantID int
		wantOK bool
	}{
		{"villa near ronda", 1, true},
		{"Serrania de Ronda cortijo", 2, true},
		{"flat in Malaga", 42, true},
		{"Vélez-Málaga townhouse", 55, true},
		{"property in Seville", 60, true},
		{"Rondaville", 0, false},
		{"hello", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ResolveRegion(tt.input)
		assert.Equal(t, tt.wantOK, ok, "ResolveRegion(%q)", tt.input)
		assert.Equal(t, tt.wantID, got.ID, "ResolveRegion(%q)", tt.input)
	}
}

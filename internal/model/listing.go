package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Listing represents a property listing returned by the property API
type Listing struct {
	ID           string     `json:"id"`
	Reference    string     `json:"reference,omitempty"`
	Title        string     `json:"title"`
	PropertyType string     `json:"propertyType,omitempty"`
	Town         string     `json:"town,omitempty"`
	RegionID     int        `json:"regionId,omitempty"`
	Price        *float64   `json:"price,omitempty"`
	Bedrooms     *int       `json:"bedrooms,omitempty"`
	Bathrooms    *int       `json:"bathrooms,omitempty"`
	BuiltAreaM2  *float64   `json:"builtArea,omitempty"`
	PlotAreaM2   *float64   `json:"plotArea,omitempty"`
	URL          string     `json:"url,omitempty"`
	ImageURL     string     `json:"image,omitempty"`
	ListedDate   *time.Time `json:"listedDate,omitempty"`
}

// RankedListing represents a listing with its relevance score
type RankedListing struct {
	Listing
	Score          float64  `json:"score"`
	MatchedReasons []string `json:"matchedReasons"`
}

// ChatLog is a row of the chat_logs table
type ChatLog struct {
	ID             string        `db:"id"`
	SessionID      *string       `db:"session_id"`
	Locale         string        `db:"locale"`
	Message        string        `db:"message"`
	Filters        FiltersColumn `db:"filters"`
	RegionID       *int          `db:"region_id"`
	Reply          string        `db:"reply"`
	ListingIDs     JSONArray     `db:"listing_ids"`
	ResponseTimeMs int           `db:"response_time_ms"`
	CreatedAt      time.Time     `db:"created_at"`
}

// Correction is a row of the answer_corrections table
type Correction struct {
	ID        string           `db:"id" json:"id"`
	Question  string           `db:"question" json:"question"`
	BadAnswer string           `db:"bad_answer" json:"badAnswer"`
	Answer    string           `db:"answer" json:"answer"`
	Link      string           `db:"link" json:"link"`
	Locale    string           `db:"locale" json:"locale"`
	Filters   FiltersColumn    `db:"filters" json:"filters"`
	Embedding *pgvector.Vector `db:"embedding" json:"-"`
	Distance  *float64         `db:"distance" json:"distance,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

// FiltersColumn stores ParsedFilters in a JSONB column
type FiltersColumn struct {
	*ParsedFilters
}

// Value implements driver.Valuer interface
func (f FiltersColumn) Value() (driver.Value, error) {
	if f.ParsedFilters == nil {
		return nil, nil
	}
	return json.Marshal(f.ParsedFilters)
}

// Scan implements sql.Scanner interface
func (f *FiltersColumn) Scan(value interface{}) error {
	if value == nil {
		f.ParsedFilters = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported filters column type %T", value)
	}
	var pf ParsedFilters
	if err := json.Unmarshal(raw, &pf); err != nil {
		return err
	}
	f.ParsedFilters = &pf
	return nil
}

// JSONArray represents a JSON array field
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}

// Feedback is a row of the chat_feedback table
type Feedback struct {
	ID        string    `db:"id"`
	ChatID    string    `db:"chat_id"`
	Rating    string    `db:"rating"`
	Comment   *string   `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"costa-assist/internal/cache"
	"costa-assist/internal/config"
	"costa-assist/internal/metrics"
	"costa-assist/internal/model"
	"costa-assist/internal/utils"
)

// PropertySearcher finds listings matching a query
type PropertySearcher interface {
	Search(ctx context.Context, q SearchQuery) (*model.PropertySearchResponse, error)
}

// SearchQuery is a property API search built from parsed filters
type SearchQuery struct {
	Filters  *model.ParsedFilters
	RegionID int
	Locale   string
	Limit    int
}

// Values encodes the query as property API parameters. Unset filters are
// left out.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	if q.Locale != "" {
		v.Set("lang", q.Locale)
	}
	if q.RegionID > 0 {
		v.Set("region", strconv.Itoa(q.RegionID))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}

	f := q.Filters
	if f == nil {
		return v
	}
	if f.PropertyType != nil && *f.PropertyType != model.PropertyTypeProperty {
		v.Set("type", string(*f.PropertyType))
	}
	if f.Location != nil && q.RegionID == 0 {
		v.Set("location", *f.Location)
	}
	setInt := func(key string, p *int) {
		if p != nil && *p > 0 {
			v.Set(key, strconv.Itoa(*p))
		}
	}
	setInt("minPrice", f.MinPrice)
	setInt("maxPrice", f.MaxPrice)
	setInt("minBeds", f.MinBedrooms)
	setInt("minBaths", f.MinBathrooms)
	return v
}

// PropertyAPIClient queries the remote property database, caching results
type PropertyAPIClient struct {
	config     *config.PropertyAPIConfig
	httpClient *http.Client
	cache      cache.Client
	retry      utils.RetryConfig
}

// NewPropertyAPIClient creates a client. A nil cache disables caching.
func NewPropertyAPIClient(cfg *config.PropertyAPIConfig, c cache.Client) *PropertyAPIClient {
	return &PropertyAPIClient{
		config: cfg,
		cache:  c,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		retry: utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryDelay,
		},
	}
}

// Search returns listings matching q, from cache when possible
func (p *PropertyAPIClient) Search(ctx context.Context, q SearchQuery) (*model.PropertySearchResponse, error) {
	params := q.Values().Encode()
	key := cache.HashKey("search", []byte(params))

	if cached, ok := p.fromCache(ctx, key); ok {
		return cached, nil
	}

	var result model.PropertySearchResponse
	err := p.retry.Do(ctx, "property search", func() error {
		return p.fetch(ctx, params, &result)
	})
	metrics.RecordPropertyAPICall(err)
	if err != nil {
		return nil, err
	}

	if p.cache != nil && p.config.CacheTTL > 0 {
		if data, err := json.Marshal(result); err == nil {
			if err := p.cache.Set(ctx, key, data, p.config.CacheTTL); err != nil {
				log.Warn().Err(err).Msg("Failed to cache property search")
			}
		}
	}

	return &result, nil
}

func (p *PropertyAPIClient) fromCache(ctx context.Context, key string) (*model.PropertySearchResponse, bool) {
	if p.cache == nil {
		return nil, false
	}

	data, err := p.cache.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.RecordCacheLookup("miss")
		return nil, false
	case err != nil:
		metrics.RecordCacheLookup("error")
		log.Warn().Err(err).Msg("Property cache lookup failed")
		return nil, false
	}

	var result model.PropertySearchResponse
	if err := json.Unmarshal(data, &result); err != nil {
		metrics.RecordCacheLookup("error")
		return nil, false
	}
	metrics.RecordCacheLookup("hit")
	return &result, true
}

// fetch performs one HTTP attempt. Client errors are not retried.
func (p *PropertyAPIClient) fetch(ctx context.Context, params string, out *model.PropertySearchResponse) error {
	endpoint := p.config.BaseURL + "/properties/search"
	if params != "" {
		endpoint += "?" + params
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return utils.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if p.config.APIKey != "" {
		req.Header.Set("X-API-Key", p.config.APIKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return utils.Permanent(err)
		}
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("property API returned status %d: %s", resp.StatusCode, utils.TruncateString(string(body), 200))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return utils.Permanent(err)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return utils.Permanent(fmt.Errorf("failed to unmarshal response: %w", err))
	}
	return nil
}

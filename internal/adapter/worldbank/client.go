// Package worldbank fetches current GDP figures from the World Bank API,
// used as a fallback for countries whose indicator row has no gdp_today
// value.
package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// gdpIndicator is the World Bank series for GDP in current US dollars.
const gdpIndicator = "NY.GDP.MKTP.CD"

// Client fetches GDP data from the World Bank API v2. It implements
// domain.GDPProvider. The API resolves lowercase country names as well as
// ISO codes in the country path segment.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a World Bank API client.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.worldbank.org/v2",
		logger:  logger,
	}
}

// CurrentGDP returns the most recent non-empty GDP value for a country.
func (c *Client) CurrentGDP(ctx context.Context, country string) (float64, error) {
	id := strings.ToLower(strings.TrimSpace(country))
	u := fmt.Sprintf("%s/country/%s/indicator/%s", c.baseURL, url.PathEscape(id), gdpIndicator)
	params := url.Values{
		"format": {"json"},
		"mrnev":  {"1"}, // most recent non-empty value
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("gdp request for %s: %w", country, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("world bank API error: status %d: %s", resp.StatusCode, body)
	}

	// The v2 response is a two-element array: [page metadata, data points].
	var envelope []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(envelope) < 2 {
		return 0, fmt.Errorf("no gdp data for %s", country)
	}

	var points []dataPoint
	if err := json.Unmarshal(envelope[1], &points); err != nil {
		return 0, fmt.Errorf("decode data points: %w", err)
	}

	for _, p := range points {
		if p.Value != nil {
			c.logger.Debug("gdp fetched", "country", country, "year", p.Date, "gdp", *p.Value)
			return *p.Value, nil
		}
	}
	return 0, fmt.Errorf("no gdp data for %s", country)
}

// World Bank API response types.

type dataPoint struct {
	Value *float64 `json:"value"`
	Date  string   `json:"date"`
}

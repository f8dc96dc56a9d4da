// Package scrape fetches top-podcast chart rankings from the public
// platform chart endpoints and converts them to chart observations.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/franz/podchart/internal/util"
)

const (
	// PlatformApple is the platform label stored with Apple chart rows
	PlatformApple = "Apple"

	// PlatformSpotify is the platform label stored with Spotify chart rows
	PlatformSpotify = "Spotify"

	// DefaultRegion is the two-letter chart region requested by default
	DefaultRegion = "us"

	// DefaultLimit is the chart depth requested by default
	DefaultLimit = 100
)

// Config holds scraper configuration
type Config struct {
	AppleBaseURL   string // defaults to the Apple RSS feed generator
	SpotifyBaseURL string // defaults to the Spotify podcast charts API
	HTTPClient     *http.Client
}

// Client fetches chart data from the platform endpoints
type Client struct {
	httpClient     *http.Client
	appleBaseURL   string
	spotifyBaseURL string
	now            func() time.Time
}

// New creates a chart scraper client
func New(cfg Config) *Client {
	appleBaseURL := cfg.AppleBaseURL
	if appleBaseURL == "" {
		appleBaseURL = "https://rss.marketingtools.apple.com/api/v2"
	}

	spotifyBaseURL := cfg.SpotifyBaseURL
	if spotifyBaseURL == "" {
		spotifyBaseURL = "https://podcastcharts.byspotify.com/api/charts/top"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		httpClient:     httpClient,
		appleBaseURL:   appleBaseURL,
		spotifyBaseURL: spotifyBaseURL,
		now:            time.Now,
	}
}

// getJSON performs a GET and decodes the JSON body into out
func (c *Client) getJSON(ctx context.Context, urlStr string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("status %d: %w", resp.StatusCode, util.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// today returns the chart date stamped onto every observation of a scrape
func (c *Client) today() string {
	return c.now().Format("2006-01-02")
}

// clampLimit bounds how many chart entries are kept from a response
func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultLimit {
		return DefaultLimit
	}
	return limit
}

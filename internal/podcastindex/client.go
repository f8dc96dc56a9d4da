// Package podcastindex implements a client for the Podcast Index directory
// API (https://podcastindex-org.github.io/docs-api/).
package podcastindex

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/franz/podchart/internal/util"
)

const (
	// DefaultBaseURL is the Podcast Index API base URL
	DefaultBaseURL = "https://api.podcastindex.org/api/1.0"

	// UserAgent identifies this application to Podcast Index
	UserAgent = "podchart/1.0 (https://github.com/franz/podchart)"

	// DefaultPause is the minimum delay between consecutive API calls.
	// Podcast Index throttles aggressive clients, so the client enforces
	// this spacing itself rather than leaving it to callers.
	DefaultPause = 1500 * time.Millisecond

	// SearchMax is the number of candidates requested per search
	SearchMax = 10
)

// Config holds client configuration
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string        // defaults to DefaultBaseURL
	Pause     time.Duration // minimum delay between calls; defaults to DefaultPause
	HTTPClient *http.Client
}

// Client handles Podcast Index API requests with call spacing
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	apiSecret   string
	pause       time.Duration
	lastRequest time.Time
}

// New creates a new Podcast Index API client
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("podcastindex: api key and secret are required: %w", util.ErrInvalidConfig)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	pause := cfg.Pause
	if pause == 0 {
		pause = DefaultPause
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		apiSecret:   cfg.APISecret,
		pause:       pause,
		lastRequest: time.Now().Add(-pause), // allow first request immediately
	}, nil
}

// Feed represents a podcast feed as returned by the directory
type Feed struct {
	ID             int64             `json:"id"`
	Title          string            `json:"title"`
	TitleOriginal  string            `json:"title_original"`
	URL            string            `json:"url"`
	OriginalURL    string            `json:"originalUrl"`
	Description    string            `json:"description"`
	Image          string            `json:"image"`
	Artwork        string            `json:"artwork"`
	EpisodeCount   int               `json:"episodeCount"`
	LastUpdateTime int64             `json:"lastUpdateTime"`
	PodcastGUID    string            `json:"podcastGuid"`
	Categories     map[string]string `json:"categories"`
}

// DisplayTitle returns the best available title for a feed.
// search/byterm results may carry the title under title_original.
func (f *Feed) DisplayTitle() string {
	if f.TitleOriginal != "" {
		return f.TitleOriginal
	}
	return f.Title
}

// ArtworkURL returns the best available artwork location for a feed
func (f *Feed) ArtworkURL() string {
	if f.Image != "" {
		return f.Image
	}
	return f.Artwork
}

// Episode represents a single episode from episodes/byfeedid
type Episode struct {
	Title    string `json:"title"`
	Duration int64  `json:"duration"`
}

type searchResponse struct {
	Feeds   []Feed `json:"feeds"`
	Results []Feed `json:"results"`
	Count   int    `json:"count"`
}

type feedResponse struct {
	Feed Feed `json:"feed"`
}

type episodesResponse struct {
	Items []Episode `json:"items"`
}

// SearchByTerm queries search/byterm and returns candidates in result order
func (c *Client) SearchByTerm(ctx context.Context, query string) ([]Feed, error) {
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("max", strconv.Itoa(SearchMax))

	util.DebugLog("Podcast Index API: search/byterm '%s'", query)

	var resp searchResponse
	if err := c.get(ctx, "search/byterm", params, &resp); err != nil {
		return nil, err
	}

	// byterm responses have carried candidates under both keys over time
	if len(resp.Feeds) > 0 {
		return resp.Feeds, nil
	}
	return resp.Results, nil
}

// SearchByTitle queries search/bytitle and returns candidates in result order
func (c *Client) SearchByTitle(ctx context.Context, query string) ([]Feed, error) {
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("max", strconv.Itoa(SearchMax))

	util.DebugLog("Podcast Index API: search/bytitle '%s'", query)

	var resp searchResponse
	if err := c.get(ctx, "search/bytitle", params, &resp); err != nil {
		return nil, err
	}
	return resp.Feeds, nil
}

// PodcastByFeedID retrieves full feed details via podcasts/byfeedid
func (c *Client) PodcastByFeedID(ctx context.Context, feedID int64) (*Feed, error) {
	if feedID == 0 {
		return nil, fmt.Errorf("feed id cannot be zero")
	}

	params := url.Values{}
	params.Set("id", strconv.FormatInt(feedID, 10))

	util.DebugLog("Podcast Index API: podcasts/byfeedid %d", feedID)

	var resp feedResponse
	if err := c.get(ctx, "podcasts/byfeedid", params, &resp); err != nil {
		return nil, err
	}

	if resp.Feed.ID == 0 {
		return nil, fmt.Errorf("feed %d: %w", feedID, util.ErrNotFound)
	}
	return &resp.Feed, nil
}

// PodcastByFeedURL retrieves full feed details via podcasts/byfeedurl.
// Used as a fallback when a candidate is missing its feed id.
func (c *Client) PodcastByFeedURL(ctx context.Context, feedURL string) (*Feed, error) {
	if feedURL == "" {
		return nil, fmt.Errorf("feed url cannot be empty")
	}

	params := url.Values{}
	params.Set("url", feedURL)

	util.DebugLog("Podcast Index API: podcasts/byfeedurl %s", feedURL)

	var resp feedResponse
	if err := c.get(ctx, "podcasts/byfeedurl", params, &resp); err != nil {
		return nil, err
	}

	if resp.Feed.ID == 0 {
		return nil, fmt.Errorf("feed url %s: %w", feedURL, util.ErrNotFound)
	}
	return &resp.Feed, nil
}

// EpisodesByFeedID retrieves the most recent episodes for a feed
func (c *Client) EpisodesByFeedID(ctx context.Context, feedID int64, max int) ([]Episode, error) {
	if feedID == 0 {
		return nil, fmt.Errorf("feed id cannot be zero")
	}

	params := url.Values{}
	params.Set("id", strconv.FormatInt(feedID, 10))
	params.Set("max", strconv.Itoa(max))

	util.DebugLog("Podcast Index API: episodes/byfeedid %d (max %d)", feedID, max)

	var resp episodesResponse
	if err := c.get(ctx, "episodes/byfeedid", params, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// get performs an authenticated GET against the API and decodes the response
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	c.waitBetweenCalls()

	urlStr := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range c.authHeaders() {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("%s: status %d: %w", endpoint, resp.StatusCode, util.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: unexpected status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", endpoint, err)
	}

	return nil
}

// authHeaders builds the per-request authentication headers.
// Podcast Index expects Authorization = sha1(key + secret + unix time).
func (c *Client) authHeaders() map[string]string {
	authDate := strconv.FormatInt(time.Now().Unix(), 10)
	hash := sha1.Sum([]byte(c.apiKey + c.apiSecret + authDate))

	return map[string]string{
		"User-Agent":    UserAgent,
		"X-Auth-Key":    c.apiKey,
		"X-Auth-Date":   authDate,
		"Authorization": fmt.Sprintf("%x", hash),
		"Accept":        "application/json",
	}
}

// waitBetweenCalls enforces the minimum spacing between consecutive API calls
func (c *Client) waitBetweenCalls() {
	if elapsed := time.Since(c.lastRequest); elapsed < c.pause {
		time.Sleep(c.pause - elapsed)
	}
	c.lastRequest = time.Now()
}

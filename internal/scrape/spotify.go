package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/franz/podchart/internal/store"
	"github.com/franz/podchart/internal/util"
)

// The Spotify charts endpoint is unofficial and returns a bare JSON array
type spotifyEntry struct {
	ShowURI  string `json:"showUri"`
	ShowName string `json:"showName"`
}

// Spotify fetches the top podcasts chart from the Spotify charts API
// for a region and returns observations ranked 1..N in response order,
// stamped with today's date.
func (c *Client) Spotify(ctx context.Context, region string) ([]store.ChartObservation, error) {
	if region == "" {
		region = DefaultRegion
	}

	urlStr := fmt.Sprintf("%s?region=%s", c.spotifyBaseURL, region)
	util.DebugLog("Spotify chart: %s", urlStr)

	var entries []spotifyEntry
	if err := c.getJSON(ctx, urlStr, &entries); err != nil {
		return nil, fmt.Errorf("spotify chart: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("spotify chart: %s: empty results: %w", region, util.ErrNotFound)
	}
	if len(entries) > DefaultLimit {
		entries = entries[:DefaultLimit]
	}

	date := c.today()
	observations := make([]store.ChartObservation, 0, len(entries))
	for i, e := range entries {
		observations = append(observations, store.ChartObservation{
			Platform:          PlatformSpotify,
			Rank:              i + 1,
			Title:             e.ShowName,
			PlatformPodcastID: showID(e.ShowURI),
			Date:              date,
		})
	}

	util.InfoLog("Spotify chart: fetched %d entries for region %s", len(observations), region)
	return observations, nil
}

// showID extracts the show identifier from a spotify:show:<id> URI
func showID(uri string) string {
	if idx := strings.LastIndex(uri, ":"); idx >= 0 {
		return uri[idx+1:]
	}
	return ""
}

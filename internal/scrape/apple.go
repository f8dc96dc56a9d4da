package scrape

import (
	"context"
	"fmt"

	"github.com/franz/podchart/internal/store"
	"github.com/franz/podchart/internal/util"
)

type appleResponse struct {
	Feed struct {
		Results []struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"results"`
	} `json:"feed"`
}

// Apple fetches the top podcasts chart from Apple's RSS feed generator
// for a region and returns observations ranked 1..N in feed order,
// stamped with today's date.
func (c *Client) Apple(ctx context.Context, region string, limit int) ([]store.ChartObservation, error) {
	if region == "" {
		region = DefaultRegion
	}
	limit = clampLimit(limit)

	urlStr := fmt.Sprintf("%s/%s/podcasts/top/%d/podcasts.json", c.appleBaseURL, region, limit)
	util.DebugLog("Apple chart: %s", urlStr)

	var resp appleResponse
	if err := c.getJSON(ctx, urlStr, &resp); err != nil {
		return nil, fmt.Errorf("apple chart: %w", err)
	}

	results := resp.Feed.Results
	if len(results) == 0 {
		return nil, fmt.Errorf("apple chart: %s/%d: empty results: %w", region, limit, util.ErrNotFound)
	}
	if len(results) > limit {
		results = results[:limit]
	}

	date := c.today()
	observations := make([]store.ChartObservation, 0, len(results))
	for i, r := range results {
		observations = append(observations, store.ChartObservation{
			Platform:          PlatformApple,
			Rank:              i + 1,
			Title:             r.Name,
			PlatformPodcastID: r.ID,
			Date:              date,
		})
	}

	util.InfoLog("Apple chart: fetched %d entries for region %s", len(observations), region)
	return observations, nil
}

// Package refresh orchestrates the daily metadata rebuild: clear the volatile
// snapshot, re-resolve every charted title against the directory, and
// repopulate podcasts and category links as per-title atomic units.
package refresh

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/franz/podchart/internal/podcastindex"
	"github.com/franz/podchart/internal/report"
	"github.com/franz/podchart/internal/store"
	"github.com/franz/podchart/internal/titles"
	"github.com/franz/podchart/internal/util"
)

// EpisodeSampleSize is how many recent episodes feed the average duration
const EpisodeSampleSize = 10

// Directory is the external search/detail capability the coordinator consumes
type Directory interface {
	SearchByTerm(ctx context.Context, query string) ([]podcastindex.Feed, error)
	SearchByTitle(ctx context.Context, query string) ([]podcastindex.Feed, error)
	PodcastByFeedID(ctx context.Context, feedID int64) (*podcastindex.Feed, error)
	PodcastByFeedURL(ctx context.Context, feedURL string) (*podcastindex.Feed, error)
	EpisodesByFeedID(ctx context.Context, feedID int64, max int) ([]podcastindex.Episode, error)
}

// Config holds coordinator configuration
type Config struct {
	Store     *store.Store
	Directory Directory
	Logger    *report.EventLogger    // optional
	Cache     *podcastindex.Cache    // optional
	Retry     *util.RetryConfig      // optional, defaults to util.DefaultRetryConfig
}

// Coordinator runs refresh cycles
type Coordinator struct {
	store     *store.Store
	directory Directory
	logger    *report.EventLogger
	cache     *podcastindex.Cache
	retry     *util.RetryConfig
}

// New creates a new Coordinator
func New(cfg *Config) *Coordinator {
	retry := cfg.Retry
	if retry == nil {
		retry = util.DefaultRetryConfig()
	}
	return &Coordinator{
		store:     cfg.Store,
		directory: cfg.Directory,
		logger:    cfg.Logger,
		cache:     cfg.Cache,
		retry:     retry,
	}
}

// Failure records one per-title failure
type Failure struct {
	Title string
	Stage string // "detail" or "store"
	Err   string
}

// Report aggregates a refresh cycle's outcome. Per-title failures land here;
// the cycle itself only fails on a fatal rebuild or ledger-read error.
type Report struct {
	Titles     int
	Resolved   int
	Unresolved int
	Failures   []Failure
	Elapsed    time.Duration
}

// Refresh runs one full rebuild cycle.
//
// The forced clear at the start is unconditional and idempotent: if a previous
// cycle died mid-run, this is what makes the partial state harmless.
func (c *Coordinator) Refresh(ctx context.Context) (*Report, error) {
	started := time.Now()

	if err := c.store.ResetPodcasts(); err != nil {
		return nil, fmt.Errorf("rebuild: %w", err)
	}

	chartTitles, err := c.store.DistinctChartTitles()
	if err != nil {
		return nil, fmt.Errorf("rebuild: %w", err)
	}

	rep := &Report{}
	for _, title := range chartTitles {
		if titles.Normalize(title) == "" {
			c.logger.LogSkip(title, "empty after normalization")
			continue
		}
		rep.Titles++
	}

	util.InfoLog("Refresh: rebuilding snapshot for %d distinct titles", rep.Titles)
	c.logger.LogRebuild(rep.Titles)

	processed := 0
	for _, title := range chartTitles {
		if titles.Normalize(title) == "" {
			continue
		}
		processed++
		util.DebugLog("Refresh: processing %d/%d '%s'", processed, rep.Titles, title)
		c.processTitle(ctx, rep, title)
	}

	rep.Elapsed = time.Since(started)
	util.InfoLog("Refresh: complete in %s (%d resolved, %d unresolved, %d failures)",
		rep.Elapsed.Round(time.Second), rep.Resolved, rep.Unresolved, len(rep.Failures))

	return rep, nil
}

// processTitle runs one title's unit of work; every outcome is recorded on
// the report and never aborts the cycle.
func (c *Coordinator) processTitle(ctx context.Context, rep *Report, title string) {
	candidate, match, ok := c.resolve(ctx, title)
	if !ok {
		c.logger.LogResolve(title, 0, match.Score, false)
		util.InfoLog("Refresh: no confident match for '%s'", title)
		rep.Unresolved++
		return
	}

	c.logger.LogResolve(title, candidate.ID, match.Score, match.Exact)

	detail, err := c.fetchDetail(ctx, candidate)
	if err != nil {
		c.logger.LogError(title, "detail", err)
		util.WarnLog("Refresh: detail fetch failed for '%s' (feed %d): %v", title, candidate.ID, err)
		rep.Unresolved++
		rep.Failures = append(rep.Failures, Failure{Title: title, Stage: "detail", Err: err.Error()})
		return
	}
	c.logger.LogDetail(title, detail.ID, nil)

	avgDuration, latestTitle := c.episodeStats(ctx, detail.ID)

	podcast, categories := buildSnapshot(detail, candidate, avgDuration, latestTitle)
	if err := c.store.SavePodcast(podcast, categories); err != nil {
		c.logger.LogError(title, "store", err)
		util.ErrorLog("Refresh: store failed for '%s' (feed %d): %v", title, detail.ID, err)
		rep.Failures = append(rep.Failures, Failure{Title: title, Stage: "store", Err: err.Error()})
		return
	}

	if c.cache != nil {
		if err := c.cache.Put(title, candidate.ID, candidate.DisplayTitle(), match.Score, match.Exact); err != nil {
			util.WarnLog("Refresh: cache write failed for '%s': %v", title, err)
		}
	}

	rep.Resolved++
	util.DebugLog("Refresh: stored feed %d for '%s'", detail.ID, title)
}

// resolve maps a raw chart title to a directory candidate: byterm search
// first, bytitle as fallback, exact-match-first scoring on each result set.
func (c *Coordinator) resolve(ctx context.Context, title string) (podcastindex.Feed, titles.Match, bool) {
	if c.cache != nil {
		if cached, err := c.cache.Get(title); err == nil && cached != nil {
			return podcastindex.Feed{ID: cached.FeedID, Title: cached.FeedTitle},
				titles.Match{Score: cached.Score, Exact: cached.Exact}, true
		}
	}

	for _, search := range []struct {
		name string
		fn   func(context.Context, string) ([]podcastindex.Feed, error)
	}{
		{"search/byterm", c.directory.SearchByTerm},
		{"search/bytitle", c.directory.SearchByTitle},
	} {
		feeds, err := util.RetryWithBackoff(c.retry, func() ([]podcastindex.Feed, error) {
			return search.fn(ctx, title)
		}, fmt.Sprintf("%s(%s)", search.name, title))
		if err != nil {
			util.WarnLog("Refresh: %s failed for '%s': %v", search.name, title, err)
			continue
		}

		candidates, names := usableCandidates(feeds)
		if match, ok := titles.Resolve(title, names); ok {
			return candidates[match.Index], match, true
		}
	}

	return podcastindex.Feed{}, titles.Match{}, false
}

// usableCandidates drops search results missing their identity fields,
// preserving result order
func usableCandidates(feeds []podcastindex.Feed) ([]podcastindex.Feed, []string) {
	candidates := make([]podcastindex.Feed, 0, len(feeds))
	names := make([]string, 0, len(feeds))
	for _, f := range feeds {
		if f.ID == 0 || f.DisplayTitle() == "" {
			continue
		}
		candidates = append(candidates, f)
		names = append(names, f.DisplayTitle())
	}
	return candidates, names
}

// fetchDetail retrieves full feed metadata, falling back to the candidate's
// feed url when the byfeedid lookup fails
func (c *Coordinator) fetchDetail(ctx context.Context, candidate podcastindex.Feed) (*podcastindex.Feed, error) {
	detail, err := util.RetryWithBackoff(c.retry, func() (*podcastindex.Feed, error) {
		return c.directory.PodcastByFeedID(ctx, candidate.ID)
	}, fmt.Sprintf("podcasts/byfeedid(%d)", candidate.ID))
	if err == nil {
		return detail, nil
	}

	feedURL := candidate.URL
	if feedURL == "" {
		feedURL = candidate.OriginalURL
	}
	if feedURL == "" {
		return nil, err
	}

	util.DebugLog("Refresh: byfeedid failed for feed %d, falling back to feed url", candidate.ID)
	return util.RetryWithBackoff(c.retry, func() (*podcastindex.Feed, error) {
		return c.directory.PodcastByFeedURL(ctx, feedURL)
	}, "podcasts/byfeedurl")
}

// episodeStats derives the latest-episode title and the average duration of
// the most recent episodes. Both are best-effort: a failed episode fetch
// degrades the snapshot, it does not fail the title.
func (c *Coordinator) episodeStats(ctx context.Context, feedID int64) (sql.NullInt64, string) {
	episodes, err := util.RetryWithBackoff(c.retry, func() ([]podcastindex.Episode, error) {
		return c.directory.EpisodesByFeedID(ctx, feedID, EpisodeSampleSize)
	}, fmt.Sprintf("episodes/byfeedid(%d)", feedID))
	if err != nil {
		util.WarnLog("Refresh: episode fetch failed for feed %d: %v", feedID, err)
		return sql.NullInt64{}, ""
	}
	return AverageDuration(episodes), LatestEpisodeTitle(episodes)
}

// AverageDuration averages the positive episode durations, truncated to whole
// seconds. Invalid when no episode has a usable duration.
func AverageDuration(episodes []podcastindex.Episode) sql.NullInt64 {
	var total, counted int64
	for _, e := range episodes {
		if e.Duration > 0 {
			total += e.Duration
			counted++
		}
	}
	if counted == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: total / counted, Valid: true}
}

// LatestEpisodeTitle returns the first (most recent) episode's title
func LatestEpisodeTitle(episodes []podcastindex.Episode) string {
	if len(episodes) == 0 {
		return ""
	}
	return episodes[0].Title
}

// buildSnapshot maps directory detail onto a store row, filling gaps from the
// search candidate the way the directory's own clients do
func buildSnapshot(detail *podcastindex.Feed, candidate podcastindex.Feed, avgDuration sql.NullInt64, latestTitle string) (*store.Podcast, []store.Category) {
	feedURL := detail.URL
	if feedURL == "" {
		feedURL = candidate.URL
	}
	originalURL := detail.OriginalURL
	if originalURL == "" {
		originalURL = candidate.OriginalURL
	}

	podcast := &store.Podcast{
		ID:                 detail.ID,
		Title:              detail.DisplayTitle(),
		Description:        detail.Description,
		FeedURL:            feedURL,
		ImageURL:           detail.ArtworkURL(),
		EpisodeCount:       detail.EpisodeCount,
		AvgDurationLast10:  avgDuration,
		LatestEpisodeTitle: latestTitle,
		LastUpdateTime:     detail.LastUpdateTime,
		GUID:               detail.PodcastGUID,
		OriginalURL:        originalURL,
	}

	var categories []store.Category
	for idStr, name := range detail.Categories {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id == 0 || name == "" {
			util.WarnLog("Refresh: invalid category %q=%q for feed %d", idStr, name, detail.ID)
			continue
		}
		categories = append(categories, store.Category{ID: id, Name: name})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })

	return podcast, categories
}

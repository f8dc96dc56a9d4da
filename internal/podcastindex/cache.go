package podcastindex

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/franz/podchart/internal/titles"
	"github.com/franz/podchart/internal/util"
)

// Cache provides database-backed caching for title resolutions.
// Keyed by the normalized title so chart-title variants share entries.
// Opt-in: a daily refresh normally resolves against the live directory.
type Cache struct {
	db *sql.DB
}

// CachedResolution represents a cached title-to-feed resolution
type CachedResolution struct {
	SearchKey string
	FeedID    int64
	FeedTitle string
	Score     float64
	Exact     bool
	CachedAt  time.Time
}

// NewCache creates a new cache instance backed by the given database
func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// EnsureSchema creates the cache table if it doesn't exist
func (c *Cache) EnsureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS resolution_cache (
		search_key TEXT PRIMARY KEY,
		feed_id INTEGER NOT NULL,
		feed_title TEXT NOT NULL,
		score REAL,
		exact_match INTEGER DEFAULT 0,
		cached_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		hit_count INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_resolution_cache_feed ON resolution_cache(feed_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create resolution_cache table: %w", err)
	}
	return nil
}

// Get returns the cached resolution for a raw title, or nil on a miss
func (c *Cache) Get(title string) (*CachedResolution, error) {
	key := titles.Normalize(title)
	if key == "" {
		return nil, nil
	}

	cached := &CachedResolution{SearchKey: key}
	var exact int
	err := c.db.QueryRow(`
		SELECT feed_id, feed_title, COALESCE(score, 0), exact_match, cached_at
		FROM resolution_cache WHERE search_key = ?
	`, key).Scan(&cached.FeedID, &cached.FeedTitle, &cached.Score, &exact, &cached.CachedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read resolution cache: %w", err)
	}

	cached.Exact = exact != 0

	if _, err := c.db.Exec(
		"UPDATE resolution_cache SET hit_count = hit_count + 1 WHERE search_key = ?", key,
	); err != nil {
		util.WarnLog("Failed to bump cache hit count for '%s': %v", key, err)
	}

	util.DebugLog("Resolution cache hit: '%s' -> feed %d", title, cached.FeedID)
	return cached, nil
}

// Put records a successful resolution for a raw title
func (c *Cache) Put(title string, feedID int64, feedTitle string, score float64, exact bool) error {
	key := titles.Normalize(title)
	if key == "" || feedID == 0 {
		return nil
	}

	exactInt := 0
	if exact {
		exactInt = 1
	}

	_, err := c.db.Exec(`
		INSERT INTO resolution_cache (search_key, feed_id, feed_title, score, exact_match)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(search_key) DO UPDATE SET
			feed_id = excluded.feed_id,
			feed_title = excluded.feed_title,
			score = excluded.score,
			exact_match = excluded.exact_match,
			cached_at = CURRENT_TIMESTAMP
	`, key, feedID, feedTitle, score, exactInt)

	if err != nil {
		return fmt.Errorf("failed to write resolution cache: %w", err)
	}
	return nil
}

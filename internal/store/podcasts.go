package store

import (
	"database/sql"
	"fmt"

	"github.com/franz/podchart/internal/titles"
	"github.com/franz/podchart/internal/util"
)

// Podcast represents the current directory snapshot for one resolved feed.
// Rows are fully replaced on every successful resolution; stale fields never
// survive a refresh.
type Podcast struct {
	ID                 int64
	Title              string
	Description        string
	FeedURL            string
	ImageURL           string
	EpisodeCount       int
	AvgDurationLast10  sql.NullInt64
	LatestEpisodeTitle string
	LastUpdateTime     int64
	GUID               string
	OriginalURL        string
}

// Category is an (id, name) pair from the directory
type Category struct {
	ID   int64
	Name string
}

// ResetPodcasts unconditionally clears the volatile snapshot entities
// (podcasts and their category links). Categories and the chart ledger are
// untouched. Idempotent; this is the rebuild step's sole recovery mechanism.
func (s *Store) ResetPodcasts() error {
	return s.Transaction(func(tx *sql.Tx) error {
		// Links first so the delete never trips the foreign keys
		if _, err := tx.Exec("DELETE FROM podcast_categories"); err != nil {
			return fmt.Errorf("failed to clear podcast_categories: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM podcasts"); err != nil {
			return fmt.Errorf("failed to clear podcasts: %w", err)
		}
		return nil
	})
}

// SavePodcast stores one resolved podcast and its category links as a single
// atomically-committed unit: full replace of the podcast row, insert-if-absent
// categories, and relinking. A failure here never affects other podcasts.
func (s *Store) SavePodcast(p *Podcast, categories []Category) error {
	if p == nil || p.ID == 0 {
		return fmt.Errorf("podcast must have a directory id")
	}

	return s.Transaction(func(tx *sql.Tx) error {
		if err := replacePodcast(tx, p); err != nil {
			return err
		}

		// Drop old links so categories removed upstream don't linger
		if _, err := tx.Exec(
			"DELETE FROM podcast_categories WHERE podcast_id = ?", p.ID,
		); err != nil {
			return fmt.Errorf("failed to clear category links for podcast %d: %w", p.ID, err)
		}

		for _, c := range categories {
			if c.ID == 0 || c.Name == "" {
				continue
			}
			if err := ensureCategory(tx, c.ID, c.Name); err != nil {
				return err
			}
			if err := linkCategory(tx, p.ID, c.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func replacePodcast(tx *sql.Tx, p *Podcast) error {
	_, err := tx.Exec(`
		INSERT OR REPLACE INTO podcasts
			(podcast_id, title, normalized_title, description, feed_url, image_url,
			 episode_count, avg_duration_last_10, latest_episode_title,
			 last_update_time, podcast_guid, original_url)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?)
	`, p.ID, p.Title, titles.Normalize(p.Title), p.Description, p.FeedURL, p.ImageURL,
		p.EpisodeCount, p.AvgDurationLast10, p.LatestEpisodeTitle,
		p.LastUpdateTime, p.GUID, p.OriginalURL)
	if err != nil {
		return fmt.Errorf("failed to replace podcast %d: %w", p.ID, err)
	}
	return nil
}

// ensureCategory inserts a category if absent. An existing row with the same
// id keeps its first-seen name; a conflicting rename from the directory is
// silently ignored.
func ensureCategory(tx *sql.Tx, id int64, name string) error {
	_, err := tx.Exec(
		"INSERT OR IGNORE INTO categories (category_id, category_name) VALUES (?, ?)",
		id, name)
	if err != nil {
		return fmt.Errorf("failed to ensure category %d (%s): %w", id, name, err)
	}
	return nil
}

// linkCategory inserts a podcast/category link if absent. Both sides must
// exist; the coordinator's ordering guarantees that, so a violation here is
// surfaced as ErrReferential rather than silently skipped.
func linkCategory(tx *sql.Tx, podcastID, categoryID int64) error {
	var podcastExists, categoryExists bool
	err := tx.QueryRow(`
		SELECT
			EXISTS(SELECT 1 FROM podcasts WHERE podcast_id = ?),
			EXISTS(SELECT 1 FROM categories WHERE category_id = ?)
	`, podcastID, categoryID).Scan(&podcastExists, &categoryExists)
	if err != nil {
		return fmt.Errorf("failed to check link endpoints: %w", err)
	}
	if !podcastExists || !categoryExists {
		return fmt.Errorf("link %d -> %d: %w", podcastID, categoryID, util.ErrReferential)
	}

	_, err = tx.Exec(
		"INSERT OR IGNORE INTO podcast_categories (podcast_id, category_id) VALUES (?, ?)",
		podcastID, categoryID)
	if err != nil {
		return fmt.Errorf("failed to link podcast %d to category %d: %w", podcastID, categoryID, err)
	}
	return nil
}

// EnsureCategory is the standalone form of ensureCategory
func (s *Store) EnsureCategory(id int64, name string) error {
	return s.Transaction(func(tx *sql.Tx) error {
		return ensureCategory(tx, id, name)
	})
}

// LinkCategory is the standalone form of linkCategory
func (s *Store) LinkCategory(podcastID, categoryID int64) error {
	return s.Transaction(func(tx *sql.Tx) error {
		return linkCategory(tx, podcastID, categoryID)
	})
}

// GetPodcast retrieves a podcast by its directory id, or nil if absent
func (s *Store) GetPodcast(id int64) (*Podcast, error) {
	p := &Podcast{}
	err := s.db.QueryRow(`
		SELECT podcast_id, COALESCE(title, ''), COALESCE(description, ''),
		       COALESCE(feed_url, ''), COALESCE(image_url, ''),
		       COALESCE(episode_count, 0), avg_duration_last_10,
		       COALESCE(latest_episode_title, ''), COALESCE(last_update_time, 0),
		       COALESCE(podcast_guid, ''), COALESCE(original_url, '')
		FROM podcasts WHERE podcast_id = ?
	`, id).Scan(
		&p.ID, &p.Title, &p.Description,
		&p.FeedURL, &p.ImageURL,
		&p.EpisodeCount, &p.AvgDurationLast10,
		&p.LatestEpisodeTitle, &p.LastUpdateTime,
		&p.GUID, &p.OriginalURL,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get podcast %d: %w", id, err)
	}

	return p, nil
}

// ListPodcasts returns the full current snapshot ordered by directory id
func (s *Store) ListPodcasts() ([]Podcast, error) {
	rows, err := s.db.Query(`
		SELECT podcast_id, COALESCE(title, ''), COALESCE(description, ''),
		       COALESCE(feed_url, ''), COALESCE(image_url, ''),
		       COALESCE(episode_count, 0), avg_duration_last_10,
		       COALESCE(latest_episode_title, ''), COALESCE(last_update_time, 0),
		       COALESCE(podcast_guid, ''), COALESCE(original_url, '')
		FROM podcasts ORDER BY podcast_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list podcasts: %w", err)
	}
	defer rows.Close()

	var result []Podcast
	for rows.Next() {
		var p Podcast
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description,
			&p.FeedURL, &p.ImageURL,
			&p.EpisodeCount, &p.AvgDurationLast10,
			&p.LatestEpisodeTitle, &p.LastUpdateTime,
			&p.GUID, &p.OriginalURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan podcast: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// CategoriesForPodcast returns the linked categories for a podcast,
// ordered by category id
func (s *Store) CategoriesForPodcast(podcastID int64) ([]Category, error) {
	rows, err := s.db.Query(`
		SELECT c.category_id, c.category_name
		FROM podcast_categories pc
		JOIN categories c ON c.category_id = pc.category_id
		WHERE pc.podcast_id = ?
		ORDER BY c.category_id
	`, podcastID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories for podcast %d: %w", podcastID, err)
	}
	defer rows.Close()

	var result []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// CategoryName returns the stored name for a category id,
// or "" when the id is unknown
func (s *Store) CategoryName(id int64) (string, error) {
	var name string
	err := s.db.QueryRow(
		"SELECT category_name FROM categories WHERE category_id = ?", id,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return name, nil
}

// OrphanedLinkCount counts links whose podcast or category no longer exists.
// Zero after every successful refresh.
func (s *Store) OrphanedLinkCount() (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM podcast_categories pc
		WHERE NOT EXISTS (SELECT 1 FROM podcasts p WHERE p.podcast_id = pc.podcast_id)
		   OR NOT EXISTS (SELECT 1 FROM categories c WHERE c.category_id = pc.category_id)
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orphaned links: %w", err)
	}
	return count, nil
}

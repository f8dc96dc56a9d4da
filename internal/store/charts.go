package store

import (
	"database/sql"
	"fmt"

	"github.com/franz/podchart/internal/titles"
)

// ChartObservation represents one daily (platform, rank, title) observation.
// Immutable once written; duplicates on the (platform, rank, date) natural key
// are silently dropped.
type ChartObservation struct {
	Platform          string
	Rank              int
	Title             string
	PlatformPodcastID string
	Date              string // YYYY-MM-DD
}

// InsertObservations appends chart observations to the ledger in a single
// transaction, ignoring natural-key duplicates. Returns the number of rows
// actually inserted.
func (s *Store) InsertObservations(observations []ChartObservation) (int, error) {
	if len(observations) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.Transaction(func(tx *sql.Tx) error {
		for _, o := range observations {
			if o.Platform == "" || o.Rank <= 0 || o.Date == "" {
				return fmt.Errorf("invalid observation %+v", o)
			}

			result, err := tx.Exec(`
				INSERT OR IGNORE INTO top100_lists
					(platform, rank, title, normalized_title, platform_podcast_id, date)
				VALUES (?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), ?)
			`, o.Platform, o.Rank, o.Title, titles.Normalize(o.Title), o.PlatformPodcastID, o.Date)
			if err != nil {
				return fmt.Errorf("failed to insert observation: %w", err)
			}

			rows, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to count inserted rows: %w", err)
			}
			inserted += int(rows)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// DistinctChartTitles returns the distinct non-empty raw titles currently on
// the ledger, across all platforms and dates.
func (s *Store) DistinctChartTitles() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT title FROM top100_lists
		WHERE title IS NOT NULL AND TRIM(title) != ''
		ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chart titles: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan chart title: %w", err)
		}
		result = append(result, title)
	}
	return result, rows.Err()
}

// ObservationCount returns the total number of ledger rows
func (s *Store) ObservationCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM top100_lists").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return count, nil
}

// LatestChartDate returns the most recent ledger date for a platform,
// or "" when the platform has no observations.
func (s *Store) LatestChartDate(platform string) (string, error) {
	var date string
	err := s.db.QueryRow(
		"SELECT COALESCE(MAX(date), '') FROM top100_lists WHERE platform = ?", platform,
	).Scan(&date)
	if err != nil {
		return "", fmt.Errorf("failed to query latest chart date: %w", err)
	}
	return date, nil
}

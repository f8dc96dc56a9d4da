package store

import (
	"database/sql"
	"fmt"
	"sort"
)

// ViewNames lists the reporting views in presentation order
var ViewNames = []string{
	"vw_current_details",
	"vw_rank_changes",
	"vw_time_on_list",
	"vw_platform_overlap",
	"vw_new_entries",
}

// RankChange is one row of vw_rank_changes
type RankChange struct {
	Platform     string
	Title        string
	Date         string
	CurrentRank  int
	PreviousRank sql.NullInt64
	RankChange   sql.NullInt64
}

// RankChanges returns the latest-vs-previous rank per (platform, title key)
func (s *Store) RankChanges() ([]RankChange, error) {
	rows, err := s.db.Query(`
		SELECT platform, COALESCE(title, ''), date, current_rank, previous_rank, rank_change
		FROM vw_rank_changes
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rank changes: %w", err)
	}
	defer rows.Close()

	var result []RankChange
	for rows.Next() {
		var rc RankChange
		if err := rows.Scan(&rc.Platform, &rc.Title, &rc.Date,
			&rc.CurrentRank, &rc.PreviousRank, &rc.RankChange); err != nil {
			return nil, fmt.Errorf("failed to scan rank change: %w", err)
		}
		result = append(result, rc)
	}
	return result, rows.Err()
}

// TimeOnList is one row of vw_time_on_list
type TimeOnList struct {
	Platform   string
	Key        string
	Title      string
	DaysOnList int
	FirstSeen  string
	LastSeen   string
}

// TimeOnList returns distinct chart days per (platform, title key)
func (s *Store) TimeOnList() ([]TimeOnList, error) {
	rows, err := s.db.Query(`
		SELECT platform, normalized_title, COALESCE(title, ''), days_on_list, first_seen, last_seen
		FROM vw_time_on_list
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query time on list: %w", err)
	}
	defer rows.Close()

	var result []TimeOnList
	for rows.Next() {
		var tl TimeOnList
		if err := rows.Scan(&tl.Platform, &tl.Key, &tl.Title,
			&tl.DaysOnList, &tl.FirstSeen, &tl.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan time on list: %w", err)
		}
		result = append(result, tl)
	}
	return result, rows.Err()
}

// Overlap is one row of vw_platform_overlap
type Overlap struct {
	Key           string
	Title         string
	PlatformCount int
	Placements    string
}

// PlatformOverlap returns the title keys on more than one platform's latest list
func (s *Store) PlatformOverlap() ([]Overlap, error) {
	rows, err := s.db.Query(`
		SELECT normalized_title, COALESCE(title, ''), platform_count, COALESCE(placements, '')
		FROM vw_platform_overlap
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query platform overlap: %w", err)
	}
	defer rows.Close()

	var result []Overlap
	for rows.Next() {
		var o Overlap
		if err := rows.Scan(&o.Key, &o.Title, &o.PlatformCount, &o.Placements); err != nil {
			return nil, fmt.Errorf("failed to scan overlap: %w", err)
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

// NewEntry is one row of vw_new_entries
type NewEntry struct {
	Platform string
	Rank     int
	Title    string
	Date     string
}

// NewEntries returns entries on the latest list absent from the preceding one
func (s *Store) NewEntries() ([]NewEntry, error) {
	rows, err := s.db.Query(`
		SELECT platform, rank, COALESCE(title, ''), date FROM vw_new_entries
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query new entries: %w", err)
	}
	defer rows.Close()

	var result []NewEntry
	for rows.Next() {
		var e NewEntry
		if err := rows.Scan(&e.Platform, &e.Rank, &e.Title, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan new entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// DumpView returns a view's column names and rows as strings, for display.
// Only the known reporting views are accepted.
func (s *Store) DumpView(name string) ([]string, [][]string, error) {
	known := false
	for _, v := range ViewNames {
		if v == name {
			known = true
			break
		}
	}
	if !known {
		sorted := append([]string(nil), ViewNames...)
		sort.Strings(sorted)
		return nil, nil, fmt.Errorf("unknown view %q (known: %v)", name, sorted)
	}

	rows, err := s.db.Query("SELECT * FROM " + name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var data [][]string
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		scanArgs := make([]interface{}, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		data = append(data, row)
	}
	return columns, data, rows.Err()
}

package store

// Schema v1 - core tables.
// top100_lists is the append-only chart ledger; podcasts, categories and
// podcast_categories hold the current directory snapshot. normalized_title
// columns carry the Go-computed comparison key so the SQL views join on
// exactly the same normalization the resolver uses.
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Daily chart observations (append-only ledger)
CREATE TABLE IF NOT EXISTS top100_lists (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  platform TEXT NOT NULL,
  rank INTEGER NOT NULL,
  title TEXT,
  normalized_title TEXT,
  platform_podcast_id TEXT,
  date TEXT NOT NULL,
  UNIQUE(platform, rank, date)
);

CREATE INDEX IF NOT EXISTS idx_top100_platform_date ON top100_lists(platform, date);
CREATE INDEX IF NOT EXISTS idx_top100_normalized ON top100_lists(normalized_title);

-- Current directory snapshot (volatile, rebuilt every refresh cycle)
CREATE TABLE IF NOT EXISTS podcasts (
  podcast_id INTEGER PRIMARY KEY,
  title TEXT,
  normalized_title TEXT,
  description TEXT,
  feed_url TEXT,
  image_url TEXT,
  episode_count INTEGER,
  avg_duration_last_10 INTEGER,
  latest_episode_title TEXT,
  last_update_time INTEGER,
  podcast_guid TEXT,
  original_url TEXT
);

CREATE INDEX IF NOT EXISTS idx_podcasts_normalized ON podcasts(normalized_title);

-- Category lookup (append-only; rows are never removed)
CREATE TABLE IF NOT EXISTS categories (
  category_id INTEGER PRIMARY KEY,
  category_name TEXT NOT NULL UNIQUE
);

-- Podcast/category links (lifecycle tied to podcasts)
CREATE TABLE IF NOT EXISTS podcast_categories (
  podcast_id INTEGER NOT NULL REFERENCES podcasts(podcast_id) ON DELETE CASCADE,
  category_id INTEGER NOT NULL REFERENCES categories(category_id) ON DELETE CASCADE,
  PRIMARY KEY (podcast_id, category_id)
);

CREATE INDEX IF NOT EXISTS idx_podcast_categories_category ON podcast_categories(category_id);
`

// Schema v2 - reporting views consumed by the report command and downstream
// analytics. "Latest" always means the most recent ledger date per platform.
const schemaV2 = `
-- Latest chart per platform joined with the current directory snapshot
CREATE VIEW IF NOT EXISTS vw_current_details AS
WITH latest AS (
  SELECT platform, MAX(date) AS date
  FROM top100_lists
  GROUP BY platform
)
SELECT
  t.platform,
  t.rank,
  t.title,
  t.date,
  p.title AS canonical_title,
  p.description,
  p.feed_url,
  p.image_url,
  p.episode_count,
  p.avg_duration_last_10,
  p.latest_episode_title,
  GROUP_CONCAT(c.category_name, ', ') AS categories
FROM top100_lists t
JOIN latest l ON l.platform = t.platform AND l.date = t.date
LEFT JOIN podcasts p ON p.normalized_title = t.normalized_title
LEFT JOIN podcast_categories pc ON pc.podcast_id = p.podcast_id
LEFT JOIN categories c ON c.category_id = pc.category_id
GROUP BY t.platform, t.rank, t.title, t.date, p.podcast_id
ORDER BY t.platform, t.rank;

-- Latest vs immediately preceding observed rank per (platform, title key)
CREATE VIEW IF NOT EXISTS vw_rank_changes AS
WITH latest AS (
  SELECT platform, MAX(date) AS date
  FROM top100_lists
  GROUP BY platform
), ranked AS (
  SELECT
    platform,
    normalized_title,
    title,
    date,
    rank,
    LAG(rank) OVER (PARTITION BY platform, normalized_title ORDER BY date) AS previous_rank,
    ROW_NUMBER() OVER (PARTITION BY platform, normalized_title ORDER BY date DESC) AS rn
  FROM top100_lists
  WHERE normalized_title IS NOT NULL AND normalized_title != ''
)
SELECT
  r.platform,
  r.title,
  r.normalized_title,
  r.date,
  r.rank AS current_rank,
  r.previous_rank,
  CASE WHEN r.previous_rank IS NULL THEN NULL ELSE r.previous_rank - r.rank END AS rank_change
FROM ranked r
JOIN latest l ON l.platform = r.platform AND l.date = r.date
WHERE r.rn = 1
ORDER BY r.platform, r.rank;

-- Distinct chart days per (platform, title key)
CREATE VIEW IF NOT EXISTS vw_time_on_list AS
SELECT
  platform,
  normalized_title,
  MIN(title) AS title,
  COUNT(DISTINCT date) AS days_on_list,
  MIN(date) AS first_seen,
  MAX(date) AS last_seen
FROM top100_lists
WHERE normalized_title IS NOT NULL AND normalized_title != ''
GROUP BY platform, normalized_title
ORDER BY days_on_list DESC, normalized_title;

-- Title keys on more than one platform's latest list
CREATE VIEW IF NOT EXISTS vw_platform_overlap AS
WITH latest AS (
  SELECT platform, MAX(date) AS date
  FROM top100_lists
  GROUP BY platform
), current AS (
  SELECT t.*
  FROM top100_lists t
  JOIN latest l ON l.platform = t.platform AND l.date = t.date
  WHERE t.normalized_title IS NOT NULL AND t.normalized_title != ''
)
SELECT
  normalized_title,
  MIN(title) AS title,
  COUNT(DISTINCT platform) AS platform_count,
  GROUP_CONCAT(platform || ':' || rank, ', ') AS placements
FROM current
GROUP BY normalized_title
HAVING COUNT(DISTINCT platform) > 1
ORDER BY platform_count DESC, normalized_title;

-- Entries on the latest list absent from the immediately preceding list
CREATE VIEW IF NOT EXISTS vw_new_entries AS
WITH dates AS (
  SELECT platform, date,
         DENSE_RANK() OVER (PARTITION BY platform ORDER BY date DESC) AS recency
  FROM (SELECT DISTINCT platform, date FROM top100_lists)
), current AS (
  SELECT t.*
  FROM top100_lists t
  JOIN dates d ON d.platform = t.platform AND d.date = t.date AND d.recency = 1
), previous AS (
  SELECT t.*
  FROM top100_lists t
  JOIN dates d ON d.platform = t.platform AND d.date = t.date AND d.recency = 2
)
SELECT
  c.platform,
  c.rank,
  c.title,
  c.date
FROM current c
LEFT JOIN previous p
  ON p.platform = c.platform AND p.normalized_title = c.normalized_title
WHERE p.id IS NULL
  AND c.normalized_title IS NOT NULL AND c.normalized_title != ''
ORDER BY c.platform, c.rank;
`

package store

// Schema v1 - initial database schema and the revenue source seed
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Artists own everything else
CREATE TABLE IF NOT EXISTS artists (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  name_key TEXT UNIQUE NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS albums (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  artist_id INTEGER NOT NULL REFERENCES artists(id) ON DELETE RESTRICT,
  title TEXT NOT NULL,
  title_key TEXT NOT NULL,
  release_date TEXT,
  release_type TEXT NOT NULL DEFAULT 'Album',
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(artist_id, title_key)
);

-- A track may exist without an album (single) but never without an artist
CREATE TABLE IF NOT EXISTS tracks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  artist_id INTEGER NOT NULL REFERENCES artists(id) ON DELETE RESTRICT,
  album_id INTEGER REFERENCES albums(id) ON DELETE RESTRICT,
  title TEXT NOT NULL,
  title_key TEXT NOT NULL,
  duration_sec INTEGER,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(artist_id, title_key)
);

CREATE TABLE IF NOT EXISTS campaigns (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  artist_id INTEGER NOT NULL REFERENCES artists(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  name_key TEXT NOT NULL,
  start_date TEXT,
  end_date TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(artist_id, name_key)
);

-- Closed taxonomy; ids are fixed at seed time and never renumbered
CREATE TABLE IF NOT EXISTS revenue_sources (
  id INTEGER PRIMARY KEY,
  description TEXT UNIQUE NOT NULL
);

INSERT OR IGNORE INTO revenue_sources (id, description) VALUES
  (1, 'Concert'),
  (2, 'Sync'),
  (3, 'Streams'),
  (4, 'Merch'),
  (5, 'Other');

-- Column-to-field recipes; headers and mappings are serialized JSON
CREATE TABLE IF NOT EXISTS import_templates (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT UNIQUE NOT NULL,
  source_name TEXT,
  category TEXT,
  headers TEXT NOT NULL,
  mappings TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- The ledger. Amounts are integer cents so aggregation is exact;
-- revenue_date is DateLayout text so range scans stay lexicographic.
CREATE TABLE IF NOT EXISTS revenue_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  artist_id INTEGER NOT NULL REFERENCES artists(id) ON DELETE RESTRICT,
  source_id INTEGER NOT NULL REFERENCES revenue_sources(id) ON DELETE RESTRICT,
  amount_cents INTEGER NOT NULL,
  revenue_date TEXT NOT NULL,
  description TEXT,
  integration TEXT,
  track_id INTEGER REFERENCES tracks(id) ON DELETE RESTRICT,
  album_id INTEGER REFERENCES albums(id) ON DELETE RESTRICT,
  campaign_id INTEGER REFERENCES campaigns(id) ON DELETE RESTRICT,
  import_template_id INTEGER REFERENCES import_templates(id) ON DELETE RESTRICT,
  row_json TEXT,
  column_mapping TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_entries_artist ON revenue_entries(artist_id);
CREATE INDEX IF NOT EXISTS idx_entries_source ON revenue_entries(source_id);
CREATE INDEX IF NOT EXISTS idx_entries_date ON revenue_entries(revenue_date);

-- One audit row per import batch
CREATE TABLE IF NOT EXISTS import_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_key TEXT UNIQUE NOT NULL,
  template_id INTEGER REFERENCES import_templates(id) ON DELETE RESTRICT,
  accepted INTEGER NOT NULL DEFAULT 0,
  row_errors INTEGER NOT NULL DEFAULT 0,
  duplicates INTEGER NOT NULL DEFAULT 0,
  started_at DATETIME,
  finished_at DATETIME
);
`

// Schema v2 - performance indexes for rollups and duplicate checks
const schemaV2 = `
-- recentActivity scans newest-first with the id tie-break
CREATE INDEX IF NOT EXISTS idx_entries_date_id ON revenue_entries(revenue_date DESC, id DESC);

-- duplicate-suppression tuple lookup
CREATE INDEX IF NOT EXISTS idx_entries_dup ON revenue_entries(artist_id, source_id, amount_cents, revenue_date);

-- drill-down joins
CREATE INDEX IF NOT EXISTS idx_entries_template ON revenue_entries(import_template_id);
CREATE INDEX IF NOT EXISTS idx_tracks_album ON tracks(album_id);
`

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mika/artist-ledger/internal/normalize"
	"github.com/mika/artist-ledger/internal/util"
)

// AssetView is the collaborator-facing union of albums, tracks, and
// campaigns, used by asset listings and drill-downs.
type AssetView struct {
	Kind       string // "album", "track", or "campaign"
	ID         int64
	ArtistID   int64
	ArtistName string
	Title      string
}

// InsertAlbum inserts a new album for an artist
func (s *Store) InsertAlbum(a *Album) error {
	a.Title = normalize.Clean(a.Title)
	if a.Title == "" {
		return fmt.Errorf("%w: album title is required", util.ErrValidation)
	}
	if a.ReleaseType == "" {
		a.ReleaseType = "Album"
	}

	result, err := s.db.Exec(`
		INSERT INTO albums (artist_id, title, title_key, release_date, release_type)
		VALUES (?, ?, ?, NULLIF(?, ''), ?)
	`, a.ArtistID, a.Title, normalize.Key(a.Title), a.ReleaseDate, a.ReleaseType)
	if err != nil {
		return fmt.Errorf("failed to insert album: %w", err)
	}

	a.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get album ID: %w", err)
	}
	return nil
}

// GetAlbumByTitle retrieves an artist's album by normalized title, or nil
func (s *Store) GetAlbumByTitle(artistID int64, title string) (*Album, error) {
	a := &Album{}
	var releaseDate sql.NullString
	err := s.db.QueryRow(`
		SELECT id, artist_id, title, COALESCE(release_date, ''), release_type, created_at, updated_at
		FROM albums WHERE artist_id = ? AND title_key = ?
	`, artistID, normalize.Key(title)).Scan(
		&a.ID, &a.ArtistID, &a.Title, &releaseDate, &a.ReleaseType, &a.CreatedAt, &a.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	a.ReleaseDate = releaseDate.String
	return a, nil
}

// GetAlbumByID retrieves an album, or nil when absent
func (s *Store) GetAlbumByID(id int64) (*Album, error) {
	a := &Album{}
	var releaseDate sql.NullString
	err := s.db.QueryRow(`
		SELECT id, artist_id, title, COALESCE(release_date, ''), release_type, created_at, updated_at
		FROM albums WHERE id = ?
	`, id).Scan(&a.ID, &a.ArtistID, &a.Title, &releaseDate, &a.ReleaseType, &a.CreatedAt, &a.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	a.ReleaseDate = releaseDate.String
	return a, nil
}

// InsertTrack inserts a new track for an artist
func (s *Store) InsertTrack(t *Track) error {
	t.Title = normalize.Clean(t.Title)
	if t.Title == "" {
		return fmt.Errorf("%w: track title is required", util.ErrValidation)
	}

	result, err := s.db.Exec(`
		INSERT INTO tracks (artist_id, album_id, title, title_key, duration_sec)
		VALUES (?, NULLIF(?, 0), ?, ?, NULLIF(?, 0))
	`, t.ArtistID, t.AlbumID, t.Title, normalize.Key(t.Title), t.DurationSec)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	t.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get track ID: %w", err)
	}
	return nil
}

// GetTrackByTitle retrieves an artist's track by normalized title, or nil
func (s *Store) GetTrackByTitle(artistID int64, title string) (*Track, error) {
	t := &Track{}
	err := s.db.QueryRow(`
		SELECT id, artist_id, COALESCE(album_id, 0), title, COALESCE(duration_sec, 0), created_at, updated_at
		FROM tracks WHERE artist_id = ? AND title_key = ?
	`, artistID, normalize.Key(title)).Scan(
		&t.ID, &t.ArtistID, &t.AlbumID, &t.Title, &t.DurationSec, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	return t, nil
}

// GetTrackByID retrieves a track, or nil when absent
func (s *Store) GetTrackByID(id int64) (*Track, error) {
	t := &Track{}
	err := s.db.QueryRow(`
		SELECT id, artist_id, COALESCE(album_id, 0), title, COALESCE(duration_sec, 0), created_at, updated_at
		FROM tracks WHERE id = ?
	`, id).Scan(&t.ID, &t.ArtistID, &t.AlbumID, &t.Title, &t.DurationSec, &t.CreatedAt, &t.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	return t, nil
}

// InsertCampaign inserts a new campaign for an artist
func (s *Store) InsertCampaign(c *Campaign) error {
	c.Name = normalize.Clean(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: campaign name is required", util.ErrValidation)
	}

	result, err := s.db.Exec(`
		INSERT INTO campaigns (artist_id, name, name_key, start_date, end_date)
		VALUES (?, ?, ?, NULLIF(?, ''), NULLIF(?, ''))
	`, c.ArtistID, c.Name, normalize.Key(c.Name), c.StartDate, c.EndDate)
	if err != nil {
		return fmt.Errorf("failed to insert campaign: %w", err)
	}

	c.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get campaign ID: %w", err)
	}
	return nil
}

// GetCampaignByName retrieves an artist's campaign by normalized name, or nil
func (s *Store) GetCampaignByName(artistID int64, name string) (*Campaign, error) {
	c := &Campaign{}
	var start, end sql.NullString
	err := s.db.QueryRow(`
		SELECT id, artist_id, name, COALESCE(start_date, ''), COALESCE(end_date, ''), created_at, updated_at
		FROM campaigns WHERE artist_id = ? AND name_key = ?
	`, artistID, normalize.Key(name)).Scan(
		&c.ID, &c.ArtistID, &c.Name, &start, &end, &c.CreatedAt, &c.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	c.StartDate = start.String
	c.EndDate = end.String
	return c, nil
}

// GetCampaignByID retrieves a campaign, or nil when absent
func (s *Store) GetCampaignByID(id int64) (*Campaign, error) {
	c := &Campaign{}
	var start, end sql.NullString
	err := s.db.QueryRow(`
		SELECT id, artist_id, name, COALESCE(start_date, ''), COALESCE(end_date, ''), created_at, updated_at
		FROM campaigns WHERE id = ?
	`, id).Scan(&c.ID, &c.ArtistID, &c.Name, &start, &end, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	c.StartDate = start.String
	c.EndDate = end.String
	return c, nil
}

// ListAssets returns every album, track, and campaign with its owner,
// ordered by artist then title
func (s *Store) ListAssets() ([]*AssetView, error) {
	rows, err := s.db.Query(`
		SELECT 'album' AS kind, al.id, al.artist_id, ar.name, al.title
		FROM albums al JOIN artists ar ON ar.id = al.artist_id
		UNION ALL
		SELECT 'track', t.id, t.artist_id, ar.name, t.title
		FROM tracks t JOIN artists ar ON ar.id = t.artist_id
		UNION ALL
		SELECT 'campaign', c.id, c.artist_id, ar.name, c.name
		FROM campaigns c JOIN artists ar ON ar.id = c.artist_id
		ORDER BY 4, 1, 5
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*AssetView
	for rows.Next() {
		v := &AssetView{}
		if err := rows.Scan(&v.Kind, &v.ID, &v.ArtistID, &v.ArtistName, &v.Title); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, v)
	}
	return assets, rows.Err()
}

// DeleteAsset removes an album, track, or campaign by kind and id.
// The delete is restricted while revenue entries (or, for albums,
// tracks) still reference it.
func (s *Store) DeleteAsset(kind string, id int64) error {
	var table, fk string
	switch kind {
	case "album":
		table, fk = "albums", "album_id"
	case "track":
		table, fk = "tracks", "track_id"
	case "campaign":
		table, fk = "campaigns", "campaign_id"
	default:
		return fmt.Errorf("%w: unknown asset kind %q", util.ErrValidation, kind)
	}

	var refs int
	err := s.db.QueryRow(
		fmt.Sprintf("SELECT COUNT(*) FROM revenue_entries WHERE %s = ?", fk), id,
	).Scan(&refs)
	if err != nil {
		return fmt.Errorf("failed to count %s references: %w", kind, err)
	}
	if kind == "album" {
		var trackRefs int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM tracks WHERE album_id = ?", id).Scan(&trackRefs); err != nil {
			return fmt.Errorf("failed to count album track references: %w", err)
		}
		refs += trackRefs
	}
	if refs > 0 {
		return fmt.Errorf("%w: %s %d has %d referencing rows", util.ErrRestricted, kind, id, refs)
	}

	result, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", util.ErrNotFound, kind, id)
	}
	return nil
}

// TouchAsset bumps updated_at on an asset after a direct edit
func (s *Store) TouchAsset(kind string, id int64) error {
	var table string
	switch kind {
	case "album":
		table = "albums"
	case "track":
		table = "tracks"
	case "campaign":
		table = "campaigns"
	default:
		return fmt.Errorf("%w: unknown asset kind %q", util.ErrValidation, kind)
	}
	_, err := s.db.Exec(fmt.Sprintf("UPDATE %s SET updated_at = ? WHERE id = ?", table), time.Now(), id)
	return err
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mika/artist-ledger/internal/normalize"
	"github.com/mika/artist-ledger/internal/util"
)

// InsertArtist inserts a new artist. Name matching is case-insensitive:
// inserting a name whose normalized key already exists fails on the
// unique constraint.
func (s *Store) InsertArtist(a *Artist) error {
	a.Name = normalize.Clean(a.Name)
	if a.Name == "" {
		return fmt.Errorf("%w: artist name is required", util.ErrValidation)
	}

	result, err := s.db.Exec(`
		INSERT INTO artists (name, name_key) VALUES (?, ?)
	`, a.Name, normalize.Key(a.Name))
	if err != nil {
		return fmt.Errorf("failed to insert artist: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get artist ID: %w", err)
	}
	a.ID = id
	return nil
}

// GetArtistByID retrieves an artist, or nil when absent
func (s *Store) GetArtistByID(id int64) (*Artist, error) {
	a := &Artist{}
	err := s.db.QueryRow(`
		SELECT id, name, created_at, updated_at FROM artists WHERE id = ?
	`, id).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	return a, nil
}

// GetArtistByName retrieves an artist by normalized name, or nil when absent
func (s *Store) GetArtistByName(name string) (*Artist, error) {
	a := &Artist{}
	err := s.db.QueryRow(`
		SELECT id, name, created_at, updated_at FROM artists WHERE name_key = ?
	`, normalize.Key(name)).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artist by name: %w", err)
	}
	return a, nil
}

// ListArtists returns all artists ordered by name
func (s *Store) ListArtists() ([]*Artist, error) {
	rows, err := s.db.Query(`
		SELECT id, name, created_at, updated_at FROM artists ORDER BY name_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}
	defer rows.Close()

	var artists []*Artist
	for rows.Next() {
		a := &Artist{}
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// UpdateArtistName renames an artist and bumps updated_at
func (s *Store) UpdateArtistName(id int64, name string) error {
	name = normalize.Clean(name)
	if name == "" {
		return fmt.Errorf("%w: artist name is required", util.ErrValidation)
	}

	result, err := s.db.Exec(`
		UPDATE artists SET name = ?, name_key = ?, updated_at = ? WHERE id = ?
	`, name, normalize.Key(name), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: artist %d", util.ErrNotFound, id)
	}
	return nil
}

// DeleteArtist removes an artist. The delete is restricted while any
// album, track, campaign, or revenue entry still references it.
func (s *Store) DeleteArtist(id int64) error {
	var refs int
	err := s.db.QueryRow(`
		SELECT (SELECT COUNT(*) FROM revenue_entries WHERE artist_id = ?1)
		     + (SELECT COUNT(*) FROM albums WHERE artist_id = ?1)
		     + (SELECT COUNT(*) FROM tracks WHERE artist_id = ?1)
		     + (SELECT COUNT(*) FROM campaigns WHERE artist_id = ?1)
	`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("failed to count artist references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: artist %d has %d referencing rows", util.ErrRestricted, id, refs)
	}

	result, err := s.db.Exec("DELETE FROM artists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete artist: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: artist %d", util.ErrNotFound, id)
	}
	return nil
}

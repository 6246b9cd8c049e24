package store

import (
	"database/sql"
	"fmt"

	"github.com/mika/artist-ledger/internal/normalize"
	"github.com/mika/artist-ledger/internal/util"
)

// seededSources is the fixed taxonomy; ids are part of the external
// contract because stored entries reference them numerically.
var seededSources = []RevenueSource{
	{ID: 1, Description: "Concert"},
	{ID: 2, Description: "Sync"},
	{ID: 3, Description: "Streams"},
	{ID: 4, Description: "Merch"},
	{ID: 5, Description: "Other"},
}

// GetSourceByDescription resolves a revenue source by its description
// text. The taxonomy is closed: no match is ErrNotFound, never a create.
func (s *Store) GetSourceByDescription(description string) (*RevenueSource, error) {
	src := &RevenueSource{}
	err := s.db.QueryRow(`
		SELECT id, description FROM revenue_sources WHERE LOWER(TRIM(description)) = ?
	`, normalize.Key(description)).Scan(&src.ID, &src.Description)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: revenue source %q", util.ErrNotFound, description)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revenue source: %w", err)
	}
	return src, nil
}

// GetSourceByID retrieves a revenue source row, or nil when absent
func (s *Store) GetSourceByID(id int64) (*RevenueSource, error) {
	src := &RevenueSource{}
	err := s.db.QueryRow(`
		SELECT id, description FROM revenue_sources WHERE id = ?
	`, id).Scan(&src.ID, &src.Description)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get revenue source: %w", err)
	}
	return src, nil
}

// ListSources returns the seeded taxonomy in id order
func (s *Store) ListSources() ([]*RevenueSource, error) {
	rows, err := s.db.Query("SELECT id, description FROM revenue_sources ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list revenue sources: %w", err)
	}
	defer rows.Close()

	var sources []*RevenueSource
	for rows.Next() {
		src := &RevenueSource{}
		if err := rows.Scan(&src.ID, &src.Description); err != nil {
			return nil, fmt.Errorf("failed to scan revenue source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// VerifySourceSeed checks the persisted taxonomy against the fixed seed
func (s *Store) VerifySourceSeed() error {
	sources, err := s.ListSources()
	if err != nil {
		return err
	}
	if len(sources) != len(seededSources) {
		return fmt.Errorf("expected %d revenue sources, found %d", len(seededSources), len(sources))
	}
	for i, want := range seededSources {
		got := sources[i]
		if got.ID != want.ID || got.Description != want.Description {
			return fmt.Errorf("revenue source %d is %d:%q, expected %d:%q",
				i, got.ID, got.Description, want.ID, want.Description)
		}
	}
	return nil
}

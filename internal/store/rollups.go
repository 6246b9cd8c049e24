package store

import (
	"fmt"
	"time"

	"github.com/mika/artist-ledger/internal/normalize"
	"github.com/shopspring/decimal"
)

// Rollups recompute from the ledger on every query. There are no
// running totals to invalidate; consistency comes for free.

// CategoryTotal is one group of the category rollup
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Entries  int
}

// AssetTotal is one asset within a category drill-down
type AssetTotal struct {
	Kind  string // "track", "album", "campaign", or "none"
	ID    int64
	Name  string
	Total decimal.Decimal
}

// EntryView is a ledger line joined with its display names
type EntryView struct {
	ID          int64
	ArtistName  string
	SourceName  string
	Amount      decimal.Decimal
	RevenueDate time.Time
	Description string
	AssetName   string
}

// TotalRevenue sums amounts over [from, to] inclusive, scoped to one
// artist when artistID > 0. An empty range sums to zero, not an error.
func (s *Store) TotalRevenue(artistID int64, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount_cents), 0) FROM revenue_entries
		WHERE revenue_date >= ? AND revenue_date <= ?
	`
	args := []interface{}{from.Format(DateLayout), to.Format(DateLayout)}
	if artistID > 0 {
		query += " AND artist_id = ?"
		args = append(args, artistID)
	}

	var cents int64
	if err := s.db.QueryRow(query, args...).Scan(&cents); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return amountFromCents(cents), nil
}

// RevenueByCategory groups the whole ledger by the category of each
// entry's import template. Keys are case- and whitespace-normalized;
// entries without a template or category land in "Uncategorized".
func (s *Store) RevenueByCategory() ([]*CategoryTotal, error) {
	rows, err := s.db.Query(`
		SELECT MIN(COALESCE(NULLIF(TRIM(t.category), ''), 'Uncategorized')) AS display,
		       SUM(e.amount_cents), COUNT(*)
		FROM revenue_entries e
		LEFT JOIN import_templates t ON t.id = e.import_template_id
		GROUP BY LOWER(TRIM(COALESCE(NULLIF(TRIM(t.category), ''), 'Uncategorized')))
		ORDER BY SUM(e.amount_cents) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to group revenue by category: %w", err)
	}
	defer rows.Close()

	var totals []*CategoryTotal
	for rows.Next() {
		ct := &CategoryTotal{}
		var cents int64
		if err := rows.Scan(&ct.Category, &cents, &ct.Entries); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		ct.Total = amountFromCents(cents)
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// RevenueByAsset drills one level into a category: per asset, where an
// entry's asset is its track when set, else its album, else its
// campaign. Attribution is additive context, so a track-level entry
// counts once under its track, never again under its album.
func (s *Store) RevenueByAsset(category string) ([]*AssetTotal, error) {
	rows, err := s.db.Query(`
		SELECT
			CASE WHEN e.track_id IS NOT NULL THEN 'track'
			     WHEN e.album_id IS NOT NULL THEN 'album'
			     WHEN e.campaign_id IS NOT NULL THEN 'campaign'
			     ELSE 'none' END AS kind,
			COALESCE(e.track_id, e.album_id, e.campaign_id, 0) AS asset_id,
			COALESCE(tr.title, al.title, c.name, 'Unattributed') AS name,
			SUM(e.amount_cents)
		FROM revenue_entries e
		LEFT JOIN import_templates t ON t.id = e.import_template_id
		LEFT JOIN tracks tr ON tr.id = e.track_id
		LEFT JOIN albums al ON al.id = e.album_id
		LEFT JOIN campaigns c ON c.id = e.campaign_id
		WHERE LOWER(TRIM(COALESCE(NULLIF(TRIM(t.category), ''), 'Uncategorized'))) = ?
		GROUP BY kind, asset_id
		ORDER BY SUM(e.amount_cents) DESC
	`, normalize.Key(emptyToUncategorized(category)))
	if err != nil {
		return nil, fmt.Errorf("failed to group revenue by asset: %w", err)
	}
	defer rows.Close()

	var totals []*AssetTotal
	for rows.Next() {
		at := &AssetTotal{}
		var cents int64
		if err := rows.Scan(&at.Kind, &at.ID, &at.Name, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan asset total: %w", err)
		}
		at.Total = amountFromCents(cents)
		totals = append(totals, at)
	}
	return totals, rows.Err()
}

func emptyToUncategorized(category string) string {
	if category == "" {
		return "Uncategorized"
	}
	return category
}

// RecentActivity returns the newest entries by revenue date descending,
// with id descending as a stable tie-break so pagination stays
// deterministic when many entries share a date.
func (s *Store) RecentActivity(limit int) ([]*EntryView, error) {
	rows, err := s.db.Query(`
		SELECT e.id, a.name, src.description, e.amount_cents, e.revenue_date,
		       COALESCE(e.description, ''),
		       COALESCE(tr.title, al.title, c.name, '')
		FROM revenue_entries e
		JOIN artists a ON a.id = e.artist_id
		JOIN revenue_sources src ON src.id = e.source_id
		LEFT JOIN tracks tr ON tr.id = e.track_id
		LEFT JOIN albums al ON al.id = e.album_id
		LEFT JOIN campaigns c ON c.id = e.campaign_id
		ORDER BY e.revenue_date DESC, e.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}
	defer rows.Close()

	var views []*EntryView
	for rows.Next() {
		v := &EntryView{}
		var cents int64
		var date string
		if err := rows.Scan(&v.ID, &v.ArtistName, &v.SourceName, &cents, &date,
			&v.Description, &v.AssetName); err != nil {
			return nil, fmt.Errorf("failed to scan recent entry: %w", err)
		}
		v.Amount = amountFromCents(cents)
		v.RevenueDate, err = time.Parse(DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("corrupt revenue_date %q on entry %d: %w", date, v.ID, err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

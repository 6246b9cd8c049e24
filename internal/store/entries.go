package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mika/artist-ledger/internal/util"
	"github.com/shopspring/decimal"
)

// Amounts are persisted as integer cents so SQL aggregation is exact.
// The ledger carries exactly two fractional digits end to end.

func centsFromAmount(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func amountFromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// InsertEntry inserts a single ledger line outside any batch
func (s *Store) InsertEntry(e *RevenueEntry) error {
	return s.Transaction(func(tx *sql.Tx) error {
		return insertEntryTx(tx, e)
	})
}

// InsertEntryBatch persists a batch of accepted entries plus its audit
// run in one transaction. The write is all-or-nothing: a failure on any
// entry rolls back the whole batch, including the run record.
func (s *Store) InsertEntryBatch(entries []*RevenueEntry, run *ImportRun) error {
	return s.Transaction(func(tx *sql.Tx) error {
		for _, e := range entries {
			if err := insertEntryTx(tx, e); err != nil {
				return err
			}
		}
		if run == nil {
			return nil
		}

		result, err := tx.Exec(`
			INSERT INTO import_runs (run_key, template_id, accepted, row_errors, duplicates, started_at, finished_at)
			VALUES (?, NULLIF(?, 0), ?, ?, ?, ?, ?)
		`, run.RunKey, run.TemplateID, run.Accepted, run.RowErrors, run.Duplicates,
			run.StartedAt, run.FinishedAt)
		if err != nil {
			return fmt.Errorf("failed to insert import run: %w", err)
		}
		run.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get import run ID: %w", err)
		}
		return nil
	})
}

func insertEntryTx(tx *sql.Tx, e *RevenueEntry) error {
	result, err := tx.Exec(`
		INSERT INTO revenue_entries (
			artist_id, source_id, amount_cents, revenue_date,
			description, integration,
			track_id, album_id, campaign_id, import_template_id,
			row_json, column_mapping
		) VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, 0), NULLIF(?, 0), NULLIF(?, 0), NULLIF(?, 0), NULLIF(?, ''), NULLIF(?, ''))
	`, e.ArtistID, e.SourceID, centsFromAmount(e.Amount), e.RevenueDate.Format(DateLayout),
		e.Description, e.Integration,
		e.TrackID, e.AlbumID, e.CampaignID, e.ImportTemplateID,
		e.RowJSON, e.ColumnMapping)
	if err != nil {
		return fmt.Errorf("failed to insert revenue entry: %w", err)
	}

	e.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get entry ID: %w", err)
	}
	return nil
}

// HasDuplicate reports whether a persisted entry already matches the
// duplicate tuple (artist, source, amount, date, trimmed description)
func (s *Store) HasDuplicate(artistID, sourceID int64, amount decimal.Decimal, revenueDate time.Time, description string) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM revenue_entries
		WHERE artist_id = ? AND source_id = ? AND amount_cents = ? AND revenue_date = ?
		  AND TRIM(COALESCE(description, '')) = ?
	`, artistID, sourceID, centsFromAmount(amount), revenueDate.Format(DateLayout),
		strings.TrimSpace(description)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate entry: %w", err)
	}
	return count > 0, nil
}

// GetEntry retrieves a ledger line by id, or nil when absent
func (s *Store) GetEntry(id int64) (*RevenueEntry, error) {
	e := &RevenueEntry{}
	var cents int64
	var date string
	err := s.db.QueryRow(`
		SELECT id, artist_id, source_id, amount_cents, revenue_date,
		       COALESCE(description, ''), COALESCE(integration, ''),
		       COALESCE(track_id, 0), COALESCE(album_id, 0), COALESCE(campaign_id, 0),
		       COALESCE(import_template_id, 0),
		       COALESCE(row_json, ''), COALESCE(column_mapping, ''),
		       created_at, updated_at
		FROM revenue_entries WHERE id = ?
	`, id).Scan(
		&e.ID, &e.ArtistID, &e.SourceID, &cents, &date,
		&e.Description, &e.Integration,
		&e.TrackID, &e.AlbumID, &e.CampaignID,
		&e.ImportTemplateID,
		&e.RowJSON, &e.ColumnMapping,
		&e.CreatedAt, &e.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	e.Amount = amountFromCents(cents)
	e.RevenueDate, err = time.Parse(DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("corrupt revenue_date %q on entry %d: %w", date, id, err)
	}
	return e, nil
}

// UpdateEntryDescription edits a ledger line's description.
// Entries are otherwise immutable; updated_at is bumped, created_at never.
func (s *Store) UpdateEntryDescription(id int64, description string) error {
	result, err := s.db.Exec(`
		UPDATE revenue_entries SET description = NULLIF(?, ''), updated_at = ? WHERE id = ?
	`, description, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: entry %d", util.ErrNotFound, id)
	}
	return nil
}

// CountEntries returns the ledger size
func (s *Store) CountEntries() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM revenue_entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// ListImportRuns returns audit rows, newest first
func (s *Store) ListImportRuns(limit int) ([]*ImportRun, error) {
	rows, err := s.db.Query(`
		SELECT id, run_key, COALESCE(template_id, 0), accepted, row_errors, duplicates,
		       started_at, finished_at
		FROM import_runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	var runs []*ImportRun
	for rows.Next() {
		r := &ImportRun{}
		if err := rows.Scan(&r.ID, &r.RunKey, &r.TemplateID, &r.Accepted, &r.RowErrors,
			&r.Duplicates, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

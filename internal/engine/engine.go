package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mika/artist-ledger/internal/mapping"
	"github.com/mika/artist-ledger/internal/row"
	"github.com/mika/artist-ledger/internal/store"
	"github.com/mika/artist-ledger/internal/util"
	"github.com/shopspring/decimal"
)

// Options tune how imports resolve and filter rows
type Options struct {
	// CreateMissing lets imports create artists, albums, and tracks
	// that name-resolution misses. Campaigns are never auto-created.
	CreateMissing bool

	// SuppressDuplicates excludes rows matching an already-imported
	// entry, reporting them separately from hard errors
	SuppressDuplicates bool

	// DateFormats overrides the coercion fallback list when non-empty
	DateFormats []string
}

// Engine is the attribution and aggregation facade over the store.
// Mapping is pure computation; the store is the only collaborator, and
// it is passed in explicitly so the engine stays testable.
type Engine struct {
	store *store.Store
	opts  Options
}

// New returns an engine over an open store
func New(s *store.Store, opts Options) *Engine {
	return &Engine{store: s, opts: opts}
}

// ImportResult reports how every row of a batch was classified
type ImportResult struct {
	RunKey     string
	Accepted   []*store.RevenueEntry
	RowErrors  []mapping.RowError
	Duplicates []mapping.RowError
}

// ImportBatch is the sole ingestion entry point: it applies the
// template to the rows, filters per-row failures and duplicates, and
// persists whatever was accepted in one transaction together with the
// run's audit record. Batch-level errors abort before any write; a
// cancelled context before the write leaves no persisted side effects
// on the ledger.
func (e *Engine) ImportBatch(ctx context.Context, templateID int64, rows []*row.Buffer) (*ImportResult, error) {
	tpl, err := e.store.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: template %d", util.ErrNotFound, templateID)
	}

	started := time.Now()

	mapper := mapping.New(&storeResolver{store: e.store}, mapping.Options{
		CreateMissing:      e.opts.CreateMissing,
		SuppressDuplicates: e.opts.SuppressDuplicates,
		DateFormats:        e.opts.DateFormats,
	})

	mapped, err := mapper.MapBatch(tpl, rows)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := &store.ImportRun{
		RunKey:     uuid.NewString(),
		TemplateID: tpl.ID,
		Accepted:   len(mapped.Accepted),
		RowErrors:  len(mapped.RowErrors),
		Duplicates: len(mapped.Duplicates),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := e.store.InsertEntryBatch(mapped.Accepted, run); err != nil {
		return nil, fmt.Errorf("batch write failed, rolled back: %w", err)
	}

	util.InfoLog("import run %s: %d accepted, %d errors, %d duplicates",
		run.RunKey, run.Accepted, run.RowErrors, run.Duplicates)

	return &ImportResult{
		RunKey:     run.RunKey,
		Accepted:   mapped.Accepted,
		RowErrors:  mapped.RowErrors,
		Duplicates: mapped.Duplicates,
	}, nil
}

// ManualEntry carries the fields of a single hand-entered ledger line
type ManualEntry struct {
	ArtistID    int64
	SourceID    int64
	Amount      decimal.Decimal
	RevenueDate time.Time
	Description string
	Integration string
	TrackID     int64
	AlbumID     int64
	CampaignID  int64
}

// CreateManualEntry validates and persists one entry outside any
// template, using the same referential rules the import path applies
func (e *Engine) CreateManualEntry(m ManualEntry) (*store.RevenueEntry, error) {
	if err := e.validateManual(m); err != nil {
		return nil, err
	}

	entry := &store.RevenueEntry{
		ArtistID:    m.ArtistID,
		SourceID:    m.SourceID,
		Amount:      m.Amount.Round(2),
		RevenueDate: m.RevenueDate,
		Description: m.Description,
		Integration: m.Integration,
		TrackID:     m.TrackID,
		AlbumID:     m.AlbumID,
		CampaignID:  m.CampaignID,
	}
	if err := e.store.InsertEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (e *Engine) validateManual(m ManualEntry) error {
	if m.RevenueDate.IsZero() {
		return fmt.Errorf("%w: revenue date is required", util.ErrValidation)
	}

	artist, err := e.store.GetArtistByID(m.ArtistID)
	if err != nil {
		return err
	}
	if artist == nil {
		return fmt.Errorf("%w: artist %d does not exist", util.ErrValidation, m.ArtistID)
	}

	source, err := e.store.GetSourceByID(m.SourceID)
	if err != nil {
		return err
	}
	if source == nil {
		return fmt.Errorf("%w: revenue source %d does not exist", util.ErrValidation, m.SourceID)
	}

	// Attribution is additive context, but every attributed asset must
	// exist and belong to the entry's artist
	if m.TrackID != 0 {
		track, err := e.store.GetTrackByID(m.TrackID)
		if err != nil {
			return err
		}
		if track == nil || track.ArtistID != m.ArtistID {
			return fmt.Errorf("%w: track %d does not belong to artist %d", util.ErrValidation, m.TrackID, m.ArtistID)
		}
	}
	if m.AlbumID != 0 {
		album, err := e.store.GetAlbumByID(m.AlbumID)
		if err != nil {
			return err
		}
		if album == nil || album.ArtistID != m.ArtistID {
			return fmt.Errorf("%w: album %d does not belong to artist %d", util.ErrValidation, m.AlbumID, m.ArtistID)
		}
	}
	if m.CampaignID != 0 {
		campaign, err := e.store.GetCampaignByID(m.CampaignID)
		if err != nil {
			return err
		}
		if campaign == nil || campaign.ArtistID != m.ArtistID {
			return fmt.Errorf("%w: campaign %d does not belong to artist %d", util.ErrValidation, m.CampaignID, m.ArtistID)
		}
	}
	return nil
}

// TotalRevenue sums the ledger over [from, to] inclusive, scoped to one
// artist when artistID > 0
func (e *Engine) TotalRevenue(artistID int64, from, to time.Time) (Money, error) {
	total, err := e.store.TotalRevenue(artistID, from, to)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: total}, nil
}

// RevenueByCategory rolls the ledger up by template category
func (e *Engine) RevenueByCategory() ([]*store.CategoryTotal, error) {
	return e.store.RevenueByCategory()
}

// RevenueByAsset drills one level into a category
func (e *Engine) RevenueByAsset(category string) ([]*store.AssetTotal, error) {
	return e.store.RevenueByAsset(category)
}

// RecentActivity returns the newest entries, date then id descending
func (e *Engine) RecentActivity(limit int) ([]*store.EntryView, error) {
	if limit <= 0 {
		limit = 10
	}
	return e.store.RecentActivity(limit)
}

// ListAssets is a collaborator-facing passthrough to the store
func (e *Engine) ListAssets() ([]*store.AssetView, error) {
	return e.store.ListAssets()
}

// DeleteAsset is a collaborator-facing passthrough; deletes are
// restricted while entries reference the asset
func (e *Engine) DeleteAsset(kind string, id int64) error {
	return e.store.DeleteAsset(kind, id)
}

package engine

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/mika/artist-ledger/internal/row"
	"github.com/mika/artist-ledger/internal/store"
	"github.com/mika/artist-ledger/internal/template"
	"github.com/mika/artist-ledger/internal/util"
	"github.com/shopspring/decimal"
)

func testEngine(t *testing.T, name string, opts Options) (*Engine, *store.Store) {
	t.Helper()
	tmpFile := name + ".db"
	t.Cleanup(func() {
		os.Remove(tmpFile)
		os.Remove(tmpFile + "-shm")
		os.Remove(tmpFile + "-wal")
	})

	s, err := store.Open(tmpFile)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s, opts), s
}

func seedTemplate(t *testing.T, s *store.Store) *template.Template {
	t.Helper()
	tpl := &template.Template{
		Name:        "streams-monthly",
		SourceName:  "spotify",
		Category:    "Digital",
		RawHeaders:  `["Date","Amt","Who","Src"]`,
		RawMappings: `{"revenueDate":"Date","amount":"Amt","artist":"Who","source":"Src"}`,
	}
	if err := s.InsertTemplate(tpl); err != nil {
		t.Fatalf("failed to seed template: %v", err)
	}
	return tpl
}

func textRow(t *testing.T, cells ...string) *row.Buffer {
	t.Helper()
	b := row.NewBuffer()
	for i, c := range cells {
		if err := b.SetValue(i, row.TextCell(c)); err != nil {
			t.Fatalf("failed to build row: %v", err)
		}
	}
	return b
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(store.DateLayout, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestImportBatchEndToEnd(t *testing.T) {
	e, s := testEngine(t, "test-import", Options{CreateMissing: true, SuppressDuplicates: true})
	tpl := seedTemplate(t, s)

	rows := []*row.Buffer{
		textRow(t, "2024-01-05", "100.00", "ArtistA", "Streams"),
		textRow(t, "2024-01-05", "abc", "ArtistA", "Streams"),
		textRow(t, "2024-01-05", "100.00", "ArtistA", "Streams"),
	}

	result, err := e.ImportBatch(context.Background(), tpl.ID, rows)
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}

	if len(result.Accepted) != 1 || len(result.RowErrors) != 1 || len(result.Duplicates) != 1 {
		t.Fatalf("expected 1/1/1, got %d/%d/%d",
			len(result.Accepted), len(result.RowErrors), len(result.Duplicates))
	}
	if result.RunKey == "" {
		t.Error("expected a run key")
	}

	// The artist was created during resolution
	artist, err := s.GetArtistByName("ArtistA")
	if err != nil || artist == nil {
		t.Fatalf("expected ArtistA to be created, got %+v, %v", artist, err)
	}

	// Exactly one ledger line persisted, carrying the audit snapshots
	count, err := s.CountEntries()
	if err != nil {
		t.Fatalf("failed to count entries: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 persisted entry, got %d", count)
	}
	entry, err := s.GetEntry(result.Accepted[0].ID)
	if err != nil {
		t.Fatalf("failed to load entry: %v", err)
	}
	if entry.ImportTemplateID != tpl.ID || entry.RowJSON == "" || entry.ColumnMapping == "" {
		t.Errorf("expected audit fields on persisted entry, got %+v", entry)
	}

	// One audit run with matching counts
	runs, err := s.ListImportRuns(10)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 import run, got %d", len(runs))
	}
	if runs[0].Accepted != 1 || runs[0].RowErrors != 1 || runs[0].Duplicates != 1 {
		t.Errorf("run counts wrong: %+v", runs[0])
	}
}

func TestImportBatchIdempotent(t *testing.T) {
	e, s := testEngine(t, "test-idempotent", Options{CreateMissing: true, SuppressDuplicates: true})
	tpl := seedTemplate(t, s)

	rows := []*row.Buffer{
		textRow(t, "2024-01-05", "100.00", "ArtistA", "Streams"),
		textRow(t, "2024-01-06", "25.50", "ArtistA", "Merch"),
	}

	first, err := e.ImportBatch(context.Background(), tpl.ID, rows)
	if err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	if len(first.Accepted) != 2 {
		t.Fatalf("expected 2 accepted on first run, got %d", len(first.Accepted))
	}

	// Re-importing the identical batch accepts nothing new
	second, err := e.ImportBatch(context.Background(), tpl.ID, rows)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if len(second.Accepted) != 0 {
		t.Errorf("expected 0 accepted on re-import, got %d", len(second.Accepted))
	}
	if len(second.Duplicates) != 2 {
		t.Errorf("expected 2 duplicates on re-import, got %d", len(second.Duplicates))
	}

	count, _ := s.CountEntries()
	if count != 2 {
		t.Errorf("expected ledger to stay at 2 entries, got %d", count)
	}
}

func TestImportBatchUnknownTemplate(t *testing.T) {
	e, _ := testEngine(t, "test-no-template", Options{})

	_, err := e.ImportBatch(context.Background(), 42, nil)
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestImportBatchCancelledBeforeWrite(t *testing.T) {
	e, s := testEngine(t, "test-cancel", Options{CreateMissing: true})
	tpl := seedTemplate(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ImportBatch(ctx, tpl.ID, []*row.Buffer{
		textRow(t, "2024-01-05", "100.00", "ArtistA", "Streams"),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// Nothing reached the ledger
	count, _ := s.CountEntries()
	if count != 0 {
		t.Errorf("expected 0 entries after cancellation, got %d", count)
	}
	runs, _ := s.ListImportRuns(10)
	if len(runs) != 0 {
		t.Errorf("expected 0 runs after cancellation, got %d", len(runs))
	}
}

func TestCreateManualEntry(t *testing.T) {
	e, s := testEngine(t, "test-manual", Options{})

	artist := &store.Artist{Name: "ArtistA"}
	if err := s.InsertArtist(artist); err != nil {
		t.Fatalf("failed to insert artist: %v", err)
	}

	entry, err := e.CreateManualEntry(ManualEntry{
		ArtistID:    artist.ID,
		SourceID:    1,
		Amount:      decimal.RequireFromString("250.00"),
		RevenueDate: mustDate(t, "2024-06-01"),
		Description: "festival fee",
	})
	if err != nil {
		t.Fatalf("CreateManualEntry failed: %v", err)
	}
	if entry.ID == 0 {
		t.Error("expected entry ID to be set")
	}
}

func TestCreateManualEntryValidation(t *testing.T) {
	e, s := testEngine(t, "test-manual-validate", Options{})

	artist := &store.Artist{Name: "ArtistA"}
	if err := s.InsertArtist(artist); err != nil {
		t.Fatalf("failed to insert artist: %v", err)
	}
	other := &store.Artist{Name: "ArtistB"}
	if err := s.InsertArtist(other); err != nil {
		t.Fatalf("failed to insert artist: %v", err)
	}
	track := &store.Track{ArtistID: other.ID, Title: "Not Yours"}
	if err := s.InsertTrack(track); err != nil {
		t.Fatalf("failed to insert track: %v", err)
	}

	date := mustDate(t, "2024-06-01")
	amount := decimal.RequireFromString("10.00")

	cases := []struct {
		name  string
		entry ManualEntry
	}{
		{"missing artist", ManualEntry{ArtistID: 999, SourceID: 1, Amount: amount, RevenueDate: date}},
		{"missing source", ManualEntry{ArtistID: artist.ID, SourceID: 99, Amount: amount, RevenueDate: date}},
		{"zero date", ManualEntry{ArtistID: artist.ID, SourceID: 1, Amount: amount}},
		{"foreign track", ManualEntry{ArtistID: artist.ID, SourceID: 1, Amount: amount, RevenueDate: date, TrackID: track.ID}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.CreateManualEntry(tc.entry); !errors.Is(err, util.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}

	count, _ := s.CountEntries()
	if count != 0 {
		t.Errorf("expected no entries after failed validations, got %d", count)
	}
}

func TestTotalRevenueFormatting(t *testing.T) {
	e, s := testEngine(t, "test-total", Options{})

	artist := &store.Artist{Name: "ArtistA"}
	if err := s.InsertArtist(artist); err != nil {
		t.Fatalf("failed to insert artist: %v", err)
	}
	for _, a := range []string{"1200.00", "34.56"} {
		if err := s.InsertEntry(&store.RevenueEntry{
			ArtistID: artist.ID, SourceID: 3,
			Amount: decimal.RequireFromString(a), RevenueDate: mustDate(t, "2024-01-05"),
		}); err != nil {
			t.Fatalf("failed to insert entry: %v", err)
		}
	}

	total, err := e.TotalRevenue(artist.ID, mustDate(t, "2024-01-01"), mustDate(t, "2024-01-31"))
	if err != nil {
		t.Fatalf("TotalRevenue failed: %v", err)
	}
	if total.String() != "1,234.56" {
		t.Errorf("expected '1,234.56', got %q", total.String())
	}

	// Empty range is zero, not an error
	empty, err := e.TotalRevenue(artist.ID, mustDate(t, "2030-01-01"), mustDate(t, "2030-12-31"))
	if err != nil {
		t.Fatalf("TotalRevenue on empty range failed: %v", err)
	}
	if empty.String() != "0.00" {
		t.Errorf("expected '0.00' for empty range, got %q", empty.String())
	}
}

func TestAssetPassthrough(t *testing.T) {
	e, s := testEngine(t, "test-passthrough", Options{})

	artist := &store.Artist{Name: "ArtistA"}
	if err := s.InsertArtist(artist); err != nil {
		t.Fatalf("failed to insert artist: %v", err)
	}
	album := &store.Album{ArtistID: artist.ID, Title: "First Light"}
	if err := s.InsertAlbum(album); err != nil {
		t.Fatalf("failed to insert album: %v", err)
	}

	assets, err := e.ListAssets()
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(assets) != 1 || assets[0].Kind != "album" || assets[0].Title != "First Light" {
		t.Errorf("unexpected asset listing: %+v", assets)
	}

	if err := e.DeleteAsset("album", album.ID); err != nil {
		t.Fatalf("DeleteAsset failed: %v", err)
	}
	assets, _ = e.ListAssets()
	if len(assets) != 0 {
		t.Errorf("expected empty asset listing after delete, got %+v", assets)
	}
}

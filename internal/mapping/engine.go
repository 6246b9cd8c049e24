package mapping

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mika/artist-ledger/internal/row"
	"github.com/mika/artist-ledger/internal/store"
	"github.com/mika/artist-ledger/internal/template"
	"github.com/mika/artist-ledger/internal/util"
	"github.com/shopspring/decimal"
)

// Resolver turns names from imported cells into identifiers. The store
// provides the real implementation; tests use an in-memory one.
type Resolver interface {
	// ResolveArtist returns the artist id for a name, creating the
	// artist when create is true. ErrNotFound otherwise.
	ResolveArtist(name string, create bool) (int64, error)

	// ResolveSource resolves by description text against the closed
	// taxonomy. Never creates; unknown descriptions are ErrNotFound.
	ResolveSource(description string) (int64, error)

	ResolveAlbum(artistID int64, title string, create bool) (int64, error)
	ResolveTrack(artistID int64, title string, create bool) (int64, error)

	// ResolveCampaign never creates; campaigns are explicit user actions
	ResolveCampaign(artistID int64, name string) (int64, error)

	// HasDuplicate checks the duplicate tuple against persisted entries
	HasDuplicate(artistID, sourceID int64, amount decimal.Decimal, revenueDate time.Time, description string) (bool, error)
}

// Options tune a batch run
type Options struct {
	// CreateMissing lets the batch create artists, albums, and tracks
	// that name-resolution misses
	CreateMissing bool

	// SuppressDuplicates classifies rows matching an existing entry as
	// duplicates instead of accepting them
	SuppressDuplicates bool

	// DateFormats overrides DefaultDateFormats when non-empty
	DateFormats []string
}

// RowError is a per-row diagnostic. Reason names the canonical field
// that failed ("amount", "source", ...) or "duplicate".
type RowError struct {
	RowIndex int
	Reason   string
	Detail   string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.RowIndex, e.Reason, e.Detail)
}

// Result classifies every row of a batch exactly once
type Result struct {
	Accepted   []*store.RevenueEntry
	RowErrors  []RowError
	Duplicates []RowError
}

// Engine applies one template to a batch of row buffers
type Engine struct {
	resolver Resolver
	opts     Options
}

// New returns a mapping engine over the given resolver
func New(resolver Resolver, opts Options) *Engine {
	return &Engine{resolver: resolver, opts: opts}
}

// ColumnTable is a template's mappings resolved to concrete column
// indexes, computed once per batch. A template edit mid-import cannot
// change an already-resolved table.
type ColumnTable map[template.Field]int

// Snapshot serializes the resolved table for the entry audit column
func (ct ColumnTable) Snapshot() string {
	plain := make(map[string]int, len(ct))
	for field, index := range ct {
		plain[string(field)] = index
	}
	data, err := json.Marshal(plain)
	if err != nil {
		return ""
	}
	return string(data)
}

// ResolveColumns resolves each mapped canonical field to a column
// index: exact header-label match for label refs, the index itself for
// positional refs. A required field that cannot resolve fails the whole
// batch with ErrUnresolvedMapping before any row is touched.
func ResolveColumns(tpl *template.Template) (ColumnTable, error) {
	headers, err := tpl.Headers()
	if err != nil {
		return nil, err
	}
	mappings, err := tpl.FieldMappings()
	if err != nil {
		return nil, err
	}

	byLabel := make(map[string]int, len(headers))
	for i, h := range headers {
		byLabel[h] = i
	}

	table := make(ColumnTable, len(mappings))
	for field, ref := range mappings {
		if ref.Positional {
			if ref.Index < 0 || ref.Index >= row.MaxColumns {
				return nil, fmt.Errorf("%w: field %q column %d", util.ErrUnresolvedMapping, field, ref.Index)
			}
			table[field] = ref.Index
			continue
		}
		index, ok := byLabel[ref.Label]
		if !ok {
			if field.IsRequired() {
				return nil, fmt.Errorf("%w: required field %q has no column %q", util.ErrUnresolvedMapping, field, ref.Label)
			}
			continue // optional field with a stale label just goes unmapped
		}
		table[field] = index
	}

	for _, required := range template.RequiredFields {
		if _, ok := table[required]; !ok {
			return nil, fmt.Errorf("%w: required field %q is not mapped", util.ErrUnresolvedMapping, required)
		}
	}
	return table, nil
}

// MapBatch applies the template to every row. Row failures never abort
// the batch: each row lands in exactly one of accepted, rowErrors, or
// duplicates.
func (e *Engine) MapBatch(tpl *template.Template, rows []*row.Buffer) (*Result, error) {
	table, err := ResolveColumns(tpl)
	if err != nil {
		return nil, err
	}
	snapshot := table.Snapshot()

	result := &Result{}
	seen := make(map[string]bool, len(rows))

	for i, r := range rows {
		entry, rowErr := e.mapRow(table, r)
		if rowErr != nil {
			rowErr.RowIndex = i
			result.RowErrors = append(result.RowErrors, *rowErr)
			continue
		}

		entry.ImportTemplateID = tpl.ID
		entry.ColumnMapping = snapshot

		if e.opts.SuppressDuplicates {
			key := duplicateKey(entry)
			dup := seen[key]
			if !dup {
				dup, err = e.resolver.HasDuplicate(entry.ArtistID, entry.SourceID,
					entry.Amount, entry.RevenueDate, entry.Description)
				if err != nil {
					return nil, fmt.Errorf("duplicate check failed on row %d: %w", i, err)
				}
			}
			if dup {
				result.Duplicates = append(result.Duplicates, RowError{
					RowIndex: i,
					Reason:   "duplicate",
					Detail:   fmt.Sprintf("matches an existing entry for artist %d", entry.ArtistID),
				})
				continue
			}
			seen[key] = true
		}

		result.Accepted = append(result.Accepted, entry)
	}

	return result, nil
}

// mapRow extracts and coerces one row. The returned RowError has no
// index; MapBatch fills it in.
func (e *Engine) mapRow(table ColumnTable, r *row.Buffer) (*store.RevenueEntry, *RowError) {
	cellText := func(field template.Field) string {
		index, ok := table[field]
		if !ok {
			return ""
		}
		return strings.TrimSpace(r.Value(index).String())
	}

	artistName := cellText(template.FieldArtist)
	if artistName == "" {
		return nil, &RowError{Reason: "artist", Detail: "artist cell is empty"}
	}
	artistID, err := e.resolver.ResolveArtist(artistName, e.opts.CreateMissing)
	if err != nil {
		return nil, &RowError{Reason: "artist", Detail: err.Error()}
	}

	sourceText := cellText(template.FieldSource)
	if sourceText == "" {
		return nil, &RowError{Reason: "source", Detail: "source cell is empty"}
	}
	sourceID, err := e.resolver.ResolveSource(sourceText)
	if err != nil {
		return nil, &RowError{Reason: "source", Detail: err.Error()}
	}

	amount, rowErr := e.coerceAmount(table, r)
	if rowErr != nil {
		return nil, rowErr
	}

	revenueDate, rowErr := e.coerceDate(table, r)
	if rowErr != nil {
		return nil, rowErr
	}

	entry := &store.RevenueEntry{
		ArtistID:    artistID,
		SourceID:    sourceID,
		Amount:      amount,
		RevenueDate: revenueDate,
		Description: cellText(template.FieldDescription),
		Integration: cellText(template.FieldIntegration),
		RowJSON:     rowSnapshot(table, r),
	}

	if title := cellText(template.FieldAlbum); title != "" {
		entry.AlbumID, err = e.resolver.ResolveAlbum(artistID, title, e.opts.CreateMissing)
		if err != nil {
			return nil, &RowError{Reason: "album", Detail: err.Error()}
		}
	}
	if title := cellText(template.FieldTrack); title != "" {
		entry.TrackID, err = e.resolver.ResolveTrack(artistID, title, e.opts.CreateMissing)
		if err != nil {
			return nil, &RowError{Reason: "track", Detail: err.Error()}
		}
	}
	if name := cellText(template.FieldCampaign); name != "" {
		entry.CampaignID, err = e.resolver.ResolveCampaign(artistID, name)
		if err != nil {
			return nil, &RowError{Reason: "campaign", Detail: err.Error()}
		}
	}

	return entry, nil
}

func (e *Engine) coerceAmount(table ColumnTable, r *row.Buffer) (decimal.Decimal, *RowError) {
	cell := r.Value(table[template.FieldAmount])
	switch cell.Kind {
	case row.Number:
		return cell.Number.Round(2), nil
	case row.Text:
		amount, err := ParseAmount(cell.Text)
		if err != nil {
			return decimal.Zero, &RowError{Reason: "amount", Detail: err.Error()}
		}
		return amount, nil
	default:
		return decimal.Zero, &RowError{Reason: "amount", Detail: "amount cell is empty"}
	}
}

func (e *Engine) coerceDate(table ColumnTable, r *row.Buffer) (time.Time, *RowError) {
	cell := r.Value(table[template.FieldRevenueDate])
	switch cell.Kind {
	case row.Date:
		return cell.Date, nil
	case row.Text:
		date, err := ParseDate(cell.Text, e.opts.DateFormats)
		if err != nil {
			return time.Time{}, &RowError{Reason: "revenueDate", Detail: err.Error()}
		}
		return date, nil
	default:
		return time.Time{}, &RowError{Reason: "revenueDate", Detail: "date cell is empty"}
	}
}

// rowSnapshot keeps the original mapped cells as JSON for audit
func rowSnapshot(table ColumnTable, r *row.Buffer) string {
	cells := make(map[string]string, len(table))
	for field, index := range table {
		cells[string(field)] = r.Value(index).String()
	}
	data, err := json.Marshal(cells)
	if err != nil {
		return ""
	}
	return string(data)
}

func duplicateKey(e *store.RevenueEntry) string {
	return fmt.Sprintf("%d|%d|%s|%s|%s",
		e.ArtistID, e.SourceID, e.Amount.StringFixed(2),
		e.RevenueDate.Format(store.DateLayout), strings.TrimSpace(e.Description))
}

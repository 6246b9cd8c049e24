package template

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mika/artist-ledger/internal/util"
)

// Field is a canonical RevenueEntry attribute a template can map to
type Field string

const (
	FieldArtist      Field = "artist"
	FieldSource      Field = "source"
	FieldAmount      Field = "amount"
	FieldRevenueDate Field = "revenueDate"
	FieldDescription Field = "description"
	FieldTrack       Field = "track"
	FieldAlbum       Field = "album"
	FieldCampaign    Field = "campaign"
	FieldIntegration Field = "integration"
)

// RequiredFields are the canonical fields every usable template must map
var RequiredFields = []Field{FieldArtist, FieldSource, FieldAmount, FieldRevenueDate}

// AllFields lists every canonical field in a stable order
var AllFields = []Field{
	FieldArtist, FieldSource, FieldAmount, FieldRevenueDate,
	FieldDescription, FieldTrack, FieldAlbum, FieldCampaign, FieldIntegration,
}

// IsRequired reports whether f must resolve for a batch to proceed
func (f Field) IsRequired() bool {
	for _, r := range RequiredFields {
		if f == r {
			return true
		}
	}
	return false
}

func validField(f Field) bool {
	for _, known := range AllFields {
		if f == known {
			return true
		}
	}
	return false
}

// ColumnRef points a canonical field at a source column, either by
// header label or by zero-based position.
type ColumnRef struct {
	Label      string
	Index      int
	Positional bool
}

func (r ColumnRef) String() string {
	if r.Positional {
		return fmt.Sprintf("#%d", r.Index)
	}
	return r.Label
}

// UnmarshalJSON accepts either a JSON string (header label) or a
// JSON number (positional index) as the persisted form.
func (r *ColumnRef) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		*r = ColumnRef{Label: label}
		return nil
	}
	var index int
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	*r = ColumnRef{Index: index, Positional: true}
	return nil
}

// MarshalJSON writes labels as strings and positions as numbers
func (r ColumnRef) MarshalJSON() ([]byte, error) {
	if r.Positional {
		return json.Marshal(r.Index)
	}
	return json.Marshal(r.Label)
}

// Template is a reusable recipe describing how rows shaped like one
// external source turn into canonical revenue-entry fields. Headers and
// mappings are persisted as JSON text; the serialized form is an opaque
// persistence detail and is parsed once at load.
type Template struct {
	ID          int64
	Name        string
	SourceName  string
	Category    string
	RawHeaders  string
	RawMappings string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Headers parses the ordered list of expected source column labels
func (t *Template) Headers() ([]string, error) {
	if strings.TrimSpace(t.RawHeaders) == "" {
		return nil, fmt.Errorf("%w: template %q has no headers", util.ErrMalformedTemplate, t.Name)
	}
	var headers []string
	if err := json.Unmarshal([]byte(t.RawHeaders), &headers); err != nil {
		return nil, fmt.Errorf("%w: template %q headers: %v", util.ErrMalformedTemplate, t.Name, err)
	}
	return headers, nil
}

// FieldMappings parses the canonical-field to source-column mapping
func (t *Template) FieldMappings() (map[Field]ColumnRef, error) {
	if strings.TrimSpace(t.RawMappings) == "" {
		return nil, fmt.Errorf("%w: template %q has no mappings", util.ErrMalformedTemplate, t.Name)
	}
	var raw map[Field]ColumnRef
	if err := json.Unmarshal([]byte(t.RawMappings), &raw); err != nil {
		return nil, fmt.Errorf("%w: template %q mappings: %v", util.ErrMalformedTemplate, t.Name, err)
	}
	for field := range raw {
		if !validField(field) {
			return nil, fmt.Errorf("%w: template %q maps unknown field %q", util.ErrMalformedTemplate, t.Name, field)
		}
	}
	return raw, nil
}

// Validate checks the internal consistency of the persisted payload:
// both blobs parse, and every label-based mapping references a header
// that actually exists in the header list.
func (t *Template) Validate() error {
	headers, err := t.Headers()
	if err != nil {
		return err
	}
	mappings, err := t.FieldMappings()
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	for field, ref := range mappings {
		if ref.Positional {
			if ref.Index < 0 || ref.Index >= len(headers) {
				return fmt.Errorf("%w: template %q field %q points at column %d but only %d headers exist",
					util.ErrMalformedTemplate, t.Name, field, ref.Index, len(headers))
			}
			continue
		}
		if !known[ref.Label] {
			return fmt.Errorf("%w: template %q field %q references missing header %q",
				util.ErrMalformedTemplate, t.Name, field, ref.Label)
		}
	}
	return nil
}

// EncodeHeaders serializes a header list into the persisted form
func EncodeHeaders(headers []string) (string, error) {
	data, err := json.Marshal(headers)
	if err != nil {
		return "", fmt.Errorf("failed to encode headers: %w", err)
	}
	return string(data), nil
}

// EncodeMappings serializes a field mapping into the persisted form
func EncodeMappings(mappings map[Field]ColumnRef) (string, error) {
	data, err := json.Marshal(mappings)
	if err != nil {
		return "", fmt.Errorf("failed to encode mappings: %w", err)
	}
	return string(data), nil
}

package template

import (
	"errors"
	"testing"

	"github.com/mika/artist-ledger/internal/util"
)

func TestHeadersParse(t *testing.T) {
	tpl := &Template{
		Name:       "spotify-monthly",
		RawHeaders: `["Date","Amt","Who","Src"]`,
	}

	headers, err := tpl.Headers()
	if err != nil {
		t.Fatalf("failed to parse headers: %v", err)
	}

	want := []string{"Date", "Amt", "Who", "Src"}
	if len(headers) != len(want) {
		t.Fatalf("expected %d headers, got %d", len(want), len(headers))
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("header %d: expected %q, got %q", i, want[i], headers[i])
		}
	}
}

func TestMalformedHeaders(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "Date,Amt"},
		{"wrong shape", `{"Date":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := &Template{Name: "bad", RawHeaders: tc.raw}
			if _, err := tpl.Headers(); !errors.Is(err, util.ErrMalformedTemplate) {
				t.Errorf("expected ErrMalformedTemplate, got %v", err)
			}
		})
	}
}

func TestFieldMappingsMixedRefs(t *testing.T) {
	tpl := &Template{
		Name:        "merch-shop",
		RawHeaders:  `["Order Date","Total","Artist","Channel"]`,
		RawMappings: `{"revenueDate":"Order Date","amount":1,"artist":"Artist","source":"Channel"}`,
	}

	mappings, err := tpl.FieldMappings()
	if err != nil {
		t.Fatalf("failed to parse mappings: %v", err)
	}

	if ref := mappings[FieldRevenueDate]; ref.Positional || ref.Label != "Order Date" {
		t.Errorf("expected label ref 'Order Date', got %+v", ref)
	}
	if ref := mappings[FieldAmount]; !ref.Positional || ref.Index != 1 {
		t.Errorf("expected positional ref 1, got %+v", ref)
	}
}

func TestFieldMappingsUnknownField(t *testing.T) {
	tpl := &Template{
		Name:        "bad",
		RawMappings: `{"advance":"Col"}`,
	}
	if _, err := tpl.FieldMappings(); !errors.Is(err, util.ErrMalformedTemplate) {
		t.Errorf("expected ErrMalformedTemplate for unknown field, got %v", err)
	}
}

func TestValidateMissingHeader(t *testing.T) {
	tpl := &Template{
		Name:        "bad",
		RawHeaders:  `["Date","Amt"]`,
		RawMappings: `{"amount":"Amt","revenueDate":"Date","artist":"Who","source":"Src"}`,
	}
	if err := tpl.Validate(); !errors.Is(err, util.ErrMalformedTemplate) {
		t.Errorf("expected ErrMalformedTemplate for missing header, got %v", err)
	}
}

func TestValidatePositionalOutOfBounds(t *testing.T) {
	tpl := &Template{
		Name:        "bad",
		RawHeaders:  `["Date","Amt"]`,
		RawMappings: `{"amount":5,"revenueDate":"Date"}`,
	}
	if err := tpl.Validate(); !errors.Is(err, util.ErrMalformedTemplate) {
		t.Errorf("expected ErrMalformedTemplate for out-of-bounds position, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	headers := []string{"Date", "Amt", "Who", "Src"}
	mappings := map[Field]ColumnRef{
		FieldRevenueDate: {Label: "Date"},
		FieldAmount:      {Label: "Amt"},
		FieldArtist:      {Label: "Who"},
		FieldSource:      {Index: 3, Positional: true},
	}

	rawHeaders, err := EncodeHeaders(headers)
	if err != nil {
		t.Fatalf("failed to encode headers: %v", err)
	}
	rawMappings, err := EncodeMappings(mappings)
	if err != nil {
		t.Fatalf("failed to encode mappings: %v", err)
	}

	tpl := &Template{Name: "rt", RawHeaders: rawHeaders, RawMappings: rawMappings}

	gotHeaders, err := tpl.Headers()
	if err != nil {
		t.Fatalf("failed to parse round-tripped headers: %v", err)
	}
	for i := range headers {
		if gotHeaders[i] != headers[i] {
			t.Errorf("header %d changed in round trip: %q != %q", i, gotHeaders[i], headers[i])
		}
	}

	gotMappings, err := tpl.FieldMappings()
	if err != nil {
		t.Fatalf("failed to parse round-tripped mappings: %v", err)
	}
	if len(gotMappings) != len(mappings) {
		t.Fatalf("expected %d mappings, got %d", len(mappings), len(gotMappings))
	}
	for field, want := range mappings {
		got := gotMappings[field]
		if got != want {
			t.Errorf("mapping %q changed in round trip: %+v != %+v", field, got, want)
		}
	}
}

package row

import (
	"errors"
	"testing"
	"time"

	"github.com/mika/artist-ledger/internal/util"
	"github.com/shopspring/decimal"
)

func TestSetAndGetValue(t *testing.T) {
	b := NewBuffer()

	if err := b.SetValue(0, TextCell("Streams")); err != nil {
		t.Fatalf("failed to set column 0: %v", err)
	}
	if err := b.SetValue(3, NumberCell(decimal.NewFromFloat(12.50))); err != nil {
		t.Fatalf("failed to set column 3: %v", err)
	}

	got := b.Value(0)
	if got.Kind != Text || got.Text != "Streams" {
		t.Errorf("expected text cell 'Streams', got %+v", got)
	}

	got = b.Value(3)
	if got.Kind != Number || !got.Number.Equal(decimal.NewFromFloat(12.50)) {
		t.Errorf("expected number cell 12.50, got %+v", got)
	}
}

func TestUnsetColumnsAreAbsent(t *testing.T) {
	b := NewBuffer()

	if err := b.SetValue(5, TextCell("x")); err != nil {
		t.Fatalf("failed to set column 5: %v", err)
	}

	// Columns 0-4 were skipped; reading them is not an error
	for i := 0; i < 5; i++ {
		if got := b.Value(i); !got.IsAbsent() {
			t.Errorf("expected column %d to be absent, got %+v", i, got)
		}
	}

	// Reading past the width ceiling is also just absent
	if got := b.Value(MaxColumns + 10); !got.IsAbsent() {
		t.Errorf("expected out-of-range read to be absent, got %+v", got)
	}
}

func TestSetValueOutOfRange(t *testing.T) {
	b := NewBuffer()

	for _, index := range []int{-1, MaxColumns, MaxColumns + 1} {
		err := b.SetValue(index, TextCell("x"))
		if !errors.Is(err, util.ErrOutOfRange) {
			t.Errorf("expected ErrOutOfRange for index %d, got %v", index, err)
		}
	}

	// A failed set must not affect width
	if b.Width() != 0 {
		t.Errorf("expected width 0 after failed sets, got %d", b.Width())
	}
}

func TestWidthTracksHighestIndex(t *testing.T) {
	b := NewBuffer()

	b.SetValue(2, TextCell("a"))
	b.SetValue(7, TextCell("b"))
	b.SetValue(4, TextCell("c"))

	if b.Width() != 8 {
		t.Errorf("expected width 8, got %d", b.Width())
	}
}

func TestCellString(t *testing.T) {
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		cell Cell
		want string
	}{
		{"absent", Cell{}, ""},
		{"text", TextCell("Tour Merch"), "Tour Merch"},
		{"number", NumberCell(decimal.RequireFromString("100.00")), "100"},
		{"date", DateCell(date), "2024-01-05"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cell.String(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.csv")
	data := "Date,Amt,Who,Src\n2024-01-05,100.00,ArtistA,Streams\n2024-01-06,,ArtistA,Merch\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	rows, err := readRows(path, true)
	if err != nil {
		t.Fatalf("readRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(rows))
	}

	if got := rows[0].Value(1).String(); got != "100.00" {
		t.Errorf("expected amount cell '100.00', got %q", got)
	}
	// The blank amount on row 2 is absent, not empty text
	if !rows[1].Value(1).IsAbsent() {
		t.Errorf("expected blank cell to be absent, got %+v", rows[1].Value(1))
	}
	if got := rows[1].Value(3).String(); got != "Merch" {
		t.Errorf("expected source cell 'Merch', got %q", got)
	}
}

func TestReadCSVNoHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raw.csv")
	if err := os.WriteFile(path, []byte("2024-01-05,100.00\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	rows, err := readRows(path, false)
	if err != nil {
		t.Fatalf("readRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
}

func TestReadRowsUnsupportedFormat(t *testing.T) {
	if _, err := readRows("export.ods", true); err == nil {
		t.Error("expected an error for unsupported format")
	}
}

func TestReadCSVShortAndRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragged.csv")
	data := "A,B,C\n1,2,3\n1\n1,2,3,4\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	rows, err := readRows(path, true)
	if err != nil {
		t.Fatalf("readRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1].Width() != 1 {
		t.Errorf("expected short row width 1, got %d", rows[1].Width())
	}
	if got := rows[2].Value(3).String(); got != "4" {
		t.Errorf("expected trailing extra column to survive, got %q", got)
	}
}

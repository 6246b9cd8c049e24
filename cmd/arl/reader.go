package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mika/artist-ledger/internal/row"
	"github.com/xuri/excelize/v2"
)

// readRows loads a tabular file into row buffers. CSV and XLSX are
// supported; cells arrive as text and the mapping engine coerces them.
// The engine itself never sees file bytes.
func readRows(path string, skipHeader bool) ([]*row.Buffer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path, skipHeader)
	case ".xlsx":
		return readXLSX(path, skipHeader)
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

func readCSV(path string, skipHeader bool) ([]*row.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // short rows are normal

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if skipHeader && len(records) > 0 {
		records = records[1:]
	}

	return buffersFromRecords(records)
}

func readXLSX(path string, skipHeader bool) ([]*row.Buffer, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}

	// Single-sheet tabular inputs only; extra sheets are ignored
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if skipHeader && len(records) > 0 {
		records = records[1:]
	}

	return buffersFromRecords(records)
}

func buffersFromRecords(records [][]string) ([]*row.Buffer, error) {
	buffers := make([]*row.Buffer, 0, len(records))
	for i, record := range records {
		b := row.NewBuffer()
		for col, value := range record {
			if strings.TrimSpace(value) == "" {
				continue // absent, not empty text
			}
			if err := b.SetValue(col, row.TextCell(value)); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		buffers = append(buffers, b)
	}
	return buffers, nil
}

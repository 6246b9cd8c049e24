package row

import (
	"fmt"
	"time"

	"github.com/mika/artist-ledger/internal/util"
	"github.com/shopspring/decimal"
)

// MaxColumns is the width ceiling for a single imported row.
// Imports wider than this fail explicitly rather than silently truncating.
const MaxColumns = 50

// CellKind discriminates the value held in a Cell
type CellKind int

const (
	Absent CellKind = iota
	Text
	Number
	Date
)

// Cell is one value from an imported row. Exactly one of the payload
// fields is meaningful, selected by Kind; Absent cells carry nothing.
type Cell struct {
	Kind   CellKind
	Text   string
	Number decimal.Decimal
	Date   time.Time
}

// TextCell returns a text-valued cell
func TextCell(s string) Cell {
	return Cell{Kind: Text, Text: s}
}

// NumberCell returns a number-valued cell
func NumberCell(d decimal.Decimal) Cell {
	return Cell{Kind: Number, Number: d}
}

// DateCell returns a date-valued cell
func DateCell(t time.Time) Cell {
	return Cell{Kind: Date, Date: t}
}

// IsAbsent reports whether the cell holds no value
func (c Cell) IsAbsent() bool {
	return c.Kind == Absent
}

// String renders the cell's value as text. Absent cells render empty.
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.Text
	case Number:
		return c.Number.String()
	case Date:
		return c.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// Buffer holds one row of arbitrary tabular input before mapping.
// Column order is preserved and unset columns are a normal state
// (short rows, optional trailing columns). The buffer performs no
// validation, parsing, or coercion.
type Buffer struct {
	cells [MaxColumns]Cell
	width int
}

// NewBuffer returns an empty row buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// SetValue stores a value at a zero-based column index.
// Indexes at or past MaxColumns fail with util.ErrOutOfRange.
func (b *Buffer) SetValue(index int, value Cell) error {
	if index < 0 || index >= MaxColumns {
		return fmt.Errorf("%w: column %d (max %d)", util.ErrOutOfRange, index, MaxColumns-1)
	}
	b.cells[index] = value
	if index >= b.width {
		b.width = index + 1
	}
	return nil
}

// Value returns the cell at a zero-based column index.
// Unset or out-of-range columns return an Absent cell, not an error.
func (b *Buffer) Value(index int) Cell {
	if index < 0 || index >= MaxColumns {
		return Cell{}
	}
	return b.cells[index]
}

// Width returns one past the highest column index that was ever set
func (b *Buffer) Width() int {
	return b.width
}

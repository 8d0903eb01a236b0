package models

import (
	"regexp"
	"strconv"
	"strings"
)

// CellKind discriminates the value held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

// Cell is a single spreadsheet cell at the ingestion boundary. Sheet rows are
// heterogeneous (text, numbers, blanks), so the parsers operate over this sum
// type explicitly instead of coercing ad hoc.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
}

// NewCell classifies a raw cell string coming out of the workbook reader.
func NewCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Kind: CellEmpty}
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Kind: CellNumber, Str: raw, Num: n}
	}
	return Cell{Kind: CellString, Str: raw}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty || strings.TrimSpace(c.Str) == "" && c.Kind != CellNumber
}

// String returns the cell text, trimmed. Numeric cells return their original
// sheet text so "1,00,000.50" style values survive for coercion.
func (c Cell) String() string {
	return strings.TrimSpace(c.Str)
}

var numericJunk = regexp.MustCompile(`[^0-9.\-]`)

// Number coerces the cell to a float64. Text is stripped of everything except
// digits, '.' and '-' first (currency symbols, thousands separators, stray
// units). Anything unparseable yields 0.
func (c Cell) Number() float64 {
	switch c.Kind {
	case CellNumber:
		return c.Num
	case CellString:
		cleaned := numericJunk.ReplaceAllString(c.Str, "")
		if cleaned == "" || cleaned == "-" || cleaned == "." {
			return 0
		}
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// CellAt returns the cell at index i, or an empty cell when the row is
// shorter. Sheet rows are ragged; every column read goes through here.
func CellAt(row []Cell, i int) Cell {
	if i < 0 || i >= len(row) {
		return Cell{Kind: CellEmpty}
	}
	return row[i]
}

package parsers

import (
	"strings"

	"github.com/aliranalvi/bond-wise-insight/src/models"
)

// ColumnSpec declares one recognized column: the field name downstream code
// reads, the lowercase substring that identifies its header cell, and an
// optional substring that disqualifies a cell (e.g. the repayment "date"
// column must not be a "maturity date").
type ColumnSpec struct {
	Field   string
	Match   string
	Exclude string
}

// LocateHeader scans rows top to bottom for the header row. With requireAll
// false a row qualifies when any cell contains any token; with requireAll
// true every token must appear somewhere in the same row. Matching is
// case-insensitive. Returns the row index and whether one was found.
func LocateHeader(rows [][]models.Cell, tokens []string, requireAll bool) (int, bool) {
	for i, row := range rows {
		if requireAll {
			if rowContainsAll(row, tokens) {
				return i, true
			}
		} else if rowContainsAny(row, tokens) {
			return i, true
		}
	}
	return 0, false
}

func rowContainsAny(row []models.Cell, tokens []string) bool {
	for _, cell := range row {
		text := strings.ToLower(cell.String())
		if text == "" {
			continue
		}
		for _, token := range tokens {
			if strings.Contains(text, token) {
				return true
			}
		}
	}
	return false
}

func rowContainsAll(row []models.Cell, tokens []string) bool {
	for _, token := range tokens {
		found := false
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell.String()), token) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MapColumns builds the field -> column-index map from a located header row.
// The first cell whose lowercased, trimmed text contains a ColumnSpec's Match
// substring (and not its Exclude) wins. Unmatched specs get no entry; absent
// columns default to zero/empty downstream, never an error.
func MapColumns(headerRow []models.Cell, specs []ColumnSpec) map[string]int {
	columns := make(map[string]int, len(specs))
	for _, spec := range specs {
		for i, cell := range headerRow {
			text := strings.ToLower(cell.String())
			if text == "" || !strings.Contains(text, spec.Match) {
				continue
			}
			if spec.Exclude != "" && strings.Contains(text, spec.Exclude) {
				continue
			}
			columns[spec.Field] = i
			break
		}
	}
	return columns
}

// colCell reads the mapped column from a row, or an empty cell when the
// column was never located.
func colCell(row []models.Cell, columns map[string]int, field string) models.Cell {
	idx, ok := columns[field]
	if !ok {
		return models.Cell{Kind: models.CellEmpty}
	}
	return models.CellAt(row, idx)
}

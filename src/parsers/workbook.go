package parsers

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aliranalvi/bond-wise-insight/src/logger"
	"github.com/aliranalvi/bond-wise-insight/src/models"
)

// XLSXReader reads XLSX workbooks via excelize.
type XLSXReader struct{}

func NewXLSXReader() *XLSXReader {
	return &XLSXReader{}
}

// Read opens the workbook and extracts the investment and repayment sheets.
// Sheet resolution is by case-insensitive name substring:
//   - investment: "investment summary", then "summary", then the first sheet
//   - repayment:  "repayment summary", then "repayment", else absent
//
// A missing repayment sheet is not an error.
func (r *XLSXReader) Read(file io.Reader) (*SheetRows, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no sheets")
	}

	invSheet := findSheet(sheets, "investment summary")
	if invSheet == "" {
		invSheet = findSheet(sheets, "summary")
	}
	if invSheet == "" {
		invSheet = sheets[0]
		logger.L.Debug("No summary-named sheet found, falling back to first sheet", "sheet", invSheet)
	}

	repSheet := findSheet(sheets, "repayment summary")
	if repSheet == "" {
		repSheet = findSheet(sheets, "repayment")
	}

	invRows, err := readSheet(f, invSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", invSheet, err)
	}

	result := &SheetRows{Investment: invRows}
	if repSheet != "" {
		repRows, err := readSheet(f, repSheet)
		if err != nil {
			// Degrade: repayment data is optional all the way down.
			logger.L.Warn("Failed to read repayment sheet, continuing without repayment data", "sheet", repSheet, "error", err)
		} else {
			result.Repayment = repRows
		}
	} else {
		logger.L.Info("No repayment sheet in workbook", "sheets", sheets)
	}
	return result, nil
}

func findSheet(sheets []string, token string) string {
	for _, name := range sheets {
		if strings.Contains(strings.ToLower(name), token) {
			return name
		}
	}
	return ""
}

func readSheet(f *excelize.File, sheet string) ([][]models.Cell, error) {
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	rows := make([][]models.Cell, len(raw))
	for i, rawRow := range raw {
		row := make([]models.Cell, len(rawRow))
		for j, cellText := range rawRow {
			row[j] = models.NewCell(cellText)
		}
		rows[i] = row
	}
	return rows, nil
}

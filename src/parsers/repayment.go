package parsers

import (
	"strings"

	"github.com/aliranalvi/bond-wise-insight/src/logger"
	"github.com/aliranalvi/bond-wise-insight/src/models"
	"github.com/aliranalvi/bond-wise-insight/src/security/validation"
	"github.com/aliranalvi/bond-wise-insight/src/utils"
)

// The repayment header row must carry both tokens; a lone "date" cell
// somewhere in a preamble is not a header.
var repaymentHeaderTokens = []string{"date", "name of bond"}

var repaymentColumns = []ColumnSpec{
	// The maturity-date column also contains "date"; exclude it.
	{Field: "date", Match: "date", Exclude: "maturity"},
	{Field: "bondName", Match: "name of bond"},
	{Field: "isin", Match: "isin"},
	{Field: "units", Match: "units"},
	{Field: "amountInBank", Match: "amount in bank"},
	{Field: "principalRepaid", Match: "principal repaid"},
	{Field: "interestBeforeTDS", Match: "before tds"},
	{Field: "interestAfterTDS", Match: "after tds"},
	{Field: "tdsDeducted", Match: "tds deducted"},
}

// ParseRepayments turns the repayment sheet into RepaymentEntry records.
// Absence is never an error: nil rows, a missing header, or zero surviving
// rows all produce an empty set so the upload still succeeds with the
// investment data alone.
func ParseRepayments(rows [][]models.Cell) []models.RepaymentEntry {
	if len(rows) == 0 {
		return nil
	}
	headerIdx, found := LocateHeader(rows, repaymentHeaderTokens, true)
	if !found {
		logger.L.Warn("Repayment sheet present but no header row found, treating as no repayment data")
		return nil
	}
	columns := MapColumns(rows[headerIdx], repaymentColumns)

	var entries []models.RepaymentEntry
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 {
			continue
		}

		first := strings.ToLower(models.CellAt(row, 0).String())
		bondNameCell := colCell(row, columns, "bondName")
		bondNameLower := strings.ToLower(bondNameCell.String())

		if first == "" || bondNameLower == "" {
			continue
		}
		if strings.Contains(first, "total") || strings.Contains(first, "date") || strings.Contains(first, "grand") {
			continue
		}
		if strings.Contains(bondNameLower, "total") || strings.Contains(bondNameLower, "name of bond") {
			continue
		}

		// Malformed dates are dropped, not coerced.
		date := colCell(row, columns, "date").String()
		if _, ok := utils.ParseSheetDate(date); !ok {
			logger.L.Debug("Skipping repayment row with malformed date", "row", i+1, "date", date)
			continue
		}

		entries = append(entries, models.RepaymentEntry{
			Date:                  date,
			BondName:              validation.SanitizeCellText(bondNameCell.String()),
			ISIN:                  strings.TrimSpace(colCell(row, columns, "isin").String()),
			Units:                 colCell(row, columns, "units").Number(),
			AmountInBank:          colCell(row, columns, "amountInBank").Number(),
			PrincipalRepaid:       colCell(row, columns, "principalRepaid").Number(),
			InterestPaidBeforeTDS: colCell(row, columns, "interestBeforeTDS").Number(),
			InterestPaidAfterTDS:  colCell(row, columns, "interestAfterTDS").Number(),
			TDSDeducted:           colCell(row, columns, "tdsDeducted").Number(),
		})
	}

	logger.L.Info("Parsed repayment sheet", "accepted", len(entries))
	return entries
}

package parsers

import (
	"regexp"
	"strings"
	"time"

	"github.com/aliranalvi/bond-wise-insight/src/logger"
	"github.com/aliranalvi/bond-wise-insight/src/models"
	"github.com/aliranalvi/bond-wise-insight/src/security/validation"
	"github.com/aliranalvi/bond-wise-insight/src/utils"
)

// Header tokens that identify the investment sheet's header row. One hit in
// any cell is enough.
var investmentHeaderTokens = []string{"bond name", "isin"}

// Recognized investment columns, matched by substring against header cells.
// "units" also catches "no. of units".
var investmentColumns = []ColumnSpec{
	{Field: "bondName", Match: "bond name"},
	{Field: "isin", Match: "isin"},
	{Field: "units", Match: "units"},
	{Field: "investedAmount", Match: "invested amount"},
	{Field: "faceValue", Match: "face value"},
	{Field: "acquisitionCost", Match: "acquisition cost"},
	{Field: "dateOfInvestment", Match: "date of investment"},
	{Field: "maturityDate", Match: "maturity date"},
	{Field: "xirr", Match: "xirr"},
	{Field: "interestFrequency", Match: "frequency of interest"},
	{Field: "principalFrequency", Match: "frequency of principal"},
}

// ParseInvestments turns the investment sheet into BondInvestment records.
// now anchors the matured derivation so callers (and tests) control time.
//
// Fatal outcomes: ErrHeaderNotFound when no header row exists,
// ErrNoValidRecords when every data row is rejected. Individual bad rows are
// skipped, never fatal.
func ParseInvestments(rows [][]models.Cell, now time.Time) ([]models.BondInvestment, error) {
	headerIdx, found := LocateHeader(rows, investmentHeaderTokens, false)
	if !found {
		return nil, ErrHeaderNotFound
	}
	columns := MapColumns(rows[headerIdx], investmentColumns)

	var investments []models.BondInvestment
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 {
			continue
		}

		// Trailer/subtotal/stray-header rows: blank first cell, "total" rows,
		// or a repeated header.
		first := strings.ToLower(models.CellAt(row, 0).String())
		if first == "" || strings.Contains(first, "total") || strings.Contains(first, "bond name") {
			continue
		}

		bondName := validation.SanitizeCellText(colCell(row, columns, "bondName").String())
		if bondName == "" {
			continue
		}

		investedAmount := colCell(row, columns, "investedAmount").Number()
		if investedAmount <= 0 {
			logger.L.Debug("Skipping investment row with non-positive invested amount", "row", i+1, "bondName", bondName)
			continue
		}

		dateOfInvestment := colCell(row, columns, "dateOfInvestment").String()
		maturityDate := colCell(row, columns, "maturityDate").String()

		inv := models.BondInvestment{
			BondName:           bondName,
			ISIN:               strings.TrimSpace(colCell(row, columns, "isin").String()),
			Units:              colCell(row, columns, "units").Number(),
			InvestedAmount:     investedAmount,
			FaceValue:          colCell(row, columns, "faceValue").Number(),
			AcquisitionCost:    colCell(row, columns, "acquisitionCost").Number(),
			DateOfInvestment:   dateOfInvestment,
			MaturityDate:       maturityDate,
			XIRR:               colCell(row, columns, "xirr").Number(),
			InterestFrequency:  validation.SanitizeCellText(colCell(row, columns, "interestFrequency").String()),
			PrincipalFrequency: validation.SanitizeCellText(colCell(row, columns, "principalFrequency").String()),

			BondIssuer: ExtractIssuer(bondName),
			Matured:    isMatured(maturityDate, now),
			MonthYear:  utils.MonthYearOf(dateOfInvestment),
		}
		investments = append(investments, inv)
	}

	if len(investments) == 0 {
		return nil, ErrNoValidRecords
	}
	logger.L.Info("Parsed investment sheet", "rows", len(rows)-headerIdx-1, "accepted", len(investments))
	return investments, nil
}

// Tranche/issue-date suffixes stripped off bond names to recover the issuer:
//  1. "-<n>" optionally followed by "Mon'YY"  (e.g. "ABC Finance-2 Jul'23")
//  2. a trailing "<word>'YY" token            (e.g. "DEF Ltd Sep'24")
//  3. a trailing bare integer token           (e.g. "XYZ Corp 07")
var (
	trancheSuffixRe  = regexp.MustCompile(`-\d+(\s+[A-Za-z]+'\d{2})?\s*$`)
	monthYearTokenRe = regexp.MustCompile(`\s+[A-Za-z]+'\d{2}\s*$`)
	bareNumberRe     = regexp.MustCompile(`\s+\d+\s*$`)
)

// ExtractIssuer derives a stable issuer key from a bond name by removing
// trailing tranche and issue-date suffixes.
func ExtractIssuer(bondName string) string {
	issuer := trancheSuffixRe.ReplaceAllString(bondName, "")
	issuer = monthYearTokenRe.ReplaceAllString(issuer, "")
	issuer = bareNumberRe.ReplaceAllString(issuer, "")
	return strings.TrimSpace(issuer)
}

// isMatured reports whether the maturity date lies strictly before now.
// Unparseable dates are treated as not matured.
func isMatured(maturityDate string, now time.Time) bool {
	t, ok := utils.ParseSheetDate(maturityDate)
	if !ok {
		return false
	}
	return t.Before(now.Truncate(24 * time.Hour))
}

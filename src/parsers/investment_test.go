package parsers

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aliranalvi/bond-wise-insight/src/logger"
	"github.com/aliranalvi/bond-wise-insight/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// row builds a sheet row from raw cell strings.
func row(cells ...string) []models.Cell {
	out := make([]models.Cell, len(cells))
	for i, c := range cells {
		out[i] = models.NewCell(c)
	}
	return out
}

var testNow = time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

func investmentSheet(dataRows ...[]models.Cell) [][]models.Cell {
	rows := [][]models.Cell{
		row("My Bond Portfolio"), // preamble
		row(),
		row("Bond Name", "ISIN", "No. of Units", "Invested Amount", "Face Value", "Acquisition Cost", "Date of Investment", "Maturity Date", "XIRR", "Frequency of Interest Payment", "Frequency of Principal Repayment"),
	}
	return append(rows, dataRows...)
}

func TestExtractIssuer(t *testing.T) {
	cases := []struct {
		bondName string
		want     string
	}{
		{"Keertana Finserv-2 Jul'23", "Keertana Finserv"},
		{"Keertana Finserv-3", "Keertana Finserv"},
		{"Navi Finserv Sep'24", "Navi Finserv"},
		{"Indel Money 07", "Indel Money"},
		{"Ugro Capital", "Ugro Capital"},
		{"  Spandana Sphoorty-1  ", "Spandana Sphoorty"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ExtractIssuer(tc.bondName), "bondName=%q", tc.bondName)
	}
}

func TestParseInvestmentsHeaderNotFound(t *testing.T) {
	rows := [][]models.Cell{
		row("My Portfolio"),
		row("some", "random", "cells"),
	}
	_, err := ParseInvestments(rows, testNow)
	require.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestParseInvestmentsNoValidRecords(t *testing.T) {
	rows := investmentSheet(
		row("Total", "", "", "500000"),
		row("", "INE123", "10", "100000"),
	)
	_, err := ParseInvestments(rows, testNow)
	require.ErrorIs(t, err, ErrNoValidRecords)
}

func TestParseInvestmentsAcceptsAndDerives(t *testing.T) {
	rows := investmentSheet(
		row("Keertana Finserv-2 Jul'23", "INE06E507290", "100", "100000", "1000", "100050", "15/01/2024", "15/01/2026", "11.5", "Monthly", "At Maturity"),
	)
	investments, err := ParseInvestments(rows, testNow)
	require.NoError(t, err)
	require.Len(t, investments, 1)

	inv := investments[0]
	require.Equal(t, "Keertana Finserv-2 Jul'23", inv.BondName)
	require.Equal(t, "INE06E507290", inv.ISIN)
	require.Equal(t, 100.0, inv.Units)
	require.Equal(t, 100000.0, inv.InvestedAmount)
	require.Equal(t, 11.5, inv.XIRR)
	require.Equal(t, "Keertana Finserv", inv.BondIssuer)
	require.Equal(t, "Jan 2024", inv.MonthYear)
	require.False(t, inv.Matured)
}

func TestParseInvestmentsSkipsJunkRows(t *testing.T) {
	rows := investmentSheet(
		row("Good Bond-1", "INE111", "10", "50000", "1000", "50000", "01/03/2024", "01/03/2026", "10", "Monthly", "At Maturity"),
		row("", "INE222", "10", "50000"),                  // blank first cell
		row("Total", "", "", "100000"),                    // subtotal row
		row("Grand Total of Investments", "", "", "0"),    // trailer
		row("Bond Name", "ISIN", "No. of Units"),          // repeated header
		row("Zero Bond", "INE333", "10", "0"),             // non-positive amount
		row("Refund Bond", "INE444", "10", "-5000"),       // negative amount
		row("Good Bond-2", "INE555", "20", "75000", "1000", "75000", "05/04/2024", "05/04/2026", "12", "Monthly", "At Maturity"),
	)
	investments, err := ParseInvestments(rows, testNow)
	require.NoError(t, err)
	require.Len(t, investments, 2)
	require.Equal(t, "Good Bond-1", investments[0].BondName)
	require.Equal(t, "Good Bond-2", investments[1].BondName)
}

func TestParseInvestmentsMaturedDerivation(t *testing.T) {
	rows := investmentSheet(
		row("Past Bond", "INE111", "10", "50000", "", "", "01/01/2022", "01/01/2024", "10"),
		row("Future Bond", "INE222", "10", "50000", "", "", "01/01/2024", "01/01/2026", "10"),
		row("No Date Bond", "INE333", "10", "50000", "", "", "01/01/2024", "TBD", "10"),
	)
	investments, err := ParseInvestments(rows, testNow)
	require.NoError(t, err)
	require.Len(t, investments, 3)
	require.True(t, investments[0].Matured)
	require.False(t, investments[1].Matured)
	require.False(t, investments[2].Matured, "unparseable maturity date must not mark a bond matured")
}

func TestParseInvestmentsRaggedRows(t *testing.T) {
	rows := investmentSheet(
		row("Short Row Bond", "INE111", "10", "50000"),
	)
	investments, err := ParseInvestments(rows, testNow)
	require.NoError(t, err)
	require.Len(t, investments, 1)
	require.Equal(t, 0.0, investments[0].XIRR)
	require.Equal(t, "", investments[0].MaturityDate)
}

package processors

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

var testNow = time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

func inv(bondName, isin, date, maturity string, amount, xirr float64, matured bool) models.BondInvestment {
	return models.BondInvestment{
		BondName:         bondName,
		ISIN:             isin,
		InvestedAmount:   amount,
		DateOfInvestment: date,
		MaturityDate:     maturity,
		XIRR:             xirr,
		BondIssuer:       bondName, // tests that care set their own
		Matured:          matured,
		MonthYear:        monthLabel(date),
	}
}

func monthLabel(date string) string {
	t, err := time.Parse("2/1/2006", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2006")
}

func TestFilterActiveExcludesMatured(t *testing.T) {
	investments := []models.BondInvestment{
		inv("Active Bond", "INE1", "15/01/2024", "15/01/2026", 1000, 10, false),
		inv("Matured Bond", "INE2", "15/01/2022", "15/01/2024", 2000, 10, true),
	}

	for _, filter := range []models.DurationFilter{models.FilterAllTime, models.FilterThisYear} {
		filtered := FilterActive(investments, filter, testNow)
		require.Len(t, filtered, 1, "filter=%s", filter)
		require.Equal(t, "Active Bond", filtered[0].BondName)
	}
}

func TestFilterActiveByYear(t *testing.T) {
	investments := []models.BondInvestment{
		inv("This Year Bond", "INE1", "15/01/2024", "15/01/2026", 1000, 10, false),
		inv("Last Year Bond", "INE2", "15/06/2023", "15/06/2026", 2000, 10, false),
		inv("Old Bond", "INE3", "15/06/2021", "15/06/2027", 3000, 10, false),
	}

	thisYear := FilterActive(investments, models.FilterThisYear, testNow)
	require.Len(t, thisYear, 1)
	require.Equal(t, "This Year Bond", thisYear[0].BondName)

	lastYear := FilterActive(investments, models.FilterLastYear, testNow)
	require.Len(t, lastYear, 1)
	require.Equal(t, "Last Year Bond", lastYear[0].BondName)

	allTime := FilterActive(investments, models.FilterAllTime, testNow)
	require.Len(t, allTime, 3)
}

func TestBucketKey(t *testing.T) {
	d := time.Date(2023, time.August, 14, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "2023", BucketKey(d, models.ViewYears))
	require.Equal(t, "Q3 2023", BucketKey(d, models.ViewQuarters))
	require.Equal(t, "Aug 2023", BucketKey(d, models.ViewMonths))

	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "Q1 2024", BucketKey(jan, models.ViewQuarters))
	dec := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "Q4 2024", BucketKey(dec, models.ViewQuarters))
}

func TestSortBucketKeysQuarters(t *testing.T) {
	labels := []string{"Q2 2024", "Q4 2023", "Q1 2024", "Q3 2023"}
	SortBucketKeys(labels, models.ViewQuarters)
	require.Equal(t, []string{"Q3 2023", "Q4 2023", "Q1 2024", "Q2 2024"}, labels)
}

func TestSortBucketKeysMonths(t *testing.T) {
	labels := []string{"Mar 2024", "Nov 2023", "Jan 2024", "not-a-date"}
	SortBucketKeys(labels, models.ViewMonths)
	require.Equal(t, []string{"Nov 2023", "Jan 2024", "Mar 2024", "not-a-date"}, labels)
}

func TestBuildInvestmentPivotAccumulates(t *testing.T) {
	a := inv("Keertana Finserv-1", "INE1", "05/01/2024", "05/01/2026", 100000, 10, false)
	a.BondIssuer = "Keertana Finserv"
	b := inv("Keertana Finserv-1", "INE1", "20/01/2024", "05/01/2026", 50000, 10, false)
	b.BondIssuer = "Keertana Finserv"
	c := inv("Navi Finserv-2", "INE2", "10/02/2024", "10/02/2026", 75000, 11, false)
	c.BondIssuer = "Navi Finserv"

	p := NewPivotProcessor()
	result := p.Build([]models.BondInvestment{a, b, c}, nil, models.FilterAllTime, models.ViewMonths, models.ViewInvestment, testNow)

	require.Equal(t, 150000.0, result.Pivot["Keertana Finserv"]["Keertana Finserv-1"]["Jan 2024"])
	require.Equal(t, 75000.0, result.Pivot["Navi Finserv"]["Navi Finserv-2"]["Feb 2024"])
	require.Equal(t, 150000.0, result.IssuerTotals["Keertana Finserv"])
	require.Equal(t, 75000.0, result.IssuerTotals["Navi Finserv"])
	require.Equal(t, 225000.0, result.GrandTotal)
	require.Equal(t, []string{"Jan 2024", "Feb 2024"}, result.BucketOrder)
}

func TestBuildOrderIndependence(t *testing.T) {
	investments := []models.BondInvestment{
		inv("Bond A-1", "INE1", "05/01/2024", "05/01/2026", 100000, 10, false),
		inv("Bond A-1", "INE1", "20/01/2024", "05/01/2026", 50000, 10, false),
		inv("Bond B-1", "INE2", "10/02/2024", "10/02/2026", 75000, 11, false),
		inv("Bond C-1", "INE3", "15/03/2023", "15/03/2026", 25000, 12, false),
	}
	reversed := make([]models.BondInvestment, len(investments))
	for i, v := range investments {
		reversed[len(investments)-1-i] = v
	}

	p := NewPivotProcessor()
	forward := p.Build(investments, nil, models.FilterAllTime, models.ViewQuarters, models.ViewInvestment, testNow)
	backward := p.Build(reversed, nil, models.FilterAllTime, models.ViewQuarters, models.ViewInvestment, testNow)

	require.Equal(t, forward, backward)
}

func TestBuildInterestPaidView(t *testing.T) {
	a := inv("Bond A-1", "INE1", "05/01/2024", "05/01/2026", 100000, 10, false)
	a.BondIssuer = "Bond A"
	repayments := []models.RepaymentEntry{
		{Date: "15/02/2024", BondName: "Bond A-1", ISIN: "INE1", InterestPaidAfterTDS: 900, PrincipalRepaid: 0},
		{Date: "15/03/2024", BondName: "Bond A-1", ISIN: "INE1", InterestPaidAfterTDS: 900, PrincipalRepaid: 5000},
		{Date: "15/03/2024", BondName: "Unknown Bond", ISIN: "INE9", InterestPaidAfterTDS: 500},
	}

	p := NewPivotProcessor()
	result := p.Build([]models.BondInvestment{a}, repayments, models.FilterAllTime, models.ViewMonths, models.ViewInterestPaid, testNow)

	require.Equal(t, 900.0, result.Pivot["Bond A"]["Bond A-1"]["Feb 2024"])
	require.Equal(t, 900.0, result.Pivot["Bond A"]["Bond A-1"]["Mar 2024"])
	require.Equal(t, 1800.0, result.GrandTotal, "repayments for bonds not in the filtered set are dropped")

	principal := p.Build([]models.BondInvestment{a}, repayments, models.FilterAllTime, models.ViewMonths, models.ViewPrincipalPaid, testNow)
	require.Equal(t, 5000.0, principal.GrandTotal)

	both := p.Build([]models.BondInvestment{a}, repayments, models.FilterAllTime, models.ViewMonths, models.ViewPrincipalAndInterest, testNow)
	require.Equal(t, 6800.0, both.GrandTotal)
}

func TestIssuerTotal(t *testing.T) {
	pivot := models.PivotTable{
		"Issuer A": {
			"Bond A-1": {"Jan 2024": 1000, "Feb 2024": 500},
			"Bond A-2": {"Jan 2024": 250},
		},
	}
	require.Equal(t, 1750.0, IssuerTotal(pivot, "Issuer A"))
	require.Equal(t, 0.0, IssuerTotal(pivot, "Missing Issuer"))
}

package processors

import (
	"sort"
	"strings"
	"time"

	"github.com/aliranalvi/bond-wise-insight/src/models"
	"github.com/aliranalvi/bond-wise-insight/src/utils"
)

// interestProcessorImpl implements the InterestProcessor interface.
type interestProcessorImpl struct{}

// NewInterestProcessor creates a new instance of InterestProcessor.
func NewInterestProcessor() InterestProcessor {
	return &interestProcessorImpl{}
}

// AverageXIRR is the arithmetic mean of XIRR over the given investments,
// 0 for an empty set.
func (p *interestProcessorImpl) AverageXIRR(investments []models.BondInvestment) float64 {
	if len(investments) == 0 {
		return 0
	}
	sum := 0.0
	for _, inv := range investments {
		sum += inv.XIRR
	}
	return utils.RoundFloat(sum/float64(len(investments)), 2)
}

// MissedInterestMonths flags, for every monthly-interest bond series, the
// calendar months in which an interest payout was expected but none arrived.
//
// Expected months run from the month after the investment date through
// min(asOf, maturity). A month is missed when no matched repayment with
// InterestPaidBeforeTDS > 0 falls in it and the month lies strictly before
// the current one: the possibly-still-accruing current month is never
// flagged.
func (p *interestProcessorImpl) MissedInterestMonths(investments []models.BondInvestment, repayments []models.RepaymentEntry, asOf time.Time) []models.MissedInterest {
	var results []models.MissedInterest
	seen := make(map[string]bool)

	for _, inv := range investments {
		if !strings.EqualFold(strings.TrimSpace(inv.InterestFrequency), "monthly") {
			continue
		}
		key := inv.SeriesKey()
		if seen[key] {
			continue
		}
		seen[key] = true

		matched := matchedRepayments(repayments, inv.BondName, inv.ISIN)
		missed := missedMonthsForSeries(investments, matched, inv.BondName, inv.ISIN, asOf)
		if len(missed) == 0 {
			continue
		}
		results = append(results, models.MissedInterest{
			BondName:     inv.BondName,
			ISIN:         inv.ISIN,
			BondIssuer:   inv.BondIssuer,
			MissedMonths: missed,
		})
	}
	return results
}

// missedMonthsForSeries walks the expected payment months of every tranche in
// the series and returns the deduplicated labels with no payout, in
// chronological order.
func missedMonthsForSeries(investments []models.BondInvestment, matched []models.RepaymentEntry, bondName, isin string, asOf time.Time) []string {
	paid := make(map[string]bool)
	for _, rep := range matched {
		if rep.InterestPaidBeforeTDS <= 0 {
			continue
		}
		if t, ok := utils.ParseSheetDate(rep.Date); ok {
			paid[monthKey(t)] = true
		}
	}

	currentMonth := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)

	var labels []string
	flagged := make(map[string]bool)
	for _, inv := range investments {
		if inv.BondName != bondName || inv.ISIN != isin {
			continue
		}
		start, ok := utils.ParseSheetDate(inv.DateOfInvestment)
		if !ok {
			continue
		}

		// Payments are expected through maturity or asOf, whichever is
		// earlier; an unparseable maturity caps the span at asOf.
		end := asOf
		if m, ok := utils.ParseSheetDate(inv.MaturityDate); ok && m.Before(end) {
			end = m
		}
		endMonth := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

		// First expected month is the month after the investment.
		month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		for !month.After(endMonth) {
			if !month.Before(currentMonth) {
				break // current month never flagged
			}
			key := monthKey(month)
			if !paid[key] && !flagged[key] {
				flagged[key] = true
				labels = append(labels, month.Format("January 2006"))
			}
			month = month.AddDate(0, 1, 0)
		}
	}

	sort.SliceStable(labels, func(i, j int) bool {
		ti, _ := time.Parse("January 2006", labels[i])
		tj, _ := time.Parse("January 2006", labels[j])
		return ti.Before(tj)
	})
	return labels
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

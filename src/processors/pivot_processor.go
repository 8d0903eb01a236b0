package processors

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aliranalvi/bond-wise-insight/src/logger"
	"github.com/aliranalvi/bond-wise-insight/src/models"
	"github.com/aliranalvi/bond-wise-insight/src/utils"
)

// pivotProcessorImpl implements the PivotProcessor interface.
type pivotProcessorImpl struct{}

// NewPivotProcessor creates a new instance of PivotProcessor.
func NewPivotProcessor() PivotProcessor {
	return &pivotProcessorImpl{}
}

// FilterActive keeps only non-matured investments, further restricted to the
// selected year. Maturity exclusion and the duration filter are independent,
// ANDed conditions: matured bonds never appear, whatever the filter.
func FilterActive(investments []models.BondInvestment, filter models.DurationFilter, now time.Time) []models.BondInvestment {
	var filtered []models.BondInvestment
	for _, inv := range investments {
		if inv.Matured {
			continue
		}
		switch filter {
		case models.FilterThisYear, models.FilterLastYear:
			t, ok := utils.ParseSheetDate(inv.DateOfInvestment)
			if !ok {
				continue
			}
			wantYear := now.Year()
			if filter == models.FilterLastYear {
				wantYear--
			}
			if t.Year() != wantYear {
				continue
			}
		}
		filtered = append(filtered, inv)
	}
	return filtered
}

// BucketKey renders a date as its time-bucket label for the given granularity.
func BucketKey(t time.Time, view models.DurationView) string {
	switch view {
	case models.ViewYears:
		return t.Format("2006")
	case models.ViewQuarters:
		return fmt.Sprintf("Q%d %d", (int(t.Month())+2)/3, t.Year())
	default:
		return utils.FormatMonthYear(t)
	}
}

// bucketSortValue maps a bucket label back to a chronologically comparable
// integer. Quarter labels parse to year*4+quarter; year labels numerically;
// month labels by underlying date. Unparseable labels (the raw-string month
// fallback) sort last, in label order.
func bucketSortValue(label string, view models.DurationView) (int64, bool) {
	switch view {
	case models.ViewYears:
		y, err := strconv.Atoi(label)
		if err != nil {
			return 0, false
		}
		return int64(y), true
	case models.ViewQuarters:
		var q, y int
		if _, err := fmt.Sscanf(label, "Q%d %d", &q, &y); err != nil {
			return 0, false
		}
		return int64(y)*4 + int64(q), true
	default:
		t, err := time.Parse("Jan 2006", label)
		if err != nil {
			return 0, false
		}
		return t.Unix(), true
	}
}

// SortBucketKeys orders bucket labels chronologically for the given
// granularity.
func SortBucketKeys(labels []string, view models.DurationView) {
	sort.SliceStable(labels, func(i, j int) bool {
		vi, oki := bucketSortValue(labels[i], view)
		vj, okj := bucketSortValue(labels[j], view)
		if oki && okj {
			return vi < vj
		}
		if oki != okj {
			return oki // parseable labels first
		}
		return labels[i] < labels[j]
	})
}

// Build constructs the pivot for the selected filter/granularity/view.
//
// Investment view: each filtered investment's amount lands in the bucket of
// its investment date. Repayment views: each repayment joins to a filtered
// investment by bond name; unmatched repayments are dropped. Amounts always
// accumulate, never overwrite.
func (p *pivotProcessorImpl) Build(
	investments []models.BondInvestment,
	repayments []models.RepaymentEntry,
	filter models.DurationFilter,
	view models.DurationView,
	viewType models.ViewType,
	now time.Time,
) models.PivotResult {
	filtered := FilterActive(investments, filter, now)
	pivot := make(models.PivotTable)

	if viewType == models.ViewInvestment {
		for _, inv := range filtered {
			label := investmentBucket(inv, view)
			if label == "" {
				logger.L.Debug("Skipping investment with unbucketable date", "bondName", inv.BondName, "date", inv.DateOfInvestment)
				continue
			}
			addToPivot(pivot, inv.BondIssuer, inv.BondName, label, inv.InvestedAmount)
		}
	} else {
		// Resolve issuers for the filtered set; repayments join by bond name.
		issuerByBond := make(map[string]string, len(filtered))
		for _, inv := range filtered {
			if _, ok := issuerByBond[inv.BondName]; !ok {
				issuerByBond[inv.BondName] = inv.BondIssuer
			}
		}
		for _, rep := range repayments {
			issuer, ok := issuerByBond[rep.BondName]
			if !ok {
				continue
			}
			t, ok := utils.ParseSheetDate(rep.Date)
			if !ok {
				continue
			}
			var amount float64
			switch viewType {
			case models.ViewInterestPaid:
				amount = rep.InterestPaidAfterTDS
			case models.ViewPrincipalPaid:
				amount = rep.PrincipalRepaid
			case models.ViewPrincipalAndInterest:
				amount = rep.PrincipalRepaid + rep.InterestPaidAfterTDS
			}
			addToPivot(pivot, issuer, rep.BondName, BucketKey(t, view), amount)
		}
	}

	return finalizePivot(pivot, view)
}

// investmentBucket returns the bucket label for an investment's purchase
// date. The months view reuses the precomputed MonthYear label, which
// degrades to the raw date string when the date never parsed.
func investmentBucket(inv models.BondInvestment, view models.DurationView) string {
	if view == models.ViewMonths {
		return inv.MonthYear
	}
	t, ok := utils.ParseSheetDate(inv.DateOfInvestment)
	if !ok {
		return ""
	}
	return BucketKey(t, view)
}

func addToPivot(pivot models.PivotTable, issuer, bond, bucket string, amount float64) {
	if pivot[issuer] == nil {
		pivot[issuer] = make(map[string]map[string]float64)
	}
	if pivot[issuer][bond] == nil {
		pivot[issuer][bond] = make(map[string]float64)
	}
	pivot[issuer][bond][bucket] += amount
}

// finalizePivot rounds accumulated cells, computes issuer and grand totals,
// and produces the chronological bucket ordering.
func finalizePivot(pivot models.PivotTable, view models.DurationView) models.PivotResult {
	issuerTotals := make(map[string]float64, len(pivot))
	bucketSet := make(map[string]struct{})
	grand := 0.0

	for issuer, bonds := range pivot {
		total := 0.0
		for bond, buckets := range bonds {
			for label, amount := range buckets {
				rounded := utils.RoundMoney(amount)
				buckets[label] = rounded
				total += rounded
				bucketSet[label] = struct{}{}
			}
			bonds[bond] = buckets
		}
		issuerTotals[issuer] = utils.RoundMoney(total)
		grand += total
	}

	order := make([]string, 0, len(bucketSet))
	for label := range bucketSet {
		order = append(order, label)
	}
	SortBucketKeys(order, view)

	return models.PivotResult{
		Pivot:        pivot,
		IssuerTotals: issuerTotals,
		GrandTotal:   utils.RoundMoney(grand),
		BucketOrder:  order,
	}
}

// IssuerTotal sums every bond series and time bucket for one issuer.
func IssuerTotal(pivot models.PivotTable, issuer string) float64 {
	total := 0.0
	for _, buckets := range pivot[issuer] {
		for _, amount := range buckets {
			total += amount
		}
	}
	return utils.RoundMoney(total)
}

package processors

import (
	"sort"

	"github.com/aliranalvi/bond-wise-insight/src/models"
	"github.com/aliranalvi/bond-wise-insight/src/utils"
)

// reconciliationProcessorImpl implements the ReconciliationProcessor interface.
type reconciliationProcessorImpl struct{}

// NewReconciliationProcessor creates a new instance of ReconciliationProcessor.
func NewReconciliationProcessor() ReconciliationProcessor {
	return &reconciliationProcessorImpl{}
}

// repaymentMatches is the composite-key join: bond name AND ISIN must agree.
// When the investment row carries no ISIN the join degrades to bond name
// alone (documented loose fallback for malformed input).
func repaymentMatches(inv models.BondInvestment, rep models.RepaymentEntry) bool {
	if rep.BondName != inv.BondName {
		return false
	}
	if inv.ISIN == "" {
		return true
	}
	return rep.ISIN == inv.ISIN
}

// RemainingPrincipal is the unreturned portion of an invested amount given
// the repayments already matched to the series. Over-repayment clamps at
// zero, never negative.
func RemainingPrincipal(totalInvested float64, matched []models.RepaymentEntry) float64 {
	repaid := 0.0
	for _, rep := range matched {
		repaid += rep.PrincipalRepaid
	}
	return utils.NonNegative(totalInvested - repaid)
}

// BondRollups reconciles every bond series (tranches summed) against its
// matched repayments.
func (p *reconciliationProcessorImpl) BondRollups(investments []models.BondInvestment, repayments []models.RepaymentEntry) []models.BondRollup {
	type seriesAcc struct {
		rollup     models.BondRollup
		xirrSum    float64
		trancheCnt int
		allMatured bool
	}

	order := []string{}
	bySeries := make(map[string]*seriesAcc)

	for _, inv := range investments {
		key := inv.SeriesKey()
		acc, ok := bySeries[key]
		if !ok {
			acc = &seriesAcc{
				rollup: models.BondRollup{
					BondName:          inv.BondName,
					ISIN:              inv.ISIN,
					BondIssuer:        inv.BondIssuer,
					InterestFrequency: inv.InterestFrequency,
				},
				allMatured: true,
			}
			bySeries[key] = acc
			order = append(order, key)
		}
		acc.rollup.Units += inv.Units
		acc.rollup.InvestedAmount += inv.InvestedAmount
		acc.xirrSum += inv.XIRR
		acc.trancheCnt++
		if !inv.Matured {
			acc.allMatured = false
		}
	}

	rollups := make([]models.BondRollup, 0, len(order))
	for _, key := range order {
		acc := bySeries[key]
		r := acc.rollup

		matched := matchedRepayments(repayments, r.BondName, r.ISIN)
		for _, rep := range matched {
			r.PrincipalRepaid += rep.PrincipalRepaid
			r.InterestPaidBeforeTDS += rep.InterestPaidBeforeTDS
			r.InterestPaidAfterTDS += rep.InterestPaidAfterTDS
			r.TDSDeducted += rep.TDSDeducted
		}

		r.RemainingPrincipal = RemainingPrincipal(r.InvestedAmount, matched)
		if acc.trancheCnt > 0 {
			r.XIRR = utils.RoundFloat(acc.xirrSum/float64(acc.trancheCnt), 2)
		}
		r.Matured = acc.allMatured
		r.TotalValue = r.InvestedAmount

		r.InvestedAmount = utils.RoundMoney(r.InvestedAmount)
		r.PrincipalRepaid = utils.RoundMoney(r.PrincipalRepaid)
		r.InterestPaidBeforeTDS = utils.RoundMoney(r.InterestPaidBeforeTDS)
		r.InterestPaidAfterTDS = utils.RoundMoney(r.InterestPaidAfterTDS)
		r.TDSDeducted = utils.RoundMoney(r.TDSDeducted)
		r.RemainingPrincipal = utils.RoundMoney(r.RemainingPrincipal)
		r.TotalValue = utils.RoundMoney(r.TotalValue)

		rollups = append(rollups, r)
	}

	sort.SliceStable(rollups, func(i, j int) bool {
		if rollups[i].BondIssuer != rollups[j].BondIssuer {
			return rollups[i].BondIssuer < rollups[j].BondIssuer
		}
		return rollups[i].BondName < rollups[j].BondName
	})
	return rollups
}

// IssuerRollups folds per-series rollups into per-issuer totals.
func (p *reconciliationProcessorImpl) IssuerRollups(rollups []models.BondRollup) []models.IssuerRollup {
	order := []string{}
	byIssuer := make(map[string]*models.IssuerRollup)
	for _, r := range rollups {
		acc, ok := byIssuer[r.BondIssuer]
		if !ok {
			acc = &models.IssuerRollup{BondIssuer: r.BondIssuer}
			byIssuer[r.BondIssuer] = acc
			order = append(order, r.BondIssuer)
		}
		acc.InvestedAmount += r.InvestedAmount
		acc.RemainingPrincipal += r.RemainingPrincipal
		acc.PrincipalRepaid += r.PrincipalRepaid
		acc.InterestPaidAfterTDS += r.InterestPaidAfterTDS
		acc.InterestPaidBeforeTDS += r.InterestPaidBeforeTDS
		acc.BondCount++
	}

	result := make([]models.IssuerRollup, 0, len(order))
	for _, issuer := range order {
		acc := byIssuer[issuer]
		acc.InvestedAmount = utils.RoundMoney(acc.InvestedAmount)
		acc.RemainingPrincipal = utils.RoundMoney(acc.RemainingPrincipal)
		acc.PrincipalRepaid = utils.RoundMoney(acc.PrincipalRepaid)
		acc.InterestPaidAfterTDS = utils.RoundMoney(acc.InterestPaidAfterTDS)
		acc.InterestPaidBeforeTDS = utils.RoundMoney(acc.InterestPaidBeforeTDS)
		result = append(result, *acc)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].BondIssuer < result[j].BondIssuer
	})
	return result
}

// Schedule produces the realized repayment schedule for one bond series:
// matched repayments ascending by date, each with the principal balance left
// after it. Only realized rows appear; nothing is projected.
func (p *reconciliationProcessorImpl) Schedule(investments []models.BondInvestment, repayments []models.RepaymentEntry, bondName, isin string) []models.ScheduleEntry {
	totalInvested := 0.0
	for _, inv := range investments {
		if inv.BondName == bondName && (isin == "" || inv.ISIN == isin) {
			totalInvested += inv.InvestedAmount
		}
	}

	probe := models.BondInvestment{BondName: bondName, ISIN: isin}
	var matched []models.RepaymentEntry
	for _, rep := range repayments {
		if repaymentMatches(probe, rep) {
			matched = append(matched, rep)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		ti, _ := utils.ParseSheetDate(matched[i].Date)
		tj, _ := utils.ParseSheetDate(matched[j].Date)
		return ti.Before(tj)
	})

	balance := totalInvested
	entries := make([]models.ScheduleEntry, 0, len(matched))
	for _, rep := range matched {
		balance = utils.NonNegative(balance - rep.PrincipalRepaid)
		entries = append(entries, models.ScheduleEntry{
			Date:             rep.Date,
			PrincipalPayment: utils.RoundMoney(rep.PrincipalRepaid),
			InterestPayment:  utils.RoundMoney(rep.InterestPaidAfterTDS),
			TotalPayment:     utils.RoundMoney(rep.PrincipalRepaid + rep.InterestPaidAfterTDS),
			PrincipalBalance: utils.RoundMoney(balance),
			Status:           "Paid",
		})
	}
	return entries
}

// matchedRepayments collects repayments attributable to the series
// identified by bondName+isin via the composite-key join.
func matchedRepayments(repayments []models.RepaymentEntry, bondName, isin string) []models.RepaymentEntry {
	probe := models.BondInvestment{BondName: bondName, ISIN: isin}
	var matched []models.RepaymentEntry
	for _, rep := range repayments {
		if repaymentMatches(probe, rep) {
			matched = append(matched, rep)
		}
	}
	return matched
}

package processors

import (
	"time"

	"github.com/aliranalvi/bond-wise-insight/src/models"
)

// PivotProcessor builds the issuer -> bond series -> time-bucket pivot for a
// chosen view. Stateless: every call recomputes from the records it is given.
type PivotProcessor interface {
	Build(
		investments []models.BondInvestment,
		repayments []models.RepaymentEntry,
		filter models.DurationFilter,
		view models.DurationView,
		viewType models.ViewType,
		now time.Time,
	) models.PivotResult
}

// ReconciliationProcessor joins investments to repayments by composite series
// identity and produces principal/interest rollups and realized schedules.
type ReconciliationProcessor interface {
	BondRollups(investments []models.BondInvestment, repayments []models.RepaymentEntry) []models.BondRollup
	IssuerRollups(rollups []models.BondRollup) []models.IssuerRollup
	Schedule(investments []models.BondInvestment, repayments []models.RepaymentEntry, bondName, isin string) []models.ScheduleEntry
}

// InterestProcessor detects missed monthly-interest months and computes the
// portfolio's average XIRR.
type InterestProcessor interface {
	MissedInterestMonths(investments []models.BondInvestment, repayments []models.RepaymentEntry, asOf time.Time) []models.MissedInterest
	AverageXIRR(investments []models.BondInvestment) float64
}

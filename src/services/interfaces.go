package services

import (
	"io"
	"time"

	"github.com/aliranalvi/bond-wise-insight/src/models"
)

// UploadResult is what a successful upload reports back to the client: the
// session the dataset now lives under and how much of each sheet survived
// parsing.
type UploadResult struct {
	SessionID       string    `json:"sessionId"`
	InvestmentCount int       `json:"investmentCount"`
	RepaymentCount  int       `json:"repaymentCount"`
	UploadedAt      time.Time `json:"uploadedAt"`
}

// UploadService is the core of the system: it ingests a workbook into the
// session's in-memory record sets and serves every derived aggregate the
// dashboard renders. A new upload wholesale-replaces the session's records.
type UploadService interface {
	ProcessUpload(fileReader io.Reader, sessionID string) (*UploadResult, error)

	GetPivot(sessionID string, filter models.DurationFilter, view models.DurationView, viewType models.ViewType) (*models.PivotResult, error)
	GetBondRollups(sessionID string) ([]models.BondRollup, error)
	GetIssuerRollups(sessionID string) ([]models.IssuerRollup, error)
	GetSchedule(sessionID, bondName, isin string) ([]models.ScheduleEntry, error)
	GetMissedInterest(sessionID string) ([]models.MissedInterest, error)
	GetSummary(sessionID string) (*models.PortfolioSummary, error)
	GetRecords(sessionID string) ([]models.BondInvestment, []models.RepaymentEntry, error)

	ClearSession(sessionID string)
}

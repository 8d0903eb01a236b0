package services

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/aliranalvi/bond-wise-insight/src/logger"
	"github.com/aliranalvi/bond-wise-insight/src/models"
	"github.com/aliranalvi/bond-wise-insight/src/parsers"
	"github.com/aliranalvi/bond-wise-insight/src/processors"
)

const (
	// Session record-set store key.
	ckSessionData = "session_data_%s"

	// Derived-aggregate cache keys. Every key embeds the session ID and is
	// deleted on upload so a replacement dataset can never serve stale
	// aggregates.
	ckPivot          = "res_pivot_%s_%s_%s_%s"
	ckBondRollups    = "res_bond_rollups_%s"
	ckIssuerRollups  = "res_issuer_rollups_%s"
	ckMissedInterest = "res_missed_interest_%s"
	ckSummary        = "agg_summary_%s"
)

// sessionData is one session's in-memory record sets. Created whole on
// upload, read-only afterwards, replaced whole by the next upload.
type sessionData struct {
	Investments []models.BondInvestment
	Repayments  []models.RepaymentEntry
	UploadedAt  time.Time
}

type uploadServiceImpl struct {
	reader            parsers.WorkbookReader
	pivotProcessor    processors.PivotProcessor
	reconProcessor    processors.ReconciliationProcessor
	interestProcessor processors.InterestProcessor

	sessionStore *cache.Cache
	reportCache  *cache.Cache

	// uploadMu serializes uploads: the file-read and wholesale replacement of
	// a session's record sets must not interleave with another upload.
	uploadMu sync.Mutex

	now func() time.Time
}

func NewUploadService(
	reader parsers.WorkbookReader,
	pivotProcessor processors.PivotProcessor,
	reconProcessor processors.ReconciliationProcessor,
	interestProcessor processors.InterestProcessor,
	sessionStore *cache.Cache,
	reportCache *cache.Cache,
) UploadService {
	return &uploadServiceImpl{
		reader:            reader,
		pivotProcessor:    pivotProcessor,
		reconProcessor:    reconProcessor,
		interestProcessor: interestProcessor,
		sessionStore:      sessionStore,
		reportCache:       reportCache,
		now:               time.Now,
	}
}

// ProcessUpload parses the workbook and replaces the session's record sets
// with the result. A blank sessionID mints a new session. Nothing of the
// previous dataset survives a successful upload; a failed upload leaves the
// previous dataset untouched.
func (s *uploadServiceImpl) ProcessUpload(fileReader io.Reader, sessionID string) (*UploadResult, error) {
	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	overallStartTime := s.now()
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger.L.Info("ProcessUpload START", "sessionID", sessionID)

	sheets, err := s.reader.Read(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileRead, err)
	}

	investments, err := parsers.ParseInvestments(sheets.Investment, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	repayments := parsers.ParseRepayments(sheets.Repayment)

	data := &sessionData{
		Investments: investments,
		Repayments:  repayments,
		UploadedAt:  s.now(),
	}
	s.sessionStore.Set(fmt.Sprintf(ckSessionData, sessionID), data, cache.DefaultExpiration)
	s.invalidateSessionCache(sessionID)

	logger.L.Info("ProcessUpload END",
		"sessionID", sessionID,
		"investments", len(investments),
		"repayments", len(repayments),
		"duration", time.Since(overallStartTime))

	return &UploadResult{
		SessionID:       sessionID,
		InvestmentCount: len(investments),
		RepaymentCount:  len(repayments),
		UploadedAt:      data.UploadedAt,
	}, nil
}

// invalidateSessionCache deletes every derived aggregate for the session so
// the next request recomputes from the fresh record sets.
func (s *uploadServiceImpl) invalidateSessionCache(sessionID string) {
	keys := []string{
		fmt.Sprintf(ckBondRollups, sessionID),
		fmt.Sprintf(ckIssuerRollups, sessionID),
		fmt.Sprintf(ckMissedInterest, sessionID),
		fmt.Sprintf(ckSummary, sessionID),
	}
	for _, filter := range []models.DurationFilter{models.FilterThisYear, models.FilterLastYear, models.FilterAllTime} {
		for _, view := range []models.DurationView{models.ViewYears, models.ViewQuarters, models.ViewMonths} {
			for _, vt := range []models.ViewType{models.ViewInvestment, models.ViewInterestPaid, models.ViewPrincipalPaid, models.ViewPrincipalAndInterest} {
				keys = append(keys, fmt.Sprintf(ckPivot, sessionID, filter, view, vt))
			}
		}
	}
	for _, key := range keys {
		s.reportCache.Delete(key)
	}
	logger.L.Debug("Invalidated report cache for session", "sessionID", sessionID)
}

func (s *uploadServiceImpl) getSessionData(sessionID string) (*sessionData, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	cached, found := s.sessionStore.Get(fmt.Sprintf(ckSessionData, sessionID))
	if !found {
		return nil, ErrSessionNotFound
	}
	return cached.(*sessionData), nil
}

func (s *uploadServiceImpl) GetPivot(sessionID string, filter models.DurationFilter, view models.DurationView, viewType models.ViewType) (*models.PivotResult, error) {
	cacheKey := fmt.Sprintf(ckPivot, sessionID, filter, view, viewType)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for pivot", "sessionID", sessionID, "key", cacheKey)
		return cached.(*models.PivotResult), nil
	}

	data, err := s.getSessionData(sessionID)
	if err != nil {
		return nil, err
	}
	result := s.pivotProcessor.Build(data.Investments, data.Repayments, filter, view, viewType, s.now())
	s.reportCache.Set(cacheKey, &result, cache.DefaultExpiration)
	return &result, nil
}

func (s *uploadServiceImpl) GetBondRollups(sessionID string) ([]models.BondRollup, error) {
	cacheKey := fmt.Sprintf(ckBondRollups, sessionID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.([]models.BondRollup), nil
	}

	data, err := s.getSessionData(sessionID)
	if err != nil {
		return nil, err
	}
	rollups := s.reconProcessor.BondRollups(data.Investments, data.Repayments)
	s.reportCache.Set(cacheKey, rollups, cache.DefaultExpiration)
	return rollups, nil
}

func (s *uploadServiceImpl) GetIssuerRollups(sessionID string) ([]models.IssuerRollup, error) {
	cacheKey := fmt.Sprintf(ckIssuerRollups, sessionID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.([]models.IssuerRollup), nil
	}

	rollups, err := s.GetBondRollups(sessionID)
	if err != nil {
		return nil, err
	}
	issuerRollups := s.reconProcessor.IssuerRollups(rollups)
	s.reportCache.Set(cacheKey, issuerRollups, cache.DefaultExpiration)
	return issuerRollups, nil
}

func (s *uploadServiceImpl) GetSchedule(sessionID, bondName, isin string) ([]models.ScheduleEntry, error) {
	data, err := s.getSessionData(sessionID)
	if err != nil {
		return nil, err
	}
	return s.reconProcessor.Schedule(data.Investments, data.Repayments, bondName, isin), nil
}

func (s *uploadServiceImpl) GetMissedInterest(sessionID string) ([]models.MissedInterest, error) {
	cacheKey := fmt.Sprintf(ckMissedInterest, sessionID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.([]models.MissedInterest), nil
	}

	data, err := s.getSessionData(sessionID)
	if err != nil {
		return nil, err
	}
	missed := s.interestProcessor.MissedInterestMonths(data.Investments, data.Repayments, s.now())
	s.reportCache.Set(cacheKey, missed, cache.DefaultExpiration)
	return missed, nil
}

func (s *uploadServiceImpl) GetSummary(sessionID string) (*models.PortfolioSummary, error) {
	cacheKey := fmt.Sprintf(ckSummary, sessionID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.PortfolioSummary), nil
	}

	data, err := s.getSessionData(sessionID)
	if err != nil {
		return nil, err
	}
	rollups, err := s.GetBondRollups(sessionID)
	if err != nil {
		return nil, err
	}

	summary := &models.PortfolioSummary{
		InvestmentCount: len(data.Investments),
		RepaymentCount:  len(data.Repayments),
		AverageXIRR:     s.interestProcessor.AverageXIRR(data.Investments),
		UploadedAt:      data.UploadedAt,
	}
	for _, r := range rollups {
		summary.TotalInvested += r.InvestedAmount
		summary.RemainingPrincipal += r.RemainingPrincipal
		summary.InterestEarned += r.InterestPaidAfterTDS
		if r.Matured {
			summary.MaturedBondCount++
		} else {
			summary.ActiveBondCount++
			summary.ActiveInvested += r.InvestedAmount
		}
	}

	s.reportCache.Set(cacheKey, summary, cache.DefaultExpiration)
	return summary, nil
}

func (s *uploadServiceImpl) GetRecords(sessionID string) ([]models.BondInvestment, []models.RepaymentEntry, error) {
	data, err := s.getSessionData(sessionID)
	if err != nil {
		return nil, nil, err
	}
	return data.Investments, data.Repayments, nil
}

// ClearSession discards the session's record sets and cached aggregates.
func (s *uploadServiceImpl) ClearSession(sessionID string) {
	s.sessionStore.Delete(fmt.Sprintf(ckSessionData, sessionID))
	s.invalidateSessionCache(sessionID)
	logger.L.Info("Cleared session data", "sessionID", sessionID)
}

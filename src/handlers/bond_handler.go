package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aliranalvi/bond-wise-insight/src/logger"
	"github.com/aliranalvi/bond-wise-insight/src/models"
	"github.com/aliranalvi/bond-wise-insight/src/services"
	"github.com/aliranalvi/bond-wise-insight/src/utils"
)

type BondHandler struct {
	uploadService services.UploadService
}

func NewBondHandler(uploadService services.UploadService) *BondHandler {
	return &BondHandler{
		uploadService: uploadService,
	}
}

// HandleGetBonds serves the per-series reconciliation rollups that back the
// holdings table.
func (h *BondHandler) HandleGetBonds(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionID(r)
	if !ok {
		utils.SendJSONError(w, "missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	rollups, err := h.uploadService.GetBondRollups(sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.SendJSONError(w, "no uploaded data for this session", http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving bond rollups", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving bond rollups: %v", err), http.StatusInternalServerError)
		return
	}
	if rollups == nil {
		rollups = []models.BondRollup{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rollups); err != nil {
		logger.L.Error("Error encoding bond rollups response", "sessionID", sessionID, "error", err)
	}
}

// HandleGetIssuers serves issuer-level rollups.
func (h *BondHandler) HandleGetIssuers(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionID(r)
	if !ok {
		utils.SendJSONError(w, "missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	rollups, err := h.uploadService.GetIssuerRollups(sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.SendJSONError(w, "no uploaded data for this session", http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving issuer rollups", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving issuer rollups: %v", err), http.StatusInternalServerError)
		return
	}
	if rollups == nil {
		rollups = []models.IssuerRollup{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rollups); err != nil {
		logger.L.Error("Error encoding issuer rollups response", "sessionID", sessionID, "error", err)
	}
}

// HandleGetSchedule serves the dated repayment ledger for one bond series.
// bondName is required; isin narrows the match to one tranche family.
func (h *BondHandler) HandleGetSchedule(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionID(r)
	if !ok {
		utils.SendJSONError(w, "missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	bondName := r.URL.Query().Get("bondName")
	if bondName == "" {
		utils.SendJSONError(w, "bondName query parameter is required", http.StatusBadRequest)
		return
	}
	isin := r.URL.Query().Get("isin")

	schedule, err := h.uploadService.GetSchedule(sessionID, bondName, isin)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.SendJSONError(w, "no uploaded data for this session", http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving repayment schedule", "sessionID", sessionID, "bondName", bondName, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving repayment schedule: %v", err), http.StatusInternalServerError)
		return
	}
	if schedule == nil {
		schedule = []models.ScheduleEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(schedule); err != nil {
		logger.L.Error("Error encoding schedule response", "sessionID", sessionID, "error", err)
	}
}

// HandleGetMissedInterest flags monthly-interest bonds with payout gaps.
func (h *BondHandler) HandleGetMissedInterest(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionID(r)
	if !ok {
		utils.SendJSONError(w, "missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	missed, err := h.uploadService.GetMissedInterest(sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.SendJSONError(w, "no uploaded data for this session", http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving missed interest data", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving missed interest data: %v", err), http.StatusInternalServerError)
		return
	}
	if missed == nil {
		missed = []models.MissedInterest{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(missed); err != nil {
		logger.L.Error("Error encoding missed interest response", "sessionID", sessionID, "error", err)
	}
}

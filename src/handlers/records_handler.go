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

type RecordsHandler struct {
	uploadService services.UploadService
}

func NewRecordsHandler(uploadService services.UploadService) *RecordsHandler {
	return &RecordsHandler{
		uploadService: uploadService,
	}
}

// HandleGetRecords dumps the raw parsed record sets for the session, useful
// for the dashboard's data-inspection view.
func (h *RecordsHandler) HandleGetRecords(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionID(r)
	if !ok {
		utils.SendJSONError(w, "missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	investments, repayments, err := h.uploadService.GetRecords(sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.SendJSONError(w, "no uploaded data for this session", http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving session records", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving session records: %v", err), http.StatusInternalServerError)
		return
	}
	if investments == nil {
		investments = []models.BondInvestment{}
	}
	if repayments == nil {
		repayments = []models.RepaymentEntry{}
	}

	response := map[string]interface{}{
		"investments": investments,
		"repayments":  repayments,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.L.Error("Error encoding records response", "sessionID", sessionID, "error", err)
	}
}

// HandleClearSession drops the session's dataset and cached reports.
func (h *RecordsHandler) HandleClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionID(r)
	if !ok {
		utils.SendJSONError(w, "missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	h.uploadService.ClearSession(sessionID)
	logger.L.Info("Session cleared", "sessionID", sessionID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "session data cleared"})
}

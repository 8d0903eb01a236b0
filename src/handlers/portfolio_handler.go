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

type PortfolioHandler struct {
	uploadService services.UploadService
}

func NewPortfolioHandler(uploadService services.UploadService) *PortfolioHandler {
	return &PortfolioHandler{
		uploadService: uploadService,
	}
}

// HandleGetPivot serves the pivot table behind the dashboard's main chart.
// All three view parameters are optional and fall back to their defaults;
// an unrecognised value is a client error, not a silent default.
func (h *PortfolioHandler) HandleGetPivot(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionID(r)
	if !ok {
		utils.SendJSONError(w, "missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	filter, err := models.ParseDurationFilter(r.URL.Query().Get("durationFilter"))
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := models.ParseDurationView(r.URL.Query().Get("durationView"))
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	viewType, err := models.ParseViewType(r.URL.Query().Get("viewType"))
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.uploadService.GetPivot(sessionID, filter, view, viewType)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.SendJSONError(w, "no uploaded data for this session", http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving pivot data", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving pivot data: %v", err), http.StatusInternalServerError)
		return
	}

	etag, err := utils.GenerateETag(result)
	if err != nil {
		logger.L.Error("Error generating ETag for pivot data", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, "Error processing pivot data", http.StatusInternalServerError)
		return
	}

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding pivot response", "sessionID", sessionID, "error", err)
	}
}

// HandleGetSummary serves the headline numbers shown above the chart.
func (h *PortfolioHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionID(r)
	if !ok {
		utils.SendJSONError(w, "missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	summary, err := h.uploadService.GetSummary(sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.SendJSONError(w, "no uploaded data for this session", http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving portfolio summary", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving portfolio summary: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		logger.L.Error("Error encoding summary response", "sessionID", sessionID, "error", err)
	}
}

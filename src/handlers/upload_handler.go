package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aliranalvi/bond-wise-insight/src/config"
	"github.com/aliranalvi/bond-wise-insight/src/logger"
	"github.com/aliranalvi/bond-wise-insight/src/security/validation"
	"github.com/aliranalvi/bond-wise-insight/src/services"
	"github.com/aliranalvi/bond-wise-insight/src/utils"
)

type UploadHandler struct {
	uploadService services.UploadService
}

func NewUploadHandler(service services.UploadService) *UploadHandler {
	return &UploadHandler{
		uploadService: service,
	}
}

// HandleUpload ingests a workbook upload. The multipart field is "file"; an
// X-Session-ID header reuses an existing session (replacing its dataset),
// otherwise the response carries a freshly minted one.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := GetSessionID(r)

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "sessionID", sessionID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "sessionID", sessionID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "sessionID", sessionID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedKind, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Server-side file content validation failed", "sessionID", sessionID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("File content validated by magic bytes", "sessionID", sessionID, "filename", fileHeader.Filename, "detectedKind", detectedKind)

	result, err := h.uploadService.ProcessUpload(file, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrParsingFailed):
			logger.L.Warn("Upload failed during sheet parsing", "sessionID", sessionID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Could not parse spreadsheet: %v", err), http.StatusBadRequest)
		case errors.Is(err, services.ErrFileRead):
			logger.L.Warn("Upload failed reading workbook", "sessionID", sessionID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "Could not read the uploaded file as a spreadsheet workbook.", http.StatusBadRequest)
		default:
			logger.L.Error("Internal error processing upload", "sessionID", sessionID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding JSON response for upload result", "sessionID", result.SessionID, "error", err)
	}
}

package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aliranalvi/bond-wise-insight/src/logger"
)

// ErrValidationFailed wraps any upload content-validation failure so handlers
// can map the whole family to one HTTP status.
var ErrValidationFailed = errors.New("file validation failed")

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true, // .xlsx
	"application/vnd.ms-excel": true, // legacy .xls
	"application/octet-stream": true, // browsers without a spreadsheet MIME mapping
}

// ValidateClientContentType checks the Content-Type header provided by the client.
func ValidateClientContentType(contentType string) error {
	normalized := strings.ToLower(strings.Split(contentType, ";")[0])
	if allowed, exists := AllowedClientContentTypes[normalized]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("%w: client-declared file type '%s' is not allowed for spreadsheet upload", ErrValidationFailed, contentType)
	}
	return nil
}

// File signatures for the two accepted workbook containers.
var (
	zipMagic  = []byte{0x50, 0x4B, 0x03, 0x04}             // XLSX is a ZIP archive
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1} // legacy XLS compound file
)

// ValidateFileContentByMagicBytes checks the actual file content signature
// (magic bytes) and returns the detected workbook kind ("xlsx" or "xls").
// The read pointer is reset so the workbook parser sees the full file.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("%w: file is nil", ErrValidationFailed)
	}

	buffer := make([]byte, 8)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	switch {
	case n >= len(zipMagic) && bytes.HasPrefix(buffer, zipMagic):
		logger.L.Debug("File content validated as XLSX (ZIP signature)")
		return "xlsx", nil
	case n >= len(ole2Magic) && bytes.HasPrefix(buffer, ole2Magic):
		logger.L.Debug("File content validated as legacy XLS (OLE2 signature)")
		return "xls", nil
	default:
		logger.L.Warn("Uploaded file has no spreadsheet signature", "prefix", fmt.Sprintf("% x", buffer[:n]))
		return "", fmt.Errorf("%w: file content is not an XLSX/XLS workbook", ErrValidationFailed)
	}
}

package services

import "errors"

var (
	// ErrFileRead means the uploaded file could not be read or decoded as a
	// workbook at all.
	ErrFileRead = errors.New("failed to read uploaded file")

	// ErrParsingFailed wraps fatal parsing errors (missing investment header,
	// zero valid rows). The wrapped cause carries the user-readable reason.
	ErrParsingFailed = errors.New("parsing failed")

	// ErrSessionNotFound means no uploaded dataset exists for the presented
	// session ID (never uploaded, expired, or cleared).
	ErrSessionNotFound = errors.New("no uploaded data for session")
)

package handlers

import (
	"net/http"
	"strings"
)

// SessionHeader carries the upload session ID on every dashboard request.
// The upload response mints it; there is no other identity.
const SessionHeader = "X-Session-ID"

// GetSessionID extracts the session ID from the request header.
func GetSessionID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(SessionHeader))
	if id == "" {
		return "", false
	}
	return id, true
}

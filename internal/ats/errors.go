package ats

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoOrganization is returned by organization-scoped lookups called
// without an organization.
var ErrNoOrganization = errors.New("organization id is required")

// APIError is a non-2xx response from the ATS.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ats: %d: %s", e.Status, e.Message)
}

// RemoteMessage is the ATS's own wording, for showing to users as-is.
func (e *APIError) RemoteMessage() string { return e.Message }

// NotFound reports whether the ATS answered 404.
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

// parseAPIError extracts the message from an error body. The ATS sends
// {"message": ...} or {"error": ...}; anything else is used verbatim.
func parseAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

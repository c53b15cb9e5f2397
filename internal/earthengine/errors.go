package earthengine

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a decoded engine error payload. Nothing else from the
// engine's error surface crosses this package's boundary.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("earthengine: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("earthengine: status %d", e.StatusCode)
}

func decodeAPIError(statusCode int, raw []byte) error {
	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
		apiErr.Message = payload.Error.Message
		apiErr.Status = payload.Error.Status
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// IsNotFound reports whether err represents a missing or inaccessible asset.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsPermissionDenied reports whether err represents a project permission
// failure.
func IsPermissionDenied(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusForbidden {
			return true
		}
		msg := strings.ToLower(apiErr.Message)
		return strings.Contains(msg, "permission denied") ||
			strings.Contains(msg, "does not have required permission")
	}
	return false
}

// ErrorMessage extracts the human-readable detail of an engine error.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

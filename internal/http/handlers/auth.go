package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"geedownloader/internal/earthengine"
	"geedownloader/internal/gee"
)

// StartAuth launches the CLI authentication flow. The flow itself runs in
// the operator's terminal; this endpoint only kicks it off.
func (a *App) StartAuth(w http.ResponseWriter, r *http.Request) {
	result := earthengine.StartAuthentication(r.Context(), a.CredentialsPath)
	status := http.StatusOK
	if result.Status != "success" {
		status = http.StatusInternalServerError
	}
	a.json(w, status, result)
}

type authStatusRequest struct {
	ProjectID string `json:"project_id"`
}

type authStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
}

// CheckAuthStatus re-establishes and verifies a session for the supplied
// project identity. The response always carries the authenticated flag;
// classification failures are reported in the message, not as transport
// errors.
func (a *App) CheckAuthStatus(w http.ResponseWriter, r *http.Request) {
	var req authStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProjectID == "" {
		a.json(w, http.StatusBadRequest, authStatusResponse{
			Authenticated: false,
			Status:        "error",
			Message:       "Please enter your GEE Project ID",
		})
		return
	}

	// Drop any cached session so verification actually round-trips.
	a.Sessions.Forget(req.ProjectID)
	if _, err := a.Sessions.Ensure(r.Context(), req.ProjectID); err != nil {
		a.json(w, http.StatusOK, authStatusResponse{
			Authenticated: false,
			Status:        "error",
			Message:       sessionFailureMessage(err),
		})
		return
	}

	a.json(w, http.StatusOK, authStatusResponse{Authenticated: true, Status: "success"})
}

func sessionFailureMessage(err error) string {
	var sessErr *gee.SessionError
	if !errors.As(err, &sessErr) {
		return "Authentication check failed: " + err.Error()
	}
	switch sessErr.Kind {
	case gee.SessionNotRegistered:
		return "Please complete your registration at https://signup.earthengine.google.com/"
	case gee.SessionNotAuthorized:
		return "Please authenticate at https://code.earthengine.google.com first."
	case gee.SessionVerificationFailed:
		return "API test failed. Please try authenticating again."
	default:
		return "Authentication failed: " + sessErr.Detail
	}
}

package gee

import (
	"fmt"
	"strings"

	"geedownloader/internal/earthengine"
)

// SessionErrorKind classifies session establishment failures.
type SessionErrorKind string

const (
	SessionPermissionDenied   SessionErrorKind = "permission_denied"
	SessionNotRegistered      SessionErrorKind = "not_registered"
	SessionNotAuthorized      SessionErrorKind = "not_authorized"
	SessionVerificationFailed SessionErrorKind = "verification_failed"
	SessionTransient          SessionErrorKind = "transient"
)

// SessionError reports a failure to establish or verify an engine session.
type SessionError struct {
	Kind    SessionErrorKind
	Project string
	Detail  string
}

func (e *SessionError) Error() string {
	if e.Project != "" {
		return fmt.Sprintf("session %s for project %q: %s", e.Kind, e.Project, e.Detail)
	}
	return fmt.Sprintf("session %s: %s", e.Kind, e.Detail)
}

// Retryable reports whether the caller may retry the operation as-is.
func (e *SessionError) Retryable() bool {
	return e.Kind == SessionTransient
}

// AssetError reports that an asset could not be resolved through any probe.
type AssetError struct {
	AssetID string
	Detail  string
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %q not found or no access: %s", e.AssetID, e.Detail)
}

// ExportErrorKind classifies export submission failures.
type ExportErrorKind string

const (
	ExportSessionFailed        ExportErrorKind = "session_failed"
	ExportBadRegion            ExportErrorKind = "bad_region"
	ExportAssetUnavailable     ExportErrorKind = "asset_unavailable"
	ExportDateRangeUnavailable ExportErrorKind = "date_range_unavailable"
	ExportNoDataInRange        ExportErrorKind = "no_data_in_range"
	ExportSubmissionFailed     ExportErrorKind = "submission_failed"
)

// ExportError reports a failure in one step of export submission. Every
// step maps its failure to a distinct kind; nothing is swallowed here.
type ExportError struct {
	Kind   ExportErrorKind
	Detail string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %s", e.Kind, e.Detail)
}

func exportErr(kind ExportErrorKind, format string, args ...any) *ExportError {
	return &ExportError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// classifySessionError folds the engine's error surface into the session
// failure taxonomy. The engine reports provisioning problems only through
// message text, so the classification matches substrings the same way the
// operator-facing docs describe them.
func classifySessionError(project string, err error) *SessionError {
	detail := earthengine.ErrorMessage(err)
	lower := strings.ToLower(detail)

	switch {
	case earthengine.IsPermissionDenied(err):
		return &SessionError{
			Kind:    SessionPermissionDenied,
			Project: project,
			Detail:  fmt.Sprintf("caller does not have required permission to use project %q: %s", project, detail),
		}
	case strings.Contains(lower, "not registered"):
		return &SessionError{
			Kind:    SessionNotRegistered,
			Project: project,
			Detail:  "account not registered; complete registration at https://signup.earthengine.google.com/",
		}
	case strings.Contains(lower, "not authorized"):
		return &SessionError{
			Kind:    SessionNotAuthorized,
			Project: project,
			Detail:  "account not authenticated; authenticate at https://code.earthengine.google.com first",
		}
	default:
		return &SessionError{Kind: SessionTransient, Project: project, Detail: detail}
	}
}

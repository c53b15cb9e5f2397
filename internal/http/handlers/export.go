package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"geedownloader/internal/domain"
	"geedownloader/internal/gee"
)

const dateLayout = "2006-01-02"

type validateDatesRequest struct {
	DatasetID string `json:"dataset_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	ProjectID string `json:"project_id"`
}

// ValidateDates checks a requested range against the asset's live
// coverage. Validation is advisory; unknown coverage passes.
func (a *App) ValidateDates(w http.ResponseWriter, r *http.Request) {
	var req validateDatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid JSON data")
		return
	}
	if req.DatasetID == "" || req.StartDate == "" || req.EndDate == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "Missing required parameters")
		return
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	sess, ok := a.ensureSession(w, r, req.ProjectID)
	if !ok {
		return
	}
	asset, err := a.Resolver.Resolve(r.Context(), sess, req.DatasetID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	valid := !start.After(end) && a.Validator.Validate(r.Context(), sess, asset, start, end)
	a.json(w, http.StatusOK, map[string]any{"valid": valid})
}

type downloadRequest struct {
	DatasetID string          `json:"dataset_id"`
	Variable  string          `json:"variable"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Region    json.RawMessage `json:"region"`
	Format    string          `json:"format"`
	Scale     int             `json:"scale"`
	Folder    string          `json:"folder"`
	ProjectID string          `json:"project_id"`
}

func (req *downloadRequest) missingFields() []string {
	var missing []string
	if req.DatasetID == "" {
		missing = append(missing, "dataset_id")
	}
	if req.Variable == "" {
		missing = append(missing, "variable")
	}
	if req.StartDate == "" {
		missing = append(missing, "start_date")
	}
	if req.EndDate == "" {
		missing = append(missing, "end_date")
	}
	if len(req.Region) == 0 {
		missing = append(missing, "region")
	}
	return missing
}

func (a *App) exportRequest(w http.ResponseWriter, r *http.Request) (*domain.ExportRequest, bool) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid JSON data")
		return nil, false
	}
	if missing := req.missingFields(); len(missing) > 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "Missing required fields: "+strings.Join(missing, ", "))
		return nil, false
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return nil, false
	}
	scale := req.Scale
	if scale <= 0 {
		scale = a.DefaultScale
	}
	format := req.Format
	if format == "" {
		format = "GeoTIFF"
	}
	return &domain.ExportRequest{
		AssetID:    req.DatasetID,
		Band:       req.Variable,
		Start:      start,
		End:        end,
		RegionJSON: req.Region,
		Scale:      scale,
		Format:     format,
		Folder:     req.Folder,
		ProjectID:  req.ProjectID,
	}, true
}

// Download submits an asynchronous export job and returns its handle.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	req, ok := a.exportRequest(w, r)
	if !ok {
		return
	}
	handle, err := a.Exports.Submit(r.Context(), *req)
	if err != nil {
		a.exportError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"status":      "success",
		"message":     "Download task started. Check your Google Drive folder for results.",
		"task_id":     handle.JobID,
		"description": handle.Description,
		"folder":      handle.Folder,
	})
}

// DownloadURL produces a direct download link instead of a job.
func (a *App) DownloadURL(w http.ResponseWriter, r *http.Request) {
	req, ok := a.exportRequest(w, r)
	if !ok {
		return
	}
	result, err := a.Exports.DownloadURL(r.Context(), *req)
	if err != nil {
		a.exportError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":  true,
		"url":      result.URL,
		"filename": result.Filename,
		"folder":   result.Folder,
	})
}

// TaskStatus polls one export job. Poll never fails; an unknown id is a
// failed status, not an error response.
func (a *App) TaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if taskID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "task id is required")
		return
	}
	status := a.Tasks.Poll(r.Context(), taskID, r.URL.Query().Get("project"))
	a.json(w, http.StatusOK, status)
}

func (a *App) exportError(w http.ResponseWriter, err error) {
	var expErr *gee.ExportError
	if !errors.As(err, &expErr) {
		a.error(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	switch expErr.Kind {
	case gee.ExportSessionFailed:
		a.json(w, http.StatusUnauthorized, map[string]any{
			"error":         expErr.Detail,
			"auth_required": true,
		})
	case gee.ExportAssetUnavailable:
		a.error(w, http.StatusNotFound, string(expErr.Kind), expErr.Detail)
	case gee.ExportBadRegion, gee.ExportDateRangeUnavailable, gee.ExportNoDataInRange:
		a.error(w, http.StatusBadRequest, string(expErr.Kind), expErr.Detail)
	default:
		a.error(w, http.StatusBadGateway, string(expErr.Kind), expErr.Detail)
	}
}

func parseDateRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end_date must be YYYY-MM-DD")
	}
	return start, end, nil
}

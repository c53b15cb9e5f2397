package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"geedownloader/internal/catalog"
	"geedownloader/internal/domain"
	"geedownloader/internal/gee"
)

// SearchDatasets serves paginated catalog search from the mirror store.
// Search never touches the engine, so it works before authentication.
func (a *App) SearchDatasets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	result, err := a.Catalog.Search(r.Context(), q.Get("query"), q["tags"], q.Get("sort"), page, perPage)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: dataset search failed")
		a.error(w, http.StatusInternalServerError, "internal", "Error occurred while searching datasets")
		return
	}

	datasets := make([]map[string]any, 0, len(result.Datasets))
	for _, d := range result.Datasets {
		datasets = append(datasets, datasetJSON(d))
	}
	a.json(w, http.StatusOK, map[string]any{
		"datasets":     datasets,
		"total_count":  result.TotalCount,
		"total_pages":  result.TotalPages,
		"current_page": result.CurrentPage,
	})
}

func datasetJSON(d domain.Dataset) map[string]any {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":                  d.ID,
		"title":               d.Title,
		"description":         d.Description,
		"provider":            d.Provider,
		"temporal_resolution": d.TemporalResolution,
		"spatial_resolution":  d.SpatialResolution,
		"start_date":          catalog.FormatDate(d.StartDate),
		"end_date":            catalog.FormatDate(d.EndDate),
		"tags":                tags,
		"thumbnail_url":       d.ThumbnailURL,
		"documentation_url":   d.DocumentationURL,
		"asset_url":           d.AssetURL,
	}
}

// DatasetDetail serves one mirrored catalog entry with its band rows.
// Like search, it never touches the engine and needs no session.
func (a *App) DatasetDetail(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "*")
	if datasetID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "dataset id is required")
		return
	}

	dataset, err := a.Catalog.Dataset(r.Context(), datasetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "Dataset not found")
			return
		}
		a.Logger.Error().Err(err).Str("dataset", datasetID).Msg("handlers: dataset detail failed")
		a.error(w, http.StatusInternalServerError, "internal", "Error occurred while fetching dataset")
		return
	}
	bands, err := a.Catalog.DatasetBands(r.Context(), datasetID)
	if err != nil {
		a.Logger.Error().Err(err).Str("dataset", datasetID).Msg("handlers: dataset bands failed")
		a.error(w, http.StatusInternalServerError, "internal", "Error occurred while fetching dataset")
		return
	}
	if bands == nil {
		bands = []domain.DatasetBand{}
	}

	payload := datasetJSON(*dataset)
	payload["bands"] = bands
	a.json(w, http.StatusOK, payload)
}

// DatasetVariables resolves the asset live and reports its selectable
// bands. A resolved asset always has at least one band.
func (a *App) DatasetVariables(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "*")
	if assetID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "dataset id is required")
		return
	}

	sess, ok := a.ensureSession(w, r, r.URL.Query().Get("project"))
	if !ok {
		return
	}
	asset, err := a.Resolver.Resolve(r.Context(), sess, assetID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	variables := make([]map[string]any, 0, len(asset.Bands))
	for _, b := range asset.Bands {
		variables = append(variables, map[string]any{
			"id":          b.ID,
			"name":        b.Name,
			"description": b.Description,
			"units":       b.Units,
		})
	}
	tags := asset.Tags
	if tags == nil {
		tags = []string{}
	}
	a.json(w, http.StatusOK, map[string]any{
		"variables":   variables,
		"description": asset.Description,
		"tags":        tags,
		"title":       asset.Title,
	})
}

// DatasetTemporalInfo reports the asset's actual temporal coverage. For
// single images both dates collapse onto the acquisition date; for
// collections the member timestamps bound the range. Unknown coverage is
// reported as nulls, not as an error.
func (a *App) DatasetTemporalInfo(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "*")
	if assetID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "dataset id is required")
		return
	}

	sess, ok := a.ensureSession(w, r, r.URL.Query().Get("project"))
	if !ok {
		return
	}
	asset, err := a.Resolver.Resolve(r.Context(), sess, assetID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	var startDate, endDate *string
	switch asset.Kind {
	case domain.AssetKindCollection:
		if covStart, covEnd, known := a.Validator.Coverage(r.Context(), sess, assetID); known {
			s, e := covStart.Format("2006-01-02"), covEnd.Format("2006-01-02")
			startDate, endDate = &s, &e
		}
	default:
		if asset.Start != nil {
			s := asset.Start.Format("2006-01-02")
			startDate, endDate = &s, &s
		}
	}
	a.json(w, http.StatusOK, map[string]any{
		"start_date": startDate,
		"end_date":   endDate,
	})
}

// Tags serves tag-name autocomplete from the mirror store.
func (a *App) Tags(w http.ResponseWriter, r *http.Request) {
	names, err := a.Catalog.SearchTags(r.Context(), r.URL.Query().Get("term"))
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: tag search failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to fetch tags")
		return
	}
	if names == nil {
		names = []string{}
	}
	a.json(w, http.StatusOK, map[string]any{"tags": names})
}

// ensureSession establishes a session for the given project identity,
// writing the auth error payload on failure.
func (a *App) ensureSession(w http.ResponseWriter, r *http.Request, projectID string) (gee.EngineSession, bool) {
	sess, err := a.Sessions.Ensure(r.Context(), projectID)
	if err != nil {
		var sessErr *gee.SessionError
		if errors.As(err, &sessErr) && sessErr.Kind != gee.SessionTransient {
			a.json(w, http.StatusUnauthorized, map[string]any{
				"error":         sessionFailureMessage(err),
				"auth_required": true,
			})
			return nil, false
		}
		a.error(w, http.StatusBadGateway, "engine_unavailable", err.Error())
		return nil, false
	}
	return sess, true
}

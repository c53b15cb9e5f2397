package handlers

import (
	"encoding/json"
	"net/http"

	"geedownloader/internal/catalog"
	"geedownloader/internal/gee"
	"geedownloader/internal/infra"
)

// App bundles the dependencies every handler needs.
type App struct {
	Catalog         *catalog.Store
	Sessions        *gee.SessionManager
	Resolver        *gee.AssetResolver
	Validator       *gee.AvailabilityValidator
	Exports         *gee.ExportOrchestrator
	Tasks           *gee.JobStatusTracker
	CredentialsPath string
	DefaultScale    int
	Logger          infra.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"code": code, "error": message})
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

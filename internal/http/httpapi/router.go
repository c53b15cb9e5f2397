package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"geedownloader/internal/http/handlers"
	"geedownloader/internal/infra"
	"geedownloader/internal/middleware"
)

// NewRouter wires the HTTP surface. Dataset ids contain slashes, so the
// live-introspection routes use trailing wildcards instead of a single
// path segment.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger, country middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Locale(cfg.DefaultLocale, []string{"en", "zh", "id"}, country),
		middleware.Logger(logger),
	)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/start", app.StartAuth)
		r.Post("/status", app.CheckAuthStatus)
	})

	r.Get("/datasets/search", app.SearchDatasets)
	r.Get("/dataset/detail/*", app.DatasetDetail)
	r.Get("/dataset/variables/*", app.DatasetVariables)
	r.Get("/dataset/temporal-info/*", app.DatasetTemporalInfo)

	r.Post("/validate-dates", app.ValidateDates)
	r.Post("/download", app.Download)
	r.Post("/download-url", app.DownloadURL)
	r.Get("/task-status/{task_id}", app.TaskStatus)

	r.Get("/api/tags", app.Tags)

	return r
}

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"geedownloader/internal/earthengine"
	"geedownloader/internal/gee"
	"geedownloader/internal/http/handlers"
	"geedownloader/internal/http/httpapi"
	"geedownloader/internal/infra"
)

// fakeEngine implements gee.EngineSession for end-to-end handler tests.
type fakeEngine struct {
	project string

	computeVal any
	computeErr error

	assets map[string]*earthengine.AssetInfo

	stamps    []int64
	stampsErr error

	count int

	started     *earthengine.StartedTask
	downloadURL string

	tasks    []earthengine.Task
	tasksErr error
}

func (f *fakeEngine) ProjectID() string { return f.project }

func (f *fakeEngine) ComputeValue(ctx context.Context, expression map[string]any) (any, error) {
	if f.computeErr != nil {
		return nil, f.computeErr
	}
	if f.computeVal == nil {
		return float64(3), nil
	}
	return f.computeVal, nil
}

func (f *fakeEngine) Asset(ctx context.Context, assetID string) (*earthengine.AssetInfo, error) {
	info, ok := f.assets[assetID]
	if !ok {
		return nil, &earthengine.APIError{StatusCode: 404, Status: "NOT_FOUND", Message: "asset not found"}
	}
	return info, nil
}

func (f *fakeEngine) FirstImage(ctx context.Context, assetID string) (*earthengine.ImageInfo, error) {
	return nil, nil
}

func (f *fakeEngine) Timestamps(ctx context.Context, assetID string) ([]int64, error) {
	if f.stampsErr != nil {
		return nil, f.stampsErr
	}
	return f.stamps, nil
}

func (f *fakeEngine) CountImages(ctx context.Context, assetID string, start, end time.Time) (int, error) {
	return f.count, nil
}

func (f *fakeEngine) Export(ctx context.Context, spec earthengine.ExportSpec) (*earthengine.StartedTask, error) {
	if f.started != nil {
		return f.started, nil
	}
	return &earthengine.StartedTask{ID: "TASK1"}, nil
}

func (f *fakeEngine) DownloadURL(ctx context.Context, spec earthengine.ExportSpec) (string, error) {
	return f.downloadURL, nil
}

func (f *fakeEngine) ListTasks(ctx context.Context) ([]earthengine.Task, error) {
	if f.tasksErr != nil {
		return nil, f.tasksErr
	}
	return f.tasks, nil
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func newRouter(fake *fakeEngine) http.Handler {
	logger := zerolog.Nop()
	sessions := gee.NewSessionManager(func(projectID string) gee.EngineSession {
		fake.project = projectID
		return fake
	}, "default-project", logger)
	resolver := gee.NewAssetResolver(logger)
	validator := gee.NewAvailabilityValidator(logger)
	app := &handlers.App{
		Sessions:     sessions,
		Resolver:     resolver,
		Validator:    validator,
		Exports:      gee.NewExportOrchestrator(sessions, resolver, validator, "GEE-Downloads", logger),
		Tasks:        gee.NewJobStatusTracker(sessions, logger),
		DefaultScale: 1000,
		Logger:       logger,
	}
	cfg := &infra.Config{DefaultLocale: "en"}
	return httpapi.NewRouter(app, cfg, logger, nil)
}

func modisEngine() *fakeEngine {
	return &fakeEngine{
		assets: map[string]*earthengine.AssetInfo{
			"MODIS/061/MOD13A2": {
				Type:        "IMAGE_COLLECTION",
				Title:       "MODIS Vegetation Indices",
				Description: "16-day NDVI",
				Bands:       []earthengine.BandInfo{{ID: "NDVI", Units: "1"}},
			},
			"USGS/SRTMGL1_003": {
				Type:      "IMAGE",
				Title:     "SRTM Elevation",
				Bands:     []earthengine.BandInfo{{ID: "elevation"}},
				StartTime: "2000-02-11T00:00:00Z",
			},
		},
		stamps: []int64{
			day("2020-01-01").UnixMilli(),
			day("2020-12-31").UnixMilli(),
		},
		count:       3,
		downloadURL: "https://ee.test/v1/projects/p/thumbnails/x:getPixels",
	}
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func TestHealth(t *testing.T) {
	code, body := doJSON(t, newRouter(modisEngine()), http.MethodGet, "/v1/healthz", nil)
	if code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %v", code, body)
	}
}

func TestCheckAuthStatus(t *testing.T) {
	router := newRouter(modisEngine())

	code, body := doJSON(t, router, http.MethodPost, "/auth/status", map[string]string{"project_id": "my-project"})
	if code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
	if body["authenticated"] != true || body["status"] != "success" {
		t.Fatalf("body = %v", body)
	}
}

func TestCheckAuthStatusRequiresProject(t *testing.T) {
	code, body := doJSON(t, newRouter(modisEngine()), http.MethodPost, "/auth/status", map[string]string{})
	if code != http.StatusBadRequest {
		t.Fatalf("code = %d", code)
	}
	if body["message"] != "Please enter your GEE Project ID" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestCheckAuthStatusFailureMessages(t *testing.T) {
	cases := []struct {
		name    string
		err     string
		message string
	}{
		{"not registered", "user is not registered for Earth Engine", "Please complete your registration at https://signup.earthengine.google.com/"},
		{"not authorized", "caller is not authorized", "Please authenticate at https://code.earthengine.google.com first."},
	}
	for _, tc := range cases {
		fake := modisEngine()
		fake.computeErr = errorString(tc.err)
		code, body := doJSON(t, newRouter(fake), http.MethodPost, "/auth/status", map[string]string{"project_id": "p"})
		if code != http.StatusOK {
			t.Fatalf("%s: code = %d", tc.name, code)
		}
		if body["authenticated"] != false {
			t.Fatalf("%s: authenticated = %v", tc.name, body["authenticated"])
		}
		if body["message"] != tc.message {
			t.Fatalf("%s: message = %q, want %q", tc.name, body["message"], tc.message)
		}
	}
}

func TestCheckAuthStatusWrongArithmetic(t *testing.T) {
	fake := modisEngine()
	fake.computeVal = float64(5)
	code, body := doJSON(t, newRouter(fake), http.MethodPost, "/auth/status", map[string]string{"project_id": "p"})
	if code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
	if body["message"] != "API test failed. Please try authenticating again." {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestDatasetVariables(t *testing.T) {
	code, body := doJSON(t, newRouter(modisEngine()), http.MethodGet, "/dataset/variables/MODIS/061/MOD13A2?project=p", nil)
	if code != http.StatusOK {
		t.Fatalf("code = %d, body = %v", code, body)
	}
	if body["title"] != "MODIS Vegetation Indices" {
		t.Fatalf("title = %v", body["title"])
	}
	variables := body["variables"].([]any)
	if len(variables) != 1 {
		t.Fatalf("variables = %v", variables)
	}
	v := variables[0].(map[string]any)
	if v["id"] != "NDVI" {
		t.Fatalf("variable = %v", v)
	}
}

func TestDatasetVariablesUnknownAsset(t *testing.T) {
	code, _ := doJSON(t, newRouter(modisEngine()), http.MethodGet, "/dataset/variables/NO/SUCH?project=p", nil)
	if code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", code)
	}
}

func TestDatasetVariablesAuthRequired(t *testing.T) {
	fake := modisEngine()
	fake.computeErr = errorString("caller is not authorized")
	code, body := doJSON(t, newRouter(fake), http.MethodGet, "/dataset/variables/MODIS/061/MOD13A2?project=p", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", code)
	}
	if body["auth_required"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestDatasetTemporalInfoCollection(t *testing.T) {
	code, body := doJSON(t, newRouter(modisEngine()), http.MethodGet, "/dataset/temporal-info/MODIS/061/MOD13A2?project=p", nil)
	if code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
	if body["start_date"] != "2020-01-01" || body["end_date"] != "2020-12-31" {
		t.Fatalf("body = %v", body)
	}
}

func TestDatasetTemporalInfoImage(t *testing.T) {
	code, body := doJSON(t, newRouter(modisEngine()), http.MethodGet, "/dataset/temporal-info/USGS/SRTMGL1_003?project=p", nil)
	if code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
	if body["start_date"] != "2000-02-11" || body["end_date"] != "2000-02-11" {
		t.Fatalf("body = %v", body)
	}
}

func TestDatasetTemporalInfoUnknownCoverage(t *testing.T) {
	fake := modisEngine()
	fake.stamps = nil
	code, body := doJSON(t, newRouter(fake), http.MethodGet, "/dataset/temporal-info/MODIS/061/MOD13A2?project=p", nil)
	if code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
	if body["start_date"] != nil || body["end_date"] != nil {
		t.Fatalf("body = %v, want nulls", body)
	}
}

func TestValidateDates(t *testing.T) {
	router := newRouter(modisEngine())

	code, body := doJSON(t, router, http.MethodPost, "/validate-dates", map[string]string{
		"dataset_id": "MODIS/061/MOD13A2",
		"start_date": "2020-02-01",
		"end_date":   "2020-03-01",
		"project_id": "p",
	})
	if code != http.StatusOK || body["valid"] != true {
		t.Fatalf("in range = %d %v", code, body)
	}

	code, body = doJSON(t, router, http.MethodPost, "/validate-dates", map[string]string{
		"dataset_id": "MODIS/061/MOD13A2",
		"start_date": "2025-01-01",
		"end_date":   "2025-02-01",
	})
	if code != http.StatusOK || body["valid"] != false {
		t.Fatalf("out of range = %d %v", code, body)
	}
}

func TestValidateDatesMissingParameters(t *testing.T) {
	code, body := doJSON(t, newRouter(modisEngine()), http.MethodPost, "/validate-dates", map[string]string{
		"dataset_id": "MODIS/061/MOD13A2",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("code = %d", code)
	}
	if body["error"] != "Missing required parameters" {
		t.Fatalf("error = %v", body["error"])
	}
}

func downloadBody() map[string]any {
	return map[string]any{
		"dataset_id": "MODIS/061/MOD13A2",
		"variable":   "NDVI",
		"start_date": "2020-02-01",
		"end_date":   "2020-03-01",
		"region": map[string]any{
			"features": []any{map[string]any{
				"geometry": map[string]any{"type": "Polygon", "coordinates": []any{}},
			}},
		},
	}
}

func TestDownload(t *testing.T) {
	fake := modisEngine()
	fake.started = &earthengine.StartedTask{ID: float64(777)}
	code, body := doJSON(t, newRouter(fake), http.MethodPost, "/download", downloadBody())
	if code != http.StatusOK {
		t.Fatalf("code = %d, body = %v", code, body)
	}
	if body["status"] != "success" {
		t.Fatalf("status = %v", body["status"])
	}
	if body["task_id"] != "777" {
		t.Fatalf("task_id = %v, want string form", body["task_id"])
	}
	if body["description"] != "MOD13A2_NDVI_2020-02-01_to_2020-03-01" {
		t.Fatalf("description = %v", body["description"])
	}
	if body["message"] != "Download task started. Check your Google Drive folder for results." {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestDownloadMissingFields(t *testing.T) {
	body := downloadBody()
	delete(body, "variable")
	delete(body, "region")
	code, resp := doJSON(t, newRouter(modisEngine()), http.MethodPost, "/download", body)
	if code != http.StatusBadRequest {
		t.Fatalf("code = %d", code)
	}
	if resp["error"] != "Missing required fields: variable, region" {
		t.Fatalf("error = %v", resp["error"])
	}
}

func TestDownloadNoDataInRange(t *testing.T) {
	fake := modisEngine()
	fake.count = 0
	code, body := doJSON(t, newRouter(fake), http.MethodPost, "/download", downloadBody())
	if code != http.StatusBadRequest {
		t.Fatalf("code = %d", code)
	}
	if body["error"] != "no data available for the selected parameters" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestDownloadSessionFailure(t *testing.T) {
	fake := modisEngine()
	fake.computeErr = errorString("caller is not authorized")
	code, body := doJSON(t, newRouter(fake), http.MethodPost, "/download", downloadBody())
	if code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", code)
	}
	if body["auth_required"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestDownloadURLEndpoint(t *testing.T) {
	code, body := doJSON(t, newRouter(modisEngine()), http.MethodPost, "/download-url", downloadBody())
	if code != http.StatusOK {
		t.Fatalf("code = %d, body = %v", code, body)
	}
	if body["success"] != true {
		t.Fatalf("success = %v", body["success"])
	}
	if body["filename"] != "MOD13A2_NDVI_2020-02-01_to_2020-03-01.tif" {
		t.Fatalf("filename = %v", body["filename"])
	}
}

func TestTaskStatus(t *testing.T) {
	fake := modisEngine()
	fake.tasks = []earthengine.Task{{ID: "TASK1", State: "RUNNING", Progress: 0.4}}
	code, body := doJSON(t, newRouter(fake), http.MethodGet, "/task-status/TASK1", nil)
	if code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
	if body["status"] != "RUNNING" {
		t.Fatalf("status = %v", body["status"])
	}
	if body["progress"] != float64(40) {
		t.Fatalf("progress = %v", body["progress"])
	}
}

func TestTaskStatusUnknownTask(t *testing.T) {
	code, body := doJSON(t, newRouter(modisEngine()), http.MethodGet, "/task-status/NOPE", nil)
	if code != http.StatusOK {
		t.Fatalf("code = %d, poll must not fail", code)
	}
	if body["status"] != "FAILED" {
		t.Fatalf("status = %v", body["status"])
	}
	if body["error"] != "Task not found or may have expired" {
		t.Fatalf("error = %v", body["error"])
	}
}

type errorString string

func (e errorString) Error() string { return string(e) }

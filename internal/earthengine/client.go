package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"geedownloader/internal/infra"
)

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = errors.New("earthengine: access token is required")

// DefaultBaseURL is the production REST endpoint.
const DefaultBaseURL = "https://earthengine.googleapis.com/v1"

// publicAssetParent prefixes bare catalog ids such as "ECMWF/ERA5/DAILY".
const publicAssetParent = "projects/earthengine-public/assets"

// Options configures the Earth Engine REST client.
type Options struct {
	AccessToken    string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the Earth Engine REST API. A Client
// is stateless; project identity is bound per call through a Session.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	logger      *infra.Logger
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		accessToken: strings.TrimSpace(opts.AccessToken),
		baseURL:     baseURL,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.accessToken != ""
}

// Session binds the client to one project identity. Sessions are cheap
// values; concurrent requests for different projects never share mutable
// state through them.
func (c *Client) Session(projectID string) *Session {
	return &Session{client: c, projectID: strings.TrimSpace(projectID)}
}

// Session is an explicit per-call handle scoping every engine operation
// to a single project.
type Session struct {
	client    *Client
	projectID string
}

// ProjectID returns the project identity this session is scoped to.
func (s *Session) ProjectID() string {
	return s.projectID
}

// ComputeValue evaluates a serialized expression remotely and returns the
// decoded result.
func (s *Session) ComputeValue(ctx context.Context, expression map[string]any) (any, error) {
	var out struct {
		Result any `json:"result"`
	}
	path := fmt.Sprintf("projects/%s/value:compute", url.PathEscape(s.projectID))
	if err := s.client.do(ctx, http.MethodPost, path, map[string]any{"expression": expression}, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Asset fetches metadata for one asset id.
func (s *Session) Asset(ctx context.Context, assetID string) (*AssetInfo, error) {
	var info AssetInfo
	if err := s.client.do(ctx, http.MethodGet, assetName(assetID), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListImages lists the members of a collection, optionally restricted to
// a time window. All pages are fetched.
func (s *Session) ListImages(ctx context.Context, assetID string, start, end *time.Time) ([]ImageInfo, error) {
	var images []ImageInfo
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("pageSize", "1000")
		if start != nil {
			q.Set("startTime", start.UTC().Format(time.RFC3339))
		}
		if end != nil {
			q.Set("endTime", end.UTC().Format(time.RFC3339))
		}
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}
		var page struct {
			Images        []ImageInfo `json:"images"`
			NextPageToken string      `json:"nextPageToken"`
		}
		path := assetName(assetID) + ":listImages?" + q.Encode()
		if err := s.client.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		images = append(images, page.Images...)
		if page.NextPageToken == "" {
			return images, nil
		}
		pageToken = page.NextPageToken
	}
}

// FirstImage returns the first member of a collection, or nil when the
// collection is empty.
func (s *Session) FirstImage(ctx context.Context, assetID string) (*ImageInfo, error) {
	images, err := s.ListImages(ctx, assetID, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, nil
	}
	first := images[0]
	return &first, nil
}

// Timestamps returns the acquisition time of every collection member, in
// milliseconds since the epoch, in listing order.
func (s *Session) Timestamps(ctx context.Context, assetID string) ([]int64, error) {
	images, err := s.ListImages(ctx, assetID, nil, nil)
	if err != nil {
		return nil, err
	}
	stamps := make([]int64, 0, len(images))
	for _, img := range images {
		if img.StartTime == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, img.StartTime)
		if err != nil {
			continue
		}
		stamps = append(stamps, t.UnixMilli())
	}
	return stamps, nil
}

// CountImages returns the number of collection members inside the window.
func (s *Session) CountImages(ctx context.Context, assetID string, start, end time.Time) (int, error) {
	images, err := s.ListImages(ctx, assetID, &start, &end)
	if err != nil {
		return 0, err
	}
	return len(images), nil
}

// Export submits an asynchronous export job and returns the engine's
// acknowledgement. The job runs remotely; progress is observed through
// ListTasks.
func (s *Session) Export(ctx context.Context, spec ExportSpec) (*StartedTask, error) {
	payload := map[string]any{
		"expression":  imageExpression(spec.Image),
		"description": spec.Description,
		"fileExportOptions": map[string]any{
			"fileFormat": fileFormatCode(spec.FileFormat),
			"driveDestination": map[string]any{
				"folder":         spec.Folder,
				"filenamePrefix": spec.Description,
			},
		},
		"maxPixels": spec.MaxPixels,
		"grid":      exportGrid(spec),
	}
	var task StartedTask
	path := fmt.Sprintf("projects/%s/image:export", url.PathEscape(s.projectID))
	if err := s.client.do(ctx, http.MethodPost, path, payload, &task); err != nil {
		return nil, err
	}
	if task.ID == nil && task.Name != "" {
		task.ID = lastSegment(task.Name)
	}
	s.client.logger.Debug().
		Str("project", s.projectID).
		Str("description", spec.Description).
		Msg("earthengine: export accepted")
	return &task, nil
}

// DownloadURL creates a synchronous download artifact and returns its URL.
// Unlike Export there is no job to poll; the result must fit in a single
// HTTP response, which is why callers pass a much smaller pixel ceiling.
func (s *Session) DownloadURL(ctx context.Context, spec ExportSpec) (string, error) {
	payload := map[string]any{
		"expression": imageExpression(spec.Image),
		"fileFormat": fileFormatCode(spec.FileFormat),
		"maxPixels":  spec.MaxPixels,
		"grid":       exportGrid(spec),
	}
	var out struct {
		Name string `json:"name"`
	}
	path := fmt.Sprintf("projects/%s/thumbnails", url.PathEscape(s.projectID))
	if err := s.client.do(ctx, http.MethodPost, path, payload, &out); err != nil {
		return "", err
	}
	if out.Name == "" {
		return "", errors.New("earthengine: empty thumbnail name")
	}
	return s.client.baseURL + "/" + out.Name + ":getPixels", nil
}

// ListTasks fetches the full task list for the session's project.
func (s *Session) ListTasks(ctx context.Context) ([]Task, error) {
	var out struct {
		Tasks []Task `json:"tasks"`
	}
	path := fmt.Sprintf("projects/%s/tasks", url.PathEscape(s.projectID))
	if err := s.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if !c.HasCredentials() {
		return ErrMissingToken
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("earthengine: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return fmt.Errorf("earthengine: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("earthengine: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("earthengine: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("earthengine: decode response: %w", err)
	}
	return nil
}

func assetName(assetID string) string {
	id := strings.Trim(strings.TrimSpace(assetID), "/")
	if strings.HasPrefix(id, "projects/") {
		return id
	}
	return publicAssetParent + "/" + id
}

func lastSegment(name string) string {
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

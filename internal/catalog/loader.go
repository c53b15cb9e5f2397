package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"geedownloader/internal/infra"
	"geedownloader/internal/sqlinline"
)

// feedEntry mirrors one record of the public gee_catalog.json feed. Tags
// arrive as one comma-separated string.
type feedEntry struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	Provider           string `json:"provider"`
	Tags               string `json:"tags"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	TemporalResolution string `json:"temporal_resolution"`
	SpatialResolution  string `json:"spatial_resolution"`
	AssetURL           string `json:"asset_url"`
	ThumbnailURL       string `json:"thumbnail_url"`
	DocumentationURL   string `json:"documentation_url"`
	Bands              []struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Units       string `json:"units"`
		DataType    string `json:"data_type"`
	} `json:"bands"`
}

// LoadStats summarizes one ingestion run.
type LoadStats struct {
	Created int
	Updated int
	Errors  int
	Tags    int
}

// Loader ingests the public dataset catalog feed into the mirror tables.
type Loader struct {
	sql        infra.SQLExecutor
	httpClient *http.Client
	feedURL    string
	logger     infra.Logger
}

func NewLoader(sql infra.SQLExecutor, httpClient *http.Client, feedURL string, logger infra.Logger) *Loader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Loader{sql: sql, httpClient: httpClient, feedURL: feedURL, logger: logger}
}

// Run fetches the feed and upserts every dataset, its tags, and its
// bands. A failing dataset is counted and skipped; the run continues.
func (l *Loader) Run(ctx context.Context) (*LoadStats, error) {
	runID := uuid.NewString()
	logger := l.logger.With().Str("run_id", runID).Logger()
	logger.Info().Str("feed", l.feedURL).Msg("catalog: fetching feed")

	entries, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("datasets", len(entries)).Msg("catalog: feed decoded")

	tagIDs := make(map[string]string)
	stats := &LoadStats{}
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		created, err := l.upsertEntry(ctx, entry, tagIDs)
		if err != nil {
			stats.Errors++
			logger.Error().Err(err).Str("dataset", entry.ID).Msg("catalog: dataset skipped")
			continue
		}
		if created {
			stats.Created++
		} else {
			stats.Updated++
		}
	}
	stats.Tags = len(tagIDs)

	logger.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("errors", stats.Errors).
		Int("tags", stats.Tags).
		Msg("catalog: run completed")
	return stats, nil
}

func (l *Loader) fetch(ctx context.Context) ([]feedEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build feed request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog: feed status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog: read feed: %w", err)
	}
	var entries []feedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("catalog: decode feed: %w", err)
	}
	return entries, nil
}

func (l *Loader) upsertEntry(ctx context.Context, entry feedEntry, tagIDs map[string]string) (bool, error) {
	row := l.sql.QueryRow(ctx, sqlinline.QUpsertDataset,
		entry.ID, entry.Title, entry.Description, entry.Provider,
		parseFeedDate(entry.StartDate), parseFeedDate(entry.EndDate),
		entry.TemporalResolution, entry.SpatialResolution,
		entry.AssetURL, entry.ThumbnailURL, entry.DocumentationURL)
	var created bool
	if err := row.Scan(&created); err != nil {
		return false, fmt.Errorf("upsert dataset: %w", err)
	}

	if _, err := l.sql.Exec(ctx, sqlinline.QClearDatasetTags, entry.ID); err != nil {
		return created, fmt.Errorf("clear tags: %w", err)
	}
	for _, tag := range SplitTags(entry.Tags) {
		tagID, ok := tagIDs[tag]
		if !ok {
			row := l.sql.QueryRow(ctx, sqlinline.QUpsertTag, tag)
			if err := row.Scan(&tagID); err != nil {
				return created, fmt.Errorf("upsert tag %q: %w", tag, err)
			}
			tagIDs[tag] = tagID
		}
		if _, err := l.sql.Exec(ctx, sqlinline.QLinkDatasetTag, entry.ID, tagID); err != nil {
			return created, fmt.Errorf("link tag %q: %w", tag, err)
		}
	}

	for _, band := range entry.Bands {
		if band.ID == "" {
			continue
		}
		if _, err := l.sql.Exec(ctx, sqlinline.QUpsertDatasetBand,
			entry.ID, band.ID, band.Description, band.Units, band.DataType); err != nil {
			return created, fmt.Errorf("upsert band %q: %w", band.ID, err)
		}
	}
	return created, nil
}

// SplitTags splits the feed's comma-separated tag string, trimming and
// deduplicating case-insensitively.
func SplitTags(raw string) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

func parseFeedDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"geedownloader/internal/domain"
	"geedownloader/internal/infra"
	"geedownloader/internal/sqlinline"
)

// Store provides search over the mirrored dataset catalog. The mirror is
// a pre-fetched snapshot and is queried without touching the engine.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Search performs a fuzzy id/title match with optional tag filtering and
// pagination. Sort accepts "title", "provider", or "updated"; anything
// else falls back to title order.
func (s *Store) Search(ctx context.Context, query string, tags []string, sort string, page, perPage int) (*domain.DatasetPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	lowered := make([]string, 0, len(tags))
	for _, t := range tags {
		if trimmed := strings.ToLower(strings.TrimSpace(t)); trimmed != "" {
			lowered = append(lowered, trimmed)
		}
	}

	rows, err := s.sql.Query(ctx, sqlinline.QSearchDatasets,
		strings.TrimSpace(query), lowered, normalizeSort(sort), perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()

	result := &domain.DatasetPage{Datasets: []domain.Dataset{}, CurrentPage: page}
	for rows.Next() {
		var d domain.Dataset
		var total int
		if err := rows.Scan(&d.ID, &d.Title, &d.Description, &d.Provider,
			&d.TemporalResolution, &d.SpatialResolution,
			&d.StartDate, &d.EndDate,
			&d.AssetURL, &d.ThumbnailURL, &d.DocumentationURL,
			&d.UpdatedAt, &d.Tags, &total); err != nil {
			return nil, fmt.Errorf("catalog: scan dataset: %w", err)
		}
		result.TotalCount = total
		result.Datasets = append(result.Datasets, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: search rows: %w", err)
	}
	result.TotalPages = (result.TotalCount + perPage - 1) / perPage
	return result, nil
}

// Dataset fetches one catalog entry by id.
func (s *Store) Dataset(ctx context.Context, id string) (*domain.Dataset, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectDataset, id)
	var d domain.Dataset
	if err := row.Scan(&d.ID, &d.Title, &d.Description, &d.Provider,
		&d.TemporalResolution, &d.SpatialResolution,
		&d.StartDate, &d.EndDate,
		&d.AssetURL, &d.ThumbnailURL, &d.DocumentationURL,
		&d.UpdatedAt, &d.Tags); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("catalog: select dataset: %w", err)
	}
	return &d, nil
}

// DatasetBands fetches the mirrored band rows for one dataset.
func (s *Store) DatasetBands(ctx context.Context, id string) ([]domain.DatasetBand, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QSelectDatasetBands, id)
	if err != nil {
		return nil, fmt.Errorf("catalog: select bands: %w", err)
	}
	defer rows.Close()

	var bands []domain.DatasetBand
	for rows.Next() {
		var b domain.DatasetBand
		if err := rows.Scan(&b.Name, &b.Description, &b.Units, &b.DataType); err != nil {
			return nil, fmt.Errorf("catalog: scan band: %w", err)
		}
		bands = append(bands, b)
	}
	return bands, rows.Err()
}

// SearchTags returns tag names matching the term, for autocomplete.
func (s *Store) SearchTags(ctx context.Context, term string) ([]string, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QSearchTags, strings.TrimSpace(term))
	if err != nil {
		return nil, fmt.Errorf("catalog: search tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("catalog: scan tag: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func normalizeSort(sort string) string {
	switch sort {
	case "title", "provider", "updated":
		return sort
	default:
		return "title"
	}
}

// FormatDate renders an optional catalog date the way the UI expects.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

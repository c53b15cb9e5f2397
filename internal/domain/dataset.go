package domain

import "time"

// Dataset is the catalog mirror of one Earth Engine dataset, ingested
// from the public catalog feed. It is a pre-fetched snapshot and is
// independent of live asset resolution.
type Dataset struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Provider           string     `json:"provider"`
	Tags               []string   `json:"tags"`
	StartDate          *time.Time `json:"-"`
	EndDate            *time.Time `json:"-"`
	TemporalResolution string     `json:"temporal_resolution"`
	SpatialResolution  string     `json:"spatial_resolution"`
	AssetURL           string     `json:"asset_url"`
	ThumbnailURL       string     `json:"thumbnail_url"`
	DocumentationURL   string     `json:"documentation_url"`
	UpdatedAt          time.Time  `json:"-"`
}

// DatasetBand mirrors one band row of a catalog dataset.
type DatasetBand struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units"`
	DataType    string `json:"data_type"`
}

// DatasetPage is one page of catalog search results.
type DatasetPage struct {
	Datasets    []Dataset `json:"datasets"`
	TotalCount  int       `json:"total_count"`
	TotalPages  int       `json:"total_pages"`
	CurrentPage int       `json:"current_page"`
}

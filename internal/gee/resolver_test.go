package gee

import (
	"context"
	"errors"
	"testing"

	"geedownloader/internal/domain"
	"geedownloader/internal/earthengine"
)

func TestResolveImage(t *testing.T) {
	sess := &fakeSession{
		assets: map[string]*earthengine.AssetInfo{
			"USGS/SRTMGL1_003": {
				Type:        "IMAGE",
				Title:       "SRTM Digital Elevation",
				Description: "30m DEM",
				Bands: []earthengine.BandInfo{
					{ID: "elevation", Description: "Elevation", Units: "m"},
				},
				StartTime: "2000-02-11T00:00:00Z",
				EndTime:   "2000-02-22T00:00:00Z",
			},
		},
	}
	r := NewAssetResolver(testLogger())

	asset, err := r.Resolve(context.Background(), sess, "USGS/SRTMGL1_003")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if asset.Kind != domain.AssetKindImage {
		t.Fatalf("kind = %q, want %q", asset.Kind, domain.AssetKindImage)
	}
	if asset.Title != "SRTM Digital Elevation" {
		t.Fatalf("title = %q", asset.Title)
	}
	if len(asset.Bands) != 1 || asset.Bands[0].ID != "elevation" {
		t.Fatalf("bands = %+v", asset.Bands)
	}
	// BandInfo without a display name falls back to the id.
	if asset.Bands[0].Name != "elevation" {
		t.Fatalf("band name = %q, want id fallback", asset.Bands[0].Name)
	}
	if asset.Start == nil || asset.Start.Year() != 2000 {
		t.Fatalf("start = %v", asset.Start)
	}
}

func TestResolveCollectionBorrowsFirstImageBands(t *testing.T) {
	sess := &fakeSession{
		assets: map[string]*earthengine.AssetInfo{
			"MODIS/061/MOD13A2": {
				Type:  "IMAGE_COLLECTION",
				Title: "MODIS Vegetation Indices",
			},
		},
		firstImage: &earthengine.ImageInfo{
			Bands: []earthengine.BandInfo{
				{ID: "NDVI", Name: "NDVI"},
				{ID: "EVI", Name: "EVI"},
			},
		},
	}
	r := NewAssetResolver(testLogger())

	asset, err := r.Resolve(context.Background(), sess, "MODIS/061/MOD13A2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if asset.Kind != domain.AssetKindCollection {
		t.Fatalf("kind = %q, want %q", asset.Kind, domain.AssetKindCollection)
	}
	if len(asset.Bands) != 2 || !asset.HasBand("NDVI") || !asset.HasBand("EVI") {
		t.Fatalf("bands = %+v", asset.Bands)
	}
}

func TestResolveSynthesizesPlaceholderBand(t *testing.T) {
	sess := &fakeSession{
		assets: map[string]*earthengine.AssetInfo{
			"projects/x/assets/bare": {Type: "IMAGE_COLLECTION"},
		},
		firstErr: errors.New("listImages unavailable"),
	}
	r := NewAssetResolver(testLogger())

	asset, err := r.Resolve(context.Background(), sess, "projects/x/assets/bare")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(asset.Bands) != 1 {
		t.Fatalf("bands = %+v, want exactly the placeholder", asset.Bands)
	}
	if asset.Bands[0].ID != domain.PlaceholderBandID {
		t.Fatalf("band id = %q, want %q", asset.Bands[0].ID, domain.PlaceholderBandID)
	}
}

func TestResolveMetadataFallback(t *testing.T) {
	sess := &fakeSession{
		assets: map[string]*earthengine.AssetInfo{
			"projects/x/assets/table": {Type: "TABLE", Title: "Some Table"},
		},
	}
	r := NewAssetResolver(testLogger())

	asset, err := r.Resolve(context.Background(), sess, "projects/x/assets/table")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if asset.Kind != domain.AssetKindUnknown {
		t.Fatalf("kind = %q, want %q", asset.Kind, domain.AssetKindUnknown)
	}
}

func TestResolveExhaustionReportsAssetError(t *testing.T) {
	sess := &fakeSession{assets: map[string]*earthengine.AssetInfo{}}
	r := NewAssetResolver(testLogger())

	_, err := r.Resolve(context.Background(), sess, "NO/SUCH/ASSET")
	var aerr *AssetError
	if !errors.As(err, &aerr) {
		t.Fatalf("err = %v, want *AssetError", err)
	}
	if aerr.AssetID != "NO/SUCH/ASSET" {
		t.Fatalf("asset id = %q", aerr.AssetID)
	}
}

func TestResolveTitleAndTagsFromProperties(t *testing.T) {
	sess := &fakeSession{
		assets: map[string]*earthengine.AssetInfo{
			"a": {
				Type: "IMAGE",
				Properties: map[string]any{
					"title":    "Property Title",
					"keywords": []any{"climate", "climate", "srtm", ""},
				},
				Bands: []earthengine.BandInfo{{ID: "b1"}},
			},
		},
	}
	r := NewAssetResolver(testLogger())

	asset, err := r.Resolve(context.Background(), sess, "a")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if asset.Title != "Property Title" {
		t.Fatalf("title = %q", asset.Title)
	}
	if len(asset.Tags) != 2 {
		t.Fatalf("tags = %v, want deduplicated pair", asset.Tags)
	}
}

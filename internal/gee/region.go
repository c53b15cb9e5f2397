package gee

import (
	"encoding/json"
	"errors"
)

// ParseRegion extracts the export geometry from a GeoJSON feature
// collection. Exactly the first feature's geometry is used; additional
// features are ignored rather than merged.
func ParseRegion(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, errors.New("region is required")
	}
	var collection struct {
		Features []struct {
			Geometry map[string]any `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &collection); err != nil {
		return nil, errors.New("region is not valid GeoJSON")
	}
	if len(collection.Features) == 0 {
		return nil, errors.New("region has no features")
	}
	geometry := collection.Features[0].Geometry
	if len(geometry) == 0 {
		return nil, errors.New("region feature has no geometry")
	}
	return geometry, nil
}

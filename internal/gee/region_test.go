package gee

import "testing"

func TestParseRegion(t *testing.T) {
	raw := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}},
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [9,9]}}
		]
	}`)

	geometry, err := ParseRegion(raw)
	if err != nil {
		t.Fatalf("ParseRegion: %v", err)
	}
	if geometry["type"] != "Polygon" {
		t.Fatalf("geometry type = %v, want the first feature's Polygon", geometry["type"])
	}
}

func TestParseRegionErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", "region is required"},
		{"not json", "{nope", "region is not valid GeoJSON"},
		{"no features", `{"type":"FeatureCollection","features":[]}`, "region has no features"},
		{"no geometry", `{"features":[{"type":"Feature"}]}`, "region feature has no geometry"},
	}
	for _, tc := range cases {
		_, err := ParseRegion([]byte(tc.raw))
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if err.Error() != tc.want {
			t.Errorf("%s: err = %q, want %q", tc.name, err, tc.want)
		}
	}
}

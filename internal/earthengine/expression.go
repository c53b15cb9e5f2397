package earthengine

import "time"

// The compute endpoints accept a serialized function graph. The builders
// below emit the small subset this service needs: constant arithmetic for
// session verification and the load/filter/select/mean chain for exports.

// NumberAddExpression builds the graph for a+b. Used as the session
// verification round trip.
func NumberAddExpression(a, b int) map[string]any {
	return map[string]any{
		"values": map[string]any{
			"0": invoke("Number.add", map[string]any{
				"left":  map[string]any{"constantValue": a},
				"right": map[string]any{"constantValue": b},
			}),
		},
		"result": "0",
	}
}

// imageExpression builds the graph materializing one exportable image.
// Single images select the band directly; collections are filtered to the
// date window, band-selected, then reduced with an arithmetic mean across
// the temporal axis. Mean is the only reducer offered.
func imageExpression(img ImageSpec) map[string]any {
	if !img.Collection {
		return map[string]any{
			"values": map[string]any{
				"0": invoke("Image.load", map[string]any{
					"id": map[string]any{"constantValue": img.AssetID},
				}),
				"1": invoke("Image.select", map[string]any{
					"input":    ref("0"),
					"bandSelectors": map[string]any{"constantValue": []any{img.Band}},
				}),
			},
			"result": "1",
		}
	}
	return map[string]any{
		"values": map[string]any{
			"0": invoke("ImageCollection.load", map[string]any{
				"id": map[string]any{"constantValue": img.AssetID},
			}),
			"1": invoke("Collection.filterDate", map[string]any{
				"collection": ref("0"),
				"start":      map[string]any{"constantValue": img.Start.UTC().Format(time.RFC3339)},
				"end":        map[string]any{"constantValue": img.End.UTC().Format(time.RFC3339)},
			}),
			"2": invoke("Collection.select", map[string]any{
				"collection": ref("1"),
				"selectors":  map[string]any{"constantValue": []any{img.Band}},
			}),
			"3": invoke("ImageCollection.mean", map[string]any{
				"collection": ref("2"),
			}),
		},
		"result": "3",
	}
}

func invoke(name string, args map[string]any) map[string]any {
	return map[string]any{
		"functionInvocationValue": map[string]any{
			"functionName": name,
			"arguments":    args,
		},
	}
}

func ref(key string) map[string]any {
	return map[string]any{"valueReference": key}
}

func exportGrid(spec ExportSpec) map[string]any {
	grid := map[string]any{
		"crsCode": spec.CRS,
	}
	if spec.Scale > 0 {
		grid["scale"] = spec.Scale
	}
	if spec.Region != nil {
		grid["region"] = spec.Region
	}
	return grid
}

// fileFormatCode maps user-facing format names onto the engine's enum.
func fileFormatCode(format string) string {
	switch format {
	case "", "GeoTIFF", "GEO_TIFF", "geotiff":
		return "GEO_TIFF"
	case "TFRecord", "TF_RECORD_IMAGE", "tfrecord":
		return "TF_RECORD_IMAGE"
	case "PNG", "png":
		return "PNG"
	case "NPY", "npy":
		return "NPY"
	default:
		return format
	}
}

// FileExtension returns the output filename extension for a format.
func FileExtension(format string) string {
	switch fileFormatCode(format) {
	case "GEO_TIFF":
		return ".tif"
	case "TF_RECORD_IMAGE":
		return ".tfrecord"
	case "PNG":
		return ".png"
	case "NPY":
		return ".npy"
	default:
		return ""
	}
}

package earthengine

import "time"

// AssetInfo is the metadata payload returned for one remote asset.
type AssetInfo struct {
	Name        string         `json:"name"`
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Bands       []BandInfo     `json:"bands"`
	Properties  map[string]any `json:"properties"`
	StartTime   string         `json:"startTime"`
	EndTime     string         `json:"endTime"`
}

// BandInfo describes one band of an asset or image.
type BandInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units"`
	DataType    string `json:"dataType"`
}

// ImageInfo is one member of a collection listing.
type ImageInfo struct {
	Name      string     `json:"name"`
	ID        string     `json:"id"`
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
	Bands     []BandInfo `json:"bands"`
}

// Task is one entry of the remote task list. The id and progress fields
// are kept loosely typed on purpose: the engine has been observed to
// return numeric ids and either 0-100 integers or 0-1 fractions for
// progress, depending on task age and type.
type Task struct {
	ID           any    `json:"id"`
	State        string `json:"state"`
	Progress     any    `json:"progress"`
	Description  string `json:"description"`
	ErrorMessage string `json:"error_message"`
}

// StartedTask is the engine's acknowledgement of an accepted export job.
// The id is loosely typed for the same reason as Task.ID.
type StartedTask struct {
	ID          any    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ImageSpec names the image an export or download materializes: an asset,
// one band, and, for collections, the date window to reduce over.
type ImageSpec struct {
	AssetID    string
	Band       string
	Collection bool
	Start      time.Time
	End        time.Time
}

// ExportSpec carries the output parameters of an export or download call.
type ExportSpec struct {
	Image       ImageSpec
	Description string
	Folder      string
	Region      map[string]any
	Scale       int
	CRS         string
	FileFormat  string
	MaxPixels   float64
}

package domain

import "time"

// TaskState enumerates normalized remote job lifecycle states.
type TaskState string

const (
	TaskStateReady     TaskState = "READY"
	TaskStateRunning   TaskState = "RUNNING"
	TaskStateCompleted TaskState = "COMPLETED"
	TaskStateFailed    TaskState = "FAILED"
	TaskStateCancelled TaskState = "CANCELLED"
	TaskStateUnknown   TaskState = "UNKNOWN"
)

// ExportRequest carries every parameter needed to submit an export job.
type ExportRequest struct {
	AssetID   string
	Band      string
	Start     time.Time
	End       time.Time
	RegionJSON []byte
	Scale     int
	Format    string
	Folder    string
	ProjectID string
}

// JobHandle is the durable identifier a caller retains after submission.
// Immutable once created.
type JobHandle struct {
	JobID       string `json:"task_id"`
	Description string `json:"description"`
	Folder      string `json:"folder"`
}

// JobStatus is the normalized shape of one remote job poll. Derived fresh
// on every poll and never cached.
type JobStatus struct {
	State    TaskState `json:"status"`
	Progress int       `json:"progress"`
	Error    string    `json:"error,omitempty"`
}

// DownloadResult is the outcome of a synchronous direct-download request.
type DownloadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Folder   string `json:"folder,omitempty"`
}

package gee

import (
	"context"
	"time"

	"geedownloader/internal/earthengine"
)

// EngineSession is the narrow surface the core needs from a project-scoped
// engine session. *earthengine.Session satisfies it; tests substitute fakes.
type EngineSession interface {
	ProjectID() string
	ComputeValue(ctx context.Context, expression map[string]any) (any, error)
	Asset(ctx context.Context, assetID string) (*earthengine.AssetInfo, error)
	FirstImage(ctx context.Context, assetID string) (*earthengine.ImageInfo, error)
	Timestamps(ctx context.Context, assetID string) ([]int64, error)
	CountImages(ctx context.Context, assetID string, start, end time.Time) (int, error)
	Export(ctx context.Context, spec earthengine.ExportSpec) (*earthengine.StartedTask, error)
	DownloadURL(ctx context.Context, spec earthengine.ExportSpec) (string, error)
	ListTasks(ctx context.Context) ([]earthengine.Task, error)
}

// SessionOpener constructs an unverified session for a project identity.
type SessionOpener func(projectID string) EngineSession

var _ EngineSession = (*earthengine.Session)(nil)

package gee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"geedownloader/internal/domain"
	"geedownloader/internal/earthengine"
	"geedownloader/internal/infra"
)

const (
	// asyncMaxPixels is effectively "do not truncate": batch exports have
	// no response-size constraint.
	asyncMaxPixels = 1e13
	// downloadMaxPixels keeps synchronous downloads inside one HTTP
	// response. The asymmetry with asyncMaxPixels is load-bearing.
	downloadMaxPixels = 1e7

	exportCRS  = "EPSG:4326"
	dateLayout = "2006-01-02"
)

// ExportOrchestrator builds and submits export jobs against the engine.
type ExportOrchestrator struct {
	sessions  *SessionManager
	resolver  *AssetResolver
	validator *AvailabilityValidator
	folder    string
	logger    infra.Logger
}

func NewExportOrchestrator(sessions *SessionManager, resolver *AssetResolver, validator *AvailabilityValidator, folder string, logger infra.Logger) *ExportOrchestrator {
	if folder == "" {
		folder = "GEE-Downloads"
	}
	return &ExportOrchestrator{
		sessions:  sessions,
		resolver:  resolver,
		validator: validator,
		folder:    folder,
		logger:    logger,
	}
}

// Submit runs the full submission pipeline and returns the job handle of
// the accepted export. Each step is independently fallible and maps its
// failure to a distinct export error kind.
func (o *ExportOrchestrator) Submit(ctx context.Context, req domain.ExportRequest) (*domain.JobHandle, error) {
	prepared, sess, eerr := o.prepare(ctx, req)
	if eerr != nil {
		return nil, eerr
	}

	task, err := sess.Export(ctx, earthengine.ExportSpec{
		Image:       prepared.image,
		Description: prepared.name,
		Folder:      prepared.folder,
		Region:      prepared.region,
		Scale:       req.Scale,
		CRS:         exportCRS,
		FileFormat:  req.Format,
		MaxPixels:   asyncMaxPixels,
	})
	if err != nil {
		return nil, exportErr(ExportSubmissionFailed, "engine rejected export: %s", earthengine.ErrorMessage(err))
	}

	handle := &domain.JobHandle{
		// The engine has returned numeric task ids; the handle always
		// stores a string.
		JobID:       fmt.Sprint(task.ID),
		Description: prepared.name,
		Folder:      prepared.folder,
	}
	o.logger.Info().
		Str("task_id", handle.JobID).
		Str("asset", req.AssetID).
		Str("band", req.Band).
		Msg("gee: export submitted")
	return handle, nil
}

// DownloadURL is the synchronous variant of Submit: instead of an
// asynchronous job it asks the engine for a direct download URL and never
// produces a job handle.
func (o *ExportOrchestrator) DownloadURL(ctx context.Context, req domain.ExportRequest) (*domain.DownloadResult, error) {
	prepared, sess, eerr := o.prepare(ctx, req)
	if eerr != nil {
		return nil, eerr
	}

	url, err := sess.DownloadURL(ctx, earthengine.ExportSpec{
		Image:      prepared.image,
		Region:     prepared.region,
		Scale:      req.Scale,
		CRS:        exportCRS,
		FileFormat: req.Format,
		MaxPixels:  downloadMaxPixels,
	})
	if err != nil {
		return nil, exportErr(ExportSubmissionFailed, "engine rejected download: %s", earthengine.ErrorMessage(err))
	}

	return &domain.DownloadResult{
		URL:      url,
		Filename: prepared.name + earthengine.FileExtension(req.Format),
		Folder:   prepared.folder,
	}, nil
}

type preparedExport struct {
	image  earthengine.ImageSpec
	region map[string]any
	name   string
	folder string
}

// prepare runs the shared session/region/asset/date steps of both export
// paths, stopping at the first failed step.
func (o *ExportOrchestrator) prepare(ctx context.Context, req domain.ExportRequest) (*preparedExport, EngineSession, *ExportError) {
	sess, err := o.sessions.Ensure(ctx, req.ProjectID)
	if err != nil {
		return nil, nil, exportErr(ExportSessionFailed, "%s", err.Error())
	}

	region, err := ParseRegion(req.RegionJSON)
	if err != nil {
		return nil, nil, exportErr(ExportBadRegion, "%s", err.Error())
	}

	asset, err := o.resolver.Resolve(ctx, sess, req.AssetID)
	if err != nil {
		return nil, nil, exportErr(ExportAssetUnavailable, "%s", err.Error())
	}

	if req.Start.After(req.End) {
		return nil, nil, exportErr(ExportDateRangeUnavailable, "start date %s is after end date %s",
			req.Start.Format(dateLayout), req.End.Format(dateLayout))
	}
	if !o.validator.Validate(ctx, sess, asset, req.Start, req.End) {
		detail := "selected date range is not available for this dataset"
		if covStart, covEnd, known := o.validator.Coverage(ctx, sess, req.AssetID); known {
			detail = fmt.Sprintf("%s; data covers %s to %s", detail,
				covStart.Format(dateLayout), covEnd.Format(dateLayout))
		}
		return nil, nil, exportErr(ExportDateRangeUnavailable, "%s", detail)
	}

	isCollection := asset.Kind == domain.AssetKindCollection
	if isCollection {
		count, err := sess.CountImages(ctx, req.AssetID, req.Start, req.End)
		if err != nil {
			return nil, nil, exportErr(ExportSubmissionFailed, "failed to count images in range: %s", earthengine.ErrorMessage(err))
		}
		if count == 0 {
			return nil, nil, exportErr(ExportNoDataInRange, "no data available for the selected parameters")
		}
	}

	folder := req.Folder
	if folder == "" {
		folder = o.folder
	}

	return &preparedExport{
		image: earthengine.ImageSpec{
			AssetID:    req.AssetID,
			Band:       req.Band,
			Collection: isCollection,
			Start:      req.Start,
			End:        req.End,
		},
		region: region,
		name:   exportName(req.AssetID, req.Band, req.Start, req.End),
		folder: folder,
	}, sess, nil
}

// exportName derives the deterministic job description, which doubles as
// the expected output filename once the format extension is appended.
func exportName(assetID, band string, start, end time.Time) string {
	base := assetID
	if idx := strings.LastIndex(assetID, "/"); idx >= 0 {
		base = assetID[idx+1:]
	}
	s := start.Format(dateLayout)
	e := end.Format(dateLayout)
	if s == e {
		return fmt.Sprintf("%s_%s_%s", base, band, s)
	}
	return fmt.Sprintf("%s_%s_%s_to_%s", base, band, s, e)
}

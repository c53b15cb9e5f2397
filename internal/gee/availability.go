package gee

import (
	"context"
	"time"

	"geedownloader/internal/domain"
	"geedownloader/internal/infra"
)

// AvailabilityValidator decides whether a requested date range intersects
// an asset's actual temporal coverage.
type AvailabilityValidator struct {
	logger infra.Logger
}

func NewAvailabilityValidator(logger infra.Logger) *AvailabilityValidator {
	return &AvailabilityValidator{logger: logger}
}

// Validate reports whether the range is usable for the asset.
//
// Single images always validate: they carry one implicit timestamp and a
// range check is not meaningful. Collections validate when [start, end]
// overlaps [min(T), max(T)] of their member timestamps; partial overlap is
// accepted, strict containment is not required. When the timestamps cannot
// be fetched, or the collection reports none, validation passes: it is
// advisory, and absent date metadata must not block a legitimate export.
func (v *AvailabilityValidator) Validate(ctx context.Context, sess EngineSession, asset *domain.ResolvedAsset, start, end time.Time) bool {
	if asset.Kind != domain.AssetKindCollection {
		return true
	}

	covStart, covEnd, known := v.Coverage(ctx, sess, asset.ID)
	if !known {
		return true
	}
	return !covStart.After(end) && !start.After(covEnd)
}

// Coverage fetches the collection's actual temporal coverage from its
// member timestamps. known is false when the engine call fails or the
// collection has no dated members.
func (v *AvailabilityValidator) Coverage(ctx context.Context, sess EngineSession, assetID string) (start, end time.Time, known bool) {
	stamps, err := sess.Timestamps(ctx, assetID)
	if err != nil {
		v.logger.Warn().Str("asset", assetID).Err(err).Msg("gee: timestamp fetch failed, validation passes open")
		return time.Time{}, time.Time{}, false
	}
	if len(stamps) == 0 {
		return time.Time{}, time.Time{}, false
	}

	minMs, maxMs := stamps[0], stamps[0]
	for _, ms := range stamps[1:] {
		if ms < minMs {
			minMs = ms
		}
		if ms > maxMs {
			maxMs = ms
		}
	}
	return time.UnixMilli(minMs).UTC(), time.UnixMilli(maxMs).UTC(), true
}

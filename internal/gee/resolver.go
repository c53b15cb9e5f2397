package gee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"geedownloader/internal/domain"
	"geedownloader/internal/earthengine"
	"geedownloader/internal/infra"
)

// AssetResolver determines what kind of thing an opaque asset id refers
// to and which bands it declares.
type AssetResolver struct {
	logger infra.Logger
}

func NewAssetResolver(logger infra.Logger) *AssetResolver {
	return &AssetResolver{logger: logger}
}

type probe struct {
	name string
	run  func(ctx context.Context, sess EngineSession, assetID string) (*domain.ResolvedAsset, error)
}

// probeOrder is the resolution fallback chain. Probes run in order and the
// first success wins; a failure advances silently to the next probe and
// only the exhaustion of the whole chain is reported.
var probeOrder = []probe{
	{name: "image", run: probeImage},
	{name: "collection", run: probeCollection},
	{name: "metadata", run: probeMetadata},
}

// Resolve classifies the asset and returns its bands. A successfully
// resolved asset never has zero bands: when the remote metadata declares
// none, a single placeholder band is synthesized so callers always have a
// selectable option.
func (r *AssetResolver) Resolve(ctx context.Context, sess EngineSession, assetID string) (*domain.ResolvedAsset, error) {
	var lastErr error
	for _, p := range probeOrder {
		asset, err := p.run(ctx, sess, assetID)
		if err != nil {
			r.logger.Debug().Str("asset", assetID).Str("probe", p.name).Err(err).Msg("gee: probe failed")
			lastErr = err
			continue
		}
		if len(asset.Bands) == 0 {
			asset.Bands = []domain.Band{domain.PlaceholderBand()}
		}
		return asset, nil
	}

	detail := "no probe succeeded"
	if lastErr != nil {
		detail = lastErr.Error()
	}
	return nil, &AssetError{AssetID: assetID, Detail: detail}
}

func probeImage(ctx context.Context, sess EngineSession, assetID string) (*domain.ResolvedAsset, error) {
	info, err := sess.Asset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if info.Type != "IMAGE" {
		return nil, fmt.Errorf("asset type %q is not an image", info.Type)
	}
	asset := fromAssetInfo(assetID, domain.AssetKindImage, info)
	return asset, nil
}

func probeCollection(ctx context.Context, sess EngineSession, assetID string) (*domain.ResolvedAsset, error) {
	info, err := sess.Asset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if info.Type != "IMAGE_COLLECTION" {
		return nil, fmt.Errorf("asset type %q is not a collection", info.Type)
	}
	asset := fromAssetInfo(assetID, domain.AssetKindCollection, info)
	if len(asset.Bands) == 0 {
		// Collections often declare no bands of their own; the first
		// member carries the schema.
		first, err := sess.FirstImage(ctx, assetID)
		if err == nil && first != nil {
			asset.Bands = convertBands(first.Bands)
		}
	}
	return asset, nil
}

func probeMetadata(ctx context.Context, sess EngineSession, assetID string) (*domain.ResolvedAsset, error) {
	info, err := sess.Asset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if info.Type == "" {
		return nil, errors.New("asset metadata has no type")
	}
	return fromAssetInfo(assetID, domain.AssetKindUnknown, info), nil
}

func fromAssetInfo(assetID string, kind domain.AssetKind, info *earthengine.AssetInfo) *domain.ResolvedAsset {
	asset := &domain.ResolvedAsset{
		ID:          assetID,
		Kind:        kind,
		Title:       firstNonEmpty(info.Title, propertyString(info, "title"), assetID),
		Description: firstNonEmpty(info.Description, propertyString(info, "description")),
		Tags:        propertyTags(info),
		Bands:       convertBands(info.Bands),
	}
	if t, ok := parseRFC3339(info.StartTime); ok {
		asset.Start = &t
	}
	if t, ok := parseRFC3339(info.EndTime); ok {
		asset.End = &t
	}
	return asset
}

func convertBands(bands []earthengine.BandInfo) []domain.Band {
	out := make([]domain.Band, 0, len(bands))
	for _, b := range bands {
		name := b.Name
		if name == "" {
			name = b.ID
		}
		out = append(out, domain.Band{
			ID:          b.ID,
			Name:        name,
			Description: b.Description,
			Units:       b.Units,
			DataType:    b.DataType,
		})
	}
	return out
}

func propertyString(info *earthengine.AssetInfo, key string) string {
	if info.Properties == nil {
		return ""
	}
	if v, ok := info.Properties[key].(string); ok {
		return v
	}
	return ""
}

func propertyTags(info *earthengine.AssetInfo) []string {
	raw, ok := info.Properties["keywords"]
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	var tags []string
	for _, item := range items {
		tag, ok := item.(string)
		if !ok || tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

func parseRFC3339(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

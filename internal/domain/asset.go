package domain

import "time"

// AssetKind enumerates remote asset types.
type AssetKind string

const (
	AssetKindImage      AssetKind = "IMAGE"
	AssetKindCollection AssetKind = "IMAGE_COLLECTION"
	AssetKindUnknown    AssetKind = "UNKNOWN"
)

// Band is a named data channel within an asset. Identifiers are unique
// within one asset.
type Band struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Units       string `json:"units,omitempty"`
	DataType    string `json:"data_type,omitempty"`
}

// PlaceholderBandID is the synthesized band identifier returned when a
// resolved asset exposes no band metadata. Callers always receive at
// least one selectable band.
const PlaceholderBandID = "default"

// PlaceholderBand returns the synthetic band used for assets without
// declared bands.
func PlaceholderBand() Band {
	return Band{
		ID:          PlaceholderBandID,
		Name:        "Default Band",
		Description: "Default band for this dataset",
	}
}

// ResolvedAsset is the transient result of probing a remote asset. It is
// reconstructed on every resolution call and never persisted.
type ResolvedAsset struct {
	ID          string
	Kind        AssetKind
	Title       string
	Description string
	Tags        []string
	Bands       []Band
	Start       *time.Time
	End         *time.Time
}

// HasBand reports whether the asset declares a band with the given id.
func (a *ResolvedAsset) HasBand(id string) bool {
	for _, b := range a.Bands {
		if b.ID == id {
			return true
		}
	}
	return false
}

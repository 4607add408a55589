package cache

import "time"

// TTLs per pipeline stage. Chains only depend on the catalog, so they live
// longest; layouts and artifacts also depend on per-user settings.
const (
	TTLChain    = 7 * 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// ChainKey identifies a resolved chain. catalog should change whenever the
	// catalog contents do (e.g. its fingerprint).
	ChainKey(catalog, item string, opts ChainKeyOpts) string

	// LayoutKey identifies a layout of the chain with the given content hash.
	LayoutKey(chainHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of the layout with the given
	// content hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// ChainKeyOpts holds the resolution inputs that affect a chain.
type ChainKeyOpts struct {
	Amount float64 `json:"amount"`
	Mode   string  `json:"mode"`
}

// LayoutKeyOpts holds the layout inputs that affect positions and labels.
// Catalog matters even when the chain is unchanged: names and liquid flags
// feed labels and transport tiers.
type LayoutKeyOpts struct {
	Catalog   string  `json:"catalog"`
	Language  string  `json:"language"`
	Direction string  `json:"direction"`
	Window    float64 `json:"window"`
	Miners    string  `json:"miners"` // settings.Snapshot.Hash
	Ordering  string  `json:"ordering"`
}

// ArtifactKeyOpts holds the render inputs that affect the output bytes.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Style  string `json:"style"`
}

// DefaultKeyer hashes all key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ChainKey implements [Keyer].
func (DefaultKeyer) ChainKey(catalog, item string, opts ChainKeyOpts) string {
	return hashKey("chain", catalog, item, opts)
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(chainHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", chainHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants can share one
// backend without seeing each other's entries. The server scopes keys by the
// catalog fingerprint, for example:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "catalog:"+cat.Fingerprint()+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ChainKey generates a prefixed key for chain caching.
func (k *ScopedKeyer) ChainKey(catalog, item string, opts ChainKeyOpts) string {
	return k.prefix + k.inner.ChainKey(catalog, item, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(chainHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(chainHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

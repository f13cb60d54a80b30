package cache

// Keyer builds cache keys.
type Keyer interface {
	// SourceKey names the raw payload fetched from endpoint.
	SourceKey(endpoint string) string
	// SceneKey names the scene document built from an architecture hash
	// under a layout configuration hash.
	SceneKey(archHash, configHash string) string
}

// DefaultKeyer produces "source:<endpoint>" and "scene:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SourceKey(endpoint string) string { return "source:" + endpoint }

func (DefaultKeyer) SceneKey(archHash, configHash string) string {
	return "scene:" + HashJSON([]string{archHash, configHash})
}

// ScopedKeyer prefixes every key of an inner keyer, so several tenants
// can share one backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SourceKey(endpoint string) string {
	return k.prefix + k.inner.SourceKey(endpoint)
}

func (k *ScopedKeyer) SceneKey(archHash, configHash string) string {
	return k.prefix + k.inner.SceneKey(archHash, configHash)
}

package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The compile API uses this to keep per-tenant caches separate while
// sharing a single backend.
//
// Example usage:
//
//	// Tenant-specific keys
//	tenantKeyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
//
//	// Shared global keys
//	globalKeyer := NewDefaultKeyer()
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

// GraphKey generates a prefixed key for block graph caching.
func (k *ScopedKeyer) GraphKey(manifestHash string) string {
	return k.prefix + k.inner.GraphKey(manifestHash)
}

// CircuitKey generates a prefixed key for compiled circuit caching.
func (k *ScopedKeyer) CircuitKey(graphHash string, opts CircuitKeyOpts) string {
	return k.prefix + k.inner.CircuitKey(graphHash, opts)
}

// DetectorKey generates a prefixed key for detector database caching.
func (k *ScopedKeyer) DetectorKey(fingerprint string, radius int) string {
	return k.prefix + k.inner.DetectorKey(fingerprint, radius)
}

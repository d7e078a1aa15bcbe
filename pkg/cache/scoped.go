package cache

// ScopedKeyer wraps a Keyer with a prefix so that several producers can
// share one backend. The HTTP server scopes its keys with "api:" so that a
// Redis instance shared with CLI users never mixes the two.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
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

// SolveKey generates a prefixed solve key.
func (k *ScopedKeyer) SolveKey(netlistHash string, opts SolveKeyOpts) string {
	return k.prefix + k.inner.SolveKey(netlistHash, opts)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(netlistHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(netlistHash, opts)
}

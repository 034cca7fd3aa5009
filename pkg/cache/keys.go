package cache

// RenderKeyOpts are the options that affect a rendered artifact and therefore
// participate in its cache key.
type RenderKeyOpts struct {
	Format     string
	Scheme     string // content hash of the color scheme, empty for default
	TrackWidth float64
	LineWidth  int
}

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// AnnotationKey keys a normalized annotation result by the content hash
	// of the raw payload.
	AnnotationKey(payloadHash string) string
	// RenderKey keys a rendered artifact by the model hash and the options
	// that shaped the output.
	RenderKey(modelHash string, opts RenderKeyOpts) string
}

// DefaultKeyer generates unscoped cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer without scoping.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// AnnotationKey generates a key for annotation result caching.
func (k *DefaultKeyer) AnnotationKey(payloadHash string) string {
	return hashKey("annot", payloadHash)
}

// RenderKey generates a key for artifact caching.
func (k *DefaultKeyer) RenderKey(modelHash string, opts RenderKeyOpts) string {
	return hashKey("render", modelHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so multiple users or sessions can
// share one backend without key collisions.
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// AnnotationKey generates a prefixed annotation key.
func (k *ScopedKeyer) AnnotationKey(payloadHash string) string {
	return k.prefix + k.inner.AnnotationKey(payloadHash)
}

// RenderKey generates a prefixed artifact key.
func (k *ScopedKeyer) RenderKey(modelHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(modelHash, opts)
}

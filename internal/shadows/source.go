// Package shadows implements the per-source shadow cache: a wall index,
// derived shadow mesh and render target(s) for every light, vision or
// sound source in the scene, kept consistent incrementally as sources and
// walls change.
package shadows

// SourceKind tags what a source emits.
type SourceKind int

const (
	// KindLight is a point light with a finite radius.
	KindLight SourceKind = iota
	// KindVision is a vision source; it additionally gets a
	// scene-bounds line-of-sight render target.
	KindVision
	// KindSound is a sound emitter.
	KindSound
	// KindGlobalLight is scene-wide illumination with no finite bounds.
	// Global lights are never cached.
	KindGlobalLight
)

// String returns a human-readable name for the source kind.
func (k SourceKind) String() string {
	switch k {
	case KindLight:
		return "light"
	case KindVision:
		return "vision"
	case KindSound:
		return "sound"
	case KindGlobalLight:
		return "global-light"
	default:
		return "unknown"
	}
}

// Source is an externally owned emitter. The cache never mutates it; the
// host mutates the fields and reports what changed through the registry.
// ID is stable for the source's lifetime and keys its cache entry.
type Source struct {
	ID        string
	X, Y      float64
	Radius    float64
	Elevation float64
	Kind      SourceKind
}

// FieldSet is a bitmask describing which source fields a change touched.
type FieldSet int

const (
	// FieldPosition marks a change to X or Y.
	FieldPosition FieldSet = 1 << iota
	// FieldRadius marks a change to Radius.
	FieldRadius
	// FieldElevation marks a change to Elevation.
	FieldElevation
	// FieldOther marks changes the shadow cache does not react to.
	FieldOther
)

// Has reports whether the set contains the given field.
func (f FieldSet) Has(field FieldSet) bool {
	return f&field != 0
}

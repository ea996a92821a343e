package shadows

import (
	"errors"

	"chosenoffset.com/umbra/internal/render"
)

// State is the lifecycle state of a source's shadow cache.
type State int

const (
	// StateInitializing means the cache entry exists but is not yet
	// fully populated. Transient: callers never observe it across a
	// notification boundary.
	StateInitializing State = iota
	// StateReady means index, mesh and render target are consistent.
	StateReady
	// StateDestroyed is terminal; all owned resources are released.
	StateDestroyed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Mask is the geometry the lighting shader composites a shadow texture
// with: the texture plus its world anchor and world-units-per-texel
// scale.
type Mask struct {
	X, Y    float64
	Scale   float64
	Texture render.Image
}

// SourceCache bundles everything derived for one source: its wall index,
// shadow mesh and render target(s). Vision sources carry an additional
// scene-bounds line-of-sight target. Created by the registry on the
// first shader-initialization notification, destroyed with the source.
type SourceCache struct {
	source *Source
	state  State

	// sampling is false when target allocation failed; the source is
	// then lit without shadows.
	sampling bool

	index     *WallIndex
	mesh      *Mesh
	target    *RenderTarget
	losTarget *RenderTarget
}

// Source returns the externally owned source this cache belongs to.
func (c *SourceCache) Source() *Source {
	return c.source
}

// State returns the cache's lifecycle state.
func (c *SourceCache) State() State {
	return c.state
}

// SamplingActive reports whether the lighting shader should sample this
// cache's shadow texture.
func (c *SourceCache) SamplingActive() bool {
	return c.state == StateReady && c.sampling
}

// Index returns the cache's wall index.
func (c *SourceCache) Index() *WallIndex {
	return c.index
}

// Mesh returns the current shadow mesh, nil while the cache is in the
// EmptyOcclusion state.
func (c *SourceCache) Mesh() *Mesh {
	return c.mesh
}

// Texture returns the standard shadow texture, or nil when sampling is
// inactive.
func (c *SourceCache) Texture() render.Image {
	if !c.SamplingActive() {
		return nil
	}
	return c.target.Texture()
}

// LOSTexture returns the line-of-sight texture of a vision source, or nil.
func (c *SourceCache) LOSTexture() render.Image {
	if !c.SamplingActive() || c.losTarget == nil {
		return nil
	}
	return c.losTarget.Texture()
}

// MaskFor returns compositing geometry for the standard shadow texture,
// anchored at the source's current position and scale.
func (c *SourceCache) MaskFor() (Mask, bool) {
	if !c.SamplingActive() {
		return Mask{}, false
	}
	origin := c.target.Origin()
	res := c.target.Resolution()
	return Mask{
		X:       origin.X,
		Y:       origin.Y,
		Scale:   1 / res,
		Texture: c.target.Texture(),
	}, true
}

// rebuildMesh re-derives the mesh from the current index and source
// state. EmptyOcclusion is a defined state, not a failure: the mesh is
// cleared and targets render nothing. On any other failure the previous
// mesh stays valid.
func (c *SourceCache) rebuildMesh() error {
	mesh, err := BuildMesh(c.index, c.source)
	if err != nil {
		if errors.Is(err, ErrEmptyOcclusion) {
			c.mesh = nil
			return nil
		}
		return err
	}
	c.mesh = mesh
	return nil
}

// rasterize redraws every owned target from the current mesh.
func (c *SourceCache) rasterize() {
	if !c.sampling {
		return
	}
	c.target.Rasterize(c.mesh)
	if c.losTarget != nil {
		c.losTarget.Rasterize(c.mesh)
	}
}

// disableSampling releases the cache's render targets and marks the
// source as lit without shadows. The cache itself stays registered.
func (c *SourceCache) disableSampling() {
	c.sampling = false
	if c.target != nil {
		c.target.Destroy()
		c.target = nil
	}
	if c.losTarget != nil {
		c.losTarget.Destroy()
		c.losTarget = nil
	}
}

// destroy releases all owned resources. Safe to call repeatedly and on a
// cache that never finished initializing: unset fields are skipped.
func (c *SourceCache) destroy() {
	if c.state == StateDestroyed {
		return
	}
	c.state = StateDestroyed
	c.sampling = false
	c.mesh = nil
	c.index = nil
	if c.target != nil {
		c.target.Destroy()
		c.target = nil
	}
	if c.losTarget != nil {
		c.losTarget.Destroy()
		c.losTarget = nil
	}
}

package shadows

import (
	"log"

	"chosenoffset.com/umbra/internal/geometry"
	"chosenoffset.com/umbra/internal/render"
	"chosenoffset.com/umbra/internal/wall"
)

// Registry owns the shadow caches of all live sources and routes source
// and wall notifications to them with the minimum recomputation each
// change warrants. It is the only holder of cache state: sources are
// external and never carry cache fields themselves.
//
// All methods run synchronously on the notifying goroutine; a
// notification is fully processed before the next one is accepted.
type Registry struct {
	renderer render.Renderer
	walls    *wall.Store
	scene    geometry.Rect

	// budget is the process-wide maximum texel budget, read-only after
	// construction.
	budget int

	caches map[string]*SourceCache

	// order preserves registration order for deterministic wall-change
	// fan-out.
	order []string
}

// NewRegistry creates a registry over the given wall store and registers
// itself for wall change events.
func NewRegistry(renderer render.Renderer, walls *wall.Store, scene geometry.Rect, budget int) *Registry {
	g := &Registry{
		renderer: renderer,
		walls:    walls,
		scene:    scene,
		budget:   budget,
		caches:   make(map[string]*SourceCache),
	}
	walls.AddListener(g)
	return g
}

// InitializeShaders handles the host's shader-initialization notification
// for a source: the first signal that the source is render-capable. It
// builds the cache (wall scan, mesh, render targets, first rasterize) and
// leaves it ready. Global-light sources and sources that already have a
// cache are no-ops.
func (g *Registry) InitializeShaders(src *Source) {
	if src.Kind == KindGlobalLight {
		return
	}
	if _, exists := g.caches[src.ID]; exists {
		return
	}

	cache := &SourceCache{
		source: src,
		state:  StateInitializing,
		index:  NewWallIndex(src),
	}
	// Register before populating so teardown mid-initialization finds
	// the entry.
	g.caches[src.ID] = cache
	g.order = append(g.order, src.ID)

	cache.index.Populate(g.walls)
	if err := cache.rebuildMesh(); err != nil {
		log.Printf("Warning: Failed to build shadow mesh for source %s: %v", src.ID, err)
		cache.state = StateReady
		return
	}

	target, err := NewRenderTarget(g.renderer, RadiusBounds{}, src, g.budget)
	if err != nil {
		log.Printf("Warning: Failed to allocate shadow target for source %s: %v", src.ID, err)
		cache.state = StateReady
		return
	}
	cache.target = target

	if src.Kind == KindVision {
		losTarget, err := NewRenderTarget(g.renderer, SceneBounds{Rect: g.scene}, src, g.budget)
		if err != nil {
			log.Printf("Warning: Failed to allocate line-of-sight target for source %s: %v", src.ID, err)
			cache.disableSampling()
			cache.state = StateReady
			return
		}
		cache.losTarget = losTarget
	}

	cache.sampling = true
	cache.rasterize()
	cache.state = StateReady
}

// SourceChanged handles a source-state-change notification. The changed
// field set selects the minimal update path: reposition is an anchor
// transform, a radius change resizes the target and rebuilds only when it
// moved walls across the reach boundary, an elevation change re-evaluates
// wall relevance. Sources without a cache are ignored.
func (g *Registry) SourceChanged(src *Source, changed FieldSet) {
	cache, ok := g.caches[src.ID]
	if !ok || cache.state != StateReady {
		return
	}

	dirty := false
	rebuilt := false

	if changed.Has(FieldElevation) {
		// Projection factors depend on elevation, so the mesh is
		// rebuilt even when the relevant wall set is unchanged.
		cache.index.Refresh(g.walls, src)
		if err := cache.rebuildMesh(); err != nil {
			log.Printf("Warning: Failed to rebuild shadow mesh for source %s: %v", src.ID, err)
			return
		}
		rebuilt = true
		dirty = true
	}

	if changed.Has(FieldPosition) {
		setChanged := cache.index.Refresh(g.walls, src)
		switch {
		case rebuilt:
			// Already rebuilt at the current position.
		case setChanged:
			if err := cache.rebuildMesh(); err != nil {
				log.Printf("Warning: Failed to rebuild shadow mesh for source %s: %v", src.ID, err)
				return
			}
			rebuilt = true
		case cache.mesh != nil:
			cache.mesh.Reposition(src.X, src.Y)
		}
		if cache.sampling {
			// The radius-bounds target follows the source; its pixel
			// dimensions are unchanged so this only moves the origin.
			if err := cache.target.Resize(src); err != nil {
				g.dropTargets(cache, err)
				return
			}
		}
		dirty = true
	}

	if changed.Has(FieldRadius) {
		// Reach is radius-dependent: a grow can admit walls, a shrink
		// can evict them. Refresh is a no-op when an earlier branch
		// already re-evaluated the set at the current radius.
		if cache.index.Refresh(g.walls, src) && !rebuilt {
			if err := cache.rebuildMesh(); err != nil {
				log.Printf("Warning: Failed to rebuild shadow mesh for source %s: %v", src.ID, err)
				return
			}
			rebuilt = true
		}
		if cache.sampling {
			if err := cache.target.Resize(src); err != nil {
				g.dropTargets(cache, err)
				return
			}
		}
		dirty = true
	}

	if dirty {
		cache.rasterize()
	}
}

// SourceDestroyed handles a source-destroyed notification, releasing the
// cache and all owned render targets. Sources without a cache are
// ignored; destruction during initialization is safe.
func (g *Registry) SourceDestroyed(src *Source) {
	cache, ok := g.caches[src.ID]
	if !ok {
		return
	}

	cache.destroy()
	delete(g.caches, src.ID)
	for i, id := range g.order {
		if id == src.ID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// WallChanged implements wall.Listener. The change fans out to every
// ready cache in registration order; only caches whose index actually
// changed rebuild their mesh and re-rasterize. Restriction-only edits
// take the cheap relevance-flip path.
func (g *Registry) WallChanged(change wall.Change) {
	for _, id := range g.order {
		cache := g.caches[id]
		if cache.state != StateReady {
			continue
		}

		affected := false
		switch change.Kind {
		case wall.Created:
			affected = cache.index.Add(change.Wall)
		case wall.Removed:
			affected = cache.index.Remove(change.Wall.ID)
		case wall.GeometryChanged:
			affected = cache.index.Update(change.Wall, false) != DeltaNone
		case wall.RestrictionChanged:
			affected = cache.index.Update(change.Wall, true) != DeltaNone
		}
		if !affected {
			continue
		}

		if err := cache.rebuildMesh(); err != nil {
			// Per-source failures never cross source boundaries.
			log.Printf("Warning: Failed to rebuild shadow mesh for source %s: %v", id, err)
			continue
		}
		cache.rasterize()
	}
}

// Cache returns the shadow cache for a source ID.
func (g *Registry) Cache(id string) (*SourceCache, bool) {
	cache, ok := g.caches[id]
	return cache, ok
}

// Len returns the number of live caches.
func (g *Registry) Len() int {
	return len(g.caches)
}

// Caches returns the live caches in registration order.
func (g *Registry) Caches() []*SourceCache {
	caches := make([]*SourceCache, 0, len(g.order))
	for _, id := range g.order {
		caches = append(caches, g.caches[id])
	}
	return caches
}

// dropTargets handles a target resize failure: shadow sampling is
// disabled for the affected source only, other sources are untouched.
func (g *Registry) dropTargets(cache *SourceCache, err error) {
	log.Printf("Warning: Failed to resize shadow target for source %s: %v", cache.source.ID, err)
	cache.disableSampling()
}

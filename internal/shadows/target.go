package shadows

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"chosenoffset.com/umbra/internal/geometry"
	"chosenoffset.com/umbra/internal/render"
)

// ErrResourceExhausted is returned when a render target's pixel dimensions
// exceed what the renderer can allocate. The failure is fatal only to the
// owning source's shadow cache; the source stays lit without shadows.
var ErrResourceExhausted = errors.New("render target exceeds renderer limits")

// BoundsStrategy determines the world-space rectangle a render target
// covers. The standard target follows the source radius; the line-of-sight
// variant covers the whole scene.
type BoundsStrategy interface {
	// Bounds returns the covered rectangle's origin (top-left, world
	// coordinates) and extent for the given source state.
	Bounds(src *Source) (origin geometry.Point, width, height float64)
}

// RadiusBounds covers the source's light disc: a 2r x 2r square centered
// on the source.
type RadiusBounds struct{}

// Bounds implements BoundsStrategy.
func (RadiusBounds) Bounds(src *Source) (geometry.Point, float64, float64) {
	origin := geometry.Point{X: src.X - src.Radius, Y: src.Y - src.Radius}
	return origin, 2 * src.Radius, 2 * src.Radius
}

// SceneBounds covers a fixed scene rectangle regardless of source state.
type SceneBounds struct {
	Rect geometry.Rect
}

// Bounds implements BoundsStrategy.
func (b SceneBounds) Bounds(*Source) (geometry.Point, float64, float64) {
	origin := geometry.Point{X: b.Rect.MinX, Y: b.Rect.MinY}
	return origin, b.Rect.Width(), b.Rect.Height()
}

// Resolution returns the texels-per-world-unit scale for a target of the
// given world extent under a maximum texel budget: the largest value <= 1
// such that max(width, height) * resolution <= budget. The same scale
// applies to both axes, preserving aspect.
func Resolution(budget int, width, height float64) float64 {
	m := math.Max(width, height)
	if m <= 0 {
		return 1
	}
	res := float64(budget) / m
	if res > 1 {
		return 1
	}
	return res
}

// RenderTarget is an off-screen buffer holding the rasterized shadow
// pattern of one source. Sizing follows the bounds strategy and the
// process-wide texel budget; the buffer is re-allocated only when the
// pixel dimensions actually change.
type RenderTarget struct {
	renderer render.Renderer
	bounds   BoundsStrategy
	budget   int

	origin     geometry.Point
	width      float64
	height     float64
	resolution float64

	img       render.Image
	white     render.Image
	destroyed bool
}

// NewRenderTarget allocates a render target sized for the source's
// current state.
func NewRenderTarget(renderer render.Renderer, bounds BoundsStrategy, src *Source, budget int) (*RenderTarget, error) {
	t := &RenderTarget{
		renderer: renderer,
		bounds:   bounds,
		budget:   budget,
	}

	t.origin, t.width, t.height = bounds.Bounds(src)
	t.resolution = Resolution(budget, t.width, t.height)

	pw, ph := t.pixelSize()
	if err := t.checkAllocatable(pw, ph); err != nil {
		return nil, err
	}

	t.img = renderer.NewImage(pw, ph)
	t.white = renderer.NewImage(1, 1)
	t.white.Fill(color.White)
	return t, nil
}

// pixelSize derives the buffer dimensions from the world extent and
// resolution, at least 1x1.
func (t *RenderTarget) pixelSize() (int, int) {
	pw := int(math.Ceil(t.width * t.resolution))
	ph := int(math.Ceil(t.height * t.resolution))
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}
	return pw, ph
}

func (t *RenderTarget) checkAllocatable(pw, ph int) error {
	limit := t.renderer.MaxImageSize()
	if pw > limit || ph > limit {
		return fmt.Errorf("target %dx%d, renderer limit %d: %w", pw, ph, limit, ErrResourceExhausted)
	}
	return nil
}

// Resize re-derives the covered rectangle and resolution from the
// source's current state. The pixel buffer is re-allocated only when its
// dimensions changed; the caller re-rasterizes afterwards in either case.
func (t *RenderTarget) Resize(src *Source) error {
	oldW, oldH := t.pixelSize()

	t.origin, t.width, t.height = t.bounds.Bounds(src)
	t.resolution = Resolution(t.budget, t.width, t.height)

	pw, ph := t.pixelSize()
	if pw == oldW && ph == oldH {
		return nil
	}

	if err := t.checkAllocatable(pw, ph); err != nil {
		return err
	}

	t.img.Dispose()
	t.img = t.renderer.NewImage(pw, ph)
	return nil
}

// Rasterize draws the mesh into the buffer, replacing its previous
// contents. A nil mesh (the EmptyOcclusion state) clears the buffer.
// Idempotent: rasterizing the same mesh twice yields identical pixels.
func (t *RenderTarget) Rasterize(mesh *Mesh) {
	if t.destroyed {
		return
	}

	t.img.Clear()
	if mesh == nil || len(mesh.Vertices) == 0 {
		return
	}

	// Map source-local world units to texels.
	offX := mesh.AnchorX - t.origin.X
	offY := mesh.AnchorY - t.origin.Y

	verts := make([]render.Vertex, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		verts[i] = v
		verts[i].DstX = float32((float64(v.DstX) + offX) * t.resolution)
		verts[i].DstY = float32((float64(v.DstY) + offY) * t.resolution)
	}

	t.img.DrawTriangles(verts, mesh.Indices, t.white, nil)
}

// Texture returns the buffer for sampling. Nil after Destroy.
func (t *RenderTarget) Texture() render.Image {
	if t.destroyed {
		return nil
	}
	return t.img
}

// Origin returns the world position of the buffer's top-left corner.
func (t *RenderTarget) Origin() geometry.Point {
	return t.origin
}

// WorldSize returns the covered rectangle's extent in world units.
func (t *RenderTarget) WorldSize() (width, height float64) {
	return t.width, t.height
}

// Resolution returns the current texels-per-world-unit scale.
func (t *RenderTarget) Resolution() float64 {
	return t.resolution
}

// PixelSize returns the buffer dimensions in texels.
func (t *RenderTarget) PixelSize() (width, height int) {
	return t.pixelSize()
}

// Destroy releases the underlying images. Safe to call more than once.
func (t *RenderTarget) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.img.Dispose()
	t.img = nil
	t.white.Dispose()
	t.white = nil
}

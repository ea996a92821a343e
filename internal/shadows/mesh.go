package shadows

import (
	"errors"

	"chosenoffset.com/umbra/internal/geometry"
	"chosenoffset.com/umbra/internal/render"
	"chosenoffset.com/umbra/internal/wall"
)

// ErrEmptyOcclusion is returned by BuildMesh when the index holds no
// occluding walls. It marks a defined "no shadow" state, not a failure:
// callers render nothing for the source instead of treating it as an
// error.
var ErrEmptyOcclusion = errors.New("no occluding walls")

// maxProjection caps the radial projection factor. A wall whose top
// approaches the source elevation would otherwise project to infinity;
// the cap keeps vertices finite and far outside any render target, where
// they are clipped.
const maxProjection = 64.0

// Mesh is the renderable shadow geometry of one source: one quad per
// occluding wall, vertices in source-local world units. Moving the source
// only moves the anchor; the vertices stay valid until the wall set or
// the source elevation changes.
type Mesh struct {
	// AnchorX, AnchorY is the source's world position the mesh is
	// rendered at.
	AnchorX float64
	AnchorY float64

	// Elevation the mesh was built for. Projection factors depend on it.
	Elevation float64

	// Vertices hold source-local coordinates in DstX/DstY. Four
	// vertices and six indices per wall, walls in ascending ID order.
	Vertices []render.Vertex
	Indices  []uint16

	// WallIDs lists the contributing walls, one per quad, ascending.
	WallIDs []int64

	// factors holds the per-quad projection factor, kept so Reposition
	// can re-project far edges without consulting the index.
	factors []float64
}

// BuildMesh derives the shadow mesh for a source from its wall index.
// Deterministic: the same index contents and source elevation produce
// identical topology and vertex data. The result is independent of the
// source radius; the radius enters only at rasterization time.
func BuildMesh(ix *WallIndex, src *Source) (*Mesh, error) {
	walls := ix.Walls()
	if len(walls) == 0 {
		return nil, ErrEmptyOcclusion
	}

	mesh := &Mesh{
		AnchorX:   src.X,
		AnchorY:   src.Y,
		Elevation: src.Elevation,
		Vertices:  make([]render.Vertex, 0, len(walls)*4),
		Indices:   make([]uint16, 0, len(walls)*6),
		WallIDs:   make([]int64, 0, len(walls)),
		factors:   make([]float64, 0, len(walls)),
	}

	for _, rec := range walls {
		appendQuad(mesh, rec, src)
	}

	return mesh, nil
}

// appendQuad adds one shadow quad for a wall: the near edge is the wall
// itself in source-local coordinates, the far edge its radial projection
// away from the source.
func appendQuad(mesh *Mesh, rec *wall.Record, src *Source) {
	nearA := geometry.Point{X: rec.A.X - src.X, Y: rec.A.Y - src.Y}
	nearB := geometry.Point{X: rec.B.X - src.X, Y: rec.B.Y - src.Y}

	f := projectionFactor(src.Elevation, rec)
	farA := geometry.Point{X: nearA.X * f, Y: nearA.Y * f}
	farB := geometry.Point{X: nearB.X * f, Y: nearB.Y * f}

	base := uint16(len(mesh.Vertices))
	for _, p := range [4]geometry.Point{nearA, nearB, farB, farA} {
		mesh.Vertices = append(mesh.Vertices, render.Vertex{
			DstX:   float32(p.X),
			DstY:   float32(p.Y),
			ColorR: 1,
			ColorG: 1,
			ColorB: 1,
			ColorA: 1,
		})
	}
	mesh.Indices = append(mesh.Indices,
		base, base+1, base+2,
		base, base+2, base+3,
	)
	mesh.WallIDs = append(mesh.WallIDs, rec.ID)
	mesh.factors = append(mesh.factors, f)
}

// projectionFactor returns the radial scale that maps a wall endpoint to
// the tip of its shadow. Similar triangles against the wall base plane:
// a source h above the base shining over a wall of height t stretches the
// endpoint distance by h/(h-t). The index guarantees h > t; walls of zero
// height yield factor 1 and a degenerate (zero-area) quad.
func projectionFactor(elevation float64, rec *wall.Record) float64 {
	h := elevation - rec.Bottom
	t := rec.Top - rec.Bottom

	if h <= t {
		// Not reachable through the index filter; clamp rather than
		// emit a non-finite vertex.
		return maxProjection
	}
	f := h / (h - t)
	if f > maxProjection {
		return maxProjection
	}
	return f
}

// Reposition moves the mesh to a new source position without a rebuild.
// Near edges are world-fixed walls, so in source-local coordinates they
// translate by the anchor delta; far edges re-project from the stored
// per-quad factors. Valid only while the occluding wall set and the
// source elevation are unchanged; the result is identical to a full
// rebuild at the new position, with no index walk and no allocation.
func (m *Mesh) Reposition(x, y float64) {
	dx := float32(m.AnchorX - x)
	dy := float32(m.AnchorY - y)

	for q := range m.WallIDs {
		f := float32(m.factors[q])
		base := q * 4

		// Vertex order per quad: nearA, nearB, farB, farA.
		nearA := &m.Vertices[base]
		nearB := &m.Vertices[base+1]
		farB := &m.Vertices[base+2]
		farA := &m.Vertices[base+3]

		nearA.DstX += dx
		nearA.DstY += dy
		nearB.DstX += dx
		nearB.DstY += dy

		farA.DstX = nearA.DstX * f
		farA.DstY = nearA.DstY * f
		farB.DstX = nearB.DstX * f
		farB.DstY = nearB.DstY * f
	}

	m.AnchorX = x
	m.AnchorY = y
}

// QuadCount returns the number of wall quads in the mesh.
func (m *Mesh) QuadCount() int {
	return len(m.WallIDs)
}

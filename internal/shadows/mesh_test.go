package shadows

import (
	"errors"
	"math"
	"testing"

	"chosenoffset.com/umbra/internal/geometry"
	"chosenoffset.com/umbra/internal/wall"
)

func TestBuildMeshEmptyOcclusion(t *testing.T) {
	src := &Source{ID: "l", X: 0, Y: 0, Radius: 100, Elevation: 20, Kind: KindLight}
	ix := NewWallIndex(src)

	mesh, err := BuildMesh(ix, src)
	if !errors.Is(err, ErrEmptyOcclusion) {
		t.Fatalf("Expected ErrEmptyOcclusion, got %v", err)
	}
	if mesh != nil {
		t.Error("Expected nil mesh for empty index")
	}
}

func TestBuildMeshTopology(t *testing.T) {
	store := wall.NewStore()
	for i := 0; i < 3; i++ {
		y := float64(i * 20)
		_, err := store.Create(
			geometry.Point{X: 0, Y: y}, geometry.Point{X: 100, Y: y},
			0, 10, wall.BlockFlags{Light: true}, wall.DoorNone,
		)
		if err != nil {
			t.Fatalf("Failed to create wall: %v", err)
		}
	}

	src := &Source{ID: "l", X: 50, Y: 50, Radius: 200, Elevation: 20, Kind: KindLight}
	ix := NewWallIndex(src)
	ix.Populate(store)

	mesh, err := BuildMesh(ix, src)
	if err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}

	if mesh.QuadCount() != 3 {
		t.Errorf("Expected 3 quads, got %d", mesh.QuadCount())
	}
	if len(mesh.Vertices) != 12 {
		t.Errorf("Expected 12 vertices, got %d", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 18 {
		t.Errorf("Expected 18 indices, got %d", len(mesh.Indices))
	}
	for i := 1; i < len(mesh.WallIDs); i++ {
		if mesh.WallIDs[i-1] >= mesh.WallIDs[i] {
			t.Error("Expected quads in ascending wall ID order")
		}
	}
}

func TestBuildMeshDeterministic(t *testing.T) {
	store := wall.NewStore()
	for i := 0; i < 4; i++ {
		x := float64(i * 30)
		_, err := store.Create(
			geometry.Point{X: x, Y: 0}, geometry.Point{X: x + 20, Y: 10},
			0, float64(2+i), wall.BlockFlags{Light: true}, wall.DoorNone,
		)
		if err != nil {
			t.Fatalf("Failed to create wall: %v", err)
		}
	}

	src := &Source{ID: "l", X: 40, Y: 60, Radius: 300, Elevation: 25, Kind: KindLight}
	ix := NewWallIndex(src)
	ix.Populate(store)

	a, err := BuildMesh(ix, src)
	if err != nil {
		t.Fatalf("First build failed: %v", err)
	}
	b, err := BuildMesh(ix, src)
	if err != nil {
		t.Fatalf("Second build failed: %v", err)
	}

	if len(a.Vertices) != len(b.Vertices) || len(a.Indices) != len(b.Indices) {
		t.Fatal("Rebuild changed topology")
	}
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] {
			t.Fatalf("Vertex %d differs between identical builds", i)
		}
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			t.Fatalf("Index %d differs between identical builds", i)
		}
	}
}

func TestProjectionGeometry(t *testing.T) {
	store := wall.NewStore()
	// Wall of height 10, source at elevation 20: the shadow stretches
	// endpoints by 20/(20-10) = 2.
	_, err := store.Create(
		geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0},
		0, 10, wall.BlockFlags{Light: true}, wall.DoorNone,
	)
	if err != nil {
		t.Fatalf("Failed to create wall: %v", err)
	}

	src := &Source{ID: "l", X: 50, Y: 50, Radius: 200, Elevation: 20, Kind: KindLight}
	ix := NewWallIndex(src)
	ix.Populate(store)

	mesh, err := BuildMesh(ix, src)
	if err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}

	nearA := mesh.Vertices[0]
	farA := mesh.Vertices[3]

	wantX := nearA.DstX * 2
	wantY := nearA.DstY * 2
	if math.Abs(float64(farA.DstX-wantX)) > 1e-3 || math.Abs(float64(farA.DstY-wantY)) > 1e-3 {
		t.Errorf("Far vertex (%v, %v) is not the 2x projection of near vertex (%v, %v)",
			farA.DstX, farA.DstY, nearA.DstX, nearA.DstY)
	}
}

func TestProjectionFactorClamped(t *testing.T) {
	// Wall top a hair below the source elevation: the raw factor
	// explodes; it must stay clamped and finite.
	rec := &wall.Record{Bottom: 0, Top: 9.9999}
	f := projectionFactor(10, rec)
	if f > maxProjection {
		t.Errorf("Projection factor %v above clamp %v", f, maxProjection)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		t.Errorf("Projection factor not finite: %v", f)
	}
}

func TestRepositionMatchesRebuild(t *testing.T) {
	store := wall.NewStore()
	_, err := store.Create(
		geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0},
		0, 10, wall.BlockFlags{Light: true}, wall.DoorNone,
	)
	if err != nil {
		t.Fatalf("Failed to create wall: %v", err)
	}
	_, err = store.Create(
		geometry.Point{X: 120, Y: 40}, geometry.Point{X: 120, Y: 140},
		0, 5, wall.BlockFlags{Light: true}, wall.DoorNone,
	)
	if err != nil {
		t.Fatalf("Failed to create wall: %v", err)
	}

	src := &Source{ID: "l", X: 50, Y: 50, Radius: 500, Elevation: 20, Kind: KindLight}
	ix := NewWallIndex(src)
	ix.Populate(store)

	mesh, err := BuildMesh(ix, src)
	if err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}

	// Move the source; the wall set is unchanged at the new position.
	moved := *src
	moved.X = 70
	moved.Y = 30

	mesh.Reposition(moved.X, moved.Y)

	ix2 := NewWallIndex(&moved)
	ix2.Populate(store)
	rebuilt, err := BuildMesh(ix2, &moved)
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	if mesh.AnchorX != rebuilt.AnchorX || mesh.AnchorY != rebuilt.AnchorY {
		t.Error("Anchors differ after reposition")
	}
	if len(mesh.Vertices) != len(rebuilt.Vertices) {
		t.Fatal("Topology differs after reposition")
	}
	for i := range mesh.Vertices {
		dx := math.Abs(float64(mesh.Vertices[i].DstX - rebuilt.Vertices[i].DstX))
		dy := math.Abs(float64(mesh.Vertices[i].DstY - rebuilt.Vertices[i].DstY))
		if dx > 1e-3 || dy > 1e-3 {
			t.Fatalf("Vertex %d differs: reposition (%v, %v) vs rebuild (%v, %v)",
				i, mesh.Vertices[i].DstX, mesh.Vertices[i].DstY,
				rebuilt.Vertices[i].DstX, rebuilt.Vertices[i].DstY)
		}
	}
}

func TestDegenerateWallYieldsZeroAreaQuad(t *testing.T) {
	store := wall.NewStore()
	// Zero-height wall: conservatively indexed, degenerate shadow.
	_, err := store.Create(
		geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0},
		5, 5, wall.BlockFlags{Light: true}, wall.DoorNone,
	)
	if err != nil {
		t.Fatalf("Failed to create wall: %v", err)
	}

	src := &Source{ID: "l", X: 50, Y: 50, Radius: 200, Elevation: 20, Kind: KindLight}
	ix := NewWallIndex(src)
	ix.Populate(store)

	mesh, err := BuildMesh(ix, src)
	if err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}

	// Factor 1: far edge coincides with near edge.
	for q := 0; q < mesh.QuadCount(); q++ {
		base := q * 4
		if mesh.Vertices[base] != mesh.Vertices[base+3] {
			t.Error("Expected far vertex to coincide with near vertex for zero-height wall")
		}
	}
}

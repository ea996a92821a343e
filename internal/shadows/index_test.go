package shadows

import (
	"math"
	"testing"

	"chosenoffset.com/umbra/internal/geometry"
	"chosenoffset.com/umbra/internal/wall"
)

func testWallStore(t *testing.T) (*wall.Store, int64) {
	t.Helper()
	store := wall.NewStore()
	id, err := store.Create(
		geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0},
		0, 10,
		wall.BlockFlags{Light: true, Sight: true}, wall.DoorNone,
	)
	if err != nil {
		t.Fatalf("Failed to create wall: %v", err)
	}
	return store, id
}

func TestIndexAcceptsWallBelowSource(t *testing.T) {
	store, id := testWallStore(t)
	src := &Source{ID: "l1", X: 50, Y: 50, Radius: 200, Elevation: 20, Kind: KindLight}

	ix := NewWallIndex(src)
	ix.Populate(store)

	if !ix.Contains(id) {
		t.Error("Expected wall below source elevation to be indexed")
	}
	if ix.Len() != 1 {
		t.Errorf("Expected 1 indexed wall, got %d", ix.Len())
	}
}

func TestIndexExcludesWallAboveSource(t *testing.T) {
	store, id := testWallStore(t)
	// Source below the wall top: the wall blocks fully and is the
	// visibility system's concern, not the shadow projector's.
	src := &Source{ID: "l2", X: 50, Y: 50, Radius: 200, Elevation: 5, Kind: KindLight}

	ix := NewWallIndex(src)
	ix.Populate(store)

	if ix.Contains(id) {
		t.Error("Expected wall above source elevation to be excluded")
	}
	if ix.Len() != 0 {
		t.Errorf("Expected empty index, got %d walls", ix.Len())
	}
}

func TestIndexExcludesUnboundedWall(t *testing.T) {
	store := wall.NewStore()
	id, err := store.Create(
		geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0},
		0, math.Inf(1),
		wall.BlockFlags{Light: true}, wall.DoorNone,
	)
	if err != nil {
		t.Fatalf("Failed to create wall: %v", err)
	}

	src := &Source{ID: "l", X: 50, Y: 50, Radius: 200, Elevation: 1000, Kind: KindLight}
	ix := NewWallIndex(src)
	ix.Populate(store)

	if ix.Contains(id) {
		t.Error("Expected wall with infinite top to be excluded at any elevation")
	}
}

func TestIndexCapabilityFilter(t *testing.T) {
	store := wall.NewStore()
	// Blocks sight but not light.
	id, err := store.Create(
		geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0},
		0, 10,
		wall.BlockFlags{Sight: true}, wall.DoorNone,
	)
	if err != nil {
		t.Fatalf("Failed to create wall: %v", err)
	}

	light := &Source{ID: "l", X: 50, Y: 50, Radius: 200, Elevation: 20, Kind: KindLight}
	vision := &Source{ID: "v", X: 50, Y: 50, Radius: 200, Elevation: 20, Kind: KindVision}

	lightIx := NewWallIndex(light)
	lightIx.Populate(store)
	if lightIx.Contains(id) {
		t.Error("Light source indexed a wall that only blocks sight")
	}

	visionIx := NewWallIndex(vision)
	visionIx.Populate(store)
	if !visionIx.Contains(id) {
		t.Error("Vision source did not index a sight-blocking wall")
	}
}

func TestIndexOpenDoorExcluded(t *testing.T) {
	store := wall.NewStore()
	id, err := store.Create(
		geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0},
		0, 10,
		wall.BlockFlags{Light: true}, wall.DoorOpen,
	)
	if err != nil {
		t.Fatalf("Failed to create door: %v", err)
	}

	src := &Source{ID: "l", X: 50, Y: 50, Radius: 200, Elevation: 20, Kind: KindLight}
	ix := NewWallIndex(src)
	ix.Populate(store)

	if ix.Contains(id) {
		t.Error("Open door should not be indexed")
	}

	// Closing the door is a restriction-only change that flips
	// relevance, so it must insert.
	if err := store.UpdateRestriction(id, wall.BlockFlags{Light: true}, wall.DoorClosed); err != nil {
		t.Fatalf("Failed to close door: %v", err)
	}
	rec, _ := store.Get(id)
	if delta := ix.Update(rec, true); delta != DeltaInserted {
		t.Errorf("Expected DeltaInserted after closing door, got %v", delta)
	}
}

func TestIndexOutOfReachExcluded(t *testing.T) {
	store, id := testWallStore(t)
	src := &Source{ID: "l", X: 50, Y: 500, Radius: 100, Elevation: 20, Kind: KindLight}

	ix := NewWallIndex(src)
	ix.Populate(store)

	if ix.Contains(id) {
		t.Error("Wall beyond the source radius should not be indexed")
	}
}

func TestIndexRestrictionOnlyNoChange(t *testing.T) {
	store, id := testWallStore(t)
	src := &Source{ID: "l", X: 50, Y: 50, Radius: 200, Elevation: 20, Kind: KindLight}

	ix := NewWallIndex(src)
	ix.Populate(store)

	// Flip the sound flag; the wall stays relevant for light, nothing
	// the mesh depends on changed.
	if err := store.UpdateRestriction(id, wall.BlockFlags{Light: true, Sight: true, Sound: true}, wall.DoorNone); err != nil {
		t.Fatalf("Failed to update restriction: %v", err)
	}
	rec, _ := store.Get(id)
	if delta := ix.Update(rec, true); delta != DeltaNone {
		t.Errorf("Expected DeltaNone for a restriction edit that keeps relevance, got %v", delta)
	}
}

func TestIndexGeometryUpdateDeltas(t *testing.T) {
	store, id := testWallStore(t)
	src := &Source{ID: "l", X: 50, Y: 50, Radius: 200, Elevation: 20, Kind: KindLight}

	ix := NewWallIndex(src)
	ix.Populate(store)

	// Geometry edit keeping relevance.
	if err := store.UpdateGeometry(id, geometry.Point{X: 10, Y: 0}, geometry.Point{X: 90, Y: 0}, 0, 10); err != nil {
		t.Fatalf("Failed to update geometry: %v", err)
	}
	rec, _ := store.Get(id)
	if delta := ix.Update(rec, false); delta != DeltaUpdated {
		t.Errorf("Expected DeltaUpdated, got %v", delta)
	}

	// Raise the wall above the source: evicted.
	if err := store.UpdateGeometry(id, rec.A, rec.B, 0, 30); err != nil {
		t.Fatalf("Failed to raise wall: %v", err)
	}
	if delta := ix.Update(rec, false); delta != DeltaEvicted {
		t.Errorf("Expected DeltaEvicted, got %v", delta)
	}
	if ix.Contains(id) {
		t.Error("Evicted wall still in index")
	}

	// Lower it back: inserted.
	if err := store.UpdateGeometry(id, rec.A, rec.B, 0, 10); err != nil {
		t.Fatalf("Failed to lower wall: %v", err)
	}
	if delta := ix.Update(rec, false); delta != DeltaInserted {
		t.Errorf("Expected DeltaInserted, got %v", delta)
	}
}

func TestIndexRemove(t *testing.T) {
	store, id := testWallStore(t)
	src := &Source{ID: "l", X: 50, Y: 50, Radius: 200, Elevation: 20, Kind: KindLight}

	ix := NewWallIndex(src)
	ix.Populate(store)

	if !ix.Remove(id) {
		t.Error("Expected Remove of an indexed wall to report a change")
	}
	if ix.Remove(id) {
		t.Error("Expected Remove of an absent wall to be a no-op")
	}
}

func TestIndexRefreshOnElevationChange(t *testing.T) {
	store, id := testWallStore(t)
	src := &Source{ID: "l", X: 50, Y: 50, Radius: 200, Elevation: 20, Kind: KindLight}

	ix := NewWallIndex(src)
	ix.Populate(store)

	// Drop below the wall top: the wall leaves the relevant set.
	src.Elevation = 5
	if !ix.Refresh(store, src) {
		t.Error("Expected Refresh to report a membership change")
	}
	if ix.Contains(id) {
		t.Error("Wall should have been evicted after elevation drop")
	}

	// Refresh again without any change: stable.
	if ix.Refresh(store, src) {
		t.Error("Expected second Refresh to report no change")
	}
}

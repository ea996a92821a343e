package wall

import (
	"testing"
)

// boolGrid is a test grid backed by a 2D slice.
type boolGrid struct {
	tiles [][]bool
}

func (g boolGrid) Width() int  { return len(g.tiles[0]) }
func (g boolGrid) Height() int { return len(g.tiles) }
func (g boolGrid) Blocking(x, y int) bool {
	return g.tiles[y][x]
}

func TestImportGridSingleTile(t *testing.T) {
	store := NewStore()
	grid := boolGrid{tiles: [][]bool{
		{false, false, false},
		{false, true, false},
		{false, false, false},
	}}

	ids, err := store.ImportGrid(grid, 32, 0, 10, BlockFlags{Light: true, Sight: true})
	if err != nil {
		t.Fatalf("ImportGrid failed: %v", err)
	}

	// An isolated tile exposes all four edges.
	if len(ids) != 4 {
		t.Fatalf("Expected 4 walls for an isolated tile, got %d", len(ids))
	}

	for _, id := range ids {
		rec, ok := store.Get(id)
		if !ok {
			t.Fatalf("Wall %d not in store", id)
		}
		if rec.Bottom != 0 || rec.Top != 10 {
			t.Errorf("Wall %d has elevation [%v, %v], expected [0, 10]", id, rec.Bottom, rec.Top)
		}
		if !rec.Blocks.Light || !rec.Blocks.Sight || rec.Blocks.Sound {
			t.Errorf("Wall %d has wrong blocking flags", id)
		}
	}
}

func TestImportGridSharedEdgesSuppressed(t *testing.T) {
	store := NewStore()
	// Two horizontally adjacent blocking tiles: the shared edge is
	// interior and produces no wall. 4 + 4 - 2 = 6 edges.
	grid := boolGrid{tiles: [][]bool{
		{true, true},
	}}

	ids, err := store.ImportGrid(grid, 32, 0, 10, BlockFlags{Light: true})
	if err != nil {
		t.Fatalf("ImportGrid failed: %v", err)
	}
	if len(ids) != 6 {
		t.Errorf("Expected 6 walls for two adjacent tiles, got %d", len(ids))
	}
}

func TestImportGridMapBoundaryCounts(t *testing.T) {
	store := NewStore()
	// A single tile filling the whole map still exposes all four edges.
	grid := boolGrid{tiles: [][]bool{{true}}}

	ids, err := store.ImportGrid(grid, 16, 0, 10, BlockFlags{Light: true})
	if err != nil {
		t.Fatalf("ImportGrid failed: %v", err)
	}
	if len(ids) != 4 {
		t.Errorf("Expected 4 walls at the map boundary, got %d", len(ids))
	}
}

func TestImportGridEmpty(t *testing.T) {
	store := NewStore()
	grid := boolGrid{tiles: [][]bool{
		{false, false},
		{false, false},
	}}

	ids, err := store.ImportGrid(grid, 32, 0, 10, BlockFlags{Light: true})
	if err != nil {
		t.Fatalf("ImportGrid failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected no walls from an empty grid, got %d", len(ids))
	}
	if store.Len() != 0 {
		t.Errorf("Expected empty store, got %d walls", store.Len())
	}
}

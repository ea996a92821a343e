package wall

import "chosenoffset.com/umbra/internal/geometry"

// Grid is a tile map that can seed the wall store. Implemented by the
// scene config's tile layer.
type Grid interface {
	Width() int
	Height() int
	// Blocking reports whether the tile at (x, y) occludes.
	Blocking(x, y int) bool
}

// ImportGrid generates wall records from the exposed edges of blocking
// tiles. Each edge that borders a non-blocking tile (or the map boundary)
// becomes one wall with the given elevation interval and blocking flags.
// Returns the IDs of the created walls.
func (s *Store) ImportGrid(grid Grid, tileSize, bottom, top float64, blocks BlockFlags) ([]int64, error) {
	var ids []int64

	width := grid.Width()
	height := grid.Height()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !grid.Blocking(x, y) {
				continue
			}

			tileX := float64(x) * tileSize
			tileY := float64(y) * tileSize

			var edges []geometry.Segment

			// Top edge
			if y == 0 || !grid.Blocking(x, y-1) {
				edges = append(edges, geometry.Segment{
					A: geometry.Point{X: tileX, Y: tileY},
					B: geometry.Point{X: tileX + tileSize, Y: tileY},
				})
			}
			// Right edge
			if x == width-1 || !grid.Blocking(x+1, y) {
				edges = append(edges, geometry.Segment{
					A: geometry.Point{X: tileX + tileSize, Y: tileY},
					B: geometry.Point{X: tileX + tileSize, Y: tileY + tileSize},
				})
			}
			// Bottom edge
			if y == height-1 || !grid.Blocking(x, y+1) {
				edges = append(edges, geometry.Segment{
					A: geometry.Point{X: tileX + tileSize, Y: tileY + tileSize},
					B: geometry.Point{X: tileX, Y: tileY + tileSize},
				})
			}
			// Left edge
			if x == 0 || !grid.Blocking(x-1, y) {
				edges = append(edges, geometry.Segment{
					A: geometry.Point{X: tileX, Y: tileY + tileSize},
					B: geometry.Point{X: tileX, Y: tileY},
				})
			}

			for _, edge := range edges {
				id, err := s.Create(edge.A, edge.B, bottom, top, blocks, DoorNone)
				if err != nil {
					return ids, err
				}
				ids = append(ids, id)
			}
		}
	}

	return ids, nil
}

package shadows

import (
	"sort"

	"chosenoffset.com/umbra/internal/geometry"
	"chosenoffset.com/umbra/internal/wall"
)

// Delta describes how an index mutation affected the relevant wall set.
type Delta int

const (
	// DeltaNone means the indexed set and its geometry are unchanged.
	DeltaNone Delta = iota
	// DeltaInserted means the wall became relevant and was added.
	DeltaInserted
	// DeltaUpdated means an indexed wall's geometry changed in place.
	DeltaUpdated
	// DeltaEvicted means the wall stopped being relevant and was removed.
	DeltaEvicted
)

// WallIndex holds the walls that can occlude one source. It is owned by
// exactly one SourceCache and filtered by the source's capability,
// elevation and reach. The index may conservatively keep walls that only
// contribute a degenerate shadow; it never holds a wall that cannot
// geometrically affect the source.
type WallIndex struct {
	src   Source // snapshot of the filter-relevant source fields
	walls map[int64]*wall.Record
}

// NewWallIndex creates an empty index filtered for the given source.
func NewWallIndex(src *Source) *WallIndex {
	return &WallIndex{
		src:   *src,
		walls: make(map[int64]*wall.Record),
	}
}

// relevant reports whether a wall can occlude the indexed source.
//
// A wall casts a finite shadow only when the source sits strictly above
// its top: the source then sees over the wall and the wall's silhouette
// projects away from it. Walls reaching to or above the source elevation
// (including Top = +Inf) block fully and belong to the visibility system,
// not this projector.
func (ix *WallIndex) relevant(rec *wall.Record) bool {
	var blocks bool
	switch ix.src.Kind {
	case KindLight:
		blocks = rec.BlocksLight()
	case KindVision:
		blocks = rec.BlocksSight()
	case KindSound:
		blocks = rec.BlocksSound()
	default:
		return false
	}
	if !blocks {
		return false
	}

	if ix.src.Elevation <= rec.Top {
		return false
	}

	origin := geometry.Point{X: ix.src.X, Y: ix.src.Y}
	return geometry.SegmentDistance(origin, rec.Segment()) <= ix.src.Radius
}

// Add evaluates a wall and accepts it into the index when relevant.
// Returns whether the wall was accepted.
func (ix *WallIndex) Add(rec *wall.Record) bool {
	if !ix.relevant(rec) {
		return false
	}
	ix.walls[rec.ID] = rec
	return true
}

// Update re-evaluates a changed wall's relevance and inserts, updates or
// evicts it. restrictionOnly marks edits that flipped blocking flags or
// door state without touching coordinates; for an indexed wall that stays
// relevant such an edit changes nothing the mesh depends on.
func (ix *WallIndex) Update(rec *wall.Record, restrictionOnly bool) Delta {
	_, held := ix.walls[rec.ID]
	relevant := ix.relevant(rec)

	switch {
	case relevant && !held:
		ix.walls[rec.ID] = rec
		return DeltaInserted
	case !relevant && held:
		delete(ix.walls, rec.ID)
		return DeltaEvicted
	case relevant && held:
		if restrictionOnly {
			return DeltaNone
		}
		return DeltaUpdated
	default:
		return DeltaNone
	}
}

// Remove deletes a wall from the index. No-op if the wall is absent;
// returns whether the index changed.
func (ix *WallIndex) Remove(id int64) bool {
	if _, held := ix.walls[id]; !held {
		return false
	}
	delete(ix.walls, id)
	return true
}

// Populate fills the index from a full scan of the wall store.
func (ix *WallIndex) Populate(store *wall.Store) {
	for _, rec := range store.Walls() {
		ix.Add(rec)
	}
}

// Refresh re-evaluates every wall in the store against the source's
// current state (after a position or elevation change) and reports
// whether the relevant set changed.
func (ix *WallIndex) Refresh(store *wall.Store, src *Source) bool {
	ix.src = *src

	changed := false
	seen := make(map[int64]bool, len(ix.walls))

	for _, rec := range store.Walls() {
		if ix.relevant(rec) {
			seen[rec.ID] = true
			if _, held := ix.walls[rec.ID]; !held {
				ix.walls[rec.ID] = rec
				changed = true
			}
		}
	}

	for id := range ix.walls {
		if !seen[id] {
			delete(ix.walls, id)
			changed = true
		}
	}

	return changed
}

// Contains reports whether the wall with the given ID is indexed.
func (ix *WallIndex) Contains(id int64) bool {
	_, held := ix.walls[id]
	return held
}

// Len returns the number of indexed walls.
func (ix *WallIndex) Len() int {
	return len(ix.walls)
}

// Walls returns the indexed walls sorted by ID.
func (ix *WallIndex) Walls() []*wall.Record {
	walls := make([]*wall.Record, 0, len(ix.walls))
	for _, rec := range ix.walls {
		walls = append(walls, rec)
	}
	sort.Slice(walls, func(i, j int) bool { return walls[i].ID < walls[j].ID })
	return walls
}

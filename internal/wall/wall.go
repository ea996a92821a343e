// Package wall holds the occluding wall segments of a scene. Walls have a
// stable ID, mutable geometry with an elevation interval, per-channel
// blocking flags and a door state. Every mutation is reported to the
// registered listeners as a typed change event.
package wall

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"chosenoffset.com/umbra/internal/geometry"
)

// ErrInvalidGeometry is returned when wall endpoints or the elevation
// interval are malformed. Invalid walls are rejected, never clamped.
var ErrInvalidGeometry = errors.New("invalid wall geometry")

// ErrUnknownWall is returned when an operation names a wall ID that is not
// in the store.
var ErrUnknownWall = errors.New("unknown wall")

// BlockFlags holds the per-channel blocking flags of a wall. Each channel
// is independent: a window wall may block movement-relevant sight but not
// light, a curtain the reverse.
type BlockFlags struct {
	Light bool
	Sight bool
	Sound bool
}

// DoorState describes the restriction state of a wall.
type DoorState int

const (
	// DoorNone marks a plain wall with no door.
	DoorNone DoorState = iota
	// DoorClosed marks a door that currently blocks like a wall.
	DoorClosed
	// DoorOpen marks a door that currently blocks nothing.
	DoorOpen
)

// ChangeKind classifies a wall change event.
type ChangeKind int

const (
	// Created is emitted after a wall is added to the store.
	Created ChangeKind = iota
	// GeometryChanged is emitted after endpoint or elevation edits.
	GeometryChanged
	// RestrictionChanged is emitted after blocking-flag or door edits
	// that leave the geometry untouched.
	RestrictionChanged
	// Removed is emitted after a wall is deleted from the store.
	Removed
)

// String returns a human-readable name for the change kind.
func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case GeometryChanged:
		return "geometry-changed"
	case RestrictionChanged:
		return "restriction-changed"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is the typed event delivered to listeners after a mutation.
// For Removed events the record reflects the wall's last state.
type Change struct {
	Kind ChangeKind
	Wall *Record
}

// Listener receives wall change events. Delivery is synchronous and in
// listener registration order.
type Listener interface {
	WallChanged(change Change)
}

// Record is one occluding wall segment. The ID is assigned at creation and
// never changes; geometry and restriction state are mutable through the
// owning store.
type Record struct {
	ID int64
	A  geometry.Point
	B  geometry.Point

	// Elevation interval of the wall. Top may be +Inf for walls that
	// extend indefinitely upward.
	Bottom float64
	Top    float64

	Blocks BlockFlags
	Door   DoorState
}

// Segment returns the wall's endpoints as a geometry segment.
func (r *Record) Segment() geometry.Segment {
	return geometry.Segment{A: r.A, B: r.B}
}

// BlocksLight reports whether the wall currently occludes light.
func (r *Record) BlocksLight() bool {
	return r.Blocks.Light && r.Door != DoorOpen
}

// BlocksSight reports whether the wall currently occludes vision.
func (r *Record) BlocksSight() bool {
	return r.Blocks.Sight && r.Door != DoorOpen
}

// BlocksSound reports whether the wall currently occludes sound.
func (r *Record) BlocksSound() bool {
	return r.Blocks.Sound && r.Door != DoorOpen
}

// Store owns the wall records of one scene and assigns their IDs.
// All access is single-threaded; mutations notify listeners before
// returning.
type Store struct {
	walls     map[int64]*Record
	nextID    int64
	listeners []Listener
}

// NewStore creates an empty wall store.
func NewStore() *Store {
	return &Store{
		walls:  make(map[int64]*Record),
		nextID: 1,
	}
}

// AddListener registers a listener for wall change events.
func (s *Store) AddListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Create validates and adds a new wall, returning its assigned ID.
func (s *Store) Create(a, b geometry.Point, bottom, top float64, blocks BlockFlags, door DoorState) (int64, error) {
	if err := validateGeometry(a, b, bottom, top); err != nil {
		return 0, err
	}

	rec := &Record{
		ID:     s.nextID,
		A:      a,
		B:      b,
		Bottom: bottom,
		Top:    top,
		Blocks: blocks,
		Door:   door,
	}
	s.nextID++
	s.walls[rec.ID] = rec

	s.notify(Change{Kind: Created, Wall: rec})
	return rec.ID, nil
}

// UpdateGeometry replaces a wall's endpoints and elevation interval.
// The wall is left unchanged when validation fails.
func (s *Store) UpdateGeometry(id int64, a, b geometry.Point, bottom, top float64) error {
	rec, ok := s.walls[id]
	if !ok {
		return fmt.Errorf("update geometry of wall %d: %w", id, ErrUnknownWall)
	}
	if err := validateGeometry(a, b, bottom, top); err != nil {
		return err
	}

	rec.A = a
	rec.B = b
	rec.Bottom = bottom
	rec.Top = top

	s.notify(Change{Kind: GeometryChanged, Wall: rec})
	return nil
}

// UpdateRestriction replaces a wall's blocking flags and door state
// without touching its geometry.
func (s *Store) UpdateRestriction(id int64, blocks BlockFlags, door DoorState) error {
	rec, ok := s.walls[id]
	if !ok {
		return fmt.Errorf("update restriction of wall %d: %w", id, ErrUnknownWall)
	}

	rec.Blocks = blocks
	rec.Door = door

	s.notify(Change{Kind: RestrictionChanged, Wall: rec})
	return nil
}

// Remove deletes a wall by ID.
func (s *Store) Remove(id int64) error {
	rec, ok := s.walls[id]
	if !ok {
		return fmt.Errorf("remove wall %d: %w", id, ErrUnknownWall)
	}

	delete(s.walls, id)
	s.notify(Change{Kind: Removed, Wall: rec})
	return nil
}

// Get returns the wall with the given ID.
func (s *Store) Get(id int64) (*Record, bool) {
	rec, ok := s.walls[id]
	return rec, ok
}

// Len returns the number of walls in the store.
func (s *Store) Len() int {
	return len(s.walls)
}

// Walls returns all wall records sorted by ID.
func (s *Store) Walls() []*Record {
	walls := make([]*Record, 0, len(s.walls))
	for _, rec := range s.walls {
		walls = append(walls, rec)
	}
	sort.Slice(walls, func(i, j int) bool { return walls[i].ID < walls[j].ID })
	return walls
}

func (s *Store) notify(change Change) {
	for _, l := range s.listeners {
		l.WallChanged(change)
	}
}

func validateGeometry(a, b geometry.Point, bottom, top float64) error {
	if math.IsNaN(a.X) || math.IsNaN(a.Y) || math.IsNaN(b.X) || math.IsNaN(b.Y) {
		return fmt.Errorf("endpoints (%v, %v): %w", a, b, ErrInvalidGeometry)
	}
	if math.IsNaN(bottom) || math.IsNaN(top) {
		return fmt.Errorf("elevation interval [%v, %v]: %w", bottom, top, ErrInvalidGeometry)
	}
	if top < bottom {
		return fmt.Errorf("elevation interval [%v, %v] is inverted: %w", bottom, top, ErrInvalidGeometry)
	}
	return nil
}

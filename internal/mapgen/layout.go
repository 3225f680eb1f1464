package mapgen

import (
	"fmt"
	"sort"

	"github.com/lawnchairsociety/eldritchhouse/internal/house"
)

// PlacedRoom is a room the generator has put on the grid
type PlacedRoom struct {
	ID          house.RoomID
	Pos         house.GridPos
	Definition  *house.RoomDefinition
	Connections map[house.Direction]house.RoomID
}

// NewPlacedRoom creates a placed room with no connections yet
func NewPlacedRoom(id house.RoomID, pos house.GridPos, def *house.RoomDefinition) *PlacedRoom {
	return &PlacedRoom{
		ID:          id,
		Pos:         pos,
		Definition:  def,
		Connections: make(map[house.Direction]house.RoomID),
	}
}

// ConnectionCount returns the number of finalized connections
func (r *PlacedRoom) ConnectionCount() int {
	return len(r.Connections)
}

// HasConnection returns true if the room connects through dir
func (r *PlacedRoom) HasConnection(dir house.Direction) bool {
	_, ok := r.Connections[dir]
	return ok
}

// Layout is the output of one generation run. Rooms are indexed by id.
type Layout struct {
	Seed     int64
	Rooms    []*PlacedRoom
	Attempts int // generator runs it took, 1 unless retried
}

// Entrance returns room 0
func (l *Layout) Entrance() *PlacedRoom {
	if len(l.Rooms) == 0 {
		return nil
	}
	return l.Rooms[house.EntranceID]
}

// Room returns the room with the given id, or nil
func (l *Layout) Room(id house.RoomID) *PlacedRoom {
	if int(id) >= len(l.Rooms) {
		return nil
	}
	return l.Rooms[id]
}

// At returns the room occupying pos, or nil
func (l *Layout) At(pos house.GridPos) *PlacedRoom {
	for _, r := range l.Rooms {
		if r.Pos == pos {
			return r
		}
	}
	return nil
}

// Bounds returns the smallest and largest occupied coordinates
func (l *Layout) Bounds() (min, max house.GridPos) {
	if len(l.Rooms) == 0 {
		return
	}
	min, max = l.Rooms[0].Pos, l.Rooms[0].Pos
	for _, r := range l.Rooms[1:] {
		if r.Pos.X < min.X {
			min.X = r.Pos.X
		}
		if r.Pos.Y < min.Y {
			min.Y = r.Pos.Y
		}
		if r.Pos.X > max.X {
			max.X = r.Pos.X
		}
		if r.Pos.Y > max.Y {
			max.Y = r.Pos.Y
		}
	}
	return min, max
}

// Instantiate hands every room to the spawner in id order
func (l *Layout) Instantiate(sink house.Spawner) error {
	for _, r := range l.Rooms {
		conns := make(map[house.Direction]house.RoomID, len(r.Connections))
		for d, id := range r.Connections {
			conns[d] = id
		}

		err := sink.SpawnRoom(house.SpawnRequest{
			ID:          r.ID,
			Pos:         r.Pos,
			Connections: conns,
			Definition:  r.Definition,
		})
		if err != nil {
			return fmt.Errorf("failed to spawn room %d: %w", r.ID, err)
		}
	}
	return nil
}

// BuildHouse instantiates the layout into a fresh House
func (l *Layout) BuildHouse() (*house.House, error) {
	h := house.New(l.Seed)
	if err := l.Instantiate(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks the structural invariants of a finished layout: dense ids
// with the entrance at the origin, unique cells, nothing below the entrance
// row, and connections that exist exactly where both rooms allow them.
func (l *Layout) Validate() error {
	if len(l.Rooms) == 0 {
		return fmt.Errorf("layout has no rooms")
	}

	occupied := make(map[house.GridPos]*PlacedRoom, len(l.Rooms))
	for i, r := range l.Rooms {
		if r == nil || r.Definition == nil {
			return fmt.Errorf("room %d is incomplete", i)
		}
		if int(r.ID) != i {
			return fmt.Errorf("room at index %d has id %d", i, r.ID)
		}
		if r.Pos.Y < 0 {
			return fmt.Errorf("room %d at %s is below the entrance row", r.ID, r.Pos)
		}
		if other, taken := occupied[r.Pos]; taken {
			return fmt.Errorf("rooms %d and %d share cell %s", other.ID, r.ID, r.Pos)
		}
		occupied[r.Pos] = r
	}

	if l.Rooms[0].Pos != (house.GridPos{}) {
		return fmt.Errorf("entrance is at %s, not the origin", l.Rooms[0].Pos)
	}

	for _, r := range l.Rooms {
		for _, d := range house.AllDirections() {
			n := occupied[r.Pos.Step(d)]
			compatible := n != nil && r.Definition.Allows(d) && n.Definition.Allows(d.Opposite())

			id, connected := r.Connections[d]
			switch {
			case compatible && !connected:
				return fmt.Errorf("room %d is missing its %s connection to %d", r.ID, d, n.ID)
			case !compatible && connected:
				return fmt.Errorf("room %d has an invalid %s connection to %d", r.ID, d, id)
			case connected && id != n.ID:
				return fmt.Errorf("room %d %s connection points at %d, neighbour is %d", r.ID, d, id, n.ID)
			}
		}
	}

	return nil
}

// SortRoomsByPosition returns the rooms ordered top row first, then by X, for
// deterministic listings
func SortRoomsByPosition(rooms []*PlacedRoom) []*PlacedRoom {
	sorted := make([]*PlacedRoom, len(rooms))
	copy(sorted, rooms)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Pos.Y != sorted[j].Pos.Y {
			return sorted[i].Pos.Y > sorted[j].Pos.Y
		}
		return sorted[i].Pos.X < sorted[j].Pos.X
	})
	return sorted
}

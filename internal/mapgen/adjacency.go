package mapgen

import "github.com/lawnchairsociety/eldritchhouse/internal/house"

// DeriveConnections recomputes every room's connections from scratch. A room
// connects through d only when the cell in direction d holds a room whose
// definition allows the opposite direction, so the result is symmetric.
func DeriveConnections(rooms []*PlacedRoom) {
	occupied := make(map[house.GridPos]*PlacedRoom, len(rooms))
	for _, r := range rooms {
		occupied[r.Pos] = r
	}

	for _, r := range rooms {
		r.Connections = make(map[house.Direction]house.RoomID)
		for _, dir := range r.Definition.AllowedDirections {
			neighbor, ok := occupied[r.Pos.Step(dir)]
			if !ok {
				continue
			}
			if neighbor.Definition.Allows(dir.Opposite()) {
				r.Connections[dir] = neighbor.ID
			}
		}
	}
}

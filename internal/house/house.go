// Package house holds the rooms of a generated house and the types shared by
// the generator, the catalog and navigation.
package house

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// RoomSpacing is the world distance between two neighbouring grid cells
const RoomSpacing = 1000

// ErrDuplicateRoom is returned when a room id is spawned twice
var ErrDuplicateRoom = errors.New("room already spawned")

// SpawnRequest carries everything needed to instantiate one placed room
type SpawnRequest struct {
	ID          RoomID
	Pos         GridPos
	Connections map[Direction]RoomID
	Definition  *RoomDefinition
}

// Spawner receives placed rooms once generation has finished
type Spawner interface {
	SpawnRoom(req SpawnRequest) error
}

// WorldOffset is where a room is drawn. It is derived from the grid position
// and is not gameplay state.
type WorldOffset struct {
	X, Y float64
}

// Room is an instantiated room owned by a House
type Room struct {
	ID          RoomID
	Definition  *RoomDefinition
	Connections map[Direction]RoomID
	Offset      WorldOffset
	Visible     bool
	mu          sync.RWMutex
}

// Name returns the room type name
func (r *Room) Name() string {
	if r.Definition == nil {
		return ""
	}
	return r.Definition.Name
}

// GetExit returns the room reached through dir, if any
func (r *Room) GetExit(dir Direction) (RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.Connections[dir]
	return id, ok
}

// GetConnections returns a copy of the room's connection map
func (r *Room) GetConnections() map[Direction]RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make(map[Direction]RoomID, len(r.Connections))
	for d, id := range r.Connections {
		conns[d] = id
	}
	return conns
}

// SetVisible marks whether the room is the one presented to the player
func (r *Room) SetVisible(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Visible = visible
}

// IsVisible reports whether the room is currently presented
func (r *Room) IsVisible() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Visible
}

// House owns every instantiated room, indexed by id
type House struct {
	Rooms map[RoomID]*Room
	Seed  int64
	mu    sync.RWMutex
}

// New creates an empty house
func New(seed int64) *House {
	return &House{
		Rooms: make(map[RoomID]*Room),
		Seed:  seed,
	}
}

// SpawnRoom instantiates a placed room and registers it. The entrance starts
// out visible.
func (h *House) SpawnRoom(req SpawnRequest) error {
	if req.Definition == nil {
		return fmt.Errorf("spawn room %d: missing definition", req.ID)
	}

	conns := make(map[Direction]RoomID, len(req.Connections))
	for d, id := range req.Connections {
		conns[d] = id
	}

	room := &Room{
		ID:          req.ID,
		Definition:  req.Definition,
		Connections: conns,
		Offset: WorldOffset{
			X: float64(req.Pos.X * RoomSpacing),
			Y: float64(req.Pos.Y * RoomSpacing),
		},
		Visible: req.ID == EntranceID,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.Rooms[req.ID]; exists {
		return fmt.Errorf("spawn room %d: %w", req.ID, ErrDuplicateRoom)
	}
	h.Rooms[req.ID] = room
	return nil
}

// GetRoom returns the room with the given id, or nil
func (h *House) GetRoom(id RoomID) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.Rooms[id]
}

// GetEntrance returns room 0
func (h *House) GetEntrance() *Room {
	return h.GetRoom(EntranceID)
}

// GetRoomCount returns the number of rooms in the house
func (h *House) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Rooms)
}

// GetAllRooms returns the rooms ordered by id
func (h *House) GetAllRooms() []*Room {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]*Room, 0, len(h.Rooms))
	for _, room := range h.Rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

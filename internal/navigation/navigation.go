// Package navigation tracks which room of a house is in focus and moves that
// focus along existing connections.
package navigation

import (
	"sync"

	"github.com/lawnchairsociety/eldritchhouse/internal/house"
	"github.com/lawnchairsociety/eldritchhouse/internal/logger"
)

// HandleChangeRoom returns the focus after a request to move to requested.
// The request is honored only if requested is one of current's connections;
// otherwise focus stays on current.
func HandleChangeRoom(current house.RoomID, connections map[house.Direction]house.RoomID, requested house.RoomID) house.RoomID {
	for _, id := range connections {
		if id == requested {
			return requested
		}
	}
	return current
}

// Navigator holds the focused room for one house. Entering a room marks it
// visible.
type Navigator struct {
	house *house.House
	focus house.RoomID
	moves int
	mu    sync.RWMutex
}

// NewNavigator returns a navigator focused on the entrance of h.
func NewNavigator(h *house.House) *Navigator {
	n := &Navigator{house: h}
	n.Reset()
	return n
}

// Focus returns the id of the focused room.
func (n *Navigator) Focus() house.RoomID {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.focus
}

// Room returns the focused room.
func (n *Navigator) Room() *house.Room {
	return n.house.GetRoom(n.Focus())
}

// Moves returns how many accepted focus changes happened since the last Reset.
func (n *Navigator) Moves() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.moves
}

// ChangeRoom moves focus to target if the focused room connects to it.
// Reports whether focus moved.
func (n *Navigator) ChangeRoom(target house.RoomID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	current := n.house.GetRoom(n.focus)
	if current == nil {
		return false
	}

	next := HandleChangeRoom(n.focus, current.GetConnections(), target)
	if next == n.focus {
		logger.Debug("Change room ignored", "focus", n.focus, "requested", target)
		return false
	}

	n.enter(next)
	return true
}

// Move follows the focused room's exit in dir. It returns the new focus and
// whether the room had such an exit.
func (n *Navigator) Move(dir house.Direction) (house.RoomID, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	current := n.house.GetRoom(n.focus)
	if current == nil {
		return n.focus, false
	}

	target, ok := current.GetExit(dir)
	if !ok {
		return n.focus, false
	}

	n.enter(target)
	return n.focus, true
}

// Exits returns the directions out of the focused room in scan order.
func (n *Navigator) Exits() []house.Direction {
	room := n.Room()
	if room == nil {
		return nil
	}
	return house.SortedDirections(room.GetConnections())
}

// Reset puts focus back on the entrance.
func (n *Navigator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.focus = house.EntranceID
	n.moves = 0
	if entrance := n.house.GetEntrance(); entrance != nil {
		entrance.SetVisible(true)
	}
}

// enter must be called with mu held.
func (n *Navigator) enter(id house.RoomID) {
	if room := n.house.GetRoom(id); room != nil {
		room.SetVisible(true)
	}
	logger.Debug("Room changed", "from", n.focus, "to", id)
	n.focus = id
	n.moves++
}

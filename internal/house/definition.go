package house

import (
	"hash/fnv"
	"sort"
	"strings"
)

// RoomID identifies a placed room. Zero is always the entrance.
type RoomID uint8

// EntranceID is the id of the room the player starts in
const EntranceID RoomID = 0

// MaxRooms is the largest house a RoomID can address
const MaxRooms = 256

// RoomDefinition is a room type from the catalog. Many placed rooms share one
// definition and none of them may modify it.
type RoomDefinition struct {
	Name              string
	AllowedDirections []Direction
}

// NewRoomDefinition creates a definition with duplicate directions removed
// and the rest kept in scan order.
func NewRoomDefinition(name string, dirs ...Direction) *RoomDefinition {
	seen := make(map[Direction]bool, len(dirs))
	for _, d := range dirs {
		if d.Valid() {
			seen[d] = true
		}
	}

	allowed := make([]Direction, 0, len(seen))
	for _, d := range AllDirections() {
		if seen[d] {
			allowed = append(allowed, d)
		}
	}

	return &RoomDefinition{
		Name:              name,
		AllowedDirections: allowed,
	}
}

// Allows returns true if the room type can connect through dir
func (r *RoomDefinition) Allows(dir Direction) bool {
	for _, d := range r.AllowedDirections {
		if d == dir {
			return true
		}
	}
	return false
}

// ID returns the numeric id derived from the room name
func (r *RoomDefinition) ID() uint64 {
	return DefinitionID(r.Name)
}

// String lists the definition as name[n,e,...]
func (r *RoomDefinition) String() string {
	dirs := make([]string, 0, len(r.AllowedDirections))
	for _, d := range r.AllowedDirections {
		dirs = append(dirs, d.String()[:1])
	}
	return r.Name + "[" + strings.Join(dirs, ",") + "]"
}

// DefinitionID hashes a room name to its stable numeric id (FNV-1a, 64 bit)
func DefinitionID(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}

// SortedDirections returns the keys of a connection map in scan order
func SortedDirections(connections map[Direction]RoomID) []Direction {
	dirs := make([]Direction, 0, len(connections))
	for d := range connections {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i] < dirs[j] })
	return dirs
}

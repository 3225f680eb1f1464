// Package catalog provides the room types the map generator draws from.
package catalog

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/lawnchairsociety/eldritchhouse/internal/house"
)

// DefaultEntranceName is the room type used for room 0 unless configured otherwise
const DefaultEntranceName = "entrance"

var (
	ErrCatalogEmpty        = errors.New("catalog: no room definitions")
	ErrUnknownRoomType     = errors.New("catalog: unknown room type")
	ErrMissingEntranceType = errors.New("catalog: entrance room type not present")
)

// Catalog is the read-only source of room definitions used during generation
type Catalog interface {
	Random(rng *rand.Rand) (*house.RoomDefinition, error)
	Lookup(name string) (*house.RoomDefinition, error)
	LookupID(id uint64) (*house.RoomDefinition, error)
	Entrance() (*house.RoomDefinition, error)
	Names() []string
}

// Static is an immutable in-memory catalog. It is safe to share between
// goroutines once built.
type Static struct {
	entranceName string
	byName       map[string]*house.RoomDefinition
	byID         map[uint64]*house.RoomDefinition
	ordered      []*house.RoomDefinition // sorted by name so draws are reproducible
}

// New builds a catalog from the given definitions
func New(entranceName string, defs ...*house.RoomDefinition) (*Static, error) {
	if entranceName == "" {
		entranceName = DefaultEntranceName
	}

	c := &Static{
		entranceName: entranceName,
		byName:       make(map[string]*house.RoomDefinition, len(defs)),
		byID:         make(map[uint64]*house.RoomDefinition, len(defs)),
		ordered:      make([]*house.RoomDefinition, 0, len(defs)),
	}

	for _, def := range defs {
		if def == nil || def.Name == "" {
			return nil, fmt.Errorf("catalog: room definition without a name")
		}
		if _, exists := c.byName[def.Name]; exists {
			return nil, fmt.Errorf("catalog: duplicate room type %q", def.Name)
		}
		id := def.ID()
		if other, exists := c.byID[id]; exists {
			return nil, fmt.Errorf("catalog: room types %q and %q share id %d", other.Name, def.Name, id)
		}
		c.byName[def.Name] = def
		c.byID[id] = def
		c.ordered = append(c.ordered, def)
	}

	sort.Slice(c.ordered, func(i, j int) bool {
		return c.ordered[i].Name < c.ordered[j].Name
	})

	return c, nil
}

// Random returns a uniformly drawn definition
func (c *Static) Random(rng *rand.Rand) (*house.RoomDefinition, error) {
	if len(c.ordered) == 0 {
		return nil, ErrCatalogEmpty
	}
	return c.ordered[rng.Intn(len(c.ordered))], nil
}

// Lookup returns the definition with the given name
func (c *Static) Lookup(name string) (*house.RoomDefinition, error) {
	def, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoomType, name)
	}
	return def, nil
}

// LookupID returns the definition whose name hashes to id
func (c *Static) LookupID(id uint64) (*house.RoomDefinition, error) {
	def, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownRoomType, id)
	}
	return def, nil
}

// Entrance returns the definition always used for room 0
func (c *Static) Entrance() (*house.RoomDefinition, error) {
	def, ok := c.byName[c.entranceName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingEntranceType, c.entranceName)
	}
	return def, nil
}

// EntranceName returns the name of the entrance room type
func (c *Static) EntranceName() string {
	return c.entranceName
}

// Names returns every room type name in sorted order
func (c *Static) Names() []string {
	names := make([]string, 0, len(c.ordered))
	for _, def := range c.ordered {
		names = append(names, def.Name)
	}
	return names
}

// Len returns the number of definitions
func (c *Static) Len() int {
	return len(c.ordered)
}

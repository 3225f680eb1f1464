package mapgen

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/lawnchairsociety/eldritchhouse/internal/catalog"
	"github.com/lawnchairsociety/eldritchhouse/internal/house"
	"gopkg.in/yaml.v3"
)

// LayoutData is the serialized form of a layout, written by the generate
// command for inspection
type LayoutData struct {
	Seed        int64      `yaml:"seed"`
	RoomCount   int        `yaml:"room_count"`
	GeneratedAt time.Time  `yaml:"generated_at"`
	Rooms       []RoomData `yaml:"rooms"`
}

// RoomData is a serialized placed room
type RoomData struct {
	ID    int            `yaml:"id"`
	Type  string         `yaml:"type"`
	X     int            `yaml:"x"`
	Y     int            `yaml:"y"`
	Exits map[string]int `yaml:"exits,omitempty"` // direction -> room id
}

// SerializeLayout converts a layout to LayoutData
func SerializeLayout(l *Layout) LayoutData {
	data := LayoutData{
		Seed:        l.Seed,
		RoomCount:   len(l.Rooms),
		GeneratedAt: time.Now().UTC(),
		Rooms:       make([]RoomData, 0, len(l.Rooms)),
	}

	for _, r := range l.Rooms {
		rd := RoomData{
			ID:   int(r.ID),
			Type: r.Definition.Name,
			X:    r.Pos.X,
			Y:    r.Pos.Y,
		}
		if len(r.Connections) > 0 {
			rd.Exits = make(map[string]int, len(r.Connections))
			for d, id := range r.Connections {
				rd.Exits[d.String()] = int(id)
			}
		}
		data.Rooms = append(data.Rooms, rd)
	}

	return data
}

// SaveLayout writes the layout to a YAML file
func SaveLayout(l *Layout, filename string) error {
	data := SerializeLayout(l)

	yamlData, err := yaml.Marshal(&data)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	if err := os.WriteFile(filename, yamlData, 0644); err != nil {
		return fmt.Errorf("failed to write layout file: %w", err)
	}

	return nil
}

// LoadLayout reads a layout written by SaveLayout, resolving room types
// against the catalog. Connections are re-derived rather than trusted, and the
// result is validated.
func LoadLayout(filename string, cat catalog.Catalog) (*Layout, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var data LayoutData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse layout YAML: %w", err)
	}

	return DeserializeLayout(&data, cat)
}

// DeserializeLayout rebuilds a layout from LayoutData
func DeserializeLayout(data *LayoutData, cat catalog.Catalog) (*Layout, error) {
	if len(data.Rooms) == 0 || len(data.Rooms) > house.MaxRooms {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRoomCount, len(data.Rooms))
	}

	rooms := make([]RoomData, len(data.Rooms))
	copy(rooms, data.Rooms)
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	layout := &Layout{
		Seed:  data.Seed,
		Rooms: make([]*PlacedRoom, 0, len(rooms)),
	}

	for i, rd := range rooms {
		if rd.ID != i {
			return nil, fmt.Errorf("layout room ids are not contiguous at %d", i)
		}
		def, err := cat.Lookup(rd.Type)
		if err != nil {
			return nil, fmt.Errorf("room %d: %w", rd.ID, err)
		}
		layout.Rooms = append(layout.Rooms, NewPlacedRoom(house.RoomID(rd.ID), house.GridPos{X: rd.X, Y: rd.Y}, def))
	}

	entrance, err := cat.Entrance()
	if err != nil {
		return nil, err
	}
	if first := layout.Rooms[0].Definition; first.Name != entrance.Name {
		return nil, fmt.Errorf("invalid layout: room 0 is %q, want entrance %q", first.Name, entrance.Name)
	}

	DeriveConnections(layout.Rooms)

	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	return layout, nil
}

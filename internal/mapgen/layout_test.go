package mapgen

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lawnchairsociety/eldritchhouse/internal/catalog"
	"github.com/lawnchairsociety/eldritchhouse/internal/house"
	"gopkg.in/yaml.v3"
)

// recordingSpawner keeps every request it receives
type recordingSpawner struct {
	requests []house.SpawnRequest
	failOn   int
}

func (s *recordingSpawner) SpawnRoom(req house.SpawnRequest) error {
	if s.failOn > 0 && len(s.requests)+1 == s.failOn {
		return errors.New("sink full")
	}
	s.requests = append(s.requests, req)
	return nil
}

func TestInstantiateEmitsEveryRoomInOrder(t *testing.T) {
	layout := generateOrFail(t, 15, 11)

	sink := &recordingSpawner{}
	if err := layout.Instantiate(sink); err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}

	if len(sink.requests) != 15 {
		t.Fatalf("got %d spawn requests, want 15", len(sink.requests))
	}
	for i, req := range sink.requests {
		r := layout.Rooms[i]
		if req.ID != r.ID || req.Pos != r.Pos || req.Definition != r.Definition {
			t.Errorf("request %d = %+v, want room %d", i, req, r.ID)
		}
		if len(req.Connections) != len(r.Connections) {
			t.Errorf("request %d connections = %v, want %v", i, req.Connections, r.Connections)
		}
	}
}

func TestInstantiateStopsOnSinkError(t *testing.T) {
	layout := generateOrFail(t, 5, 2)

	sink := &recordingSpawner{failOn: 3}
	if err := layout.Instantiate(sink); err == nil {
		t.Fatal("Instantiate() succeeded with a failing sink")
	}
	if len(sink.requests) != 2 {
		t.Errorf("sink received %d requests before failing, want 2", len(sink.requests))
	}
}

func TestBuildHouse(t *testing.T) {
	layout := generateOrFail(t, 20, 4)

	h, err := layout.BuildHouse()
	if err != nil {
		t.Fatalf("BuildHouse() failed: %v", err)
	}
	if h.GetRoomCount() != 20 {
		t.Errorf("house has %d rooms, want 20", h.GetRoomCount())
	}
	if h.Seed != layout.Seed {
		t.Errorf("house seed = %d, want %d", h.Seed, layout.Seed)
	}

	for _, r := range layout.Rooms {
		room := h.GetRoom(r.ID)
		if room == nil {
			t.Fatalf("room %d missing from house", r.ID)
		}
		want := house.WorldOffset{X: float64(r.Pos.X * house.RoomSpacing), Y: float64(r.Pos.Y * house.RoomSpacing)}
		if room.Offset != want {
			t.Errorf("room %d offset = %+v, want %+v", r.ID, room.Offset, want)
		}
		if room.IsVisible() != (r.ID == house.EntranceID) {
			t.Errorf("room %d visible = %v", r.ID, room.IsVisible())
		}
	}
}

func TestValidateCatchesBrokenLayouts(t *testing.T) {
	entrance := house.NewRoomDefinition("entrance", house.North)
	hallway := house.NewRoomDefinition("hallway", house.North, house.South)

	build := func() *Layout {
		rooms := []*PlacedRoom{
			NewPlacedRoom(0, house.GridPos{X: 0, Y: 0}, entrance),
			NewPlacedRoom(1, house.GridPos{X: 0, Y: 1}, hallway),
		}
		DeriveConnections(rooms)
		return &Layout{Rooms: rooms}
	}

	if err := build().Validate(); err != nil {
		t.Fatalf("Validate() on a good layout = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(l *Layout)
	}{
		{"empty", func(l *Layout) { l.Rooms = nil }},
		{"moved entrance", func(l *Layout) { l.Rooms[0].Pos = house.GridPos{X: 5, Y: 5} }},
		{"below entrance row", func(l *Layout) { l.Rooms[1].Pos = house.GridPos{X: 0, Y: -1} }},
		{"shared cell", func(l *Layout) { l.Rooms[1].Pos = house.GridPos{X: 0, Y: 0} }},
		{"wrong id", func(l *Layout) { l.Rooms[1].ID = 7 }},
		{"missing edge", func(l *Layout) { delete(l.Rooms[1].Connections, house.South) }},
		{"one-sided edge", func(l *Layout) { l.Rooms[1].Connections[house.North] = 0 }},
		{"misdirected edge", func(l *Layout) { l.Rooms[0].Connections[house.North] = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := build()
			tc.mutate(l)
			if err := l.Validate(); err == nil {
				t.Error("Validate() accepted a broken layout")
			}
		})
	}
}

func TestLayoutLookups(t *testing.T) {
	layout := generateOrFail(t, 10, 8)

	for _, r := range layout.Rooms {
		if layout.At(r.Pos) != r {
			t.Errorf("At(%s) did not return room %d", r.Pos, r.ID)
		}
		if layout.Room(r.ID) != r {
			t.Errorf("Room(%d) mismatch", r.ID)
		}
	}
	if layout.Room(200) != nil {
		t.Error("Room(200) should be nil for a 10 room layout")
	}
	if layout.At(house.GridPos{X: 0, Y: -1}) != nil {
		t.Error("At() found a room below the entrance row")
	}

	min, max := layout.Bounds()
	if min.Y != 0 {
		t.Errorf("Bounds() min Y = %d, want 0", min.Y)
	}
	for _, r := range layout.Rooms {
		if r.Pos.X < min.X || r.Pos.X > max.X || r.Pos.Y < min.Y || r.Pos.Y > max.Y {
			t.Errorf("room %d at %s is outside bounds %s-%s", r.ID, r.Pos, min, max)
		}
	}

	sorted := SortRoomsByPosition(layout.Rooms)
	for i := 1; i < len(sorted); i++ {
		a, b := sorted[i-1].Pos, sorted[i].Pos
		if a.Y < b.Y || (a.Y == b.Y && a.X > b.X) {
			t.Errorf("SortRoomsByPosition out of order at %d: %s before %s", i, a, b)
		}
	}
}

func TestSaveAndLoadLayout(t *testing.T) {
	cat := catalog.Default()
	layout := generateOrFail(t, 18, 21)
	path := filepath.Join(t.TempDir(), "house.yaml")

	if err := SaveLayout(layout, path); err != nil {
		t.Fatalf("SaveLayout() failed: %v", err)
	}

	loaded, err := LoadLayout(path, cat)
	if err != nil {
		t.Fatalf("LoadLayout() failed: %v", err)
	}

	if loaded.Seed != layout.Seed || len(loaded.Rooms) != len(layout.Rooms) {
		t.Fatalf("loaded seed %d with %d rooms, want seed %d with %d", loaded.Seed, len(loaded.Rooms), layout.Seed, len(layout.Rooms))
	}
	for i, r := range layout.Rooms {
		l := loaded.Rooms[i]
		if l.Pos != r.Pos || l.Definition.Name != r.Definition.Name {
			t.Errorf("room %d = %s at %s, want %s at %s", i, l.Definition.Name, l.Pos, r.Definition.Name, r.Pos)
		}
		for d, id := range r.Connections {
			if l.Connections[d] != id {
				t.Errorf("room %d %s = %d, want %d", i, d, l.Connections[d], id)
			}
		}
	}
}

func TestSerializeLayoutExits(t *testing.T) {
	layout, err := NewGenerator(DefaultConfig(3, 42), straightCatalog(t)).Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	data := SerializeLayout(layout)
	if data.RoomCount != 3 {
		t.Errorf("RoomCount = %d, want 3", data.RoomCount)
	}
	if got := data.Rooms[1].Exits; got["north"] != 2 || got["south"] != 0 || len(got) != 2 {
		t.Errorf("room 1 exits = %v", got)
	}
}

func TestLoadLayoutRejectsBadFiles(t *testing.T) {
	cat := catalog.Default()
	dir := t.TempDir()

	write := func(name string, data LayoutData) string {
		out, err := yaml.Marshal(&data)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, out, 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		return path
	}

	tests := []struct {
		name string
		data LayoutData
	}{
		{"no rooms", LayoutData{}},
		{"unknown type", LayoutData{Rooms: []RoomData{{ID: 0, Type: "ballroom"}}}},
		{"gap in ids", LayoutData{Rooms: []RoomData{{ID: 0, Type: "entrance"}, {ID: 2, Type: "hallway", Y: 1}}}},
		{"overlap", LayoutData{Rooms: []RoomData{{ID: 0, Type: "entrance"}, {ID: 1, Type: "hallway"}}}},
		{"wrong entrance", LayoutData{Rooms: []RoomData{{ID: 0, Type: "hallway"}, {ID: 1, Type: "hallway", Y: 1}}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := write(strings.ReplaceAll(tc.name, " ", "_")+".yaml", tc.data)
			if _, err := LoadLayout(path, cat); err == nil {
				t.Error("LoadLayout() accepted a bad layout")
			}
		})
	}

	if _, err := LoadLayout(filepath.Join(dir, "missing.yaml"), cat); err == nil {
		t.Error("LoadLayout() accepted a missing file")
	}
}

func TestRender(t *testing.T) {
	layout, err := NewGenerator(DefaultConfig(3, 42), straightCatalog(t)).Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	want := "" +
		"     \n" +
		" [x] \n" +
		"  |  \n" +
		"  |  \n" +
		" [.] \n" +
		"  |  \n" +
		"  |  \n" +
		" [E] \n" +
		"     \n"
	if got := Render(layout); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}

	details := RenderDetails(layout)
	if !strings.Contains(details, "north->1") || !strings.Contains(details, "south->1") {
		t.Errorf("RenderDetails() missing exits:\n%s", details)
	}

	if Render(&Layout{}) != "  (No rooms to display)\n" {
		t.Error("Render() of an empty layout")
	}
	if !strings.Contains(Legend(), "[E] Entrance") {
		t.Error("Legend() missing entrance symbol")
	}
}

package catalog

import "github.com/lawnchairsociety/eldritchhouse/internal/house"

// Default returns the built-in room catalog used when no manifest is given
func Default() *Static {
	n, e, s, w := house.North, house.East, house.South, house.West

	defs := []*house.RoomDefinition{
		// The front door opens onto the house behind and beside it
		house.NewRoomDefinition(DefaultEntranceName, n, e, w),

		// Passages
		house.NewRoomDefinition("hallway", n, s),
		house.NewRoomDefinition("gallery", e, w),
		house.NewRoomDefinition("landing", n, e, s, w),

		// Corners
		house.NewRoomDefinition("pantry", s, e),
		house.NewRoomDefinition("scullery", s, w),
		house.NewRoomDefinition("conservatory", n, e),
		house.NewRoomDefinition("library", n, w),

		// Three-way rooms
		house.NewRoomDefinition("parlour", e, s, w),
		house.NewRoomDefinition("dining_room", n, e, s),
		house.NewRoomDefinition("drawing_room", n, s, w),

		// Dead ends
		house.NewRoomDefinition("study", s),
		house.NewRoomDefinition("closet", w),
		house.NewRoomDefinition("chapel", e),
		house.NewRoomDefinition("nursery", n),
	}

	c, err := New(DefaultEntranceName, defs...)
	if err != nil {
		// The list above is fixed; a failure here is a programming error
		panic(err)
	}
	return c
}

package mapgen

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/eldritchhouse/internal/house"
)

// Render draws the layout as text. Each cell is 5 chars wide and 3 tall:
//
//	  |     (north connection)
//	-[R]-   (west-room-east)
//	  |     (south connection)
//
// North is at the top. The entrance is drawn as [E].
func Render(l *Layout) string {
	var output strings.Builder

	if len(l.Rooms) == 0 {
		output.WriteString("  (No rooms to display)\n")
		return output.String()
	}

	min, max := l.Bounds()
	grid := make(map[house.GridPos]*PlacedRoom, len(l.Rooms))
	for _, r := range l.Rooms {
		grid[r.Pos] = r
	}

	for y := max.Y; y >= min.Y; y-- {
		// Top row (north connections)
		for x := min.X; x <= max.X; x++ {
			room := grid[house.GridPos{X: x, Y: y}]
			if room != nil && room.HasConnection(house.North) {
				output.WriteString("  |  ")
			} else {
				output.WriteString("     ")
			}
		}
		output.WriteString("\n")

		// Middle row (west-room-east)
		for x := min.X; x <= max.X; x++ {
			room := grid[house.GridPos{X: x, Y: y}]
			if room == nil {
				output.WriteString("     ")
				continue
			}
			if room.HasConnection(house.West) {
				output.WriteString("-")
			} else {
				output.WriteString(" ")
			}
			output.WriteString("[" + roomSymbol(room) + "]")
			if room.HasConnection(house.East) {
				output.WriteString("-")
			} else {
				output.WriteString(" ")
			}
		}
		output.WriteString("\n")

		// Bottom row (south connections)
		for x := min.X; x <= max.X; x++ {
			room := grid[house.GridPos{X: x, Y: y}]
			if room != nil && room.HasConnection(house.South) {
				output.WriteString("  |  ")
			} else {
				output.WriteString("     ")
			}
		}
		output.WriteString("\n")
	}

	return output.String()
}

// RenderDetails lists every room with its position and exits, in id order
func RenderDetails(l *Layout) string {
	var output strings.Builder

	output.WriteString("Room Details:\n")
	for _, r := range l.Rooms {
		details := fmt.Sprintf("  [%s] %3d %-16s %-9s", roomSymbol(r), r.ID, truncate(r.Definition.Name, 16), r.Pos)

		var exits []string
		for _, d := range house.SortedDirections(r.Connections) {
			exits = append(exits, fmt.Sprintf("%s->%d", d, r.Connections[d]))
		}
		if len(exits) > 0 {
			details += " exits: " + strings.Join(exits, ", ")
		}

		output.WriteString(strings.TrimRight(details, " ") + "\n")
	}

	return output.String()
}

func roomSymbol(r *PlacedRoom) string {
	if r.ID == house.EntranceID {
		return "E"
	}
	switch r.ConnectionCount() {
	case 0:
		return "?"
	case 1:
		return "x" // Dead end
	case 2:
		return "."
	default:
		return "#"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// Legend explains the symbols used by Render
func Legend() string {
	return `
Legend:
  [E] Entrance (room 0)
  [#] Room with three or more exits
  [.] Passage (two exits)
  [x] Dead end
  [?] Unconnected room

  Connections:
  -   Horizontal passage (east-west)
  |   Vertical passage (north-south)
`
}

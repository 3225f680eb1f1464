package house

import (
	"fmt"
	"strings"
)

// Direction represents a cardinal direction a room can connect through
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Offset returns the unit grid step for the direction. North grows y.
func (d Direction) Offset() GridPos {
	switch d {
	case North:
		return GridPos{X: 0, Y: 1}
	case East:
		return GridPos{X: 1, Y: 0}
	case South:
		return GridPos{X: 0, Y: -1}
	case West:
		return GridPos{X: -1, Y: 0}
	default:
		return GridPos{}
	}
}

// Valid reports whether d is one of the four cardinal directions
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

// AllDirections returns all four cardinal directions in scan order
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// ParseDirection converts a manifest or command string to a Direction.
// Matching is case-insensitive and accepts single-letter abbreviations.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, true
	case "east", "e":
		return East, true
	case "south", "s":
		return South, true
	case "west", "w":
		return West, true
	default:
		return North, false
	}
}

// MarshalYAML writes the direction by name
func (d Direction) MarshalYAML() (interface{}, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return d.String(), nil
}

// UnmarshalYAML accepts any spelling ParseDirection understands
func (d *Direction) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, ok := ParseDirection(s)
	if !ok {
		return fmt.Errorf("unknown direction %q", s)
	}
	*d = parsed
	return nil
}

// GridPos is an integer cell on the house grid. The entrance sits at the origin.
type GridPos struct {
	X, Y int
}

// Add returns the position shifted by o
func (p GridPos) Add(o GridPos) GridPos {
	return GridPos{X: p.X + o.X, Y: p.Y + o.Y}
}

// Step returns the neighbouring cell in the given direction
func (p GridPos) Step(d Direction) GridPos {
	return p.Add(d.Offset())
}

func (p GridPos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Package mapgen places rooms on a grid and derives the connections between
// them.
package mapgen

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/eldritchhouse/internal/catalog"
	"github.com/lawnchairsociety/eldritchhouse/internal/house"
	"github.com/lawnchairsociety/eldritchhouse/internal/logger"
)

var (
	ErrInvalidRoomCount  = errors.New("mapgen: invalid room count")
	ErrGenerationStalled = errors.New("mapgen: no compatible slot for any candidate room")
)

// DefaultMaxFailedAttempts is how many candidates in a row may be discarded
// before generation gives up
const DefaultMaxFailedAttempts = 1000

// Config contains parameters for house generation
type Config struct {
	RoomCount         int   // Total rooms including the entrance
	Seed              int64 // PRNG seed; the same seed and catalog give the same layout
	MaxFailedAttempts int   // Consecutive discarded candidates before ErrGenerationStalled
}

// DefaultConfig returns reasonable defaults for a house of the given size
func DefaultConfig(roomCount int, seed int64) *Config {
	return &Config{
		RoomCount:         roomCount,
		Seed:              seed,
		MaxFailedAttempts: DefaultMaxFailedAttempts,
	}
}

// Generator builds one layout from a catalog
type Generator struct {
	config  *Config
	catalog catalog.Catalog
	rng     *rand.Rand

	rooms    []*PlacedRoom
	occupied map[house.GridPos]*PlacedRoom
}

// NewGenerator creates a generator seeded from the config
func NewGenerator(config *Config, cat catalog.Catalog) *Generator {
	return NewGeneratorWithRand(config, cat, rand.New(rand.NewSource(config.Seed)))
}

// NewGeneratorWithRand creates a generator that draws from the given source
func NewGeneratorWithRand(config *Config, cat catalog.Catalog, rng *rand.Rand) *Generator {
	return &Generator{
		config:  config,
		catalog: cat,
		rng:     rng,
	}
}

// Generate places the configured number of rooms and derives their
// connections. On error no layout is returned.
func (g *Generator) Generate() (*Layout, error) {
	if g.config.RoomCount <= 0 || g.config.RoomCount > house.MaxRooms {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidRoomCount, g.config.RoomCount, house.MaxRooms)
	}

	entrance, err := g.catalog.Entrance()
	if err != nil {
		return nil, fmt.Errorf("failed to seed entrance: %w", err)
	}

	logger.Debug("Generating house", "rooms", g.config.RoomCount, "seed", g.config.Seed)

	g.rooms = make([]*PlacedRoom, 0, g.config.RoomCount)
	g.occupied = make(map[house.GridPos]*PlacedRoom, g.config.RoomCount)
	g.place(entrance, house.GridPos{})

	maxFailed := g.config.MaxFailedAttempts
	if maxFailed <= 0 {
		maxFailed = DefaultMaxFailedAttempts
	}

	failed := 0
	for len(g.rooms) < g.config.RoomCount {
		if !g.hasOpenSlot() {
			return nil, fmt.Errorf("%w: house closed off at %d of %d rooms", ErrGenerationStalled, len(g.rooms), g.config.RoomCount)
		}

		candidate, err := g.catalog.Random(g.rng)
		if err != nil {
			return nil, fmt.Errorf("failed to draw room: %w", err)
		}

		if g.tryPlace(candidate) {
			failed = 0
			continue
		}

		failed++
		if failed >= maxFailed {
			return nil, fmt.Errorf("%w: %d candidates discarded in a row at %d of %d rooms",
				ErrGenerationStalled, failed, len(g.rooms), g.config.RoomCount)
		}
	}

	DeriveConnections(g.rooms)

	logger.Debug("House generated", "rooms", len(g.rooms), "seed", g.config.Seed)

	return &Layout{
		Seed:     g.config.Seed,
		Rooms:    g.rooms,
		Attempts: 1,
	}, nil
}

// tryPlace puts the candidate in the first open cell whose neighbour faces it
// with a compatible direction. Placed rooms are scanned in placement order and
// directions in scan order.
func (g *Generator) tryPlace(candidate *house.RoomDefinition) bool {
	for _, origin := range g.rooms {
		for _, dir := range origin.Definition.AllowedDirections {
			target := origin.Pos.Step(dir)
			if !g.isOpen(target) {
				continue
			}
			if !candidate.Allows(dir.Opposite()) {
				continue
			}
			g.place(candidate, target)
			return true
		}
	}
	return false
}

// hasOpenSlot reports whether any placed room still has a usable doorway
func (g *Generator) hasOpenSlot() bool {
	for _, r := range g.rooms {
		for _, dir := range r.Definition.AllowedDirections {
			if g.isOpen(r.Pos.Step(dir)) {
				return true
			}
		}
	}
	return false
}

// isOpen returns true if a room may go at pos. Nothing is built below the
// entrance row.
func (g *Generator) isOpen(pos house.GridPos) bool {
	if pos.Y < 0 {
		return false
	}
	_, taken := g.occupied[pos]
	return !taken
}

func (g *Generator) place(def *house.RoomDefinition, pos house.GridPos) {
	room := NewPlacedRoom(house.RoomID(len(g.rooms)), pos, def)
	g.rooms = append(g.rooms, room)
	g.occupied[pos] = room
}

// GenerateWithRetry re-runs a stalled generation with a shifted seed. Any
// other error is returned immediately.
func GenerateWithRetry(config *Config, cat catalog.Catalog, attempts int) (*Layout, error) {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		cfg := *config
		cfg.Seed = config.Seed + int64(attempt*1000)

		layout, err := NewGenerator(&cfg, cat).Generate()
		if err == nil {
			layout.Attempts = attempt + 1
			return layout, nil
		}
		if !errors.Is(err, ErrGenerationStalled) {
			return nil, err
		}

		logger.Warning("House generation stalled", "attempt", attempt+1, "seed", cfg.Seed, "error", err)
		lastErr = err
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

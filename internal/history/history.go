// Package history runs house generation and records each outcome in the run
// store.
package history

import (
	"context"
	"errors"

	"github.com/lawnchairsociety/eldritchhouse/internal/catalog"
	"github.com/lawnchairsociety/eldritchhouse/internal/database"
	"github.com/lawnchairsociety/eldritchhouse/internal/logger"
	"github.com/lawnchairsociety/eldritchhouse/internal/mapgen"
)

// Store persists generation runs. *database.Database implements it.
type Store interface {
	RecordRun(ctx context.Context, run *database.Run) (int64, error)
}

// Generate runs mapgen.GenerateWithRetry and records the result in store.
// A nil store skips recording. Failing to record is logged, never returned.
func Generate(ctx context.Context, store Store, cfg *mapgen.Config, cat catalog.Catalog, retries int, source string) (*mapgen.Layout, error) {
	layout, err := mapgen.GenerateWithRetry(cfg, cat, retries)

	run := &database.Run{
		Seed:      cfg.Seed,
		RoomCount: cfg.RoomCount,
		Attempts:  1,
		Status:    Status(err),
		Source:    source,
	}
	if err != nil {
		run.Error = err.Error()
		// Only stalls are retried; GenerateWithRetry runs at least once
		if errors.Is(err, mapgen.ErrGenerationStalled) && retries > 1 {
			run.Attempts = retries
		}
	} else {
		run.Seed = layout.Seed
		run.Placed = len(layout.Rooms)
		run.Attempts = layout.Attempts
	}

	if store != nil {
		if _, recErr := store.RecordRun(ctx, run); recErr != nil {
			logger.Warning("Failed to record generation run", "seed", run.Seed, "error", recErr)
		}
	}

	if err != nil {
		logger.Error("House generation failed", "seed", cfg.Seed, "rooms", cfg.RoomCount, "source", source, "error", err)
		return nil, err
	}

	logger.Info("House generated", "seed", layout.Seed, "rooms", len(layout.Rooms), "attempts", layout.Attempts, "source", source)
	return layout, nil
}

// Status maps a generation error to a run status.
func Status(err error) string {
	switch {
	case err == nil:
		return database.StatusOK
	case errors.Is(err, mapgen.ErrGenerationStalled):
		return database.StatusStalled
	default:
		return database.StatusFailed
	}
}

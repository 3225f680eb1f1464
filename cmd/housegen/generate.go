package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lawnchairsociety/eldritchhouse/internal/catalog"
	"github.com/lawnchairsociety/eldritchhouse/internal/config"
	"github.com/lawnchairsociety/eldritchhouse/internal/history"
	"github.com/lawnchairsociety/eldritchhouse/internal/logger"
	"github.com/lawnchairsociety/eldritchhouse/internal/mapgen"
)

var (
	genRooms   int
	genSeed    int64
	genCatalog string
	genOutput  string
	genInput   string
	genLegend  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a house and print its map",
	Long: `Generate a house from the configured catalog and print it as an ASCII
map followed by a room listing. Use --input to print a previously saved
layout instead of generating one.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&genRooms, "rooms", 0, "Number of rooms including the entrance (default from config)")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "Generation seed (default from config, 0 for random)")
	generateCmd.Flags().StringVar(&genCatalog, "catalog", "", "Path to room catalog YAML file (default built-in)")
	generateCmd.Flags().StringVar(&genOutput, "output", "", "Save the layout to this YAML file")
	generateCmd.Flags().StringVar(&genInput, "input", "", "Print a saved layout instead of generating")
	generateCmd.Flags().BoolVar(&genLegend, "legend", true, "Show legend")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	applyGenerateFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}

	var layout *mapgen.Layout
	if genInput != "" {
		layout, err = mapgen.LoadLayout(genInput, cat)
		if err != nil {
			return err
		}
		logger.Info("Layout loaded", "path", genInput, "rooms", len(layout.Rooms))
	} else {
		layout, err = generate(cmd.Context(), cfg, cat)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "House seed %d, %d rooms", layout.Seed, len(layout.Rooms))
	if layout.Attempts > 0 {
		fmt.Fprintf(out, ", %d attempt(s)", layout.Attempts)
	}
	fmt.Fprint(out, "\n\n")
	fmt.Fprint(out, mapgen.Render(layout))
	fmt.Fprintln(out)
	fmt.Fprint(out, mapgen.RenderDetails(layout))
	if genLegend {
		fmt.Fprint(out, mapgen.Legend())
	}

	if genOutput != "" {
		if err := mapgen.SaveLayout(layout, genOutput); err != nil {
			return err
		}
		logger.Info("Layout saved", "path", genOutput)
	}
	return nil
}

// applyGenerateFlags lets explicitly set flags override the config file.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.HouseConfig) {
	if cmd.Flags().Changed("rooms") {
		cfg.Generation.RoomCount = genRooms
	}
	if cmd.Flags().Changed("seed") {
		cfg.Generation.Seed = genSeed
	}
	if cmd.Flags().Changed("catalog") {
		cfg.Catalog.Path = genCatalog
	}
}

func generate(ctx context.Context, cfg *config.HouseConfig, cat catalog.Catalog) (*mapgen.Layout, error) {
	db, err := openHistory(cfg.History)
	if err != nil {
		logger.Warning("Generation history unavailable", "error", err)
	}

	var store history.Store
	if db != nil {
		defer db.Close()
		store = db
	}

	genConfig := &mapgen.Config{
		RoomCount:         cfg.Generation.RoomCount,
		Seed:              cfg.Generation.ResolveSeed(),
		MaxFailedAttempts: cfg.Generation.MaxFailedAttempts,
	}
	return history.Generate(ctx, store, genConfig, cat, cfg.Generation.Retries, "cli")
}

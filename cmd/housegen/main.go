// Command housegen generates procedural house layouts, serves them to
// WebSocket and telnet clients, and reports on past generation runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lawnchairsociety/eldritchhouse/internal/catalog"
	"github.com/lawnchairsociety/eldritchhouse/internal/config"
	"github.com/lawnchairsociety/eldritchhouse/internal/database"
	"github.com/lawnchairsociety/eldritchhouse/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "housegen",
	Short: "Procedural house generator",
	Long: `housegen grows a house of rooms outward from its entrance on a grid,
choosing rooms from a catalog with a seeded random source. The same seed
and catalog always produce the same house.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "data/house.yaml", "Path to config YAML file")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

// setup loads the config file and starts logging from its logging section.
func setup() (*config.HouseConfig, error) {
	logConfig, _ := logger.LoadConfig(configPath)
	if err := logger.Initialize(logConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadCatalog returns the manifest named by cfg, or the built-in catalog.
func loadCatalog(cfg config.CatalogConfig) (catalog.Catalog, error) {
	if cfg.Path == "" {
		logger.Debug("Using built-in room catalog")
		return catalog.Default(), nil
	}

	cat, err := catalog.LoadFromFile(cfg.Path, cfg.Entrance)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("Room catalog loaded", "path", cfg.Path, "rooms", cat.Len())
	return cat, nil
}

// openHistory opens the run store, or returns nil when history is disabled.
func openHistory(cfg config.HistoryConfig) (*database.Database, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	db, err := database.Open(cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return db, nil
}

package catalog

import (
	"fmt"
	"os"

	"github.com/lawnchairsociety/eldritchhouse/internal/house"
	"gopkg.in/yaml.v3"
)

// ManifestConfig is the on-disk room manifest. JSON manifests parse as well,
// since yaml.v3 reads JSON documents.
type ManifestConfig struct {
	Items []RoomConfigYAML `yaml:"items"`
}

// RoomConfigYAML is one room type in the manifest
type RoomConfigYAML struct {
	RoomName          string            `yaml:"room_name"`
	AllowedDirections []house.Direction `yaml:"allowed_directions"`
}

// LoadFromFile reads a manifest and builds a catalog from it
func LoadFromFile(filename, entranceName string) (*Static, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read room manifest: %w", err)
	}
	return Parse(data, entranceName)
}

// Parse builds a catalog from manifest bytes
func Parse(data []byte, entranceName string) (*Static, error) {
	var manifest ManifestConfig
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse room manifest: %w", err)
	}
	return CreateCatalog(&manifest, entranceName)
}

// CreateCatalog converts a parsed manifest into a catalog
func CreateCatalog(manifest *ManifestConfig, entranceName string) (*Static, error) {
	if manifest == nil || len(manifest.Items) == 0 {
		return nil, ErrCatalogEmpty
	}

	defs := make([]*house.RoomDefinition, 0, len(manifest.Items))
	for _, item := range manifest.Items {
		defs = append(defs, house.NewRoomDefinition(item.RoomName, item.AllowedDirections...))
	}

	c, err := New(entranceName, defs...)
	if err != nil {
		return nil, err
	}

	// Fail early rather than on the first generation
	if _, err := c.Entrance(); err != nil {
		return nil, err
	}
	return c, nil
}

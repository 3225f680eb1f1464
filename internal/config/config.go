package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lawnchairsociety/eldritchhouse/internal/database"
	"github.com/lawnchairsociety/eldritchhouse/internal/throttle"
	"gopkg.in/yaml.v3"
)

// HouseConfig is the housegen configuration file.
type HouseConfig struct {
	Generation GenerationConfig `yaml:"generation"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Server     ServerConfig     `yaml:"server"`
	History    HistoryConfig    `yaml:"history"`
}

// GenerationConfig controls the layout generator.
type GenerationConfig struct {
	// RoomCount is the number of rooms including the entrance (1..256).
	RoomCount int `yaml:"room_count"`

	// Seed for the generator's RNG. 0 picks one from the clock.
	Seed int64 `yaml:"seed"`

	// MaxFailedAttempts is how many consecutive draws may fail to place
	// before generation gives up.
	MaxFailedAttempts int `yaml:"max_failed_attempts"`

	// Retries is how many seeds are tried when a run stalls.
	Retries int `yaml:"retries"`
}

// CatalogConfig selects the room catalog.
type CatalogConfig struct {
	// Path to a YAML or JSON manifest. Empty uses the built-in catalog.
	Path string `yaml:"path"`

	// Entrance is the name of the room type placed first.
	Entrance string `yaml:"entrance"`
}

// ServerConfig holds the session server settings.
type ServerConfig struct {
	// Addr is the HTTP listen address serving /ws.
	Addr string `yaml:"addr"`

	// TelnetAddr is an optional plain TCP listener speaking the same line
	// protocol. Empty disables it.
	TelnetAddr string `yaml:"telnet_addr"`

	Connections ConnectionsConfig `yaml:"connections"`

	// Regen limits how often one session may regenerate its house.
	Regen throttle.Config `yaml:"regen"`

	WebSocketConfig `yaml:",inline"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent sessions from a single IP address.
	// 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum concurrent sessions. 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// HistoryConfig controls the run history store.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`

	database.Config `yaml:",inline"`
}

// DefaultConfig returns a HouseConfig with the defaults used when no file is given.
func DefaultConfig() *HouseConfig {
	return &HouseConfig{
		Generation: GenerationConfig{
			RoomCount:         12,
			Seed:              0,
			MaxFailedAttempts: 1000,
			Retries:           5,
		},
		Catalog: CatalogConfig{
			Entrance: "entrance",
		},
		Server: ServerConfig{
			Addr: ":4443",
			Connections: ConnectionsConfig{
				MaxPerIP: 3,
				MaxTotal: 100,
			},
			Regen: throttle.DefaultConfig(),
			WebSocketConfig: WebSocketConfig{
				AllowedOrigins: []string{}, // Same-origin only by default
				MaxMessageSize: 4096,
			},
		},
		History: HistoryConfig{
			Enabled: true,
			Config:  database.DefaultConfig("data/history.db"),
		},
	}
}

// LoadConfig loads configuration from a YAML file over the defaults.
// A missing file returns the defaults.
func LoadConfig(path string) (*HouseConfig, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return config, nil
}

// Validate checks every section.
func (c *HouseConfig) Validate() error {
	g := c.Generation
	if g.RoomCount < 1 || g.RoomCount > 256 {
		return fmt.Errorf("generation.room_count must be between 1 and 256, got %d", g.RoomCount)
	}
	if g.MaxFailedAttempts <= 0 {
		return fmt.Errorf("generation.max_failed_attempts must be positive, got %d", g.MaxFailedAttempts)
	}
	if g.Retries <= 0 {
		return fmt.Errorf("generation.retries must be positive, got %d", g.Retries)
	}
	if c.Catalog.Entrance == "" {
		return fmt.Errorf("catalog.entrance must not be empty")
	}
	if c.Server.MaxMessageSize <= 0 {
		return fmt.Errorf("server.max_message_size must be positive")
	}
	if r := c.Server.Regen; r.Enabled && (r.MaxEvents < 0 || r.Window < 0 || r.RepeatCooldown < 0) {
		return fmt.Errorf("server.regen limits must not be negative")
	}
	if c.History.Enabled {
		if err := c.History.Config.Validate(); err != nil {
			return fmt.Errorf("history: %w", err)
		}
	}
	return nil
}

// ResolveSeed returns the configured seed, or a clock-derived one when it is 0.
func (g GenerationConfig) ResolveSeed() int64 {
	if g.Seed != 0 {
		return g.Seed
	}
	return time.Now().UnixNano()
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means a non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}

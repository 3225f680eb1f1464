package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Generation.RoomCount != 12 {
		t.Errorf("expected room count 12, got %d", cfg.Generation.RoomCount)
	}
	if cfg.Generation.MaxFailedAttempts != 1000 {
		t.Errorf("expected max failed attempts 1000, got %d", cfg.Generation.MaxFailedAttempts)
	}
	if cfg.Catalog.Entrance != "entrance" {
		t.Errorf("expected entrance %q, got %q", "entrance", cfg.Catalog.Entrance)
	}
	if cfg.Server.Addr != ":4443" {
		t.Errorf("expected addr :4443, got %s", cfg.Server.Addr)
	}
	if cfg.Server.TelnetAddr != "" {
		t.Errorf("telnet should be off by default, got %q", cfg.Server.TelnetAddr)
	}
	if cfg.Server.Connections.MaxPerIP != 3 || cfg.Server.Connections.MaxTotal != 100 {
		t.Errorf("unexpected connection limits: %+v", cfg.Server.Connections)
	}
	if len(cfg.Server.AllowedOrigins) != 0 {
		t.Errorf("expected empty allowed origins by default, got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.MaxMessageSize != 4096 {
		t.Errorf("expected max message size 4096, got %d", cfg.Server.MaxMessageSize)
	}
	if !cfg.History.Enabled || cfg.History.Driver != "sqlite" || cfg.History.SQLitePath != "data/history.db" {
		t.Errorf("unexpected history defaults: %+v", cfg.History)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/housegen.yaml")
	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}
	if cfg == nil || cfg.Generation.RoomCount != 12 {
		t.Fatalf("expected default config for missing file, got %+v", cfg)
	}

	cfg, err = LoadConfig("")
	if err != nil || cfg.Generation.RoomCount != 12 {
		t.Errorf("LoadConfig(\"\") = %+v, %v", cfg, err)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "housegen.yaml")

	content := `
generation:
  room_count: 40
  seed: 1234
catalog:
  path: rooms.yaml
  entrance: foyer
server:
  addr: "127.0.0.1:9000"
  telnet_addr: ":4000"
  connections:
    max_total: 10
  regen:
    enabled: true
    max_events: 2
    window: 1m
  allowed_origins:
    - "https://example.com"
    - "http://localhost:3000"
  max_message_size: 8192
history:
  enabled: true
  driver: postgres
  postgres:
    host: db.internal
    port: 5433
    database: houses
    conn_max_lifetime: 2m
logging:
  level: DEBUG
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Generation.RoomCount != 40 || cfg.Generation.Seed != 1234 {
		t.Errorf("generation = %+v", cfg.Generation)
	}
	if cfg.Generation.MaxFailedAttempts != 1000 {
		t.Errorf("unset max_failed_attempts should keep default, got %d", cfg.Generation.MaxFailedAttempts)
	}
	if cfg.Catalog.Path != "rooms.yaml" || cfg.Catalog.Entrance != "foyer" {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.TelnetAddr != ":4000" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.Connections.MaxTotal != 10 || cfg.Server.Connections.MaxPerIP != 3 {
		t.Errorf("connections = %+v", cfg.Server.Connections)
	}
	if r := cfg.Server.Regen; r.MaxEvents != 2 || r.Window != time.Minute || r.RepeatCooldown != 10*time.Second {
		t.Errorf("regen = %+v", r)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("allowed origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.MaxMessageSize != 8192 {
		t.Errorf("expected max message size 8192, got %d", cfg.Server.MaxMessageSize)
	}
	if cfg.History.Driver != "postgres" || cfg.History.Postgres.Host != "db.internal" || cfg.History.Postgres.Port != 5433 {
		t.Errorf("history = %+v", cfg.History)
	}
	if cfg.History.Postgres.ConnMaxLifetime != 2*time.Minute {
		t.Errorf("conn_max_lifetime = %v", cfg.History.Postgres.ConnMaxLifetime)
	}
	if cfg.History.Postgres.SSLMode != "disable" {
		t.Errorf("unset sslmode should keep default, got %q", cfg.History.Postgres.SSLMode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("generation: [not, a, map"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err == nil {
		t.Error("expected parse error")
	}
	if cfg == nil || cfg.Generation.RoomCount != 12 {
		t.Error("expected defaults alongside the parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *HouseConfig)
	}{
		{"zero rooms", func(c *HouseConfig) { c.Generation.RoomCount = 0 }},
		{"too many rooms", func(c *HouseConfig) { c.Generation.RoomCount = 257 }},
		{"no attempts", func(c *HouseConfig) { c.Generation.MaxFailedAttempts = 0 }},
		{"no retries", func(c *HouseConfig) { c.Generation.Retries = 0 }},
		{"no entrance", func(c *HouseConfig) { c.Catalog.Entrance = "" }},
		{"no message size", func(c *HouseConfig) { c.Server.MaxMessageSize = 0 }},
		{"negative regen window", func(c *HouseConfig) { c.Server.Regen.Window = -time.Second }},
		{"bad history driver", func(c *HouseConfig) { c.History.Driver = "mongo" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted a bad config")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.History.Enabled = false
	cfg.History.Driver = "mongo"
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled history should not be validated: %v", err)
	}

	cfg.Generation.RoomCount = 256
	if err := cfg.Validate(); err != nil {
		t.Errorf("256 rooms should be valid: %v", err)
	}
}

func TestResolveSeed(t *testing.T) {
	g := GenerationConfig{Seed: 77}
	if g.ResolveSeed() != 77 {
		t.Errorf("ResolveSeed() = %d, want 77", g.ResolveSeed())
	}

	g.Seed = 0
	if g.ResolveSeed() == 0 {
		t.Error("ResolveSeed() returned 0 for a clock seed")
	}
}

func TestIsOriginAllowed_EmptyList_SameOrigin(t *testing.T) {
	cfg := WebSocketConfig{
		AllowedOrigins: []string{},
	}

	if !cfg.IsOriginAllowed("", "localhost:4443") {
		t.Error("expected empty origin to be allowed (same-origin)")
	}
	if !cfg.IsOriginAllowed("http://localhost:4443", "localhost:4443") {
		t.Error("expected matching origin to be allowed (same-origin)")
	}
	if cfg.IsOriginAllowed("http://evil.com", "localhost:4443") {
		t.Error("expected different origin to be rejected (same-origin policy)")
	}
}

func TestIsOriginAllowed_Wildcard(t *testing.T) {
	cfg := WebSocketConfig{
		AllowedOrigins: []string{"*"},
	}

	if !cfg.IsOriginAllowed("http://anything.com", "localhost:4443") {
		t.Error("expected wildcard to allow any origin")
	}
	if !cfg.IsOriginAllowed("", "localhost:4443") {
		t.Error("expected wildcard to allow empty origin")
	}
}

func TestIsOriginAllowed_ExactMatch(t *testing.T) {
	cfg := WebSocketConfig{
		AllowedOrigins: []string{
			"https://example.com",
			"http://localhost:3000",
		},
	}

	if !cfg.IsOriginAllowed("https://example.com", "localhost:4443") {
		t.Error("expected exact match to be allowed")
	}
	if !cfg.IsOriginAllowed("http://localhost:3000", "localhost:4443") {
		t.Error("expected exact match to be allowed")
	}
	if cfg.IsOriginAllowed("http://evil.com", "localhost:4443") {
		t.Error("expected non-matching origin to be rejected")
	}
	if cfg.IsOriginAllowed("https://example.com:8080", "localhost:4443") {
		t.Error("expected partial match to be rejected")
	}
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		origin      string
		requestHost string
		expected    bool
	}{
		{"", "localhost:4443", true},                       // No origin header
		{"http://localhost:4443", "localhost:4443", true},  // HTTP match
		{"https://localhost:4443", "localhost:4443", true}, // HTTPS match
		{"http://localhost:4443/", "localhost:4443", true}, // Trailing slash
		{"http://example.com", "localhost:4443", false},    // Different host
		{"http://localhost:3000", "localhost:4443", false}, // Different port
		{"ws://localhost:4443", "localhost:4443", true},    // WebSocket scheme
	}

	for _, tt := range tests {
		result := isSameOrigin(tt.origin, tt.requestHost)
		if result != tt.expected {
			t.Errorf("isSameOrigin(%q, %q) = %v, want %v",
				tt.origin, tt.requestHost, result, tt.expected)
		}
	}
}

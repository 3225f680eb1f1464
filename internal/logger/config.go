package logger

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled *bool  `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

// LoggingConfig wraps the Config for YAML parsing. It is the `logging:`
// section of the housegen config file.
type LoggingConfig struct {
	Logging Config `yaml:"logging"`
}

// DefaultConfig returns console-only text logging at INFO
func DefaultConfig() Config {
	enabled := true
	return Config{
		Level:          "INFO",
		ConsoleEnabled: &enabled,
		ConsoleFormat:  "text",
		FileEnabled:    false,
		FilePath:       "logs/housegen.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// IsConsoleEnabled reports whether console output is on. Unset means on.
func (c Config) IsConsoleEnabled() bool {
	return c.ConsoleEnabled == nil || *c.ConsoleEnabled
}

// LoadConfig loads logging configuration from a YAML file
// and applies environment variable overrides
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			var loaded LoggingConfig
			if err := yaml.Unmarshal(data, &loaded); err == nil {
				config = merge(config, loaded.Logging)
			}
		}
		// Silently use defaults if file doesn't exist or can't be parsed
	}

	applyEnv(&config)
	return config, nil
}

// merge overlays the fields set in loaded onto base
func merge(base, loaded Config) Config {
	if loaded.Level != "" {
		base.Level = loaded.Level
	}
	if loaded.ConsoleEnabled != nil {
		base.ConsoleEnabled = loaded.ConsoleEnabled
	}
	if loaded.ConsoleFormat != "" {
		base.ConsoleFormat = loaded.ConsoleFormat
	}
	base.FileEnabled = loaded.FileEnabled
	if loaded.FilePath != "" {
		base.FilePath = loaded.FilePath
	}
	if loaded.FileFormat != "" {
		base.FileFormat = loaded.FileFormat
	}
	if loaded.FileMaxSizeMB > 0 {
		base.FileMaxSizeMB = loaded.FileMaxSizeMB
	}
	if loaded.FileMaxBackups > 0 {
		base.FileMaxBackups = loaded.FileMaxBackups
	}
	if loaded.FileMaxAgeDays > 0 {
		base.FileMaxAgeDays = loaded.FileMaxAgeDays
	}
	return base
}

// applyEnv applies HOUSE_LOG_* overrides
func applyEnv(config *Config) {
	if level := os.Getenv("HOUSE_LOG_LEVEL"); level != "" {
		config.Level = level
	}

	if format := os.Getenv("HOUSE_LOG_CONSOLE_FORMAT"); format != "" {
		config.ConsoleFormat = format
	}

	if fileEnabled := os.Getenv("HOUSE_LOG_FILE_ENABLED"); fileEnabled != "" {
		if enabled, err := strconv.ParseBool(fileEnabled); err == nil {
			config.FileEnabled = enabled
		}
	}

	if filePath := os.Getenv("HOUSE_LOG_FILE_PATH"); filePath != "" {
		config.FilePath = filePath
	}
}

// Package config provides configuration loading, validation, and management
// for the commitboard server. It handles reading from a YAML file, BOARD_*
// environment variable overrides, default values, and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	errs "github.com/edgard/commitboard/internal/errors"
)

// Config defines the application configuration parameters.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Board       BoardConfig       `mapstructure:"board"`
	GitHub      GitHubConfig      `mapstructure:"github"`
	Mirrors     []MirrorConfig    `mapstructure:"mirrors" validate:"dive"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=1s,max=5m"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=1s,max=5m"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s,max=5m"`
}

// DatabaseConfig controls the local SQLite store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// BoardConfig controls the aggregated message view.
type BoardConfig struct {
	// MessageLimit caps the number of messages returned by GET /messages.
	MessageLimit int `mapstructure:"message_limit" validate:"min=1,max=500"`
}

// GitHubConfig holds credentials and transport settings shared by all mirrors.
type GitHubConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"url"`
	// Token is usually supplied via BOARD_GITHUB_TOKEN or a .env file.
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1s,max=5m"`
}

// MirrorConfig identifies one mirror repository. No two mirrors may share
// (owner, name).
type MirrorConfig struct {
	Owner  string `mapstructure:"owner" validate:"required"`
	Name   string `mapstructure:"name" validate:"required"`
	Branch string `mapstructure:"branch"`
	Path   string `mapstructure:"path"`
}

// MaintenanceConfig controls the scheduled database maintenance task.
type MaintenanceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// LoadConfig reads configuration from the given YAML file (optional), applies
// BOARD_* environment overrides and defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix("BOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults plus env carry the day.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, errs.NewConfigError("failed to read config file", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.NewConfigError("failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration, including the cross-field rule that a
// token must be present whenever mirrors are configured.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errs.NewConfigError("configuration validation failed", err)
	}

	if len(c.Mirrors) > 0 && c.GitHub.Token == "" {
		return errs.NewConfigError("github.token is required when mirrors are configured", nil)
	}

	if c.Maintenance.Enabled && c.Maintenance.Schedule == "" {
		return errs.NewConfigError("maintenance.schedule is required when maintenance is enabled", nil)
	}

	seen := make(map[string]struct{}, len(c.Mirrors))
	for _, m := range c.Mirrors {
		key := m.Owner + "/" + m.Name
		if _, dup := seen[key]; dup {
			return errs.NewConfigError(fmt.Sprintf("duplicate mirror %s", key), nil)
		}
		seen[key] = struct{}{}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", "messages.db")

	v.SetDefault("board.message_limit", 50)

	v.SetDefault("github.base_url", "https://api.github.com")
	// An explicit empty default keeps github.token visible to AutomaticEnv:
	// viper only consults the environment for keys it already knows about, and
	// the token is usually supplied via BOARD_GITHUB_TOKEN alone.
	v.SetDefault("github.token", "")
	v.SetDefault("github.timeout", 10*time.Second)

	v.SetDefault("maintenance.enabled", false)
	v.SetDefault("maintenance.schedule", "0 0 4 * * *")
}

package config

import (
	"github.com/nibzard/taskgrid/internal/store"
	"github.com/nibzard/taskgrid/internal/tree"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, user file first.
	Files []string
}

// Default values.
const (
	DefaultLogDir     = "~/.taskgrid"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultDriver     = store.DriverFile
	DefaultStateDir   = ".taskgrid"
	DefaultSQLiteFile = "taskgrid.db"
	DefaultKey        = "taskGridV2"
	DefaultRedisAddr  = "localhost:6379"
)

// Config holds the full configuration for taskgrid.
type Config struct {
	// Logging
	LogLevel      string `toml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat     string `toml:"log_format" validate:"oneof=text json logfmt"`
	LogDir        string `toml:"log_dir"`
	LogTimestamps bool   `toml:"log_timestamps"`

	// Command run after every save
	HookCommand string `toml:"hook_command"`

	Storage StorageConfig `toml:"storage"`
	Layout  LayoutConfig  `toml:"layout"`

	// Project root (computed)
	ProjectRoot string `toml:"-" validate:"-"`
}

// StorageConfig selects where the snapshot lives.
type StorageConfig struct {
	Driver string `toml:"driver" validate:"oneof=file sqlite redis"`
	// Path is a directory for the file driver and a database file for sqlite.
	// Left empty it defaults per driver.
	Path          string `toml:"path" validate:"required_unless=Driver redis"`
	Key           string `toml:"key" validate:"required"`
	RedisAddr     string `toml:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db" validate:"gte=0,lte=15"`
}

// LayoutConfig holds the constants that bound splitting.
type LayoutConfig struct {
	BaseFont   int     `toml:"base_font" validate:"gte=1"`
	DepthScale float64 `toml:"depth_scale" validate:"gt=0,lte=1"`
	MinFont    int     `toml:"min_font" validate:"gte=1"`
	MaxDepth   int     `toml:"max_depth" validate:"gte=0,lte=32"`
}

// Limits converts the layout settings for the tree model.
func (l LayoutConfig) Limits() tree.Limits {
	return tree.Limits{
		BaseFont:   l.BaseFont,
		DepthScale: l.DepthScale,
		MinFont:    l.MinFont,
		MaxDepth:   l.MaxDepth,
	}
}

// StoreOptions converts the storage settings for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Driver:        c.Storage.Driver,
		Path:          c.Storage.Path,
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: c.Storage.RedisPassword,
		RedisDB:       c.Storage.RedisDB,
	}
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"log_level",
		"log_format",
		"log_dir",
		"log_timestamps",
		"hook_command",
		"storage.driver",
		"storage.path",
		"storage.key",
		"storage.redis_addr",
		"storage.redis_password",
		"storage.redis_db",
		"layout.base_font",
		"layout.depth_scale",
		"layout.min_font",
		"layout.max_depth",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}

// Value returns the current value of a configurable field for display.
func (c *Config) Value(field string) interface{} {
	switch field {
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_dir":
		return c.LogDir
	case "log_timestamps":
		return c.LogTimestamps
	case "hook_command":
		return c.HookCommand
	case "storage.driver":
		return c.Storage.Driver
	case "storage.path":
		return c.Storage.Path
	case "storage.key":
		return c.Storage.Key
	case "storage.redis_addr":
		return c.Storage.RedisAddr
	case "storage.redis_password":
		if c.Storage.RedisPassword != "" {
			return "********"
		}
		return ""
	case "storage.redis_db":
		return c.Storage.RedisDB
	case "layout.base_font":
		return c.Layout.BaseFont
	case "layout.depth_scale":
		return c.Layout.DepthScale
	case "layout.min_font":
		return c.Layout.MinFont
	case "layout.max_depth":
		return c.Layout.MaxDepth
	}
	return nil
}

package config

import (
	"flag"
)

// RegisterFlags binds the global flags to cfg. Defaults shown in -help are the
// values already in cfg, so call it after defaults, files and environment
// have been applied.
func RegisterFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Console log format (text, json, logfmt)")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory for run logs (empty disables)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in console logs")
	fs.StringVar(&cfg.HookCommand, "hook", cfg.HookCommand, "Command to run after every save")

	fs.StringVar(&cfg.Storage.Driver, "driver", cfg.Storage.Driver, "Storage driver (file, sqlite, redis)")
	fs.StringVar(&cfg.Storage.Path, "state", cfg.Storage.Path, "State directory (file) or database path (sqlite)")
	fs.StringVar(&cfg.Storage.Key, "key", cfg.Storage.Key, "Storage key of the snapshot")
	fs.StringVar(&cfg.Storage.RedisAddr, "redis-addr", cfg.Storage.RedisAddr, "Redis address")
	fs.IntVar(&cfg.Storage.RedisDB, "redis-db", cfg.Storage.RedisDB, "Redis database number")

	fs.IntVar(&cfg.Layout.BaseFont, "base-font", cfg.Layout.BaseFont, "Font size at depth 0")
	fs.Float64Var(&cfg.Layout.DepthScale, "depth-scale", cfg.Layout.DepthScale, "Font scale factor per depth level")
	fs.IntVar(&cfg.Layout.MinFont, "min-font", cfg.Layout.MinFont, "Smallest legible font size")
	fs.IntVar(&cfg.Layout.MaxDepth, "max-depth", cfg.Layout.MaxDepth, "Maximum tree depth")
}

// flagFields maps flag names to config field names for source tracking.
var flagFields = map[string]string{
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-dir":        "log_dir",
	"log-timestamps": "log_timestamps",
	"hook":           "hook_command",
	"driver":         "storage.driver",
	"state":          "storage.path",
	"key":            "storage.key",
	"redis-addr":     "storage.redis_addr",
	"redis-db":       "storage.redis_db",
	"base-font":      "layout.base_font",
	"depth-scale":    "layout.depth_scale",
	"min-font":       "layout.min_font",
	"max-depth":      "layout.max_depth",
}

// parseFlags registers and parses the global flags, marking every flag that
// was explicitly set as coming from the command line.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	RegisterFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}

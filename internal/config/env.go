package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvLogLevel      = "TASKGRID_LOG_LEVEL"
	EnvLogFormat     = "TASKGRID_LOG_FORMAT"
	EnvLogDir        = "TASKGRID_LOG_DIR"
	EnvLogTimestamps = "TASKGRID_LOG_TIMESTAMPS"
	EnvHook          = "TASKGRID_HOOK"
	EnvDriver        = "TASKGRID_STORAGE"
	EnvState         = "TASKGRID_STATE"
	EnvKey           = "TASKGRID_KEY"
	EnvRedisAddr     = "TASKGRID_REDIS_ADDR"
	EnvRedisPassword = "TASKGRID_REDIS_PASSWORD"
	EnvRedisDB       = "TASKGRID_REDIS_DB"
	EnvBaseFont      = "TASKGRID_BASE_FONT"
	EnvDepthScale    = "TASKGRID_DEPTH_SCALE"
	EnvMinFont       = "TASKGRID_MIN_FONT"
	EnvMaxDepth      = "TASKGRID_MAX_DEPTH"
)

// loadFromEnv overrides config from environment variables and records
// which fields were set. Malformed numbers are reported rather than ignored.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	str := func(env, field string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
			sources[field] = SourceEnv
		}
	}
	num := func(env, field string, dst *int) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", env, v)
		}
		*dst = n
		sources[field] = SourceEnv
		return nil
	}

	str(EnvLogLevel, "log_level", &cfg.LogLevel)
	str(EnvLogFormat, "log_format", &cfg.LogFormat)
	if v, ok := os.LookupEnv(EnvLogDir); ok {
		// An explicitly empty value disables run logs.
		cfg.LogDir = v
		sources["log_dir"] = SourceEnv
	}
	if v := os.Getenv(EnvLogTimestamps); v != "" {
		b, ok := parseBool(v)
		if !ok {
			return fmt.Errorf("%s: %q is not a boolean", EnvLogTimestamps, v)
		}
		cfg.LogTimestamps = b
		sources["log_timestamps"] = SourceEnv
	}
	str(EnvHook, "hook_command", &cfg.HookCommand)

	str(EnvDriver, "storage.driver", &cfg.Storage.Driver)
	str(EnvState, "storage.path", &cfg.Storage.Path)
	str(EnvKey, "storage.key", &cfg.Storage.Key)
	str(EnvRedisAddr, "storage.redis_addr", &cfg.Storage.RedisAddr)
	str(EnvRedisPassword, "storage.redis_password", &cfg.Storage.RedisPassword)
	if err := num(EnvRedisDB, "storage.redis_db", &cfg.Storage.RedisDB); err != nil {
		return err
	}

	if err := num(EnvBaseFont, "layout.base_font", &cfg.Layout.BaseFont); err != nil {
		return err
	}
	if v := os.Getenv(EnvDepthScale); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", EnvDepthScale, v)
		}
		cfg.Layout.DepthScale = f
		sources["layout.depth_scale"] = SourceEnv
	}
	if err := num(EnvMinFont, "layout.min_font", &cfg.Layout.MinFont); err != nil {
		return err
	}
	return num(EnvMaxDepth, "layout.max_depth", &cfg.Layout.MaxDepth)
}

// parseBool accepts the usual strconv spellings plus yes/no and on/off.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, true
	case "0", "f", "false", "no", "n", "off":
		return false, true
	}
	return false, false
}

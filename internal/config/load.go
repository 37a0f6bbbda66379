package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/taskgrid/internal/store"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskgrid/taskgrid.toml or OS-specific config dir)
// 3. Project config file (taskgrid.toml or .taskgrid.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	loaded, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return loaded.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	out := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	cfg := out.Config

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		out.Sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, out.Sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
		out.Files = append(out.Files, path)
	}

	// 3. Try to load from project config file (overrides user config)
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, out.Sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
		out.Files = append(out.Files, path)
	}

	// 4. Override from environment
	if err := loadFromEnv(cfg, out.Sources); err != nil {
		return nil, err
	}

	// 5. Parse CLI flags (they override everything)
	if fs != nil {
		if err := parseFlags(cfg, fs, args, out.Sources); err != nil {
			return nil, fmt.Errorf("parsing flags: %w", err)
		}
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return out, nil
}

// loadConfigFile decodes a TOML file on top of cfg. Only keys present in the
// file overwrite earlier values, so sources are taken from the decoder metadata.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	for _, key := range md.Keys() {
		name := key.String()
		if _, ok := sources[name]; ok {
			sources[name] = source
		}
	}
	return nil
}

// finalizeConfig computes derived values and resolves paths.
func finalizeConfig(cfg *Config) error {
	cfg.LogDir = expandPath(cfg.LogDir)

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	if cfg.Storage.Path == "" {
		switch cfg.Storage.Driver {
		case store.DriverFile:
			cfg.Storage.Path = DefaultStateDir
		case store.DriverSQLite:
			cfg.Storage.Path = filepath.Join(DefaultStateDir, DefaultSQLiteFile)
		}
	}
	if cfg.Storage.Path != "" {
		cfg.Storage.Path = expandPath(cfg.Storage.Path)
		if !filepath.IsAbs(cfg.Storage.Path) {
			cfg.Storage.Path = filepath.Join(cfg.ProjectRoot, cfg.Storage.Path)
		}
	}

	return nil
}

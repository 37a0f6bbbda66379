// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.taskgrid/taskgrid.toml or OS-specific config directory)
// 3. Project config file (taskgrid.toml or .taskgrid.toml in the working directory)
// 4. Environment variables (TASKGRID_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.taskgrid/taskgrid.toml (preferred)
// - Windows: %APPDATA%\taskgrid\taskgrid.toml
// - macOS: ~/Library/Application Support/taskgrid/taskgrid.toml
// - Linux/BSD: $XDG_CONFIG_HOME/taskgrid/taskgrid.toml or ~/.config/taskgrid/taskgrid.toml
//
// Project-level config locations (overrides user config):
// - ./taskgrid.toml (preferred)
// - ./.taskgrid.toml
package config

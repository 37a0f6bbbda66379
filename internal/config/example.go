package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskgrid configuration file
# Values can be overridden by TASKGRID_* environment variables or CLI flags

# Console log level: debug, info, warn, error
log_level = "info"

# Console log format: text, json, logfmt
log_format = "text"

# Run log directory (supports ~ expansion); "" disables run logs
log_dir = "~/.taskgrid"

# Show timestamps in console logs
log_timestamps = false

# Command run after every save; receives the snapshot on stdin
# hook_command = "/path/to/hook.sh"

[storage]
# Backend: file, sqlite, redis
driver = "file"

# Directory for the file driver, database file for sqlite
# (relative to the project root)
# path = ".taskgrid"

# Key the snapshot is stored under
key = "taskGridV2"

# Redis connection (driver = "redis")
redis_addr = "localhost:6379"
redis_db = 0
# redis_password = ""

[layout]
# Font size at depth 0
base_font = 16

# Font shrinks by this factor per level
depth_scale = 0.85

# Nodes whose children would fall below this size cannot be split
min_font = 10

# Hard depth limit
max_depth = 5
`
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/nibzard/taskgrid/internal/config"
	"github.com/nibzard/taskgrid/internal/logging"
)

// configCommand prints the effective configuration and where each value
// came from.
func (c *cli) configCommand(args []string) error {
	fs := newFlagSet("config", c)
	example := fs.Bool("example", false, "Print an example config file")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(c.stdout, config.ExampleConfig())
		return nil
	}

	fmt.Fprintln(c.stdout, "Config files:")
	if len(c.sources.Files) == 0 {
		fmt.Fprintln(c.stdout, "  (none)")
	}
	for _, f := range c.sources.Files {
		fmt.Fprintf(c.stdout, "  %s\n", f)
	}
	fmt.Fprintln(c.stdout)

	fmt.Fprintln(c.stdout, "Settings:")
	for _, field := range config.Fields() {
		value := fmt.Sprintf("%v", c.cfg.Value(field))
		if value == "" {
			value = `""`
		}
		fmt.Fprintf(c.stdout, "  %-24s %-32s %s\n", field, value, metaColor.Sprintf("(%s)", c.sources.Sources[field]))
	}

	if err := c.cfg.Validate(); err != nil {
		fmt.Fprintln(c.stdout)
		c.warnf("invalid: %v", err)
		return errors.New("invalid config")
	}
	return nil
}

// logsCommand prints the latest run log for this project.
func (c *cli) logsCommand(args []string) error {
	fs := newFlagSet("logs", c)
	n := fs.Int("n", 20, "Number of lines to show (0 = all)")
	pathOnly := fs.Bool("path", false, "Print only the log file path")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}
	if c.cfg.LogDir == "" {
		return errors.New("run logs are disabled (log_dir is empty)")
	}

	dir, err := logging.FindLogDir(c.cfg.LogDir, c.cfg.ProjectRoot)
	if err != nil {
		return err
	}
	latest, err := logging.FindLatestLog(dir)
	if err != nil {
		return err
	}
	if latest == "" {
		fmt.Fprintf(c.stdout, "No run logs in %s\n", dir)
		return nil
	}
	if *pathOnly {
		fmt.Fprintln(c.stdout, latest)
		return nil
	}
	fmt.Fprintln(c.stderr, metaColor.Sprintf("==> %s", latest))
	return logging.TailLog(c.stdout, latest, *n)
}

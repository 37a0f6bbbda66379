// Package cmd implements the CLI command structure for taskgrid.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nibzard/taskgrid/internal/config"
	"github.com/nibzard/taskgrid/internal/hooks"
	"github.com/nibzard/taskgrid/internal/logging"
	"github.com/nibzard/taskgrid/internal/state"
	"github.com/nibzard/taskgrid/internal/store"
	"github.com/nibzard/taskgrid/internal/tree"
)

// Version is set via ldflags at build time.
var Version = "dev"

// cli carries the streams and loaded settings shared by every command.
type cli struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	cfg     *config.Config
	sources *config.ConfigWithSources
	log     *logging.Logger
}

// Run executes the taskgrid CLI.
func Run(ctx context.Context, args []string) error {
	return RunWithIO(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

// RunWithIO executes the CLI with explicit streams.
func RunWithIO(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("taskgrid", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	loaded, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}

	c := &cli{
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		cfg:     loaded.Config,
		sources: loaded,
	}

	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return c.versionCommand()
	}

	// No subcommand opens the editor.
	subcommand := "tui"
	remaining := fs.Args()
	if len(remaining) > 0 {
		subcommand = remaining[0]
		remaining = remaining[1:]
	}

	// Commands that never touch the snapshot.
	switch subcommand {
	case "version":
		return c.versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	case "config":
		return c.configCommand(remaining)
	case "logs":
		return c.logsCommand(remaining)
	}

	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.log, err = logging.New(logging.Options{
		Level:      c.cfg.LogLevel,
		Format:     c.cfg.LogFormat,
		Timestamps: c.cfg.LogTimestamps,
		Console:    stderr,
		Dir:        c.cfg.LogDir,
		WorkDir:    c.cfg.ProjectRoot,
	})
	if err != nil {
		c.log.Warn("run log disabled", "err", err)
	}
	defer c.log.Close()
	c.log.Debug("start", "command", subcommand, "version", Version, "driver", c.cfg.Storage.Driver)

	if subcommand == "doctor" {
		return c.doctorCommand(ctx, remaining)
	}

	handler, ok := stateCommands[subcommand]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}

	st, err := store.Open(ctx, c.cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", c.cfg.Storage.Driver, err)
	}
	defer st.Close()

	app, result, err := state.Open(ctx, state.Options{
		Model:     tree.New(c.cfg.Layout.Limits()),
		Store:     st,
		Key:       c.cfg.Storage.Key,
		Logger:    c.log,
		AfterSave: c.afterSave(),
	})
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if result.Found && result.Fresh {
		fmt.Fprintf(stderr, "Stored snapshot could not be used (%s); starting a new goal.\n", result.Reason)
	}

	return handler(c, ctx, app, remaining)
}

type stateCommand func(c *cli, ctx context.Context, app *state.App, args []string) error

var stateCommands = map[string]stateCommand{
	"tui":       (*cli).tuiCommand,
	"show":      (*cli).showCommand,
	"split":     (*cli).splitCommand,
	"unsplit":   (*cli).unsplitCommand,
	"done":      (*cli).doneCommand,
	"edit":      (*cli).editCommand,
	"reset":     (*cli).resetCommand,
	"clear":     (*cli).clearCommand,
	"completed": (*cli).completedCommand,
	"export":    (*cli).exportCommand,
	"import":    (*cli).importCommand,
}

// afterSave returns the post-save callback running the configured hook.
func (c *cli) afterSave() state.AfterSaveFunc {
	command := c.cfg.HookCommand
	if strings.TrimSpace(command) == "" {
		return nil
	}
	return func(ctx context.Context, event string, data []byte) error {
		result, err := hooks.Invoke(ctx, hooks.Options{
			Command:  command,
			Event:    event,
			Key:      c.cfg.Storage.Key,
			Snapshot: data,
			WorkDir:  c.cfg.ProjectRoot,
		})
		c.log.Debug("hook", "event", event, "exit", result.ExitCode, "duration", result.Duration)
		return err
	}
}

func (c *cli) versionCommand() error {
	fmt.Fprintf(c.stdout, "taskgrid version %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "taskgrid - break a goal down into a tree of sub-tasks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskgrid [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                        Open the interactive editor (default)")
	fmt.Fprintln(w, "  show [-all]                Print the task tree")
	fmt.Fprintln(w, "  split <id>                 Split a task into two sub-tasks")
	fmt.Fprintln(w, "  unsplit <id> [-y]          Remove every sub-task of a task")
	fmt.Fprintln(w, "  done <id> [-undo]          Mark a task done (or not done)")
	fmt.Fprintln(w, "  edit <id> [options]        Change title, description, difficulty or priority")
	fmt.Fprintln(w, "  reset [-y]                 Replace the goal with a fresh one")
	fmt.Fprintln(w, "  clear [-y]                 Delete saved data and start over")
	fmt.Fprintln(w, "  completed show|hide|toggle Show or hide completed tasks")
	fmt.Fprintln(w, "  export [-format] [-o file] Write the tree as json, yaml or markdown")
	fmt.Fprintln(w, "  import <file> [-format]    Replace the tree with an exported file")
	fmt.Fprintln(w, "  doctor                     Check config, storage and the saved snapshot")
	fmt.Fprintln(w, "  config [-example]          Show effective configuration and its sources")
	fmt.Fprintln(w, "  logs [-n lines]            Print the latest run log")
	fmt.Fprintln(w, "  version                    Show version information")
	fmt.Fprintln(w, "  help                       Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Task IDs may be shortened to any unambiguous prefix; \"root\" names the goal.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit Options (use with 'edit' command):")
	fmt.Fprintln(w, "  -title string        New title")
	fmt.Fprintln(w, "  -desc string         New description")
	fmt.Fprintln(w, "  -difficulty int      Difficulty 1-5")
	fmt.Fprintln(w, "  -priority int        Priority 1..number of tasks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"

	"github.com/nibzard/taskgrid/internal/state"
	"github.com/nibzard/taskgrid/internal/store"
	"github.com/nibzard/taskgrid/internal/tree"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✅")
	failMark = color.New(color.FgRed).Sprint("❌")
	warnMark = color.New(color.FgYellow).Sprint("⚠️ ")
)

// doctorCommand checks configuration, storage and the saved snapshot.
func (c *cli) doctorCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("doctor", c)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	w := c.stdout
	cfg := c.cfg
	allOK := true
	ok := func(format string, a ...interface{}) {
		fmt.Fprintf(w, "  %s %s\n", okMark, fmt.Sprintf(format, a...))
	}
	fail := func(format string, a ...interface{}) {
		fmt.Fprintf(w, "  %s %s\n", failMark, fmt.Sprintf(format, a...))
		allOK = false
	}
	warn := func(format string, a ...interface{}) {
		fmt.Fprintf(w, "  %s %s\n", warnMark, fmt.Sprintf(format, a...))
	}

	fmt.Fprintln(w, "taskgrid doctor")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Project root: %s\n", cfg.ProjectRoot)
	if _, err := os.Stat(cfg.ProjectRoot); err != nil {
		fail("Error: %v", err)
	} else {
		ok("OK")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config:")
	if len(c.sources.Files) == 0 {
		ok("Valid (built-in defaults, no config file)")
	} else {
		ok("Valid (%s)", strings.Join(c.sources.Files, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Layout:")
	limits := cfg.Layout.Limits()
	sizes := make([]string, 0, limits.MaxDepth+1)
	for d := 0; d <= limits.MaxDepth; d++ {
		sizes = append(sizes, fmt.Sprintf("%d:%dpx", d, limits.FontSize(d)))
	}
	ok("Font by depth: %s", strings.Join(sizes, " "))
	if deepest := deepestSplitDepth(limits); deepest == 0 {
		warn("No task can be split (min_font %d, depth_scale %g)", limits.MinFont, limits.DepthScale)
	} else {
		ok("Tasks can be split down to depth %d", deepest)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Storage (%s): %s\n", cfg.Storage.Driver, storageLocation(c))
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		fail("Cannot open: %v", err)
	} else {
		defer st.Close()
		ok("OK")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Snapshot (key %s):\n", cfg.Storage.Key)
	if st == nil {
		warn("Skipped")
	} else if data, err := st.Get(ctx, cfg.Storage.Key); err != nil {
		if store.IsNotFound(err) {
			warn("Not found (a new goal is created on first save)")
		} else {
			fail("Read error: %v", err)
		}
	} else {
		snap, result, err := state.Decode(data, limits)
		switch {
		case err != nil:
			fail("%v", err)
		case !result.Valid:
			fail("Validation failed (the app will start a new goal):")
			for _, e := range result.Errors {
				fmt.Fprintf(w, "     - %v\n", e)
			}
		default:
			ok("Valid: %d tasks", tree.CountNodes(snap.Root))
		}
		if result != nil {
			for _, msg := range result.Warnings {
				warn("%s", msg)
			}
		}
		if snap != nil && result != nil && result.Valid && *verbose {
			tree.Walk(snap.Root, func(n *tree.Node) bool {
				fmt.Fprintf(w, "    %s- %s %s\n", strings.Repeat("  ", n.Depth), shortID(n.ID), n.DisplayTitle())
				return true
			})
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Hook:")
	if strings.TrimSpace(cfg.HookCommand) == "" {
		ok("None configured")
	} else if path, err := hookBinary(cfg.HookCommand); err != nil {
		fail("%s: %v", cfg.HookCommand, err)
	} else {
		ok("%s (%s)", cfg.HookCommand, path)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Run logs:")
	if cfg.LogDir == "" {
		warn("Disabled (log_dir is empty)")
	} else if run := c.log.Run(); run != nil {
		ok("%s", run.Dir)
	} else {
		fail("Cannot write to %s", cfg.LogDir)
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return errors.New("doctor checks failed")
}

// deepestSplitDepth returns the greatest depth a split can produce.
func deepestSplitDepth(limits tree.Limits) int {
	deepest := 0
	for d := 0; d < limits.MaxDepth; d++ {
		if !limits.Legible(d + 1) {
			break
		}
		deepest = d + 1
	}
	return deepest
}

func storageLocation(c *cli) string {
	if c.cfg.Storage.Driver == store.DriverRedis {
		return fmt.Sprintf("%s db %d", c.cfg.Storage.RedisAddr, c.cfg.Storage.RedisDB)
	}
	return c.cfg.Storage.Path
}

// hookBinary resolves the program a hook command starts with.
func hookBinary(command string) (string, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", errors.New("empty command")
	}
	return exec.LookPath(fields[0])
}

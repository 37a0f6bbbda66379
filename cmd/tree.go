package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/nibzard/taskgrid/internal/state"
	"github.com/nibzard/taskgrid/internal/tree"
	"github.com/nibzard/taskgrid/internal/ui"
)

// shortIDLen is how much of a node ID the CLI prints.
const shortIDLen = 8

var (
	idColor    = color.New(color.FgCyan)
	doneColor  = color.New(color.FgGreen)
	metaColor  = color.New(color.FgHiBlack)
	titleColor = color.New(color.Bold)
	warnColor  = color.New(color.FgYellow)
)

func newFlagSet(name string, c *cli) *flag.FlagSet {
	fs := flag.NewFlagSet("taskgrid "+name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// parseWithID parses a command that takes one task ID.
func parseWithID(fs *flag.FlagSet, args []string) (string, error) {
	return parseOneArg(fs, args, "task id")
}

// parseOneArg parses a command taking exactly one positional argument,
// which may come before or after the flags.
func parseOneArg(fs *flag.FlagSet, args []string, what string) (string, error) {
	var id string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		id, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	rest := fs.Args()
	if id == "" && len(rest) > 0 {
		id, rest = rest[0], rest[1:]
	}
	if id == "" {
		return "", fmt.Errorf("missing %s", what)
	}
	if len(rest) > 0 {
		return "", fmt.Errorf("unexpected arguments: %v", rest)
	}
	return id, nil
}

func parseNoArgs(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return nil
}

// confirm asks a yes/no question on the command streams. Anything but y or
// yes counts as no.
func (c *cli) confirm(prompt string) bool {
	fmt.Fprintf(c.stdout, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.stdout)
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// tuiCommand opens the interactive editor.
func (c *cli) tuiCommand(ctx context.Context, app *state.App, args []string) error {
	fs := newFlagSet("tui", c)
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}
	// Console log lines would corrupt the screen; the run log still gets them.
	c.log.SetConsoleOutput(nil)
	defer c.log.SetConsoleOutput(c.stderr)
	return ui.Run(ctx, app)
}

// showCommand prints the tree with one task per line.
func (c *cli) showCommand(_ context.Context, app *state.App, args []string) error {
	fs := newFlagSet("show", c)
	all := fs.Bool("all", false, "Include completed tasks even when they are hidden")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	limits := app.Model().Limits()
	hide := !app.ShowCompleted() && !*all
	rows := tree.Flatten(app.Root(), hide)
	for _, n := range rows {
		box := "[ ]"
		title := titleColor.Sprint(n.DisplayTitle())
		if n.Completed {
			box = doneColor.Sprint("[x]")
			title = doneColor.Sprint(n.DisplayTitle())
		}
		fmt.Fprintf(c.stdout, "%s%s %s %s %s\n",
			strings.Repeat("  ", n.Depth),
			box,
			idColor.Sprint(shortID(n.ID)),
			title,
			metaColor.Sprintf("d%d p%d %dpx", n.Difficulty, n.Priority, limits.FontSize(n.Depth)),
		)
		if desc := strings.TrimSpace(n.Description); desc != "" {
			for _, line := range strings.Split(desc, "\n") {
				fmt.Fprintf(c.stdout, "%s    %s\n", strings.Repeat("  ", n.Depth), metaColor.Sprint(line))
			}
		}
	}
	if hidden := tree.CountNodes(app.Root()) - len(rows); hidden > 0 {
		fmt.Fprintln(c.stdout, metaColor.Sprintf("%d completed hidden (show -all)", hidden))
	}
	return nil
}

func (c *cli) splitCommand(ctx context.Context, app *state.App, args []string) error {
	id, err := parseWithID(newFlagSet("split", c), args)
	if err != nil {
		return err
	}
	n, err := app.Resolve(id)
	if err != nil {
		return err
	}
	if err := app.Model().CheckSplit(n); err != nil {
		return fmt.Errorf("cannot split %q: %w", n.DisplayTitle(), err)
	}
	if _, err := app.Split(ctx, n.ID); err != nil {
		return err
	}
	for _, child := range n.Children {
		fmt.Fprintf(c.stdout, "%s %s\n", idColor.Sprint(shortID(child.ID)), child.DisplayTitle())
	}
	return nil
}

func (c *cli) unsplitCommand(ctx context.Context, app *state.App, args []string) error {
	fs := newFlagSet("unsplit", c)
	yes := fs.Bool("y", false, "Do not ask for confirmation")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}
	n, err := app.Resolve(id)
	if err != nil {
		return err
	}
	if n.IsLeaf() {
		fmt.Fprintf(c.stdout, "%q has no sub-tasks\n", n.DisplayTitle())
		return nil
	}
	dropped := tree.CountNodes(n) - 1
	if !*yes && !c.confirm(fmt.Sprintf("Remove %d sub-tasks under %q?", dropped, n.DisplayTitle())) {
		fmt.Fprintln(c.stdout, "Cancelled")
		return nil
	}
	if err := app.Unsplit(ctx, n.ID); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Removed %d sub-tasks\n", dropped)
	return nil
}

func (c *cli) doneCommand(ctx context.Context, app *state.App, args []string) error {
	fs := newFlagSet("done", c)
	undo := fs.Bool("undo", false, "Mark the task not done")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}
	n, err := app.Resolve(id)
	if err != nil {
		return err
	}
	if err := app.SetCompleted(ctx, n.ID, !*undo); err != nil {
		return err
	}
	word := "done"
	if *undo {
		word = "not done"
	}
	fmt.Fprintf(c.stdout, "%s %s: %s\n", idColor.Sprint(shortID(n.ID)), n.DisplayTitle(), word)
	return nil
}

func (c *cli) editCommand(ctx context.Context, app *state.App, args []string) error {
	fs := newFlagSet("edit", c)
	title := fs.String("title", "", "New title")
	desc := fs.String("desc", "", "New description")
	difficulty := fs.Int("difficulty", 0, "Difficulty 1-5")
	priority := fs.Int("priority", 0, "Priority 1..number of tasks")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}
	n, err := app.Resolve(id)
	if err != nil {
		return err
	}

	f := tree.FieldsOf(n)
	changed := 0
	fs.Visit(func(fl *flag.Flag) {
		changed++
		switch fl.Name {
		case "title":
			f.Title = *title
		case "desc":
			f.Description = *desc
		case "difficulty":
			f.Difficulty = *difficulty
		case "priority":
			f.Priority = *priority
		}
	})
	if changed == 0 {
		return errors.New("nothing to change (use -title, -desc, -difficulty or -priority)")
	}
	if err := app.Edit(ctx, n.ID, f); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s %s %s\n", idColor.Sprint(shortID(n.ID)), n.DisplayTitle(),
		metaColor.Sprintf("d%d p%d", n.Difficulty, n.Priority))
	return nil
}

func (c *cli) resetCommand(ctx context.Context, app *state.App, args []string) error {
	fs := newFlagSet("reset", c)
	yes := fs.Bool("y", false, "Do not ask for confirmation")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}
	if !*yes && !c.confirm("Replace the goal and every task under it?") {
		fmt.Fprintln(c.stdout, "Cancelled")
		return nil
	}
	if err := app.ResetRoot(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Started a new goal %s\n", idColor.Sprint(shortID(app.Root().ID)))
	return nil
}

func (c *cli) clearCommand(ctx context.Context, app *state.App, args []string) error {
	fs := newFlagSet("clear", c)
	yes := fs.Bool("y", false, "Do not ask for confirmation")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}
	if !*yes && !c.confirm("Delete all saved data?") {
		fmt.Fprintln(c.stdout, "Cancelled")
		return nil
	}
	if err := app.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Cleared saved data")
	return nil
}

func (c *cli) completedCommand(ctx context.Context, app *state.App, args []string) error {
	fs := newFlagSet("completed", c)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: taskgrid completed show|hide|toggle")
	}

	var err error
	show := app.ShowCompleted()
	switch fs.Arg(0) {
	case "show":
		show = true
		err = app.SetShowCompleted(ctx, true)
	case "hide":
		show = false
		err = app.SetShowCompleted(ctx, false)
	case "toggle":
		show, err = app.ToggleShowCompleted(ctx)
	default:
		return fmt.Errorf("unknown mode %q (want show, hide or toggle)", fs.Arg(0))
	}
	if err != nil {
		return err
	}
	if show {
		fmt.Fprintln(c.stdout, "Completed tasks are shown")
	} else {
		fmt.Fprintln(c.stdout, "Completed tasks are hidden")
	}
	return nil
}

// warnf prints a highlighted warning to stderr.
func (c *cli) warnf(format string, args ...interface{}) {
	fmt.Fprintln(c.stderr, warnColor.Sprintf(format, args...))
}


package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/taskgrid/internal/export"
	"github.com/nibzard/taskgrid/internal/state"
)

func (c *cli) exportCommand(_ context.Context, app *state.App, args []string) error {
	fs := newFlagSet("export", c)
	formatFlag := fs.String("format", "", "Output format: json, yaml or markdown (default from -o, else json)")
	out := fs.String("o", "", "Output file (default stdout)")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	format := export.FormatJSON
	if *out != "" {
		format = export.FormatFromPath(*out)
	}
	if *formatFlag != "" {
		f, err := export.ParseFormat(*formatFlag)
		if err != nil {
			return err
		}
		format = f
	}

	if *out == "" {
		return export.Write(c.stdout, app.Snapshot(), format)
	}

	if dir := filepath.Dir(*out); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	file, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	if err := export.Write(file, app.Snapshot(), format); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", *out, err)
	}
	fmt.Fprintf(c.stdout, "Wrote %s (%s)\n", *out, format)
	return nil
}

func (c *cli) importCommand(ctx context.Context, app *state.App, args []string) error {
	fs := newFlagSet("import", c)
	formatFlag := fs.String("format", "", "Input format: json or yaml (default from file extension)")
	path, err := parseOneArg(fs, args, "file to import")
	if err != nil {
		return err
	}

	format := export.FormatFromPath(path)
	if *formatFlag != "" {
		if format, err = export.ParseFormat(*formatFlag); err != nil {
			return err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	snap, warnings, err := export.Read(file, format, app.Model().Limits())
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	for _, w := range warnings {
		c.warnf("warning: %s", w)
	}
	if err := app.Replace(ctx, snap); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Imported %s\n", path)
	return nil
}

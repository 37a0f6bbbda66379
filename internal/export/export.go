// Package export writes snapshots for download and reads uploaded ones back.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/taskgrid/internal/state"
	"github.com/nibzard/taskgrid/internal/tree"
)

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ErrUnsupported is returned for formats that cannot be read back.
var ErrUnsupported = errors.New("unsupported format")

// ParseFormat accepts json, yaml/yml and markdown/md in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q (want json, yaml or markdown)", ErrUnsupported, s)
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML
	case strings.HasSuffix(lower, ".md"), strings.HasSuffix(lower, ".markdown"):
		return FormatMarkdown
	}
	return FormatJSON
}

// Write renders snap in the given format.
func Write(w io.Writer, snap *state.Snapshot, format Format) error {
	if snap == nil || snap.Root == nil {
		return errors.New("export: snapshot has no root")
	}
	switch format {
	case FormatJSON:
		data, err := state.Encode(snap)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatMarkdown:
		return writeMarkdown(w, snap.Root)
	}
	return fmt.Errorf("%w: %q", ErrUnsupported, format)
}

// writeMarkdown renders the tree as a nested checklist, two spaces per level.
func writeMarkdown(w io.Writer, root *tree.Node) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", root.DisplayTitle())
	tree.Walk(root, func(n *tree.Node) bool {
		indent := strings.Repeat("  ", n.Depth)
		box := " "
		if n.Completed {
			box = "x"
		}
		fmt.Fprintf(&b, "%s- [%s] %s (d%d, p%d)\n", indent, box, n.DisplayTitle(), n.Difficulty, n.Priority)
		for _, line := range strings.Split(strings.TrimSpace(n.Description), "\n") {
			if line == "" {
				continue
			}
			fmt.Fprintf(&b, "%s  %s\n", indent, line)
		}
		return true
	})
	_, err := w.Write(b.Bytes())
	return err
}

// ReadJSON decodes and validates an uploaded JSON snapshot.
func ReadJSON(r io.Reader, limits tree.Limits) (*state.Snapshot, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read snapshot: %w", err)
	}
	return decode(data, limits)
}

// Read decodes an uploaded snapshot in the given format. YAML is converted
// to JSON first so both go through the same validation.
func Read(r io.Reader, format Format, limits tree.Limits) (*state.Snapshot, []string, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r, limits)
	case FormatYAML:
		var doc interface{}
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, nil, fmt.Errorf("parse yaml: %w", err)
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, nil, fmt.Errorf("convert yaml: %w", err)
		}
		return decode(data, limits)
	}
	return nil, nil, fmt.Errorf("%w for import: %q", ErrUnsupported, format)
}

func decode(data []byte, limits tree.Limits) (*state.Snapshot, []string, error) {
	snap, result, err := state.Decode(data, limits)
	if err != nil {
		return nil, nil, err
	}
	if err := result.Err(); err != nil {
		return nil, nil, err
	}
	return snap, result.Warnings, nil
}

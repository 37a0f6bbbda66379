package state

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskgrid/internal/tree"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "taskGridV2"

//go:embed snapshot.schema.json
var schemaJSON []byte

const schemaURL = "snapshot.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Snapshot is the persisted application state.
type Snapshot struct {
	Root          *tree.Node `json:"root" yaml:"root"`
	ShowCompleted bool       `json:"showCompleted" yaml:"showCompleted"`
}

// NewSnapshot returns a snapshot holding a fresh root from m.
func NewSnapshot(m *tree.Model) *Snapshot {
	return &Snapshot{
		Root:          m.NewRoot(),
		ShowCompleted: true,
	}
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // dotted path to the offending value
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid    bool
	Errors   []error
	Warnings []string
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}
}

func (r *ValidationResult) fail(path string, err error) {
	r.Valid = false
	r.Errors = append(r.Errors, &ValidationError{Path: path, Err: err})
}

// Err joins the validation errors, or returns nil when valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("invalid snapshot: %s", strings.Join(msgs, "; "))
}

// Encode renders the snapshot with 2-space indentation and a trailing newline.
func Encode(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses and validates a stored snapshot. When the result is valid
// the returned snapshot has its difficulty and priority ranges repaired.
// A nil snapshot is returned when data is not JSON.
func Decode(data []byte, limits tree.Limits) (*Snapshot, *ValidationResult, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse snapshot: %w", err)
	}

	result := newResult()
	validateSchema(raw, result)
	if !result.Valid {
		return nil, result, nil
	}

	snap := &Snapshot{ShowCompleted: true}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, nil, fmt.Errorf("parse snapshot: %w", err)
	}

	Validate(snap, limits, result)
	if result.Valid {
		normalize(snap)
	}
	return snap, result, nil
}

// Validate runs the structural checks on s and records them in result.
func Validate(s *Snapshot, limits tree.Limits, result *ValidationResult) {
	if s == nil || s.Root == nil {
		result.fail("root", fmt.Errorf("missing required field"))
		return
	}
	if s.Root.Depth != 0 {
		result.fail("root.depth", fmt.Errorf("expected 0, got %d", s.Root.Depth))
	}

	seen := make(map[string]string)
	total := tree.CountNodes(s.Root)
	var check func(n *tree.Node, path string)
	check = func(n *tree.Node, path string) {
		if n == nil {
			result.fail(path, fmt.Errorf("node is null"))
			return
		}
		if n.ID == "" {
			result.fail(path+".id", fmt.Errorf("missing required field"))
		} else if other, dup := seen[n.ID]; dup {
			result.fail(path+".id", fmt.Errorf("duplicate id %q (also at %s)", n.ID, other))
		} else {
			seen[n.ID] = path
		}

		switch {
		case n.IsLeaf() && n.ColumnCount != 1:
			result.fail(path+".gridCols", fmt.Errorf("leaf must have 1 column, got %d", n.ColumnCount))
		case !n.IsLeaf() && n.ColumnCount != len(n.Children):
			result.fail(path+".gridCols", fmt.Errorf("expected %d columns for %d children, got %d",
				len(n.Children), len(n.Children), n.ColumnCount))
		}

		if n.Depth > limits.MaxDepth {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s.depth: %d is beyond the maximum depth %d", path, n.Depth, limits.MaxDepth))
		}
		if n.Difficulty < tree.MinDifficulty || n.Difficulty > tree.MaxDifficulty {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s.diff: %d out of range, clamped", path, n.Difficulty))
		}
		if n.Priority < 1 || n.Priority > total {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s.pri: %d out of range [1,%d], clamped", path, n.Priority, total))
		}

		for i, c := range n.Children {
			childPath := fmt.Sprintf("%s.children[%d]", path, i)
			if c != nil && c.Depth != n.Depth+1 {
				result.fail(childPath+".depth", fmt.Errorf("expected %d, got %d", n.Depth+1, c.Depth))
			}
			check(c, childPath)
		}
	}
	check(s.Root, "root")
}

// normalize clamps difficulty and priority into range.
func normalize(s *Snapshot) {
	total := tree.CountNodes(s.Root)
	tree.Walk(s.Root, func(n *tree.Node) bool {
		if n.Difficulty < tree.MinDifficulty {
			n.Difficulty = tree.MinDifficulty
		}
		if n.Difficulty > tree.MaxDifficulty {
			n.Difficulty = tree.MaxDifficulty
		}
		if n.Priority < 1 {
			n.Priority = 1
		}
		if n.Priority > total {
			n.Priority = total
		}
		if n.Children == nil {
			n.Children = []*tree.Node{}
		}
		return true
	})
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("load snapshot schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// validateSchema checks raw against the embedded JSON Schema. If the schema
// cannot be compiled the structural checks still run and a warning is added.
func validateSchema(raw interface{}, result *ValidationResult) {
	sch, err := compiledSchema()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("JSON Schema validation not available: %v", err))
		return
	}
	if err := sch.Validate(raw); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
}

func appendSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: pointerPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// pointerPath turns a JSON Pointer such as "/root/children/1/depth" into
// "root.children[1].depth".
func pointerPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

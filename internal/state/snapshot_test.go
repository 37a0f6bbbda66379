package state

import (
	"errors"
	"strings"
	"testing"

	"github.com/nibzard/taskgrid/internal/tree"
)

const validSnapshot = `{
  "root": {
    "id": "r", "title": "Goal", "desc": "", "diff": 3, "pri": 1,
    "completed": false, "depth": 0, "gridCols": 2,
    "children": [
      {"id": "a", "title": "Goal – 1", "desc": "", "diff": 3, "pri": 2, "completed": true, "depth": 1, "gridCols": 1, "children": []},
      {"id": "b", "title": "Goal – 2", "desc": "", "diff": 3, "pri": 1, "completed": false, "depth": 1, "gridCols": 1, "children": []}
    ]
  },
  "showCompleted": false
}`

func TestDecodeValid(t *testing.T) {
	snap, result, err := Decode([]byte(validSnapshot), tree.DefaultLimits())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid, got errors: %v", result.Errors)
	}
	if snap.ShowCompleted {
		t.Error("ShowCompleted: got true, want false")
	}
	if got := tree.CountNodes(snap.Root); got != 3 {
		t.Errorf("CountNodes: got %d, want 3", got)
	}
	if !snap.Root.Children[0].Completed {
		t.Error("child a should be completed")
	}
}

func TestDecodeDefaultsShowCompleted(t *testing.T) {
	data := `{"root": {"id": "r", "title": "Goal", "diff": 3, "pri": 1, "depth": 0, "gridCols": 1, "children": []}}`
	snap, result, err := Decode([]byte(data), tree.DefaultLimits())
	if err != nil || !result.Valid {
		t.Fatalf("Decode: err=%v result=%+v", err, result)
	}
	if !snap.ShowCompleted {
		t.Error("ShowCompleted should default to true")
	}
}

func TestDecodeNotJSON(t *testing.T) {
	_, _, err := Decode([]byte("not json"), tree.DefaultLimits())
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantPath string
	}{
		{
			name:     "missing root",
			data:     `{"showCompleted": true}`,
			wantPath: "",
		},
		{
			name:     "wrong type",
			data:     `{"root": {"id": "r", "title": 7, "diff": 3, "pri": 1, "depth": 0, "gridCols": 1, "children": []}}`,
			wantPath: "root.title",
		},
		{
			name:     "missing children",
			data:     `{"root": {"id": "r", "title": "x", "diff": 3, "pri": 1, "depth": 0, "gridCols": 1}}`,
			wantPath: "root",
		},
		{
			name:     "root not at depth zero",
			data:     `{"root": {"id": "r", "title": "x", "diff": 3, "pri": 1, "depth": 2, "gridCols": 1, "children": []}}`,
			wantPath: "root.depth",
		},
		{
			name: "child depth skips a level",
			data: `{"root": {"id": "r", "title": "x", "diff": 3, "pri": 1, "depth": 0, "gridCols": 2, "children": [
				{"id": "a", "title": "a", "diff": 3, "pri": 1, "depth": 1, "gridCols": 1, "children": []},
				{"id": "b", "title": "b", "diff": 3, "pri": 1, "depth": 3, "gridCols": 1, "children": []}]}}`,
			wantPath: "root.children[1].depth",
		},
		{
			name:     "leaf with two columns",
			data:     `{"root": {"id": "r", "title": "x", "diff": 3, "pri": 1, "depth": 0, "gridCols": 2, "children": []}}`,
			wantPath: "root.gridCols",
		},
		{
			name: "duplicate ids",
			data: `{"root": {"id": "r", "title": "x", "diff": 3, "pri": 1, "depth": 0, "gridCols": 2, "children": [
				{"id": "a", "title": "a", "diff": 3, "pri": 1, "depth": 1, "gridCols": 1, "children": []},
				{"id": "a", "title": "b", "diff": 3, "pri": 1, "depth": 1, "gridCols": 1, "children": []}]}}`,
			wantPath: "root.children[1].id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, result, err := Decode([]byte(tt.data), tree.DefaultLimits())
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if result.Valid {
				t.Fatalf("expected invalid snapshot, got %+v", snap)
			}
			if result.Err() == nil {
				t.Error("Err() should be non-nil for an invalid result")
			}
			found := false
			for _, e := range result.Errors {
				var ve *ValidationError
				if errors.As(e, &ve) && ve.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Errorf("no error at path %q in %v", tt.wantPath, result.Errors)
			}
		})
	}
}

func TestDecodeClampsRanges(t *testing.T) {
	data := `{"root": {"id": "r", "title": "x", "diff": 9, "pri": 4, "depth": 0, "gridCols": 1, "children": []}}`
	snap, result, err := Decode([]byte(data), tree.DefaultLimits())
	if err != nil || !result.Valid {
		t.Fatalf("Decode: err=%v result=%+v", err, result)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("Warnings: got %v, want 2", result.Warnings)
	}
	if snap.Root.Difficulty != 5 {
		t.Errorf("Difficulty: got %d, want 5", snap.Root.Difficulty)
	}
	if snap.Root.Priority != 1 {
		t.Errorf("Priority: got %d, want 1", snap.Root.Priority)
	}
}

func TestDecodeWarnsBeyondMaxDepth(t *testing.T) {
	limits := tree.DefaultLimits()
	limits.MaxDepth = 0
	_, result, err := Decode([]byte(validSnapshot), limits)
	if err != nil || !result.Valid {
		t.Fatalf("Decode: err=%v result=%+v", err, result)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "maximum depth") {
		t.Errorf("expected a depth warning, got %v", result.Warnings)
	}
}

func TestEncodeFormat(t *testing.T) {
	m := tree.New(tree.DefaultLimits())
	data, err := Encode(NewSnapshot(m))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	content := string(data)
	if !strings.HasSuffix(content, "}\n") {
		t.Error("expected trailing newline")
	}
	if !strings.Contains(content, "\n  \"root\"") {
		t.Error("expected 2-space indentation")
	}
	for _, key := range []string{`"desc"`, `"diff"`, `"pri"`, `"gridCols"`, `"showCompleted": true`, `"children": []`} {
		if !strings.Contains(content, key) {
			t.Errorf("encoded snapshot missing %s", key)
		}
	}

	snap, result, err := Decode(data, tree.DefaultLimits())
	if err != nil || !result.Valid {
		t.Fatalf("re-decoding: err=%v result=%+v", err, result)
	}
	if snap.Root.Title != tree.RootTitle {
		t.Errorf("Title: got %q", snap.Root.Title)
	}
}

func TestPointerPath(t *testing.T) {
	tests := []struct {
		ptr  string
		want string
	}{
		{"", ""},
		{"#", ""},
		{"/root", "root"},
		{"/root/children/1/depth", "root.children[1].depth"},
		{"#/root/children/0/children/1", "root.children[0].children[1]"},
		{"/a~1b/c~0d", "a/b.c~d"},
	}
	for _, tt := range tests {
		if got := pointerPath(tt.ptr); got != tt.want {
			t.Errorf("pointerPath(%q) = %q, want %q", tt.ptr, got, tt.want)
		}
	}
}

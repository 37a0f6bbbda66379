package tree

import (
	"errors"
	"fmt"
	"testing"
)

// seqIDs returns an ID generator yielding n1, n2, ...
func seqIDs() func() string {
	i := 0
	return func() string {
		i++
		return fmt.Sprintf("n%d", i)
	}
}

func newTestModel(limits Limits) *Model {
	return New(limits, WithIDFunc(seqIDs()))
}

// deepLimits allows splitting all the way to MaxDepth.
func deepLimits() Limits {
	l := DefaultLimits()
	l.MinFont = 1
	return l
}

func TestNewRoot(t *testing.T) {
	root := NewRoot()
	if root.ID == "" {
		t.Fatal("root ID should be set")
	}
	if root.Title != RootTitle {
		t.Errorf("Title: got %q, want %q", root.Title, RootTitle)
	}
	if root.Depth != 0 {
		t.Errorf("Depth: got %d, want 0", root.Depth)
	}
	if root.ColumnCount != 1 || !root.IsLeaf() {
		t.Errorf("root should be a leaf with ColumnCount 1, got %d cols and %d children", root.ColumnCount, len(root.Children))
	}
	if root.Difficulty != DefaultDifficulty || root.Priority != DefaultPriority || root.Completed {
		t.Errorf("unexpected defaults: %+v", root)
	}

	other := NewRoot()
	if other.ID == root.ID {
		t.Error("two roots should not share an ID")
	}
}

func TestFontSize(t *testing.T) {
	l := DefaultLimits()
	tests := []struct {
		depth int
		want  int
	}{
		{0, 16},
		{1, 14},
		{2, 12},
		{3, 10},
		{4, 8},
		{5, 7},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("depth %d", tt.depth), func(t *testing.T) {
			if got := l.FontSize(tt.depth); got != tt.want {
				t.Errorf("FontSize(%d) = %d, want %d", tt.depth, got, tt.want)
			}
		})
	}
}

func TestCanSplit(t *testing.T) {
	m := newTestModel(DefaultLimits())

	tests := []struct {
		name string
		node *Node
		want bool
	}{
		{"fresh root", m.NewRoot(), true},
		{"completed leaf", &Node{Completed: true, ColumnCount: 1}, false},
		{"at max depth", &Node{Depth: DefaultMaxDepth, ColumnCount: 1}, false},
		{"beyond max depth", &Node{Depth: DefaultMaxDepth + 1, ColumnCount: 1}, false},
		{"next level illegible", &Node{Depth: 3, ColumnCount: 1}, false},
		{"next level legible", &Node{Depth: 2, ColumnCount: 1}, true},
		{"already split", &Node{ColumnCount: 2, Children: []*Node{{}, {}}}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.CanSplit(tt.node); got != tt.want {
				t.Errorf("CanSplit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanSplitMaxDepthIgnoresFont(t *testing.T) {
	m := newTestModel(deepLimits())
	if m.CanSplit(&Node{Depth: 5, ColumnCount: 1}) {
		t.Error("node at MaxDepth should never split")
	}
	if !m.CanSplit(&Node{Depth: 4, ColumnCount: 1}) {
		t.Error("node below MaxDepth with legible font should split")
	}
}

func TestCheckSplitReasons(t *testing.T) {
	m := newTestModel(DefaultLimits())

	tests := []struct {
		name string
		node *Node
		want error
	}{
		{"allowed", &Node{Depth: 1, ColumnCount: 1}, nil},
		{"nil", nil, ErrNoNode},
		{"completed wins over depth", &Node{Completed: true, Depth: DefaultMaxDepth, ColumnCount: 1}, ErrCompleted},
		{"already split", &Node{ColumnCount: 2, Children: []*Node{{}, {}}}, ErrAlreadySplit},
		{"max depth", &Node{Depth: DefaultMaxDepth, ColumnCount: 1}, ErrMaxDepth},
		{"illegible", &Node{Depth: 3, ColumnCount: 1}, ErrIllegible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.CheckSplit(tt.node); !errors.Is(got, tt.want) {
				t.Errorf("CheckSplit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	m := newTestModel(DefaultLimits())
	root := m.NewRoot()

	if !m.Split(root) {
		t.Fatal("Split(root) should succeed")
	}
	if root.ColumnCount != 2 {
		t.Errorf("ColumnCount: got %d, want 2", root.ColumnCount)
	}
	if len(root.Children) != 2 {
		t.Fatalf("Children: got %d, want 2", len(root.Children))
	}
	for i, c := range root.Children {
		wantTitle := fmt.Sprintf("%s – %d", RootTitle, i+1)
		if c.Title != wantTitle {
			t.Errorf("child %d title: got %q, want %q", i, c.Title, wantTitle)
		}
		if c.Depth != root.Depth+1 {
			t.Errorf("child %d depth: got %d, want %d", i, c.Depth, root.Depth+1)
		}
		if !c.IsLeaf() || c.ColumnCount != 1 {
			t.Errorf("child %d should be a leaf", i)
		}
		if c.Difficulty != DefaultDifficulty || c.Priority != DefaultPriority || c.Completed || c.Description != "" {
			t.Errorf("child %d has non-default fields: %+v", i, c)
		}
	}
	if root.Children[0].ID == root.Children[1].ID {
		t.Error("children should have distinct IDs")
	}
	if got := CountNodes(root); got != 3 {
		t.Errorf("CountNodes: got %d, want 3", got)
	}
}

func TestSplitKeepsParentContent(t *testing.T) {
	m := newTestModel(DefaultLimits())
	root := m.NewRoot()
	m.Edit(root, root, Fields{Title: "Ship v2", Description: "the big one", Difficulty: 4, Priority: 1})

	m.Split(root)

	if root.Title != "Ship v2" || root.Description != "the big one" || root.Difficulty != 4 {
		t.Errorf("parent content changed: %+v", root)
	}
	if root.Children[1].Title != "Ship v2 – 2" {
		t.Errorf("child title: got %q", root.Children[1].Title)
	}
}

func TestSplitTwiceIsNoop(t *testing.T) {
	m := newTestModel(DefaultLimits())
	root := m.NewRoot()
	m.Split(root)
	first, second := root.Children[0], root.Children[1]

	if m.Split(root) {
		t.Error("second Split should be a no-op")
	}
	if root.Children[0] != first || root.Children[1] != second {
		t.Error("second Split replaced children")
	}
}

func TestSplitDownOneBranch(t *testing.T) {
	m := newTestModel(deepLimits())
	root := m.NewRoot()

	n := root
	for i := 0; i < DefaultMaxDepth; i++ {
		if !m.Split(n) {
			t.Fatalf("split %d failed at depth %d", i+1, n.Depth)
		}
		n = n.Children[0]
	}

	if n.Depth != DefaultMaxDepth {
		t.Fatalf("deepest depth: got %d, want %d", n.Depth, DefaultMaxDepth)
	}
	if m.CanSplit(n) {
		t.Error("CanSplit at max depth should be false")
	}

	before := CountNodes(root)
	if m.Split(n) {
		t.Error("Split at max depth should be a no-op")
	}
	if after := CountNodes(root); after != before {
		t.Errorf("tree changed: %d nodes before, %d after", before, after)
	}
}

func TestSplitStopsAtLegibilityBound(t *testing.T) {
	m := newTestModel(DefaultLimits())
	root := m.NewRoot()

	n := root
	for m.Split(n) {
		n = n.Children[0]
	}
	// 16 * 0.85^4 rounds to 8, below the minimum of 10.
	if n.Depth != 3 {
		t.Errorf("splitting stopped at depth %d, want 3", n.Depth)
	}
}

func TestDepthInvariantAfterSplits(t *testing.T) {
	m := newTestModel(deepLimits())
	root := m.NewRoot()
	m.Split(root)
	m.Split(root.Children[1])
	m.Split(root.Children[1].Children[0])

	var check func(n *Node)
	check = func(n *Node) {
		if n.IsLeaf() && n.ColumnCount != 1 {
			t.Errorf("leaf %s has ColumnCount %d", n.ID, n.ColumnCount)
		}
		if !n.IsLeaf() && n.ColumnCount != len(n.Children) {
			t.Errorf("split node %s has ColumnCount %d with %d children", n.ID, n.ColumnCount, len(n.Children))
		}
		for _, c := range n.Children {
			if c.Depth != n.Depth+1 {
				t.Errorf("child %s depth %d under parent depth %d", c.ID, c.Depth, n.Depth)
			}
			check(c)
		}
	}
	check(root)
}

func TestCompletedNodeCannotSplit(t *testing.T) {
	m := newTestModel(DefaultLimits())
	root := m.NewRoot()
	m.Split(root)
	leaf := root.Children[0]

	SetCompleted(leaf, true)
	if m.CanSplit(leaf) {
		t.Error("completed leaf should not be splittable")
	}
	if m.Split(leaf) {
		t.Error("Split on completed leaf should be a no-op")
	}

	SetCompleted(leaf, false)
	if !m.CanSplit(leaf) {
		t.Error("reopened leaf should be splittable again")
	}
}

func TestSetCompletedDoesNotCascade(t *testing.T) {
	m := newTestModel(DefaultLimits())
	root := m.NewRoot()
	m.Split(root)

	SetCompleted(root, true)
	for _, c := range root.Children {
		if c.Completed {
			t.Error("children should not inherit completion")
		}
	}

	SetCompleted(root, false)
	SetCompleted(root.Children[0], true)
	SetCompleted(root.Children[1], true)
	if root.Completed {
		t.Error("parent should not be completed by its children")
	}
}

func TestUnsplit(t *testing.T) {
	m := newTestModel(deepLimits())
	root := m.NewRoot()
	m.Split(root)
	m.Split(root.Children[0])
	m.Edit(root, root.Children[1], Fields{Title: "edited", Difficulty: 5, Priority: 2})
	SetCompleted(root.Children[0].Children[0], true)

	Unsplit(root)

	if !root.IsLeaf() || root.ColumnCount != 1 {
		t.Errorf("root should be a leaf again: %d children, %d cols", len(root.Children), root.ColumnCount)
	}
	if got := CountNodes(root); got != 1 {
		t.Errorf("CountNodes: got %d, want 1", got)
	}

	// Splitting again yields fresh children; earlier edits are gone.
	m.Split(root)
	if root.Children[1].Title == "edited" {
		t.Error("edits on discarded children should not come back")
	}
}

func TestUnsplitLeafIsHarmless(t *testing.T) {
	root := NewRoot()
	Unsplit(root)
	if !root.IsLeaf() || root.ColumnCount != 1 {
		t.Error("unsplitting a leaf should leave it a leaf")
	}
	Unsplit(nil)
}

func TestEdit(t *testing.T) {
	m := newTestModel(DefaultLimits())
	root := m.NewRoot()
	m.Split(root)
	leaf := root.Children[0]

	tests := []struct {
		name   string
		fields Fields
		want   Fields
	}{
		{
			name:   "plain update",
			fields: Fields{Title: "Write tests", Description: "unit", Difficulty: 2, Priority: 3},
			want:   Fields{Title: "Write tests", Description: "unit", Difficulty: 2, Priority: 3},
		},
		{
			name:   "blank title",
			fields: Fields{Title: "   ", Difficulty: 3, Priority: 1},
			want:   Fields{Title: UntitledTitle, Difficulty: 3, Priority: 1},
		},
		{
			name:   "title is trimmed",
			fields: Fields{Title: "  padded  ", Difficulty: 3, Priority: 1},
			want:   Fields{Title: "padded", Difficulty: 3, Priority: 1},
		},
		{
			name:   "difficulty clamped high",
			fields: Fields{Title: "x", Difficulty: 9, Priority: 1},
			want:   Fields{Title: "x", Difficulty: 5, Priority: 1},
		},
		{
			name:   "difficulty clamped low",
			fields: Fields{Title: "x", Difficulty: 0, Priority: 1},
			want:   Fields{Title: "x", Difficulty: 1, Priority: 1},
		},
		{
			name:   "priority clamped to node count",
			fields: Fields{Title: "x", Difficulty: 3, Priority: 10},
			want:   Fields{Title: "x", Difficulty: 3, Priority: 3},
		},
		{
			name:   "priority clamped low",
			fields: Fields{Title: "x", Difficulty: 3, Priority: -4},
			want:   Fields{Title: "x", Difficulty: 3, Priority: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.Edit(root, leaf, tt.fields)
			if got := FieldsOf(leaf); got != tt.want {
				t.Errorf("FieldsOf() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReclampPriorities(t *testing.T) {
	m := newTestModel(DefaultLimits())
	root := m.NewRoot()
	m.Split(root)
	m.Split(root.Children[0])
	m.Edit(root, root.Children[1], Fields{Title: "x", Difficulty: 3, Priority: 5})

	Unsplit(root.Children[0])
	m.ReclampPriorities(root)

	if got := root.Children[1].Priority; got != 3 {
		t.Errorf("Priority after shrink: got %d, want 3", got)
	}
}

func TestCountNodes(t *testing.T) {
	m := newTestModel(DefaultLimits())
	root := m.NewRoot()
	if got := CountNodes(root); got != 1 {
		t.Errorf("single root: got %d, want 1", got)
	}
	m.Split(root)
	if got := CountNodes(root); got != 3 {
		t.Errorf("split root: got %d, want 3", got)
	}
	m.Split(root.Children[0])
	m.Split(root.Children[1])
	if got := CountNodes(root); got != 7 {
		t.Errorf("two levels: got %d, want 7", got)
	}
	if got := CountNodes(nil); got != 0 {
		t.Errorf("nil: got %d, want 0", got)
	}
}

func TestFindAndFlatten(t *testing.T) {
	m := newTestModel(DefaultLimits())
	root := m.NewRoot()
	m.Split(root)
	m.Split(root.Children[0])
	// IDs: n1 root, n2/n3 children, n4/n5 grandchildren under n2.

	if n := Find(root, "n5"); n == nil || n.Depth != 2 {
		t.Errorf("Find(n5) = %+v", n)
	}
	if n := Find(root, "missing"); n != nil {
		t.Errorf("Find(missing) = %+v, want nil", n)
	}

	var order []string
	for _, n := range Flatten(root, false) {
		order = append(order, n.ID)
	}
	if fmt.Sprint(order) != "[n1 n2 n4 n5 n3]" {
		t.Errorf("pre-order: got %v", order)
	}

	SetCompleted(Find(root, "n2"), true)
	order = order[:0]
	for _, n := range Flatten(root, true) {
		order = append(order, n.ID)
	}
	if fmt.Sprint(order) != "[n1 n3]" {
		t.Errorf("hide completed: got %v", order)
	}

	SetCompleted(root, true)
	if got := Flatten(root, true); len(got) == 0 || got[0] != root {
		t.Error("root should always be listed")
	}
}

func TestFindPrefix(t *testing.T) {
	root := &Node{ID: "abc1", Children: []*Node{{ID: "abd2"}, {ID: "xyz3"}}}
	if got := FindPrefix(root, "ab"); len(got) != 2 {
		t.Errorf("FindPrefix(ab): got %d matches, want 2", len(got))
	}
	if got := FindPrefix(root, "xyz"); len(got) != 1 || got[0].ID != "xyz3" {
		t.Errorf("FindPrefix(xyz): got %v", got)
	}
	if got := FindPrefix(root, ""); len(got) != 0 {
		t.Errorf("empty prefix should match nothing, got %d", len(got))
	}
}

func TestClone(t *testing.T) {
	m := newTestModel(DefaultLimits())
	root := m.NewRoot()
	m.Split(root)

	cp := Clone(root)
	cp.Children[0].Title = "changed"
	if root.Children[0].Title == "changed" {
		t.Error("Clone should not share children")
	}
}

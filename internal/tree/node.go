package tree

import (
	"strings"

	"github.com/google/uuid"
)

// Default field values.
const (
	RootTitle         = "Tap to name goal"
	UntitledTitle     = "Untitled"
	DefaultDifficulty = 3
	DefaultPriority   = 1
	MinDifficulty     = 1
	MaxDifficulty     = 5
)

// Node is a single task in the tree. A node is either a leaf (no children,
// ColumnCount 1) or a split node (children present, ColumnCount equal to
// the number of children).
type Node struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"desc" yaml:"desc"`
	Difficulty  int     `json:"diff" yaml:"diff"`
	Priority    int     `json:"pri" yaml:"pri"`
	Completed   bool    `json:"completed" yaml:"completed"`
	Depth       int     `json:"depth" yaml:"depth"`
	ColumnCount int     `json:"gridCols" yaml:"gridCols"`
	Children    []*Node `json:"children" yaml:"children"`
}

// NewRoot returns a fresh root leaf with a random ID.
func NewRoot() *Node {
	return newLeaf(uuid.NewString(), RootTitle, 0)
}

func newLeaf(id, title string, depth int) *Node {
	return &Node{
		ID:          id,
		Title:       title,
		Difficulty:  DefaultDifficulty,
		Priority:    DefaultPriority,
		Depth:       depth,
		ColumnCount: 1,
		Children:    []*Node{},
	}
}

// IsLeaf returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// DisplayTitle returns the title, or the untitled placeholder when blank.
func (n *Node) DisplayTitle() string {
	if strings.TrimSpace(n.Title) == "" {
		return UntitledTitle
	}
	return n.Title
}

// CountNodes returns the number of nodes in the subtree rooted at n.
func CountNodes(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += CountNodes(c)
	}
	return count
}

// Walk visits n and its descendants depth-first in pre-order.
// Returning false from fn stops the walk.
func Walk(n *Node, fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// Find returns the node with the given ID, or nil if not found.
func Find(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindPrefix returns every node whose ID starts with prefix.
func FindPrefix(root *Node, prefix string) []*Node {
	var matches []*Node
	if prefix == "" {
		return matches
	}
	Walk(root, func(n *Node) bool {
		if strings.HasPrefix(n.ID, prefix) {
			matches = append(matches, n)
		}
		return true
	})
	return matches
}

// Flatten returns the nodes in pre-order. When hideCompleted is set,
// completed nodes and their subtrees are skipped; the root is always kept.
func Flatten(root *Node, hideCompleted bool) []*Node {
	var out []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		if n != root && hideCompleted && n.Completed {
			return
		}
		out = append(out, n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	if root != nil {
		visit(root)
	}
	return out
}

// Clone returns a deep copy of the subtree rooted at n.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Children = make([]*Node, len(n.Children))
	for i, c := range n.Children {
		cp.Children[i] = Clone(c)
	}
	return &cp
}

package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// splitWidth is the number of children created by Split.
const splitWidth = 2

// Fields holds the editable content of a node.
type Fields struct {
	Title       string
	Description string
	Difficulty  int
	Priority    int
}

// Model applies the tree rules under a fixed set of limits.
type Model struct {
	limits Limits
	newID  func() string
}

// Option configures a Model.
type Option func(*Model)

// WithIDFunc overrides the node ID generator.
func WithIDFunc(fn func() string) Option {
	return func(m *Model) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// New returns a Model using the given limits.
func New(limits Limits, opts ...Option) *Model {
	m := &Model{
		limits: limits,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Limits returns the model's layout constants.
func (m *Model) Limits() Limits {
	return m.limits
}

// NewRoot returns a fresh root leaf using the model's ID generator.
func (m *Model) NewRoot() *Node {
	return newLeaf(m.newID(), RootTitle, 0)
}

// Reasons reported by CheckSplit.
var (
	ErrNoNode       = errors.New("no node")
	ErrCompleted    = errors.New("task is completed")
	ErrAlreadySplit = errors.New("task is already split")
	ErrMaxDepth     = errors.New("maximum depth reached")
	ErrIllegible    = errors.New("sub-tasks would be too small to read")
)

// CheckSplit returns nil when n may be split, otherwise the first rule that
// forbids it.
func (m *Model) CheckSplit(n *Node) error {
	switch {
	case n == nil:
		return ErrNoNode
	case n.Completed:
		return ErrCompleted
	case !n.IsLeaf():
		return ErrAlreadySplit
	case n.Depth >= m.limits.MaxDepth:
		return ErrMaxDepth
	case !m.limits.Legible(n.Depth + 1):
		return ErrIllegible
	}
	return nil
}

// CanSplit reports whether n may be split.
func (m *Model) CanSplit(n *Node) bool {
	return m.CheckSplit(n) == nil
}

// Split turns the leaf n into a split node with two fresh children.
// It returns false and leaves n untouched when CanSplit(n) is false.
func (m *Model) Split(n *Node) bool {
	if !m.CanSplit(n) {
		return false
	}
	children := make([]*Node, 0, splitWidth)
	for i := 1; i <= splitWidth; i++ {
		title := fmt.Sprintf("%s – %d", n.DisplayTitle(), i)
		children = append(children, newLeaf(m.newID(), title, n.Depth+1))
	}
	n.Children = children
	n.ColumnCount = splitWidth
	return true
}

// Unsplit discards every descendant of n and makes it a leaf again.
// Completed or edited descendants are dropped too.
func Unsplit(n *Node) {
	if n == nil {
		return
	}
	n.Children = []*Node{}
	n.ColumnCount = 1
}

// SetCompleted sets the completion flag on n only. Parents and children
// are not touched.
func SetCompleted(n *Node, completed bool) {
	if n == nil {
		return
	}
	n.Completed = completed
}

// Edit applies f to n. A blank title becomes "Untitled", difficulty is
// clamped to [1,5] and priority to [1, CountNodes(root)].
func (m *Model) Edit(root, n *Node, f Fields) {
	if n == nil {
		return
	}
	title := strings.TrimSpace(f.Title)
	if title == "" {
		title = UntitledTitle
	}
	n.Title = title
	n.Description = f.Description
	n.Difficulty = clamp(f.Difficulty, MinDifficulty, MaxDifficulty)
	n.Priority = clamp(f.Priority, 1, maxPriority(root, n))
}

// ReclampPriorities pulls every priority in the tree back into
// [1, CountNodes(root)]. Call it after the tree shrinks.
func (m *Model) ReclampPriorities(root *Node) {
	hi := CountNodes(root)
	Walk(root, func(n *Node) bool {
		n.Priority = clamp(n.Priority, 1, hi)
		return true
	})
}

// FieldsOf returns the editable content of n.
func FieldsOf(n *Node) Fields {
	return Fields{
		Title:       n.Title,
		Description: n.Description,
		Difficulty:  n.Difficulty,
		Priority:    n.Priority,
	}
}

func maxPriority(root, n *Node) int {
	if root == nil {
		return CountNodes(n)
	}
	return CountNodes(root)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

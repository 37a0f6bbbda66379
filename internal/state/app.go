package state

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskgrid/internal/store"
	"github.com/nibzard/taskgrid/internal/tree"
)

var (
	// ErrNodeNotFound is returned when an ID matches no node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrAmbiguousID is returned when an ID prefix matches several nodes.
	ErrAmbiguousID = errors.New("ambiguous node id")
	// ErrSave wraps failures to write the snapshot. The in-memory change
	// has already been applied when it is returned.
	ErrSave = errors.New("could not save")
)

// Event names passed to the after-save callback.
const (
	EventSplit         = "split"
	EventUnsplit       = "unsplit"
	EventComplete      = "complete"
	EventEdit          = "edit"
	EventReset         = "reset"
	EventClear         = "clear"
	EventShowCompleted = "show-completed"
	EventReplace       = "replace"
)

// Logger is the part of a charmbracelet/log Logger that App writes to.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// AfterSaveFunc runs after each successful save with the written bytes.
type AfterSaveFunc func(ctx context.Context, event string, data []byte) error

// Options configures an App.
type Options struct {
	Model     *tree.Model
	Store     store.Store
	Key       string
	Logger    Logger
	AfterSave AfterSaveFunc
}

// LoadResult describes how the snapshot was obtained at startup.
type LoadResult struct {
	// Fresh is true when a new tree was created instead of loading one.
	Fresh bool
	// Found is true when a value existed under the key.
	Found bool
	// Reason says why a stored value was discarded.
	Reason   string
	Warnings []string
}

// App is the single owner of the task tree at runtime. Every gesture goes
// through one of its methods, which applies the model operation and then
// writes the whole snapshot.
type App struct {
	model     *tree.Model
	store     store.Store
	key       string
	logger    Logger
	afterSave AfterSaveFunc
	snap      *Snapshot
}

// New returns an App holding a fresh tree. Call Load to read the stored one.
func New(opts Options) *App {
	m := opts.Model
	if m == nil {
		m = tree.New(tree.DefaultLimits())
	}
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &App{
		model:     m,
		store:     opts.Store,
		key:       key,
		logger:    logger,
		afterSave: opts.AfterSave,
		snap:      NewSnapshot(m),
	}
}

// Open creates an App and loads the stored snapshot.
func Open(ctx context.Context, opts Options) (*App, *LoadResult, error) {
	a := New(opts)
	res, err := a.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return a, res, nil
}

// Load reads the stored snapshot, falling back to a fresh tree when it is
// missing or invalid. Only storage read failures are returned as errors.
func (a *App) Load(ctx context.Context) (*LoadResult, error) {
	res := &LoadResult{}
	if a.store == nil {
		a.snap = NewSnapshot(a.model)
		res.Fresh = true
		return res, nil
	}

	data, err := a.store.Get(ctx, a.key)
	if err != nil {
		if store.IsNotFound(err) {
			a.snap = NewSnapshot(a.model)
			res.Fresh = true
			a.logger.Debug("no stored snapshot, starting fresh", "key", a.key)
			return res, nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	res.Found = true

	snap, result, err := Decode(data, a.model.Limits())
	switch {
	case err != nil:
		res.Reason = err.Error()
	case !result.Valid:
		res.Reason = result.Err().Error()
	}
	if result != nil {
		res.Warnings = result.Warnings
		for _, w := range result.Warnings {
			a.logger.Warn("snapshot", "key", a.key, "warning", w)
		}
	}
	if res.Reason != "" {
		a.snap = NewSnapshot(a.model)
		res.Fresh = true
		a.logger.Warn("stored snapshot unusable, starting fresh", "key", a.key, "reason", res.Reason)
		return res, nil
	}

	a.snap = snap
	a.logger.Debug("loaded snapshot", "key", a.key, "nodes", tree.CountNodes(snap.Root))
	return res, nil
}

// Model returns the tree model.
func (a *App) Model() *tree.Model {
	return a.model
}

// Key returns the storage key.
func (a *App) Key() string {
	return a.key
}

// Snapshot returns the current state. Callers must not modify it.
func (a *App) Snapshot() *Snapshot {
	return a.snap
}

// Root returns the root node. Callers must not modify it.
func (a *App) Root() *tree.Node {
	return a.snap.Root
}

// ShowCompleted reports whether completed nodes are displayed.
func (a *App) ShowCompleted() bool {
	return a.snap.ShowCompleted
}

// RootAlias always resolves to the root node.
const RootAlias = "root"

// Resolve finds a node by exact ID, unique ID prefix or RootAlias.
func (a *App) Resolve(id string) (*tree.Node, error) {
	if id == RootAlias {
		return a.snap.Root, nil
	}
	if n := tree.Find(a.snap.Root, id); n != nil {
		return n, nil
	}
	matches := tree.FindPrefix(a.snap.Root, id)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches %d nodes", ErrAmbiguousID, id, len(matches))
	}
}

// CanSplit reports whether the node may be split.
func (a *App) CanSplit(id string) (bool, error) {
	n, err := a.Resolve(id)
	if err != nil {
		return false, err
	}
	return a.model.CanSplit(n), nil
}

// Split splits the node. It returns false without saving when the node
// cannot be split.
func (a *App) Split(ctx context.Context, id string) (bool, error) {
	n, err := a.Resolve(id)
	if err != nil {
		return false, err
	}
	if err := a.model.CheckSplit(n); err != nil {
		a.logger.Debug("split refused", "node", n.ID, "depth", n.Depth, "reason", err)
		return false, nil
	}
	a.model.Split(n)
	a.logger.Debug("split", "node", n.ID, "depth", n.Depth)
	return true, a.save(ctx, EventSplit)
}

// Unsplit drops every descendant of the node.
func (a *App) Unsplit(ctx context.Context, id string) error {
	n, err := a.Resolve(id)
	if err != nil {
		return err
	}
	dropped := tree.CountNodes(n) - 1
	tree.Unsplit(n)
	a.model.ReclampPriorities(a.snap.Root)
	a.logger.Debug("unsplit", "node", n.ID, "dropped", dropped)
	return a.save(ctx, EventUnsplit)
}

// SetCompleted sets the completion flag of the node only.
func (a *App) SetCompleted(ctx context.Context, id string, completed bool) error {
	n, err := a.Resolve(id)
	if err != nil {
		return err
	}
	tree.SetCompleted(n, completed)
	a.logger.Debug("set completed", "node", n.ID, "completed", completed)
	return a.save(ctx, EventComplete)
}

// ToggleCompleted flips the completion flag and returns the new value.
func (a *App) ToggleCompleted(ctx context.Context, id string) (bool, error) {
	n, err := a.Resolve(id)
	if err != nil {
		return false, err
	}
	completed := !n.Completed
	return completed, a.SetCompleted(ctx, n.ID, completed)
}

// Edit applies field edits to the node.
func (a *App) Edit(ctx context.Context, id string, f tree.Fields) error {
	n, err := a.Resolve(id)
	if err != nil {
		return err
	}
	a.model.Edit(a.snap.Root, n, f)
	a.logger.Debug("edit", "node", n.ID, "title", n.Title)
	return a.save(ctx, EventEdit)
}

// ResetRoot replaces the tree with a fresh root, keeping display settings.
func (a *App) ResetRoot(ctx context.Context) error {
	a.snap.Root = a.model.NewRoot()
	a.logger.Debug("reset root", "node", a.snap.Root.ID)
	return a.save(ctx, EventReset)
}

// ClearAll deletes the stored snapshot and starts over with defaults.
func (a *App) ClearAll(ctx context.Context) error {
	if a.store != nil {
		if err := a.store.Delete(ctx, a.key); err != nil {
			return fmt.Errorf("%w: %v", ErrSave, err)
		}
	}
	a.snap = NewSnapshot(a.model)
	a.logger.Debug("cleared", "key", a.key)
	return a.save(ctx, EventClear)
}

// SetShowCompleted sets whether completed nodes are displayed.
func (a *App) SetShowCompleted(ctx context.Context, show bool) error {
	a.snap.ShowCompleted = show
	return a.save(ctx, EventShowCompleted)
}

// ToggleShowCompleted flips the display setting and returns the new value.
func (a *App) ToggleShowCompleted(ctx context.Context) (bool, error) {
	show := !a.snap.ShowCompleted
	return show, a.SetShowCompleted(ctx, show)
}

// Replace swaps in a whole snapshot, as when importing a file. The
// snapshot must already be validated.
func (a *App) Replace(ctx context.Context, s *Snapshot) error {
	if s == nil || s.Root == nil {
		return fmt.Errorf("replace: snapshot has no root")
	}
	a.snap = s
	a.logger.Debug("replaced snapshot", "nodes", tree.CountNodes(s.Root))
	return a.save(ctx, EventReplace)
}

// Save writes the current snapshot.
func (a *App) Save(ctx context.Context) error {
	return a.save(ctx, "save")
}

func (a *App) save(ctx context.Context, event string) error {
	if a.store == nil {
		return nil
	}
	data, err := Encode(a.snap)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	if err := a.store.Put(ctx, a.key, data); err != nil {
		a.logger.Error("save failed", "key", a.key, "event", event, "err", err)
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	if a.afterSave != nil {
		if err := a.afterSave(ctx, event, data); err != nil {
			a.logger.Warn("after-save hook failed", "event", event, "err", err)
		}
	}
	return nil
}

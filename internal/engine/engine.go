// Package engine owns the canonical tree, its lookup, the selection and the
// expansion revert buffer, and exposes the actions a tree widget calls.
//
// The engine is not safe for concurrent use. Every action runs synchronously
// and its result is observable as soon as it returns.
package engine

import (
	"log"
	"reflect"

	"github.com/pstuifzand/treestate/internal/model"
	"github.com/pstuifzand/treestate/internal/store"
	"github.com/pstuifzand/treestate/internal/tree"
)

// Options are the host-supplied settings of an engine
type Options struct {
	SelectionMode    model.SelectionMode
	AllowsExpansion  bool
	AllowsVisibility bool
	SelectedKeys     model.Selection

	// OnSelectionChange receives the selection after every accepted toggle.
	OnSelectionChange func(model.Selection)
	// OnUpdate receives the forest whenever it changed. It is meant for side
	// effects only and must not call back into the engine.
	OnUpdate func([]model.Item)

	// NewStore builds the item store. Defaults to store.NewListStore.
	NewStore func(rootKey string, items []model.Item) store.Store
	Logger   *log.Logger
}

// Snapshot is the state handed to rendering code.
// Tree and Lookup are shared with the engine and must not be modified.
type Snapshot struct {
	Tree             *model.TreeNode
	Lookup           model.Lookup
	SelectedKeys     model.Selection
	SelectionMode    model.SelectionMode
	AllowsExpansion  bool
	AllowsVisibility bool
}

type revertEntry struct {
	key   string
	patch model.Patch
}

// Engine is the tree state engine
type Engine struct {
	opts     Options
	logger   *log.Logger
	rootKey  string
	store    store.Store
	root     *model.TreeNode
	lookup   model.Lookup
	selected model.Selection
	revert   []revertEntry
	reported []model.Item
}

// New creates an engine holding the given forest
func New(items []model.Item, opts Options) *Engine {
	e := &Engine{}
	e.SetOptions(opts)
	e.Reset(items)
	return e
}

// SetOptions replaces the engine's options without touching the tree.
// The initial selection in opts is only used by Reset.
func (e *Engine) SetOptions(opts Options) {
	if opts.NewStore == nil {
		opts.NewStore = func(rootKey string, items []model.Item) store.Store {
			return store.NewListStore(rootKey, items)
		}
	}
	e.logger = opts.Logger
	if e.logger == nil {
		e.logger = log.Default()
	}

	visibilityChanged := e.opts.AllowsVisibility != opts.AllowsVisibility
	e.opts = opts
	if visibilityChanged && e.store != nil {
		e.refresh()
		e.changed()
	}
}

// Reset discards all state and rebuilds the tree from items
func (e *Engine) Reset(items []model.Item) {
	e.rootKey = model.NewRootKey()
	e.store = e.opts.NewStore(e.rootKey, items)
	e.revert = nil
	e.selected = model.Selection{All: e.opts.SelectedKeys.All, Keys: e.opts.SelectedKeys.Keys.Clone()}
	e.refresh()
	e.reported = e.Items()
}

// Snapshot returns the current output state
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Tree:             e.root,
		Lookup:           e.lookup,
		SelectedKeys:     e.selected,
		SelectionMode:    e.opts.SelectionMode,
		AllowsExpansion:  e.opts.AllowsExpansion,
		AllowsVisibility: e.opts.AllowsVisibility,
	}
}

// Root returns the sentinel-rooted canonical tree
func (e *Engine) Root() *model.TreeNode {
	return e.root
}

// RootKey returns the key of the sentinel root
func (e *Engine) RootKey() string {
	return e.rootKey
}

// Logger returns the logger guard conditions are reported to
func (e *Engine) Logger() *log.Logger {
	return e.logger
}

// Lookup returns the flat key index, root included
func (e *Engine) Lookup() model.Lookup {
	return e.lookup
}

// SelectedKeys returns the current selection
func (e *Engine) SelectedKeys() model.Selection {
	return e.selected
}

// Items returns the current forest with every group's nodes reconstructed
func (e *Engine) Items() []model.Item {
	root, ok := e.lookup[e.rootKey]
	if !ok {
		return nil
	}
	return tree.Reconstruct(e.lookup, root).Nodes
}

// GetItem returns key's current value. A group's nodes are rebuilt from the
// live values of its children, never taken from a cached copy.
func (e *Engine) GetItem(key string) (model.Item, bool) {
	node, ok := e.lookup[key]
	if !ok || key == e.rootKey {
		return model.Item{}, false
	}
	return tree.Reconstruct(e.lookup, node), true
}

// Update merges patch into key's value
func (e *Engine) Update(key string, patch model.Patch) {
	if e.update(key, patch) {
		e.commit()
	}
}

// update writes the patched value into the lookup first, so that later
// calls within the same action read it, and then forwards it to the store.
func (e *Engine) update(key string, patch model.Patch) bool {
	node, ok := e.lookup[key]
	if !ok || key == e.rootKey {
		return false
	}

	value := patch.Apply(tree.Reconstruct(e.lookup, node))
	next := *node
	next.Value = value.WithoutNodes()
	e.lookup[key] = &next
	e.store.Update(key, value)
	return true
}

// refresh rebuilds the canonical tree and lookup from the store
func (e *Engine) refresh() {
	root := &model.TreeNode{
		Key:      e.rootKey,
		Value:    tree.RootValue(e.rootKey),
		Children: e.store.Items(),
	}
	if e.opts.AllowsVisibility {
		root = tree.RecomputeVisibility(root)
	}
	e.root = root
	e.lookup = tree.Index(root)
}

// changed reports the forest to OnUpdate if it differs from the last report
func (e *Engine) changed() {
	items := e.Items()
	if reflect.DeepEqual(items, e.reported) {
		return
	}
	e.reported = items
	if e.opts.OnUpdate != nil {
		e.opts.OnUpdate(items)
	}
}

func (e *Engine) commit() {
	e.refresh()
	e.changed()
}

// resolve returns the nodes addressed by sel in tree order, root excluded
func (e *Engine) resolve(sel model.Selection) []*model.TreeNode {
	var nodes []*model.TreeNode
	tree.Walk(e.root, func(n *model.TreeNode) bool {
		if n != e.root && (sel.All || sel.Keys.Has(n.Key)) {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}

// itemCount returns the number of items in the forest
func (e *Engine) itemCount() int {
	return len(e.lookup) - 1
}

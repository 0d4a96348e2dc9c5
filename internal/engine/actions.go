package engine

import (
	"github.com/pstuifzand/treestate/internal/model"
	"github.com/pstuifzand/treestate/internal/tree"
)

// ToggleIsExpanded sets or flips isExpanded on every group addressed by sel.
// A revertable call records the prior state of each target first, replacing
// the revert buffer; any other call clears it. Revertable calls go through
// even when expansion is disabled, so drag-triggered collapses still work.
func (e *Engine) ToggleIsExpanded(sel model.Selection, state model.Toggle, revertable bool) {
	if !e.opts.AllowsExpansion && !revertable {
		e.logger.Printf("engine: expansion disabled, ignoring toggle of %s", sel)
		return
	}

	var targets []*model.TreeNode
	for _, node := range e.resolve(sel) {
		if node.Value.IsGroup() {
			targets = append(targets, node)
		}
	}

	e.revert = nil
	if revertable {
		for _, node := range targets {
			e.revert = append(e.revert, revertEntry{
				key:   node.Key,
				patch: model.Patch{IsExpanded: model.Bool(node.Value.IsExpanded)},
			})
		}
	}

	if len(targets) == 0 {
		return
	}
	for _, node := range targets {
		e.update(node.Key, model.Patch{IsExpanded: model.Bool(state.Apply(node.Value.IsExpanded))})
	}
	e.commit()
}

// RevertIsExpanded restores the expansion recorded by the last revertable
// toggle and empties the buffer
func (e *Engine) RevertIsExpanded() {
	if len(e.revert) == 0 {
		return
	}
	entries := e.revert
	e.revert = nil
	for _, entry := range entries {
		e.update(entry.key, entry.patch)
	}
	e.commit()
}

// ToggleIsSelected changes the selection. An explicit state replaces the
// selection outright; a flip takes the symmetric difference in multiple mode
// and replaces it in single mode. Keys missing from the forest are dropped.
// Calls are ignored in none mode, when no named key exists, and when single
// mode is asked to select more than one key.
func (e *Engine) ToggleIsSelected(sel model.Selection, state model.Toggle) {
	mode := e.opts.SelectionMode
	if mode == model.SelectionNone {
		e.logger.Printf("engine: selection disabled, ignoring %s", sel)
		return
	}

	target := e.keySet(sel)
	if !sel.All && len(sel.Keys) > 0 && len(target) == 0 {
		e.logger.Printf("engine: no known keys in %s, ignoring", sel)
		return
	}
	if mode == model.SelectionSingle && len(target) > 1 {
		e.logger.Printf("engine: single selection mode, ignoring %d keys", len(target))
		return
	}

	var next model.KeySet
	switch {
	case state == model.ToggleOn:
		next = target
	case state == model.ToggleOff:
		next = model.NewKeySet()
	case mode == model.SelectionSingle:
		next = target
	default:
		current := e.keySet(e.selected)
		next = model.NewKeySet()
		for k := range current {
			if !target.Has(k) {
				next.Add(k)
			}
		}
		for k := range target {
			if !current.Has(k) {
				next.Add(k)
			}
		}
	}

	e.selected = model.Selection{Keys: next}
	if len(next) == e.itemCount() && (sel.All || e.covers(next)) {
		e.selected = model.AllKeys
	}
	e.selectionChanged()
}

func (e *Engine) selectionChanged() {
	if e.opts.OnSelectionChange != nil {
		e.opts.OnSelectionChange(e.selected)
	}
}

// SetSelectedKeys replaces the selection without consulting the selection
// mode or notifying OnSelectionChange
func (e *Engine) SetSelectedKeys(sel model.Selection) {
	e.selected = model.Selection{All: sel.All, Keys: sel.Keys.Clone()}
}

// ToggleIsViewable sets or flips isViewable. Targeted keys go through
// visibility propagation one after another; the "all" selection toggles
// every node directly with no propagation.
func (e *Engine) ToggleIsViewable(sel model.Selection, state model.Toggle) {
	if !e.opts.AllowsVisibility {
		e.logger.Printf("engine: visibility disabled, ignoring %s", sel)
		return
	}

	root := e.root
	if sel.All {
		root = tree.Map(root, func(n *model.TreeNode) *model.TreeNode {
			if n.Key == e.rootKey || n.Value.IsReadOnly {
				return nil
			}
			want := state.Apply(n.Value.IsViewable)
			if want == n.Value.IsViewable {
				return nil
			}
			c := *n
			c.Value.IsViewable = want
			return &c
		})
		root = tree.RecomputeVisibility(root)
	} else {
		for _, node := range e.resolve(sel) {
			root = tree.ToggleVisibility(root, node.Key, state)
		}
	}

	dirty := false
	tree.Walk(root, func(n *model.TreeNode) bool {
		if n.Key == e.rootKey {
			return true
		}
		old, ok := e.lookup[n.Key]
		if !ok {
			return true
		}
		if old.Value.IsViewable != n.Value.IsViewable || old.Value.IsVisible != n.Value.IsVisible {
			e.update(n.Key, model.Patch{
				IsViewable: model.Bool(n.Value.IsViewable),
				IsVisible:  model.Bool(n.Value.IsVisible),
			})
			dirty = true
		}
		return true
	})
	if dirty {
		e.commit()
	}
}

// keySet resolves sel to the items it names; "all" expands to every item
// and keys missing from the forest are dropped
func (e *Engine) keySet(sel model.Selection) model.KeySet {
	if sel.All {
		return model.NewKeySet(tree.Keys(e.root)...)
	}
	keys := model.NewKeySet()
	for key := range sel.Keys {
		if e.isItem(key) {
			keys.Add(key)
		}
	}
	return keys
}

// covers reports whether keys holds every item in the forest
func (e *Engine) covers(keys model.KeySet) bool {
	for key := range e.lookup {
		if key != e.rootKey && !keys.Has(key) {
			return false
		}
	}
	return true
}

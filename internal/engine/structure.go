package engine

import (
	"github.com/pstuifzand/treestate/internal/model"
	"github.com/pstuifzand/treestate/internal/tree"
)

// Insert places items at index among parentKey's children. An empty
// parentKey or the root key addresses the root level. A negative index appends.
func (e *Engine) Insert(parentKey string, index int, items ...model.Item) {
	parent, ok := e.group(parentKey)
	if !ok {
		return
	}
	if items = e.fresh(items, nil); len(items) == 0 {
		return
	}
	e.store.Insert(parent.Key, index, items...)
	e.commit()
}

// InsertBefore places items directly before key
func (e *Engine) InsertBefore(key string, items ...model.Item) {
	if !e.isItem(key) {
		return
	}
	if items = e.fresh(items, nil); len(items) == 0 {
		return
	}
	e.store.InsertBefore(key, items...)
	e.commit()
}

// InsertAfter places items directly after key
func (e *Engine) InsertAfter(key string, items ...model.Item) {
	if !e.isItem(key) {
		return
	}
	if items = e.fresh(items, nil); len(items) == 0 {
		return
	}
	e.store.InsertAfter(key, items...)
	e.commit()
}

// Prepend places items before parentKey's first child
func (e *Engine) Prepend(parentKey string, items ...model.Item) {
	e.Insert(parentKey, 0, items...)
}

// Append places items after parentKey's last child
func (e *Engine) Append(parentKey string, items ...model.Item) {
	e.Insert(parentKey, -1, items...)
}

// Move re-parents key, with its subtree, to index among toParentKey's
// children. Moving a node into its own subtree is ignored.
func (e *Engine) Move(key, toParentKey string, index int) {
	parent, ok := e.group(toParentKey)
	if !ok || !e.isItem(key) {
		return
	}
	if e.lookup.IsAncestor(key, parent.Key) {
		e.logger.Printf("engine: cannot move %s into its own subtree", key)
		return
	}
	e.store.Move(key, parent.Key, index)
	e.commit()
}

// Remove deletes the given keys with their subtrees and drops them from the selection
func (e *Engine) Remove(keys ...string) {
	var existing []string
	for _, key := range keys {
		if e.isItem(key) {
			existing = append(existing, key)
		}
	}
	if len(existing) == 0 {
		return
	}

	e.store.Remove(existing...)
	e.commit()
	e.pruneSelection()
}

// RemoveSelectedItems deletes every selected item and clears the selection
func (e *Engine) RemoveSelectedItems() {
	cleared := e.selected.All || len(e.selected.Keys) > 0
	keys := e.keySet(e.selected)
	e.selected = model.Selection{Keys: model.NewKeySet()}
	e.Remove(keys.Sorted()...)
	if cleared {
		e.selectionChanged()
	}
}

// MoveItems places items next to anchor, or at the end of its children with
// PlaceInside, where an empty anchor is the root level. Items already in the
// forest are taken out of their old position in the same change, so OnUpdate
// never sees them missing or twice. The move is all or nothing: a missing
// anchor, an anchor inside one of the items or a clashing id leaves the tree
// as it was. It reports whether the items were placed.
func (e *Engine) MoveItems(anchor string, place model.Placement, items ...model.Item) bool {
	if len(items) == 0 {
		return false
	}
	anchorKey, ok := e.anchor(anchor, place)
	if !ok {
		e.logger.Printf("engine: no anchor %q to move %s, ignoring", anchor, place)
		return false
	}

	replaced := model.NewKeySet()
	var existing []string
	for _, item := range items {
		if e.lookup.IsAncestor(item.ID, anchorKey) {
			e.logger.Printf("engine: anchor %s is inside moved item %s, ignoring", anchorKey, item.ID)
			return false
		}
		if !e.isItem(item.ID) {
			continue
		}
		existing = append(existing, item.ID)
		replaced.Add(item.ID)
		for _, key := range tree.Keys(e.lookup[item.ID]) {
			replaced.Add(key)
		}
	}
	if len(e.fresh(items, replaced)) != len(items) {
		return false
	}

	if len(existing) > 0 {
		e.store.Remove(existing...)
	}
	switch place {
	case model.PlaceInside:
		e.store.Insert(anchorKey, -1, items...)
	case model.PlaceAfter:
		e.store.InsertAfter(anchorKey, items...)
	default:
		e.store.InsertBefore(anchorKey, items...)
	}
	e.commit()
	e.pruneSelection()
	return true
}

// anchor resolves the key MoveItems places items against
func (e *Engine) anchor(key string, place model.Placement) (string, bool) {
	if place == model.PlaceInside {
		node, ok := e.group(key)
		if !ok {
			return "", false
		}
		return node.Key, true
	}
	return key, e.isItem(key)
}

// pruneSelection drops selected keys that are no longer in the forest
func (e *Engine) pruneSelection() {
	if e.selected.All {
		return
	}
	kept := model.NewKeySet()
	for key := range e.selected.Keys {
		if e.isItem(key) {
			kept.Add(key)
		}
	}
	if len(kept) == len(e.selected.Keys) {
		return
	}
	e.selected = model.Selection{Keys: kept}
	e.selectionChanged()
}

// group resolves key to a group node; empty means the root
func (e *Engine) group(key string) (*model.TreeNode, bool) {
	if key == "" {
		key = e.rootKey
	}
	node, ok := e.lookup[key]
	if !ok || !node.Value.IsGroup() {
		return nil, false
	}
	return node, true
}

func (e *Engine) isItem(key string) bool {
	_, ok := e.lookup[key]
	return ok && key != e.rootKey
}

// fresh drops items whose id, or any nested id, is already in use.
// Keys in replaced count as free.
func (e *Engine) fresh(items []model.Item, replaced model.KeySet) []model.Item {
	used := make(model.KeySet, len(e.lookup))
	for key := range e.lookup {
		if !replaced.Has(key) {
			used.Add(key)
		}
	}

	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		ids := itemIDs(item)
		local := model.NewKeySet()
		clash := false
		for _, id := range ids {
			if used.Has(id) || local.Has(id) {
				clash = true
				break
			}
			local.Add(id)
		}
		if clash {
			e.logger.Printf("engine: item %s clashes with an existing id, not inserted", item.ID)
			continue
		}
		for _, id := range ids {
			used.Add(id)
		}
		out = append(out, item)
	}
	return out
}

func itemIDs(item model.Item) []string {
	var ids []string
	tree.Walk(tree.NewNode("", item), func(n *model.TreeNode) bool {
		ids = append(ids, n.Key)
		return true
	})
	return ids
}

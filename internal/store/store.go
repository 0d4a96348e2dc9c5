// Package store implements the flat item store that backs the tree engine.
//
// The store only knows about structure: which items exist, where they sit
// and in which order. Deep lookups walk the tree, so callers that need O(1)
// access keep their own index.
package store

import (
	"slices"

	"github.com/pstuifzand/treestate/internal/model"
	"github.com/pstuifzand/treestate/internal/tree"
)

// Store is the structural item store the engine mutates.
// A parentKey equal to the store's root key addresses the root level.
type Store interface {
	RootKey() string
	Items() []*model.TreeNode
	GetItem(key string) (*model.TreeNode, bool)
	Insert(parentKey string, index int, values ...model.Item)
	InsertBefore(key string, values ...model.Item)
	InsertAfter(key string, values ...model.Item)
	Prepend(parentKey string, values ...model.Item)
	Append(parentKey string, values ...model.Item)
	Move(key, toParentKey string, index int)
	Remove(keys ...string)
	Update(key string, value model.Item)
}

// ListStore is a copy-on-write Store. Every mutation replaces the nodes on
// the path to the change and shares everything else with the previous state.
type ListStore struct {
	rootKey string
	items   []*model.TreeNode
}

// NewListStore creates a store holding the given forest
func NewListStore(rootKey string, items []model.Item) *ListStore {
	return &ListStore{
		rootKey: rootKey,
		items:   tree.NewNodes(rootKey, items),
	}
}

// RootKey returns the key addressing the root level
func (s *ListStore) RootKey() string {
	return s.rootKey
}

// Items returns the root-level nodes
func (s *ListStore) Items() []*model.TreeNode {
	return s.items
}

// GetItem finds the node with the given key
func (s *ListStore) GetItem(key string) (*model.TreeNode, bool) {
	node, _, _ := find(s.items, s.rootKey, key)
	return node, node != nil
}

// Insert places values at index among parentKey's children.
// The index is clamped to the valid range.
func (s *ListStore) Insert(parentKey string, index int, values ...model.Item) {
	s.insertNodes(parentKey, index, tree.NewNodes(parentKey, values))
}

// InsertBefore places values directly before key
func (s *ListStore) InsertBefore(key string, values ...model.Item) {
	if _, parentKey, idx := find(s.items, s.rootKey, key); idx >= 0 {
		s.Insert(parentKey, idx, values...)
	}
}

// InsertAfter places values directly after key
func (s *ListStore) InsertAfter(key string, values ...model.Item) {
	if _, parentKey, idx := find(s.items, s.rootKey, key); idx >= 0 {
		s.Insert(parentKey, idx+1, values...)
	}
}

// Prepend places values before parentKey's first child
func (s *ListStore) Prepend(parentKey string, values ...model.Item) {
	s.Insert(parentKey, 0, values...)
}

// Append places values after parentKey's last child
func (s *ListStore) Append(parentKey string, values ...model.Item) {
	s.Insert(parentKey, -1, values...)
}

// Move detaches key with its subtree and re-inserts it at index among
// toParentKey's children. The index is interpreted after the detach.
func (s *ListStore) Move(key, toParentKey string, index int) {
	node, _, _ := find(s.items, s.rootKey, key)
	if node == nil {
		return
	}
	s.Remove(key)

	moved := *node
	moved.ParentKey = toParentKey
	s.insertNodes(toParentKey, index, []*model.TreeNode{&moved})
}

// Remove deletes the given keys together with their subtrees
func (s *ListStore) Remove(keys ...string) {
	for _, key := range keys {
		s.items, _ = rewrite(s.items, key, func(*model.TreeNode) *model.TreeNode {
			return nil
		})
	}
}

// Update replaces key's value. A group's children are rebuilt from value.Nodes.
func (s *ListStore) Update(key string, value model.Item) {
	s.items, _ = rewrite(s.items, key, func(old *model.TreeNode) *model.TreeNode {
		return tree.NewNode(old.ParentKey, value)
	})
}

func (s *ListStore) insertNodes(parentKey string, index int, nodes []*model.TreeNode) {
	if len(nodes) == 0 {
		return
	}
	if parentKey == s.rootKey {
		s.items = insertAt(s.items, index, nodes)
		return
	}
	s.items, _ = rewrite(s.items, parentKey, func(parent *model.TreeNode) *model.TreeNode {
		if !parent.Value.IsGroup() {
			return parent
		}
		c := *parent
		c.Children = insertAt(parent.Children, index, nodes)
		return &c
	})
}

// insertAt returns a new slice with nodes inserted at index; a negative or
// out of range index appends.
func insertAt(list []*model.TreeNode, index int, nodes []*model.TreeNode) []*model.TreeNode {
	if index < 0 || index > len(list) {
		index = len(list)
	}
	return slices.Insert(slices.Clone(list), index, nodes...)
}

// find returns the node with key, its parent key and its index among its siblings
func find(nodes []*model.TreeNode, parentKey, key string) (*model.TreeNode, string, int) {
	for idx, node := range nodes {
		if node.Key == key {
			return node, parentKey, idx
		}
		if found, p, i := find(node.Children, node.Key, key); found != nil {
			return found, p, i
		}
	}
	return nil, "", -1
}

// rewrite replaces the node with key by fn(node), dropping it when fn
// returns nil. Ancestors of the node are copied; everything else is shared.
func rewrite(nodes []*model.TreeNode, key string, fn func(*model.TreeNode) *model.TreeNode) ([]*model.TreeNode, bool) {
	for idx, node := range nodes {
		if node.Key == key {
			out := slices.Clone(nodes)
			if next := fn(node); next != nil {
				out[idx] = next
			} else {
				out = slices.Delete(out, idx, idx+1)
			}
			return out, true
		}
		if children, ok := rewrite(node.Children, key, fn); ok {
			out := slices.Clone(nodes)
			c := *node
			c.Children = children
			out[idx] = &c
			return out, true
		}
	}
	return nodes, false
}

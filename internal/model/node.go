package model

import (
	"strings"

	"github.com/google/uuid"
)

const rootKeyPrefix = "root-"

// TreeNode wraps an item's current value with its position in the tree.
// Value.Nodes is never authoritative on a TreeNode; Children is.
type TreeNode struct {
	Key       string
	ParentKey string
	Value     Item
	Children  []*TreeNode
}

// Lookup is a flat key -> node index rebuilt alongside the canonical tree
type Lookup map[string]*TreeNode

// NewRootKey generates a sentinel key for the root of a forest
func NewRootKey() string {
	return rootKeyPrefix + uuid.NewString()
}

// IsRootKey reports whether key looks like a generated sentinel key
func IsRootKey(key string) bool {
	if !strings.HasPrefix(key, rootKeyPrefix) {
		return false
	}
	return uuid.Validate(strings.TrimPrefix(key, rootKeyPrefix)) == nil
}

// Clone returns a shallow copy of the node with its own children slice
func (n *TreeNode) Clone() *TreeNode {
	c := *n
	c.Children = append([]*TreeNode(nil), n.Children...)
	return &c
}

// ChildIndex returns the position of the child with the given key, or -1
func (n *TreeNode) ChildIndex(key string) int {
	for idx, child := range n.Children {
		if child.Key == key {
			return idx
		}
	}
	return -1
}

// IsAncestor reports whether ancestorKey is key itself or one of its ancestors
func (l Lookup) IsAncestor(ancestorKey, key string) bool {
	for node := l[key]; node != nil; node = l[node.ParentKey] {
		if node.Key == ancestorKey {
			return true
		}
	}
	return false
}

// Package tree implements the immutable transforms over a TreeNode forest
package tree

import (
	"github.com/pstuifzand/treestate/internal/model"
)

// Map walks node depth-first, post-order, and applies fn to every visited
// node including node itself, which is visited last. When fn returns nil the
// node is kept as is. New nodes are only allocated along paths where something
// changed, so unchanged branches keep their identity.
//
// fn must be pure. Callers that need to skip the root must compare keys themselves.
func Map(node *model.TreeNode, fn func(*model.TreeNode) *model.TreeNode) *model.TreeNode {
	var children []*model.TreeNode
	for idx, child := range node.Children {
		mapped := Map(child, fn)
		if mapped == child {
			continue
		}
		if children == nil {
			children = append([]*model.TreeNode(nil), node.Children...)
		}
		children[idx] = mapped
	}

	current := node
	if children != nil {
		c := *node
		c.Children = children
		current = &c
	}

	if out := fn(current); out != nil {
		return out
	}
	return current
}

// Walk visits node and its descendants in pre-order.
// Returning false from fn skips the node's children.
func Walk(node *model.TreeNode, fn func(*model.TreeNode) bool) {
	if !fn(node) {
		return
	}
	for _, child := range node.Children {
		Walk(child, fn)
	}
}

// RootValue returns the value carried by the sentinel root node
func RootValue(rootKey string) model.Item {
	return model.Item{
		Kind:       model.KindGroup,
		ID:         rootKey,
		IsViewable: true,
		IsVisible:  true,
		IsExpanded: true,
	}
}

// Build constructs a sentinel-rooted tree from a forest of items
func Build(rootKey string, items []model.Item) *model.TreeNode {
	return &model.TreeNode{
		Key:      rootKey,
		Value:    RootValue(rootKey),
		Children: NewNodes(rootKey, items),
	}
}

// NewNodes wraps each item, and its nested items, in a TreeNode
func NewNodes(parentKey string, items []model.Item) []*model.TreeNode {
	nodes := make([]*model.TreeNode, 0, len(items))
	for _, item := range items {
		nodes = append(nodes, NewNode(parentKey, item))
	}
	return nodes
}

// NewNode wraps item in a TreeNode under parentKey
func NewNode(parentKey string, item model.Item) *model.TreeNode {
	node := &model.TreeNode{
		Key:       item.ID,
		ParentKey: parentKey,
		Value:     item.WithoutNodes(),
	}
	if item.IsGroup() {
		node.Children = NewNodes(item.ID, item.Nodes)
	}
	return node
}

// Index builds the flat lookup for the tree, root included
func Index(root *model.TreeNode) model.Lookup {
	lookup := make(model.Lookup)
	Walk(root, func(n *model.TreeNode) bool {
		lookup[n.Key] = n
		return true
	})
	return lookup
}

// Reconstruct returns node's value with a group's nodes rebuilt from the
// current lookup entries of its children. Children missing from the lookup
// fall back to the recorded child node.
func Reconstruct(lookup model.Lookup, node *model.TreeNode) model.Item {
	value := node.Value
	value.Nodes = nil
	if !value.IsGroup() {
		return value
	}

	value.Nodes = make([]model.Item, 0, len(node.Children))
	for _, child := range node.Children {
		if current, ok := lookup[child.Key]; ok {
			child = current
		}
		value.Nodes = append(value.Nodes, Reconstruct(lookup, child))
	}
	return value
}

// Keys returns every key below root in pre-order, root excluded
func Keys(root *model.TreeNode) []string {
	var keys []string
	Walk(root, func(n *model.TreeNode) bool {
		if n != root {
			keys = append(keys, n.Key)
		}
		return true
	})
	return keys
}

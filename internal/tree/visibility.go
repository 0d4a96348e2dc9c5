package tree

import (
	"github.com/pstuifzand/treestate/internal/model"
)

// RecomputeVisibility derives IsVisible for every node below root:
// a node is visible when it is viewable and its parent is visible.
// The root itself is always treated as visible and left untouched.
func RecomputeVisibility(root *model.TreeNode) *model.TreeNode {
	visible := make(map[string]bool)
	var walk func(n *model.TreeNode, parentVisible bool)
	walk = func(n *model.TreeNode, parentVisible bool) {
		v := parentVisible && n.Value.IsViewable
		visible[n.Key] = v
		for _, child := range n.Children {
			walk(child, v)
		}
	}
	for _, child := range root.Children {
		walk(child, true)
	}

	return Map(root, func(n *model.TreeNode) *model.TreeNode {
		want, ok := visible[n.Key]
		if !ok || n.Key == root.Key || n.Value.IsVisible == want {
			return nil
		}
		c := *n
		c.Value.IsVisible = want
		return &c
	})
}

type visibilityStep struct {
	key   string
	state model.Toggle
}

// ToggleVisibility sets the viewable flag of key (or flips it for
// model.ToggleFlip) and propagates the consequences until nothing changes:
//
//   - a node that ends up viewable under a hidden parent turns the parent on
//   - a node turned off that was the last viewable subtree under its parent
//     turns the parent off
//   - a group turned on whose descendants are all off turns them all on
//
// Every follow-up is queued and handled as its own pass, so each one can
// trigger further follow-ups. Read-only nodes are never changed.
func ToggleVisibility(root *model.TreeNode, key string, state model.Toggle) *model.TreeNode {
	root = RecomputeVisibility(root)

	queue := []visibilityStep{{key: key, state: state}}
	seen := make(map[visibilityStep]bool)
	for len(queue) > 0 {
		step := queue[0]
		queue = queue[1:]
		if seen[step] {
			continue
		}
		seen[step] = true

		var next []visibilityStep
		root, next = applyVisibilityStep(root, step)
		queue = append(queue, next...)
	}
	return root
}

func applyVisibilityStep(root *model.TreeNode, step visibilityStep) (*model.TreeNode, []visibilityStep) {
	lookup := Index(root)
	node, ok := lookup[step.key]
	if !ok || node == root || node.Value.IsReadOnly {
		return root, nil
	}

	was := node.Value.IsViewable
	now := step.state.Apply(was)
	parent := lookup[node.ParentKey]
	if parent == root {
		parent = nil
	}

	set := map[string]bool{node.Key: now}
	var follow []visibilityStep

	if now {
		if node.Value.IsGroup() && len(node.Children) > 0 && !anyViewable(node.Children) {
			for _, child := range node.Children {
				Walk(child, func(d *model.TreeNode) bool {
					if !d.Value.IsReadOnly {
						set[d.Key] = true
					}
					return true
				})
			}
		}
		if parent != nil && !parent.Value.IsVisible {
			follow = append(follow, visibilityStep{key: parent.Key, state: model.ToggleOn})
		}
	} else if was && parent != nil && parent.Value.IsViewable && !siblingsViewable(parent, node.Key) {
		follow = append(follow, visibilityStep{key: parent.Key, state: model.ToggleOff})
	}

	root = Map(root, func(n *model.TreeNode) *model.TreeNode {
		want, ok := set[n.Key]
		if !ok || n.Value.IsViewable == want {
			return nil
		}
		c := *n
		c.Value.IsViewable = want
		return &c
	})
	return RecomputeVisibility(root), follow
}

// anyViewable reports whether any node in the given subtrees is viewable
func anyViewable(nodes []*model.TreeNode) bool {
	found := false
	for _, n := range nodes {
		Walk(n, func(d *model.TreeNode) bool {
			if d.Value.IsViewable {
				found = true
			}
			return !found
		})
		if found {
			return true
		}
	}
	return false
}

func siblingsViewable(parent *model.TreeNode, key string) bool {
	siblings := make([]*model.TreeNode, 0, len(parent.Children))
	for _, child := range parent.Children {
		if child.Key != key {
			siblings = append(siblings, child)
		}
	}
	return anyViewable(siblings)
}

package tree

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"pgregory.net/rapid"

	"github.com/pstuifzand/treestate/internal/model"
)

const testRoot = "root-test"

func leaf(id string, viewable bool) model.Item {
	item := model.NewLeaf(id, id)
	item.IsViewable = viewable
	return item
}

func group(id string, viewable bool, nodes ...model.Item) model.Item {
	item := model.NewGroup(id, id, nodes...)
	item.IsViewable = viewable
	return item
}

func readOnly(item model.Item) model.Item {
	item.IsReadOnly = true
	return item
}

// values returns each node's value keyed by node key, root excluded
func values(root *model.TreeNode) map[string]model.Item {
	out := make(map[string]model.Item)
	Walk(root, func(n *model.TreeNode) bool {
		if n != root {
			out[n.Key] = n.Value
		}
		return true
	})
	return out
}

func mustNode(t *testing.T, root *model.TreeNode, key string) model.Item {
	t.Helper()
	v, ok := values(root)[key]
	if !ok {
		t.Fatalf("node %s missing from tree:\n%s", key, spew.Sdump(root))
	}
	return v
}

// genForest draws a forest with unique ids and random flags
func genForest(t *rapid.T) []model.Item {
	counter := 0
	var gen func(depth int) []model.Item
	gen = func(depth int) []model.Item {
		n := rapid.IntRange(0, 3).Draw(t, "count")
		items := make([]model.Item, 0, n)
		for range n {
			counter++
			id := fmt.Sprintf("n%d", counter)
			viewable := rapid.Bool().Draw(t, "viewable")
			var item model.Item
			if depth < 3 && rapid.Bool().Draw(t, "group") {
				item = group(id, viewable, gen(depth+1)...)
			} else {
				item = leaf(id, viewable)
			}
			item.IsReadOnly = rapid.IntRange(0, 5).Draw(t, "readonly") == 0
			items = append(items, item)
		}
		return items
	}
	return gen(0)
}

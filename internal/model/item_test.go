package model

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestItemUnmarshalKind(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     Kind
		viewable bool
	}{
		{
			name:     "Leaf without isViewable defaults to viewable",
			input:    `{"id":"a","label":"A"}`,
			kind:     KindLeaf,
			viewable: true,
		},
		{
			name:     "Leaf explicitly hidden",
			input:    `{"id":"a","label":"A","isViewable":false}`,
			kind:     KindLeaf,
			viewable: false,
		},
		{
			name:     "Empty nodes array marks a group",
			input:    `{"id":"g","label":"G","nodes":[]}`,
			kind:     KindGroup,
			viewable: true,
		},
		{
			name:     "Null nodes is a leaf",
			input:    `{"id":"g","label":"G","nodes":null}`,
			kind:     KindLeaf,
			viewable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item Item
			if err := json.Unmarshal([]byte(tt.input), &item); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if item.Kind != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, item.Kind)
			}
			if item.IsViewable != tt.viewable {
				t.Errorf("Expected isViewable=%v, got %v", tt.viewable, item.IsViewable)
			}
		})
	}
}

func TestItemMarshalGroupKeepsEmptyNodes(t *testing.T) {
	group := NewGroup("g", "Group")
	group.Types = []string{"foo"}

	data, err := json.Marshal(group)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"nodes":[]`) {
		t.Errorf("Expected empty nodes array in %s", data)
	}

	leaf := NewLeaf("l", "Leaf")
	leaf.Types = []string{"ignored"}
	data, err = json.Marshal(leaf)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "nodes") || strings.Contains(string(data), "types") {
		t.Errorf("Leaf must not carry group fields: %s", data)
	}
}

func TestItemNestedDecode(t *testing.T) {
	input := `{"id":"foo","label":"Foo","isExpanded":true,"types":["a"],"nodes":[{"id":"bar","label":"Bar","isReadOnly":true}]}`

	var item Item
	if err := json.Unmarshal([]byte(input), &item); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !item.IsGroup() || !item.IsExpanded || len(item.Types) != 1 {
		t.Fatalf("Unexpected group: %+v", item)
	}
	if len(item.Nodes) != 1 || item.Nodes[0].ID != "bar" || !item.Nodes[0].IsReadOnly {
		t.Errorf("Unexpected children: %+v", item.Nodes)
	}
}

func TestCloneIsDeep(t *testing.T) {
	group := NewGroup("g", "G", NewLeaf("a", "A"))
	group.Types = []string{"x"}

	clone := group.Clone()
	clone.Nodes[0].Label = "changed"
	clone.Types[0] = "y"

	if group.Nodes[0].Label != "A" || group.Types[0] != "x" {
		t.Errorf("Clone shares state with the original: %+v", group)
	}
}

func TestPatchApply(t *testing.T) {
	leaf := NewLeaf("a", "A")
	patched := Patch{Label: String("B"), IsExpanded: Bool(true), Types: []string{"t"}}.Apply(leaf)
	if patched.Label != "B" {
		t.Errorf("Expected label 'B', got '%s'", patched.Label)
	}
	if patched.IsExpanded || patched.Types != nil {
		t.Errorf("Group-only fields must be ignored for leaves: %+v", patched)
	}

	group := NewGroup("g", "G", NewLeaf("a", "A"))
	patched = Patch{IsExpanded: Bool(true)}.Apply(group)
	if !patched.IsExpanded {
		t.Errorf("Expected group to be expanded")
	}
	if len(patched.Nodes) != 1 {
		t.Errorf("Patch must leave nodes alone, got %d", len(patched.Nodes))
	}

	if !(Patch{}).IsEmpty() {
		t.Errorf("Zero patch should be empty")
	}
}

func TestToggle(t *testing.T) {
	tests := []struct {
		toggle  Toggle
		current bool
		want    bool
	}{
		{ToggleFlip, true, false},
		{ToggleFlip, false, true},
		{ToggleOn, false, true},
		{ToggleOn, true, true},
		{ToggleOff, true, false},
		{ToggleOff, false, false},
	}

	for _, tt := range tests {
		if got := tt.toggle.Apply(tt.current); got != tt.want {
			t.Errorf("%s.Apply(%v) = %v, want %v", tt.toggle, tt.current, got, tt.want)
		}
	}

	if _, err := ParseToggle("sideways"); err == nil {
		t.Errorf("Expected error for unknown toggle")
	}
	if state, _ := ParseToggle("off"); state != ToggleOff {
		t.Errorf("Expected ToggleOff, got %s", state)
	}
}

func TestSelectionJSON(t *testing.T) {
	data, err := json.Marshal(AllKeys)
	if err != nil || string(data) != `"all"` {
		t.Errorf("Expected \"all\", got %s (%v)", data, err)
	}

	data, err = json.Marshal(Keys("b", "a"))
	if err != nil || string(data) != `["a","b"]` {
		t.Errorf("Expected sorted keys, got %s (%v)", data, err)
	}

	var sel Selection
	if err := json.Unmarshal([]byte(`["x","y"]`), &sel); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if sel.All || !sel.Keys.Equal(NewKeySet("x", "y")) {
		t.Errorf("Unexpected selection: %s", sel)
	}

	if err := json.Unmarshal([]byte(`"some"`), &sel); err == nil {
		t.Errorf("Expected error for unknown token")
	}
}

func TestRootKey(t *testing.T) {
	key := NewRootKey()
	if !IsRootKey(key) {
		t.Errorf("Expected %s to be recognized as a root key", key)
	}
	if IsRootKey("root-item") {
		t.Errorf("Plain item ids must not look like root keys")
	}
	if NewRootKey() == key {
		t.Errorf("Root keys must be unique")
	}
}

func TestLookupIsAncestor(t *testing.T) {
	lookup := Lookup{
		"root": {Key: "root"},
		"a":    {Key: "a", ParentKey: "root"},
		"b":    {Key: "b", ParentKey: "a"},
		"c":    {Key: "c", ParentKey: "root"},
	}

	if !lookup.IsAncestor("a", "b") {
		t.Errorf("a should be an ancestor of b")
	}
	if !lookup.IsAncestor("b", "b") {
		t.Errorf("A node counts as its own ancestor")
	}
	if lookup.IsAncestor("c", "b") {
		t.Errorf("c is not an ancestor of b")
	}
	if lookup.IsAncestor("a", "missing") {
		t.Errorf("Missing keys have no ancestors")
	}
}

// Package model contains the data model for the tree state engine
package model

import (
	"slices"

	json "github.com/goccy/go-json"
)

// Kind discriminates leaf items from group items
type Kind int

const (
	KindLeaf Kind = iota
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Item represents a single caller-supplied tree entry, either a leaf or a group.
// Nodes, Types and IsExpanded are only meaningful for groups.
type Item struct {
	Kind       Kind
	ID         string
	Label      string
	Type       string
	IsViewable bool
	IsVisible  bool
	IsReadOnly bool

	Nodes      []Item
	Types      []string
	IsExpanded bool
}

// NewLeaf creates a viewable leaf item
func NewLeaf(id, label string) Item {
	return Item{
		Kind:       KindLeaf,
		ID:         id,
		Label:      label,
		IsViewable: true,
	}
}

// NewGroup creates a viewable group item holding the given children
func NewGroup(id, label string, nodes ...Item) Item {
	return Item{
		Kind:       KindGroup,
		ID:         id,
		Label:      label,
		IsViewable: true,
		Nodes:      nodes,
	}
}

// IsGroup reports whether the item can hold children
func (i Item) IsGroup() bool {
	return i.Kind == KindGroup
}

// Clone returns a deep copy of the item
func (i Item) Clone() Item {
	c := i
	c.Types = slices.Clone(i.Types)
	if i.Nodes != nil {
		c.Nodes = make([]Item, len(i.Nodes))
		for idx, n := range i.Nodes {
			c.Nodes[idx] = n.Clone()
		}
	}
	return c
}

// WithoutNodes returns a copy of the item with its children stripped.
// Tree nodes store values in this form; children live in TreeNode.Children.
func (i Item) WithoutNodes() Item {
	i.Nodes = nil
	i.Types = slices.Clone(i.Types)
	return i
}

// itemJSON is the wire shape of an item. A present "nodes" field marks a group.
type itemJSON struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Type       string   `json:"type,omitempty"`
	IsViewable *bool    `json:"isViewable,omitempty"`
	IsVisible  *bool    `json:"isVisible,omitempty"`
	IsReadOnly bool     `json:"isReadOnly,omitempty"`
	Nodes      *[]Item  `json:"nodes,omitempty"`
	Types      []string `json:"types,omitempty"`
	IsExpanded bool     `json:"isExpanded,omitempty"`
}

// MarshalJSON encodes the item in its wire shape
func (i Item) MarshalJSON() ([]byte, error) {
	viewable, visible := i.IsViewable, i.IsVisible
	w := itemJSON{
		ID:         i.ID,
		Label:      i.Label,
		Type:       i.Type,
		IsViewable: &viewable,
		IsVisible:  &visible,
		IsReadOnly: i.IsReadOnly,
	}
	if i.IsGroup() {
		nodes := i.Nodes
		if nodes == nil {
			nodes = []Item{}
		}
		w.Nodes = &nodes
		w.Types = i.Types
		w.IsExpanded = i.IsExpanded
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes an item from its wire shape.
// A missing isViewable defaults to true.
func (i *Item) UnmarshalJSON(data []byte) error {
	var w itemJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*i = Item{
		Kind:       KindLeaf,
		ID:         w.ID,
		Label:      w.Label,
		Type:       w.Type,
		IsViewable: true,
		IsReadOnly: w.IsReadOnly,
	}
	if w.IsViewable != nil {
		i.IsViewable = *w.IsViewable
	}
	if w.IsVisible != nil {
		i.IsVisible = *w.IsVisible
	}
	if w.Nodes != nil {
		i.Kind = KindGroup
		i.Nodes = *w.Nodes
		i.Types = w.Types
		i.IsExpanded = w.IsExpanded
	}
	return nil
}

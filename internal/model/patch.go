package model

import (
	"fmt"
	"slices"
	"strings"
)

// Toggle selects between flipping a flag and setting it explicitly
type Toggle int

const (
	ToggleFlip Toggle = iota
	ToggleOn
	ToggleOff
)

// Apply returns the flag value after the toggle
func (t Toggle) Apply(current bool) bool {
	switch t {
	case ToggleOn:
		return true
	case ToggleOff:
		return false
	default:
		return !current
	}
}

// Explicit reports whether the toggle carries an explicit value
func (t Toggle) Explicit() bool {
	return t == ToggleOn || t == ToggleOff
}

// ToggleOf converts a bool to an explicit toggle
func ToggleOf(on bool) Toggle {
	if on {
		return ToggleOn
	}
	return ToggleOff
}

func (t Toggle) String() string {
	switch t {
	case ToggleOn:
		return "on"
	case ToggleOff:
		return "off"
	default:
		return "flip"
	}
}

// ParseToggle parses "on"/"true", "off"/"false" or "" / "flip"
func ParseToggle(s string) (Toggle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "flip", "toggle":
		return ToggleFlip, nil
	case "on", "true":
		return ToggleOn, nil
	case "off", "false":
		return ToggleOff, nil
	default:
		return ToggleFlip, fmt.Errorf("unknown toggle state %q", s)
	}
}

// Patch is a partial item update. It deliberately has no Nodes field:
// children are owned by the tree, never by a patch.
type Patch struct {
	Label      *string  `json:"label,omitempty"`
	Type       *string  `json:"type,omitempty"`
	Types      []string `json:"types,omitempty"`
	IsViewable *bool    `json:"isViewable,omitempty"`
	IsVisible  *bool    `json:"isVisible,omitempty"`
	IsReadOnly *bool    `json:"isReadOnly,omitempty"`
	IsExpanded *bool    `json:"isExpanded,omitempty"`
}

// Apply merges the patch into the item. Group-only fields are ignored for leaves.
func (p Patch) Apply(item Item) Item {
	if p.Label != nil {
		item.Label = *p.Label
	}
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.IsViewable != nil {
		item.IsViewable = *p.IsViewable
	}
	if p.IsVisible != nil {
		item.IsVisible = *p.IsVisible
	}
	if p.IsReadOnly != nil {
		item.IsReadOnly = *p.IsReadOnly
	}
	if item.IsGroup() {
		if p.Types != nil {
			item.Types = slices.Clone(p.Types)
		}
		if p.IsExpanded != nil {
			item.IsExpanded = *p.IsExpanded
		}
	}
	return item
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Label == nil && p.Type == nil && p.Types == nil &&
		p.IsViewable == nil && p.IsVisible == nil && p.IsReadOnly == nil && p.IsExpanded == nil
}

// Bool returns a pointer to b, for building patches
func Bool(b bool) *bool {
	return &b
}

// String returns a pointer to s, for building patches
func String(s string) *string {
	return &s
}

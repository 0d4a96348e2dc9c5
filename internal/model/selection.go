package model

import (
	"fmt"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
)

// SelectionMode constrains how many keys may be selected at once
type SelectionMode int

const (
	SelectionNone SelectionMode = iota
	SelectionSingle
	SelectionMultiple
)

func (m SelectionMode) String() string {
	switch m {
	case SelectionNone:
		return "none"
	case SelectionSingle:
		return "single"
	case SelectionMultiple:
		return "multiple"
	default:
		return "unknown"
	}
}

// ParseSelectionMode parses "none", "single" or "multiple"
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return SelectionNone, nil
	case "single":
		return SelectionSingle, nil
	case "multiple":
		return SelectionMultiple, nil
	default:
		return SelectionNone, fmt.Errorf("unknown selection mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (m SelectionMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *SelectionMode) UnmarshalText(text []byte) error {
	mode, err := ParseSelectionMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// KeySet is an unordered set of node keys
type KeySet map[string]struct{}

// NewKeySet creates a set holding the given keys
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is in the set
func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Add inserts key into the set
func (s KeySet) Add(key string) {
	s[key] = struct{}{}
}

// Sorted returns the keys in lexical order
func (s KeySet) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns a copy of the set
func (s KeySet) Clone() KeySet {
	c := make(KeySet, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same keys
func (s KeySet) Equal(other KeySet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// Selection is either the literal "all" token or a concrete set of keys
type Selection struct {
	All  bool
	Keys KeySet
}

// AllKeys is the "all" selection token
var AllKeys = Selection{All: true}

// Keys builds a concrete selection
func Keys(keys ...string) Selection {
	return Selection{Keys: NewKeySet(keys...)}
}

func (s Selection) String() string {
	if s.All {
		return "all"
	}
	return "[" + strings.Join(s.Keys.Sorted(), ",") + "]"
}

// MarshalJSON encodes the selection as "all" or a sorted key array
func (s Selection) MarshalJSON() ([]byte, error) {
	if s.All {
		return json.Marshal("all")
	}
	return json.Marshal(s.Keys.Sorted())
}

// UnmarshalJSON decodes "all" or a key array
func (s *Selection) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err == nil {
		if token != "all" {
			return fmt.Errorf("invalid selection token %q", token)
		}
		*s = AllKeys
		return nil
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("invalid selection: %w", err)
	}
	*s = Keys(keys...)
	return nil
}

// Package search resolves text queries to tree keys
package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/pstuifzand/treestate/internal/model"
)

// FilterExpr represents a filter expression that can match items
type FilterExpr interface {
	Matches(item model.Item) bool
	String() string // For debug output
}

// TextExpr matches items whose label contains the search term (case-insensitive)
type TextExpr struct {
	term string
}

func NewTextExpr(term string) *TextExpr {
	return &TextExpr{term: strings.ToLower(term)}
}

func (e *TextExpr) Matches(item model.Item) bool {
	return strings.Contains(strings.ToLower(item.Label), e.term)
}

func (e *TextExpr) String() string {
	return fmt.Sprintf("text(%q)", e.term)
}

// FuzzyExpr matches items whose label fuzzy-matches the search term (case-insensitive)
type FuzzyExpr struct {
	term string
}

func NewFuzzyExpr(term string) *FuzzyExpr {
	return &FuzzyExpr{term: strings.ToLower(term)}
}

func (e *FuzzyExpr) Matches(item model.Item) bool {
	return fuzzy.MatchFold(e.term, item.Label)
}

func (e *FuzzyExpr) String() string {
	return fmt.Sprintf("fuzzy(%q)", e.term)
}

// RegexExpr matches items whose label matches a regular expression pattern
type RegexExpr struct {
	pattern string
	re      *regexp.Regexp
}

func NewRegexExpr(pattern string) (*RegexExpr, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return &RegexExpr{pattern: pattern, re: re}, nil
}

func (e *RegexExpr) Matches(item model.Item) bool {
	return e.re.MatchString(item.Label)
}

func (e *RegexExpr) String() string {
	return fmt.Sprintf("regex(/%s/)", e.pattern)
}

// TypeExpr matches items offering the given type, either as their own type
// or among the types a group declares
type TypeExpr struct {
	typ string
}

func NewTypeExpr(typ string) *TypeExpr {
	return &TypeExpr{typ: typ}
}

func (e *TypeExpr) Matches(item model.Item) bool {
	if item.Type == e.typ {
		return true
	}
	for _, t := range item.Types {
		if t == e.typ {
			return true
		}
	}
	return false
}

func (e *TypeExpr) String() string {
	return fmt.Sprintf("type(%s)", e.typ)
}

// StateExpr matches items by one of their flags
type StateExpr struct {
	state string
}

var states = map[string]func(model.Item) bool{
	"group":    model.Item.IsGroup,
	"leaf":     func(i model.Item) bool { return !i.IsGroup() },
	"viewable": func(i model.Item) bool { return i.IsViewable },
	"hidden":   func(i model.Item) bool { return !i.IsViewable },
	"visible":  func(i model.Item) bool { return i.IsVisible },
	"readonly": func(i model.Item) bool { return i.IsReadOnly },
	"expanded": func(i model.Item) bool { return i.IsGroup() && i.IsExpanded },
}

func NewStateExpr(state string) (*StateExpr, error) {
	if _, ok := states[state]; !ok {
		return nil, fmt.Errorf("unknown state %q", state)
	}
	return &StateExpr{state: state}, nil
}

func (e *StateExpr) Matches(item model.Item) bool {
	return states[e.state](item)
}

func (e *StateExpr) String() string {
	return fmt.Sprintf("is(%s)", e.state)
}

// NotExpr negates another expression
type NotExpr struct {
	expr FilterExpr
}

func NewNotExpr(expr FilterExpr) *NotExpr {
	return &NotExpr{expr: expr}
}

func (e *NotExpr) Matches(item model.Item) bool {
	return !e.expr.Matches(item)
}

func (e *NotExpr) String() string {
	return fmt.Sprintf("not(%s)", e.expr)
}

// AndExpr matches when every sub-expression matches
type AndExpr struct {
	exprs []FilterExpr
}

func NewAndExpr(exprs ...FilterExpr) *AndExpr {
	return &AndExpr{exprs: exprs}
}

func (e *AndExpr) Matches(item model.Item) bool {
	for _, expr := range e.exprs {
		if !expr.Matches(item) {
			return false
		}
	}
	return true
}

func (e *AndExpr) String() string {
	parts := make([]string, 0, len(e.exprs))
	for _, expr := range e.exprs {
		parts = append(parts, expr.String())
	}
	return "and(" + strings.Join(parts, ", ") + ")"
}

// AlwaysMatchExpr matches all items (for empty queries)
type AlwaysMatchExpr struct{}

func NewAlwaysMatchExpr() *AlwaysMatchExpr {
	return &AlwaysMatchExpr{}
}

func (e *AlwaysMatchExpr) Matches(item model.Item) bool {
	return true
}

func (e *AlwaysMatchExpr) String() string {
	return "always-match"
}

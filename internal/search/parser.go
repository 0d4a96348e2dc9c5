package search

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pstuifzand/treestate/internal/model"
	"github.com/pstuifzand/treestate/internal/tree"
)

// ParseQuery parses a query into a filter expression. Terms are separated
// by whitespace and must all match:
//
//	word          label contains word
//	"two words"   label contains the quoted text
//	~term         label fuzzy-matches term
//	/pattern/     label matches the regular expression
//	type:name     item offers the type
//	is:state      group, leaf, viewable, hidden, visible, readonly, expanded
//	-term         negates any of the above
func ParseQuery(query string) (FilterExpr, error) {
	terms, err := splitTerms(query)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return NewAlwaysMatchExpr(), nil
	}

	exprs := make([]FilterExpr, 0, len(terms))
	for _, term := range terms {
		expr, err := parseTerm(term)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return NewAndExpr(exprs...), nil
}

// Find returns the keys below root whose items match expr, in tree order
func Find(root *model.TreeNode, expr FilterExpr) []string {
	var keys []string
	tree.Walk(root, func(n *model.TreeNode) bool {
		if n != root && expr.Matches(n.Value) {
			keys = append(keys, n.Key)
		}
		return true
	})
	return keys
}

func parseTerm(term string) (FilterExpr, error) {
	if strings.HasPrefix(term, "-") && len(term) > 1 {
		expr, err := parseTerm(term[1:])
		if err != nil {
			return nil, err
		}
		return NewNotExpr(expr), nil
	}

	switch {
	case strings.HasPrefix(term, "\""):
		return NewTextExpr(strings.Trim(term, "\"")), nil
	case strings.HasPrefix(term, "~"):
		return NewFuzzyExpr(term[1:]), nil
	case len(term) > 1 && strings.HasPrefix(term, "/") && strings.HasSuffix(term, "/"):
		return NewRegexExpr(term[1 : len(term)-1])
	case strings.HasPrefix(term, "type:"):
		return NewTypeExpr(strings.TrimPrefix(term, "type:")), nil
	case strings.HasPrefix(term, "is:"):
		return NewStateExpr(strings.TrimPrefix(term, "is:"))
	default:
		return NewTextExpr(term), nil
	}
}

// splitTerms splits on whitespace, keeping quoted text together
func splitTerms(query string) ([]string, error) {
	var terms []string
	var current strings.Builder
	inQuotes := false

	flush := func() {
		if current.Len() > 0 {
			terms = append(terms, current.String())
			current.Reset()
		}
	}

	for _, r := range query {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case unicode.IsSpace(r) && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quote in query %q", query)
	}
	flush()
	return terms, nil
}

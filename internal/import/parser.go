package import_parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pstuifzand/treestate/internal/model"
)

// ImportFormat represents different text formats that can be imported
type ImportFormat string

const (
	FormatMarkdown     ImportFormat = "markdown"
	FormatIndentedText ImportFormat = "indented"
	FormatAuto         ImportFormat = "auto" // Detect from the file name
)

// Parser turns text into a forest. Items with children become groups,
// everything else becomes a leaf. Every item gets a fresh id.
type Parser interface {
	Parse(content string) ([]model.Item, error)
	Name() string
}

// ImportFile parses content in the given format
func ImportFile(content string, format ImportFormat) ([]model.Item, error) {
	var parser Parser

	switch format {
	case FormatMarkdown:
		parser = &MarkdownParser{}
	case FormatIndentedText, "":
		parser = &IndentedTextParser{}
	default:
		return nil, fmt.Errorf("unsupported import format: %s", format)
	}

	items, err := parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse error (%s): %w", parser.Name(), err)
	}
	return items, nil
}

// DetectFormat picks a format from the file extension
func DetectFormat(filename string) ImportFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatIndentedText
	}
}

// entry is a parsed line waiting to be turned into an item
type entry struct {
	label    string
	children []*entry
}

// outline collects entries by depth
type outline struct {
	roots []*entry
	stack []*entry
}

// add places label at depth. A depth deeper than the current nesting is
// clamped to one level below the last entry.
func (o *outline) add(depth int, label string) {
	depth = max(0, min(depth, len(o.stack)))
	o.stack = o.stack[:depth]

	e := &entry{label: label}
	if depth == 0 {
		o.roots = append(o.roots, e)
	} else {
		parent := o.stack[depth-1]
		parent.children = append(parent.children, e)
	}
	o.stack = append(o.stack, e)
}

// depth is the nesting of the last added entry plus one
func (o *outline) depth() int {
	return len(o.stack)
}

func (o *outline) items() []model.Item {
	items := make([]model.Item, 0, len(o.roots))
	for _, e := range o.roots {
		items = append(items, e.item())
	}
	return items
}

func (e *entry) item() model.Item {
	if len(e.children) == 0 {
		return model.NewLeaf(uuid.NewString(), e.label)
	}
	nodes := make([]model.Item, 0, len(e.children))
	for _, child := range e.children {
		nodes = append(nodes, child.item())
	}
	return model.NewGroup(uuid.NewString(), e.label, nodes...)
}

// indentWidth counts leading whitespace, a tab counting as two spaces
func indentWidth(line string) int {
	width := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\t':
			width += 2
		case ' ':
			width++
		default:
			return width
		}
	}
	return width
}

package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/pstuifzand/treestate/internal/model"
)

// ExportToMarkdown writes a forest to a markdown file as an unordered list.
// With viewableOnly set, items that are not viewable are left out together
// with their subtrees.
func ExportToMarkdown(items []model.Item, filePath string, viewableOnly bool) error {
	content := RenderMarkdown(items, viewableOnly)
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write markdown file: %w", err)
	}
	return nil
}

// RenderMarkdown renders a forest as nested markdown bullets
func RenderMarkdown(items []model.Item, viewableOnly bool) string {
	var sb strings.Builder
	for _, item := range items {
		writeItemAsMarkdown(&sb, item, 0, viewableOnly)
	}
	return sb.String()
}

// writeItemAsMarkdown writes an item and its children, indenting two
// spaces per level
func writeItemAsMarkdown(sb *strings.Builder, item model.Item, depth int, viewableOnly bool) {
	if viewableOnly && !item.IsViewable {
		return
	}

	// Children of an unlabeled item move up a level
	if strings.TrimSpace(item.Label) == "" {
		for _, child := range item.Nodes {
			writeItemAsMarkdown(sb, child, depth, viewableOnly)
		}
		return
	}

	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString("- ")
	sb.WriteString(item.Label)
	sb.WriteString("\n")

	for _, child := range item.Nodes {
		writeItemAsMarkdown(sb, child, depth+1, viewableOnly)
	}
}

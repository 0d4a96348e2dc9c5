package export

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/pstuifzand/treestate/internal/model"
)

const (
	markerExpanded  = "▾"
	markerCollapsed = "▸"
	markerLeaf      = "•"
)

// RenderText renders the forest the way a tree widget shows it: children of
// collapsed groups are left out and every line is cut to width display
// columns. A width of zero or less disables truncation.
func RenderText(items []model.Item, width int, viewableOnly bool) string {
	var sb strings.Builder
	for _, item := range items {
		writeItemAsText(&sb, item, 0, width, viewableOnly)
	}
	return sb.String()
}

func writeItemAsText(sb *strings.Builder, item model.Item, depth, width int, viewableOnly bool) {
	if viewableOnly && !item.IsViewable {
		return
	}

	marker := markerLeaf
	if item.IsGroup() {
		marker = markerCollapsed
		if item.IsExpanded {
			marker = markerExpanded
		}
	}

	line := strings.Repeat("  ", depth) + marker + " " + item.Label
	if !item.IsViewable {
		line += " (hidden)"
	}
	if width > 0 && runewidth.StringWidth(line) > width {
		line = runewidth.Truncate(line, width, "...")
	}
	sb.WriteString(line)
	sb.WriteString("\n")

	if item.IsGroup() && item.IsExpanded {
		for _, child := range item.Nodes {
			writeItemAsText(sb, child, depth+1, width, viewableOnly)
		}
	}
}

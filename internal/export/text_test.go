package export

import (
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/pstuifzand/treestate/internal/model"
)

func TestRenderText(t *testing.T) {
	open := model.NewGroup("1", "Open", model.NewLeaf("1.1", "Child"))
	open.IsExpanded = true
	closed := model.NewGroup("2", "Closed", model.NewLeaf("2.1", "Not shown"))
	hidden := model.NewLeaf("3", "Secret")
	hidden.IsViewable = false
	items := []model.Item{open, closed, hidden}

	tests := []struct {
		name         string
		width        int
		viewableOnly bool
		expected     string
	}{
		{
			name:     "All items",
			expected: "▾ Open\n  • Child\n▸ Closed\n• Secret (hidden)\n",
		},
		{
			name:         "Viewable only",
			viewableOnly: true,
			expected:     "▾ Open\n  • Child\n▸ Closed\n",
		},
		{
			name:         "Truncated",
			width:        7,
			viewableOnly: true,
			expected:     "▾ Open\n  • ...\n▸ Cl...\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderText(items, tt.width, tt.viewableOnly); got != tt.expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", tt.expected, got)
			}
		})
	}
}

func TestRenderTextWideRunes(t *testing.T) {
	items := []model.Item{model.NewLeaf("1", "日本語のラベル")}

	got := RenderText(items, 10, false)
	line := got[:len(got)-1]
	if w := runewidth.StringWidth(line); w > 10 {
		t.Errorf("Line %q is %d columns wide, expected at most 10", line, w)
	}
}

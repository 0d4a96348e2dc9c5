package import_parser

import (
	"strings"
	"testing"

	"github.com/pstuifzand/treestate/internal/model"
)

// shape renders a forest as "label(child,child)" for compact comparison
func shape(items []model.Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		s := item.Label
		if item.IsGroup() {
			s += "(" + shape(item.Nodes) + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ",")
}

func TestIndentedTextParser(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Flat",
			input:    "a\nb\n\nc\n",
			expected: "a,b,c",
		},
		{
			name:     "Nested",
			input:    "a\n  b\n    c\n  d\ne",
			expected: "a(b(c),d),e",
		},
		{
			name:     "Tabs",
			input:    "a\n\tb\n\t\tc",
			expected: "a(b(c))",
		},
		{
			name:     "Over-indented child",
			input:    "a\n      b\n  c",
			expected: "a(b,c)",
		},
		{
			name:     "Leading indent",
			input:    "    a\nb",
			expected: "a,b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ImportFile(tt.input, FormatIndentedText)
			if err != nil {
				t.Fatalf("ImportFile failed: %v", err)
			}
			if got := shape(items); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestMarkdownParser(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "List",
			input:    "- a\n  - b\n- c",
			expected: "a(b),c",
		},
		{
			name:     "Headers",
			input:    "# A\n## B\n### C\n## D\n# E",
			expected: "A(B(C),D),E",
		},
		{
			name:     "List under header",
			input:    "# A\n- x\n  * y\n+ z\n## B\n- w",
			expected: "A(x(y),z,B(w))",
		},
		{
			name:     "Plain lines attach to last item",
			input:    "- a\nnote one\nnote two\n- b",
			expected: "a(note one,note two),b",
		},
		{
			name:     "Hash without space is text",
			input:    "#tag",
			expected: "#tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ImportFile(tt.input, FormatMarkdown)
			if err != nil {
				t.Fatalf("ImportFile failed: %v", err)
			}
			if got := shape(items); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestImportedItems(t *testing.T) {
	items, err := ImportFile("a\n  b\n  c", FormatIndentedText)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}

	seen := make(map[string]bool)
	var check func([]model.Item)
	check = func(items []model.Item) {
		for _, item := range items {
			if item.ID == "" || seen[item.ID] {
				t.Errorf("Expected a fresh unique id, got %q", item.ID)
			}
			seen[item.ID] = true
			if !item.IsViewable {
				t.Errorf("Imported item %s should be viewable", item.Label)
			}
			check(item.Nodes)
		}
	}
	check(items)

	if len(seen) != 3 {
		t.Errorf("Expected 3 items, got %d", len(seen))
	}
}

func TestImportFileUnknownFormat(t *testing.T) {
	if _, err := ImportFile("a", "yaml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]ImportFormat{
		"notes.md":       FormatMarkdown,
		"NOTES.MARKDOWN": FormatMarkdown,
		"list.txt":       FormatIndentedText,
		"noext":          FormatIndentedText,
	}
	for name, expected := range tests {
		if got := DetectFormat(name); got != expected {
			t.Errorf("DetectFormat(%q): expected %s, got %s", name, expected, got)
		}
	}
}

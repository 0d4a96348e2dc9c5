package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pstuifzand/treestate/internal/model"
)

func testForest() []model.Item {
	hidden := model.NewGroup("3", "Hidden", model.NewLeaf("3.1", "Under hidden"))
	hidden.IsViewable = false

	return []model.Item{
		model.NewGroup("1", "First Item",
			model.NewLeaf("1.1", "Nested Item 1"),
			model.NewGroup("1.2", "Nested Item 2",
				model.NewLeaf("1.2.1", "Deep Item"),
			),
		),
		model.NewGroup("2", "  ", model.NewLeaf("2.1", "Lifted")),
		hidden,
	}
}

func TestRenderMarkdown(t *testing.T) {
	expected := "- First Item\n" +
		"  - Nested Item 1\n" +
		"  - Nested Item 2\n" +
		"    - Deep Item\n" +
		"- Lifted\n" +
		"- Hidden\n" +
		"  - Under hidden\n"

	if got := RenderMarkdown(testForest(), false); got != expected {
		t.Errorf("Markdown mismatch.\nExpected:\n%s\nGot:\n%s", expected, got)
	}
}

func TestRenderMarkdownViewableOnly(t *testing.T) {
	expected := "- First Item\n" +
		"  - Nested Item 1\n" +
		"  - Nested Item 2\n" +
		"    - Deep Item\n" +
		"- Lifted\n"

	if got := RenderMarkdown(testForest(), true); got != expected {
		t.Errorf("Markdown mismatch.\nExpected:\n%s\nGot:\n%s", expected, got)
	}
}

func TestExportToMarkdown(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "test.md")

	if err := ExportToMarkdown(testForest(), filePath, true); err != nil {
		t.Fatalf("ExportToMarkdown failed: %v", err)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read exported file: %v", err)
	}
	if string(content) != RenderMarkdown(testForest(), true) {
		t.Errorf("File content does not match rendered markdown:\n%s", content)
	}

	if err := ExportToMarkdown(nil, filepath.Join(t.TempDir(), "missing", "x.md"), false); err == nil {
		t.Errorf("Expected error writing into a missing directory")
	}
}

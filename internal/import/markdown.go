package import_parser

import (
	"bufio"
	"strings"

	"github.com/pstuifzand/treestate/internal/model"
)

// MarkdownParser imports headers, unordered lists and plain lines.
// Headers nest by level, lists nest below the last header, and plain
// lines become children of the last item.
type MarkdownParser struct{}

func (p *MarkdownParser) Name() string {
	return "Markdown"
}

// Parse converts markdown content to a forest
func (p *MarkdownParser) Parse(content string) ([]model.Item, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	var o outline
	base := 0 // depth of list items below the current header

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if level, text := parseHeader(line); level >= 0 {
			o.add(level, text)
			base = o.depth()
			continue
		}

		if level, text := parseListItem(line); level >= 0 {
			o.add(base+level, text)
			continue
		}

		o.add(o.depth(), strings.TrimSpace(line))
		o.stack = o.stack[:len(o.stack)-1]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return o.items(), nil
}

// parseHeader returns the 0-based level and text of a header line, or -1
func parseHeader(line string) (int, string) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || (level < len(line) && line[level] != ' ') {
		return -1, ""
	}
	text := strings.TrimSpace(line[level:])
	if text == "" {
		return -1, ""
	}
	return level - 1, text
}

// parseListItem returns the nesting level and text of a list line, or -1
func parseListItem(line string) (int, string) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) > 2 && strings.ContainsRune("-*+", rune(trimmed[0])) && trimmed[1] == ' ' {
		return indentWidth(line) / 2, strings.TrimSpace(trimmed[2:])
	}
	return -1, ""
}

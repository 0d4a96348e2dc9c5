package import_parser

import (
	"bufio"
	"strings"

	"github.com/pstuifzand/treestate/internal/model"
)

// IndentedTextParser imports plain text with indentation-based hierarchy,
// two spaces per level
type IndentedTextParser struct{}

func (p *IndentedTextParser) Name() string {
	return "Indented Text"
}

// Parse converts indented text to a forest
func (p *IndentedTextParser) Parse(content string) ([]model.Item, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	var o outline

	for scanner.Scan() {
		line := scanner.Text()
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		o.add(indentWidth(line)/2, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return o.items(), nil
}

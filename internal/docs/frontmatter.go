package docs

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type frontmatter struct {
	Title string `yaml:"title"`
	Order int    `yaml:"order"`
}

// splitFrontmatter separates a leading "---" YAML block from the markdown body.
// Content without one comes back unchanged with a zero frontmatter.
func splitFrontmatter(content string) (frontmatter, string, error) {
	var fm frontmatter
	const delimiter = "---"
	if !strings.HasPrefix(content, delimiter) {
		return fm, content, nil
	}

	start := len(delimiter)
	if len(content) > start && content[start] == '\r' {
		start++
	}
	if len(content) > start && content[start] == '\n' {
		start++
	}

	closeIdx := strings.Index(content[start:], "\n"+delimiter)
	if closeIdx == -1 {
		return fm, content, fmt.Errorf("no closing frontmatter delimiter")
	}

	if err := yaml.Unmarshal([]byte(content[start:start+closeIdx]), &fm); err != nil {
		return fm, content, fmt.Errorf("parse frontmatter: %w", err)
	}

	body := content[start+closeIdx+1+len(delimiter):]
	return fm, strings.TrimLeft(body, "\r\n"), nil
}

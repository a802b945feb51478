package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---\n"

// Note is a markdown document led by an optional YAML frontmatter block.
type Note struct {
	Meta map[string]any
	Body string
}

// ParseNote splits content into frontmatter and body. Content without a
// leading fence is all body.
func ParseNote(content string) (Note, error) {
	if !strings.HasPrefix(content, fence) {
		return Note{Meta: map[string]any{}, Body: content}, nil
	}
	rest := content[len(fence):]
	raw, body, ok := strings.Cut(rest, "\n"+fence)
	if !ok {
		return Note{}, fmt.Errorf("parse note: frontmatter is not closed")
	}
	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
		return Note{}, fmt.Errorf("parse note frontmatter: %w", err)
	}
	return Note{Meta: meta, Body: strings.TrimPrefix(body, "\n")}, nil
}

// Render writes the note back out, frontmatter first.
func (n Note) Render() (string, error) {
	var out strings.Builder
	if len(n.Meta) > 0 {
		raw, err := yaml.Marshal(n.Meta)
		if err != nil {
			return "", fmt.Errorf("render note frontmatter: %w", err)
		}
		out.WriteString(fence)
		out.Write(raw)
		out.WriteString(fence)
		out.WriteString("\n")
	}
	out.WriteString(n.Body)
	return out.String(), nil
}

// Section returns the text under the "## heading" line, up to the next
// level-two heading.
func (n Note) Section(heading string) (string, bool) {
	marker := "## " + heading + "\n"
	var start int
	switch {
	case strings.HasPrefix(n.Body, marker):
		start = len(marker)
	default:
		idx := strings.Index(n.Body, "\n"+marker)
		if idx < 0 {
			return "", false
		}
		start = idx + 1 + len(marker)
	}
	section := n.Body[start:]
	if end := strings.Index(section, "\n## "); end >= 0 {
		section = section[:end+1]
	}
	return strings.Trim(section, "\n"), true
}

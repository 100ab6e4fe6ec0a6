package doctree

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// DocTree is the root of a document extracted from a non-markup source.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content, paragraphs separated by blank lines
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// Render writes the tree as a markup fragment: headings become <h1>..<h6> by
// depth, text becomes <p> paragraphs, and paged nodes are wrapped in a
// <div data-page="N">. The tree title is not rendered.
func (t *DocTree) Render() string {
	var sb strings.Builder
	for _, n := range t.Children {
		renderNode(&sb, n, 1)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func renderNode(sb *strings.Builder, n *DocNode, depth int) {
	if n.Page > 0 {
		fmt.Fprintf(sb, "<div data-page=\"%d\">\n", n.Page)
		defer sb.WriteString("</div>\n")
	}
	if n.Title != "" {
		level := min(depth, 6)
		fmt.Fprintf(sb, "<h%d>%s</h%d>\n", level, html.EscapeString(n.Title), level)
	}
	for _, para := range Paragraphs(n.Text) {
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(para))
		sb.WriteString("</p>\n")
	}
	for _, c := range n.Children {
		renderNode(sb, c, depth+1)
	}
}

// Paragraphs splits text on blank lines and drops empty results.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

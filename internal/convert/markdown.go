package convert

import (
	"bytes"
	"fmt"
	"io"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownConverter renders Markdown with GFM extensions. Front matter is
// stripped. Raw HTML passes through so directives inside Markdown survive.
type MarkdownConverter struct{}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

func (c *MarkdownConverter) Convert(r io.Reader, filename string) (string, error) {
	var meta map[string]any
	body, err := frontmatter.Parse(r, &meta)
	if err != nil {
		return "", fmt.Errorf("parse front matter %s: %w", filename, err)
	}

	var buf bytes.Buffer
	if err := markdown.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("render markdown %s: %w", filename, err)
	}
	return buf.String(), nil
}

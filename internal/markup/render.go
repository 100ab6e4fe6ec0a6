package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// RenderOption adjusts serialization.
type RenderOption func(*renderer)

// PairTags makes every element whose tag satisfies pred render as a matching
// open/close pair, even when it was self-closing or never closed in its source.
func PairTags(pred func(tag string) bool) RenderOption {
	return func(r *renderer) { r.paired = pred }
}

type renderer struct {
	sb     strings.Builder
	paired func(tag string) bool
}

// Render serializes n and its descendants. Nodes that came from Parse and were
// not modified are written back with their original bytes.
func Render(n *Node, opts ...RenderOption) string {
	r := &renderer{}
	for _, opt := range opts {
		opt(r)
	}
	r.node(n)
	return r.sb.String()
}

func (r *renderer) node(n *Node) {
	switch n.Type {
	case DocumentNode:
		r.children(n)
	case ElementNode:
		r.element(n)
	default:
		r.sb.WriteString(n.Data)
	}
}

func (r *renderer) children(n *Node) {
	for _, c := range n.Children {
		r.node(c)
	}
}

func (r *renderer) element(n *Node) {
	pair := r.paired != nil && r.paired(n.Tag)

	if n.void && !pair {
		r.openTag(n, n.selfClosing)
		return
	}
	if n.selfClosing && len(n.Children) == 0 && !pair {
		r.openTag(n, true)
		return
	}

	r.openTag(n, false)
	r.children(n)
	switch {
	case n.closeRaw != "":
		r.sb.WriteString(n.closeRaw)
	case n.unclosed && !pair:
		// The source never closed it; keep it that way.
	default:
		r.sb.WriteString("</" + n.Tag + ">")
	}
}

// openTag writes the start tag, reusing source bytes when their shape matches.
func (r *renderer) openTag(n *Node, selfClose bool) {
	if n.openRaw != "" && n.selfClosing == selfClose {
		r.sb.WriteString(n.openRaw)
		return
	}
	r.sb.WriteByte('<')
	r.sb.WriteString(n.Tag)
	for _, a := range n.Attrs {
		r.sb.WriteByte(' ')
		r.sb.WriteString(a.Name)
		r.sb.WriteString(`="`)
		r.sb.WriteString(html.EscapeString(a.Value))
		r.sb.WriteByte('"')
	}
	if selfClose {
		r.sb.WriteString("/>")
		return
	}
	r.sb.WriteByte('>')
}

// Package markup holds the in-memory tree that directive resolution operates on,
// along with a forgiving parser and a byte-preserving serializer.
package markup

import "strings"

// NodeType identifies the kind of a Node.
type NodeType int

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
	DoctypeNode
)

// Attr is a single element attribute. Names are lower-cased by the parser.
type Attr struct {
	Name  string
	Value string
}

// Node is a document, element or leaf in a markup tree.
//
// Text, comment and doctype nodes keep their source bytes in Data, undecoded.
// Elements remember the exact bytes of their start and end tags so that an
// unmodified subtree serializes back to its input.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []Attr
	Data     string
	Parent   *Node
	Children []*Node

	openRaw     string
	closeRaw    string
	selfClosing bool
	void        bool
	unclosed    bool
}

// NewDocument returns an empty document root.
func NewDocument() *Node {
	return &Node{Type: DocumentNode}
}

// NewElement returns a detached element with the given attributes.
func NewElement(tag string, attrs ...Attr) *Node {
	n := &Node{Type: ElementNode, Tag: lower(tag)}
	n.void = voidElements[n.Tag]
	n.Attrs = append(n.Attrs, attrs...)
	return n
}

// NewText returns a detached text node. data is emitted verbatim by Render.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or adds an attribute. The element's start tag is regenerated on
// the next Render.
func (n *Node) SetAttr(name, value string) {
	n.openRaw = ""
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// SelfClosing reports whether the element was written as <tag/> in its source.
func (n *Node) SelfClosing() bool { return n.selfClosing }

// AppendChild adds c as the last child of n. A child that already belongs to a
// tree is detached from it first.
func (n *Node) AppendChild(c *Node) {
	c.Detach()
	c.Parent = n
	n.Children = append(n.Children, c)
}

// InsertBefore inserts c immediately before ref. A nil or foreign ref appends.
func (n *Node) InsertBefore(c, ref *Node) {
	idx := n.indexOf(ref)
	if idx < 0 {
		n.AppendChild(c)
		return
	}
	c.Detach()
	// Detaching c may have shifted ref when both share n.
	idx = n.indexOf(ref)
	c.Parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[idx+1:], n.Children[idx:])
	n.Children[idx] = c
}

// RemoveChild detaches c from n. It is a no-op when c is not a child of n.
func (n *Node) RemoveChild(c *Node) {
	idx := n.indexOf(c)
	if idx < 0 {
		return
	}
	n.Children = append(n.Children[:idx], n.Children[idx+1:]...)
	c.Parent = nil
}

// ReplaceChild puts c in old's position and detaches old.
func (n *Node) ReplaceChild(c, old *Node) {
	if n.indexOf(old) < 0 {
		return
	}
	n.InsertBefore(c, old)
	n.RemoveChild(old)
}

// Detach removes n from its parent, if any.
func (n *Node) Detach() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// RemoveChildren detaches every child of n.
func (n *Node) RemoveChildren() {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = nil
}

// MoveChildrenTo transfers all children of n, in order, to the end of dst.
func (n *Node) MoveChildrenTo(dst *Node) {
	if n == dst {
		return
	}
	moved := n.Children
	n.Children = nil
	for _, c := range moved {
		c.Parent = dst
		dst.Children = append(dst.Children, c)
	}
}

// IsDescendantOf reports whether root is n or one of n's ancestors.
func (n *Node) IsDescendantOf(root *Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

// FirstChildByTag returns the first direct child element with the given tag.
func (n *Node) FirstChildByTag(tag string) *Node {
	tag = lower(tag)
	for _, c := range n.Children {
		if c.Type == ElementNode && c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns the direct child elements with the given tag.
func (n *Node) ChildrenByTag(tag string) []*Node {
	tag = lower(tag)
	var out []*Node
	for _, c := range n.Children {
		if c.Type == ElementNode && c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// FindFirst returns the first descendant element with the given tag in
// document order.
func (n *Node) FindFirst(tag string) *Node {
	tag = lower(tag)
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c != n && c.Type == ElementNode && c.Tag == tag {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindAll returns every descendant element with the given tag in document order.
func (n *Node) FindAll(tag string) []*Node {
	tag = lower(tag)
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c != n && c.Type == ElementNode && c.Tag == tag {
			out = append(out, c)
		}
		return true
	})
	return out
}

// HasElements reports whether the tree under n contains at least one element.
func (n *Node) HasElements() bool {
	found := false
	n.Walk(func(c *Node) bool {
		if c.Type == ElementNode {
			found = true
		}
		return !found
	})
	return found
}

// Walk visits n and its descendants depth-first in document order. Returning
// false from fn skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	// Iterate over a snapshot so fn may detach the node it is visiting.
	children := append([]*Node(nil), n.Children...)
	for _, c := range children {
		c.Walk(fn)
	}
}

func (n *Node) indexOf(c *Node) int {
	if c == nil {
		return -1
	}
	for i, x := range n.Children {
		if x == c {
			return i
		}
	}
	return -1
}

func lower(s string) string {
	return strings.ToLower(s)
}

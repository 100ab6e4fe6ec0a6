// Package directive recognizes the include/extend/section vocabulary inside a
// markup tree.
package directive

import (
	"regexp"
	"strings"

	"github.com/dgallion1/templext/internal/markup"
)

// Kind classifies an element.
type Kind int

const (
	Ordinary Kind = iota
	Include
	Extend
	Section
)

func (k Kind) String() string {
	switch k {
	case Include:
		return "include"
	case Extend:
		return "extend"
	case Section:
		return "section"
	}
	return "ordinary"
}

const (
	IncludeTag    = "include-file"
	ExtendTag     = "extend-to"
	SectionPrefix = "section-"
)

var sectionID = regexp.MustCompile(`^[a-z0-9-]+$`)

// Directive is a view over one classified element.
type Directive struct {
	Kind Kind
	Node *markup.Node

	// Src is the referenced path for Include and Extend.
	Src string
	// Section is the section id named by an Extend, or carried by a Section
	// container's tag.
	Section string
}

// Valid reports whether the directive has everything it needs to be resolved.
// Include needs a src; Extend needs both src and section.
func (d Directive) Valid() bool {
	switch d.Kind {
	case Include:
		return d.Src != ""
	case Extend:
		return d.Src != "" && d.Section != ""
	case Section:
		return d.Section != ""
	}
	return false
}

// Classify inspects a single node. Non-elements are always Ordinary.
func Classify(n *markup.Node) Directive {
	d := Directive{Kind: Ordinary, Node: n}
	if n == nil || n.Type != markup.ElementNode {
		return d
	}
	switch {
	case n.Tag == IncludeTag:
		d.Kind = Include
		d.Src = attr(n, "src")
	case n.Tag == ExtendTag:
		d.Kind = Extend
		d.Src = attr(n, "src")
		d.Section = attr(n, "section")
	case strings.HasPrefix(n.Tag, SectionPrefix):
		id := strings.TrimPrefix(n.Tag, SectionPrefix)
		if sectionID.MatchString(id) {
			d.Kind = Section
			d.Section = id
		}
	}
	return d
}

// Collect returns every directive of the given kind under root, in document
// order.
func Collect(root *markup.Node, kind Kind) []Directive {
	var out []Directive
	root.Walk(func(n *markup.Node) bool {
		if d := Classify(n); d.Kind == kind {
			out = append(out, d)
		}
		return true
	})
	return out
}

// SectionTag maps a section id to the tag of its content container and
// placeholder.
func SectionTag(id string) string {
	return SectionPrefix + strings.ToLower(strings.TrimSpace(id))
}

// IsMarker reports whether tag belongs to the directive vocabulary and must
// not survive into final output.
func IsMarker(tag string) bool {
	tag = strings.ToLower(tag)
	if tag == IncludeTag || tag == ExtendTag {
		return true
	}
	return strings.HasPrefix(tag, SectionPrefix) && sectionID.MatchString(strings.TrimPrefix(tag, SectionPrefix))
}

func attr(n *markup.Node, name string) string {
	v, _ := n.Attr(name)
	return strings.TrimSpace(v)
}

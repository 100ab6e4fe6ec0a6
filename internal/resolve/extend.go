package resolve

import (
	"path/filepath"
	"slices"

	"github.com/dgallion1/templext/internal/directive"
	"github.com/dgallion1/templext/internal/markup"
	"github.com/dgallion1/templext/internal/source"
)

// ResolveExtends binds the sections of doc into the parent templates named by
// its extend-to directives and returns the resulting root. filePath is the
// path of doc; parents resolve against its directory. When nothing binds,
// doc is returned unchanged.
//
// Directives naming a parent already in cache merge every remaining section
// of the same name into that one instance. Parents that extend further
// templates are resolved the same way once all bindings are in place.
func (r *Resolver) ResolveExtends(doc *markup.Node, filePath string, cache *TemplateCache) (*markup.Node, error) {
	if cache == nil {
		cache = NewTemplateCache()
	}
	return r.extends(doc, filePath, cache, []string{key(filePath)})
}

func (r *Resolver) extends(doc *markup.Node, filePath string, cache *TemplateCache, chain []string) (*markup.Node, error) {
	var bound []*templateInstance
	consumed := make(map[*markup.Node]bool)

	for _, d := range directive.Collect(doc, directive.Extend) {
		if !d.Valid() || !d.Node.IsDescendantOf(doc) {
			continue
		}
		tag := directive.SectionTag(d.Section)
		sections := unconsumed(doc, tag, consumed)
		if len(sections) == 0 {
			continue
		}

		path := source.Resolve(filepath.Dir(filePath), d.Src)
		if slices.Contains(chain, key(path)) {
			return nil, &CycleError{Kind: directive.Extend, Chain: append(slices.Clone(chain), path)}
		}

		inst, cached := cache.get(path)
		if !cached {
			text, ok := r.load(path)
			if !ok {
				continue
			}
			parent := markup.Parse(text)
			if err := r.includes(parent, filepath.Dir(path), []string{key(path)}); err != nil {
				return nil, err
			}
			inst = cache.put(path, parent)
			sections = sections[:1]
		}

		placeholder := inst.root.FindFirst(tag)
		for _, s := range sections {
			consumed[s] = true
			// A section nested in one already moved goes along with it.
			if placeholder != nil && s.IsDescendantOf(doc) {
				s.MoveChildrenTo(placeholder)
			}
		}
		d.Node.Detach()
		r.log.Debug("section bound", "section", d.Section, "parent", path, "merged", len(sections), "placeholder", placeholder != nil)

		if !inst.bound {
			inst.bound = true
			bound = append(bound, inst)
		}
	}

	if len(bound) == 0 {
		return doc, nil
	}

	var roots []*markup.Node
	for _, inst := range bound {
		if !inst.extended {
			inst.extended = true
			root, err := r.extends(inst.doc, inst.path, cache, extendChain(chain, inst.path))
			if err != nil {
				return nil, err
			}
			inst.root = root
		}
		if !slices.Contains(roots, inst.root) {
			roots = append(roots, inst.root)
		}
	}
	if len(roots) == 1 {
		return roots[0], nil
	}

	out := markup.NewDocument()
	for _, root := range roots {
		root.MoveChildrenTo(out)
	}
	return out, nil
}

// unconsumed returns the section elements under doc with the given tag that
// have not been bound yet, in document order.
func unconsumed(doc *markup.Node, tag string, consumed map[*markup.Node]bool) []*markup.Node {
	var out []*markup.Node
	for _, n := range doc.FindAll(tag) {
		if !consumed[n] {
			out = append(out, n)
		}
	}
	return out
}

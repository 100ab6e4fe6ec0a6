package resolve

import (
	"path/filepath"
	"slices"

	"github.com/dgallion1/templext/internal/directive"
	"github.com/dgallion1/templext/internal/markup"
	"github.com/dgallion1/templext/internal/source"
)

// ResolveIncludes replaces the children of every include-file element under
// doc with the parsed contents of the file it names. Relative sources resolve
// against baseDir; includes inside an included file resolve against that
// file's directory. Missing targets are reported and left in place.
func (r *Resolver) ResolveIncludes(doc *markup.Node, baseDir string) error {
	return r.includes(doc, baseDir, nil)
}

func (r *Resolver) includes(root *markup.Node, baseDir string, chain []string) error {
	for _, d := range directive.Collect(root, directive.Include) {
		// Skip directives swallowed by an earlier splice.
		if !d.Valid() || !d.Node.IsDescendantOf(root) {
			continue
		}
		path := source.Resolve(baseDir, d.Src)
		if slices.Contains(chain, key(path)) {
			return &CycleError{Kind: directive.Include, Chain: append(slices.Clone(chain), path)}
		}

		text, ok := r.load(path)
		if !ok {
			continue
		}
		frag := markup.Parse(text)
		if err := r.includes(frag, filepath.Dir(path), extendChain(chain, path)); err != nil {
			return err
		}

		d.Node.RemoveChildren()
		frag.MoveChildrenTo(d.Node)
		r.log.Debug("include resolved", "src", d.Src, "path", path)
	}
	return nil
}

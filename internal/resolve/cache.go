package resolve

import "github.com/dgallion1/templext/internal/markup"

// TemplateCache memoizes parent templates for one source document, so that
// several extend directives naming the same parent fill one instance.
// Create a fresh cache per document.
type TemplateCache struct {
	instances map[string]*templateInstance
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{instances: make(map[string]*templateInstance)}
}

// Len returns the number of parent templates loaded so far.
func (c *TemplateCache) Len() int {
	return len(c.instances)
}

// Has reports whether the parent at path has been loaded.
func (c *TemplateCache) Has(path string) bool {
	_, ok := c.instances[key(path)]
	return ok
}

type templateInstance struct {
	path string
	doc  *markup.Node

	// root is the tree placeholders are looked up in. It starts as doc and
	// moves to the grandparent once the instance's own extends are resolved.
	root     *markup.Node
	bound    bool
	extended bool
}

func (c *TemplateCache) get(path string) (*templateInstance, bool) {
	inst, ok := c.instances[key(path)]
	return inst, ok
}

func (c *TemplateCache) put(path string, doc *markup.Node) *templateInstance {
	inst := &templateInstance{path: path, doc: doc, root: doc}
	c.instances[key(path)] = inst
	return inst
}

package core

// CatalogNode is one entry in the filter menu tree.  Leaf nodes carry the
// registry Key of the filter they resolve to; category nodes leave it empty.
type CatalogNode struct {
	Name     string
	Key      string
	Children []*CatalogNode
}

// AddChild appends child preserving insertion order.
func (n *CatalogNode) AddChild(child *CatalogNode) {
	n.Children = append(n.Children, child)
}

// Catalog is the static hierarchical menu used to present and resolve
// filters by category.  It is built once at startup and never mutated
// afterwards, so reads need no locking.
type Catalog struct {
	root *CatalogNode
}

// NewCatalog creates a catalog whose root carries rootName.
func NewCatalog(rootName string) *Catalog {
	return &Catalog{root: &CatalogNode{Name: rootName}}
}

// Root returns the fixed root node.
func (c *Catalog) Root() *CatalogNode { return c.root }

// Add inserts a node named name (with optional registry key) under the first
// node matching parentName.  Unknown parents are ignored, matching the
// build-once static usage.
func (c *Catalog) Add(parentName, name, key string) {
	if parent := find(c.root, parentName); parent != nil {
		parent.AddChild(&CatalogNode{Name: name, Key: key})
	}
}

// Find returns the first node matching name in depth-first order, or nil.
// Names are not required to be unique; first DFS match wins.
func (c *Catalog) Find(name string) *CatalogNode {
	return find(c.root, name)
}

// Children returns the ordered children of the first node matching name,
// or nil when no such node exists.  Used by the presentation layer to
// render menus.
func (c *Catalog) Children(name string) []*CatalogNode {
	n := find(c.root, name)
	if n == nil {
		return nil
	}
	return n.Children
}

// Path returns the node names from the root down to the first DFS match of
// name, or nil when absent.
func (c *Catalog) Path(name string) []string {
	return path(c.root, name, nil)
}

func find(node *CatalogNode, name string) *CatalogNode {
	if node.Name == name {
		return node
	}
	for _, child := range node.Children {
		if found := find(child, name); found != nil {
			return found
		}
	}
	return nil
}

func path(node *CatalogNode, name string, prefix []string) []string {
	trail := append(append([]string(nil), prefix...), node.Name)
	if node.Name == name {
		return trail
	}
	for _, child := range node.Children {
		if p := path(child, name, trail); p != nil {
			return p
		}
	}
	return nil
}

// # internal/render/tree.go
package render

import "strings"

// treeNode is one level of the workspace hierarchy built from module paths.
// Child order is insertion order, which is deterministic because modules are
// fed in sorted by relative path.
type treeNode struct {
	id       string
	label    string
	path     string
	isFile   bool
	children map[string]*treeNode
	order    []string
}

func newTreeNode(id, label, path string) *treeNode {
	return &treeNode{
		id:       id,
		label:    label,
		path:     path,
		children: make(map[string]*treeNode),
	}
}

func (n *treeNode) child(key string) (*treeNode, bool) {
	c, ok := n.children[key]
	return c, ok
}

func (n *treeNode) addChild(key string, c *treeNode) {
	n.children[key] = c
	n.order = append(n.order, key)
}

// buildTree folds module relative paths into a directory tree, registering an
// ID for every directory prefix and file along the way. relPaths must already
// be sorted.
func buildTree(relPaths []string, ids *idTable) *treeNode {
	root := newTreeNode("", "", "")

	for _, rel := range relPaths {
		segments := strings.Split(rel, "/")
		cur := root
		for i, seg := range segments {
			prefix := strings.Join(segments[:i+1], "/")
			next, ok := cur.child(seg)
			if !ok {
				next = newTreeNode(ids.Register(prefix), seg, prefix)
				cur.addChild(seg, next)
			}
			if i == len(segments)-1 {
				next.isFile = true
			}
			cur = next
		}
	}

	return root
}

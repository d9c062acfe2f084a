// Package noder provides a decompressed view of stored trees, where every
// occurrence of a shared subtree gets its own node.
package noder

import (
	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/hash"
	"github.com/hyperast/go-hyperast/plumbing/storer"
)

// Node is an occurrence of a stored node inside a Tree. Nodes are
// identified by their position in pre-order, so the descendants of a node
// with id i are the ids in (i, i+Size).
type Node struct {
	Handle      plumbing.Handle
	Kind        plumbing.Kind
	Label       string
	Fingerprint hash.Fingerprint
	Structure   hash.Fingerprint

	Size   int
	Height int
	Depth  int

	// Parent is the id of the parent, -1 for the root.
	Parent int
	// Index is the position of the node among its siblings.
	Index int
	// Post is the rank of the node in post-order.
	Post int

	Children []int
}

// IsLeaf returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree is the decompressed form of a stored tree.
type Tree struct {
	root  plumbing.Handle
	nodes []Node
	post  []int
}

// New decompresses the tree rooted at root. A zero root gives an empty
// tree.
func New(r storer.NodeResolver, root plumbing.Handle) (*Tree, error) {
	t := &Tree{root: root}
	if root.IsZero() {
		return t, nil
	}

	n, err := r.Resolve(root)
	if err != nil {
		return nil, err
	}

	t.nodes = make([]Node, 0, n.Size)

	type item struct {
		h      plumbing.Handle
		parent int
		depth  int
	}

	stack := []item{{h: root, parent: -1}}
	for len(stack) != 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, err := r.Resolve(it.h)
		if err != nil {
			return nil, err
		}

		id := len(t.nodes)
		index := 0
		if it.parent >= 0 {
			p := &t.nodes[it.parent]
			index = len(p.Children)
			p.Children = append(p.Children, id)
		}

		t.nodes = append(t.nodes, Node{
			Handle:      it.h,
			Kind:        n.Kind,
			Label:       n.Label,
			Fingerprint: n.Fingerprint,
			Structure:   n.Structure,
			Size:        n.Size,
			Height:      n.Height,
			Depth:       it.depth,
			Parent:      it.parent,
			Index:       index,
			Children:    make([]int, 0, len(n.Children)),
		})

		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{h: n.Children[i], parent: id, depth: it.depth + 1})
		}
	}

	t.post = make([]int, len(t.nodes))
	for id := range t.nodes {
		nd := &t.nodes[id]
		nd.Post = id + nd.Size - 1 - nd.Depth
		t.post[nd.Post] = id
	}

	return t, nil
}

// Root returns the handle the tree was built from.
func (t *Tree) Root() plumbing.Handle {
	return t.root
}

// Len returns the number of nodes of the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given id.
func (t *Tree) Node(id int) *Node {
	return &t.nodes[id]
}

// PostOrder returns the node ids in post-order. The slice must not be
// modified.
func (t *Tree) PostOrder() []int {
	return t.post
}

// IsDescendant returns true if d is a strict descendant of a.
func (t *Tree) IsDescendant(a, d int) bool {
	return a < d && d < a+t.nodes[a].Size
}

// Descendants returns the range [from, to) of the ids of the strict
// descendants of id.
func (t *Tree) Descendants(id int) (from, to int) {
	return id + 1, id + t.nodes[id].Size
}

// Path returns the position of id, with the tree as the only tree of its
// forest.
func (t *Tree) Path(id int) Path {
	p := make(Path, t.nodes[id].Depth+1)
	for i := len(p) - 1; i > 0; i-- {
		p[i] = t.nodes[id].Index
		id = t.nodes[id].Parent
	}

	return p
}

// Lookup returns the id of the node at p.
func (t *Tree) Lookup(p Path) (int, bool) {
	if len(p) == 0 || p[0] != 0 || len(t.nodes) == 0 {
		return 0, false
	}

	id := 0
	for _, i := range p[1:] {
		children := t.nodes[id].Children
		if i < 0 || i >= len(children) {
			return 0, false
		}
		id = children[i]
	}

	return id, true
}

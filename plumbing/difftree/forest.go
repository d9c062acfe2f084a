package difftree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/storer"
	"github.com/hyperast/go-hyperast/utils/merkletrie/noder"
)

// Node is a node of a Forest.
type Node struct {
	Kind     plumbing.Kind
	Label    string
	Children []*Node

	parent *Node
	// ids of the source and destination nodes this node stands for, -1
	// when there is none.
	src, dst int
}

func (n *Node) index() int {
	for i, c := range n.parent.Children {
		if c == n {
			return i
		}
	}

	return -1
}

func (n *Node) insert(c *Node, i int) {
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = c
	c.parent = n
}

func (n *Node) detach() {
	i := n.index()
	p := n.parent
	p.Children = append(p.Children[:i], p.Children[i+1:]...)
	n.parent = nil
}

// Forest is a mutable list of trees. Edit scripts are generated and
// replayed on forests, so a root can be replaced by inserting the new
// root next to it.
type Forest struct {
	top *Node
}

// NewForest returns a forest holding a mutable copy of t.
func NewForest(t *noder.Tree) *Forest {
	f := &Forest{top: &Node{src: -1, dst: -1}}
	if t.Len() == 0 {
		return f
	}

	nodes := make([]*Node, t.Len())
	for id := 0; id < t.Len(); id++ {
		tn := t.Node(id)
		n := &Node{Kind: tn.Kind, Label: tn.Label, src: id, dst: -1}
		nodes[id] = n

		parent := f.top
		if tn.Parent >= 0 {
			parent = nodes[tn.Parent]
		}

		n.parent = parent
		parent.Children = append(parent.Children, n)
	}

	return f
}

// Roots returns the trees of the forest.
func (f *Forest) Roots() []*Node {
	return f.top.Children
}

// Len returns the number of nodes of the forest.
func (f *Forest) Len() int {
	n := 0
	f.walk(f.top, func(*Node) { n++ })
	return n - 1
}

// Node returns the node at p.
func (f *Forest) Node(p noder.Path) (*Node, bool) {
	if p.IsTopLevel() {
		return nil, false
	}

	return f.lookup(p)
}

// lookup is like Node, but returns the top level for the empty path.
func (f *Forest) lookup(p noder.Path) (*Node, bool) {
	n := f.top
	for _, i := range p {
		if i < 0 || i >= len(n.Children) {
			return nil, false
		}
		n = n.Children[i]
	}

	return n, true
}

func (f *Forest) path(n *Node) noder.Path {
	var p noder.Path
	for ; n != f.top; n = n.parent {
		p = append(p, n.index())
	}

	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}

	return p
}

func (f *Forest) walk(n *Node, fn func(*Node)) {
	for _, c := range n.Children {
		f.walk(c, fn)
	}

	fn(n)
}

// Intern interns the tree of the forest into s. An empty forest gives the
// zero handle; a forest with more than one tree cannot be interned.
func (f *Forest) Intern(s storer.NodeInterner) (plumbing.Handle, error) {
	switch len(f.top.Children) {
	case 0:
		return plumbing.ZeroHandle, nil
	case 1:
		return intern(s, f.top.Children[0])
	default:
		return plumbing.ZeroHandle, fmt.Errorf("forest holds %d trees", len(f.top.Children))
	}
}

func intern(s storer.NodeInterner, n *Node) (plumbing.Handle, error) {
	children := make([]plumbing.Handle, len(n.Children))
	for i, c := range n.Children {
		h, err := intern(s, c)
		if err != nil {
			return plumbing.ZeroHandle, err
		}

		children[i] = h
	}

	return s.Intern(n.Kind, n.Label, children)
}

// String returns the trees of the forest in s-expression notation, one
// per line.
func (f *Forest) String() string {
	var buf strings.Builder
	for _, r := range f.top.Children {
		write(&buf, r)
		buf.WriteByte('\n')
	}

	return buf.String()
}

func write(buf *strings.Builder, n *Node) {
	buf.WriteString("(" + n.Kind.String())
	if n.Label != "" {
		buf.WriteString(" " + strconv.Quote(n.Label))
	}

	for _, c := range n.Children {
		buf.WriteByte(' ')
		write(buf, c)
	}

	buf.WriteByte(')')
}

// Package treetest builds and mutates syntax trees for tests.
package treetest

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/storer"
)

// Node is a mutable tree node.
type Node struct {
	Kind     string
	Label    string
	Children []*Node
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := &Node{Kind: n.Kind, Label: n.Label}
	for _, child := range n.Children {
		c.Children = append(c.Children, child.Clone())
	}

	return c
}

// Size returns the number of nodes of the subtree.
func (n *Node) Size() int {
	size := 1
	for _, c := range n.Children {
		size += c.Size()
	}

	return size
}

// String returns the sexp notation of the tree.
func (n *Node) String() string {
	var buf strings.Builder
	n.write(&buf)
	return buf.String()
}

func (n *Node) write(buf *strings.Builder) {
	buf.WriteString("(" + n.Kind)
	if n.Label != "" {
		buf.WriteString(" " + strconv.Quote(n.Label))
	}

	for _, c := range n.Children {
		buf.WriteByte(' ')
		c.write(buf)
	}

	buf.WriteByte(')')
}

// Intern interns the tree into s.
func (n *Node) Intern(s storer.NodeInterner) (plumbing.Handle, error) {
	children := make([]plumbing.Handle, len(n.Children))
	for i, c := range n.Children {
		h, err := c.Intern(s)
		if err != nil {
			return plumbing.ZeroHandle, err
		}
		children[i] = h
	}

	return s.Intern(plumbing.KindFor(n.Kind), n.Label, children)
}

var (
	innerKinds = []string{"block", "call", "if", "list"}
	leafKinds  = []string{"ident", "number", "string"}
)

// Random returns a random tree of the given depth. Labels are drawn from a
// small alphabet so that identical subtrees are frequent.
func Random(rng *rand.Rand, depth int) *Node {
	if depth <= 1 || rng.Intn(4) == 0 {
		return &Node{
			Kind:  leafKinds[rng.Intn(len(leafKinds))],
			Label: fmt.Sprintf("v%d", rng.Intn(6)),
		}
	}

	n := &Node{Kind: innerKinds[rng.Intn(len(innerKinds))]}
	for i := rng.Intn(4) + 1; i > 0; i-- {
		n.Children = append(n.Children, Random(rng, depth-1))
	}

	return n
}

// Mutate applies count random edits to a copy of n and returns it: label
// changes, leaf insertions, subtree deletions, sibling swaps and subtree
// moves.
func Mutate(rng *rand.Rand, n *Node, count int) *Node {
	root := n.Clone()
	for i := 0; i < count; i++ {
		var all []*Node
		collect(root, &all)
		target := all[rng.Intn(len(all))]

		switch rng.Intn(5) {
		case 0:
			target.Label = fmt.Sprintf("m%d", rng.Intn(100))
		case 1:
			leaf := &Node{Kind: leafKinds[rng.Intn(len(leafKinds))], Label: fmt.Sprintf("n%d", i)}
			pos := rng.Intn(len(target.Children) + 1)
			target.Children = append(target.Children[:pos], append([]*Node{leaf}, target.Children[pos:]...)...)
		case 2:
			if len(target.Children) > 1 {
				pos := rng.Intn(len(target.Children))
				target.Children = append(target.Children[:pos], target.Children[pos+1:]...)
			}
		case 3:
			if len(target.Children) > 1 {
				a, b := rng.Intn(len(target.Children)), rng.Intn(len(target.Children))
				target.Children[a], target.Children[b] = target.Children[b], target.Children[a]
			}
		case 4:
			if len(target.Children) > 1 {
				moved := target.Children[0]
				target.Children = target.Children[1:]
				var dests []*Node
				collect(root, &dests)
				dest := dests[rng.Intn(len(dests))]
				if contains(moved, dest) {
					target.Children = append([]*Node{moved}, target.Children...)
					continue
				}
				dest.Children = append(dest.Children, moved)
			}
		}
	}

	return root
}

func collect(n *Node, out *[]*Node) {
	*out = append(*out, n)
	for _, c := range n.Children {
		collect(c, out)
	}
}

func contains(root, n *Node) bool {
	if root == n {
		return true
	}

	for _, c := range root.Children {
		if contains(c, n) {
			return true
		}
	}

	return false
}

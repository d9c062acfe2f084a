// Package difftree computes edit scripts turning a source tree into a
// destination tree, given a mapping between their nodes.
//
// Scripts are generated by replaying them on a working copy of the source
// forest: the destination is walked in pre-order, inserting the nodes
// without a partner, updating labels, moving nodes whose parent differs
// and aligning the children of each node, then the source nodes without a
// partner are deleted in post-order.
package difftree

import (
	"github.com/hyperast/go-hyperast/utils/merkletrie"
	"github.com/hyperast/go-hyperast/utils/merkletrie/noder"
	"github.com/hyperast/go-hyperast/utils/trace"
)

// Generate returns the edit script turning the source tree of m into its
// destination tree.
func Generate(m *merkletrie.Mapping) (Script, error) {
	g := newGenerator(m)
	g.run()

	trace.Script.Printf("script: %s", g.script.Stats())
	return g.script, nil
}

type generator struct {
	dst *noder.Tree
	f   *Forest

	// copies maps destination ids to the working node standing for them.
	copies  []*Node
	inOrder []bool
	script  Script
}

func newGenerator(m *merkletrie.Mapping) *generator {
	g := &generator{
		dst:     m.Dst(),
		f:       NewForest(m.Src()),
		copies:  make([]*Node, m.Dst().Len()),
		inOrder: make([]bool, m.Dst().Len()),
	}

	g.f.walk(g.f.top, func(n *Node) {
		if n.src < 0 {
			return
		}

		if d, ok := m.Partner(n.src); ok {
			n.dst = d
			g.copies[d] = n
		}
	})

	return g
}

func (g *generator) run() {
	for x := 0; x < g.dst.Len(); x++ {
		xn := g.dst.Node(x)

		z := g.f.top
		if xn.Parent >= 0 {
			z = g.copies[xn.Parent]
		}

		w := g.copies[x]
		switch {
		case w == nil:
			w = &Node{Kind: xn.Kind, Label: xn.Label, src: -1, dst: x}
			to := g.place(w, z, x)
			g.copies[x] = w
			g.emit(Operation{Action: Insert, Src: -1, Dst: x, To: to, Kind: w.Kind, Label: w.Label})
		default:
			if w.Label != xn.Label {
				g.emit(Operation{
					Action:   Update,
					Src:      w.src,
					Dst:      x,
					Path:     g.f.path(w),
					Kind:     w.Kind,
					Label:    xn.Label,
					OldLabel: w.Label,
				})
				w.Label = xn.Label
			}

			if w.parent != z {
				g.move(w, z, x)
			}
		}

		g.inOrder[x] = true
		g.align(w, x)
	}

	var deleted []*Node
	g.f.walk(g.f.top, func(n *Node) {
		if n != g.f.top && n.dst < 0 {
			deleted = append(deleted, n)
		}
	})

	for _, n := range deleted {
		g.emit(Operation{Action: Delete, Src: n.src, Dst: -1, Path: g.f.path(n), Kind: n.Kind, Label: n.Label})
		n.detach()
	}
}

func (g *generator) emit(o Operation) {
	g.script = append(g.script, o)
}

// place inserts w as a child of z at the position of the destination node
// x and returns that position.
func (g *generator) place(w, z *Node, x int) Position {
	k := g.position(x)
	to := Position{Parent: g.f.path(z), Index: k}
	z.insert(w, k)
	return to
}

func (g *generator) move(w, z *Node, x int) {
	from := g.f.path(w)
	w.detach()
	to := g.place(w, z, x)
	g.emit(Operation{Action: Move, Src: w.src, Dst: x, Path: from, To: to, Kind: w.Kind, Label: w.Label})
}

// position returns the child index right after the working node of the
// closest left sibling of x already in order, or 0 if there is none.
func (g *generator) position(x int) int {
	xn := g.dst.Node(x)
	if xn.Parent < 0 {
		return 0
	}

	v := -1
	for _, c := range g.dst.Node(xn.Parent).Children[:xn.Index] {
		if g.inOrder[c] {
			v = c
		}
	}

	if v < 0 {
		return 0
	}

	return g.copies[v].index() + 1
}

// align reorders the children of w that stand for children of x, moving
// the ones out of a longest common subsequence.
func (g *generator) align(w *Node, x int) {
	var s1 []*Node
	for _, c := range w.Children {
		if c.dst >= 0 && g.dst.Node(c.dst).Parent == x {
			s1 = append(s1, c)
		}
	}

	var s2 []int
	for _, c := range g.dst.Node(x).Children {
		if u := g.copies[c]; u != nil && u.parent == w {
			s2 = append(s2, c)
		}
	}

	if len(s1) == 0 {
		return
	}

	idx := make([]int, len(s1))
	for i := range idx {
		idx[i] = i
	}

	kept := make(map[int]bool, len(s2))
	for _, p := range merkletrie.LCS(idx, s2, func(i, d int) bool {
		return s1[i].dst == d
	}) {
		kept[p.Dst] = true
		g.inOrder[p.Dst] = true
	}

	for _, b := range s2 {
		if kept[b] {
			continue
		}

		g.move(g.copies[b], w, b)
		g.inOrder[b] = true
	}
}

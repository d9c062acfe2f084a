package merkletrie

import (
	"sync/atomic"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/emirpasic/gods/utils"
	"golang.org/x/sync/errgroup"

	"github.com/hyperast/go-hyperast/plumbing/hash"
	"github.com/hyperast/go-hyperast/utils/merkletrie/noder"
)

// subtrees smaller than this are mapped on the calling goroutine.
const parallelLinkSize = 256

// heightQueue is a priority queue of node ids, highest subtrees first and
// document order among subtrees of the same height.
type heightQueue struct {
	t   *noder.Tree
	min int
	*binaryheap.Heap
}

func newHeightQueue(t *noder.Tree, minHeight int) *heightQueue {
	q := &heightQueue{t: t, min: minHeight}
	q.Heap = binaryheap.NewWith(q.compare)
	return q
}

func (q *heightQueue) compare(a, b interface{}) int {
	x, y := a.(int), b.(int)
	hx, hy := q.t.Node(x).Height, q.t.Node(y).Height
	switch {
	case hx > hy:
		return -1
	case hx < hy:
		return 1
	}

	return utils.IntComparator(x, y)
}

func (q *heightQueue) push(id int) {
	if q.t.Node(id).Height >= q.min {
		q.Push(id)
	}
}

// open pushes the children of id.
func (q *heightQueue) open(id int) {
	for _, c := range q.t.Node(id).Children {
		q.push(c)
	}
}

func (q *heightQueue) peekHeight() int {
	v, ok := q.Peek()
	if !ok {
		return 0
	}

	return q.t.Node(v.(int)).Height
}

// popLevel pops every node with the highest height.
func (q *heightQueue) popLevel() []int {
	h := q.peekHeight()

	var ids []int
	for {
		v, ok := q.Peek()
		if !ok || q.t.Node(v.(int)).Height != h {
			return ids
		}

		q.Pop()
		ids = append(ids, v.(int))
	}
}

func (mt *matcher) topDown() error {
	sq := newHeightQueue(mt.src, mt.o.MinHeight)
	dq := newHeightQueue(mt.dst, mt.o.MinHeight)
	sq.push(0)
	dq.push(0)

	var linked atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(mt.o.Workers)

	link := func(p Pair) {
		size := mt.src.Node(p.Src).Size
		fn := func() error {
			linked.Add(int64(mt.m.linkRange(p.Src, p.Dst, size)))
			return nil
		}

		if size < parallelLinkSize || !g.TryGo(fn) {
			fn() // nolint: errcheck
		}
	}

	for !sq.Empty() && !dq.Empty() {
		if err := mt.ctx.Err(); err != nil {
			g.Wait() // nolint: errcheck
			return err
		}

		hs, hd := sq.peekHeight(), dq.peekHeight()
		if hs > hd {
			for _, id := range sq.popLevel() {
				sq.open(id)
			}
			continue
		}

		if hd > hs {
			for _, id := range dq.popLevel() {
				dq.open(id)
			}
			continue
		}

		srcs, dsts := sq.popLevel(), dq.popLevel()
		pairs := mt.identical(srcs, dsts)

		matchedSrc := make(map[int]bool, len(pairs))
		matchedDst := make(map[int]bool, len(pairs))
		for _, p := range pairs {
			matchedSrc[p.Src] = true
			matchedDst[p.Dst] = true
			link(p)
		}

		for _, id := range srcs {
			if !matchedSrc[id] {
				sq.open(id)
			}
		}

		for _, id := range dsts {
			if !matchedDst[id] {
				dq.open(id)
			}
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	mt.m.n += int(linked.Load())
	return nil
}

// identical pairs the nodes of srcs and dsts with the same fingerprint.
// Both slices are in document order and hold disjoint subtrees, so when a
// fingerprint occurs several times on a side the occurrences are paired
// leftmost first.
func (mt *matcher) identical(srcs, dsts []int) []Pair {
	type group struct {
		src, dst []int
	}

	groups := make(map[hash.Fingerprint]*group, len(srcs))
	var order []*group
	for _, s := range srcs {
		fp := mt.src.Node(s).Fingerprint
		g, ok := groups[fp]
		if !ok {
			g = &group{}
			groups[fp] = g
			order = append(order, g)
		}

		g.src = append(g.src, s)
	}

	for _, d := range dsts {
		if g, ok := groups[mt.dst.Node(d).Fingerprint]; ok {
			g.dst = append(g.dst, d)
		}
	}

	var pairs []Pair
	for _, g := range order {
		for i := 0; i < len(g.src) && i < len(g.dst); i++ {
			pairs = append(pairs, Pair{Src: g.src[i], Dst: g.dst[i]})
		}
	}

	return pairs
}

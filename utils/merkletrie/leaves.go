package merkletrie

import (
	"github.com/hyperast/go-hyperast/plumbing"
)

// leaves pairs the unmapped leaves with the same kind and label, each
// source leaf taking the closest destination leaf in document order.
func (mt *matcher) leaves() {
	type key struct {
		kind  plumbing.Kind
		label string
	}

	pool := make(map[key][]int)
	for d := 0; d < mt.dst.Len(); d++ {
		n := mt.dst.Node(d)
		if n.IsLeaf() && !mt.m.IsDstMapped(d) {
			k := key{n.Kind, n.Label}
			pool[k] = append(pool[k], d)
		}
	}

	if len(pool) == 0 {
		return
	}

	for s := 0; s < mt.src.Len(); s++ {
		n := mt.src.Node(s)
		if !n.IsLeaf() || mt.m.IsSrcMapped(s) {
			continue
		}

		k := key{n.Kind, n.Label}
		ds := pool[k]
		if len(ds) == 0 {
			continue
		}

		best := 0
		for i, d := range ds {
			if distance(s, d) < distance(s, ds[best]) {
				best = i
			}
		}

		mt.m.link(s, ds[best])
		pool[k] = append(ds[:best], ds[best+1:]...)
	}
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}

	return b - a
}

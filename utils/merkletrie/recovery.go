package merkletrie

import (
	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/utils/merkletrie/noder"
)

// recover pairs the unmapped children of the mapped nodes s and d:
// identical subtrees first, then subtrees only differing by their labels,
// then children whose kind is unique on both sides, recursively.
func (mt *matcher) recover(s, d int) {
	sc, dc := mt.unmappedChildren(mt.src, s, true), mt.unmappedChildren(mt.dst, d, false)
	if len(sc) == 0 || len(dc) == 0 {
		return
	}

	for _, p := range LCS(sc, dc, func(x, y int) bool {
		return mt.src.Node(x).Fingerprint == mt.dst.Node(y).Fingerprint
	}) {
		mt.tryLink(p.Src, p.Dst)
	}

	sc, dc = mt.unmappedChildren(mt.src, s, true), mt.unmappedChildren(mt.dst, d, false)
	for _, p := range LCS(sc, dc, func(x, y int) bool {
		return mt.src.Node(x).Structure == mt.dst.Node(y).Structure
	}) {
		mt.linkIsomorphic(p.Src, p.Dst)
	}

	sc, dc = mt.unmappedChildren(mt.src, s, true), mt.unmappedChildren(mt.dst, d, false)
	srcKinds, dstKinds := countKinds(mt.src, sc), countKinds(mt.dst, dc)
	for _, x := range sc {
		kind := mt.src.Node(x).Kind
		if srcKinds[kind] != 1 || dstKinds[kind] != 1 {
			continue
		}

		for _, y := range dc {
			if mt.dst.Node(y).Kind == kind && mt.tryLink(x, y) {
				mt.recover(x, y)
			}
		}
	}
}

// linkIsomorphic maps node by node two unmapped subtrees with the same
// structure hash, and so the same shape.
func (mt *matcher) linkIsomorphic(s, d int) {
	if !mt.m.isFree(s, d) {
		return
	}

	for i := 0; i < mt.src.Node(s).Size; i++ {
		mt.tryLink(s+i, d+i)
	}
}

func (mt *matcher) unmappedChildren(t *noder.Tree, id int, src bool) []int {
	var out []int
	for _, c := range t.Node(id).Children {
		if src && !mt.m.IsSrcMapped(c) || !src && !mt.m.IsDstMapped(c) {
			out = append(out, c)
		}
	}

	return out
}

func countKinds(t *noder.Tree, ids []int) map[plumbing.Kind]int {
	counts := make(map[plumbing.Kind]int, len(ids))
	for _, id := range ids {
		counts[t.Node(id).Kind]++
	}

	return counts
}

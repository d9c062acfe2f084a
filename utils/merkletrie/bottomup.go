package merkletrie

import (
	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/emirpasic/gods/utils"
)

type candidate struct {
	src, dst int
	sim      float64
}

func (mt *matcher) compareCandidates(a, b interface{}) int {
	x, y := a.(candidate), b.(candidate)
	switch {
	case x.sim > y.sim:
		return -1
	case x.sim < y.sim:
		return 1
	}

	sx, sy := mt.src.Node(x.src).Size, mt.src.Node(y.src).Size
	switch {
	case sx > sy:
		return -1
	case sx < sy:
		return 1
	}

	if c := utils.IntComparator(x.src, y.src); c != 0 {
		return c
	}

	return utils.IntComparator(x.dst, y.dst)
}

func (mt *matcher) bottomUp() error {
	levels := make([][]int, mt.src.Node(0).Height+1)
	for id := 0; id < mt.src.Len(); id++ {
		n := mt.src.Node(id)
		if n.IsLeaf() || n.Size < mt.o.MinSize || mt.m.IsSrcMapped(id) {
			continue
		}

		levels[n.Height] = append(levels[n.Height], id)
	}

	for _, level := range levels {
		if len(level) == 0 {
			continue
		}

		if err := mt.ctx.Err(); err != nil {
			return err
		}

		queue := binaryheap.NewWith(mt.compareCandidates)
		for _, t := range level {
			if mt.m.IsSrcMapped(t) {
				continue
			}

			for _, d := range mt.candidates(t) {
				if sim := mt.dice(t, d); sim >= mt.o.SimilarityThreshold {
					queue.Push(candidate{src: t, dst: d, sim: sim})
				}
			}
		}

		for !queue.Empty() {
			v, _ := queue.Pop()
			c := v.(candidate)
			if mt.tryLink(c.src, c.dst) && !mt.o.DisableRecovery {
				mt.recover(c.src, c.dst)
			}
		}
	}

	if mt.o.DisableRootMatch || mt.m.IsSrcMapped(0) || mt.m.IsDstMapped(0) {
		return nil
	}

	if mt.src.Node(0).Kind == mt.dst.Node(0).Kind && mt.tryLink(0, 0) && !mt.o.DisableRecovery {
		mt.recover(0, 0)
	}

	return nil
}

// candidates returns the unmapped destination nodes with the kind of t
// that are ancestors of the partner of a descendant of t.
func (mt *matcher) candidates(t int) []int {
	kind := mt.src.Node(t).Kind
	seen := make(map[int]bool)

	var out []int
	from, to := mt.src.Descendants(t)
	for s := from; s < to; s++ {
		d, ok := mt.m.Partner(s)
		if !ok {
			continue
		}

		for a := mt.dst.Node(d).Parent; a >= 0; a = mt.dst.Node(a).Parent {
			if seen[a] {
				break
			}

			seen[a] = true
			if !mt.m.IsDstMapped(a) && mt.dst.Node(a).Kind == kind {
				out = append(out, a)
			}
		}
	}

	return out
}

// dice returns the Dice coefficient of the descendants of s and d: twice
// the number of descendants of s mapped to descendants of d, over the
// number of descendants of both.
func (mt *matcher) dice(s, d int) float64 {
	total := mt.src.Node(s).Size - 1 + mt.dst.Node(d).Size - 1
	if total == 0 {
		return 0
	}

	common := 0
	from, to := mt.src.Descendants(s)
	for i := from; i < to; i++ {
		if p, ok := mt.m.Partner(i); ok && mt.dst.IsDescendant(d, p) {
			common++
		}
	}

	return 2 * float64(common) / float64(total)
}

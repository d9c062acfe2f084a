package merkletrie

import (
	"fmt"

	"github.com/hyperast/go-hyperast/utils/merkletrie/noder"
)

const unmapped = -1

// Pair is a source node mapped to a destination node, both given by their
// ids in their tree.
type Pair struct {
	Src int
	Dst int
}

func (p Pair) String() string {
	return fmt.Sprintf("%d->%d", p.Src, p.Dst)
}

// Mapping is a partial bijection between the nodes of a source and a
// destination tree.
type Mapping struct {
	src, dst *noder.Tree
	s2d, d2s []int
	n        int
}

// NewMapping returns an empty mapping between src and dst.
func NewMapping(src, dst *noder.Tree) *Mapping {
	m := &Mapping{
		src: src,
		dst: dst,
		s2d: make([]int, src.Len()),
		d2s: make([]int, dst.Len()),
	}

	for i := range m.s2d {
		m.s2d[i] = unmapped
	}

	for i := range m.d2s {
		m.d2s[i] = unmapped
	}

	return m
}

// Src returns the source tree.
func (m *Mapping) Src() *noder.Tree {
	return m.src
}

// Dst returns the destination tree.
func (m *Mapping) Dst() *noder.Tree {
	return m.dst
}

// Len returns the number of mapped pairs.
func (m *Mapping) Len() int {
	return m.n
}

// Partner returns the destination node mapped to the source node src.
func (m *Mapping) Partner(src int) (int, bool) {
	d := m.s2d[src]
	return d, d != unmapped
}

// Source returns the source node mapped to the destination node dst.
func (m *Mapping) Source(dst int) (int, bool) {
	s := m.d2s[dst]
	return s, s != unmapped
}

// IsSrcMapped returns true if the source node src is mapped.
func (m *Mapping) IsSrcMapped(src int) bool {
	return m.s2d[src] != unmapped
}

// IsDstMapped returns true if the destination node dst is mapped.
func (m *Mapping) IsDstMapped(dst int) bool {
	return m.d2s[dst] != unmapped
}

// Has returns true if src is mapped to dst.
func (m *Mapping) Has(src, dst int) bool {
	return m.s2d[src] == dst
}

// Pairs returns the mapped pairs in source document order.
func (m *Mapping) Pairs() []Pair {
	pairs := make([]Pair, 0, m.n)
	m.ForEach(func(p Pair) error { // nolint: errcheck
		pairs = append(pairs, p)
		return nil
	})

	return pairs
}

// ForEach calls fn for every mapped pair, in source document order. It
// stops at the first error returned by fn and returns it.
func (m *Mapping) ForEach(fn func(Pair) error) error {
	for s, d := range m.s2d {
		if d == unmapped {
			continue
		}

		if err := fn(Pair{Src: s, Dst: d}); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks that the mapping is a partial bijection and that
// mapped nodes with the same fingerprint have all their descendants
// mapped to each other.
func (m *Mapping) Validate() error {
	n := 0
	for s, d := range m.s2d {
		if d == unmapped {
			continue
		}

		n++
		if d < 0 || d >= len(m.d2s) || m.d2s[d] != s {
			return fmt.Errorf("source node %d mapped to %d, which is not mapped back", s, d)
		}

		sn, dn := m.src.Node(s), m.dst.Node(d)
		if sn.Fingerprint != dn.Fingerprint {
			continue
		}

		for i := 1; i < sn.Size; i++ {
			if m.s2d[s+i] != d+i {
				return fmt.Errorf("identical subtrees %d and %d are partially mapped", s, d)
			}
		}
	}

	for d, s := range m.d2s {
		if s != unmapped && (s < 0 || s >= len(m.s2d) || m.s2d[s] != d) {
			return fmt.Errorf("destination node %d mapped to %d, which is not mapped back", d, s)
		}
	}

	if n != m.n {
		return fmt.Errorf("mapping holds %d pairs, %d counted", n, m.n)
	}

	return nil
}

// link maps s to d. Both must be unmapped.
func (m *Mapping) link(s, d int) {
	m.s2d[s] = d
	m.d2s[d] = s
	m.n++
}

// linkRange maps the subtrees rooted at s and d node by node. Both
// subtrees must have the same shape and be entirely unmapped. It does not
// update the pair count, so it can run concurrently on disjoint subtrees.
func (m *Mapping) linkRange(s, d, size int) int {
	for i := 0; i < size; i++ {
		m.s2d[s+i] = d + i
		m.d2s[d+i] = s + i
	}

	return size
}

// isFree returns true if no node of the subtrees rooted at s and d is
// mapped.
func (m *Mapping) isFree(s, d int) bool {
	for i := 0; i < m.src.Node(s).Size; i++ {
		if m.s2d[s+i] != unmapped {
			return false
		}
	}

	for i := 0; i < m.dst.Node(d).Size; i++ {
		if m.d2s[d+i] != unmapped {
			return false
		}
	}

	return true
}

package noder

import (
	"fmt"
	"strconv"
	"strings"
)

// Path locates a node in a forest of trees as the sequence of child
// indexes leading to it. The first element selects a tree of the forest,
// so the root of a single tree is at Path{0} and its second child at
// Path{0, 1}. The empty path designates the top level of the forest.
type Path []int

// String returns the indexes of the path joined by slashes, e.g. "0/1/3".
// The empty path is rendered as an empty string.
func (p Path) String() string {
	var buf strings.Builder
	for i, v := range p {
		if i != 0 {
			buf.WriteByte('/')
		}
		buf.WriteString(strconv.Itoa(v))
	}

	return buf.String()
}

// ParsePath is the inverse of Path.String.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}

	parts := strings.Split(s, "/")
	p := make(Path, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid path %q", s)
		}
		p[i] = v
	}

	return p, nil
}

// IsTopLevel returns true for the empty path.
func (p Path) IsTopLevel() bool {
	return len(p) == 0
}

// Parent returns the path of the parent. The parent of a root is the top
// level.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}

	return p[:len(p)-1:len(p)-1]
}

// Last returns the index of the node among its siblings, or -1 for the
// top level.
func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}

	return p[len(p)-1]
}

// Child returns a new path for the i-th child of p.
func (p Path) Child(i int) Path {
	c := make(Path, len(p)+1)
	copy(c, p)
	c[len(p)] = i
	return c
}

// Equal returns true if both paths have the same indexes.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}

	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}

	return true
}

// Compare returns -1, 0 or 1 if p comes before, is the same as or comes
// after other in document order. Ancestors come before their descendants.
func (p Path) Compare(other Path) int {
	for i := 0; i < len(p) && i < len(other); i++ {
		switch {
		case p[i] < other[i]:
			return -1
		case p[i] > other[i]:
			return 1
		}
	}

	switch {
	case len(p) < len(other):
		return -1
	case len(p) > len(other):
		return 1
	default:
		return 0
	}
}

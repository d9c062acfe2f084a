// Package plumbing implements the core types shared by the store, the
// matcher and the edit script generator.
package plumbing

import (
	"fmt"
	"strconv"

	"github.com/hyperast/go-hyperast/plumbing/hash"
)

// Node is the resolved view of an interned subtree. Size and Height are
// computed once, when the node is interned.
//
// Children is a copy owned by the caller.
type Node struct {
	Kind     Kind
	Label    string
	Children []Handle

	// Size is the number of nodes of the subtree, itself included.
	Size int
	// Height is 1 for leaves and 1 + the highest child height otherwise.
	Height int

	// Fingerprint covers kind, label and children fingerprints.
	Fingerprint hash.Fingerprint
	// Structure covers kind and children structure hashes only.
	Structure hash.Fingerprint
}

// IsLeaf returns true if the node has no children.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// HasLabel returns true if the node carries a label.
func (n Node) HasLabel() bool {
	return n.Label != ""
}

// NumChildren returns the number of children of the node.
func (n Node) NumChildren() int {
	return len(n.Children)
}

func (n Node) String() string {
	s := n.Kind.String()
	if n.HasLabel() {
		s += " " + strconv.Quote(n.Label)
	}

	return fmt.Sprintf("%s [%d children, size %d, height %d, %s]",
		s, len(n.Children), n.Size, n.Height, n.Fingerprint.Short())
}

// Package hasher computes the fingerprints identifying interned subtrees.
package hasher

import (
	"encoding/binary"
	"sync"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/hash"
)

const (
	syntaxDomain    byte = 'x'
	structureDomain byte = 's'
)

// Hashes groups the hashes computed for a single node.
type Hashes struct {
	// Syntax covers the kind, the label and the Syntax hash of every child,
	// in order. It is the fingerprint of the node.
	Syntax hash.Fingerprint
	// Structure covers the kind and the Structure hash of every child,
	// ignoring labels.
	Structure hash.Fingerprint
}

// NodeHasher computes the hashes of a node out of its kind, its label and
// the hashes of its children. A few properties it guarantees:
//
//   - Hashes depend on the kind name, never on the Kind value, so they are
//     stable across processes.
//   - Changing the label, the kind or the order of the children changes
//     the Syntax hash.
//   - Thread-safety.
type NodeHasher struct {
	hasher hash.Hash
	m      sync.Mutex
	// both fields below are allocation optimisations.
	b   [hash.Size]byte
	buf [binary.MaxVarintLen64]byte
}

// New returns a NodeHasher backed by the fingerprint algorithm.
func New() *NodeHasher {
	return &NodeHasher{hasher: hash.New()}
}

// Size returns the length of the resulting hashes.
func (h *NodeHasher) Size() int {
	return h.hasher.Size()
}

// Compute calculates the hashes of a node.
func (h *NodeHasher) Compute(kind plumbing.Kind, label string, children []Hashes) Hashes {
	h.m.Lock()
	defer h.m.Unlock()

	var out Hashes
	name := kind.String()

	h.hasher.Reset()
	h.writeHeader(syntaxDomain, name, len(children))
	h.writeVarint(uint64(len(label)))
	h.hasher.Write([]byte(label))
	for _, c := range children {
		h.hasher.Write(c.Syntax[:])
	}
	copy(out.Syntax[:], h.hasher.Sum(h.b[:0]))

	h.hasher.Reset()
	h.writeHeader(structureDomain, name, len(children))
	for _, c := range children {
		h.hasher.Write(c.Structure[:])
	}
	copy(out.Structure[:], h.hasher.Sum(h.b[:0]))

	return out
}

func (h *NodeHasher) writeHeader(domain byte, kind string, children int) {
	h.hasher.Write([]byte{domain})
	h.writeVarint(uint64(len(kind)))
	h.hasher.Write([]byte(kind))
	h.writeVarint(uint64(children))
}

func (h *NodeHasher) writeVarint(v uint64) {
	n := binary.PutUvarint(h.buf[:], v)
	h.hasher.Write(h.buf[:n])
}

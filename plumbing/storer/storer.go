// Package storer defines the interfaces implemented by subtree stores.
package storer

import (
	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/hash"
)

// NodeStorer is a basic storer of interned subtrees.
type NodeStorer interface {
	NodeInterner
	NodeResolver
}

// NodeInterner interns nodes bottom-up: children must be interned before
// their parent.
type NodeInterner interface {
	// Intern returns the handle of the node with the given kind, label and
	// children, storing it first if no equal node is known. Children must
	// be handles produced by the same store.
	Intern(kind plumbing.Kind, label string, children []plumbing.Handle) (plumbing.Handle, error)
}

// NodeResolver gives read access to interned nodes.
type NodeResolver interface {
	// Resolve returns the node referenced by h. If h was not produced by
	// this store plumbing.ErrUnknownHandle is returned.
	Resolve(h plumbing.Handle) (plumbing.Node, error)
}

// FingerprintLookup is implemented by storers able to find a node by its
// fingerprint without interning it.
type FingerprintLookup interface {
	Lookup(f hash.Fingerprint) (plumbing.Handle, bool)
}

// Stats describes the content of a store.
type Stats struct {
	// Nodes is the number of distinct nodes stored.
	Nodes int
	// Labels is the number of distinct labels stored.
	Labels int
	// Interns is the number of calls to Intern that returned a handle.
	Interns uint64
	// Hits is the number of those calls answered with an existing node.
	Hits uint64
}

// StatsGetter is implemented by storers that keep counters.
type StatsGetter interface {
	Stats() Stats
}

// Package cache holds the caches used to avoid rebuilding the trees of git
// objects already seen.
package cache

import (
	gitplumbing "github.com/go-git/go-git/v5/plumbing"

	"github.com/hyperast/go-hyperast/plumbing"
)

// DefaultMaxEntries is the number of objects kept by default.
const DefaultMaxEntries = 64 * 1024

// Handles caches the handles built from git objects: the root of the
// syntax tree of a blob, or the children of the node built from a tree.
type Handles interface {
	// Put stores the handles built from the object k.
	Put(k gitplumbing.Hash, v []plumbing.Handle)
	// Get returns the handles built from the object k.
	Get(k gitplumbing.Hash) ([]plumbing.Handle, bool)
	// Clear removes every entry.
	Clear()
}

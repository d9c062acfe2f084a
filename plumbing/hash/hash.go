// package hash provides the fingerprint type used to identify stored
// subtrees and the hash function that computes it.
package hash

import (
	"hash"

	"github.com/pjbgf/sha1cd"
)

// Hash is the same as hash.Hash. This allows consumers
// to not having to import this package alongside "hash".
type Hash interface {
	hash.Hash
}

// New returns a new Hash computing fingerprints. It is SHA-1 with
// collision detection.
func New() Hash {
	return sha1cd.New()
}

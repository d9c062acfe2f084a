package hash

import (
	"bytes"
	"encoding/hex"
	"sort"
)

const (
	// Size defines the amount of bytes a fingerprint has.
	Size = 20
	// HexSize defines the strings size of a fingerprint when represented in
	// hexadecimal.
	HexSize = Size * 2
)

// Fingerprint identifies the content of a subtree. Two subtrees with the
// same kind, label and children fingerprints have the same Fingerprint.
type Fingerprint [Size]byte

// ZeroFingerprint is a Fingerprint with value zero.
var ZeroFingerprint Fingerprint

// IsZero returns true if the fingerprint only contains 0s.
func (f Fingerprint) IsZero() bool {
	return f == ZeroFingerprint
}

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 7 hexadecimal characters of the fingerprint.
func (f Fingerprint) Short() string {
	return f.String()[:7]
}

// Bytes returns a copy of the fingerprint sum.
func (f Fingerprint) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, f[:])
	return b
}

// Compare compares the fingerprint with a slice of bytes.
func (f Fingerprint) Compare(in []byte) int {
	return bytes.Compare(f[:], in)
}

// Shard maps the fingerprint to one of n buckets. n must be a power of two.
func (f Fingerprint) Shard(n int) int {
	v := uint32(f[0]) | uint32(f[1])<<8 | uint32(f[2])<<16 | uint32(f[3])<<24
	return int(v & uint32(n-1))
}

// FromHex parses a hexadecimal string into a Fingerprint. The boolean
// reports whether the input was a valid fingerprint.
func FromHex(in string) (Fingerprint, bool) {
	var f Fingerprint
	if len(in) != HexSize {
		return f, false
	}

	b, err := hex.DecodeString(in)
	if err != nil {
		return f, false
	}

	copy(f[:], b)
	return f, true
}

// MustFromHex is like FromHex but panics on invalid input.
func MustFromHex(in string) Fingerprint {
	f, ok := FromHex(in)
	if !ok {
		panic("cannot create fingerprint from " + in)
	}
	return f
}

// Sort sorts a slice of fingerprints in increasing order.
func Sort(a []Fingerprint) {
	sort.Sort(Fingerprints(a))
}

// Fingerprints attaches the methods of sort.Interface to []Fingerprint,
// sorting in increasing order.
type Fingerprints []Fingerprint

func (p Fingerprints) Len() int           { return len(p) }
func (p Fingerprints) Less(i, j int) bool { return p[i].Compare(p[j][:]) < 0 }
func (p Fingerprints) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

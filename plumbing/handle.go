package plumbing

import (
	"fmt"
)

const (
	handleIndexBits = 40
	handleIndexMask = 1<<handleIndexBits - 1

	// MaxStoreID is the highest store instance id a Handle can carry.
	MaxStoreID = 1<<(64-handleIndexBits) - 1
	// MaxIndex is the highest slot index a Handle can carry.
	MaxIndex = handleIndexMask - 1
)

// Handle references a node interned in a store. Handles are only valid
// for the store instance that produced them: the id of that instance is
// encoded in the upper bits, the slot index in the lower ones.
//
// Two handles of the same store are equal if and only if they reference
// bit-identical subtrees.
type Handle uint64

// ZeroHandle is the Handle with value zero, it never references a node.
var ZeroHandle Handle

// NewHandle returns the Handle for the given store id and slot index.
func NewHandle(store uint32, index uint64) Handle {
	return Handle(uint64(store)<<handleIndexBits | (index + 1))
}

// IsZero returns true if the handle is ZeroHandle.
func (h Handle) IsZero() bool {
	return h == ZeroHandle
}

// Store returns the id of the store instance that produced the handle.
func (h Handle) Store() uint32 {
	return uint32(uint64(h) >> handleIndexBits)
}

// Index returns the slot index of the handle within its store. It returns
// false for handles without a slot.
func (h Handle) Index() (uint64, bool) {
	i := uint64(h) & handleIndexMask
	if i == 0 {
		return 0, false
	}

	return i - 1, true
}

func (h Handle) String() string {
	i, ok := h.Index()
	if !ok {
		return "<zero>"
	}

	return fmt.Sprintf("%d:%d", h.Store(), i)
}

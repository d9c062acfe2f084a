package memory

import (
	"sync"
	"sync/atomic"
)

const (
	chunkBits = 12
	chunkSize = 1 << chunkBits
	chunkMask = chunkSize - 1
)

type chunk[T any] [chunkSize]atomic.Pointer[T]

// arena is an append-only table of published values. Reads never lock:
// the chunk directory is swapped atomically when it grows, and every slot
// is an atomic pointer that stays nil until published.
type arena[T any] struct {
	chunks atomic.Pointer[[]*chunk[T]]
	grow   sync.Mutex
	next   atomic.Uint64
}

// alloc reserves the next free index.
func (a *arena[T]) alloc() uint64 {
	return a.next.Add(1) - 1
}

func (a *arena[T]) publish(i uint64, v *T) {
	a.chunk(i, true)[i&chunkMask].Store(v)
}

// get returns the value at i, or nil if nothing was published there.
func (a *arena[T]) get(i uint64) *T {
	c := a.chunk(i, false)
	if c == nil {
		return nil
	}

	return c[i&chunkMask].Load()
}

func (a *arena[T]) len() int {
	return int(a.next.Load())
}

func (a *arena[T]) chunk(i uint64, create bool) *chunk[T] {
	ci := int(i >> chunkBits)
	if cs := a.chunks.Load(); cs != nil && ci < len(*cs) {
		return (*cs)[ci]
	}

	if !create {
		return nil
	}

	a.grow.Lock()
	defer a.grow.Unlock()

	var cur []*chunk[T]
	if cs := a.chunks.Load(); cs != nil {
		cur = *cs
	}

	if ci < len(cur) {
		return cur[ci]
	}

	next := make([]*chunk[T], ci+1)
	copy(next, cur)
	for j := len(cur); j <= ci; j++ {
		next[j] = new(chunk[T])
	}

	a.chunks.Store(&next)
	return next[ci]
}

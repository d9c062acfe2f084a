// Package memory is a subtree storage backend based on memory.
package memory

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/text/unicode/norm"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/hash"
	"github.com/hyperast/go-hyperast/plumbing/hasher"
	"github.com/hyperast/go-hyperast/plumbing/storer"
	"github.com/hyperast/go-hyperast/utils/trace"
)

// ErrStoreIDsExhausted is raised when every store instance id a Handle can
// carry has been given out.
var ErrStoreIDsExhausted = errors.New("store ids exhausted")

var storageIDs atomic.Uint32

// nextID takes the next store id from ids. Ids are never reused, so two
// stores never accept the handles of each other.
func nextID(ids *atomic.Uint32) (uint32, error) {
	for {
		cur := ids.Load()
		if cur >= plumbing.MaxStoreID {
			return 0, ErrStoreIDsExhausted
		}

		if ids.CompareAndSwap(cur, cur+1) {
			return cur + 1, nil
		}
	}
}

// Storage is an in-memory, content-addressed store of subtrees. Interning
// is safe for concurrent use: the fingerprint index is split in shards,
// each guarded by its own lock, so only interns of fingerprints falling in
// the same shard wait for each other. Resolving never locks.
type Storage struct {
	id     uint32
	opts   options
	shards []shard
	nodes  arena[object]
	labels *LabelStorage

	hashers  sync.Pool
	reserved atomic.Int64
	interns  atomic.Uint64
	hits     atomic.Uint64
}

type shard struct {
	sync.Mutex
	index map[hash.Fingerprint]plumbing.Handle
}

type object struct {
	kind     plumbing.Kind
	label    string
	labelID  LabelID
	children []plumbing.Handle
	size     int
	height   int
	hashes   hasher.Hashes
}

var (
	_ storer.NodeStorer        = (*Storage)(nil)
	_ storer.FingerprintLookup = (*Storage)(nil)
	_ storer.StatsGetter       = (*Storage)(nil)
)

// NewStorage returns a new empty Storage. It panics with
// ErrStoreIDsExhausted once the process has created more stores than a
// Handle can tell apart.
func NewStorage(opts ...StorageOption) *Storage {
	o := newOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id, err := nextID(&storageIDs)
	if err != nil {
		panic(err)
	}

	s := &Storage{
		id:     id,
		opts:   o,
		shards: make([]shard, o.shards),
		labels: NewLabelStorage(),
	}

	for i := range s.shards {
		s.shards[i].index = make(map[hash.Fingerprint]plumbing.Handle)
	}

	s.hashers.New = func() interface{} { return hasher.New() }
	return s
}

// ID returns the instance id carried by every handle of the storage.
func (s *Storage) ID() uint32 {
	return s.id
}

// Labels returns the label table of the storage.
func (s *Storage) Labels() *LabelStorage {
	return s.labels
}

// Intern returns the handle of the node with the given kind, label and
// children. If an identical subtree was already interned its handle is
// returned and nothing is stored. Children produced by another store fail
// with ErrUnknownHandle, zero or not yet interned ones with a
// MalformedInputError.
func (s *Storage) Intern(kind plumbing.Kind, label string, children []plumbing.Handle) (plumbing.Handle, error) {
	if !kind.Valid() {
		return plumbing.ZeroHandle, plumbing.NewMalformedInputError("invalid kind %d", kind)
	}

	hs := make([]hasher.Hashes, len(children))
	size, height := 1, 0
	for i, c := range children {
		o, err := s.child(c)
		if err != nil {
			return plumbing.ZeroHandle, err
		}

		hs[i] = o.hashes
		size += o.size
		if o.height > height {
			height = o.height
		}
	}

	if s.opts.normalizeLabels {
		label = norm.NFC.String(label)
	}

	h := s.hashers.Get().(*hasher.NodeHasher)
	hashes := h.Compute(kind, label, hs)
	s.hashers.Put(h)

	sh := &s.shards[hashes.Syntax.Shard(len(s.shards))]
	sh.Lock()
	defer sh.Unlock()

	if existing, ok := sh.index[hashes.Syntax]; ok {
		if s.opts.verifyCollisions {
			if err := s.verify(existing, kind, label, children); err != nil {
				return plumbing.ZeroHandle, err
			}
		}

		s.interns.Add(1)
		s.hits.Add(1)
		return existing, nil
	}

	if err := s.reserve(); err != nil {
		return plumbing.ZeroHandle, err
	}

	id, canonical := s.labels.Intern(label)
	obj := &object{
		kind:     kind,
		label:    canonical,
		labelID:  id,
		children: append([]plumbing.Handle(nil), children...),
		size:     size,
		height:   height + 1,
		hashes:   hashes,
	}

	i := s.nodes.alloc()
	s.nodes.publish(i, obj)

	handle := plumbing.NewHandle(s.id, i)
	sh.index[hashes.Syntax] = handle
	s.interns.Add(1)
	return handle, nil
}

func (s *Storage) reserve() error {
	limit := s.opts.maxNodes
	if limit <= 0 || limit > plumbing.MaxIndex {
		limit = plumbing.MaxIndex
	}

	if s.reserved.Add(1) > int64(limit) {
		s.reserved.Add(-1)
		trace.Store.Printf("store %d: capacity of %d nodes reached", s.id, limit)
		return &plumbing.CapacityExceededError{Limit: limit}
	}

	return nil
}

func (s *Storage) verify(h plumbing.Handle, kind plumbing.Kind, label string, children []plumbing.Handle) error {
	o, _ := s.object(h)
	if o.kind != kind || o.label != label || len(o.children) != len(children) {
		return fmt.Errorf("%w: %s", plumbing.ErrFingerprintCollision, o.hashes.Syntax)
	}

	for i, c := range children {
		if o.children[i] != c {
			return fmt.Errorf("%w: %s", plumbing.ErrFingerprintCollision, o.hashes.Syntax)
		}
	}

	return nil
}

func (s *Storage) child(h plumbing.Handle) (*object, error) {
	if h.IsZero() {
		return nil, plumbing.NewMalformedInputError("child %s is not interned", h)
	}

	if h.Store() != s.id {
		return nil, plumbing.NewUnknownHandleError(h)
	}

	o, ok := s.object(h)
	if !ok {
		return nil, plumbing.NewMalformedInputError("child %s is not interned", h)
	}

	return o, nil
}

func (s *Storage) object(h plumbing.Handle) (*object, bool) {
	if h.Store() != s.id {
		return nil, false
	}

	i, ok := h.Index()
	if !ok {
		return nil, false
	}

	o := s.nodes.get(i)
	return o, o != nil
}

// Resolve returns the node referenced by h. The children of the node are a
// copy and may be modified.
func (s *Storage) Resolve(h plumbing.Handle) (plumbing.Node, error) {
	o, ok := s.object(h)
	if !ok {
		return plumbing.Node{}, plumbing.NewUnknownHandleError(h)
	}

	return plumbing.Node{
		Kind:        o.kind,
		Label:       o.label,
		Children:    append([]plumbing.Handle(nil), o.children...),
		Size:        o.size,
		Height:      o.height,
		Fingerprint: o.hashes.Syntax,
		Structure:   o.hashes.Structure,
	}, nil
}

// Lookup returns the handle of the node with the given fingerprint.
func (s *Storage) Lookup(f hash.Fingerprint) (plumbing.Handle, bool) {
	sh := &s.shards[f.Shard(len(s.shards))]
	sh.Lock()
	defer sh.Unlock()

	h, ok := sh.index[f]
	return h, ok
}

// Len returns the number of distinct nodes stored.
func (s *Storage) Len() int {
	return s.nodes.len()
}

// Stats returns the counters of the storage.
func (s *Storage) Stats() storer.Stats {
	return storer.Stats{
		Nodes:   s.nodes.len(),
		Labels:  s.labels.Len(),
		Interns: s.interns.Load(),
		Hits:    s.hits.Load(),
	}
}

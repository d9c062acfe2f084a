package memory

import (
	"hash/maphash"
	"sync"
)

// LabelID identifies an interned label. The zero LabelID is the empty
// label.
type LabelID uint32

const labelShards = 32

// LabelStorage interns labels, so every distinct label is kept once no
// matter how many nodes carry it.
type LabelStorage struct {
	seed   maphash.Seed
	shards [labelShards]labelShard
	names  arena[string]
}

type labelShard struct {
	sync.Mutex
	ids map[string]LabelID
}

// NewLabelStorage returns an empty LabelStorage.
func NewLabelStorage() *LabelStorage {
	s := &LabelStorage{seed: maphash.MakeSeed()}
	for i := range s.shards {
		s.shards[i].ids = make(map[string]LabelID)
	}

	// id 0 is the empty label
	empty := ""
	s.names.publish(s.names.alloc(), &empty)
	return s
}

// Intern returns the id of label and its canonical copy, storing it first
// if needed.
func (s *LabelStorage) Intern(label string) (LabelID, string) {
	if label == "" {
		return 0, ""
	}

	sh := s.shard(label)
	sh.Lock()
	defer sh.Unlock()

	if id, ok := sh.ids[label]; ok {
		return id, *s.names.get(uint64(id))
	}

	i := s.names.alloc()
	s.names.publish(i, &label)
	sh.ids[label] = LabelID(i)
	return LabelID(i), label
}

// Get returns the id of label if it was interned.
func (s *LabelStorage) Get(label string) (LabelID, bool) {
	if label == "" {
		return 0, true
	}

	sh := s.shard(label)
	sh.Lock()
	defer sh.Unlock()

	id, ok := sh.ids[label]
	return id, ok
}

// Resolve returns the label with the given id.
func (s *LabelStorage) Resolve(id LabelID) (string, bool) {
	l := s.names.get(uint64(id))
	if l == nil {
		return "", false
	}

	return *l, true
}

// Len returns the number of distinct non-empty labels.
func (s *LabelStorage) Len() int {
	return s.names.len() - 1
}

func (s *LabelStorage) shard(label string) *labelShard {
	return &s.shards[maphash.String(s.seed, label)%labelShards]
}

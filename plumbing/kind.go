package plumbing

import (
	"sync"
)

// Kind is the syntactic category of a node. Kinds are interned by name in
// a process-wide table, so an adapter can use the type names of its
// grammar and get a compact, comparable value back.
type Kind uint32

const (
	// InvalidKind represents a missing kind.
	InvalidKind Kind = iota
	// Directory is the kind of nodes representing a directory of files.
	Directory
	// File is the kind of nodes wrapping the syntax tree of a single file.
	File
)

var kinds = struct {
	sync.RWMutex
	names []string
	ids   map[string]Kind
}{
	names: []string{"invalid", "directory", "file"},
	ids: map[string]Kind{
		"directory": Directory,
		"file":      File,
	},
}

// KindFor returns the Kind registered for name, registering it if needed.
// The empty name maps to InvalidKind.
func KindFor(name string) Kind {
	if name == "" {
		return InvalidKind
	}

	kinds.RLock()
	k, ok := kinds.ids[name]
	kinds.RUnlock()
	if ok {
		return k
	}

	kinds.Lock()
	defer kinds.Unlock()
	if k, ok := kinds.ids[name]; ok {
		return k
	}

	k = Kind(len(kinds.names))
	kinds.names = append(kinds.names, name)
	kinds.ids[name] = k
	return k
}

// ParseKind returns the Kind registered for name, or ErrInvalidKind when
// no such kind was ever registered.
func ParseKind(name string) (Kind, error) {
	kinds.RLock()
	defer kinds.RUnlock()

	k, ok := kinds.ids[name]
	if !ok {
		return InvalidKind, ErrInvalidKind
	}

	return k, nil
}

// Valid returns true if the kind was registered and is not InvalidKind.
func (k Kind) Valid() bool {
	if k == InvalidKind {
		return false
	}

	kinds.RLock()
	defer kinds.RUnlock()
	return int(k) < len(kinds.names)
}

func (k Kind) String() string {
	kinds.RLock()
	defer kinds.RUnlock()

	if int(k) >= len(kinds.names) {
		return "unknown"
	}

	return kinds.names[k]
}

// Bytes returns the kind name as a slice of bytes.
func (k Kind) Bytes() []byte {
	return []byte(k.String())
}

// Package generator defines how syntax trees are fed into a store and
// keeps a registry of the generators available per language.
package generator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hyperast/go-hyperast/plumbing"
	"github.com/hyperast/go-hyperast/plumbing/storer"
)

// ErrUnsupportedLanguage is returned when no generator is registered for a
// language or a file.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Generator turns source code into a tree interned in a store. Nodes must
// be interned bottom-up, children before their parent.
type Generator interface {
	// Language returns the language name (e.g., "go", "python").
	Language() string
	// Extensions returns the file extensions this generator handles,
	// including the leading dot.
	Extensions() []string
	// Generate parses content and returns the handle of its root.
	Generate(ctx context.Context, s storer.NodeInterner, content []byte) (plumbing.Handle, error)
}

// Registry holds the registered generators. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	languages map[string]Generator
	extToLang map[string]string
}

// NewRegistry returns a registry with the given generators registered.
func NewRegistry(gens ...Generator) *Registry {
	r := &Registry{
		languages: make(map[string]Generator),
		extToLang: make(map[string]string),
	}

	for _, g := range gens {
		r.Register(g)
	}

	return r
}

// Register adds a generator to the registry, replacing any generator
// previously registered for the same language or extensions.
func (r *Registry) Register(g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lang := g.Language()
	r.languages[lang] = g
	for _, ext := range g.Extensions() {
		r.extToLang[strings.ToLower(ext)] = lang
	}
}

// ForFile returns the generator handling the given file name.
func (r *Registry) ForFile(name string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lang, ok := r.extToLang[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return nil, false
	}

	g, ok := r.languages[lang]
	return g, ok
}

// ForLanguage returns the generator registered for lang.
func (r *Registry) ForLanguage(lang string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.languages[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	return g, nil
}

// Languages returns the registered language names, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	langs := make([]string, 0, len(r.languages))
	for l := range r.languages {
		langs = append(langs, l)
	}

	sort.Strings(langs)
	return langs
}

// Generate runs the generator registered for the file name on content.
func (r *Registry) Generate(ctx context.Context, s storer.NodeInterner, name string, content []byte) (plumbing.Handle, error) {
	g, ok := r.ForFile(name)
	if !ok {
		return plumbing.ZeroHandle, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, name)
	}

	return g.Generate(ctx, s, content)
}

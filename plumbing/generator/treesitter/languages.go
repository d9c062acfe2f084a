package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language describes a tree-sitter grammar.
type Language struct {
	Name       string
	Extensions []string
	Grammar    *sitter.Language
	// Atoms are the kinds stored as leaves labeled with their whole
	// source text, such as string literals whose content is not covered
	// by any child.
	Atoms []string
}

var (
	Go = Language{
		Name:       "go",
		Extensions: []string{".go"},
		Grammar:    golang.GetLanguage(),
		Atoms:      []string{"interpreted_string_literal", "raw_string_literal", "rune_literal"},
	}

	Python = Language{
		Name:       "python",
		Extensions: []string{".py"},
		Grammar:    python.GetLanguage(),
		Atoms:      []string{"string"},
	}

	JavaScript = Language{
		Name:       "javascript",
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		Grammar:    javascript.GetLanguage(),
		Atoms:      []string{"string", "template_string", "regex"},
	}

	TypeScript = Language{
		Name:       "typescript",
		Extensions: []string{".ts"},
		Grammar:    typescript.GetLanguage(),
		Atoms:      []string{"string", "template_string", "regex"},
	}

	Ruby = Language{
		Name:       "ruby",
		Extensions: []string{".rb"},
		Grammar:    ruby.GetLanguage(),
		Atoms:      []string{"string", "simple_symbol", "regex"},
	}
)

// Languages returns the bundled languages.
func Languages() []Language {
	return []Language{Go, Python, JavaScript, TypeScript, Ruby}
}

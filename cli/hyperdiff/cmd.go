package main

import (
	"github.com/hyperast/go-hyperast"
	"github.com/hyperast/go-hyperast/plumbing/format/sexp"
	"github.com/hyperast/go-hyperast/plumbing/generator"
	"github.com/hyperast/go-hyperast/plumbing/generator/treesitter"
	"github.com/hyperast/go-hyperast/utils/trace"
)

// cmd holds the options shared by the commands working on trees.
type cmd struct {
	Config string `short:"c" long:"config" description:"Read the configuration from this file."`
	Trace  string `long:"trace" description:"Comma separated trace targets: general, store, match, script, history or all."`
}

// setup loads the configuration and enables the trace targets.
func (c *cmd) setup() (*hyperast.Config, error) {
	cfg := hyperast.DefaultConfig()
	if c.Config != "" {
		var err error
		if cfg, err = hyperast.LoadConfig(c.Config); err != nil {
			return nil, err
		}
	}

	if c.Trace != "" {
		cfg.Trace.Targets = c.Trace
	}

	t, err := cfg.TraceTargets()
	if err != nil {
		return nil, err
	}

	trace.SetTarget(t)
	return cfg, nil
}

// forest returns an empty forest and the generators enabled by cfg.
func forest(cfg *hyperast.Config) (*hyperast.Forest, *generator.Registry, error) {
	f, err := hyperast.New(cfg.Options())
	if err != nil {
		return nil, nil, err
	}

	return f, registry(cfg.History.Languages), nil
}

// registry returns the generators of the given languages, or of every
// bundled language if none is given.
func registry(languages []string) *generator.Registry {
	enabled := make(map[string]bool, len(languages))
	for _, l := range languages {
		enabled[l] = true
	}

	var langs []treesitter.Language
	for _, l := range treesitter.Languages() {
		if len(enabled) == 0 || enabled[l.Name] {
			langs = append(langs, l)
		}
	}

	r := generator.NewRegistry(sexp.Generator{})
	if len(langs) != 0 {
		for _, g := range treesitter.Generators(langs) {
			r.Register(g)
		}
	}

	return r
}

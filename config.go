package hyperast

import (
	"errors"
	"io"
	"os"

	"dario.cat/mergo"
	"github.com/go-git/gcfg"

	"github.com/hyperast/go-hyperast/plumbing/cache"
	"github.com/hyperast/go-hyperast/storage/memory"
	"github.com/hyperast/go-hyperast/utils/merkletrie"
	"github.com/hyperast/go-hyperast/utils/trace"
)

var ErrNegativeCacheSize = errors.New("cache size cannot be negative")

// Config is the content of a configuration file, e.g.:
//
//	[store]
//		max-nodes = 1000000
//		normalize-labels
//	[match]
//		similarity-threshold = 0.6
//	[history]
//		cache-size = 4096
//		language = go
//		language = python
//	[trace]
//		targets = match,script
type Config struct {
	Store struct {
		Shards           int  `gcfg:"shards"`
		MaxNodes         int  `gcfg:"max-nodes"`
		VerifyCollisions bool `gcfg:"verify-collisions"`
		NormalizeLabels  bool `gcfg:"normalize-labels"`
	}

	Match struct {
		MinHeight           int     `gcfg:"min-height"`
		MinSize             int     `gcfg:"min-size"`
		SimilarityThreshold float64 `gcfg:"similarity-threshold"`
		DisableRecovery     bool    `gcfg:"disable-recovery"`
		DisableRootMatch    bool    `gcfg:"disable-root-match"`
		Workers             int     `gcfg:"workers"`
	}

	History struct {
		CacheSize int      `gcfg:"cache-size"`
		Workers   int      `gcfg:"workers"`
		Languages []string `gcfg:"language"`
	}

	Trace struct {
		Targets string `gcfg:"targets"`
	}
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	c := &Config{}
	c.Store.Shards = memory.DefaultShards
	c.Match.MinHeight = merkletrie.DefaultMinHeight
	c.Match.MinSize = merkletrie.DefaultMinSize
	c.Match.SimilarityThreshold = merkletrie.DefaultSimilarityThreshold
	c.History.CacheSize = cache.DefaultMaxEntries
	return c
}

// ReadConfig reads a configuration from r. Missing values are taken from
// DefaultConfig.
func ReadConfig(r io.Reader) (*Config, error) {
	c := &Config{}
	if err := gcfg.FatalOnly(gcfg.ReadInto(c, r)); err != nil {
		return nil, err
	}

	if err := mergo.Merge(c, DefaultConfig()); err != nil {
		return nil, err
	}

	return c, c.Validate()
}

// LoadConfig reads the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadConfig(f)
}

// Validate checks the values that cannot be fixed by defaults.
func (c *Config) Validate() error {
	if c.History.CacheSize < 0 {
		return ErrNegativeCacheSize
	}

	o := c.Options()
	if err := o.Validate(); err != nil {
		return err
	}

	_, err := c.TraceTargets()
	return err
}

// Options returns the forest options described by the configuration.
func (c *Config) Options() *Options {
	return &Options{
		Shards:           c.Store.Shards,
		MaxNodes:         c.Store.MaxNodes,
		VerifyCollisions: c.Store.VerifyCollisions,
		NormalizeLabels:  c.Store.NormalizeLabels,
		Match: merkletrie.Options{
			MinHeight:           c.Match.MinHeight,
			MinSize:             c.Match.MinSize,
			SimilarityThreshold: c.Match.SimilarityThreshold,
			DisableRecovery:     c.Match.DisableRecovery,
			DisableRootMatch:    c.Match.DisableRootMatch,
			Workers:             c.Match.Workers,
		},
	}
}

// TraceTargets parses the trace targets of the configuration.
func (c *Config) TraceTargets() (trace.Target, error) {
	return trace.ParseTargets(c.Trace.Targets)
}

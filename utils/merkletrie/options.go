package merkletrie

import (
	"errors"
	"runtime"
)

const (
	// DefaultMinHeight is the lowest height of subtrees paired by the
	// top-down phase.
	DefaultMinHeight = 1
	// DefaultMinSize is the lowest size of nodes paired by the bottom-up
	// phase.
	DefaultMinSize = 2
	// DefaultSimilarityThreshold is the lowest Dice coefficient accepted by
	// the bottom-up phase.
	DefaultSimilarityThreshold = 0.5
)

var (
	ErrInvalidThreshold = errors.New("similarity threshold must be within (0, 1]")
	ErrNegativeOption   = errors.New("matcher options cannot be negative")
)

// Options tunes the matcher. Zero values are replaced by defaults.
type Options struct {
	// MinHeight is the lowest height of subtrees paired by the top-down
	// phase. 1 makes leaves eligible.
	MinHeight int
	// MinSize is the lowest subtree size of nodes paired by the bottom-up
	// phase.
	MinSize int
	// SimilarityThreshold is the lowest Dice coefficient of mapped
	// descendants for the bottom-up phase to pair two nodes.
	SimilarityThreshold float64
	// DisableRecovery turns off the pairing of the children of nodes
	// paired by the bottom-up phase.
	DisableRecovery bool
	// DisableRootMatch turns off the pairing of roots of the same kind
	// left unmapped by the other phases.
	DisableRootMatch bool
	// Workers bounds the goroutines used to map identical subtrees.
	// Defaults to GOMAXPROCS.
	Workers int
}

// Validate validates the fields and sets the default values.
func (o *Options) Validate() error {
	if o.MinHeight < 0 || o.MinSize < 0 || o.Workers < 0 {
		return ErrNegativeOption
	}

	if o.SimilarityThreshold < 0 || o.SimilarityThreshold > 1 {
		return ErrInvalidThreshold
	}

	if o.MinHeight == 0 {
		o.MinHeight = DefaultMinHeight
	}

	if o.MinSize == 0 {
		o.MinSize = DefaultMinSize
	}

	if o.SimilarityThreshold == 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}

	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}

	return nil
}

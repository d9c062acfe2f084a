package hyperast

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyperast/go-hyperast/storage/memory"
	"github.com/hyperast/go-hyperast/utils/merkletrie"
)

var (
	ErrNegativeMaxNodes = errors.New("max nodes cannot be negative")
	ErrNegativeShards   = errors.New("shards cannot be negative")
)

// Options describes how a Forest stores and compares trees.
type Options struct {
	// Shards is the number of locks splitting the fingerprint index of
	// the store, by default memory.DefaultShards.
	Shards int
	// MaxNodes bounds the number of nodes of the store, 0 means no bound.
	MaxNodes int
	// VerifyCollisions compares the content of nodes sharing a
	// fingerprint.
	VerifyCollisions bool
	// NormalizeLabels converts labels to NFC before interning them.
	NormalizeLabels bool
	// Match tunes the matcher.
	Match merkletrie.Options
	// TracerProvider provides the tracer of diff spans, by default the
	// global provider.
	TracerProvider trace.TracerProvider
}

// Validate validates the fields and sets the default values.
func (o *Options) Validate() error {
	if o.MaxNodes < 0 {
		return ErrNegativeMaxNodes
	}

	if o.Shards < 0 {
		return ErrNegativeShards
	}

	if o.Shards == 0 {
		o.Shards = memory.DefaultShards
	}

	if o.TracerProvider == nil {
		o.TracerProvider = otel.GetTracerProvider()
	}

	return o.Match.Validate()
}

func (o *Options) storageOptions() []memory.StorageOption {
	return []memory.StorageOption{
		memory.WithShards(o.Shards),
		memory.WithMaxNodes(o.MaxNodes),
		memory.WithCollisionCheck(o.VerifyCollisions),
		memory.WithLabelNormalization(o.NormalizeLabels),
	}
}

package memory

// DefaultShards is the number of shards a Storage uses unless told
// otherwise.
const DefaultShards = 64

type options struct {
	shards           int
	maxNodes         int
	verifyCollisions bool
	normalizeLabels  bool
}

func newOptions() options {
	return options{
		shards: DefaultShards,
	}
}

// StorageOption is a function that configures storage options.
type StorageOption func(*options)

// WithShards sets the number of shards the fingerprint index is split
// into. It is rounded up to a power of two; values below 1 are ignored.
func WithShards(n int) StorageOption {
	return func(o *options) {
		if n < 1 {
			return
		}

		s := 1
		for s < n {
			s <<= 1
		}
		o.shards = s
	}
}

// WithMaxNodes bounds the number of distinct nodes the storage accepts.
// Zero means no limit.
func WithMaxNodes(n int) StorageOption {
	return func(o *options) {
		o.maxNodes = n
	}
}

// WithCollisionCheck makes the storage compare kind, label and children
// whenever a fingerprint is already known, failing with
// plumbing.ErrFingerprintCollision on mismatch.
func WithCollisionCheck(enabled bool) StorageOption {
	return func(o *options) {
		o.verifyCollisions = enabled
	}
}

// WithLabelNormalization makes the storage normalize labels to Unicode NFC
// before interning them.
func WithLabelNormalization(enabled bool) StorageOption {
	return func(o *options) {
		o.normalizeLabels = enabled
	}
}

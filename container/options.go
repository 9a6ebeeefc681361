package container

import (
	"log/slog"

	"github.com/hupe1980/flatvec"
)

type options struct {
	codec         Codec
	rootKind      flatvec.Kind
	logger        *slog.Logger
	ioBytesPerSec int
	accessHint    AccessHint
}

// AccessHint describes how a memory-mapped container will be read.
type AccessHint int

const (
	// HintDefault applies no access-pattern advice.
	HintDefault AccessHint = iota
	// HintSequential advises the kernel the payload will be read front to
	// back, e.g. by a verification pass.
	HintSequential
	// HintRandom advises the kernel the payload will be walked by address,
	// the usual pattern for an executing runtime.
	HintRandom
)

// Option configures save and load behavior.
type Option func(*options)

// WithCodec selects the payload codec. CodecNone is the default and the
// only codec compatible with memory-mapped loading.
func WithCodec(c Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithRootKind records the element kind of the root region in the header as
// a coarse sanity marker. Full schema identity stays out-of-band.
func WithRootKind(k flatvec.Kind) Option {
	return func(o *options) { o.rootKind = k }
}

// WithLogger sets the structured logger. Logging is off by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIORateLimit throttles save throughput to bytesPerSec, for background
// checkpointing that must not starve foreground IO. Zero means unlimited.
func WithIORateLimit(bytesPerSec int) Option {
	return func(o *options) { o.ioBytesPerSec = bytesPerSec }
}

// WithAccessHint sets the madvise hint applied by OpenMapped.
func WithAccessHint(h AccessHint) Option {
	return func(o *options) { o.accessHint = h }
}

func applyOptions(opts []Option) options {
	o := options{
		codec:  CodecNone,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

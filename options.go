package chttp

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
)

// DefaultMaxBodyBytes limits how much of a request body the binding layer buffers when no
// explicit limit is configured.
const DefaultMaxBodyBytes int64 = 4 << 20

// Options hold the tunables that are commonly driven by the environment.
type Options struct {
	// BufferLimit caps the buffered response size in bytes, negative means unlimited.
	BufferLimit int `env:"CHTTP_BUFFER_LIMIT" envDefault:"-1"`
	// MaxBodyBytes caps how much request body the binding layer reads.
	MaxBodyBytes int64 `env:"CHTTP_MAX_BODY_BYTES" envDefault:"4194304"`
}

// OptionsFromEnv parses [Options] from the process environment.
func OptionsFromEnv() (Options, error) {
	opts, err := env.ParseAs[Options]()
	if err != nil {
		return opts, errors.Wrap(err, "parse options from environment")
	}

	return opts, nil
}

type config struct {
	container    Container
	codec        Codec
	logs         Logger
	notFound     BareHandler
	bufLimit     int
	maxBodyBytes int64
}

// Option configures dispatchers and the [ServeMux].
type Option func(*config)

func newConfig(opts ...Option) config {
	cfg := config{
		codec:        JSONCodec,
		logs:         NewStdLogger(log.Default()),
		notFound:     notFoundHandler(),
		bufLimit:     -1,
		maxBodyBytes: DefaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithContainer sets the dependency container used for handler construction and Service-sourced
// parameters.
func WithContainer(c Container) Option {
	return func(cfg *config) { cfg.container = c }
}

// WithCodec replaces the default JSON codec.
func WithCodec(c Codec) Option {
	return func(cfg *config) { cfg.codec = c }
}

// WithLogger replaces the default standard library logger.
func WithLogger(l Logger) Option {
	return func(cfg *config) { cfg.logs = l }
}

// WithNotFound replaces the terminal pipeline stage a [ServeMux] falls through to.
func WithNotFound(h BareHandler) Option {
	return func(cfg *config) { cfg.notFound = h }
}

// WithBufferLimit caps the buffered response size in bytes, negative means unlimited.
func WithBufferLimit(n int) Option {
	return func(cfg *config) { cfg.bufLimit = n }
}

// WithMaxBodyBytes caps how much request body the binding layer reads.
func WithMaxBodyBytes(n int64) Option {
	return func(cfg *config) { cfg.maxBodyBytes = n }
}

// WithOptions applies environment-driven [Options].
func WithOptions(o Options) Option {
	return func(cfg *config) {
		cfg.bufLimit = o.BufferLimit
		cfg.maxBodyBytes = o.MaxBodyBytes
	}
}

package chttp

import (
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
)

// ServeMux chains compiled handler dispatchers into an http.Handler. Requests flow through the
// registered middleware, then through every mounted dispatcher in mount order, and finally into
// the not-found stage when no dispatcher claims the request.
type ServeMux struct {
	cfg config

	middlewares struct {
		captured bool
		buffered []Middleware
	}
	dispatchers []Middleware

	build sync.Once
	std   http.Handler
}

// NewServeMux creates a new ServeMux, see [Option] for the available settings.
func NewServeMux(opts ...Option) *ServeMux {
	return &ServeMux{cfg: newConfig(opts...)}
}

// Use allows providing of middleware. It must be called before the first Mount.
func (m *ServeMux) Use(mw ...Middleware) {
	if m.middlewares.captured {
		panic("chttp: cannot call Use() after calling Mount")
	}

	m.middlewares.buffered = append(m.middlewares.buffered, mw...)
}

// Mount compiles handler type H through the process-wide cache and appends its dispatcher to the
// mux. Configuration faults in H's blueprint are returned here, before any request is served.
func Mount[H Routable[H]](m *ServeMux) error {
	if m.std != nil {
		return errors.New("cannot mount after the mux started serving")
	}

	mw, err := dispatchWith[H](m.cfg)
	if err != nil {
		return err
	}

	m.middlewares.captured = true
	m.dispatchers = append(m.dispatchers, mw)

	return nil
}

// MustMount is [Mount] but panics on configuration faults.
func MustMount[H Routable[H]](m *ServeMux) {
	if err := Mount[H](m); err != nil {
		panic("chttp: " + err.Error())
	}
}

// ServeHTTP makes the serve mux implement the http.Handler interface. The pipeline is assembled
// once, on first use.
func (m *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.build.Do(func() {
		chain := append(append([]Middleware{}, m.middlewares.buffered...), m.dispatchers...)
		m.std = ToStd(Wrap(m.cfg.notFound, chain...), m.cfg.bufLimit, m.cfg.logs)
	})

	m.std.ServeHTTP(w, r)
}

// notFoundHandler is the default terminal stage: anything that falls through every dispatcher is
// answered with a plain 404.
func notFoundHandler() BareHandler {
	return BareHandlerFunc(func(_ ResponseWriter, r *http.Request) error {
		return NewError(CodeNotFound, errors.Newf("no handler for %s %s", r.Method, r.URL.Path))
	})
}

package chttp

import (
	"net/http"
)

// ResponseWriter implements http.ResponseWriter but the underlying bytes are buffered. This allows
// the dispatch pipeline to reset the writer and formulate a completely new response when a
// binding or handler method faults halfway through.
type ResponseWriter interface {
	http.ResponseWriter
	Reset()
	Free()
	FlushBuffer() error
}

// BareHandler describes a single stage of the dispatch pipeline. Compiled dispatchers, middleware
// and the terminal stage all serve requests through this shape.
type BareHandler interface {
	ServeBareHTTP(w ResponseWriter, r *http.Request) error
}

// BareHandlerFunc allows casting a function to an implementation of [BareHandler].
type BareHandlerFunc func(ResponseWriter, *http.Request) error

// ServeBareHTTP implements the [BareHandler] interface.
func (f BareHandlerFunc) ServeBareHTTP(w ResponseWriter, r *http.Request) error {
	return f(w, r)
}

// Middleware wraps a pipeline stage. Compiled dispatchers produced by [Dispatch] are themselves
// middleware: they either handle the request or hand it to the next stage.
type Middleware func(BareHandler) BareHandler

// Wrap takes the inner handler h and wraps it with middleware. The order is that of the Gorilla
// and Chi routers: the middleware provided first is the outermost wrapping, the middleware
// provided last is closest to the handler.
func Wrap(h BareHandler, m ...Middleware) BareHandler {
	if len(m) < 1 {
		return h
	}

	wrapped := h
	for i := len(m) - 1; i >= 0; i-- {
		wrapped = m[i](wrapped)
	}

	return wrapped
}

// ToStd converts a bare handler into a standard library http.Handler. The implementation creates
// a buffered response writer and flushes it implicitly after serving the request. Errors carrying
// a [Code] are rendered as the matching status; anything else is logged and rendered as a 500.
func ToStd(h BareHandler, bufLimit int, logs Logger) http.Handler {
	return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		bresp := NewResponseBuffer(resp, bufLimit)
		defer bresp.Free()

		if err := h.ServeBareHTTP(bresp, req); err != nil {
			bresp.Reset() // discard whatever was written before the fault

			code := CodeOf(err)
			if code == CodeUnknown {
				logs.LogUnhandledServeError(err)
				code = CodeInternalServerError
			}

			http.Error(bresp, http.StatusText(int(code)), int(code))
		}

		if err := bresp.FlushBuffer(); err != nil {
			logs.LogImplicitFlushError(err)
		}
	})
}

package chttp

import (
	"io"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
)

// Next resumes the surrounding pipeline from within a handler method. It is bound through
// [Ambient] so methods can explicitly hand the request back to the next stage.
type Next func() error

// Ctx is the per-request context a compiled binding executes against. It carries the buffered
// response writer, the request, the continuation to the next pipeline stage and the collaborators
// the binding closures draw from.
type Ctx struct {
	w         ResponseWriter
	r         *http.Request
	next      BareHandler
	container Container
	codec     Codec
	maxBody   int64

	query    url.Values
	body     []byte
	bodyRead bool
	bodyErr  error
}

// Request returns the incoming request.
func (c *Ctx) Request() *http.Request { return c.r }

// Writer returns the buffered response writer.
func (c *Ctx) Writer() ResponseWriter { return c.w }

// Container returns the dependency container, possibly nil.
func (c *Ctx) Container() Container { return c.container }

// WriteJSON encodes v through the configured codec with a JSON content type. It is the default
// execution for method return values that do not implement [Result].
func (c *Ctx) WriteJSON(v any) error {
	c.w.Header().Set("Content-Type", "application/json")

	if err := c.codec.Encode(c.w, v); err != nil {
		return errors.Wrap(err, "encode response body")
	}

	return nil
}

// BodyBytes reads and caches the request body. The body stream can be consumed only once, so all
// body-sourced bindings of a request share this single read.
func (c *Ctx) BodyBytes() ([]byte, error) {
	if c.bodyRead {
		return c.body, c.bodyErr
	}

	c.bodyRead = true

	if c.r.Body == nil {
		return nil, nil
	}

	limit := c.maxBody
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	data, err := io.ReadAll(io.LimitReader(c.r.Body, limit+1))
	if err != nil {
		c.bodyErr = NewError(CodeBadRequest, errors.Wrap(err, "read request body"))
		return nil, c.bodyErr
	}

	if int64(len(data)) > limit {
		c.bodyErr = NewError(CodeBadRequest, errors.Newf("request body exceeds %d bytes", limit))
		return nil, c.bodyErr
	}

	c.body = data

	return c.body, nil
}

// queryValues parses the query string at most once per request.
func (c *Ctx) queryValues() url.Values {
	if c.query == nil {
		c.query = c.r.URL.Query()
	}

	return c.query
}

// serveNext hands the request to the next pipeline stage.
func (c *Ctx) serveNext() error {
	return c.next.ServeBareHTTP(c.w, c.r)
}

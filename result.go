package chttp

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Result is the capability a returned value may implement to take full control of writing the
// response, bypassing the default JSON encoding.
type Result interface {
	ExecuteResult(c *Ctx) error
}

// Return is the closed set of shapes a handler method may produce. Construct instances with
// [None], [Value], [Await], [Eventually] or [Forward]; a nil Return behaves like [None].
type Return interface{ isReturn() }

type noneReturn struct{}

type valueReturn struct{ v any }

type awaitReturn struct{ wait func(context.Context) error }

type deferredReturn struct{ wait func(context.Context) (Return, error) }

type forwardReturn struct{}

func (noneReturn) isReturn()     {}
func (valueReturn) isReturn()    {}
func (awaitReturn) isReturn()    {}
func (deferredReturn) isReturn() {}
func (forwardReturn) isReturn()  {}

// None signals that the method wrote nothing and the response is complete as-is.
func None() Return { return noneReturn{} }

// Value wraps a plain value. If it implements [Result] its own execution runs; otherwise it is
// JSON-encoded as the response body.
func Value(v any) Return { return valueReturn{v} }

// Await wraps an operation that must run to completion without producing a response value.
func Await(wait func(context.Context) error) Return { return awaitReturn{wait} }

// Eventually wraps an operation that produces another Return once awaited. It may nest at most
// one level: an Eventually that yields another Eventually is a fault.
func Eventually(wait func(context.Context) (Return, error)) Return { return deferredReturn{wait} }

// Forward hands the request to the next pipeline stage.
func Forward() Return { return forwardReturn{} }

// execute converges a method's return value to a single response-writing action against the
// request context.
func (c *Ctx) execute(ret Return) error {
	return c.executeReturn(ret, false)
}

func (c *Ctx) executeReturn(ret Return, nested bool) error {
	switch v := ret.(type) {
	case nil:
		return nil
	case noneReturn:
		return nil
	case forwardReturn:
		return c.serveNext()
	case awaitReturn:
		return v.wait(c.r.Context())
	case deferredReturn:
		if nested {
			return errors.New("chttp: deferred return nested more than one level")
		}

		inner, err := v.wait(c.r.Context())
		if err != nil {
			return err
		}

		return c.executeReturn(inner, true)
	case valueReturn:
		if res, ok := v.v.(Result); ok {
			return res.ExecuteResult(c)
		}

		return c.WriteJSON(v.v)
	default:
		return errors.Newf("chttp: unknown return shape %T", ret)
	}
}

type statusResult struct {
	code int
	body any
}

func (s statusResult) ExecuteResult(c *Ctx) error {
	c.Writer().WriteHeader(s.code)

	if s.body == nil {
		return nil
	}

	return c.WriteJSON(s.body)
}

// WithStatus returns a Return that writes the given status code before JSON-encoding body. A nil
// body writes the status only.
func WithStatus(code int, body any) Return { return Value(statusResult{code, body}) }

type redirectResult struct {
	url  string
	code int
}

func (r redirectResult) ExecuteResult(c *Ctx) error {
	http.Redirect(c.Writer(), c.Request(), r.url, r.code)
	return nil
}

// Redirect returns a Return that redirects the client.
func Redirect(url string, code int) Return { return Value(redirectResult{url, code}) }

// Package chttp compiles declaratively described handler types into cached HTTP dispatchers.
//
// # Overview
//
// chttp turns a handler type, a plain Go type whose methods are declared routable through a
// [Blueprint], into a single reusable dispatch function: per request it selects the best-matching
// method, extracts and converts its arguments from the declared sources, invokes it, and
// normalizes whatever it returns into a response write. The reflective and compositional work
// happens exactly once per handler type; requests only run plain closures.
//
// A minimal example:
//
//	type Users struct{}
//
//	func (Users) Hello(name string) (chttp.Return, error) {
//	    return chttp.Value("Hello, " + name + "!"), nil
//	}
//
//	func (Users) Blueprint() chttp.Blueprint[Users] {
//	    return chttp.NewBlueprint(
//	        chttp.M1(http.MethodGet, "/hello", chttp.Query[string]("name"), Users.Hello),
//	    )
//	}
//
//	mux := chttp.NewServeMux()
//	chttp.MustMount[Users](mux)
//	http.ListenAndServe(":8080", mux)
//
// # Blueprints and parameter sources
//
// A handler type implements [Routable] by returning a [Blueprint] from its zero value. Methods
// are declared with [M0] through [M4] as method expressions, so their parameter types stay fully
// typed: no runtime reflection over signatures is involved. Each parameter declares its source:
//
//   - [Query], [Header], [Route], [Cookie], [Form]: keyed request collections
//   - [Body]: the whole body decoded through the [Codec]
//   - [BodyField]: one field of the JSON body, addressed with a gjson path
//   - [Service]: resolved from the [Container] by type
//   - [Ambient]: special-cased by declared type (*Ctx, Next, *http.Request, http.Header,
//     url.Values)
//
// Absent keys bind the parameter's zero value without any conversion; the *Opt variants bind a
// nil pointer instead so absence stays observable. A present but malformed value is a binding
// fault rendered as a 400, never silently defaulted.
//
// # Matching
//
// Every compiled binding is scored per request: +1 when its declared verb equals the request
// method, +1 when its declared path template prefixes the request path (case-insensitively,
// segment-aligned). The first binding in declaration order whose score strictly exceeds the
// running maximum wins. Note the deliberate sharp edge: the first declared binding is always a
// candidate, so when nothing matches at all it is still invoked. Declare methods most-specific
// concerns first, or mount an explicit fallback, when that matters. Only a handler type without
// any methods defers to the next pipeline stage.
//
// # Return shapes
//
// Method return values form a closed set: [None], [Value], [Await], [Eventually] and [Forward].
// A [Value] whose payload implements [Result] executes itself against the request context;
// any other payload is JSON-encoded. [WithStatus] and [Redirect] are ready-made results.
//
// # Construction and dependencies
//
// Handler instances are constructed per request. A blueprint without a constructor uses the zero
// value and a [Blueprint.Construct] func runs without touching the container: both are the fast
// path. [Blueprint.ConstructWith] and [Service] parameters resolve from a [Container]; use the
// built-in [Registry] or adapt a dig container with [FromDig].
//
// # Pipeline shape
//
// A compiled dispatcher is a [Middleware] over [BareHandler], the same buffered, error-returning
// stage shape used by the [ServeMux]: responses buffer in a [ResponseBuffer] until the stage
// returns, so a faulting binding or method never leaks a partial response, and [ToStd] maps
// [*Error] codes onto plain HTTP error responses at the boundary.
package chttp

package chttp

import (
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// binding is the compiled unit stored in the handler-type cache: the matching metadata plus one
// invocation closure. Bindings are immutable after compilation and shared read-only across all
// concurrent requests; identical request content always binds the identical argument list, modulo
// externally injected services.
type binding struct {
	verb         string
	path         string
	requiresForm bool
	call         func(*Ctx) error
}

// score computes the binding's match quality for a request: +1 for a declared verb that equals
// the request method, +1 for a declared path template that prefixes the request path. An empty
// verb or path contributes 0, it does not auto-match.
func (b binding) score(r *http.Request) int {
	s := 0

	if b.verb != "" && strings.EqualFold(b.verb, r.Method) {
		s++
	}

	if b.path != "" && pathHasPrefixFold(r.URL.Path, b.path) {
		s++
	}

	return s
}

// pathHasPrefixFold reports whether prefix is a case-insensitive, segment-aligned prefix of path.
func pathHasPrefixFold(path, prefix string) bool {
	if len(path) < len(prefix) {
		return false
	}

	if !strings.EqualFold(path[:len(prefix)], prefix) {
		return false
	}

	return len(path) == len(prefix) || path[len(prefix)] == '/' || strings.HasSuffix(prefix, "/")
}

// matchBinding selects the first binding whose score is strictly greater than every previously
// seen score. The first declared binding is always a candidate because no previous maximum exists
// yet, so when nothing scores above zero the first declared binding is still selected and
// invoked. That sharp edge is deliberate: declaration order matters, and callers that want
// deterministic fall-through must not rely on a zero-scoring tail. Only an empty list defers to
// the next stage.
func matchBinding(bindings []binding, r *http.Request) (binding, bool) {
	if len(bindings) == 0 {
		return binding{}, false
	}

	best := -1

	var chosen binding

	for _, b := range bindings {
		if s := b.score(r); s > best {
			best = s
			chosen = b
		}
	}

	return chosen, true
}

// compileType turns a handler type's blueprint into its compiled bindings. It runs at most once
// per type (see cache.go) and performs no I/O: every fault it returns is a configuration fault.
func compileType[H Routable[H]]() ([]binding, error) {
	typ := reflect.TypeFor[H]()

	var zero H
	bp := zero.Blueprint()

	if bp.construct != nil && bp.constructWith != nil {
		return nil, errors.Newf("%s declares both Construct and ConstructWith", typ)
	}

	construct := func(c *Ctx) (H, error) {
		switch {
		case bp.constructWith != nil:
			if c.container == nil {
				var h H
				return h, NewError(CodeInternalServerError,
					errors.Newf("no container configured to construct %s", typ))
			}

			return bp.constructWith(c.container)
		case bp.construct != nil:
			return bp.construct(), nil
		default:
			var h H
			return h, nil
		}
	}

	bindings := make([]binding, 0, len(bp.methods))

	for i, m := range bp.methods {
		if err := validateMethod(typ, i, m); err != nil {
			return nil, err
		}

		invoke := m.invoke

		bindings = append(bindings, binding{
			verb:         strings.ToUpper(m.verb),
			path:         m.path,
			requiresForm: methodRequiresForm(m.specs),
			call: func(c *Ctx) error {
				h, err := construct(c)
				if err != nil {
					return errors.Wrapf(err, "construct %s", typ)
				}

				ret, err := invoke(h, c)
				if err != nil {
					return err
				}

				return c.execute(ret)
			},
		})
	}

	return bindings, nil
}

func validateMethod[H any](typ reflect.Type, i int, m Method[H]) error {
	if m.invoke == nil {
		return errors.Newf("%s method %d: missing invocation", typ, i)
	}

	if m.path != "" && !strings.HasPrefix(m.path, "/") {
		return errors.Newf("%s method %d: path template %q must start with /", typ, i, m.path)
	}

	if len(m.errs) > 0 {
		return errors.Wrapf(m.errs[0], "%s method %d", typ, i)
	}

	bodyDecodes := 0

	for j, spec := range m.specs {
		switch spec.Source {
		case SourceQuery, SourceHeader, SourceRoute, SourceCookie, SourceForm:
			if spec.Key == "" {
				return errors.Newf("%s method %d: parameter %d from %s requires a key", typ, i, j, spec.Source)
			}
		case SourceBody:
			if spec.Key == "" {
				bodyDecodes++
			}
		case SourceService, SourceAmbient:
		default:
			return errors.Newf("%s method %d: parameter %d has no source", typ, i, j)
		}
	}

	if bodyDecodes > 1 {
		return errors.Newf("%s method %d: at most one parameter may decode the whole body", typ, i)
	}

	return nil
}

func methodRequiresForm(specs []ParamSpec) bool {
	for _, spec := range specs {
		if spec.Source == SourceForm {
			return true
		}

		if spec.Source == SourceAmbient && spec.Type == reflect.TypeFor[url.Values]() {
			return true
		}
	}

	return false
}

// Dispatch compiles (or fetches from the process-wide cache) the bindings of handler type H and
// returns the dispatch middleware: per request it scores every binding, invokes the best match
// and defers to the next stage only when H declares no methods at all. Configuration faults
// propagate out of this factory, never out of a request.
func Dispatch[H Routable[H]](opts ...Option) (Middleware, error) {
	return dispatchWith[H](newConfig(opts...))
}

func dispatchWith[H Routable[H]](cfg config) (Middleware, error) {
	bindings, err := cachedBindings[H]()
	if err != nil {
		return nil, err
	}

	return func(next BareHandler) BareHandler {
		return BareHandlerFunc(func(w ResponseWriter, r *http.Request) error {
			b, ok := matchBinding(bindings, r)
			if !ok {
				return next.ServeBareHTTP(w, r)
			}

			// the body stream is single-shot: form data must be materialized before any
			// binding closure runs.
			if b.requiresForm {
				if err := r.ParseForm(); err != nil {
					return NewError(CodeBadRequest, errors.Wrap(err, "parse form"))
				}
			}

			return b.call(&Ctx{
				w:         w,
				r:         r,
				next:      next,
				container: cfg.container,
				codec:     cfg.codec,
				maxBody:   cfg.maxBodyBytes,
			})
		})
	}, nil
}

// MustDispatch is [Dispatch] but panics on configuration faults.
func MustDispatch[H Routable[H]](opts ...Option) Middleware {
	mw, err := Dispatch[H](opts...)
	if err != nil {
		panic("chttp: " + err.Error())
	}

	return mw
}

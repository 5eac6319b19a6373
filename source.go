package chttp

import (
	"bytes"
	"net/http"
	"net/url"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// Source is the declared origin a method parameter's value is extracted from.
type Source int

const (
	SourceQuery Source = iota + 1
	SourceHeader
	SourceRoute
	SourceCookie
	SourceForm
	SourceBody
	SourceService
	SourceAmbient
)

var sourceNames = map[Source]string{
	SourceQuery:   "query",
	SourceHeader:  "header",
	SourceRoute:   "route",
	SourceCookie:  "cookie",
	SourceForm:    "form",
	SourceBody:    "body",
	SourceService: "service",
	SourceAmbient: "ambient",
}

func (s Source) String() string {
	if n, ok := sourceNames[s]; ok {
		return n
	}

	return "unknown"
}

// ParamSpec describes one declared method parameter: where it comes from, under which key, and
// into which type it converts. It is metadata only; the executable part lives in [Param].
type ParamSpec struct {
	Source   Source
	Key      string
	Type     reflect.Type
	Optional bool
}

// Param is the compiled binding plan for a single parameter: a pure closure that extracts a raw
// value from its declared source and converts it to T. Construction faults (for example an
// unsupported ambient type) are carried in err and surfaced when the handler type compiles.
type Param[T any] struct {
	spec ParamSpec
	err  error
	bind func(*Ctx) (T, error)
}

type lookupFunc func(*Ctx, string) (raw string, ok bool, err error)

func lookupQuery(c *Ctx, key string) (string, bool, error) {
	vals := c.queryValues()
	if !vals.Has(key) {
		return "", false, nil
	}

	return vals.Get(key), true, nil
}

func lookupHeader(c *Ctx, key string) (string, bool, error) {
	vals := c.r.Header.Values(key)
	if len(vals) == 0 {
		return "", false, nil
	}

	return vals[0], true, nil
}

// lookupRoute reads the mux's resolved route values. An empty path value is indistinguishable
// from an absent one, both bind the default.
func lookupRoute(c *Ctx, key string) (string, bool, error) {
	v := c.r.PathValue(key)
	if v == "" {
		return "", false, nil
	}

	return v, true, nil
}

func lookupCookie(c *Ctx, key string) (string, bool, error) {
	ck, err := c.r.Cookie(key)
	if errors.Is(err, http.ErrNoCookie) {
		return "", false, nil
	} else if err != nil {
		return "", false, errors.Wrapf(err, "read cookie %q", key)
	}

	return ck.Value, true, nil
}

// lookupForm assumes the owning dispatcher pre-parsed the body as form data, see the
// requiresForm flag in compile.go.
func lookupForm(c *Ctx, key string) (string, bool, error) {
	if !c.r.PostForm.Has(key) {
		return "", false, nil
	}

	return c.r.PostForm.Get(key), true, nil
}

func keyed[T any](src Source, key string, lookup lookupFunc) Param[T] {
	p := Param[T]{spec: ParamSpec{Source: src, Key: key, Type: reflect.TypeFor[T]()}}

	p.bind = func(c *Ctx) (T, error) {
		var zero T

		raw, ok, err := lookup(c, key)
		if err != nil {
			return zero, NewError(CodeBadRequest, err)
		}

		if !ok {
			return zero, nil // absent binds the default, conversion is never attempted
		}

		v, err := convertValue[T](raw)
		if err != nil {
			return zero, NewError(CodeBadRequest, errors.Wrapf(err, "bind %s parameter %q", src, key))
		}

		return v, nil
	}

	return p
}

func keyedOpt[T any](src Source, key string, lookup lookupFunc) Param[*T] {
	p := Param[*T]{spec: ParamSpec{Source: src, Key: key, Type: reflect.TypeFor[*T](), Optional: true}}

	p.bind = func(c *Ctx) (*T, error) {
		raw, ok, err := lookup(c, key)
		if err != nil {
			return nil, NewError(CodeBadRequest, err)
		}

		if !ok {
			return nil, nil
		}

		v, err := convertValue[T](raw)
		if err != nil {
			return nil, NewError(CodeBadRequest, errors.Wrapf(err, "bind %s parameter %q", src, key))
		}

		return &v, nil
	}

	return p
}

// Query binds a parameter from the request's query string.
func Query[T any](key string) Param[T] { return keyed[T](SourceQuery, key, lookupQuery) }

// QueryOpt binds an optional query parameter: nil when the key is absent.
func QueryOpt[T any](key string) Param[*T] { return keyedOpt[T](SourceQuery, key, lookupQuery) }

// Header binds a parameter from the request headers.
func Header[T any](key string) Param[T] { return keyed[T](SourceHeader, key, lookupHeader) }

// HeaderOpt binds an optional header parameter: nil when the header is absent.
func HeaderOpt[T any](key string) Param[*T] { return keyedOpt[T](SourceHeader, key, lookupHeader) }

// Route binds a parameter from the mux's resolved route values.
func Route[T any](key string) Param[T] { return keyed[T](SourceRoute, key, lookupRoute) }

// RouteOpt binds an optional route parameter: nil when the path value is absent.
func RouteOpt[T any](key string) Param[*T] { return keyedOpt[T](SourceRoute, key, lookupRoute) }

// Cookie binds a parameter from a request cookie.
func Cookie[T any](key string) Param[T] { return keyed[T](SourceCookie, key, lookupCookie) }

// CookieOpt binds an optional cookie parameter: nil when the cookie is absent.
func CookieOpt[T any](key string) Param[*T] { return keyedOpt[T](SourceCookie, key, lookupCookie) }

// Form binds a parameter from a form field. Declaring a form parameter makes the dispatcher parse
// the request body as form data, exactly once, before the binding runs.
func Form[T any](key string) Param[T] { return keyed[T](SourceForm, key, lookupForm) }

// FormOpt binds an optional form parameter: nil when the field is absent.
func FormOpt[T any](key string) Param[*T] { return keyedOpt[T](SourceForm, key, lookupForm) }

// Body binds a parameter by decoding the entire request body through the codec. An empty body
// binds the zero value; a malformed body is a binding fault.
func Body[T any]() Param[T] {
	p := Param[T]{spec: ParamSpec{Source: SourceBody, Type: reflect.TypeFor[T]()}}

	p.bind = func(c *Ctx) (T, error) {
		var v T

		data, err := c.BodyBytes()
		if err != nil {
			return v, err
		}

		if len(data) == 0 {
			return v, nil
		}

		if err := c.codec.Decode(bytes.NewReader(data), &v); err != nil {
			return v, NewError(CodeBadRequest, errors.Wrap(err, "decode request body"))
		}

		return v, nil
	}

	return p
}

// BodyField binds a parameter from a single field of the JSON request body, addressed with a
// gjson path. The body bytes are read once and shared with any other body-sourced parameter.
func BodyField[T any](path string) Param[T] {
	p := Param[T]{spec: ParamSpec{Source: SourceBody, Key: path, Type: reflect.TypeFor[T]()}}

	p.bind = func(c *Ctx) (T, error) {
		var zero T

		data, err := c.BodyBytes()
		if err != nil {
			return zero, err
		}

		res := gjson.GetBytes(data, path)
		if !res.Exists() {
			return zero, nil
		}

		v, err := convertValue[T](res.String())
		if err != nil {
			return zero, NewError(CodeBadRequest, errors.Wrapf(err, "bind body field %q", path))
		}

		return v, nil
	}

	return p
}

// Service binds a parameter by resolving it from the dependency container by its type.
func Service[T any]() Param[T] {
	typ := reflect.TypeFor[T]()
	p := Param[T]{spec: ParamSpec{Source: SourceService, Type: typ}}

	p.bind = func(c *Ctx) (T, error) {
		var zero T

		if c.container == nil {
			return zero, NewError(CodeInternalServerError,
				errors.Newf("no container configured to resolve %s", typ))
		}

		v, err := c.container.ResolveRequired(typ)
		if err != nil {
			return zero, errors.Wrapf(err, "resolve service %s", typ)
		}

		tv, ok := v.(T)
		if !ok {
			return zero, errors.Newf("container resolved %T, want %s", v, typ)
		}

		return tv, nil
	}

	return p
}

// Ambient binds a parameter that is special-cased purely by its declared type: the request
// context itself (*Ctx), the continuation (Next), the raw request (*http.Request), the header
// collection (http.Header) or the form collection (url.Values, which implies the form pre-parse).
// Any other type is a configuration fault surfaced when the handler type compiles.
func Ambient[T any]() Param[T] {
	typ := reflect.TypeFor[T]()
	p := Param[T]{spec: ParamSpec{Source: SourceAmbient, Type: typ}}

	var bind func(*Ctx) any

	switch typ {
	case reflect.TypeFor[*Ctx]():
		bind = func(c *Ctx) any { return c }
	case reflect.TypeFor[Next]():
		bind = func(c *Ctx) any { return Next(c.serveNext) }
	case reflect.TypeFor[*http.Request]():
		bind = func(c *Ctx) any { return c.r }
	case reflect.TypeFor[http.Header]():
		bind = func(c *Ctx) any { return c.r.Header }
	case reflect.TypeFor[url.Values]():
		bind = func(c *Ctx) any { return c.r.PostForm }
	default:
		p.err = errors.Newf("unsupported ambient parameter type %s", typ)
		return p
	}

	p.bind = func(c *Ctx) (T, error) {
		v, _ := bind(c).(T)
		return v, nil
	}

	return p
}
